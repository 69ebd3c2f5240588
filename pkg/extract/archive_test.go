package extract

import (
	"archive/zip"
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAddress = "0x52908400098527886E0F7030069857D2E4169EE7"

func buildZip(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestParseKinds(t *testing.T) {
	kinds, err := ParseKinds("")
	require.NoError(t, err)
	assert.Empty(t, kinds)

	kinds, err = ParseKinds("ZIP, pdf,zip")
	require.NoError(t, err)
	assert.Equal(t, []Kind{KindZip, KindPDF}, kinds)

	kinds, err = ParseKinds("all")
	require.NoError(t, err)
	assert.Equal(t, AllKinds, kinds)

	_, err = ParseKinds("zip,rar")
	assert.Error(t, err)
}

func TestShouldExtract(t *testing.T) {
	enabled := []Kind{KindZip, KindDOCX}

	kind, ok := ShouldExtract(enabled, "dir/Bundle.ZIP")
	assert.True(t, ok)
	assert.Equal(t, KindZip, kind)

	_, ok = ShouldExtract(enabled, "report.pdf")
	assert.False(t, ok)

	_, ok = ShouldExtract(enabled, "notes.txt")
	assert.False(t, ok)

	_, ok = ShouldExtract(nil, "bundle.zip")
	assert.False(t, ok)
}

func TestArchive_Zip(t *testing.T) {
	data := buildZip(t, map[string]string{
		"wallet.txt":   "addr=" + testAddress,
		"nested/other": "nothing here",
	})

	members, err := Archive(KindZip, data)
	require.NoError(t, err)
	require.Len(t, members, 2)

	var found bool
	for _, m := range members {
		if m.Name == "wallet.txt" {
			found = true
			assert.Contains(t, string(m.Content), testAddress)
		}
	}
	assert.True(t, found)
}

func TestArchive_DOCX(t *testing.T) {
	data := buildZip(t, map[string]string{
		"word/document.xml": `<w:document><w:body><w:p><w:r><w:t>key:</w:t></w:r><w:r><w:t>` + testAddress + `</w:t></w:r></w:p></w:body></w:document>`,
		"word/styles.xml":   `<styles>ignored</styles>`,
	})

	members, err := Archive(KindDOCX, data)
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, "key: "+testAddress, string(members[0].Content))
}

func TestArchive_XLSX(t *testing.T) {
	data := buildZip(t, map[string]string{
		"xl/sharedStrings.xml":     `<sst><si><t>` + testAddress + `</t></si></sst>`,
		"xl/worksheets/sheet1.xml": `<worksheet><sheetData><row><c><v>42</v></c></row></sheetData></worksheet>`,
		"xl/styles.xml":            `<styleSheet>ignored</styleSheet>`,
	})

	members, err := Archive(KindXLSX, data)
	require.NoError(t, err)
	require.Len(t, members, 2)
}

func TestArchive_Corrupt(t *testing.T) {
	for _, kind := range AllKinds {
		t.Run(string(kind), func(t *testing.T) {
			_, err := Archive(kind, []byte("definitely not an archive"))
			assert.Error(t, err)
		})
	}
}

func TestReadMember_Limit(t *testing.T) {
	opener := func(body string) func() (io.ReadCloser, error) {
		return func() (io.ReadCloser, error) {
			return io.NopCloser(strings.NewReader(body)), nil
		}
	}

	data, err := readMember(opener("12345678"), 8)
	require.NoError(t, err)
	assert.Equal(t, "12345678", string(data))

	_, err = readMember(opener("123456789"), 8)
	assert.ErrorIs(t, err, ErrMemberTooLarge)
}

func TestArchive_ZipMemberTooLarge(t *testing.T) {
	if testing.Short() {
		t.Skip("inflates a member past MaxMemberSize")
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("huge.bin")
	require.NoError(t, err)
	chunk := bytes.Repeat([]byte{'x'}, 1<<20)
	for written := 0; written <= MaxMemberSize; written += len(chunk) {
		_, err := w.Write(chunk)
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())

	_, err = Archive(KindZip, buf.Bytes())
	require.ErrorIs(t, err, ErrMemberTooLarge)
	assert.Contains(t, err.Error(), "huge.bin")
}

func TestCleanText(t *testing.T) {
	assert.Equal(t, "a b c", cleanText("  a \n\t b   c "))
	assert.Equal(t, "ab", cleanText("a\x00b"))
}
