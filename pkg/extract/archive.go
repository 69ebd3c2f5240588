package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"slices"
	"strings"
	"unicode"

	"github.com/bodgit/sevenzip"
	"github.com/ledongthuc/pdf"
)

// Kind identifies a container format whose members can be scanned.
type Kind string

const (
	KindZip  Kind = "zip"
	Kind7z   Kind = "7z"
	KindPDF  Kind = "pdf"
	KindDOCX Kind = "docx"
	KindXLSX Kind = "xlsx"
)

// AllKinds lists every supported container format.
var AllKinds = []Kind{KindZip, Kind7z, KindPDF, KindDOCX, KindXLSX}

// MaxMemberSize caps how much of a single member is read into memory.
const MaxMemberSize = 64 << 20

// ErrMemberTooLarge is returned for a member larger than MaxMemberSize.
var ErrMemberTooLarge = errors.New("archive member too large")

// Member is one piece of content pulled out of a container.
type Member struct {
	Name    string // path within the container, or "content" for documents
	Content []byte
}

// ParseKinds parses a comma-separated list of kinds. "all" selects every
// kind; an empty string selects none.
func ParseKinds(csv string) ([]Kind, error) {
	var kinds []Kind
	for _, part := range strings.Split(csv, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		switch {
		case part == "":
			continue
		case part == "all":
			return slices.Clone(AllKinds), nil
		case slices.Contains(AllKinds, Kind(part)):
			if !slices.Contains(kinds, Kind(part)) {
				kinds = append(kinds, Kind(part))
			}
		default:
			return nil, fmt.Errorf("unsupported extract type %q (supported: zip, 7z, pdf, docx, xlsx, all)", part)
		}
	}
	return kinds, nil
}

// KindOf returns the container kind implied by the path extension.
func KindOf(path string) (Kind, bool) {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	kind := Kind(ext)
	return kind, slices.Contains(AllKinds, kind)
}

// ShouldExtract reports whether path has one of the enabled kinds.
func ShouldExtract(enabled []Kind, path string) (Kind, bool) {
	kind, ok := KindOf(path)
	if !ok || !slices.Contains(enabled, kind) {
		return "", false
	}
	return kind, true
}

// Archive pulls members out of content according to kind. Zip and 7z
// members are returned as raw bytes; documents are reduced to their text.
func Archive(kind Kind, content []byte) ([]Member, error) {
	switch kind {
	case KindZip:
		return extractZip(content)
	case Kind7z:
		return extract7z(content)
	case KindPDF:
		return extractPDF(content)
	case KindDOCX:
		return extractDOCX(content)
	case KindXLSX:
		return extractXLSX(content)
	default:
		return nil, fmt.Errorf("unsupported file type: %s", kind)
	}
}

func extractZip(content []byte) ([]Member, error) {
	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, fmt.Errorf("failed to open zip: %w", err)
	}

	var members []Member
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		data, err := readMember(f.Open, MaxMemberSize)
		if err != nil {
			return nil, fmt.Errorf("zip member %s: %w", f.Name, err)
		}
		members = append(members, Member{Name: f.Name, Content: data})
	}
	return members, nil
}

func extract7z(content []byte) ([]Member, error) {
	zr, err := sevenzip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, fmt.Errorf("failed to open 7z: %w", err)
	}

	var members []Member
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		data, err := readMember(f.Open, MaxMemberSize)
		if err != nil {
			return nil, fmt.Errorf("7z member %s: %w", f.Name, err)
		}
		members = append(members, Member{Name: f.Name, Content: data})
	}
	return members, nil
}

// readMember reads one member in full. A member over limit bytes is an
// error rather than a truncated read.
func readMember(open func() (io.ReadCloser, error), limit int64) ([]byte, error) {
	rc, err := open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: exceeds %d bytes", ErrMemberTooLarge, limit)
	}
	return data, nil
}

// extractXLSX extracts text from shared strings and sheet XML.
func extractXLSX(content []byte) ([]Member, error) {
	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, fmt.Errorf("failed to open xlsx as zip: %w", err)
	}

	var members []Member
	for _, f := range zr.File {
		isSheet := strings.HasPrefix(f.Name, "xl/worksheets/sheet") && strings.HasSuffix(f.Name, ".xml")
		if f.Name != "xl/sharedStrings.xml" && !isSheet {
			continue
		}
		data, err := readMember(f.Open, MaxMemberSize)
		if errors.Is(err, ErrMemberTooLarge) {
			return nil, fmt.Errorf("%s: %w", f.Name, err)
		}
		if err != nil {
			continue
		}
		if text := extractXMLText(data); len(text) > 0 {
			members = append(members, Member{Name: f.Name, Content: []byte(text)})
		}
	}
	return members, nil
}

// extractDOCX extracts text from word/document.xml.
func extractDOCX(content []byte) ([]Member, error) {
	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, fmt.Errorf("failed to open docx as zip: %w", err)
	}

	var members []Member
	for _, f := range zr.File {
		if f.Name != "word/document.xml" {
			continue
		}
		data, err := readMember(f.Open, MaxMemberSize)
		if errors.Is(err, ErrMemberTooLarge) {
			return nil, fmt.Errorf("%s: %w", f.Name, err)
		}
		if err != nil {
			continue
		}
		if text := extractXMLText(data); len(text) > 0 {
			members = append(members, Member{Name: f.Name, Content: []byte(text)})
		}
	}
	return members, nil
}

// extractPDF extracts the plain text of every page.
func extractPDF(content []byte) ([]Member, error) {
	r, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}

	var text strings.Builder
	for pageNum := 1; pageNum <= r.NumPage(); pageNum++ {
		page := r.Page(pageNum)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		text.WriteString(pageText)
		text.WriteString("\n")
	}

	if strings.TrimSpace(text.String()) == "" {
		return nil, nil
	}
	return []Member{{Name: "content", Content: []byte(text.String())}}, nil
}

// extractXMLText collects the non-blank character data of an XML document.
func extractXMLText(data []byte) string {
	var text strings.Builder
	decoder := xml.NewDecoder(bytes.NewReader(data))

	for {
		token, err := decoder.Token()
		if err != nil {
			break
		}
		cd, ok := token.(xml.CharData)
		if !ok || strings.TrimSpace(string(cd)) == "" {
			continue
		}
		if text.Len() > 0 {
			text.WriteString(" ")
		}
		text.WriteString(cleanText(string(cd)))
	}

	return text.String()
}

// cleanText collapses whitespace and drops non-printable runes.
func cleanText(s string) string {
	var result strings.Builder
	lastSpace := false

	for _, r := range s {
		switch {
		case unicode.IsSpace(r):
			if !lastSpace {
				result.WriteRune(' ')
				lastSpace = true
			}
		case unicode.IsPrint(r):
			result.WriteRune(r)
			lastSpace = false
		}
	}

	return strings.TrimSpace(result.String())
}
