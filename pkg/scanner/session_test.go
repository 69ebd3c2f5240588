package scanner

import (
	"archive/zip"
	"bytes"
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/what-go/what/pkg/capture"
	"github.com/what-go/what/pkg/catalog"
	"github.com/what-go/what/pkg/extract"
	"github.com/what-go/what/pkg/filter"
	"github.com/what-go/what/pkg/logger"
	"github.com/what-go/what/pkg/matcher"
	"github.com/what-go/what/pkg/types"
)

const ethAddress = "0x52908400098527886E0F7030069857D2E4169EE7"

type fixture struct {
	engine *matcher.Engine
	filter *filter.Filter
	fs     afero.Fs
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	c, err := catalog.LoadBuiltin()
	require.NoError(t, err)
	f, err := filter.New(filter.Config{Borderless: true}, c)
	require.NoError(t, err)
	return &fixture{engine: matcher.New(c), filter: f, fs: afero.NewMemMapFs()}
}

func (fx *fixture) write(t *testing.T, path string, data []byte) {
	t.Helper()
	require.NoError(t, fx.fs.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, afero.WriteFile(fx.fs, path, data, 0o644))
}

func (fx *fixture) session(opts Options) *Session {
	if opts.Fs == nil {
		opts.Fs = fx.fs
	}
	return NewSession(fx.engine, fx.filter, opts)
}

func count(ms []types.Match, literal string) int {
	n := 0
	for _, m := range ms {
		if m.MatchedOn == literal {
			n++
		}
	}
	return n
}

func pcapng(t *testing.T, packets ...string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w, err := pcapgo.NewNgWriter(&buf, layers.LinkTypeEthernet)
	require.NoError(t, err)
	for _, p := range packets {
		ci := gopacket.CaptureInfo{Timestamp: time.Unix(1700000000, 0), CaptureLength: len(p), Length: len(p)}
		require.NoError(t, w.WritePacket(ci, []byte(p)))
	}
	require.NoError(t, w.Flush())
	return buf.Bytes()
}

type failingFs struct {
	afero.Fs
	name string
}

func (f failingFs) Open(name string) (afero.File, error) {
	if filepath.Base(name) == f.name {
		return nil, os.ErrPermission
	}
	return f.Fs.Open(name)
}

func TestIdentifyInput_TextWhenPathMissing(t *testing.T) {
	fx := newFixture(t)
	ms, err := fx.session(Options{}).IdentifyInput(context.Background(), ethAddress)
	require.NoError(t, err)
	assert.Equal(t, 1, count(ms, ethAddress))
}

func TestIdentifyInput_TreatAsText(t *testing.T) {
	fx := newFixture(t)
	fx.write(t, "/data/wallet.bin", []byte("\x00\x01"+ethAddress+"\x02"))

	ms, err := fx.session(Options{TreatAsText: true}).IdentifyInput(context.Background(), "/data/wallet.bin")
	require.NoError(t, err)
	assert.Zero(t, count(ms, ethAddress))

	ms, err = fx.session(Options{}).IdentifyInput(context.Background(), "/data/wallet.bin")
	require.NoError(t, err)
	assert.Equal(t, 1, count(ms, ethAddress))
}

func TestIdentifyInput_DirectoryDedup(t *testing.T) {
	fx := newFixture(t)
	fx.write(t, "/scan/a.txt", []byte("first "+ethAddress))
	fx.write(t, "/scan/nested/deeper/b.txt", []byte("\xff\xfe"+ethAddress))

	ms, err := fx.session(Options{}).IdentifyInput(context.Background(), "/scan")
	require.NoError(t, err)
	assert.Equal(t, 1, count(ms, ethAddress))

	ms, err = fx.session(Options{AllowDuplicates: true}).IdentifyInput(context.Background(), "/scan")
	require.NoError(t, err)
	assert.Equal(t, 2, count(ms, ethAddress))
}

func TestSession_DedupSpansInputs(t *testing.T) {
	fx := newFixture(t)
	s := fx.session(Options{})

	first, err := s.IdentifyInput(context.Background(), ethAddress)
	require.NoError(t, err)
	assert.Equal(t, 1, count(first, ethAddress))

	second, err := s.IdentifyInput(context.Background(), ethAddress)
	require.NoError(t, err)
	assert.Zero(t, count(second, ethAddress))
}

func TestIdentifyInput_MaxDepth(t *testing.T) {
	fx := newFixture(t)
	fx.write(t, "/scan/one/a.txt", []byte(ethAddress))
	fx.write(t, "/scan/one/two/b.txt", []byte("0x0000000000000000000000000000000000000001"))

	ms, err := fx.session(Options{MaxDepth: 1}).IdentifyInput(context.Background(), "/scan")
	require.NoError(t, err)
	assert.Equal(t, 1, count(ms, ethAddress))
	assert.Zero(t, count(ms, "0x0000000000000000000000000000000000000001"))
}

func TestIdentifyInput_Gitignore(t *testing.T) {
	fx := newFixture(t)
	fx.write(t, "/repo/.gitignore", []byte("vendor/\n*.log\n"))
	fx.write(t, "/repo/main.txt", []byte(ethAddress))
	fx.write(t, "/repo/debug.log", []byte("0x0000000000000000000000000000000000000001"))
	fx.write(t, "/repo/vendor/dep.txt", []byte("0x0000000000000000000000000000000000000002"))

	ms, err := fx.session(Options{RespectGitignore: true}).IdentifyInput(context.Background(), "/repo")
	require.NoError(t, err)
	assert.Equal(t, 1, count(ms, ethAddress))
	assert.Zero(t, count(ms, "0x0000000000000000000000000000000000000001"))
	assert.Zero(t, count(ms, "0x0000000000000000000000000000000000000002"))

	ms, err = fx.session(Options{}).IdentifyInput(context.Background(), "/repo")
	require.NoError(t, err)
	assert.Equal(t, 1, count(ms, "0x0000000000000000000000000000000000000002"))
}

func TestIdentifyInput_Capture(t *testing.T) {
	fx := newFixture(t)
	fx.write(t, "/caps/traffic.pcapng", pcapng(t, "GET /pay?to="+ethAddress+" HTTP/1.1", "noise"))

	ms, err := fx.session(Options{Capture: true}).IdentifyInput(context.Background(), "/caps/traffic.pcapng")
	require.NoError(t, err)
	assert.Equal(t, 1, count(ms, ethAddress))
}

func TestIdentifyInput_CorruptCaptureHalts(t *testing.T) {
	fx := newFixture(t)
	data := pcapng(t, ethAddress)
	fx.write(t, "/caps/bad.pcapng", data[:len(data)-5])

	_, err := fx.session(Options{Capture: true}).IdentifyInput(context.Background(), "/caps/bad.pcapng")
	require.Error(t, err)

	var inputErr *InputError
	require.ErrorAs(t, err, &inputErr)
	assert.Equal(t, KindCapture, inputErr.Kind)
	assert.Equal(t, "/caps/bad.pcapng", inputErr.Path)
	assert.ErrorIs(t, err, capture.ErrUnexpectedEOF)
}

func TestIdentifyInput_KeepGoing(t *testing.T) {
	fx := newFixture(t)
	data := pcapng(t, "0x0000000000000000000000000000000000000001")
	fx.write(t, "/caps/a-bad.pcapng", append(data, 0x06, 0x00))
	fx.write(t, "/caps/b-good.pcapng", pcapng(t, ethAddress))

	s := fx.session(Options{Capture: true, KeepGoing: true})
	ms, err := s.IdentifyInput(context.Background(), "/caps")
	require.NoError(t, err)

	assert.Equal(t, 1, count(ms, ethAddress))
	assert.Equal(t, 1, count(ms, "0x0000000000000000000000000000000000000001"), "partial results kept")
	require.Len(t, s.Errors(), 1)

	var inputErr *InputError
	require.ErrorAs(t, s.Errors()[0], &inputErr)
	assert.Equal(t, KindCapture, inputErr.Kind)
}

func TestIdentifyInput_UnreadableFile(t *testing.T) {
	fx := newFixture(t)
	fx.write(t, "/scan/locked.txt", []byte(ethAddress))
	fx.write(t, "/scan/open.txt", []byte("0x0000000000000000000000000000000000000001"))
	fs := failingFs{Fs: fx.fs, name: "locked.txt"}

	_, err := fx.session(Options{Fs: fs}).IdentifyInput(context.Background(), "/scan")
	var inputErr *InputError
	require.ErrorAs(t, err, &inputErr)
	assert.Equal(t, KindRead, inputErr.Kind)
	assert.ErrorIs(t, err, os.ErrPermission)

	s := fx.session(Options{Fs: fs, KeepGoing: true})
	ms, err := s.IdentifyInput(context.Background(), "/scan")
	require.NoError(t, err)
	assert.Equal(t, 1, count(ms, "0x0000000000000000000000000000000000000001"))
	assert.Len(t, s.Errors(), 1)
}

func TestIdentifyInput_ExtractZip(t *testing.T) {
	fx := newFixture(t)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("inner/secret.txt")
	require.NoError(t, err)
	_, err = w.Write([]byte("wallet " + ethAddress))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	fx.write(t, "/scan/bundle.zip", buf.Bytes())

	ms, err := fx.session(Options{Extract: []extract.Kind{extract.KindZip}}).IdentifyInput(context.Background(), "/scan/bundle.zip")
	require.NoError(t, err)
	assert.Equal(t, 1, count(ms, ethAddress))

	fx.write(t, "/scan/broken.zip", []byte("not a zip"))
	_, err = fx.session(Options{Extract: extract.AllKinds}).IdentifyInput(context.Background(), "/scan/broken.zip")
	var inputErr *InputError
	require.ErrorAs(t, err, &inputErr)
	assert.Equal(t, KindArchive, inputErr.Kind)
}

func TestIdentifyInput_SymlinkCycle(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need privileges on windows")
	}

	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "wallet.txt"), []byte(ethAddress), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "sub"), 0o755))
	require.NoError(t, os.Symlink(root, filepath.Join(root, "sub", "loop")))

	fx := newFixture(t)
	s := NewSession(fx.engine, fx.filter, Options{AllowDuplicates: true, Fs: afero.NewOsFs()})

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	ms, err := s.IdentifyInput(ctx, root)
	require.NoError(t, err)
	assert.Equal(t, 1, count(ms, ethAddress))
}

func TestIdentifyInput_Canceled(t *testing.T) {
	fx := newFixture(t)
	fx.write(t, "/scan/a.txt", []byte(ethAddress))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := fx.session(Options{}).IdentifyInput(ctx, "/scan")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewSession_LogsOptions(t *testing.T) {
	fx := newFixture(t)
	var buf bytes.Buffer
	fx.session(Options{MaxDepth: 2, KeepGoing: true, Logger: logger.NewConsole(&buf, logger.LevelDebug)})

	assert.Contains(t, buf.String(), "session: ")
	assert.Contains(t, buf.String(), "depth=2")
	assert.Contains(t, buf.String(), "keep-going=true")
}

func TestInputError(t *testing.T) {
	err := &InputError{Path: "/x", Kind: KindCapture, Err: capture.ErrMalformedBlock}
	assert.Equal(t, "capture error on /x: malformed capture block", err.Error())
	assert.ErrorIs(t, err, capture.ErrMalformedBlock)
	assert.Equal(t, "read", KindRead.String())
	assert.Equal(t, "archive", KindArchive.String())
}
