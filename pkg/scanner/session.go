// Package scanner resolves inputs (literal text, files, directories) and
// feeds their content through the extractors into the matching engine.
package scanner

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/spf13/afero"

	"github.com/what-go/what/pkg/capture"
	"github.com/what-go/what/pkg/extract"
	"github.com/what-go/what/pkg/filter"
	"github.com/what-go/what/pkg/logger"
	"github.com/what-go/what/pkg/matcher"
	"github.com/what-go/what/pkg/types"
)

// Options controls how inputs are resolved and scanned.
type Options struct {
	TreatAsText      bool           // never look the input up on disk
	Capture          bool           // read files as pcapng/pcap streams
	AllowDuplicates  bool           // report every occurrence of a literal
	Extract          []extract.Kind // container formats to unpack
	MaxDepth         int            // directory depth limit, 0 = unlimited
	RespectGitignore bool           // honour .gitignore at the directory root
	KeepGoing        bool           // record input errors and continue

	Fs     afero.Fs      // defaults to the OS filesystem
	Logger logger.Logger // defaults to a no-op logger
}

// Session is one logical scan. Every input identified through the same
// session shares one dedup store, so a literal is reported at most once
// unless duplicates are allowed. A Session is not safe for concurrent use.
type Session struct {
	engine *matcher.Engine
	filter *filter.Filter
	opts   Options
	fs     afero.Fs
	log    logger.Logger
	dedup  *matcher.Store
	errs   []error
}

// NewSession starts a scan with engine and filter.
func NewSession(engine *matcher.Engine, f *filter.Filter, opts Options) *Session {
	s := &Session{
		engine: engine,
		filter: f,
		opts:   opts,
		fs:     opts.Fs,
		log:    opts.Logger,
	}
	if s.fs == nil {
		s.fs = afero.NewOsFs()
	}
	if s.log == nil {
		s.log = logger.Nop()
	}
	if !opts.AllowDuplicates {
		s.dedup = matcher.NewStore()
	}
	s.log.Debugf("session: %s", opts)
	return s
}

// Errors returns the input errors recorded under KeepGoing.
func (s *Session) Errors() []error {
	return s.errs
}

// IdentifyInput scans input as text when TreatAsText is set or input is
// not an existing path; otherwise it scans the file or walks the directory.
// Other file types (devices, pipes, sockets) fail with ErrNotRegular.
func (s *Session) IdentifyInput(ctx context.Context, input string) ([]types.Match, error) {
	if s.opts.TreatAsText {
		return s.IdentifyText(ctx, input)
	}

	info, err := s.fs.Stat(input)
	if err != nil {
		return s.IdentifyText(ctx, input)
	}

	var matches []types.Match
	switch {
	case info.IsDir():
		err = s.walk(ctx, input, &matches)
	case info.Mode().IsRegular():
		err = s.identifyFile(ctx, input, &matches)
	default:
		err = s.fail(&InputError{Path: input, Kind: KindRead, Err: ErrNotRegular})
	}
	if err != nil {
		return nil, err
	}
	return matches, nil
}

// IdentifyText scans text directly.
func (s *Session) IdentifyText(ctx context.Context, text string) ([]types.Match, error) {
	return s.engine.Identify(ctx, text, s.filter, s.dedup)
}

func (s *Session) identify(ctx context.Context, text string, out *[]types.Match) error {
	ms, err := s.engine.Identify(ctx, text, s.filter, s.dedup)
	if err != nil {
		return err
	}
	*out = append(*out, ms...)
	return nil
}

func (s *Session) identifyFile(ctx context.Context, path string, out *[]types.Match) error {
	s.log.Debugf("identifying file %s", path)

	if s.opts.Capture {
		return s.identifyCapture(ctx, path, out)
	}

	data, err := afero.ReadFile(s.fs, path)
	if err != nil {
		return s.fail(&InputError{Path: path, Kind: KindRead, Err: err})
	}

	if kind, ok := extract.ShouldExtract(s.opts.Extract, path); ok {
		members, err := extract.Archive(kind, data)
		if err != nil {
			return s.fail(&InputError{Path: path, Kind: KindArchive, Err: err})
		}
		for _, m := range members {
			s.log.Debugf("identifying %s member %s", path, m.Name)
			if err := s.identify(ctx, extract.Text(m.Content), out); err != nil {
				return err
			}
		}
		return nil
	}

	return s.identify(ctx, extract.Text(data), out)
}

func (s *Session) identifyCapture(ctx context.Context, path string, out *[]types.Match) error {
	f, err := s.fs.Open(path)
	if err != nil {
		return s.fail(&InputError{Path: path, Kind: KindRead, Err: err})
	}
	defer f.Close()

	// Matches from blocks before a failure are kept only under KeepGoing.
	var found []types.Match
	var engineErr error
	err = capture.Stream(ctx, f, func(text string) error {
		if err := s.identify(ctx, text, &found); err != nil {
			engineErr = err
			return err
		}
		return nil
	})

	switch {
	case err == nil:
		*out = append(*out, found...)
		return nil
	case engineErr != nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
		return err
	default:
		if ferr := s.fail(&InputError{Path: path, Kind: KindCapture, Err: err}); ferr != nil {
			return ferr
		}
		*out = append(*out, found...)
		return nil
	}
}

// fail applies the error policy: halt by default, record and continue
// under KeepGoing.
func (s *Session) fail(err *InputError) error {
	if !s.opts.KeepGoing {
		return err
	}
	s.log.Errorf("%v", err)
	s.errs = append(s.errs, err)
	return nil
}

func readLines(data []byte) []string {
	lines := bytes.Split(data, []byte("\n"))
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		out = append(out, string(l))
	}
	return out
}

// String renders options for debug logging.
func (o Options) String() string {
	return fmt.Sprintf("text=%t capture=%t duplicates=%t extract=%v depth=%d gitignore=%t keep-going=%t",
		o.TreatAsText, o.Capture, o.AllowDuplicates, o.Extract, o.MaxDepth, o.RespectGitignore, o.KeepGoing)
}
