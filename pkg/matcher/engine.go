package matcher

import (
	"context"
	"runtime"
	"strings"
	"sync"

	"github.com/dlclark/regexp2"
	"golang.org/x/sync/errgroup"

	"github.com/what-go/what/pkg/catalog"
	"github.com/what-go/what/pkg/filter"
	"github.com/what-go/what/pkg/logger"
	"github.com/what-go/what/pkg/prefilter"
	"github.com/what-go/what/pkg/types"
)

// Engine runs catalog patterns over text. It holds no per-scan state and
// may be used from several goroutines at once.
type Engine struct {
	catalog   *catalog.Catalog
	prefilter *prefilter.Prefilter
	workers   int
	log       logger.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithWorkers bounds how many patterns run concurrently. Values below one
// select runtime.GOMAXPROCS(0).
func WithWorkers(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.workers = n
		}
	}
}

// WithLogger sets the logger used for pattern timeouts and errors.
func WithLogger(l logger.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// WithoutPrefilter runs every eligible pattern regardless of keywords.
func WithoutPrefilter() Option {
	return func(e *Engine) {
		e.prefilter = nil
	}
}

// New creates an Engine over cat.
func New(cat *catalog.Catalog, opts ...Option) *Engine {
	e := &Engine{
		catalog:   cat,
		prefilter: prefilter.New(cat.Patterns()),
		workers:   runtime.GOMAXPROCS(0),
		log:       logger.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.prefilter != nil {
		e.log.Debugf("prefilter: %d keywords over %d patterns", len(e.prefilter.Keywords()), cat.Len())
	}
	return e
}

// Catalog returns the catalog the engine matches against.
func (e *Engine) Catalog() *catalog.Catalog {
	return e.catalog
}

// Identify reports every match of every pattern admitted by f. With a
// non-nil dedup store a literal already in the store is skipped and new
// literals are added to it; a nil store reports every occurrence.
// Results are returned only after all patterns have finished, in no
// particular order.
func (e *Engine) Identify(ctx context.Context, text string, f *filter.Filter, dedup *Store) ([]types.Match, error) {
	var acc accumulator

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)

	for _, p := range e.candidates(text) {
		if f.IsExcluded(p) {
			continue
		}
		re := p.Regexp(f.Borderless())

		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			acc.add(e.scan(p, re, text, dedup))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return acc.matches, nil
}

// candidates narrows the catalog with the keyword prefilter.
func (e *Engine) candidates(text string) []*types.Pattern {
	if e.prefilter == nil {
		return e.catalog.Patterns()
	}
	return e.prefilter.Filter([]byte(text))
}

// scan collects the non-overlapping, leftmost-first matches of one pattern.
// A regex timeout keeps what was found so far and skips the rest of the
// text for this pattern.
func (e *Engine) scan(p *types.Pattern, re *regexp2.Regexp, text string, dedup *Store) []types.Match {
	var out []types.Match

	m, err := re.FindStringMatch(text)
	for m != nil && err == nil {
		if m.Length > 0 {
			literal := m.String()
			if dedup == nil || dedup.Add(literal) {
				out = append(out, types.NewMatch(p, literal))
			}
		}
		m, err = re.FindNextMatch(m)
	}

	if err != nil {
		if strings.Contains(err.Error(), "match timeout") {
			e.log.Warnf("pattern %q regex timeout on content (skipping pattern for this input)", p.Name)
		} else {
			e.log.Warnf("pattern %q regex error (skipping pattern for this input): %v", p.Name, err)
		}
	}
	return out
}

// accumulator gathers per-pattern results behind a lock.
type accumulator struct {
	mu      sync.Mutex
	matches []types.Match
}

func (a *accumulator) add(ms []types.Match) {
	if len(ms) == 0 {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.matches = append(a.matches, ms...)
}
