// Package what identifies what a piece of text, a file, a directory or a
// network capture contains.
//
// Inputs are classified against a catalog of named patterns: cryptocurrency
// addresses, network identifiers, URLs, API tokens and more. Every pattern
// carries a rarity in [0,1] and a set of tags, and callers narrow a scan with
// a rarity range and include/exclude tag lists.
//
// # Basic Usage
//
// Create an identifier with the builtin catalog and identify a string:
//
//	id, err := what.NewIdentifier()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	matches, err := id.Identify(ctx, "0x52908400098527886E0F7030069857D2E4169EE7")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	for _, m := range matches {
//	    fmt.Printf("%s: %s\n", m.Name, m.MatchedOn)
//	}
//
// # Filtering
//
// Widen the rarity range and restrict results to tagged patterns:
//
//	id, err := what.NewIdentifier(what.WithFilter(what.FilterConfig{
//	    Rarity:     "0:1",
//	    Borderless: true,
//	    Include:    "cryptocurrency wallet",
//	}))
//
// Identify treats an input that names an existing file or directory as a
// path; anything else is scanned as literal text.
package what

import (
	"context"
	"fmt"

	"github.com/what-go/what/pkg/catalog"
	"github.com/what-go/what/pkg/filter"
	"github.com/what-go/what/pkg/logger"
	"github.com/what-go/what/pkg/matcher"
	"github.com/what-go/what/pkg/scanner"
	"github.com/what-go/what/pkg/types"
)

// Re-export commonly used types so callers can import just this package.
type (
	// Match is a single identification result.
	Match = types.Match

	// Pattern is a compiled catalog entry.
	Pattern = types.Pattern

	// Catalog is an immutable, compiled set of patterns.
	Catalog = catalog.Catalog

	// FilterConfig holds the rarity range, borderless flag and tag lists.
	FilterConfig = filter.Config

	// ScanOptions controls input resolution and error policy.
	ScanOptions = scanner.Options

	// InputError reports a read, capture or archive failure on one input.
	InputError = scanner.InputError

	// UnknownTagsError lists filter tags absent from the catalog.
	UnknownTagsError = filter.UnknownTagsError
)

// DefaultFilter is the filter used when WithFilter is not given: the
// default rarity range with borderless matching.
var DefaultFilter = FilterConfig{
	Rarity:     filter.DefaultRarity,
	Borderless: true,
}

// Identifier runs identifications against one catalog and one filter.
// It is safe for concurrent use; each Identify call is its own session.
type Identifier struct {
	catalog *catalog.Catalog
	engine  *matcher.Engine
	filter  *filter.Filter
	opts    scanner.Options
}

type identifierConfig struct {
	catalog *catalog.Catalog
	filter  FilterConfig
	scan    scanner.Options
	log     logger.Logger
	workers int
}

// Option configures an Identifier.
type Option func(*identifierConfig)

// WithCatalog uses c instead of the builtin catalog.
func WithCatalog(c *Catalog) Option {
	return func(cfg *identifierConfig) {
		cfg.catalog = c
	}
}

// WithFilter replaces DefaultFilter.
func WithFilter(f FilterConfig) Option {
	return func(cfg *identifierConfig) {
		cfg.filter = f
	}
}

// WithScanOptions sets how inputs are resolved and how input errors are
// handled. The Logger field is overridden by WithLogger when both are given.
func WithScanOptions(opts ScanOptions) Option {
	return func(cfg *identifierConfig) {
		cfg.scan = opts
	}
}

// WithLogger routes engine and traversal diagnostics to l.
func WithLogger(l logger.Logger) Option {
	return func(cfg *identifierConfig) {
		cfg.log = l
	}
}

// WithWorkers bounds the number of patterns matched concurrently.
// Default is GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(cfg *identifierConfig) {
		cfg.workers = n
	}
}

// NewIdentifier creates an Identifier with the given options.
//
// By default it:
//   - uses the builtin catalog
//   - matches borderless with rarity in [0.1, 1]
//   - reports each matched literal once per Identify call
//
// A filter naming tags that the catalog does not carry fails with
// *UnknownTagsError.
func NewIdentifier(opts ...Option) (*Identifier, error) {
	cfg := &identifierConfig{filter: DefaultFilter}
	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.catalog == nil {
		c, err := catalog.LoadBuiltin()
		if err != nil {
			return nil, fmt.Errorf("creating identifier: %w", err)
		}
		cfg.catalog = c
	}

	f, err := filter.New(cfg.filter, cfg.catalog)
	if err != nil {
		return nil, err
	}

	if cfg.log != nil {
		cfg.scan.Logger = cfg.log
	}
	log := cfg.scan.Logger
	if log == nil {
		log = logger.Nop()
	}

	engineOpts := []matcher.Option{matcher.WithLogger(log)}
	if cfg.workers > 0 {
		engineOpts = append(engineOpts, matcher.WithWorkers(cfg.workers))
	}

	return &Identifier{
		catalog: cfg.catalog,
		engine:  matcher.New(cfg.catalog, engineOpts...),
		filter:  f,
		opts:    cfg.scan,
	}, nil
}

// Identify scans one input and returns its matches in discovery order.
//
// Example:
//
//	matches, err := id.Identify(ctx, "/var/log/app")
func (id *Identifier) Identify(ctx context.Context, input string) ([]Match, error) {
	return id.NewSession().IdentifyInput(ctx, input)
}

// IdentifyText scans text without looking it up on disk.
func (id *Identifier) IdentifyText(ctx context.Context, text string) ([]Match, error) {
	return id.NewSession().IdentifyText(ctx, text)
}

// NewSession starts a session sharing one dedup store across several
// inputs. Use it to read the errors recorded under KeepGoing.
func (id *Identifier) NewSession() *scanner.Session {
	return scanner.NewSession(id.engine, id.filter, id.opts)
}

// Catalog returns the catalog in use.
func (id *Identifier) Catalog() *Catalog {
	return id.catalog
}

// Tags returns the sorted tag vocabulary of the catalog in use.
func (id *Identifier) Tags() []string {
	return id.catalog.Tags()
}

// LoadBuiltinCatalog returns the embedded catalog.
func LoadBuiltinCatalog() (*Catalog, error) {
	return catalog.LoadBuiltin()
}

// LoadCatalogFile loads a YAML or JSON catalog from path.
//
// Example:
//
//	c, err := what.LoadCatalogFile("patterns.yml")
//	if err != nil {
//	    return err
//	}
//	id, err := what.NewIdentifier(what.WithCatalog(c))
func LoadCatalogFile(path string) (*Catalog, error) {
	return catalog.LoadFile(path)
}
