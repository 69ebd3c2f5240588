package catalog

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Definition is a raw catalog record before compilation.
type Definition struct {
	Name        string
	Regex       string
	Rarity      float64
	Tags        []string
	Description string
	Exploit     string
	URL         string
}

// Loader reads catalog definitions from YAML or JSON sources.
type Loader struct {
	fs fs.FS // embedded filesystem for the built-in catalog
}

// NewLoader creates a loader backed by the embedded built-in catalog.
func NewLoader() *Loader {
	return &Loader{
		fs: builtinFS,
	}
}

// NewLoaderWithFS creates a loader with a custom filesystem. Files under
// data/ with a .yml, .yaml or .json extension are treated as built-ins.
func NewLoaderWithFS(fsys fs.FS) *Loader {
	return &Loader{
		fs: fsys,
	}
}

// Load parses catalog definitions from YAML or JSON bytes.
func (l *Loader) Load(data []byte) ([]Definition, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, fmt.Errorf("%w: empty document", ErrMalformed)
	}

	var records []yamlPattern
	root := doc.Content[0]
	switch root.Kind {
	case yaml.SequenceNode:
		if err := root.Decode(&records); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
	case yaml.MappingNode:
		var file yamlCatalogFile
		if err := root.Decode(&file); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		records = file.Patterns
	default:
		return nil, fmt.Errorf("%w: expected a list of patterns", ErrMalformed)
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("%w: no patterns found", ErrMalformed)
	}

	defs := make([]Definition, 0, len(records))
	for i, yp := range records {
		if err := validateRecord(i, yp); err != nil {
			return nil, err
		}
		defs = append(defs, convertYAMLPattern(yp))
	}
	return defs, nil
}

// LoadFile loads catalog definitions from a file path.
func (l *Loader) LoadFile(path string) ([]Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", path, err)
	}
	defs, err := l.Load(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return defs, nil
}

// LoadBuiltin loads all catalog files from the loader's filesystem.
func (l *Loader) LoadBuiltin() ([]Definition, error) {
	var defs []Definition

	err := fs.WalkDir(l.fs, "data", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !isCatalogFile(path) {
			return nil
		}

		data, err := fs.ReadFile(l.fs, path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}

		fileDefs, err := l.Load(data)
		if err != nil {
			return fmt.Errorf("failed to parse %s: %w", path, err)
		}
		defs = append(defs, fileDefs...)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return defs, nil
}

func isCatalogFile(path string) bool {
	switch filepath.Ext(path) {
	case ".yml", ".yaml", ".json":
		return true
	}
	return false
}

// convertYAMLPattern converts a validated yamlPattern to a Definition.
func convertYAMLPattern(yp yamlPattern) Definition {
	return Definition{
		Name:        yp.Name,
		Regex:       yp.Regex,
		Rarity:      *yp.Rarity,
		Tags:        yp.Tags,
		Description: yp.Description,
		Exploit:     yp.Exploit,
		URL:         yp.URL,
	}
}
