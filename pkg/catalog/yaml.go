package catalog

// yamlPattern is the intermediate struct for one catalog record. The field
// names match the regex.json layout the catalog was seeded from, so JSON
// catalogs load through the same path (JSON is a subset of YAML).
type yamlPattern struct {
	Name        string   `yaml:"name"`
	Regex       string   `yaml:"regex"`
	Rarity      *float64 `yaml:"rarity"`
	Description string   `yaml:"description,omitempty"`
	Exploit     string   `yaml:"exploit,omitempty"`
	URL         string   `yaml:"url,omitempty"`
	Tags        []string `yaml:"tags,omitempty"`
	PluralName  bool     `yaml:"plural_name,omitempty"`
}

// yamlCatalogFile is the top-level structure of a catalog file with a
// "patterns" key. A bare top-level sequence is accepted as well.
type yamlCatalogFile struct {
	Patterns []yamlPattern `yaml:"patterns"`
}
