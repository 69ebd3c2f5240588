package types

// Match is a single identification result. It is a plain value: two matches
// with the same fields are interchangeable.
type Match struct {
	MatchedOn   string  `json:"matched_on"`
	Name        string  `json:"name"`
	Rarity      float64 `json:"rarity"`
	Description string  `json:"description,omitempty"`
	Link        string  `json:"link,omitempty"`
	Exploit     string  `json:"exploit,omitempty"`
}

// NewMatch copies the display metadata of p into a match for text.
func NewMatch(p *Pattern, text string) Match {
	return Match{
		MatchedOn:   text,
		Name:        p.Name,
		Rarity:      p.Rarity,
		Description: p.Description,
		Link:        p.URL,
		Exploit:     p.Exploit,
	}
}
