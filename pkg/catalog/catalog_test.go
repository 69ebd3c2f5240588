package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild_CompilesBothVariants(t *testing.T) {
	c := Build([]Definition{
		{Name: "Digits", Regex: `^[0-9]{3}$`, Rarity: 0.5, Tags: []string{"Numbers"}},
	})
	require.Equal(t, 1, c.Len())

	p := c.Patterns()[0]
	assert.Equal(t, `[0-9]{3}`, p.BorderlessSource)

	ok, err := p.Bordered.MatchString("x123x")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = p.Borderless.MatchString("x123x")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestBuild_DropsPatternsThatFailToCompile(t *testing.T) {
	c := Build([]Definition{
		{Name: "Good", Regex: `^a$`, Rarity: 0.5, Tags: []string{"keep"}},
		{Name: "Broken", Regex: `^(a$`, Rarity: 0.5, Tags: []string{"gone"}},
		{Name: "Also Good", Regex: `b`, Rarity: 0.1},
	})

	require.Equal(t, 2, c.Len())
	assert.Equal(t, "Good", c.Patterns()[0].Name)
	assert.Equal(t, "Also Good", c.Patterns()[1].Name)

	dropped := c.Dropped()
	require.Len(t, dropped, 1)
	assert.Equal(t, "Broken", dropped[0].Name)
	assert.Error(t, dropped[0].Err)

	// Tags of dropped patterns are not part of the vocabulary.
	assert.False(t, c.HasTag("gone"))
	assert.True(t, c.HasTag("keep"))
}

func TestBuild_TagUnion(t *testing.T) {
	c := Build([]Definition{
		{Name: "A", Regex: `a`, Rarity: 1, Tags: []string{"URL", " Identifiers ", "url"}},
		{Name: "B", Regex: `b`, Rarity: 1, Tags: []string{"Bug Bounty"}},
	})

	assert.Equal(t, []string{"bug bounty", "identifiers", "url"}, c.Tags())
	assert.Equal(t, []string{"url", "identifiers"}, c.Patterns()[0].Tags)

	tags := c.Tags()
	tags[0] = "mutated"
	assert.Equal(t, "bug bounty", c.Tags()[0])
}

func TestBuild_Lookahead(t *testing.T) {
	c := Build([]Definition{
		{Name: "SSN", Regex: `^(?!000)[0-8][0-9]{2}-[0-9]{2}-[0-9]{4}$`, Rarity: 0.2},
	})
	require.Equal(t, 1, c.Len())

	ok, err := c.Patterns()[0].Bordered.MatchString("000-12-3456")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLoadBuiltinCatalog(t *testing.T) {
	c, err := LoadBuiltin()
	require.NoError(t, err)
	require.NotZero(t, c.Len())
	assert.Empty(t, c.Dropped(), "builtin patterns must all compile")

	names := make(map[string]bool, c.Len())
	for _, p := range c.Patterns() {
		names[p.Name] = true
		assert.GreaterOrEqual(t, p.Rarity, 0.0, p.Name)
		assert.LessOrEqual(t, p.Rarity, 1.0, p.Name)
		assert.NotNil(t, p.Bordered, p.Name)
		assert.NotNil(t, p.Borderless, p.Name)
	}

	for _, want := range []string{
		"Ethereum (ETH) Wallet Address",
		"Turkish Identification Number",
		"Uniform Resource Locator (URL)",
		"YouTube Video ID",
	} {
		assert.True(t, names[want], "missing builtin pattern %q", want)
	}

	assert.True(t, c.HasTag("url"))
	assert.True(t, c.HasTag("identifiers"))
}

func TestBuiltinCatalog_Examples(t *testing.T) {
	c, err := LoadBuiltin()
	require.NoError(t, err)

	byName := make(map[string]int)
	for i, p := range c.Patterns() {
		byName[p.Name] = i
	}

	tests := []struct {
		pattern string
		input   string
		match   bool
	}{
		{"Ethereum (ETH) Wallet Address", "0x52908400098527886E0F7030069857D2E4169EE7", true},
		{"Ethereum (ETH) Wallet Address", "0x5290840009852788", false},
		{"Uniform Resource Locator (URL)", "test.com", true},
		{"Uniform Resource Locator (URL)", "https://example.org/path?q=1", true},
		{"YouTube Video ID", "dQw4w9WgXcQ", true},
		{"Turkish Identification Number", "52908400098", true},
		{"Turkish Identification Number", "52908400099", false},
		{"Email Address", "user@example.com", true},
		{"Internet Protocol (IP) Address Version 4", "192.168.0.1", true},
		{"Internet Protocol (IP) Address Version 4", "256.1.1.1", false},
		{"GitHub Personal Access Token", "ghp_" + "abcdefghijklmnopqrstuvwxyz0123456789", true},
	}

	for _, tt := range tests {
		t.Run(tt.pattern+"/"+tt.input, func(t *testing.T) {
			i, ok := byName[tt.pattern]
			require.True(t, ok)
			got, err := c.Patterns()[i].Bordered.MatchString(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.match, got)
		})
	}
}
