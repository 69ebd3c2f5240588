package catalog

import "embed"

// builtinFS embeds the built-in pattern catalog.
//
//go:embed data/*.yml
var builtinFS embed.FS
