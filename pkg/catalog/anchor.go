package catalog

import "strings"

// StripAnchors derives the borderless form of a pattern: every ^ and then
// every $ that is neither escaped nor inside a bracket expression is removed.
//
//	StripAnchors(`^abc$`)   == `abc`
//	StripAnchors(`[\^a]$`)  == `[\^a]`
//	StripAnchors(`[^0-9]+`) == `[^0-9]+`
func StripAnchors(pattern string) string {
	return stripAnchor(stripAnchor(pattern, '^'), '$')
}

// stripAnchor scans left to right tracking backslash escapes and bracket
// expressions. A ']' directly after '[' or '[^' is a literal member of the
// class and does not close it.
func stripAnchor(pattern string, anchor byte) string {
	var b strings.Builder
	b.Grow(len(pattern))

	escaped := false
	inClass := false
	classBody := 0 // index of the first member of the current class

	for i := 0; i < len(pattern); i++ {
		c := pattern[i]
		switch {
		case escaped:
			escaped = false
		case c == '\\':
			escaped = true
		case inClass:
			if c == ']' && i > classBody {
				inClass = false
			}
		case c == '[':
			inClass = true
			classBody = i + 1
			if classBody < len(pattern) && pattern[classBody] == '^' {
				classBody++
			}
		case c == anchor:
			continue
		}
		b.WriteByte(c)
	}

	return b.String()
}
