package prefilter

import (
	"regexp/syntax"
	"unicode/utf8"
)

// MinKeywordLength is the shortest prefix worth a keyword.
const MinKeywordLength = 3

// Keyword returns the case-sensitive literal every match of expr must
// start with, or "" when there is none of at least MinKeywordLength bytes.
// Expressions the RE2 parser rejects (lookaround, backreferences) have no
// keyword.
func Keyword(expr string) string {
	re, err := syntax.Parse(expr, syntax.Perl)
	if err != nil {
		return ""
	}
	re = re.Simplify()

	var prefix []byte
	collect(re, &prefix)
	if len(prefix) < MinKeywordLength {
		return ""
	}
	return string(prefix)
}

// collect appends the leading literal of re to prefix and reports whether
// the whole of re was literal, so a caller may keep going.
func collect(re *syntax.Regexp, prefix *[]byte) bool {
	switch re.Op {
	case syntax.OpLiteral:
		if re.Flags&syntax.FoldCase != 0 {
			return false
		}
		for _, r := range re.Rune {
			*prefix = utf8.AppendRune(*prefix, r)
		}
		return true
	case syntax.OpBeginText, syntax.OpBeginLine, syntax.OpEmptyMatch:
		return true
	case syntax.OpCapture:
		return collect(re.Sub[0], prefix)
	case syntax.OpConcat:
		for _, sub := range re.Sub {
			if !collect(sub, prefix) {
				return false
			}
		}
		return true
	default:
		return false
	}
}
