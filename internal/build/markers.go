package build

import (
	"slices"

	"pyglue-generator/internal/common"
)

// MarkerSet records where API marker macros were found.
type MarkerSet struct {
	positions []common.Position
}

// Len returns the number of recorded markers.
func (m MarkerSet) Len() int {
	return len(m.positions)
}

// On reports whether a marker sits on the declaration: on one of its lines,
// not after its end.
func (m MarkerSet) On(span common.Span) bool {
	for _, p := range m.positions {
		if p.Line < span.Start.Line || p.Line > span.End.Line {
			continue
		}

		if p.Line == span.End.Line && !p.Before(span.End) {
			continue
		}

		return true
	}

	return false
}

// StripMarkers replaces every occurrence of the given macros with spaces.
// A macro directly followed by a parenthesized argument list is blanked
// together with it. Comments, string and character literals are left alone,
// and newlines are never touched, so positions stay valid.
func StripMarkers(source []byte, macros ...[]string) ([]byte, MarkerSet) {
	var names []string
	for _, list := range macros {
		names = append(names, list...)
	}

	out := slices.Clone(source)
	if len(names) == 0 {
		return out, MarkerSet{}
	}

	var set MarkerSet

	line, col := 1, 0

	advance := func(n int, i int) {
		for k := i; k < i+n && k < len(out); k++ {
			if out[k] == '\n' {
				line++
				col = 0
			} else {
				col++
			}
		}
	}

	for i := 0; i < len(out); {
		switch {
		case hasAt(out, i, "//"):
			n := skipUntil(out, i, "\n")
			advance(n, i)
			i += n

		case hasAt(out, i, "/*"):
			n := min(skipUntil(out, i+2, "*/")+4, len(out)-i)
			advance(n, i)
			i += n

		case out[i] == '"' || out[i] == '\'':
			n := skipLiteral(out, i)
			advance(n, i)
			i += n

		case isIdentStart(out[i]) && (i == 0 || !isIdentChar(out[i-1])):
			j := i
			for j < len(out) && isIdentChar(out[j]) {
				j++
			}

			if !slices.Contains(names, string(out[i:j])) {
				advance(j-i, i)
				i = j

				continue
			}

			set.positions = append(set.positions, common.Position{Line: line, Column: col})

			end := j
			if k := skipSpaces(out, j); k < len(out) && out[k] == '(' {
				end = matchParen(out, k)
			}

			advance(end-i, i)
			blank(out[i:end])
			i = end

		default:
			advance(1, i)
			i++
		}
	}

	return out, set
}

func blank(b []byte) {
	for i := range b {
		if b[i] != '\n' && b[i] != '\r' {
			b[i] = ' '
		}
	}
}

func hasAt(b []byte, i int, s string) bool {
	return i+len(s) <= len(b) && string(b[i:i+len(s)]) == s
}

// skipUntil returns the length from i up to (not including) the terminator,
// or up to the end of input.
func skipUntil(b []byte, i int, term string) int {
	for j := i; j < len(b); j++ {
		if hasAt(b, j, term) {
			return j - i
		}
	}

	return len(b) - i
}

func skipLiteral(b []byte, i int) int {
	quote := b[i]

	for j := i + 1; j < len(b); j++ {
		switch b[j] {
		case '\\':
			j++
		case quote, '\n':
			return j - i + 1
		}
	}

	return len(b) - i
}

func skipSpaces(b []byte, i int) int {
	for i < len(b) && (b[i] == ' ' || b[i] == '\t') {
		i++
	}

	return i
}

// matchParen returns the index just past the parenthesis closing the one at i.
func matchParen(b []byte, i int) int {
	depth := 0

	for j := i; j < len(b); j++ {
		switch b[j] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return j + 1
			}
		}
	}

	return len(b)
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentChar(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}
