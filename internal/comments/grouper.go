// Package comments groups source comment lines into declaration docstrings,
// end-of-line comments and code regions.
//
// Two strategies exist. Leading walks upward from a declaration over the
// contiguous run of "//" lines. Inside struct and enum bodies, Regions pairs
// lone "//" marker lines: the lines between two markers form the title of a
// code region, and LeadingInBody stops at a marker so a region title never
// becomes a member docstring.
//
// Every comment line is consumed at most once; a line claimed by one
// declaration or region is invisible to later lookups.
package comments

import (
	"strings"

	"pyglue-generator/internal/common"
)

// Token is the line comment token.
const Token = "//"

// Region is a code region recovered from a body.
type Region struct {
	Title string
	// Line is the line of the opening marker, EndLine of the closing one.
	Line    int
	EndLine int
}

// Grouper answers comment queries over one source file. Lines are 1-based.
type Grouper struct {
	lines []string
	used  map[int]struct{}
}

// New splits source into lines.
func New(source []byte) *Grouper {
	text := strings.ReplaceAll(string(source), "\r\n", "\n")

	return &Grouper{
		lines: strings.Split(text, "\n"),
		used:  map[int]struct{}{},
	}
}

// Line returns the text of a 1-based line, or "" when out of range.
func (g *Grouper) Line(n int) string {
	if n < 1 || n > len(g.lines) {
		return ""
	}

	return g.lines[n-1]
}

// Consumed reports whether a line was claimed.
func (g *Grouper) Consumed(n int) bool {
	_, ok := g.used[n]
	return ok
}

func (g *Grouper) consume(from, to int) {
	for n := from; n <= to; n++ {
		g.used[n] = struct{}{}
	}
}

// Leading returns the comment run directly above line and claims it.
func (g *Grouper) Leading(line int) string {
	return g.leading(line, false)
}

// LeadingInBody is Leading for body members: the run stops at a lone marker.
func (g *Grouper) LeadingInBody(line int) string {
	return g.leading(line, true)
}

func (g *Grouper) leading(line int, stopAtMarker bool) string {
	first := line

	for n := line - 1; n >= 1; n-- {
		if g.Consumed(n) || !isComment(g.Line(n)) {
			break
		}

		if stopAtMarker && isMarker(g.Line(n)) {
			break
		}

		first = n
	}

	if first == line {
		return ""
	}

	texts := make([]string, 0, line-first)
	for n := first; n < line; n++ {
		texts = append(texts, commentText(g.Line(n)))
	}

	g.consume(first, line-1)

	return trimBlankEdges(texts)
}

// EOL returns the "//" comment following end on its line. Separators between
// the declaration and the comment (";", ",") are skipped.
func (g *Grouper) EOL(end common.Position) string {
	text := g.Line(end.Line)
	if end.Column > len(text) {
		return ""
	}

	rest := strings.TrimLeft(text[end.Column:], " \t;,")
	if !strings.HasPrefix(rest, Token) {
		return ""
	}

	return commentText(rest)
}

// Regions pairs lone markers strictly between the two body lines and claims
// the lines of every complete region. A non-comment line inside a pending
// region discards it; an unterminated region is discarded too. Lines inside
// a skipped span belong to a nested body and are left for its own lookup.
func (g *Grouper) Regions(bodyStart, bodyEnd int, skip ...common.Span) []Region {
	var (
		out     []Region
		open    = -1
		content []string
	)

	for n := bodyStart + 1; n < bodyEnd; n++ {
		text := g.Line(n)

		if end, ok := skipped(n, skip); ok {
			open = -1
			n = end
			continue
		}

		if g.Consumed(n) {
			open = -1
			continue
		}

		switch {
		case isMarker(text) && open < 0:
			open = n
			content = content[:0]

		case isMarker(text):
			if len(content) > 0 {
				out = append(out, Region{Title: strings.Join(content, "\n"), Line: open, EndLine: n})
			}

			g.consume(open, n)
			open = -1

		case open >= 0 && isComment(text):
			if c := commentText(text); c != "" {
				content = append(content, c)
			}

		case open >= 0 && strings.TrimSpace(text) == "":
			// blank separators collapse

		case open >= 0:
			open = -1
		}
	}

	return out
}

// skipped returns the last line of the span covering line.
func skipped(line int, spans []common.Span) (int, bool) {
	for _, sp := range spans {
		if line >= sp.Start.Line && line <= sp.End.Line {
			return sp.End.Line, true
		}
	}

	return 0, false
}

func isComment(line string) bool {
	return strings.HasPrefix(strings.TrimSpace(line), Token)
}

func isMarker(line string) bool {
	return strings.TrimSpace(line) == Token
}

// commentText strips the comment token, extra slashes and surrounding space.
func commentText(line string) string {
	text := strings.TrimSpace(line)
	text = strings.TrimPrefix(text, Token)
	text = strings.TrimLeft(text, "/")

	return strings.TrimSpace(text)
}

func trimBlankEdges(texts []string) string {
	for len(texts) > 0 && texts[0] == "" {
		texts = texts[1:]
	}

	for len(texts) > 0 && texts[len(texts)-1] == "" {
		texts = texts[:len(texts)-1]
	}

	return strings.Join(texts, "\n")
}
