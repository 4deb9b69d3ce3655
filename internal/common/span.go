package common

import "fmt"

// Position is a location in source text. Lines are 1-based, columns 0-based byte offsets.
type Position struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// Before reports whether p sorts strictly before o.
func (p Position) Before(o Position) bool {
	if p.Line != o.Line {
		return p.Line < o.Line
	}

	return p.Column < o.Column
}

// String returns "line:column".
func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Span is a half-open source range.
type Span struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// IsZero returns true if the span was never set.
func (s Span) IsZero() bool {
	return s == Span{}
}

// Contains reports whether p lies inside the span.
func (s Span) Contains(p Position) bool {
	return !p.Before(s.Start) && p.Before(s.End)
}

// String returns "start-end".
func (s Span) String() string {
	if s.IsZero() {
		return ""
	}

	return s.Start.String() + "-" + s.End.String()
}
