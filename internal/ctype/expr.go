package ctype

import (
	"regexp"
	"strconv"
	"strings"
)

// Expr is a parsed type expression.
type Expr struct {
	// Base is the type name without qualifiers, e.g. "unsigned int" or "ImVector<int>".
	Base string
	// Const is set when the base type is const-qualified.
	Const bool
	// Pointers is the pointer depth.
	Pointers int
	// Reference is set for lvalue references.
	Reference bool
	// RValue is set for rvalue references.
	RValue bool
	// Dims are the array dimensions as written, outermost first.
	Dims []string
}

// Parse reads a type expression such as "const float *", "float[4]" or
// "unsigned int&".
func Parse(text string) Expr {
	var e Expr

	text = strings.TrimSpace(text)

	for strings.HasSuffix(text, "]") {
		open := strings.LastIndex(text, "[")
		if open < 0 {
			break
		}

		e.Dims = append([]string{strings.TrimSpace(text[open+1 : len(text)-1])}, e.Dims...)
		text = strings.TrimSpace(text[:open])
	}

	for {
		text = strings.TrimSpace(text)

		switch {
		case strings.HasSuffix(text, "&&"):
			e.RValue = true
			text = text[:len(text)-2]
		case strings.HasSuffix(text, "&"):
			e.Reference = true
			text = text[:len(text)-1]
		case strings.HasSuffix(text, "*"):
			e.Pointers++
			text = text[:len(text)-1]
		case hasWordSuffix(text, "const") && strings.ContainsAny(text, "*&"):
			// const pointer: the pointer itself is const, the pointee is not affected
			text = text[:len(text)-len("const")]
		default:
			e.Base, e.Const = splitQualifiers(text)
			return e
		}
	}
}

func hasWordSuffix(text, word string) bool {
	if !strings.HasSuffix(text, word) {
		return false
	}

	rest := text[:len(text)-len(word)]

	return rest == "" || strings.HasSuffix(rest, " ") || strings.HasSuffix(rest, "*") || strings.HasSuffix(rest, "&")
}

func splitQualifiers(text string) (string, bool) {
	isConst := false

	var words []string

	for _, w := range strings.Fields(text) {
		switch w {
		case "const":
			isConst = true
		case "volatile", "struct", "class", "enum", "typename":
		default:
			words = append(words, w)
		}
	}

	return strings.Join(words, " "), isConst
}

// String renders the expression in canonical form.
func (e Expr) String() string {
	var b strings.Builder

	if e.Const {
		b.WriteString("const ")
	}

	b.WriteString(e.Base)

	if e.Pointers > 0 {
		b.WriteString(" ")
		b.WriteString(strings.Repeat("*", e.Pointers))
	}

	if e.Reference {
		b.WriteString(" &")
	}

	if e.RValue {
		b.WriteString(" &&")
	}

	for _, d := range e.Dims {
		b.WriteString("[" + d + "]")
	}

	return b.String()
}

// Declare renders a declaration of name with this type, e.g. "float v[4]".
func (e Expr) Declare(name string) string {
	head := e
	head.Dims = nil

	s := head.String()
	if !strings.HasSuffix(s, "*") && !strings.HasSuffix(s, "&") {
		s += " "
	}

	s += name

	for _, d := range e.Dims {
		s += "[" + d + "]"
	}

	return s
}

// Kind classifies the base type.
func (e Expr) Kind() Kind {
	return KindOf(e.Base)
}

// IsVoid reports a plain void.
func (e Expr) IsVoid() bool {
	return e.Base == "void" && e.Pointers == 0 && !e.Reference && len(e.Dims) == 0
}

// IsCString reports "const char *".
func (e Expr) IsCString() bool {
	return e.Base == "char" && e.Const && e.Pointers == 1 && len(e.Dims) == 0
}

// IsArray reports whether the expression has array dimensions.
func (e Expr) IsArray() bool {
	return len(e.Dims) > 0
}

// IsIndirect reports a pointer or reference.
func (e Expr) IsIndirect() bool {
	return e.Pointers > 0 || e.Reference || e.RValue
}

// Value returns the expression with references, pointers and dimensions
// removed, keeping constness.
func (e Expr) Value() Expr {
	return Expr{Base: e.Base, Const: e.Const}
}

// ArraySize resolves the single array dimension. Named sizes are looked up
// with lookup. It reports false when the expression is not a one-dimensional
// array or the size is not a positive integer.
func (e Expr) ArraySize(lookup func(string) (int, bool)) (int, bool) {
	if len(e.Dims) != 1 {
		return 0, false
	}

	return ResolveInt(e.Dims[0], lookup)
}

// ResolveInt resolves a literal integer or a named number.
func ResolveInt(text string, lookup func(string) (int, bool)) (int, bool) {
	text = strings.TrimSpace(text)

	if n, err := strconv.ParseInt(strings.TrimRight(text, "uUlL"), 0, 64); err == nil {
		return int(n), n > 0
	}

	if lookup != nil {
		if n, ok := lookup(text); ok {
			return n, n > 0
		}
	}

	return 0, false
}

// ReplaceWord replaces whole-word occurrences of old in text.
func ReplaceWord(text, old, repl string) string {
	re := regexp.MustCompile(`\b` + regexp.QuoteMeta(old) + `\b`)
	return re.ReplaceAllLiteralString(text, repl)
}

// TemplateArgs splits "ImVector<int>" into "ImVector" and ["int"].
func TemplateArgs(base string) (string, []string) {
	open := strings.Index(base, "<")
	if open < 0 || !strings.HasSuffix(base, ">") {
		return base, nil
	}

	inner := base[open+1 : len(base)-1]

	var (
		args  []string
		depth int
		start int
	)

	for i, r := range inner {
		switch r {
		case '<':
			depth++
		case '>':
			depth--
		case ',':
			if depth == 0 {
				args = append(args, strings.TrimSpace(inner[start:i]))
				start = i + 1
			}
		}
	}

	args = append(args, strings.TrimSpace(inner[start:]))

	return strings.TrimSpace(base[:open]), args
}
