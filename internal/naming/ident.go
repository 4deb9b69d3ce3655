package naming

import (
	"strings"
	"unicode"
)

var pythonKeywords = map[string]struct{}{
	"False": {}, "None": {}, "True": {}, "and": {}, "as": {}, "assert": {},
	"async": {}, "await": {}, "break": {}, "class": {}, "continue": {},
	"def": {}, "del": {}, "elif": {}, "else": {}, "except": {}, "finally": {},
	"for": {}, "from": {}, "global": {}, "if": {}, "import": {}, "in": {},
	"is": {}, "lambda": {}, "nonlocal": {}, "not": {}, "or": {}, "pass": {},
	"raise": {}, "return": {}, "try": {}, "while": {}, "with": {}, "yield": {},
}

// IsKeyword reports whether s is a reserved Python keyword.
func IsKeyword(s string) bool {
	_, ok := pythonKeywords[s]
	return ok
}

// PyIdent makes s usable as a Python identifier: keywords get a trailing
// underscore and a leading digit gets a leading underscore.
func PyIdent(s string) string {
	if IsKeyword(s) {
		return s + "_"
	}

	if s != "" && unicode.IsDigit(rune(s[0])) {
		return "_" + s
	}

	return s
}

// Python converts a C++ identifier according to the snake toggle and escapes it.
func Python(s string, snake bool) string {
	if snake {
		s = ToSnake(s)
	}

	return PyIdent(s)
}

// StripCommonPrefix returns the longest prefix ending in '_' that every name
// shares, provided that stripping it leaves each name non-empty and starting
// with a letter. It returns "" if no such prefix exists.
//   - ["ImAxis_X1", "ImAxis_X2"] -> "ImAxis_"
//   - ["ImGuiKey_A", "ImGuiKey_0"] -> ""
func StripCommonPrefix(names []string) string {
	if len(names) == 0 {
		return ""
	}

	prefix := names[0]
	for _, n := range names[1:] {
		prefix = commonPrefix(prefix, n)
	}

	for {
		idx := strings.LastIndex(prefix, "_")
		if idx < 0 {
			return ""
		}

		prefix = prefix[:idx+1]
		if strippable(names, prefix) {
			return prefix
		}

		prefix = prefix[:idx]
	}
}

func strippable(names []string, prefix string) bool {
	for _, n := range names {
		rest := strings.TrimPrefix(n, prefix)
		if rest == "" || !unicode.IsLetter(rune(rest[0])) {
			return false
		}
	}

	return true
}

func commonPrefix(a, b string) string {
	n := min(len(a), len(b))
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return a[:i]
		}
	}

	return a[:n]
}

// PyClass converts a C++ type name into a Python class name. A trailing
// underscore, common on C enum typedefs, is dropped.
//   - "ImAxis_" -> "ImAxis"
func PyClass(s string) string {
	if t := strings.TrimSuffix(s, "_"); t != "" {
		s = t
	}

	return PyIdent(s)
}
