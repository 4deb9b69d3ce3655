package naming

import (
	"strings"
	"unicode"
)

// ToSnake converts a CamelCase identifier into lower_snake_case.
// Identifiers without uppercase letters and dunder names are returned unchanged.
//   - "VSliderFloat" -> "v_slider_float"
//   - "ToRGB" -> "to_rgb"
//   - "ImAxis_X1" -> "im_axis_x1"
func ToSnake(s string) string {
	if isDunder(s) || !hasUpper(s) {
		return s
	}

	tokens := Tokenize(s)
	for i, t := range tokens {
		tokens[i] = strings.ToLower(t)
	}

	out := strings.Join(tokens, "_")
	if strings.HasPrefix(s, "_") {
		out = "_" + out
	}

	return out
}

// ToCamel joins the tokens of s with each token's first letter upper-cased.
//   - "float" -> "Float"
//   - "unsigned int" -> "UnsignedInt"
func ToCamel(s string) string {
	var b strings.Builder

	for _, t := range Tokenize(s) {
		b.WriteString(UpperFirst(t))
	}

	return b.String()
}

// UpperFirst upper-cases the first rune.
func UpperFirst(s string) string {
	if s == "" {
		return s
	}

	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])

	return string(r)
}

// Tokenize splits a CamelCase or snake_case identifier into tokens.
// Examples:
//   - "OrderID" -> ["Order", "ID"]
//   - "XMLParser" -> ["XML", "Parser"]
//   - "unsigned int" -> ["unsigned", "int"]
func Tokenize(s string) []string {
	if s == "" {
		return nil
	}

	var tokens []string

	var current strings.Builder

	runes := []rune(s)
	for i := range runes {
		r := runes[i]

		if isSeparator(r) {
			if current.Len() > 0 {
				tokens = append(tokens, current.String())
				current.Reset()
			}

			continue
		}

		if i > 0 && shouldStartNewToken(runes, i) && current.Len() > 0 {
			tokens = append(tokens, current.String())
			current.Reset()
		}

		current.WriteRune(r)
	}

	if current.Len() > 0 {
		tokens = append(tokens, current.String())
	}

	return tokens
}

func isSeparator(r rune) bool {
	return r == '_' || r == '-' || r == ' ' || r == ':'
}

// shouldStartNewToken determines if a new token should start at position i.
func shouldStartNewToken(runes []rune, i int) bool {
	r := runes[i]
	prevRune := runes[i-1]
	isUpper := unicode.IsUpper(r)
	isPrevUpper := unicode.IsUpper(prevRune)
	isPrevSep := isSeparator(prevRune)

	// "sliderFloat" -> split before 'F'
	if isUpper && !isPrevUpper && !isPrevSep {
		return true
	}

	// End of acronym: "XMLParser" -> "XML" + "Parser"
	hasNextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
	if isUpper && isPrevUpper && hasNextLower {
		return true
	}

	return false
}

func hasUpper(s string) bool {
	for _, r := range s {
		if unicode.IsUpper(r) {
			return true
		}
	}

	return false
}

func isDunder(s string) bool {
	return len(s) > 4 && strings.HasPrefix(s, "__") && strings.HasSuffix(s, "__")
}
