package policy

import (
	"fmt"
	"slices"
	"sort"

	"pyglue-generator/internal/common"
	"pyglue-generator/internal/diagnostic"
	"pyglue-generator/internal/naming"
)

// keySet describes the allowed keys of one mapping. A nil child means the
// value is a leaf or a free-form mapping.
type keySet map[string]keySet

var (
	ruleKeys   = keySet{"function": nil, "param": nil, "type": nil, "count": nil}
	markerKeys = keySet{"start": nil, "end": nil}

	knownKeys = keySet{
		"version":   nil,
		"publish":   {"prefixes": nil, "suffixes": nil},
		"exclude":   {"functions": nil, "declarations": nil, "classes": nil},
		"numbers":   nil,
		"templates": {"match": nil, "kind": nil, "params": nil, "types": nil, "naming": nil},
		"adapt": {
			"variadic": ruleKeys, "fixed_array": ruleKeys, "boxed": ruleKeys,
			"buffer": ruleKeys, "sizeof_default": ruleKeys, "promote": ruleKeys,
		},
		"naming":      {"snake_case": nil, "strip_enum_prefix": nil},
		"comments":    {"regions": nil},
		"output":      {"module_var": nil, "glue_markers": markerKeys, "stub_markers": markerKeys},
		"parser":      {"command": nil, "timeout": nil},
		"diagnostics": {"quiet": nil, "strict": nil},
	}
)

// maxSuggestDistance bounds the edit distance of "did you mean" suggestions.
const maxSuggestDistance = 3

// checkKeys reports keys of v that are not in known, recursing into known
// sections and list elements.
func checkKeys(path string, v any, known keySet, d *diagnostic.Diagnostics) {
	switch val := v.(type) {
	case map[string]any:
		names := make([]string, 0, len(val))
		for k := range val {
			names = append(names, k)
		}

		sort.Strings(names)

		for _, k := range names {
			child, ok := known[k]
			if !ok {
				reportUnknown(join(path, k), k, known, d)
				continue
			}

			if child != nil {
				checkKeys(join(path, k), val[k], child, d)
			}
		}

	case []any:
		for i, item := range val {
			checkKeys(fmt.Sprintf("%s[%d]", path, i), item, known, d)
		}

	case []map[string]any:
		for i, item := range val {
			checkKeys(fmt.Sprintf("%s[%d]", path, i), item, known, d)
		}
	}
}

func reportUnknown(path, key string, known keySet, d *diagnostic.Diagnostics) {
	candidates := make([]string, 0, len(known))
	for k := range known {
		candidates = append(candidates, k)
	}

	slices.Sort(candidates)

	d.AddError(diagnostic.KindPolicyValidation, "unknown_key",
		fmt.Sprintf("unknown policy key %q", path), "", common.Span{})
	d.Errors[len(d.Errors)-1].Suggestions = naming.Closest(key, candidates, maxSuggestDistance)
}

func join(path, key string) string {
	if path == "" {
		return key
	}

	return path + "." + key
}
