package gen

import (
	"regexp"
	"slices"
	"strings"

	"pyglue-generator/internal/adapt"
	"pyglue-generator/internal/ctype"
	"pyglue-generator/internal/model"
	"pyglue-generator/internal/replace"
)

// typer maps C++ type texts to stub annotations and records the imports the
// annotations need.
type typer struct {
	classes map[string]string
	cache   *replace.Cache
	typing  map[string]struct{}
	enum    bool
	numpy   bool
}

func newTyper(items []*item, cache *replace.Cache) *typer {
	t := &typer{classes: map[string]string{}, cache: cache, typing: map[string]struct{}{}}
	t.register(items)

	return t
}

func (t *typer) register(items []*item) {
	for _, it := range items {
		switch it.decl.(type) {
		case *model.Struct, *model.Enum:
		default:
			continue
		}

		b := it.decl.Info()
		for _, key := range []string{b.CppName(), b.QualifiedName(), b.Name} {
			if _, taken := t.classes[key]; !taken {
				t.classes[key] = it.pyPath
			}
		}

		t.register(it.children)
	}
}

func (t *typer) use(name string) string {
	t.typing[name] = struct{}{}
	return name
}

func (t *typer) class(base string) string {
	if py, ok := t.classes[base]; ok {
		return py
	}

	if i := strings.LastIndex(base, "::"); i >= 0 && !strings.Contains(base, "<") {
		return t.classes[base[i+2:]]
	}

	return ""
}

// cpp annotates a C++ type. Pointers to classes are Optional when nullable.
func (t *typer) cpp(e ctype.Expr, nullable bool) string {
	switch {
	case e.IsVoid():
		return "None"
	case e.Base == "char" && e.Pointers == 1 && !e.IsArray():
		return "str"
	case e.Base == "std::string" || e.Base == "string":
		return "str"
	case e.IsArray():
		return t.use("List") + "[" + t.cpp(e.Value(), false) + "]"
	case e.Pointers == 0 && e.Kind().IsPrimitive():
		return e.Kind().PyType()
	case e.Pointers > 1 || (e.Pointers == 1 && (e.Kind().IsPrimitive() || e.Base == "void")):
		return t.use("Any")
	}

	name := t.class(e.Base)
	if name == "" {
		return t.use("Any")
	}

	if e.Pointers == 1 && nullable {
		return t.use("Optional") + "[" + name + "]"
	}

	return name
}

// param annotates a visible parameter.
func (t *typer) param(d adapt.Decision) string {
	switch d.Kind {
	case adapt.FixedArray:
		return t.use("List") + "[" + t.cpp(adapt.ElemType(d), false) + "]"
	case adapt.Boxed:
		name := boxName(adapt.ElemType(d))
		if d.Nullable {
			return t.use("Optional") + "[" + name + "]"
		}

		return name
	case adapt.BufferView:
		t.numpy = true
		return "np.ndarray"
	case adapt.SentinelDefault:
		return "int"
	default:
		return t.cpp(d.Type, true)
	}
}

// returns annotates the Python result of a function item.
func (t *typer) returns(it *item) string {
	f := it.decl.(*model.Function)
	if f.Constructor {
		return "None"
	}

	var parts []string

	if it.plan.ReturnsValue() {
		parts = append(parts, t.cpp(it.plan.Return.Type, true))
	}

	for _, o := range it.plan.Outputs() {
		parts = append(parts, t.cpp(adapt.ElemType(o), false))
	}

	switch len(parts) {
	case 0:
		return "None"
	case 1:
		return parts[0]
	default:
		return t.use("Tuple") + "[" + strings.Join(parts, ", ") + "]"
	}
}

// signature lists the visible parameter annotations of a function item.
func (t *typer) signature(it *item) []string {
	visible := it.plan.Visible()

	out := make([]string, 0, len(visible))
	for _, d := range visible {
		out = append(out, t.param(d))
	}

	return out
}

// imports returns the import lines needed by the annotations used so far.
func (t *typer) imports() []string {
	var out []string

	if t.enum {
		out = append(out, "import enum")
	}

	if t.numpy {
		out = append(out, "import numpy as np")
	}

	if len(t.typing) > 0 {
		names := make([]string, 0, len(t.typing))
		for n := range t.typing {
			names = append(names, n)
		}

		slices.Sort(names)
		out = append(out, typingImport+strings.Join(names, ", "))
	}

	return out
}

var (
	floatLiteral = regexp.MustCompile(`^([-+]?(?:[0-9]+\.[0-9]*|\.[0-9]+|[0-9]+)(?:[eE][-+]?[0-9]+)?)[fF]?$`)
	intLiteral   = regexp.MustCompile(`^([-+]?)(0[xX][0-9a-fA-F']+|0[bB][01']+|[0-9][0-9']*)[uUlL]*$`)
	dottedName   = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(?:\.[A-Za-z_][A-Za-z0-9_]*)*$`)
	stringLit    = regexp.MustCompile(`^"(?:[^"\\]|\\.)*"$`)
)

// pyDefault converts a C++ default expression into a stub default. Anything
// beyond literals and renamed constants becomes "...".
func (t *typer) pyDefault(expr string) string {
	expr = strings.TrimSpace(expr)

	switch expr {
	case "":
		return ""
	case "true":
		return "True"
	case "false":
		return "False"
	case "NULL", "nullptr", "0x0":
		return "None"
	}

	switch {
	case intLiteral.MatchString(expr):
		return pyInt(expr)
	case floatLiteral.MatchString(expr):
		v := floatLiteral.FindStringSubmatch(expr)[1]
		if strings.HasSuffix(v, ".") {
			v += "0"
		}

		return v
	case stringLit.MatchString(expr):
		return expr
	}

	if renamed := t.cache.Apply(expr); renamed != expr && dottedName.MatchString(renamed) {
		return renamed
	}

	return "..."
}

// pyInt rewrites a C++ integer literal in Python syntax: separators go and
// a leading-zero octal gets the 0o prefix.
func pyInt(expr string) string {
	m := intLiteral.FindStringSubmatch(expr)
	sign, digits := m[1], strings.ReplaceAll(m[2], "'", "")

	if len(digits) > 1 && digits[0] == '0' && digits[1] >= '0' && digits[1] <= '9' {
		if strings.ContainsAny(digits, "89") {
			return "..."
		}

		digits = "0o" + digits[1:]
	}

	return sign + digits
}
