package gen

import (
	"regexp"
	"strconv"
	"strings"

	"pyglue-generator/internal/adapt"
	"pyglue-generator/internal/ctype"
	"pyglue-generator/internal/model"
	"pyglue-generator/internal/naming"
)

type openBody struct {
	members int
	body    bool
}

// stubWriter emits .pyi declarations.
type stubWriter struct {
	ty *typer
	b  strings.Builder
	// open tracks the classes being written, innermost last.
	open []openBody
	// members counts emitted statements other than comments.
	members int
	snake   bool
}

func newStubWriter(ty *typer, snake bool) *stubWriter {
	return &stubWriter{ty: ty, snake: snake}
}

func (s *stubWriter) String() string {
	return s.b.String()
}

func (s *stubWriter) imports() []string {
	return s.ty.imports()
}

func (s *stubWriter) line(depth int, text string) {
	s.b.WriteString(strings.Repeat("    ", depth))
	s.b.WriteString(text)
	s.b.WriteByte('\n')
}

func (s *stubWriter) docstring(depth int, doc string) {
	if doc == "" {
		return
	}

	doc = strings.ReplaceAll(doc, `"""`, `\"\"\"`)

	lines := strings.Split(doc, "\n")
	if len(lines) == 1 {
		s.line(depth, `"""`+doc+`"""`)
		return
	}

	s.line(depth, `"""`+lines[0])

	for _, l := range lines[1:] {
		s.line(depth, l)
	}

	s.line(depth, `"""`)
}

func eol(comment string) string {
	if comment == "" {
		return ""
	}

	return "  # " + strings.ReplaceAll(comment, "\n", " ")
}

func (s *stubWriter) region(it *item, sc emitScope) {
	for _, l := range strings.Split(it.decl.(*model.Region).Name, "\n") {
		s.line(sc.depth, strings.TrimRight("# "+l, " "))
	}
}

func (s *stubWriter) openClass(it *item, sc emitScope) emitScope {
	st := it.decl.(*model.Struct)

	var bases []string

	for _, base := range st.Bases {
		if py := s.ty.class(base); py != "" {
			bases = append(bases, py)
		}
	}

	head := "class " + it.pyName
	if len(bases) > 0 {
		head += "(" + strings.Join(bases, ", ") + ")"
	}

	s.line(sc.depth, head+":"+eol(st.EOLComment))
	start := s.b.Len()
	s.docstring(sc.depth+1, st.Comment)

	if !it.hasCtor {
		s.line(sc.depth+1, "def __init__(self) -> None: ...")
	}

	s.members++
	s.open = append(s.open, openBody{members: s.members, body: s.b.Len() > start})

	return emitScope{owner: it, depth: sc.depth + 1}
}

// closeClass keeps a class without members syntactically valid.
func (s *stubWriter) closeClass(_ *item, sc emitScope) {
	top := s.open[len(s.open)-1]
	s.open = s.open[:len(s.open)-1]

	if !top.body && s.members == top.members {
		s.line(sc.depth+1, "...")
	}
}

func (s *stubWriter) enum(it *item, sc emitScope) {
	e := it.decl.(*model.Enum)
	s.ty.enum = true
	s.members++

	base := "enum.IntEnum"
	if e.Scoped {
		base = "enum.Enum"
	}

	s.line(sc.depth, "class "+it.pyName+"("+base+"):"+eol(e.EOLComment))
	s.docstring(sc.depth+1, e.Comment)

	values := enumValues(it.children)
	wrote := false

	for i, c := range it.children {
		switch k := c.decl.(type) {
		case *model.EnumConstant:
			s.line(sc.depth+1, c.pyName+" = "+values[i]+eol(k.EOLComment))
			wrote = true
		case *model.Region:
			s.region(c, emitScope{depth: sc.depth + 1})
		}
	}

	if !wrote && e.Comment == "" {
		s.line(sc.depth+1, "...")
	}
}

var shiftValue = regexp.MustCompile(`^\(?\s*([0-9]+)\s*<<\s*([0-9]+)\s*\)?$`)

// enumValues evaluates constant values the way C numbers them: literal values
// and shifts are taken as written, an omitted value follows its predecessor.
// Anything else is "...", and so are its implicit successors.
func enumValues(items []*item) map[int]string {
	out := map[int]string{}
	next, known := int64(0), true

	for i, c := range items {
		k, ok := c.decl.(*model.EnumConstant)
		if !ok {
			continue
		}

		if k.Value != "" {
			next, known = evalEnum(k.Value)
		}

		if known {
			out[i] = strconv.FormatInt(next, 10)
			next++
		} else {
			out[i] = "..."
		}
	}

	return out
}

func evalEnum(expr string) (int64, bool) {
	expr = strings.TrimSpace(expr)

	if m := shiftValue.FindStringSubmatch(expr); m != nil {
		v, err1 := strconv.ParseInt(m[1], 10, 64)
		n, err2 := strconv.ParseInt(m[2], 10, 64)

		if err1 != nil || err2 != nil || n > 62 {
			return 0, false
		}

		return v << n, true
	}

	v, err := strconv.ParseInt(strings.TrimRight(expr, "uUlL"), 0, 64)
	if err != nil {
		return 0, false
	}

	return v, true
}

func (s *stubWriter) variable(it *item, sc emitScope) {
	v := it.decl.(*model.Variable)
	s.members++

	t := s.ty.cpp(ctype.Parse(v.TypeText), false)
	if v.Static && sc.owner != nil {
		t = s.ty.use("ClassVar") + "[" + t + "]"
	}

	s.line(sc.depth, it.pyName+": "+t+eol(v.EOLComment))
	s.docstring(sc.depth, v.Comment)
}

func (s *stubWriter) function(it *item, sc emitScope) {
	f := it.decl.(*model.Function)
	depth := sc.depth
	s.members++

	if it.overloaded {
		s.line(depth, "@"+s.ty.use("overload"))
	}

	var params []string

	switch {
	case f.Static && sc.owner != nil:
		s.line(depth, "@staticmethod")
	case sc.owner != nil:
		params = append(params, "self")
	}

	for _, d := range it.plan.Visible() {
		params = append(params, s.param(d))
	}

	head := "def " + it.pyName + "(" + strings.Join(params, ", ") + ") -> " + s.ty.returns(it) + ":"

	if f.Comment == "" {
		s.line(depth, head+" ..."+eol(f.EOLComment))
		return
	}

	s.line(depth, head+eol(f.EOLComment))
	s.docstring(depth+1, f.Comment)
	s.line(depth+1, "...")
}

func (s *stubWriter) param(d adapt.Decision) string {
	p := naming.Python(paramName(d.Param), s.snake) + ": " + s.ty.param(d)

	var def string

	switch d.Kind {
	case adapt.SentinelDefault:
		def = adapt.Sentinel
	case adapt.Boxed:
		if d.Nullable && isNull(d.Param.Default) {
			def = "None"
		}
	case adapt.FixedArray, adapt.BufferView:
		if d.Param.Default != "" {
			def = "..."
		}
	default:
		def = s.ty.pyDefault(d.Param.Default)
	}

	if def == "" {
		return p
	}

	return p + " = " + def
}
