package gen

import (
	"fmt"
	"strings"
	"text/template"

	"pyglue-generator/internal/adapt"
	"pyglue-generator/internal/ctype"
	"pyglue-generator/internal/model"
	"pyglue-generator/internal/naming"
	"pyglue-generator/internal/policy"
)

// glueWriter emits pybind11 registration statements. Statements are flat:
// classes and enums are bound to local variables that their members are
// registered on.
type glueWriter struct {
	pol *policy.Policy
	ty  *typer
	b   strings.Builder
}

func newGlueWriter(pol *policy.Policy, ty *typer) *glueWriter {
	return &glueWriter{pol: pol, ty: ty}
}

func (g *glueWriter) String() string {
	return g.b.String()
}

func (g *glueWriter) line(s string) {
	g.b.WriteString(s)
	g.b.WriteByte('\n')
}

func (g *glueWriter) region(it *item, _ emitScope) {
	for _, l := range strings.Split(it.decl.(*model.Region).Name, "\n") {
		g.line(strings.TrimRight("// "+l, " "))
	}
}

func (g *glueWriter) openClass(it *item, sc emitScope) emitScope {
	st := it.decl.(*model.Struct)
	v := "cls_" + cppIdent(it.pyPath)

	params := []string{st.CppName()}
	for _, base := range st.Bases {
		if g.ty.class(base) != "" {
			params = append(params, base)
		}
	}

	args := []string{sc.glueVar, cppString(it.pyName)}
	if st.Comment != "" {
		args = append(args, cppString(st.Comment))
	}

	g.line(fmt.Sprintf("py::class_<%s> %s(%s);", strings.Join(params, ", "), v, strings.Join(args, ", ")))

	if !it.hasCtor {
		g.line(v + ".def(py::init<>());")
	}

	return emitScope{glueVar: v, owner: it, depth: sc.depth + 1}
}

func (g *glueWriter) closeClass(*item, emitScope) {}

func (g *glueWriter) enum(it *item, sc emitScope) {
	e := it.decl.(*model.Enum)
	v := "enum_" + cppIdent(it.pyPath)

	args := []string{sc.glueVar, cppString(it.pyName)}
	if e.Comment != "" {
		args = append(args, cppString(e.Comment))
	}

	if !e.Scoped {
		args = append(args, "py::arithmetic()")
	}

	g.line(fmt.Sprintf("py::enum_<%s> %s(%s);", e.CppName(), v, strings.Join(args, ", ")))

	for _, c := range it.children {
		switch k := c.decl.(type) {
		case *model.EnumConstant:
			g.line(fmt.Sprintf("%s.value(%s, %s::%s);", v, cppString(c.pyName), e.CppName(), k.CName))
		case *model.Region:
			g.region(c, sc)
		}
	}
}

func (g *glueWriter) variable(it *item, sc emitScope) {
	v := it.decl.(*model.Variable)
	name := cppString(it.pyName)

	if sc.owner == nil {
		g.line(fmt.Sprintf("%s.attr(%s) = %s;", sc.glueVar, name, v.QualifiedName()))
		return
	}

	owner := sc.owner.decl.Info().CppName()
	member := "&" + owner + "::" + v.Name
	t := ctype.Parse(v.TypeText)

	switch {
	case t.IsArray() && v.Static:
		g.line(fmt.Sprintf("%s.def_property_readonly_static(%s, [](py::object) { return std::vector<%s>(std::begin(%s::%s), std::end(%s::%s)); });",
			sc.glueVar, name, t.Value().String(), owner, v.Name, owner, v.Name))
	case t.IsArray():
		g.line(fmt.Sprintf("%s.def_property_readonly(%s, [](const %s &self) { return std::vector<%s>(std::begin(self.%s), std::end(self.%s)); });",
			sc.glueVar, name, owner, t.Value().String(), v.Name, v.Name))
	case v.Static && (v.Const || t.Const):
		g.line(fmt.Sprintf("%s.def_readonly_static(%s, %s);", sc.glueVar, name, member))
	case v.Static:
		g.line(fmt.Sprintf("%s.def_readwrite_static(%s, %s);", sc.glueVar, name, member))
	case v.Const || (t.Const && t.Pointers == 0):
		g.line(fmt.Sprintf("%s.def_readonly(%s, %s);", sc.glueVar, name, member))
	default:
		g.line(fmt.Sprintf("%s.def_readwrite(%s, %s);", sc.glueVar, name, member))
	}
}

func (g *glueWriter) function(it *item, sc emitScope) {
	f := it.decl.(*model.Function)

	method := "def"
	if f.Static && sc.owner != nil {
		method = "def_static"
	}

	var callable string

	switch {
	case f.Constructor && !it.plan.NeedsWrapper():
		callable = "py::init<" + strings.Join(f.ParamTypes(), ", ") + ">()"
	case f.Constructor:
		callable = "py::init(" + g.lambda(it, sc) + ")"
	case it.plan.NeedsWrapper():
		callable = g.lambda(it, sc)
	default:
		callable = g.pointer(f, it.overloaded)
	}

	args := []string{callable}
	if !f.Constructor {
		args = append([]string{cppString(it.pyName)}, args...)
	}

	if f.Comment != "" {
		args = append(args, cppString(f.Comment))
	}

	if ret := it.plan.Return.Type; it.plan.ReturnsValue() && !it.plan.ReturnsTuple() && len(it.plan.Outputs()) == 0 &&
		ret.IsIndirect() && !ret.IsCString() && !ret.Kind().IsPrimitive() {
		args = append(args, "py::return_value_policy::reference")
	}

	for _, d := range it.plan.Visible() {
		args = append(args, g.arg(d))
	}

	g.line(fmt.Sprintf("%s.%s(%s);", sc.glueVar, method, strings.Join(args, ", ")))
}

// pointer spells the address of a function, disambiguated for overloads.
func (g *glueWriter) pointer(f *model.Function, overloaded bool) string {
	target := "&" + f.CppName()
	if f.IsMethod() {
		target = "&" + f.Owner + "::" + memberSpelling(f)
	}

	if !overloaded {
		return target
	}

	cast := "py::overload_cast<" + strings.Join(f.ParamTypes(), ", ") + ">(" + target
	if f.Const {
		cast += ", py::const_"
	}

	return cast + ")"
}

func (g *glueWriter) arg(d adapt.Decision) string {
	a := "py::arg(" + cppString(naming.Python(paramName(d.Param), g.pol.SnakeCase)) + ")"

	switch d.Kind {
	case adapt.SentinelDefault:
		return a + " = " + adapt.Sentinel
	case adapt.Boxed:
		if !d.Nullable {
			return a
		}

		a += ".none(true)"
		if isNull(d.Param.Default) {
			a += " = py::none()"
		}

		return a
	case adapt.FixedArray, adapt.BufferView:
		return a
	}

	switch def := strings.TrimSpace(d.Param.Default); {
	case def == "":
		return a
	case isNull(def):
		return a + " = nullptr"
	default:
		return a + " = " + def
	}
}

// lambdaData fills lambdaTemplate.
type lambdaData struct {
	Params   string
	Prelude  []string
	Call     string
	Result   bool
	Postlude []string
	Return   string
}

var lambdaTemplate = template.Must(template.New("lambda").Parse(`[]({{.Params}}) {
{{- range .Prelude}}
    {{.}}
{{- end}}
{{- if .Result}}
    auto result = {{.Call}};
{{- else}}
    {{.Call}};
{{- end}}
{{- range .Postlude}}
    {{.}}
{{- end}}
{{- if .Return}}
    return {{.Return}};
{{- end}}
}`))

// lambda builds the wrapper that implements the adaptations of a plan.
func (g *glueWriter) lambda(it *item, sc emitScope) string {
	f := it.decl.(*model.Function)
	plan := it.plan

	var (
		data    lambdaData
		params  []string
		outputs []string
	)

	if f.IsMethod() && !f.Static && !f.Constructor {
		self := f.Owner + " &self"
		if f.Const {
			self = "const " + self
		}

		params = append(params, self)
	}

	callArgs := make([]string, len(plan.Params))

	for i, d := range plan.Params {
		name := paramName(d.Param)

		switch d.Kind {
		case adapt.Passthrough:
			params = append(params, d.Type.Declare(name))
			callArgs[i] = name

		case adapt.FixedArray:
			elem := adapt.ElemType(d).String()
			buf := name + "_buf"
			params = append(params, "py::list "+name)
			data.Prelude = append(data.Prelude,
				fmt.Sprintf(`if (%s.size() != %d) throw py::type_error("%s: expected %d values");`, name, d.Size, name, d.Size),
				fmt.Sprintf("%s %s[%d];", elem, buf, d.Size),
				fmt.Sprintf("for (size_t i = 0; i < %d; i++) %s[i] = %s[i].cast<%s>();", d.Size, buf, name, elem))
			callArgs[i] = buf

			if !d.Type.Const {
				data.Postlude = append(data.Postlude,
					fmt.Sprintf("for (size_t i = 0; i < %d; i++) %s[i] = %s[i];", d.Size, name, buf))
			}

		case adapt.Boxed:
			box := boxName(adapt.ElemType(d))
			if d.Nullable {
				params = append(params, box+" *"+name)
				callArgs[i] = name + " ? &" + name + "->value : nullptr"
			} else {
				params = append(params, box+" &"+name)
				callArgs[i] = name + ".value"
			}

		case adapt.BufferView:
			elem := adapt.ElemType(d).String()
			info := name + "_info"
			params = append(params, "py::buffer "+name)
			data.Prelude = append(data.Prelude,
				fmt.Sprintf("py::buffer_info %s = %s.request();", info, name),
				fmt.Sprintf(`if (%s.ndim != 1) throw py::type_error("%s: expected a one-dimensional buffer");`, info, name),
				fmt.Sprintf(`if (%s.format != py::format_descriptor<%s>::format()) throw py::type_error("%s: expected %s items");`,
					info, elem, name, elem),
				fmt.Sprintf(`if (%s.strides[0] != static_cast<py::ssize_t>(sizeof(%s))) throw py::type_error("%s: expected contiguous items");`,
					info, elem, name))
			callArgs[i] = "static_cast<" + ctype.Expr{Base: d.Type.Base, Const: d.Type.Const, Pointers: 1}.String() + ">(" + info + ".ptr)"

		case adapt.Dropped:
			if d.IsDerivedCount() {
				buffer := paramName(plan.Params[d.Count].Param)
				callArgs[i] = "static_cast<" + d.Type.String() + ">(" + buffer + "_info.shape[0])"
			}

		case adapt.SentinelDefault:
			params = append(params, "py::ssize_t "+name)
			value := name + "_value"
			data.Prelude = append(data.Prelude, fmt.Sprintf("%s = %s == %s ? %s : static_cast<%s>(%s);",
				d.Type.Declare(value), name, adapt.Sentinel, strings.TrimSpace(d.Param.Default), d.Type.String(), name))
			callArgs[i] = value

		case adapt.PromotedOut:
			elem := adapt.ElemType(d)
			data.Prelude = append(data.Prelude, elem.Declare(name)+"{};")
			outputs = append(outputs, name)

			if d.Type.Pointers > 0 {
				callArgs[i] = "&" + name
			} else {
				callArgs[i] = name
			}
		}
	}

	// a dropped variadic tail forwards its format string verbatim
	for _, d := range plan.Params {
		if d.Kind == adapt.Dropped && !d.IsDerivedCount() && d.Format >= 0 {
			callArgs[d.Format] = `"%s", ` + callArgs[d.Format]
		}
	}

	var used []string

	for _, a := range callArgs {
		if a != "" {
			used = append(used, a)
		}
	}

	args := strings.Join(used, ", ")

	switch {
	case f.Constructor:
		data.Call = "new " + f.Owner + "(" + args + ")"
	case f.IsMethod() && f.Static:
		data.Call = f.Owner + "::" + memberSpelling(f) + "(" + args + ")"
	case f.IsMethod():
		data.Call = "self." + memberSpelling(f) + "(" + args + ")"
	default:
		data.Call = f.CppName() + "(" + args + ")"
	}

	var values []string

	if plan.ReturnsValue() || f.Constructor {
		data.Result = true
		values = append(values, "result")
	}

	values = append(values, outputs...)

	switch len(values) {
	case 0:
	case 1:
		data.Return = values[0]
	default:
		data.Return = "py::make_tuple(" + strings.Join(values, ", ") + ")"
	}

	data.Params = strings.Join(params, ", ")

	var b strings.Builder
	if err := lambdaTemplate.Execute(&b, data); err != nil {
		panic(fmt.Sprintf("gen: executing lambda template: %v", err))
	}

	return b.String()
}

// paramName is the C++ name of a parameter. Unnamed ones are numbered.
func paramName(p *model.Parameter) string {
	if p.Name == "" {
		return fmt.Sprintf("arg%d", p.Index)
	}

	return p.Name
}

func isNull(expr string) bool {
	switch strings.TrimSpace(expr) {
	case "NULL", "nullptr", "0x0":
		return true
	default:
		return false
	}
}

// cppString quotes s as a C++ string literal.
func cppString(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`, "\t", `\t`, "\r", ``)
	return `"` + r.Replace(s) + `"`
}
