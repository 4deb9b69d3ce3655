package gen

import (
	"maps"
	"slices"
	"strings"

	"pyglue-generator/internal/adapt"
	"pyglue-generator/internal/common"
	"pyglue-generator/internal/ctype"
	"pyglue-generator/internal/diagnostic"
	"pyglue-generator/internal/model"
	"pyglue-generator/internal/naming"
	"pyglue-generator/internal/policy"
	"pyglue-generator/internal/replace"
	"pyglue-generator/internal/specialize"
)

// Output is the generated text of one header.
type Output struct {
	// Glue is the pybind11 registration code.
	Glue string
	// Boxes are the box helper types the glue relies on, sorted by name.
	Boxes []Box
	// Stub is the .pyi declaration text.
	Stub string
	// Imports are the stub import lines the stub relies on.
	Imports []string
}

// Box is a mutable single-value carrier registered for boxed parameters.
type Box struct {
	Name  string
	CType string
}

// item is a declaration ready for emission: templates are specialized,
// functions carry their adaptation plan, names are converted.
type item struct {
	decl     model.Decl
	plan     adapt.Plan
	pyName   string
	pyPath   string
	children []*item
	// overloaded marks a function whose Python name repeats in its scope.
	overloaded bool
	// hasCtor marks a struct that declares at least one public constructor.
	hasCtor bool
}

// Render generates glue and stub text for one model. It does not modify the
// model or the cache and its result depends on nothing else.
func Render(m *model.Model, pol *policy.Policy, cache *replace.Cache) (Output, diagnostic.Diagnostics) {
	r := &renderer{pol: pol, cache: cache, boxes: map[string]Box{}}

	items := r.lower(m.Decls, "")
	r.markOverloads(items)

	ty := newTyper(items, cache)
	r.checkOverloads(items, ty)

	glue := newGlueWriter(pol, ty)
	stub := newStubWriter(ty, pol.SnakeCase)

	r.emit(items, []backend{glue, stub}, emitScope{glueVar: pol.ModuleVar})

	out := Output{
		Glue:    glue.String(),
		Stub:    stub.String(),
		Imports: stub.imports(),
	}

	for _, name := range slices.Sorted(maps.Keys(r.boxes)) {
		out.Boxes = append(out.Boxes, r.boxes[name])
	}

	r.diags.WithFile(m.File)

	return out, r.diags
}

type renderer struct {
	pol   *policy.Policy
	cache *replace.Cache
	boxes map[string]Box
	diags diagnostic.Diagnostics
}

// lower specializes, adapts and names declarations. Namespaces are flattened
// into the enclosing Python scope.
func (r *renderer) lower(decls []model.Decl, pyScope string) []*item {
	var out []*item

	for _, d := range decls {
		switch v := d.(type) {
		case *model.Namespace:
			out = append(out, r.lower(v.Children, pyScope)...)

		case *model.Function:
			out = append(out, r.lowerFunctions(v, pyScope)...)

		case *model.Struct:
			out = append(out, r.lowerStructs(v, pyScope)...)

		case *model.Enum:
			name := naming.PyClass(v.Name)
			it := &item{decl: v, pyName: name, pyPath: joinPy(pyScope, name)}

			for _, c := range v.Children {
				switch k := c.(type) {
				case *model.EnumConstant:
					it.children = append(it.children, &item{decl: k, pyName: naming.PyIdent(k.Name)})
				case *model.Region:
					it.children = append(it.children, &item{decl: k, pyName: k.Name})
				}
			}

			out = append(out, it)

		case *model.Variable:
			out = append(out, &item{decl: v, pyName: naming.Python(v.Name, r.pol.SnakeCase)})

		case *model.Region:
			out = append(out, &item{decl: v, pyName: v.Name})

		case *model.EnumConstant, *model.Parameter:
			// rendered with their enum or function

		default:
			panic("gen: unhandled declaration type")
		}
	}

	return orderByBases(out)
}

func (r *renderer) lowerFunctions(fn *model.Function, pyScope string) []*item {
	concrete, diags := specialize.Resolve(fn, r.pol)
	r.diags.Merge(diags)

	var out []*item

	for _, d := range concrete {
		f := d.(*model.Function)

		plan, err := adapt.Adapt(f, r.pol)
		if err != nil {
			r.diags.AddWarning(diagnostic.KindAdaptation, "adaptation_failed", err.Error(), f.QualifiedName(), f.Span)
			continue
		}

		if i := slices.IndexFunc(plan.Params, func(d adapt.Decision) bool {
			return d.Kind == adapt.Passthrough && d.Param.Variadic
		}); i >= 0 {
			r.diags.AddWarning(diagnostic.KindAdaptation, "variadic_unbound",
				"C variadic parameters need a variadic rule", f.QualifiedName(), f.Span)

			continue
		}

		for _, p := range plan.Params {
			if p.Kind == adapt.Boxed {
				elem := adapt.ElemType(p)
				r.boxes[boxName(elem)] = Box{Name: boxName(elem), CType: elem.String()}
			}
		}

		name := "__init__"
		if !f.Constructor {
			name = naming.Python(f.Name, r.pol.SnakeCase)
		}

		out = append(out, &item{decl: f, plan: plan, pyName: name, pyPath: joinPy(pyScope, name)})
	}

	return out
}

func (r *renderer) lowerStructs(s *model.Struct, pyScope string) []*item {
	concrete, diags := specialize.Resolve(s, r.pol)
	r.diags.Merge(diags)

	var out []*item

	for _, d := range concrete {
		st := d.(*model.Struct)
		name := naming.PyClass(st.Name)
		it := &item{decl: st, pyName: name, pyPath: joinPy(pyScope, name)}
		it.children = r.lower(st.Children, it.pyPath)

		for _, c := range it.children {
			if f, ok := c.decl.(*model.Function); ok && f.Constructor {
				it.hasCtor = true
			}
		}

		r.markOverloads(it.children)
		out = append(out, it)
	}

	return out
}

// markOverloads flags functions whose Python name repeats among siblings.
func (r *renderer) markOverloads(items []*item) {
	counts := map[string]int{}

	for _, it := range items {
		if _, ok := it.decl.(*model.Function); ok {
			counts[it.pyName]++
		}
	}

	for _, it := range items {
		if _, ok := it.decl.(*model.Function); ok && counts[it.pyName] > 1 {
			it.overloaded = true
		}
	}
}

// checkOverloads reports overloads that Python callers cannot tell apart
// because their visible signatures are identical.
func (r *renderer) checkOverloads(items []*item, ty *typer) {
	seen := map[string]*item{}

	for _, it := range items {
		if it.overloaded {
			sig := it.pyName + "(" + strings.Join(ty.signature(it), ", ") + ")"
			if first, dup := seen[sig]; dup {
				f := it.decl.(*model.Function)
				r.diags.AddInfo(diagnostic.KindNote, "overload_indistinguishable",
					"overload has the same Python signature as "+model.Identity(first.decl)+": "+sig,
					f.QualifiedName(), f.Span)
			} else {
				seen[sig] = it
			}
		}

		if _, ok := it.decl.(*model.Struct); ok {
			r.checkOverloads(it.children, ty)
		}
	}
}

// emitScope is where a list of items is registered.
type emitScope struct {
	// glueVar is the C++ variable items are registered on.
	glueVar string
	owner   *item
	depth   int
}

// backend is one output format.
type backend interface {
	function(it *item, sc emitScope)
	variable(it *item, sc emitScope)
	region(it *item, sc emitScope)
	enum(it *item, sc emitScope)
	openClass(it *item, sc emitScope) emitScope
	closeClass(it *item, sc emitScope)
}

func (r *renderer) emit(items []*item, backends []backend, sc emitScope) {
	for _, it := range items {
		for _, b := range backends {
			switch it.decl.(type) {
			case *model.Function:
				b.function(it, sc)
			case *model.Variable:
				b.variable(it, sc)
			case *model.Region:
				b.region(it, sc)
			case *model.Enum:
				b.enum(it, sc)
			case *model.Struct:
				inner := b.openClass(it, sc)
				r.emit(it.children, []backend{b}, inner)
				b.closeClass(it, sc)
			case *model.Namespace, *model.EnumConstant, *model.Parameter:
				panic("gen: declaration should have been lowered")
			default:
				panic("gen: unhandled declaration type")
			}
		}
	}
}

func joinPy(scope, name string) string {
	if scope == "" {
		return name
	}

	return scope + "." + name
}

// boxName is the Python class of the box holding elem.
//   - "float" -> "FloatBox"
//   - "unsigned int" -> "UnsignedIntBox"
func boxName(elem ctype.Expr) string {
	return naming.ToCamel(elem.Base) + "Box"
}

// cppIdent turns a dotted or qualified name into a C++ identifier fragment.
func cppIdent(s string) string {
	return strings.NewReplacer(".", "_", "::", "_", "<", "_", ">", "", " ", "_", ",", "_", "*", "p").Replace(s)
}

// memberSpelling is the spelling of a method relative to its class.
func memberSpelling(fn *model.Function) string {
	return strings.TrimPrefix(fn.CppName(), common.JoinScope(fn.Scope)+"::")
}
