package build

import (
	"fmt"

	"pyglue-generator/internal/model"
	"pyglue-generator/internal/srctree"
)

// function models a function, method or constructor. It returns nil for
// declarations that are skipped.
func (b *builder) function(n *srctree.Node, st site, sp specs, sh shape, owner *model.Struct) *model.Function {
	outer := st.wrap(n)

	if sh.name == nil {
		return nil
	}

	switch sh.name.Tag {
	case "destructor_name":
		return nil
	case "operator_name", "operator_cast":
		b.note("operator_skipped", "operators are not exposed", b.flat(sh.name), outer.Span())
		return nil
	case "qualified_identifier", "template_function":
		// out-of-class definition or explicit specialization
		return nil
	}

	name := b.text(sh.name)

	if sp.deleted {
		return nil
	}

	if n.HasDefect() {
		b.warn("malformed_declaration", "declaration could not be bounded", b.scope.Qualify(name), outer.Span())
		return nil
	}

	if b.pol.ExcludedFunction(name) {
		return nil
	}

	isCtor := owner != nil && sp.typ == nil && name == owner.Name
	if sp.typ == nil && !isCtor {
		b.note("untyped_function_skipped", "function without a return type is not a constructor", b.scope.Qualify(name), outer.Span())
		return nil
	}

	if owner == nil && b.pol.HasPublishMarkers() && !b.markers.On(outer.Span()) {
		return nil
	}

	fn := &model.Function{
		Base:           b.base(name, n, st),
		Static:         sp.isStatic,
		Virtual:        sp.isVirtual,
		Constructor:    isCtor,
		TemplateParams: st.tmpl,
	}

	if !isCtor {
		fn.ReturnType = b.typeText(sp, sh)
		fn.TypeText = fn.ReturnType
	}

	if owner != nil {
		fn.Owner = owner.QualifiedName()
	}

	for _, c := range sh.fn.Children {
		if c.Is("type_qualifier") && b.flat(c) == "const" {
			fn.Const = true
		}
	}

	fn.Params = b.params(sh.fn.Child("parameter_list"), append(b.scope.Path(), name))

	if !b.claim(fn) {
		return nil
	}

	return fn
}

func (b *builder) params(list *srctree.Node, fnScope []string) []*model.Parameter {
	var out []*model.Parameter

	if list == nil {
		return nil
	}

	for _, c := range list.Children {
		p := &model.Parameter{Index: len(out)}
		p.Scope = fnScope
		p.Span = c.Span()

		switch {
		case c.Is("variadic_parameter", "...", "variadic_parameter_declaration"):
			p.Name = "..."
			p.TypeText = "..."
			p.Variadic = true

		case c.Is("parameter_declaration", "optional_parameter_declaration"):
			sp := b.specifiers(c)

			var sh shape
			if len(sp.declarators) > 0 {
				sh = b.shape(sp.declarators[0])
			}

			if sh.name != nil {
				p.Name = b.text(sh.name)
			}

			if sh.fn != nil {
				// function pointer: keep the written type, minus the name
				p.TypeText = b.flat(c)
			} else {
				p.TypeText = b.typeText(sp, sh)
			}

			if sp.value != nil {
				p.Default = b.flat(sp.value)
			}

			if p.TypeText == "void" && p.Name == "" {
				continue
			}

		default:
			continue
		}

		if p.Name == "" {
			p.Name = fmt.Sprintf("arg%d", p.Index)
		}

		out = append(out, p)
	}

	return out
}
