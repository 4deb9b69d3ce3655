package specialize

import (
	"regexp"
	"slices"
	"strings"

	"pyglue-generator/internal/ctype"
	"pyglue-generator/internal/diagnostic"
	"pyglue-generator/internal/model"
	"pyglue-generator/internal/naming"
	"pyglue-generator/internal/policy"
)

// Resolve returns the concrete declarations for d. A declaration that is not
// a template is returned as is; a template that cannot be specialized yields
// nothing and a diagnostic.
func Resolve(d model.Decl, pol *policy.Policy) ([]model.Decl, diagnostic.Diagnostics) {
	var diags diagnostic.Diagnostics

	params, kind := templateOf(d)
	if len(params) == 0 {
		return []model.Decl{d}, diags
	}

	b := d.Info()

	if len(params) > 1 {
		diags.AddWarning(diagnostic.KindModelBuild, "multi_param_template",
			"templates with more than one parameter are not supported", b.QualifiedName(), b.Span)

		return nil, diags
	}

	spec, ok := pol.Template(b.Name, kind)
	if !ok {
		diags.AddInfo(diagnostic.KindNote, "template_unmatched",
			"no "+string(kind)+" template specialization configured", b.QualifiedName(), b.Span)

		return nil, diags
	}

	if kind == policy.TemplateClass && spec.Naming == policy.NamingNone {
		diags.AddError(diagnostic.KindPolicyValidation, "class_template_unnamed",
			"class template specializations need distinct names", b.QualifiedName(), b.Span)

		return nil, diags
	}

	if len(spec.Params) > 0 && spec.Params[0] != params[0] {
		diags.AddWarning(diagnostic.KindModelBuild, "template_param_mismatch",
			"policy names parameter "+spec.Params[0]+" but the template declares "+params[0],
			b.QualifiedName(), b.Span)

		return nil, diags
	}

	out := make([]model.Decl, 0, len(spec.Types))
	for _, typ := range spec.Types {
		out = append(out, instantiate(d, params[0], typ, spec.Naming))
	}

	return out, diags
}

func templateOf(d model.Decl) ([]string, policy.TemplateKind) {
	switch v := d.(type) {
	case *model.Function:
		return v.TemplateParams, policy.TemplateFunction
	case *model.Struct:
		return v.TemplateParams, policy.TemplateClass
	default:
		return nil, ""
	}
}

func instantiate(d model.Decl, param, typ string, scheme policy.NamingScheme) model.Decl {
	switch v := d.(type) {
	case *model.Function:
		fn := v.Clone()
		fn.Spelling = v.QualifiedName() + "<" + typ + ">"
		fn.Name = Name(v.Name, typ, scheme)
		fn.TemplateParams = nil
		fn.ReturnType = subst(fn.ReturnType, param, typ)
		fn.TypeText = subst(fn.TypeText, param, typ)

		for _, p := range fn.Params {
			p.TypeText = subst(p.TypeText, param, typ)
			p.Default = ctype.ReplaceWord(p.Default, param, typ)
		}

		return fn

	case *model.Struct:
		s := v.Clone()
		s.Spelling = v.QualifiedName() + "<" + typ + ">"
		s.Name = Name(v.Name, typ, scheme)
		s.TemplateParams = nil

		for i, base := range s.Bases {
			s.Bases[i] = ctype.ReplaceWord(base, param, typ)
		}

		rehome(s, v, param, typ)

		return s

	default:
		return d
	}
}

// rehome rewrites the members of a cloned class template: scope paths get the
// specialized name, owners the specialized spelling, and type texts the
// concrete type.
func rehome(s, tmpl *model.Struct, param, typ string) {
	depth := len(tmpl.Scope)
	owner := tmpl.QualifiedName()

	model.Walk(s.Children, func(c model.Decl) bool {
		info := c.Info()

		if depth < len(info.Scope) && info.Scope[depth] == tmpl.Name {
			info.Scope = slices.Clone(info.Scope)
			info.Scope[depth] = s.Name
		}

		info.TypeText = subst(info.TypeText, param, typ)

		switch m := c.(type) {
		case *model.Function:
			m.ReturnType = subst(m.ReturnType, param, typ)
			if m.Owner == owner {
				m.Owner = s.Spelling
			}

			if m.Constructor {
				m.Name = s.Name
			}
		case *model.Parameter:
			m.Default = ctype.ReplaceWord(m.Default, param, typ)
		case *model.Variable:
			m.Default = ctype.ReplaceWord(m.Default, param, typ)
		}

		return true
	})
}

// subst replaces the template parameter in a type text and re-canonicalizes
// it, so "T *" with T=float stays "float *" and T=ImVec2* becomes "ImVec2 **".
func subst(text, param, typ string) string {
	if text == "" || text == "..." {
		return text
	}

	replaced := ctype.ReplaceWord(text, param, typ)
	if replaced == text {
		return text
	}

	return ctype.Parse(replaced).String()
}

var nonIdent = regexp.MustCompile(`[^A-Za-z0-9]+`)

// Name derives the name of a specialization.
//   - Name("Sum", "float", snake-suffix) -> "Sum_float"
//   - Name("ImVector", "unsigned int", camel-suffix) -> "ImVectorUnsignedInt"
func Name(name, typ string, scheme policy.NamingScheme) string {
	token := strings.Trim(nonIdent.ReplaceAllString(strings.ReplaceAll(typ, "*", " ptr "), "_"), "_")

	switch scheme {
	case policy.NamingSnakePrefix:
		return naming.ToSnake(token) + "_" + name
	case policy.NamingSnakeSuffix:
		return name + "_" + naming.ToSnake(token)
	case policy.NamingCamelPrefix:
		return naming.ToCamel(token) + name
	case policy.NamingCamelSuffix:
		return name + naming.ToCamel(token)
	default:
		return name
	}
}
