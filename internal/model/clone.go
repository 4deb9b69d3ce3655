package model

import (
	"slices"
)

func cloneBase(b Base) Base {
	b.Scope = slices.Clone(b.Scope)
	return b
}

// Clone returns a deep copy of the function.
func (f *Function) Clone() *Function {
	cp := *f
	cp.Base = cloneBase(f.Base)
	cp.TemplateParams = slices.Clone(f.TemplateParams)
	cp.Params = make([]*Parameter, len(f.Params))

	for i, p := range f.Params {
		pc := *p
		pc.Base = cloneBase(p.Base)
		cp.Params[i] = &pc
	}

	return &cp
}

// Clone returns a deep copy of the struct and its members.
func (s *Struct) Clone() *Struct {
	cp := *s
	cp.Base = cloneBase(s.Base)
	cp.Bases = slices.Clone(s.Bases)
	cp.TemplateParams = slices.Clone(s.TemplateParams)
	cp.Children = cloneAll(s.Children)

	return &cp
}

func cloneAll(decls []Decl) []Decl {
	out := make([]Decl, 0, len(decls))
	for _, d := range decls {
		out = append(out, cloneDecl(d))
	}

	return out
}

func cloneDecl(d Decl) Decl {
	switch v := d.(type) {
	case *Function:
		return v.Clone()
	case *Struct:
		return v.Clone()
	case *Enum:
		cp := *v
		cp.Base = cloneBase(v.Base)
		cp.Children = cloneAll(v.Children)

		return &cp
	case *Namespace:
		cp := *v
		cp.Base = cloneBase(v.Base)
		cp.Children = cloneAll(v.Children)

		return &cp
	case *Parameter:
		cp := *v
		cp.Base = cloneBase(v.Base)

		return &cp
	case *EnumConstant:
		cp := *v
		cp.Base = cloneBase(v.Base)

		return &cp
	case *Variable:
		cp := *v
		cp.Base = cloneBase(v.Base)

		return &cp
	case *Region:
		cp := *v
		cp.Base = cloneBase(v.Base)

		return &cp
	default:
		panic("model: unhandled declaration type")
	}
}
