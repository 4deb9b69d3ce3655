package model

import (
	"slices"
	"strings"

	"pyglue-generator/internal/common"
)

// Visibility is the C++ access level of a declaration.
type Visibility int

const (
	Public Visibility = iota
	Protected
	Private
)

// String returns the access keyword.
func (v Visibility) String() string {
	switch v {
	case Public:
		return "public"
	case Protected:
		return "protected"
	case Private:
		return "private"
	default:
		return common.UnknownStr
	}
}

// Base holds the attributes every declaration has.
type Base struct {
	// Name is the unqualified name.
	Name string
	// Scope lists the enclosing namespace/class/enum names, outermost first.
	Scope []string
	// Span locates the declaration in the header.
	Span common.Span
	// Comment is the leading comment block, without comment tokens.
	Comment string
	// EOLComment is the comment that follows the declaration on its last line.
	EOLComment string
	// Visibility of the declaration inside its container.
	Visibility Visibility
	// TypeText is the raw type expression (empty where it does not apply).
	TypeText string
	// Spelling is the qualified C++ expression naming the declaration when
	// Name was derived, as for template specializations.
	Spelling string
}

// Info returns the common attributes.
func (b *Base) Info() *Base {
	return b
}

// QualifiedName returns "ns::Cls::name".
func (b *Base) QualifiedName() string {
	return common.JoinScope(append(slices.Clone(b.Scope), b.Name))
}

// CppName is the C++ expression that refers to the declaration.
func (b *Base) CppName() string {
	if b.Spelling != "" {
		return b.Spelling
	}

	return b.QualifiedName()
}

// Decl is one semantic unit recovered from the header.
type Decl interface {
	Info() *Base
	decl()
}

// Function is a free function, method or constructor.
type Function struct {
	Base
	// ReturnType is the raw return type expression. Empty for constructors.
	ReturnType string
	Params     []*Parameter
	Static     bool
	Virtual    bool
	Const      bool
	// Constructor marks a constructor; it is emitted as an initializer.
	Constructor bool
	// Owner is the qualified name of the owning struct, empty for free functions.
	Owner string
	// TemplateParams names the template parameters, empty if not a template.
	TemplateParams []string
}

// Parameter is one function parameter.
type Parameter struct {
	Base
	// Default is the raw default value expression, if any.
	Default string
	// Index is the zero-based position.
	Index int
	// Variadic marks a C "..." parameter.
	Variadic bool
}

// Struct is a struct or class.
type Struct struct {
	Base
	IsClass bool
	// Children are members in source order interleaved with *Region markers.
	Children []Decl
	// Bases are the public base classes as written.
	Bases          []string
	TemplateParams []string
}

// Enum is a plain enum or enum class.
type Enum struct {
	Base
	Scoped bool
	// Children are constants in source order interleaved with *Region markers.
	Children []Decl
}

// EnumConstant is one enumerator. Name is the emitted name; CName is the
// identifier as written in the header.
type EnumConstant struct {
	Base
	CName string
	// Value is the raw initializer expression, if any.
	Value string
}

// Namespace is a C++ namespace.
type Namespace struct {
	Base
	Children []Decl
}

// Variable is a data member.
type Variable struct {
	Base
	// Default is the raw default member initializer, if any.
	Default string
	Static  bool
	Const   bool
}

// Region is a named grouping of sibling members recovered from
// comment-delimited blocks. Name holds the title.
type Region struct {
	Base
}

func (*Function) decl()     {}
func (*Parameter) decl()    {}
func (*Struct) decl()       {}
func (*Enum) decl()         {}
func (*EnumConstant) decl() {}
func (*Namespace) decl()    {}
func (*Variable) decl()     {}
func (*Region) decl()       {}

// IsMethod reports whether the function belongs to a struct.
func (f *Function) IsMethod() bool {
	return f.Owner != ""
}

// IsTemplate reports whether the function has template parameters.
func (f *Function) IsTemplate() bool {
	return len(f.TemplateParams) > 0
}

// IsTemplate reports whether the struct has template parameters.
func (s *Struct) IsTemplate() bool {
	return len(s.TemplateParams) > 0
}

// ParamTypes returns the raw parameter type texts in order.
func (f *Function) ParamTypes() []string {
	out := make([]string, 0, len(f.Params))
	for _, p := range f.Params {
		out = append(out, p.TypeText)
	}

	return out
}

// Children returns the ordered children of a container, or nil.
func Children(d Decl) []Decl {
	switch v := d.(type) {
	case *Struct:
		return v.Children
	case *Enum:
		return v.Children
	case *Namespace:
		return v.Children
	default:
		return nil
	}
}

// Identity is the (scope path, name, parameter-type signature) key that is
// unique within one build.
func Identity(d Decl) string {
	b := d.Info()
	id := b.QualifiedName()

	switch v := d.(type) {
	case *Function:
		id += "(" + strings.Join(v.ParamTypes(), ", ") + ")"
		if v.Const {
			id += " const"
		}
	case *Region:
		id = "#region " + id + "@" + b.Span.Start.String()
	}

	return id
}
