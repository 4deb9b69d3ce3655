package build

import (
	"strings"

	"pyglue-generator/internal/ctype"
	"pyglue-generator/internal/srctree"
)

var typeTags = []string{
	"primitive_type", "type_identifier", "sized_type_specifier", "qualified_identifier",
	"qualified_type_identifier", "template_type", "struct_specifier", "class_specifier",
	"enum_specifier", "union_specifier", "placeholder_type_specifier", "auto", "decltype",
	"dependent_type",
}

var declaratorTags = []string{
	"identifier", "field_identifier", "destructor_name", "operator_name", "qualified_identifier",
	"template_function", "operator_cast",
	"pointer_declarator", "abstract_pointer_declarator",
	"reference_declarator", "abstract_reference_declarator",
	"array_declarator", "abstract_array_declarator",
	"function_declarator", "abstract_function_declarator",
	"parenthesized_declarator", "abstract_parenthesized_declarator",
	"init_declarator",
}

// specs is the decoded specifier sequence of a declaration.
type specs struct {
	typ         *srctree.Node
	isConst     bool
	isStatic    bool
	isVirtual   bool
	declarators []*srctree.Node
	// value is the node after "=" (default argument or member initializer).
	value *srctree.Node
	// init is a brace initializer without "=".
	init     *srctree.Node
	bitfield bool
	deleted  bool
}

func (b *builder) specifiers(n *srctree.Node) specs {
	var sp specs

	afterEq := false

	for _, c := range n.Children {
		switch {
		case afterEq:
			if sp.value == nil && !c.Is(";") {
				sp.value = c
			}

		case c.Is("="):
			afterEq = true

		case c.Is("type_qualifier"):
			if b.flat(c) == "const" {
				sp.isConst = true
			}

		case c.Is("storage_class_specifier"):
			if b.flat(c) == "static" {
				sp.isStatic = true
			}

		case c.Is("virtual", "virtual_function_specifier"):
			sp.isVirtual = true

		case c.Is("bitfield_clause"):
			sp.bitfield = true

		case c.Is("delete_method_clause"):
			sp.deleted = true

		case c.Is("initializer_list"):
			sp.init = c

		case sp.typ == nil && c.Is(typeTags...):
			sp.typ = c

		case c.Is(declaratorTags...):
			sp.declarators = append(sp.declarators, c)
		}
	}

	return sp
}

// shape is an unwrapped declarator chain.
type shape struct {
	name     *srctree.Node
	pointers int
	ref      string
	dims     []string
	fn       *srctree.Node
	// value is the initializer of an init_declarator.
	value *srctree.Node
}

func (b *builder) shape(d *srctree.Node) shape {
	var sh shape

	for d != nil {
		switch d.Tag {
		case "pointer_declarator", "abstract_pointer_declarator":
			if sh.fn == nil {
				sh.pointers++
			}

			d = lastOf(d, declaratorTags)

		case "reference_declarator", "abstract_reference_declarator":
			if sh.fn == nil && len(d.Children) > 0 {
				sh.ref = b.text(d.Children[0])
			}

			d = lastOf(d, declaratorTags)

		case "array_declarator", "abstract_array_declarator":
			if sh.fn == nil {
				sh.dims = append([]string{b.arraySize(d)}, sh.dims...)
			}

			d = d.Child(declaratorTags...)

		case "function_declarator", "abstract_function_declarator":
			if sh.fn == nil {
				sh.fn = d
			}

			d = d.Child(declaratorTags...)

		case "init_declarator":
			if eq := indexOf(d, "="); eq >= 0 && eq+1 < len(d.Children) {
				sh.value = d.Children[eq+1]
			} else if init := d.Child("initializer_list", "argument_list"); init != nil {
				sh.value = init
			}

			d = d.Child(declaratorTags...)

		case "parenthesized_declarator", "abstract_parenthesized_declarator":
			d = d.Child(declaratorTags...)

		default:
			sh.name = d
			return sh
		}
	}

	return sh
}

func (b *builder) arraySize(d *srctree.Node) string {
	open := indexOf(d, "[")
	if open < 0 {
		return ""
	}

	for _, c := range d.Children[open+1:] {
		if c.Is("]") {
			break
		}

		if !c.Is("type_qualifier") {
			return b.flat(c)
		}
	}

	return ""
}

// typeText composes the canonical type of a declarator.
func (b *builder) typeText(sp specs, sh shape) string {
	var s strings.Builder

	if sp.isConst {
		s.WriteString("const ")
	}

	s.WriteString(b.flat(sp.typ))
	s.WriteString(" ")
	s.WriteString(strings.Repeat("*", sh.pointers))
	s.WriteString(sh.ref)

	for _, d := range sh.dims {
		s.WriteString("[" + d + "]")
	}

	return ctype.Parse(s.String()).String()
}

func lastOf(n *srctree.Node, tags []string) *srctree.Node {
	for i := len(n.Children) - 1; i >= 0; i-- {
		if n.Children[i].Is(tags...) {
			return n.Children[i]
		}
	}

	return nil
}

func indexOf(n *srctree.Node, tag string) int {
	for i, c := range n.Children {
		if c.Is(tag) {
			return i
		}
	}

	return -1
}
