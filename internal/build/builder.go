package build

import (
	"context"
	"fmt"
	"strings"

	"pyglue-generator/internal/comments"
	"pyglue-generator/internal/common"
	"pyglue-generator/internal/diagnostic"
	"pyglue-generator/internal/model"
	"pyglue-generator/internal/policy"
	"pyglue-generator/internal/replace"
	"pyglue-generator/internal/scope"
	"pyglue-generator/internal/srctree"
)

// Input is one header ready to be modeled.
type Input struct {
	// File is the header path used in diagnostics.
	File string
	// Source is the text the tree was parsed from (markers already stripped).
	Source []byte
	Tree   *srctree.Node
	// Markers are the API marker positions found by StripMarkers.
	Markers MarkerSet
}

type builder struct {
	ctx     context.Context
	pol     *policy.Policy
	src     []byte
	lineOff []int
	markers MarkerSet

	scope  scope.Resolver
	groups *comments.Grouper
	cache  *replace.Cache
	diags  diagnostic.Diagnostics
	seen   map[string]struct{}
}

// site carries the context a declaration node was found in.
type site struct {
	// outer is the node that owns comments and span (a template_declaration
	// wrapping the declaration, or the declaration itself).
	outer *srctree.Node
	tmpl  []string
	// inBody is set for struct and enum members.
	inBody bool
}

func (s site) wrap(n *srctree.Node) *srctree.Node {
	if s.outer != nil {
		return s.outer
	}

	return n
}

// Build models one header. It never fails as a whole: declarations that
// cannot be modeled are reported and skipped. The returned cache holds the
// renames discovered for this file.
func Build(ctx context.Context, in Input, pol *policy.Policy) (*model.Model, *replace.Cache, diagnostic.Diagnostics) {
	b := &builder{
		ctx:     ctx,
		pol:     pol,
		src:     in.Source,
		lineOff: lineOffsets(in.Source),
		markers: in.Markers,
		groups:  comments.New(in.Source),
		cache:   replace.New(),
		seen:    map[string]struct{}{},
	}

	m := &model.Model{File: in.File}

	if in.Tree == nil {
		b.diags.AddError(diagnostic.KindModelBuild, "no_tree", "no syntax tree to build from", "", common.Span{})
	} else {
		m.Decls = b.items(in.Tree.Children)
	}

	if b.scope.Depth() != 0 {
		panic(fmt.Sprintf("build: scope not balanced after %s: %s", in.File, b.scope.String()))
	}

	if err := ctx.Err(); err != nil {
		b.diags.AddError(diagnostic.KindModelBuild, "canceled", err.Error(), "", common.Span{})
	}

	b.diags.WithFile(in.File)

	return m, b.cache, b.diags
}

// items models namespace-level nodes.
func (b *builder) items(nodes []*srctree.Node) []model.Decl {
	var out []model.Decl

	for _, n := range nodes {
		if b.ctx.Err() != nil {
			return out
		}

		out = append(out, b.item(n, site{})...)
	}

	return out
}

func (b *builder) item(n *srctree.Node, st site) []model.Decl {
	switch n.Tag {
	case srctree.TagError:
		b.warn("syntax_error", "unparsable source region skipped", "", n.Span())
		return nil

	case "namespace_definition":
		return b.namespace(n)

	case "linkage_specification":
		if body := n.Child("declaration_list"); body != nil {
			return b.items(body.Children)
		}

		return b.items(n.Children[1:])

	case "preproc_if", "preproc_ifdef":
		return b.items(n.ChildrenOf(publicTags...))

	case "template_declaration":
		params := b.templateParams(n.Child("template_parameter_list"))

		var out []model.Decl
		for _, c := range n.Children {
			out = append(out, b.item(c, site{outer: n, tmpl: params})...)
		}

		return out

	case "struct_specifier", "class_specifier":
		return b.structDecl(n, st)

	case "enum_specifier":
		return b.enumDecl(n, st)

	case "declaration", "function_definition":
		return b.declaration(n, st, nil)

	default:
		return nil
	}
}

// publicTags are the children of preprocessor conditionals that hold code
// of the first branch.
var publicTags = []string{
	srctree.TagError, "namespace_definition", "linkage_specification", "preproc_if", "preproc_ifdef",
	"template_declaration", "struct_specifier", "class_specifier", "enum_specifier",
	"declaration", "function_definition",
}

// declaration handles a declaration or function definition. owner is the
// enclosing struct for members.
func (b *builder) declaration(n *srctree.Node, st site, owner *model.Struct) []model.Decl {
	sp := b.specifiers(n)

	if sp.typ != nil && sp.typ.Is("struct_specifier", "class_specifier", "enum_specifier") && hasBody(sp.typ) {
		if sp.typ.Is("enum_specifier") {
			return b.enumDecl(sp.typ, site{outer: st.wrap(n), inBody: st.inBody})
		}

		return b.structDecl(sp.typ, site{outer: st.wrap(n), tmpl: st.tmpl, inBody: st.inBody})
	}

	var out []model.Decl

	for _, d := range sp.declarators {
		sh := b.shape(d)
		if sh.fn == nil {
			continue
		}

		if fn := b.function(n, st, sp, sh, owner); fn != nil {
			out = append(out, fn)
		}
	}

	return out
}

func (b *builder) claim(d model.Decl) bool {
	id := model.Identity(d)
	if _, dup := b.seen[id]; dup {
		b.warn("duplicate_declaration", "declaration already modeled: "+id, d.Info().QualifiedName(), d.Info().Span)
		return false
	}

	b.seen[id] = struct{}{}

	return true
}

// base fills the common attributes and claims the leading comment.
func (b *builder) base(name string, n *srctree.Node, st site) model.Base {
	outer := st.wrap(n)

	var leading string
	if st.inBody && b.pol.Regions {
		leading = b.groups.LeadingInBody(outer.Start.Line)
	} else {
		leading = b.groups.Leading(outer.Start.Line)
	}

	return model.Base{
		Name:       name,
		Scope:      b.scope.Path(),
		Span:       outer.Span(),
		Comment:    leading,
		EOLComment: b.groups.EOL(outer.End),
		Visibility: model.Public,
	}
}

func (b *builder) warn(code, msg, decl string, span common.Span) {
	b.diags.AddWarning(diagnostic.KindModelBuild, code, msg, decl, span)
}

func (b *builder) note(code, msg, decl string, span common.Span) {
	b.diags.AddInfo(diagnostic.KindNote, code, msg, decl, span)
}

// text returns the literal text of a node, slicing the source for interior nodes.
func (b *builder) text(n *srctree.Node) string {
	if n == nil {
		return ""
	}

	if n.Text != "" {
		return n.Text
	}

	start, end := b.offset(n.Start), b.offset(n.End)
	if start < 0 || end < start || end > len(b.src) {
		return ""
	}

	return string(b.src[start:end])
}

// flat is text with whitespace runs collapsed.
func (b *builder) flat(n *srctree.Node) string {
	return strings.Join(strings.Fields(b.text(n)), " ")
}

func (b *builder) offset(p common.Position) int {
	if p.Line < 1 || p.Line > len(b.lineOff) {
		return -1
	}

	return b.lineOff[p.Line-1] + p.Column
}

func lineOffsets(src []byte) []int {
	offs := []int{0}

	for i, c := range src {
		if c == '\n' {
			offs = append(offs, i+1)
		}
	}

	return offs
}

// hasBody reports whether a struct, class or enum specifier has a body.
func hasBody(n *srctree.Node) bool {
	return n.Child("field_declaration_list", "enumerator_list") != nil
}

// unbalanced reports a body whose braces were not both found.
func unbalanced(body *srctree.Node) bool {
	if len(body.Children) < 2 {
		return true
	}

	first, last := body.Children[0], body.Children[len(body.Children)-1]

	return !first.Is("{") || !last.Is("}") || body.Child(srctree.TagMissing) != nil
}

func (b *builder) templateParams(list *srctree.Node) []string {
	var out []string

	for _, p := range list.ChildrenOf(
		"type_parameter_declaration", "optional_type_parameter_declaration",
		"variadic_type_parameter_declaration", "parameter_declaration", "optional_parameter_declaration",
	) {
		var id *srctree.Node
		if p.Is("parameter_declaration", "optional_parameter_declaration") {
			id = p.Find("identifier")
		} else {
			id = p.Find("type_identifier", "identifier")
		}

		if id != nil {
			out = append(out, b.text(id))
		}
	}

	return out
}
