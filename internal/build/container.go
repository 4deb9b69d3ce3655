package build

import (
	"strings"

	"pyglue-generator/internal/comments"
	"pyglue-generator/internal/common"
	"pyglue-generator/internal/model"
	"pyglue-generator/internal/naming"
	"pyglue-generator/internal/scope"
	"pyglue-generator/internal/srctree"
)

// countSuffix marks enum constants that only count the others.
const countSuffix = "_COUNT"

func (b *builder) namespace(n *srctree.Node) []model.Decl {
	body := n.Child("declaration_list")
	if body == nil {
		return nil
	}

	name := b.text(n.Child("namespace_identifier", "nested_namespace_specifier"))

	if unbalanced(body) {
		b.warn("unbalanced_body", "namespace body is not closed", name, n.Span())
		return nil
	}

	ns := &model.Namespace{Base: b.base(name, n, site{})}

	parts := strings.Split(name, "::")
	for _, p := range parts {
		b.scope.Enter(scope.Part{Kind: scope.KindNamespace, Name: strings.TrimSpace(p)})
	}

	ns.Children = b.items(body.Children)

	for range parts {
		b.scope.Leave()
	}

	return []model.Decl{ns}
}

func (b *builder) structDecl(n *srctree.Node, st site) []model.Decl {
	body := n.Child("field_declaration_list")
	if body == nil {
		return nil
	}

	nameNode := n.Child("type_identifier", "qualified_identifier", "template_type")

	switch {
	case nameNode == nil:
		b.note("anonymous_skipped", "anonymous struct is not exposed", b.scope.Qualify(""), n.Span())
		return nil
	case nameNode.Is("template_type"):
		b.note("specialization_skipped", "explicit template specialization is not exposed", b.flat(nameNode), n.Span())
		return nil
	}

	name := b.text(nameNode)

	if unbalanced(body) {
		b.warn("unbalanced_body", "struct body is not closed", b.scope.Qualify(name), st.wrap(n).Span())
		return nil
	}

	if b.pol.ExcludedClass(name) {
		return nil
	}

	s := &model.Struct{
		Base:           b.base(name, n, st),
		IsClass:        n.Is("class_specifier"),
		TemplateParams: st.tmpl,
	}

	if clause := n.Child("base_class_clause"); clause != nil {
		for _, c := range clause.ChildrenOf("type_identifier", "qualified_identifier", "template_type") {
			s.Bases = append(s.Bases, b.flat(c))
		}
	}

	if !b.claim(s) {
		return nil
	}

	b.scope.Enter(scope.Part{Kind: scope.KindClass, Name: name})
	defer b.scope.Leave()

	access := model.Public
	if s.IsClass {
		access = model.Private
	}

	rg := b.regions(body)

	for _, c := range body.Children {
		switch {
		case c.Is("access_specifier"):
			access = parseAccess(b.flat(c))
			continue
		case c.Is("{", "}", ";", ":", "comment"):
			continue
		case access != model.Public:
			continue
		}

		members := b.member(c, s, site{inBody: true})
		if len(members) == 0 {
			continue
		}

		s.Children = append(s.Children, rg.flush(c.Start.Line)...)
		s.Children = append(s.Children, members...)
	}

	s.Children = append(s.Children, rg.flush(body.End.Line+1)...)

	return []model.Decl{s}
}

func (b *builder) member(n *srctree.Node, owner *model.Struct, st site) []model.Decl {
	switch n.Tag {
	case srctree.TagError:
		b.warn("syntax_error", "unparsable member skipped", owner.QualifiedName(), n.Span())
		return nil

	case "template_declaration":
		params := b.templateParams(n.Child("template_parameter_list"))

		var out []model.Decl
		for _, c := range n.Children {
			out = append(out, b.member(c, owner, site{outer: n, tmpl: params, inBody: true})...)
		}

		return out

	case "struct_specifier", "class_specifier":
		return b.structDecl(n, st)

	case "enum_specifier":
		return b.enumDecl(n, st)

	case "declaration", "function_definition":
		return b.declaration(n, st, owner)

	case "field_declaration":
		return b.field(n, owner, st)

	default:
		return nil
	}
}

// field handles a field_declaration: nested types, method declarations and
// data members.
func (b *builder) field(n *srctree.Node, owner *model.Struct, st site) []model.Decl {
	sp := b.specifiers(n)

	if sp.typ != nil && sp.typ.Is("struct_specifier", "class_specifier", "enum_specifier") && hasBody(sp.typ) {
		if sp.typ.Is("enum_specifier") {
			return b.enumDecl(sp.typ, site{outer: st.wrap(n), inBody: true})
		}

		return b.structDecl(sp.typ, site{outer: st.wrap(n), tmpl: st.tmpl, inBody: true})
	}

	var out []model.Decl

	for i, d := range sp.declarators {
		sh := b.shape(d)

		if sh.fn != nil {
			if fn := b.function(n, st, sp, sh, owner); fn != nil {
				out = append(out, fn)
			}

			continue
		}

		if sh.name == nil || sp.typ == nil {
			continue
		}

		name := b.text(sh.name)

		if n.HasDefect() {
			b.warn("malformed_declaration", "member could not be bounded", b.scope.Qualify(name), n.Span())
			return out
		}

		if sp.bitfield {
			b.note("bitfield_skipped", "bit fields cannot be exposed", b.scope.Qualify(name), n.Span())
			continue
		}

		if b.pol.ExcludedDeclaration(name) {
			continue
		}

		v := &model.Variable{
			Base:   b.base(name, n, st),
			Static: sp.isStatic,
			Const:  sp.isConst,
		}
		v.TypeText = b.typeText(sp, sh)

		// the initializer written after the last declarator belongs to it
		if i == len(sp.declarators)-1 {
			switch {
			case sp.value != nil:
				v.Default = b.flat(sp.value)
			case sp.init != nil:
				v.Default = b.flat(sp.init)
			}
		}

		if b.claim(v) {
			out = append(out, v)
		}
	}

	return out
}

func (b *builder) enumDecl(n *srctree.Node, st site) []model.Decl {
	list := n.Child("enumerator_list")
	if list == nil {
		return nil
	}

	nameNode := n.Child("type_identifier", "qualified_identifier")
	if nameNode == nil {
		b.note("anonymous_skipped", "anonymous enum is not exposed", b.scope.Qualify(""), n.Span())
		return nil
	}

	name := b.text(nameNode)

	if unbalanced(list) {
		b.warn("unbalanced_body", "enum body is not closed", b.scope.Qualify(name), st.wrap(n).Span())
		return nil
	}

	if b.pol.ExcludedClass(name) {
		return nil
	}

	e := &model.Enum{
		Base:   b.base(name, n, st),
		Scoped: n.Child("class", "struct") != nil,
	}

	if !b.claim(e) {
		return nil
	}

	pyPath := b.pyClassPath(name)
	nsPath := b.namespacePath()

	b.scope.Enter(scope.Part{Kind: scope.KindEnum, Name: name})
	defer b.scope.Leave()

	type entry struct {
		node  *srctree.Node
		cname string
		value string
	}

	var entries []entry

	for _, c := range list.ChildrenOf("enumerator") {
		cname := b.text(c.Child("identifier"))
		if cname == "" || strings.HasSuffix(cname, countSuffix) {
			continue
		}

		var value string
		if eq := indexOf(c, "="); eq >= 0 && eq+1 < len(c.Children) {
			value = b.flat(c.Children[eq+1])
		}

		entries = append(entries, entry{node: c, cname: cname, value: value})
	}

	var prefix string
	if b.pol.StripEnumPrefix {
		names := make([]string, 0, len(entries))
		for _, en := range entries {
			names = append(names, en.cname)
		}

		prefix = naming.StripCommonPrefix(names)
	}

	rg := b.regions(list)

	for _, en := range entries {
		if b.pol.ExcludedDeclaration(en.cname) {
			continue
		}

		emitted := strings.TrimPrefix(en.cname, prefix)

		k := &model.EnumConstant{
			Base:  b.base(emitted, en.node, site{inBody: true}),
			CName: en.cname,
			Value: en.value,
		}

		if !b.claim(k) {
			continue
		}

		e.Children = append(e.Children, rg.flush(en.node.Start.Line)...)
		e.Children = append(e.Children, k)

		b.recordRename(e, en.cname, pyPath+"."+naming.PyIdent(emitted), nsPath)
	}

	e.Children = append(e.Children, rg.flush(list.End.Line+1)...)

	return []model.Decl{e}
}

// recordRename registers how C++ text refers to a constant and what the
// Python side calls it. Qualified spellings go first so the bare rule does
// not split them.
func (b *builder) recordRename(e *model.Enum, cname, pyRef string, nsPath []string) {
	ref := cname
	if e.Scoped {
		ref = e.Name + "::" + cname
	}

	if len(nsPath) > 0 {
		b.cache.AddWord(common.JoinScope(append(nsPath, ref)), pyRef)
	}

	b.cache.AddWord(ref, pyRef)
}

// pyClassPath is the Python path of a type declared in the current scope:
// enclosing classes nest, namespaces flatten into the module.
func (b *builder) pyClassPath(name string) string {
	var parts []string

	for _, p := range b.scope.Parts() {
		if p.Kind == scope.KindClass {
			parts = append(parts, naming.PyClass(p.Name))
		}
	}

	return strings.Join(append(parts, naming.PyClass(name)), ".")
}

func (b *builder) namespacePath() []string {
	var out []string

	for _, p := range b.scope.Parts() {
		if p.Name != "" {
			out = append(out, p.Name)
		}
	}

	return out
}

func parseAccess(text string) model.Visibility {
	switch strings.TrimSuffix(text, ":") {
	case "protected":
		return model.Protected
	case "private":
		return model.Private
	default:
		return model.Public
	}
}

// regionQueue hands out code regions in source order.
type regionQueue struct {
	scope   []string
	pending []comments.Region
}

func (b *builder) regions(body *srctree.Node) *regionQueue {
	q := &regionQueue{scope: b.scope.Path()}
	if b.pol.Regions {
		q.pending = b.groups.Regions(body.Start.Line, body.End.Line, nestedBodies(body)...)
	}

	return q
}

// nestedBodies returns the spans of the bodies below body. Their regions
// belong to the nested declaration.
func nestedBodies(body *srctree.Node) []common.Span {
	var (
		out  []common.Span
		walk func(n *srctree.Node)
	)

	walk = func(n *srctree.Node) {
		for _, c := range n.Children {
			if c.Is("field_declaration_list", "enumerator_list", "compound_statement") {
				out = append(out, c.Span())
				continue
			}

			walk(c)
		}
	}

	walk(body)

	return out
}

// flush returns the regions that close before line.
func (q *regionQueue) flush(line int) []model.Decl {
	var out []model.Decl

	for len(q.pending) > 0 && q.pending[0].EndLine < line {
		r := q.pending[0]
		q.pending = q.pending[1:]

		out = append(out, &model.Region{Base: model.Base{
			Name:  r.Title,
			Scope: q.scope,
			Span: common.Span{
				Start: common.Position{Line: r.Line},
				End:   common.Position{Line: r.EndLine},
			},
		}})
	}

	return out
}
