package srctree

import (
	"context"
	"strings"

	"github.com/cockroachdb/errors"
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/cpp"

	"pyglue-generator/internal/common"
	"pyglue-generator/internal/diagnostic"
)

// SitterProvider parses C++ in-process with the tree-sitter C++ grammar.
// A fresh parser is created per call; tree-sitter parsers are not safe for
// concurrent use.
type SitterProvider struct{}

// NewSitterProvider returns the in-process provider.
func NewSitterProvider() *SitterProvider {
	return &SitterProvider{}
}

// Parse implements Provider. Only UTF-8 (or its ASCII subset) is accepted.
func (p *SitterProvider) Parse(ctx context.Context, source []byte, encoding string) (*Node, error) {
	switch strings.ToLower(encoding) {
	case "", "utf-8", "utf8", "ascii":
	default:
		return nil, diagnostic.Mark(errors.Newf("unsupported source encoding %q", encoding),
			diagnostic.KindSyntaxCollaborator)
	}

	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(cpp.GetLanguage())

	tree, err := parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, diagnostic.Mark(&ParseError{ExitStatus: -1, cause: err}, diagnostic.KindSyntaxCollaborator)
	}
	defer tree.Close()

	return convert(tree.RootNode(), source), nil
}

// convert copies a tree-sitter node into the generic tree. Leaf nodes carry
// their literal text; interior nodes are resolved from spans by consumers.
func convert(n *sitter.Node, source []byte) *Node {
	out := &Node{
		Tag:   n.Type(),
		Start: position(n.StartPoint()),
		End:   position(n.EndPoint()),
	}

	if n.IsMissing() {
		out.Tag = TagMissing
	}

	count := int(n.ChildCount())
	if count == 0 {
		out.Text = n.Content(source)
		return out
	}

	out.Children = make([]*Node, 0, count)
	for i := 0; i < count; i++ {
		out.Children = append(out.Children, convert(n.Child(i), source))
	}

	return out
}

func position(p sitter.Point) common.Position {
	return common.Position{Line: int(p.Row) + 1, Column: int(p.Column)}
}
