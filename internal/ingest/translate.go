package ingest

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/agentic-research/shapematch/internal/shape"
	sitter "github.com/smacker/go-tree-sitter"
)

var (
	// ErrUnsupportedLanguage is returned for languages without a grammar.
	ErrUnsupportedLanguage = errors.New("unsupported language")
	// ErrSyntax is returned when tree-sitter reports an error node.
	ErrSyntax = errors.New("syntax error")
)

// Parser turns source text into shape trees.
type Parser struct {
	LangName string
	Lang     *sitter.Language
	Profile  *LanguageProfile
}

// NewParser returns a parser for a language name such as "python" or "go".
func NewParser(langName string) (*Parser, error) {
	lang, ok := LanguageByName(langName)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedLanguage, langName)
	}
	return &Parser{LangName: langName, Lang: lang, Profile: GetLanguageProfile(langName)}, nil
}

// NewParserForFile picks the language from the file extension.
func NewParserForFile(path string) (*Parser, error) {
	ext := filepath.Ext(path)
	name, lang, ok := DetectLanguageFromExt(ext)
	if !ok {
		return nil, fmt.Errorf("%w: extension %q", ErrUnsupportedLanguage, ext)
	}
	return &Parser{LangName: name, Lang: lang, Profile: GetLanguageProfile(name)}, nil
}

// ParseRoot parses src and returns the tree-sitter root.
func (p *Parser) ParseRoot(ctx context.Context, src []byte) (SitterRoot, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(p.Lang)
	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return SitterRoot{}, fmt.Errorf("parse %s: %w", p.LangName, err)
	}
	root := tree.RootNode()
	if root.HasError() {
		if bad := firstError(root); bad != nil {
			pt := bad.StartPoint()
			return SitterRoot{}, fmt.Errorf("%w: %s at %d:%d", ErrSyntax, p.LangName, pt.Row+1, pt.Column+1)
		}
		return SitterRoot{}, fmt.Errorf("%w: %s", ErrSyntax, p.LangName)
	}
	return SitterRoot{Node: root, Source: src, Lang: p.Lang}, nil
}

// Parse parses src into a shape tree. A file holding a single top-level
// statement yields that statement; otherwise the statements form a block.
func (p *Parser) Parse(ctx context.Context, src []byte) (shape.Node, error) {
	root, err := p.ParseRoot(ctx, src)
	if err != nil {
		return shape.Node{}, err
	}
	return p.Translate(root.Node, src)
}

// Translate converts a tree-sitter subtree into a shape tree.
func (p *Parser) Translate(n *sitter.Node, src []byte) (shape.Node, error) {
	if n == nil {
		return shape.Node{}, fmt.Errorf("%w: nil node", shape.ErrMalformed)
	}
	t := translator{profile: p.Profile, src: src}
	out, ok := t.node(n)
	if !ok {
		return shape.Node{}, fmt.Errorf("%w: %s node %q translates to nothing", shape.ErrMalformed, p.LangName, n.Type())
	}
	if out.Kind == shape.KindBlock {
		return shape.Seq(out.Children...), nil
	}
	return out, nil
}

type translator struct {
	profile *LanguageProfile
	src     []byte
}

func (t translator) node(n *sitter.Node) (shape.Node, bool) {
	typ := n.Type()
	prof := t.profile
	if prof.Skip[typ] {
		return shape.Node{}, false
	}
	if prof.Opaque[typ] {
		return shape.Interior(prof.tag(typ)), true
	}

	kids := t.children(n)
	switch {
	case prof.Transparent[typ] && len(kids) == 1:
		return kids[0], true
	case prof.Blocks[typ]:
		return shape.Block(kids...), true
	case prof.Lists[typ]:
		return shape.Seq(kids...), true
	}

	if n.NamedChildCount() == 0 {
		if kind, ok := prof.leafKind(typ); ok {
			// Zero-width recovery nodes have no text; they stay interior.
			if text := n.Content(t.src); text != "" {
				return shape.Node{Kind: shape.KindLeaf, Leaf: kind, Value: text}, true
			}
		}
	}

	tag := prof.tag(typ)
	if prof.OperatorTags {
		if op := n.ChildByFieldName("operator"); op != nil && op.Type() != "" {
			tag = op.Type()
		}
	}
	return shape.Interior(tag, kids...), true
}

func (t translator) children(n *sitter.Node) []shape.Node {
	count := int(n.NamedChildCount())
	var kids []shape.Node
	for i := 0; i < count; i++ {
		child := n.NamedChild(i)
		if child == nil {
			continue
		}
		if k, ok := t.node(child); ok {
			kids = append(kids, k)
		}
	}
	return kids
}

func firstError(n *sitter.Node) *sitter.Node {
	if n == nil {
		return nil
	}
	if n.IsError() || n.IsMissing() {
		return n
	}
	count := int(n.ChildCount())
	for i := 0; i < count; i++ {
		if bad := firstError(n.Child(i)); bad != nil {
			return bad
		}
	}
	return nil
}
