package ingest

import (
	"context"
	"fmt"

	"github.com/agentic-research/shapematch/internal/shape"
	sitter "github.com/smacker/go-tree-sitter"
)

// SitterRoot encapsulates the necessary context for querying a Tree-sitter tree.
// It includes the root node, the source code (for extracting content), and the language (for compiling the query).
type SitterRoot struct {
	Node   *sitter.Node
	Source []byte
	Lang   *sitter.Language
}

// Select runs a tree-sitter query against root and returns the selected
// nodes in document order. Nodes captured as @scope are selected when the
// query has that capture; otherwise the first capture of every match is.
// The selector "$" selects the root itself.
func Select(root SitterRoot, selector string) ([]*sitter.Node, error) {
	if root.Node == nil {
		return nil, fmt.Errorf("select: nil root")
	}
	if selector == "$" {
		return []*sitter.Node{root.Node}, nil
	}

	q, err := sitter.NewQuery([]byte(selector), root.Lang)
	if err != nil {
		return nil, fmt.Errorf("invalid query '%s': %w", selector, err)
	}
	defer q.Close()

	hasScope := false
	for i := uint32(0); i < q.CaptureCount(); i++ {
		if q.CaptureNameForId(i) == "scope" {
			hasScope = true
			break
		}
	}

	qc := sitter.NewQueryCursor()
	defer qc.Close()
	qc.Exec(q, root.Node)

	type span struct{ start, end uint32 }
	seen := make(map[span]bool)
	var nodes []*sitter.Node
	for {
		m, ok := qc.NextMatch()
		if !ok {
			break
		}
		for _, c := range m.Captures {
			if hasScope && q.CaptureNameForId(c.Index) != "scope" {
				continue
			}
			key := span{c.Node.StartByte(), c.Node.EndByte()}
			if !seen[key] {
				seen[key] = true
				nodes = append(nodes, c.Node)
			}
			break
		}
	}
	return nodes, nil
}

// Selection is a translated subtree and where it starts in the source.
type Selection struct {
	Tree shape.Node
	Line int // 1-based
}

// ParseSelect parses src and translates every node the selector picks.
func (p *Parser) ParseSelect(ctx context.Context, src []byte, selector string) ([]Selection, error) {
	root, err := p.ParseRoot(ctx, src)
	if err != nil {
		return nil, err
	}
	nodes, err := Select(root, selector)
	if err != nil {
		return nil, err
	}
	out := make([]Selection, 0, len(nodes))
	for _, n := range nodes {
		tree, err := p.Translate(n, src)
		if err != nil {
			return nil, err
		}
		out = append(out, Selection{Tree: tree, Line: int(n.StartPoint().Row) + 1})
	}
	return out, nil
}
