package shape

import (
	"fmt"

	"github.com/samber/lo"
)

// Generalizer merges example trees into a pattern.
type Generalizer struct {
	Config Config
}

// Generalize merges trees into a pattern using DefaultConfig.
func Generalize(trees ...Node) (Node, error) {
	g := &Generalizer{Config: DefaultConfig()}
	return g.Generalize(trees...)
}

// Generalize returns a pattern that keeps what all trees have in common.
// Positions where leaf values disagree become Differs; positions where one
// sibling sequence ends before another become Absent, and nothing after
// that position is compared. The result does not depend on argument order.
func (g *Generalizer) Generalize(trees ...Node) (Node, error) {
	if len(trees) < 2 {
		return Node{}, fmt.Errorf("%w: generalize needs at least 2 trees, got %d", ErrDegenerate, len(trees))
	}
	for i, t := range trees {
		if err := ValidateTree(t, g.Config.MaxDepth); err != nil {
			return Node{}, fmt.Errorf("tree %d: %w", i, err)
		}
	}
	return generalizeHeads(trees), nil
}

// generalizeHeads merges nodes occupying the same position in every input.
func generalizeHeads(heads []Node) Node {
	first := heads[0]
	sameKind := lo.EveryBy(heads, func(h Node) bool { return h.Kind == first.Kind })
	if !sameKind {
		// Every input has something here, just not the same sort of thing.
		return Differs()
	}

	switch first.Kind {
	case KindLeaf:
		if lo.EveryBy(heads, func(h Node) bool { return h.Equal(first) }) {
			return first
		}
		return Differs()
	case KindInterior:
		tag := first.Tag
		if !lo.EveryBy(heads, func(h Node) bool { return h.Tag == tag }) {
			tag = ""
		}
		return Node{Kind: KindInterior, Tag: tag, Children: generalizeSiblings(childLists(heads))}
	case KindBlock:
		return Node{Kind: KindBlock, Children: generalizeSiblings(childLists(heads))}
	default:
		return Differs()
	}
}

// generalizeSiblings walks sibling sequences position by position.
func generalizeSiblings(seqs [][]Node) []Node {
	var out []Node
	for pos := 0; ; pos++ {
		exhausted := func(s []Node) bool { return pos >= len(s) }
		if lo.EveryBy(seqs, exhausted) {
			return out
		}
		if lo.SomeBy(seqs, exhausted) {
			return append(out, Absent())
		}
		heads := lo.Map(seqs, func(s []Node, _ int) Node { return s[pos] })
		out = append(out, generalizeHeads(heads))
	}
}

func childLists(nodes []Node) [][]Node {
	return lo.Map(nodes, func(n Node, _ int) []Node { return n.Children })
}
