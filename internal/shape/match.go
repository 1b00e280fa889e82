package shape

import "fmt"

// Matcher tests candidate trees against patterns.
type Matcher struct {
	Config Config
}

// Match reports whether candidate satisfies pattern using DefaultConfig.
func Match(candidate, pattern Node) (bool, error) {
	m := &Matcher{Config: DefaultConfig()}
	return m.Match(candidate, pattern)
}

// Match reports whether candidate satisfies pattern. Children are compared
// position by position: Differs accepts any value that is present, Absent
// accepts whatever remains of its sibling sequence (including nothing), and
// every other pattern node requires an equal node in the candidate.
func (m *Matcher) Match(candidate, pattern Node) (bool, error) {
	if err := ValidateTree(candidate, m.Config.MaxDepth); err != nil {
		return false, fmt.Errorf("candidate: %w", err)
	}
	if err := Validate(pattern, m.Config.MaxDepth); err != nil {
		return false, fmt.Errorf("pattern: %w", err)
	}
	return matchNode(candidate, pattern), nil
}

func matchNode(c, p Node) bool {
	switch p.Kind {
	case KindAbsent:
		return true
	case KindDiffers:
		return present(c)
	case KindLeaf:
		return c.Kind == KindLeaf && c.Leaf == p.Leaf && c.Value == p.Value
	case KindInterior:
		if c.Kind != KindInterior || (p.Tag != "" && p.Tag != c.Tag) {
			return false
		}
		return matchSiblings(c.Children, p.Children)
	case KindBlock:
		return c.Kind == KindBlock && matchSiblings(c.Children, p.Children)
	default:
		return false
	}
}

func matchSiblings(cand, pat []Node) bool {
	for pos := 0; ; pos++ {
		hasCand, hasPat := pos < len(cand), pos < len(pat)
		switch {
		case !hasCand && !hasPat:
			return true
		case hasPat && pat[pos].Kind == KindAbsent:
			return true
		case !hasCand || !hasPat:
			return false
		}
		if !matchNode(cand[pos], pat[pos]) {
			return false
		}
	}
}

// present reports whether a value occupies the position. Zero literals and
// empty blocks count: Differs only asserts that the examples varied here.
func present(n Node) bool {
	return n.Kind != kindInvalid
}
