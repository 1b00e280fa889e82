package shape

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMalformed is returned when a value is not a well-formed tree or pattern.
	ErrMalformed = errors.New("malformed tree")
	// ErrDegenerate is returned when an operation is called with too few inputs.
	ErrDegenerate = errors.New("degenerate input")
	// ErrTooDeep is returned when a tree exceeds the configured depth bound.
	ErrTooDeep = errors.New("tree too deep")
)

// Kind discriminates the cases of Node.
type Kind uint8

const (
	kindInvalid Kind = iota
	// KindLeaf is an atomic comparable value.
	KindLeaf
	// KindInterior is a tagged construct with positional children.
	KindInterior
	// KindBlock is an untagged sequence of siblings.
	KindBlock
	// KindDiffers marks a position where the generalized inputs held unequal values.
	KindDiffers
	// KindAbsent marks a position where the generalized inputs ran out at different lengths.
	KindAbsent
)

func (k Kind) String() string {
	switch k {
	case KindLeaf:
		return "leaf"
	case KindInterior:
		return "interior"
	case KindBlock:
		return "block"
	case KindDiffers:
		return "differs"
	case KindAbsent:
		return "absent"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// LeafKind classifies leaf values.
type LeafKind uint8

const (
	leafInvalid LeafKind = iota
	// IdentLeaf holds an identifier name.
	IdentLeaf
	// NumberLeaf holds a numeric literal as written in the source.
	NumberLeaf
)

func (k LeafKind) String() string {
	switch k {
	case IdentLeaf:
		return "ident"
	case NumberLeaf:
		return "num"
	default:
		return fmt.Sprintf("leafkind(%d)", uint8(k))
	}
}

// Node is a syntax tree or pattern tree node.
//
// Trees produced by the front-end only contain leaves, interior nodes and
// blocks. Patterns produced by Generalize may additionally contain Differs
// and Absent markers, and interior nodes with an empty Tag, which stand for
// "any construct".
//
// Nodes are values and are never mutated after construction.
type Node struct {
	Kind     Kind
	Leaf     LeafKind // KindLeaf only
	Value    string   // KindLeaf only
	Tag      string   // KindInterior only
	Children []Node   // KindInterior and KindBlock
}

// Ident returns an identifier leaf.
func Ident(name string) Node {
	return Node{Kind: KindLeaf, Leaf: IdentLeaf, Value: name}
}

// Number returns a numeric literal leaf.
func Number(lit string) Node {
	return Node{Kind: KindLeaf, Leaf: NumberLeaf, Value: lit}
}

// Interior returns a tagged construct node.
func Interior(tag string, children ...Node) Node {
	return Node{Kind: KindInterior, Tag: tag, Children: children}
}

// Block returns an untagged sibling sequence.
func Block(children ...Node) Node {
	return Node{Kind: KindBlock, Children: children}
}

// Seq is like Block, except a one-element sequence collapses to its only
// element so trivial wrapping lists do not add nesting.
func Seq(children ...Node) Node {
	if len(children) == 1 {
		return children[0]
	}
	return Block(children...)
}

// Differs returns the "values differ here" marker.
func Differs() Node { return Node{Kind: KindDiffers} }

// Absent returns the "lengths differ from here on" marker.
func Absent() Node { return Node{Kind: KindAbsent} }

// IsMarker reports whether n is a Differs or Absent marker.
func (n Node) IsMarker() bool {
	return n.Kind == KindDiffers || n.Kind == KindAbsent
}

// IsNested reports whether n holds children.
func (n Node) IsNested() bool {
	return n.Kind == KindInterior || n.Kind == KindBlock
}

// HasMarkers reports whether n or any descendant is a marker or an
// any-construct interior node.
func (n Node) HasMarkers() bool {
	if n.IsMarker() || (n.Kind == KindInterior && n.Tag == "") {
		return true
	}
	for _, c := range n.Children {
		if c.HasMarkers() {
			return true
		}
	}
	return false
}

// Depth returns the nesting depth of n. Leaves and markers have depth 1.
func (n Node) Depth() int {
	d := 0
	for _, c := range n.Children {
		if cd := c.Depth(); cd > d {
			d = cd
		}
	}
	return d + 1
}

// Equal reports whether n and o are structurally identical.
func (n Node) Equal(o Node) bool {
	if n.Kind != o.Kind || n.Leaf != o.Leaf || n.Value != o.Value || n.Tag != o.Tag {
		return false
	}
	if len(n.Children) != len(o.Children) {
		return false
	}
	for i := range n.Children {
		if !n.Children[i].Equal(o.Children[i]) {
			return false
		}
	}
	return true
}

// String renders n as an s-expression: leaves print their value, Differs
// prints "?", Absent prints "*", an any-construct node prints "_" as its tag.
func (n Node) String() string {
	var b strings.Builder
	n.write(&b)
	return b.String()
}

func (n Node) write(b *strings.Builder) {
	switch n.Kind {
	case KindLeaf:
		b.WriteString(n.Value)
	case KindDiffers:
		b.WriteByte('?')
	case KindAbsent:
		b.WriteByte('*')
	case KindInterior:
		b.WriteByte('(')
		if n.Tag == "" {
			b.WriteByte('_')
		} else {
			b.WriteString(n.Tag)
		}
		for _, c := range n.Children {
			b.WriteByte(' ')
			c.write(b)
		}
		b.WriteByte(')')
	case KindBlock:
		b.WriteByte('[')
		for i, c := range n.Children {
			if i > 0 {
				b.WriteByte(' ')
			}
			c.write(b)
		}
		b.WriteByte(']')
	default:
		fmt.Fprintf(b, "<%s>", n.Kind)
	}
}

// ValidateTree checks that n is a well-formed tree as produced by a
// front-end: no markers, no any-construct nodes, depth within maxDepth
// (maxDepth <= 0 disables the bound).
func ValidateTree(n Node, maxDepth int) error {
	return validate(n, maxDepth, false, 1)
}

// Validate checks that n is a well-formed pattern. Markers are allowed.
func Validate(n Node, maxDepth int) error {
	return validate(n, maxDepth, true, 1)
}

func validate(n Node, maxDepth int, pattern bool, depth int) error {
	if maxDepth > 0 && depth > maxDepth {
		return fmt.Errorf("%w: exceeds %d levels", ErrTooDeep, maxDepth)
	}
	switch n.Kind {
	case KindLeaf:
		if n.Leaf != IdentLeaf && n.Leaf != NumberLeaf {
			return fmt.Errorf("%w: leaf of unknown kind %s", ErrMalformed, n.Leaf)
		}
		if n.Value == "" {
			return fmt.Errorf("%w: %s leaf without a value", ErrMalformed, n.Leaf)
		}
		if len(n.Children) > 0 {
			return fmt.Errorf("%w: leaf %q has children", ErrMalformed, n.Value)
		}
		return nil
	case KindDiffers, KindAbsent:
		if !pattern {
			return fmt.Errorf("%w: %s marker in a tree", ErrMalformed, n.Kind)
		}
		if len(n.Children) > 0 {
			return fmt.Errorf("%w: %s marker has children", ErrMalformed, n.Kind)
		}
		return nil
	case KindInterior:
		if n.Tag == "" && !pattern {
			return fmt.Errorf("%w: interior node without a tag", ErrMalformed)
		}
	case KindBlock:
	default:
		return fmt.Errorf("%w: %s", ErrMalformed, n.Kind)
	}
	for _, c := range n.Children {
		if err := validate(c, maxDepth, pattern, depth+1); err != nil {
			return err
		}
	}
	return nil
}
