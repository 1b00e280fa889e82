package shape

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assign(target string, value Node) Node {
	return Interior("=", Ident(target), value)
}

func class(name string, body ...Node) Node {
	return Interior("class", Ident(name), Block(body...))
}

// classA and classB mirror:
//
//	class A:            class B:
//	    v1 = 1              v1 = 2
//	                        v2 = 3
var (
	classA = class("A", assign("v1", Number("1")))
	classB = class("B", assign("v1", Number("2")), assign("v2", Number("3")))
)

// fixtures covers leaves, interior nodes, blocks and nesting.
var fixtures = map[string]Node{
	"ident":  Ident("x"),
	"number": Number("0"),
	"classA": classA,
	"classB": classB,
	"empty":  class("E"),
	"module": Interior("module", Block(classA, classB)),
	"call":   Interior("call", Ident("f"), Block(Number("1"), Ident("y"))),
	"binop":  Interior("+", Ident("a"), Number("2")),
	"nested": Block(Block(Ident("a")), Block()),
}

func TestGeneralize_ClassFields(t *testing.T) {
	pattern, err := Generalize(classA, classB)
	require.NoError(t, err)

	want := Interior("class",
		Differs(),
		Block(
			Interior("=", Ident("v1"), Differs()),
			Absent(),
		),
	)
	if diff := cmp.Diff(want, pattern, cmpopts.EquateEmpty()); diff != "" {
		t.Fatalf("pattern mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, "(class ? [(= v1 ?) *])", pattern.String())

	ok, err := Match(class("C", assign("v1", Number("10"))), pattern)
	require.NoError(t, err)
	assert.True(t, ok, "single field should fit the differs-then-absent shape")

	ok, err = Match(class("D"), pattern)
	require.NoError(t, err)
	assert.False(t, ok, "a class without fields must not match")

	ok, err = Match(class("F", assign("v9", Number("1"))), pattern)
	require.NoError(t, err)
	assert.False(t, ok, "field name is not a wildcard")

	ok, err = Match(class("G", assign("v1", Number("1")), assign("x", Ident("y")), assign("z", Number("4"))), pattern)
	require.NoError(t, err)
	assert.True(t, ok, "absent absorbs any number of trailing fields")
}

func TestGeneralize_Reflexive(t *testing.T) {
	for name, tree := range fixtures {
		t.Run(name, func(t *testing.T) {
			pattern, err := Generalize(tree, tree)
			require.NoError(t, err)
			assert.False(t, pattern.HasMarkers(), "pattern %s", pattern)
			assert.True(t, pattern.Equal(tree), "pattern %s, tree %s", pattern, tree)

			ok, err := Match(tree, pattern)
			require.NoError(t, err)
			assert.True(t, ok)
		})
	}
}

func TestGeneralize_SymmetricAndMonotonic(t *testing.T) {
	for na, a := range fixtures {
		for nb, b := range fixtures {
			ab, err := Generalize(a, b)
			require.NoError(t, err)
			ba, err := Generalize(b, a)
			require.NoError(t, err)

			assert.True(t, ab.Equal(ba), "%s/%s: %s vs %s", na, nb, ab, ba)

			for _, tree := range []Node{a, b} {
				ok, err := Match(tree, ab)
				require.NoError(t, err)
				assert.True(t, ok, "%s/%s: %s should match %s", na, nb, tree, ab)
			}
		}
	}
}

func TestGeneralize_ThreeInputs(t *testing.T) {
	classC := class("C", assign("v1", Number("2")), assign("v3", Number("3")))
	pattern, err := Generalize(classB, classC, classB)
	require.NoError(t, err)
	assert.Equal(t, "(class ? [(= v1 2) (= ? 3)])", pattern.String())

	for _, tree := range []Node{classB, classC} {
		ok, err := Match(tree, pattern)
		require.NoError(t, err)
		assert.True(t, ok)
	}
}

func TestGeneralize_LengthMismatchAbsorbs(t *testing.T) {
	short := Block(Ident("x"))
	long := Block(Ident("x"), Ident("y"), Number("7"))

	pattern, err := Generalize(short, long)
	require.NoError(t, err)
	assert.Equal(t, "[x *]", pattern.String())

	candidates := []Node{
		Block(Ident("x")),
		Block(Ident("x"), classA),
		Block(Ident("x"), Number("1"), Number("2"), Number("3")),
	}
	for _, c := range candidates {
		ok, err := Match(c, pattern)
		require.NoError(t, err)
		assert.True(t, ok, "%s", c)
	}

	ok, err := Match(Block(Ident("z")), pattern)
	require.NoError(t, err)
	assert.False(t, ok, "positions before the absent marker still count")
}

func TestGeneralize_MixedKindsDiffer(t *testing.T) {
	a := assign("v1", Number("1"))
	b := assign("v1", Interior("call", Ident("f")))

	pattern, err := Generalize(a, b)
	require.NoError(t, err)
	assert.Equal(t, "(= v1 ?)", pattern.String())

	ok, err := Match(assign("v1", Block()), pattern)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestGeneralize_DifferentTags(t *testing.T) {
	pattern, err := Generalize(
		Interior("+", Ident("a"), Ident("b")),
		Interior("-", Ident("a"), Ident("b")),
	)
	require.NoError(t, err)
	assert.Equal(t, "(_ a b)", pattern.String())
	assert.True(t, pattern.HasMarkers())

	ok, err := Match(Interior("*", Ident("a"), Ident("b")), pattern)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = Match(Block(Ident("a"), Ident("b")), pattern)
	require.NoError(t, err)
	assert.False(t, ok, "a block is not a construct")
}

func TestGeneralize_Errors(t *testing.T) {
	_, err := Generalize()
	assert.ErrorIs(t, err, ErrDegenerate)

	_, err = Generalize(classA)
	assert.ErrorIs(t, err, ErrDegenerate)

	_, err = Generalize(Node{}, classA)
	assert.ErrorIs(t, err, ErrMalformed)

	_, err = Generalize(classA, class("X", Differs()))
	assert.ErrorIs(t, err, ErrMalformed, "markers are not valid in example trees")

	_, err = Generalize(classA, Interior("", Ident("x")))
	assert.ErrorIs(t, err, ErrMalformed)

	_, err = Generalize(classA, Ident(""))
	assert.ErrorIs(t, err, ErrMalformed)

	_, err = Generalize(classA, Node{Kind: KindLeaf, Leaf: IdentLeaf, Value: "x", Children: []Node{Ident("y")}})
	assert.ErrorIs(t, err, ErrMalformed)
}

func chain(depth int) Node {
	n := Ident("x")
	for i := 0; i < depth; i++ {
		n = Interior("paren", n)
	}
	return n
}

func TestConfig_MaxDepth(t *testing.T) {
	deep := chain(20)
	assert.Equal(t, 21, deep.Depth())

	g := &Generalizer{Config: Config{MaxDepth: 10}}
	_, err := g.Generalize(deep, deep)
	assert.ErrorIs(t, err, ErrTooDeep)

	m := &Matcher{Config: Config{MaxDepth: 10}}
	_, err = m.Match(deep, Absent())
	assert.ErrorIs(t, err, ErrTooDeep)

	unbounded := &Generalizer{Config: Config{}}
	pattern, err := unbounded.Generalize(deep, deep)
	require.NoError(t, err)
	assert.Equal(t, 21, pattern.Depth())
}

func TestMatch_DiffersAcceptsZeroValues(t *testing.T) {
	pattern, err := Generalize(assign("n", Number("1")), assign("n", Number("2")))
	require.NoError(t, err)

	for _, v := range []Node{Number("0"), Number("0.0"), Ident("_"), Block()} {
		ok, err := Match(assign("n", v), pattern)
		require.NoError(t, err)
		assert.True(t, ok, "%s", v)
	}

	ok, err := Match(Interior("=", Ident("n")), pattern)
	require.NoError(t, err)
	assert.False(t, ok, "a missing value is not present")
}

func TestMatch_Strictness(t *testing.T) {
	pattern, err := Generalize(Block(Ident("x")), Block(Ident("x")))
	require.NoError(t, err)

	cases := []struct {
		name      string
		candidate Node
		want      bool
	}{
		{"equal", Block(Ident("x")), true},
		{"longer", Block(Ident("x"), Ident("y")), false},
		{"shorter", Block(), false},
		{"leaf kind", Block(Number("x")), false},
		{"not a block", Interior("x", Ident("x")), false},
		{"leaf", Ident("x"), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ok, err := Match(tc.candidate, pattern)
			require.NoError(t, err)
			assert.Equal(t, tc.want, ok)
		})
	}
}

func TestMatch_Idempotent(t *testing.T) {
	pattern, err := Generalize(classA, classB)
	require.NoError(t, err)
	for name, tree := range fixtures {
		first, err := Match(tree, pattern)
		require.NoError(t, err)
		second, err := Match(tree, pattern)
		require.NoError(t, err)
		assert.Equal(t, first, second, name)
	}
}

func TestMatch_Errors(t *testing.T) {
	_, err := Match(class("X", Absent()), Absent())
	assert.ErrorIs(t, err, ErrMalformed, "candidates may not carry markers")

	_, err = Match(classA, Node{Kind: Kind(42)})
	assert.ErrorIs(t, err, ErrMalformed)

	_, err = Match(Node{}, Differs())
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestSeq(t *testing.T) {
	assert.True(t, Seq(Ident("v1")).Equal(Ident("v1")))
	assert.Equal(t, KindBlock, Seq().Kind)
	assert.Equal(t, "[a b]", Seq(Ident("a"), Ident("b")).String())
}
