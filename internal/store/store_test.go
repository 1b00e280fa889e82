package store

import (
	"fmt"
	"sync"
	"testing"

	"github.com/agentic-research/shapematch/internal/shape"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assign(target string, value shape.Node) shape.Node {
	return shape.Interior("=", shape.Ident(target), value)
}

func mustGeneralize(t *testing.T, trees ...shape.Node) shape.Node {
	t.Helper()
	p, err := shape.Generalize(trees...)
	require.NoError(t, err)
	return p
}

func TestStore_FirstMatchWins(t *testing.T) {
	st := New(shape.DefaultConfig())

	exact := mustGeneralize(t, assign("x", shape.Number("1")), assign("x", shape.Number("1")))
	anyValue := mustGeneralize(t, assign("x", shape.Number("1")), assign("x", shape.Number("2")))
	anyTarget := mustGeneralize(t, assign("x", shape.Number("1")), assign("y", shape.Number("2")))

	for i, p := range []shape.Node{exact, anyValue, anyTarget} {
		id, err := st.Add(fmt.Sprintf("p%d", i), p, i)
		require.NoError(t, err)
		assert.Equal(t, uint32(i), id)
	}

	cases := []struct {
		candidate shape.Node
		want      any
	}{
		{assign("x", shape.Number("1")), 0},
		{assign("x", shape.Number("9")), 1},
		{assign("z", shape.Number("9")), 2},
	}
	for _, tc := range cases {
		e, ok, err := st.Search(tc.candidate)
		require.NoError(t, err)
		require.True(t, ok, "%s", tc.candidate)
		assert.Equal(t, tc.want, e.Payload)
	}

	_, ok, err := st.Search(shape.Interior("call", shape.Ident("f")))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_SearchAll(t *testing.T) {
	st := New(shape.DefaultConfig())
	_, err := st.Add("specific", assign("x", shape.Number("1")), "a")
	require.NoError(t, err)
	_, err = st.Add("anything", shape.Absent(), "b")
	require.NoError(t, err)
	_, err = st.Add("any construct", mustGeneralize(t,
		shape.Interior("+", shape.Ident("x"), shape.Number("1")),
		shape.Interior("=", shape.Ident("x"), shape.Number("1")),
	), "c")
	require.NoError(t, err)
	_, err = st.Add("block", shape.Block(shape.Differs()), "d")
	require.NoError(t, err)

	got, err := st.SearchAll(assign("x", shape.Number("1")))
	require.NoError(t, err)
	var payloads []any
	for _, e := range got {
		payloads = append(payloads, e.Payload)
	}
	assert.Equal(t, []any{"a", "b", "c"}, payloads)

	got, err = st.SearchAll(shape.Block(shape.Ident("q")))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "anything", got[0].Name)
	assert.Equal(t, "block", got[1].Name)
}

func TestStore_WildcardKeepsInsertionOrder(t *testing.T) {
	st := New(shape.DefaultConfig())
	_, err := st.Add("tagged", assign("x", shape.Differs()), "tagged")
	require.NoError(t, err)
	_, err = st.Add("wild", shape.Differs(), "wild")
	require.NoError(t, err)

	e, ok, err := st.Search(assign("x", shape.Number("3")))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "tagged", e.Name, "the indexed entry was added first")

	e, ok, err = st.Search(shape.Ident("v"))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "wild", e.Name)
}

func TestStore_Errors(t *testing.T) {
	st := New(shape.DefaultConfig())

	_, err := st.Add("broken", shape.Node{}, nil)
	assert.ErrorIs(t, err, ErrInvalidPattern)
	assert.ErrorIs(t, err, shape.ErrMalformed)
	assert.Equal(t, 0, st.Len())

	_, _, err = st.Search(shape.Block(shape.Absent()))
	assert.ErrorIs(t, err, shape.ErrMalformed)

	empty, ok, err := st.Search(shape.Ident("x"))
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, Entry{}, empty)
}

func TestStore_Concurrent(t *testing.T) {
	st := New(shape.DefaultConfig())
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			name := fmt.Sprintf("v%d", i)
			_, err := st.Add(name, assign(name, shape.Differs()), i)
			assert.NoError(t, err)
			_, _, err = st.Search(assign(name, shape.Number("0")))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 8, st.Len())

	for _, e := range st.Entries() {
		ok, err := shape.Match(assign(e.Name, shape.Number("0")), e.Pattern)
		require.NoError(t, err)
		assert.True(t, ok)
	}
}
