package treap

import (
	"math/rand"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
)

func el(i int) []byte {
	return []byte(strconv.Itoa(i))
}

func els(from, to int) [][]byte {
	out := make([][]byte, 0, to-from)
	for i := from; i < to; i++ {
		out = append(out, el(i))
	}
	return out
}

func TestOrderIndependence(t *testing.T) {
	h := NewSHA256()
	elements := els(0, 500)

	a, err := New(h, elements...)
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(1))
	shuffled := make([][]byte, len(elements))
	copy(shuffled, elements)
	rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })

	b, err := New(h, shuffled...)
	require.NoError(t, err)
	require.Equal(t, a.Root(), b.Root())
}

func TestInsertRemoveInverse(t *testing.T) {
	h := NewSHA256()
	tree, err := New(h, els(0, 200)...)
	require.NoError(t, err)
	root := tree.Root()

	inserted, _, err := tree.Insert(el(1234))
	require.NoError(t, err)
	require.NotEqual(t, root, inserted.Root())

	removed, _, err := inserted.Remove(el(1234))
	require.NoError(t, err)
	require.Equal(t, root, removed.Root())
}

func TestPersistentSnapshots(t *testing.T) {
	h := NewSHA256()
	tree, err := New(h, el(5), el(10), el(2), el(7), el(12))
	require.NoError(t, err)

	next, _, err := tree.Remove(el(5))
	require.NoError(t, err)

	// the old snapshot is untouched by the mutation
	require.True(t, tree.Has(el(5)))
	require.False(t, next.Has(el(5)))
	require.True(t, next.Has(el(7)))
	require.Equal(t, 5, tree.Size())
	require.Equal(t, 4, next.Size())
}

func TestInsertDuplicate(t *testing.T) {
	h := NewSHA256()
	tree, err := New(h, el(5), el(10), el(2), el(7), el(12))
	require.NoError(t, err)

	_, _, err = tree.Insert(el(5))
	require.ErrorIs(t, err, ErrElementExists)
}

func TestRemoveMissing(t *testing.T) {
	h := NewSHA256()
	tree, err := New(h, el(5), el(10), el(2), el(7), el(12))
	require.NoError(t, err)

	_, _, err = tree.Remove(el(8))
	require.ErrorIs(t, err, ErrElementNotFound)
}

func TestEmptyTree(t *testing.T) {
	h := NewSHA256()
	tree, err := New(h)
	require.NoError(t, err)
	require.Equal(t, h.Empty(), tree.Root())
	require.Equal(t, 0, tree.Size())
	require.False(t, tree.Has(el(1)))

	one, _, err := tree.Insert(el(1))
	require.NoError(t, err)
	require.True(t, one.Has(el(1)))

	back, _, err := one.Remove(el(1))
	require.NoError(t, err)
	require.Equal(t, h.Empty(), back.Root())
}

func TestStructuralInvariants(t *testing.T) {
	h := NewSHA256()

	tree, err := New(h, els(0, 300)...)
	require.NoError(t, err)
	require.NoError(t, validateTreap(tree.root))

	for i := 0; i < 50; i++ {
		tree, _, err = tree.Insert(el(1000 + i))
		require.NoError(t, err)
		tree, _, err = tree.Remove(el(i))
		require.NoError(t, err)
		require.NoError(t, validateTreap(tree.root))
	}
}

func TestBatchMutations(t *testing.T) {
	h := NewSHA256()
	tree, err := New(h, els(0, 100)...)
	require.NoError(t, err)

	batched, _, err := tree.InsertMany(els(100, 120))
	require.NoError(t, err)

	single := tree
	for _, e := range els(100, 120) {
		single, _, err = single.Insert(e)
		require.NoError(t, err)
	}
	require.Equal(t, single.Root(), batched.Root())

	batched, _, err = batched.RemoveMany(els(100, 120))
	require.NoError(t, err)
	require.Equal(t, tree.Root(), batched.Root())
}
