package store

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/provenset/treap-accumulator/db"
	"github.com/provenset/treap-accumulator/treap"
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

func TestSaveLoad(t *testing.T) {
	h := treap.NewSHA256()
	s := New(db.NewMemory(), h)

	tree, err := treap.New(h, els(0, 100)...)
	require.NoError(t, err)
	require.NoError(t, s.Save(tree))

	head, err := s.Head()
	require.NoError(t, err)
	require.Equal(t, tree.Root(), head)

	loaded, err := s.Load(head)
	require.NoError(t, err)
	require.Equal(t, tree.Root(), loaded.Root())
	require.Equal(t, tree.Size(), loaded.Size())
	require.True(t, loaded.Has(el(42)))

	// loaded snapshots are fully functional trees
	next, _, err := loaded.Insert(el(100))
	require.NoError(t, err)
	expected, _, err := tree.Insert(el(100))
	require.NoError(t, err)
	require.Equal(t, expected.Root(), next.Root())
}

func TestHistoricalRoots(t *testing.T) {
	h := treap.NewSHA256()
	s := New(db.NewMemory(), h)

	first, err := treap.New(h, els(0, 50)...)
	require.NoError(t, err)
	require.NoError(t, s.Save(first))

	second, _, err := first.Insert(el(50))
	require.NoError(t, err)
	require.NoError(t, s.Save(second))

	head, err := s.Head()
	require.NoError(t, err)
	require.Equal(t, second.Root(), head)

	// the earlier snapshot stays loadable after the head moved on
	old, err := s.Load(first.Root())
	require.NoError(t, err)
	require.Equal(t, first.Root(), old.Root())
	require.False(t, old.Has(el(50)))
}

func TestSaveIdempotent(t *testing.T) {
	h := treap.NewSHA256()
	s := New(db.NewMemory(), h)

	tree, err := treap.New(h, els(0, 20)...)
	require.NoError(t, err)
	require.NoError(t, s.Save(tree))
	require.NoError(t, s.Save(tree))

	loaded, err := s.Load(tree.Root())
	require.NoError(t, err)
	require.Equal(t, tree.Root(), loaded.Root())
}

func TestEmptyTree(t *testing.T) {
	h := treap.NewSHA256()
	s := New(db.NewMemory(), h)

	tree, err := treap.New(h)
	require.NoError(t, err)
	require.NoError(t, s.Save(tree))

	head, err := s.Head()
	require.NoError(t, err)
	require.Equal(t, h.Empty(), head)

	loaded, err := s.Load(head)
	require.NoError(t, err)
	require.Equal(t, 0, loaded.Size())
}

func TestEmptyStore(t *testing.T) {
	h := treap.NewSHA256()
	s := New(db.NewMemory(), h)

	_, err := s.Head()
	require.ErrorIs(t, err, db.ErrNotFound)

	var unknown treap.Digest
	unknown[0] = 1
	_, err = s.Load(unknown)
	require.ErrorIs(t, err, db.ErrNotFound)
}

func TestCorruptRecord(t *testing.T) {
	h := treap.NewSHA256()
	database := db.NewMemory()
	s := New(database, h)

	tree, err := treap.New(h, els(0, 10)...)
	require.NoError(t, err)
	require.NoError(t, s.Save(tree))

	// overwrite the root record with a record for a different key
	root := tree.Root()
	tx := database.NewTransaction()
	forged := encodeRecord(treap.NodeRecord{
		Key:   treap.DeriveKey(h, el(999)),
		Left:  h.Empty(),
		Right: h.Empty(),
	})
	require.NoError(t, tx.Set(nodeKey(root), forged))
	require.NoError(t, tx.Commit())

	_, err = s.Load(root)
	require.Error(t, err)
}
