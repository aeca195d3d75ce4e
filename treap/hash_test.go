package treap

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashSuites(t *testing.T) {
	for _, tc := range []struct {
		name string
		h    Hasher
	}{
		{"sha256", NewSHA256()},
		{"mimc", NewMiMC()},
	} {
		t.Run(tc.name, func(t *testing.T) {
			h := tc.h
			require.Equal(t, h.Empty(), h.Empty())
			require.Equal(t, h.Sum([]byte("a")), h.Sum([]byte("a")))
			require.NotEqual(t, h.Sum([]byte("a")), h.Sum([]byte("b")))

			tree, err := New(h, els(0, 50)...)
			require.NoError(t, err)
			require.NoError(t, validateTreap(tree.root))

			proof, err := tree.ProveInclusion(el(7))
			require.NoError(t, err)
			require.NoError(t, tree.VerifyInclusion(el(7), proof))
		})
	}
}

func TestHashSuitesDisagree(t *testing.T) {
	a, err := New(NewSHA256(), els(0, 20)...)
	require.NoError(t, err)
	b, err := New(NewMiMC(), els(0, 20)...)
	require.NoError(t, err)
	require.NotEqual(t, a.Root(), b.Root())
}

func TestKeyNeighbors(t *testing.T) {
	k := Key{}
	k[31] = 5
	next := k.next()
	require.Equal(t, byte(6), next[31])
	require.Equal(t, k, next.prev())

	// carry across bytes
	var ff Key
	for i := range ff {
		ff[i] = 0xff
	}
	var zero Key
	require.Equal(t, zero, ff.next())
	require.Equal(t, ff, zero.prev())

	k = Key{}
	k[31] = 0xff
	next = k.next()
	require.Equal(t, byte(1), next[30])
	require.Equal(t, byte(0), next[31])
	require.Equal(t, k, next.prev())
}

func TestDeriveDeterminism(t *testing.T) {
	h := NewSHA256()
	k1 := DeriveKey(h, []byte("element"))
	k2 := DeriveKey(h, []byte("element"))
	require.Equal(t, k1, k2)
	require.Equal(t, DerivePriority(h, k1), DerivePriority(h, k2))
	require.NotEqual(t, k1, DeriveKey(h, []byte("other")))
}
