package db

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMemoryGetSet(t *testing.T) {
	m := NewMemory()

	_, err := m.Get([]byte("missing"))
	require.ErrorIs(t, err, ErrNotFound)

	tx := m.NewTransaction()
	require.NoError(t, tx.Set([]byte("a"), []byte("1")))
	require.NoError(t, tx.Commit())

	v, err := m.Get([]byte("a"))
	require.NoError(t, err)
	require.Equal(t, []byte("1"), v)
}

func TestMemoryTransactionIsolation(t *testing.T) {
	m := NewMemory()

	tx := m.NewTransaction()
	require.NoError(t, tx.Set([]byte("a"), []byte("1")))

	// staged writes are visible inside the transaction only
	v, err := tx.Get([]byte("a"))
	require.NoError(t, err)
	require.Equal(t, []byte("1"), v)

	_, err = m.Get([]byte("a"))
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, tx.Commit())
	_, err = m.Get([]byte("a"))
	require.NoError(t, err)
}

func TestMemoryDiscard(t *testing.T) {
	m := NewMemory()

	tx := m.NewTransaction()
	require.NoError(t, tx.Set([]byte("a"), []byte("1")))
	tx.Discard()
	require.NoError(t, tx.Commit())

	_, err := m.Get([]byte("a"))
	require.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryValueCopied(t *testing.T) {
	m := NewMemory()

	buf := []byte("1")
	tx := m.NewTransaction()
	require.NoError(t, tx.Set([]byte("a"), buf))
	buf[0] = 'x'
	require.NoError(t, tx.Commit())

	v, err := m.Get([]byte("a"))
	require.NoError(t, err)
	require.Equal(t, []byte("1"), v)

	// mutating a returned value does not touch the stored one
	v[0] = 'y'
	v2, err := m.Get([]byte("a"))
	require.NoError(t, err)
	require.Equal(t, []byte("1"), v2)
}
