// Package store persists treap snapshots in a key/value database. Nodes are
// content-addressed by their digest, so snapshots that share subtrees share
// storage, and any historical root stays loadable after later mutations.
package store

import (
	"fmt"

	"github.com/provenset/treap-accumulator/db"
	"github.com/provenset/treap-accumulator/treap"
)

const (
	nodeKeyPrefix = byte(0)
	headKeyPrefix = byte(1)
)

var headKey = []byte{headKeyPrefix}

const recordLen = 96 // key ∥ left digest ∥ right digest

// TreeStore reads and writes tree snapshots.
type TreeStore struct {
	db   db.Database
	hash treap.Hasher
}

func New(database db.Database, h treap.Hasher) *TreeStore {
	return &TreeStore{db: database, hash: h}
}

// Save writes every node of the tree and advances the head pointer to its
// root, all in one transaction. Nodes already present from earlier snapshots
// are simply overwritten with identical bytes.
func (s *TreeStore) Save(t *treap.Tree) error {
	tx := s.db.NewTransaction()
	defer tx.Discard()

	err := t.Walk(func(digest treap.Digest, rec treap.NodeRecord) error {
		return tx.Set(nodeKey(digest), encodeRecord(rec))
	})
	if err != nil {
		return err
	}
	root := t.Root()
	if err := tx.Set(headKey, root[:]); err != nil {
		return err
	}
	return tx.Commit()
}

// Head returns the root digest of the most recently saved snapshot, or
// db.ErrNotFound if nothing has been saved yet.
func (s *TreeStore) Head() (treap.Digest, error) {
	var root treap.Digest
	b, err := s.db.Get(headKey)
	if err != nil {
		return root, err
	}
	if len(b) != len(root) {
		return root, fmt.Errorf("store: head pointer has %d bytes", len(b))
	}
	copy(root[:], b)
	return root, nil
}

// Load reconstructs the snapshot committed to by root. Any saved root can be
// loaded, not only the head.
func (s *TreeStore) Load(root treap.Digest) (*treap.Tree, error) {
	return treap.Rebuild(s.hash, root, func(digest treap.Digest) (treap.NodeRecord, error) {
		b, err := s.db.Get(nodeKey(digest))
		if err != nil {
			return treap.NodeRecord{}, err
		}
		return decodeRecord(b)
	})
}

func nodeKey(digest treap.Digest) []byte {
	return append([]byte{nodeKeyPrefix}, digest[:]...)
}

func encodeRecord(rec treap.NodeRecord) []byte {
	b := make([]byte, 0, recordLen)
	b = append(b, rec.Key[:]...)
	b = append(b, rec.Left[:]...)
	b = append(b, rec.Right[:]...)
	return b
}

func decodeRecord(b []byte) (treap.NodeRecord, error) {
	var rec treap.NodeRecord
	if len(b) != recordLen {
		return rec, fmt.Errorf("store: node record has %d bytes, want %d", len(b), recordLen)
	}
	copy(rec.Key[:], b[:32])
	copy(rec.Left[:], b[32:64])
	copy(rec.Right[:], b[64:])
	return rec, nil
}
