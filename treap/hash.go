package treap

import (
	"bytes"
	"crypto/sha256"
)

// Digest is the fixed-width commitment to a subtree. The root digest of a
// tree is the accumulator's entire public state.
type Digest [32]byte

// Key is the pseudorandom digest of an element. Keys define the BST order of
// the treap; two distinct elements are assumed never to collide.
type Key [32]byte

// Priority is the pseudorandom digest of a key. Priorities define the
// max-heap order of the treap. Because a priority is a deterministic function
// of its key, the shape of the tree for a given set of elements is unique
// regardless of insertion order.
type Priority [32]byte

// Hasher is the hash suite used to derive keys, priorities and subtree
// digests. Empty returns the sentinel digest committed to for absent
// children and for the empty tree.
type Hasher interface {
	Sum(data ...[]byte) Digest
	Empty() Digest
}

// emptySentinel is the preimage of the empty-subtree digest. Committing to a
// hash rather than to zero bytes keeps absent children unforgeable.
var emptySentinel = []byte("treap:empty")

type sha256Hasher struct {
	empty Digest
}

// NewSHA256 returns the default SHA-256 hash suite.
func NewSHA256() Hasher {
	h := &sha256Hasher{}
	h.empty = h.Sum(emptySentinel)
	return h
}

func (h *sha256Hasher) Sum(data ...[]byte) Digest {
	d := sha256.New()
	for _, b := range data {
		d.Write(b)
	}
	var out Digest
	d.Sum(out[:0])
	return out
}

func (h *sha256Hasher) Empty() Digest {
	return h.empty
}

// DeriveKey maps an element to its key.
func DeriveKey(h Hasher, element []byte) Key {
	return Key(h.Sum(element))
}

// DerivePriority maps a key to its heap priority.
func DerivePriority(h Hasher, k Key) Priority {
	return Priority(h.Sum(k[:]))
}

func keyCmp(a, b Key) int {
	return bytes.Compare(a[:], b[:])
}

// next returns the adjacent key k+1 in the 256-bit key space. The open
// interval (k, k+1) is empty, which is what lets a neighbor's search path
// bracket k in insertion and deletion proofs.
func (k Key) next() Key {
	for i := len(k) - 1; i >= 0; i-- {
		k[i]++
		if k[i] != 0 {
			break
		}
	}
	return k
}

// prev returns the adjacent key k-1.
func (k Key) prev() Key {
	for i := len(k) - 1; i >= 0; i-- {
		k[i]--
		if k[i] != 0xff {
			break
		}
	}
	return k
}
