package treap

import "fmt"

// Tree is an immutable, persistent treap over a set of elements. Every
// mutation returns a new Tree sharing untouched subtrees with the original;
// old values remain valid snapshots and are safe for concurrent reads.
//
// The tree stores only keys (element digests), never element payloads, so a
// proof cut from it reveals which digests lie on a path but nothing more.
type Tree struct {
	hash Hasher
	root *node
}

// New builds a tree from a collection of elements. The result is independent
// of element order: the same set always commits to the same root digest.
func New(h Hasher, elements ...[]byte) (*Tree, error) {
	var root *node
	for _, el := range elements {
		next, err := insertKey(h, root, DeriveKey(h, el))
		if err != nil {
			return nil, err
		}
		root = next
	}
	return &Tree{hash: h, root: root}, nil
}

// Root returns the 32-byte commitment to the set. The empty tree commits to
// the hash suite's empty sentinel.
func (t *Tree) Root() Digest {
	return childDigest(t.hash, t.root)
}

// Size returns the number of elements in the set.
func (t *Tree) Size() int {
	return countNodes(t.root)
}

// Has reports whether element is a member of the set.
func (t *Tree) Has(element []byte) bool {
	n, _ := find(t.root, DeriveKey(t.hash, element))
	return n != nil
}

// ToAccumulator returns the commitment-only view of this tree.
func (t *Tree) ToAccumulator() *Accumulator {
	return &Accumulator{hash: t.hash, root: t.Root()}
}

// Insert adds element to the set, returning the new tree and an insertion
// proof cut from the tree before the change. Fails with ErrElementExists if
// the element is already a member.
func (t *Tree) Insert(element []byte) (*Tree, *Proof, error) {
	proof, err := t.InsertProof(element)
	if err != nil {
		return nil, nil, err
	}
	root, err := insertKey(t.hash, t.root, DeriveKey(t.hash, element))
	if err != nil {
		return nil, nil, err
	}
	return &Tree{hash: t.hash, root: root}, proof, nil
}

// Remove deletes element from the set, returning the new tree and a deletion
// proof cut from the tree before the change. Fails with ErrElementNotFound
// if the element is not a member.
func (t *Tree) Remove(element []byte) (*Tree, *Proof, error) {
	proof, err := t.RemoveProof(element)
	if err != nil {
		return nil, nil, err
	}
	root, err := removeKey(t.hash, t.root, DeriveKey(t.hash, element))
	if err != nil {
		return nil, nil, err
	}
	return &Tree{hash: t.hash, root: root}, proof, nil
}

// InsertMany adds all elements, returning the new tree and one joined proof
// covering every insertion, cut against the original tree.
func (t *Tree) InsertMany(elements [][]byte) (*Tree, *Proof, error) {
	if len(elements) == 0 {
		return t, nil, nil
	}
	proofs := make([]*Proof, 0, len(elements))
	for _, el := range elements {
		p, err := t.InsertProof(el)
		if err != nil {
			return nil, nil, err
		}
		proofs = append(proofs, p)
	}
	joined, err := JoinProofs(t.hash, proofs...)
	if err != nil {
		return nil, nil, err
	}
	root := t.root
	for _, el := range elements {
		root, err = insertKey(t.hash, root, DeriveKey(t.hash, el))
		if err != nil {
			return nil, nil, err
		}
	}
	return &Tree{hash: t.hash, root: root}, joined, nil
}

// RemoveMany deletes all elements, returning the new tree and one joined
// proof covering every deletion, cut against the original tree.
func (t *Tree) RemoveMany(elements [][]byte) (*Tree, *Proof, error) {
	if len(elements) == 0 {
		return t, nil, nil
	}
	proofs := make([]*Proof, 0, len(elements))
	for _, el := range elements {
		p, err := t.RemoveProof(el)
		if err != nil {
			return nil, nil, err
		}
		proofs = append(proofs, p)
	}
	joined, err := JoinProofs(t.hash, proofs...)
	if err != nil {
		return nil, nil, err
	}
	root := t.root
	for _, el := range elements {
		root, err = removeKey(t.hash, root, DeriveKey(t.hash, el))
		if err != nil {
			return nil, nil, err
		}
	}
	return &Tree{hash: t.hash, root: root}, joined, nil
}

// NodeRecord is the persisted form of a full treap node: its key plus the
// digests of both children (the empty sentinel for absent children).
// Priorities and the node's own digest are recomputed on load.
type NodeRecord struct {
	Key   Key
	Left  Digest
	Right Digest
}

// Walk visits every node of the tree, passing its digest and record. Shared
// subtrees of other snapshots are visited too; persisting them is idempotent
// because records are content-addressed by digest.
func (t *Tree) Walk(fn func(digest Digest, rec NodeRecord) error) error {
	return walkNodes(t.hash, t.root, fn)
}

func walkNodes(h Hasher, n *node, fn func(Digest, NodeRecord) error) error {
	if n == nil {
		return nil
	}
	if err := walkNodes(h, n.left, fn); err != nil {
		return err
	}
	if err := walkNodes(h, n.right, fn); err != nil {
		return err
	}
	return fn(n.digest, NodeRecord{
		Key:   n.key,
		Left:  childDigest(h, n.left),
		Right: childDigest(h, n.right),
	})
}

// Rebuild reconstructs a tree snapshot from content-addressed node records,
// fetching each node by the digest its parent committed to. The recomputed
// digest of every fetched record is checked against the requested digest, so
// a corrupt store cannot produce a tree with the claimed root.
func Rebuild(h Hasher, root Digest, fetch func(Digest) (NodeRecord, error)) (*Tree, error) {
	n, err := rebuildNode(h, root, fetch)
	if err != nil {
		return nil, err
	}
	return &Tree{hash: h, root: n}, nil
}

func rebuildNode(h Hasher, digest Digest, fetch func(Digest) (NodeRecord, error)) (*node, error) {
	if digest == h.Empty() {
		return nil, nil
	}
	rec, err := fetch(digest)
	if err != nil {
		return nil, err
	}
	left, err := rebuildNode(h, rec.Left, fetch)
	if err != nil {
		return nil, err
	}
	right, err := rebuildNode(h, rec.Right, fetch)
	if err != nil {
		return nil, err
	}
	n := newNode(h, rec.Key, DerivePriority(h, rec.Key), left, right)
	if n.digest != digest {
		return nil, fmt.Errorf("node record %x does not hash to its address", digest[:8])
	}
	return n, nil
}
