package treap

import (
	"errors"
	"fmt"
)

// ProofKind labels what a proof was cut for. Verification is driven by the
// operation it is submitted to, not by the label; the label travels with the
// serialized form so callers can route proofs.
type ProofKind uint8

const (
	ProofInclusion ProofKind = iota + 1
	ProofExclusion
	ProofInsertion
	ProofDeletion
	ProofBatch
)

func (k ProofKind) valid() bool {
	return k >= ProofInclusion && k <= ProofBatch
}

func (k ProofKind) String() string {
	switch k {
	case ProofInclusion:
		return "inclusion"
	case ProofExclusion:
		return "exclusion"
	case ProofInsertion:
		return "insertion"
	case ProofDeletion:
		return "deletion"
	case ProofBatch:
		return "batch"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(k))
	}
}

// Proof is a sparse partial tree: full nodes along the paths of interest,
// digest-only nodes for everything branching off them. Re-hashing the
// partial structure bottom-up reproduces the root digest of the tree it was
// cut from; the digests are computed at construction, so Root is always the
// recomputed value and never a claim.
type Proof struct {
	Kind ProofKind
	root *node
}

// Root returns the recomputed root commitment of the partial tree.
func (p *Proof) Root(h Hasher) Digest {
	return childDigest(h, p.root)
}

// Len returns the number of nodes the proof carries.
func (p *Proof) Len() int {
	return countNodes(p.root)
}

// Keys returns the keys visible in the proof, full and compressed alike.
func (p *Proof) Keys() map[Key]struct{} {
	entries := map[Key]nodeEntry{}
	collectNodes(p.root, entries)
	keys := make(map[Key]struct{}, len(entries))
	for k := range entries {
		keys[k] = struct{}{}
	}
	return keys
}

// ProveInclusion cuts an inclusion proof for element: the search path to its
// key stays full, everything off the path is compressed. Fails with
// ErrElementNotFound if the element is not a member.
func (t *Tree) ProveInclusion(element []byte) (*Proof, error) {
	root, err := compressFor(t.hash, t.root, DeriveKey(t.hash, element))
	if err != nil {
		return nil, err
	}
	return &Proof{Kind: ProofInclusion, root: root}, nil
}

// ProveExclusion cuts an exclusion proof for element: the failed search path
// to where its key would sit, with the empty child it terminates at kept
// visible. Fails with ErrElementExists if the element is a member.
func (t *Tree) ProveExclusion(element []byte) (*Proof, error) {
	p, err := t.proveExclusionKey(DeriveKey(t.hash, element))
	if err != nil {
		return nil, err
	}
	p.Kind = ProofExclusion
	return p, nil
}

// InsertProof cuts a proof carrying enough of the tree to replay the
// insertion of element on the partial tree alone. Implemented as the
// exclusion proof for the successor of the last key on the search path: the
// interval between a key and its successor is empty, so that path brackets
// the insertion point.
func (t *Tree) InsertProof(element []byte) (*Proof, error) {
	key := DeriveKey(t.hash, element)
	path, err := findPath(t.root, key)
	if err != nil {
		return nil, err
	}
	if path[len(path)-1] != nil {
		return nil, ErrElementExists
	}
	if len(path) == 1 {
		// empty tree: the whole state is the empty sentinel
		return &Proof{Kind: ProofInsertion}, nil
	}
	last := path[len(path)-2]
	p, err := t.proveExclusionKey(last.key.next())
	if err != nil {
		return nil, err
	}
	p.Kind = ProofInsertion
	return p, nil
}

// RemoveProof cuts a proof carrying enough of the tree to replay the removal
// of element: the joined exclusion proofs for both neighbors of its key,
// which together surround the node being rotated out.
func (t *Tree) RemoveProof(element []byte) (*Proof, error) {
	key := DeriveKey(t.hash, element)
	path, err := findPath(t.root, key)
	if err != nil {
		return nil, err
	}
	if path[len(path)-1] == nil {
		return nil, ErrElementNotFound
	}
	succ, err := t.proveExclusionKey(key.next())
	if err != nil {
		return nil, err
	}
	pred, err := t.proveExclusionKey(key.prev())
	if err != nil {
		return nil, err
	}
	p, err := JoinProofs(t.hash, succ, pred)
	if err != nil {
		return nil, err
	}
	p.Kind = ProofDeletion
	return p, nil
}

// proveExclusionKey cuts the exclusion proof for an arbitrary key: the
// compressed path to the last node touched by the failed search.
func (t *Tree) proveExclusionKey(key Key) (*Proof, error) {
	path, err := findPath(t.root, key)
	if err != nil {
		return nil, err
	}
	if path[len(path)-1] != nil {
		return nil, ErrElementExists
	}
	if len(path) == 1 {
		return &Proof{Kind: ProofExclusion}, nil
	}
	last := path[len(path)-2]
	root, err := compressFor(t.hash, t.root, last.key)
	if err != nil {
		return nil, err
	}
	return &Proof{Kind: ProofExclusion, root: root}, nil
}

// VerifyInclusion checks that element is a member of the set this tree
// commits to, using only the proof and the root digest.
func (t *Tree) VerifyInclusion(element []byte, p *Proof) error {
	return verifyInclusion(t.hash, t.Root(), p, DeriveKey(t.hash, element))
}

// VerifyInclusionAll checks membership of several elements against one
// (typically joined) proof.
func (t *Tree) VerifyInclusionAll(elements [][]byte, p *Proof) error {
	return verifyInclusion(t.hash, t.Root(), p, deriveKeys(t.hash, elements)...)
}

// VerifyExclusion checks that element is not a member of the set this tree
// commits to.
func (t *Tree) VerifyExclusion(element []byte, p *Proof) error {
	return verifyExclusion(t.hash, t.Root(), p, DeriveKey(t.hash, element))
}

// VerifyExclusionAll checks non-membership of several elements against one
// proof.
func (t *Tree) VerifyExclusionAll(elements [][]byte, p *Proof) error {
	return verifyExclusion(t.hash, t.Root(), p, deriveKeys(t.hash, elements)...)
}

func deriveKeys(h Hasher, elements [][]byte) []Key {
	keys := make([]Key, len(elements))
	for i, el := range elements {
		keys[i] = DeriveKey(h, el)
	}
	return keys
}

func verifyInclusion(h Hasher, root Digest, p *Proof, keys ...Key) error {
	if p == nil {
		return fmt.Errorf("%w: missing proof", ErrInvalidProof)
	}
	if p.Root(h) != root {
		return fmt.Errorf("%w: proof root does not match commitment", ErrInvalidProof)
	}
	entries := map[Key]nodeEntry{}
	collectNodes(p.root, entries)
	for _, k := range keys {
		if _, ok := entries[k]; !ok {
			return fmt.Errorf("%w: proof does not cover key %x", ErrInvalidProof, k[:8])
		}
	}
	return nil
}

func verifyExclusion(h Hasher, root Digest, p *Proof, keys ...Key) error {
	if p == nil {
		return fmt.Errorf("%w: missing proof", ErrInvalidProof)
	}
	if p.Root(h) != root {
		return fmt.Errorf("%w: proof root does not match commitment", ErrInvalidProof)
	}
	for _, k := range keys {
		// The failed search must terminate at an empty child without ever
		// entering a compressed node: a compressed subtree could hide the key.
		n, err := find(p.root, k)
		if errors.Is(err, errCompressed) {
			return fmt.Errorf("%w: exclusion path for key %x not covered", ErrInvalidProof, k[:8])
		}
		if err != nil {
			return err
		}
		if n != nil {
			return fmt.Errorf("%w: key %x is in the set", ErrElementExists, k[:8])
		}
	}
	return nil
}

// JoinProofs unions partial trees cut from the same root into one proof.
// Where the inputs overlap, the fuller representation wins (full node over
// compressed, compressed over absent). The union verifies against the root
// exactly when every input does.
func JoinProofs(h Hasher, proofs ...*Proof) (*Proof, error) {
	if len(proofs) == 0 {
		return nil, fmt.Errorf("%w: no proofs to join", ErrInvalidProof)
	}
	root := proofs[0].Root(h)
	joined := proofs[0].root
	for _, p := range proofs[1:] {
		if p.Root(h) != root {
			return nil, fmt.Errorf("%w: joining proofs for different roots", ErrInvalidProof)
		}
		joined = joinNodes(h, joined, p.root)
	}
	return &Proof{Kind: ProofBatch, root: joined}, nil
}

func joinNodes(h Hasher, a, b *node) *node {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	if a.kind == kindCompressed && b.kind == kindCompressed {
		return a
	}
	if a.kind == kindCompressed {
		return b
	}
	if b.kind == kindCompressed {
		return a
	}
	// Both full: same position in the same tree, so the same key; the union
	// of the children re-hashes to the same digest.
	return newNode(h, a.key, a.prior, joinNodes(h, a.left, b.left), joinNodes(h, a.right, b.right))
}
