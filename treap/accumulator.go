package treap

import (
	"errors"
	"fmt"
)

// Accumulator is the commitment-only view of a set: a 32-byte root digest
// and nothing else. It never holds elements; it transitions to a new root
// only by replaying a verified proof, and a rejected proof leaves it
// untouched. Accumulators are immutable values; every transition returns a
// new one, so old commitments remain usable snapshots.
type Accumulator struct {
	hash Hasher
	root Digest
}

// NewAccumulator wraps an existing root commitment.
func NewAccumulator(h Hasher, root Digest) *Accumulator {
	return &Accumulator{hash: h, root: root}
}

// Root returns the current commitment. Two accumulators are equal exactly
// when their roots are.
func (a *Accumulator) Root() Digest {
	return a.root
}

// VerifyInclusion checks that element is a member of the committed set.
func (a *Accumulator) VerifyInclusion(element []byte, p *Proof) error {
	return verifyInclusion(a.hash, a.root, p, DeriveKey(a.hash, element))
}

// VerifyInclusionAll checks membership of several elements against one proof.
func (a *Accumulator) VerifyInclusionAll(elements [][]byte, p *Proof) error {
	return verifyInclusion(a.hash, a.root, p, deriveKeys(a.hash, elements)...)
}

// VerifyExclusion checks that element is not a member of the committed set.
func (a *Accumulator) VerifyExclusion(element []byte, p *Proof) error {
	return verifyExclusion(a.hash, a.root, p, DeriveKey(a.hash, element))
}

// VerifyExclusionAll checks non-membership of several elements against one
// proof.
func (a *Accumulator) VerifyExclusionAll(elements [][]byte, p *Proof) error {
	return verifyExclusion(a.hash, a.root, p, deriveKeys(a.hash, elements)...)
}

// Insert transitions the accumulator across the insertion of element. The
// proof must re-hash to the current root and carry the insertion path; the
// echo proof is the updated partial tree, usable for follow-up operations
// against the new root.
func (a *Accumulator) Insert(element []byte, p *Proof) (*Accumulator, *Proof, error) {
	return a.InsertMany([][]byte{element}, p)
}

// InsertMany transitions the accumulator across a batch of insertions with a
// single root verification.
func (a *Accumulator) InsertMany(elements [][]byte, p *Proof) (*Accumulator, *Proof, error) {
	cur, err := a.checkProofRoot(p)
	if err != nil {
		return nil, nil, err
	}
	for _, el := range elements {
		cur, err = insertKey(a.hash, cur, DeriveKey(a.hash, el))
		if errors.Is(err, errCompressed) {
			return nil, nil, fmt.Errorf("%w: proof does not cover the insertion path", ErrInvalidProof)
		}
		if err != nil {
			return nil, nil, err
		}
	}
	echo := &Proof{Kind: ProofBatch, root: cur}
	return &Accumulator{hash: a.hash, root: childDigest(a.hash, cur)}, echo, nil
}

// Remove transitions the accumulator across the removal of element.
func (a *Accumulator) Remove(element []byte, p *Proof) (*Accumulator, *Proof, error) {
	return a.RemoveMany([][]byte{element}, p)
}

// RemoveMany transitions the accumulator across a batch of removals with a
// single root verification.
func (a *Accumulator) RemoveMany(elements [][]byte, p *Proof) (*Accumulator, *Proof, error) {
	cur, err := a.checkProofRoot(p)
	if err != nil {
		return nil, nil, err
	}
	for _, el := range elements {
		cur, err = removeKey(a.hash, cur, DeriveKey(a.hash, el))
		if errors.Is(err, errCompressed) {
			return nil, nil, fmt.Errorf("%w: proof does not cover the removal path", ErrInvalidProof)
		}
		if err != nil {
			return nil, nil, err
		}
	}
	echo := &Proof{Kind: ProofBatch, root: cur}
	return &Accumulator{hash: a.hash, root: childDigest(a.hash, cur)}, echo, nil
}

func (a *Accumulator) checkProofRoot(p *Proof) (*node, error) {
	if p == nil {
		return nil, fmt.Errorf("%w: missing proof", ErrInvalidProof)
	}
	if p.Root(a.hash) != a.root {
		return nil, fmt.Errorf("%w: proof root does not match commitment", ErrInvalidProof)
	}
	return p.root, nil
}

// Warp transitions the accumulator across a whole batch of insertions and
// removals in one pass, without replaying them one by one. joined is the
// union of the individual insertion/deletion proofs against the current
// root; next is the claimed partial tree after all changes. Because the
// treap shape for a given key set is unique, next is accepted exactly when:
//
//	(a) joined re-hashes to the current root;
//	(b) the keys of next are the keys of joined minus removed plus added,
//	    with every added and removed key appearing as a full node;
//	(c) next is a structurally valid partial treap;
//	(d) the compressed frontier is untouched: next carries exactly the
//	    compressed nodes of joined, digests included.
//
// On success the new commitment is next's recomputed root.
func (a *Accumulator) Warp(joined *Proof, added, removed [][]byte, next *Proof) (*Accumulator, *Proof, error) {
	h := a.hash
	if joined == nil || next == nil {
		return nil, nil, fmt.Errorf("%w: missing proof", ErrInvalidProof)
	}

	// (a) the joined proof must describe the committed state
	if joined.Root(h) != a.root {
		return nil, nil, fmt.Errorf("%w: warp: joined proof root does not match commitment", ErrInvalidProof)
	}

	addedKeys := map[Key]struct{}{}
	for _, el := range added {
		addedKeys[DeriveKey(h, el)] = struct{}{}
	}
	removedKeys := map[Key]struct{}{}
	for _, el := range removed {
		k := DeriveKey(h, el)
		if _, ok := addedKeys[k]; ok {
			return nil, nil, fmt.Errorf("%w: warp: added and removed sets overlap", ErrInvalidProof)
		}
		removedKeys[k] = struct{}{}
	}

	old := map[Key]nodeEntry{}
	collectNodes(joined.root, old)
	new_ := map[Key]nodeEntry{}
	collectNodes(next.root, new_)

	// (b) key bookkeeping
	for k := range removedKeys {
		e, ok := old[k]
		if !ok || e.kind != kindFull {
			return nil, nil, fmt.Errorf("%w: warp: removed key %x is not a full node of the joined proof", ErrInvalidProof, k[:8])
		}
		if _, ok := new_[k]; ok {
			return nil, nil, fmt.Errorf("%w: warp: removed key %x still present", ErrInvalidProof, k[:8])
		}
	}
	for k := range addedKeys {
		if _, ok := old[k]; ok {
			return nil, nil, fmt.Errorf("%w: warp: added key %x already present", ErrInvalidProof, k[:8])
		}
		e, ok := new_[k]
		if !ok || e.kind != kindFull {
			return nil, nil, fmt.Errorf("%w: warp: added key %x is not a full node of the new proof", ErrInvalidProof, k[:8])
		}
	}
	for k, e := range new_ {
		if _, ok := addedKeys[k]; ok {
			continue
		}
		oe, ok := old[k]
		if !ok {
			return nil, nil, fmt.Errorf("%w: warp: unexpected key %x in new proof", ErrInvalidProof, k[:8])
		}
		// a key the batch did not add may not gain structure it did not have
		if e.kind == kindFull && oe.kind != kindFull {
			return nil, nil, fmt.Errorf("%w: warp: key %x changed representation", ErrInvalidProof, k[:8])
		}
	}
	for k := range old {
		if _, ok := removedKeys[k]; ok {
			continue
		}
		if _, ok := new_[k]; !ok {
			return nil, nil, fmt.Errorf("%w: warp: key %x missing from new proof", ErrInvalidProof, k[:8])
		}
	}

	// (c) the claimed state must itself be a valid partial treap
	if err := validateTreap(next.root); err != nil {
		return nil, nil, fmt.Errorf("%w: warp: %v", ErrInvalidProof, err)
	}

	// (d) frontier stability: nothing outside the batch's region moved
	for k, oe := range old {
		if oe.kind != kindCompressed {
			continue
		}
		ne, ok := new_[k]
		if !ok || ne.kind != kindCompressed || ne.digest != oe.digest {
			return nil, nil, fmt.Errorf("%w: warp: compressed frontier changed at key %x", ErrInvalidProof, k[:8])
		}
	}
	for k, ne := range new_ {
		if ne.kind != kindCompressed {
			continue
		}
		oe, ok := old[k]
		if !ok || oe.kind != kindCompressed || oe.digest != ne.digest {
			return nil, nil, fmt.Errorf("%w: warp: compressed frontier changed at key %x", ErrInvalidProof, k[:8])
		}
	}

	return &Accumulator{hash: h, root: next.Root(h)}, next, nil
}
