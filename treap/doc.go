// Package treap implements a universal accumulator over a deterministic,
// hash-ordered treap.
//
// Every element hashes to a key, every key hashes to a priority, and the
// tree is simultaneously a BST over keys and a max-heap over priorities.
// Since both orders are fixed by the element set alone, any set of elements
// has exactly one tree shape and therefore exactly one 32-byte merkle root.
// That root is the accumulator: a verifier holding only the root can check
// membership, non-membership, insertion and removal claims against small
// partial-tree proofs, and can batch many changes into a single "warp"
// transition.
//
// All values are immutable. Mutating operations return new trees that share
// untouched subtrees with their originals, so any historical root remains a
// valid, independently usable snapshot.
package treap
