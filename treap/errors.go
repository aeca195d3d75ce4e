package treap

import "errors"

var (
	// ErrElementExists is returned when an insert target is already a member
	// of the set, or when an exclusion claim is made for a present element.
	ErrElementExists = errors.New("treap: element already in set")

	// ErrElementNotFound is returned when a remove or inclusion target is
	// not a member of the set.
	ErrElementNotFound = errors.New("treap: element not in set")

	// ErrInvalidProof is returned when a proof does not match the expected
	// root commitment, is structurally malformed, or does not carry enough
	// of the tree to perform the requested operation.
	ErrInvalidProof = errors.New("treap: invalid proof")
)

// errCompressed is raised internally when a search or mutation descends into
// a digest-only node. At the proof boundary it always surfaces as
// ErrInvalidProof; it can never occur on a full tree.
var errCompressed = errors.New("treap: descended into compressed node")
