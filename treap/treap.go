package treap

import "fmt"

// split partitions t into (left, right) around key: left holds keys < key,
// right holds keys >= key. With eqLeft set, an exact match goes left
// instead. Splitting never loses heap order because both halves keep their
// relative priorities.
func split(h Hasher, t *node, key Key, eqLeft bool) (*node, *node, error) {
	if t == nil {
		return nil, nil, nil
	}
	if t.kind == kindCompressed {
		return nil, nil, errCompressed
	}
	c := keyCmp(t.key, key)
	if c < 0 || (eqLeft && c == 0) {
		l, r, err := split(h, t.right, key, eqLeft)
		if err != nil {
			return nil, nil, err
		}
		return newNode(h, t.key, t.prior, t.left, l), r, nil
	}
	l, r, err := split(h, t.left, key, eqLeft)
	if err != nil {
		return nil, nil, err
	}
	return l, newNode(h, t.key, t.prior, r, t.right), nil
}

// merge joins two treaps where every key in a precedes every key in b,
// attaching the greater-priority root first to preserve heap order.
func merge(h Hasher, a, b *node) (*node, error) {
	if a == nil {
		return b, nil
	}
	if b == nil {
		return a, nil
	}
	if a.kind == kindCompressed || b.kind == kindCompressed {
		return nil, errCompressed
	}
	if keyCmp(Key(a.prior), Key(b.prior)) > 0 {
		r, err := merge(h, a.right, b)
		if err != nil {
			return nil, err
		}
		return newNode(h, a.key, a.prior, a.left, r), nil
	}
	l, err := merge(h, a, b.left)
	if err != nil {
		return nil, err
	}
	return newNode(h, b.key, b.prior, l, b.right), nil
}

// find returns the node holding key, or nil if the search falls off the
// tree. Reaching a compressed node means the partial tree does not carry
// enough information to decide.
func find(t *node, key Key) (*node, error) {
	if t == nil {
		return nil, nil
	}
	if t.kind == kindCompressed {
		return nil, errCompressed
	}
	c := keyCmp(key, t.key)
	switch {
	case c == 0:
		return t, nil
	case c > 0:
		return find(t.right, key)
	default:
		return find(t.left, key)
	}
}

// findPath returns the BST descent path to key. The final entry is the node
// holding key, or nil if the search terminated at an empty child.
func findPath(t *node, key Key) ([]*node, error) {
	if t == nil {
		return []*node{nil}, nil
	}
	if t.kind == kindCompressed {
		return nil, errCompressed
	}
	if t.key == key {
		return []*node{t}, nil
	}
	var rest []*node
	var err error
	if keyCmp(key, t.key) > 0 {
		rest, err = findPath(t.right, key)
	} else {
		rest, err = findPath(t.left, key)
	}
	if err != nil {
		return nil, err
	}
	return append([]*node{t}, rest...), nil
}

// insertKey inserts key into t and returns the new root. Works identically
// on full trees and on partial trees that cover the insertion path.
func insertKey(h Hasher, t *node, key Key) (*node, error) {
	l, r, err := split(h, t, key, false)
	if err != nil {
		return nil, err
	}
	dup, err := find(r, key)
	if err != nil {
		return nil, err
	}
	if dup != nil {
		return nil, ErrElementExists
	}
	fresh := newNode(h, key, DerivePriority(h, key), nil, nil)
	m, err := merge(h, fresh, r)
	if err != nil {
		return nil, err
	}
	return merge(h, l, m)
}

// removeKey removes key from t and returns the new root.
func removeKey(h Hasher, t *node, key Key) (*node, error) {
	l, r, err := split(h, t, key, false)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, ErrElementNotFound
	}
	target, rest, err := split(h, r, key, true)
	if err != nil {
		return nil, err
	}
	if target == nil {
		return nil, ErrElementNotFound
	}
	return merge(h, l, rest)
}

// compressFor compresses t along the search path to key: nodes on the path
// stay full, off-path siblings become digest-only, absent children stay nil.
// The result re-hashes to the same root digest as t.
func compressFor(h Hasher, t *node, key Key) (*node, error) {
	if t == nil {
		return nil, ErrElementNotFound
	}
	if t.kind == kindCompressed {
		return nil, errCompressed
	}
	if t.key == key {
		return newNode(h, t.key, t.prior, compress(h, t.left), compress(h, t.right)), nil
	}
	if keyCmp(key, t.key) > 0 {
		if t.right == nil {
			return nil, ErrElementNotFound
		}
		r, err := compressFor(h, t.right, key)
		if err != nil {
			return nil, err
		}
		return newNode(h, t.key, t.prior, compress(h, t.left), r), nil
	}
	if t.left == nil {
		return nil, ErrElementNotFound
	}
	l, err := compressFor(h, t.left, key)
	if err != nil {
		return nil, err
	}
	return newNode(h, t.key, t.prior, l, compress(h, t.right)), nil
}

// validateTreap checks the structural invariants of a (partial) treap:
// strict BST order by key and strict max-heap order by priority, including
// against compressed children.
func validateTreap(n *node) error {
	if n == nil || n.kind == kindCompressed {
		return nil
	}
	if n.left != nil {
		if keyCmp(n.left.key, n.key) >= 0 {
			return fmt.Errorf("key order violated at %x", n.key[:4])
		}
		if keyCmp(Key(n.left.prior), Key(n.prior)) >= 0 {
			return fmt.Errorf("heap order violated at %x", n.key[:4])
		}
		if err := validateTreap(n.left); err != nil {
			return err
		}
	}
	if n.right != nil {
		if keyCmp(n.key, n.right.key) >= 0 {
			return fmt.Errorf("key order violated at %x", n.key[:4])
		}
		if keyCmp(Key(n.right.prior), Key(n.prior)) >= 0 {
			return fmt.Errorf("heap order violated at %x", n.key[:4])
		}
		if err := validateTreap(n.right); err != nil {
			return err
		}
	}
	return nil
}
