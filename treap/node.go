package treap

// nodeKind tags the two variants a partial tree is made of. A full tree
// contains only full nodes; proofs additionally contain compressed nodes for
// the subtrees that were not descended into, and nil for absent children.
type nodeKind uint8

const (
	kindFull nodeKind = iota
	kindCompressed
)

// node is a treap node. For kindFull the children pointers are meaningful
// (nil = empty subtree); for kindCompressed only the child digests are kept.
// The digest is computed at construction from the already-correct child
// digests and is never accepted from untrusted input, so recomputing a root
// happens implicitly whenever a partial tree is (re)built.
//
// Nodes are immutable after construction. Mutations allocate the O(log n)
// nodes along the touched path and share every other subtree.
type node struct {
	kind  nodeKind
	key   Key
	prior Priority

	left  *node
	right *node

	leftDigest  Digest
	rightDigest Digest

	digest Digest
}

// childDigest returns the digest a node commits to for the given child.
func childDigest(h Hasher, n *node) Digest {
	if n == nil {
		return h.Empty()
	}
	return n.digest
}

func nodeDigest(h Hasher, key Key, prior Priority, left, right Digest) Digest {
	return h.Sum(key[:], prior[:], left[:], right[:])
}

// newNode builds a full node over the given children. The children may
// themselves be full or compressed; only their digests contribute.
func newNode(h Hasher, key Key, prior Priority, left, right *node) *node {
	return &node{
		kind:   kindFull,
		key:    key,
		prior:  prior,
		left:   left,
		right:  right,
		digest: nodeDigest(h, key, prior, childDigest(h, left), childDigest(h, right)),
	}
}

// newCompressed builds a digest-only node: the key and priority stay public,
// the children are represented by their digests alone.
func newCompressed(h Hasher, key Key, left, right Digest) *node {
	prior := DerivePriority(h, key)
	return &node{
		kind:        kindCompressed,
		key:         key,
		prior:       prior,
		leftDigest:  left,
		rightDigest: right,
		digest:      nodeDigest(h, key, prior, left, right),
	}
}

// compress returns the digest-only representation of a node. Compressing a
// node does not change its digest.
func compress(h Hasher, n *node) *node {
	if n == nil || n.kind == kindCompressed {
		return n
	}
	return newCompressed(h, n.key, childDigest(h, n.left), childDigest(h, n.right))
}

// nodeEntry records how a key is represented inside a partial tree.
type nodeEntry struct {
	kind   nodeKind
	digest Digest
}

// collectNodes indexes every node of a (partial) tree by key. A compressed
// node contributes only itself; its hidden children are unknown.
func collectNodes(n *node, out map[Key]nodeEntry) {
	if n == nil {
		return
	}
	out[n.key] = nodeEntry{kind: n.kind, digest: n.digest}
	collectNodes(n.left, out)
	collectNodes(n.right, out)
}

// countNodes returns the number of nodes in a (partial) tree.
func countNodes(n *node) int {
	if n == nil {
		return 0
	}
	return 1 + countNodes(n.left) + countNodes(n.right)
}
