package treap

import (
	"bytes"
	"fmt"
)

// Wire format: one version byte, one kind byte, then a preorder walk of the
// partial tree. Each node starts with a tag; a full node carries its 32-byte
// key followed by both children, a compressed node carries its key and both
// child digests. Priorities and digests are never on the wire: they are
// recomputed on decode, so a decoded proof cannot claim a root it does not
// re-hash to.
const codecVersion = 1

const (
	tagNil        = 0
	tagFull       = 1
	tagCompressed = 2
)

// MarshalBinary serializes the proof.
func (p *Proof) MarshalBinary() ([]byte, error) {
	if !p.Kind.valid() {
		return nil, fmt.Errorf("%w: cannot serialize proof of kind %s", ErrInvalidProof, p.Kind)
	}
	var buf bytes.Buffer
	buf.WriteByte(codecVersion)
	buf.WriteByte(byte(p.Kind))
	marshalNode(&buf, p.root)
	return buf.Bytes(), nil
}

func marshalNode(buf *bytes.Buffer, n *node) {
	switch {
	case n == nil:
		buf.WriteByte(tagNil)
	case n.kind == kindCompressed:
		buf.WriteByte(tagCompressed)
		buf.Write(n.key[:])
		buf.Write(n.leftDigest[:])
		buf.Write(n.rightDigest[:])
	default:
		buf.WriteByte(tagFull)
		buf.Write(n.key[:])
		marshalNode(buf, n.left)
		marshalNode(buf, n.right)
	}
}

// UnmarshalProof decodes a serialized proof. Truncated or malformed input is
// rejected with ErrInvalidProof before any hashing is attempted.
func UnmarshalProof(h Hasher, data []byte) (*Proof, error) {
	d := &decoder{buf: data}
	version, err := d.byte()
	if err != nil {
		return nil, err
	}
	if version != codecVersion {
		return nil, fmt.Errorf("%w: unsupported proof version %d", ErrInvalidProof, version)
	}
	kindByte, err := d.byte()
	if err != nil {
		return nil, err
	}
	kind := ProofKind(kindByte)
	if !kind.valid() {
		return nil, fmt.Errorf("%w: unknown proof kind %d", ErrInvalidProof, kindByte)
	}
	raw, err := d.node()
	if err != nil {
		return nil, err
	}
	if len(d.buf) != 0 {
		return nil, fmt.Errorf("%w: %d trailing bytes after proof", ErrInvalidProof, len(d.buf))
	}
	return &Proof{Kind: kind, root: buildNode(h, raw)}, nil
}

// rawNode is the parsed but not yet hashed form of a proof node. The whole
// input is validated structurally before the first digest is computed.
type rawNode struct {
	tag         byte
	key         Key
	leftDigest  Digest
	rightDigest Digest
	left        *rawNode
	right       *rawNode
}

type decoder struct {
	buf []byte
}

func (d *decoder) byte() (byte, error) {
	if len(d.buf) < 1 {
		return 0, fmt.Errorf("%w: truncated proof", ErrInvalidProof)
	}
	b := d.buf[0]
	d.buf = d.buf[1:]
	return b, nil
}

func (d *decoder) word() ([32]byte, error) {
	var w [32]byte
	if len(d.buf) < 32 {
		return w, fmt.Errorf("%w: truncated proof", ErrInvalidProof)
	}
	copy(w[:], d.buf)
	d.buf = d.buf[32:]
	return w, nil
}

func (d *decoder) node() (*rawNode, error) {
	tag, err := d.byte()
	if err != nil {
		return nil, err
	}
	switch tag {
	case tagNil:
		return nil, nil
	case tagFull:
		n := &rawNode{tag: tag}
		key, err := d.word()
		if err != nil {
			return nil, err
		}
		n.key = key
		if n.left, err = d.node(); err != nil {
			return nil, err
		}
		if n.right, err = d.node(); err != nil {
			return nil, err
		}
		return n, nil
	case tagCompressed:
		n := &rawNode{tag: tag}
		for _, dst := range []*[32]byte{(*[32]byte)(&n.key), (*[32]byte)(&n.leftDigest), (*[32]byte)(&n.rightDigest)} {
			w, err := d.word()
			if err != nil {
				return nil, err
			}
			*dst = w
		}
		return n, nil
	default:
		return nil, fmt.Errorf("%w: unknown node tag %d", ErrInvalidProof, tag)
	}
}

func buildNode(h Hasher, raw *rawNode) *node {
	if raw == nil {
		return nil
	}
	if raw.tag == tagCompressed {
		return newCompressed(h, raw.key, raw.leftDigest, raw.rightDigest)
	}
	return newNode(h, raw.key, DerivePriority(h, raw.key),
		buildNode(h, raw.left), buildNode(h, raw.right))
}
