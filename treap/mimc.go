package treap

import (
	"github.com/consensys/gnark-crypto/ecc/bn254/fr/mimc"
)

// mimcHasher is a field-friendly hash suite over BN254, for deployments
// where proof verification happens inside a SNARK-adjacent system. Input is
// split into 31-byte chunks, each left-padded to a 32-byte block, so every
// block is a canonical field element.
type mimcHasher struct {
	empty Digest
}

// NewMiMC returns a MiMC-based hash suite. Trees and proofs built with
// different suites are incompatible.
func NewMiMC() Hasher {
	h := &mimcHasher{}
	h.empty = h.Sum(emptySentinel)
	return h
}

func (h *mimcHasher) Sum(data ...[]byte) Digest {
	d := mimc.NewMiMC()
	var buf []byte
	for _, b := range data {
		buf = append(buf, b...)
	}
	var block [32]byte
	for len(buf) > 0 {
		n := len(buf)
		if n > 31 {
			n = 31
		}
		for i := range block {
			block[i] = 0
		}
		copy(block[32-n:], buf[:n])
		buf = buf[n:]
		if _, err := d.Write(block[:]); err != nil {
			// unreachable: a left-padded 31-byte chunk is always canonical
			panic("treap: mimc rejected block: " + err.Error())
		}
	}
	var out Digest
	copy(out[:], d.Sum(nil))
	return out
}

func (h *mimcHasher) Empty() Digest {
	return h.empty
}
