// Package merkle computes the fixed-arity binary SHA-256 Merkle root used
// for the header-range circuit's data and state commitments.
package merkle

import (
	"fmt"

	"github.com/kysee/grandpa-bridge/codec"
	"github.com/kysee/grandpa-bridge/errs"
)

// Root computes the Merkle root of leaves over a tree of treeSize leaf
// slots (assumed a power of two). Leaves fill left-to-right; any remaining
// slots are padded with the all-zero leaf. Root fails only when len(leaves)
// exceeds treeSize.
func Root(leaves [][32]byte, treeSize uint32) ([32]byte, error) {
	if uint32(len(leaves)) > treeSize {
		return [32]byte{}, fmt.Errorf("%w: %d leaves for a %d-leaf tree", errs.ErrTreeOverflow, len(leaves), treeSize)
	}
	if treeSize == 0 {
		return [32]byte{}, nil
	}

	level := make([][32]byte, treeSize)
	copy(level, leaves)
	// padding slots are already the zero value

	for len(level) > 1 {
		next := make([][32]byte, len(level)/2)
		for i := range next {
			var buf [64]byte
			copy(buf[:32], level[2*i][:])
			copy(buf[32:], level[2*i+1][:])
			next[i] = codec.Sha256(buf[:])
		}
		level = next
	}
	return level[0], nil
}
