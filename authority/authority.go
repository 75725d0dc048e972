// Package authority computes the iterated-SHA-256 commitment to a GRANDPA
// authority set, following original_source's compute_authority_set_commitment.
package authority

import (
	"github.com/kysee/grandpa-bridge/codec"
	"github.com/kysee/grandpa-bridge/types"
)

// Commit folds pubkeys into a single commitment: H0 = SHA256(pubkeys[0]),
// Hi = SHA256(H(i-1) || pubkeys[i]). An empty set commits to the all-zero hash.
func Commit(pubkeys []types.PubKey) types.Hash {
	if len(pubkeys) == 0 {
		return types.Hash{}
	}
	h := codec.Sha256(pubkeys[0][:])
	for i := 1; i < len(pubkeys); i++ {
		var buf [64]byte
		copy(buf[:32], h[:])
		copy(buf[32:], pubkeys[i][:])
		h = codec.Sha256(buf[:])
	}
	return types.Hash(h)
}
