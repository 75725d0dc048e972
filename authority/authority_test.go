package authority_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kysee/grandpa-bridge/authority"
	"github.com/kysee/grandpa-bridge/codec"
	"github.com/kysee/grandpa-bridge/types"
)

func pk(b byte) types.PubKey {
	var p types.PubKey
	for i := range p {
		p[i] = b
	}
	return p
}

// S2 authority commitment: spec.md §8.
func TestCommit_S2TripleNestedDigest(t *testing.T) {
	v := []types.PubKey{pk(0x01), pk(0x02), pk(0x03)}

	h0 := codec.Sha256(v[0][:])
	var buf1 [64]byte
	copy(buf1[:32], h0[:])
	copy(buf1[32:], v[1][:])
	h1 := codec.Sha256(buf1[:])
	var buf2 [64]byte
	copy(buf2[:32], h1[:])
	copy(buf2[32:], v[2][:])
	want := codec.Sha256(buf2[:])

	require.Equal(t, types.Hash(want), authority.Commit(v))
}

func TestCommit_Singleton(t *testing.T) {
	v := []types.PubKey{pk(0xAB)}
	want := codec.Sha256(v[0][:])
	require.Equal(t, types.Hash(want), authority.Commit(v))
}

func TestCommit_Empty(t *testing.T) {
	require.Equal(t, types.Hash{}, authority.Commit(nil))
}
