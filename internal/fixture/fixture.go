// Package fixture builds synthetic headers, authority sets and
// justifications for tests across the kernel packages, since no SCALE
// codec library exists in the reference corpus to decode real chain data
// from a fixture file.
package fixture

import (
	"crypto/ed25519"

	"github.com/kysee/grandpa-bridge/codec"
	"github.com/kysee/grandpa-bridge/types"
)

// Authority is a test GRANDPA voter: its Ed25519 keypair and PubKey form.
type Authority struct {
	Pub  types.PubKey
	Priv ed25519.PrivateKey
}

// NewAuthorities deterministically derives n Ed25519 keypairs from a seed
// byte, so tests are reproducible without calling crypto/rand.
func NewAuthorities(n int, seedByte byte) []Authority {
	out := make([]Authority, n)
	for i := 0; i < n; i++ {
		seed := make([]byte, ed25519.SeedSize)
		for j := range seed {
			seed[j] = seedByte + byte(i)
		}
		priv := ed25519.NewKeyFromSeed(seed)
		var pub types.PubKey
		copy(pub[:], priv.Public().(ed25519.PublicKey))
		out[i] = Authority{Pub: pub, Priv: priv}
	}
	return out
}

func PubKeys(auths []Authority) []types.PubKey {
	out := make([]types.PubKey, len(auths))
	for i, a := range auths {
		out[i] = a.Pub
	}
	return out
}

// EncodeVec encodes a SCALE Vec<u8> payload: compact(len) || bytes.
func EncodeVec(b []byte) []byte {
	return append(codec.EncodeCompact(uint64(len(b))), b...)
}

// ScheduledChangePayload builds a FRNK consensus-log payload for the given
// next authority set, using unit weight and zero delay unless overridden by badWeight.
func ScheduledChangePayload(next []types.PubKey, badWeight uint64) []byte {
	out := []byte{0x00} // tag
	out = append(out, codec.EncodeCompact(uint64(len(next)))...)
	for i, pk := range next {
		out = append(out, pk[:]...)
		weight := uint64(1)
		if badWeight != 0 && i == 0 {
			weight = badWeight
		}
		out = append(out, codec.EncodeU64LE(weight)...)
	}
	out = append(out, codec.EncodeU32LE(0)...) // delay
	return out
}

// DataRootPayload is a 32-byte DATA pre-runtime digest payload.
func DataRootPayload(root types.Hash) []byte {
	return append([]byte(nil), root[:]...)
}

type DigestLogItem struct {
	Kind     byte
	EngineID [4]byte
	Payload  []byte
}

// EncodeDigestLog encodes a SCALE Vec<DigestItem>.
func EncodeDigestLog(items []DigestLogItem) []byte {
	out := codec.EncodeCompact(uint64(len(items)))
	for _, it := range items {
		out = append(out, it.Kind)
		switch it.Kind {
		case 4, 5, 6: // Consensus, Seal, PreRuntime
			out = append(out, it.EngineID[:]...)
			out = append(out, EncodeVec(it.Payload)...)
		case 0: // Other
			out = append(out, EncodeVec(it.Payload)...)
		case 8: // RuntimeEnvironmentUpdated
		}
	}
	return out
}

// EncodeHeader builds a raw encoded header: parent_hash || compact(number) ||
// state_root || extrinsics_root || digest_log.
func EncodeHeader(parent types.Hash, number uint64, stateRoot, extrinsicsRoot types.Hash, digest []DigestLogItem) types.EncodedHeader {
	out := append([]byte(nil), parent[:]...)
	out = append(out, codec.EncodeCompact(number)...)
	out = append(out, stateRoot[:]...)
	out = append(out, extrinsicsRoot[:]...)
	out = append(out, EncodeDigestLog(digest)...)
	return types.EncodedHeader(out)
}

func HeaderHash(enc types.EncodedHeader) types.Hash {
	return types.Hash(codec.Blake2b256(enc))
}

// SignPrecommit signs the canonical GRANDPA precommit message for
// (targetHash, targetNumber, round, setID) with auth's private key.
func SignPrecommit(auth Authority, targetHash types.Hash, targetNumber uint32, round, setID uint64) types.Signature {
	buf := make([]byte, 0, 53)
	buf = append(buf, 1)
	buf = append(buf, targetHash[:]...)
	buf = append(buf, codec.EncodeU32LE(targetNumber)...)
	buf = append(buf, codec.EncodeU64LE(round)...)
	buf = append(buf, codec.EncodeU64LE(setID)...)
	sig := ed25519.Sign(auth.Priv, buf)
	var out types.Signature
	copy(out[:], sig)
	return out
}
