// Package justification verifies a GRANDPA justification against an
// expected authority-set id and commitment, following the five-step
// algorithm in original_source's verify_simple_justification.
package justification

import (
	"crypto/ed25519"
	"fmt"

	"github.com/kysee/grandpa-bridge/codec"
	"github.com/kysee/grandpa-bridge/errs"
	"github.com/kysee/grandpa-bridge/header"
	"github.com/kysee/grandpa-bridge/types"
)

// signedMessageTag is the SCALE enum discriminant for SignerMessage::PrecommitMessage.
const signedMessageTag = 1

// signedMessageLen is the exact byte length of the canonical precommit
// signing message: tag(1) || target_hash(32) || target_number(4,LE) ||
// round(8,LE) || set_id(8,LE).
const signedMessageLen = 1 + 32 + 4 + 8 + 8

func signedMessage(targetHash types.Hash, targetNumber uint32, round, setID uint64) []byte {
	buf := make([]byte, signedMessageLen)
	off := 0
	buf[off] = signedMessageTag
	off++
	copy(buf[off:], targetHash[:])
	off += 32
	copy(buf[off:], codec.EncodeU32LE(targetNumber))
	off += 4
	copy(buf[off:], codec.EncodeU64LE(round))
	off += 8
	copy(buf[off:], codec.EncodeU64LE(setID))
	return buf
}

// Threshold returns the minimum number of distinct valid precommits needed
// to finalize a set of size validatorSetSize: floor(2*n/3)+1.
func Threshold(validatorSetSize int) int {
	return (validatorSetSize*2)/3 + 1
}

// Verify checks j against the authority set identified by expectedSetID and
// committing to expectedSetCommitment; j carries its own voting set
// (ValsetPubKeys, CurrentValsetCommitment), which this function holds to
// that expectation before trusting any of it.
//
// Steps (matching original_source's verify_simple_justification / spec 4.5):
//  1. the justification's set id and current-valset commitment must match
//     what the caller expects to verify.
//  2. build a child-hash -> parent-hash ancestry map from j.Ancestries,
//     asserting each entry's encoded header structurally contains its
//     claimed parent hash.
//  3. for each precommit, verify its Ed25519 signature over the canonical
//     signed message — any failure aborts verification immediately, it is
//     not a reason to discard that one precommit and keep going — and
//     confirm its target connects to the commit target via the ancestry
//     map (or is the commit target itself).
//  4. count precommits that passed both checks, by distinct authority, and
//     that are members of j.ValsetPubKeys.
//  5. assert the count reaches the supermajority threshold for len(j.ValsetPubKeys).
func Verify(j types.Justification, expectedSetID uint64, expectedSetCommitment types.Hash) error {
	if j.SetID != expectedSetID {
		return fmt.Errorf("%w: set id %d, want %d", errs.ErrJustificationMismatch, j.SetID, expectedSetID)
	}
	if j.CurrentValsetCommitment != expectedSetCommitment {
		return fmt.Errorf("%w: current valset commitment does not match expected hash", errs.ErrJustificationMismatch)
	}

	ancestry, err := buildAncestryMap(j.Ancestries)
	if err != nil {
		return err
	}

	pubkeys := j.ValsetPubKeys
	known := make(map[types.PubKey]bool, len(pubkeys))
	for _, pk := range pubkeys {
		known[pk] = true
	}

	verified := make(map[types.PubKey]bool, len(j.Precommits))
	for i := range j.Precommits {
		pc := &j.Precommits[i]
		msg := signedMessage(pc.TargetHash, pc.TargetNumber, j.Round, j.SetID)
		if !ed25519.Verify(pc.Authority[:], msg, pc.Signature[:]) {
			return fmt.Errorf("%w: precommit %d signature does not verify", errs.ErrSignatureInvalid, i)
		}
		if !confirmAncestry(pc.TargetHash, j.CommitHash, ancestry) {
			continue
		}
		if !known[pc.Authority] {
			continue
		}
		verified[pc.Authority] = true
	}

	threshold := Threshold(len(pubkeys))
	if len(verified) < threshold {
		return fmt.Errorf("%w: %d verified precommits, need %d of %d authorities",
			errs.ErrInsufficientSignatures, len(verified), threshold, len(pubkeys))
	}
	return nil
}

// buildAncestryMap records, for each ancestry entry, computed-header-hash ->
// claimed-parent-hash, asserting the encoded header actually contains the
// claimed parent hash as a contiguous byte run (the cheap structural check
// that the header has not been swapped for one with a different parent,
// per spec 4.5 step 2) before trusting the link.
func buildAncestryMap(ancestries []types.AncestryEntry) (map[types.Hash]types.Hash, error) {
	m := make(map[types.Hash]types.Hash, len(ancestries))
	for i, entry := range ancestries {
		h, err := header.Decode(entry.Header)
		if err != nil {
			return nil, fmt.Errorf("ancestry %d: %w", i, err)
		}
		if !h.ContainsParent(entry.ParentHash) {
			return nil, fmt.Errorf("%w: ancestry %d does not contain its claimed parent hash", errs.ErrAncestryBroken, i)
		}
		m[h.Hash()] = entry.ParentHash
	}
	return m, nil
}

// confirmAncestry walks parent pointers from childHash toward rootHash,
// bounded by len(ancestry) steps (original_source's confirm_ancestry bound),
// returning true if rootHash is reached or childHash already equals it.
func confirmAncestry(childHash, rootHash types.Hash, ancestry map[types.Hash]types.Hash) bool {
	if childHash == rootHash {
		return true
	}
	cur := childHash
	for i := 0; i < len(ancestry); i++ {
		parent, ok := ancestry[cur]
		if !ok {
			return false
		}
		if parent == rootHash {
			return true
		}
		cur = parent
	}
	return false
}
