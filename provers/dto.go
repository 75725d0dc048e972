package provers

import (
	"fmt"

	"github.com/kysee/grandpa-bridge/types"
)

// The following JSON shapes mirror the Substrate GRANDPA justification
// response types.rs's GrandpaJustificationResponse/GrandpaJustification/
// Commit/SignedPrecommit/Precommit describes: a round, a commit (target
// hash/number plus signed precommits), and the ancestry headers needed to
// connect precommit targets to the commit. Pubkeys and headers travel as
// hex strings (types.HexBytes) rather than SS58-encoded addresses —
// SS58 decoding is out of scope for this bridge's core.

type precommitDTO struct {
	TargetHash   types.HexBytes `json:"target_hash"`
	TargetNumber uint32         `json:"target_number"`
}

type signedPrecommitDTO struct {
	Precommit precommitDTO   `json:"precommit"`
	Signature types.HexBytes `json:"signature"`
	ID        types.HexBytes `json:"id"`
}

type commitDTO struct {
	TargetHash   types.HexBytes       `json:"target_hash"`
	TargetNumber uint32               `json:"target_number"`
	Precommits   []signedPrecommitDTO `json:"precommits"`
}

type ancestryEntryDTO struct {
	ParentHash types.HexBytes `json:"parent_hash"`
	Header     types.HexBytes `json:"header"`
}

type justificationDTO struct {
	Round                   uint64             `json:"round"`
	SetID                   uint64             `json:"set_id"`
	Commit                  commitDTO          `json:"commit"`
	VotesAncestries         []ancestryEntryDTO `json:"votes_ancestries"`
	ValsetPubkeys           []types.HexBytes   `json:"valset_pubkeys"`
	CurrentValsetCommitment types.HexBytes     `json:"current_valset_commitment"`
}

type justificationResponseDTO struct {
	Success       bool              `json:"success"`
	Justification *justificationDTO `json:"justification"`
	Error         *string           `json:"error"`
}

func hashFromHex(b types.HexBytes, field string) (types.Hash, error) {
	var h types.Hash
	if len(b) != 32 {
		return h, fmt.Errorf("%s: want 32 bytes, got %d", field, len(b))
	}
	copy(h[:], b)
	return h, nil
}

func pubKeyFromHex(b types.HexBytes, field string) (types.PubKey, error) {
	var p types.PubKey
	if len(b) != 32 {
		return p, fmt.Errorf("%s: want 32 bytes, got %d", field, len(b))
	}
	copy(p[:], b)
	return p, nil
}

func sigFromHex(b types.HexBytes, field string) (types.Signature, error) {
	var s types.Signature
	if len(b) != 64 {
		return s, fmt.Errorf("%s: want 64 bytes, got %d", field, len(b))
	}
	copy(s[:], b)
	return s, nil
}

// toJustification converts the wire DTO into types.Justification, failing
// only on structurally malformed fields (wrong-length hashes/keys/sigs) —
// the kernel itself re-verifies every semantic claim (set id, ancestry,
// signatures), so this conversion does not attempt to pre-validate them.
func (d *justificationDTO) toJustification() (types.Justification, error) {
	var j types.Justification

	targetHash, err := hashFromHex(d.Commit.TargetHash, "commit.target_hash")
	if err != nil {
		return j, err
	}

	commitment, err := hashFromHex(d.CurrentValsetCommitment, "current_valset_commitment")
	if err != nil {
		return j, err
	}

	pubkeys := make([]types.PubKey, len(d.ValsetPubkeys))
	for i, raw := range d.ValsetPubkeys {
		pk, err := pubKeyFromHex(raw, fmt.Sprintf("valset_pubkeys[%d]", i))
		if err != nil {
			return j, err
		}
		pubkeys[i] = pk
	}

	precommits := make([]types.Precommit, len(d.Commit.Precommits))
	for i, p := range d.Commit.Precommits {
		th, err := hashFromHex(p.Precommit.TargetHash, fmt.Sprintf("precommits[%d].target_hash", i))
		if err != nil {
			return j, err
		}
		sig, err := sigFromHex(p.Signature, fmt.Sprintf("precommits[%d].signature", i))
		if err != nil {
			return j, err
		}
		pk, err := pubKeyFromHex(p.ID, fmt.Sprintf("precommits[%d].id", i))
		if err != nil {
			return j, err
		}
		precommits[i] = types.Precommit{
			TargetHash:   th,
			TargetNumber: p.Precommit.TargetNumber,
			Signature:    sig,
			Authority:    pk,
		}
	}

	ancestries := make([]types.AncestryEntry, len(d.VotesAncestries))
	for i, a := range d.VotesAncestries {
		parent, err := hashFromHex(a.ParentHash, fmt.Sprintf("votes_ancestries[%d].parent_hash", i))
		if err != nil {
			return j, err
		}
		ancestries[i] = types.AncestryEntry{ParentHash: parent, Header: types.EncodedHeader(a.Header)}
	}

	j = types.Justification{
		Round:                   d.Round,
		SetID:                   d.SetID,
		CommitHash:              targetHash,
		CommitNumber:            d.Commit.TargetNumber,
		Precommits:              precommits,
		Ancestries:              ancestries,
		ValsetPubKeys:           pubkeys,
		CurrentValsetCommitment: commitment,
	}
	return j, nil
}
