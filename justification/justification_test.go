package justification_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kysee/grandpa-bridge/authority"
	"github.com/kysee/grandpa-bridge/errs"
	"github.com/kysee/grandpa-bridge/internal/fixture"
	"github.com/kysee/grandpa-bridge/justification"
	"github.com/kysee/grandpa-bridge/types"
)

func buildJustification(t *testing.T, auths []fixture.Authority, signerCount int, round, setID uint64, commitHash types.Hash, commitNumber uint32) types.Justification {
	t.Helper()
	pubkeys := fixture.PubKeys(auths)
	precommits := make([]types.Precommit, signerCount)
	for i := 0; i < signerCount; i++ {
		sig := fixture.SignPrecommit(auths[i], commitHash, commitNumber, round, setID)
		precommits[i] = types.Precommit{
			TargetHash:   commitHash,
			TargetNumber: commitNumber,
			Signature:    sig,
			Authority:    auths[i].Pub,
		}
	}
	return types.Justification{
		Round:                   round,
		SetID:                   setID,
		CommitHash:              commitHash,
		CommitNumber:            commitNumber,
		Precommits:              precommits,
		ValsetPubKeys:           pubkeys,
		CurrentValsetCommitment: authority.Commit(pubkeys),
	}
}

// S3 supermajority: spec.md §8 — |V|=10, threshold 7; six signatures fail,
// seven succeed.
func TestVerify_S3Supermajority(t *testing.T) {
	auths := fixture.NewAuthorities(10, 0x40)
	commitHash := types.Hash{0x01}
	commitNumber := uint32(100)

	require.Equal(t, 7, justification.Threshold(10))

	j6 := buildJustification(t, auths, 6, 1, 5, commitHash, commitNumber)
	err := justification.Verify(j6, j6.SetID, j6.CurrentValsetCommitment)
	require.ErrorIs(t, err, errs.ErrInsufficientSignatures)

	j7 := buildJustification(t, auths, 7, 1, 5, commitHash, commitNumber)
	err = justification.Verify(j7, j7.SetID, j7.CurrentValsetCommitment)
	require.NoError(t, err)
}

func TestVerify_SetMismatch(t *testing.T) {
	auths := fixture.NewAuthorities(4, 0x50)
	commitHash := types.Hash{0x02}
	j := buildJustification(t, auths, 3, 1, 9, commitHash, 10)

	err := justification.Verify(j, 10, j.CurrentValsetCommitment)
	require.ErrorIs(t, err, errs.ErrJustificationMismatch)

	err = justification.Verify(j, j.SetID, types.Hash{0xFF})
	require.ErrorIs(t, err, errs.ErrJustificationMismatch)
}

func TestVerify_AncestryConnectsPrecommit(t *testing.T) {
	auths := fixture.NewAuthorities(3, 0x60)
	pubkeys := fixture.PubKeys(auths)
	commitNumber := uint32(200)
	round, setID := uint64(7), uint64(2)

	// The committed block itself.
	commitEnc := fixture.EncodeHeader(types.Hash{0x99}, uint64(commitNumber), types.Hash{}, types.Hash{}, nil)
	commitHash := fixture.HeaderHash(commitEnc)

	// descendant header: child (precommit target) -> parent (committed block)
	childEnc := fixture.EncodeHeader(commitHash, uint64(commitNumber)+1, types.Hash{}, types.Hash{}, nil)
	childHash := fixture.HeaderHash(childEnc)

	precommits := make([]types.Precommit, 0, len(auths))
	for i, a := range auths {
		targetHash := commitHash
		targetNumber := commitNumber
		if i == 0 {
			// This voter targeted a descendant, not the commit directly.
			targetHash = childHash
			targetNumber = commitNumber + 1
		}
		sig := fixture.SignPrecommit(a, targetHash, targetNumber, round, setID)
		precommits = append(precommits, types.Precommit{
			TargetHash: targetHash, TargetNumber: targetNumber, Signature: sig, Authority: a.Pub,
		})
	}

	j := types.Justification{
		Round:        round,
		SetID:        setID,
		CommitHash:   commitHash,
		CommitNumber: commitNumber,
		Precommits:   precommits,
		Ancestries: []types.AncestryEntry{
			{ParentHash: commitHash, Header: childEnc},
		},
		ValsetPubKeys:           pubkeys,
		CurrentValsetCommitment: authority.Commit(pubkeys),
	}
	// Re-sign precommits whose target is the commit itself, now that we know its real hash.
	for i := range j.Precommits {
		if i == 0 {
			continue
		}
		j.Precommits[i].TargetHash = j.CommitHash
		j.Precommits[i].Signature = fixture.SignPrecommit(auths[i], j.CommitHash, commitNumber, round, setID)
	}

	err := justification.Verify(j, setID, j.CurrentValsetCommitment)
	require.NoError(t, err)
}

// A single bad signature aborts verification outright — spec.md §4.5 step
// 3b / §9: this is not a majority-tolerant scheme, even when enough other
// precommits would otherwise clear the supermajority threshold.
func TestVerify_BadSignatureAborts(t *testing.T) {
	auths := fixture.NewAuthorities(4, 0x80)
	commitHash := types.Hash{0x03}
	commitNumber := uint32(50)
	j := buildJustification(t, auths, 4, 1, 3, commitHash, commitNumber)

	// Tamper with one precommit's signature.
	j.Precommits[1].Signature[0] ^= 0xFF

	err := justification.Verify(j, j.SetID, j.CurrentValsetCommitment)
	require.ErrorIs(t, err, errs.ErrSignatureInvalid)
}

func TestVerify_BadAncestryStructure(t *testing.T) {
	auths := fixture.NewAuthorities(3, 0x70)
	commitHash := types.Hash{0x0A}

	ancestor := fixture.EncodeHeader(types.Hash{0x01}, 1, types.Hash{}, types.Hash{}, nil)

	j := buildJustification(t, auths, 3, 1, 1, commitHash, 1)
	j.Ancestries = []types.AncestryEntry{
		// Claimed parent hash does not appear anywhere in the header bytes.
		{ParentHash: types.Hash{0xEE}, Header: ancestor},
	}

	err := justification.Verify(j, j.SetID, j.CurrentValsetCommitment)
	require.ErrorIs(t, err, errs.ErrAncestryBroken)
}
