package circuits

import (
	"fmt"

	"github.com/kysee/grandpa-bridge/authority"
	"github.com/kysee/grandpa-bridge/header"
	"github.com/kysee/grandpa-bridge/justification"
	"github.com/kysee/grandpa-bridge/types"
)

// ProveRotate verifies an epoch-boundary header carries exactly one GRANDPA
// scheduled-change digest item and that a valid justification backs it, and
// emits the PublicValues describing the handoff from CurrentSet to the new
// authority set the change names. Steps (original_source / spec 4.7):
//
//  1. walk the digest log of the epoch-end header and locate its single
//     scheduled-change entry (absent -> NoScheduledChange, more than one ->
//     AmbiguousChange);
//  2. decode the new validator list, asserting unit weight and zero delay;
//  3. commit the new validator list;
//  4. hash the epoch-end header and require the justification's commit
//     hash to equal it;
//  5. verify the justification against CurrentSet;
//  6. assemble PublicValues.
func ProveRotate(in types.RotateInput) (*types.PublicValues, error) {
	h, err := header.Decode(in.EpochEndHeader)
	if err != nil {
		return nil, fmt.Errorf("rotate: epoch-end header: %w", err)
	}

	sc, err := header.FindScheduledChange(h.Digest)
	if err != nil {
		return nil, fmt.Errorf("rotate: %w", err)
	}
	newSetHash := authority.Commit(sc.NextAuthorities)

	epochEndHash := h.Hash()
	if in.Justification.CommitHash != epochEndHash {
		return nil, fmt.Errorf("%w: justification commit hash does not match epoch-end header", ErrJustificationMismatch)
	}

	if err := justification.Verify(in.Justification, in.CurrentSet.SetID, in.CurrentSet.Commitment); err != nil {
		return nil, err
	}

	return &types.PublicValues{
		Rotate: &types.RotatePublicValues{
			CurrentSetID:   in.CurrentSet.SetID,
			CurrentSetHash: in.CurrentSet.Commitment,
			NewSetHash:     newSetHash,
			EpochEndHash:   epochEndHash,
		},
	}, nil
}
