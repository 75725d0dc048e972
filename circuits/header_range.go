package circuits

import (
	"errors"
	"fmt"

	"github.com/kysee/grandpa-bridge/authority"
	"github.com/kysee/grandpa-bridge/header"
	"github.com/kysee/grandpa-bridge/justification"
	"github.com/kysee/grandpa-bridge/merkle"
	"github.com/kysee/grandpa-bridge/types"
)

// ProveHeaderRange verifies finality of in.TargetBlock starting from the
// trusted (TrustedBlock, TrustedHash) pair and emits the PublicValues a
// destination contract needs to advance its head. Steps:
//
//  1. decode every header in the half-open range (TrustedBlock, TargetBlock];
//  2. verify the decoded headers chain continuously: the first header's
//     parent hash is TrustedHash, and each subsequent header's parent hash
//     is the previous header's own hash;
//  3. verify the last header's hash equals the justification's commit hash
//     and its number equals TargetBlock;
//  4. verify the justification against CurrentSet;
//  5. collect each header's data root (a PreRuntime "DATA" digest item) and
//     fold them into a Merkle data commitment;
//  6. fold each header's state root into a Merkle state commitment;
//  7. scan every header in the range for a GRANDPA scheduled-change digest
//     item; at most one may appear across the whole range;
//  8. commit CurrentSet and, if a scheduled change was found, the next
//     authority set, and assemble PublicValues.
func ProveHeaderRange(in types.HeaderRangeInput) (*types.PublicValues, error) {
	if len(in.Headers) == 0 {
		return nil, fmt.Errorf("%w: header range: no headers supplied", ErrDecodeError)
	}

	decoded := make([]*header.Header, len(in.Headers))
	for i, enc := range in.Headers {
		h, err := header.Decode(enc)
		if err != nil {
			return nil, fmt.Errorf("header range: header %d: %w", i, err)
		}
		decoded[i] = h
	}

	prevHash := in.TrustedHash
	for i, h := range decoded {
		if h.ParentHash != prevHash {
			return nil, fmt.Errorf("%w: header %d parent hash mismatch", ErrHeaderChainBroken, i)
		}
		prevHash = h.Hash()
	}

	target := decoded[len(decoded)-1]
	targetHash := target.Hash()
	if targetHash != in.Justification.CommitHash {
		return nil, fmt.Errorf("%w: target hash does not match justification commit", ErrJustificationMismatch)
	}
	if uint32(target.Number) != in.TargetBlock {
		return nil, fmt.Errorf("%w: target block %d does not match header number %d", ErrJustificationMismatch, in.TargetBlock, target.Number)
	}

	if err := justification.Verify(in.Justification, in.ActiveSet.SetID, in.ActiveSet.Commitment); err != nil {
		return nil, err
	}

	dataLeaves := make([][32]byte, 0, len(decoded))
	stateLeaves := make([][32]byte, 0, len(decoded))
	for i, h := range decoded {
		dataRoot, ok, err := header.FindDataRoot(h.Digest)
		if err != nil {
			return nil, fmt.Errorf("header range: header %d: %w", i, err)
		}
		if !ok {
			return nil, fmt.Errorf("%w: header %d carries no data root", ErrDecodeError, i)
		}
		dataLeaves = append(dataLeaves, [32]byte(dataRoot))
		stateLeaves = append(stateLeaves, [32]byte(h.StateRoot))
	}

	dataCommitment, err := merkle.Root(dataLeaves, in.TreeSize)
	if err != nil {
		return nil, err
	}
	stateCommitment, err := merkle.Root(stateLeaves, in.TreeSize)
	if err != nil {
		return nil, err
	}

	var nextSetHash types.Hash
	seen := false
	for i, h := range decoded {
		sc, err := header.FindScheduledChange(h.Digest)
		if err != nil {
			if errors.Is(err, ErrNoScheduledChange) {
				continue
			}
			return nil, fmt.Errorf("header range: header %d: %w", i, err)
		}
		if seen {
			return nil, fmt.Errorf("%w: scheduled change found in more than one header", ErrAmbiguousChange)
		}
		seen = true
		nextSetHash = authority.Commit(sc.NextAuthorities)
	}

	return &types.PublicValues{
		HeaderRange: &types.HeaderRangePublicValues{
			TrustedBlock:    in.TrustedBlock,
			TrustedHash:     in.TrustedHash,
			TargetBlock:     in.TargetBlock,
			TargetHash:      targetHash,
			DataCommitment:  types.Hash(dataCommitment),
			StateCommitment: types.Hash(stateCommitment),
			CurrentSetHash:  in.ActiveSet.Commitment,
			NextSetHash:     nextSetHash,
		},
	}, nil
}
