package types

import (
	"context"

	"github.com/kysee/grandpa-bridge/types"
)

// Fetcher supplies circuit inputs from the source chain, mirroring
// operator.rs's RpcDataFetcher. Implementations must guarantee header
// continuity and that the justification returned is the canonical one at
// the requested block or epoch boundary — the kernel trusts neither
// claim and re-verifies both.
type Fetcher interface {
	// Head returns the source chain's current finalized block number.
	Head(ctx context.Context) (uint32, error)
	// AuthoritySetID returns the authority-set id active at blockNumber.
	AuthoritySetID(ctx context.Context, blockNumber uint32) (uint64, error)
	// LastJustifiedBlock returns the highest block number justified under
	// authoritySetID, used to find the epoch-boundary header for a rotation.
	LastJustifiedBlock(ctx context.Context, authoritySetID uint64) (uint32, error)
	// HeaderRangeInputs assembles a HeaderRangeInput for the half-open
	// range (trustedBlock, targetBlock], padded to a tree of treeSize leaves.
	HeaderRangeInputs(ctx context.Context, trustedBlock, targetBlock, treeSize uint32) (*types.HeaderRangeInput, error)
	// RotateInputs assembles a RotateInput proving the handoff out of
	// currentAuthoritySetID.
	RotateInputs(ctx context.Context, currentAuthoritySetID uint64) (*types.RotateInput, error)
	// JustificationForBlock returns the justification finalizing blockNumber.
	JustificationForBlock(ctx context.Context, blockNumber uint32) (*types.Justification, error)
}
