package provers_test

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/kysee/grandpa-bridge/authority"
	"github.com/kysee/grandpa-bridge/header"
	"github.com/kysee/grandpa-bridge/internal/fixture"
	"github.com/kysee/grandpa-bridge/justification"
	"github.com/kysee/grandpa-bridge/provers"
	cfgtypes "github.com/kysee/grandpa-bridge/provers/types"
	"github.com/kysee/grandpa-bridge/types"
)

// fakeFetcher returns canned inputs regardless of the arguments it is
// asked for, enough to drive Relayer's decision logic without a live chain.
type fakeFetcher struct {
	head        uint32
	headSetID   uint64
	headerRange types.HeaderRangeInput
	rotate      types.RotateInput
}

func (f *fakeFetcher) Head(ctx context.Context) (uint32, error) { return f.head, nil }
func (f *fakeFetcher) AuthoritySetID(ctx context.Context, blockNumber uint32) (uint64, error) {
	return f.headSetID, nil
}
func (f *fakeFetcher) LastJustifiedBlock(ctx context.Context, authoritySetID uint64) (uint32, error) {
	return f.headerRange.TargetBlock, nil
}
func (f *fakeFetcher) HeaderRangeInputs(ctx context.Context, trustedBlock, targetBlock, treeSize uint32) (*types.HeaderRangeInput, error) {
	in := f.headerRange
	in.TreeSize = treeSize
	return &in, nil
}
func (f *fakeFetcher) RotateInputs(ctx context.Context, currentAuthoritySetID uint64) (*types.RotateInput, error) {
	in := f.rotate
	return &in, nil
}
func (f *fakeFetcher) JustificationForBlock(ctx context.Context, blockNumber uint32) (*types.Justification, error) {
	return &f.headerRange.Justification, nil
}

var _ cfgtypes.Fetcher = (*fakeFetcher)(nil)

// fakeDest records the method of the last Submit call and reports a fixed
// latest block/set id/tree size, standing in for a live settlement chain.
type fakeDest struct {
	latestBlock uint32
	latestSetID uint64
	treeSize    uint32
	submitted   chan string
}

func newFakeDest(latestBlock uint32, latestSetID uint64, treeSize uint32) *fakeDest {
	return &fakeDest{latestBlock: latestBlock, latestSetID: latestSetID, treeSize: treeSize, submitted: make(chan string, 1)}
}

func (d *fakeDest) LatestBlock(ctx context.Context) (uint32, error) { return d.latestBlock, nil }
func (d *fakeDest) LatestSetID(ctx context.Context) (uint64, error) { return d.latestSetID, nil }
func (d *fakeDest) SetHash(ctx context.Context, setID uint64) (types.Hash, error) {
	return types.Hash{}, nil
}
func (d *fakeDest) TreeSize(ctx context.Context) (uint32, error) { return d.treeSize, nil }
func (d *fakeDest) Submit(ctx context.Context, method string, rawProof, publicValues []byte) ([]byte, error) {
	d.submitted <- method
	return []byte{0x01}, nil
}

var _ provers.DestinationClient = (*fakeDest)(nil)

// fakeSealer stands in for the groth16 proving pipeline, returning the
// public values unchanged as a stub "proof".
type fakeSealer struct{}

func (fakeSealer) Prove(publicValues []byte) ([]byte, error) { return publicValues, nil }

var _ provers.ProofSealer = fakeSealer{}

func buildHeaderRangeFixture(t *testing.T) (types.HeaderRangeInput, uint32, uint32) {
	t.Helper()
	auths := fixture.NewAuthorities(4, 0x50)
	pubkeys := fixture.PubKeys(auths)

	trustedEnc := fixture.EncodeHeader(types.Hash{0xAA}, 10, types.Hash{}, types.Hash{}, nil)
	trustedHash := fixture.HeaderHash(trustedEnc)
	enc := fixture.EncodeHeader(trustedHash, 11, types.Hash{0x01}, types.Hash{}, []fixture.DigestLogItem{
		{Kind: header.DigestPreRuntime, EngineID: header.DataRootEngineID, Payload: fixture.DataRootPayload(types.Hash{0x02})},
	})
	targetHash := fixture.HeaderHash(enc)

	threshold := justification.Threshold(len(auths))
	precommits := make([]types.Precommit, threshold)
	for i := 0; i < threshold; i++ {
		sig := fixture.SignPrecommit(auths[i], targetHash, 11, 1, 1)
		precommits[i] = types.Precommit{TargetHash: targetHash, TargetNumber: 11, Signature: sig, Authority: auths[i].Pub}
	}
	j := types.Justification{
		Round: 1, SetID: 1, CommitHash: targetHash, CommitNumber: 11,
		Precommits: precommits, ValsetPubKeys: pubkeys, CurrentValsetCommitment: authority.Commit(pubkeys),
	}

	in := types.HeaderRangeInput{
		TrustedBlock:  10,
		TrustedHash:   trustedHash,
		TargetBlock:   11,
		Justification: j,
		Headers:       []types.EncodedHeader{enc},
		ActiveSet:     types.AuthoritySet{SetID: 1, Commitment: j.CurrentValsetCommitment, Size: uint32(len(auths))},
		TreeSize:      4,
	}
	return in, 10, 11
}

func buildRotateFixture(t *testing.T) types.RotateInput {
	t.Helper()
	current := fixture.NewAuthorities(4, 0x60)
	pubkeys := fixture.PubKeys(current)
	next := fixture.PubKeys(fixture.NewAuthorities(3, 0x70))

	payload := fixture.ScheduledChangePayload(next, 0)
	epochEndEnc := fixture.EncodeHeader(types.Hash{0x01}, 20, types.Hash{}, types.Hash{}, []fixture.DigestLogItem{
		{Kind: header.DigestConsensus, EngineID: header.FrnkEngineID, Payload: payload},
	})
	epochEndHash := fixture.HeaderHash(epochEndEnc)

	threshold := justification.Threshold(len(current))
	precommits := make([]types.Precommit, threshold)
	for i := 0; i < threshold; i++ {
		sig := fixture.SignPrecommit(current[i], epochEndHash, 20, 1, 5)
		precommits[i] = types.Precommit{TargetHash: epochEndHash, TargetNumber: 20, Signature: sig, Authority: current[i].Pub}
	}
	j := types.Justification{
		Round: 1, SetID: 5, CommitHash: epochEndHash, CommitNumber: 20,
		Precommits: precommits, ValsetPubKeys: pubkeys, CurrentValsetCommitment: authority.Commit(pubkeys),
	}

	return types.RotateInput{
		CurrentSet:     types.AuthoritySet{SetID: 5, Commitment: j.CurrentValsetCommitment, Size: uint32(len(current))},
		Justification:  j,
		EpochEndHeader: epochEndEnc,
	}
}

func runOneTick(t *testing.T, fetcher cfgtypes.Fetcher, dest *fakeDest) {
	t.Helper()
	config := &cfgtypes.Config{LoopIntervalMins: 1, BlockUpdateInterval: 8}
	r := provers.NewRelayer(config, fetcher, dest, fakeSealer{}, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	select {
	case method := <-dest.submitted:
		cancel()
		<-done
		require.NotEmpty(t, method)
		dest.submitted <- method // hand back for the caller's own assertion
	case <-time.After(5 * time.Second):
		cancel()
		<-done
		t.Fatal("relayer did not submit within timeout")
	}
}

func TestRelayer_HeaderRangeWhenSetIDUnchanged(t *testing.T) {
	hrIn, trusted, target := buildHeaderRangeFixture(t)
	fetcher := &fakeFetcher{head: target, headSetID: 1, headerRange: hrIn}
	dest := newFakeDest(trusted, 1, 4)

	runOneTick(t, fetcher, dest)
	require.Equal(t, "commit_header_range", <-dest.submitted)
}

func TestRelayer_RotateWhenHeadSetIDAhead(t *testing.T) {
	rotateIn := buildRotateFixture(t)
	fetcher := &fakeFetcher{head: 20, headSetID: 5, rotate: rotateIn}
	dest := newFakeDest(1, 4, 4)

	runOneTick(t, fetcher, dest)
	require.Equal(t, "rotate", <-dest.submitted)
}
