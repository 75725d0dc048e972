package header_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kysee/grandpa-bridge/errs"
	"github.com/kysee/grandpa-bridge/header"
	"github.com/kysee/grandpa-bridge/internal/fixture"
	"github.com/kysee/grandpa-bridge/types"
)

func TestDecode_RoundTrip(t *testing.T) {
	parent := types.Hash{1}
	stateRoot := types.Hash{2}
	extrinsicsRoot := types.Hash{3}
	enc := fixture.EncodeHeader(parent, 42, stateRoot, extrinsicsRoot, nil)

	h, err := header.Decode(enc)
	require.NoError(t, err)
	require.Equal(t, parent, h.ParentHash)
	require.Equal(t, uint64(42), h.Number)
	require.Equal(t, stateRoot, h.StateRoot)
	require.Equal(t, extrinsicsRoot, h.ExtrinsicsRoot)
	require.Empty(t, h.Digest)
}

// spec.md §8 property 2: parent-hash containment, hash depends on all bytes.
func TestParentHashContainment(t *testing.T) {
	parent := types.Hash{0xAA}
	enc := fixture.EncodeHeader(parent, 1, types.Hash{}, types.Hash{}, nil)
	require.Equal(t, parent[:], []byte(enc)[:32])

	h, err := header.Decode(enc)
	require.NoError(t, err)
	require.True(t, h.ContainsParent(parent))
	require.False(t, h.ContainsParent(types.Hash{0xBB}))

	mutated := append([]byte(nil), enc...)
	mutated[len(mutated)-1] ^= 0xFF
	require.NotEqual(t, fixture.HeaderHash(enc), fixture.HeaderHash(types.EncodedHeader(mutated)))
}

func TestFindScheduledChange(t *testing.T) {
	authorities := fixture.NewAuthorities(3, 0x10)
	next := fixture.PubKeys(authorities)
	payload := fixture.ScheduledChangePayload(next, 0)

	enc := fixture.EncodeHeader(types.Hash{}, 1, types.Hash{}, types.Hash{}, []fixture.DigestLogItem{
		{Kind: header.DigestConsensus, EngineID: header.FrnkEngineID, Payload: payload},
	})

	h, err := header.Decode(enc)
	require.NoError(t, err)

	sc, err := header.FindScheduledChange(h.Digest)
	require.NoError(t, err)
	require.Equal(t, next, sc.NextAuthorities)
	require.Equal(t, uint32(0), sc.Delay)
}

func TestFindScheduledChange_NoneAndAmbiguous(t *testing.T) {
	enc := fixture.EncodeHeader(types.Hash{}, 1, types.Hash{}, types.Hash{}, nil)
	h, err := header.Decode(enc)
	require.NoError(t, err)
	_, err = header.FindScheduledChange(h.Digest)
	require.Error(t, err)

	next := fixture.PubKeys(fixture.NewAuthorities(2, 0x20))
	payload := fixture.ScheduledChangePayload(next, 0)
	enc2 := fixture.EncodeHeader(types.Hash{}, 1, types.Hash{}, types.Hash{}, []fixture.DigestLogItem{
		{Kind: header.DigestConsensus, EngineID: header.FrnkEngineID, Payload: payload},
		{Kind: header.DigestConsensus, EngineID: header.FrnkEngineID, Payload: payload},
	})
	h2, err := header.Decode(enc2)
	require.NoError(t, err)
	_, err = header.FindScheduledChange(h2.Digest)
	require.Error(t, err)
}

// S6 rotate rejection: spec.md §8 — weight=2 -> BadValidatorEncoding.
func TestFindScheduledChange_BadWeight(t *testing.T) {
	next := fixture.PubKeys(fixture.NewAuthorities(3, 0x30))
	payload := fixture.ScheduledChangePayload(next, 2)
	enc := fixture.EncodeHeader(types.Hash{}, 1, types.Hash{}, types.Hash{}, []fixture.DigestLogItem{
		{Kind: header.DigestConsensus, EngineID: header.FrnkEngineID, Payload: payload},
	})
	h, err := header.Decode(enc)
	require.NoError(t, err)
	_, err = header.FindScheduledChange(h.Digest)
	require.ErrorIs(t, err, errs.ErrBadValidatorEncoding)
}

func TestFindDataRoot(t *testing.T) {
	root := types.Hash{0x77}
	enc := fixture.EncodeHeader(types.Hash{}, 1, types.Hash{}, types.Hash{}, []fixture.DigestLogItem{
		{Kind: header.DigestPreRuntime, EngineID: header.DataRootEngineID, Payload: fixture.DataRootPayload(root)},
	})
	h, err := header.Decode(enc)
	require.NoError(t, err)
	got, ok, err := header.FindDataRoot(h.Digest)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, root, got)
}

func TestFindDataRoot_Absent(t *testing.T) {
	enc := fixture.EncodeHeader(types.Hash{}, 1, types.Hash{}, types.Hash{}, nil)
	h, err := header.Decode(enc)
	require.NoError(t, err)
	_, ok, err := header.FindDataRoot(h.Digest)
	require.NoError(t, err)
	require.False(t, ok)
}
