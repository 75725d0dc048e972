package provers_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kysee/grandpa-bridge/provers"
	"github.com/kysee/grandpa-bridge/types"
)

func sampleJustification(commitNumber uint32) *types.Justification {
	return &types.Justification{
		Round:        1,
		SetID:        7,
		CommitHash:   types.Hash{0x01},
		CommitNumber: commitNumber,
		ValsetPubKeys: []types.PubKey{
			{0xaa}, {0xbb},
		},
		CurrentValsetCommitment: types.Hash{0x02},
	}
}

func TestMemIndexerStore_PutGet(t *testing.T) {
	store := provers.NewMemIndexerStore()
	idx := provers.NewJustificationIndexer(store)

	_, ok, err := idx.ForBlock("polkadot", 100)
	require.NoError(t, err)
	require.False(t, ok)

	ch := make(chan *types.Justification, 1)
	ch <- sampleJustification(100)
	close(ch)
	require.NoError(t, idx.Ingest(context.Background(), "polkadot", ch))

	got, ok, err := idx.ForBlock("polkadot", 100)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, uint64(7), got.SetID)
	require.Equal(t, uint32(100), got.CommitNumber)

	_, ok, err = idx.ForBlock("kusama", 100)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestMemIndexerStore_OverwritesOnReindex(t *testing.T) {
	store := provers.NewMemIndexerStore()
	require.NoError(t, store.Put("polkadot", 100, sampleJustification(100)))

	updated := sampleJustification(100)
	updated.SetID = 8
	require.NoError(t, store.Put("polkadot", 100, updated))

	got, ok, err := store.Get("polkadot", 100)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, uint64(8), got.SetID)
}

func TestBoltIndexerStore_PutGet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "justifications.db")
	store, err := provers.OpenBoltIndexerStore(path)
	require.NoError(t, err)
	defer func() { require.NoError(t, store.Close()) }()

	require.NoError(t, store.Put("polkadot", 42, sampleJustification(42)))

	got, ok, err := store.Get("polkadot", 42)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, uint32(42), got.CommitNumber)
	require.Equal(t, uint64(7), got.SetID)
	require.Len(t, got.ValsetPubKeys, 2)

	_, ok, err = store.Get("polkadot", 43)
	require.NoError(t, err)
	require.False(t, ok)

	require.FileExists(t, path)
}
