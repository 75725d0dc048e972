package provers

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"sync"

	bolt "go.etcd.io/bbolt"

	"github.com/kysee/grandpa-bridge/types"
)

// IndexerStore is the storage backend a JustificationIndexer writes
// through to. Keys are (chainID, blockNumber); a later Put overwrites
// any justification previously stored for the same key, matching
// postgres.rs's InMemoryClient/DatabaseClient "remove before insert"
// semantics.
type IndexerStore interface {
	Put(chainID string, blockNumber uint32, j *types.Justification) error
	Get(chainID string, blockNumber uint32) (*types.Justification, bool, error)
}

// JustificationIndexer ingests a stream of decoded justification events
// off a channel and answers the point-lookup ForBlock, per spec.md §6's
// justification-indexer contract.
type JustificationIndexer struct {
	store IndexerStore
}

func NewJustificationIndexer(store IndexerStore) *JustificationIndexer {
	return &JustificationIndexer{store: store}
}

// Ingest drains events from ch until ctx is cancelled or ch closes,
// storing each justification keyed by (chainID, its own commit number).
func (idx *JustificationIndexer) Ingest(ctx context.Context, chainID string, ch <-chan *types.Justification) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case j, ok := <-ch:
			if !ok {
				return nil
			}
			if err := idx.store.Put(chainID, j.CommitNumber, j); err != nil {
				return fmt.Errorf("index justification for block %d: %w", j.CommitNumber, err)
			}
		}
	}
}

// ForBlock looks up the justification finalizing blockNumber on chainID.
func (idx *JustificationIndexer) ForBlock(chainID string, blockNumber uint32) (*types.Justification, bool, error) {
	return idx.store.Get(chainID, blockNumber)
}

// MemIndexerStore is a mutex-guarded in-memory IndexerStore, the default
// and test backend — grounded on postgres.rs's InMemoryClient variant.
type MemIndexerStore struct {
	mu   sync.RWMutex
	data map[string]*types.Justification
}

func NewMemIndexerStore() *MemIndexerStore {
	return &MemIndexerStore{data: make(map[string]*types.Justification)}
}

func memKey(chainID string, blockNumber uint32) string {
	return fmt.Sprintf("%s/%d", chainID, blockNumber)
}

func (s *MemIndexerStore) Put(chainID string, blockNumber uint32, j *types.Justification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[memKey(chainID, blockNumber)] = j
	return nil
}

func (s *MemIndexerStore) Get(chainID string, blockNumber uint32) (*types.Justification, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	j, ok := s.data[memKey(chainID, blockNumber)]
	return j, ok, nil
}

var _ IndexerStore = (*MemIndexerStore)(nil)

// BoltIndexerStore is a durable, single-process IndexerStore backed by
// go.etcd.io/bbolt, one bucket per chain id, keyed by big-endian block
// number — the bucket-per-entity / big-endian-key pattern from
// 2tbmz9y2xt-lang-rubin-protocol's node/store.DB, adapted from block/UTXO
// storage to justification storage.
type BoltIndexerStore struct {
	db *bolt.DB
}

func OpenBoltIndexerStore(path string) (*BoltIndexerStore, error) {
	db, err := bolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, fmt.Errorf("open bbolt: %w", err)
	}
	return &BoltIndexerStore{db: db}, nil
}

func (s *BoltIndexerStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func boltKey(blockNumber uint32) []byte {
	k := make([]byte, 4)
	binary.BigEndian.PutUint32(k, blockNumber)
	return k
}

type justificationRecord struct {
	Round                   uint64              `json:"round"`
	SetID                   uint64              `json:"set_id"`
	CommitHash              types.Hash          `json:"commit_hash"`
	CommitNumber            uint32              `json:"commit_number"`
	Precommits              []types.Precommit   `json:"precommits"`
	Ancestries              []types.AncestryEntry `json:"ancestries"`
	ValsetPubKeys           []types.PubKey      `json:"valset_pubkeys"`
	CurrentValsetCommitment types.Hash          `json:"current_valset_commitment"`
}

func (s *BoltIndexerStore) Put(chainID string, blockNumber uint32, j *types.Justification) error {
	rec := justificationRecord{
		Round: j.Round, SetID: j.SetID, CommitHash: j.CommitHash, CommitNumber: j.CommitNumber,
		Precommits: j.Precommits, Ancestries: j.Ancestries,
		ValsetPubKeys: j.ValsetPubKeys, CurrentValsetCommitment: j.CurrentValsetCommitment,
	}
	blob, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal justification: %w", err)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		bucket, err := tx.CreateBucketIfNotExists([]byte(chainID))
		if err != nil {
			return fmt.Errorf("create bucket %s: %w", chainID, err)
		}
		return bucket.Put(boltKey(blockNumber), blob)
	})
}

func (s *BoltIndexerStore) Get(chainID string, blockNumber uint32) (*types.Justification, bool, error) {
	var rec *justificationRecord
	err := s.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(chainID))
		if bucket == nil {
			return nil
		}
		blob := bucket.Get(boltKey(blockNumber))
		if blob == nil {
			return nil
		}
		var r justificationRecord
		if err := json.Unmarshal(blob, &r); err != nil {
			return fmt.Errorf("unmarshal justification: %w", err)
		}
		rec = &r
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	if rec == nil {
		return nil, false, nil
	}
	j := &types.Justification{
		Round: rec.Round, SetID: rec.SetID, CommitHash: rec.CommitHash, CommitNumber: rec.CommitNumber,
		Precommits: rec.Precommits, Ancestries: rec.Ancestries,
		ValsetPubKeys: rec.ValsetPubKeys, CurrentValsetCommitment: rec.CurrentValsetCommitment,
	}
	return j, true, nil
}

var _ IndexerStore = (*BoltIndexerStore)(nil)
