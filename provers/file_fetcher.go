package provers

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/kysee/grandpa-bridge/codec"
	cfgtypes "github.com/kysee/grandpa-bridge/provers/types"
	"github.com/kysee/grandpa-bridge/types"
)

// fileFixture is the on-disk shape FileFetcher replays: a flat list of
// known headers keyed by block number, justifications keyed by block
// number, and authority-set ids keyed by the block number at which they
// became active — enough to answer every Fetcher method without a live
// chain connection.
type fileFixture struct {
	Head           uint32                      `json:"head"`
	HeadersByBlock map[uint32]types.HexBytes   `json:"headers_by_block"`
	SetIDByBlock   map[uint32]uint64           `json:"set_id_by_block"`
	JustByBlock    map[uint32]justificationDTO `json:"justification_by_block"`
}

// FileFetcher implements cfgtypes.Fetcher by replaying a JSON fixture
// file — the teacher's FileFetcher pattern, generalized from a single
// light-client update to the full Fetcher surface this domain needs.
type FileFetcher struct {
	FilePath string
	fixture  *fileFixture
}

func NewFileFetcher(filePath string) *FileFetcher {
	return &FileFetcher{FilePath: filePath}
}

func (f *FileFetcher) load() (*fileFixture, error) {
	if f.fixture != nil {
		return f.fixture, nil
	}
	data, err := os.ReadFile(f.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", f.FilePath, err)
	}
	var fx fileFixture
	if err := json.Unmarshal(data, &fx); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}
	f.fixture = &fx
	return f.fixture, nil
}

func (f *FileFetcher) Head(ctx context.Context) (uint32, error) {
	fx, err := f.load()
	if err != nil {
		return 0, err
	}
	return fx.Head, nil
}

func (f *FileFetcher) AuthoritySetID(ctx context.Context, blockNumber uint32) (uint64, error) {
	fx, err := f.load()
	if err != nil {
		return 0, err
	}
	setID, ok := fx.SetIDByBlock[blockNumber]
	if !ok {
		return 0, fmt.Errorf("fixture: no set id recorded for block %d", blockNumber)
	}
	return setID, nil
}

func (f *FileFetcher) LastJustifiedBlock(ctx context.Context, authoritySetID uint64) (uint32, error) {
	fx, err := f.load()
	if err != nil {
		return 0, err
	}
	var last uint32
	found := false
	for block, setID := range fx.SetIDByBlock {
		if setID == authoritySetID {
			if _, ok := fx.JustByBlock[block]; ok && (!found || block > last) {
				last = block
				found = true
			}
		}
	}
	if !found {
		return 0, fmt.Errorf("fixture: no justified block recorded for set %d", authoritySetID)
	}
	return last, nil
}

func (f *FileFetcher) JustificationForBlock(ctx context.Context, blockNumber uint32) (*types.Justification, error) {
	fx, err := f.load()
	if err != nil {
		return nil, err
	}
	dto, ok := fx.JustByBlock[blockNumber]
	if !ok {
		return nil, fmt.Errorf("fixture: no justification recorded for block %d", blockNumber)
	}
	j, err := dto.toJustification()
	if err != nil {
		return nil, fmt.Errorf("fixture: block %d: %w", blockNumber, err)
	}
	return &j, nil
}

func (f *FileFetcher) HeaderRangeInputs(ctx context.Context, trustedBlock, targetBlock, treeSize uint32) (*types.HeaderRangeInput, error) {
	fx, err := f.load()
	if err != nil {
		return nil, err
	}

	trustedRaw, ok := fx.HeadersByBlock[trustedBlock]
	if !ok {
		return nil, fmt.Errorf("fixture: no header recorded for trusted block %d", trustedBlock)
	}
	trustedHash := types.Hash(codec.Blake2b256(trustedRaw))

	headers := make([]types.EncodedHeader, 0, targetBlock-trustedBlock)
	for n := trustedBlock + 1; n <= targetBlock; n++ {
		raw, ok := fx.HeadersByBlock[n]
		if !ok {
			return nil, fmt.Errorf("fixture: no header recorded for block %d", n)
		}
		headers = append(headers, types.EncodedHeader(raw))
	}

	setID, err := f.AuthoritySetID(ctx, trustedBlock)
	if err != nil {
		return nil, err
	}
	j, err := f.JustificationForBlock(ctx, targetBlock)
	if err != nil {
		return nil, err
	}

	return &types.HeaderRangeInput{
		TrustedBlock:  trustedBlock,
		TrustedHash:   trustedHash,
		TargetBlock:   targetBlock,
		Justification: *j,
		Headers:       headers,
		ActiveSet:     types.AuthoritySet{SetID: setID, Commitment: j.CurrentValsetCommitment, Size: uint32(len(j.ValsetPubKeys))},
		TreeSize:      treeSize,
	}, nil
}

func (f *FileFetcher) RotateInputs(ctx context.Context, currentAuthoritySetID uint64) (*types.RotateInput, error) {
	fx, err := f.load()
	if err != nil {
		return nil, err
	}
	epochEndBlock, err := f.LastJustifiedBlock(ctx, currentAuthoritySetID)
	if err != nil {
		return nil, err
	}
	raw, ok := fx.HeadersByBlock[epochEndBlock]
	if !ok {
		return nil, fmt.Errorf("fixture: no header recorded for epoch-end block %d", epochEndBlock)
	}
	j, err := f.JustificationForBlock(ctx, epochEndBlock)
	if err != nil {
		return nil, err
	}
	return &types.RotateInput{
		CurrentSet:     types.AuthoritySet{SetID: currentAuthoritySetID, Commitment: j.CurrentValsetCommitment, Size: uint32(len(j.ValsetPubKeys))},
		Justification:  *j,
		EpochEndHeader: types.EncodedHeader(raw),
	}, nil
}

var _ cfgtypes.Fetcher = (*FileFetcher)(nil)
