package provers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/kysee/grandpa-bridge/types"
	cfgtypes "github.com/kysee/grandpa-bridge/provers/types"
)

// RPCFetcher implements cfgtypes.Fetcher by calling a Substrate JSON-RPC
// 2.0 endpoint, the way the teacher's APIFetcher calls the Beacon REST
// API — one method, one endpoint, parse the JSON envelope.
type RPCFetcher struct {
	Endpoint string
	Client   *http.Client
}

func NewRPCFetcher(endpoint string) *RPCFetcher {
	return &RPCFetcher{Endpoint: endpoint, Client: &http.Client{}}
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int    `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      int             `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *rpcError       `json:"error"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (f *RPCFetcher) call(ctx context.Context, method string, params []any, out any) error {
	reqBody, err := json.Marshal(rpcRequest{JSONRPC: "2.0", ID: 1, Method: method, Params: params})
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.Endpoint, bytes.NewReader(reqBody))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := f.Client.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", method, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s: read response: %w", method, err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s: status %d: %s", method, resp.StatusCode, string(body))
	}

	var rpcResp rpcResponse
	if err := json.Unmarshal(body, &rpcResp); err != nil {
		return fmt.Errorf("%s: parse envelope: %w", method, err)
	}
	if rpcResp.Error != nil {
		return fmt.Errorf("%s: rpc error %d: %s", method, rpcResp.Error.Code, rpcResp.Error.Message)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(rpcResp.Result, out); err != nil {
		return fmt.Errorf("%s: parse result: %w", method, err)
	}
	return nil
}

type headerNumberDTO struct {
	Number types.HexBytes `json:"number"`
}

// Head calls chain_getFinalizedHead then chain_getHeader to read its number.
func (f *RPCFetcher) Head(ctx context.Context) (uint32, error) {
	var finalizedHash types.HexBytes
	if err := f.call(ctx, "chain_getFinalizedHead", nil, &finalizedHash); err != nil {
		return 0, err
	}
	var h headerNumberDTO
	if err := f.call(ctx, "chain_getHeader", []any{hexParam(finalizedHash)}, &h); err != nil {
		return 0, err
	}
	return decodeCompactNumberHex(h.Number)
}

// AuthoritySetID calls grandpa_currentSetId as of blockNumber's hash.
func (f *RPCFetcher) AuthoritySetID(ctx context.Context, blockNumber uint32) (uint64, error) {
	var blockHash types.HexBytes
	if err := f.call(ctx, "chain_getBlockHash", []any{blockNumber}, &blockHash); err != nil {
		return 0, err
	}
	var setID uint64
	if err := f.call(ctx, "grandpa_currentSetId", []any{hexParam(blockHash)}, &setID); err != nil {
		return 0, err
	}
	return setID, nil
}

// LastJustifiedBlock is not exposed as a single Substrate RPC; it is
// derived by fetching a justification for Head and reading its
// commit_number, the way operator.rs scans backward from chain head.
func (f *RPCFetcher) LastJustifiedBlock(ctx context.Context, authoritySetID uint64) (uint32, error) {
	head, err := f.Head(ctx)
	if err != nil {
		return 0, err
	}
	j, err := f.JustificationForBlock(ctx, head)
	if err != nil {
		return 0, err
	}
	return j.CommitNumber, nil
}

// JustificationForBlock calls grandpa_proveFinality for blockNumber.
func (f *RPCFetcher) JustificationForBlock(ctx context.Context, blockNumber uint32) (*types.Justification, error) {
	var blockHash types.HexBytes
	if err := f.call(ctx, "chain_getBlockHash", []any{blockNumber}, &blockHash); err != nil {
		return nil, err
	}
	var rsp justificationResponseDTO
	if err := f.call(ctx, "grandpa_proveFinality", []any{hexParam(blockHash)}, &rsp); err != nil {
		return nil, err
	}
	if !rsp.Success || rsp.Justification == nil {
		if rsp.Error != nil {
			return nil, fmt.Errorf("grandpa_proveFinality: %s", *rsp.Error)
		}
		return nil, fmt.Errorf("grandpa_proveFinality: no justification for block %d", blockNumber)
	}
	j, err := rsp.Justification.toJustification()
	if err != nil {
		return nil, fmt.Errorf("grandpa_proveFinality: %w", err)
	}
	return &j, nil
}

type headerDTO struct {
	ParentHash types.HexBytes `json:"parentHash"`
	Number     types.HexBytes `json:"number"`
}

// HeaderRangeInputs fetches each header in (trustedBlock, targetBlock]
// via chain_getHeaderRaw at each block hash, plus the justification at
// targetBlock, and assembles a HeaderRangeInput.
func (f *RPCFetcher) HeaderRangeInputs(ctx context.Context, trustedBlock, targetBlock, treeSize uint32) (*types.HeaderRangeInput, error) {
	var trustedHash types.HexBytes
	if err := f.call(ctx, "chain_getBlockHash", []any{trustedBlock}, &trustedHash); err != nil {
		return nil, err
	}
	th, err := hashFromHex(trustedHash, "trusted block hash")
	if err != nil {
		return nil, err
	}

	headers := make([]types.EncodedHeader, 0, targetBlock-trustedBlock)
	for n := trustedBlock + 1; n <= targetBlock; n++ {
		var blockHash types.HexBytes
		if err := f.call(ctx, "chain_getBlockHash", []any{n}, &blockHash); err != nil {
			return nil, err
		}
		var rawHeader types.HexBytes
		if err := f.call(ctx, "chain_getHeaderRaw", []any{hexParam(blockHash)}, &rawHeader); err != nil {
			return nil, err
		}
		headers = append(headers, types.EncodedHeader(rawHeader))
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
		TrustedHash:   th,
		TargetBlock:   targetBlock,
		Justification: *j,
		Headers:       headers,
		ActiveSet:     types.AuthoritySet{SetID: setID, Commitment: j.CurrentValsetCommitment, Size: uint32(len(j.ValsetPubKeys))},
		TreeSize:      treeSize,
	}, nil
}

// RotateInputs fetches the epoch-end header justifying the handoff out of
// currentAuthoritySetID and assembles a RotateInput.
func (f *RPCFetcher) RotateInputs(ctx context.Context, currentAuthoritySetID uint64) (*types.RotateInput, error) {
	epochEndBlock, err := f.LastJustifiedBlock(ctx, currentAuthoritySetID)
	if err != nil {
		return nil, err
	}
	var blockHash types.HexBytes
	if err := f.call(ctx, "chain_getBlockHash", []any{epochEndBlock}, &blockHash); err != nil {
		return nil, err
	}
	var rawHeader types.HexBytes
	if err := f.call(ctx, "chain_getHeaderRaw", []any{hexParam(blockHash)}, &rawHeader); err != nil {
		return nil, err
	}
	j, err := f.JustificationForBlock(ctx, epochEndBlock)
	if err != nil {
		return nil, err
	}
	return &types.RotateInput{
		CurrentSet:     types.AuthoritySet{SetID: currentAuthoritySetID, Commitment: j.CurrentValsetCommitment, Size: uint32(len(j.ValsetPubKeys))},
		Justification:  *j,
		EpochEndHeader: types.EncodedHeader(rawHeader),
	}, nil
}

// hexParam renders b the way Substrate RPC methods expect hash/block
// parameters: "0x"-prefixed lowercase hex.
func hexParam(b types.HexBytes) string {
	return "0x" + b.String()
}

func decodeCompactNumberHex(b types.HexBytes) (uint32, error) {
	var n uint32
	for i := len(b) - 1; i >= 0; i-- {
		n = n<<8 | uint32(b[i])
	}
	return n, nil
}

var _ cfgtypes.Fetcher = (*RPCFetcher)(nil)
