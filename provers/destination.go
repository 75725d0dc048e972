package provers

import (
	"context"
	"fmt"
	"strings"

	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/kysee/grandpa-bridge/types"
)

// DestinationClient reads the settlement contract's bridge storage and
// submits sealed proofs to it. Per spec.md §1's Non-goal on
// destination-chain transaction submission, this is a thin read/ABI-encode
// boundary — no gas estimation, retry, or nonce management lives here;
// that is an explicit exclusion, not an oversight.
type DestinationClient interface {
	LatestBlock(ctx context.Context) (uint32, error)
	LatestSetID(ctx context.Context) (uint64, error)
	SetHash(ctx context.Context, setID uint64) (types.Hash, error)
	TreeSize(ctx context.Context) (uint32, error)
	// Submit ABI-encodes a call to method ("rotate" or "commit_header_range")
	// with (rawProof, publicValues) and returns the encoded calldata; sending
	// the transaction is the caller's responsibility.
	Submit(ctx context.Context, method string, rawProof, publicValues []byte) ([]byte, error)
}

// bridgeABI is the minimal ABI surface EthDestinationClient needs: the two
// entry points named in spec.md §6 plus the four storage-slot getters the
// relayer polls each tick, mirroring operator.rs's
// CommitHeaderRangeAndRotateInput calldata shape.
const bridgeABI = `[
  {"name":"latest_block","type":"function","stateMutability":"view","inputs":[],"outputs":[{"type":"uint32"}]},
  {"name":"latest_set_id","type":"function","stateMutability":"view","inputs":[],"outputs":[{"type":"uint64"}]},
  {"name":"set_id_to_set_hash","type":"function","stateMutability":"view","inputs":[{"type":"uint64"}],"outputs":[{"type":"bytes32"}]},
  {"name":"tree_size","type":"function","stateMutability":"view","inputs":[],"outputs":[{"type":"uint32"}]},
  {"name":"rotate","type":"function","stateMutability":"nonpayable","inputs":[{"type":"bytes","name":"proof"},{"type":"bytes","name":"publicValues"}],"outputs":[]},
  {"name":"commit_header_range","type":"function","stateMutability":"nonpayable","inputs":[{"type":"bytes","name":"proof"},{"type":"bytes","name":"publicValues"}],"outputs":[]}
]`

// EthDestinationClient implements DestinationClient against an
// Ethereum-style settlement chain via go-ethereum's ethclient and
// accounts/abi, grounded on certenIO-certen-validator's ethereum.Client
// (ethclient.Dial + eth_call) and ethereum_contracts.go's ABI-packed
// call pattern.
type EthDestinationClient struct {
	client   *ethclient.Client
	contract common.Address
	abi      abi.ABI
}

func NewEthDestinationClient(rpcURL, contractAddress string) (*EthDestinationClient, error) {
	client, err := ethclient.Dial(rpcURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to destination RPC: %w", err)
	}
	parsed, err := abi.JSON(strings.NewReader(bridgeABI))
	if err != nil {
		return nil, fmt.Errorf("parse bridge ABI: %w", err)
	}
	return &EthDestinationClient{
		client:   client,
		contract: common.HexToAddress(contractAddress),
		abi:      parsed,
	}, nil
}

func (c *EthDestinationClient) call(ctx context.Context, method string, args ...any) ([]byte, error) {
	data, err := c.abi.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("pack %s call: %w", method, err)
	}
	out, err := c.client.CallContract(ctx, ethereum.CallMsg{To: &c.contract, Data: data}, nil)
	if err != nil {
		return nil, fmt.Errorf("call %s: %w", method, err)
	}
	return out, nil
}

func (c *EthDestinationClient) LatestBlock(ctx context.Context) (uint32, error) {
	out, err := c.call(ctx, "latest_block")
	if err != nil {
		return 0, err
	}
	vals, err := c.abi.Unpack("latest_block", out)
	if err != nil || len(vals) != 1 {
		return 0, fmt.Errorf("unpack latest_block: %w", err)
	}
	return vals[0].(uint32), nil
}

func (c *EthDestinationClient) LatestSetID(ctx context.Context) (uint64, error) {
	out, err := c.call(ctx, "latest_set_id")
	if err != nil {
		return 0, err
	}
	vals, err := c.abi.Unpack("latest_set_id", out)
	if err != nil || len(vals) != 1 {
		return 0, fmt.Errorf("unpack latest_set_id: %w", err)
	}
	return vals[0].(uint64), nil
}

func (c *EthDestinationClient) SetHash(ctx context.Context, setID uint64) (types.Hash, error) {
	var h types.Hash
	out, err := c.call(ctx, "set_id_to_set_hash", setID)
	if err != nil {
		return h, err
	}
	vals, err := c.abi.Unpack("set_id_to_set_hash", out)
	if err != nil || len(vals) != 1 {
		return h, fmt.Errorf("unpack set_id_to_set_hash: %w", err)
	}
	raw := vals[0].([32]byte)
	h = types.Hash(raw)
	return h, nil
}

func (c *EthDestinationClient) TreeSize(ctx context.Context) (uint32, error) {
	out, err := c.call(ctx, "tree_size")
	if err != nil {
		return 0, err
	}
	vals, err := c.abi.Unpack("tree_size", out)
	if err != nil || len(vals) != 1 {
		return 0, fmt.Errorf("unpack tree_size: %w", err)
	}
	return vals[0].(uint32), nil
}

func (c *EthDestinationClient) Submit(ctx context.Context, method string, rawProof, publicValues []byte) ([]byte, error) {
	if method != "rotate" && method != "commit_header_range" {
		return nil, fmt.Errorf("unknown destination method %q", method)
	}
	data, err := c.abi.Pack(method, rawProof, publicValues)
	if err != nil {
		return nil, fmt.Errorf("pack %s call: %w", method, err)
	}
	return data, nil
}

var _ DestinationClient = (*EthDestinationClient)(nil)
