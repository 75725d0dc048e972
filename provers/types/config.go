package types

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds the relayer configuration: the destination chain endpoint
// and contract address, the destination contract's storage-slot
// identifiers, and the two cadence knobs from
// spec.md §6.
type Config struct {
	RootDir string

	// DataSource selects the Fetcher implementation: "rpc" or "file".
	DataSource string
	// RPCEndpoint is the Substrate chain JSON-RPC endpoint, used when
	// DataSource is "rpc".
	RPCEndpoint string
	// FixtureFile is the JSON fixture path, used when DataSource is "file".
	FixtureFile string

	// DestinationRPCURL is the destination (settlement) chain's RPC endpoint.
	DestinationRPCURL string
	// ContractAddress is the hex address of the destination bridge contract.
	ContractAddress string

	// Storage-slot identifiers, loaded from the environment.
	// EthDestinationClient does not consult them: it calls the getter
	// names fixed in its ABI.
	LatestBlockSlot   string
	LatestSetIDSlot   string
	SetHashMapSlot    string
	TreeSizeSlot      string

	// LoopIntervalMins is the relayer's tick period, in minutes.
	LoopIntervalMins uint64
	// BlockUpdateInterval bounds how many blocks a single header-range
	// proof advances the destination head by.
	BlockUpdateInterval uint64
}

func NewConfig(args ...string) *Config {
	config := Config{
		RootDir:             getEnv("ROOT", "."),
		DataSource:          getEnv("DATA_SOURCE", "rpc"),
		RPCEndpoint:         getEnv("RPC_ENDPOINT", "wss://rpc.polkadot.io"),
		FixtureFile:         getEnv("FIXTURE_FILE", ""),
		DestinationRPCURL:   getEnv("DESTINATION_RPC_URL", "http://localhost:8545"),
		ContractAddress:     getEnv("CONTRACT_ADDRESS", ""),
		LatestBlockSlot:     getEnv("LATEST_BLOCK_SLOT", "latest_block"),
		LatestSetIDSlot:     getEnv("LATEST_SET_ID_SLOT", "latest_set_id"),
		SetHashMapSlot:      getEnv("SET_HASH_MAP_SLOT", "set_id_to_set_hash"),
		TreeSizeSlot:        getEnv("TREE_SIZE_SLOT", "tree_size"),
		LoopIntervalMins:    getEnvUint("LOOP_INTERVAL_MINS", 5),
		BlockUpdateInterval: getEnvUint("BLOCK_UPDATE_INTERVAL", 360),
	}

	for i := 0; i < len(args); i++ {
		if len(args) <= i+1 {
			panic(fmt.Errorf("missing argument for %s", args[i-1]))
		}

		switch args[i] {
		case "--root":
			config.RootDir = args[i+1]
			i++
		case "--data-source":
			config.DataSource = args[i+1]
			i++
		case "--rpc":
			config.RPCEndpoint = args[i+1]
			i++
		case "--fixture":
			config.FixtureFile = args[i+1]
			i++
		case "--destination-rpc":
			config.DestinationRPCURL = args[i+1]
			i++
		case "--contract":
			config.ContractAddress = args[i+1]
			i++
		}
	}

	return &config
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvUint(key string, defaultValue uint64) uint64 {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.ParseUint(value, 10, 64); err == nil {
			return n
		}
	}
	return defaultValue
}
