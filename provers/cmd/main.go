package main

import (
	"os"

	"github.com/rs/zerolog"

	"github.com/kysee/grandpa-bridge/harness"
	"github.com/kysee/grandpa-bridge/provers"
	"github.com/kysee/grandpa-bridge/provers/types"
)

func main() {
	config := types.NewConfig(os.Args...)
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	dest, err := provers.NewEthDestinationClient(config.DestinationRPCURL, config.ContractAddress)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create destination client")
	}

	sealer, err := harness.NewSealer(config.RootDir)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load proof-sealing harness")
	}

	provers.RelayerMain(config, dest, sealer, logger)
}
