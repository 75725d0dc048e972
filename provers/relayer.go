package provers

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/kysee/grandpa-bridge/circuits"
	cfgtypes "github.com/kysee/grandpa-bridge/provers/types"
	"github.com/kysee/grandpa-bridge/types"
)

// ProofSealer seals a kernel-emitted PublicValues into a proof the
// destination chain can verify, implemented by package harness.
type ProofSealer interface {
	Prove(publicValues []byte) (rawProof []byte, err error)
}

// RelayerMain is the CLI entry point: build a Fetcher from config,
// construct and run the Relayer. Mirrors the teacher's RelayerMain.
func RelayerMain(config *cfgtypes.Config, dest DestinationClient, sealer ProofSealer, logger zerolog.Logger) {
	var fetcher cfgtypes.Fetcher
	if config.DataSource == "file" {
		fetcher = NewFileFetcher(config.FixtureFile)
	} else {
		fetcher = NewRPCFetcher(config.RPCEndpoint)
	}

	r := NewRelayer(config, fetcher, dest, sealer, logger)
	if err := r.Run(context.Background()); err != nil {
		logger.Fatal().Err(err).Msg("relayer stopped")
	}
}

// Relayer is a direct port of operator.rs's VectorXOperator::run: each
// tick it decides rotate vs header_range against the destination chain's
// current state, invokes the kernel, seals the resulting public values,
// and passes the pair to DestinationClient.Submit. It logs the size of the
// calldata Submit returns; it does not send a transaction itself.
type Relayer struct {
	config  *cfgtypes.Config
	fetcher cfgtypes.Fetcher
	dest    DestinationClient
	sealer  ProofSealer
	log     zerolog.Logger
}

func NewRelayer(config *cfgtypes.Config, fetcher cfgtypes.Fetcher, dest DestinationClient, sealer ProofSealer, logger zerolog.Logger) *Relayer {
	return &Relayer{config: config, fetcher: fetcher, dest: dest, sealer: sealer, log: logger}
}

// Run ticks every config.LoopIntervalMins until ctx is cancelled. Any
// kernel or submission error is logged and the loop continues to the
// next tick — matching operator.rs's match-and-continue error handling,
// not a retry-within-tick strategy.
func (r *Relayer) Run(ctx context.Context) error {
	interval := time.Duration(r.config.LoopIntervalMins) * time.Minute
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if err := r.tick(ctx); err != nil {
			r.log.Error().Err(err).Msg("relayer tick failed")
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (r *Relayer) tick(ctx context.Context) error {
	latestBlock, err := r.dest.LatestBlock(ctx)
	if err != nil {
		return fmt.Errorf("read latest block: %w", err)
	}
	latestSetID, err := r.dest.LatestSetID(ctx)
	if err != nil {
		return fmt.Errorf("read latest set id: %w", err)
	}

	head, err := r.fetcher.Head(ctx)
	if err != nil {
		return fmt.Errorf("fetch head: %w", err)
	}
	headSetID, err := r.fetcher.AuthoritySetID(ctx, head)
	if err != nil {
		return fmt.Errorf("fetch head authority set id: %w", err)
	}

	if headSetID > latestSetID {
		return r.findRotate(ctx, latestSetID)
	}
	return r.findHeaderRange(ctx, latestBlock, head)
}

func (r *Relayer) findRotate(ctx context.Context, currentSetID uint64) error {
	in, err := r.fetcher.RotateInputs(ctx, currentSetID)
	if err != nil {
		return fmt.Errorf("rotate inputs: %w", err)
	}
	pv, err := circuits.ProveRotate(*in)
	if err != nil {
		return fmt.Errorf("prove rotate: %w", err)
	}
	return r.sealAndSubmit(ctx, "rotate", pv)
}

func (r *Relayer) findHeaderRange(ctx context.Context, trustedBlock, head uint32) error {
	targetBlock := trustedBlock + uint32(r.config.BlockUpdateInterval)
	if targetBlock > head {
		targetBlock = head
	}
	if targetBlock <= trustedBlock {
		return nil
	}

	treeSize, err := r.dest.TreeSize(ctx)
	if err != nil {
		return fmt.Errorf("read tree size: %w", err)
	}

	in, err := r.fetcher.HeaderRangeInputs(ctx, trustedBlock, targetBlock, treeSize)
	if err != nil {
		return fmt.Errorf("header range inputs: %w", err)
	}
	pv, err := circuits.ProveHeaderRange(*in)
	if err != nil {
		return fmt.Errorf("prove header range: %w", err)
	}
	return r.sealAndSubmit(ctx, "commit_header_range", pv)
}

func (r *Relayer) sealAndSubmit(ctx context.Context, method string, pv *types.PublicValues) error {
	encoded, err := pv.Encode()
	if err != nil {
		return fmt.Errorf("encode public values: %w", err)
	}
	rawProof, err := r.sealer.Prove(encoded)
	if err != nil {
		return fmt.Errorf("seal proof: %w", err)
	}
	calldata, err := r.dest.Submit(ctx, method, rawProof, encoded)
	if err != nil {
		return fmt.Errorf("submit %s: %w", method, err)
	}
	r.log.Info().Str("method", method).Int("calldata_bytes", len(calldata)).Msg("proof ready for submission")
	return nil
}
