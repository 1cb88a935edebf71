package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/bankofai/skills-tron/internal/amm"
	"github.com/bankofai/skills-tron/internal/config"
	"github.com/bankofai/skills-tron/internal/dex"
	"github.com/bankofai/skills-tron/internal/model"
	"github.com/bankofai/skills-tron/internal/tron"
)

func newPoolCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pool",
		Short: "Read SunSwap pool state",
	}
	addChainFlags(cmd)

	v2Cmd := &cobra.Command{
		Use:   "v2 TOKEN_A TOKEN_B",
		Short: "Show a V2 pair's reserves",
		Args:  cobra.ExactArgs(2),
		RunE:  runPoolV2,
	}

	v3Cmd := &cobra.Command{
		Use:   "v3 TOKEN_A TOKEN_B",
		Short: "Show a V3 pool's price, tick and liquidity",
		Args:  cobra.ExactArgs(2),
		RunE:  runPoolV3,
	}
	v3Cmd.Flags().Uint32("fee", 3000, "fee tier (100, 500, 3000, 10000)")

	cmd.AddCommand(v2Cmd, v3Cmd)
	return cmd
}

func runPoolV2(cmd *cobra.Command, args []string) error {
	ctx, s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	factory, err := s.cfg.Network.Contract(config.V2Factory)
	if err != nil {
		return err
	}
	a, b, err := s.resolvePair(ctx, args[0], args[1])
	if err != nil {
		return err
	}
	lookupA, err := s.registry.PoolAddress(a)
	if err != nil {
		return err
	}
	lookupB, err := s.registry.PoolAddress(b)
	if err != nil {
		return err
	}

	pair, err := dex.FetchPair(ctx, s.client, factory, lookupA, lookupB)
	if err != nil {
		return err
	}
	block := s.blockNumber(ctx)

	t0, t1 := s.describe(ctx, pair.Token0), s.describe(ctx, pair.Token1)
	return writeJSON(cmd.OutOrStdout(), model.PairSnapshot{
		Network:     s.cfg.Network.Name,
		Address:     tron.FromEVM(pair.Address),
		Token0:      tron.FromEVM(pair.Token0),
		Token1:      tron.FromEVM(pair.Token1),
		Symbol0:     t0.Symbol,
		Symbol1:     t1.Symbol,
		Reserve0:    pair.Reserve0.String(),
		Reserve1:    pair.Reserve1.String(),
		TotalSupply: pair.TotalSupply.String(),
		BlockNumber: block,
		ObservedAt:  time.Now().UTC().Format(time.RFC3339),
	})
}

func runPoolV3(cmd *cobra.Command, args []string) error {
	ctx, s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	fee, _ := cmd.Flags().GetUint32("fee")
	if _, err := amm.TickSpacingForFee(fee); err != nil {
		return err
	}
	factory, err := s.cfg.Network.Contract(config.V3Factory)
	if err != nil {
		return err
	}
	a, b, err := s.resolvePair(ctx, args[0], args[1])
	if err != nil {
		return err
	}
	sorted, err := s.registry.SortTokens(a, b)
	if err != nil {
		return err
	}

	pool, err := dex.FetchPool(ctx, s.client, factory, sorted.Addr0, sorted.Addr1, fee, s.pools, s.logger)
	if err != nil {
		return err
	}
	snapshot := model.PoolSnapshot{
		Network:      s.cfg.Network.Name,
		Address:      tron.FromEVM(pool.Address),
		Token0:       tron.FromEVM(pool.Token0),
		Token1:       tron.FromEVM(pool.Token1),
		Symbol0:      sorted.Token0.Display(),
		Symbol1:      sorted.Token1.Display(),
		Fee:          pool.Fee,
		FeeLabel:     amm.FeeLabel(pool.Fee),
		TickSpacing:  pool.TickSpacing,
		SqrtPriceX96: pool.SqrtPriceX96.String(),
		Tick:         pool.Tick,
		Liquidity:    pool.Liquidity.String(),
		BlockNumber:  s.blockNumber(ctx),
		ObservedAt:   time.Now().UTC().Format(time.RFC3339),
	}
	if err := writeJSON(cmd.OutOrStdout(), snapshot); err != nil {
		return err
	}
	if len(s.sinks) > 0 {
		if err := s.sinks.PutPools(ctx, []model.PoolSnapshot{snapshot}); err != nil {
			return fmt.Errorf("persist pool: %w", err)
		}
	}
	return nil
}

// blockNumber is informational; a failure is logged and reported as 0.
func (s *session) blockNumber(ctx context.Context) uint64 {
	block, err := s.client.LatestBlockNumber(ctx)
	if err != nil {
		s.logger.Warn("latest block unavailable", zap.Error(err))
		return 0
	}
	return block
}
