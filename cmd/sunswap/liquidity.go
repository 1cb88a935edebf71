package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/bankofai/skills-tron/internal/config"
	"github.com/bankofai/skills-tron/internal/dex"
	"github.com/bankofai/skills-tron/internal/planner"
	"github.com/bankofai/skills-tron/internal/token"
	"github.com/bankofai/skills-tron/internal/tron"
)

func newLiquidityCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "liquidity",
		Short: "Plan SunSwap V2 liquidity changes",
	}
	addChainFlags(cmd)

	cmd.AddCommand(&cobra.Command{
		Use:   "add TOKEN_A TOKEN_B AMOUNT_A AMOUNT_B",
		Short: "Plan addLiquidity with amounts trimmed to the pool ratio",
		Args:  cobra.ExactArgs(4),
		RunE:  runLiquidityAdd,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "remove TOKEN_A TOKEN_B LP_AMOUNT",
		Short: "Plan removeLiquidity of LP_AMOUNT LP tokens",
		Args:  cobra.ExactArgs(3),
		RunE:  runLiquidityRemove,
	})
	return cmd
}

func runLiquidityAdd(cmd *cobra.Command, args []string) error {
	ctx, s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	owner, err := s.owner()
	if err != nil {
		return err
	}
	factory, err := s.cfg.Network.Contract(config.V2Factory)
	if err != nil {
		return err
	}
	router, err := s.cfg.Network.Contract(config.V2Router)
	if err != nil {
		return err
	}

	a, b, err := s.resolvePair(ctx, args[0], args[1])
	if err != nil {
		return err
	}
	desiredA, err := token.ToRaw(args[2], a.Decimals)
	if err != nil {
		return err
	}
	desiredB, err := token.ToRaw(args[3], b.Decimals)
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

	pair, err := optional(dex.FetchPair(ctx, s.client, factory, lookupA, lookupB))
	if err != nil {
		return err
	}

	// Native TRX is spent directly, so balances are read on the token itself.
	walletA, err := s.wallet(ctx, a.EVM, owner, router)
	if err != nil {
		return err
	}
	walletB, err := s.wallet(ctx, b.EVM, owner, router)
	if err != nil {
		return err
	}

	plan, err := planner.PlanV2Add(planner.V2AddInput{
		Network:  s.cfg.Network.Name,
		Owner:    tron.FromEVM(owner),
		TokenA:   a,
		TokenB:   b,
		LookupA:  lookupA,
		Pair:     pair,
		DesiredA: desiredA,
		DesiredB: desiredB,
		WalletA:  walletA,
		WalletB:  walletB,
		Slippage: s.cfg.Slippage,
		Now:      time.Now(),
	})
	if err != nil {
		return err
	}
	return s.emitPlan(ctx, plan)
}

func runLiquidityRemove(cmd *cobra.Command, args []string) error {
	ctx, s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	owner, err := s.owner()
	if err != nil {
		return err
	}
	factory, err := s.cfg.Network.Contract(config.V2Factory)
	if err != nil {
		return err
	}
	router, err := s.cfg.Network.Contract(config.V2Router)
	if err != nil {
		return err
	}

	a, b, err := s.resolvePair(ctx, args[0], args[1])
	if err != nil {
		return err
	}
	amount, err := token.ToRaw(args[2], planner.LPDecimals)
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
	lp, err := s.wallet(ctx, pair.Address, owner, router)
	if err != nil {
		return err
	}

	plan, err := planner.PlanV2Remove(planner.V2RemoveInput{
		Network:  s.cfg.Network.Name,
		Owner:    tron.FromEVM(owner),
		TokenA:   a,
		TokenB:   b,
		LookupA:  lookupA,
		Pair:     &pair,
		Amount:   amount,
		LP:       lp,
		Slippage: s.cfg.Slippage,
		Now:      time.Now(),
	})
	if err != nil {
		return err
	}
	return s.emitPlan(ctx, plan)
}
