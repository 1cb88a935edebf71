package main

import (
	"context"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/bankofai/skills-tron/internal/config"
	"github.com/bankofai/skills-tron/internal/dex"
	"github.com/bankofai/skills-tron/internal/model"
	"github.com/bankofai/skills-tron/internal/planner"
	"github.com/bankofai/skills-tron/internal/token"
	"github.com/bankofai/skills-tron/internal/tron"
)

func newPositionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "position",
		Short: "List and plan SunSwap V3 positions",
	}
	addChainFlags(cmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List the owner's V3 positions",
		Args:  cobra.NoArgs,
		RunE:  runPositionList,
	}

	addCmd := &cobra.Command{
		Use:   "add TOKEN_A TOKEN_B AMOUNT_A AMOUNT_B",
		Short: "Plan a mint, increaseLiquidity or pool creation",
		Args:  cobra.ExactArgs(4),
		RunE:  runPositionAdd,
	}
	addRangeFlags(addCmd)
	addCmd.Flags().String("position-id", "", "increase this position instead of searching by range")
	_ = addCmd.MarkFlagRequired("fee")
	_ = addCmd.MarkFlagRequired("tick-lower")
	_ = addCmd.MarkFlagRequired("tick-upper")

	removeCmd := &cobra.Command{
		Use:   "remove [TOKEN_A TOKEN_B]",
		Short: "Plan decreaseLiquidity and collect for a position",
		Args:  cobra.RangeArgs(0, 2),
		RunE:  runPositionRemove,
	}
	addRangeFlags(removeCmd)
	removeCmd.Flags().String("position-id", "", "position NFT id")
	removeCmd.Flags().Int("percent", 100, "percentage of liquidity to remove (1-100)")

	collectCmd := &cobra.Command{
		Use:   "collect [TOKEN_A TOKEN_B]",
		Short: "Plan a fee collection for a position",
		Args:  cobra.RangeArgs(0, 2),
		RunE:  runPositionCollect,
	}
	addRangeFlags(collectCmd)
	collectCmd.Flags().String("position-id", "", "position NFT id")

	cmd.AddCommand(listCmd, addCmd, removeCmd, collectCmd)
	return cmd
}

func addRangeFlags(cmd *cobra.Command) {
	cmd.Flags().Uint32("fee", 3000, "fee tier (100, 500, 3000, 10000)")
	cmd.Flags().Int32("tick-lower", 0, "lower tick")
	cmd.Flags().Int32("tick-upper", 0, "upper tick")
}

type positionContracts struct {
	factory common.Address
	manager common.Address
}

func (s *session) v3Contracts() (positionContracts, error) {
	factory, err := s.cfg.Network.Contract(config.V3Factory)
	if err != nil {
		return positionContracts{}, err
	}
	manager, err := s.cfg.Network.Contract(config.PositionManager)
	if err != nil {
		return positionContracts{}, err
	}
	return positionContracts{factory: factory, manager: manager}, nil
}

func runPositionList(cmd *cobra.Command, _ []string) error {
	ctx, s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	owner, err := s.owner()
	if err != nil {
		return err
	}
	manager, err := s.cfg.Network.Contract(config.PositionManager)
	if err != nil {
		return err
	}

	positions, err := dex.ListPositions(ctx, s.client, manager, owner, s.logger)
	if err != nil {
		return err
	}
	records := make([]model.PositionRecord, 0, len(positions))
	for _, pos := range positions {
		t0, t1 := s.describe(ctx, pos.Token0), s.describe(ctx, pos.Token1)
		records = append(records, model.PositionRecord{
			TokenID:     pos.TokenID.String(),
			Token0:      tron.FromEVM(pos.Token0),
			Token1:      tron.FromEVM(pos.Token1),
			Symbol0:     t0.Symbol,
			Symbol1:     t1.Symbol,
			Fee:         pos.Fee,
			TickLower:   pos.TickLower,
			TickUpper:   pos.TickUpper,
			Liquidity:   pos.Liquidity.String(),
			TokensOwed0: token.FromRaw(pos.TokensOwed0, t0.Decimals),
			TokensOwed1: token.FromRaw(pos.TokensOwed1, t1.Decimals),
		})
	}
	s.logger.Info("positions listed", zap.String("owner", tron.FromEVM(owner)), zap.Int("count", len(records)))
	return writeJSON(cmd.OutOrStdout(), map[string]interface{}{
		"network":   s.cfg.Network.Name,
		"owner":     tron.FromEVM(owner),
		"positions": records,
	})
}

func runPositionAdd(cmd *cobra.Command, args []string) error {
	ctx, s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	owner, err := s.owner()
	if err != nil {
		return err
	}
	contracts, err := s.v3Contracts()
	if err != nil {
		return err
	}

	a, b, err := s.resolvePair(ctx, args[0], args[1])
	if err != nil {
		return err
	}
	pair, err := s.registry.SortTokens(a, b)
	if err != nil {
		return err
	}
	if a.IsTRX() || b.IsTRX() {
		s.logger.Info("TRX is pooled as WTRX on V3; the plan needs a WTRX balance")
	}
	amountA, amountB := args[2], args[3]
	if pair.Swapped {
		amountA, amountB = amountB, amountA
	}
	amount0, err := token.ToRaw(amountA, pair.Token0.Decimals)
	if err != nil {
		return err
	}
	amount1, err := token.ToRaw(amountB, pair.Token1.Decimals)
	if err != nil {
		return err
	}

	fee, _ := cmd.Flags().GetUint32("fee")
	tickLower, _ := cmd.Flags().GetInt32("tick-lower")
	tickUpper, _ := cmd.Flags().GetInt32("tick-upper")
	lower, upper, _, err := planner.AlignRange(tickLower, tickUpper, fee)
	if err != nil {
		return err
	}

	pool, err := optional(dex.FetchPool(ctx, s.client, contracts.factory, pair.Addr0, pair.Addr1, fee, s.pools, s.logger))
	if err != nil {
		return err
	}

	var existing *dex.Position
	if id, _ := cmd.Flags().GetString("position-id"); id != "" {
		tokenID, err := parseBig("position id", id)
		if err != nil {
			return err
		}
		pos, err := dex.FetchPosition(ctx, s.client, contracts.manager, tokenID)
		if err != nil {
			return err
		}
		if !pos.Matches(pair.Addr0, pair.Addr1, fee, lower, upper) {
			return fmt.Errorf("position %s is %d..%d on fee %d, not %d..%d on fee %d",
				tokenID, pos.TickLower, pos.TickUpper, pos.Fee, lower, upper, fee)
		}
		existing = &pos
	} else if pool != nil {
		existing, err = optional(dex.FindPosition(ctx, s.client, contracts.manager, owner, pair.Addr0, pair.Addr1, fee, lower, upper, s.logger))
		if err != nil {
			return err
		}
	}

	wallet0, err := s.wallet(ctx, pair.Addr0, owner, contracts.manager)
	if err != nil {
		return err
	}
	wallet1, err := s.wallet(ctx, pair.Addr1, owner, contracts.manager)
	if err != nil {
		return err
	}

	plan, err := planner.PlanV3Add(planner.V3AddInput{
		Network:   s.cfg.Network.Name,
		Owner:     tron.FromEVM(owner),
		Pair:      pair,
		Amount0:   amount0,
		Amount1:   amount1,
		Fee:       fee,
		TickLower: tickLower,
		TickUpper: tickUpper,
		Pool:      pool,
		Existing:  existing,
		Wallet0:   wallet0,
		Wallet1:   wallet1,
		Slippage:  s.cfg.Slippage,
		Now:       time.Now(),
	})
	if err != nil {
		return err
	}
	return s.emitPlan(ctx, plan)
}

func runPositionRemove(cmd *cobra.Command, args []string) error {
	ctx, s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	owner, err := s.owner()
	if err != nil {
		return err
	}
	contracts, err := s.v3Contracts()
	if err != nil {
		return err
	}
	pos, err := s.locatePosition(ctx, cmd, args, owner, contracts.manager)
	if err != nil {
		return err
	}
	pool, err := dex.FetchPool(ctx, s.client, contracts.factory, pos.Token0, pos.Token1, pos.Fee, s.pools, s.logger)
	if err != nil {
		return err
	}
	percent, _ := cmd.Flags().GetInt("percent")

	plan, err := planner.PlanV3Remove(planner.V3RemoveInput{
		Network:  s.cfg.Network.Name,
		Owner:    tron.FromEVM(owner),
		Position: pos,
		Token0:   s.describe(ctx, pos.Token0),
		Token1:   s.describe(ctx, pos.Token1),
		Pool:     pool,
		Percent:  percent,
		Slippage: s.cfg.Slippage,
		Now:      time.Now(),
	})
	if err != nil {
		return err
	}
	return s.emitPlan(ctx, plan)
}

func runPositionCollect(cmd *cobra.Command, args []string) error {
	ctx, s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	owner, err := s.owner()
	if err != nil {
		return err
	}
	manager, err := s.cfg.Network.Contract(config.PositionManager)
	if err != nil {
		return err
	}
	pos, err := s.locatePosition(ctx, cmd, args, owner, manager)
	if err != nil {
		return err
	}
	fee0, fee1, err := dex.EstimateFees(ctx, s.client, manager, pos.TokenID, owner)
	if err != nil {
		return fmt.Errorf("estimate fees: %w", err)
	}

	plan, err := planner.PlanCollect(planner.CollectInput{
		Network:  s.cfg.Network.Name,
		Owner:    tron.FromEVM(owner),
		Position: pos,
		Token0:   s.describe(ctx, pos.Token0),
		Token1:   s.describe(ctx, pos.Token1),
		Fee0:     fee0,
		Fee1:     fee1,
		Now:      time.Now(),
	})
	if err != nil {
		return err
	}
	return s.emitPlan(ctx, plan)
}

// locatePosition finds a position by --position-id, or by tokens plus
// --fee/--tick-lower/--tick-upper among the owner's positions.
func (s *session) locatePosition(ctx context.Context, cmd *cobra.Command, args []string, owner, manager common.Address) (dex.Position, error) {
	if id, _ := cmd.Flags().GetString("position-id"); id != "" {
		tokenID, err := parseBig("position id", id)
		if err != nil {
			return dex.Position{}, err
		}
		if tokenID.Sign() <= 0 {
			return dex.Position{}, fmt.Errorf("invalid position id %s", id)
		}
		return dex.FetchPosition(ctx, s.client, manager, tokenID)
	}

	if len(args) != 2 || !cmd.Flags().Changed("tick-lower") || !cmd.Flags().Changed("tick-upper") {
		return dex.Position{}, fmt.Errorf("%s requires --position-id or TOKEN_A TOKEN_B with --fee, --tick-lower and --tick-upper", cmd.Name())
	}
	a, b, err := s.resolvePair(ctx, args[0], args[1])
	if err != nil {
		return dex.Position{}, err
	}
	pair, err := s.registry.SortTokens(a, b)
	if err != nil {
		return dex.Position{}, err
	}
	fee, _ := cmd.Flags().GetUint32("fee")
	lower, _ := cmd.Flags().GetInt32("tick-lower")
	upper, _ := cmd.Flags().GetInt32("tick-upper")
	return dex.FindPosition(ctx, s.client, manager, owner, pair.Addr0, pair.Addr1, fee, lower, upper, s.logger)
}
