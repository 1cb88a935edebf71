package main

import (
	"fmt"
	"math/big"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/bankofai/skills-tron/internal/amm"
	"github.com/bankofai/skills-tron/internal/config"
	"github.com/bankofai/skills-tron/internal/token"
)

type mathFunc func(cmd *cobra.Command, args []string) (interface{}, error)

func newMathCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "math",
		Short: "Offline tick, liquidity and ratio math",
	}

	tickCmd := &cobra.Command{
		Use:   "tick",
		Short: "Convert between a tick and its Q64.96 sqrt price",
		Args:  cobra.NoArgs,
		RunE:  runMath("tick", mathTick),
	}
	tickCmd.Flags().Int32("tick", 0, "tick to convert")
	tickCmd.Flags().String("sqrt-price", "", "sqrtPriceX96 to convert back to a tick")

	usableCmd := &cobra.Command{
		Use:   "usable-tick",
		Short: "Round a tick to the nearest multiple of the tick spacing",
		Args:  cobra.NoArgs,
		RunE:  runMath("usable-tick", mathUsableTick),
	}
	usableCmd.Flags().Int32("tick", 0, "tick to round")
	usableCmd.Flags().Int32("spacing", 0, "tick spacing")
	usableCmd.Flags().Uint32("fee", 0, "fee tier (100, 500, 3000, 10000) instead of --spacing")

	liquidityCmd := &cobra.Command{
		Use:   "liquidity",
		Short: "Largest liquidity two raw amounts can back on a range",
		Args:  cobra.NoArgs,
		RunE:  runMath("liquidity", mathLiquidity),
	}
	addPriceFlags(liquidityCmd)
	liquidityCmd.Flags().String("amount0", "0", "raw token0 amount")
	liquidityCmd.Flags().String("amount1", "0", "raw token1 amount")

	amountsCmd := &cobra.Command{
		Use:   "amounts",
		Short: "Token amounts a liquidity value represents on a range",
		Args:  cobra.NoArgs,
		RunE:  runMath("amounts", mathAmounts),
	}
	addPriceFlags(amountsCmd)
	amountsCmd.Flags().String("liquidity", "0", "position liquidity")

	optimalCmd := &cobra.Command{
		Use:   "optimal",
		Short: "V2 deposit amounts that keep the pool ratio",
		Args:  cobra.NoArgs,
		RunE:  runMath("optimal", mathOptimal),
	}
	for _, name := range []string{"desired0", "desired1", "reserve0", "reserve1"} {
		optimalCmd.Flags().String(name, "0", "raw "+name)
	}

	initCmd := &cobra.Command{
		Use:   "init-price",
		Short: "Initial sqrtPriceX96 of a new pool from the first deposit",
		Args:  cobra.NoArgs,
		RunE:  runMath("init-price", mathInitPrice),
	}
	initCmd.Flags().String("amount0", "0", "raw token0 amount")
	initCmd.Flags().String("amount1", "0", "raw token1 amount")
	initCmd.Flags().Uint8("decimals0", token.DefaultDecimals, "token0 decimals")
	initCmd.Flags().Uint8("decimals1", token.DefaultDecimals, "token1 decimals")

	convertCmd := &cobra.Command{
		Use:   "convert AMOUNT",
		Short: "Convert a token amount between human and raw units",
		Args:  cobra.ExactArgs(1),
		RunE:  runMath("convert", mathConvert),
	}
	convertCmd.Flags().Uint8("decimals", token.DefaultDecimals, "token decimals")
	convertCmd.Flags().Bool("from-raw", false, "AMOUNT is raw; render it in human units")
	convertCmd.Flags().Float64("slippage", 0, "also report the minimum after this slippage percent")

	cmd.AddCommand(tickCmd, usableCmd, liquidityCmd, amountsCmd, optimalCmd, initCmd, convertCmd)
	return cmd
}

func runMath(name string, fn mathFunc) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfgFile, _ := cmd.Flags().GetString("config")
		cfg, err := config.LoadMath(cfgFile, cmd.Flags())
		if err != nil {
			return err
		}
		logger, err := newLogger(cfg.LogLevel)
		if err != nil {
			return err
		}
		defer logger.Sync()

		result, err := fn(cmd, args)
		if err != nil {
			return err
		}
		logger.Debug("math result", zap.String("command", name), zap.Any("result", result))
		return writeJSON(cmd.OutOrStdout(), result)
	}
}

func addPriceFlags(cmd *cobra.Command) {
	cmd.Flags().Int32("tick", 0, "current tick")
	cmd.Flags().String("sqrt-price", "", "current sqrtPriceX96 (overrides --tick)")
	cmd.Flags().Int32("tick-lower", 0, "lower tick of the range")
	cmd.Flags().Int32("tick-upper", 0, "upper tick of the range")
}

type rangePrices struct {
	current *big.Int
	lower   *big.Int
	upper   *big.Int
}

func readRangePrices(cmd *cobra.Command) (rangePrices, error) {
	var out rangePrices
	var err error
	if sqrt, _ := cmd.Flags().GetString("sqrt-price"); sqrt != "" {
		if out.current, err = parseBig("sqrt price", sqrt); err != nil {
			return out, err
		}
	} else {
		tick, _ := cmd.Flags().GetInt32("tick")
		if out.current, err = amm.SqrtPriceAtTick(tick); err != nil {
			return out, err
		}
	}
	lower, _ := cmd.Flags().GetInt32("tick-lower")
	upper, _ := cmd.Flags().GetInt32("tick-upper")
	if lower >= upper {
		return out, fmt.Errorf("%w: tick-lower %d must be below tick-upper %d", amm.ErrInvalidRange, lower, upper)
	}
	if out.lower, err = amm.SqrtPriceAtTick(lower); err != nil {
		return out, err
	}
	if out.upper, err = amm.SqrtPriceAtTick(upper); err != nil {
		return out, err
	}
	return out, nil
}

func readBigFlags(cmd *cobra.Command, names ...string) ([]*big.Int, error) {
	out := make([]*big.Int, 0, len(names))
	for _, name := range names {
		raw, _ := cmd.Flags().GetString(name)
		v, err := parseBig(name, raw)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func mathTick(cmd *cobra.Command, _ []string) (interface{}, error) {
	if sqrt, _ := cmd.Flags().GetString("sqrt-price"); sqrt != "" {
		price, err := parseBig("sqrt price", sqrt)
		if err != nil {
			return nil, err
		}
		tick, err := amm.TickAtSqrtPrice(price)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{"sqrt_price_x96": price.String(), "tick": tick}, nil
	}

	tick, _ := cmd.Flags().GetInt32("tick")
	price, err := amm.SqrtPriceAtTick(tick)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"tick": tick, "sqrt_price_x96": price.String()}, nil
}

func mathUsableTick(cmd *cobra.Command, _ []string) (interface{}, error) {
	tick, _ := cmd.Flags().GetInt32("tick")
	spacing, _ := cmd.Flags().GetInt32("spacing")
	if cmd.Flags().Changed("fee") {
		fee, _ := cmd.Flags().GetUint32("fee")
		var err error
		if spacing, err = amm.TickSpacingForFee(fee); err != nil {
			return nil, err
		}
	}
	usable, err := amm.NearestUsableTick(tick, spacing)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"tick": tick, "tick_spacing": spacing, "usable_tick": usable}, nil
}

func mathLiquidity(cmd *cobra.Command, _ []string) (interface{}, error) {
	prices, err := readRangePrices(cmd)
	if err != nil {
		return nil, err
	}
	amounts, err := readBigFlags(cmd, "amount0", "amount1")
	if err != nil {
		return nil, err
	}
	liquidity, err := amm.LiquidityForAmounts(prices.current, prices.lower, prices.upper, amounts[0], amounts[1])
	if err != nil {
		return nil, err
	}
	used0, used1, err := amm.AmountsForLiquidity(prices.current, prices.lower, prices.upper, liquidity)
	if err != nil {
		return nil, err
	}
	return map[string]string{
		"liquidity": liquidity.String(),
		"amount0":   used0.String(),
		"amount1":   used1.String(),
	}, nil
}

func mathAmounts(cmd *cobra.Command, _ []string) (interface{}, error) {
	prices, err := readRangePrices(cmd)
	if err != nil {
		return nil, err
	}
	values, err := readBigFlags(cmd, "liquidity")
	if err != nil {
		return nil, err
	}
	amount0, amount1, err := amm.AmountsForLiquidity(prices.current, prices.lower, prices.upper, values[0])
	if err != nil {
		return nil, err
	}
	return map[string]string{"amount0": amount0.String(), "amount1": amount1.String()}, nil
}

func mathOptimal(cmd *cobra.Command, _ []string) (interface{}, error) {
	v, err := readBigFlags(cmd, "desired0", "desired1", "reserve0", "reserve1")
	if err != nil {
		return nil, err
	}
	alloc, err := amm.OptimalAmounts(v[0], v[1], v[2], v[3])
	if err != nil {
		return nil, err
	}
	unused0, unused1 := amm.Unused(v[0], v[1], alloc)
	return map[string]interface{}{
		"amount0":  alloc.Amount0.String(),
		"amount1":  alloc.Amount1.String(),
		"adjusted": alloc.Adjusted,
		"unused0":  unused0.String(),
		"unused1":  unused1.String(),
	}, nil
}

func mathInitPrice(cmd *cobra.Command, _ []string) (interface{}, error) {
	amounts, err := readBigFlags(cmd, "amount0", "amount1")
	if err != nil {
		return nil, err
	}
	dec0, _ := cmd.Flags().GetUint8("decimals0")
	dec1, _ := cmd.Flags().GetUint8("decimals1")
	price, err := amm.InitialSqrtPriceFromAmounts(amounts[0], dec0, amounts[1], dec1)
	if err != nil {
		return nil, err
	}
	out := map[string]interface{}{"sqrt_price_x96": price.String()}
	if tick, err := amm.TickAtSqrtPrice(price); err == nil {
		out["tick"] = tick
	}
	return out, nil
}

func mathConvert(cmd *cobra.Command, args []string) (interface{}, error) {
	decimals, _ := cmd.Flags().GetUint8("decimals")
	fromRaw, _ := cmd.Flags().GetBool("from-raw")

	var raw *big.Int
	var err error
	if fromRaw {
		raw, err = parseBig("amount", args[0])
	} else {
		raw, err = token.ToRaw(args[0], decimals)
	}
	if err != nil {
		return nil, err
	}

	out := map[string]string{
		"raw":    raw.String(),
		"amount": token.FromRaw(raw, decimals),
	}
	if cmd.Flags().Changed("slippage") {
		pct, _ := cmd.Flags().GetFloat64("slippage")
		minimum, err := token.ApplySlippage(raw, pct)
		if err != nil {
			return nil, err
		}
		out["minimum_raw"] = minimum.String()
		out["minimum"] = token.FromRaw(minimum, decimals)
	}
	return out, nil
}
