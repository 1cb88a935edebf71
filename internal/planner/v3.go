package planner

import (
	"fmt"
	"math/big"
	"time"

	"github.com/bankofai/skills-tron/internal/amm"
	"github.com/bankofai/skills-tron/internal/dex"
	"github.com/bankofai/skills-tron/internal/model"
	"github.com/bankofai/skills-tron/internal/token"
	"github.com/bankofai/skills-tron/internal/tron"
)

// V3AddInput is everything PlanV3Add needs. Amounts and wallets are in pool
// order. Pool is nil when the factory has no pool for the fee tier; Existing
// is the owner's position on the same range, if any.
type V3AddInput struct {
	Network   string
	Owner     string
	Pair      token.Pair
	Amount0   *big.Int
	Amount1   *big.Int
	Fee       uint32
	TickLower int32
	TickUpper int32
	Pool      *dex.Pool
	Existing  *dex.Position
	Wallet0   Wallet
	Wallet1   Wallet
	Slippage  float64
	Now       time.Time
}

// PlanV3Add aligns the requested range to the fee tier's spacing and sizes a
// mint, an increaseLiquidity on an existing position, or a pool creation
// priced from the deposit ratio.
func PlanV3Add(in V3AddInput) (model.Plan, error) {
	lower, upper, spacing, err := AlignRange(in.TickLower, in.TickUpper, in.Fee)
	if err != nil {
		return model.Plan{}, err
	}

	detail := model.V3AddDetail{
		PoolExists:         in.Pool != nil,
		Fee:                in.Fee,
		FeeLabel:           amm.FeeLabel(in.Fee),
		TickSpacing:        spacing,
		RequestedTickLower: in.TickLower,
		RequestedTickUpper: in.TickUpper,
		TickLower:          lower,
		TickUpper:          upper,
		TicksAdjusted:      lower != in.TickLower || upper != in.TickUpper,
		Slippage:           in.Slippage,
	}

	action := model.ActionMint
	var pool string
	var sqrtPrice *big.Int
	var tick int32
	if in.Pool == nil {
		action = model.ActionCreatePool
		sqrtPrice, err = amm.InitialSqrtPriceFromAmounts(in.Amount0, in.Pair.Token0.Decimals, in.Amount1, in.Pair.Token1.Decimals)
		if err != nil {
			return model.Plan{}, fmt.Errorf("initial price: %w", err)
		}
		tick, err = amm.TickAtSqrtPrice(sqrtPrice)
		if err != nil {
			return model.Plan{}, fmt.Errorf("initial price: %w", err)
		}
		detail.InitialSqrtPriceX96 = sqrtPrice.String()
	} else {
		if in.Pool.SqrtPriceX96 == nil {
			return model.Plan{}, fmt.Errorf("%w: pool price", ErrMissingState)
		}
		sqrtPrice, tick = in.Pool.SqrtPriceX96, in.Pool.Tick
		pool = tron.FromEVM(in.Pool.Address)
		if in.Existing != nil {
			action = model.ActionIncreaseLiquidity
			detail.ExistingPositionID = in.Existing.TokenID.String()
		}
	}
	detail.CurrentTick = &tick
	detail.InRange = lower <= tick && tick < upper

	sqrtA, err := amm.SqrtPriceAtTick(lower)
	if err != nil {
		return model.Plan{}, err
	}
	sqrtB, err := amm.SqrtPriceAtTick(upper)
	if err != nil {
		return model.Plan{}, err
	}
	liquidity, err := amm.LiquidityForAmounts(sqrtPrice, sqrtA, sqrtB, in.Amount0, in.Amount1)
	if err != nil {
		return model.Plan{}, fmt.Errorf("liquidity: %w", err)
	}
	est0, est1, err := amm.AmountsForLiquidity(sqrtPrice, sqrtA, sqrtB, liquidity)
	if err != nil {
		return model.Plan{}, fmt.Errorf("amounts: %w", err)
	}
	detail.EstimatedLiquidity = liquidity.String()

	t0, t1 := in.Pair.Token0, in.Pair.Token1
	if detail.Token0, err = newLeg(t0.Display(), tron.FromEVM(in.Pair.Addr0), t0.Decimals, in.Amount0, est0, in.Slippage, &in.Wallet0); err != nil {
		return model.Plan{}, err
	}
	if detail.Token1, err = newLeg(t1.Display(), tron.FromEVM(in.Pair.Addr1), t1.Decimals, in.Amount1, est1, in.Slippage, &in.Wallet1); err != nil {
		return model.Plan{}, err
	}

	// The position manager pulls up to the desired amounts, and WTRX is a
	// regular TRC20 here.
	c := newChecks()
	c.require(t0.Display(), t0.Decimals, in.Wallet0, in.Amount0, true)
	c.require(t1.Display(), t1.Decimals, in.Wallet1, in.Amount1, true)

	return model.Plan{
		Action:        action,
		Network:       in.Network,
		Pool:          pool,
		Owner:         in.Owner,
		CreatedAt:     timestamp(in.Now),
		NeedsApproval: c.approvals,
		Shortfalls:    c.shortfalls,
		Ready:         c.ready(),
		Detail:        detail,
	}, nil
}

// AlignRange snaps a requested range onto the fee tier's tick spacing and
// validates the result.
func AlignRange(tickLower, tickUpper int32, fee uint32) (int32, int32, int32, error) {
	spacing, err := amm.TickSpacingForFee(fee)
	if err != nil {
		return 0, 0, 0, err
	}
	for _, tick := range []int32{tickLower, tickUpper} {
		if tick < amm.MinTick || tick > amm.MaxTick {
			return 0, 0, 0, fmt.Errorf("%w: %d", amm.ErrTickOutOfBounds, tick)
		}
	}
	lower, err := usableTick(tickLower, spacing)
	if err != nil {
		return 0, 0, 0, err
	}
	upper, err := usableTick(tickUpper, spacing)
	if err != nil {
		return 0, 0, 0, err
	}
	if err := amm.ValidateRange(lower, upper, spacing); err != nil {
		return 0, 0, 0, err
	}
	return lower, upper, spacing, nil
}

// usableTick aligns tick to spacing. A tick clamped at the bounds is pulled
// inward to the last multiple of spacing.
func usableTick(tick, spacing int32) (int32, error) {
	if tick%spacing == 0 {
		return tick, nil
	}
	aligned, err := amm.NearestUsableTick(tick, spacing)
	if err != nil {
		return 0, err
	}
	return aligned / spacing * spacing, nil
}

// V3RemoveInput is everything PlanV3Remove needs. Token0 and Token1 describe
// the position's tokens; Pool supplies the current price.
type V3RemoveInput struct {
	Network  string
	Owner    string
	Position dex.Position
	Token0   token.Info
	Token1   token.Info
	Pool     dex.Pool
	Percent  int
	Slippage float64
	Now      time.Time
}

// PlanV3Remove plans a decreaseLiquidity of Percent of the position followed
// by a collect of everything owed.
func PlanV3Remove(in V3RemoveInput) (model.Plan, error) {
	if in.Percent < 1 || in.Percent > 100 {
		return model.Plan{}, fmt.Errorf("%w: %d", ErrInvalidPercent, in.Percent)
	}
	if in.Position.TokenID == nil {
		return model.Plan{}, fmt.Errorf("%w: position id", ErrMissingState)
	}
	if in.Position.Liquidity == nil || in.Position.Liquidity.Sign() == 0 {
		return model.Plan{}, fmt.Errorf("%w: #%s", ErrNoLiquidity, in.Position.TokenID)
	}
	if in.Pool.SqrtPriceX96 == nil {
		return model.Plan{}, fmt.Errorf("%w: pool price", ErrMissingState)
	}

	sqrtA, err := amm.SqrtPriceAtTick(in.Position.TickLower)
	if err != nil {
		return model.Plan{}, err
	}
	sqrtB, err := amm.SqrtPriceAtTick(in.Position.TickUpper)
	if err != nil {
		return model.Plan{}, err
	}

	toRemove := new(big.Int).Mul(in.Position.Liquidity, big.NewInt(int64(in.Percent)))
	toRemove.Quo(toRemove, big.NewInt(100))
	remaining := new(big.Int).Sub(in.Position.Liquidity, toRemove)

	out0, out1, err := amm.AmountsForLiquidity(in.Pool.SqrtPriceX96, sqrtA, sqrtB, toRemove)
	if err != nil {
		return model.Plan{}, fmt.Errorf("expected amounts: %w", err)
	}
	left0, left1, err := amm.AmountsForLiquidity(in.Pool.SqrtPriceX96, sqrtA, sqrtB, remaining)
	if err != nil {
		return model.Plan{}, fmt.Errorf("remaining amounts: %w", err)
	}

	leg0, err := newLeg(in.Token0.Symbol, tron.FromEVM(in.Position.Token0), in.Token0.Decimals, nil, out0, in.Slippage, nil)
	if err != nil {
		return model.Plan{}, err
	}
	leg1, err := newLeg(in.Token1.Symbol, tron.FromEVM(in.Position.Token1), in.Token1.Decimals, nil, out1, in.Slippage, nil)
	if err != nil {
		return model.Plan{}, err
	}

	return model.Plan{
		Action:        model.ActionDecreaseLiquidity,
		Network:       in.Network,
		Pool:          tron.FromEVM(in.Pool.Address),
		Owner:         in.Owner,
		CreatedAt:     timestamp(in.Now),
		NeedsApproval: []string{},
		Ready:         true,
		Detail: model.V3RemoveDetail{
			PositionID:         in.Position.TokenID.String(),
			Percent:            in.Percent,
			Liquidity:          in.Position.Liquidity.String(),
			LiquidityToRemove:  toRemove.String(),
			RemainingLiquidity: remaining.String(),
			Expected0:          leg0,
			Expected1:          leg1,
			Remaining0:         token.FromRaw(left0, in.Token0.Decimals),
			Remaining1:         token.FromRaw(left1, in.Token1.Decimals),
			CollectAmountMax:   amm.MaxUint128.String(),
			Slippage:           in.Slippage,
		},
	}, nil
}

// CollectInput carries the fees a static collect call reported for a position.
type CollectInput struct {
	Network  string
	Owner    string
	Position dex.Position
	Token0   token.Info
	Token1   token.Info
	Fee0     *big.Int
	Fee1     *big.Int
	Now      time.Time
}

// PlanCollect plans a fee collection. A position with nothing owed is
// reported as not claimable and not ready.
func PlanCollect(in CollectInput) (model.Plan, error) {
	if in.Position.TokenID == nil {
		return model.Plan{}, fmt.Errorf("%w: position id", ErrMissingState)
	}
	fee0, fee1 := in.Fee0, in.Fee1
	if fee0 == nil {
		fee0 = new(big.Int)
	}
	if fee1 == nil {
		fee1 = new(big.Int)
	}
	claimable := fee0.Sign() > 0 || fee1.Sign() > 0

	return model.Plan{
		Action:        model.ActionCollect,
		Network:       in.Network,
		Owner:         in.Owner,
		CreatedAt:     timestamp(in.Now),
		NeedsApproval: []string{},
		Ready:         claimable,
		Detail: model.CollectDetail{
			PositionID: in.Position.TokenID.String(),
			Claimable:  claimable,
			Fee0:       tokenAmount(in.Token0.Symbol, in.Token0.Decimals, fee0),
			Fee1:       tokenAmount(in.Token1.Symbol, in.Token1.Decimals, fee1),
			AmountMax:  amm.MaxUint128.String(),
		},
	}, nil
}
