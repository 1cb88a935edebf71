package planner

import (
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/bankofai/skills-tron/internal/amm"
	"github.com/bankofai/skills-tron/internal/dex"
	"github.com/bankofai/skills-tron/internal/model"
	"github.com/bankofai/skills-tron/internal/token"
	"github.com/bankofai/skills-tron/internal/tron"
)

// LPDecimals is the precision of SunSwap V2 LP tokens.
const LPDecimals uint8 = 18

// V2AddInput is everything PlanV2Add needs. Pair is nil when the factory has
// no pair yet; LookupA is the address token A is listed under in the pair
// (WTRX for TRX).
type V2AddInput struct {
	Network  string
	Owner    string
	TokenA   token.Info
	TokenB   token.Info
	LookupA  common.Address
	Pair     *dex.Pair
	DesiredA *big.Int
	DesiredB *big.Int
	WalletA  Wallet
	WalletB  Wallet
	Slippage float64
	Now      time.Time
}

// PlanV2Add sizes an addLiquidity call against the pair's reserves. Native
// TRX never needs an approval.
func PlanV2Add(in V2AddInput) (model.Plan, error) {
	reserveA, reserveB := new(big.Int), new(big.Int)
	var pool string
	if in.Pair != nil {
		reserveA, reserveB = in.Pair.ReservesFor(in.LookupA)
		pool = tron.FromEVM(in.Pair.Address)
	}

	alloc, err := amm.OptimalAmounts(in.DesiredA, in.DesiredB, reserveA, reserveB)
	if err != nil {
		return model.Plan{}, fmt.Errorf("optimal amounts: %w", err)
	}

	legA, err := newLeg(in.TokenA.Symbol, in.TokenA.Address, in.TokenA.Decimals, in.DesiredA, alloc.Amount0, in.Slippage, &in.WalletA)
	if err != nil {
		return model.Plan{}, err
	}
	legB, err := newLeg(in.TokenB.Symbol, in.TokenB.Address, in.TokenB.Decimals, in.DesiredB, alloc.Amount1, in.Slippage, &in.WalletB)
	if err != nil {
		return model.Plan{}, err
	}

	unused := []model.TokenAmount{}
	unusedA, unusedB := amm.Unused(in.DesiredA, in.DesiredB, alloc)
	if unusedA.Sign() > 0 {
		unused = append(unused, tokenAmount(in.TokenA.Symbol, in.TokenA.Decimals, unusedA))
	}
	if unusedB.Sign() > 0 {
		unused = append(unused, tokenAmount(in.TokenB.Symbol, in.TokenB.Decimals, unusedB))
	}

	c := newChecks()
	c.require(in.TokenA.Symbol, in.TokenA.Decimals, in.WalletA, alloc.Amount0, !in.TokenA.IsTRX())
	c.require(in.TokenB.Symbol, in.TokenB.Decimals, in.WalletB, alloc.Amount1, !in.TokenB.IsTRX())

	return model.Plan{
		Action:        model.ActionAddLiquidity,
		Network:       in.Network,
		Pool:          pool,
		Owner:         in.Owner,
		CreatedAt:     timestamp(in.Now),
		NeedsApproval: c.approvals,
		Shortfalls:    c.shortfalls,
		Ready:         c.ready(),
		Detail: model.V2AddDetail{
			PoolExists: in.Pair != nil,
			TokenA:     legA,
			TokenB:     legB,
			Adjusted:   alloc.Adjusted,
			Unused:     unused,
			Slippage:   in.Slippage,
		},
	}, nil
}

// V2RemoveInput is everything PlanV2Remove needs. LP is the owner's LP
// balance and router allowance.
type V2RemoveInput struct {
	Network  string
	Owner    string
	TokenA   token.Info
	TokenB   token.Info
	LookupA  common.Address
	Pair     *dex.Pair
	Amount   *big.Int
	LP       Wallet
	Slippage float64
	Now      time.Time
}

// PlanV2Remove computes the pro-rata token output of burning Amount LP
// tokens: amount * reserve / totalSupply on each side.
func PlanV2Remove(in V2RemoveInput) (model.Plan, error) {
	if in.Pair == nil {
		return model.Plan{}, fmt.Errorf("remove liquidity: %w", dex.ErrPairNotFound)
	}
	if in.Amount == nil || in.Amount.Sign() <= 0 {
		return model.Plan{}, fmt.Errorf("%w: lp amount must be positive", amm.ErrNegativeAmount)
	}
	if in.LP.Balance != nil && in.LP.Balance.Cmp(in.Amount) < 0 {
		return model.Plan{}, fmt.Errorf("%w of LP: have %s, need %s", ErrInsufficientBalance,
			token.FromRaw(in.LP.Balance, LPDecimals), token.FromRaw(in.Amount, LPDecimals))
	}
	if in.Pair.TotalSupply == nil || in.Pair.TotalSupply.Sign() == 0 {
		return model.Plan{}, fmt.Errorf("%w: pair has no LP supply", amm.ErrDivisionByZero)
	}

	reserveA, reserveB := in.Pair.ReservesFor(in.LookupA)
	expectedA := new(big.Int).Mul(in.Amount, reserveA)
	expectedA.Quo(expectedA, in.Pair.TotalSupply)
	expectedB := new(big.Int).Mul(in.Amount, reserveB)
	expectedB.Quo(expectedB, in.Pair.TotalSupply)

	legA, err := newLeg(in.TokenA.Symbol, in.TokenA.Address, in.TokenA.Decimals, nil, expectedA, in.Slippage, nil)
	if err != nil {
		return model.Plan{}, err
	}
	legB, err := newLeg(in.TokenB.Symbol, in.TokenB.Address, in.TokenB.Decimals, nil, expectedB, in.Slippage, nil)
	if err != nil {
		return model.Plan{}, err
	}

	c := newChecks()
	c.require("LP", LPDecimals, Wallet{Allowance: in.LP.Allowance}, in.Amount, true)

	return model.Plan{
		Action:        model.ActionRemoveLiquidity,
		Network:       in.Network,
		Pool:          tron.FromEVM(in.Pair.Address),
		Owner:         in.Owner,
		CreatedAt:     timestamp(in.Now),
		NeedsApproval: c.approvals,
		Ready:         c.ready(),
		Detail: model.V2RemoveDetail{
			LPBalance:   token.FromRaw(in.LP.Balance, LPDecimals),
			LPToRemove:  token.FromRaw(in.Amount, LPDecimals),
			TotalSupply: token.FromRaw(in.Pair.TotalSupply, LPDecimals),
			ExpectedA:   legA,
			ExpectedB:   legB,
			Slippage:    in.Slippage,
		},
	}, nil
}
