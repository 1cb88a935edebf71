// Package planner turns pool state read from chain into read-only liquidity
// plans. Nothing here talks to the network: callers fetch pairs, pools,
// positions and wallet state through package dex and pass them in.
package planner

import (
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/bankofai/skills-tron/internal/model"
	"github.com/bankofai/skills-tron/internal/token"
)

var (
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrNoLiquidity         = errors.New("position has no liquidity")
	ErrInvalidPercent      = errors.New("percent must be between 1 and 100")
	ErrMissingState        = errors.New("missing chain state")
)

// Wallet is the owner's balance of one token and its allowance towards the
// router or position manager. Nil fields are treated as unknown and skipped.
type Wallet struct {
	Balance   *big.Int
	Allowance *big.Int
}

// checks collects approval and balance findings while a plan is built.
type checks struct {
	approvals  []string
	shortfalls []string
}

func newChecks() *checks {
	return &checks{approvals: []string{}}
}

func (c *checks) require(symbol string, decimals uint8, w Wallet, amount *big.Int, approvable bool) {
	if amount == nil || amount.Sign() == 0 {
		return
	}
	if w.Balance != nil && w.Balance.Cmp(amount) < 0 {
		c.shortfalls = append(c.shortfalls, fmt.Sprintf("%s: have %s, need %s",
			symbol, token.FromRaw(w.Balance, decimals), token.FromRaw(amount, decimals)))
	}
	if approvable && w.Allowance != nil && w.Allowance.Cmp(amount) < 0 {
		c.approvals = append(c.approvals, symbol)
	}
}

func (c *checks) ready() bool {
	return len(c.approvals) == 0 && len(c.shortfalls) == 0
}

// newLeg renders one side of a plan. desired and wallet are optional.
func newLeg(symbol, address string, decimals uint8, desired, amount *big.Int, slippage float64, wallet *Wallet) (model.Leg, error) {
	minimum, err := token.ApplySlippage(amount, slippage)
	if err != nil {
		return model.Leg{}, err
	}
	leg := model.Leg{
		Symbol:     symbol,
		Address:    address,
		Amount:     token.FromRaw(amount, decimals),
		AmountRaw:  rawString(amount),
		Minimum:    token.FromRaw(minimum, decimals),
		MinimumRaw: minimum.String(),
	}
	if desired != nil {
		leg.Desired = token.FromRaw(desired, decimals)
	}
	if wallet != nil && wallet.Balance != nil {
		leg.Balance = token.FromRaw(wallet.Balance, decimals)
	}
	return leg, nil
}

func tokenAmount(symbol string, decimals uint8, raw *big.Int) model.TokenAmount {
	return model.TokenAmount{Symbol: symbol, Amount: token.FromRaw(raw, decimals), Raw: rawString(raw)}
}

func rawString(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}

func timestamp(now time.Time) string {
	if now.IsZero() {
		now = time.Now()
	}
	return now.UTC().Format(time.RFC3339)
}
