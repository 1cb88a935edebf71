package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/big"

	"github.com/bankofai/skills-tron/internal/amm"
	"github.com/bankofai/skills-tron/internal/dex"
	"github.com/bankofai/skills-tron/internal/planner"
	"github.com/bankofai/skills-tron/internal/token"
	"github.com/bankofai/skills-tron/internal/tron"
)

var errorCodes = []struct {
	err  error
	code string
}{
	{amm.ErrTickOutOfBounds, "tick_out_of_bounds"},
	{amm.ErrInvalidTickSpacing, "invalid_tick_spacing"},
	{amm.ErrDivisionByZero, "division_by_zero"},
	{amm.ErrInvalidRange, "invalid_range"},
	{amm.ErrNegativeAmount, "negative_amount"},
	{amm.ErrSqrtPriceOutOfBounds, "sqrt_price_out_of_bounds"},
	{tron.ErrInvalidAddress, "invalid_address"},
	{token.ErrUnknownToken, "unknown_token"},
	{token.ErrIdenticalTokens, "identical_tokens"},
	{dex.ErrPairNotFound, "pair_not_found"},
	{dex.ErrPoolNotFound, "pool_not_found"},
	{dex.ErrPositionNotFound, "position_not_found"},
	{planner.ErrInsufficientBalance, "insufficient_balance"},
	{planner.ErrNoLiquidity, "no_liquidity"},
	{planner.ErrInvalidPercent, "invalid_percent"},
	{planner.ErrMissingState, "missing_state"},
}

// errorCode maps an error chain to a stable machine-readable code.
func errorCode(err error) string {
	for _, candidate := range errorCodes {
		if errors.Is(err, candidate.err) {
			return candidate.code
		}
	}
	return "error"
}

func writeError(w io.Writer, err error) {
	_ = writeJSON(w, map[string]string{"error": err.Error(), "code": errorCode(err)})
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func parseBig(name, value string) (*big.Int, error) {
	out, ok := new(big.Int).SetString(value, 10)
	if !ok {
		return nil, fmt.Errorf("invalid %s %q", name, value)
	}
	return out, nil
}

func redactDSN(dsn string) string {
	if dsn == "" {
		return dsn
	}
	return "***"
}
