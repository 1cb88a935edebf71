package dex

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
)

// BalanceOf returns owner's balance of token. The zero address stands for
// native TRX and is read with eth_getBalance.
func BalanceOf(ctx context.Context, caller Caller, token, owner common.Address) (*big.Int, error) {
	if caller == nil {
		return nil, errNilCaller
	}
	if token == (common.Address{}) {
		balance, err := caller.BalanceAt(ctx, owner, nil)
		if err != nil {
			return nil, fmt.Errorf("trx balance: %w", err)
		}
		return balance, nil
	}

	parsed, err := TRC20ABI()
	if err != nil {
		return nil, fmt.Errorf("parse trc20 abi: %w", err)
	}
	values, err := callMethod(ctx, caller, token, common.Address{}, parsed, "balanceOf", owner)
	if err != nil {
		return nil, err
	}
	return asBigInt(values[0])
}

// Allowance returns how much spender may pull from owner. Native TRX needs
// no approval and reports the maximum uint256.
func Allowance(ctx context.Context, caller Caller, token, owner, spender common.Address) (*big.Int, error) {
	if token == (common.Address{}) {
		return new(big.Int).Set(math.MaxBig256), nil
	}

	parsed, err := TRC20ABI()
	if err != nil {
		return nil, fmt.Errorf("parse trc20 abi: %w", err)
	}
	values, err := callMethod(ctx, caller, token, common.Address{}, parsed, "allowance", owner, spender)
	if err != nil {
		return nil, err
	}
	return asBigInt(values[0])
}
