package dex

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// ErrPairNotFound is returned when the V2 factory has no pair for two tokens.
var ErrPairNotFound = errors.New("v2 pair not found")

// Pair is a V2 pair's state in on-chain token order.
type Pair struct {
	Address     common.Address
	Token0      common.Address
	Token1      common.Address
	Reserve0    *big.Int
	Reserve1    *big.Int
	TotalSupply *big.Int
}

// ReservesFor returns the reserves oriented so the first value belongs to tokenA.
func (p Pair) ReservesFor(tokenA common.Address) (*big.Int, *big.Int) {
	if p.Token0 == tokenA {
		return p.Reserve0, p.Reserve1
	}
	return p.Reserve1, p.Reserve0
}

// FetchPair resolves the pair for tokenA/tokenB through the factory and reads
// its reserves and LP supply.
func FetchPair(ctx context.Context, caller Caller, factory, tokenA, tokenB common.Address) (Pair, error) {
	factoryABI, err := V2FactoryABI()
	if err != nil {
		return Pair{}, fmt.Errorf("parse factory abi: %w", err)
	}
	values, err := callMethod(ctx, caller, factory, common.Address{}, factoryABI, "getPair", tokenA, tokenB)
	if err != nil {
		return Pair{}, err
	}
	pairAddr, err := asAddress(values[0])
	if err != nil {
		return Pair{}, fmt.Errorf("pair address: %w", err)
	}
	if pairAddr == (common.Address{}) {
		return Pair{}, ErrPairNotFound
	}
	return FetchPairAt(ctx, caller, pairAddr)
}

// FetchPairAt reads a pair contract directly.
func FetchPairAt(ctx context.Context, caller Caller, pairAddr common.Address) (Pair, error) {
	pairABI, err := V2PairABI()
	if err != nil {
		return Pair{}, fmt.Errorf("parse pair abi: %w", err)
	}
	pair := Pair{Address: pairAddr}

	values, err := callMethod(ctx, caller, pairAddr, common.Address{}, pairABI, "getReserves")
	if err != nil {
		return Pair{}, err
	}
	if len(values) < 2 {
		return Pair{}, fmt.Errorf("getReserves: expected 3 values, got %d", len(values))
	}
	if pair.Reserve0, err = asBigInt(values[0]); err != nil {
		return Pair{}, fmt.Errorf("reserve0: %w", err)
	}
	if pair.Reserve1, err = asBigInt(values[1]); err != nil {
		return Pair{}, fmt.Errorf("reserve1: %w", err)
	}

	for _, field := range []struct {
		method string
		dst    *common.Address
	}{{"token0", &pair.Token0}, {"token1", &pair.Token1}} {
		values, err := callMethod(ctx, caller, pairAddr, common.Address{}, pairABI, field.method)
		if err != nil {
			return Pair{}, err
		}
		if *field.dst, err = asAddress(values[0]); err != nil {
			return Pair{}, fmt.Errorf("%s: %w", field.method, err)
		}
	}

	values, err = callMethod(ctx, caller, pairAddr, common.Address{}, pairABI, "totalSupply")
	if err != nil {
		return Pair{}, err
	}
	if pair.TotalSupply, err = asBigInt(values[0]); err != nil {
		return Pair{}, fmt.Errorf("total supply: %w", err)
	}
	return pair, nil
}
