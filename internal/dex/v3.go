package dex

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/bankofai/skills-tron/internal/model"
)

// ErrPoolNotFound is returned when the V3 factory has no pool for a token pair and fee.
var ErrPoolNotFound = errors.New("v3 pool not found")

// Pool is a V3 pool's current state.
type Pool struct {
	Address      common.Address
	Token0       common.Address
	Token1       common.Address
	Fee          uint32
	TickSpacing  int32
	SqrtPriceX96 *big.Int
	Tick         int32
	Liquidity    *big.Int
}

// FetchPool resolves the pool through the factory and loads its state.
func FetchPool(ctx context.Context, caller Caller, factory, token0, token1 common.Address, fee uint32, cache *PoolMetaCache, logger *zap.Logger) (Pool, error) {
	factoryABI, err := V3FactoryABI()
	if err != nil {
		return Pool{}, fmt.Errorf("parse factory abi: %w", err)
	}
	values, err := callMethod(ctx, caller, factory, common.Address{}, factoryABI, "getPool", token0, token1, new(big.Int).SetUint64(uint64(fee)))
	if err != nil {
		return Pool{}, err
	}
	poolAddr, err := asAddress(values[0])
	if err != nil {
		return Pool{}, fmt.Errorf("pool address: %w", err)
	}
	if poolAddr == (common.Address{}) {
		return Pool{}, ErrPoolNotFound
	}
	return FetchPoolAt(ctx, caller, poolAddr, cache, logger)
}

// FetchPoolAt reads slot0 and liquidity from a pool. Token addresses, fee
// and spacing never change, so they are cached per pool.
func FetchPoolAt(ctx context.Context, caller Caller, poolAddr common.Address, cache *PoolMetaCache, logger *zap.Logger) (Pool, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	poolABI, err := V3PoolABI()
	if err != nil {
		return Pool{}, fmt.Errorf("parse pool abi: %w", err)
	}

	meta, ok := cache.Get(poolAddr)
	if !ok {
		meta, err = fetchPoolMeta(ctx, caller, poolAddr, poolABI)
		if err != nil {
			return Pool{}, err
		}
		cache.Set(poolAddr, meta)
	} else {
		logger.Debug("pool meta cache hit", zap.String("pool", poolAddr.Hex()))
	}

	pool := Pool{
		Address:     poolAddr,
		Token0:      common.HexToAddress(meta.Token0),
		Token1:      common.HexToAddress(meta.Token1),
		Fee:         meta.Fee,
		TickSpacing: meta.TickSpacing,
	}

	values, err := callMethod(ctx, caller, poolAddr, common.Address{}, poolABI, "slot0")
	if err != nil {
		return Pool{}, err
	}
	if len(values) < 2 {
		return Pool{}, fmt.Errorf("slot0: expected 7 values, got %d", len(values))
	}
	if pool.SqrtPriceX96, err = asBigInt(values[0]); err != nil {
		return Pool{}, fmt.Errorf("sqrt price: %w", err)
	}
	tickInt, err := asBigInt(values[1])
	if err != nil {
		return Pool{}, fmt.Errorf("tick: %w", err)
	}
	if pool.Tick, err = int24FromBig(tickInt); err != nil {
		return Pool{}, fmt.Errorf("tick: %w", err)
	}

	values, err = callMethod(ctx, caller, poolAddr, common.Address{}, poolABI, "liquidity")
	if err != nil {
		return Pool{}, err
	}
	if pool.Liquidity, err = asBigInt(values[0]); err != nil {
		return Pool{}, fmt.Errorf("liquidity: %w", err)
	}
	return pool, nil
}

func fetchPoolMeta(ctx context.Context, caller Caller, poolAddr common.Address, poolABI abi.ABI) (model.PoolMeta, error) {
	var meta model.PoolMeta

	values, err := callMethod(ctx, caller, poolAddr, common.Address{}, poolABI, "token0")
	if err != nil {
		return meta, err
	}
	token0, err := asAddress(values[0])
	if err != nil {
		return meta, fmt.Errorf("token0: %w", err)
	}

	values, err = callMethod(ctx, caller, poolAddr, common.Address{}, poolABI, "token1")
	if err != nil {
		return meta, err
	}
	token1, err := asAddress(values[0])
	if err != nil {
		return meta, fmt.Errorf("token1: %w", err)
	}

	values, err = callMethod(ctx, caller, poolAddr, common.Address{}, poolABI, "fee")
	if err != nil {
		return meta, err
	}
	feeInt, err := asBigInt(values[0])
	if err != nil {
		return meta, fmt.Errorf("fee: %w", err)
	}

	values, err = callMethod(ctx, caller, poolAddr, common.Address{}, poolABI, "tickSpacing")
	if err != nil {
		return meta, err
	}
	spacingInt, err := asBigInt(values[0])
	if err != nil {
		return meta, fmt.Errorf("tick spacing: %w", err)
	}
	spacing, err := int24FromBig(spacingInt)
	if err != nil {
		return meta, fmt.Errorf("tick spacing: %w", err)
	}

	return model.PoolMeta{
		Token0:      token0.Hex(),
		Token1:      token1.Hex(),
		Fee:         uint32(feeInt.Uint64()),
		TickSpacing: spacing,
	}, nil
}
