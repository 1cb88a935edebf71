package dex

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/bankofai/skills-tron/internal/amm"
)

// ErrPositionNotFound is returned when no owned position matches a lookup.
var ErrPositionNotFound = errors.New("position not found")

// Position is a V3 NFT position as reported by the position manager.
type Position struct {
	TokenID     *big.Int
	Token0      common.Address
	Token1      common.Address
	Fee         uint32
	TickLower   int32
	TickUpper   int32
	Liquidity   *big.Int
	TokensOwed0 *big.Int
	TokensOwed1 *big.Int
}

// Matches reports whether the position is the given pool range.
func (p Position) Matches(token0, token1 common.Address, fee uint32, tickLower, tickUpper int32) bool {
	return p.Token0 == token0 && p.Token1 == token1 && p.Fee == fee &&
		p.TickLower == tickLower && p.TickUpper == tickUpper
}

// collectParams mirrors INonfungiblePositionManager.CollectParams.
type collectParams struct {
	TokenId    *big.Int
	Recipient  common.Address
	Amount0Max *big.Int
	Amount1Max *big.Int
}

// FetchPosition reads one position by token id.
func FetchPosition(ctx context.Context, caller Caller, manager common.Address, tokenID *big.Int) (Position, error) {
	pmABI, err := PositionManagerABI()
	if err != nil {
		return Position{}, fmt.Errorf("parse position manager abi: %w", err)
	}
	values, err := callMethod(ctx, caller, manager, common.Address{}, pmABI, "positions", tokenID)
	if err != nil {
		return Position{}, err
	}
	if len(values) < 12 {
		return Position{}, fmt.Errorf("positions: expected 12 values, got %d", len(values))
	}

	pos := Position{TokenID: new(big.Int).Set(tokenID)}
	if pos.Token0, err = asAddress(values[2]); err != nil {
		return Position{}, fmt.Errorf("token0: %w", err)
	}
	if pos.Token1, err = asAddress(values[3]); err != nil {
		return Position{}, fmt.Errorf("token1: %w", err)
	}
	feeInt, err := asBigInt(values[4])
	if err != nil {
		return Position{}, fmt.Errorf("fee: %w", err)
	}
	pos.Fee = uint32(feeInt.Uint64())

	for i, dst := range []*int32{&pos.TickLower, &pos.TickUpper} {
		tickInt, err := asBigInt(values[5+i])
		if err != nil {
			return Position{}, fmt.Errorf("tick: %w", err)
		}
		if *dst, err = int24FromBig(tickInt); err != nil {
			return Position{}, fmt.Errorf("tick: %w", err)
		}
	}

	if pos.Liquidity, err = asBigInt(values[7]); err != nil {
		return Position{}, fmt.Errorf("liquidity: %w", err)
	}
	if pos.TokensOwed0, err = asBigInt(values[10]); err != nil {
		return Position{}, fmt.Errorf("tokens owed0: %w", err)
	}
	if pos.TokensOwed1, err = asBigInt(values[11]); err != nil {
		return Position{}, fmt.Errorf("tokens owed1: %w", err)
	}
	return pos, nil
}

// maxPreallocPositions bounds the slice capacity taken from an on-chain count.
const maxPreallocPositions = 64

// ListPositions enumerates every position NFT held by owner.
func ListPositions(ctx context.Context, caller Caller, manager, owner common.Address, logger *zap.Logger) ([]Position, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	pmABI, err := PositionManagerABI()
	if err != nil {
		return nil, fmt.Errorf("parse position manager abi: %w", err)
	}

	values, err := callMethod(ctx, caller, manager, common.Address{}, pmABI, "balanceOf", owner)
	if err != nil {
		return nil, err
	}
	countInt, err := asBigInt(values[0])
	if err != nil {
		return nil, fmt.Errorf("position count: %w", err)
	}
	if countInt.Sign() < 0 || !countInt.IsInt64() {
		return nil, fmt.Errorf("position count %s out of range", countInt)
	}
	count := countInt.Int64()
	logger.Debug("positions owned", zap.String("owner", owner.Hex()), zap.Int64("count", count))

	positions := make([]Position, 0, min(count, maxPreallocPositions))
	for i := int64(0); i < count; i++ {
		values, err := callMethod(ctx, caller, manager, common.Address{}, pmABI, "tokenOfOwnerByIndex", owner, big.NewInt(i))
		if err != nil {
			return nil, err
		}
		tokenID, err := asBigInt(values[0])
		if err != nil {
			return nil, fmt.Errorf("token id: %w", err)
		}
		pos, err := FetchPosition(ctx, caller, manager, tokenID)
		if err != nil {
			return nil, fmt.Errorf("position %s: %w", tokenID, err)
		}
		positions = append(positions, pos)
	}
	return positions, nil
}

// FindPosition returns the first owned position on the given pool range.
func FindPosition(ctx context.Context, caller Caller, manager, owner, token0, token1 common.Address, fee uint32, tickLower, tickUpper int32, logger *zap.Logger) (Position, error) {
	positions, err := ListPositions(ctx, caller, manager, owner, logger)
	if err != nil {
		return Position{}, err
	}
	for _, pos := range positions {
		if pos.Matches(token0, token1, fee, tickLower, tickUpper) {
			return pos, nil
		}
	}
	return Position{}, ErrPositionNotFound
}

// EstimateFees simulates collect from owner with both maxima set to
// MaxUint128, which returns everything the position could claim now.
func EstimateFees(ctx context.Context, caller Caller, manager common.Address, tokenID *big.Int, owner common.Address) (*big.Int, *big.Int, error) {
	pmABI, err := PositionManagerABI()
	if err != nil {
		return nil, nil, fmt.Errorf("parse position manager abi: %w", err)
	}
	params := collectParams{
		TokenId:    tokenID,
		Recipient:  owner,
		Amount0Max: amm.MaxUint128,
		Amount1Max: amm.MaxUint128,
	}
	values, err := callMethod(ctx, caller, manager, owner, pmABI, "collect", params)
	if err != nil {
		return nil, nil, err
	}
	if len(values) < 2 {
		return nil, nil, fmt.Errorf("collect: expected 2 values, got %d", len(values))
	}
	fee0, err := asBigInt(values[0])
	if err != nil {
		return nil, nil, fmt.Errorf("fee0: %w", err)
	}
	fee1, err := asBigInt(values[1])
	if err != nil {
		return nil, nil, fmt.Errorf("fee1: %w", err)
	}
	return fee0, fee1, nil
}
