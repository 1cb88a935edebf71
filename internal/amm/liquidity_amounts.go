package amm

import (
	"fmt"
	"math/big"
)

// LiquidityForAmount0 computes liquidity for amount0 spread over [sqrtA, sqrtB]:
// amount0 * sqrtA * sqrtB / Q96 / (sqrtB - sqrtA).
func LiquidityForAmount0(sqrtA, sqrtB, amount0 *big.Int) (*big.Int, error) {
	lo, hi, err := orderBounds(sqrtA, sqrtB)
	if err != nil {
		return nil, err
	}
	if err := checkNonNegative("amount0", amount0); err != nil {
		return nil, err
	}
	num := new(big.Int).Mul(amount0, lo)
	num.Mul(num, hi)
	num.Quo(num, Q96)
	return num.Quo(num, new(big.Int).Sub(hi, lo)), nil
}

// LiquidityForAmount1 computes liquidity for amount1 spread over [sqrtA, sqrtB]:
// amount1 * Q96 / (sqrtB - sqrtA).
func LiquidityForAmount1(sqrtA, sqrtB, amount1 *big.Int) (*big.Int, error) {
	lo, hi, err := orderBounds(sqrtA, sqrtB)
	if err != nil {
		return nil, err
	}
	if err := checkNonNegative("amount1", amount1); err != nil {
		return nil, err
	}
	num := new(big.Int).Mul(amount1, Q96)
	return num.Quo(num, new(big.Int).Sub(hi, lo)), nil
}

// LiquidityForAmounts returns the largest liquidity that amount0 and amount1
// can back at the current price. Bounds may be given in either order.
func LiquidityForAmounts(sqrtPrice, sqrtA, sqrtB, amount0, amount1 *big.Int) (*big.Int, error) {
	lo, hi, err := orderBounds(sqrtA, sqrtB)
	if err != nil {
		return nil, err
	}
	if err := checkNonNegative("sqrt price", sqrtPrice); err != nil {
		return nil, err
	}

	switch {
	case sqrtPrice.Cmp(lo) <= 0:
		return LiquidityForAmount0(lo, hi, amount0)
	case sqrtPrice.Cmp(hi) < 0:
		liq0, err := LiquidityForAmount0(sqrtPrice, hi, amount0)
		if err != nil {
			return nil, err
		}
		liq1, err := LiquidityForAmount1(lo, sqrtPrice, amount1)
		if err != nil {
			return nil, err
		}
		if liq0.Cmp(liq1) < 0 {
			return liq0, nil
		}
		return liq1, nil
	default:
		return LiquidityForAmount1(lo, hi, amount1)
	}
}

// Amount0ForLiquidity is liquidity * Q96 * (sqrtB - sqrtA) / (sqrtB * sqrtA), floored.
func Amount0ForLiquidity(sqrtA, sqrtB, liquidity *big.Int) (*big.Int, error) {
	lo, hi, err := orderBounds(sqrtA, sqrtB)
	if err != nil {
		return nil, err
	}
	if err := checkNonNegative("liquidity", liquidity); err != nil {
		return nil, err
	}
	if lo.Sign() == 0 {
		return nil, fmt.Errorf("%w: zero lower sqrt price", ErrDivisionByZero)
	}
	num := new(big.Int).Mul(liquidity, Q96)
	num.Mul(num, new(big.Int).Sub(hi, lo))
	return num.Quo(num, new(big.Int).Mul(hi, lo)), nil
}

// Amount1ForLiquidity is liquidity * (sqrtB - sqrtA) / Q96, floored.
func Amount1ForLiquidity(sqrtA, sqrtB, liquidity *big.Int) (*big.Int, error) {
	lo, hi, err := orderBounds(sqrtA, sqrtB)
	if err != nil {
		return nil, err
	}
	if err := checkNonNegative("liquidity", liquidity); err != nil {
		return nil, err
	}
	num := new(big.Int).Mul(liquidity, new(big.Int).Sub(hi, lo))
	return num.Quo(num, Q96), nil
}

// AmountsForLiquidity returns the token amounts a position of the given
// liquidity represents at the current price. Below the range the position is
// all token0, above it all token1.
func AmountsForLiquidity(sqrtPrice, sqrtA, sqrtB, liquidity *big.Int) (*big.Int, *big.Int, error) {
	lo, hi, err := orderBounds(sqrtA, sqrtB)
	if err != nil {
		return nil, nil, err
	}
	if err := checkNonNegative("sqrt price", sqrtPrice); err != nil {
		return nil, nil, err
	}

	amount0, amount1 := new(big.Int), new(big.Int)
	switch {
	case sqrtPrice.Cmp(lo) <= 0:
		amount0, err = Amount0ForLiquidity(lo, hi, liquidity)
	case sqrtPrice.Cmp(hi) < 0:
		amount0, err = Amount0ForLiquidity(sqrtPrice, hi, liquidity)
		if err == nil {
			amount1, err = Amount1ForLiquidity(lo, sqrtPrice, liquidity)
		}
	default:
		amount1, err = Amount1ForLiquidity(lo, hi, liquidity)
	}
	if err != nil {
		return nil, nil, err
	}
	return amount0, amount1, nil
}

func orderBounds(sqrtA, sqrtB *big.Int) (*big.Int, *big.Int, error) {
	if sqrtA == nil || sqrtB == nil {
		return nil, nil, fmt.Errorf("%w: missing sqrt price bound", ErrInvalidRange)
	}
	if sqrtA.Sign() < 0 || sqrtB.Sign() < 0 {
		return nil, nil, fmt.Errorf("%w: sqrt price bound", ErrNegativeAmount)
	}
	switch sqrtA.Cmp(sqrtB) {
	case 0:
		return nil, nil, fmt.Errorf("%w: empty sqrt price range %s", ErrInvalidRange, sqrtA)
	case 1:
		return sqrtB, sqrtA, nil
	default:
		return sqrtA, sqrtB, nil
	}
}

func checkNonNegative(name string, v *big.Int) error {
	if v == nil {
		return fmt.Errorf("%w: %s is missing", ErrNegativeAmount, name)
	}
	if v.Sign() < 0 {
		return fmt.Errorf("%w: %s %s", ErrNegativeAmount, name, v)
	}
	return nil
}
