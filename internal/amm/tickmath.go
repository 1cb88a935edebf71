// Package amm implements the fixed-point math behind SunSwap liquidity
// positions: V3 tick math and liquidity amounts in Q64.96, plus the V2
// constant-ratio balancing used when adding liquidity to a pair.
//
// All quantities are *big.Int. Inputs are never mutated.
package amm

import (
	"fmt"
	"math/big"

	"github.com/holiman/uint256"
)

const (
	MinTick int32 = -887272
	MaxTick int32 = 887272
)

var (
	// Q96 is 2^96, the Q64.96 unit.
	Q96 = new(big.Int).Lsh(big.NewInt(1), 96)
	// Q192 is 2^192, the square of Q96.
	Q192 = new(big.Int).Lsh(big.NewInt(1), 192)
	// MaxUint128 is passed to collect/decrease calls to mean "everything available".
	// The math layer passes it through unchanged.
	MaxUint128 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 128), big.NewInt(1))

	// MinSqrtRatio is SqrtPriceAtTick(MinTick).
	MinSqrtRatio = big.NewInt(4295128739)
	// MaxSqrtRatio is SqrtPriceAtTick(MaxTick).
	MaxSqrtRatio = mustParseBig("1461446703485210103287273052203988822378723970342")
)

// tickRatios[i] is 1/sqrt(1.0001)^(2^i) in Q128.128. The values are the
// reference TickMath constants and must not be regenerated.
var tickRatios = [20]*uint256.Int{
	uint256.MustFromHex("0xfffcb933bd6fad37aa2d162d1a594001"),
	uint256.MustFromHex("0xfff97272373d413259a46990580e213a"),
	uint256.MustFromHex("0xfff2e50f5f656932ef12357cf3c7fdcc"),
	uint256.MustFromHex("0xffe5caca7e10e4e61c3624eaa0941cd0"),
	uint256.MustFromHex("0xffcb9843d60f6159c9db58835c926644"),
	uint256.MustFromHex("0xff973b41fa98c081472e6896dfb254c0"),
	uint256.MustFromHex("0xff2ea16466c96a3843ec78b326b52861"),
	uint256.MustFromHex("0xfe5dee046a99a2a811c461f1969c3053"),
	uint256.MustFromHex("0xfcbe86c7900a88aedcffc83b479aa3a4"),
	uint256.MustFromHex("0xf987a7253ac413176f2b074cf7815e54"),
	uint256.MustFromHex("0xf3392b0822b70005940c7a398e4b70f3"),
	uint256.MustFromHex("0xe7159475a2c29b7443b29c7fa6e889d9"),
	uint256.MustFromHex("0xd097f3bdfd2022b8845ad8f792aa5825"),
	uint256.MustFromHex("0xa9f746462d870fdf8a65dc1f90e061e5"),
	uint256.MustFromHex("0x70d869a156d2a1b890bb3df62baf32f7"),
	uint256.MustFromHex("0x31be135f97d08fd981231505542fcfa6"),
	uint256.MustFromHex("0x9aa508b5b7a84e1c677de54f3e99bc9"),
	uint256.MustFromHex("0x5d6af8dedb81196699c329225ee604"),
	uint256.MustFromHex("0x2216e584f5fa1ea926041bedfe98"),
	uint256.MustFromHex("0x48a170391f7dc42444e8fa2"),
}

var (
	q128       = uint256.MustFromHex("0x100000000000000000000000000000000")
	maxUint256 = new(uint256.Int).SetAllOne()
)

// SqrtPriceAtTick returns sqrt(1.0001^tick) as a Q64.96 value.
func SqrtPriceAtTick(tick int32) (*big.Int, error) {
	if tick < MinTick || tick > MaxTick {
		return nil, fmt.Errorf("%w: %d not in [%d, %d]", ErrTickOutOfBounds, tick, MinTick, MaxTick)
	}

	absTick := uint32(tick)
	if tick < 0 {
		absTick = uint32(-tick)
	}

	ratio := new(uint256.Int).Set(q128)
	if absTick&0x1 != 0 {
		ratio.Set(tickRatios[0])
	}
	for i := 1; i < len(tickRatios); i++ {
		if absTick&(1<<uint(i)) != 0 {
			ratio.Mul(ratio, tickRatios[i])
			ratio.Rsh(ratio, 128)
		}
	}

	// The table encodes negative powers, so positive ticks take the reciprocal.
	if tick > 0 {
		ratio.Div(maxUint256, ratio)
	}

	// Q128.128 -> Q64.96, rounding up so the result is never below the true price.
	roundUp := ratio.Uint64()&0xffffffff != 0
	ratio.Rsh(ratio, 32)
	if roundUp {
		ratio.AddUint64(ratio, 1)
	}
	return ratio.ToBig(), nil
}

// TickAtSqrtPrice returns the greatest tick whose sqrt price is <= sqrtPriceX96.
func TickAtSqrtPrice(sqrtPriceX96 *big.Int) (int32, error) {
	if sqrtPriceX96 == nil || sqrtPriceX96.Cmp(MinSqrtRatio) < 0 || sqrtPriceX96.Cmp(MaxSqrtRatio) >= 0 {
		return 0, fmt.Errorf("%w: %v", ErrSqrtPriceOutOfBounds, sqrtPriceX96)
	}

	lo, hi := MinTick, MaxTick
	for lo < hi {
		mid := lo + (hi-lo+1)/2
		ratio, err := SqrtPriceAtTick(mid)
		if err != nil {
			return 0, err
		}
		if ratio.Cmp(sqrtPriceX96) <= 0 {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return lo, nil
}

// NearestUsableTick rounds tick to the nearest multiple of spacing, halves
// rounding toward positive infinity, and clamps the result to the tick bounds.
func NearestUsableTick(tick, spacing int32) (int32, error) {
	if spacing <= 0 {
		return 0, fmt.Errorf("%w: %d", ErrInvalidTickSpacing, spacing)
	}

	t, s := int64(tick), int64(spacing)
	rounded := floorDiv(2*t+s, 2*s) * s
	switch {
	case rounded < int64(MinTick):
		return MinTick, nil
	case rounded > int64(MaxTick):
		return MaxTick, nil
	default:
		return int32(rounded), nil
	}
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// InitialSqrtPriceFromAmounts derives the starting price of a new pool from
// the first deposit: sqrt(amount1 * 10^decimals0 * 2^192 / (amount0 * 10^decimals1)).
func InitialSqrtPriceFromAmounts(amount0 *big.Int, decimals0 uint8, amount1 *big.Int, decimals1 uint8) (*big.Int, error) {
	if amount0 == nil || amount1 == nil {
		return nil, fmt.Errorf("%w: missing amount", ErrDivisionByZero)
	}
	if amount0.Sign() < 0 || amount1.Sign() < 0 {
		return nil, fmt.Errorf("%w: initial deposit", ErrNegativeAmount)
	}

	den := new(big.Int).Mul(amount0, pow10(decimals1))
	if den.Sign() == 0 {
		return nil, fmt.Errorf("%w: cannot price a pool with zero amount0", ErrDivisionByZero)
	}

	num := new(big.Int).Mul(amount1, pow10(decimals0))
	num.Mul(num, Q192)
	return Isqrt(num.Quo(num, den)), nil
}

// Isqrt returns floor(sqrt(n)) by Newton iteration, starting from n and
// stopping once the estimate no longer decreases. Negative n returns nil.
func Isqrt(n *big.Int) *big.Int {
	if n == nil || n.Sign() < 0 {
		return nil
	}
	if n.Sign() == 0 {
		return new(big.Int)
	}

	one := big.NewInt(1)
	x := new(big.Int).Set(n)
	y := new(big.Int).Add(x, one)
	y.Rsh(y, 1)
	for y.Cmp(x) < 0 {
		x.Set(y)
		y.Quo(n, x)
		y.Add(y, x)
		y.Rsh(y, 1)
	}
	return x
}

func pow10(decimals uint8) *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
}

func mustParseBig(s string) *big.Int {
	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		panic("amm: bad constant " + s)
	}
	return n
}
