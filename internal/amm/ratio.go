package amm

import (
	"fmt"
	"math/big"
)

// Allocation is the pair of amounts a V2 add-liquidity call will actually spend.
type Allocation struct {
	Amount0  *big.Int
	Amount1  *big.Int
	Adjusted bool
}

// OptimalAmounts keeps the pool ratio the way the V2 router does: desired0 is
// kept whenever desired1 can cover it, otherwise desired1 is kept and side 0
// is trimmed. An empty pool takes the desired amounts as the initial price.
func OptimalAmounts(desired0, desired1, reserve0, reserve1 *big.Int) (Allocation, error) {
	for _, v := range []struct {
		name string
		val  *big.Int
	}{{"desired0", desired0}, {"desired1", desired1}, {"reserve0", reserve0}, {"reserve1", reserve1}} {
		if err := checkNonNegative(v.name, v.val); err != nil {
			return Allocation{}, err
		}
	}

	if reserve0.Sign() == 0 && reserve1.Sign() == 0 {
		return Allocation{Amount0: new(big.Int).Set(desired0), Amount1: new(big.Int).Set(desired1)}, nil
	}
	// A drained reserve1 still divides by reserve0 and trims side 1 to zero.
	if reserve0.Sign() == 0 {
		return Allocation{}, fmt.Errorf("%w: reserve0 is zero with reserve1 %s", ErrDivisionByZero, reserve1)
	}

	optimal1 := new(big.Int).Mul(desired0, reserve1)
	optimal1.Quo(optimal1, reserve0)
	if optimal1.Cmp(desired1) <= 0 {
		return Allocation{
			Amount0:  new(big.Int).Set(desired0),
			Amount1:  optimal1,
			Adjusted: optimal1.Cmp(desired1) != 0,
		}, nil
	}

	optimal0 := new(big.Int).Mul(desired1, reserve0)
	optimal0.Quo(optimal0, reserve1)
	return Allocation{
		Amount0:  optimal0,
		Amount1:  new(big.Int).Set(desired1),
		Adjusted: optimal0.Cmp(desired0) != 0,
	}, nil
}

// Unused returns desired minus actual for each side, never below zero.
func Unused(desired0, desired1 *big.Int, alloc Allocation) (*big.Int, *big.Int) {
	return leftover(desired0, alloc.Amount0), leftover(desired1, alloc.Amount1)
}

func leftover(desired, actual *big.Int) *big.Int {
	out := new(big.Int).Sub(desired, actual)
	if out.Sign() < 0 {
		return out.SetInt64(0)
	}
	return out
}
