package amm

import (
	"fmt"
	"sort"
)

var feeTickSpacing = map[uint32]int32{
	100:   1,
	500:   10,
	3000:  60,
	10000: 200,
}

var feeLabels = map[uint32]string{
	100:   "0.01%",
	500:   "0.05%",
	3000:  "0.3%",
	10000: "1%",
}

// TickSpacingForFee maps a V3 fee tier (hundredths of a bip) to its tick spacing.
func TickSpacingForFee(fee uint32) (int32, error) {
	spacing, ok := feeTickSpacing[fee]
	if !ok {
		return 0, fmt.Errorf("%w: unsupported fee tier %d", ErrInvalidTickSpacing, fee)
	}
	return spacing, nil
}

// FeeLabel returns the percentage label of a fee tier, or the raw number if unknown.
func FeeLabel(fee uint32) string {
	if label, ok := feeLabels[fee]; ok {
		return label
	}
	return fmt.Sprintf("%d", fee)
}

// FeeTiers returns the supported fee tiers in ascending order.
func FeeTiers() []uint32 {
	out := make([]uint32, 0, len(feeTickSpacing))
	for fee := range feeTickSpacing {
		out = append(out, fee)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// ValidateRange checks a position's tick bounds before any liquidity math runs.
func ValidateRange(lower, upper, spacing int32) error {
	if spacing <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidTickSpacing, spacing)
	}
	for _, tick := range []int32{lower, upper} {
		if tick < MinTick || tick > MaxTick {
			return fmt.Errorf("%w: %d not in [%d, %d]", ErrTickOutOfBounds, tick, MinTick, MaxTick)
		}
	}
	if lower >= upper {
		return fmt.Errorf("%w: lower %d must be below upper %d", ErrInvalidRange, lower, upper)
	}
	if lower%spacing != 0 || upper%spacing != 0 {
		return fmt.Errorf("%w: ticks %d,%d not multiples of %d", ErrInvalidTickSpacing, lower, upper, spacing)
	}
	return nil
}
