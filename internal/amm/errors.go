package amm

import "errors"

var (
	// ErrTickOutOfBounds is returned for ticks outside [MinTick, MaxTick].
	ErrTickOutOfBounds = errors.New("tick out of bounds")
	// ErrInvalidTickSpacing is returned for unknown fee tiers and misaligned ticks.
	ErrInvalidTickSpacing = errors.New("invalid tick spacing")
	// ErrDivisionByZero is returned when a price would need a zero denominator.
	ErrDivisionByZero = errors.New("division by zero")
	// ErrInvalidRange is returned when the lower bound is not below the upper bound.
	ErrInvalidRange = errors.New("invalid tick range")
	// ErrNegativeAmount is returned for negative amounts, reserves or liquidity.
	ErrNegativeAmount = errors.New("negative amount")
	// ErrSqrtPriceOutOfBounds is returned when a sqrt price has no tick.
	ErrSqrtPriceOutOfBounds = errors.New("sqrt price out of bounds")
)
