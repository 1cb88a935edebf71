package token

import (
	"fmt"
	"math"
	"math/big"
	"strings"
)

// ToRaw converts a human decimal string ("1.5") to the token's smallest unit.
// Fraction digits beyond decimals are truncated.
func ToRaw(amount string, decimals uint8) (*big.Int, error) {
	amount = strings.TrimSpace(amount)
	whole, frac, _ := strings.Cut(amount, ".")
	if whole == "" {
		whole = "0"
	}
	if !isDigits(whole) || (frac != "" && !isDigits(frac)) || amount == "" || amount == "." {
		return nil, fmt.Errorf("invalid amount %q", amount)
	}

	if len(frac) > int(decimals) {
		frac = frac[:decimals]
	} else {
		frac += strings.Repeat("0", int(decimals)-len(frac))
	}

	raw, ok := new(big.Int).SetString(whole+frac, 10)
	if !ok {
		return nil, fmt.Errorf("invalid amount %q", amount)
	}
	return raw, nil
}

// FromRaw renders a raw amount with exactly decimals fraction digits.
func FromRaw(value *big.Int, decimals uint8) string {
	if value == nil {
		return "0"
	}
	if decimals == 0 {
		return value.String()
	}
	sign := value.Sign()
	abs := new(big.Int).Abs(value)
	denom := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	text := new(big.Rat).SetFrac(abs, denom).FloatString(int(decimals))
	if sign < 0 {
		return "-" + text
	}
	return text
}

// ApplySlippage returns the minimum acceptable amount for a tolerance given
// in percent. The factor is truncated to basis points before multiplying.
func ApplySlippage(amount *big.Int, pct float64) (*big.Int, error) {
	if pct < 0 || pct > 100 || math.IsNaN(pct) {
		return nil, fmt.Errorf("slippage %v%% not in [0, 100]", pct)
	}
	if amount == nil {
		return new(big.Int), nil
	}
	factor := big.NewInt(int64(math.Floor((1 - pct/100) * 10000)))
	out := new(big.Int).Mul(amount, factor)
	return out.Quo(out, big.NewInt(10000)), nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
