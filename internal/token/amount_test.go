package token

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToRaw(t *testing.T) {
	cases := []struct {
		in       string
		decimals uint8
		want     string
	}{
		{"100", 6, "100000000"},
		{"0.5", 6, "500000"},
		{"1.23", 18, "1230000000000000000"},
		{"0", 6, "0"},
		{"0.000001", 6, "1"},
		{"0.0000019", 6, "1"},
		{".25", 2, "25"},
		{"7.", 1, "70"},
		{"42", 0, "42"},
	}
	for _, tc := range cases {
		got, err := ToRaw(tc.in, tc.decimals)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got.String(), "toRaw(%q, %d)", tc.in, tc.decimals)
	}

	for _, bad := range []string{"", ".", "abc", "1.2.3", "-1", "1e6", "1,5"} {
		_, err := ToRaw(bad, 6)
		assert.Error(t, err, "toRaw(%q)", bad)
	}
}

func TestFromRaw(t *testing.T) {
	cases := []struct {
		raw      int64
		decimals uint8
		want     string
	}{
		{100000000, 6, "100.000000"},
		{0, 6, "0.000000"},
		{-500000, 6, "-0.500000"},
		{1, 6, "0.000001"},
		{42, 0, "42"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, FromRaw(big.NewInt(tc.raw), tc.decimals))
	}
	assert.Equal(t, "0", FromRaw(nil, 6))
}

func TestApplySlippage(t *testing.T) {
	amount := big.NewInt(1_000_000)
	for pct, want := range map[float64]int64{5: 950000, 0: 1000000, 10: 900000, 0.5: 995000, 100: 0} {
		got, err := ApplySlippage(amount, pct)
		require.NoError(t, err)
		assert.Equal(t, want, got.Int64(), "slippage %v", pct)
	}
	assert.Equal(t, int64(1_000_000), amount.Int64())

	_, err := ApplySlippage(amount, -1)
	assert.Error(t, err)
	_, err = ApplySlippage(amount, 101)
	assert.Error(t, err)
}
