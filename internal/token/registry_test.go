package token

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryLookup(t *testing.T) {
	reg, err := NewRegistry("mainnet", nil)
	require.NoError(t, err)

	usdt, err := reg.Lookup("usdt")
	require.NoError(t, err)
	assert.Equal(t, "USDT", usdt.Symbol)
	assert.Equal(t, uint8(6), usdt.Decimals)

	byAddr, err := reg.Lookup("TR7NHqjeKQxGTCi8q8ZY4pL8otSzgjLj6t")
	require.NoError(t, err)
	assert.Equal(t, "USDT", byAddr.Symbol)

	trx, err := reg.Lookup(TRXAddress)
	require.NoError(t, err)
	assert.True(t, trx.IsTRX())
	assert.Equal(t, "TRX(WTRX)", trx.Display())

	unknown, err := reg.Lookup("TL9kq3Fvw7dSpjgn3rBB8aJS8zhW8GvqGH")
	require.NoError(t, err)
	assert.Equal(t, "UNKNOWN", unknown.Symbol)
	assert.Equal(t, DefaultDecimals, unknown.Decimals)

	_, err = reg.Lookup("NOPE")
	assert.ErrorIs(t, err, ErrUnknownToken)
}

func TestRegistryOverrides(t *testing.T) {
	reg, err := NewRegistry("nile", map[string]string{"foo": "TL9kq3Fvw7dSpjgn3rBB8aJS8zhW8GvqGH:18"})
	require.NoError(t, err)

	foo, err := reg.Lookup("FOO")
	require.NoError(t, err)
	assert.Equal(t, uint8(18), foo.Decimals)
	assert.Contains(t, reg.Symbols(), "FOO")

	_, err = NewRegistry("nile", map[string]string{"BAD": "TL9kq3Fvw7dSpjgn3rBB8aJS8zhW8GvqGH"})
	assert.Error(t, err)
	_, err = NewRegistry("devnet", nil)
	assert.Error(t, err)
}

func TestRegistryByAddress(t *testing.T) {
	reg, err := NewRegistry("mainnet", nil)
	require.NoError(t, err)

	usdt := reg.ByAddress(common.HexToAddress("0xa614f803b6fd780986a42c78ec9c7f77e6ded13c"))
	assert.Equal(t, "USDT", usdt.Symbol)

	other := reg.ByAddress(common.HexToAddress("0x6faffc4a58b9bce23a88dbc2c425373c5ec19873"))
	assert.Equal(t, "TL9kq3Fv...", other.Symbol)
	assert.Equal(t, DefaultDecimals, other.Decimals)
}

func TestSortTokens(t *testing.T) {
	reg, err := NewRegistry("mainnet", nil)
	require.NoError(t, err)

	trx, _ := reg.Lookup("TRX")
	usdt, _ := reg.Lookup("USDT")

	// TRX pools through WTRX (0x891c...), which sorts before USDT (0xa614...).
	pair, err := reg.SortTokens(usdt, trx)
	require.NoError(t, err)
	assert.True(t, pair.Swapped)
	assert.Equal(t, "TRX", pair.Token0.Symbol)
	assert.Equal(t, common.HexToAddress("0x891cdb91d149f23b1a45d9c5ca78a88d0cb44c18"), pair.Addr0)

	pair, err = reg.SortTokens(trx, usdt)
	require.NoError(t, err)
	assert.False(t, pair.Swapped)

	wtrx, _ := reg.Lookup("WTRX")
	_, err = reg.SortTokens(trx, wtrx)
	assert.ErrorIs(t, err, ErrIdenticalTokens)
}
