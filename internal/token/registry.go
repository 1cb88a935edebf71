// Package token resolves token symbols and addresses per network and
// converts between human and raw token amounts.
package token

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"github.com/bankofai/skills-tron/internal/tron"
)

const (
	// TRXAddress is the placeholder address the ecosystem uses for native TRX.
	TRXAddress = "T9yD14Nj9j7xAB4dbGeiX9h8unkKHxuWwb"
	// DefaultDecimals is assumed for addresses missing from the registry.
	DefaultDecimals uint8 = 6
)

var (
	ErrUnknownToken     = errors.New("unknown token")
	ErrIdenticalTokens  = errors.New("identical token addresses")
	ErrWrappedNotListed = errors.New("WTRX not configured")
)

// Info describes one token on one network.
type Info struct {
	Symbol   string         `json:"symbol"`
	Address  string         `json:"address"`
	Decimals uint8          `json:"decimals"`
	EVM      common.Address `json:"-"`
	Known    bool           `json:"-"`
}

// IsTRX reports whether the token is native TRX.
func (i Info) IsTRX() bool {
	return i.Address == TRXAddress || i.Symbol == "TRX"
}

// Display is the symbol, marked when pool lookups go through WTRX.
func (i Info) Display() string {
	if i.IsTRX() {
		return i.Symbol + "(WTRX)"
	}
	return i.Symbol
}

var defaultTokens = map[string]map[string]string{
	"mainnet": {
		"TRX":  TRXAddress + ":6",
		"WTRX": "TNUC9Qb1rRpS5CbWLmNMxXBjyFoydXjWFR:6",
		"USDT": "TR7NHqjeKQxGTCi8q8ZY4pL8otSzgjLj6t:6",
		"USDC": "TEkxiTehnzSmSe2XqrBj4w32RUN966rdz8:6",
		"USDD": "TXDk8mbtRbXeYuMNS83CfKPaYYT8XWv9Hz:18",
		"SUN":  "TSSMHYeV2uE9qYH95DqyoCuNCzEL1NvU3S:18",
		"JST":  "TCFLL5dx5ZJdKnWuesXxi1VPwjLVmWZZy9:18",
		"BTT":  "TAFjULxiVgT4qWk6UZwjqwZXTSaGaqnVp4:18",
		"WIN":  "TLa2f6VPqDgRE67v1736s7bJ8Ray5wYjU7:6",
	},
	"nile": {
		"TRX":  TRXAddress + ":6",
		"WTRX": "TYsbWxNnyTgsZaTFaue9hqpxkU3Fkco94a:6",
		"USDT": "TXYZopYRdj2D9XRtbG411XZZ3kM5VkAeBf:6",
	},
}

// Registry maps symbols to tokens for a single network.
type Registry struct {
	network   string
	bySymbol  map[string]Info
	byAddress map[common.Address]Info
}

// NewRegistry builds the registry for network from the built-in list plus
// overrides in SYMBOL -> "ADDRESS:DECIMALS" form.
func NewRegistry(network string, overrides map[string]string) (*Registry, error) {
	entries := map[string]string{}
	for sym, spec := range defaultTokens[network] {
		entries[sym] = spec
	}
	for sym, spec := range overrides {
		entries[strings.ToUpper(strings.TrimSpace(sym))] = spec
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("no tokens configured for network %q", network)
	}

	r := &Registry{
		network:   network,
		bySymbol:  make(map[string]Info, len(entries)),
		byAddress: make(map[common.Address]Info, len(entries)),
	}
	for sym, spec := range entries {
		info, err := parseEntry(sym, spec)
		if err != nil {
			return nil, err
		}
		r.bySymbol[sym] = info
		if !info.IsTRX() {
			r.byAddress[info.EVM] = info
		}
	}
	return r, nil
}

func parseEntry(sym, spec string) (Info, error) {
	addr, dec, ok := strings.Cut(strings.TrimSpace(spec), ":")
	if !ok {
		return Info{}, fmt.Errorf("token %s: expected ADDRESS:DECIMALS, got %q", sym, spec)
	}
	decimals, err := strconv.ParseUint(dec, 10, 8)
	if err != nil {
		return Info{}, fmt.Errorf("token %s decimals: %w", sym, err)
	}
	evm, err := tron.ToEVM(addr)
	if err != nil {
		return Info{}, fmt.Errorf("token %s: %w", sym, err)
	}
	return Info{Symbol: sym, Address: addr, Decimals: uint8(decimals), EVM: evm, Known: true}, nil
}

// Network returns the network the registry was built for.
func (r *Registry) Network() string { return r.network }

// Symbols lists configured symbols in sorted order.
func (r *Registry) Symbols() []string {
	out := make([]string, 0, len(r.bySymbol))
	for sym := range r.bySymbol {
		out = append(out, sym)
	}
	sort.Strings(out)
	return out
}

// Lookup resolves a symbol or base58 address. Unlisted addresses resolve to
// an UNKNOWN token with DefaultDecimals; unlisted symbols are an error.
func (r *Registry) Lookup(symbolOrAddress string) (Info, error) {
	key := strings.TrimSpace(symbolOrAddress)
	if strings.HasPrefix(key, "T") && len(key) == 34 {
		evm, err := tron.ToEVM(key)
		if err != nil {
			return Info{}, err
		}
		if key == TRXAddress {
			return r.bySymbol["TRX"], nil
		}
		if info, ok := r.byAddress[evm]; ok {
			return info, nil
		}
		return Info{Symbol: "UNKNOWN", Address: key, Decimals: DefaultDecimals, EVM: evm}, nil
	}

	info, ok := r.bySymbol[strings.ToUpper(key)]
	if !ok {
		return Info{}, fmt.Errorf("%w: %s on %s", ErrUnknownToken, key, r.network)
	}
	return info, nil
}

// ByAddress resolves an on-chain address, falling back to a shortened
// address label and DefaultDecimals.
func (r *Registry) ByAddress(addr common.Address) Info {
	if info, ok := r.byAddress[addr]; ok {
		return info
	}
	b58 := tron.FromEVM(addr)
	return Info{Symbol: b58[:8] + "...", Address: b58, Decimals: DefaultDecimals, EVM: addr}
}

// PoolAddress is the address used for pair and pool lookups: WTRX for TRX.
func (r *Registry) PoolAddress(info Info) (common.Address, error) {
	if !info.IsTRX() {
		return info.EVM, nil
	}
	wtrx, ok := r.bySymbol["WTRX"]
	if !ok {
		return common.Address{}, fmt.Errorf("%w for network %s", ErrWrappedNotListed, r.network)
	}
	return wtrx.EVM, nil
}

// Pair is two tokens in pool order.
type Pair struct {
	Token0  Info
	Token1  Info
	Addr0   common.Address
	Addr1   common.Address
	Swapped bool
}

// SortTokens orders a and b by their pool addresses, the way factories do.
func (r *Registry) SortTokens(a, b Info) (Pair, error) {
	addrA, err := r.PoolAddress(a)
	if err != nil {
		return Pair{}, err
	}
	addrB, err := r.PoolAddress(b)
	if err != nil {
		return Pair{}, err
	}
	hexA, hexB := tron.Hex(addrA), tron.Hex(addrB)
	switch {
	case hexA == hexB:
		return Pair{}, fmt.Errorf("%w: %s", ErrIdenticalTokens, a.Address)
	case hexA < hexB:
		return Pair{Token0: a, Token1: b, Addr0: addrA, Addr1: addrB}, nil
	default:
		return Pair{Token0: b, Token1: a, Addr0: addrB, Addr1: addrA, Swapped: true}, nil
	}
}
