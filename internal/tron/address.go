// Package tron converts between TRON base58check addresses and the 20-byte
// EVM form used by the JSON-RPC endpoint and the ABI codec.
package tron

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/mr-tron/base58"
)

// AddressPrefix is the first byte of every mainnet and testnet TRON address.
const AddressPrefix byte = 0x41

// ErrInvalidAddress is returned for strings that are neither base58check nor hex addresses.
var ErrInvalidAddress = errors.New("invalid tron address")

// ToEVM decodes a base58check address into its 20-byte form.
func ToEVM(addr string) (common.Address, error) {
	raw, err := base58.Decode(addr)
	if err != nil {
		return common.Address{}, fmt.Errorf("%w %q: %v", ErrInvalidAddress, addr, err)
	}
	if len(raw) != 25 {
		return common.Address{}, fmt.Errorf("%w %q: length %d", ErrInvalidAddress, addr, len(raw))
	}
	payload, sum := raw[:21], raw[21:]
	if !bytes.Equal(checksum(payload), sum) {
		return common.Address{}, fmt.Errorf("%w %q: checksum mismatch", ErrInvalidAddress, addr)
	}
	if payload[0] != AddressPrefix {
		return common.Address{}, fmt.Errorf("%w %q: prefix 0x%x", ErrInvalidAddress, addr, payload[0])
	}
	return common.BytesToAddress(payload[1:]), nil
}

// FromEVM encodes a 20-byte address as base58check.
func FromEVM(addr common.Address) string {
	payload := make([]byte, 0, 25)
	payload = append(payload, AddressPrefix)
	payload = append(payload, addr.Bytes()...)
	payload = append(payload, checksum(payload)...)
	return base58.Encode(payload)
}

// Parse accepts a base58 address, a 0x-prefixed 20-byte hex address or a
// 41-prefixed 21-byte hex address.
func Parse(addr string) (common.Address, error) {
	addr = strings.TrimSpace(addr)
	switch {
	case strings.HasPrefix(addr, "T") && len(addr) == 34:
		return ToEVM(addr)
	case strings.HasPrefix(addr, "41") && len(addr) == 42:
		return common.HexToAddress(addr[2:]), nil
	case common.IsHexAddress(addr):
		return common.HexToAddress(addr), nil
	default:
		return common.Address{}, fmt.Errorf("%w %q", ErrInvalidAddress, addr)
	}
}

// Hex returns the lowercase 41-prefixed hex form used for ordering tokens.
func Hex(addr common.Address) string {
	return "41" + strings.ToLower(strings.TrimPrefix(addr.Hex(), "0x"))
}

func checksum(payload []byte) []byte {
	first := sha256.Sum256(payload)
	second := sha256.Sum256(first[:])
	return second[:4]
}
