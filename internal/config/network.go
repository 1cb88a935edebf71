package config

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/viper"

	"github.com/bankofai/skills-tron/internal/tron"
)

// Contract names accepted by Network.Contract.
const (
	V2Factory       = "v2-factory"
	V2Router        = "v2-router"
	V3Factory       = "v3-factory"
	PositionManager = "position-manager"
)

// Network is a TRON network's JSON-RPC endpoint and SunSwap deployments.
// Contract addresses are base58; empty means not deployed or not known.
type Network struct {
	Name      string
	RPCURL    string
	APIKey    string
	Explorer  string
	Contracts map[string]string
}

var presets = map[string]Network{
	"mainnet": {
		Name:     "mainnet",
		RPCURL:   "https://api.trongrid.io/jsonrpc",
		Explorer: "https://tronscan.org",
		Contracts: map[string]string{
			V2Factory:       "TKWJdrQkqHisa1X8HUdHEfREvTzw4pMAaY",
			V2Router:        "TKzxdSv2FZKQrEqkKVgp5DcwEXBEKMg2Ax",
			V3Factory:       "TThJt8zaJzJMhCEScH7zWKnp5buVZqys9x",
			PositionManager: "TLSWrv7eC1AZCXkRjpqMZUmvgd99cj7pPF",
		},
	},
	"nile": {
		Name:     "nile",
		RPCURL:   "https://nile.trongrid.io/jsonrpc",
		Explorer: "https://nile.tronscan.org",
		Contracts: map[string]string{
			V2Router: "TMEkn7zwGJvJsRoEkiTKfGRGZS2yMdVmu3",
		},
	},
}

// Networks lists the built-in network names.
func Networks() []string {
	out := make([]string, 0, len(presets))
	for name := range presets {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Preset returns a copy of a built-in network.
func Preset(name string) (Network, error) {
	preset, ok := presets[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Network{}, fmt.Errorf("unknown network %q (want one of %s)", name, strings.Join(Networks(), ", "))
	}
	contracts := make(map[string]string, len(preset.Contracts))
	for k, v := range preset.Contracts {
		contracts[k] = v
	}
	preset.Contracts = contracts
	return preset, nil
}

// Contract returns a deployment address. Missing or malformed addresses are errors.
func (n Network) Contract(name string) (common.Address, error) {
	value := n.Contracts[name]
	if value == "" {
		return common.Address{}, fmt.Errorf("%s address is required for network %s (set %s)", name, n.Name, name)
	}
	addr, err := tron.Parse(value)
	if err != nil {
		return common.Address{}, fmt.Errorf("%s address: %w", name, err)
	}
	return addr, nil
}

func resolveNetwork(v *viper.Viper) (Network, error) {
	network, err := Preset(v.GetString("network"))
	if err != nil {
		return Network{}, err
	}
	if rpc := v.GetString("rpc"); rpc != "" {
		network.RPCURL = rpc
	}
	network.APIKey = v.GetString("api-key")
	for _, name := range []string{V2Factory, V2Router, V3Factory, PositionManager} {
		if value := strings.TrimSpace(v.GetString(name)); value != "" {
			network.Contracts[name] = value
		}
	}
	return network, nil
}
