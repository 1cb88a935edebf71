package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/pflag"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("", nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Network.Name != "nile" || cfg.Network.RPCURL != "https://nile.trongrid.io/jsonrpc" {
		t.Fatalf("unexpected network: %+v", cfg.Network)
	}
	if cfg.Slippage != 5 || cfg.MaxRetries != 3 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("SUNSWAP_NETWORK", "mainnet")
	t.Setenv("TRONGRID_API_KEY", "secret")
	t.Setenv("SUNSWAP_RPC", "http://localhost:8545")

	cfg, err := Load("", nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Network.Name != "mainnet" || cfg.Network.APIKey != "secret" {
		t.Fatalf("unexpected network: %+v", cfg.Network)
	}
	if cfg.Network.RPCURL != "http://localhost:8545" {
		t.Fatalf("rpc override ignored: %s", cfg.Network.RPCURL)
	}
	if _, err := cfg.Network.Contract(V3Factory); err != nil {
		t.Fatalf("mainnet factory should resolve: %v", err)
	}
}

func TestLoadFromFileAndFlags(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sunswap.yaml")
	body := strings.Join([]string{
		"network: nile",
		"position-manager: TLSWrv7eC1AZCXkRjpqMZUmvgd99cj7pPF",
		"token:",
		"  FOO: \"TR7NHqjeKQxGTCi8q8ZY4pL8otSzgjLj6t:6\"",
	}, "\n")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Float64("slippage", 5, "")
	if err := flags.Parse([]string{"--slippage", "0.5"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}

	cfg, err := Load(path, flags)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Slippage != 0.5 {
		t.Fatalf("flag ignored: %v", cfg.Slippage)
	}
	if cfg.Tokens["foo"] != "TR7NHqjeKQxGTCi8q8ZY4pL8otSzgjLj6t:6" {
		t.Fatalf("token override missing: %v", cfg.Tokens)
	}
	if _, err := cfg.Network.Contract(PositionManager); err != nil {
		t.Fatalf("position manager override: %v", err)
	}
	_, err = cfg.Network.Contract(V3Factory)
	if err == nil || !strings.Contains(err.Error(), "address is required") {
		t.Fatalf("expected missing factory error, got %v", err)
	}
}

func TestLoadRejectsBadInput(t *testing.T) {
	t.Setenv("SUNSWAP_NETWORK", "shasta")
	if _, err := Load("", nil); err == nil {
		t.Fatalf("expected unknown network error")
	}

	t.Setenv("SUNSWAP_NETWORK", "nile")
	t.Setenv("SUNSWAP_SLIPPAGE", "150")
	if _, err := Load("", nil); err == nil {
		t.Fatalf("expected slippage error")
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), nil); err == nil {
		t.Fatalf("expected missing config file error")
	}
}

func TestPresetIsCopied(t *testing.T) {
	a, err := Preset("NILE")
	if err != nil {
		t.Fatalf("preset: %v", err)
	}
	a.Contracts[V3Factory] = "TThJt8zaJzJMhCEScH7zWKnp5buVZqys9x"

	b, _ := Preset("nile")
	if _, ok := b.Contracts[V3Factory]; ok {
		t.Fatalf("preset mutated through copy")
	}
}

func TestParseStringMap(t *testing.T) {
	got := parseStringMap("usdt=TR7NHqjeKQxGTCi8q8ZY4pL8otSzgjLj6t:6, bad, =x, sun = TSSMHYeV2uE9qYH95DqyoCuNCzEL1NvU3S:18")
	if len(got) != 2 {
		t.Fatalf("unexpected map: %v", got)
	}
	if got["sun"] != "TSSMHYeV2uE9qYH95DqyoCuNCzEL1NvU3S:18" {
		t.Fatalf("unexpected sun entry: %q", got["sun"])
	}
}

func TestLoadMath(t *testing.T) {
	t.Setenv("SUNSWAP_LOG_LEVEL", "debug")
	cfg, err := LoadMath("", nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("unexpected log level %q", cfg.LogLevel)
	}
}
