package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		writeError(root.OutOrStdout(), err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "sunswap",
		Short:         "SunSwap liquidity math and read-only planning on TRON",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().String("config", "", "config file path")
	root.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	root.PersistentFlags().String("network", "nile", "network (mainnet, nile)")

	root.AddCommand(newMathCmd())
	root.AddCommand(newNetworkCmd())
	root.AddCommand(newPoolCmd())
	root.AddCommand(newLiquidityCmd())
	root.AddCommand(newPositionCmd())

	return root
}

// addChainFlags registers the flags shared by every command that reads chain state.
func addChainFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()
	flags.String("rpc", "", "TRON JSON-RPC URL (defaults to the network preset)")
	flags.String("api-key", "", "TronGrid API key (or TRONGRID_API_KEY)")
	flags.String("owner", "", "wallet address plans are built for")
	flags.StringSlice("token", nil, "extra tokens as SYMBOL=ADDRESS:DECIMALS")
	flags.Int("max-retries", 3, "maximum retry attempts per RPC call")
	flags.Duration("retry-backoff", 500*time.Millisecond, "initial retry backoff")
	flags.Duration("timeout", 30*time.Second, "overall command timeout")
	flags.Float64("slippage", 5, "slippage tolerance in percent")
	flags.String("out", "", "append results to this JSONL file")
	flags.String("pg-dsn", "", "Postgres DSN to persist results")
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}
