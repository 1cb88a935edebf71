package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/bankofai/skills-tron/internal/chain"
	"github.com/bankofai/skills-tron/internal/config"
	"github.com/bankofai/skills-tron/internal/dex"
	"github.com/bankofai/skills-tron/internal/model"
	"github.com/bankofai/skills-tron/internal/planner"
	"github.com/bankofai/skills-tron/internal/storage"
	"github.com/bankofai/skills-tron/internal/storage/postgres"
	"github.com/bankofai/skills-tron/internal/token"
	"github.com/bankofai/skills-tron/internal/tron"
)

// session is the per-command state of a chain-reading command.
type session struct {
	cfg      config.Config
	logger   *zap.Logger
	client   *chain.Client
	registry *token.Registry
	pools    *dex.PoolMetaCache
	tokens   *dex.TokenMetaCache
	sinks    storage.Fanout
	out      *cobra.Command
	closers  []func()
}

func openSession(cmd *cobra.Command) (context.Context, *session, error) {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return nil, nil, err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return nil, nil, err
	}
	s := &session{
		cfg:    cfg,
		logger: logger,
		pools:  dex.NewPoolMetaCache(),
		tokens: dex.NewTokenMetaCache(),
		out:    cmd,
	}
	s.closers = append(s.closers, func() { _ = logger.Sync() })

	registry, err := token.NewRegistry(cfg.Network.Name, cfg.Tokens)
	if err != nil {
		s.Close()
		return nil, nil, err
	}
	s.registry = registry

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	s.closers = append(s.closers, stop)
	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		s.closers = append(s.closers, cancel)
	}

	client, err := chain.NewClient(ctx, chain.Options{
		RPCURL:     cfg.Network.RPCURL,
		APIKey:     cfg.Network.APIKey,
		MaxRetries: cfg.MaxRetries,
		RetryDelay: cfg.RetryBackoff,
		Logger:     logger,
	})
	if err != nil {
		s.Close()
		return nil, nil, fmt.Errorf("connect rpc: %w", err)
	}
	s.client = client
	s.closers = append(s.closers, client.Close)

	if cfg.Out != "" {
		s.sinks = append(s.sinks, storage.NewJsonlStorage(cfg.Out))
	}
	if cfg.PGDSN != "" {
		store, err := postgres.NewStore(ctx, cfg.PGDSN)
		if err != nil {
			s.Close()
			return nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		s.closers = append(s.closers, store.Close)
		if err := store.EnsureSchema(ctx); err != nil {
			s.Close()
			return nil, nil, fmt.Errorf("ensure schema: %w", err)
		}
		s.sinks = append(s.sinks, store)
	}

	logger.Debug("session open",
		zap.String("network", cfg.Network.Name),
		zap.String("rpc", cfg.Network.RPCURL),
		zap.Bool("api_key", cfg.Network.APIKey != ""),
		zap.String("out", cfg.Out),
		zap.String("pg_dsn", redactDSN(cfg.PGDSN)),
	)
	return ctx, s, nil
}

// Close releases resources in reverse order of acquisition.
func (s *session) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
	s.closers = nil
}

// owner returns the configured wallet, which plan commands require.
func (s *session) owner() (common.Address, error) {
	if s.cfg.Owner == "" {
		return common.Address{}, fmt.Errorf("owner address is required (--owner or SUNSWAP_OWNER)")
	}
	return tron.Parse(s.cfg.Owner)
}

// resolveToken looks up a symbol or address and fills in on-chain metadata
// for addresses the registry does not list.
func (s *session) resolveToken(ctx context.Context, input string) (token.Info, error) {
	info, err := s.registry.Lookup(input)
	if err != nil {
		return token.Info{}, err
	}
	if info.Known || info.IsTRX() {
		return info, nil
	}
	meta, err := dex.FetchTokenMeta(ctx, s.client, info.EVM, s.tokens, s.logger)
	if err != nil {
		s.logger.Warn("token metadata unavailable, using defaults",
			zap.String("token", info.Address), zap.Error(err))
		return info, nil
	}
	if meta.Symbol != "" {
		info.Symbol = meta.Symbol
	}
	info.Decimals = meta.Decimals
	return info, nil
}

func (s *session) resolvePair(ctx context.Context, inputA, inputB string) (a, b token.Info, err error) {
	if a, err = s.resolveToken(ctx, inputA); err != nil {
		return
	}
	b, err = s.resolveToken(ctx, inputB)
	return
}

// describe resolves a pool token address for display.
func (s *session) describe(ctx context.Context, addr common.Address) token.Info {
	info := s.registry.ByAddress(addr)
	if info.Known {
		return info
	}
	resolved, err := s.resolveToken(ctx, tron.FromEVM(addr))
	if err != nil {
		return info
	}
	return resolved
}

// wallet reads the owner's balance of tokenAddr and its allowance for spender.
func (s *session) wallet(ctx context.Context, tokenAddr, owner, spender common.Address) (planner.Wallet, error) {
	balance, err := dex.BalanceOf(ctx, s.client, tokenAddr, owner)
	if err != nil {
		return planner.Wallet{}, fmt.Errorf("balance of %s: %w", tron.FromEVM(tokenAddr), err)
	}
	allowance, err := dex.Allowance(ctx, s.client, tokenAddr, owner, spender)
	if err != nil {
		return planner.Wallet{}, fmt.Errorf("allowance of %s: %w", tron.FromEVM(tokenAddr), err)
	}
	return planner.Wallet{Balance: balance, Allowance: allowance}, nil
}

// emitPlan prints the plan and hands it to the configured sinks.
func (s *session) emitPlan(ctx context.Context, plan model.Plan) error {
	s.logger.Info("plan ready",
		zap.String("action", plan.Action),
		zap.String("pool", plan.Pool),
		zap.Bool("ready", plan.Ready),
		zap.Strings("needs_approval", plan.NeedsApproval),
	)
	if err := writeJSON(s.out.OutOrStdout(), plan); err != nil {
		return err
	}
	if len(s.sinks) == 0 {
		return nil
	}
	if err := s.sinks.PutPlans(ctx, []model.Plan{plan}); err != nil {
		return fmt.Errorf("persist plan: %w", err)
	}
	return nil
}

// optional turns a pair, pool or position not-found error into a nil result.
func optional[T any](value T, err error) (*T, error) {
	if errors.Is(err, dex.ErrPairNotFound) || errors.Is(err, dex.ErrPoolNotFound) || errors.Is(err, dex.ErrPositionNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &value, nil
}
