package chain

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	"go.uber.org/zap"
)

// APIKeyHeader carries the TronGrid API key on every JSON-RPC request.
const APIKeyHeader = "TRON-PRO-API-KEY"

// Options configures a Client.
type Options struct {
	RPCURL     string
	APIKey     string
	MaxRetries int
	RetryDelay time.Duration
	Logger     *zap.Logger
}

// Client wraps go-ethereum RPC against a TRON node's /jsonrpc endpoint.
type Client struct {
	rpcClient *rpc.Client
	ethClient *ethclient.Client

	maxRetries int
	retryDelay time.Duration
	logger     *zap.Logger
}

// NewClient dials the JSON-RPC endpoint.
func NewClient(ctx context.Context, opts Options) (*Client, error) {
	if opts.RPCURL == "" {
		return nil, fmt.Errorf("rpc url is required")
	}

	var dialOpts []rpc.ClientOption
	if opts.APIKey != "" {
		dialOpts = append(dialOpts, rpc.WithHeader(APIKeyHeader, opts.APIKey))
	}
	rpcClient, err := rpc.DialOptions(ctx, opts.RPCURL, dialOpts...)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", opts.RPCURL, err)
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		rpcClient:  rpcClient,
		ethClient:  ethclient.NewClient(rpcClient),
		maxRetries: opts.MaxRetries,
		retryDelay: opts.RetryDelay,
		logger:     logger,
	}, nil
}

// Close closes the underlying RPC client.
func (c *Client) Close() {
	if c.rpcClient != nil {
		c.rpcClient.Close()
	}
}

// GetChainID returns the chain ID.
func (c *Client) GetChainID(ctx context.Context) (*big.Int, error) {
	var id *big.Int
	err := c.retry(ctx, "eth_chainId", func(ctx context.Context) error {
		var err error
		id, err = c.ethClient.ChainID(ctx)
		return err
	})
	return id, err
}

// LatestBlockNumber returns the latest block number.
func (c *Client) LatestBlockNumber(ctx context.Context) (uint64, error) {
	var number uint64
	err := c.retry(ctx, "eth_blockNumber", func(ctx context.Context) error {
		var err error
		number, err = c.ethClient.BlockNumber(ctx)
		return err
	})
	return number, err
}

// CallContract performs an eth_call for a contract method.
func (c *Client) CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	var out []byte
	err := c.retry(ctx, "eth_call", func(ctx context.Context) error {
		var err error
		out, err = c.ethClient.CallContract(ctx, msg, blockNumber)
		return err
	})
	return out, err
}

// BalanceAt returns the native TRX balance in sun.
func (c *Client) BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error) {
	var balance *big.Int
	err := c.retry(ctx, "eth_getBalance", func(ctx context.Context) error {
		var err error
		balance, err = c.ethClient.BalanceAt(ctx, account, blockNumber)
		return err
	})
	return balance, err
}

func (c *Client) retry(ctx context.Context, method string, fn func(context.Context) error) error {
	attempt := 0
	return WithRetry(ctx, c.maxRetries, c.retryDelay, func(ctx context.Context) error {
		err := fn(ctx)
		if IsRevert(err) {
			return Permanent(err)
		}
		if err != nil && attempt < c.maxRetries {
			c.logger.Warn("rpc call failed", zap.String("method", method), zap.Int("attempt", attempt+1), zap.Error(err))
		}
		attempt++
		return err
	})
}

// revertCode is the JSON-RPC error code nodes use for a reverted eth_call.
const revertCode = 3

// IsRevert reports whether err is a contract revert from the node. A revert
// is deterministic for the same call and block, so retrying cannot help.
func IsRevert(err error) bool {
	if err == nil {
		return false
	}
	var rpcErr rpc.Error
	if errors.As(err, &rpcErr) && rpcErr.ErrorCode() == revertCode {
		return true
	}
	var dataErr rpc.DataError
	if errors.As(err, &dataErr) && dataErr.ErrorData() != nil {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "execution reverted")
}
