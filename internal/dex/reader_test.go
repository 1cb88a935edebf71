package dex

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
	"go.uber.org/zap"

	"github.com/bankofai/skills-tron/internal/amm"
)

type handler func(from common.Address, args []interface{}) []interface{}

// fakeCaller answers eth_call by decoding the selector against the known
// ABIs and packing whatever the registered handler returns.
type fakeCaller struct {
	t        *testing.T
	abis     []abi.ABI
	handlers map[common.Address]map[string]handler
	balances map[common.Address]*big.Int
	calls    map[string]int
}

func newFakeCaller(t *testing.T) *fakeCaller {
	t.Helper()
	var abis []abi.ABI
	for _, load := range []func() (abi.ABI, error){V2FactoryABI, V2PairABI, V3FactoryABI, V3PoolABI, PositionManagerABI, TRC20ABI} {
		parsed, err := load()
		if err != nil {
			t.Fatalf("abi parse: %v", err)
		}
		abis = append(abis, parsed)
	}
	return &fakeCaller{
		t:        t,
		abis:     abis,
		handlers: make(map[common.Address]map[string]handler),
		balances: make(map[common.Address]*big.Int),
		calls:    make(map[string]int),
	}
}

func (f *fakeCaller) on(to common.Address, method string, h handler) {
	if f.handlers[to] == nil {
		f.handlers[to] = make(map[string]handler)
	}
	f.handlers[to][method] = h
}

func (f *fakeCaller) returns(to common.Address, method string, out ...interface{}) {
	f.on(to, method, func(common.Address, []interface{}) []interface{} { return out })
}

func (f *fakeCaller) CallContract(_ context.Context, msg ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	if msg.To == nil || len(msg.Data) < 4 {
		return nil, errors.New("bad call")
	}
	for _, parsed := range f.abis {
		method, err := parsed.MethodById(msg.Data[:4])
		if err != nil {
			continue
		}
		h, ok := f.handlers[*msg.To][method.Name]
		if !ok {
			return nil, errors.New("execution reverted")
		}
		args, err := method.Inputs.Unpack(msg.Data[4:])
		if err != nil {
			f.t.Fatalf("unpack %s args: %v", method.Name, err)
		}
		f.calls[method.Name]++
		out, err := method.Outputs.Pack(h(msg.From, args)...)
		if err != nil {
			f.t.Fatalf("pack %s outputs: %v", method.Name, err)
		}
		return out, nil
	}
	return nil, errors.New("unknown selector")
}

func (f *fakeCaller) BalanceAt(_ context.Context, account common.Address, _ *big.Int) (*big.Int, error) {
	if b, ok := f.balances[account]; ok {
		return b, nil
	}
	return new(big.Int), nil
}

var (
	factoryAddr = common.HexToAddress("0x1000000000000000000000000000000000000001")
	pairAddr    = common.HexToAddress("0x2000000000000000000000000000000000000002")
	poolAddr    = common.HexToAddress("0x3000000000000000000000000000000000000003")
	managerAddr = common.HexToAddress("0x4000000000000000000000000000000000000004")
	tokenA      = common.HexToAddress("0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa")
	tokenB      = common.HexToAddress("0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb")
	owner       = common.HexToAddress("0xcccccccccccccccccccccccccccccccccccccccc")
)

func TestFetchPair(t *testing.T) {
	f := newFakeCaller(t)
	f.returns(factoryAddr, "getPair", pairAddr)
	f.returns(pairAddr, "getReserves", big.NewInt(5000), big.NewInt(2000), uint32(1700000000))
	f.returns(pairAddr, "token0", tokenA)
	f.returns(pairAddr, "token1", tokenB)
	f.returns(pairAddr, "totalSupply", big.NewInt(3000))

	pair, err := FetchPair(context.Background(), f, factoryAddr, tokenB, tokenA)
	if err != nil {
		t.Fatalf("fetch pair: %v", err)
	}
	if pair.Address != pairAddr || pair.Token0 != tokenA || pair.Token1 != tokenB {
		t.Fatalf("pair mismatch: %+v", pair)
	}
	if pair.TotalSupply.Int64() != 3000 {
		t.Fatalf("total supply mismatch: %s", pair.TotalSupply)
	}

	rb, ra := pair.ReservesFor(tokenB)
	if rb.Int64() != 2000 || ra.Int64() != 5000 {
		t.Fatalf("orientation mismatch: %s %s", rb, ra)
	}
}

func TestFetchPairNotFound(t *testing.T) {
	f := newFakeCaller(t)
	f.returns(factoryAddr, "getPair", common.Address{})

	_, err := FetchPair(context.Background(), f, factoryAddr, tokenA, tokenB)
	if !errors.Is(err, ErrPairNotFound) {
		t.Fatalf("expected ErrPairNotFound, got %v", err)
	}
}

func stubPool(f *fakeCaller, sqrtPrice *big.Int, tick int64) {
	f.on(factoryAddr, "getPool", func(_ common.Address, args []interface{}) []interface{} {
		if fee, ok := args[2].(*big.Int); !ok || fee.Int64() != 3000 {
			return []interface{}{common.Address{}}
		}
		return []interface{}{poolAddr}
	})
	f.returns(poolAddr, "token0", tokenA)
	f.returns(poolAddr, "token1", tokenB)
	f.returns(poolAddr, "fee", big.NewInt(3000))
	f.returns(poolAddr, "tickSpacing", big.NewInt(60))
	f.returns(poolAddr, "slot0", sqrtPrice, big.NewInt(tick), uint16(0), uint16(1), uint16(1), uint8(0), true)
	f.returns(poolAddr, "liquidity", big.NewInt(123456789))
}

func TestFetchPoolUsesMetaCache(t *testing.T) {
	f := newFakeCaller(t)
	stubPool(f, amm.Q96, -5)
	cache := NewPoolMetaCache()

	pool, err := FetchPool(context.Background(), f, factoryAddr, tokenA, tokenB, 3000, cache, zap.NewNop())
	if err != nil {
		t.Fatalf("fetch pool: %v", err)
	}
	if pool.Address != poolAddr || pool.Fee != 3000 || pool.TickSpacing != 60 {
		t.Fatalf("pool meta mismatch: %+v", pool)
	}
	if pool.Tick != -5 || pool.SqrtPriceX96.Cmp(amm.Q96) != 0 || pool.Liquidity.Int64() != 123456789 {
		t.Fatalf("pool state mismatch: %+v", pool)
	}

	if _, err := FetchPool(context.Background(), f, factoryAddr, tokenA, tokenB, 3000, cache, nil); err != nil {
		t.Fatalf("second fetch: %v", err)
	}
	if f.calls["token0"] != 1 || f.calls["tickSpacing"] != 1 {
		t.Fatalf("expected immutable fields to be cached, calls: %v", f.calls)
	}
	if f.calls["slot0"] != 2 {
		t.Fatalf("expected slot0 on every fetch, calls: %v", f.calls)
	}

	_, err = FetchPool(context.Background(), f, factoryAddr, tokenA, tokenB, 500, cache, nil)
	if !errors.Is(err, ErrPoolNotFound) {
		t.Fatalf("expected ErrPoolNotFound, got %v", err)
	}
}

func stubPositions(f *fakeCaller) {
	ids := []*big.Int{big.NewInt(11), big.NewInt(42)}
	f.returns(managerAddr, "balanceOf", big.NewInt(int64(len(ids))))
	f.on(managerAddr, "tokenOfOwnerByIndex", func(_ common.Address, args []interface{}) []interface{} {
		return []interface{}{ids[args[1].(*big.Int).Int64()]}
	})
	f.on(managerAddr, "positions", func(_ common.Address, args []interface{}) []interface{} {
		id := args[0].(*big.Int).Int64()
		lower, upper := big.NewInt(-120), big.NewInt(120)
		if id == 42 {
			lower, upper = big.NewInt(-60), big.NewInt(60)
		}
		return []interface{}{
			big.NewInt(0), common.Address{}, tokenA, tokenB, big.NewInt(3000),
			lower, upper, big.NewInt(id * 1000),
			big.NewInt(0), big.NewInt(0), big.NewInt(7), big.NewInt(9),
		}
	})
}

func TestListAndFindPositions(t *testing.T) {
	f := newFakeCaller(t)
	stubPositions(f)

	positions, err := ListPositions(context.Background(), f, managerAddr, owner, nil)
	if err != nil {
		t.Fatalf("list positions: %v", err)
	}
	if len(positions) != 2 {
		t.Fatalf("expected 2 positions, got %d", len(positions))
	}
	first := positions[0]
	if first.TokenID.Int64() != 11 || first.TickLower != -120 || first.TickUpper != 120 || first.Fee != 3000 {
		t.Fatalf("position mismatch: %+v", first)
	}
	if first.Liquidity.Int64() != 11000 || first.TokensOwed0.Int64() != 7 || first.TokensOwed1.Int64() != 9 {
		t.Fatalf("position amounts mismatch: %+v", first)
	}

	found, err := FindPosition(context.Background(), f, managerAddr, owner, tokenA, tokenB, 3000, -60, 60, nil)
	if err != nil {
		t.Fatalf("find position: %v", err)
	}
	if found.TokenID.Int64() != 42 {
		t.Fatalf("found wrong position: %s", found.TokenID)
	}

	_, err = FindPosition(context.Background(), f, managerAddr, owner, tokenA, tokenB, 500, -60, 60, nil)
	if !errors.Is(err, ErrPositionNotFound) {
		t.Fatalf("expected ErrPositionNotFound, got %v", err)
	}
}

func TestListPositionsRejectsOversizedCount(t *testing.T) {
	f := newFakeCaller(t)
	f.returns(managerAddr, "balanceOf", new(big.Int).Lsh(big.NewInt(1), 64))

	if _, err := ListPositions(context.Background(), f, managerAddr, owner, nil); err == nil {
		t.Fatalf("expected error for count above int64")
	}
	if f.calls["tokenOfOwnerByIndex"] != 0 {
		t.Fatalf("expected no enumeration, got %d calls", f.calls["tokenOfOwnerByIndex"])
	}
}

func TestListPositionsLargeCountDoesNotPreallocate(t *testing.T) {
	f := newFakeCaller(t)
	f.returns(managerAddr, "balanceOf", big.NewInt(1<<40))

	// tokenOfOwnerByIndex is not stubbed, so the first lookup reverts.
	_, err := ListPositions(context.Background(), f, managerAddr, owner, nil)
	if err == nil {
		t.Fatalf("expected enumeration error")
	}
}

func TestEstimateFeesCallsFromOwner(t *testing.T) {
	f := newFakeCaller(t)
	f.on(managerAddr, "collect", func(from common.Address, args []interface{}) []interface{} {
		if from != owner {
			t.Fatalf("collect must be simulated from the owner, got %s", from.Hex())
		}
		return []interface{}{big.NewInt(1500), big.NewInt(0)}
	})

	fee0, fee1, err := EstimateFees(context.Background(), f, managerAddr, big.NewInt(42), owner)
	if err != nil {
		t.Fatalf("estimate fees: %v", err)
	}
	if fee0.Int64() != 1500 || fee1.Sign() != 0 {
		t.Fatalf("fees mismatch: %s %s", fee0, fee1)
	}
}

func TestBalanceAndAllowance(t *testing.T) {
	f := newFakeCaller(t)
	f.balances[owner] = big.NewInt(99_000_000)
	f.returns(tokenA, "balanceOf", big.NewInt(250))
	f.returns(tokenA, "allowance", big.NewInt(10))

	trx, err := BalanceOf(context.Background(), f, common.Address{}, owner)
	if err != nil || trx.Int64() != 99_000_000 {
		t.Fatalf("trx balance: %v %v", trx, err)
	}
	bal, err := BalanceOf(context.Background(), f, tokenA, owner)
	if err != nil || bal.Int64() != 250 {
		t.Fatalf("token balance: %v %v", bal, err)
	}

	allowance, err := Allowance(context.Background(), f, tokenA, owner, managerAddr)
	if err != nil || allowance.Int64() != 10 {
		t.Fatalf("allowance: %v %v", allowance, err)
	}
	unlimited, err := Allowance(context.Background(), f, common.Address{}, owner, managerAddr)
	if err != nil || unlimited.Cmp(math.MaxBig256) != 0 {
		t.Fatalf("trx allowance: %v %v", unlimited, err)
	}
}

func TestFetchTokenMetaCaches(t *testing.T) {
	f := newFakeCaller(t)
	f.returns(tokenA, "decimals", uint8(18))
	f.returns(tokenA, "symbol", "SUN")
	f.returns(tokenA, "name", "SUN TOKEN")
	cache := NewTokenMetaCache()

	meta, err := FetchTokenMeta(context.Background(), f, tokenA, cache, nil)
	if err != nil {
		t.Fatalf("token meta: %v", err)
	}
	if meta.Decimals != 18 || meta.Symbol != "SUN" || meta.Name != "SUN TOKEN" {
		t.Fatalf("meta mismatch: %+v", meta)
	}

	if _, err := FetchTokenMeta(context.Background(), f, tokenA, cache, nil); err != nil {
		t.Fatalf("cached token meta: %v", err)
	}
	if f.calls["decimals"] != 1 {
		t.Fatalf("expected cached metadata, calls: %v", f.calls)
	}
}
