package planner

import (
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bankofai/skills-tron/internal/amm"
	"github.com/bankofai/skills-tron/internal/dex"
	"github.com/bankofai/skills-tron/internal/model"
	"github.com/bankofai/skills-tron/internal/token"
	"github.com/bankofai/skills-tron/internal/tron"
)

var fixedNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func info(symbol string, hex string, decimals uint8) token.Info {
	addr := common.HexToAddress(hex)
	return token.Info{Symbol: symbol, Address: tron.FromEVM(addr), Decimals: decimals, EVM: addr, Known: true}
}

var (
	usdt = info("USDT", "0xa614f803b6fd780986a42c78ec9c7f77e6ded13c", 6)
	sun  = info("SUN", "0xb4a428ab7092c2f1395f376ce297033b3bb446c1", 18)
	wtrx = info("WTRX", "0x891cdb91d149f23b1a45d9c5ca78a88d0cb44c18", 6)
	trx  = token.Info{Symbol: "TRX", Address: token.TRXAddress, Decimals: 6, Known: true}
)

func n(v int64) *big.Int { return big.NewInt(v) }

func testPair() *dex.Pair {
	return &dex.Pair{
		Address:     common.HexToAddress("0x00000000000000000000000000000000000000aa"),
		Token0:      wtrx.EVM,
		Token1:      usdt.EVM,
		Reserve0:    n(1_000_000_000),
		Reserve1:    n(2_000_000_000),
		TotalSupply: n(100),
	}
}

func TestPlanV2AddTrimsToPoolRatio(t *testing.T) {
	plan, err := PlanV2Add(V2AddInput{
		Network:  "nile",
		TokenA:   wtrx,
		TokenB:   usdt,
		LookupA:  wtrx.EVM,
		Pair:     testPair(),
		DesiredA: n(100_000_000),
		DesiredB: n(300_000_000),
		WalletA:  Wallet{Balance: n(50_000_000), Allowance: n(1 << 40)},
		WalletB:  Wallet{Balance: n(1 << 40), Allowance: n(0)},
		Slippage: 5,
		Now:      fixedNow,
	})
	require.NoError(t, err)

	assert.Equal(t, model.ActionAddLiquidity, plan.Action)
	assert.Equal(t, "2024-05-01T12:00:00Z", plan.CreatedAt)
	assert.Equal(t, tron.FromEVM(testPair().Address), plan.Pool)
	assert.Equal(t, []string{"USDT"}, plan.NeedsApproval)
	assert.Len(t, plan.Shortfalls, 1)
	assert.Contains(t, plan.Shortfalls[0], "WTRX")
	assert.False(t, plan.Ready)

	detail := plan.Detail.(model.V2AddDetail)
	assert.True(t, detail.PoolExists)
	assert.True(t, detail.Adjusted)
	assert.Equal(t, "100000000", detail.TokenA.AmountRaw)
	assert.Equal(t, "200000000", detail.TokenB.AmountRaw)
	assert.Equal(t, "95000000", detail.TokenA.MinimumRaw)
	assert.Equal(t, "190000000", detail.TokenB.MinimumRaw)
	assert.Equal(t, "300.000000", detail.TokenB.Desired)
	require.Len(t, detail.Unused, 1)
	assert.Equal(t, model.TokenAmount{Symbol: "USDT", Amount: "100.000000", Raw: "100000000"}, detail.Unused[0])
}

func TestPlanV2AddOrientsReservesToTokenA(t *testing.T) {
	// USDT is token1 in the pair, so its reserve is 2000 against 1000 WTRX.
	plan, err := PlanV2Add(V2AddInput{
		TokenA:   usdt,
		TokenB:   wtrx,
		LookupA:  usdt.EVM,
		Pair:     testPair(),
		DesiredA: n(200_000_000),
		DesiredB: n(100_000_000),
		Slippage: 0,
	})
	require.NoError(t, err)

	detail := plan.Detail.(model.V2AddDetail)
	assert.False(t, detail.Adjusted)
	assert.Empty(t, detail.Unused)
	assert.Equal(t, "200000000", detail.TokenA.AmountRaw)
	assert.Equal(t, "100000000", detail.TokenB.AmountRaw)
	assert.True(t, plan.Ready)
}

func TestPlanV2AddNativeTRXSkipsApproval(t *testing.T) {
	plan, err := PlanV2Add(V2AddInput{
		TokenA:   trx,
		TokenB:   usdt,
		LookupA:  wtrx.EVM,
		Pair:     testPair(),
		DesiredA: n(100_000_000),
		DesiredB: n(200_000_000),
		WalletA:  Wallet{Balance: n(1 << 40), Allowance: n(0)},
		WalletB:  Wallet{Balance: n(1 << 40), Allowance: n(0)},
		Slippage: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"USDT"}, plan.NeedsApproval)
}

func TestPlanV2AddNewPool(t *testing.T) {
	plan, err := PlanV2Add(V2AddInput{
		TokenA:   wtrx,
		TokenB:   usdt,
		DesiredA: n(7),
		DesiredB: n(11),
		Slippage: 5,
	})
	require.NoError(t, err)

	detail := plan.Detail.(model.V2AddDetail)
	assert.False(t, detail.PoolExists)
	assert.Empty(t, plan.Pool)
	assert.Equal(t, "7", detail.TokenA.AmountRaw)
	assert.Equal(t, "11", detail.TokenB.AmountRaw)
	assert.Equal(t, []string{}, plan.NeedsApproval)
}

func TestPlanV2AddErrors(t *testing.T) {
	oneSided := testPair()
	oneSided.Reserve1 = n(0)
	_, err := PlanV2Add(V2AddInput{TokenA: wtrx, TokenB: usdt, LookupA: wtrx.EVM, Pair: oneSided, DesiredA: n(1), DesiredB: n(1)})
	assert.ErrorIs(t, err, amm.ErrDivisionByZero)

	_, err = PlanV2Add(V2AddInput{TokenA: wtrx, TokenB: usdt, DesiredA: n(1), DesiredB: n(1), Slippage: 101})
	assert.Error(t, err)
}

func TestPlanV2Remove(t *testing.T) {
	plan, err := PlanV2Remove(V2RemoveInput{
		Network:  "mainnet",
		TokenA:   usdt,
		TokenB:   wtrx,
		LookupA:  usdt.EVM,
		Pair:     testPair(),
		Amount:   n(10),
		LP:       Wallet{Balance: n(40), Allowance: n(0)},
		Slippage: 10,
		Now:      fixedNow,
	})
	require.NoError(t, err)

	assert.Equal(t, model.ActionRemoveLiquidity, plan.Action)
	assert.Equal(t, []string{"LP"}, plan.NeedsApproval)
	assert.False(t, plan.Ready)

	detail := plan.Detail.(model.V2RemoveDetail)
	assert.Equal(t, "200000000", detail.ExpectedA.AmountRaw)
	assert.Equal(t, "100000000", detail.ExpectedB.AmountRaw)
	assert.Equal(t, "180000000", detail.ExpectedA.MinimumRaw)
	assert.Equal(t, "90000000", detail.ExpectedB.MinimumRaw)
	assert.Equal(t, "0.000000000000000010", detail.LPToRemove)
}

func TestPlanV2RemoveErrors(t *testing.T) {
	base := V2RemoveInput{TokenA: wtrx, TokenB: usdt, LookupA: wtrx.EVM, Pair: testPair(), Amount: n(10)}

	missing := base
	missing.Pair = nil
	_, err := PlanV2Remove(missing)
	assert.ErrorIs(t, err, dex.ErrPairNotFound)

	short := base
	short.LP = Wallet{Balance: n(5)}
	_, err = PlanV2Remove(short)
	assert.ErrorIs(t, err, ErrInsufficientBalance)

	zero := base
	zero.Amount = n(0)
	_, err = PlanV2Remove(zero)
	assert.ErrorIs(t, err, amm.ErrNegativeAmount)

	empty := base
	empty.Pair = testPair()
	empty.Pair.TotalSupply = n(0)
	_, err = PlanV2Remove(empty)
	assert.ErrorIs(t, err, amm.ErrDivisionByZero)
}

func sortedPair() token.Pair {
	return token.Pair{Token0: wtrx, Token1: usdt, Addr0: wtrx.EVM, Addr1: usdt.EVM}
}

func livePool() *dex.Pool {
	return &dex.Pool{
		Address:      common.HexToAddress("0x00000000000000000000000000000000000000bb"),
		Token0:       wtrx.EVM,
		Token1:       usdt.EVM,
		Fee:          3000,
		TickSpacing:  60,
		SqrtPriceX96: new(big.Int).Set(amm.Q96),
		Tick:         0,
		Liquidity:    n(1),
	}
}

func TestPlanV3AddMint(t *testing.T) {
	plan, err := PlanV3Add(V3AddInput{
		Network:   "nile",
		Pair:      sortedPair(),
		Amount0:   n(1_000_000),
		Amount1:   n(1_000_000),
		Fee:       3000,
		TickLower: -50,
		TickUpper: 70,
		Pool:      livePool(),
		Wallet0:   Wallet{Balance: n(1_000_000), Allowance: n(0)},
		Wallet1:   Wallet{Balance: n(999_999), Allowance: n(1_000_000)},
		Slippage:  5,
		Now:       fixedNow,
	})
	require.NoError(t, err)

	assert.Equal(t, model.ActionMint, plan.Action)
	assert.Equal(t, []string{"WTRX"}, plan.NeedsApproval)
	require.Len(t, plan.Shortfalls, 1)
	assert.Contains(t, plan.Shortfalls[0], "USDT")
	assert.False(t, plan.Ready)

	detail := plan.Detail.(model.V3AddDetail)
	assert.Equal(t, int32(60), detail.TickSpacing)
	assert.Equal(t, int32(-60), detail.TickLower)
	assert.Equal(t, int32(60), detail.TickUpper)
	assert.True(t, detail.TicksAdjusted)
	assert.True(t, detail.InRange)
	require.NotNil(t, detail.CurrentTick)
	assert.Equal(t, int32(0), *detail.CurrentTick)
	assert.Equal(t, "333850249", detail.EstimatedLiquidity)
	assert.Equal(t, "999999", detail.Token0.AmountRaw)
	assert.Equal(t, "999999", detail.Token1.AmountRaw)
	assert.Equal(t, "949999", detail.Token0.MinimumRaw)
	assert.Equal(t, "0.3%", detail.FeeLabel)
	assert.Empty(t, detail.InitialSqrtPriceX96)
}

func TestPlanV3AddIncreasesExistingPosition(t *testing.T) {
	existing := &dex.Position{TokenID: n(42), Liquidity: n(10)}
	plan, err := PlanV3Add(V3AddInput{
		Pair:      sortedPair(),
		Amount0:   n(1_000_000),
		Amount1:   n(1_000_000),
		Fee:       3000,
		TickLower: -60,
		TickUpper: 60,
		Pool:      livePool(),
		Existing:  existing,
	})
	require.NoError(t, err)

	assert.Equal(t, model.ActionIncreaseLiquidity, plan.Action)
	assert.True(t, plan.Ready)
	detail := plan.Detail.(model.V3AddDetail)
	assert.Equal(t, "42", detail.ExistingPositionID)
	assert.False(t, detail.TicksAdjusted)
}

func TestPlanV3AddBootstrapsMissingPool(t *testing.T) {
	plan, err := PlanV3Add(V3AddInput{
		Pair:      sortedPair(),
		Amount0:   n(1_000_000),
		Amount1:   n(4_000_000),
		Fee:       3000,
		TickLower: 13800,
		TickUpper: 13920,
	})
	require.NoError(t, err)

	assert.Equal(t, model.ActionCreatePool, plan.Action)
	detail := plan.Detail.(model.V3AddDetail)
	assert.False(t, detail.PoolExists)
	assert.Equal(t, "158456325028528675187087900672", detail.InitialSqrtPriceX96)
	require.NotNil(t, detail.CurrentTick)
	assert.Equal(t, int32(13863), *detail.CurrentTick)
	assert.True(t, detail.InRange)
	assert.Equal(t, "629599601", detail.EstimatedLiquidity)
	assert.Equal(t, "885863", detail.Token0.AmountRaw)
	assert.Equal(t, "3999999", detail.Token1.AmountRaw)
}

func TestPlanV3AddErrors(t *testing.T) {
	base := V3AddInput{Pair: sortedPair(), Amount0: n(1), Amount1: n(1), Fee: 3000, TickLower: -60, TickUpper: 60, Pool: livePool()}

	badFee := base
	badFee.Fee = 2500
	_, err := PlanV3Add(badFee)
	assert.ErrorIs(t, err, amm.ErrInvalidTickSpacing)

	outside := base
	outside.TickUpper = amm.MaxTick + 1
	_, err = PlanV3Add(outside)
	assert.ErrorIs(t, err, amm.ErrTickOutOfBounds)

	collapsed := base
	collapsed.TickLower, collapsed.TickUpper = 10, 20
	_, err = PlanV3Add(collapsed)
	assert.ErrorIs(t, err, amm.ErrInvalidRange)

	noPrice := base
	noPrice.Pool = &dex.Pool{}
	_, err = PlanV3Add(noPrice)
	assert.ErrorIs(t, err, ErrMissingState)

	unpriced := base
	unpriced.Pool = nil
	unpriced.Amount0 = n(0)
	_, err = PlanV3Add(unpriced)
	assert.ErrorIs(t, err, amm.ErrDivisionByZero)
}

func TestUsableTickPullsClampedTicksInward(t *testing.T) {
	tick, err := usableTick(amm.MaxTick, 60)
	require.NoError(t, err)
	assert.Equal(t, int32(887220), tick)

	tick, err = usableTick(amm.MinTick, 60)
	require.NoError(t, err)
	assert.Equal(t, int32(-887220), tick)

	tick, err = usableTick(-30, 60)
	require.NoError(t, err)
	assert.Equal(t, int32(0), tick)
}

func testPosition() dex.Position {
	return dex.Position{
		TokenID:   n(7),
		Token0:    wtrx.EVM,
		Token1:    usdt.EVM,
		Fee:       3000,
		TickLower: -60,
		TickUpper: 60,
		Liquidity: n(333850249),
	}
}

func TestPlanV3Remove(t *testing.T) {
	plan, err := PlanV3Remove(V3RemoveInput{
		Network:  "nile",
		Position: testPosition(),
		Token0:   wtrx,
		Token1:   usdt,
		Pool:     *livePool(),
		Percent:  50,
		Slippage: 5,
	})
	require.NoError(t, err)

	assert.Equal(t, model.ActionDecreaseLiquidity, plan.Action)
	assert.True(t, plan.Ready)
	detail := plan.Detail.(model.V3RemoveDetail)
	assert.Equal(t, "7", detail.PositionID)
	assert.Equal(t, "166925124", detail.LiquidityToRemove)
	assert.Equal(t, "166925125", detail.RemainingLiquidity)
	assert.Equal(t, "499999", detail.Expected0.AmountRaw)
	assert.Equal(t, "499999", detail.Expected1.AmountRaw)
	assert.Equal(t, "474999", detail.Expected0.MinimumRaw)
	assert.Equal(t, "0.500000", detail.Remaining0)
	assert.Equal(t, amm.MaxUint128.String(), detail.CollectAmountMax)
}

func TestPlanV3RemoveErrors(t *testing.T) {
	base := V3RemoveInput{Position: testPosition(), Token0: wtrx, Token1: usdt, Pool: *livePool(), Percent: 100}

	for _, pct := range []int{0, 101, -5} {
		in := base
		in.Percent = pct
		_, err := PlanV3Remove(in)
		assert.ErrorIs(t, err, ErrInvalidPercent, "percent %d", pct)
	}

	empty := base
	empty.Position.Liquidity = n(0)
	_, err := PlanV3Remove(empty)
	assert.ErrorIs(t, err, ErrNoLiquidity)

	noPool := base
	noPool.Pool = dex.Pool{}
	_, err = PlanV3Remove(noPool)
	assert.ErrorIs(t, err, ErrMissingState)
}

func TestPlanCollect(t *testing.T) {
	plan, err := PlanCollect(CollectInput{Position: testPosition(), Token0: wtrx, Token1: sun, Fee0: n(1_500_000), Fee1: n(0)})
	require.NoError(t, err)

	detail := plan.Detail.(model.CollectDetail)
	assert.True(t, detail.Claimable)
	assert.True(t, plan.Ready)
	assert.Equal(t, "1.500000", detail.Fee0.Amount)
	assert.Equal(t, "0.000000000000000000", detail.Fee1.Amount)

	plan, err = PlanCollect(CollectInput{Position: testPosition(), Token0: wtrx, Token1: usdt})
	require.NoError(t, err)
	assert.False(t, plan.Detail.(model.CollectDetail).Claimable)
	assert.False(t, plan.Ready)
}
