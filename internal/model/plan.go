package model

// Plan actions.
const (
	ActionAddLiquidity      = "addLiquidity"
	ActionRemoveLiquidity   = "removeLiquidity"
	ActionMint              = "mint"
	ActionIncreaseLiquidity = "increaseLiquidity"
	ActionCreatePool        = "createPool"
	ActionDecreaseLiquidity = "decreaseLiquidity"
	ActionCollect           = "collect"
)

// Plan is the read-only result of a liquidity command: everything a signer
// needs to build the transaction, plus the checks that gate it.
type Plan struct {
	Action        string      `json:"action"`
	Network       string      `json:"network"`
	Pool          string      `json:"pool,omitempty"`
	Owner         string      `json:"owner,omitempty"`
	CreatedAt     string      `json:"created_at"`
	NeedsApproval []string    `json:"needs_approval"`
	Shortfalls    []string    `json:"shortfalls,omitempty"`
	Ready         bool        `json:"ready_to_execute"`
	Detail        interface{} `json:"detail"`
}

// Leg is one token side of a plan.
type Leg struct {
	Symbol     string `json:"symbol"`
	Address    string `json:"address"`
	Desired    string `json:"desired,omitempty"`
	Amount     string `json:"amount"`
	AmountRaw  string `json:"amount_raw"`
	Minimum    string `json:"minimum"`
	MinimumRaw string `json:"minimum_raw"`
	Balance    string `json:"balance,omitempty"`
}

// V2AddDetail describes a V2 addLiquidity plan.
type V2AddDetail struct {
	PoolExists bool          `json:"pool_exists"`
	TokenA     Leg           `json:"token_a"`
	TokenB     Leg           `json:"token_b"`
	Adjusted   bool          `json:"adjusted"`
	Unused     []TokenAmount `json:"unused"`
	Slippage   float64       `json:"slippage_pct"`
}

// V2RemoveDetail describes a V2 removeLiquidity plan.
type V2RemoveDetail struct {
	LPBalance   string  `json:"lp_balance"`
	LPToRemove  string  `json:"lp_to_remove"`
	TotalSupply string  `json:"total_supply"`
	ExpectedA   Leg     `json:"expected_a"`
	ExpectedB   Leg     `json:"expected_b"`
	Slippage    float64 `json:"slippage_pct"`
}

// V3AddDetail describes a mint or increaseLiquidity plan, or the pool
// bootstrap price when the pool does not exist yet.
type V3AddDetail struct {
	PoolExists          bool    `json:"pool_exists"`
	Fee                 uint32  `json:"fee"`
	FeeLabel            string  `json:"fee_label"`
	TickSpacing         int32   `json:"tick_spacing"`
	CurrentTick         *int32  `json:"current_tick,omitempty"`
	RequestedTickLower  int32   `json:"requested_tick_lower"`
	RequestedTickUpper  int32   `json:"requested_tick_upper"`
	TickLower           int32   `json:"tick_lower"`
	TickUpper           int32   `json:"tick_upper"`
	TicksAdjusted       bool    `json:"ticks_adjusted"`
	InRange             bool    `json:"in_range"`
	ExistingPositionID  string  `json:"existing_position_id,omitempty"`
	EstimatedLiquidity  string  `json:"estimated_liquidity"`
	InitialSqrtPriceX96 string  `json:"initial_sqrt_price_x96,omitempty"`
	Token0              Leg     `json:"token0"`
	Token1              Leg     `json:"token1"`
	Slippage            float64 `json:"slippage_pct"`
}

// V3RemoveDetail describes a decreaseLiquidity plus collect plan.
type V3RemoveDetail struct {
	PositionID         string  `json:"position_id"`
	Percent            int     `json:"percent"`
	Liquidity          string  `json:"liquidity"`
	LiquidityToRemove  string  `json:"liquidity_to_remove"`
	RemainingLiquidity string  `json:"remaining_liquidity"`
	Expected0          Leg     `json:"expected0"`
	Expected1          Leg     `json:"expected1"`
	Remaining0         string  `json:"remaining0"`
	Remaining1         string  `json:"remaining1"`
	CollectAmountMax   string  `json:"collect_amount_max"`
	Slippage           float64 `json:"slippage_pct"`
}

// CollectDetail describes a fee collection plan.
type CollectDetail struct {
	PositionID string      `json:"position_id"`
	Claimable  bool        `json:"claimable"`
	Fee0       TokenAmount `json:"fee0"`
	Fee1       TokenAmount `json:"fee1"`
	AmountMax  string      `json:"amount_max"`
}
