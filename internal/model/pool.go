package model

// PoolSnapshot is a V3 pool's state at one point in time.
type PoolSnapshot struct {
	Network      string `json:"network"`
	Address      string `json:"address"`
	Token0       string `json:"token0"`
	Token1       string `json:"token1"`
	Symbol0      string `json:"symbol0"`
	Symbol1      string `json:"symbol1"`
	Fee          uint32 `json:"fee"`
	FeeLabel     string `json:"fee_label"`
	TickSpacing  int32  `json:"tick_spacing"`
	SqrtPriceX96 string `json:"sqrt_price_x96"`
	Tick         int32  `json:"tick"`
	Liquidity    string `json:"liquidity"`
	BlockNumber  uint64 `json:"block_number,omitempty"`
	ObservedAt   string `json:"observed_at"`
}

// PairSnapshot is a V2 pair's reserves at one point in time.
type PairSnapshot struct {
	Network     string `json:"network"`
	Address     string `json:"address"`
	Token0      string `json:"token0"`
	Token1      string `json:"token1"`
	Symbol0     string `json:"symbol0"`
	Symbol1     string `json:"symbol1"`
	Reserve0    string `json:"reserve0"`
	Reserve1    string `json:"reserve1"`
	TotalSupply string `json:"total_supply"`
	BlockNumber uint64 `json:"block_number,omitempty"`
	ObservedAt  string `json:"observed_at"`
}

// PositionRecord describes one V3 position NFT.
type PositionRecord struct {
	TokenID     string `json:"token_id"`
	Token0      string `json:"token0"`
	Token1      string `json:"token1"`
	Symbol0     string `json:"symbol0"`
	Symbol1     string `json:"symbol1"`
	Fee         uint32 `json:"fee"`
	TickLower   int32  `json:"tick_lower"`
	TickUpper   int32  `json:"tick_upper"`
	Liquidity   string `json:"liquidity"`
	TokensOwed0 string `json:"tokens_owed0"`
	TokensOwed1 string `json:"tokens_owed1"`
}
