package model

// TokenMeta captures TRC20 metadata.
type TokenMeta struct {
	Address  string `json:"address"`
	Decimals uint8  `json:"decimals"`
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
}

// TokenAmount is an amount of one token in both human and raw units.
type TokenAmount struct {
	Symbol string `json:"symbol"`
	Amount string `json:"amount"`
	Raw    string `json:"raw"`
}
