package dex

import "github.com/ethereum/go-ethereum/accounts/abi"

// TRC20 shares the ERC20 interface, including the bytes32 metadata variant
// some older tokens still return.
const trc20ABIStringJSON = `[
  {"inputs": [], "name": "decimals", "outputs": [{"type": "uint8"}], "stateMutability": "view", "type": "function"},
  {"inputs": [], "name": "symbol", "outputs": [{"type": "string"}], "stateMutability": "view", "type": "function"},
  {"inputs": [], "name": "name", "outputs": [{"type": "string"}], "stateMutability": "view", "type": "function"},
  {"inputs": [{"name": "owner", "type": "address"}], "name": "balanceOf", "outputs": [{"type": "uint256"}], "stateMutability": "view", "type": "function"},
  {"inputs": [{"name": "owner", "type": "address"}, {"name": "spender", "type": "address"}], "name": "allowance", "outputs": [{"type": "uint256"}], "stateMutability": "view", "type": "function"}
]`

const trc20ABIBytes32JSON = `[
  {"inputs": [], "name": "symbol", "outputs": [{"type": "bytes32"}], "stateMutability": "view", "type": "function"},
  {"inputs": [], "name": "name", "outputs": [{"type": "bytes32"}], "stateMutability": "view", "type": "function"}
]`

var (
	trc20ABIString  = &lazyABI{json: trc20ABIStringJSON}
	trc20ABIBytes32 = &lazyABI{json: trc20ABIBytes32JSON}
)

// TRC20ABI returns the parsed token ABI.
func TRC20ABI() (abi.ABI, error) { return trc20ABIString.get() }

func trc20ABIBytes32Instance() (abi.ABI, error) { return trc20ABIBytes32.get() }
