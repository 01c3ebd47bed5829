package dto

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/fleshka4/cpamm/internal/amm"
)

// CreatePoolRequest represents a request to open and fund a new pool.
type CreatePoolRequest struct {
	TokenA         common.Address
	TokenB         common.Address
	AmountA        *uint256.Int
	AmountB        *uint256.Int
	FeeBps         uint16
	AllowedSwapper common.Address
	// Owner receives the initial LP supply.
	Owner common.Address
}

// AddLiquidityRequest represents a deposit into an existing pool.
type AddLiquidityRequest struct {
	PoolID   common.Hash
	Provider common.Address
	AmountA  *uint256.Int
	AmountB  *uint256.Int
}

// RemoveLiquidityRequest represents a burn of LP tokens held by Provider.
type RemoveLiquidityRequest struct {
	PoolID   common.Hash
	Provider common.Address
	LPAmount *uint256.Int
}

// SwapRequest represents a swap against a pool. A nil MinAmountOut accepts
// any output.
type SwapRequest struct {
	PoolID       common.Hash
	Requester    common.Address
	Direction    amm.Direction
	AmountIn     *uint256.Int
	MinAmountOut *uint256.Int
}

// QuoteRequest represents a swap preview.
type QuoteRequest struct {
	PoolID    common.Hash
	Direction amm.Direction
	AmountIn  *uint256.Int
}
