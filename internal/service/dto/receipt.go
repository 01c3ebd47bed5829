package dto

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// Op names a state-changing pool operation.
type Op string

// Operations that produce a receipt.
const (
	OpCreatePool      Op = "create_pool"
	OpAddLiquidity    Op = "add_liquidity"
	OpRemoveLiquidity Op = "remove_liquidity"
	OpSwap            Op = "swap"
)

// Status is the outcome of an operation.
type Status string

// Receipt statuses.
const (
	StatusSuccess Status = "success"
	StatusFailure Status = "failure"
)

// Receipt is the record of one operation. Amount fields are set only for a
// successful operation and only when they apply to Op.
type Receipt struct {
	TxID    string
	Op      Op
	Status  Status
	Message string
	PoolID  common.Hash

	// AmountA and AmountB are the reserves deposited (create, add) or paid
	// out (remove).
	AmountA *uint256.Int
	AmountB *uint256.Int
	// LPAmount is the LP supply minted (create, add) or burned (remove).
	LPAmount *uint256.Int

	AmountIn  *uint256.Int
	Fee       *uint256.Int
	AmountOut *uint256.Int
}
