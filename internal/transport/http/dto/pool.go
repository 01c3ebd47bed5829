package dto

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/fleshka4/cpamm/internal/amm"
	sdto "github.com/fleshka4/cpamm/internal/service/dto"
)

// Amounts travel as decimal strings so that 256-bit values survive JSON.

// CreatePoolRequest is the body of POST /pools.
type CreatePoolRequest struct {
	TokenA         string `json:"token_a"`
	TokenB         string `json:"token_b"`
	AmountA        string `json:"amount_a"`
	AmountB        string `json:"amount_b"`
	FeeBps         uint16 `json:"fee_bps"`
	AllowedSwapper string `json:"allowed_swapper,omitempty"`
	Owner          string `json:"owner"`
}

// AddLiquidityRequest is the body of POST /pools/{id}/add-liquidity.
type AddLiquidityRequest struct {
	Provider string `json:"provider"`
	AmountA  string `json:"amount_a"`
	AmountB  string `json:"amount_b"`
}

// RemoveLiquidityRequest is the body of POST /pools/{id}/remove-liquidity.
type RemoveLiquidityRequest struct {
	Provider string `json:"provider"`
	LPAmount string `json:"lp_amount"`
}

// SwapRequest is the body of POST /pools/{id}/swap.
type SwapRequest struct {
	Requester    string `json:"requester"`
	Direction    string `json:"direction"`
	AmountIn     string `json:"amount_in"`
	MinAmountOut string `json:"min_amount_out,omitempty"`
}

// PoolResponse is the JSON view of a pool snapshot.
type PoolResponse struct {
	ID             string `json:"id"`
	TokenA         string `json:"token_a"`
	TokenB         string `json:"token_b"`
	ReserveA       string `json:"reserve_a"`
	ReserveB       string `json:"reserve_b"`
	LPSupply       string `json:"lp_supply"`
	FeeBps         uint16 `json:"fee_bps"`
	AllowedSwapper string `json:"allowed_swapper,omitempty"`
	K              string `json:"k"`
	// PriceAToB is the price of token A in token B scaled by 1e18.
	PriceAToB string `json:"price_a_to_b,omitempty"`
}

// NewPoolResponse converts a pool snapshot.
func NewPoolResponse(p amm.Pool) PoolResponse {
	resp := PoolResponse{
		ID:       p.ID().Hex(),
		TokenA:   p.TokenA.Hex(),
		TokenB:   p.TokenB.Hex(),
		ReserveA: p.ReserveA.Dec(),
		ReserveB: p.ReserveB.Dec(),
		LPSupply: p.LPSupply.Dec(),
		FeeBps:   p.FeeBps,
		K:        p.K().Dec(),
	}
	if p.Restricted() {
		resp.AllowedSwapper = p.AllowedSwapper.Hex()
	}
	if price, err := p.SpotPrice(amm.AToB); err == nil {
		resp.PriceAToB = price.Dec()
	}
	return resp
}

// ReceiptResponse is the JSON view of a transaction receipt.
type ReceiptResponse struct {
	TxID      string `json:"tx_id"`
	Op        string `json:"op"`
	Status    string `json:"status"`
	Message   string `json:"message,omitempty"`
	PoolID    string `json:"pool_id"`
	AmountA   string `json:"amount_a,omitempty"`
	AmountB   string `json:"amount_b,omitempty"`
	LPAmount  string `json:"lp_amount,omitempty"`
	AmountIn  string `json:"amount_in,omitempty"`
	Fee       string `json:"fee,omitempty"`
	AmountOut string `json:"amount_out,omitempty"`
}

// NewReceiptResponse converts a service receipt.
func NewReceiptResponse(rc sdto.Receipt) ReceiptResponse {
	return ReceiptResponse{
		TxID:      rc.TxID,
		Op:        string(rc.Op),
		Status:    string(rc.Status),
		Message:   rc.Message,
		PoolID:    rc.PoolID.Hex(),
		AmountA:   dec(rc.AmountA),
		AmountB:   dec(rc.AmountB),
		LPAmount:  dec(rc.LPAmount),
		AmountIn:  dec(rc.AmountIn),
		Fee:       dec(rc.Fee),
		AmountOut: dec(rc.AmountOut),
	}
}

// QuoteResponse is the JSON view of a swap preview.
type QuoteResponse struct {
	AmountIn       string `json:"amount_in"`
	Fee            string `json:"fee"`
	AmountOut      string `json:"amount_out"`
	SpotBefore     string `json:"spot_before"`
	SpotAfter      string `json:"spot_after"`
	PriceImpactBps uint64 `json:"price_impact_bps"`
}

// NewQuoteResponse converts a quotation.
func NewQuoteResponse(q amm.Quotation) QuoteResponse {
	return QuoteResponse{
		AmountIn:       q.AmountIn.Dec(),
		Fee:            q.Fee.Dec(),
		AmountOut:      q.AmountOut.Dec(),
		SpotBefore:     q.SpotBefore.Dec(),
		SpotAfter:      q.SpotAfter.Dec(),
		PriceImpactBps: q.PriceImpactBps,
	}
}

// BalanceResponse is the LP balance of a holder.
type BalanceResponse struct {
	PoolID  string `json:"pool_id"`
	Holder  string `json:"holder"`
	Balance string `json:"balance"`
}

// NewBalanceResponse builds a BalanceResponse.
func NewBalanceResponse(id common.Hash, holder common.Address, balance *uint256.Int) BalanceResponse {
	return BalanceResponse{PoolID: id.Hex(), Holder: holder.Hex(), Balance: dec(balance)}
}

// ErrorResponse is returned for failed reads.
type ErrorResponse struct {
	Error string `json:"error"`
}

func dec(v *uint256.Int) string {
	if v == nil {
		return ""
	}
	return v.Dec()
}
