package validate

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/fleshka4/cpamm/internal/amm"
	"github.com/fleshka4/cpamm/internal/apperrors"
	sdto "github.com/fleshka4/cpamm/internal/service/dto"
	"github.com/fleshka4/cpamm/internal/transport/http/dto"
)

const maxBodyBytes = 1 << 16

// CreatePoolRequestValidate validates POST /pools and returns the service dto.
func CreatePoolRequestValidate(r *http.Request) (*sdto.CreatePoolRequest, int, error) {
	var body dto.CreatePoolRequest
	if err := decodeBody(r, &body); err != nil {
		return nil, http.StatusBadRequest, err
	}

	tokenA, err := address("token_a", body.TokenA)
	if err != nil {
		return nil, http.StatusBadRequest, err
	}
	tokenB, err := address("token_b", body.TokenB)
	if err != nil {
		return nil, http.StatusBadRequest, err
	}
	owner, err := address("owner", body.Owner)
	if err != nil {
		return nil, http.StatusBadRequest, err
	}
	var swapper common.Address
	if body.AllowedSwapper != "" {
		if swapper, err = address("allowed_swapper", body.AllowedSwapper); err != nil {
			return nil, http.StatusBadRequest, err
		}
	}
	amountA, err := amount("amount_a", body.AmountA)
	if err != nil {
		return nil, http.StatusBadRequest, err
	}
	amountB, err := amount("amount_b", body.AmountB)
	if err != nil {
		return nil, http.StatusBadRequest, err
	}

	return &sdto.CreatePoolRequest{
		TokenA:         tokenA,
		TokenB:         tokenB,
		AmountA:        amountA,
		AmountB:        amountB,
		FeeBps:         body.FeeBps,
		AllowedSwapper: swapper,
		Owner:          owner,
	}, 0, nil
}

// AddLiquidityRequestValidate validates POST /pools/{id}/add-liquidity.
func AddLiquidityRequestValidate(r *http.Request) (*sdto.AddLiquidityRequest, int, error) {
	id, code, err := PoolIDValidate(r)
	if err != nil {
		return nil, code, err
	}

	var body dto.AddLiquidityRequest
	if err := decodeBody(r, &body); err != nil {
		return nil, http.StatusBadRequest, err
	}

	provider, err := address("provider", body.Provider)
	if err != nil {
		return nil, http.StatusBadRequest, err
	}
	amountA, err := amount("amount_a", body.AmountA)
	if err != nil {
		return nil, http.StatusBadRequest, err
	}
	amountB, err := amount("amount_b", body.AmountB)
	if err != nil {
		return nil, http.StatusBadRequest, err
	}

	return &sdto.AddLiquidityRequest{
		PoolID:   id,
		Provider: provider,
		AmountA:  amountA,
		AmountB:  amountB,
	}, 0, nil
}

// RemoveLiquidityRequestValidate validates POST /pools/{id}/remove-liquidity.
func RemoveLiquidityRequestValidate(r *http.Request) (*sdto.RemoveLiquidityRequest, int, error) {
	id, code, err := PoolIDValidate(r)
	if err != nil {
		return nil, code, err
	}

	var body dto.RemoveLiquidityRequest
	if err := decodeBody(r, &body); err != nil {
		return nil, http.StatusBadRequest, err
	}

	provider, err := address("provider", body.Provider)
	if err != nil {
		return nil, http.StatusBadRequest, err
	}
	lp, err := amount("lp_amount", body.LPAmount)
	if err != nil {
		return nil, http.StatusBadRequest, err
	}

	return &sdto.RemoveLiquidityRequest{PoolID: id, Provider: provider, LPAmount: lp}, 0, nil
}

// SwapRequestValidate validates POST /pools/{id}/swap.
func SwapRequestValidate(r *http.Request) (*sdto.SwapRequest, int, error) {
	id, code, err := PoolIDValidate(r)
	if err != nil {
		return nil, code, err
	}

	var body dto.SwapRequest
	if err := decodeBody(r, &body); err != nil {
		return nil, http.StatusBadRequest, err
	}

	requester, err := address("requester", body.Requester)
	if err != nil {
		return nil, http.StatusBadRequest, err
	}
	dir, err := direction(body.Direction)
	if err != nil {
		return nil, http.StatusBadRequest, err
	}
	in, err := amount("amount_in", body.AmountIn)
	if err != nil {
		return nil, http.StatusBadRequest, err
	}
	var minOut *uint256.Int
	if body.MinAmountOut != "" {
		if minOut, err = amount("min_amount_out", body.MinAmountOut); err != nil {
			return nil, http.StatusBadRequest, err
		}
	}

	return &sdto.SwapRequest{
		PoolID:       id,
		Requester:    requester,
		Direction:    dir,
		AmountIn:     in,
		MinAmountOut: minOut,
	}, 0, nil
}

// QuoteRequestValidate validates GET /pools/{id}/quote?direction=&amount_in=.
func QuoteRequestValidate(r *http.Request) (*sdto.QuoteRequest, int, error) {
	id, code, err := PoolIDValidate(r)
	if err != nil {
		return nil, code, err
	}

	q := r.URL.Query()
	dir, err := direction(q.Get("direction"))
	if err != nil {
		return nil, http.StatusBadRequest, err
	}
	in, err := amount("amount_in", q.Get("amount_in"))
	if err != nil {
		return nil, http.StatusBadRequest, err
	}

	return &sdto.QuoteRequest{PoolID: id, Direction: dir, AmountIn: in}, 0, nil
}

// PoolIDValidate parses the {id} path segment.
func PoolIDValidate(r *http.Request) (common.Hash, int, error) {
	raw := r.PathValue("id")
	b, err := hexutil.Decode(raw)
	if err != nil || len(b) != common.HashLength {
		return common.Hash{}, http.StatusBadRequest,
			errors.Wrapf(apperrors.ErrInvalidArgument, "bad pool id %q", raw)
	}
	return common.BytesToHash(b), 0, nil
}

// HolderValidate parses the {holder} path segment.
func HolderValidate(r *http.Request) (common.Address, int, error) {
	holder, err := address("holder", r.PathValue("holder"))
	if err != nil {
		return common.Address{}, http.StatusBadRequest, err
	}
	return holder, 0, nil
}

func decodeBody(r *http.Request, v any) error {
	if r.Body == nil {
		return errors.Wrap(apperrors.ErrInvalidArgument, "missing body")
	}
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.Wrapf(apperrors.ErrInvalidArgument, "bad body: %v", err)
	}
	return nil
}

func address(name, s string) (common.Address, error) {
	if s == "" {
		return common.Address{}, errors.Wrapf(apperrors.ErrInvalidArgument, "missing %s", name)
	}
	if !common.IsHexAddress(s) {
		return common.Address{}, errors.Wrapf(apperrors.ErrInvalidArgument, "bad %s address format", name)
	}
	return common.HexToAddress(s), nil
}

func amount(name, s string) (*uint256.Int, error) {
	if s == "" {
		return nil, errors.Wrapf(apperrors.ErrInvalidArgument, "missing %s", name)
	}
	v, err := uint256.FromDecimal(s)
	if err != nil {
		return nil, errors.Wrapf(apperrors.ErrInvalidArgument, "bad %s: %v", name, err)
	}
	return v, nil
}

func direction(s string) (amm.Direction, error) {
	if s == "" {
		return 0, errors.Wrap(apperrors.ErrInvalidArgument, "missing direction")
	}
	var dir amm.Direction
	if err := dir.UnmarshalText([]byte(s)); err != nil {
		return 0, err
	}
	return dir, nil
}
