package validate

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"github.com/fleshka4/cpamm/internal/amm"
	"github.com/fleshka4/cpamm/internal/apperrors"
	"github.com/fleshka4/cpamm/internal/service/dto"
)

var (
	zeroAddress = common.Address{}
	zeroHash    = common.Hash{}
)

// CreatePoolRequestValidate validates a pool creation request. Tokens, amounts
// and fee are checked by amm.CreatePool.
func CreatePoolRequestValidate(req dto.CreatePoolRequest) error {
	return addressValidate(req.Owner, "owner")
}

// AddLiquidityRequestValidate validates a deposit request.
func AddLiquidityRequestValidate(req dto.AddLiquidityRequest) error {
	return multierr.Combine(
		poolIDValidate(req.PoolID),
		addressValidate(req.Provider, "provider"),
	)
}

// RemoveLiquidityRequestValidate validates a withdrawal request.
func RemoveLiquidityRequestValidate(req dto.RemoveLiquidityRequest) error {
	return multierr.Combine(
		poolIDValidate(req.PoolID),
		addressValidate(req.Provider, "provider"),
	)
}

// SwapRequestValidate validates a swap request.
func SwapRequestValidate(req dto.SwapRequest) error {
	return multierr.Combine(
		poolIDValidate(req.PoolID),
		addressValidate(req.Requester, "requester"),
		directionValidate(req.Direction),
	)
}

// QuoteRequestValidate validates a quote request.
func QuoteRequestValidate(req dto.QuoteRequest) error {
	return multierr.Combine(
		poolIDValidate(req.PoolID),
		directionValidate(req.Direction),
	)
}

func poolIDValidate(id common.Hash) error {
	if id == zeroHash {
		return errors.Wrap(apperrors.ErrInvalidArgument, "pool id cannot be empty")
	}
	return nil
}

func addressValidate(addr common.Address, name string) error {
	if addr == zeroAddress {
		return errors.Wrapf(apperrors.ErrInvalidArgument, "%s address cannot be empty", name)
	}
	return nil
}

func directionValidate(dir amm.Direction) error {
	if !dir.Valid() {
		return errors.Wrapf(apperrors.ErrInvalidArgument, "unknown direction %d", dir)
	}
	return nil
}
