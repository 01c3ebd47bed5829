package amm

import (
	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/fleshka4/cpamm/internal/apperrors"
	"github.com/fleshka4/cpamm/internal/dexmath"
)

// Quotation previews a swap without committing it.
type Quotation struct {
	Fill
	// SpotBefore and SpotAfter are output-per-input prices scaled by PriceScale.
	SpotBefore uint256.Int
	SpotAfter  uint256.Int
	// PriceImpactBps is how far the execution price falls below SpotBefore.
	PriceImpactBps uint64
}

// Quote prices selling amountIn in direction dir. It applies every swap gate
// except access control and slippage, so a successful quote is executable by
// an authorized requester against the same snapshot.
func Quote(pool Pool, dir Direction, amountIn *uint256.Int) (Quotation, error) {
	if err := checkSnapshot(pool); err != nil {
		return Quotation{}, err
	}

	fill, err := price(pool, dir, amountIn)
	if err != nil {
		return Quotation{}, err
	}
	if fill.AmountOut.IsZero() {
		return Quotation{}, errors.Wrap(apperrors.ErrInsufficientAmount, "swap output rounds to zero")
	}

	next, err := apply(pool, dir, fill)
	if err != nil {
		return Quotation{}, err
	}

	before, err := pool.SpotPrice(dir)
	if err != nil {
		return Quotation{}, err
	}
	after, err := next.SpotPrice(dir)
	if err != nil {
		return Quotation{}, err
	}
	impact, err := priceImpactBps(before, &fill)
	if err != nil {
		return Quotation{}, err
	}

	return Quotation{
		Fill:           fill,
		SpotBefore:     *before,
		SpotAfter:      *after,
		PriceImpactBps: impact,
	}, nil
}

// priceImpactBps returns (spot - execution) / spot in basis points, where the
// execution price is AmountOut/AmountIn. The fee counts toward the impact.
func priceImpactBps(spot *uint256.Int, fill *Fill) (uint64, error) {
	exec, err := dexmath.MulDiv(&fill.AmountOut, PriceScale, &fill.AmountIn)
	if err != nil {
		return 0, errors.Wrap(err, "dexmath.MulDiv")
	}
	if spot.IsZero() || !exec.Lt(spot) {
		return 0, nil
	}

	gap := new(uint256.Int).Sub(spot, exec)
	bps, err := dexmath.MulDiv(gap, feeDen, spot)
	if err != nil {
		return 0, errors.Wrap(err, "dexmath.MulDiv")
	}
	return bps.Uint64(), nil
}
