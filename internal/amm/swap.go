package amm

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/fleshka4/cpamm/internal/apperrors"
	"github.com/fleshka4/cpamm/internal/dexmath"
)

// Direction selects which reserve a swap pays into.
type Direction uint8

const (
	// AToB sells token A for token B.
	AToB Direction = iota
	// BToA sells token B for token A.
	BToA
)

// String implements fmt.Stringer.
func (d Direction) String() string {
	switch d {
	case AToB:
		return "a_to_b"
	case BToA:
		return "b_to_a"
	default:
		return "unknown"
	}
}

// Valid reports whether d is AToB or BToA.
func (d Direction) Valid() bool {
	return d == AToB || d == BToA
}

// MarshalText implements encoding.TextMarshaler.
func (d Direction) MarshalText() ([]byte, error) {
	if !d.Valid() {
		return nil, errors.Wrapf(apperrors.ErrInvalidArgument, "direction %d", d)
	}
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Direction) UnmarshalText(text []byte) error {
	switch string(text) {
	case "a_to_b", "AtoB":
		*d = AToB
	case "b_to_a", "BtoA":
		*d = BToA
	default:
		return errors.Wrapf(apperrors.ErrInvalidArgument, "unknown direction %q", text)
	}
	return nil
}

// SwapRequest is a request to sell AmountIn of the input token. A nil
// MinAmountOut accepts any output.
type SwapRequest struct {
	Direction    Direction
	AmountIn     *uint256.Int
	MinAmountOut *uint256.Int
	Requester    common.Address
}

// Fill describes an executed or quoted swap. Fee is the part of AmountIn that
// stays in the pool without being priced.
type Fill struct {
	AmountIn  uint256.Int
	Fee       uint256.Int
	AmountOut uint256.Int
}

// Swap executes a fee-adjusted constant-product swap.
//
// Gates run in order: access, input, pricing, slippage, zero output,
// depletion, then the k post-condition. The whole AmountIn, fee included, is
// added to the input reserve. On error the input pool is returned unchanged.
func Swap(pool Pool, req SwapRequest) (Pool, Fill, error) {
	if err := checkSnapshot(pool); err != nil {
		return pool, Fill{}, err
	}

	if pool.Restricted() && req.Requester != pool.AllowedSwapper {
		return pool, Fill{}, errors.Wrapf(apperrors.ErrUnauthorized, "requester %s", req.Requester.Hex())
	}

	fill, err := price(pool, req.Direction, req.AmountIn)
	if err != nil {
		return pool, Fill{}, err
	}

	if req.MinAmountOut != nil && fill.AmountOut.Lt(req.MinAmountOut) {
		return pool, Fill{}, errors.Wrapf(apperrors.ErrSlippageExceeded,
			"amount out %s below minimum %s", fill.AmountOut.Dec(), req.MinAmountOut.Dec())
	}
	if fill.AmountOut.IsZero() {
		return pool, Fill{}, errors.Wrap(apperrors.ErrInsufficientAmount, "swap output rounds to zero")
	}

	next, err := apply(pool, req.Direction, fill)
	if err != nil {
		return pool, Fill{}, err
	}

	return next, fill, nil
}

// price computes the fee and output of selling amountIn against the pool:
// fee = ceil(amountIn*feeBps/10000), out = reserveOut*x/(reserveIn+x) with
// x = amountIn-fee.
func price(pool Pool, dir Direction, amountIn *uint256.Int) (Fill, error) {
	if isZero(amountIn) {
		return Fill{}, errors.Wrap(apperrors.ErrInvalidAmount, "amount in must be positive")
	}
	if !dir.Valid() {
		return Fill{}, errors.Wrapf(apperrors.ErrInvalidArgument, "direction %d", dir)
	}
	if pool.IsEmpty() {
		return Fill{}, errors.Wrap(apperrors.ErrInsufficientLiquidity, "pool is empty")
	}

	fee, err := dexmath.MulDivRoundingUp(amountIn, uint256.NewInt(uint64(pool.FeeBps)), feeDen)
	if err != nil {
		return Fill{}, errors.Wrap(err, "dexmath.MulDivRoundingUp")
	}
	afterFee, err := dexmath.SubChecked(amountIn, fee)
	if err != nil {
		return Fill{}, errors.Wrap(err, "dexmath.SubChecked")
	}

	reserveIn, reserveOut := pool.Reserves(dir)
	den, err := dexmath.AddChecked(&reserveIn, afterFee)
	if err != nil {
		return Fill{}, errors.Wrap(err, "dexmath.AddChecked")
	}
	out, err := dexmath.MulDiv(&reserveOut, afterFee, den)
	if err != nil {
		return Fill{}, errors.Wrap(err, "dexmath.MulDiv")
	}

	return Fill{AmountIn: *amountIn, Fee: *fee, AmountOut: *out}, nil
}

// apply moves a priced fill into the reserves and asserts k did not decrease.
func apply(pool Pool, dir Direction, fill Fill) (Pool, error) {
	reserveIn, reserveOut := pool.Reserves(dir)
	if !fill.AmountOut.Lt(&reserveOut) {
		return pool, errors.Wrapf(apperrors.ErrInsufficientLiquidity,
			"amount out %s would drain reserve %s", fill.AmountOut.Dec(), reserveOut.Dec())
	}

	newIn, err := dexmath.AddChecked(&reserveIn, &fill.AmountIn)
	if err != nil {
		return pool, errors.Wrap(err, "input reserve")
	}
	if newIn.Gt(MaxReserve) {
		return pool, errors.Wrap(apperrors.ErrArithmeticOverflow, "swap exceeds max reserve")
	}
	newOut, err := dexmath.SubChecked(&reserveOut, &fill.AmountOut)
	if err != nil {
		return pool, errors.Wrap(err, "output reserve")
	}

	next, err := commit(pool.withReserves(dir, newIn, newOut), pool.K())
	if err != nil {
		return pool, err
	}
	return next, nil
}

// MinAmountOut returns the output floor that tolerates slippageBps of
// slippage from expected, rounded down.
func MinAmountOut(expected *uint256.Int, slippageBps uint16) (*uint256.Int, error) {
	if expected == nil {
		return nil, errors.Wrap(apperrors.ErrInvalidAmount, "expected amount is required")
	}
	if slippageBps > FeeDenominator {
		return nil, errors.Wrapf(apperrors.ErrInvalidArgument, "slippage %d bps exceeds %d", slippageBps, FeeDenominator)
	}
	keep := uint256.NewInt(uint64(FeeDenominator - slippageBps))
	return dexmath.MulDiv(expected, keep, feeDen)
}
