package dexmath

import (
	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/fleshka4/cpamm/internal/apperrors"
)

var one = uint256.NewInt(1)

// MulDiv computes floor(a*b/denominator).
//
// The product is kept in a 512-bit intermediate, so it never overflows on its
// own; ErrArithmeticOverflow is returned only when the quotient does not fit in
// 256 bits or when denominator is zero. Inputs are never modified.
func MulDiv(a, b, denominator *uint256.Int) (*uint256.Int, error) {
	if denominator.IsZero() {
		return nil, errors.Wrap(apperrors.ErrArithmeticOverflow, "division by zero")
	}

	z, overflow := new(uint256.Int).MulDivOverflow(a, b, denominator)
	if overflow {
		return nil, errors.Wrap(apperrors.ErrArithmeticOverflow, "mulDiv quotient exceeds 256 bits")
	}

	return z, nil
}

// MulDivRoundingUp computes ceil(a*b/denominator) with the same overflow rules
// as MulDiv.
func MulDivRoundingUp(a, b, denominator *uint256.Int) (*uint256.Int, error) {
	z, err := MulDiv(a, b, denominator)
	if err != nil {
		return nil, err
	}

	if new(uint256.Int).MulMod(a, b, denominator).IsZero() {
		return z, nil
	}

	if _, overflow := z.AddOverflow(z, one); overflow {
		return nil, errors.Wrap(apperrors.ErrArithmeticOverflow, "mulDiv rounding exceeds 256 bits")
	}

	return z, nil
}

// AddChecked returns a+b or ErrArithmeticOverflow.
func AddChecked(a, b *uint256.Int) (*uint256.Int, error) {
	z, overflow := new(uint256.Int).AddOverflow(a, b)
	if overflow {
		return nil, errors.Wrap(apperrors.ErrArithmeticOverflow, "addition exceeds 256 bits")
	}
	return z, nil
}

// SubChecked returns a-b or ErrArithmeticOverflow when b > a.
func SubChecked(a, b *uint256.Int) (*uint256.Int, error) {
	z, underflow := new(uint256.Int).SubOverflow(a, b)
	if underflow {
		return nil, errors.Wrap(apperrors.ErrArithmeticOverflow, "subtraction underflows")
	}
	return z, nil
}

// MulChecked returns a*b or ErrArithmeticOverflow.
func MulChecked(a, b *uint256.Int) (*uint256.Int, error) {
	z, overflow := new(uint256.Int).MulOverflow(a, b)
	if overflow {
		return nil, errors.Wrap(apperrors.ErrArithmeticOverflow, "multiplication exceeds 256 bits")
	}
	return z, nil
}
