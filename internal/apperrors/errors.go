package apperrors

import "github.com/pkg/errors"

var (
	// ErrInvalidArgument is returned when the request parameters are invalid.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrInvalidInitialLiquidity is returned when a pool is created with a zero
	// amount on either side.
	ErrInvalidInitialLiquidity = errors.New("invalid initial liquidity")

	// ErrInvalidFee is returned when the fee is outside [0, 10000] bps.
	ErrInvalidFee = errors.New("invalid fee")

	// ErrInvalidTokenPair is returned when the pool tokens are identical or empty.
	ErrInvalidTokenPair = errors.New("invalid token pair")

	// ErrInsufficientAmount is returned when an operation rounds down to a
	// degenerate amount on either side.
	ErrInsufficientAmount = errors.New("insufficient amount")

	// ErrInsufficientLiquidity is returned when the pool does not have enough
	// reserves to satisfy the requested operation.
	ErrInsufficientLiquidity = errors.New("insufficient liquidity")

	// ErrInsufficientLpBalance is returned when more LP tokens are burned than
	// the supply or the holder's balance allows.
	ErrInsufficientLpBalance = errors.New("insufficient lp balance")

	// ErrUnauthorized is returned when a swap is attempted by a party other than
	// the pool's allowed swapper.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInvalidAmount is returned for a missing or zero swap input.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrSlippageExceeded is returned when the computed output is below the
	// caller's minimum.
	ErrSlippageExceeded = errors.New("slippage exceeded")

	// ErrArithmeticOverflow is returned when an intermediate or final value does
	// not fit the supported range.
	ErrArithmeticOverflow = errors.New("arithmetic overflow")

	// ErrInvariantViolation signals a failed post-condition. It is always a
	// defect in the engine, never a user error.
	ErrInvariantViolation = errors.New("invariant violation")

	// ErrPoolNotFound is returned when no pool is registered under the given id.
	ErrPoolNotFound = errors.New("pool not found")

	// ErrPoolExists is returned when a pool for the token pair is already registered.
	ErrPoolExists = errors.New("pool already exists")
)

// IsDefect reports whether err is an internal post-condition failure.
func IsDefect(err error) bool {
	return errors.Is(err, ErrInvariantViolation)
}

// IsRetryable reports whether resubmitting with a fresh quote may succeed.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrSlippageExceeded)
}
