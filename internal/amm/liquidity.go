package amm

import (
	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/fleshka4/cpamm/internal/apperrors"
	"github.com/fleshka4/cpamm/internal/dexmath"
)

// Deposit describes an accepted AddLiquidity call.
type Deposit struct {
	AmountA uint256.Int
	AmountB uint256.Int
	Minted  uint256.Int
}

// Withdrawal describes an accepted RemoveLiquidity call.
type Withdrawal struct {
	AmountA uint256.Int
	AmountB uint256.Int
	Burned  uint256.Int
}

// AddLiquidity deposits at most (amountA, amountB) at the current price ratio.
//
// The accepted pair is the largest one within the offered amounts that keeps
// the reserve ratio; the surplus on one side is left to the caller. Minted LP
// tokens are the smaller of the two proportional shares, so rounding never
// over-mints. On error the input pool is returned unchanged.
func AddLiquidity(pool Pool, amountA, amountB *uint256.Int) (Pool, Deposit, error) {
	if err := checkSnapshot(pool); err != nil {
		return pool, Deposit{}, err
	}
	if isZero(amountA) || isZero(amountB) {
		return pool, Deposit{}, errors.Wrap(apperrors.ErrInsufficientAmount, "deposit amounts must be positive")
	}
	if pool.IsEmpty() {
		return pool, Deposit{}, errors.Wrap(apperrors.ErrInsufficientLiquidity, "pool is not initialized")
	}

	acceptedA, acceptedB, err := optimalDeposit(pool, amountA, amountB)
	if err != nil {
		return pool, Deposit{}, err
	}
	if acceptedA.IsZero() || acceptedB.IsZero() {
		return pool, Deposit{}, errors.Wrap(apperrors.ErrInsufficientAmount, "deposit rounds to zero on one side")
	}

	mintA, err := dexmath.MulDiv(acceptedA, &pool.LPSupply, &pool.ReserveA)
	if err != nil {
		return pool, Deposit{}, errors.Wrap(err, "dexmath.MulDiv")
	}
	mintB, err := dexmath.MulDiv(acceptedB, &pool.LPSupply, &pool.ReserveB)
	if err != nil {
		return pool, Deposit{}, errors.Wrap(err, "dexmath.MulDiv")
	}
	minted := mintA
	if mintB.Lt(mintA) {
		minted = mintB
	}
	if minted.IsZero() {
		return pool, Deposit{}, errors.Wrap(apperrors.ErrInsufficientAmount, "deposit mints no lp tokens")
	}

	newA, err := dexmath.AddChecked(&pool.ReserveA, acceptedA)
	if err != nil {
		return pool, Deposit{}, errors.Wrap(err, "reserve a")
	}
	newB, err := dexmath.AddChecked(&pool.ReserveB, acceptedB)
	if err != nil {
		return pool, Deposit{}, errors.Wrap(err, "reserve b")
	}
	if newA.Gt(MaxReserve) || newB.Gt(MaxReserve) {
		return pool, Deposit{}, errors.Wrap(apperrors.ErrArithmeticOverflow, "deposit exceeds max reserve")
	}
	newSupply, err := dexmath.AddChecked(&pool.LPSupply, minted)
	if err != nil {
		return pool, Deposit{}, errors.Wrap(err, "lp supply")
	}

	next := pool
	next.ReserveA = *newA
	next.ReserveB = *newB
	next.LPSupply = *newSupply

	next, err = commit(next, pool.K())
	if err != nil {
		return pool, Deposit{}, err
	}

	return next, Deposit{AmountA: *acceptedA, AmountB: *acceptedB, Minted: *minted}, nil
}

// optimalDeposit picks the accepted amounts for AddLiquidity: the full amountA
// with the matching B when that fits within amountB, otherwise the full amountB
// with the matching A.
func optimalDeposit(pool Pool, amountA, amountB *uint256.Int) (*uint256.Int, *uint256.Int, error) {
	optimalB, err := dexmath.MulDiv(amountA, &pool.ReserveB, &pool.ReserveA)
	if err != nil {
		return nil, nil, errors.Wrap(err, "dexmath.MulDiv")
	}
	if !optimalB.Gt(amountB) {
		return new(uint256.Int).Set(amountA), optimalB, nil
	}

	optimalA, err := dexmath.MulDiv(amountB, &pool.ReserveA, &pool.ReserveB)
	if err != nil {
		return nil, nil, errors.Wrap(err, "dexmath.MulDiv")
	}
	return optimalA, new(uint256.Int).Set(amountB), nil
}

// RemoveLiquidity burns lpAmount and pays out the proportional share of both
// reserves, rounded down. Only the total supply bound is checked here; the
// holder's balance belongs to the caller. On error the input pool is returned
// unchanged.
func RemoveLiquidity(pool Pool, lpAmount *uint256.Int) (Pool, Withdrawal, error) {
	if err := checkSnapshot(pool); err != nil {
		return pool, Withdrawal{}, err
	}
	if isZero(lpAmount) {
		return pool, Withdrawal{}, errors.Wrap(apperrors.ErrInsufficientLpBalance, "lp amount must be positive")
	}
	if lpAmount.Gt(&pool.LPSupply) {
		return pool, Withdrawal{}, errors.Wrapf(apperrors.ErrInsufficientLpBalance,
			"lp amount %s exceeds supply %s", lpAmount.Dec(), pool.LPSupply.Dec())
	}

	outA, err := dexmath.MulDiv(lpAmount, &pool.ReserveA, &pool.LPSupply)
	if err != nil {
		return pool, Withdrawal{}, errors.Wrap(err, "dexmath.MulDiv")
	}
	outB, err := dexmath.MulDiv(lpAmount, &pool.ReserveB, &pool.LPSupply)
	if err != nil {
		return pool, Withdrawal{}, errors.Wrap(err, "dexmath.MulDiv")
	}
	if outA.IsZero() || outB.IsZero() {
		return pool, Withdrawal{}, errors.Wrap(apperrors.ErrInsufficientLiquidity, "withdrawal rounds to zero on one side")
	}

	newA, err := dexmath.SubChecked(&pool.ReserveA, outA)
	if err != nil {
		return pool, Withdrawal{}, errors.Wrap(err, "reserve a")
	}
	newB, err := dexmath.SubChecked(&pool.ReserveB, outB)
	if err != nil {
		return pool, Withdrawal{}, errors.Wrap(err, "reserve b")
	}
	newSupply, err := dexmath.SubChecked(&pool.LPSupply, lpAmount)
	if err != nil {
		return pool, Withdrawal{}, errors.Wrap(err, "lp supply")
	}
	if newSupply.IsZero() && (!newA.IsZero() || !newB.IsZero()) {
		return pool, Withdrawal{}, errors.Wrapf(apperrors.ErrInvariantViolation,
			"dust reserves %s/%s left at zero supply", newA.Dec(), newB.Dec())
	}

	floor, err := withdrawnFloor(pool.K(), newSupply, &pool.LPSupply)
	if err != nil {
		return pool, Withdrawal{}, err
	}

	next := pool
	next.ReserveA = *newA
	next.ReserveB = *newB
	next.LPSupply = *newSupply

	next, err = commit(next, floor)
	if err != nil {
		return pool, Withdrawal{}, err
	}

	return next, Withdrawal{AmountA: *outA, AmountB: *outB, Burned: *lpAmount}, nil
}

// withdrawnFloor scales k by (remaining/supply)^2, the share of k that must
// survive a proportional withdrawal.
func withdrawnFloor(k, remaining, supply *uint256.Int) (*uint256.Int, error) {
	scaled, err := dexmath.MulDiv(k, remaining, supply)
	if err != nil {
		return nil, errors.Wrap(err, "dexmath.MulDiv")
	}
	floor, err := dexmath.MulDiv(scaled, remaining, supply)
	if err != nil {
		return nil, errors.Wrap(err, "dexmath.MulDiv")
	}
	return floor, nil
}
