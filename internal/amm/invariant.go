package amm

import (
	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/fleshka4/cpamm/internal/apperrors"
)

// CheckInvariant reports whether a snapshot is self-consistent:
//   - tokens are non-empty and canonically ordered;
//   - the fee is within [0, FeeDenominator];
//   - reserves do not exceed MaxReserve;
//   - reserveA, reserveB and lpSupply are either all zero or all positive;
//   - k = reserveA*reserveB is at least KLast;
//   - k is at least lpSupply^2.
func CheckInvariant(p Pool) bool {
	if p.TokenA.Cmp(p.TokenB) >= 0 {
		return false
	}
	if p.FeeBps > FeeDenominator {
		return false
	}
	if p.ReserveA.Gt(MaxReserve) || p.ReserveB.Gt(MaxReserve) {
		return false
	}

	emptyA, emptyB, emptyLP := p.ReserveA.IsZero(), p.ReserveB.IsZero(), p.LPSupply.IsZero()
	if emptyA != emptyB || emptyB != emptyLP {
		return false
	}

	k := p.K()
	if k.Lt(&p.KLast) {
		return false
	}

	lpSq, overflow := new(uint256.Int).MulOverflow(&p.LPSupply, &p.LPSupply)
	return !overflow && !lpSq.Gt(k)
}

// checkSnapshot rejects a pool handed in by the caller that is already broken.
func checkSnapshot(p Pool) error {
	if !CheckInvariant(p) {
		return errors.Wrapf(apperrors.ErrInvariantViolation, "inconsistent pool snapshot %s", p.ID().Hex())
	}
	return nil
}

// commit asserts the post-condition of an operation against floor, the
// smallest k the operation may leave behind, and records the new k.
func commit(next Pool, floor *uint256.Int) (Pool, error) {
	next.KLast = *floor
	if !CheckInvariant(next) {
		return Pool{}, errors.Wrapf(apperrors.ErrInvariantViolation,
			"k=%s floor=%s lp=%s", next.K().Dec(), floor.Dec(), next.LPSupply.Dec())
	}
	next.KLast = *next.K()
	return next, nil
}
