package amm

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/fleshka4/cpamm/internal/apperrors"
	"github.com/fleshka4/cpamm/internal/dexmath"
)

// FeeDenominator is the basis-point scale of Pool.FeeBps.
const FeeDenominator = 10000

var (
	// MaxReserve is the largest amount a single reserve may hold (2^112 - 1),
	// the uint112 reserve width of Uniswap V2 pairs. It keeps k within 256 bits.
	MaxReserve = new(uint256.Int).SubUint64(new(uint256.Int).Lsh(uint256.NewInt(1), 112), 1)

	// PriceScale is the fixed-point scale of spot prices (1e18).
	PriceScale = uint256.NewInt(1_000_000_000_000_000_000)

	feeDen = uint256.NewInt(FeeDenominator)
)

// Pool is an immutable snapshot of a constant-product pool.
//
// Amounts are in the smallest token unit. TokenA sorts strictly before TokenB.
// A zero AllowedSwapper means swaps are unrestricted. KLast is the lower bound
// on ReserveA*ReserveB recorded by the last successful operation.
type Pool struct {
	TokenA         common.Address
	TokenB         common.Address
	ReserveA       uint256.Int
	ReserveB       uint256.Int
	LPSupply       uint256.Int
	FeeBps         uint16
	AllowedSwapper common.Address
	KLast          uint256.Int
}

// CreatePoolParams holds the parameters of a new pool. Tokens may be given in
// any order; CreatePool sorts them and their amounts.
type CreatePoolParams struct {
	TokenA         common.Address
	TokenB         common.Address
	AmountA        *uint256.Int
	AmountB        *uint256.Int
	FeeBps         uint16
	AllowedSwapper common.Address
}

// ID returns the pool identifier, keccak256(tokenA || tokenB).
func (p Pool) ID() common.Hash {
	return PoolID(p.TokenA, p.TokenB)
}

// PoolID derives the identifier of the pool for a token pair, independent of
// argument order.
func PoolID(tokenA, tokenB common.Address) common.Hash {
	if tokenA.Cmp(tokenB) > 0 {
		tokenA, tokenB = tokenB, tokenA
	}
	return crypto.Keccak256Hash(tokenA.Bytes(), tokenB.Bytes())
}

// K returns ReserveA*ReserveB. The product wraps if a reserve exceeds
// MaxReserve; CheckInvariant rejects such snapshots.
func (p Pool) K() *uint256.Int {
	k, _ := new(uint256.Int).MulOverflow(&p.ReserveA, &p.ReserveB)
	return k
}

// IsEmpty reports whether the pool holds no liquidity.
func (p Pool) IsEmpty() bool {
	return p.LPSupply.IsZero()
}

// Restricted reports whether only AllowedSwapper may swap.
func (p Pool) Restricted() bool {
	return p.AllowedSwapper != (common.Address{})
}

// Reserves returns the (in, out) reserves for a swap direction.
func (p Pool) Reserves(dir Direction) (uint256.Int, uint256.Int) {
	if dir == BToA {
		return p.ReserveB, p.ReserveA
	}
	return p.ReserveA, p.ReserveB
}

// SpotPrice returns the marginal price of the input token in units of the
// output token, scaled by PriceScale.
func (p Pool) SpotPrice(dir Direction) (*uint256.Int, error) {
	if p.IsEmpty() {
		return nil, errors.Wrap(apperrors.ErrInsufficientLiquidity, "pool is empty")
	}
	in, out := p.Reserves(dir)
	return dexmath.MulDiv(&out, PriceScale, &in)
}

func (p Pool) withReserves(dir Direction, in, out *uint256.Int) Pool {
	if dir == BToA {
		p.ReserveB, p.ReserveA = *in, *out
	} else {
		p.ReserveA, p.ReserveB = *in, *out
	}
	return p
}

// CreatePool builds the initial snapshot of a pool funded with both amounts.
// The initial LP supply is floor(sqrt(amountA*amountB)).
func CreatePool(params CreatePoolParams) (Pool, error) {
	tokenA, tokenB := params.TokenA, params.TokenB
	amountA, amountB := params.AmountA, params.AmountB

	if tokenA == (common.Address{}) || tokenB == (common.Address{}) {
		return Pool{}, errors.Wrap(apperrors.ErrInvalidTokenPair, "token address cannot be empty")
	}
	if tokenA == tokenB {
		return Pool{}, errors.Wrap(apperrors.ErrInvalidTokenPair, "tokens must differ")
	}
	if isZero(amountA) || isZero(amountB) {
		return Pool{}, errors.Wrap(apperrors.ErrInvalidInitialLiquidity, "initial amounts must be positive")
	}
	if params.FeeBps > FeeDenominator {
		return Pool{}, errors.Wrapf(apperrors.ErrInvalidFee, "fee %d bps exceeds %d", params.FeeBps, FeeDenominator)
	}
	if amountA.Gt(MaxReserve) || amountB.Gt(MaxReserve) {
		return Pool{}, errors.Wrap(apperrors.ErrArithmeticOverflow, "initial amount exceeds max reserve")
	}

	if tokenA.Cmp(tokenB) > 0 {
		tokenA, tokenB = tokenB, tokenA
		amountA, amountB = amountB, amountA
	}

	k, err := dexmath.MulChecked(amountA, amountB)
	if err != nil {
		return Pool{}, errors.Wrap(err, "dexmath.MulChecked")
	}

	lp := dexmath.IntegerSqrt(k)
	if lp.IsZero() {
		return Pool{}, errors.Wrap(apperrors.ErrInsufficientLiquidity, "initial lp supply rounds to zero")
	}

	pool := Pool{
		TokenA:         tokenA,
		TokenB:         tokenB,
		ReserveA:       *amountA,
		ReserveB:       *amountB,
		LPSupply:       *lp,
		FeeBps:         params.FeeBps,
		AllowedSwapper: params.AllowedSwapper,
	}

	return commit(pool, k)
}

func isZero(x *uint256.Int) bool {
	return x == nil || x.IsZero()
}
