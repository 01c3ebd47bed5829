package store

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/fleshka4/cpamm/internal/amm"
)

//go:generate mockgen -source=store.go -destination=mock/store.go -package=mock

// UpdateFunc computes the next snapshot of a pool. LP balance changes are
// staged on book and committed together with the returned pool only when the
// function returns a nil error.
type UpdateFunc func(pool amm.Pool, book *Book) (amm.Pool, error)

// Store keeps pool snapshots and the LP balances of their holders.
type Store interface {
	// Insert registers a new pool and credits owner with its whole LP supply.
	Insert(ctx context.Context, pool amm.Pool, owner common.Address) error
	// Get returns the current snapshot of a pool.
	Get(ctx context.Context, id common.Hash) (amm.Pool, error)
	// List returns all pools ordered by id.
	List(ctx context.Context) ([]amm.Pool, error)
	// Balance returns the LP balance of holder in a pool.
	Balance(ctx context.Context, id common.Hash, holder common.Address) (*uint256.Int, error)
	// Update applies fn to a pool under its lock and returns the committed snapshot.
	Update(ctx context.Context, id common.Hash, fn UpdateFunc) (amm.Pool, error)
}
