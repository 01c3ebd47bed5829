package store

import (
	"bytes"
	"context"
	"slices"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/fleshka4/cpamm/internal/amm"
	"github.com/fleshka4/cpamm/internal/apperrors"
)

type record struct {
	mu   sync.Mutex
	pool amm.Pool
	lp   map[common.Address]uint256.Int
}

// MemStore is an in-memory Store. Operations on the same pool are serialized;
// operations on different pools run concurrently.
type MemStore struct {
	mu    sync.RWMutex
	pools map[common.Hash]*record
}

// NewMemStore creates an empty MemStore.
func NewMemStore() *MemStore {
	return &MemStore{pools: make(map[common.Hash]*record)}
}

// Insert implements Store.
func (s *MemStore) Insert(ctx context.Context, pool amm.Pool, owner common.Address) error {
	if err := ctx.Err(); err != nil {
		return errors.Wrap(err, "ctx.Err")
	}

	rec := &record{pool: pool, lp: make(map[common.Address]uint256.Int)}
	if !pool.LPSupply.IsZero() {
		rec.lp[owner] = pool.LPSupply
	}

	id := pool.ID()

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.pools[id]; ok {
		return errors.Wrapf(apperrors.ErrPoolExists, "pool %s", id.Hex())
	}
	s.pools[id] = rec
	return nil
}

// Get implements Store.
func (s *MemStore) Get(ctx context.Context, id common.Hash) (amm.Pool, error) {
	rec, err := s.lookup(ctx, id)
	if err != nil {
		return amm.Pool{}, err
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()
	return rec.pool, nil
}

// List implements Store.
func (s *MemStore) List(ctx context.Context) ([]amm.Pool, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, "ctx.Err")
	}

	s.mu.RLock()
	recs := make([]*record, 0, len(s.pools))
	for _, rec := range s.pools {
		recs = append(recs, rec)
	}
	s.mu.RUnlock()

	pools := make([]amm.Pool, 0, len(recs))
	for _, rec := range recs {
		rec.mu.Lock()
		pools = append(pools, rec.pool)
		rec.mu.Unlock()
	}

	slices.SortFunc(pools, func(a, b amm.Pool) int {
		ida, idb := a.ID(), b.ID()
		return bytes.Compare(ida[:], idb[:])
	})
	return pools, nil
}

// Balance implements Store.
func (s *MemStore) Balance(ctx context.Context, id common.Hash, holder common.Address) (*uint256.Int, error) {
	rec, err := s.lookup(ctx, id)
	if err != nil {
		return nil, err
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()

	v := rec.lp[holder]
	return &v, nil
}

// Update implements Store. The record stays locked while fn runs, so fn must
// not call back into the store.
func (s *MemStore) Update(ctx context.Context, id common.Hash, fn UpdateFunc) (amm.Pool, error) {
	rec, err := s.lookup(ctx, id)
	if err != nil {
		return amm.Pool{}, err
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return rec.pool, errors.Wrap(err, "ctx.Err")
	}

	book := newBook(rec.lp)
	next, err := fn(rec.pool, book)
	if err != nil {
		return rec.pool, err
	}

	rec.pool = next
	book.apply()
	return next, nil
}

func (s *MemStore) lookup(ctx context.Context, id common.Hash) (*record, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, "ctx.Err")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.pools[id]
	if !ok {
		return nil, errors.Wrapf(apperrors.ErrPoolNotFound, "pool %s", id.Hex())
	}
	return rec, nil
}
