package store

import (
	"context"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/fleshka4/cpamm/internal/amm"
	"github.com/fleshka4/cpamm/internal/apperrors"
)

var (
	tokenA = common.HexToAddress("0x0000000000000000000000000000000000000a01")
	tokenB = common.HexToAddress("0x0000000000000000000000000000000000000b02")
	tokenC = common.HexToAddress("0x0000000000000000000000000000000000000c03")
	alice  = common.HexToAddress("0x00000000000000000000000000000000000a11ce")
	bob    = common.HexToAddress("0x0000000000000000000000000000000000000b0b")
)

func newPool(t *testing.T, a, b common.Address, amountA, amountB uint64) amm.Pool {
	t.Helper()

	pool, err := amm.CreatePool(amm.CreatePoolParams{
		TokenA:  a,
		TokenB:  b,
		AmountA: uint256.NewInt(amountA),
		AmountB: uint256.NewInt(amountB),
		FeeBps:  30,
	})
	require.NoError(t, err)
	return pool
}

func TestMemStore_InsertGet(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := NewMemStore()
	pool := newPool(t, tokenA, tokenB, 1000, 2000)

	require.NoError(t, s.Insert(ctx, pool, alice))

	got, err := s.Get(ctx, pool.ID())
	require.NoError(t, err)
	require.Equal(t, pool, got)

	balance, err := s.Balance(ctx, pool.ID(), alice)
	require.NoError(t, err)
	require.Equal(t, "1414", balance.Dec())

	balance, err = s.Balance(ctx, pool.ID(), bob)
	require.NoError(t, err)
	require.True(t, balance.IsZero())

	err = s.Insert(ctx, newPool(t, tokenB, tokenA, 5, 5), bob)
	require.ErrorIs(t, err, apperrors.ErrPoolExists)

	_, err = s.Get(ctx, amm.PoolID(tokenA, tokenC))
	require.ErrorIs(t, err, apperrors.ErrPoolNotFound)

	_, err = s.Balance(ctx, amm.PoolID(tokenA, tokenC), alice)
	require.ErrorIs(t, err, apperrors.ErrPoolNotFound)
}

func TestMemStore_List(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := NewMemStore()

	pools, err := s.List(ctx)
	require.NoError(t, err)
	require.Empty(t, pools)

	require.NoError(t, s.Insert(ctx, newPool(t, tokenA, tokenB, 1000, 2000), alice))
	require.NoError(t, s.Insert(ctx, newPool(t, tokenA, tokenC, 1000, 2000), alice))
	require.NoError(t, s.Insert(ctx, newPool(t, tokenB, tokenC, 1000, 2000), alice))

	pools, err = s.List(ctx)
	require.NoError(t, err)
	require.Len(t, pools, 3)
	for i := 1; i < len(pools); i++ {
		prev, cur := pools[i-1].ID(), pools[i].ID()
		require.Negative(t, prev.Cmp(cur))
	}
}

func TestMemStore_Update(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("commits pool and balances together", func(t *testing.T) {
		t.Parallel()

		s := NewMemStore()
		pool := newPool(t, tokenA, tokenB, 1000, 2000)
		require.NoError(t, s.Insert(ctx, pool, alice))

		next, err := s.Update(ctx, pool.ID(), func(p amm.Pool, book *Book) (amm.Pool, error) {
			next, w, err := amm.RemoveLiquidity(p, uint256.NewInt(141))
			if err != nil {
				return p, err
			}
			if err := book.Debit(alice, &w.Burned); err != nil {
				return p, err
			}
			return next, book.Credit(bob, uint256.NewInt(0))
		})
		require.NoError(t, err)
		require.Equal(t, "901", next.ReserveA.Dec())

		got, err := s.Get(ctx, pool.ID())
		require.NoError(t, err)
		require.Equal(t, next, got)

		balance, err := s.Balance(ctx, pool.ID(), alice)
		require.NoError(t, err)
		require.Equal(t, "1273", balance.Dec())
	})

	t.Run("discards staged balances on error", func(t *testing.T) {
		t.Parallel()

		s := NewMemStore()
		pool := newPool(t, tokenA, tokenB, 1000, 2000)
		require.NoError(t, s.Insert(ctx, pool, alice))

		errBoom := errors.New("boom")
		got, err := s.Update(ctx, pool.ID(), func(p amm.Pool, book *Book) (amm.Pool, error) {
			require.NoError(t, book.Debit(alice, uint256.NewInt(1000)))
			require.NoError(t, book.Credit(bob, uint256.NewInt(1000)))
			require.Equal(t, "414", book.Balance(alice).Dec())
			return amm.Pool{}, errBoom
		})
		require.ErrorIs(t, err, errBoom)
		require.Equal(t, pool, got)

		balance, err := s.Balance(ctx, pool.ID(), alice)
		require.NoError(t, err)
		require.Equal(t, "1414", balance.Dec())

		balance, err = s.Balance(ctx, pool.ID(), bob)
		require.NoError(t, err)
		require.True(t, balance.IsZero())
	})

	t.Run("debit above balance", func(t *testing.T) {
		t.Parallel()

		s := NewMemStore()
		pool := newPool(t, tokenA, tokenB, 1000, 2000)
		require.NoError(t, s.Insert(ctx, pool, alice))

		_, err := s.Update(ctx, pool.ID(), func(p amm.Pool, book *Book) (amm.Pool, error) {
			return p, book.Debit(bob, uint256.NewInt(1))
		})
		require.ErrorIs(t, err, apperrors.ErrInsufficientLpBalance)
	})

	t.Run("unknown pool", func(t *testing.T) {
		t.Parallel()

		s := NewMemStore()
		_, err := s.Update(ctx, amm.PoolID(tokenA, tokenB), func(p amm.Pool, _ *Book) (amm.Pool, error) {
			t.Fatal("update func must not run")
			return p, nil
		})
		require.ErrorIs(t, err, apperrors.ErrPoolNotFound)
	})

	t.Run("cancelled context", func(t *testing.T) {
		t.Parallel()

		s := NewMemStore()
		pool := newPool(t, tokenA, tokenB, 1000, 2000)
		require.NoError(t, s.Insert(ctx, pool, alice))

		cctx, cancel := context.WithCancel(ctx)
		cancel()

		_, err := s.Update(cctx, pool.ID(), func(p amm.Pool, _ *Book) (amm.Pool, error) {
			t.Fatal("update func must not run")
			return p, nil
		})
		require.ErrorIs(t, err, context.Canceled)
	})
}

func TestMemStore_ConcurrentUpdatesAreSerialized(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := NewMemStore()
	pool := newPool(t, tokenA, tokenB, 1_000_000, 2_000_000)
	require.NoError(t, s.Insert(ctx, pool, alice))

	const workers = 64

	var g errgroup.Group
	for i := 0; i < workers; i++ {
		g.Go(func() error {
			_, err := s.Update(ctx, pool.ID(), func(p amm.Pool, _ *Book) (amm.Pool, error) {
				next, _, err := amm.Swap(p, amm.SwapRequest{Direction: amm.AToB, AmountIn: uint256.NewInt(100)})
				return next, err
			})
			return err
		})
	}
	require.NoError(t, g.Wait())

	got, err := s.Get(ctx, pool.ID())
	require.NoError(t, err)
	require.Equal(t, "1006400", got.ReserveA.Dec())
	require.True(t, amm.CheckInvariant(got))
	require.True(t, got.K().Cmp(pool.K()) > 0)
}
