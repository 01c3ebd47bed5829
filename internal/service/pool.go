package service

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/fleshka4/cpamm/internal/amm"
	"github.com/fleshka4/cpamm/internal/apperrors"
	"github.com/fleshka4/cpamm/internal/service/dto"
	"github.com/fleshka4/cpamm/internal/service/validate"
	"github.com/fleshka4/cpamm/internal/store"
)

// CreatePool creates a pool and credits the owner with its initial LP supply.
func (s *PoolService) CreatePool(ctx context.Context, req dto.CreatePoolRequest) (dto.Receipt, error) {
	rc := s.newReceipt(dto.OpCreatePool, amm.PoolID(req.TokenA, req.TokenB))

	if err := validate.CreatePoolRequestValidate(req); err != nil {
		return s.finish(rc, err)
	}

	pool, err := amm.CreatePool(amm.CreatePoolParams{
		TokenA:         req.TokenA,
		TokenB:         req.TokenB,
		AmountA:        req.AmountA,
		AmountB:        req.AmountB,
		FeeBps:         req.FeeBps,
		AllowedSwapper: req.AllowedSwapper,
	})
	if err != nil {
		return s.finish(rc, errors.Wrap(err, "amm.CreatePool"))
	}

	if err := s.store.Insert(ctx, pool, req.Owner); err != nil {
		return s.finish(rc, errors.Wrap(err, "store.Insert"))
	}
	if s.metrics != nil {
		s.metrics.Pools.Inc()
	}

	rc.AmountA = new(uint256.Int).Set(&pool.ReserveA)
	rc.AmountB = new(uint256.Int).Set(&pool.ReserveB)
	rc.LPAmount = new(uint256.Int).Set(&pool.LPSupply)
	return s.finish(rc, nil)
}

// AddLiquidity deposits into a pool and credits the provider with the minted
// LP tokens.
func (s *PoolService) AddLiquidity(ctx context.Context, req dto.AddLiquidityRequest) (dto.Receipt, error) {
	rc := s.newReceipt(dto.OpAddLiquidity, req.PoolID)

	if err := validate.AddLiquidityRequestValidate(req); err != nil {
		return s.finish(rc, err)
	}

	var dep amm.Deposit
	_, err := s.store.Update(ctx, req.PoolID, func(pool amm.Pool, book *store.Book) (amm.Pool, error) {
		next, d, err := amm.AddLiquidity(pool, req.AmountA, req.AmountB)
		if err != nil {
			return pool, errors.Wrap(err, "amm.AddLiquidity")
		}
		if err := book.Credit(req.Provider, &d.Minted); err != nil {
			return pool, errors.Wrap(err, "book.Credit")
		}
		dep = d
		return next, nil
	})
	if err != nil {
		return s.finish(rc, err)
	}

	rc.AmountA = &dep.AmountA
	rc.AmountB = &dep.AmountB
	rc.LPAmount = &dep.Minted
	return s.finish(rc, nil)
}

// RemoveLiquidity burns LP tokens of the provider and pays out its share of
// the reserves. The holder's balance is checked before the pool supply.
func (s *PoolService) RemoveLiquidity(ctx context.Context, req dto.RemoveLiquidityRequest) (dto.Receipt, error) {
	rc := s.newReceipt(dto.OpRemoveLiquidity, req.PoolID)

	if err := validate.RemoveLiquidityRequestValidate(req); err != nil {
		return s.finish(rc, err)
	}

	amount := req.LPAmount
	if amount == nil {
		amount = new(uint256.Int)
	}

	var w amm.Withdrawal
	_, err := s.store.Update(ctx, req.PoolID, func(pool amm.Pool, book *store.Book) (amm.Pool, error) {
		if err := book.Debit(req.Provider, amount); err != nil {
			return pool, errors.Wrap(err, "book.Debit")
		}
		next, out, err := amm.RemoveLiquidity(pool, amount)
		if err != nil {
			return pool, errors.Wrap(err, "amm.RemoveLiquidity")
		}
		w = out
		return next, nil
	})
	if err != nil {
		return s.finish(rc, err)
	}

	rc.AmountA = &w.AmountA
	rc.AmountB = &w.AmountB
	rc.LPAmount = &w.Burned
	return s.finish(rc, nil)
}

// Swap executes a swap on behalf of the requester.
func (s *PoolService) Swap(ctx context.Context, req dto.SwapRequest) (dto.Receipt, error) {
	rc := s.newReceipt(dto.OpSwap, req.PoolID)

	if err := validate.SwapRequestValidate(req); err != nil {
		return s.finish(rc, err)
	}

	var fill amm.Fill
	_, err := s.store.Update(ctx, req.PoolID, func(pool amm.Pool, _ *store.Book) (amm.Pool, error) {
		next, f, err := amm.Swap(pool, amm.SwapRequest{
			Direction:    req.Direction,
			AmountIn:     req.AmountIn,
			MinAmountOut: req.MinAmountOut,
			Requester:    req.Requester,
		})
		if err != nil {
			return pool, errors.Wrap(err, "amm.Swap")
		}
		fill = f
		return next, nil
	})
	if err != nil {
		return s.finish(rc, err)
	}

	if s.metrics != nil {
		s.metrics.ObserveSwap(req.PoolID.Hex(), req.Direction.String(), &fill.AmountIn)
	}

	rc.AmountIn = &fill.AmountIn
	rc.Fee = &fill.Fee
	rc.AmountOut = &fill.AmountOut
	return s.finish(rc, nil)
}

// Quote previews a swap against the current pool snapshot.
func (s *PoolService) Quote(ctx context.Context, req dto.QuoteRequest) (amm.Quotation, error) {
	if err := validate.QuoteRequestValidate(req); err != nil {
		return amm.Quotation{}, err
	}

	pool, err := s.store.Get(ctx, req.PoolID)
	if err != nil {
		return amm.Quotation{}, errors.Wrap(err, "store.Get")
	}

	q, err := amm.Quote(pool, req.Direction, req.AmountIn)
	if err != nil {
		return amm.Quotation{}, errors.Wrap(err, "amm.Quote")
	}
	return q, nil
}

// Pool returns the current snapshot of a pool.
func (s *PoolService) Pool(ctx context.Context, id common.Hash) (amm.Pool, error) {
	pool, err := s.store.Get(ctx, id)
	if err != nil {
		return amm.Pool{}, errors.Wrap(err, "store.Get")
	}
	return pool, nil
}

// Pools returns all pools ordered by id.
func (s *PoolService) Pools(ctx context.Context) ([]amm.Pool, error) {
	pools, err := s.store.List(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "store.List")
	}
	return pools, nil
}

// LPBalance returns the LP balance of holder in a pool.
func (s *PoolService) LPBalance(ctx context.Context, id common.Hash, holder common.Address) (*uint256.Int, error) {
	balance, err := s.store.Balance(ctx, id, holder)
	if err != nil {
		return nil, errors.Wrap(err, "store.Balance")
	}
	return balance, nil
}

func (s *PoolService) newReceipt(op dto.Op, id common.Hash) dto.Receipt {
	return dto.Receipt{TxID: s.txID(), Op: op, PoolID: id}
}

// finish stamps the outcome on rc, records it and returns err unchanged.
func (s *PoolService) finish(rc dto.Receipt, err error) (dto.Receipt, error) {
	if s.metrics != nil {
		s.metrics.ObserveOperation(string(rc.Op), err)
	}

	fields := []zap.Field{
		zap.String("tx_id", rc.TxID),
		zap.String("op", string(rc.Op)),
		zap.String("pool", rc.PoolID.Hex()),
	}

	if err != nil {
		rc = dto.Receipt{
			TxID:    rc.TxID,
			Op:      rc.Op,
			Status:  dto.StatusFailure,
			Message: err.Error(),
			PoolID:  rc.PoolID,
		}
		if apperrors.IsDefect(err) {
			s.logger.Error("pool invariant violated", append(fields, zap.Error(err))...)
		} else {
			s.logger.Debug("operation rejected", append(fields, zap.Error(err))...)
		}
		return rc, err
	}

	rc.Status = dto.StatusSuccess
	s.logger.Debug("operation committed", fields...)
	return rc, nil
}
