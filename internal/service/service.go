package service

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/holiman/uint256"
	"go.uber.org/zap"

	"github.com/fleshka4/cpamm/internal/amm"
	"github.com/fleshka4/cpamm/internal/metrics"
	"github.com/fleshka4/cpamm/internal/service/dto"
	"github.com/fleshka4/cpamm/internal/store"
)

//go:generate mockgen -source=service.go -destination=mock/service.go -package=mock

// Service represents interface for business logic.
type Service interface {
	CreatePool(ctx context.Context, req dto.CreatePoolRequest) (dto.Receipt, error)
	AddLiquidity(ctx context.Context, req dto.AddLiquidityRequest) (dto.Receipt, error)
	RemoveLiquidity(ctx context.Context, req dto.RemoveLiquidityRequest) (dto.Receipt, error)
	Swap(ctx context.Context, req dto.SwapRequest) (dto.Receipt, error)
	Quote(ctx context.Context, req dto.QuoteRequest) (amm.Quotation, error)
	Pool(ctx context.Context, id common.Hash) (amm.Pool, error)
	Pools(ctx context.Context) ([]amm.Pool, error)
	LPBalance(ctx context.Context, id common.Hash, holder common.Address) (*uint256.Int, error)
}

// PoolService runs pool operations against a store and records a receipt for
// each of them.
type PoolService struct {
	store   store.Store
	metrics *metrics.Metrics
	logger  *zap.Logger
	txID    func() string
}

// Option configures a PoolService.
type Option func(*PoolService)

// WithLogger sets the service logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *PoolService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics enables Prometheus instrumentation.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *PoolService) {
		s.metrics = m
	}
}

// WithTxIDGenerator replaces the random receipt id generator.
func WithTxIDGenerator(fn func() string) Option {
	return func(s *PoolService) {
		if fn != nil {
			s.txID = fn
		}
	}
}

// NewPoolService creates PoolService.
func NewPoolService(st store.Store, opts ...Option) *PoolService {
	s := &PoolService{
		store:  st,
		logger: zap.NewNop(),
		txID:   func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}
