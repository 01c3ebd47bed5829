package simulate

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/fleshka4/cpamm/internal/amm"
	"github.com/fleshka4/cpamm/internal/apperrors"
	"github.com/fleshka4/cpamm/internal/service"
	"github.com/fleshka4/cpamm/internal/service/dto"
	"github.com/fleshka4/cpamm/internal/store"
)

// Summary counts the outcomes of a replay.
type Summary struct {
	Steps  int
	Failed int
}

// Runner replays scenarios and prints one line per step.
type Runner struct {
	out    io.Writer
	logger *zap.Logger
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the logger passed to the pool service.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewRunner creates a Runner writing to out.
func NewRunner(out io.Writer, opts ...Option) *Runner {
	r := &Runner{out: out, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run replays sc on an empty registry. Receipt ids are tx-1, tx-2, ... so
// the output of a scenario is reproducible. A failed step is printed and
// counted; with StopOnError it also ends the replay with its error.
func (r *Runner) Run(ctx context.Context, sc Scenario) (Summary, error) {
	var seq int
	st := store.NewMemStore()
	svc := service.NewPoolService(st,
		service.WithLogger(r.logger),
		service.WithTxIDGenerator(func() string {
			seq++
			return fmt.Sprintf("tx-%d", seq)
		}),
	)

	var sum Summary
	for i, step := range sc.Steps {
		if err := ctx.Err(); err != nil {
			return sum, errors.Wrap(err, "ctx.Err")
		}

		line, err := r.exec(ctx, svc, step)
		sum.Steps++
		if err != nil {
			sum.Failed++
		}
		if _, werr := fmt.Fprintln(r.out, line); werr != nil {
			return sum, errors.Wrap(werr, "fmt.Fprintln")
		}
		if err != nil && sc.StopOnError {
			return sum, errors.Wrapf(err, "steps[%d] %s", i, step.Op)
		}
	}

	pools, err := svc.Pools(ctx)
	if err != nil {
		return sum, errors.Wrap(err, "svc.Pools")
	}
	for _, p := range pools {
		if _, err := fmt.Fprintln(r.out, formatPool(p)); err != nil {
			return sum, errors.Wrap(err, "fmt.Fprintln")
		}
	}
	return sum, nil
}

func (r *Runner) exec(ctx context.Context, svc service.Service, step Step) (string, error) {
	if step.Op == StepQuote {
		req, err := quoteRequest(step)
		if err != nil {
			return formatFailure(step.Op, "", err), err
		}
		q, err := svc.Quote(ctx, req)
		if err != nil {
			return formatFailure(step.Op, short(req.PoolID), err), err
		}
		return formatQuote(req.PoolID, q), nil
	}

	var (
		rc  dto.Receipt
		err error
	)
	switch step.Op {
	case StepCreate:
		var req dto.CreatePoolRequest
		if req, err = createRequest(step); err == nil {
			rc, err = svc.CreatePool(ctx, req)
		}
	case StepAdd:
		var req dto.AddLiquidityRequest
		if req, err = addRequest(step); err == nil {
			rc, err = svc.AddLiquidity(ctx, req)
		}
	case StepRemove:
		var req dto.RemoveLiquidityRequest
		if req, err = removeRequest(step); err == nil {
			rc, err = svc.RemoveLiquidity(ctx, req)
		}
	case StepSwap:
		var req dto.SwapRequest
		if req, err = swapRequest(step); err == nil {
			rc, err = svc.Swap(ctx, req)
		}
	default:
		err = errors.Wrapf(apperrors.ErrInvalidArgument, "unknown op %q", step.Op)
	}

	if rc.TxID == "" {
		// the step never reached the service
		return formatFailure(step.Op, "", err), err
	}
	return formatReceipt(rc), err
}

func createRequest(step Step) (dto.CreatePoolRequest, error) {
	req, err := step.Pool.CreatePoolRequest()
	if err != nil {
		return dto.CreatePoolRequest{}, errors.Wrapf(apperrors.ErrInvalidArgument, "%v", err)
	}
	return req, nil
}

func addRequest(step Step) (dto.AddLiquidityRequest, error) {
	id, err := poolID(step)
	if err != nil {
		return dto.AddLiquidityRequest{}, err
	}
	provider, err := address("account", step.Account)
	if err != nil {
		return dto.AddLiquidityRequest{}, err
	}
	amountA, err := amount("amount_a", step.AmountA)
	if err != nil {
		return dto.AddLiquidityRequest{}, err
	}
	amountB, err := amount("amount_b", step.AmountB)
	if err != nil {
		return dto.AddLiquidityRequest{}, err
	}
	return dto.AddLiquidityRequest{PoolID: id, Provider: provider, AmountA: amountA, AmountB: amountB}, nil
}

func removeRequest(step Step) (dto.RemoveLiquidityRequest, error) {
	id, err := poolID(step)
	if err != nil {
		return dto.RemoveLiquidityRequest{}, err
	}
	provider, err := address("account", step.Account)
	if err != nil {
		return dto.RemoveLiquidityRequest{}, err
	}
	lp, err := amount("lp_amount", step.LPAmount)
	if err != nil {
		return dto.RemoveLiquidityRequest{}, err
	}
	return dto.RemoveLiquidityRequest{PoolID: id, Provider: provider, LPAmount: lp}, nil
}

func swapRequest(step Step) (dto.SwapRequest, error) {
	id, err := poolID(step)
	if err != nil {
		return dto.SwapRequest{}, err
	}
	requester, err := address("account", step.Account)
	if err != nil {
		return dto.SwapRequest{}, err
	}
	var dir amm.Direction
	if err := dir.UnmarshalText([]byte(step.Direction)); err != nil {
		return dto.SwapRequest{}, err
	}
	in, err := amount("amount_in", step.AmountIn)
	if err != nil {
		return dto.SwapRequest{}, err
	}
	var minOut *uint256.Int
	if step.MinAmountOut != "" {
		if minOut, err = amount("min_amount_out", step.MinAmountOut); err != nil {
			return dto.SwapRequest{}, err
		}
	}
	return dto.SwapRequest{
		PoolID:       id,
		Requester:    requester,
		Direction:    dir,
		AmountIn:     in,
		MinAmountOut: minOut,
	}, nil
}

func quoteRequest(step Step) (dto.QuoteRequest, error) {
	id, err := poolID(step)
	if err != nil {
		return dto.QuoteRequest{}, err
	}
	var dir amm.Direction
	if err := dir.UnmarshalText([]byte(step.Direction)); err != nil {
		return dto.QuoteRequest{}, err
	}
	in, err := amount("amount_in", step.AmountIn)
	if err != nil {
		return dto.QuoteRequest{}, err
	}
	return dto.QuoteRequest{PoolID: id, Direction: dir, AmountIn: in}, nil
}

func poolID(step Step) (common.Hash, error) {
	a, err := address("token_a", step.TokenA)
	if err != nil {
		return common.Hash{}, err
	}
	b, err := address("token_b", step.TokenB)
	if err != nil {
		return common.Hash{}, err
	}
	return amm.PoolID(a, b), nil
}

func address(name, s string) (common.Address, error) {
	if !common.IsHexAddress(s) {
		return common.Address{}, errors.Wrapf(apperrors.ErrInvalidArgument, "%s: bad address %q", name, s)
	}
	return common.HexToAddress(s), nil
}

func amount(name, s string) (*uint256.Int, error) {
	v, err := uint256.FromDecimal(s)
	if err != nil {
		return nil, errors.Wrapf(apperrors.ErrInvalidArgument, "%s: bad amount %q", name, s)
	}
	return v, nil
}

func formatReceipt(rc dto.Receipt) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s %s pool=%s", rc.TxID, rc.Op, rc.Status, short(rc.PoolID))
	for _, f := range []struct {
		name string
		v    *uint256.Int
	}{
		{"amount_a", rc.AmountA},
		{"amount_b", rc.AmountB},
		{"lp", rc.LPAmount},
		{"amount_in", rc.AmountIn},
		{"fee", rc.Fee},
		{"amount_out", rc.AmountOut},
	} {
		if f.v != nil {
			fmt.Fprintf(&b, " %s=%s", f.name, f.v.Dec())
		}
	}
	if rc.Message != "" {
		fmt.Fprintf(&b, " message=%q", rc.Message)
	}
	return b.String()
}

func formatQuote(id common.Hash, q amm.Quotation) string {
	return fmt.Sprintf("- quote success pool=%s amount_in=%s fee=%s amount_out=%s impact_bps=%d",
		short(id), q.AmountIn.Dec(), q.Fee.Dec(), q.AmountOut.Dec(), q.PriceImpactBps)
}

func formatFailure(op, pool string, err error) string {
	if pool == "" {
		return fmt.Sprintf("- %s failure message=%q", op, err.Error())
	}
	return fmt.Sprintf("- %s failure pool=%s message=%q", op, pool, err.Error())
}

func formatPool(p amm.Pool) string {
	return fmt.Sprintf("pool %s reserve_a=%s reserve_b=%s lp_supply=%s k=%s",
		short(p.ID()), p.ReserveA.Dec(), p.ReserveB.Dec(), p.LPSupply.Dec(), p.K().Dec())
}

// short abbreviates a pool id to its first four bytes.
func short(id common.Hash) string {
	return id.Hex()[:10]
}
