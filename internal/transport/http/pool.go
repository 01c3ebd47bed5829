package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/fleshka4/cpamm/internal/apperrors"
	sdto "github.com/fleshka4/cpamm/internal/service/dto"
	"github.com/fleshka4/cpamm/internal/transport/http/dto"
	"github.com/fleshka4/cpamm/internal/transport/http/validate"
)

func (s *Server) handlePing(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("pong")); err != nil {
		s.logger.Warn("ping write error", zap.Error(err))
	}
}

func (s *Server) handleListPools(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.requestContext(r)
	defer cancel()

	pools, err := s.svc.Pools(ctx)
	if err != nil {
		s.writeError(w, err)
		return
	}

	resp := make([]dto.PoolResponse, 0, len(pools))
	for _, p := range pools {
		resp = append(resp, dto.NewPoolResponse(p))
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetPool(w http.ResponseWriter, r *http.Request) {
	id, code, err := validate.PoolIDValidate(r)
	if err != nil {
		s.writeJSON(w, code, dto.ErrorResponse{Error: err.Error()})
		return
	}

	ctx, cancel := s.requestContext(r)
	defer cancel()

	pool, err := s.svc.Pool(ctx, id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, dto.NewPoolResponse(pool))
}

func (s *Server) handleQuote(w http.ResponseWriter, r *http.Request) {
	req, code, err := validate.QuoteRequestValidate(r)
	if err != nil {
		s.writeJSON(w, code, dto.ErrorResponse{Error: err.Error()})
		return
	}

	ctx, cancel := s.requestContext(r)
	defer cancel()

	q, err := s.svc.Quote(ctx, *req)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, dto.NewQuoteResponse(q))
}

func (s *Server) handleLPBalance(w http.ResponseWriter, r *http.Request) {
	id, code, err := validate.PoolIDValidate(r)
	if err != nil {
		s.writeJSON(w, code, dto.ErrorResponse{Error: err.Error()})
		return
	}
	holder, code, err := validate.HolderValidate(r)
	if err != nil {
		s.writeJSON(w, code, dto.ErrorResponse{Error: err.Error()})
		return
	}

	ctx, cancel := s.requestContext(r)
	defer cancel()

	balance, err := s.svc.LPBalance(ctx, id, holder)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, dto.NewBalanceResponse(id, holder, balance))
}

func (s *Server) handleCreatePool(w http.ResponseWriter, r *http.Request) {
	req, code, err := validate.CreatePoolRequestValidate(r)
	if err != nil {
		s.writeJSON(w, code, dto.ErrorResponse{Error: err.Error()})
		return
	}

	ctx, cancel := s.requestContext(r)
	defer cancel()

	rc, err := s.svc.CreatePool(ctx, *req)
	s.writeReceipt(w, http.StatusCreated, rc, err)
}

func (s *Server) handleAddLiquidity(w http.ResponseWriter, r *http.Request) {
	req, code, err := validate.AddLiquidityRequestValidate(r)
	if err != nil {
		s.writeJSON(w, code, dto.ErrorResponse{Error: err.Error()})
		return
	}

	ctx, cancel := s.requestContext(r)
	defer cancel()

	rc, err := s.svc.AddLiquidity(ctx, *req)
	s.writeReceipt(w, http.StatusOK, rc, err)
}

func (s *Server) handleRemoveLiquidity(w http.ResponseWriter, r *http.Request) {
	req, code, err := validate.RemoveLiquidityRequestValidate(r)
	if err != nil {
		s.writeJSON(w, code, dto.ErrorResponse{Error: err.Error()})
		return
	}

	ctx, cancel := s.requestContext(r)
	defer cancel()

	rc, err := s.svc.RemoveLiquidity(ctx, *req)
	s.writeReceipt(w, http.StatusOK, rc, err)
}

func (s *Server) handleSwap(w http.ResponseWriter, r *http.Request) {
	req, code, err := validate.SwapRequestValidate(r)
	if err != nil {
		s.writeJSON(w, code, dto.ErrorResponse{Error: err.Error()})
		return
	}

	ctx, cancel := s.requestContext(r)
	defer cancel()

	rc, err := s.svc.Swap(ctx, *req)
	s.writeReceipt(w, http.StatusOK, rc, err)
}

func (s *Server) requestContext(r *http.Request) (context.Context, context.CancelFunc) {
	if s.requestTimeout <= 0 {
		return context.WithCancel(r.Context())
	}
	return context.WithTimeout(r.Context(), s.requestTimeout)
}

// writeReceipt answers a mutation. Failed operations still carry their receipt.
func (s *Server) writeReceipt(w http.ResponseWriter, okStatus int, rc sdto.Receipt, err error) {
	status := okStatus
	if err != nil {
		status = statusFromError(err)
	}
	s.writeJSON(w, status, dto.NewReceiptResponse(rc))
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := statusFromError(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", zap.Error(err))
		msg = "internal error"
	}
	s.writeJSON(w, status, dto.ErrorResponse{Error: msg})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("response write error", zap.Error(err))
	}
}

// statusFromError maps the error taxonomy onto HTTP statuses.
func statusFromError(err error) int {
	switch {
	case apperrors.IsDefect(err):
		return http.StatusInternalServerError
	case errors.Is(err, apperrors.ErrPoolNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperrors.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, apperrors.ErrPoolExists), errors.Is(err, apperrors.ErrSlippageExceeded):
		return http.StatusConflict
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, apperrors.ErrInvalidArgument),
		errors.Is(err, apperrors.ErrInvalidInitialLiquidity),
		errors.Is(err, apperrors.ErrInvalidFee),
		errors.Is(err, apperrors.ErrInvalidTokenPair),
		errors.Is(err, apperrors.ErrInvalidAmount),
		errors.Is(err, apperrors.ErrInsufficientAmount),
		errors.Is(err, apperrors.ErrInsufficientLiquidity),
		errors.Is(err, apperrors.ErrInsufficientLpBalance),
		errors.Is(err, apperrors.ErrArithmeticOverflow):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
