package validate

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"

	"github.com/fleshka4/cpamm/internal/amm"
	"github.com/fleshka4/cpamm/internal/apperrors"
	"github.com/fleshka4/cpamm/internal/service/dto"
)

var (
	poolID    = common.HexToHash("0x6f1c2b0d3a8e5f47a9c0b1d2e3f405162738495a6b7c8d9eafb0c1d2e3f40516")
	provider  = common.HexToAddress("0x742d35Cc6634C0532925a3b844Bc454e4438f44e")
	requester = common.HexToAddress("0x6B175474E89094C44Da98b954EedeAC495271d0F")
)

func TestCreatePoolRequestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		req     dto.CreatePoolRequest
		wantErr assert.ErrorAssertionFunc
	}{
		{
			name:    "valid request",
			req:     dto.CreatePoolRequest{Owner: provider, AmountA: uint256.NewInt(1), AmountB: uint256.NewInt(1)},
			wantErr: assert.NoError,
		},
		{
			name:    "amounts are not checked here",
			req:     dto.CreatePoolRequest{Owner: provider},
			wantErr: assert.NoError,
		},
		{
			name:    "empty owner",
			req:     dto.CreatePoolRequest{AmountA: uint256.NewInt(1), AmountB: uint256.NewInt(1)},
			wantErr: assert.Error,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := CreatePoolRequestValidate(tt.req)
			tt.wantErr(t, err)
		})
	}
}

func TestSwapRequestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		req      dto.SwapRequest
		wantErrs int
	}{
		{
			name: "valid request",
			req:  dto.SwapRequest{PoolID: poolID, Requester: requester, Direction: amm.BToA},
		},
		{
			name:     "empty pool id",
			req:      dto.SwapRequest{Requester: requester},
			wantErrs: 1,
		},
		{
			name:     "empty requester",
			req:      dto.SwapRequest{PoolID: poolID},
			wantErrs: 1,
		},
		{
			name:     "everything wrong",
			req:      dto.SwapRequest{Direction: amm.Direction(3)},
			wantErrs: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := SwapRequestValidate(tt.req)
			if tt.wantErrs == 0 {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, apperrors.ErrInvalidArgument)
			require.Len(t, multierr.Errors(err), tt.wantErrs)
		})
	}
}

func TestLiquidityRequestValidate(t *testing.T) {
	t.Parallel()

	require.NoError(t, AddLiquidityRequestValidate(dto.AddLiquidityRequest{PoolID: poolID, Provider: provider}))
	require.NoError(t, RemoveLiquidityRequestValidate(dto.RemoveLiquidityRequest{PoolID: poolID, Provider: provider}))

	err := AddLiquidityRequestValidate(dto.AddLiquidityRequest{})
	require.ErrorIs(t, err, apperrors.ErrInvalidArgument)
	require.Len(t, multierr.Errors(err), 2)

	err = RemoveLiquidityRequestValidate(dto.RemoveLiquidityRequest{PoolID: poolID})
	require.ErrorIs(t, err, apperrors.ErrInvalidArgument)
	require.Len(t, multierr.Errors(err), 1)
}

func TestQuoteRequestValidate(t *testing.T) {
	t.Parallel()

	require.NoError(t, QuoteRequestValidate(dto.QuoteRequest{PoolID: poolID, Direction: amm.AToB}))
	require.ErrorIs(t, QuoteRequestValidate(dto.QuoteRequest{PoolID: poolID, Direction: 9}), apperrors.ErrInvalidArgument)
}
