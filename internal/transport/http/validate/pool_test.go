package validate

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleshka4/cpamm/internal/amm"
	"github.com/fleshka4/cpamm/internal/apperrors"
)

const (
	poolID = "0x6f1c2b0d3a8e5f47a9c0b1d2e3f405162738495a6b7c8d9eafb0c1d2e3f40516"
	tokenA = "0x6B175474E89094C44Da98b954EedeAC495271d0F"
	tokenB = "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48"
	holder = "0x742d35Cc6634C0532925a3b844Bc454e4438f44e"
)

func newRequest(method, target, body, id string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if id != "" {
		req.SetPathValue("id", id)
	}
	return req
}

func TestCreatePoolRequestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		body           string
		expectedStatus int
		wantErr        assert.ErrorAssertionFunc
	}{
		{
			name: "valid request",
			body: `{"token_a":"` + tokenA + `","token_b":"` + tokenB + `","amount_a":"1000","amount_b":"2000",` +
				`"fee_bps":30,"owner":"` + holder + `"}`,
			wantErr: assert.NoError,
		},
		{
			name: "restricted pool",
			body: `{"token_a":"` + tokenA + `","token_b":"` + tokenB + `","amount_a":"1000","amount_b":"2000",` +
				`"allowed_swapper":"` + holder + `","owner":"` + holder + `"}`,
			wantErr: assert.NoError,
		},
		{
			name:           "empty body",
			body:           "",
			expectedStatus: http.StatusBadRequest,
			wantErr:        assert.Error,
		},
		{
			name:           "unknown field",
			body:           `{"token_a":"` + tokenA + `","pair":"x"}`,
			expectedStatus: http.StatusBadRequest,
			wantErr:        assert.Error,
		},
		{
			name:           "missing owner",
			body:           `{"token_a":"` + tokenA + `","token_b":"` + tokenB + `","amount_a":"1","amount_b":"2"}`,
			expectedStatus: http.StatusBadRequest,
			wantErr:        assert.Error,
		},
		{
			name: "negative amount",
			body: `{"token_a":"` + tokenA + `","token_b":"` + tokenB + `","amount_a":"-1","amount_b":"2",` +
				`"owner":"` + holder + `"}`,
			expectedStatus: http.StatusBadRequest,
			wantErr:        assert.Error,
		},
		{
			name: "fee does not fit",
			body: `{"token_a":"` + tokenA + `","token_b":"` + tokenB + `","amount_a":"1","amount_b":"2",` +
				`"fee_bps":70000,"owner":"` + holder + `"}`,
			expectedStatus: http.StatusBadRequest,
			wantErr:        assert.Error,
		},
		{
			name: "bad swapper",
			body: `{"token_a":"` + tokenA + `","token_b":"` + tokenB + `","amount_a":"1","amount_b":"2",` +
				`"allowed_swapper":"0x12","owner":"` + holder + `"}`,
			expectedStatus: http.StatusBadRequest,
			wantErr:        assert.Error,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			result, status, err := CreatePoolRequestValidate(newRequest(http.MethodPost, "/pools", tt.body, ""))

			tt.wantErr(t, err)
			require.Equal(t, tt.expectedStatus, status)
			if err != nil {
				require.ErrorIs(t, err, apperrors.ErrInvalidArgument)
				require.Nil(t, result)
				return
			}
			require.Equal(t, common.HexToAddress(tokenA), result.TokenA)
			require.Equal(t, "2000", result.AmountB.Dec())
		})
	}
}

func TestSwapRequestValidate(t *testing.T) {
	t.Parallel()

	t.Run("valid", func(t *testing.T) {
		t.Parallel()

		body := `{"requester":"` + holder + `","direction":"b_to_a","amount_in":"100","min_amount_out":"40"}`
		result, status, err := SwapRequestValidate(newRequest(http.MethodPost, "/pools/x/swap", body, poolID))

		require.NoError(t, err)
		require.Zero(t, status)
		require.Equal(t, common.HexToHash(poolID), result.PoolID)
		require.Equal(t, amm.BToA, result.Direction)
		require.Equal(t, "100", result.AmountIn.Dec())
		require.Equal(t, "40", result.MinAmountOut.Dec())
	})

	t.Run("no minimum", func(t *testing.T) {
		t.Parallel()

		body := `{"requester":"` + holder + `","direction":"a_to_b","amount_in":"100"}`
		result, _, err := SwapRequestValidate(newRequest(http.MethodPost, "/pools/x/swap", body, poolID))

		require.NoError(t, err)
		require.Nil(t, result.MinAmountOut)
	})

	for name, tc := range map[string]struct{ body, id string }{
		"missing direction": {body: `{"requester":"` + holder + `","amount_in":"100"}`, id: poolID},
		"bad direction":     {body: `{"requester":"` + holder + `","direction":"up","amount_in":"100"}`, id: poolID},
		"missing amount":    {body: `{"requester":"` + holder + `","direction":"a_to_b"}`, id: poolID},
		"short pool id":     {body: `{"requester":"` + holder + `","direction":"a_to_b","amount_in":"1"}`, id: "0x1234"},
		"bad requester":     {body: `{"requester":"alice","direction":"a_to_b","amount_in":"1"}`, id: poolID},
	} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			result, status, err := SwapRequestValidate(newRequest(http.MethodPost, "/pools/x/swap", tc.body, tc.id))
			require.ErrorIs(t, err, apperrors.ErrInvalidArgument)
			require.Equal(t, http.StatusBadRequest, status)
			require.Nil(t, result)
		})
	}
}

func TestLiquidityRequestValidate(t *testing.T) {
	t.Parallel()

	add, _, err := AddLiquidityRequestValidate(newRequest(http.MethodPost, "/",
		`{"provider":"`+holder+`","amount_a":"100","amount_b":"300"}`, poolID))
	require.NoError(t, err)
	require.Equal(t, "300", add.AmountB.Dec())

	rm, _, err := RemoveLiquidityRequestValidate(newRequest(http.MethodPost, "/",
		`{"provider":"`+holder+`","lp_amount":"141"}`, poolID))
	require.NoError(t, err)
	require.Equal(t, "141", rm.LPAmount.Dec())

	_, status, err := RemoveLiquidityRequestValidate(newRequest(http.MethodPost, "/",
		`{"provider":"`+holder+`","lp_amount":"1e3"}`, poolID))
	require.Error(t, err)
	require.Equal(t, http.StatusBadRequest, status)

	_, status, err = AddLiquidityRequestValidate(newRequest(http.MethodPost, "/", `{}`, ""))
	require.Error(t, err)
	require.Equal(t, http.StatusBadRequest, status)
}

func TestQuoteRequestValidate(t *testing.T) {
	t.Parallel()

	req := newRequest(http.MethodGet, "/pools/x/quote?direction=a_to_b&amount_in=100", "", poolID)
	result, _, err := QuoteRequestValidate(req)
	require.NoError(t, err)
	require.Equal(t, amm.AToB, result.Direction)
	require.Equal(t, "100", result.AmountIn.Dec())

	req = newRequest(http.MethodGet, "/pools/x/quote?direction=a_to_b", "", poolID)
	_, status, err := QuoteRequestValidate(req)
	require.Error(t, err)
	require.Equal(t, http.StatusBadRequest, status)
}

func TestHolderValidate(t *testing.T) {
	t.Parallel()

	req := newRequest(http.MethodGet, "/", "", poolID)
	req.SetPathValue("holder", holder)
	got, _, err := HolderValidate(req)
	require.NoError(t, err)
	require.Equal(t, common.HexToAddress(holder), got)

	req.SetPathValue("holder", "nobody")
	_, status, err := HolderValidate(req)
	require.Error(t, err)
	require.Equal(t, http.StatusBadRequest, status)
}
