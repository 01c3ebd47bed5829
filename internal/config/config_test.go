package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
)

const fullConfig = `
listen_addr: ":8080"
shutdown_timeout: 10s
request_timeout: 2s
read_header_timeout: 1s
log_level: debug
metrics_enabled: false
pools:
  - token_a: "0x0000000000000000000000000000000000000a01"
    token_b: "0x0000000000000000000000000000000000000b02"
    amount_a: "1000"
    amount_b: "2000"
    fee_bps: 30
    owner: "0x00000000000000000000000000000000000a11ce"
`

func TestLoad(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(fullConfig), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	require.Equal(t, ":8080", cfg.ListenAddr)
	require.Equal(t, 10*time.Second, cfg.GraceTimeout)
	require.Equal(t, 2*time.Second, cfg.RequestTimeout)
	require.Equal(t, time.Second, cfg.ReadHeaderTimeout)
	require.Equal(t, "debug", cfg.LogLevel)
	require.False(t, cfg.MetricsEnabled)
	require.Len(t, cfg.Pools, 1)
	require.Equal(t, uint16(30), cfg.Pools[0].FeeBps)
	require.Equal(t, "2000", cfg.Pools[0].AmountB)
}

func TestLoad_MissingFile(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestDecode_Defaults(t *testing.T) {
	t.Parallel()

	for _, doc := range []string{"", "log_level: info\n"} {
		cfg, err := Decode(strings.NewReader(doc))
		require.NoError(t, err)

		require.Equal(t, ":1337", cfg.ListenAddr)
		require.Equal(t, 5*time.Second, cfg.GraceTimeout)
		require.Equal(t, 5*time.Second, cfg.RequestTimeout)
		require.Equal(t, 5*time.Second, cfg.ReadHeaderTimeout)
		require.Equal(t, "info", cfg.LogLevel)
		require.True(t, cfg.MetricsEnabled)
		require.Empty(t, cfg.Pools)
	}
}

func TestDecode_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		doc      string
		wantErrs int
	}{
		{name: "malformed yaml", doc: "listen_addr: [", wantErrs: 1},
		{name: "bad duration", doc: "shutdown_timeout: soon", wantErrs: 1},
		{name: "bad log level", doc: "log_level: loud", wantErrs: 1},
		{
			name: "bad pool",
			doc: `
pools:
  - token_a: "0x0000000000000000000000000000000000000a01"
    token_b: nope
    amount_a: "-5"
    amount_b: "2000"
    owner: "0x00000000000000000000000000000000000a11ce"
    allowed_swapper: "0xzz"
`,
			wantErrs: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := Decode(strings.NewReader(tt.doc))
			require.Error(t, err)
			assert.Len(t, multierr.Errors(errorsOf(err)), tt.wantErrs)
		})
	}
}

// errorsOf unwraps the pools[i] context so the per-field errors are counted.
func errorsOf(err error) error {
	type causer interface{ Cause() error }
	for {
		c, ok := err.(causer)
		if !ok {
			return err
		}
		err = c.Cause()
	}
}

func TestPool_Validate(t *testing.T) {
	t.Parallel()

	p := Pool{
		TokenA:  "0x0000000000000000000000000000000000000a01",
		TokenB:  "0x0000000000000000000000000000000000000b02",
		AmountA: "1000",
		AmountB: "2000",
		Owner:   "0x00000000000000000000000000000000000a11ce",
	}
	require.NoError(t, p.Validate())

	p.AmountA = ""
	require.Error(t, p.Validate())
}

func TestPool_CreatePoolRequest(t *testing.T) {
	t.Parallel()

	p := Pool{
		TokenA:         "0x0000000000000000000000000000000000000a01",
		TokenB:         "0x0000000000000000000000000000000000000b02",
		AmountA:        "1000",
		AmountB:        "2000",
		FeeBps:         30,
		AllowedSwapper: "0x0000000000000000000000000000000000000b0b",
		Owner:          "0x00000000000000000000000000000000000a11ce",
	}

	req, err := p.CreatePoolRequest()
	require.NoError(t, err)
	require.Equal(t, common.HexToAddress(p.TokenA), req.TokenA)
	require.Equal(t, "2000", req.AmountB.Dec())
	require.Equal(t, uint16(30), req.FeeBps)
	require.Equal(t, common.HexToAddress(p.AllowedSwapper), req.AllowedSwapper)

	p.AllowedSwapper = ""
	req, err = p.CreatePoolRequest()
	require.NoError(t, err)
	require.Equal(t, common.Address{}, req.AllowedSwapper)

	p.Owner = "alice"
	_, err = p.CreatePoolRequest()
	require.Error(t, err)
}
