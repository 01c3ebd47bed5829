package config

import (
	"io"
	"os"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/fleshka4/cpamm/internal/service/dto"
)

// Config holds application configuration loaded from file.
type Config struct {
	ListenAddr        string        `yaml:"listen_addr"`
	GraceTimeout      time.Duration `yaml:"shutdown_timeout"`
	RequestTimeout    time.Duration `yaml:"request_timeout"`
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout"`
	LogLevel          string        `yaml:"log_level"`
	MetricsEnabled    bool          `yaml:"metrics_enabled"`
	Pools             []Pool        `yaml:"pools"`
}

// Pool describes a genesis pool created at startup. Amounts are decimal
// strings in the smallest token unit.
type Pool struct {
	TokenA         string `yaml:"token_a"`
	TokenB         string `yaml:"token_b"`
	AmountA        string `yaml:"amount_a"`
	AmountB        string `yaml:"amount_b"`
	FeeBps         uint16 `yaml:"fee_bps"`
	AllowedSwapper string `yaml:"allowed_swapper"`
	Owner          string `yaml:"owner"`
}

// Load reads the config from a YAML file path and applies defaults.
func Load(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, errors.Wrap(err, "os.Open")
	}
	defer f.Close()

	return Decode(f)
}

// Decode parses a YAML config from r and applies defaults.
func Decode(r io.Reader) (Config, error) {
	cfg := Config{MetricsEnabled: true}
	if err := yaml.NewDecoder(r).Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, errors.Wrap(err, "decoder.Decode")
	}

	// Fallbacks
	const defaultTimeout = 5 * time.Second
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = ":1337"
	}
	if cfg.GraceTimeout == 0 {
		cfg.GraceTimeout = defaultTimeout
	}
	if cfg.RequestTimeout == 0 {
		cfg.RequestTimeout = defaultTimeout
	}
	if cfg.ReadHeaderTimeout == 0 {
		cfg.ReadHeaderTimeout = defaultTimeout
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	var err error
	if _, lerr := zapcore.ParseLevel(c.LogLevel); lerr != nil {
		err = multierr.Append(err, errors.Wrap(lerr, "log_level"))
	}
	for i, p := range c.Pools {
		if perr := p.Validate(); perr != nil {
			err = multierr.Append(err, errors.Wrapf(perr, "pools[%d]", i))
		}
	}
	return err
}

// Validate checks that addresses are hex and amounts are decimal. Amount
// ranges and the fee are left to pool creation.
func (p Pool) Validate() error {
	var err error
	for name, addr := range map[string]string{"token_a": p.TokenA, "token_b": p.TokenB, "owner": p.Owner} {
		if !common.IsHexAddress(addr) {
			err = multierr.Append(err, errors.Errorf("%s: bad address %q", name, addr))
		}
	}
	if p.AllowedSwapper != "" && !common.IsHexAddress(p.AllowedSwapper) {
		err = multierr.Append(err, errors.Errorf("allowed_swapper: bad address %q", p.AllowedSwapper))
	}
	for name, amount := range map[string]string{"amount_a": p.AmountA, "amount_b": p.AmountB} {
		if _, perr := uint256.FromDecimal(amount); perr != nil {
			err = multierr.Append(err, errors.Wrapf(perr, "%s: bad amount %q", name, amount))
		}
	}
	return err
}

// CreatePoolRequest converts p into a service request.
func (p Pool) CreatePoolRequest() (dto.CreatePoolRequest, error) {
	if err := p.Validate(); err != nil {
		return dto.CreatePoolRequest{}, err
	}

	// Validate has checked both amounts.
	amountA, _ := uint256.FromDecimal(p.AmountA)
	amountB, _ := uint256.FromDecimal(p.AmountB)

	req := dto.CreatePoolRequest{
		TokenA:  common.HexToAddress(p.TokenA),
		TokenB:  common.HexToAddress(p.TokenB),
		AmountA: amountA,
		AmountB: amountB,
		FeeBps:  p.FeeBps,
		Owner:   common.HexToAddress(p.Owner),
	}
	if p.AllowedSwapper != "" {
		req.AllowedSwapper = common.HexToAddress(p.AllowedSwapper)
	}
	return req, nil
}
