package simulate

import (
	"io"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/fleshka4/cpamm/internal/config"
)

// Step kinds.
const (
	StepCreate = "create"
	StepAdd    = "add"
	StepRemove = "remove"
	StepSwap   = "swap"
	StepQuote  = "quote"
)

// Scenario is an ordered list of pool operations replayed against a fresh
// in-memory pool registry.
type Scenario struct {
	StopOnError bool   `yaml:"stop_on_error"`
	Steps       []Step `yaml:"steps"`
}

// Step is one scenario operation. The token pair selects the pool for every
// kind; create also reads the amounts, fee, swapper and owner. Account is the
// provider of add/remove and the requester of swap.
type Step struct {
	Op          string `yaml:"op"`
	config.Pool `yaml:",inline"`

	Account      string `yaml:"account"`
	LPAmount     string `yaml:"lp_amount"`
	Direction    string `yaml:"direction"`
	AmountIn     string `yaml:"amount_in"`
	MinAmountOut string `yaml:"min_amount_out"`
}

// LoadScenario reads a scenario from a YAML file.
func LoadScenario(path string) (Scenario, error) {
	f, err := os.Open(path)
	if err != nil {
		return Scenario{}, errors.Wrap(err, "os.Open")
	}
	defer f.Close()

	return DecodeScenario(f)
}

// DecodeScenario parses a YAML scenario from r.
func DecodeScenario(r io.Reader) (Scenario, error) {
	var sc Scenario
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&sc); err != nil {
		return Scenario{}, errors.Wrap(err, "decoder.Decode")
	}

	for i, st := range sc.Steps {
		switch st.Op {
		case StepCreate, StepAdd, StepRemove, StepSwap, StepQuote:
		default:
			return Scenario{}, errors.Errorf("steps[%d]: unknown op %q", i, st.Op)
		}
	}
	return sc, nil
}
