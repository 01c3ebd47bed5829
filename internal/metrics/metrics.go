package metrics

import (
	"math/big"
	"net/http"

	"github.com/holiman/uint256"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "cpamm"

// Operation statuses.
const (
	StatusSuccess = "success"
	StatusFailure = "failure"
)

// Metrics holds the Prometheus collectors of the pool service.
type Metrics struct {
	OperationsTotal *prometheus.CounterVec
	SwapVolume      *prometheus.CounterVec
	Pools           prometheus.Gauge

	gatherer prometheus.Gatherer
}

// New creates the collectors and registers them on reg. A nil reg gets a
// fresh private registry.
func New(reg *prometheus.Registry) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	m := &Metrics{
		OperationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "operations_total",
				Help:      "Total number of pool operations by type and outcome",
			},
			[]string{"op", "status"},
		),
		SwapVolume: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "swap_volume_total",
				Help:      "Total swap input volume in base units",
			},
			[]string{"pool", "direction"},
		),
		Pools: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "pools",
				Help:      "Number of registered pools",
			},
		),
		gatherer: reg,
	}

	for _, c := range []prometheus.Collector{m.OperationsTotal, m.SwapVolume, m.Pools} {
		if err := reg.Register(c); err != nil {
			return nil, errors.Wrap(err, "reg.Register")
		}
	}

	return m, nil
}

// ObserveOperation counts one operation outcome.
func (m *Metrics) ObserveOperation(op string, err error) {
	status := StatusSuccess
	if err != nil {
		status = StatusFailure
	}
	m.OperationsTotal.WithLabelValues(op, status).Inc()
}

// ObserveSwap adds amountIn to the swap volume of a pool. Volumes above
// float64 precision are approximated.
func (m *Metrics) ObserveSwap(pool, direction string, amountIn *uint256.Int) {
	v, _ := new(big.Float).SetInt(amountIn.ToBig()).Float64()
	m.SwapVolume.WithLabelValues(pool, direction).Add(v)
}

// Handler serves the registered collectors in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
