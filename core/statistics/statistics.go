package statistics

import (
	"math/big"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

var weiPerUnit = big.NewFloat(1e18)

// Data holds the engine collectors. A nil *Data is valid and records nothing.
type Data struct {
	Operations    *prometheus.CounterVec
	Commissions   *prometheus.CounterVec
	CapReached    prometheus.Counter
	Discarded     prometheus.Counter
	BreakerTrips  prometheus.Counter
	Distributions *prometheus.CounterVec
	Withdrawn     prometheus.Counter
	Version       prometheus.Gauge
}

// New creates the collectors and registers them on registerer.
func New(registerer prometheus.Registerer) *Data {
	d := &Data{
		Operations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "incentives_operations_total",
				Help: "Delivered operations by type and response code",
			},
			[]string{"type", "code"},
		),
		Commissions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "incentives_commissions_units_total",
				Help: "Credited commissions in reference units",
			},
			[]string{"kind"},
		),
		CapReached: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "incentives_earnings_cap_reached_total",
				Help: "Credits cut by the earnings cap",
			},
		),
		Discarded: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "incentives_discarded_units_total",
				Help: "Value discarded by the earnings cap in reference units",
			},
		),
		BreakerTrips: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "incentives_circuit_breaker_trips_total",
				Help: "Circuit breaker activations",
			},
		),
		Distributions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "incentives_distribution_batches_total",
				Help: "Distribution batches by pool",
			},
			[]string{"pool"},
		),
		Withdrawn: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "incentives_withdrawn_units_total",
				Help: "Value paid out by withdrawals in reference units",
			},
		),
		Version: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "incentives_state_version",
				Help: "Last committed state version",
			},
		),
	}

	registerer.MustRegister(
		d.Operations,
		d.Commissions,
		d.CapReached,
		d.Discarded,
		d.BreakerTrips,
		d.Distributions,
		d.Withdrawn,
		d.Version,
	)

	return d
}

func units(amount *big.Int) float64 {
	f, _ := new(big.Float).Quo(new(big.Float).SetInt(amount), weiPerUnit).Float64()
	return f
}

func (d *Data) Operation(txType string, code uint32) {
	if d == nil {
		return
	}
	d.Operations.WithLabelValues(txType, strconv.Itoa(int(code))).Inc()
}

func (d *Data) Commission(kind string, amount *big.Int) {
	if d == nil {
		return
	}
	d.Commissions.WithLabelValues(kind).Add(units(amount))
}

func (d *Data) CapHit(discarded *big.Int) {
	if d == nil {
		return
	}
	d.CapReached.Inc()
	d.Discarded.Add(units(discarded))
}

func (d *Data) BreakerTrip() {
	if d == nil {
		return
	}
	d.BreakerTrips.Inc()
}

func (d *Data) DistributionBatch(pool string) {
	if d == nil {
		return
	}
	d.Distributions.WithLabelValues(pool).Inc()
}

func (d *Data) Withdrawal(amount *big.Int) {
	if d == nil {
		return
	}
	d.Withdrawn.Add(units(amount))
}

func (d *Data) SetVersion(version int64) {
	if d == nil {
		return
	}
	d.Version.Set(float64(version))
}
