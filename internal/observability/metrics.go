package observability

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// BoardCollector bundles Prometheus metrics for the plotting board and
// provides a ready-to-use /metrics handler.
type BoardCollector struct {
	gatherer prometheus.Gatherer

	SolveTotal    *prometheus.CounterVec
	SolveDuration prometheus.Histogram

	BoardUnits     prometheus.Gauge
	BoardWaypoints prometheus.Gauge
	Sessions       prometheus.Gauge
}

// NewBoardCollector registers board Prometheus metrics against the provided
// registerer, defaulting to the global Prometheus registry when nil.
func NewBoardCollector(reg prometheus.Registerer) (*BoardCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	solves := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "board_solve_total",
		Help: "Total number of intercept solve requests, labeled by outcome.",
	}, []string{"outcome"})
	solves, err := registerCounterVec(reg, solves, "board_solve_total")
	if err != nil {
		return nil, err
	}

	durations, err := registerHistogram(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "board_solve_duration_seconds",
		Help:    "Intercept solve latency in seconds.",
		Buckets: []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
	}), "board_solve_duration_seconds")
	if err != nil {
		return nil, err
	}

	units, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "board_units",
		Help: "Current number of units on the board.",
	}), "board_units")
	if err != nil {
		return nil, err
	}
	waypoints, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "board_waypoints",
		Help: "Current number of waypoints on the board.",
	}), "board_waypoints")
	if err != nil {
		return nil, err
	}
	sessions, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "board_sessions",
		Help: "Current number of connected client sessions.",
	}), "board_sessions")
	if err != nil {
		return nil, err
	}

	return &BoardCollector{
		gatherer:       gatherer,
		SolveTotal:     solves,
		SolveDuration:  durations,
		BoardUnits:     units,
		BoardWaypoints: waypoints,
		Sessions:       sessions,
	}, nil
}

// ObserveSolve records one solve request with its outcome label ("solved" or
// the failure kind's wire name) and duration.
func (c *BoardCollector) ObserveSolve(outcome string, elapsed time.Duration) {
	if c == nil {
		return
	}
	if c.SolveTotal != nil {
		c.SolveTotal.WithLabelValues(outcome).Inc()
	}
	if c.SolveDuration != nil {
		c.SolveDuration.Observe(elapsed.Seconds())
	}
}

// SessionOpened and SessionClosed track the connected-session gauge.
func (c *BoardCollector) SessionOpened() {
	if c != nil && c.Sessions != nil {
		c.Sessions.Inc()
	}
}

func (c *BoardCollector) SessionClosed() {
	if c != nil && c.Sessions != nil {
		c.Sessions.Dec()
	}
}

// Handler exposes a ready-to-use /metrics handler.
func (c *BoardCollector) Handler() http.Handler {
	gatherer := c.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// SetBoardCounts satisfies the kb.MetricsRecorder interface so the board can
// drive gauge values directly from its mutators.
func (c *BoardCollector) SetBoardCounts(units, waypoints int) {
	if c == nil {
		return
	}
	if c.BoardUnits != nil {
		c.BoardUnits.Set(float64(units))
	}
	if c.BoardWaypoints != nil {
		c.BoardWaypoints.Set(float64(waypoints))
	}
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerHistogram(reg prometheus.Registerer, hist prometheus.Histogram, name string) (prometheus.Histogram, error) {
	if err := reg.Register(hist); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Histogram); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return hist, nil
}

func registerGauge(reg prometheus.Registerer, gauge prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(gauge); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return gauge, nil
}
