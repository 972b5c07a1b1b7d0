// Package metrics exposes prometheus collectors for mask resolution and blending.
package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/Faultbox/blendmask/pkg/mask"
)

// Metrics holds the blendmask collectors. It implements mask.Observer.
type Metrics struct {
	ResolveTotal     *prometheus.CounterVec
	ResolveSeconds   prometheus.Histogram
	SmoothIterations prometheus.Histogram
	BlendTotal       *prometheus.CounterVec
	BlendVertices    prometheus.Histogram
	Sessions         prometheus.Gauge
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ResolveTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "blendmask_resolve_total",
				Help: "Mask resolutions by source and result",
			},
			[]string{"source", "result"},
		),
		ResolveSeconds: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "blendmask_resolve_seconds",
				Help:    "Time spent resolving and smoothing a mask",
				Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
			},
		),
		SmoothIterations: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "blendmask_smooth_iterations",
				Help:    "Smoothing iterations requested per resolution",
				Buckets: []float64{0, 1, 2, 5, 10, 20, 30, 50},
			},
		),
		BlendTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "blendmask_blend_total",
				Help: "Blend operations by result",
			},
			[]string{"result"},
		),
		BlendVertices: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "blendmask_blend_vertices",
				Help:    "Vertex count of blended meshes",
				Buckets: prometheus.ExponentialBuckets(64, 4, 8),
			},
		),
		Sessions: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "blendmask_sessions",
				Help: "Open HTTP sessions",
			},
		),
	}

	reg.MustRegister(
		m.ResolveTotal,
		m.ResolveSeconds,
		m.SmoothIterations,
		m.BlendTotal,
		m.BlendVertices,
		m.Sessions,
	)
	return m
}

// ObserveResolve records one mask resolution.
func (m *Metrics) ObserveResolve(source mask.Source, iterations int, elapsed time.Duration, err error) {
	m.ResolveTotal.WithLabelValues(string(source), Result(err)).Inc()
	if err != nil {
		return
	}
	m.ResolveSeconds.Observe(elapsed.Seconds())
	m.SmoothIterations.Observe(float64(iterations))
}

// ObserveBlend records one blend.
func (m *Metrics) ObserveBlend(vertices int, err error) {
	m.BlendTotal.WithLabelValues(Result(err)).Inc()
	if err == nil {
		m.BlendVertices.Observe(float64(vertices))
	}
}

// Result maps an error to a low-cardinality label value.
func Result(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, mask.ErrNotFound):
		return "not_found"
	case errors.Is(err, mask.ErrOutOfRange):
		return "out_of_range"
	case errors.Is(err, mask.ErrLengthMismatch):
		return "length_mismatch"
	case errors.Is(err, mask.ErrInvalidIterations):
		return "invalid_iterations"
	default:
		return "error"
	}
}
