package metrics

import (
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/blendmask/pkg/mask"
)

func TestObserveResolve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveResolve(mask.SourceStore, 0, time.Millisecond, nil)
	m.ObserveResolve(mask.SourceStore, 0, time.Millisecond, fmt.Errorf("wrapped: %w", mask.ErrNotFound))
	m.ObserveResolve(mask.SourceSelection, 10, 2*time.Millisecond, nil)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.ResolveTotal.WithLabelValues("store", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ResolveTotal.WithLabelValues("store", "not_found")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ResolveTotal.WithLabelValues("selection", "ok")))

	// Failed resolutions are not timed.
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, f := range families {
		if f.GetName() == "blendmask_smooth_iterations" {
			h := f.GetMetric()[0].GetHistogram()
			assert.Equal(t, uint64(2), h.GetSampleCount())
			assert.Equal(t, 10.0, h.GetSampleSum())
		}
	}
}

func TestObserveBlend(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveBlend(4, nil)
	m.ObserveBlend(4, mask.ErrLengthMismatch)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.BlendTotal.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.BlendTotal.WithLabelValues("length_mismatch")))
}

func TestResult(t *testing.T) {
	assert.Equal(t, "ok", Result(nil))
	assert.Equal(t, "out_of_range", Result(mask.ErrOutOfRange))
	assert.Equal(t, "invalid_iterations", Result(mask.ErrInvalidIterations))
	assert.Equal(t, "error", Result(fmt.Errorf("disk on fire")))
}

func TestMetricsWithResolver(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	store := mask.NewStore()
	store.Put("m", mask.Weights{0, 1})
	r := mask.NewResolver(mask.NewTopology([]mask.RegionID{0, 1}), store, nil, mask.WithObserver(m))

	_, err := r.Resolve(mask.Request{BaseMesh: "m"})
	require.NoError(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.ResolveTotal.WithLabelValues("store", "ok")))

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "blendmask_resolve_total")
}
