package mask

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Faultbox/blendmask/pkg/math"
)

type recordingObserver struct {
	sources []Source
	errs    []error
	blends  int
}

func (o *recordingObserver) ObserveResolve(source Source, _ int, _ time.Duration, err error) {
	o.sources = append(o.sources, source)
	o.errs = append(o.errs, err)
}

func (o *recordingObserver) ObserveBlend(_ int, _ error) {
	o.blends++
}

func newTestResolver(opts ...Option) *Resolver {
	store := NewStore()
	store.Put("Happy_01", Weights{0.2, 0.4, 0.6, 0.8})
	store.Put("Loud", Weights{-1, 0.5, 2, 0})
	store.Put("Short", Weights{1, 1})
	return NewResolver(fourVertexTopology(), store, fullyConnected(4), opts...)
}

func TestResolver_StoredMask(t *testing.T) {
	r := newTestResolver()

	w, err := r.Resolve(Request{BaseMesh: "Happy_01"})
	require.NoError(t, err)
	assert.Equal(t, Weights{0.2, 0.4, 0.6, 0.8}, w)
}

func TestResolver_StoredMaskNotFound(t *testing.T) {
	r := newTestResolver()

	_, err := r.Resolve(Request{BaseMesh: "happy_01"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestResolver_StoredMaskIsClamped(t *testing.T) {
	r := newTestResolver()

	w, err := r.Resolve(Request{BaseMesh: "Loud"})
	require.NoError(t, err)
	assert.Equal(t, Weights{0, 0.5, 1, 0}, w)
}

func TestResolver_StoredMaskWrongLength(t *testing.T) {
	r := newTestResolver()

	_, err := r.Resolve(Request{BaseMesh: "Short"})
	assert.ErrorIs(t, err, ErrLengthMismatch)
}

func TestResolver_SelectionWinsOverStore(t *testing.T) {
	r := newTestResolver()

	w, err := r.Resolve(Request{
		BaseMesh:     "Happy_01",
		Selection:    []int{2},
		HasSelection: true,
	})
	require.NoError(t, err)
	assert.Equal(t, Weights{0, 0, 1, 1}, w)
}

func TestResolver_SelectionDoesNotNeedStoredMask(t *testing.T) {
	r := newTestResolver()

	w, err := r.Resolve(Request{BaseMesh: "missing", Selection: []int{0}, HasSelection: true})
	require.NoError(t, err)
	assert.Equal(t, Weights{1, 1, 0, 0}, w)
}

func TestResolver_EmptySelectionIsAllZero(t *testing.T) {
	r := newTestResolver()

	w, err := r.Resolve(Request{BaseMesh: "Happy_01", HasSelection: true})
	require.NoError(t, err)
	assert.Equal(t, Weights{0, 0, 0, 0}, w)
}

func TestResolver_Overlay(t *testing.T) {
	r := newTestResolver()

	w, err := r.Resolve(Request{
		BaseMesh:     "Happy_01",
		Selection:    []int{0},
		HasSelection: true,
		Overlay:      true,
	})
	require.NoError(t, err)
	assert.Equal(t, Weights{1, 1, 0.6, 0.8}, w)

	_, err = r.Resolve(Request{BaseMesh: "missing", Selection: []int{0}, HasSelection: true, Overlay: true})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestResolver_Smoothing(t *testing.T) {
	r := newTestResolver()

	w, err := r.Resolve(Request{Selection: []int{3}, HasSelection: true, Iterations: 1})
	require.NoError(t, err)
	assert.True(t, w.Equal(Weights{0.5, 0.5, 0.5, 0.5}, 1e-6), "got %v", w)
}

func TestResolver_NeighborWeightOption(t *testing.T) {
	r := newTestResolver(WithNeighborWeight(0.5))

	w, err := r.Resolve(Request{Selection: []int{3}, HasSelection: true, Iterations: 1})
	require.NoError(t, err)
	// Vertex 0: (0 + 0.5*(0+1+1)) / (1 + 0.5*3)
	// Vertex 2: (1 + 0.5*(0+0+1)) / (1 + 0.5*3)
	want := Weights{1 / 2.5, 1 / 2.5, 1.5 / 2.5, 1.5 / 2.5}
	assert.True(t, w.Equal(want, 1e-6), "got %v want %v", w, want)
}

func TestResolver_Errors(t *testing.T) {
	r := newTestResolver()

	_, err := r.Resolve(Request{BaseMesh: "Happy_01", Iterations: -2})
	assert.ErrorIs(t, err, ErrInvalidIterations)

	_, err = r.Resolve(Request{Selection: []int{9}, HasSelection: true})
	assert.ErrorIs(t, err, ErrOutOfRange)

	noTopo := NewResolver(nil, NewStore(), nil)
	_, err = noTopo.Resolve(Request{Selection: []int{0}, HasSelection: true})
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = noTopo.RegionsTouched([]int{0})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestResolver_SmoothingWithoutAdjacency(t *testing.T) {
	store := NewStore()
	store.Put("m", Weights{0, 1, 0, 1})
	r := NewResolver(fourVertexTopology(), store, nil)

	w, err := r.Resolve(Request{BaseMesh: "m"})
	require.NoError(t, err)
	assert.Equal(t, Weights{0, 1, 0, 1}, w)

	_, err = r.Resolve(Request{BaseMesh: "m", Iterations: 1})
	assert.ErrorIs(t, err, ErrLengthMismatch)
}

func TestResolver_RegionsTouched(t *testing.T) {
	r := newTestResolver()

	regions, err := r.RegionsTouched([]int{3, 0})
	require.NoError(t, err)
	assert.Equal(t, []RegionID{regionA, regionB}, regions)
}

func TestResolver_Apply(t *testing.T) {
	obs := &recordingObserver{}
	r := newTestResolver(WithObserver(obs), WithLogger(zap.NewNop()))

	zero := math.Vec3{}
	one := math.Vec3{X: 1, Y: 1, Z: 1}
	base := Positions{zero, zero, zero, zero}
	target := Positions{one, one, one, one}

	out, w, err := r.Apply(Request{Selection: []int{2}, HasSelection: true}, base, target)
	require.NoError(t, err)
	assert.Equal(t, Weights{0, 0, 1, 1}, w)
	assert.Equal(t, Positions{zero, zero, one, one}, out)

	_, _, err = r.Apply(Request{Selection: []int{2}, HasSelection: true}, base[:3], target)
	assert.ErrorIs(t, err, ErrLengthMismatch)

	_, _, err = r.Apply(Request{BaseMesh: "nope"}, base, target)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.Equal(t, []Source{SourceSelection, SourceSelection, SourceStore}, obs.sources)
	assert.NoError(t, obs.errs[0])
	assert.ErrorIs(t, obs.errs[2], ErrNotFound)
	assert.Equal(t, 2, obs.blends)
}
