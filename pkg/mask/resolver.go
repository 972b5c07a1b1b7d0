package mask

import (
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Source names where a resolved mask came from.
type Source string

// Mask sources.
const (
	SourceStore     Source = "store"
	SourceSelection Source = "selection"
	SourceOverlay   Source = "overlay"
)

// Request describes one mask resolution.
type Request struct {
	// BaseMesh is the exact store key of the base mesh's expression mask.
	BaseMesh string
	// Selection holds picked vertex indices. It is only used when
	// HasSelection is set, so an empty selection can still be requested.
	Selection    []int
	HasSelection bool
	// Overlay lays the region selection over the stored mask of BaseMesh
	// instead of replacing it.
	Overlay bool
	// Iterations is the number of smoothing passes; 0 disables smoothing.
	Iterations int
}

// Source returns where the mask for r will come from.
func (r Request) Source() Source {
	switch {
	case r.HasSelection && r.Overlay:
		return SourceOverlay
	case r.HasSelection:
		return SourceSelection
	default:
		return SourceStore
	}
}

// Observer receives notifications about resolver activity.
type Observer interface {
	ObserveResolve(source Source, iterations int, elapsed time.Duration, err error)
	ObserveBlend(vertices int, err error)
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithNeighborWeight sets the neighbor contribution used when smoothing.
func WithNeighborWeight(nw float32) Option {
	return func(r *Resolver) { r.neighborWeight = nw }
}

// WithLogger sets the logger used for debug output.
func WithLogger(log *zap.Logger) Option {
	return func(r *Resolver) {
		if log != nil {
			r.log = log
		}
	}
}

// WithObserver registers an observer for resolve and blend calls.
func WithObserver(o Observer) Option {
	return func(r *Resolver) { r.observer = o }
}

// Resolver decides which mask to use for a request, smooths it and applies
// it. It is the entry point for host applications.
type Resolver struct {
	topo           *Topology
	store          *Store
	adj            Adjacency
	neighborWeight float32
	log            *zap.Logger
	observer       Observer
}

// NewResolver creates a resolver over a topology, a caller-owned store and
// the topology's edge adjacency. topo may be nil when only stored masks are
// used; adj may be nil when smoothing is never requested.
func NewResolver(topo *Topology, store *Store, adj Adjacency, opts ...Option) *Resolver {
	r := &Resolver{
		topo:           topo,
		store:          store,
		adj:            adj,
		neighborWeight: 1,
		log:            zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Topology returns the resolver's topology.
func (r *Resolver) Topology() *Topology {
	return r.topo
}

// Store returns the resolver's mask store.
func (r *Resolver) Store() *Store {
	return r.store
}

// RegionsTouched returns the regions touched by a vertex selection so a host
// can highlight them before committing.
func (r *Resolver) RegionsTouched(selection []int) ([]RegionID, error) {
	if r.topo == nil {
		return nil, fmt.Errorf("%w: no topology loaded", ErrNotFound)
	}
	return RegionsTouched(selection, r.topo)
}

// Resolve returns the smoothed mask for req.
func (r *Resolver) Resolve(req Request) (Weights, error) {
	start := time.Now()
	w, err := r.resolve(req)
	if r.observer != nil {
		r.observer.ObserveResolve(req.Source(), req.Iterations, time.Since(start), err)
	}
	if err != nil {
		r.log.Debug("resolve failed",
			zap.String("base_mesh", req.BaseMesh),
			zap.String("source", string(req.Source())),
			zap.Error(err))
		return nil, err
	}
	r.log.Debug("mask resolved",
		zap.String("base_mesh", req.BaseMesh),
		zap.String("source", string(req.Source())),
		zap.Int("vertices", len(w)),
		zap.Int("iterations", req.Iterations),
		zap.Duration("elapsed", time.Since(start)))
	return w, nil
}

func (r *Resolver) resolve(req Request) (Weights, error) {
	if req.Iterations < 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidIterations, req.Iterations)
	}

	var w Weights
	var err error
	switch req.Source() {
	case SourceSelection:
		w, err = r.fromSelection(req.Selection)
	case SourceOverlay:
		w, err = r.overlay(req.BaseMesh, req.Selection)
	default:
		w, err = r.stored(req.BaseMesh)
	}
	if err != nil {
		return nil, err
	}

	if req.Iterations == 0 {
		return w, nil
	}
	return SmoothWeighted(w, r.adj, req.Iterations, r.neighborWeight)
}

func (r *Resolver) fromSelection(selection []int) (Weights, error) {
	if r.topo == nil {
		return nil, fmt.Errorf("%w: no topology loaded", ErrNotFound)
	}
	return SelectRegions(selection, r.topo)
}

// stored looks up a mask and normalizes it against the topology.
func (r *Resolver) stored(name string) (Weights, error) {
	w, err := r.store.Lookup(name)
	if err != nil {
		return nil, err
	}
	if r.topo != nil && len(w) != r.topo.VertexCount() {
		return nil, lengthError(fmt.Sprintf("mask %q", name), len(w), r.topo.VertexCount())
	}
	return w.Clamp(), nil
}

// overlay forces every vertex of the selected regions to 1 and keeps the
// stored weights elsewhere.
func (r *Resolver) overlay(name string, selection []int) (Weights, error) {
	region, err := r.fromSelection(selection)
	if err != nil {
		return nil, err
	}
	base, err := r.stored(name)
	if err != nil {
		return nil, err
	}
	return region.Max(base)
}

// Apply resolves the mask for req and blends base toward target with it.
func (r *Resolver) Apply(req Request, base, target Positions) (Positions, Weights, error) {
	w, err := r.Resolve(req)
	if err != nil {
		return nil, nil, err
	}
	out, err := Blend(base, target, w)
	if r.observer != nil {
		r.observer.ObserveBlend(len(base), err)
	}
	if err != nil {
		return nil, nil, err
	}
	return out, w, nil
}
