// Package mask resolves per-vertex blend weights and applies them to meshes
// that share a topology.
//
// A mask comes either from a Store of precomputed expression masks or from a
// region selection mapped through a Topology. It is optionally smoothed over
// the mesh's edge Adjacency and then used by Blend to interpolate between a
// base and a target position set.
package mask

import "github.com/chewxy/math32"

// Weights is a per-vertex scalar field in [0, 1].
// Index i refers to vertex i of the topology the mask was built for.
type Weights []float32

// Zeros returns an all-zero mask for n vertices.
func Zeros(n int) Weights {
	return make(Weights, n)
}

// Filled returns a mask for n vertices with every weight set to v.
func Filled(n int, v float32) Weights {
	w := make(Weights, n)
	for i := range w {
		w[i] = v
	}
	return w
}

// Clone returns an independent copy.
func (w Weights) Clone() Weights {
	if w == nil {
		return nil
	}
	out := make(Weights, len(w))
	copy(out, w)
	return out
}

// Clamp returns a copy with every weight limited to [0, 1].
// NaN weights become 0.
func (w Weights) Clamp() Weights {
	out := make(Weights, len(w))
	for i, v := range w {
		switch {
		case math32.IsNaN(v), v < 0:
			out[i] = 0
		case v > 1:
			out[i] = 1
		default:
			out[i] = v
		}
	}
	return out
}

// InRange reports whether every weight lies in [0, 1].
func (w Weights) InRange() bool {
	for _, v := range w {
		if !(v >= 0 && v <= 1) {
			return false
		}
	}
	return true
}

// Equal reports whether both masks have the same length and all weights
// differ by at most eps.
func (w Weights) Equal(other Weights, eps float32) bool {
	if len(w) != len(other) {
		return false
	}
	for i := range w {
		if math32.Abs(w[i]-other[i]) > eps {
			return false
		}
	}
	return true
}

// Max returns the per-vertex maximum of w and other.
// Both masks must have the same length.
func (w Weights) Max(other Weights) (Weights, error) {
	if len(w) != len(other) {
		return nil, lengthError("mask", len(other), len(w))
	}
	out := make(Weights, len(w))
	for i := range w {
		out[i] = math32.Max(w[i], other[i])
	}
	return out, nil
}
