package mask

import (
	"github.com/Faultbox/blendmask/pkg/math"
)

// Positions is a mesh's vertex positions in vertex index order.
type Positions []math.Vec3

// Blend interpolates each vertex from base toward target by its mask weight:
//
//	result[i] = base[i] + w[i]*(target[i]-base[i])
//
// All three inputs must have the same length. A weight of 0 keeps the base
// position exactly, a weight of 1 takes the target position exactly. The
// inputs are not modified.
func Blend(base, target Positions, w Weights) (Positions, error) {
	if len(target) != len(base) {
		return nil, lengthError("target positions", len(target), len(base))
	}
	if len(w) != len(base) {
		return nil, lengthError("mask", len(w), len(base))
	}

	out := make(Positions, len(base))
	for i := range base {
		out[i] = base[i].Lerp(target[i], w[i])
	}
	return out, nil
}
