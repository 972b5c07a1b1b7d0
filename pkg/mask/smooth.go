package mask

import (
	"fmt"

	"github.com/chewxy/math32"
)

// Smooth diffuses w across adj for the given number of iterations.
//
// Each iteration replaces every weight by the mean of itself and its direct
// neighbors, all read from the previous iteration. Zero iterations return an
// unchanged copy. The input is never modified.
func Smooth(w Weights, adj Adjacency, iterations int) (Weights, error) {
	return SmoothWeighted(w, adj, iterations, 1)
}

// SmoothWeighted is Smooth with a configurable neighbor contribution:
//
//	w'[i] = (w[i] + nw*sum(w[j])) / (1 + nw*deg(i))
//
// nw = 1 is the plain closed-neighborhood mean. Vertices without neighbors
// keep their weight.
func SmoothWeighted(w Weights, adj Adjacency, iterations int, neighborWeight float32) (Weights, error) {
	if iterations < 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidIterations, iterations)
	}
	if len(adj) != len(w) {
		return nil, lengthError("adjacency", len(adj), len(w))
	}
	if neighborWeight < 0 || math32.IsNaN(neighborWeight) || math32.IsInf(neighborWeight, 0) {
		return nil, fmt.Errorf("neighbor weight must be finite and >= 0, got %v", neighborWeight)
	}
	if err := adj.Validate(); err != nil {
		return nil, err
	}

	cur := w.Clone()
	if iterations == 0 {
		return cur, nil
	}
	next := make(Weights, len(w))
	nw := float64(neighborWeight)

	for it := 0; it < iterations; it++ {
		for i, neighbors := range adj {
			sum := 0.0
			for _, j := range neighbors {
				sum += float64(cur[j])
			}
			v := (float64(cur[i]) + nw*sum) / (1 + nw*float64(len(neighbors)))
			// rounding guard
			next[i] = math32.Min(1, math32.Max(0, float32(v)))
		}
		cur, next = next, cur
	}
	return cur, nil
}
