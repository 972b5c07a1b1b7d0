package mask

import (
	"fmt"
	"sort"
)

// Adjacency lists the directly connected neighbors of every vertex.
// Entry i holds the neighbors of vertex i.
type Adjacency [][]int

// BuildAdjacency derives vertex adjacency from polygon faces. Every pair of
// vertices sharing a face is connected. Neighbor lists come back sorted and
// free of duplicates and self-references.
func BuildAdjacency(vertexCount int, faces [][]int) (Adjacency, error) {
	sets := make([]map[int]struct{}, vertexCount)

	for fi, face := range faces {
		for _, v := range face {
			if v < 0 || v >= vertexCount {
				return nil, fmt.Errorf("%w: face %d references vertex %d, mesh has %d vertices",
					ErrOutOfRange, fi, v, vertexCount)
			}
		}
		for _, a := range face {
			for _, b := range face {
				if a == b {
					continue
				}
				if sets[a] == nil {
					sets[a] = make(map[int]struct{})
				}
				sets[a][b] = struct{}{}
			}
		}
	}

	adj := make(Adjacency, vertexCount)
	for v, set := range sets {
		if len(set) == 0 {
			continue
		}
		n := make([]int, 0, len(set))
		for u := range set {
			n = append(n, u)
		}
		sort.Ints(n)
		adj[v] = n
	}
	return adj, nil
}

// Validate checks that every neighbor index refers to a vertex of the
// adjacency itself.
func (a Adjacency) Validate() error {
	for v, neighbors := range a {
		for _, u := range neighbors {
			if u < 0 || u >= len(a) {
				return fmt.Errorf("%w: vertex %d lists neighbor %d, mesh has %d vertices",
					ErrOutOfRange, v, u, len(a))
			}
		}
	}
	return nil
}
