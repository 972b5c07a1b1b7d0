package mask

import (
	"math/rand"
)

// Region ids used by the four-vertex fixture.
const (
	regionA RegionID = 1
	regionB RegionID = 2
)

// fourVertexTopology returns the topology [A, A, B, B].
func fourVertexTopology() *Topology {
	return NewTopology([]RegionID{regionA, regionA, regionB, regionB})
}

// fullyConnected returns an adjacency where every vertex neighbors every other.
func fullyConnected(n int) Adjacency {
	adj := make(Adjacency, n)
	for v := 0; v < n; v++ {
		for u := 0; u < n; u++ {
			if u != v {
				adj[v] = append(adj[v], u)
			}
		}
	}
	return adj
}

// randomMesh builds a random triangle soup over n vertices and a random mask.
func randomMesh(n int, seed int64) (Weights, Adjacency) {
	r := rand.New(rand.NewSource(seed))

	w := make(Weights, n)
	for i := range w {
		w[i] = r.Float32()
	}

	faces := make([][]int, 0, n)
	for i := 0; i < n; i++ {
		faces = append(faces, []int{r.Intn(n), r.Intn(n), r.Intn(n)})
	}
	adj, err := BuildAdjacency(n, faces)
	if err != nil {
		panic(err)
	}
	return w, adj
}
