package mask

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildAdjacency_Quad(t *testing.T) {
	// Two triangles sharing the edge 1-2.
	adj, err := BuildAdjacency(4, [][]int{{0, 1, 2}, {1, 3, 2}})
	require.NoError(t, err)

	assert.Equal(t, Adjacency{
		{1, 2},
		{0, 2, 3},
		{0, 1, 3},
		{1, 2},
	}, adj)
}

func TestBuildAdjacency_PolygonConnectsAllPairs(t *testing.T) {
	adj, err := BuildAdjacency(4, [][]int{{0, 1, 2, 3}})
	require.NoError(t, err)

	for v, neighbors := range adj {
		assert.Len(t, neighbors, 3, "vertex %d", v)
	}
}

func TestBuildAdjacency_IsolatedVertex(t *testing.T) {
	adj, err := BuildAdjacency(4, [][]int{{0, 1, 2}})
	require.NoError(t, err)
	assert.Empty(t, adj[3])
}

func TestBuildAdjacency_Symmetric(t *testing.T) {
	_, adj := randomMesh(60, 7)

	for v, neighbors := range adj {
		for _, u := range neighbors {
			assert.Contains(t, adj[u], v, "edge %d-%d missing reverse", v, u)
		}
	}
}

func TestBuildAdjacency_OutOfRange(t *testing.T) {
	_, err := BuildAdjacency(3, [][]int{{0, 1, 3}})
	assert.ErrorIs(t, err, ErrOutOfRange)

	_, err = BuildAdjacency(3, [][]int{{-1, 1, 2}})
	assert.ErrorIs(t, err, ErrOutOfRange)
}

func TestAdjacency_Validate(t *testing.T) {
	assert.NoError(t, Adjacency{{1}, {0}}.Validate())
	assert.ErrorIs(t, Adjacency{{1}, {2}}.Validate(), ErrOutOfRange)
}
