package mask

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTopology_RegionOf(t *testing.T) {
	topo := fourVertexTopology()

	require.Equal(t, 4, topo.VertexCount())

	r, err := topo.RegionOf(0)
	require.NoError(t, err)
	assert.Equal(t, regionA, r)

	r, err = topo.RegionOf(3)
	require.NoError(t, err)
	assert.Equal(t, regionB, r)
}

func TestTopology_RegionOfOutOfRange(t *testing.T) {
	topo := fourVertexTopology()

	for _, v := range []int{-1, 4, 100} {
		_, err := topo.RegionOf(v)
		assert.ErrorIs(t, err, ErrOutOfRange, "vertex %d", v)
	}
}

func TestTopology_Regions(t *testing.T) {
	topo := NewTopology([]RegionID{7, 3, 7, 5, 3})

	assert.Equal(t, []RegionID{3, 5, 7}, topo.Regions())
	assert.Equal(t, []int{1, 4}, topo.VerticesIn(3))
	assert.Equal(t, []int{0, 2}, topo.VerticesIn(7))
	assert.Equal(t, 1, topo.RegionSize(5))
	assert.Nil(t, topo.VerticesIn(42))
	assert.Zero(t, topo.RegionSize(42))
}

func TestTopology_CopiesInput(t *testing.T) {
	regions := []RegionID{1, 2}
	topo := NewTopology(regions)
	regions[0] = 9

	r, err := topo.RegionOf(0)
	require.NoError(t, err)
	assert.Equal(t, RegionID(1), r)
}

func TestTopology_Empty(t *testing.T) {
	topo := NewTopology(nil)

	assert.Zero(t, topo.VertexCount())
	assert.Empty(t, topo.Regions())
	_, err := topo.RegionOf(0)
	assert.ErrorIs(t, err, ErrOutOfRange)
}
