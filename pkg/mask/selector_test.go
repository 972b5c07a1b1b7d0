package mask

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectRegions_EmptySelection(t *testing.T) {
	topo := fourVertexTopology()

	w, err := SelectRegions(nil, topo)
	require.NoError(t, err)
	assert.Equal(t, Weights{0, 0, 0, 0}, w)

	w, err = SelectRegions([]int{}, topo)
	require.NoError(t, err)
	assert.Equal(t, Weights{0, 0, 0, 0}, w)
}

func TestSelectRegions_WholeRegion(t *testing.T) {
	topo := fourVertexTopology()

	w, err := SelectRegions([]int{2}, topo)
	require.NoError(t, err)
	assert.Equal(t, Weights{0, 0, 1, 1}, w)

	w, err = SelectRegions([]int{1}, topo)
	require.NoError(t, err)
	assert.Equal(t, Weights{1, 1, 0, 0}, w)
}

func TestSelectRegions_MultipleRegions(t *testing.T) {
	topo := NewTopology([]RegionID{1, 2, 3, 1, 2, 3})

	w, err := SelectRegions([]int{0, 3, 5}, topo)
	require.NoError(t, err)
	assert.Equal(t, Weights{1, 0, 1, 1, 0, 1}, w)
}

func TestSelectRegions_OutOfRange(t *testing.T) {
	topo := fourVertexTopology()

	_, err := SelectRegions([]int{0, 4}, topo)
	assert.ErrorIs(t, err, ErrOutOfRange)
}

func TestRegionsTouched(t *testing.T) {
	topo := NewTopology([]RegionID{9, 4, 4, 9, 6})

	regions, err := RegionsTouched([]int{3, 1, 2, 0}, topo)
	require.NoError(t, err)
	assert.Equal(t, []RegionID{4, 9}, regions)

	regions, err = RegionsTouched(nil, topo)
	require.NoError(t, err)
	assert.Empty(t, regions)

	_, err = RegionsTouched([]int{-1}, topo)
	assert.ErrorIs(t, err, ErrOutOfRange)
}
