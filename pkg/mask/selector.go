package mask

import (
	"sort"

	"github.com/RoaringBitmap/roaring/v2"
)

// RegionsTouched returns the distinct regions containing at least one of the
// selected vertices, in ascending order.
func RegionsTouched(selection []int, topo *Topology) ([]RegionID, error) {
	seen := make(map[RegionID]struct{})
	for _, v := range selection {
		r, err := topo.RegionOf(v)
		if err != nil {
			return nil, err
		}
		seen[r] = struct{}{}
	}

	regions := make([]RegionID, 0, len(seen))
	for r := range seen {
		regions = append(regions, r)
	}
	sort.Slice(regions, func(i, j int) bool { return regions[i] < regions[j] })
	return regions, nil
}

// SelectRegions turns a vertex selection into a mask covering whole regions.
// Every vertex in a region touched by the selection gets 1, every other
// vertex 0. An empty selection yields an all-zero mask.
func SelectRegions(selection []int, topo *Topology) (Weights, error) {
	regions, err := RegionsTouched(selection, topo)
	if err != nil {
		return nil, err
	}
	return regionMask(topo, topo.union(regions)), nil
}

// regionMask sets weight 1 for each vertex in set.
func regionMask(topo *Topology, set *roaring.Bitmap) Weights {
	w := Zeros(topo.VertexCount())
	it := set.Iterator()
	for it.HasNext() {
		w[it.Next()] = 1
	}
	return w
}
