package mask

import (
	"fmt"
	"sort"

	"github.com/RoaringBitmap/roaring/v2"
)

// RegionID identifies a facial region such as "left cheek" or "mouth".
// Display colors for regions are a presentation concern and live outside
// this package.
type RegionID uint32

// Topology maps every vertex of a mesh topology to exactly one region.
// It is immutable after construction and safe for concurrent readers.
type Topology struct {
	regions []RegionID
	groups  map[RegionID]*roaring.Bitmap
	ids     []RegionID // sorted distinct region ids
}

// NewTopology builds a topology from a region id per vertex.
// Vertex i belongs to regions[i]. The slice is copied.
func NewTopology(regions []RegionID) *Topology {
	t := &Topology{
		regions: make([]RegionID, len(regions)),
		groups:  make(map[RegionID]*roaring.Bitmap),
	}
	copy(t.regions, regions)

	for v, r := range t.regions {
		bm, ok := t.groups[r]
		if !ok {
			bm = roaring.New()
			t.groups[r] = bm
		}
		bm.Add(uint32(v))
	}
	for _, bm := range t.groups {
		bm.RunOptimize()
	}

	t.ids = make([]RegionID, 0, len(t.groups))
	for r := range t.groups {
		t.ids = append(t.ids, r)
	}
	sort.Slice(t.ids, func(i, j int) bool { return t.ids[i] < t.ids[j] })

	return t
}

// VertexCount returns the number of vertices in the topology.
func (t *Topology) VertexCount() int {
	return len(t.regions)
}

// RegionOf returns the region of vertex v.
func (t *Topology) RegionOf(v int) (RegionID, error) {
	if v < 0 || v >= len(t.regions) {
		return 0, fmt.Errorf("%w: vertex %d, topology has %d vertices", ErrOutOfRange, v, len(t.regions))
	}
	return t.regions[v], nil
}

// Regions returns the distinct region ids in ascending order.
func (t *Topology) Regions() []RegionID {
	out := make([]RegionID, len(t.ids))
	copy(out, t.ids)
	return out
}

// RegionSize returns how many vertices belong to region r.
func (t *Topology) RegionSize(r RegionID) int {
	bm, ok := t.groups[r]
	if !ok {
		return 0
	}
	return int(bm.GetCardinality())
}

// VerticesIn returns the vertices of region r in ascending order.
// An unknown region yields nil.
func (t *Topology) VerticesIn(r RegionID) []int {
	bm, ok := t.groups[r]
	if !ok {
		return nil
	}
	out := make([]int, 0, bm.GetCardinality())
	it := bm.Iterator()
	for it.HasNext() {
		out = append(out, int(it.Next()))
	}
	return out
}

// union returns the vertex set covering all given regions.
func (t *Topology) union(regions []RegionID) *roaring.Bitmap {
	sets := make([]*roaring.Bitmap, 0, len(regions))
	for _, r := range regions {
		if bm, ok := t.groups[r]; ok {
			sets = append(sets, bm)
		}
	}
	if len(sets) == 0 {
		return roaring.New()
	}
	return roaring.FastOr(sets...)
}
