package formats

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	gojson "github.com/goccy/go-json"

	"github.com/Faultbox/blendmask/pkg/mask"
)

// Topology map errors.
var (
	ErrInvalidColor       = errors.New("invalid region color")
	ErrOverlappingRegions = errors.New("vertex assigned to more than one region")
	ErrEmptyTopology      = errors.New("topology has no vertices")
)

// TopologyData is a parsed topology vertex map.
type TopologyData struct {
	Topology *mask.Topology
	Palette  *Palette
}

// topologyFile mirrors topology_vertex_map.json:
//
//	{
//	  "vertex_groups":   {"(r, g, b)": [vertex ids...]},
//	  "vertex_to_color": {"<vertex id>": "(r, g, b)"}
//	}
type topologyFile struct {
	VertexGroups  map[string][]int  `json:"vertex_groups"`
	VertexToColor map[string]string `json:"vertex_to_color"`
}

// ParseTopology parses a topology vertex map.
//
// Two layouts are accepted: the color-keyed object form above, or a plain
// JSON array holding one region id per vertex. In the object form
// vertex_to_color wins when present; otherwise vertex_groups is inverted.
// Region ids are assigned by sorting the distinct colors, so the same file
// always yields the same ids.
func ParseTopology(data []byte) (*TopologyData, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		return parseRegionList(trimmed)
	}

	var file topologyFile
	if err := gojson.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing topology: %w", err)
	}

	var colors map[int]RGB
	var err error
	if len(file.VertexToColor) > 0 {
		colors, err = colorsByVertex(file.VertexToColor)
	} else {
		colors, err = colorsFromGroups(file.VertexGroups)
	}
	if err != nil {
		return nil, err
	}
	return buildTopology(colors)
}

// ParseTopologyFile parses a topology vertex map from disk.
func ParseTopologyFile(path string) (*TopologyData, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading topology file: %w", err)
	}
	return ParseTopology(data)
}

func parseRegionList(data []byte) (*TopologyData, error) {
	var regions []mask.RegionID
	if err := gojson.Unmarshal(data, &regions); err != nil {
		return nil, fmt.Errorf("parsing topology: %w", err)
	}
	if len(regions) == 0 {
		return nil, ErrEmptyTopology
	}
	topo := mask.NewTopology(regions)
	return &TopologyData{
		Topology: topo,
		Palette:  DistinctPalette(topo.Regions()),
	}, nil
}

func colorsByVertex(entries map[string]string) (map[int]RGB, error) {
	colors := make(map[int]RGB, len(entries))
	for key, value := range entries {
		v, err := strconv.Atoi(strings.TrimSpace(key))
		if err != nil || v < 0 {
			return nil, fmt.Errorf("%w: bad vertex id %q", mask.ErrOutOfRange, key)
		}
		c, err := ParseRGB(value)
		if err != nil {
			return nil, fmt.Errorf("vertex %d: %w", v, err)
		}
		colors[v] = c
	}
	return colors, nil
}

func colorsFromGroups(groups map[string][]int) (map[int]RGB, error) {
	colors := make(map[int]RGB)
	for key, verts := range groups {
		c, err := ParseRGB(key)
		if err != nil {
			return nil, err
		}
		for _, v := range verts {
			if v < 0 {
				return nil, fmt.Errorf("%w: group %s lists vertex %d", mask.ErrOutOfRange, key, v)
			}
			if prev, ok := colors[v]; ok && prev != c {
				return nil, fmt.Errorf("%w: vertex %d in %s and %s", ErrOverlappingRegions, v, prev, c)
			}
			colors[v] = c
		}
	}
	return colors, nil
}

// buildTopology assigns region ids to colors and checks that every vertex in
// [0, max] has a region.
func buildTopology(colors map[int]RGB) (*TopologyData, error) {
	if len(colors) == 0 {
		return nil, ErrEmptyTopology
	}

	maxVertex := 0
	distinct := make(map[RGB]struct{})
	for v, c := range colors {
		if v > maxVertex {
			maxVertex = v
		}
		distinct[c] = struct{}{}
	}

	// Vertex ids are distinct and non-negative, so a full range [0, max]
	// holds exactly len(colors) ids. Check before sizing anything by max.
	if maxVertex+1 != len(colors) {
		for v := 0; v <= len(colors); v++ {
			if _, ok := colors[v]; !ok {
				return nil, fmt.Errorf("%w: vertex %d has no region (highest vertex id %d)",
					mask.ErrNotFound, v, maxVertex)
			}
		}
	}

	sorted := make([]RGB, 0, len(distinct))
	for c := range distinct {
		sorted = append(sorted, c)
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].less(sorted[j]) })

	ids := make(map[RGB]mask.RegionID, len(sorted))
	palette := NewPalette()
	for i, c := range sorted {
		id := mask.RegionID(i)
		ids[c] = id
		palette.Set(id, c)
	}

	regions := make([]mask.RegionID, maxVertex+1)
	for v := range regions {
		c, ok := colors[v]
		if !ok {
			return nil, fmt.Errorf("%w: vertex %d has no region", mask.ErrNotFound, v)
		}
		regions[v] = ids[c]
	}

	return &TopologyData{
		Topology: mask.NewTopology(regions),
		Palette:  palette,
	}, nil
}
