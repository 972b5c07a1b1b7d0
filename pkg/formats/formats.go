// Package formats reads and writes the data files used by blendmask:
// topology vertex maps, expression mask tables and Wavefront OBJ meshes.
package formats

// Note: topology vertex maps are parsed in topology.go, region colors live in palette.go
// Note: expression masks are parsed in masks.go
// Note: OBJ meshes are handled in obj.go
