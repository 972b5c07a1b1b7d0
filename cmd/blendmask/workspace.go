package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/blendmask/internal/config"
	"github.com/Faultbox/blendmask/internal/library"
	"github.com/Faultbox/blendmask/internal/logger"
	"github.com/Faultbox/blendmask/pkg/formats"
	"github.com/Faultbox/blendmask/pkg/mask"
)

// workspace holds the data files a command works on.
type workspace struct {
	topo    *mask.Topology
	palette *formats.Palette
	store   *mask.Store
	adj     mask.Adjacency
}

// loadWorkspace reads the topology, masks and reference mesh named by cfg.
// Masks come from the library first; entries in the masks file replace
// library entries of the same name. Missing optional files are skipped.
func loadWorkspace(ctx context.Context, cfg *config.Config, requireTopology bool) (*workspace, error) {
	ws := &workspace{store: mask.NewStore()}

	td, err := formats.ParseTopologyFile(cfg.Data.TopologyPath)
	switch {
	case err == nil:
		ws.topo = td.Topology
		ws.palette = td.Palette
		logger.Debug("topology loaded",
			zap.String("path", cfg.Data.TopologyPath),
			zap.Int("vertices", ws.topo.VertexCount()),
			zap.Int("regions", len(ws.topo.Regions())))
	case errors.Is(err, fs.ErrNotExist) && !requireTopology:
		logger.Debug("no topology file", zap.String("path", cfg.Data.TopologyPath))
	default:
		return nil, err
	}

	if cfg.Library.Path != "" {
		lib, err := library.Open(cfg.Library.Path)
		if err != nil {
			return nil, err
		}
		n, err := lib.LoadInto(ctx, ws.store)
		lib.Close()
		if err != nil {
			return nil, err
		}
		logger.Debug("masks loaded from library", zap.String("path", cfg.Library.Path), zap.Int("count", n))
	}

	if data, err := os.ReadFile(cfg.Data.MasksPath); err == nil {
		n, err := formats.LoadStore(data, ws.store)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", cfg.Data.MasksPath, err)
		}
		logger.Debug("masks loaded", zap.String("path", cfg.Data.MasksPath), zap.Int("count", n))
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("reading masks file: %w", err)
	}

	if cfg.Data.MeshPath != "" {
		obj, err := formats.ParseOBJFile(cfg.Data.MeshPath)
		if err != nil {
			return nil, err
		}
		if ws.adj, err = obj.Adjacency(); err != nil {
			return nil, fmt.Errorf("%s: %w", cfg.Data.MeshPath, err)
		}
	}

	return ws, nil
}

func (ws *workspace) resolver(cfg *config.Config) *mask.Resolver {
	return mask.NewResolver(ws.topo, ws.store, ws.adj,
		mask.WithNeighborWeight(cfg.Smoothing.NeighborWeight),
		mask.WithLogger(logger.Named("resolver")))
}

var errNoMesh = errors.New("smoothing needs mesh adjacency: pass -mesh FILE.obj or set data.mesh")

// checkSmoothing fails early when smoothing is asked for without a mesh.
func (ws *workspace) checkSmoothing(iterations int) error {
	if iterations > 0 && ws.adj == nil {
		return errNoMesh
	}
	return nil
}

// parseSelection parses a comma separated vertex list such as "1, 2,3".
// The empty string is an empty selection.
func parseSelection(s string) ([]int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return []int{}, nil
	}
	parts := strings.Split(s, ",")
	sel := make([]int, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("invalid vertex index %q", p)
		}
		sel = append(sel, v)
	}
	return sel, nil
}
