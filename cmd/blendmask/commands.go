package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/Faultbox/blendmask/internal/config"
	"github.com/Faultbox/blendmask/internal/library"
	"github.com/Faultbox/blendmask/internal/logger"
	"github.com/Faultbox/blendmask/internal/service"
	"github.com/Faultbox/blendmask/pkg/formats"
	"github.com/Faultbox/blendmask/pkg/mask"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Underline(true)
	subtleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	idStyle     = lipgloss.NewStyle().Width(8).Align(lipgloss.Right)
	countStyle  = lipgloss.NewStyle().Width(10).Align(lipgloss.Right)
)

func cmdRegions(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("regions", flag.ExitOnError)
	sel := fs.String("sel", "", "Only list regions touched by these vertices (comma separated)")
	fs.Parse(args)

	ws, err := loadWorkspace(context.Background(), cfg, true)
	if err != nil {
		return err
	}

	regions := ws.topo.Regions()
	if *sel != "" {
		selection, err := parseSelection(*sel)
		if err != nil {
			return err
		}
		if regions, err = mask.RegionsTouched(selection, ws.topo); err != nil {
			return err
		}
	}

	fmt.Println(headerStyle.Render(fmt.Sprintf("Topology: %s", cfg.Data.TopologyPath)))
	fmt.Printf("Vertices: %d\n", ws.topo.VertexCount())
	fmt.Printf("Regions:  %d\n\n", len(ws.topo.Regions()))

	for _, id := range regions {
		swatch := "  "
		label := ""
		if rgb, ok := ws.palette.RGB(id); ok {
			swatch = lipgloss.NewStyle().Background(lipgloss.Color(ws.palette.Hex(id))).Render("  ")
			label = rgb.String()
		}
		fmt.Println(swatch +
			idStyle.Render(fmt.Sprintf("%d", id)) +
			countStyle.Render(fmt.Sprintf("%d", ws.topo.RegionSize(id))) +
			"  " + subtleStyle.Render(label))
	}
	return nil
}

// maskFlags are the request options shared by resolve and blend.
type maskFlags struct {
	base    *string
	sel     *string
	overlay *bool
	iters   *int
}

func addMaskFlags(fs *flag.FlagSet, cfg *config.Config) maskFlags {
	return maskFlags{
		base:    fs.String("base", "", "Base mesh name (mapped to its mask key)"),
		sel:     fs.String("sel", "", "Vertex selection, comma separated; switches to region mode"),
		overlay: fs.Bool("overlay", false, "Lay the region selection over the stored mask"),
		iters:   fs.Int("iters", cfg.Smoothing.Iterations, "Smoothing iterations"),
	}
}

func (f maskFlags) request(cfg *config.Config, fs *flag.FlagSet) (mask.Request, error) {
	req := mask.Request{
		BaseMesh:   cfg.Masks.Key(*f.base),
		Overlay:    *f.overlay,
		Iterations: *f.iters,
	}
	// An explicit -sel "" is an empty selection.
	fs.Visit(func(fl *flag.Flag) {
		if fl.Name == "sel" {
			req.HasSelection = true
		}
	})
	if req.HasSelection {
		sel, err := parseSelection(*f.sel)
		if err != nil {
			return req, err
		}
		req.Selection = sel
	}
	if !req.HasSelection && req.BaseMesh == "" {
		return req, errors.New("either -base or -sel is required")
	}
	return req, nil
}

func cmdResolve(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("resolve", flag.ExitOnError)
	mf := addMaskFlags(fs, cfg)
	output := fs.String("o", "", "Write the mask as JSON to this file instead of stdout")
	fs.Parse(args)

	req, err := mf.request(cfg, fs)
	if err != nil {
		return err
	}

	ws, err := loadWorkspace(context.Background(), cfg, req.HasSelection)
	if err != nil {
		return err
	}
	if err := ws.checkSmoothing(req.Iterations); err != nil {
		return err
	}

	w, err := ws.resolver(cfg).Resolve(req)
	if err != nil {
		return err
	}

	name := req.BaseMesh
	if name == "" {
		name = "selection"
	}
	out := map[string]mask.Weights{name: w}

	if *output == "" {
		return formats.WriteMasks(os.Stdout, out)
	}
	f, err := os.Create(*output)
	if err != nil {
		return fmt.Errorf("creating output: %w", err)
	}
	defer f.Close()
	if err := formats.WriteMasks(f, out); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Wrote %s (%d weights)\n", *output, len(w))
	return nil
}

func cmdBlend(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("blend", flag.ExitOnError)
	mf := addMaskFlags(fs, cfg)
	baseOBJ := fs.String("base-obj", "", "Base mesh OBJ")
	targetOBJ := fs.String("target-obj", "", "Target mesh OBJ")
	output := fs.String("o", "", "Output OBJ (stdout if empty)")
	fs.Parse(args)

	if *baseOBJ == "" || *targetOBJ == "" {
		fmt.Fprintln(os.Stderr, "Usage: blendmask blend -base-obj a.obj -target-obj b.obj -base NAME [-sel ...] [-iters N] [-o out.obj]")
		os.Exit(1)
	}

	req, err := mf.request(cfg, fs)
	if err != nil {
		return err
	}

	ws, err := loadWorkspace(context.Background(), cfg, req.HasSelection)
	if err != nil {
		return err
	}

	base, err := formats.ParseOBJFile(*baseOBJ)
	if err != nil {
		return fmt.Errorf("%s: %w", *baseOBJ, err)
	}
	target, err := formats.ParseOBJFile(*targetOBJ)
	if err != nil {
		return fmt.Errorf("%s: %w", *targetOBJ, err)
	}

	// The base mesh's own faces define smoothing adjacency.
	if ws.adj, err = base.Adjacency(); err != nil {
		return fmt.Errorf("%s: %w", *baseOBJ, err)
	}

	positions, w, err := ws.resolver(cfg).Apply(req, base.Positions, target.Positions)
	if err != nil {
		return err
	}
	result, err := base.WithPositions(positions)
	if err != nil {
		return err
	}

	logger.Info("mesh blended",
		zap.String("mask", req.BaseMesh),
		zap.Int("vertices", len(positions)),
		zap.Int("weighted", countWeighted(w)))

	if *output == "" {
		return formats.WriteOBJ(os.Stdout, result)
	}
	if err := formats.WriteOBJFile(*output, result); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Wrote %s (%d vertices)\n", *output, len(positions))
	return nil
}

func countWeighted(w mask.Weights) int {
	n := 0
	for _, v := range w {
		if v > 0 {
			n++
		}
	}
	return n
}

func cmdImport(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	db := fs.String("db", cfg.Library.Path, "SQLite library to import into")
	fs.Parse(args)

	if *db == "" {
		fmt.Fprintln(os.Stderr, "Usage: blendmask import -db lib.db [masks.json]")
		os.Exit(1)
	}
	path := cfg.Data.MasksPath
	if fs.NArg() > 0 {
		path = fs.Arg(0)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading masks file: %w", err)
	}

	lib, err := library.Open(*db)
	if err != nil {
		return err
	}
	defer lib.Close()

	ctx := context.Background()
	n, err := lib.ImportJSON(ctx, data)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	names, err := lib.Names(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("Imported %d masks from %s into %s (%d total)\n", n, path, *db, len(names))
	return nil
}

func cmdServe(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	fs.Parse(args)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ws, err := loadWorkspace(ctx, cfg, false)
	if err != nil {
		return err
	}
	logger.Info("workspace loaded",
		zap.Int("masks", ws.store.Len()),
		zap.Bool("topology", ws.topo != nil),
		zap.Bool("adjacency", ws.adj != nil))

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	srv := service.NewServer(cfg, service.Deps{
		Topology:  ws.topo,
		Adjacency: ws.adj,
		Palette:   ws.palette,
		Store:     ws.store,
	}, reg, logger.Named("service"))

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Stop(shutdownCtx)
}
