// blendmask resolves expression masks and blends meshes with them.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/Faultbox/blendmask/internal/config"
	"github.com/Faultbox/blendmask/internal/logger"
)

func main() {
	config.ParseFlags()

	if flag.NArg() < 1 {
		printUsage()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Sugar.Debugf("Config: %+v", cfg)

	command := flag.Arg(0)
	args := flag.Args()[1:]

	switch command {
	case "regions":
		err = cmdRegions(cfg, args)
	case "resolve":
		err = cmdResolve(cfg, args)
	case "blend":
		err = cmdBlend(cfg, args)
	case "import":
		err = cmdImport(cfg, args)
	case "masks":
		err = cmdMasks(cfg, args)
	case "serve":
		err = cmdServe(cfg, args)
	case "help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		logger.Sync()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`blendmask - expression mask resolver and mesh blender

Usage:
  blendmask [global options] <command> [options]

Commands:
  regions [-sel 1,2,3]                          List topology regions
  resolve -base NAME [-sel ...] [-iters N]      Print or write a resolved mask
  blend -base-obj a.obj -target-obj b.obj ...   Blend two meshes with a mask
  import [-db lib.db] [masks.json]              Import masks into the library
  masks [-db lib.db] ls|get|put|rm ...          Inspect or edit the library
  serve                                         Start the HTTP service

Global options:
  -config PATH     Config file (.yaml or .toml)
  -env PATH        Env file with BLENDMASK_* overrides
  -topology PATH   Topology vertex map JSON
  -masks PATH      Expression masks JSON
  -mesh PATH       Reference OBJ for smoothing adjacency
  -library PATH    SQLite mask library
  -addr ADDR       HTTP listen address
  -iters N         Default smoothing iterations
  -debug           Enable debug logging

Examples:
  blendmask regions -sel 120,121
  blendmask -mesh head.obj resolve -base Happy_01_head_lod0_meshhead_grp -iters 5
  blendmask blend -base-obj neutral.obj -target-obj happy.obj -base Happy_01 -o out.obj
  blendmask import -db masks.db data/expression_masks.json
  blendmask masks -db masks.db put Brow_Up brow.json`)
}
