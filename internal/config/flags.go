package config

import "flag"

var (
	flagConfig   = flag.String("config", "", "Path to config file (.yaml or .toml)")
	flagEnvFile  = flag.String("env", ".env", "Path to env file with BLENDMASK_* overrides")
	flagDebug    = flag.Bool("debug", false, "Enable debug logging")
	flagTopology = flag.String("topology", "", "Topology vertex map JSON")
	flagMasks    = flag.String("masks", "", "Expression masks JSON")
	flagMesh     = flag.String("mesh", "", "Reference OBJ mesh for smoothing adjacency")
	flagLibrary  = flag.String("library", "", "SQLite mask library path")
	flagAddr     = flag.String("addr", "", "HTTP listen address")
	flagIters    = flag.Int("iters", -1, "Default smoothing iterations")
	flagLogFile  = flag.String("log-file", "", "Write logs to this file as well")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// EnvFile returns the env file path from the --env flag.
func EnvFile() string {
	return *flagEnvFile
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagTopology != "" {
		cfg.Data.TopologyPath = *flagTopology
	}
	if *flagMasks != "" {
		cfg.Data.MasksPath = *flagMasks
	}
	if *flagMesh != "" {
		cfg.Data.MeshPath = *flagMesh
	}
	if *flagLibrary != "" {
		cfg.Library.Path = *flagLibrary
	}
	if *flagAddr != "" {
		cfg.Server.Addr = *flagAddr
	}
	if *flagIters >= 0 {
		cfg.Smoothing.Iterations = *flagIters
	}
	if *flagLogFile != "" {
		cfg.Logging.LogFile = *flagLogFile
	}
}
