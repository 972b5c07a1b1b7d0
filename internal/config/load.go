package config

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override, e.g. BLENDMASK_TOPOLOGY_PATH.
const EnvPrefix = "BLENDMASK"

// Load loads configuration with priority: defaults < file < environment < flags.
func Load() (*Config, error) {
	// Start with defaults
	cfg := Default()

	// Try to load from file (explicit path takes priority)
	configPath := ConfigPath()
	if configPath == "" {
		configPath = findConfigFile()
	}

	if configPath != "" {
		if err := loadFromFile(cfg, configPath); err != nil {
			return nil, fmt.Errorf("loading config from %s: %w", configPath, err)
		}
	}

	if err := loadDotEnv(EnvFile()); err != nil {
		return nil, fmt.Errorf("loading env file: %w", err)
	}
	if err := applyEnv(cfg); err != nil {
		return nil, fmt.Errorf("applying environment: %w", err)
	}

	// Apply CLI flags (highest priority)
	applyFlags(cfg)

	return cfg, nil
}

// findConfigFile looks for config in standard locations.
func findConfigFile() string {
	candidates := []string{
		"./config.yaml",
		"./config.toml",
		filepath.Join(ConfigDir(), "config.yaml"),
		filepath.Join(ConfigDir(), "config.toml"),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// ConfigDir returns the OS-appropriate config directory.
func ConfigDir() string {
	switch runtime.GOOS {
	case "darwin":
		home, _ := os.UserHomeDir()
		return filepath.Join(home, "Library", "Application Support", "BlendMask")
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "BlendMask")
	default: // Linux and others
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "blendmask")
		}
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "blendmask")
	}
}

// loadFromFile loads config from a YAML or TOML file, merging with existing
// values. The format is chosen by extension; anything but .toml is YAML.
func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		if err := toml.Unmarshal(data, cfg); err != nil {
			return err
		}
		return loadTOMLDurations(cfg, data)
	}
	return yaml.Unmarshal(data, cfg)
}

// tomlDurations mirrors the duration settings as strings ("10s", "1m30s")
// so TOML files use the same notation as YAML ones.
type tomlDurations struct {
	Server struct {
		ReadTimeout  string `toml:"read_timeout"`
		WriteTimeout string `toml:"write_timeout"`
	} `toml:"server"`
}

func loadTOMLDurations(cfg *Config, data []byte) error {
	var d tomlDurations
	if err := toml.Unmarshal(data, &d); err != nil {
		return err
	}
	for _, f := range []struct {
		key string
		val string
		dst *time.Duration
	}{
		{"server.read_timeout", d.Server.ReadTimeout, &cfg.Server.ReadTimeout},
		{"server.write_timeout", d.Server.WriteTimeout, &cfg.Server.WriteTimeout},
	} {
		if f.val == "" {
			continue
		}
		v, err := time.ParseDuration(f.val)
		if err != nil {
			return fmt.Errorf("%s: %w", f.key, err)
		}
		*f.dst = v
	}
	return nil
}

// loadDotEnv exports variables from an env file that are not already set.
// A missing file is not an error.
func loadDotEnv(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	return godotenv.Load(path)
}

// envOverrides lists the settings that may come from the environment.
// Nil fields were not set.
type envOverrides struct {
	TopologyPath     *string  `split_words:"true"`
	MasksPath        *string  `split_words:"true"`
	MeshPath         *string  `split_words:"true"`
	LibraryPath      *string  `split_words:"true"`
	SmoothIterations *int     `split_words:"true"`
	NeighborWeight   *float32 `split_words:"true"`
	KeySuffixes      []string `split_words:"true"`
	Addr             *string
	LogLevel         *string `split_words:"true"`
	LogFile          *string `split_words:"true"`
}

// applyEnv applies BLENDMASK_* environment overrides to the config.
func applyEnv(cfg *Config) error {
	var env envOverrides
	if err := envconfig.Process(EnvPrefix, &env); err != nil {
		return err
	}

	if env.TopologyPath != nil {
		cfg.Data.TopologyPath = *env.TopologyPath
	}
	if env.MasksPath != nil {
		cfg.Data.MasksPath = *env.MasksPath
	}
	if env.MeshPath != nil {
		cfg.Data.MeshPath = *env.MeshPath
	}
	if env.LibraryPath != nil {
		cfg.Library.Path = *env.LibraryPath
	}
	if env.SmoothIterations != nil {
		cfg.Smoothing.Iterations = *env.SmoothIterations
	}
	if env.NeighborWeight != nil {
		cfg.Smoothing.NeighborWeight = *env.NeighborWeight
	}
	if env.KeySuffixes != nil {
		cfg.Masks.KeySuffixes = env.KeySuffixes
	}
	if env.Addr != nil {
		cfg.Server.Addr = *env.Addr
	}
	if env.LogLevel != nil {
		cfg.Logging.Level = *env.LogLevel
	}
	if env.LogFile != nil {
		cfg.Logging.LogFile = *env.LogFile
	}
	return nil
}

// Validate checks settings the rest of the program relies on.
func (c *Config) Validate() error {
	if c.Smoothing.Iterations < 0 {
		return fmt.Errorf("smoothing.iterations must be >= 0, got %d", c.Smoothing.Iterations)
	}
	if nw := float64(c.Smoothing.NeighborWeight); nw < 0 || math.IsNaN(nw) || math.IsInf(nw, 0) {
		return fmt.Errorf("smoothing.neighbor_weight must be finite and >= 0, got %v", c.Smoothing.NeighborWeight)
	}
	if c.Server.MaxSessions < 0 {
		return fmt.Errorf("server.max_sessions must be >= 0, got %d", c.Server.MaxSessions)
	}
	if c.Server.MaxIterations < 0 {
		return fmt.Errorf("server.max_iterations must be >= 0, got %d", c.Server.MaxIterations)
	}
	return nil
}
