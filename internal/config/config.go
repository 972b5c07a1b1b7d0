// Package config handles blendmask configuration loading and management.
package config

import (
	"strings"
	"time"
)

// Config holds all blendmask settings.
type Config struct {
	Data      DataConfig      `yaml:"data" toml:"data"`
	Smoothing SmoothingConfig `yaml:"smoothing" toml:"smoothing"`
	Masks     MaskConfig      `yaml:"masks" toml:"masks"`
	Library   LibraryConfig   `yaml:"library" toml:"library"`
	Server    ServerConfig    `yaml:"server" toml:"server"`
	Logging   LoggingConfig   `yaml:"logging" toml:"logging"`
}

// DataConfig holds data file paths.
type DataConfig struct {
	TopologyPath string `yaml:"topology" toml:"topology"` // topology_vertex_map.json
	MasksPath    string `yaml:"masks" toml:"masks"`       // expression_masks.json
	// MeshPath is an optional OBJ whose faces define smoothing adjacency.
	MeshPath string `yaml:"mesh" toml:"mesh"`
}

// SmoothingConfig holds mask smoothing defaults.
type SmoothingConfig struct {
	Iterations     int     `yaml:"iterations" toml:"iterations"`
	NeighborWeight float32 `yaml:"neighbor_weight" toml:"neighbor_weight"`
}

// MaskConfig controls how scene mesh names map to mask store keys.
type MaskConfig struct {
	// KeySuffixes are stripped from the end of a mesh name, in order,
	// to form its mask key.
	KeySuffixes []string `yaml:"key_suffixes" toml:"key_suffixes"`
}

// Key returns the mask store key for a scene mesh name.
func (m MaskConfig) Key(meshName string) string {
	key := meshName
	for _, suffix := range m.KeySuffixes {
		if suffix != "" {
			key = strings.TrimSuffix(key, suffix)
		}
	}
	return key
}

// LibraryConfig holds the persistent mask library settings.
type LibraryConfig struct {
	Path string `yaml:"path" toml:"path"` // SQLite file; empty disables the library
}

// ServerConfig holds HTTP service settings.
type ServerConfig struct {
	Addr            string        `yaml:"addr" toml:"addr"`
	ReadTimeout     time.Duration `yaml:"read_timeout" toml:"-"` // TOML: see tomlDurations
	WriteTimeout    time.Duration `yaml:"write_timeout" toml:"-"`
	MaxSessions     int           `yaml:"max_sessions" toml:"max_sessions"`
	MaxRequestBytes int64         `yaml:"max_request_bytes" toml:"max_request_bytes"`
	MaxIterations   int           `yaml:"max_iterations" toml:"max_iterations"` // per request; 0 disables the cap
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level" toml:"level"`
	LogFile string `yaml:"log_file" toml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Data: DataConfig{
			TopologyPath: "data/topology_vertex_map.json",
			MasksPath:    "data/expression_masks.json",
		},
		Smoothing: SmoothingConfig{
			Iterations:     0,
			NeighborWeight: 1.0,
		},
		Masks: MaskConfig{
			KeySuffixes: []string{"_regionSelect", "_head_lod0_meshhead_grp"},
		},
		Library: LibraryConfig{
			Path: "",
		},
		Server: ServerConfig{
			Addr:            "127.0.0.1:8088",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    30 * time.Second,
			MaxSessions:     64,
			MaxRequestBytes: 64 << 20,
			MaxIterations:   1000,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
