// Package config provides centralized configuration management for nexidx.
package config

import (
	"flag"
	"os"
	"sync"

	"nexidx/logger"

	"gopkg.in/yaml.v2"
)

// ConfigManager applies nexidx's three-tier configuration hierarchy:
// flags (highest) > YAML config file > environment variables (lowest).
// Layering happens in that reverse order — env, then file, then flags —
// so that each later tier can see and override what the earlier one set;
// the file tier is applied once, inside RegisterFlags, before flag.Parse
// has a chance to run.
//
// nexidx has no entity store of its own, so a YAML file tier takes the
// place of a database-backed configuration tier, loaded once per run
// rather than refreshed on a TTL, since nexidx runs are one-shot
// ingestion jobs, not long-lived servers.
type ConfigManager struct {
	mu     sync.Mutex
	config *Config
}

// yamlConfig mirrors the subset of Config fields accepted from a YAML file.
// Zero-valued fields in the file are left alone (not applied) — only
// explicitly set values override the environment-derived defaults.
type yamlConfig struct {
	InputPath     string   `yaml:"input_path"`
	DBPath        string   `yaml:"db_path"`
	QueueCapacity int      `yaml:"queue_capacity"`
	LogLevel      string   `yaml:"log_level"`
	TraceSubsystems []string `yaml:"trace_subsystems"`
	TopListDir    string   `yaml:"toplist_dir"`
	SmokeGroup    string   `yaml:"smoke_group"`
	SmokeArtifact string   `yaml:"smoke_artifact"`
	HTTPAddr      string   `yaml:"http_addr"`
}

// NewConfigManager creates a new configuration manager.
func NewConfigManager() *ConfigManager {
	return &ConfigManager{}
}

// Initialize returns the fully-resolved configuration. By the time it's
// called, RegisterFlags has already layered the YAML file over the
// environment defaults and flag.Parse has already layered any
// explicitly-passed flags over that — Initialize itself has no more
// overlaying to do; it exists so callers have one place to fetch the
// final *Config and so a future tier can slot in without changing call
// sites.
//
// Call RegisterFlags before flag.Parse, and Initialize after.
func (cm *ConfigManager) Initialize() (*Config, error) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	if cm.config == nil {
		cm.config = Load()
	}
	return cm.config, nil
}

// RegisterFlags loads the environment tier, overlays an optional YAML
// config file (NEXIDX_CONFIG_FILE) onto it, then registers nexidx's
// command-line flags with the merged values as defaults. Must be called
// before flag.Parse() — flag.Parse is what applies the final, highest-
// priority tier, since flag.*Var binds straight into cm.config fields.
func (cm *ConfigManager) RegisterFlags() error {
	cm.config = Load()
	if cm.config.ConfigFilePath != "" {
		if err := cm.applyYAMLFile(cm.config.ConfigFilePath); err != nil {
			return err
		}
	}

	flag.StringVar(&cm.config.InputPath, "nexidx-input", cm.config.InputPath,
		"index chunk to decode, or - for stdin")
	flag.StringVar(&cm.config.DBPath, "nexidx-db", cm.config.DBPath,
		"sqlite3 DSN for the versions schema")
	flag.IntVar(&cm.config.QueueCapacity, "nexidx-queue-capacity", cm.config.QueueCapacity,
		"bounded producer/consumer queue capacity")
	flag.StringVar(&cm.config.LogLevel, "nexidx-log-level", cm.config.LogLevel,
		"log level (trace, debug, info, warn, error)")
	flag.StringVar(&cm.config.TopListDir, "nexidx-toplist-dir", cm.config.TopListDir,
		"directory of top-N preload YAML files (default: embedded)")
	flag.StringVar(&cm.config.SmokeGroup, "nexidx-smoke-group", cm.config.SmokeGroup,
		"run find_versions for this group after ingest")
	flag.StringVar(&cm.config.SmokeArtifact, "nexidx-smoke-artifact", cm.config.SmokeArtifact,
		"run find_versions for this artifact after ingest")
	flag.StringVar(&cm.config.HTTPAddr, "nexidx-http-addr", cm.config.HTTPAddr,
		"listen address for the optional read-only API server")
	return nil
}

// applyYAMLFile loads a YAML config file and overlays any fields it sets
// onto the current configuration. Missing fields in the file are left at
// their environment-derived defaults.
func (cm *ConfigManager) applyYAMLFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Debug("no config file at %s, using environment defaults", path)
			return nil
		}
		return err
	}

	var y yamlConfig
	if err := yaml.Unmarshal(data, &y); err != nil {
		return err
	}

	if y.InputPath != "" {
		cm.config.InputPath = y.InputPath
	}
	if y.DBPath != "" {
		cm.config.DBPath = y.DBPath
	}
	if y.QueueCapacity != 0 {
		cm.config.QueueCapacity = y.QueueCapacity
	}
	if y.LogLevel != "" {
		cm.config.LogLevel = y.LogLevel
	}
	if len(y.TraceSubsystems) > 0 {
		cm.config.TraceSubsystems = y.TraceSubsystems
	}
	if y.TopListDir != "" {
		cm.config.TopListDir = y.TopListDir
	}
	if y.SmokeGroup != "" {
		cm.config.SmokeGroup = y.SmokeGroup
	}
	if y.SmokeArtifact != "" {
		cm.config.SmokeArtifact = y.SmokeArtifact
	}
	if y.HTTPAddr != "" {
		cm.config.HTTPAddr = y.HTTPAddr
	}

	logger.Info("loaded config file %s", path)
	return nil
}
