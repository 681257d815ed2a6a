// Package config provides centralized configuration management for nexidx.
//
// This package implements a three-tier configuration hierarchy:
//  1. Command-line flags (highest priority)
//  2. YAML config file
//  3. Environment variables (lowest priority)
//
// All configuration values are loaded from environment variables with
// sensible defaults; the YAML file and flags, if present, override them.
package config

import (
	"os"
	"strconv"
	"strings"
)

// Config holds all configuration values for a nexidx run.
type Config struct {
	// ConfigFilePath, if set, is read as a YAML overlay between the
	// environment tier and the flags tier (see ConfigManager).
	// Environment: NEXIDX_CONFIG_FILE
	ConfigFilePath string

	// InputPath is the index chunk to decode. "-" reads from stdin.
	// Environment: NEXIDX_INPUT_PATH
	InputPath string

	// DBPath is the sqlite3 DSN the writer opens for the versions schema.
	// Environment: NEXIDX_DB_PATH
	// Default: "./nexidx.db"
	DBPath string

	// QueueCapacity bounds the producer/consumer Doc channel (default 65536).
	// Environment: NEXIDX_QUEUE_CAPACITY
	QueueCapacity int

	// LogLevel sets the minimum log level for message output.
	// Environment: NEXIDX_LOG_LEVEL
	// Valid values: "trace", "debug", "info", "warn", "error"
	LogLevel string

	// TraceSubsystems enables fine-grained trace output for named subsystems
	// (decode, intern, pipeline, store).
	// Environment: NEXIDX_TRACE_SUBSYSTEMS (comma-separated)
	TraceSubsystems []string

	// TopListDir, if set, overrides the embedded top-N preload YAML files
	// (intern/toplists) with files read from this directory at startup.
	// Environment: NEXIDX_TOPLIST_DIR
	TopListDir string

	// SmokeGroup/SmokeArtifact, if both set, run find_versions against the
	// just-ingested database as a post-ingest smoke test.
	// Environment: NEXIDX_SMOKE_GROUP / NEXIDX_SMOKE_ARTIFACT
	SmokeGroup    string
	SmokeArtifact string

	// HTTPAddr is the listen address for the optional read-only API server.
	// Empty (the default) means no server is started.
	// Environment: NEXIDX_HTTP_ADDR
	HTTPAddr string
}

// Load creates a new Config instance with values loaded from environment
// variables, applying documented defaults for anything unset. This is the
// lowest-priority tier of the configuration hierarchy; the YAML file tier
// and the flags layer on top of it (see ConfigManager).
func Load() *Config {
	return &Config{
		ConfigFilePath:  getEnv("NEXIDX_CONFIG_FILE", ""),
		InputPath:       getEnv("NEXIDX_INPUT_PATH", "-"),
		DBPath:          getEnv("NEXIDX_DB_PATH", "./nexidx.db"),
		QueueCapacity:   getEnvInt("NEXIDX_QUEUE_CAPACITY", 65536),
		LogLevel:        getEnv("NEXIDX_LOG_LEVEL", "info"),
		TraceSubsystems: getEnvList("NEXIDX_TRACE_SUBSYSTEMS"),
		TopListDir:      getEnv("NEXIDX_TOPLIST_DIR", ""),
		SmokeGroup:      getEnv("NEXIDX_SMOKE_GROUP", ""),
		SmokeArtifact:   getEnv("NEXIDX_SMOKE_ARTIFACT", ""),
		HTTPAddr:        getEnv("NEXIDX_HTTP_ADDR", ""),
	}
}

// getEnv retrieves a string environment variable with a default fallback.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt retrieves an integer environment variable with a default fallback.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvList retrieves a comma-separated environment variable as a trimmed
// string slice. Returns nil if unset or empty.
func getEnvList(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}
