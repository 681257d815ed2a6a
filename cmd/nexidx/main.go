// Command nexidx decodes a Maven repository index chunk and ingests it
// into a sqlite3-backed relational store.
//
// Usage: nexidx [options]
//
// All options can also be set via NEXIDX_* environment variables or a
// YAML config file; see config.Config for the full list.
package main

import (
	"database/sql"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"nexidx/api"
	"nexidx/config"
	"nexidx/ingest"
	"nexidx/logger"
	"nexidx/store"
)

var (
	showVersion bool
	showHelp    bool

	// Version is the nexidx version string.
	// Build override: -ldflags "-X main.Version=x.y.z"
	Version = "0.1.0"
)

func init() {
	flag.BoolVar(&showVersion, "v", false, "print version and exit")
	flag.BoolVar(&showVersion, "version", false, "print version and exit")
	flag.BoolVar(&showHelp, "h", false, "print usage and exit")
	flag.BoolVar(&showHelp, "help", false, "print usage and exit")
}

func main() {
	configManager := config.NewConfigManager()
	if err := configManager.RegisterFlags(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config file: %v\n", err)
		os.Exit(1)
	}
	flag.Parse()

	if showVersion {
		fmt.Printf("nexidx v%s\n", Version)
		os.Exit(0)
	}
	if showHelp {
		fmt.Println("Usage: nexidx [options]")
		fmt.Println("\nOptions:")
		flag.PrintDefaults()
		fmt.Println("\nAll options can also be set via NEXIDX_* environment variables or NEXIDX_CONFIG_FILE.")
		os.Exit(0)
	}

	cfg, err := configManager.Initialize()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize configuration: %v\n", err)
		os.Exit(1)
	}

	logger.Configure()
	if err := logger.SetLogLevel(cfg.LogLevel); err != nil {
		logger.Fatalf("invalid log level: %v", err)
	}
	if len(cfg.TraceSubsystems) > 0 {
		logger.EnableTrace(cfg.TraceSubsystems...)
		logger.Info("trace subsystems enabled: %s", strings.Join(cfg.TraceSubsystems, ", "))
	}

	logger.Info("starting nexidx with log level %s", strings.ToUpper(logger.GetLogLevel()))

	db, err := sql.Open("sqlite3", cfg.DBPath)
	if err != nil {
		logger.Fatalf("opening database %s: %v", cfg.DBPath, err)
	}
	defer db.Close()

	source, closeSource, err := openInput(cfg.InputPath)
	if err != nil {
		logger.Fatalf("opening input %s: %v", cfg.InputPath, err)
	}
	defer closeSource()

	if err := ingest.Ingest(source, db, ingest.Options{
		QueueCapacity: cfg.QueueCapacity,
		TopListDir:    cfg.TopListDir,
	}); err != nil {
		logger.Fatalf("ingest failed: %v", err)
	}
	logger.Info("ingest complete")

	if cfg.SmokeGroup != "" && cfg.SmokeArtifact != "" {
		versions, err := store.FindVersions(db, cfg.SmokeGroup, cfg.SmokeArtifact)
		if err != nil {
			logger.Fatalf("smoke query failed: %v", err)
		}
		logger.Info("find_versions(%s, %s) -> %v", cfg.SmokeGroup, cfg.SmokeArtifact, versions)
	}

	if cfg.HTTPAddr != "" {
		srv := api.New(db)
		logger.Info("serving read-only API on %s", cfg.HTTPAddr)
		if err := http.ListenAndServe(cfg.HTTPAddr, srv); err != nil {
			logger.Fatalf("api server: %v", err)
		}
	}
}

// openInput opens cfg.InputPath for reading. "-" reads from stdin, in
// which case the returned close func is a no-op.
func openInput(path string) (*os.File, func(), error) {
	if path == "-" {
		return os.Stdin, func() {}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	return f, func() { f.Close() }, nil
}
