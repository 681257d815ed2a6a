package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestApplyYAMLFileOverlaysEnvDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nexidx.yaml")
	if err := os.WriteFile(path, []byte("db_path: /tmp/from-yaml.db\nqueue_capacity: 42\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cm := &ConfigManager{config: Load()}
	if err := cm.applyYAMLFile(path); err != nil {
		t.Fatal(err)
	}

	if cm.config.DBPath != "/tmp/from-yaml.db" {
		t.Fatalf("DBPath = %q, want /tmp/from-yaml.db", cm.config.DBPath)
	}
	if cm.config.QueueCapacity != 42 {
		t.Fatalf("QueueCapacity = %d, want 42", cm.config.QueueCapacity)
	}
}

func TestApplyYAMLFileMissingIsNotAnError(t *testing.T) {
	cm := &ConfigManager{config: Load()}
	original := cm.config.DBPath
	if err := cm.applyYAMLFile(filepath.Join(t.TempDir(), "does-not-exist.yaml")); err != nil {
		t.Fatal(err)
	}
	if cm.config.DBPath != original {
		t.Fatalf("DBPath changed on missing file: got %q, want %q", cm.config.DBPath, original)
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg := Load()
	if cfg.InputPath != "-" {
		t.Fatalf("InputPath = %q, want \"-\"", cfg.InputPath)
	}
	if cfg.QueueCapacity != 65536 {
		t.Fatalf("QueueCapacity = %d, want 65536", cfg.QueueCapacity)
	}
}
