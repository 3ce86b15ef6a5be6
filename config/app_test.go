package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadAppDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("STORAGE_BACKEND", "")
	t.Setenv("JOB_LIST_TTL", "")

	cfg, err := LoadApp("")
	if err != nil {
		t.Fatalf("LoadApp: %v", err)
	}
	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.Storage.Backend != "local" {
		t.Errorf("Storage.Backend = %q, want local", cfg.Storage.Backend)
	}
	if cfg.JobListTTL != 2*time.Minute {
		t.Errorf("JobListTTL = %v, want 2m", cfg.JobListTTL)
	}
	if cfg.Scoring.SentinelSkill != "Python" {
		t.Errorf("SentinelSkill = %q", cfg.Scoring.SentinelSkill)
	}
	if cfg.Vertex.Enabled() {
		t.Errorf("Vertex should be disabled without a project id")
	}
}

func TestLoadAppEnvAndYAML(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("PARSE_WORKERS", "4")
	t.Setenv("JOB_LIST_TTL", "30s")

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := "storage:\n  backend: GCS\n  bucket: resumes-bucket\nvertex:\n  project_id: demo\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadApp(path)
	if err != nil {
		t.Fatalf("LoadApp: %v", err)
	}
	if cfg.Port != "9000" || cfg.ParseWorkers != 4 || cfg.JobListTTL != 30*time.Second {
		t.Errorf("env values not applied: %+v", cfg)
	}
	if cfg.Storage.Backend != "gcs" || cfg.Storage.Bucket != "resumes-bucket" {
		t.Errorf("yaml storage not applied: %+v", cfg.Storage)
	}
	if !cfg.Vertex.Enabled() {
		t.Errorf("expected vertex enabled from yaml")
	}
}

func TestLoadAppMissingFile(t *testing.T) {
	if _, err := LoadApp(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}
