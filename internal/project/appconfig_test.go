package project

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/piwi3910/CreaseStack/internal/model"
)

func TestSaveAndLoadAppConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")

	cfg := model.DefaultAppConfig()
	cfg.DefaultPointEps = 1e-4
	cfg.DefaultFullEstimation = true
	cfg.LogLevel = "debug"
	cfg.RecentProjects = []string{"/tmp/crane.crease", "/tmp/frog.crease"}

	if err := SaveAppConfig(path, cfg); err != nil {
		t.Fatalf("SaveAppConfig failed: %v", err)
	}

	loaded, err := LoadAppConfig(path)
	if err != nil {
		t.Fatalf("LoadAppConfig failed: %v", err)
	}

	if loaded.DefaultPointEps != 1e-4 {
		t.Errorf("expected DefaultPointEps=1e-4, got %g", loaded.DefaultPointEps)
	}
	if !loaded.DefaultFullEstimation {
		t.Error("expected DefaultFullEstimation=true")
	}
	if loaded.LogLevel != "debug" {
		t.Errorf("expected LogLevel=debug, got %s", loaded.LogLevel)
	}
	if len(loaded.RecentProjects) != 2 {
		t.Errorf("expected 2 recent projects, got %d", len(loaded.RecentProjects))
	}
}

func TestLoadAppConfigMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nonexistent", "config.json")

	cfg, err := LoadAppConfig(path)
	if err != nil {
		t.Fatalf("expected no error for missing file, got: %v", err)
	}

	defaults := model.DefaultAppConfig()
	if cfg.DefaultSearchStepBudget != defaults.DefaultSearchStepBudget {
		t.Errorf("expected default step budget %d, got %d", defaults.DefaultSearchStepBudget, cfg.DefaultSearchStepBudget)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("expected log level warn, got %s", cfg.LogLevel)
	}
}

func TestLoadAppConfigInvalidJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")

	if err := os.WriteFile(path, []byte("not valid json{{{"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := LoadAppConfig(path)
	if err == nil {
		t.Fatal("expected error for invalid JSON, got nil")
	}
}

func TestSaveAppConfigCreatesDirectories(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sub", "dir", "config.json")

	cfg := model.DefaultAppConfig()
	if err := SaveAppConfig(path, cfg); err != nil {
		t.Fatalf("SaveAppConfig should create parent dirs: %v", err)
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Fatal("config file was not created")
	}
}

func TestLoadAppConfigPartialFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")

	data := []byte(`{"default_point_eps":0.001,"recent_projects":null}`)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadAppConfig(path)
	if err != nil {
		t.Fatalf("LoadAppConfig failed: %v", err)
	}
	if cfg.RecentProjects == nil {
		t.Error("RecentProjects should not be nil after loading")
	}
	if cfg.DefaultPointEps != 0.001 {
		t.Errorf("expected point eps 0.001, got %g", cfg.DefaultPointEps)
	}
	if cfg.DefaultMaxSolutions != model.DefaultAppConfig().DefaultMaxSolutions {
		t.Errorf("missing fields should keep defaults, got max solutions %d", cfg.DefaultMaxSolutions)
	}
}

func TestLoadAppConfigSanitizesValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	data := []byte(`{"log_level":"  DEBUG ","default_point_eps":-1,"default_angle_eps":0,"default_paper_size":0}`)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadAppConfig(path)
	if err != nil {
		t.Fatalf("LoadAppConfig failed: %v", err)
	}
	defaults := model.DefaultAppConfig()
	if cfg.LogLevel != "debug" {
		t.Errorf("expected canonical log level debug, got %q", cfg.LogLevel)
	}
	if cfg.DefaultPointEps != defaults.DefaultPointEps || cfg.DefaultAngleEps != defaults.DefaultAngleEps {
		t.Errorf("expected default tolerances, got %g and %g", cfg.DefaultPointEps, cfg.DefaultAngleEps)
	}
	if cfg.DefaultPaperSize != defaults.DefaultPaperSize {
		t.Errorf("expected default paper size, got %g", cfg.DefaultPaperSize)
	}
}

func TestLoadAppConfigUnknownLogLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"log_level":"verbose"}`), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadAppConfig(path)
	if err != nil {
		t.Fatalf("LoadAppConfig failed: %v", err)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("expected unknown level to fall back to warn, got %q", cfg.LogLevel)
	}
}
