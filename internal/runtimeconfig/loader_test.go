package runtimeconfig_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/goliatone/go-sitegen/internal/runtimeconfig"
)

func TestLoadFileAppliesOverridesOnDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sitegen.toml")
	content := `
[site]
title = "Field Notes"
base_url = "https://example.com"
author = "Ada"

[content]
dir = "posts"

[generator]
enabled = true
output_dir = "public"
generate_feeds = true

[features]
generator = true

[watch]
debounce = "250ms"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config fixture: %v", err)
	}

	cfg, err := runtimeconfig.LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile returned error: %v", err)
	}

	if cfg.Site.Title != "Field Notes" {
		t.Fatalf("expected site title override, got %q", cfg.Site.Title)
	}
	if cfg.Content.Dir != "posts" {
		t.Fatalf("expected content dir override, got %q", cfg.Content.Dir)
	}
	if cfg.Generator.OutputDir != "public" {
		t.Fatalf("expected output dir override, got %q", cfg.Generator.OutputDir)
	}
	if !cfg.Generator.GenerateFeeds {
		t.Fatal("expected feeds to be enabled")
	}
	if cfg.Watch.Debounce.Std() != 250*time.Millisecond {
		t.Fatalf("expected 250ms debounce, got %s", cfg.Watch.Debounce.Std())
	}
	// Untouched values keep their defaults.
	if cfg.Layouts.Default != "default" {
		t.Fatalf("expected default layout fallback, got %q", cfg.Layouts.Default)
	}
	if cfg.Server.Port != 1313 {
		t.Fatalf("expected default server port, got %d", cfg.Server.Port)
	}
}

func TestLoadFileValidatesMergedConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sitegen.toml")
	content := `
[features]
generator = true

[generator]
output_dir = ""
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config fixture: %v", err)
	}

	_, err := runtimeconfig.LoadFile(path)
	if !errors.Is(err, runtimeconfig.ErrGeneratorOutputDirRequired) {
		t.Fatalf("expected ErrGeneratorOutputDirRequired, got %v", err)
	}
}

func TestLoadFileReportsMissingFile(t *testing.T) {
	_, err := runtimeconfig.LoadFile(filepath.Join(t.TempDir(), "missing.toml"))
	if err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestDecodeToleratesUnknownKeys(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	content := `
[site]
title = "Notes"
future_knob = "ignored"
`
	if err := runtimeconfig.Decode(content, &cfg); err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}
	if cfg.Site.Title != "Notes" {
		t.Fatalf("expected title override, got %q", cfg.Site.Title)
	}
}
