package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/OFFIS-RIT/synthetix/backend/pkg/layout"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Layout != layout.DefaultParams() {
		t.Errorf("Layout = %+v, want defaults", cfg.Layout)
	}
	if cfg.Viewport != layout.DefaultViewport() {
		t.Errorf("Viewport = %+v, want defaults", cfg.Viewport)
	}
	if cfg.Extract.Strategy != "lexical" {
		t.Errorf("Extract.Strategy = %q", cfg.Extract.Strategy)
	}
	if cfg.Grade.Strategy != "lexical" {
		t.Errorf("Grade.Strategy = %q", cfg.Grade.Strategy)
	}
	if !cfg.Extract.Dedupe {
		t.Error("default dedupe should be enabled")
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Layout.Iterations != 300 {
		t.Errorf("Iterations = %d, want 300", cfg.Layout.Iterations)
	}

	cfg, err = Load("")
	if err != nil || cfg == nil {
		t.Fatalf("Load(\"\") = %v, %v", cfg, err)
	}
}

func TestLoad_OverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "synthetix.toml")
	content := `
[layout]
iterations = 50
repulsion = 1000.0
max_concepts = 120

[viewport]
width = 640

[extract]
strategy = "ai"
max_concepts = 12
dedupe = false
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Layout.Iterations != 50 || cfg.Layout.Repulsion != 1000 {
		t.Errorf("Layout = %+v", cfg.Layout)
	}
	if cfg.Layout.Damping != 0.92 {
		t.Errorf("Damping = %v, want default 0.92", cfg.Layout.Damping)
	}
	if cfg.Viewport.Width != 640 || cfg.Viewport.Height != 800 {
		t.Errorf("Viewport = %+v", cfg.Viewport)
	}
	if got := cfg.Engine().Params().MaxConcepts; got != 120 {
		t.Errorf("Engine().Params().MaxConcepts = %d, want 120", got)
	}
	if cfg.Extract.Strategy != "ai" || cfg.Extract.MaxConcepts != 12 || cfg.Extract.Dedupe {
		t.Errorf("Extract = %+v", cfg.Extract)
	}

	opts := cfg.ExtractOptions(nil)
	if opts.MaxConcepts != 12 {
		t.Errorf("ExtractOptions().MaxConcepts = %d", opts.MaxConcepts)
	}
	if params := cfg.GraphParams(); params.Dedupe || params.MaxTokens != 2000 {
		t.Errorf("GraphParams() = %+v", params)
	}
}

func TestLoad_InvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.toml")
	if err := os.WriteFile(path, []byte("[layout\niterations = "), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("Load() expected parse error")
	}
}

func TestSave_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "synthetix.toml")
	cfg := Default()
	cfg.Viewport.Padding = 40
	cfg.Grade.Strategy = "ai"

	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.Viewport.Padding != 40 || loaded.Grade.Strategy != "ai" {
		t.Errorf("loaded = %+v", loaded)
	}
	if loaded.Layout != cfg.Layout {
		t.Errorf("Layout = %+v, want %+v", loaded.Layout, cfg.Layout)
	}
}
