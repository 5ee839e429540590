package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.DataDir != "~/.local/share/focus-flicker" {
		t.Errorf("DataDir = %q", cfg.DataDir)
	}
	if cfg.InboxDir != "~/.local/share/focus-flicker/inbox" {
		t.Errorf("InboxDir = %q", cfg.InboxDir)
	}
	if cfg.Task.MatchBlocks != 6 {
		t.Errorf("Task.MatchBlocks = %d", cfg.Task.MatchBlocks)
	}
	if cfg.Task.FlickerBlocks != 5 {
		t.Errorf("Task.FlickerBlocks = %d", cfg.Task.FlickerBlocks)
	}
	if cfg.Task.FlickerStartMs != 1000 || cfg.Task.FlickerStepMs != 100 {
		t.Errorf("staircase defaults = %d/%d", cfg.Task.FlickerStartMs, cfg.Task.FlickerStepMs)
	}
	if cfg.Task.FlickerMinMs != 100 || cfg.Task.FlickerMaxMs != 2000 {
		t.Errorf("staircase bounds = %d/%d", cfg.Task.FlickerMinMs, cfg.Task.FlickerMaxMs)
	}
	if cfg.Task.ChangeProb != 0.5 {
		t.Errorf("Task.ChangeProb = %v", cfg.Task.ChangeProb)
	}
	if !cfg.Archive.Compress {
		t.Error("Archive.Compress should default to true")
	}
}

func TestLoad_NoConfig(t *testing.T) {
	// Point XDG to an empty dir so no config file is found
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	// Should have expanded defaults (DataDir no longer starts with ~/)
	if strings.HasPrefix(cfg.DataDir, "~/") {
		t.Errorf("DataDir not expanded: %q", cfg.DataDir)
	}
	if !strings.HasSuffix(cfg.DataDir, ".local/share/focus-flicker") {
		t.Errorf("DataDir = %q, want suffix .local/share/focus-flicker", cfg.DataDir)
	}
}

func TestLoad_ValidConfig(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)
	t.Setenv("HOME", t.TempDir())

	configDir := filepath.Join(xdg, "focus-flicker")
	os.MkdirAll(configDir, 0o755)

	tomlContent := `data_dir = "/custom/data"
inbox_dir = "/custom/inbox"

[task]
match_blocks = 4
flicker_start_ms = 1500
change_probability = 0.4

[archive]
compress = false
`
	os.WriteFile(filepath.Join(configDir, "config.toml"), []byte(tomlContent), 0o644)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.DataDir != "/custom/data" {
		t.Errorf("DataDir = %q", cfg.DataDir)
	}
	if cfg.InboxDir != "/custom/inbox" {
		t.Errorf("InboxDir = %q", cfg.InboxDir)
	}
	if cfg.Task.MatchBlocks != 4 {
		t.Errorf("Task.MatchBlocks = %d", cfg.Task.MatchBlocks)
	}
	if cfg.Task.FlickerStartMs != 1500 {
		t.Errorf("Task.FlickerStartMs = %d", cfg.Task.FlickerStartMs)
	}
	if cfg.Task.ChangeProb != 0.4 {
		t.Errorf("Task.ChangeProb = %v", cfg.Task.ChangeProb)
	}
	if cfg.Archive.Compress {
		t.Error("Archive.Compress should be false")
	}
	// Unset fields keep defaults.
	if cfg.Task.FlickerBlocks != 5 {
		t.Errorf("Task.FlickerBlocks = %d, want default 5", cfg.Task.FlickerBlocks)
	}
}

func TestLoad_ExpandsHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)

	configDir := filepath.Join(xdg, "focus-flicker")
	os.MkdirAll(configDir, 0o755)
	os.WriteFile(filepath.Join(configDir, "config.toml"), []byte(`data_dir = "~/flicker-data"`), 0o644)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	want := filepath.Join(home, "flicker-data")
	if cfg.DataDir != want {
		t.Errorf("DataDir = %q, want %q", cfg.DataDir, want)
	}
}

func TestLoad_XDGPriority(t *testing.T) {
	xdg := t.TempDir()
	home := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)
	t.Setenv("HOME", home)

	// Create config at XDG path
	xdgDir := filepath.Join(xdg, "focus-flicker")
	os.MkdirAll(xdgDir, 0o755)
	os.WriteFile(filepath.Join(xdgDir, "config.toml"), []byte(`data_dir = "/from-xdg"`), 0o644)

	// Also create config at ~/.config path
	homeDir := filepath.Join(home, ".config", "focus-flicker")
	os.MkdirAll(homeDir, 0o755)
	os.WriteFile(filepath.Join(homeDir, "config.toml"), []byte(`data_dir = "/from-home"`), 0o644)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.DataDir != "/from-xdg" {
		t.Errorf("DataDir = %q, want /from-xdg (XDG should take priority)", cfg.DataDir)
	}
}

func TestLoad_InvalidTOML(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)
	t.Setenv("HOME", t.TempDir())

	configDir := filepath.Join(xdg, "focus-flicker")
	os.MkdirAll(configDir, 0o755)
	os.WriteFile(filepath.Join(configDir, "config.toml"), []byte(`data_dir = [broken`), 0o644)

	_, err := Load()
	if err == nil {
		t.Fatal("expected error for invalid TOML")
	}
}

func TestDerivedPaths(t *testing.T) {
	cfg := Config{DataDir: "/home/user/flicker"}

	if got := cfg.DatabasePath(); got != "/home/user/flicker/assessments.db" {
		t.Errorf("DatabasePath = %q", got)
	}
	if got := cfg.ArchiveDir(); got != "/home/user/flicker/archive" {
		t.Errorf("ArchiveDir = %q", got)
	}
}
