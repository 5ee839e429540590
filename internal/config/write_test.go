package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestWriteDefault_CreatesConfig(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	path, err := WriteDefault("/home/user/flicker-data")
	if err != nil {
		t.Fatalf("WriteDefault: %v", err)
	}

	want := filepath.Join(dir, "focus-flicker", "config.toml")
	if path != want {
		t.Errorf("path = %q, want %q", path, want)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read config: %v", err)
	}

	content := string(data)
	if !strings.Contains(content, "data_dir") {
		t.Error("config missing data_dir")
	}
	if !strings.Contains(content, "inbox_dir") {
		t.Error("config missing inbox_dir")
	}
	if !strings.Contains(content, "[task]") {
		t.Error("config missing [task] section")
	}
	if !strings.Contains(content, "[archive]") {
		t.Error("config missing [archive] section")
	}
}

func TestWriteDefault_ParsesBack(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("HOME", t.TempDir())

	if _, err := WriteDefault("/data/flicker"); err != nil {
		t.Fatalf("WriteDefault: %v", err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DataDir != "/data/flicker" {
		t.Errorf("DataDir = %q", cfg.DataDir)
	}
	if cfg.InboxDir != "/data/flicker/inbox" {
		t.Errorf("InboxDir = %q", cfg.InboxDir)
	}
	if cfg.Task.FlickerMaxMs != 2000 {
		t.Errorf("Task.FlickerMaxMs = %d", cfg.Task.FlickerMaxMs)
	}
}

func TestWriteDefault_SkipsExisting(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	configDir := filepath.Join(dir, "focus-flicker")
	os.MkdirAll(configDir, 0o755)

	existing := filepath.Join(configDir, "config.toml")
	original := "data_dir = \"/keep/me\"\n"
	os.WriteFile(existing, []byte(original), 0o644)

	path, err := WriteDefault("/other/path")
	if err != nil {
		t.Fatalf("WriteDefault: %v", err)
	}
	if path != existing {
		t.Errorf("path = %q, want %q", path, existing)
	}

	data, _ := os.ReadFile(existing)
	if string(data) != original {
		t.Error("existing config was overwritten")
	}
}

func TestCompressHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		t.Skip("no home dir")
	}

	if got := CompressHome(filepath.Join(home, "x", "y")); got != "~/x/y" {
		t.Errorf("CompressHome = %q", got)
	}
	if got := CompressHome(home); got != "~" {
		t.Errorf("CompressHome(home) = %q", got)
	}
	if got := CompressHome("/opt/data"); got != "/opt/data" {
		t.Errorf("CompressHome(/opt/data) = %q", got)
	}
}
