package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ConfigDir returns the focus-flicker config directory path.
// Uses $XDG_CONFIG_HOME/focus-flicker if set, otherwise
// ~/.config/focus-flicker.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "focus-flicker")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "focus-flicker")
}

// WriteDefault writes a default config.toml pointing to dataDir.
// Returns the config file path. Skips if config.toml already exists.
func WriteDefault(dataDir string) (string, error) {
	dir := ConfigDir()
	path := filepath.Join(dir, "config.toml")

	if _, err := os.Stat(path); err == nil {
		return path, nil // already exists
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create config dir: %w", err)
	}

	portableData := CompressHome(dataDir)
	portableInbox := CompressHome(filepath.Join(dataDir, "inbox"))

	content := fmt.Sprintf(`data_dir = %q
inbox_dir = %q

[task]
match_blocks = 6
flicker_blocks = 5
flicker_start_ms = 1000
flicker_step_ms = 100
flicker_min_ms = 100
flicker_max_ms = 2000
change_probability = 0.5
practice_trials = 6

[archive]
compress = true
keep = false
`, portableData, portableInbox)

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("write config: %w", err)
	}

	return path, nil
}

// CompressHome replaces $HOME prefix with ~/ for portable config values.
func CompressHome(path string) string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return path
	}
	if strings.HasPrefix(path, home+"/") {
		return "~/" + path[len(home)+1:]
	}
	if path == home {
		return "~"
	}
	return path
}
