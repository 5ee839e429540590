package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Config holds all focus-flicker configuration.
type Config struct {
	DataDir  string `toml:"data_dir"`  // database and archives
	InboxDir string `toml:"inbox_dir"` // watched for session export files

	Task    TaskConfig    `toml:"task"`
	Archive ArchiveConfig `toml:"archive"`
}

// TaskConfig overrides the standard protocol parameters. Block size is
// fixed at six trials; only block counts and staircase bounds are
// tunable.
type TaskConfig struct {
	MatchBlocks   int `toml:"match_blocks"`
	FlickerBlocks int `toml:"flicker_blocks"`

	FlickerStartMs int     `toml:"flicker_start_ms"`
	FlickerStepMs  int     `toml:"flicker_step_ms"`
	FlickerMinMs   int     `toml:"flicker_min_ms"`
	FlickerMaxMs   int     `toml:"flicker_max_ms"`
	ChangeProb     float64 `toml:"change_probability"`

	PracticeTrials int `toml:"practice_trials"`
}

type ArchiveConfig struct {
	Compress bool `toml:"compress"`
	Keep     bool `toml:"keep"` // keep inbox files after import
}

// DefaultConfig returns config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		DataDir:  "~/.local/share/focus-flicker",
		InboxDir: "~/.local/share/focus-flicker/inbox",
		Task: TaskConfig{
			MatchBlocks:    6,
			FlickerBlocks:  5,
			FlickerStartMs: 1000,
			FlickerStepMs:  100,
			FlickerMinMs:   100,
			FlickerMaxMs:   2000,
			ChangeProb:     0.5,
			PracticeTrials: 6,
		},
		Archive: ArchiveConfig{
			Compress: true,
		},
	}
}

// Load reads config from the standard path, falling back to defaults.
func Load() (Config, error) {
	cfg := DefaultConfig()

	paths := configPaths()
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			if _, err := toml.DecodeFile(p, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config %s: %w", p, err)
			}
			break
		}
	}

	// Expand ~ in paths
	cfg.DataDir = expandHome(cfg.DataDir)
	cfg.InboxDir = expandHome(cfg.InboxDir)

	return cfg, nil
}

func configPaths() []string {
	var paths []string

	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		paths = append(paths, filepath.Join(xdg, "focus-flicker", "config.toml"))
	}

	home, _ := os.UserHomeDir()
	if home != "" {
		paths = append(paths, filepath.Join(home, ".config", "focus-flicker", "config.toml"))
	}

	return paths
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}

// DatabasePath returns the sqlite database file path.
func (c Config) DatabasePath() string {
	return filepath.Join(c.DataDir, "assessments.db")
}

// ArchiveDir returns the directory for compressed session files.
func (c Config) ArchiveDir() string {
	return filepath.Join(c.DataDir, "archive")
}
