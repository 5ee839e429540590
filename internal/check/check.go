// Package check runs environment diagnostics for the flicker CLI.
package check

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterachavez/focus-flicker-beta-f/internal/config"
	"github.com/peterachavez/focus-flicker-beta-f/internal/store"
)

// Status represents the outcome of a single check.
type Status int

const (
	Pass Status = iota
	Warn
	Fail
)

func (s Status) String() string {
	switch s {
	case Pass:
		return "pass"
	case Warn:
		return "warn"
	case Fail:
		return "FAIL"
	default:
		return "unknown"
	}
}

// Result holds the outcome of a single check.
type Result struct {
	Name   string
	Status Status
	Detail string
}

// Report aggregates all check results.
type Report struct {
	Results []Result
}

// HasFailures returns true if any result has Fail status.
func (r Report) HasFailures() bool {
	for _, res := range r.Results {
		if res.Status == Fail {
			return true
		}
	}
	return false
}

// Format returns the human-readable report string.
func (r Report) Format() string {
	if len(r.Results) == 0 {
		return "flicker check\n\n  no checks ran\n"
	}

	// Find max name length for alignment.
	maxName := 0
	for _, res := range r.Results {
		if len(res.Name) > maxName {
			maxName = len(res.Name)
		}
	}

	var b strings.Builder
	b.WriteString("flicker check\n\n")

	var passed, warnings, failures int
	for _, res := range r.Results {
		switch res.Status {
		case Pass:
			passed++
		case Warn:
			warnings++
		case Fail:
			failures++
		}
		fmt.Fprintf(&b, "  %-4s  %-*s  %s\n", res.Status, maxName, res.Name, res.Detail)
	}

	fmt.Fprintf(&b, "\n%d passed, %d warning, %d failure\n", passed, warnings, failures)
	return b.String()
}

// CheckConfig reports the resolved config path. Always passes; broken TOML
// is caught by config.Load before we get here.
func CheckConfig() Result {
	cfgPath := filepath.Join(config.ConfigDir(), "config.toml")
	return Result{
		Name:   "config",
		Status: Pass,
		Detail: config.CompressHome(cfgPath),
	}
}

// CheckDataDir checks whether the data directory exists and is writable.
func CheckDataDir(path string) Result {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return Result{Name: "data", Status: Fail, Detail: path + " not found"}
	}
	probe := filepath.Join(path, ".write-probe")
	if err := os.WriteFile(probe, nil, 0o644); err != nil {
		return Result{Name: "data", Status: Fail, Detail: path + " not writable"}
	}
	os.Remove(probe)
	return Result{Name: "data", Status: Pass, Detail: config.CompressHome(path)}
}

// CheckDatabase opens the assessment database and reports the stored count.
func CheckDatabase(path string) Result {
	if _, err := os.Stat(path); err != nil {
		return Result{Name: "database", Status: Warn, Detail: "no database yet (created on first run)"}
	}
	db, err := store.Open(path)
	if err != nil {
		return Result{Name: "database", Status: Fail, Detail: fmt.Sprintf("cannot open: %v", err)}
	}
	defer db.Close()

	sums, err := db.List()
	if err != nil {
		return Result{Name: "database", Status: Fail, Detail: fmt.Sprintf("cannot query: %v", err)}
	}
	return Result{Name: "database", Status: Pass, Detail: fmt.Sprintf("%s (%d assessments)", config.CompressHome(path), len(sums))}
}

// CheckInbox checks whether the inbox directory exists and reports
// pending result files.
func CheckInbox(path string) Result {
	entries, err := os.ReadDir(path)
	if err != nil {
		return Result{Name: "inbox", Status: Warn, Detail: config.CompressHome(path) + " not found (created by `flicker watch`)"}
	}
	pending := 0
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".jsonl") {
			pending++
		}
	}
	return Result{Name: "inbox", Status: Pass, Detail: fmt.Sprintf("%s (%d pending)", config.CompressHome(path), pending)}
}

// CheckArchive checks the archive directory and counts archived sessions.
func CheckArchive(path string, compress bool) Result {
	if !compress {
		return Result{Name: "archive", Status: Pass, Detail: "disabled"}
	}
	entries, err := os.ReadDir(path)
	if err != nil {
		return Result{Name: "archive", Status: Warn, Detail: config.CompressHome(path) + " not found (created on first import)"}
	}
	count := 0
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".zst") {
			count++
		}
	}
	return Result{Name: "archive", Status: Pass, Detail: fmt.Sprintf("%s (%d archived)", config.CompressHome(path), count)}
}

// CheckTask validates the configured task parameters.
func CheckTask(tc config.TaskConfig) Result {
	if tc.FlickerMinMs <= 0 || tc.FlickerMaxMs <= tc.FlickerMinMs {
		return Result{Name: "task", Status: Fail,
			Detail: fmt.Sprintf("bad flicker bounds %d..%dms", tc.FlickerMinMs, tc.FlickerMaxMs)}
	}
	if tc.FlickerStepMs <= 0 {
		return Result{Name: "task", Status: Fail, Detail: "flicker step must be positive"}
	}
	if tc.MatchBlocks < 1 || tc.FlickerBlocks < 1 {
		return Result{Name: "task", Status: Fail, Detail: "block counts must be at least 1"}
	}
	return Result{Name: "task", Status: Pass,
		Detail: fmt.Sprintf("%d match / %d flicker blocks, %d..%dms", tc.MatchBlocks, tc.FlickerBlocks, tc.FlickerMinMs, tc.FlickerMaxMs)}
}

// Run executes all checks against the given config and returns a report.
func Run(cfg config.Config) Report {
	var results []Result

	results = append(results, CheckConfig())
	results = append(results, CheckDataDir(cfg.DataDir))
	results = append(results, CheckDatabase(cfg.DatabasePath()))
	results = append(results, CheckInbox(cfg.InboxDir))
	results = append(results, CheckArchive(cfg.ArchiveDir(), cfg.Archive.Compress))
	results = append(results, CheckTask(cfg.Task))

	return Report{Results: results}
}
