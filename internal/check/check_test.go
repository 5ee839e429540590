package check

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/peterachavez/focus-flicker-beta-f/internal/config"
	"github.com/peterachavez/focus-flicker-beta-f/internal/store"
)

func TestCheckDataDir_Pass(t *testing.T) {
	dir := t.TempDir()
	r := CheckDataDir(dir)
	if r.Status != Pass {
		t.Errorf("expected Pass, got %s: %s", r.Status, r.Detail)
	}
}

func TestCheckDataDir_Fail(t *testing.T) {
	r := CheckDataDir("/nonexistent/data/path")
	if r.Status != Fail {
		t.Errorf("expected Fail, got %s: %s", r.Status, r.Detail)
	}
}

func TestCheckDatabase_Warn(t *testing.T) {
	dir := t.TempDir()
	r := CheckDatabase(filepath.Join(dir, "assessments.db"))
	if r.Status != Warn {
		t.Errorf("expected Warn, got %s: %s", r.Status, r.Detail)
	}
}

func TestCheckDatabase_Pass(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "assessments.db")
	db, err := store.Open(path)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	db.Close()

	r := CheckDatabase(path)
	if r.Status != Pass {
		t.Errorf("expected Pass, got %s: %s", r.Status, r.Detail)
	}
	if !strings.Contains(r.Detail, "(0 assessments)") {
		t.Errorf("unexpected detail: %s", r.Detail)
	}
}

func TestCheckInbox_Pass(t *testing.T) {
	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, "a.jsonl"), []byte("{}"), 0o644)
	os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644)

	r := CheckInbox(dir)
	if r.Status != Pass {
		t.Errorf("expected Pass, got %s: %s", r.Status, r.Detail)
	}
	if !strings.Contains(r.Detail, "(1 pending)") {
		t.Errorf("unexpected detail: %s", r.Detail)
	}
}

func TestCheckInbox_Warn(t *testing.T) {
	r := CheckInbox("/nonexistent/inbox")
	if r.Status != Warn {
		t.Errorf("expected Warn, got %s: %s", r.Status, r.Detail)
	}
}

func TestCheckArchive_Disabled(t *testing.T) {
	r := CheckArchive("/nonexistent/archive", false)
	if r.Status != Pass {
		t.Errorf("expected Pass, got %s: %s", r.Status, r.Detail)
	}
	if r.Detail != "disabled" {
		t.Errorf("unexpected detail: %s", r.Detail)
	}
}

func TestCheckArchive_Counts(t *testing.T) {
	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, "a.jsonl.zst"), []byte("x"), 0o644)
	os.WriteFile(filepath.Join(dir, "b.jsonl.zst"), []byte("x"), 0o644)

	r := CheckArchive(dir, true)
	if r.Status != Pass {
		t.Errorf("expected Pass, got %s: %s", r.Status, r.Detail)
	}
	if !strings.Contains(r.Detail, "(2 archived)") {
		t.Errorf("unexpected detail: %s", r.Detail)
	}
}

func TestCheckTask_Pass(t *testing.T) {
	tc := config.DefaultConfig().Task
	r := CheckTask(tc)
	if r.Status != Pass {
		t.Errorf("expected Pass, got %s: %s", r.Status, r.Detail)
	}
}

func TestCheckTask_BadBounds(t *testing.T) {
	tc := config.DefaultConfig().Task
	tc.FlickerMaxMs = tc.FlickerMinMs
	r := CheckTask(tc)
	if r.Status != Fail {
		t.Errorf("expected Fail, got %s: %s", r.Status, r.Detail)
	}
}

func TestCheckTask_BadStep(t *testing.T) {
	tc := config.DefaultConfig().Task
	tc.FlickerStepMs = 0
	r := CheckTask(tc)
	if r.Status != Fail {
		t.Errorf("expected Fail, got %s: %s", r.Status, r.Detail)
	}
}

func TestReport_HasFailures_True(t *testing.T) {
	r := Report{Results: []Result{
		{Name: "a", Status: Pass},
		{Name: "b", Status: Fail},
	}}
	if !r.HasFailures() {
		t.Error("expected HasFailures() == true")
	}
}

func TestReport_HasFailures_False(t *testing.T) {
	r := Report{Results: []Result{
		{Name: "a", Status: Pass},
		{Name: "b", Status: Warn},
	}}
	if r.HasFailures() {
		t.Error("expected HasFailures() == false")
	}
}

func TestRun_Integration(t *testing.T) {
	dataDir := t.TempDir()

	cfg := config.DefaultConfig()
	cfg.DataDir = dataDir
	cfg.InboxDir = filepath.Join(dataDir, "inbox")
	os.Mkdir(cfg.InboxDir, 0o755)

	db, err := store.Open(cfg.DatabasePath())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	db.Close()

	report := Run(cfg)

	for _, res := range report.Results {
		if res.Status == Fail {
			t.Errorf("unexpected failure: %s: %s", res.Name, res.Detail)
		}
	}

	output := report.Format()
	if output == "" {
		t.Error("Format() returned empty string")
	}
	if !strings.Contains(output, "passed") {
		t.Errorf("Format() missing summary line:\n%s", output)
	}
}

func TestStatus_String(t *testing.T) {
	tests := []struct {
		s    Status
		want string
	}{
		{Pass, "pass"},
		{Warn, "warn"},
		{Fail, "FAIL"},
	}
	for _, tt := range tests {
		if got := tt.s.String(); got != tt.want {
			t.Errorf("Status(%d).String() = %q, want %q", tt.s, got, tt.want)
		}
	}
}
