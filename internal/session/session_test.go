package session

import (
	"testing"

	"github.com/peterachavez/focus-flicker-beta-f/internal/record"
	"github.com/peterachavez/focus-flicker-beta-f/internal/scoring"
	"github.com/peterachavez/focus-flicker-beta-f/internal/trial"
)

// respondCorrectly answers the pending trial correctly (or incorrectly
// when correct is false) and returns the appended record.
func respond(t *testing.T, s *Session, correct bool) record.Record {
	t.Helper()
	spec, err := s.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}

	var choice int
	switch tr := spec.(type) {
	case trial.MatchTrial:
		choice = tr.CorrectIndex
		if !correct {
			choice = (tr.CorrectIndex + 1) % len(tr.Options)
		}
	case trial.FlickerTrial:
		choice = 0
		if tr.HasChange {
			choice = 1
		}
		if !correct {
			choice = 1 - choice
		}
	default:
		t.Fatalf("unexpected trial type %T", spec)
	}

	rec, err := s.Respond(choice, 1.1)
	if err != nil {
		t.Fatalf("Respond: %v", err)
	}
	if rec.Correct != correct {
		t.Fatalf("trial %d: recorded correctness %v, want %v", rec.Trial, rec.Correct, correct)
	}
	return rec
}

func TestMatchSession_FullRun(t *testing.T) {
	s := NewMatch(Params{Seed: 42})
	for !s.Done() {
		respond(t, s, true)
	}
	if got := len(s.Records()); got != 36 {
		t.Fatalf("expected 36 records, got %d", got)
	}

	sum, err := s.Complete()
	if err != nil {
		t.Fatal(err)
	}
	if sum.Task != scoring.VariantMatch {
		t.Errorf("task = %q", sum.Task)
	}
	if sum.Score < 90 {
		t.Errorf("perfect run scored %d, want >= 90", sum.Score)
	}
	if sum.Adaptations != 5 {
		t.Errorf("shifts = %d, want 5", sum.Adaptations)
	}
	if sum.AssessmentID == "" {
		t.Error("missing assessment ID")
	}
	if sum.CompletedAt.IsZero() {
		t.Error("missing completion timestamp")
	}
}

func TestMatchSession_RuleSchedule(t *testing.T) {
	s := NewMatch(Params{Seed: 7})
	wantRules := []string{"color", "shape", "count", "color", "shape", "count"}
	for !s.Done() {
		rec := respond(t, s, true)
		want := wantRules[rec.Block-1]
		if rec.Rule != want {
			t.Fatalf("block %d rule = %q, want %q", rec.Block, rec.Rule, want)
		}
	}
}

func TestFlickerSession_FullRun(t *testing.T) {
	s := NewFlicker(Params{Seed: 99})
	for !s.Done() {
		respond(t, s, true)
	}
	if got := len(s.Records()); got != 30 {
		t.Fatalf("expected 30 records, got %d", got)
	}

	sum, err := s.Complete()
	if err != nil {
		t.Fatal(err)
	}
	if sum.Task != scoring.VariantFlicker {
		t.Errorf("task = %q", sum.Task)
	}
	// All correct drives the staircase to its floor.
	if sum.FinalDurationMs != DefaultMinMs {
		t.Errorf("final duration = %d, want %d", sum.FinalDurationMs, DefaultMinMs)
	}
	if sum.ThresholdScore != 100 {
		t.Errorf("threshold score = %d, want 100", sum.ThresholdScore)
	}
}

func TestSession_RespondWithoutNext(t *testing.T) {
	s := NewMatch(Params{Seed: 1})
	if _, err := s.Respond(0, 1.0); err == nil {
		t.Fatal("expected error responding before Next")
	}
}

func TestSession_NextIsStableUntilResponse(t *testing.T) {
	s := NewMatch(Params{Seed: 5})
	a, err := s.Next()
	if err != nil {
		t.Fatal(err)
	}
	b, err := s.Next()
	if err != nil {
		t.Fatal(err)
	}
	if a.(trial.MatchTrial).Target != b.(trial.MatchTrial).Target {
		t.Error("repeated Next regenerated the pending trial")
	}
}

func TestSession_CompleteRequiresFullRun(t *testing.T) {
	s := NewMatch(Params{Seed: 3})
	respond(t, s, true)
	if _, err := s.Complete(); err == nil {
		t.Fatal("expected error completing a partial session")
	}
}

func TestSession_CompleteOnlyOnce(t *testing.T) {
	s := NewFlicker(Params{Seed: 12, Blocks: 1})
	for !s.Done() {
		respond(t, s, true)
	}
	if _, err := s.Complete(); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Complete(); err == nil {
		t.Fatal("expected error on second Complete")
	}
}

func TestSession_GuidedCounterResets(t *testing.T) {
	// Three consecutive errors from a fresh session set guided mode
	// and reset the streak counter.
	s := NewFlicker(Params{Seed: 8})
	respond(t, s, false)
	respond(t, s, false)
	rec := respond(t, s, false)
	if !s.Adaptive().GuidedMode {
		t.Fatal("guided mode not triggered")
	}
	if rec.ConsecutiveErrors != 0 {
		t.Errorf("counter = %d immediately after trigger, want 0", rec.ConsecutiveErrors)
	}
}

func TestFlickerSession_RecordsPresentedDuration(t *testing.T) {
	// Each record carries the duration its trial was shown at; the
	// staircase adjustment lands on the following trial.
	s := NewFlicker(Params{Seed: 5})
	first := respond(t, s, true)
	if first.AdaptiveMs != DefaultStartMs {
		t.Errorf("trial 1 duration = %d, want %d", first.AdaptiveMs, DefaultStartMs)
	}
	second := respond(t, s, true)
	if second.AdaptiveMs != DefaultStartMs-DefaultStepMs {
		t.Errorf("trial 2 duration = %d, want %d", second.AdaptiveMs, DefaultStartMs-DefaultStepMs)
	}
}

func TestSession_ExtendedBlock(t *testing.T) {
	// Stay clean until the final block, then fail three in a row:
	// the session grows by one block and the flag is set.
	s := NewFlicker(Params{Seed: 21})
	for s.Trial() <= s.TotalTrials()-record.TrialsPerBlock {
		respond(t, s, true)
	}
	respond(t, s, false)
	respond(t, s, false)
	respond(t, s, false)

	if s.TotalTrials() != 36 {
		t.Fatalf("expected extension to 36 trials, got %d", s.TotalTrials())
	}
	for !s.Done() {
		respond(t, s, true)
	}
	sum, err := s.Complete()
	if err != nil {
		t.Fatal(err)
	}
	if !sum.ExtendedBlock {
		t.Error("extended-block flag not set on summary")
	}
	if len(sum.Trials) != 36 {
		t.Errorf("expected 36 trials in summary, got %d", len(sum.Trials))
	}
}

func TestSession_NoExtensionOutsideFinalBlock(t *testing.T) {
	s := NewFlicker(Params{Seed: 33})
	respond(t, s, false)
	respond(t, s, false)
	respond(t, s, false)
	if s.Adaptive().ExtendedBlock || s.TotalTrials() != 30 {
		t.Error("guided mode in an early block must not extend the session")
	}
}
