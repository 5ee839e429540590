package staircase

import "testing"

func TestRecord_CorrectDrivesTowardMin(t *testing.T) {
	c := New(1000, 100, 100, 2000)
	for i := 0; i < 20; i++ {
		c.Record(true)
	}
	if c.DurationMs != 100 {
		t.Errorf("expected saturation at 100, got %d", c.DurationMs)
	}
}

func TestRecord_IncorrectDrivesTowardMax(t *testing.T) {
	c := New(1000, 100, 100, 2000)
	for i := 0; i < 20; i++ {
		c.Record(false)
	}
	if c.DurationMs != 2000 {
		t.Errorf("expected saturation at 2000, got %d", c.DurationMs)
	}
}

func TestRecord_Monotonic(t *testing.T) {
	c := New(1000, 100, 100, 2000)
	prev := c.DurationMs
	for i := 0; i < 15; i++ {
		c.Record(true)
		if c.DurationMs > prev {
			t.Fatalf("duration rose on correct response: %d -> %d", prev, c.DurationMs)
		}
		prev = c.DurationMs
	}
	for i := 0; i < 15; i++ {
		c.Record(false)
		if c.DurationMs < prev {
			t.Fatalf("duration fell on incorrect response: %d -> %d", prev, c.DurationMs)
		}
		prev = c.DurationMs
	}
}

func TestRecord_StepIsConstant(t *testing.T) {
	c := New(1000, 150, 100, 2000)
	c.Record(false)
	if c.DurationMs != 1150 {
		t.Errorf("expected 1150, got %d", c.DurationMs)
	}
	c.Record(true)
	if c.DurationMs != 1000 {
		t.Errorf("expected 1000, got %d", c.DurationMs)
	}
}

func TestGuidedMode_ThreeConsecutiveErrors(t *testing.T) {
	c := New(1000, 100, 100, 2000)
	c.Record(false)
	c.Record(false)
	if c.GuidedMode {
		t.Fatal("guided mode fired early")
	}
	c.Record(false)
	if !c.GuidedMode {
		t.Fatal("guided mode not set after 3 consecutive errors")
	}
	if c.ConsecutiveErrors() != 0 {
		t.Errorf("counter should reset after trigger, got %d", c.ConsecutiveErrors())
	}
}

func TestGuidedMode_CorrectBreaksStreak(t *testing.T) {
	c := New(1000, 100, 100, 2000)
	c.Record(false)
	c.Record(false)
	c.Record(true)
	c.Record(false)
	c.Record(false)
	if c.GuidedMode {
		t.Error("guided mode fired without 3 consecutive errors")
	}
}

func TestRuleTraining_FiveConsecutiveErrors(t *testing.T) {
	c := NewMatch()
	for i := 0; i < 4; i++ {
		c.Record(false)
	}
	if c.RuleTraining {
		t.Fatal("rule training fired early")
	}
	c.Record(false)
	if !c.RuleTraining {
		t.Fatal("rule training not set after 5 consecutive errors")
	}
	if !c.GuidedMode {
		t.Error("guided mode should also be set")
	}
}

func TestTriggers_Monotonic(t *testing.T) {
	c := NewMatch()
	for i := 0; i < 5; i++ {
		c.Record(false)
	}
	for i := 0; i < 10; i++ {
		c.Record(true)
	}
	if !c.GuidedMode || !c.RuleTraining {
		t.Error("trigger flags cleared by later correct responses")
	}
}

func TestPatternConfirmed_ThreeConsecutiveCorrect(t *testing.T) {
	c := NewMatch()
	c.Record(true)
	c.Record(true)
	if c.PatternConfirmed {
		t.Fatal("pattern confirmed early")
	}
	c.Record(true)
	if !c.PatternConfirmed {
		t.Fatal("pattern not confirmed after 3 consecutive correct")
	}
}

func TestNewMatch_NoStaircase(t *testing.T) {
	c := NewMatch()
	c.Record(true)
	c.Record(false)
	if c.DurationMs != 0 {
		t.Errorf("match controller should not move a duration, got %d", c.DurationMs)
	}
}

func TestNew_ClampsStart(t *testing.T) {
	c := New(5000, 100, 100, 2000)
	if c.DurationMs != 2000 {
		t.Errorf("start value not clamped: %d", c.DurationMs)
	}
}
