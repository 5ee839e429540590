// Package staircase implements the adaptive difficulty controller:
// a 1-up/1-down duration staircase for the flicker variant, streak
// tracking for practice confirmation in the match variant, and the
// consecutive-error triggers shared by both.
package staircase

// Trigger thresholds on the consecutive-error counter. The counter
// resets when a trigger fires; both flags are monotonic once set.
const (
	guidedModeErrors = 3
	// After guided mode has fired and the counter reset, two further
	// consecutive errors make five in a row total.
	ruleTrainingErrors = 2

	practiceStreak = 3
)

// Controller holds the adaptive state for one session. A zero StepMs
// disables the duration staircase (match variant); the trigger counters
// run in both variants.
type Controller struct {
	DurationMs int
	StepMs     int
	MinMs      int
	MaxMs      int

	GuidedMode       bool
	RuleTraining     bool
	PatternConfirmed bool

	// ExtendedBlock is set by the session loop when guided mode fires
	// during the final block and an extra block is appended.
	ExtendedBlock bool

	consecutiveErrors  int
	consecutiveCorrect int
}

// New returns a controller for the flicker staircase.
func New(startMs, stepMs, minMs, maxMs int) *Controller {
	c := &Controller{
		DurationMs: startMs,
		StepMs:     stepMs,
		MinMs:      minMs,
		MaxMs:      maxMs,
	}
	c.DurationMs = clamp(c.DurationMs, minMs, maxMs)
	return c
}

// NewMatch returns a controller for the match variant: no duration
// staircase, trigger counters only.
func NewMatch() *Controller {
	return &Controller{}
}

// Record updates the adaptive state for one response. Correct responses
// shorten the flicker duration (harder), incorrect ones lengthen it
// (easier), saturating at the min/max bounds.
func (c *Controller) Record(correct bool) {
	if correct {
		c.consecutiveCorrect++
		c.consecutiveErrors = 0
		if c.consecutiveCorrect >= practiceStreak {
			c.PatternConfirmed = true
		}
		if c.StepMs > 0 {
			c.DurationMs = clamp(c.DurationMs-c.StepMs, c.MinMs, c.MaxMs)
		}
		return
	}

	c.consecutiveCorrect = 0
	c.consecutiveErrors++
	if c.StepMs > 0 {
		c.DurationMs = clamp(c.DurationMs+c.StepMs, c.MinMs, c.MaxMs)
	}

	switch {
	case !c.GuidedMode && c.consecutiveErrors >= guidedModeErrors:
		c.GuidedMode = true
		c.consecutiveErrors = 0
	case c.GuidedMode && !c.RuleTraining && c.consecutiveErrors >= ruleTrainingErrors:
		c.RuleTraining = true
		c.consecutiveErrors = 0
	}
}

// ConsecutiveErrors exposes the running error streak, as recorded on
// each trial.
func (c *Controller) ConsecutiveErrors() int { return c.consecutiveErrors }

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
