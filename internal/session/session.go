// Package session owns the live state of one assessment run: the block
// schedule, the adaptive controller, and the trial recorder. The
// presentation layer drives it one trial at a time: Next, Respond,
// repeat, then Complete exactly once.
package session

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"

	"github.com/peterachavez/focus-flicker-beta-f/internal/record"
	"github.com/peterachavez/focus-flicker-beta-f/internal/scoring"
	"github.com/peterachavez/focus-flicker-beta-f/internal/staircase"
	"github.com/peterachavez/focus-flicker-beta-f/internal/stimulus"
	"github.com/peterachavez/focus-flicker-beta-f/internal/trial"
)

// Params configures a session. Zero values fall back to the standard
// protocol for the variant.
type Params struct {
	Blocks int

	// Match variant: per-block rule schedule, cycled if shorter than
	// Blocks.
	Rules []stimulus.Dimension

	// Flicker variant: probability a trial contains a change, and the
	// staircase bounds.
	ChangeProbability float64
	StartMs           int
	StepMs            int
	MinMs             int
	MaxMs             int

	// Seed pins the random stream; 0 seeds from the clock.
	Seed uint64
}

// Standard protocol defaults.
const (
	DefaultMatchBlocks   = 6
	DefaultFlickerBlocks = 5

	DefaultChangeProbability = 0.5
	DefaultStartMs           = 1000
	DefaultStepMs            = 100
	DefaultMinMs             = 100
	DefaultMaxMs             = 2000
)

// DefaultRules is the standard match-variant rule cycle.
var DefaultRules = []stimulus.Dimension{stimulus.DimColor, stimulus.DimShape, stimulus.DimCount}

// Session is the explicit state of one assessment run. It is owned by
// a single caller; nothing here is safe for concurrent use.
type Session struct {
	variant scoring.Variant
	rng     *rand.Rand
	stair   *staircase.Controller
	rec     *record.Recorder

	rules      []stimulus.Dimension
	changeProb float64

	nominalTrials int
	totalTrials   int

	pendingMatch   *trial.MatchTrial
	pendingFlicker *trial.FlickerTrial

	extended  bool
	completed bool
}

// NewMatch starts a match-variant ("Flex Sort") session.
func NewMatch(p Params) *Session {
	blocks := p.Blocks
	if blocks <= 0 {
		blocks = DefaultMatchBlocks
	}
	rules := p.Rules
	if len(rules) == 0 {
		rules = DefaultRules
	}
	n := blocks * record.TrialsPerBlock
	return &Session{
		variant:       scoring.VariantMatch,
		rng:           newRNG(p.Seed),
		stair:         staircase.NewMatch(),
		rec:           record.NewRecorder(),
		rules:         rules,
		nominalTrials: n,
		totalTrials:   n,
	}
}

// NewFlicker starts a change-detection ("Focus Flicker") session.
func NewFlicker(p Params) *Session {
	blocks := p.Blocks
	if blocks <= 0 {
		blocks = DefaultFlickerBlocks
	}
	prob := p.ChangeProbability
	if prob <= 0 || prob > 1 {
		prob = DefaultChangeProbability
	}
	start, step, min, max := p.StartMs, p.StepMs, p.MinMs, p.MaxMs
	if start <= 0 {
		start = DefaultStartMs
	}
	if step <= 0 {
		step = DefaultStepMs
	}
	if min <= 0 {
		min = DefaultMinMs
	}
	if max <= 0 {
		max = DefaultMaxMs
	}
	n := blocks * record.TrialsPerBlock
	return &Session{
		variant:       scoring.VariantFlicker,
		rng:           newRNG(p.Seed),
		stair:         staircase.New(start, step, min, max),
		rec:           record.NewRecorder(),
		changeProb:    prob,
		nominalTrials: n,
		totalTrials:   n,
	}
}

func newRNG(seed uint64) *rand.Rand {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

func (s *Session) Variant() scoring.Variant { return s.variant }

// Adaptive exposes the live adaptive state for progress banners.
func (s *Session) Adaptive() *staircase.Controller { return s.stair }

// Trial returns the 1-based number of the next trial to present.
func (s *Session) Trial() int { return s.rec.Len() + 1 }

// TotalTrials is the current session length, including any extended
// block already triggered.
func (s *Session) TotalTrials() int { return s.totalTrials }

// Done reports whether every scheduled trial has been responded to.
func (s *Session) Done() bool { return s.rec.Len() >= s.totalTrials }

// ruleFor cycles the rule schedule across blocks.
func (s *Session) ruleFor(block int) stimulus.Dimension {
	return s.rules[(block-1)%len(s.rules)]
}

// Next generates (or re-returns) the trial specification to present.
func (s *Session) Next() (trial.Spec, error) {
	if s.Done() {
		return nil, fmt.Errorf("session complete: no further trials")
	}
	block := record.BlockOf(s.Trial())

	if s.variant == scoring.VariantMatch {
		if s.pendingMatch == nil {
			tr := trial.GenerateMatch(s.rng, s.ruleFor(block), block)
			s.pendingMatch = &tr
		}
		return *s.pendingMatch, nil
	}

	if s.pendingFlicker == nil {
		hasChange := s.rng.Float64() < s.changeProb
		tr := trial.GenerateFlicker(s.rng, hasChange, block)
		s.pendingFlicker = &tr
	}
	return *s.pendingFlicker, nil
}

// Respond records the participant's answer to the pending trial and
// advances the adaptive state. For the match variant choice is the
// selected option index; for the flicker variant 1 reports a change
// and 0 reports none.
func (s *Session) Respond(choice int, seconds float64) (record.Record, error) {
	resp := record.Response{
		Choice:          choice,
		ResponseSeconds: seconds,
		Timestamp:       time.Now().UTC(),
	}

	switch {
	case s.pendingMatch != nil:
		resp.Rule = s.pendingMatch.Rule.String()
		resp.Correct = choice == s.pendingMatch.CorrectIndex
		s.pendingMatch = nil
	case s.pendingFlicker != nil:
		resp.Rule = record.LabelFlicker
		resp.ChangeOccurred = s.pendingFlicker.HasChange
		resp.Correct = (choice == 1) == s.pendingFlicker.HasChange
		s.pendingFlicker = nil
	default:
		return record.Record{}, fmt.Errorf("no pending trial: call Next first")
	}

	inFinalBlock := s.Trial() > s.totalTrials-record.TrialsPerBlock
	guidedBefore := s.stair.GuidedMode

	// The trial was presented at the pre-adjustment duration; record
	// that, not the value the staircase moves to for the next trial.
	resp.AdaptiveMs = s.stair.DurationMs
	s.stair.Record(resp.Correct)
	resp.ConsecutiveErrors = s.stair.ConsecutiveErrors()

	// Guided mode firing in the final block earns one extra block at
	// the same difficulty before the session can complete.
	if !guidedBefore && s.stair.GuidedMode && inFinalBlock && !s.extended {
		s.extended = true
		s.stair.ExtendedBlock = true
		s.totalTrials += record.TrialsPerBlock
	}

	return s.rec.Append(resp), nil
}

// Records returns a copy of the history so far.
func (s *Session) Records() []record.Record { return s.rec.All() }

// Complete scores the finished session. It can succeed at most once,
// and only after every scheduled trial has a response.
func (s *Session) Complete() (scoring.Summary, error) {
	if s.completed {
		return scoring.Summary{}, fmt.Errorf("session already completed")
	}
	if !s.Done() {
		return scoring.Summary{}, fmt.Errorf("session has %d of %d trials", s.rec.Len(), s.totalTrials)
	}

	sum, err := scoring.Summarize(s.variant, s.rec.All(), s.stair)
	if err != nil {
		return scoring.Summary{}, fmt.Errorf("score session: %w", err)
	}
	sum.AssessmentID = uuid.NewString()
	sum.CompletedAt = time.Now().UTC()
	s.completed = true
	return sum, nil
}
