// Package scoring derives the assessment summary from a completed
// trial history. It is the only place composite scores and rate
// metrics are computed; reports, exports, stats and trends all consume
// its output rather than re-deriving metrics.
package scoring

import (
	"fmt"
	"math"
	"time"

	"github.com/peterachavez/focus-flicker-beta-f/internal/record"
	"github.com/peterachavez/focus-flicker-beta-f/internal/staircase"
)

// Variant tags which task produced a summary.
type Variant string

const (
	VariantMatch   Variant = "flex-sort"
	VariantFlicker Variant = "focus-flicker"
)

// ParseVariant converts a task tag to a Variant.
func ParseVariant(s string) (Variant, error) {
	switch Variant(s) {
	case VariantMatch:
		return VariantMatch, nil
	case VariantFlicker:
		return VariantFlicker, nil
	default:
		return "", fmt.Errorf("unknown task variant %q", s)
	}
}

// Composite weights for the match-variant flexibility score. The
// perfect-run branch floors the score at 90.
const (
	perfectFloor = 90

	shiftWindow    = 3 // trials inspected at the start of each block
	shiftThreshold = 2 // correct trials required to count a shift
)

// Summary is the single result shape shared by both variants.
// Downstream consumers distinguish them only by Task.
type Summary struct {
	AssessmentID        string  `json:"assessmentId"`
	Task                Variant `json:"task"`
	Score               int     `json:"score"`            // 0-100 composite
	Adaptations         int     `json:"adaptations"`      // shifts achieved, or hits
	ErrorsOfInterest    int     `json:"errorsOfInterest"` // perseverative errors, or false alarms
	MeanResponseSeconds float64 `json:"meanResponseSeconds"`
	TrialCount          int     `json:"trialCount"`

	GuidedMode    bool `json:"guidedMode"`
	RuleTraining  bool `json:"ruleTraining"`
	ExtendedBlock bool `json:"extendedBlock"`

	CompletedAt time.Time       `json:"completedAt"`
	Trials      []record.Record `json:"trials"`

	// Match-variant detail.
	Accuracy         float64 `json:"accuracy,omitempty"`
	ShiftScore       float64 `json:"shiftScore,omitempty"`
	ErrorControl     float64 `json:"errorControl,omitempty"`
	DiscoveryLatency int     `json:"discoveryLatency,omitempty"`

	// Flicker-variant detail.
	HitRate         float64 `json:"hitRate,omitempty"`
	FalseAlarmRate  float64 `json:"falseAlarmRate,omitempty"`
	ThresholdScore  int     `json:"thresholdScore,omitempty"`
	FinalDurationMs int     `json:"finalDurationMs,omitempty"`
}

// Summarize scores a completed trial history. The history must be
// non-empty; summarizing an empty session is a caller bug, not a valid
// input.
func Summarize(variant Variant, recs []record.Record, st *staircase.Controller) (Summary, error) {
	if len(recs) == 0 {
		return Summary{}, fmt.Errorf("cannot summarize empty trial history")
	}

	sum := Summary{
		Task:                variant,
		TrialCount:          len(recs),
		MeanResponseSeconds: meanResponseTime(recs),
		GuidedMode:          st.GuidedMode,
		RuleTraining:        st.RuleTraining,
		ExtendedBlock:       st.ExtendedBlock,
		Trials:              append([]record.Record(nil), recs...),
	}

	switch variant {
	case VariantMatch:
		scoreMatch(&sum, recs)
	case VariantFlicker:
		scoreFlicker(&sum, recs, st)
	default:
		return Summary{}, fmt.Errorf("unknown task variant %q", variant)
	}

	return sum, nil
}

// scoreMatch fills the match-variant composite and detail metrics.
func scoreMatch(sum *Summary, recs []record.Record) {
	total := len(recs)
	correct := 0
	perseverative := 0
	for _, r := range recs {
		if r.Correct {
			correct++
		}
		if r.ErrorOfInterest {
			perseverative++
		}
	}

	accuracy := 100 * float64(correct) / float64(total)
	errorControl := 100 * (1 - float64(total-correct)/float64(total))

	shifts, transitions := countShifts(recs)
	shiftScore := 0.0
	if transitions > 0 {
		shiftScore = 100 * float64(shifts) / float64(transitions)
	}

	var flexibility float64
	if correct == total {
		flexibility = 0.6*accuracy + 0.3*shiftScore + 0.1*errorControl
		if flexibility < perfectFloor {
			flexibility = perfectFloor
		}
	} else {
		flexibility = 0.4*accuracy + 0.4*shiftScore + 0.2*errorControl
	}

	sum.Score = int(math.Round(flexibility))
	sum.Adaptations = shifts
	sum.ErrorsOfInterest = perseverative
	sum.Accuracy = accuracy
	sum.ShiftScore = shiftScore
	sum.ErrorControl = errorControl
	sum.DiscoveryLatency = record.DiscoveryLatency(recs)
}

// countShifts walks the block-to-block transitions and counts those
// where at least shiftThreshold of the destination block's first
// shiftWindow trials are correct.
func countShifts(recs []record.Record) (shifts, transitions int) {
	lastBlock := recs[len(recs)-1].Block
	for b := 2; b <= lastBlock; b++ {
		transitions++
		correct := 0
		for _, r := range recs {
			if r.Block == b && r.TrialInBlock <= shiftWindow && r.Correct {
				correct++
			}
		}
		if correct >= shiftThreshold {
			shifts++
		}
	}
	return shifts, transitions
}

// scoreFlicker fills the change-detection composite and detail metrics.
// Hit rate is computed over change trials only and false-alarm rate
// over no-change trials only; zero denominators yield 0.
func scoreFlicker(sum *Summary, recs []record.Record, st *staircase.Controller) {
	var changeTrials, hits, noChangeTrials, falseAlarms int
	for _, r := range recs {
		if r.ChangeOccurred {
			changeTrials++
			if r.Correct {
				hits++
			}
		} else {
			noChangeTrials++
			if !r.Correct {
				falseAlarms++
			}
		}
	}

	hitRate := ratio(hits, changeTrials)
	faRate := ratio(falseAlarms, noChangeTrials)

	threshold := 0
	if st.MaxMs > st.MinMs {
		threshold = int(math.Round(100 * float64(st.MaxMs-st.DurationMs) / float64(st.MaxMs-st.MinMs)))
	}

	attention := math.Round(100 * (0.5*float64(threshold)/100 + 0.3*hitRate + 0.2*(1-faRate)))

	sum.Score = int(attention)
	sum.Adaptations = hits
	sum.ErrorsOfInterest = falseAlarms
	sum.HitRate = hitRate
	sum.FalseAlarmRate = faRate
	sum.ThresholdScore = threshold
	sum.FinalDurationMs = st.DurationMs
}

func meanResponseTime(recs []record.Record) float64 {
	var total float64
	for _, r := range recs {
		total += r.ResponseSeconds
	}
	return total / float64(len(recs))
}

func ratio(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den)
}
