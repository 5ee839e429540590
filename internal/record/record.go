// Package record accumulates the per-trial history of a session. The
// ordered record sequence is the session's ground truth: append-only
// while the session runs, read-only for scoring and export afterward.
package record

import "time"

// TrialsPerBlock is the fixed block size shared by both task variants.
const TrialsPerBlock = 6

// Rule labels. Match-variant trials carry the ruled dimension name;
// flicker-variant trials all carry LabelFlicker.
const LabelFlicker = "flicker"

// BlockOf maps a 1-based trial number to its 1-based block index. This
// is the only place block arithmetic lives; scoring and export both go
// through it.
func BlockOf(trialNumber int) int {
	return (trialNumber-1)/TrialsPerBlock + 1
}

// TrialInBlock maps a 1-based trial number to its 1-based position
// within its block.
func TrialInBlock(trialNumber int) int {
	return (trialNumber-1)%TrialsPerBlock + 1
}

// Record is one completed trial. Field names double as the JSON schema
// of session export files.
type Record struct {
	Trial        int    `json:"trial"`        // 1-based presentation order
	Block        int    `json:"block"`        // derived via BlockOf
	TrialInBlock int    `json:"trialInBlock"`
	Rule         string `json:"rule"` // matching dimension, or "flicker"

	ChangeOccurred  bool    `json:"changeOccurred"` // flicker variant only
	Choice          int     `json:"choice"`
	Correct         bool    `json:"correct"`
	ResponseSeconds float64 `json:"responseSeconds"`

	// ErrorOfInterest marks perseverative errors (match) or false
	// alarms (flicker).
	ErrorOfInterest bool `json:"errorOfInterest"`

	RuleSwitch        bool `json:"ruleSwitch"`
	ConsecutiveErrors int  `json:"consecutiveErrors"`
	AdaptiveMs        int  `json:"adaptiveMs"`

	// AdaptationErrors is the error count within the current block up
	// to and including this trial. Meaningful only for blocks after
	// the first; zero otherwise.
	AdaptationErrors int `json:"adaptationErrors,omitempty"`

	Timestamp time.Time `json:"timestamp"`
}

// Response is the raw outcome of one trial, before derivation.
type Response struct {
	Rule              string
	ChangeOccurred    bool
	Choice            int
	Correct           bool
	ResponseSeconds   float64
	AdaptiveMs        int
	ConsecutiveErrors int
	Timestamp         time.Time
}

// Recorder accumulates trial records in presentation order.
type Recorder struct {
	records     []Record
	blockErrors map[int]int
}

func NewRecorder() *Recorder {
	return &Recorder{blockErrors: make(map[int]int)}
}

// Append derives the record for one response and stores it. Trial
// number, block membership, rule-switch and error flags, and the
// adaptation-error count are all computed here.
func (r *Recorder) Append(resp Response) Record {
	n := len(r.records) + 1
	rec := Record{
		Trial:             n,
		Block:             BlockOf(n),
		TrialInBlock:      TrialInBlock(n),
		Rule:              resp.Rule,
		ChangeOccurred:    resp.ChangeOccurred,
		Choice:            resp.Choice,
		Correct:           resp.Correct,
		ResponseSeconds:   resp.ResponseSeconds,
		AdaptiveMs:        resp.AdaptiveMs,
		ConsecutiveErrors: resp.ConsecutiveErrors,
		Timestamp:         resp.Timestamp,
	}

	if len(r.records) > 0 {
		rec.RuleSwitch = r.records[len(r.records)-1].Rule != resp.Rule
	}

	if !resp.Correct {
		if resp.Rule == LabelFlicker {
			// False alarm: reported a change on a no-change trial.
			rec.ErrorOfInterest = !resp.ChangeOccurred
		} else {
			// Perseverative: an error in a post-switch block where at
			// least one error has already occurred.
			rec.ErrorOfInterest = rec.Block > 1 && r.blockErrors[rec.Block] >= 1
		}
		r.blockErrors[rec.Block]++
	}

	if rec.Block > 1 {
		rec.AdaptationErrors = r.blockErrors[rec.Block]
	}

	r.records = append(r.records, rec)
	return rec
}

// All returns a copy of the full record sequence. Callers cannot mutate
// the stored history through it.
func (r *Recorder) All() []Record {
	out := make([]Record, len(r.records))
	copy(out, r.records)
	return out
}

func (r *Recorder) Len() int { return len(r.records) }

// DiscoveryLatency returns the 1-based index of the first correct trial
// within the first block, or 0 if the rule was never discovered there.
// Shared by the live recorder and post-hoc scoring.
func DiscoveryLatency(recs []Record) int {
	for _, rec := range recs {
		if rec.Block != 1 {
			break
		}
		if rec.Correct {
			return rec.Trial
		}
	}
	return 0
}
