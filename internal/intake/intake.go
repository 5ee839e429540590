// Package intake parses session export files produced by the web
// client: one JSONL file per completed session, a header line followed
// by one line per trial. Client-computed scores are never trusted; the
// parsed trial history is re-scored through the scoring engine.
package intake

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/peterachavez/focus-flicker-beta-f/internal/record"
	"github.com/peterachavez/focus-flicker-beta-f/internal/scoring"
	"github.com/peterachavez/focus-flicker-beta-f/internal/staircase"
)

// Header is the first line of a session export file.
type Header struct {
	AssessmentID string    `json:"assessmentId"`
	Task         string    `json:"task"`
	StartedAt    time.Time `json:"startedAt"`

	// Staircase parameters the client ran with. Required for the
	// flicker variant; ignored for the match variant.
	StartMs int `json:"startMs,omitempty"`
	StepMs  int `json:"stepMs,omitempty"`
	MinMs   int `json:"minMs,omitempty"`
	MaxMs   int `json:"maxMs,omitempty"`

	// Nominal session length before any extended block.
	Blocks int `json:"blocks"`
}

// Session is a parsed and validated export file.
type Session struct {
	Header Header
	Trials []record.Record
}

// ParseFile reads a session export file from disk.
func ParseFile(path string) (*Session, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open session file: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse reads a session export from a reader and validates the trial
// sequence: contiguous 1-based trial numbers with block membership
// agreeing with the fixed block size.
func Parse(r io.Reader) (*Session, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	var header *Header
	var trials []record.Record

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if header == nil {
			var h Header
			if err := json.Unmarshal([]byte(line), &h); err != nil {
				return nil, fmt.Errorf("parse header: %w", err)
			}
			header = &h
			continue
		}

		var rec record.Record
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			return nil, fmt.Errorf("parse trial line %d: %w", len(trials)+2, err)
		}
		trials = append(trials, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan session file: %w", err)
	}

	if header == nil {
		return nil, fmt.Errorf("empty session file")
	}
	if header.AssessmentID == "" {
		return nil, fmt.Errorf("header missing assessmentId")
	}
	if _, err := scoring.ParseVariant(header.Task); err != nil {
		return nil, err
	}
	if len(trials) == 0 {
		return nil, fmt.Errorf("session file has no trials")
	}

	for i, tr := range trials {
		if tr.Trial != i+1 {
			return nil, fmt.Errorf("trial sequence gap: line %d has trial %d, want %d", i+2, tr.Trial, i+1)
		}
		if tr.Block != record.BlockOf(tr.Trial) {
			return nil, fmt.Errorf("trial %d: block %d disagrees with block size", tr.Trial, tr.Block)
		}
	}

	return &Session{Header: *header, Trials: trials}, nil
}

// Score replays the adaptive controller over the trial history and
// summarizes it. The replayed staircase, not any value the client
// reports, determines the final threshold and the trigger flags.
func (s *Session) Score() (scoring.Summary, error) {
	variant, err := scoring.ParseVariant(s.Header.Task)
	if err != nil {
		return scoring.Summary{}, err
	}

	var st *staircase.Controller
	if variant == scoring.VariantFlicker {
		start, step, min, max := s.Header.StartMs, s.Header.StepMs, s.Header.MinMs, s.Header.MaxMs
		if min <= 0 || max <= min || step <= 0 {
			return scoring.Summary{}, fmt.Errorf("header has invalid staircase bounds %d/%d step %d", min, max, step)
		}
		if start <= 0 {
			start = (min + max) / 2
		}
		st = staircase.New(start, step, min, max)
	} else {
		st = staircase.NewMatch()
	}

	// Rebuild the history through the recorder so every derived field
	// (error flags, rule switches, adaptation counts, staircase values)
	// is the engine's own derivation, not the client's.
	rec := record.NewRecorder()
	for _, tr := range s.Trials {
		presentedMs := st.DurationMs
		st.Record(tr.Correct)
		rec.Append(record.Response{
			Rule:              tr.Rule,
			ChangeOccurred:    tr.ChangeOccurred,
			Choice:            tr.Choice,
			Correct:           tr.Correct,
			ResponseSeconds:   tr.ResponseSeconds,
			AdaptiveMs:        presentedMs,
			ConsecutiveErrors: st.ConsecutiveErrors(),
			Timestamp:         tr.Timestamp,
		})
	}

	if s.Header.Blocks > 0 && len(s.Trials) > s.Header.Blocks*record.TrialsPerBlock {
		st.ExtendedBlock = true
	}

	sum, err := scoring.Summarize(variant, rec.All(), st)
	if err != nil {
		return scoring.Summary{}, fmt.Errorf("score imported session: %w", err)
	}
	sum.AssessmentID = s.Header.AssessmentID
	sum.CompletedAt = s.Trials[len(s.Trials)-1].Timestamp
	if sum.CompletedAt.IsZero() {
		sum.CompletedAt = time.Now().UTC()
	}
	return sum, nil
}
