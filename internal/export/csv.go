// Package export renders completed assessments into flat files: one
// CSV row per trial record, and zstd archives of the raw session
// exports.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/peterachavez/focus-flicker-beta-f/internal/scoring"
)

var csvHeader = []string{
	"assessment_id", "task", "trial", "block", "trial_in_block", "rule",
	"change_occurred", "choice", "correct", "response_seconds",
	"error_of_interest", "rule_switch", "consecutive_errors",
	"adaptive_ms", "adaptation_errors", "block_accuracy", "timestamp",
}

// WriteCSV writes one row per trial record. For the flicker variant
// the block_accuracy column carries each trial's block-level accuracy;
// for the match variant it is left empty.
func WriteCSV(w io.Writer, sum scoring.Summary) error {
	if len(sum.Trials) == 0 {
		return fmt.Errorf("assessment %s has no trial history to export", sum.AssessmentID)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	blockAcc := blockAccuracy(sum)

	for _, r := range sum.Trials {
		acc := ""
		if sum.Task == scoring.VariantFlicker {
			acc = strconv.FormatFloat(blockAcc[r.Block], 'f', 3, 64)
		}
		row := []string{
			sum.AssessmentID,
			string(sum.Task),
			strconv.Itoa(r.Trial),
			strconv.Itoa(r.Block),
			strconv.Itoa(r.TrialInBlock),
			r.Rule,
			strconv.FormatBool(r.ChangeOccurred),
			strconv.Itoa(r.Choice),
			strconv.FormatBool(r.Correct),
			strconv.FormatFloat(r.ResponseSeconds, 'f', 3, 64),
			strconv.FormatBool(r.ErrorOfInterest),
			strconv.FormatBool(r.RuleSwitch),
			strconv.Itoa(r.ConsecutiveErrors),
			strconv.Itoa(r.AdaptiveMs),
			strconv.Itoa(r.AdaptationErrors),
			acc,
			r.Timestamp.UTC().Format(time.RFC3339),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write trial %d: %w", r.Trial, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

// blockAccuracy computes per-block accuracy from the trial history.
func blockAccuracy(sum scoring.Summary) map[int]float64 {
	totals := make(map[int]int)
	correct := make(map[int]int)
	for _, r := range sum.Trials {
		totals[r.Block]++
		if r.Correct {
			correct[r.Block]++
		}
	}
	out := make(map[int]float64, len(totals))
	for b, n := range totals {
		out[b] = float64(correct[b]) / float64(n)
	}
	return out
}
