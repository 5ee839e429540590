// Package store persists completed assessments and their paywall
// access grants in an embedded sqlite database. One row per assessment,
// one row per trial, one grant row per purchase.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/peterachavez/focus-flicker-beta-f/internal/record"
	"github.com/peterachavez/focus-flicker-beta-f/internal/scoring"
)

// ErrNotFound is returned when an assessment ID has no stored row.
var ErrNotFound = errors.New("assessment not found")

// ErrExists is returned when saving an assessment ID already stored.
// Importers treat it as "skip", not failure.
var ErrExists = errors.New("assessment already stored")

const schema = `
CREATE TABLE IF NOT EXISTS assessments (
	id                    TEXT PRIMARY KEY,
	task                  TEXT NOT NULL,
	score                 INTEGER NOT NULL,
	adaptations           INTEGER NOT NULL,
	errors_of_interest    INTEGER NOT NULL,
	mean_response_seconds REAL NOT NULL,
	guided_mode           INTEGER NOT NULL,
	rule_training         INTEGER NOT NULL,
	extended_block        INTEGER NOT NULL,
	accuracy              REAL NOT NULL DEFAULT 0,
	shift_score           REAL NOT NULL DEFAULT 0,
	error_control         REAL NOT NULL DEFAULT 0,
	discovery_latency     INTEGER NOT NULL DEFAULT 0,
	hit_rate              REAL NOT NULL DEFAULT 0,
	false_alarm_rate      REAL NOT NULL DEFAULT 0,
	threshold_score       INTEGER NOT NULL DEFAULT 0,
	final_duration_ms     INTEGER NOT NULL DEFAULT 0,
	completed_at          TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS trials (
	assessment_id      TEXT NOT NULL REFERENCES assessments(id),
	trial              INTEGER NOT NULL,
	block              INTEGER NOT NULL,
	trial_in_block     INTEGER NOT NULL,
	rule               TEXT NOT NULL,
	change_occurred    INTEGER NOT NULL,
	choice             INTEGER NOT NULL,
	correct            INTEGER NOT NULL,
	response_seconds   REAL NOT NULL,
	error_of_interest  INTEGER NOT NULL,
	rule_switch        INTEGER NOT NULL,
	consecutive_errors INTEGER NOT NULL,
	adaptive_ms        INTEGER NOT NULL,
	adaptation_errors  INTEGER NOT NULL,
	timestamp          TEXT NOT NULL,
	PRIMARY KEY (assessment_id, trial)
);

CREATE TABLE IF NOT EXISTS grants (
	assessment_id TEXT PRIMARY KEY REFERENCES assessments(id),
	tier          TEXT NOT NULL,
	reference     TEXT NOT NULL DEFAULT '',
	granted_at    TEXT NOT NULL
);
`

// Store wraps the sqlite database.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path and ensures the
// schema exists.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Has reports whether an assessment is already stored.
func (s *Store) Has(id string) (bool, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(1) FROM assessments WHERE id = ?`, id).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("query assessment: %w", err)
	}
	return n > 0, nil
}

// Save stores one completed assessment and its trial rows. Saving the
// same assessment twice returns ErrExists.
func (s *Store) Save(sum scoring.Summary) error {
	if sum.AssessmentID == "" {
		return fmt.Errorf("summary has no assessment ID")
	}
	exists, err := s.Has(sum.AssessmentID)
	if err != nil {
		return err
	}
	if exists {
		return ErrExists
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`INSERT INTO assessments (
		id, task, score, adaptations, errors_of_interest, mean_response_seconds,
		guided_mode, rule_training, extended_block,
		accuracy, shift_score, error_control, discovery_latency,
		hit_rate, false_alarm_rate, threshold_score, final_duration_ms,
		completed_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sum.AssessmentID, string(sum.Task), sum.Score, sum.Adaptations,
		sum.ErrorsOfInterest, sum.MeanResponseSeconds,
		sum.GuidedMode, sum.RuleTraining, sum.ExtendedBlock,
		sum.Accuracy, sum.ShiftScore, sum.ErrorControl, sum.DiscoveryLatency,
		sum.HitRate, sum.FalseAlarmRate, sum.ThresholdScore, sum.FinalDurationMs,
		sum.CompletedAt.Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("insert assessment: %w", err)
	}

	insert, err := tx.Prepare(`INSERT INTO trials (
		assessment_id, trial, block, trial_in_block, rule,
		change_occurred, choice, correct, response_seconds,
		error_of_interest, rule_switch, consecutive_errors,
		adaptive_ms, adaptation_errors, timestamp
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare trial insert: %w", err)
	}
	defer insert.Close()

	for _, r := range sum.Trials {
		_, err := insert.Exec(sum.AssessmentID, r.Trial, r.Block, r.TrialInBlock,
			r.Rule, r.ChangeOccurred, r.Choice, r.Correct, r.ResponseSeconds,
			r.ErrorOfInterest, r.RuleSwitch, r.ConsecutiveErrors,
			r.AdaptiveMs, r.AdaptationErrors, r.Timestamp.Format(time.RFC3339Nano))
		if err != nil {
			return fmt.Errorf("insert trial %d: %w", r.Trial, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Get loads one assessment with its full trial history.
func (s *Store) Get(id string) (scoring.Summary, error) {
	row := s.db.QueryRow(`SELECT
		id, task, score, adaptations, errors_of_interest, mean_response_seconds,
		guided_mode, rule_training, extended_block,
		accuracy, shift_score, error_control, discovery_latency,
		hit_rate, false_alarm_rate, threshold_score, final_duration_ms,
		(SELECT COUNT(*) FROM trials WHERE trials.assessment_id = assessments.id),
		completed_at
	FROM assessments WHERE id = ?`, id)

	sum, err := scanSummary(row)
	if err == sql.ErrNoRows {
		return scoring.Summary{}, ErrNotFound
	}
	if err != nil {
		return scoring.Summary{}, fmt.Errorf("load assessment: %w", err)
	}

	rows, err := s.db.Query(`SELECT
		trial, block, trial_in_block, rule, change_occurred, choice, correct,
		response_seconds, error_of_interest, rule_switch, consecutive_errors,
		adaptive_ms, adaptation_errors, timestamp
	FROM trials WHERE assessment_id = ? ORDER BY trial`, id)
	if err != nil {
		return scoring.Summary{}, fmt.Errorf("load trials: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var r record.Record
		var ts string
		err := rows.Scan(&r.Trial, &r.Block, &r.TrialInBlock, &r.Rule,
			&r.ChangeOccurred, &r.Choice, &r.Correct, &r.ResponseSeconds,
			&r.ErrorOfInterest, &r.RuleSwitch, &r.ConsecutiveErrors,
			&r.AdaptiveMs, &r.AdaptationErrors, &ts)
		if err != nil {
			return scoring.Summary{}, fmt.Errorf("scan trial: %w", err)
		}
		r.Timestamp, _ = time.Parse(time.RFC3339Nano, ts)
		sum.Trials = append(sum.Trials, r)
	}
	if err := rows.Err(); err != nil {
		return scoring.Summary{}, fmt.Errorf("iterate trials: %w", err)
	}

	return sum, nil
}

// List returns all stored assessments, newest first. Trial histories
// are left unloaded; only their counts are filled in.
func (s *Store) List() ([]scoring.Summary, error) {
	rows, err := s.db.Query(`SELECT
		id, task, score, adaptations, errors_of_interest, mean_response_seconds,
		guided_mode, rule_training, extended_block,
		accuracy, shift_score, error_control, discovery_latency,
		hit_rate, false_alarm_rate, threshold_score, final_duration_ms,
		(SELECT COUNT(*) FROM trials WHERE trials.assessment_id = assessments.id),
		completed_at
	FROM assessments ORDER BY completed_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list assessments: %w", err)
	}
	defer rows.Close()

	var out []scoring.Summary
	for rows.Next() {
		sum, err := scanSummary(rows)
		if err != nil {
			return nil, fmt.Errorf("scan assessment: %w", err)
		}
		out = append(out, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate assessments: %w", err)
	}
	return out, nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanSummary(row scanner) (scoring.Summary, error) {
	var sum scoring.Summary
	var task, completed string
	err := row.Scan(&sum.AssessmentID, &task, &sum.Score, &sum.Adaptations,
		&sum.ErrorsOfInterest, &sum.MeanResponseSeconds,
		&sum.GuidedMode, &sum.RuleTraining, &sum.ExtendedBlock,
		&sum.Accuracy, &sum.ShiftScore, &sum.ErrorControl, &sum.DiscoveryLatency,
		&sum.HitRate, &sum.FalseAlarmRate, &sum.ThresholdScore, &sum.FinalDurationMs,
		&sum.TrialCount, &completed)
	if err != nil {
		return scoring.Summary{}, err
	}
	sum.Task = scoring.Variant(task)
	sum.CompletedAt, _ = time.Parse(time.RFC3339Nano, completed)
	return sum, nil
}

// SetGrant records (or upgrades) the access tier purchased for an
// assessment. The assessment must already be stored.
func (s *Store) SetGrant(id, tier, reference string) error {
	exists, err := s.Has(id)
	if err != nil {
		return err
	}
	if !exists {
		return ErrNotFound
	}

	_, err = s.db.Exec(`INSERT INTO grants (assessment_id, tier, reference, granted_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(assessment_id) DO UPDATE SET
			tier = excluded.tier,
			reference = excluded.reference,
			granted_at = excluded.granted_at`,
		id, tier, reference, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("set grant: %w", err)
	}
	return nil
}

// TierFor returns the granted tier for an assessment, or "free" when
// no grant exists.
func (s *Store) TierFor(id string) (string, error) {
	var tier string
	err := s.db.QueryRow(`SELECT tier FROM grants WHERE assessment_id = ?`, id).Scan(&tier)
	if err == sql.ErrNoRows {
		return "free", nil
	}
	if err != nil {
		return "", fmt.Errorf("query grant: %w", err)
	}
	return tier, nil
}
