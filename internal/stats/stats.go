// Package stats computes aggregate metrics across stored assessments.
package stats

import (
	"sort"

	"github.com/peterachavez/focus-flicker-beta-f/internal/scoring"
)

// Summary holds aggregate metrics computed from stored assessments.
type Summary struct {
	TotalAssessments int
	TotalTrials      int

	AvgScore    float64
	BestScore   int
	WorstScore  int
	AvgResponse float64 // seconds

	GuidedRate   float64 // fraction of assessments where guided mode fired
	TrainingRate float64
	ExtendedRate float64

	Tasks   []TaskStats
	Monthly []MonthStats
}

// TaskStats holds per-task aggregate metrics.
type TaskStats struct {
	Task        scoring.Variant
	Assessments int
	AvgScore    float64
	BestScore   int
	AvgResponse float64
}

// MonthStats holds per-month aggregate metrics.
type MonthStats struct {
	Month       string // YYYY-MM
	Assessments int
	AvgScore    float64
}

// Compute builds a Summary from assessments, optionally filtered by task.
// An empty task keeps everything.
func Compute(sums []scoring.Summary, task scoring.Variant) Summary {
	var s Summary

	taskMap := make(map[scoring.Variant]*TaskStats)
	monthMap := make(map[string]*MonthStats)
	monthScores := make(map[string]int)

	var totalScore, guided, training, extended int
	var totalResponse float64

	for _, a := range sums {
		if task != "" && a.Task != task {
			continue
		}

		s.TotalAssessments++
		s.TotalTrials += a.TrialCount
		totalScore += a.Score
		totalResponse += a.MeanResponseSeconds

		if a.Score > s.BestScore {
			s.BestScore = a.Score
		}
		if s.TotalAssessments == 1 || a.Score < s.WorstScore {
			s.WorstScore = a.Score
		}
		if a.GuidedMode {
			guided++
		}
		if a.RuleTraining {
			training++
		}
		if a.ExtendedBlock {
			extended++
		}

		// Task breakdown
		ts, ok := taskMap[a.Task]
		if !ok {
			ts = &TaskStats{Task: a.Task}
			taskMap[a.Task] = ts
		}
		ts.Assessments++
		ts.AvgScore += float64(a.Score)
		ts.AvgResponse += a.MeanResponseSeconds
		if a.Score > ts.BestScore {
			ts.BestScore = a.Score
		}

		// Monthly breakdown
		month := a.CompletedAt.Format("2006-01")
		mm, ok := monthMap[month]
		if !ok {
			mm = &MonthStats{Month: month}
			monthMap[month] = mm
		}
		mm.Assessments++
		monthScores[month] += a.Score
	}

	if s.TotalAssessments > 0 {
		n := float64(s.TotalAssessments)
		s.AvgScore = float64(totalScore) / n
		s.AvgResponse = totalResponse / n
		s.GuidedRate = float64(guided) / n
		s.TrainingRate = float64(training) / n
		s.ExtendedRate = float64(extended) / n
	}

	// Task averages, sorted by assessment count desc
	for _, ts := range taskMap {
		n := float64(ts.Assessments)
		ts.AvgScore /= n
		ts.AvgResponse /= n
		s.Tasks = append(s.Tasks, *ts)
	}
	sort.Slice(s.Tasks, func(i, j int) bool {
		if s.Tasks[i].Assessments != s.Tasks[j].Assessments {
			return s.Tasks[i].Assessments > s.Tasks[j].Assessments
		}
		return s.Tasks[i].Task < s.Tasks[j].Task
	})

	// Months recent-first, cap at 6
	for month, mm := range monthMap {
		mm.AvgScore = float64(monthScores[month]) / float64(mm.Assessments)
		s.Monthly = append(s.Monthly, *mm)
	}
	sort.Slice(s.Monthly, func(i, j int) bool {
		return s.Monthly[i].Month > s.Monthly[j].Month
	})
	if len(s.Monthly) > 6 {
		s.Monthly = s.Monthly[:6]
	}

	return s
}
