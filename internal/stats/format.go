package stats

import (
	"fmt"
	"strings"

	"github.com/peterachavez/focus-flicker-beta-f/internal/scoring"
)

// Format renders a Summary as aligned terminal output.
func Format(s Summary, task scoring.Variant) string {
	if s.TotalAssessments == 0 {
		if task != "" {
			return fmt.Sprintf("flicker stats --task %s\n\n  No assessments found for task %q.\n", task, task)
		}
		return "flicker stats\n\n  No assessments found. Run `flicker run` or `flicker import` first.\n"
	}

	var b strings.Builder

	if task != "" {
		fmt.Fprintf(&b, "flicker stats --task %s\n", task)
	} else {
		b.WriteString("flicker stats\n")
	}

	// Overview
	b.WriteString("\nOverview\n")
	fmt.Fprintf(&b, "  %-20s %d\n", "assessments", s.TotalAssessments)
	fmt.Fprintf(&b, "  %-20s %d\n", "trials recorded", s.TotalTrials)
	fmt.Fprintf(&b, "  %-20s %.1f\n", "average score", s.AvgScore)
	fmt.Fprintf(&b, "  %-20s %d / %d\n", "best / worst", s.BestScore, s.WorstScore)
	fmt.Fprintf(&b, "  %-20s %.2fs\n", "mean response", s.AvgResponse)

	// Adaptive Support
	b.WriteString("\nAdaptive Support\n")
	fmt.Fprintf(&b, "  %-20s %d%%\n", "guided mode", int(s.GuidedRate*100+0.5))
	fmt.Fprintf(&b, "  %-20s %d%%\n", "rule training", int(s.TrainingRate*100+0.5))
	fmt.Fprintf(&b, "  %-20s %d%%\n", "extended blocks", int(s.ExtendedRate*100+0.5))

	// Tasks (omit when filtered)
	if task == "" && len(s.Tasks) > 0 {
		b.WriteString("\nTasks\n")
		for _, t := range s.Tasks {
			fmt.Fprintf(&b, "  %-16s %3d assessments   avg %5.1f   best %3d   %.2fs\n",
				t.Task, t.Assessments, t.AvgScore, t.BestScore, t.AvgResponse)
		}
	}

	// Monthly Trend
	if len(s.Monthly) > 0 {
		b.WriteString("\nMonthly Trend\n")
		for _, m := range s.Monthly {
			fmt.Fprintf(&b, "  %-12s %3d assessments   avg %.1f\n", m.Month, m.Assessments, m.AvgScore)
		}
	}

	return b.String()
}
