package trends

import (
	"fmt"
	"strings"
)

// Format renders a Result as aligned terminal output.
func Format(r Result) string {
	if r.TotalAssessments == 0 {
		if r.Task != "" {
			return fmt.Sprintf("flicker trends --task %s\n\n  No assessments found for task %q.\n", r.Task, r.Task)
		}
		return "flicker trends\n\n  No assessments found. Run `flicker run` or `flicker import` first.\n"
	}

	var b strings.Builder

	if r.Task != "" {
		fmt.Fprintf(&b, "flicker trends --task %s\n", r.Task)
	} else {
		b.WriteString("flicker trends\n")
	}

	// Overview
	fmt.Fprintf(&b, "\nOverview (%d assessments, %d weeks)\n", r.TotalAssessments, r.TotalWeeks)
	for _, m := range r.Metrics {
		arrow := deltaArrow(m.DeltaPct, m.Direction)
		detail := ""
		if m.Direction != "stable" && m.DeltaPct != 0 {
			detail = fmt.Sprintf(" (%+.0f%%)", m.DeltaPct)
		}
		avgStr := formatMetricValue(m.Name, m.OverallAvg)
		fmt.Fprintf(&b, "  %-16s %8s avg  %s %s%s\n", m.Name, avgStr, arrow, m.Direction, detail)
	}

	// Per-metric week tables
	for _, m := range r.Metrics {
		if len(m.Points) == 0 {
			continue
		}
		fmt.Fprintf(&b, "\n%s\n", metricTitle(m.Name))
		fmt.Fprintf(&b, "  %-10s %8s %8s\n", "Week", "Value", "Avg")
		for _, p := range m.Points {
			valStr := formatMetricValue(m.Name, p.Value)
			avgStr := ""
			if p.RollingAvg > 0 {
				avgStr = formatMetricValue(m.Name, p.RollingAvg)
			}
			marker := ""
			if p.Anomaly {
				if p.RollingAvg > 0 && p.Value > p.RollingAvg {
					marker = "  ^ spike"
				} else {
					marker = "  v dip"
				}
			}
			fmt.Fprintf(&b, "  %-10s %8s %8s%s\n", p.WeekLabel, valStr, avgStr, marker)
		}
	}

	// Anomalies section
	var anomalies []string
	for _, m := range r.Metrics {
		for _, p := range m.Points {
			if p.Anomaly {
				kind := "spike"
				if p.RollingAvg > 0 && p.Value < p.RollingAvg {
					kind = "dip"
				}
				avgStr := formatMetricValue(m.Name, p.RollingAvg)
				valStr := formatMetricValue(m.Name, p.Value)
				anomalies = append(anomalies, fmt.Sprintf("  %-10s %-14s %s (avg %s)  %s",
					p.WeekLabel, m.Name, valStr, avgStr, kind))
			}
		}
	}
	if len(anomalies) > 0 {
		b.WriteString("\nAnomalies\n")
		for _, a := range anomalies {
			b.WriteString(a)
			b.WriteByte('\n')
		}
	}

	return b.String()
}

// deltaArrow shows which way the raw value moved, independent of
// whether that movement is good for the metric.
func deltaArrow(deltaPct float64, dir string) string {
	if dir == "stable" {
		return "→"
	}
	if deltaPct > 0 {
		return "↑"
	}
	return "↓"
}

func metricTitle(name string) string {
	switch name {
	case "score":
		return "Composite Score"
	case "response time":
		return "Mean Response Time (seconds)"
	case "errors":
		return "Errors of Interest"
	default:
		return name
	}
}

func formatMetricValue(metric string, val float64) string {
	switch metric {
	case "response time":
		return fmt.Sprintf("%.2fs", val)
	case "errors":
		return fmt.Sprintf("%.1f", val)
	default:
		return fmt.Sprintf("%d", int(val+0.5))
	}
}
