package report

import (
	"fmt"
	"strings"

	"github.com/peterachavez/focus-flicker-beta-f/internal/scoring"
)

// Markdown renders the gated report as a markdown document with YAML
// frontmatter, suitable for note vaults and for feeding the PDF
// pipeline.
func Markdown(sum scoring.Summary, tier Tier) string {
	var b strings.Builder

	// Frontmatter
	b.WriteString("---\n")
	b.WriteString(fmt.Sprintf("date: %s\n", sum.CompletedAt.Format("2006-01-02")))
	b.WriteString("type: assessment\n")
	b.WriteString(fmt.Sprintf("task: %s\n", sum.Task))
	b.WriteString(fmt.Sprintf("assessment_id: \"%s\"\n", sum.AssessmentID))
	b.WriteString(fmt.Sprintf("score: %d\n", sum.Score))
	b.WriteString(fmt.Sprintf("tier: %s\n", tier))
	b.WriteString("---\n\n")

	blocks := Blocks(sum, tier)
	for i, blk := range blocks {
		if i == 0 {
			b.WriteString(fmt.Sprintf("# %s\n\n", blk.Heading))
		} else {
			b.WriteString(fmt.Sprintf("## %s\n\n", blk.Heading))
		}
		for _, line := range blk.Lines {
			b.WriteString(fmt.Sprintf("- %s\n", collapseSpaces(line)))
		}
		b.WriteString("\n")
	}

	// Footer
	b.WriteString("---\n")
	b.WriteString("*focus-flicker v0.1.0*\n")

	return b.String()
}

// ReportFilename returns the filename for an exported report:
// YYYY-MM-DD-<task>-<shortid>.md
func ReportFilename(sum scoring.Summary) string {
	id := sum.AssessmentID
	if len(id) > 8 {
		id = id[:8]
	}
	return fmt.Sprintf("%s-%s-%s.md", sum.CompletedAt.Format("2006-01-02"), sum.Task, id)
}

// collapseSpaces squeezes the column padding used by the terminal view
// down to a single space for markdown lines.
func collapseSpaces(s string) string {
	for strings.Contains(s, "  ") {
		s = strings.ReplaceAll(s, "  ", " ")
	}
	return s
}
