// Package report turns an assessment summary into formatted output,
// gating detail by the purchased access tier. It is the single report
// surface: the terminal view, the markdown note, and the PDF text
// blocks all come from the same gated block builder.
package report

import (
	"fmt"
	"strings"

	"github.com/peterachavez/focus-flicker-beta-f/internal/scoring"
)

// Tier is a paywall access level.
type Tier string

const (
	TierFree    Tier = "free"
	TierStarter Tier = "starter"
	TierPro     Tier = "pro"
)

// ParseTier converts a tier name, rejecting unknown values.
func ParseTier(s string) (Tier, error) {
	switch Tier(s) {
	case TierFree, TierStarter, TierPro:
		return Tier(s), nil
	default:
		return "", fmt.Errorf("unknown tier %q (free, starter, pro)", s)
	}
}

// atLeast reports whether t grants what required demands.
func (t Tier) atLeast(required Tier) bool {
	rank := map[Tier]int{TierFree: 0, TierStarter: 1, TierPro: 2}
	return rank[t] >= rank[required]
}

// Block is one titled section of report text. PDF rendering consumes
// these blocks verbatim.
type Block struct {
	Heading string
	Lines   []string
}

// taskName maps the variant tag to its product name.
func taskName(v scoring.Variant) string {
	switch v {
	case scoring.VariantMatch:
		return "Flex Sort"
	case scoring.VariantFlicker:
		return "Focus Flicker"
	default:
		return string(v)
	}
}

// scoreLabel names the composite score per variant.
func scoreLabel(v scoring.Variant) string {
	if v == scoring.VariantMatch {
		return "Flexibility score"
	}
	return "Attention score"
}

// Blocks builds the report sections visible at the given tier.
//
// free:    composite score and completion info only
// starter: adds rate metrics and mean response time
// pro:     adds adaptive flags, per-block breakdown, trial counts
func Blocks(sum scoring.Summary, tier Tier) []Block {
	var blocks []Block

	blocks = append(blocks, Block{
		Heading: taskName(sum.Task) + " Assessment",
		Lines: []string{
			fmt.Sprintf("Assessment ID    %s", sum.AssessmentID),
			fmt.Sprintf("Completed        %s", sum.CompletedAt.Format("2006-01-02 15:04 MST")),
			fmt.Sprintf("%-16s %d / 100", scoreLabel(sum.Task), sum.Score),
		},
	})

	if !tier.atLeast(TierStarter) {
		blocks = append(blocks, Block{
			Heading: "Detailed Results",
			Lines:   []string{"Upgrade to Starter or Pro to unlock rate metrics, response times, and trial-level detail."},
		})
		return blocks
	}

	blocks = append(blocks, metricsBlock(sum))

	if !tier.atLeast(TierPro) {
		blocks = append(blocks, Block{
			Heading: "Session Detail",
			Lines:   []string{"Upgrade to Pro to unlock per-block breakdowns and adaptive-support flags."},
		})
		return blocks
	}

	blocks = append(blocks, adaptiveBlock(sum), blocksBreakdown(sum))
	return blocks
}

// metricsBlock holds the starter-tier rate metrics.
func metricsBlock(sum scoring.Summary) Block {
	b := Block{Heading: "Performance Metrics"}
	if sum.Task == scoring.VariantMatch {
		b.Lines = []string{
			fmt.Sprintf("Accuracy           %.1f%%", sum.Accuracy),
			fmt.Sprintf("Shift score        %.1f (rule changes handled: %d)", sum.ShiftScore, sum.Adaptations),
			fmt.Sprintf("Error control      %.1f", sum.ErrorControl),
			fmt.Sprintf("Perseverative errs %d", sum.ErrorsOfInterest),
			fmt.Sprintf("Mean response      %.2fs", sum.MeanResponseSeconds),
		}
		if sum.DiscoveryLatency > 0 {
			b.Lines = append(b.Lines, fmt.Sprintf("Rule discovered on trial %d", sum.DiscoveryLatency))
		}
		return b
	}
	b.Lines = []string{
		fmt.Sprintf("Hit rate           %.0f%%", 100*sum.HitRate),
		fmt.Sprintf("False alarm rate   %.0f%%", 100*sum.FalseAlarmRate),
		fmt.Sprintf("Detection threshold %d / 100 (final flicker %dms)", sum.ThresholdScore, sum.FinalDurationMs),
		fmt.Sprintf("Hits               %d", sum.Adaptations),
		fmt.Sprintf("False alarms       %d", sum.ErrorsOfInterest),
		fmt.Sprintf("Mean response      %.2fs", sum.MeanResponseSeconds),
	}
	return b
}

// adaptiveBlock reports the pro-tier adaptive-support flags.
func adaptiveBlock(sum scoring.Summary) Block {
	onOff := func(v bool) string {
		if v {
			return "triggered"
		}
		return "not triggered"
	}
	return Block{
		Heading: "Adaptive Support",
		Lines: []string{
			fmt.Sprintf("Guided mode     %s", onOff(sum.GuidedMode)),
			fmt.Sprintf("Rule training   %s", onOff(sum.RuleTraining)),
			fmt.Sprintf("Extended block  %s", onOff(sum.ExtendedBlock)),
		},
	}
}

// blocksBreakdown summarizes accuracy per block from the trial history.
func blocksBreakdown(sum scoring.Summary) Block {
	b := Block{Heading: "Block Breakdown"}
	if len(sum.Trials) == 0 {
		b.Lines = []string{"Trial history not available."}
		return b
	}

	lastBlock := sum.Trials[len(sum.Trials)-1].Block
	for blk := 1; blk <= lastBlock; blk++ {
		var total, correct int
		rule := ""
		for _, r := range sum.Trials {
			if r.Block != blk {
				continue
			}
			total++
			if r.Correct {
				correct++
			}
			rule = r.Rule
		}
		if total == 0 {
			continue
		}
		b.Lines = append(b.Lines, fmt.Sprintf("Block %d (%s)  %d/%d correct", blk, rule, correct, total))
	}
	return b
}

// Render formats the gated report for terminal output.
func Render(sum scoring.Summary, tier Tier) string {
	var b strings.Builder

	blocks := Blocks(sum, tier)
	for i, blk := range blocks {
		b.WriteString(blk.Heading + "\n")
		if i == 0 {
			b.WriteString(strings.Repeat("=", 40) + "\n")
		}
		for _, line := range blk.Lines {
			b.WriteString("  " + line + "\n")
		}
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "Access tier: %s\n", tier)

	return b.String()
}
