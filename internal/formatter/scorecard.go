// Package formatter renders scoring results as plain text for the
// operator CLIs.
package formatter

import (
	"fmt"
	"strings"

	"github.com/signalhouse/creatorstats/internal/model"
)

// Scorecard bundles everything the text report shows for one entity.
// Nil sections are omitted from the output.
type Scorecard struct {
	EntityType model.EntityType
	EntityID   string
	Handle     string
	AsOfDate   string
	Smart      *model.SmartFollowersResult
	Delta      *model.SmartFollowersDelta
	Pulse      *model.Pulse
}

// FormatScorecard renders a one-entity report.
func FormatScorecard(sc Scorecard) string {
	var b strings.Builder

	header := fmt.Sprintf("%s %s", sc.EntityType, sc.EntityID)
	if sc.Handle != "" {
		header += fmt.Sprintf(" (@%s)", sc.Handle)
	}
	fmt.Fprintf(&b, "%s as of %s\n", header, sc.AsOfDate)

	if sc.Smart != nil {
		if sc.Smart.IsEstimate {
			fmt.Fprintf(&b, "smart followers: ~%d (estimated from engagement)\n", sc.Smart.Count)
		} else {
			fmt.Fprintf(&b, "smart followers: %d (%.1f%% of followers)\n", sc.Smart.Count, sc.Smart.Pct)
		}
	}

	if sc.Delta != nil {
		fmt.Fprintf(&b, "  change vs 7d:  %+d\n", sc.Delta.Change7d)
		fmt.Fprintf(&b, "  change vs 30d: %+d\n", sc.Delta.Change30d)
	}

	if sc.Pulse != nil {
		fmt.Fprintf(&b, "window: %s\n", sc.Pulse.Window)
		fmt.Fprintf(&b, "heat:   %s\n", formatScore(sc.Pulse.Heat))
		if sc.Pulse.Signal != nil {
			fmt.Fprintf(&b, "signal: %.1f  trust: %s (%s)\n", *sc.Pulse.Signal, sc.Pulse.TrustBand, signalWord(*sc.Pulse.Signal))
		} else {
			fmt.Fprintf(&b, "signal: %s\n", formatScore(nil))
		}
	}

	return b.String()
}

// FormatCreatorRollup renders the cross-project aggregate section of a
// creator report.
func FormatCreatorRollup(window model.Window, agg model.CreatorAggregate) string {
	var b strings.Builder

	fmt.Fprintf(&b, "creator roll-up over %s (%d projects):\n", window, agg.Projects)
	fmt.Fprintf(&b, "  heat:   %s\n", formatScore(agg.Heat))
	if agg.Signal != nil {
		fmt.Fprintf(&b, "  signal: %.1f  trust: %s (%s)\n", *agg.Signal, agg.TrustBand, signalWord(*agg.Signal))
	} else {
		fmt.Fprintf(&b, "  signal: %s\n", formatScore(nil))
	}

	return b.String()
}

func formatScore(v *float64) string {
	if v == nil {
		return "n/a (no content in window)"
	}
	return fmt.Sprintf("%.1f", *v)
}

// signalWords maps ascending signal deciles to the report's one-word
// reading of the score.
var signalWords = []string{
	"dormant",
	"faint",
	"quiet",
	"building",
	"steady",
	"active",
	"energetic",
	"strong",
	"compelling",
	"exceptional",
}

// signalWord maps a 0-100 signal score to a descriptive word.
func signalWord(score float64) string {
	idx := int(score / 10)
	if idx < 0 {
		idx = 0
	}
	if idx >= len(signalWords) {
		idx = len(signalWords) - 1
	}
	return signalWords[idx]
}
