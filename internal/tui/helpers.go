package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/hexops/gotextdiff"
	"github.com/hexops/gotextdiff/myers"
	"github.com/hexops/gotextdiff/span"

	"github.com/jeanpaul/recall/internal/srs"
)

func makeBar(value float64, width int) string {
	filled := int(value * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

// trailGlyphs renders the most recent outcomes newest-first, capped at n.
func trailGlyphs(outcomes []srs.Outcome, n int) string {
	if len(outcomes) == 0 {
		return ""
	}
	start := len(outcomes) - n
	if start < 0 {
		start = 0
	}
	var b strings.Builder
	for i := len(outcomes) - 1; i >= start; i-- {
		if outcomes[i] == srs.Correct {
			b.WriteString(RecalledStyle.Render("✓"))
		} else {
			b.WriteString(ForgotStyle.Render("✗"))
		}
	}
	return b.String()
}

// renderDiff shows where a typed answer diverges from the card, as a
// colorized unified diff.
func renderDiff(want, typed string) string {
	if !strings.HasSuffix(want, "\n") {
		want += "\n"
	}
	if !strings.HasSuffix(typed, "\n") {
		typed += "\n"
	}
	edits := myers.ComputeEdits(span.URIFromPath("answer"), want, typed)
	unified := fmt.Sprint(gotextdiff.ToUnified("card", "typed", want, edits))

	var b strings.Builder
	for _, line := range strings.Split(strings.TrimRight(unified, "\n"), "\n") {
		switch {
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
			b.WriteString(DiffMetaStyle.Render(line))
		case strings.HasPrefix(line, "@@"):
			b.WriteString(DiffHunkStyle.Render(line))
		case strings.HasPrefix(line, "+"):
			b.WriteString(DiffAddStyle.Render(line))
		case strings.HasPrefix(line, "-"):
			b.WriteString(DiffDelStyle.Render(line))
		default:
			b.WriteString(line)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// nextReviewLine phrases when the collection next comes due.
func nextReviewLine(next, now time.Time) string {
	if next.IsZero() {
		return "Nothing left on the schedule. Add more cards."
	}
	return fmt.Sprintf("Next review scheduled for %s (%s)",
		next.Local().Format("Mon Jan 2 15:04"),
		humanize.RelTime(next, now, "ago", "from now"))
}
