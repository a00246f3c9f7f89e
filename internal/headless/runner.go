// Package headless runs a review session over plain stdin/stdout, for
// pipes and dumb terminals.
package headless

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/jeanpaul/recall/internal/srs"
	"github.com/jeanpaul/recall/internal/storage"
)

// Recorder persists one review transition.
type Recorder interface {
	RecordReview(ctx context.Context, item *srs.Item, rev storage.Review) error
}

// Speaker vocalizes a card face.
type Speaker interface {
	Say(ctx context.Context, text string) error
	Enabled() bool
}

// Runner drives a session through line-based prompts.
type Runner struct {
	In        io.Reader
	Out       io.Writer
	Scheduler *srs.Scheduler
	Recorder  Recorder
	Speaker   Speaker
	SessionID string
	Typed     bool
	Limit     int
	Now       func() time.Time

	reviewed int
	recalled int
}

// Reviewed reports how many cards were graded this session.
func (r *Runner) Reviewed() int { return r.reviewed }

// Recalled reports how many of those were graded correct.
func (r *Runner) Recalled() int { return r.recalled }

// Run reviews due cards until the schedule is clear, the limit is hit,
// the user quits, or input ends. The scheduler is re-queried between
// passes so a card forgotten earlier in the session comes back around.
func (r *Runner) Run(ctx context.Context) error {
	if r.Now == nil {
		r.Now = time.Now
	}
	scanner := bufio.NewScanner(r.In)

session:
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if r.Limit > 0 && r.reviewed >= r.Limit {
			break
		}
		due := r.Scheduler.DueItems(r.Now())
		if len(due) == 0 {
			break
		}
		for _, item := range due {
			if err := ctx.Err(); err != nil {
				return err
			}
			if r.Limit > 0 && r.reviewed >= r.Limit {
				break session
			}
			quit, err := r.reviewItem(ctx, scanner, item)
			if err != nil {
				return err
			}
			if quit {
				break session
			}
		}
	}

	r.printSummary()
	return nil
}

func (r *Runner) reviewItem(ctx context.Context, scanner *bufio.Scanner, item *srs.Item) (bool, error) {
	fmt.Fprintf(r.Out, "\n[%s] %s\n", item.Deck, item.Question)

	if r.Typed {
		fmt.Fprint(r.Out, "your answer: ")
		typed, ok := r.readLine(scanner)
		if !ok {
			return true, nil
		}
		fmt.Fprintf(r.Out, "%s\n", item.Answer)
		if strings.TrimSpace(typed) == strings.TrimSpace(item.Answer) {
			fmt.Fprintln(r.Out, "✓ your answer matches")
		} else {
			fmt.Fprintln(r.Out, "✗ differs from the card")
		}
	} else {
		for {
			fmt.Fprint(r.Out, "reveal answer [enter], (s)peak, (q)uit: ")
			line, ok := r.readLine(scanner)
			if !ok || line == "q" {
				return true, nil
			}
			if line == "s" {
				r.speak(ctx, item.Question)
				continue
			}
			break
		}
		fmt.Fprintf(r.Out, "%s\n", item.Answer)
	}

	for {
		fmt.Fprint(r.Out, "(r)ecalled / (f)orgot: ")
		line, ok := r.readLine(scanner)
		if !ok || line == "q" {
			return true, nil
		}
		switch line {
		case "r":
			return false, r.grade(ctx, item, srs.Correct)
		case "f":
			return false, r.grade(ctx, item, srs.Incorrect)
		case "s":
			r.speak(ctx, item.Answer)
		}
	}
}

func (r *Runner) grade(ctx context.Context, item *srs.Item, outcome srs.Outcome) error {
	before := item.Step
	now := r.Now()
	if err := r.Scheduler.Review(item, outcome, now); err != nil {
		return err
	}
	rev := storage.Review{
		SessionID:  r.SessionID,
		Outcome:    outcome,
		StepBefore: before,
		StepAfter:  item.Step,
		At:         now,
	}
	if err := r.Recorder.RecordReview(ctx, item, rev); err != nil {
		return err
	}
	r.reviewed++
	if outcome == srs.Correct {
		r.recalled++
	}
	return nil
}

func (r *Runner) speak(ctx context.Context, text string) {
	if r.Speaker == nil || !r.Speaker.Enabled() {
		fmt.Fprintln(r.Out, "speech is not configured (set speech.command)")
		return
	}
	if err := r.Speaker.Say(ctx, text); err != nil {
		fmt.Fprintf(r.Out, "speech failed: %v\n", err)
	}
}

func (r *Runner) printSummary() {
	fmt.Fprintf(r.Out, "\nreviewed %d, recalled %d\n", r.reviewed, r.recalled)
	next := r.Scheduler.NextDue(r.Now())
	if next.IsZero() {
		fmt.Fprintln(r.Out, "Nothing left on the schedule. Add more cards.")
		return
	}
	fmt.Fprintf(r.Out, "Next review scheduled for %s (%s)\n",
		next.Local().Format("Mon Jan 2 15:04"),
		humanize.RelTime(next, r.Now(), "ago", "from now"))
}

func (r *Runner) readLine(scanner *bufio.Scanner) (string, bool) {
	if !scanner.Scan() {
		return "", false
	}
	return strings.TrimSpace(scanner.Text()), true
}
