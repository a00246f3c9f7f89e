package headless

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/jeanpaul/recall/internal/srs"
	"github.com/jeanpaul/recall/internal/storage"
)

var t0 = time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)

type stubRecorder struct {
	calls []storage.Review
}

func (r *stubRecorder) RecordReview(ctx context.Context, item *srs.Item, rev storage.Review) error {
	r.calls = append(r.calls, rev)
	return nil
}

type stubSpeaker struct {
	said []string
}

func (s *stubSpeaker) Say(ctx context.Context, text string) error {
	s.said = append(s.said, text)
	return nil
}

func (s *stubSpeaker) Enabled() bool { return true }

func newRunner(t *testing.T, script string, pairs ...srs.Pair) (*Runner, *stubRecorder, *bytes.Buffer) {
	t.Helper()
	sched := srs.NewScheduler(srs.Default(), nil)
	sched.AddItems(t0.Add(-time.Hour), "default", pairs)
	rec := &stubRecorder{}
	out := &bytes.Buffer{}
	r := &Runner{
		In:        strings.NewReader(script),
		Out:       out,
		Scheduler: sched,
		Recorder:  rec,
		Speaker:   &stubSpeaker{},
		Now:       func() time.Time { return t0 },
	}
	return r, rec, out
}

func TestRunGradesDueCards(t *testing.T) {
	r, rec, out := newRunner(t, "\nr\n\nr\n",
		srs.Pair{Question: "2+2", Answer: "4"},
		srs.Pair{Question: "3+3", Answer: "6"},
	)

	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if r.Reviewed() != 2 || r.Recalled() != 2 {
		t.Errorf("counts = %d/%d, want 2/2", r.Reviewed(), r.Recalled())
	}
	if len(rec.calls) != 2 {
		t.Errorf("recorder calls = %d, want 2", len(rec.calls))
	}

	text := out.String()
	for _, want := range []string{"2+2", "4", "3+3", "6", "reviewed 2, recalled 2", "Next review scheduled for"} {
		if !strings.Contains(text, want) {
			t.Errorf("output is missing %q", want)
		}
	}
}

func TestForgottenCardComesBackSameSession(t *testing.T) {
	r, _, out := newRunner(t, "\nf\n\nr\n",
		srs.Pair{Question: "la nube", Answer: "the cloud"},
	)

	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if r.Reviewed() != 2 || r.Recalled() != 1 {
		t.Errorf("counts = %d/%d, want 2/1", r.Reviewed(), r.Recalled())
	}
	if got := strings.Count(out.String(), "la nube"); got != 2 {
		t.Errorf("question shown %d times, want 2", got)
	}
}

func TestQuitAtRevealPrompt(t *testing.T) {
	r, rec, _ := newRunner(t, "q\n",
		srs.Pair{Question: "2+2", Answer: "4"},
	)

	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if r.Reviewed() != 0 || len(rec.calls) != 0 {
		t.Errorf("reviewed %d with %d recorded, want nothing graded", r.Reviewed(), len(rec.calls))
	}
}

func TestQuitAtGradePromptSkipsCard(t *testing.T) {
	r, rec, _ := newRunner(t, "\nq\n",
		srs.Pair{Question: "2+2", Answer: "4"},
	)

	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(rec.calls) != 0 {
		t.Errorf("recorder calls = %d, want 0 after quitting before grading", len(rec.calls))
	}
}

func TestEndOfInputEndsSession(t *testing.T) {
	r, _, out := newRunner(t, "",
		srs.Pair{Question: "2+2", Answer: "4"},
	)

	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if r.Reviewed() != 0 {
		t.Errorf("Reviewed() = %d, want 0", r.Reviewed())
	}
	if !strings.Contains(out.String(), "reviewed 0, recalled 0") {
		t.Error("output is missing the summary")
	}
}

func TestTypedModeComparesAnswer(t *testing.T) {
	r, _, out := newRunner(t, "4\nr\n",
		srs.Pair{Question: "2+2", Answer: "4"},
	)
	r.Typed = true

	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if r.Reviewed() != 1 || r.Recalled() != 1 {
		t.Errorf("counts = %d/%d, want 1/1", r.Reviewed(), r.Recalled())
	}
	if !strings.Contains(out.String(), "your answer matches") {
		t.Error("output is missing the match verdict")
	}
}

func TestTypedModeFlagsMismatch(t *testing.T) {
	r, _, out := newRunner(t, "5\nf\n",
		srs.Pair{Question: "2+2", Answer: "4"},
	)
	r.Typed = true

	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !strings.Contains(out.String(), "differs from the card") {
		t.Error("output is missing the mismatch verdict")
	}
}

func TestSpeakAtPrompts(t *testing.T) {
	spk := &stubSpeaker{}
	r, _, _ := newRunner(t, "s\n\ns\nr\n",
		srs.Pair{Question: "la nube", Answer: "the cloud"},
	)
	r.Speaker = spk

	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(spk.said) != 2 || spk.said[0] != "la nube" || spk.said[1] != "the cloud" {
		t.Errorf("spoke %v, want the question then the answer", spk.said)
	}
	if r.Reviewed() != 1 {
		t.Errorf("Reviewed() = %d, want 1", r.Reviewed())
	}
}

func TestLimitStopsSession(t *testing.T) {
	r, _, _ := newRunner(t, "\nr\n\nr\n",
		srs.Pair{Question: "2+2", Answer: "4"},
		srs.Pair{Question: "3+3", Answer: "6"},
	)
	r.Limit = 1

	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if r.Reviewed() != 1 {
		t.Errorf("Reviewed() = %d, want 1", r.Reviewed())
	}
}

func TestInvalidGradeReprompts(t *testing.T) {
	r, _, out := newRunner(t, "\nx\nr\n",
		srs.Pair{Question: "2+2", Answer: "4"},
	)

	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if r.Reviewed() != 1 {
		t.Errorf("Reviewed() = %d, want 1", r.Reviewed())
	}
	if got := strings.Count(out.String(), "(r)ecalled / (f)orgot:"); got != 2 {
		t.Errorf("grade prompt shown %d times, want 2", got)
	}
}

func TestCanceledContextStopsRun(t *testing.T) {
	r, _, _ := newRunner(t, "\nr\n",
		srs.Pair{Question: "2+2", Answer: "4"},
	)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := r.Run(ctx); err == nil {
		t.Error("Run() = nil, want context error")
	}
}
