package srs

import (
	"errors"
	"testing"
	"time"
)

var t0 = time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)

func mustScheduler(t *testing.T) *Scheduler {
	t.Helper()
	return NewScheduler(Default(), nil)
}

func addOne(t *testing.T, s *Scheduler, q, a string) *Item {
	t.Helper()
	created := s.AddItems(t0, "default", []Pair{{Question: q, Answer: a}})
	if len(created) != 1 {
		t.Fatalf("AddItems created %d items, want 1", len(created))
	}
	return created[0]
}

func TestFirstReviewSchedulesAnHourOut(t *testing.T) {
	s := mustScheduler(t)
	it := addOne(t, s, "2+2", "4")

	due := s.DueItems(t0)
	if len(due) != 1 || due[0] != it {
		t.Fatalf("DueItems(t0) returned %d items, want the new item", len(due))
	}
	if err := s.Review(it, Correct, t0); err != nil {
		t.Fatalf("Review: %v", err)
	}
	if it.Step != 1 {
		t.Errorf("Step = %d, want 1", it.Step)
	}
	if want := t0.Add(time.Hour); !it.DueAt.Equal(want) {
		t.Errorf("DueAt = %v, want %v", it.DueAt, want)
	}
	if got := s.DueItems(t0.Add(30 * time.Minute)); len(got) != 0 {
		t.Errorf("DueItems(+30m) returned %d items, want 0", len(got))
	}
	if got := s.DueItems(t0.Add(time.Hour)); len(got) != 1 {
		t.Errorf("DueItems(+1h) returned %d items, want 1", len(got))
	}
}

func TestLapseResetsToStepZero(t *testing.T) {
	s := mustScheduler(t)
	it := addOne(t, s, "capital of France", "Paris")
	it.Step = 5

	at := t0.Add(100 * time.Hour)
	if err := s.Review(it, Incorrect, at); err != nil {
		t.Fatalf("Review: %v", err)
	}
	if it.Step != 0 {
		t.Errorf("Step = %d, want 0", it.Step)
	}
	if !it.DueAt.Equal(at) {
		t.Errorf("DueAt = %v, want %v (immediately due again)", it.DueAt, at)
	}
	if got := s.DueItems(at); len(got) != 1 {
		t.Errorf("DueItems right after a lapse returned %d items, want 1", len(got))
	}
}

func TestMasteredItemStaysOnLastStep(t *testing.T) {
	s := mustScheduler(t)
	it := addOne(t, s, "q", "a")
	it.Step = s.table.LastStep()

	for i := 0; i < 3; i++ {
		at := t0.Add(time.Duration(i) * 2200 * time.Hour)
		if err := s.Review(it, Correct, at); err != nil {
			t.Fatalf("Review %d: %v", i, err)
		}
		if it.Step != s.table.LastStep() {
			t.Errorf("Step after review %d = %d, want %d", i, it.Step, s.table.LastStep())
		}
		if want := at.Add(2160 * time.Hour); !it.DueAt.Equal(want) {
			t.Errorf("DueAt after review %d = %v, want %v", i, it.DueAt, want)
		}
	}
}

func TestBatchImportSharesOneTimestamp(t *testing.T) {
	s := mustScheduler(t)
	created := s.AddItems(t0, "math", []Pair{{"2+2", "4"}, {"3+3", "6"}})
	if len(created) != 2 {
		t.Fatalf("AddItems created %d items, want 2", len(created))
	}
	for i, it := range created {
		if it.Step != 0 {
			t.Errorf("item %d Step = %d, want 0", i, it.Step)
		}
		if !it.DueAt.Equal(t0) {
			t.Errorf("item %d DueAt = %v, want %v", i, it.DueAt, t0)
		}
		if it.LastReviewedAt != nil {
			t.Errorf("item %d LastReviewedAt = %v, want nil", i, *it.LastReviewedAt)
		}
		if it.Deck != "math" {
			t.Errorf("item %d Deck = %q, want %q", i, it.Deck, "math")
		}
	}
	if created[0].Question != "2+2" || created[1].Question != "3+3" {
		t.Errorf("items out of input order: %q, %q", created[0].Question, created[1].Question)
	}
}

func TestDuplicatePairsStayIndependent(t *testing.T) {
	s := mustScheduler(t)
	created := s.AddItems(t0, "default", []Pair{{"dup", "x"}, {"dup", "x"}})
	if len(created) != 2 || created[0] == created[1] {
		t.Fatalf("duplicate pairs should produce independent items")
	}
	if err := s.Review(created[0], Correct, t0); err != nil {
		t.Fatalf("Review: %v", err)
	}
	if created[1].Step != 0 {
		t.Errorf("reviewing one duplicate moved the other: Step = %d", created[1].Step)
	}
}

func TestDueOrderingEarliestFirstTiesByInsertion(t *testing.T) {
	s := mustScheduler(t)
	items := s.AddItems(t0, "default", []Pair{{"a", "1"}, {"b", "2"}, {"c", "3"}})

	// Push a out an hour; b and c stay tied at t0.
	if err := s.Review(items[0], Correct, t0); err != nil {
		t.Fatalf("Review: %v", err)
	}

	due := s.DueItems(t0.Add(2 * time.Hour))
	if len(due) != 3 {
		t.Fatalf("DueItems returned %d items, want 3", len(due))
	}
	wantOrder := []string{"b", "c", "a"}
	for i, q := range wantOrder {
		if due[i].Question != q {
			t.Errorf("due[%d] = %q, want %q", i, due[i].Question, q)
		}
	}
}

func TestDueItemsOnEmptyCollection(t *testing.T) {
	s := mustScheduler(t)
	if got := s.DueItems(t0); len(got) != 0 {
		t.Errorf("DueItems on empty scheduler returned %d items", len(got))
	}
	if next := s.NextDue(t0); !next.IsZero() {
		t.Errorf("NextDue on empty scheduler = %v, want zero time", next)
	}
}

func TestReviewUnknownItem(t *testing.T) {
	s := mustScheduler(t)
	stranger := &Item{Question: "?", Answer: "!"}

	err := s.Review(stranger, Correct, t0)
	if !errors.Is(err, ErrItemNotFound) {
		t.Fatalf("Review error = %v, want ErrItemNotFound", err)
	}
	if stranger.Step != 0 || stranger.LastReviewedAt != nil {
		t.Errorf("failed review mutated the item: %+v", stranger)
	}
}

func TestReviewInvalidOutcomeLeavesItemUntouched(t *testing.T) {
	s := mustScheduler(t)
	it := addOne(t, s, "q", "a")
	before := *it

	err := s.Review(it, Outcome(9), t0.Add(time.Minute))
	if !errors.Is(err, ErrInvalidOutcome) {
		t.Fatalf("Review error = %v, want ErrInvalidOutcome", err)
	}
	if *it != before {
		t.Errorf("failed review mutated the item: %+v", it)
	}
}

func TestStepStaysInBounds(t *testing.T) {
	s := mustScheduler(t)
	it := addOne(t, s, "q", "a")

	outcomes := []Outcome{
		Correct, Correct, Incorrect, Correct, Correct,
		Correct, Incorrect, Correct, Correct, Correct,
	}
	now := t0
	for i, o := range outcomes {
		now = now.Add(time.Duration(i+1) * time.Hour)
		if err := s.Review(it, o, now); err != nil {
			t.Fatalf("Review %d: %v", i, err)
		}
		if it.Step < 0 || it.Step >= s.table.Len() {
			t.Fatalf("Step = %d after review %d, out of [0, %d)", it.Step, i, s.table.Len())
		}
	}
}

func TestLongCorrectStreakSaturates(t *testing.T) {
	s := mustScheduler(t)
	it := addOne(t, s, "q", "a")

	now := t0
	for i := 0; i < 30; i++ {
		now = now.Add(time.Hour)
		if err := s.Review(it, Correct, now); err != nil {
			t.Fatalf("Review %d: %v", i, err)
		}
	}
	if it.Step != s.table.LastStep() {
		t.Errorf("Step = %d, want %d", it.Step, s.table.LastStep())
	}
	if it.Recalled != 30 || it.Forgot != 0 {
		t.Errorf("counters = %d/%d, want 30/0", it.Recalled, it.Forgot)
	}
}

func TestReviewTrail(t *testing.T) {
	s := mustScheduler(t)
	it := addOne(t, s, "q", "a")

	seq := []Outcome{Correct, Correct, Incorrect}
	now := t0
	for _, o := range seq {
		now = now.Add(time.Hour)
		if err := s.Review(it, o, now); err != nil {
			t.Fatalf("Review: %v", err)
		}
	}
	if it.History != "rrf" {
		t.Errorf("History = %q, want %q", it.History, "rrf")
	}
	if it.Recalled != 2 || it.Forgot != 1 {
		t.Errorf("counters = %d/%d, want 2/1", it.Recalled, it.Forgot)
	}
	if got := it.RecentHistory(5); got != "frr" {
		t.Errorf("RecentHistory(5) = %q, want %q", got, "frr")
	}
	if got := it.RecentHistory(2); got != "fr" {
		t.Errorf("RecentHistory(2) = %q, want %q", got, "fr")
	}
}

func TestNextDue(t *testing.T) {
	s := mustScheduler(t)
	a := addOne(t, s, "a", "1")
	b := addOne(t, s, "b", "2")

	if err := s.Review(a, Correct, t0); err != nil {
		t.Fatalf("Review: %v", err)
	}
	if err := s.Review(b, Correct, t0); err != nil {
		t.Fatalf("Review: %v", err)
	}
	if err := s.Review(b, Correct, t0.Add(time.Hour)); err != nil {
		t.Fatalf("Review: %v", err)
	}

	if got, want := s.NextDue(t0), t0.Add(time.Hour); !got.Equal(want) {
		t.Errorf("NextDue(t0) = %v, want %v", got, want)
	}
	// At +1h item a is exactly due, so the next future time is b's.
	if got, want := s.NextDue(t0.Add(time.Hour)), t0.Add(3*time.Hour); !got.Equal(want) {
		t.Errorf("NextDue(+1h) = %v, want %v", got, want)
	}
	if got := s.NextDue(t0.Add(1000 * time.Hour)); !got.IsZero() {
		t.Errorf("NextDue far out = %v, want zero time", got)
	}
}

func TestOutcomeString(t *testing.T) {
	if got := Correct.String(); got != "correct" {
		t.Errorf("Correct.String() = %q, want %q", got, "correct")
	}
	if got := Incorrect.String(); got != "incorrect" {
		t.Errorf("Incorrect.String() = %q, want %q", got, "incorrect")
	}
	if got := Outcome(7).String(); got != "Outcome(7)" {
		t.Errorf("Outcome(7).String() = %q, want %q", got, "Outcome(7)")
	}
}
