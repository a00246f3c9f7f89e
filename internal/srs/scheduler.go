package srs

import (
	"fmt"
	"sort"
	"time"
)

// Scheduler owns an item collection and is the only mutation path for
// review state.
type Scheduler struct {
	table *Table
	items []*Item
	order map[*Item]int // membership and insertion rank
}

// NewScheduler wraps a loaded collection. Items keep their given order,
// which breaks due-time ties.
func NewScheduler(table *Table, items []*Item) *Scheduler {
	s := &Scheduler{
		table: table,
		items: make([]*Item, 0, len(items)),
		order: make(map[*Item]int, len(items)),
	}
	for _, it := range items {
		s.order[it] = len(s.items)
		s.items = append(s.items, it)
	}
	return s
}

// Table returns the interval table the scheduler consults.
func (s *Scheduler) Table() *Table { return s.table }

// Len returns the collection size.
func (s *Scheduler) Len() int { return len(s.items) }

// Items returns the collection in insertion order. Callers must treat
// the items as read-only; Review is the only mutation path.
func (s *Scheduler) Items() []*Item {
	out := make([]*Item, len(s.items))
	copy(out, s.items)
	return out
}

// AddItems creates one item per pair, all stamped with the same now and
// immediately due. Pairs are not deduplicated. Returns the new items in
// input order.
func (s *Scheduler) AddItems(now time.Time, deck string, pairs []Pair) []*Item {
	created := make([]*Item, 0, len(pairs))
	for _, p := range pairs {
		it := &Item{
			Deck:      deck,
			Question:  p.Question,
			Answer:    p.Answer,
			DueAt:     now,
			CreatedAt: now,
		}
		s.order[it] = len(s.items)
		s.items = append(s.items, it)
		created = append(created, it)
	}
	return created
}

// DueItems returns every item with DueAt <= now, earliest first, ties in
// insertion order. The slice is recomputed on each call, so reviews made
// since the previous call are reflected.
func (s *Scheduler) DueItems(now time.Time) []*Item {
	var due []*Item
	for _, it := range s.items {
		if it.Due(now) {
			due = append(due, it)
		}
	}
	sort.Slice(due, func(i, j int) bool {
		if !due[i].DueAt.Equal(due[j].DueAt) {
			return due[i].DueAt.Before(due[j].DueAt)
		}
		return s.order[due[i]] < s.order[due[j]]
	})
	return due
}

// NextDue returns the earliest due time strictly after now, or the zero
// time when nothing is scheduled beyond now.
func (s *Scheduler) NextDue(now time.Time) time.Time {
	var next time.Time
	for _, it := range s.items {
		if !it.DueAt.After(now) {
			continue
		}
		if next.IsZero() || it.DueAt.Before(next) {
			next = it.DueAt
		}
	}
	return next
}

// Review applies one outcome to one item. Correct advances the step,
// saturating at the table's last entry; Incorrect resets to step zero.
// Either way the item is stamped with now and rescheduled. The item is
// left untouched on any error.
func (s *Scheduler) Review(item *Item, outcome Outcome, now time.Time) error {
	if _, ok := s.order[item]; !ok {
		return fmt.Errorf("%w: %q", ErrItemNotFound, item.Question)
	}
	if !outcome.IsValid() {
		return fmt.Errorf("%w: %d", ErrInvalidOutcome, int(outcome))
	}

	step := 0
	if outcome == Correct {
		step = item.Step + 1
		if step > s.table.LastStep() {
			step = s.table.LastStep()
		}
	}
	wait, err := s.table.Duration(step)
	if err != nil {
		return err
	}

	item.Step = step
	reviewedAt := now
	item.LastReviewedAt = &reviewedAt
	item.DueAt = now.Add(wait)
	item.History += string(outcome.mark())
	if outcome == Correct {
		item.Recalled++
	} else {
		item.Forgot++
	}
	return nil
}
