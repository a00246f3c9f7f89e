package srs

import "time"

// Item is one question/answer pair tracked for repeated review.
// Question and Answer are fixed at creation; Step, DueAt and
// LastReviewedAt move only through Scheduler.Review.
type Item struct {
	ID             int64
	Deck           string
	Question       string
	Answer         string
	Step           int
	DueAt          time.Time
	LastReviewedAt *time.Time // nil until the first review
	Recalled       int
	Forgot         int
	History        string // one letter per review, most recent last
	CreatedAt      time.Time
}

// Pair is a question/answer record from an import batch.
type Pair struct {
	Question string
	Answer   string
}

// Due reports whether the item is eligible for review at t.
func (it *Item) Due(t time.Time) bool {
	return !it.DueAt.After(t)
}

// RecentHistory returns up to n of the item's latest review letters,
// most recent first.
func (it *Item) RecentHistory(n int) string {
	h := it.History
	if len(h) > n {
		h = h[len(h)-n:]
	}
	b := []byte(h)
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
	return string(b)
}
