package srs

import "fmt"

// Outcome is the operator's judgment of one review.
type Outcome int

const (
	Correct   Outcome = iota + 1 // recalled
	Incorrect                    // forgot
)

var outcomeNames = [...]string{Correct: "correct", Incorrect: "incorrect"}

// String returns "correct" or "incorrect"; invalid values print as
// Outcome(n).
func (o Outcome) String() string {
	if o.IsValid() {
		return outcomeNames[o]
	}
	return fmt.Sprintf("Outcome(%d)", int(o))
}

// IsValid reports whether o is Correct or Incorrect.
func (o Outcome) IsValid() bool {
	return o == Correct || o == Incorrect
}

// mark is the single-letter history code for the outcome.
func (o Outcome) mark() byte {
	if o == Correct {
		return 'r'
	}
	return 'f'
}
