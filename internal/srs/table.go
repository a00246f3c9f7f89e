package srs

import (
	"fmt"
	"math"
	"time"
)

// Default table construction parameters: twenty steps spanning 90 days.
const (
	DefaultSteps        = 20
	DefaultHorizonHours = 2160
)

// defaultHours is the published default spacing, in hours. Kept as a
// literal so the default schedule never shifts underneath existing
// collections.
var defaultHours = [DefaultSteps]int{
	0, 1, 2, 3, 5, 9, 13, 20, 30, 45,
	67, 99, 146, 214, 315, 464, 682, 1001, 1471, 2160,
}

// floorGuard absorbs float drift where the curve lands on a whole hour;
// without it exp(ln(h+1)) can come up one ulp short and floor to h-1.
const floorGuard = 1e-9

// Table is an ordered sequence of non-decreasing review intervals.
// Entry 0 is always zero: a new or lapsed item is due immediately.
type Table struct {
	hours []int
}

// Default returns the standard table.
func Default() *Table {
	hours := make([]int, len(defaultHours))
	copy(hours, defaultHours[:])
	return &Table{hours: hours}
}

// New builds a table of steps intervals growing exponentially from zero
// to horizonHours. Entries follow exp(k*c)-1 with c = ln(horizon+1)/steps,
// floored to whole hours; the k=1 point collapses into the zero head so
// the table keeps exactly steps entries. New(DefaultSteps,
// DefaultHorizonHours) reproduces Default.
func New(steps, horizonHours int) (*Table, error) {
	if steps < 1 || horizonHours < 1 {
		return nil, fmt.Errorf("%w: steps=%d horizon=%dh", ErrInvalidTable, steps, horizonHours)
	}
	hours := make([]int, 0, steps)
	hours = append(hours, 0)
	c := math.Log(float64(horizonHours)+1) / float64(steps)
	for k := 2; k <= steps; k++ {
		h := math.Floor(math.Exp(float64(k)*c) - 1 + floorGuard)
		hours = append(hours, int(h))
	}
	return &Table{hours: hours}, nil
}

// Len returns the number of steps in the table.
func (t *Table) Len() int { return len(t.hours) }

// LastStep returns the index of the final (mastered) step.
func (t *Table) LastStep() int { return len(t.hours) - 1 }

// Duration returns the wait before the next review at the given step.
func (t *Table) Duration(step int) (time.Duration, error) {
	if step < 0 || step >= len(t.hours) {
		return 0, fmt.Errorf("%w: step %d of %d", ErrStepOutOfRange, step, len(t.hours))
	}
	return time.Duration(t.hours[step]) * time.Hour, nil
}

// Hours returns a copy of the table entries in hours.
func (t *Table) Hours() []int {
	out := make([]int, len(t.hours))
	copy(out, t.hours)
	return out
}
