package srs

import (
	"errors"
	"testing"
	"time"
)

func TestDefaultTable(t *testing.T) {
	table := Default()

	if got := table.Len(); got != DefaultSteps {
		t.Fatalf("Len() = %d, want %d", got, DefaultSteps)
	}
	d0, err := table.Duration(0)
	if err != nil {
		t.Fatalf("Duration(0): %v", err)
	}
	if d0 != 0 {
		t.Errorf("Duration(0) = %v, want 0", d0)
	}
	last, err := table.Duration(table.LastStep())
	if err != nil {
		t.Fatalf("Duration(%d): %v", table.LastStep(), err)
	}
	if want := 2160 * time.Hour; last != want {
		t.Errorf("Duration(%d) = %v, want %v", table.LastStep(), last, want)
	}
}

func TestDefaultTableMonotone(t *testing.T) {
	hours := Default().Hours()
	for i := 1; i < len(hours); i++ {
		if hours[i] < hours[i-1] {
			t.Errorf("hours[%d] = %d, less than hours[%d] = %d", i, hours[i], i-1, hours[i-1])
		}
	}
}

func TestNewReproducesDefault(t *testing.T) {
	table, err := New(DefaultSteps, DefaultHorizonHours)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	got := table.Hours()
	want := Default().Hours()
	if len(got) != len(want) {
		t.Fatalf("Len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("hours[%d] = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestNewCustomCurve(t *testing.T) {
	cases := []struct {
		steps   int
		horizon int
		want    []int
	}{
		{1, 5, []int{0}},
		{2, 10, []int{0, 10}},
		{3, 100, []int{0, 20, 100}},
	}
	for _, c := range cases {
		table, err := New(c.steps, c.horizon)
		if err != nil {
			t.Fatalf("New(%d, %d): %v", c.steps, c.horizon, err)
		}
		got := table.Hours()
		if len(got) != len(c.want) {
			t.Fatalf("New(%d, %d) Len = %d, want %d", c.steps, c.horizon, len(got), len(c.want))
		}
		for i := range c.want {
			if got[i] != c.want[i] {
				t.Errorf("New(%d, %d) hours[%d] = %d, want %d", c.steps, c.horizon, i, got[i], c.want[i])
			}
		}
	}
}

func TestNewIsDeterministic(t *testing.T) {
	a, err := New(12, 720)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	b, err := New(12, 720)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ah, bh := a.Hours(), b.Hours()
	for i := range ah {
		if ah[i] != bh[i] {
			t.Errorf("hours[%d] differs between identical constructions: %d vs %d", i, ah[i], bh[i])
		}
	}
}

func TestNewRejectsBadParameters(t *testing.T) {
	cases := []struct{ steps, horizon int }{
		{0, 2160},
		{-3, 2160},
		{20, 0},
		{20, -1},
	}
	for _, c := range cases {
		if _, err := New(c.steps, c.horizon); !errors.Is(err, ErrInvalidTable) {
			t.Errorf("New(%d, %d) error = %v, want ErrInvalidTable", c.steps, c.horizon, err)
		}
	}
}

func TestDurationBounds(t *testing.T) {
	table := Default()
	for _, step := range []int{-1, DefaultSteps, 99} {
		if _, err := table.Duration(step); !errors.Is(err, ErrStepOutOfRange) {
			t.Errorf("Duration(%d) error = %v, want ErrStepOutOfRange", step, err)
		}
	}
}

func TestHoursReturnsACopy(t *testing.T) {
	table := Default()
	hours := table.Hours()
	hours[0] = 999

	d, err := table.Duration(0)
	if err != nil {
		t.Fatalf("Duration(0): %v", err)
	}
	if d != 0 {
		t.Errorf("mutating Hours() leaked into the table: Duration(0) = %v", d)
	}
}
