package main

import (
	"testing"

	"github.com/jeanpaul/recall/internal/config"
	"github.com/jeanpaul/recall/internal/srs"
)

func TestSplitDecks(t *testing.T) {
	cases := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"spanish", []string{"spanish"}},
		{"spanish,capitals", []string{"spanish", "capitals"}},
		{" spanish , ,capitals ", []string{"spanish", "capitals"}},
	}
	for _, c := range cases {
		got := splitDecks(c.in)
		if len(got) != len(c.want) {
			t.Errorf("splitDecks(%q) = %v, want %v", c.in, got, c.want)
			continue
		}
		for i := range got {
			if got[i] != c.want[i] {
				t.Errorf("splitDecks(%q)[%d] = %q, want %q", c.in, i, got[i], c.want[i])
			}
		}
	}
}

func TestDeckNameFor(t *testing.T) {
	cases := []struct {
		path, flag, declared, want string
	}{
		{"decks/spanish.csv", "", "", "spanish"},
		{"decks/spanish.csv", "override", "", "override"},
		{"decks/cards.yaml", "", "spanish", "spanish"},
		{"decks/cards.yaml", "override", "spanish", "override"},
		{"plain", "", "", "plain"},
	}
	for _, c := range cases {
		if got := deckNameFor(c.path, c.flag, c.declared); got != c.want {
			t.Errorf("deckNameFor(%q, %q, %q) = %q, want %q", c.path, c.flag, c.declared, got, c.want)
		}
	}
}

func TestBuildTableUsesDefaultCurve(t *testing.T) {
	cfg := config.DefaultConfig()
	table, err := buildTable(cfg)
	if err != nil {
		t.Fatalf("buildTable() error = %v", err)
	}
	if table.Len() != srs.DefaultSteps {
		t.Errorf("table.Len() = %d, want %d", table.Len(), srs.DefaultSteps)
	}
	want := srs.Default().Hours()
	got := table.Hours()
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Hours()[%d] = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestBuildTableCustomCurve(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Table.Steps = 10
	cfg.Table.HorizonHours = 500
	table, err := buildTable(cfg)
	if err != nil {
		t.Fatalf("buildTable() error = %v", err)
	}
	if table.Len() != 10 {
		t.Errorf("table.Len() = %d, want 10", table.Len())
	}
	hours := table.Hours()
	if hours[0] != 0 {
		t.Errorf("Hours()[0] = %d, want 0", hours[0])
	}
	if hours[len(hours)-1] != 500 {
		t.Errorf("last interval = %d, want 500", hours[len(hours)-1])
	}
}
