package speech

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestSayPipesTextToCommand(t *testing.T) {
	out := filepath.Join(t.TempDir(), "spoken.txt")
	s := New(fmt.Sprintf("cat > %s", out), time.Second, true)

	if err := s.Say(context.Background(), "la nube"); err != nil {
		t.Fatalf("Say() error = %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if got := string(data); got != "la nube" {
		t.Errorf("command received %q, want %q", got, "la nube")
	}
}

func TestSayDisabledIsNoOp(t *testing.T) {
	s := New("false", time.Second, false)

	if err := s.Say(context.Background(), "anything"); err != nil {
		t.Errorf("Say() on disabled speaker = %v, want nil", err)
	}
	if s.Enabled() {
		t.Error("Enabled() = true, want false")
	}
}

func TestSayBlankTextIsNoOp(t *testing.T) {
	s := New("false", time.Second, true)

	if err := s.Say(context.Background(), "   "); err != nil {
		t.Errorf("Say() with blank text = %v, want nil", err)
	}
}

func TestSayWithoutCommandIsNoOp(t *testing.T) {
	s := New("", time.Second, true)

	if s.Enabled() {
		t.Error("Enabled() = true with no command, want false")
	}
	if err := s.Say(context.Background(), "anything"); err != nil {
		t.Errorf("Say() with no command = %v, want nil", err)
	}
}

func TestSayReportsCommandFailure(t *testing.T) {
	s := New("echo unsupported voice >&2; exit 3", time.Second, true)

	err := s.Say(context.Background(), "anything")
	if err == nil {
		t.Fatal("Say() error = nil, want failure")
	}
	if !strings.Contains(err.Error(), "unsupported voice") {
		t.Errorf("Say() error = %v, want stderr included", err)
	}
}

func TestSayTimesOut(t *testing.T) {
	s := New("sleep 5", 50*time.Millisecond, true)

	start := time.Now()
	err := s.Say(context.Background(), "anything")
	if err == nil {
		t.Fatal("Say() error = nil, want timeout")
	}
	if !strings.Contains(err.Error(), "timed out") {
		t.Errorf("Say() error = %v, want timeout message", err)
	}
	if elapsed := time.Since(start); elapsed > 3*time.Second {
		t.Errorf("Say() took %v, want the timeout to cut it short", elapsed)
	}
}

func TestSetEnabledTogglesSpeaker(t *testing.T) {
	s := New("cat > /dev/null", time.Second, true)
	if !s.Enabled() {
		t.Fatal("Enabled() = false, want true")
	}

	s.SetEnabled(false)
	if s.Enabled() {
		t.Error("Enabled() = true after SetEnabled(false)")
	}

	s.SetEnabled(true)
	if !s.Enabled() {
		t.Error("Enabled() = false after SetEnabled(true)")
	}
}
