// Package speech vocalizes prompts through a user-configured shell
// command. The command receives the text on stdin, so anything from
// `espeak` to `piper | aplay` pipelines works unchanged.
package speech

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// DefaultTimeout bounds a single vocalization when the config does not
// set one.
const DefaultTimeout = 10 * time.Second

// Speaker runs the configured command once per utterance. A Speaker
// with no command stays silent.
type Speaker struct {
	command string
	timeout time.Duration
	enabled bool
}

func New(command string, timeout time.Duration, enabled bool) *Speaker {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Speaker{command: command, timeout: timeout, enabled: enabled}
}

// Enabled reports whether Say will actually run the command.
func (s *Speaker) Enabled() bool {
	return s.enabled && s.command != ""
}

// SetEnabled flips vocalization on or off for the rest of the session.
func (s *Speaker) SetEnabled(enabled bool) {
	s.enabled = enabled
}

// Command returns the configured shell command, empty when unset.
func (s *Speaker) Command() string {
	return s.command
}

// Say pipes text into the command and waits for it to finish. Disabled
// speakers and blank text are no-ops. Failures are reported, never
// fatal; a review session survives a broken TTS pipeline.
func (s *Speaker) Say(ctx context.Context, text string) error {
	if !s.Enabled() || strings.TrimSpace(text) == "" {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "bash", "-c", s.command)
	cmd.Stdin = strings.NewReader(text)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return fmt.Errorf("speech: command timed out after %s", s.timeout)
		}
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("speech: %s: %w", msg, err)
		}
		return fmt.Errorf("speech: %w", err)
	}
	return nil
}
