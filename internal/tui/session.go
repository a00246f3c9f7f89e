package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeanpaul/recall/internal/srs"
	"github.com/jeanpaul/recall/internal/storage"
)

// SpeechSpinner plays while the vocalization command runs.
var SpeechSpinner = spinner.Spinner{
	Frames: []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"},
	FPS:    time.Second / 12,
}

// Recorder persists one review transition. *storage.Store satisfies it;
// tests substitute their own.
type Recorder interface {
	RecordReview(ctx context.Context, item *srs.Item, rev storage.Review) error
}

// Speaker vocalizes a card face. *speech.Speaker satisfies it.
type Speaker interface {
	Say(ctx context.Context, text string) error
	Enabled() bool
	SetEnabled(enabled bool)
}

type stage int

const (
	stageAsk stage = iota
	stageReveal
	stageDone
)

type speechDoneMsg struct{ err error }

// Options carries per-session settings into the model.
type Options struct {
	SessionID string
	Decks     []string
	Typed     bool
	Limit     int
	Now       func() time.Time
}

type Model struct {
	width, height int
	viewport      viewport.Model
	textarea      textarea.Model
	spinner       spinner.Model
	menu          MenuModel
	renderer      *glamour.TermRenderer

	scheduler *srs.Scheduler
	recorder  Recorder
	speaker   Speaker
	now       func() time.Time

	sessionID string
	deckLabel string
	typed     bool
	limit     int

	stage         stage
	queue         []*srs.Item
	current       *srs.Item
	typedAnswer   string
	answered      bool
	speaking      bool
	showIntervals bool
	errText       string

	reviewed int
	recalled int
	outcomes []srs.Outcome
	next     time.Time
}

func NewModel(sched *srs.Scheduler, rec Recorder, spk Speaker, opts Options) Model {
	ta := textarea.New()
	ta.Placeholder = "Type the answer..."
	ta.CharLimit = 0
	ta.SetHeight(1)
	ta.ShowLineNumbers = false
	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.FocusedStyle.Base = lipgloss.NewStyle().Foreground(White)
	ta.FocusedStyle.Placeholder = lipgloss.NewStyle().Foreground(DimGreen)
	ta.BlurredStyle.Base = lipgloss.NewStyle().Foreground(DarkGreen)

	sp := spinner.New()
	sp.Spinner = SpeechSpinner
	sp.Style = SpinnerStyle

	vp := viewport.New(80, 20)

	r, _ := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)

	now := opts.Now
	if now == nil {
		now = time.Now
	}

	deckLabel := strings.Join(opts.Decks, ", ")
	if deckLabel == "" {
		deckLabel = "all decks"
	}

	m := Model{
		viewport:  vp,
		textarea:  ta,
		spinner:   sp,
		menu:      NewMenuModel(),
		renderer:  r,
		scheduler: sched,
		recorder:  rec,
		speaker:   spk,
		now:       now,
		sessionID: opts.SessionID,
		deckLabel: deckLabel,
		typed:     opts.Typed,
		limit:     opts.Limit,
	}
	m.advance()
	m.rebuildView()
	return m
}

// Reviewed reports how many cards were graded this session.
func (m Model) Reviewed() int { return m.reviewed }

// Recalled reports how many of those were graded correct.
func (m Model) Recalled() int { return m.recalled }

func (m Model) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, m.spinner.Tick)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		headerH := 2
		helpH := 2
		inputH := 0
		if m.typed && m.stage == stageAsk {
			inputH = 3
		}
		menuH := 0
		if m.menu.active {
			menuH = 16
		}
		m.viewport.Width = msg.Width - 4
		m.viewport.Height = msg.Height - headerH - inputH - helpH - menuH
		m.textarea.SetWidth(msg.Width - 8)
		m.rebuildView()

	case tea.KeyMsg:
		if m.menu.active {
			var cmd tea.Cmd
			m.menu, cmd = m.menu.Update(msg)
			if msg.String() == "enter" && m.menu.active {
				m.menu.active = false
				m.runMenuAction(m.menu.Selected())
				m.rebuildView()
				return m, nil
			}
			return m, cmd
		}

		switch m.stage {
		case stageAsk:
			return m.updateAsk(msg)
		case stageReveal:
			return m.updateReveal(msg)
		case stageDone:
			switch msg.String() {
			case "q", "esc", "enter", " ", "ctrl+c":
				return m, tea.Quit
			}
			return m, nil
		}

	case speechDoneMsg:
		m.speaking = false
		if msg.err != nil {
			m.errText = msg.err.Error()
		}
		m.rebuildView()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		if m.speaking {
			m.rebuildView()
		}
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m *Model) updateAsk(msg tea.KeyMsg) (Model, tea.Cmd) {
	if m.typed {
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return *m, tea.Quit
		case tea.KeyCtrlS:
			return *m, m.speak(m.current.Question)
		case tea.KeyEnter:
			if msg.Alt {
				break
			}
			m.typedAnswer = m.textarea.Value()
			m.answered = true
			m.textarea.Blur()
			m.stage = stageReveal
			m.rebuildView()
			return *m, nil
		}
		var cmd tea.Cmd
		m.textarea, cmd = m.textarea.Update(msg)
		return *m, cmd
	}

	switch msg.String() {
	case "ctrl+c", "q", "esc":
		return *m, tea.Quit
	case "enter", " ":
		m.stage = stageReveal
		m.rebuildView()
		return *m, nil
	case "s":
		return *m, m.speak(m.current.Question)
	case "m":
		m.openMenu()
		return *m, nil
	}
	return *m, nil
}

func (m *Model) updateReveal(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q", "esc":
		return *m, tea.Quit
	case "r":
		return m.mark(srs.Correct)
	case "f":
		return m.mark(srs.Incorrect)
	case "s":
		return *m, m.speak(m.current.Answer)
	case "m":
		m.openMenu()
		return *m, nil
	}
	return *m, nil
}

func (m *Model) mark(outcome srs.Outcome) (Model, tea.Cmd) {
	if err := m.review(outcome); err != nil {
		m.errText = err.Error()
		m.rebuildView()
		return *m, nil
	}
	m.advance()
	m.rebuildView()
	return *m, nil
}

// review grades the current card and persists the transition before the
// session moves on. If the save fails the item is restored, so grading
// again after a transient error does not advance it twice.
func (m *Model) review(outcome srs.Outcome) error {
	item := m.current
	prev := *item
	now := m.now()
	if err := m.scheduler.Review(item, outcome, now); err != nil {
		return err
	}
	rev := storage.Review{
		SessionID:  m.sessionID,
		Outcome:    outcome,
		StepBefore: prev.Step,
		StepAfter:  item.Step,
		At:         now,
	}
	if err := m.recorder.RecordReview(context.Background(), item, rev); err != nil {
		*item = prev
		return err
	}
	m.reviewed++
	if outcome == srs.Correct {
		m.recalled++
	}
	m.outcomes = append(m.outcomes, outcome)
	return nil
}

// advance pulls the next due card, re-querying the scheduler between
// passes so a card forgotten earlier in the session comes back around.
func (m *Model) advance() {
	m.errText = ""
	m.typedAnswer = ""
	m.answered = false
	if m.limit > 0 && m.reviewed >= m.limit {
		m.finish()
		return
	}
	if len(m.queue) == 0 {
		m.queue = m.scheduler.DueItems(m.now())
	}
	if len(m.queue) == 0 {
		m.finish()
		return
	}
	m.current = m.queue[0]
	m.queue = m.queue[1:]
	m.stage = stageAsk
	if m.typed {
		m.textarea.Reset()
		m.textarea.Focus()
	}
}

func (m *Model) finish() {
	m.stage = stageDone
	m.current = nil
	m.queue = nil
	m.next = m.scheduler.NextDue(m.now())
}

func (m *Model) openMenu() {
	m.menu.active = true
	m.menu.list.ResetSelected()
}

func (m *Model) runMenuAction(action string) {
	switch action {
	case menuSpeech:
		m.speaker.SetEnabled(!m.speaker.Enabled())
	case menuTyped:
		m.typed = !m.typed
		if m.typed && m.stage == stageAsk {
			m.textarea.Reset()
			m.textarea.Focus()
		}
	case menuIntervals:
		m.showIntervals = !m.showIntervals
	case menuEndSession:
		m.finish()
	}
}

func (m *Model) speak(text string) tea.Cmd {
	if !m.speaker.Enabled() {
		m.errText = "speech is not configured (set speech.command)"
		m.rebuildView()
		return nil
	}
	m.speaking = true
	m.errText = ""
	m.rebuildView()
	speaker := m.speaker
	return tea.Batch(m.spinner.Tick, func() tea.Msg {
		return speechDoneMsg{err: speaker.Say(context.Background(), text)}
	})
}

func (m *Model) rebuildView() {
	var sb strings.Builder

	if m.showIntervals {
		sb.WriteString(m.renderIntervals())
	}

	if m.current != nil {
		sb.WriteString(DeckStyle.Render(m.current.Deck) + "\n\n")
		sb.WriteString(m.renderMarkdown(m.current.Question))

		if m.stage == stageReveal {
			sb.WriteString("\n" + SeparatorStyle.Render(strings.Repeat("─", 40)) + "\n\n")
			sb.WriteString(m.renderMarkdown(m.current.Answer))
			if m.answered {
				sb.WriteString("\n" + m.renderTypedVerdict())
			}
		}
	}

	if m.speaking {
		sb.WriteString("\n" + SpinnerStyle.Render(m.spinner.View()+" speaking..."))
	}
	if m.errText != "" {
		sb.WriteString("\n" + ErrorStyle.Render("✗ "+m.errText) + "\n")
	}

	m.viewport.SetContent(sb.String())
	m.viewport.GotoTop()
}

func (m *Model) renderIntervals() string {
	hours := m.scheduler.Table().Hours()
	parts := make([]string, len(hours))
	for i, h := range hours {
		parts[i] = strconv.Itoa(h)
	}
	return HelpStyle.Render("intervals (h): "+strings.Join(parts, " ")) + "\n\n"
}

func (m *Model) renderMarkdown(content string) string {
	rendered, err := m.renderer.Render(content)
	if err != nil {
		return content + "\n"
	}
	return strings.TrimRight(rendered, "\n") + "\n"
}

func (m *Model) renderTypedVerdict() string {
	if strings.TrimSpace(m.typedAnswer) == strings.TrimSpace(m.current.Answer) {
		return MatchStyle.Render("✓ your answer matches") + "\n"
	}
	var sb strings.Builder
	sb.WriteString(MismatchStyle.Render("✗ differs from the card") + "\n\n")
	sb.WriteString(renderDiff(m.current.Answer, m.typedAnswer))
	return sb.String()
}

func (m Model) View() string {
	if m.stage == stageDone {
		return m.doneView()
	}

	counts := fmt.Sprintf(" %d left · %d reviewed · %d recalled ",
		m.remaining(), m.reviewed, m.recalled)
	header := lipgloss.JoinHorizontal(lipgloss.Top,
		StatusDeckStyle.Render(" RECALL "),
		StatusBarStyle.Render(m.deckLabel),
		HelpStyle.Render(counts),
		trailGlyphs(m.outcomes, 5),
	)

	parts := []string{header, "", m.viewport.View()}

	if m.typed && m.stage == stageAsk {
		input := lipgloss.JoinHorizontal(lipgloss.Top,
			PromptStyle.Render("> "),
			m.textarea.View(),
		)
		width := m.width - 4
		if width < 20 {
			width = 20
		}
		parts = append(parts, InputBoxStyle.Width(width).Render(input))
	}

	parts = append(parts, HelpStyle.Render(m.helpLine()))

	view := lipgloss.JoinVertical(lipgloss.Left, parts...)
	if m.menu.active {
		return lipgloss.JoinVertical(lipgloss.Left, view, m.menu.View())
	}
	return view
}

func (m Model) remaining() int {
	n := len(m.queue)
	if m.current != nil {
		n++
	}
	return n
}

func (m Model) helpLine() string {
	switch {
	case m.stage == stageAsk && m.typed:
		return "enter: submit  •  ctrl+s: speak  •  esc: quit"
	case m.stage == stageAsk:
		return "enter/space: reveal  •  s: speak  •  m: menu  •  q: quit"
	default:
		return "r: recalled  •  f: forgot  •  s: speak  •  m: menu  •  q: quit"
	}
}

func (m Model) doneView() string {
	rate := 0.0
	if m.reviewed > 0 {
		rate = float64(m.recalled) / float64(m.reviewed)
	}
	lines := []string{
		BannerStyle.Render("Session complete"),
		"",
		fmt.Sprintf("reviewed  %d", m.reviewed),
		fmt.Sprintf("recalled  %d", m.recalled),
		fmt.Sprintf("rate      %s %.0f%%", BarStyle.Render(makeBar(rate, 20)), rate*100),
		"",
		AnswerStyle.Render(nextReviewLine(m.next, m.now())),
		"",
		HelpStyle.Render("press q to quit"),
	}
	box := SummaryBoxStyle.Render(strings.Join(lines, "\n"))
	if m.width > 0 && m.height > 0 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
	}
	return box
}
