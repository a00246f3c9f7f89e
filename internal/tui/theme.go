package tui

import "github.com/charmbracelet/lipgloss"

var (
	// Core palette
	Green       = lipgloss.Color("#00FF41")
	BrightGreen = lipgloss.Color("#39FF14")
	MedGreen    = lipgloss.Color("#00C832")
	DarkGreen   = lipgloss.Color("#008F11")
	DimGreen    = lipgloss.Color("#003B00")
	Cyan        = lipgloss.Color("#00D4AA")
	Red         = lipgloss.Color("#FF4136")
	Black       = lipgloss.Color("#0D0208")
	MidGray     = lipgloss.Color("#3a3a4e")
	LightGray   = lipgloss.Color("#aaaaaa")
	White       = lipgloss.Color("#e0e0e0")

	// Status bar
	StatusBarStyle = lipgloss.NewStyle().
			Background(DarkGreen).
			Foreground(Black).
			Bold(true).
			Padding(0, 1)

	StatusDeckStyle = lipgloss.NewStyle().
			Background(Green).
			Foreground(Black).
			Bold(true).
			Padding(0, 1)

	// Card faces
	DeckStyle = lipgloss.NewStyle().
			Foreground(Cyan).
			Bold(true)

	QuestionStyle = lipgloss.NewStyle().
			Foreground(White)

	AnswerStyle = lipgloss.NewStyle().
			Foreground(Green)

	// Review trail and verdicts
	RecalledStyle = lipgloss.NewStyle().
			Foreground(BrightGreen).
			Bold(true)

	ForgotStyle = lipgloss.NewStyle().
			Foreground(Red).
			Bold(true)

	MatchStyle = lipgloss.NewStyle().
			Foreground(BrightGreen).
			Bold(true)

	MismatchStyle = lipgloss.NewStyle().
			Foreground(Red).
			Bold(true)

	// Typed-answer diff
	DiffAddStyle = lipgloss.NewStyle().
			Foreground(MedGreen)

	DiffDelStyle = lipgloss.NewStyle().
			Foreground(Red)

	DiffHunkStyle = lipgloss.NewStyle().
			Foreground(Cyan)

	DiffMetaStyle = lipgloss.NewStyle().
			Foreground(MidGray)

	// Input
	InputBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(DarkGreen).
			Padding(0, 1)

	PromptStyle = lipgloss.NewStyle().
			Foreground(Green).
			Bold(true)

	// Spinner
	SpinnerStyle = lipgloss.NewStyle().
			Foreground(BrightGreen)

	// Banner
	BannerStyle = lipgloss.NewStyle().
			Foreground(Green).
			Bold(true)

	// Separator
	SeparatorStyle = lipgloss.NewStyle().
			Foreground(DimGreen)

	// Error
	ErrorStyle = lipgloss.NewStyle().
			Foreground(Red).
			Bold(true)

	// Help text
	HelpStyle = lipgloss.NewStyle().
			Foreground(DimGreen)

	// Menu popup
	MenuBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(DarkGreen).
			Padding(0, 1)

	// End-of-session summary
	SummaryBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Green).
			Padding(1, 2)

	BarStyle = lipgloss.NewStyle().
			Foreground(MedGreen)
)

const Banner = `
  ██████╗ ███████╗ ██████╗ █████╗ ██╗     ██╗
  ██╔══██╗██╔════╝██╔════╝██╔══██╗██║     ██║
  ██████╔╝█████╗  ██║     ███████║██║     ██║
  ██╔══██╗██╔══╝  ██║     ██╔══██║██║     ██║
  ██║  ██║███████╗╚██████╗██║  ██║███████╗███████╗
  ╚═╝  ╚═╝╚══════╝ ╚═════╝ ╚═╝  ╚═╝╚══════╝╚══════╝
`
