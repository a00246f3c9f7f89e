package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"

	"github.com/jeanpaul/recall/internal/backup"
	"github.com/jeanpaul/recall/internal/config"
	"github.com/jeanpaul/recall/internal/headless"
	"github.com/jeanpaul/recall/internal/importer"
	"github.com/jeanpaul/recall/internal/speech"
	"github.com/jeanpaul/recall/internal/srs"
	"github.com/jeanpaul/recall/internal/storage"
	"github.com/jeanpaul/recall/internal/tui"
	"github.com/jeanpaul/recall/pkg/version"
)

func main() {
	dbFlag := flag.String("db-path", "", "Database file (overrides config)")
	deckFlag := flag.String("deck", "", "Deck name for imported cards (default: file name)")
	decksFlag := flag.String("decks", "", "Comma-separated decks to review (default: all)")
	delimiterFlag := flag.String("delimiter", "", "Field delimiter for delimited imports")
	flag.StringVar(delimiterFlag, "d", "", "Field delimiter for delimited imports")
	htmlFlag := flag.Bool("html", false, "Convert HTML in imported fields to markdown")
	stepsFlag := flag.Int("param-steps", 0, "Interval table size")
	horizonFlag := flag.Int("param-horizon", 0, "Last interval in hours")
	intervalsFlag := flag.Bool("show-intervals", false, "Print the interval table and exit")
	plainFlag := flag.Bool("plain", false, "Review over plain stdin/stdout (no TUI)")
	typedFlag := flag.Bool("typed", false, "Type answers before revealing them")
	noSpeechFlag := flag.Bool("no-speech", false, "Disable speech for this run")
	limitFlag := flag.Int("limit", 0, "Stop after this many reviews (0 = no limit)")
	versionFlag := flag.Bool("version", false, "Print version")
	helpFlag := flag.Bool("help", false, "Show help")
	flag.BoolVar(helpFlag, "h", false, "Show help")

	flag.Usage = showHelp
	flag.Parse()

	if *helpFlag {
		showHelp()
		os.Exit(0)
	}

	if *versionFlag {
		fmt.Printf("recall %s (%s)\n", version.Version, version.Commit)
		os.Exit(0)
	}

	cfg, err := config.Load()
	if err != nil {
		fatal("config error: %s", err)
	}

	// Flags beat the config file; zero values fall through to it.
	if *dbFlag != "" {
		cfg.Database = *dbFlag
	}
	if *delimiterFlag != "" {
		cfg.Delimiter = *delimiterFlag
	}
	if *stepsFlag > 0 {
		cfg.Table.Steps = *stepsFlag
	}
	if *horizonFlag > 0 {
		cfg.Table.HorizonHours = *horizonFlag
	}
	if *typedFlag {
		cfg.Review.Typed = true
	}
	if *limitFlag > 0 {
		cfg.Review.SessionLimit = *limitFlag
	}
	if *noSpeechFlag {
		cfg.Speech.Enabled = false
	}
	if err := cfg.Validate(); err != nil {
		fatal("config error: %s", err)
	}

	if *intervalsFlag {
		cmdIntervals(cfg)
		return
	}

	args := flag.Args()
	if len(args) > 0 {
		switch args[0] {
		case "add":
			if len(args) < 2 {
				fatal("usage: recall add <file|glob>...")
			}
			cmdAdd(cfg, args[1:], *deckFlag, *htmlFlag)
			return
		case "decks":
			cmdDecks(cfg)
			return
		case "stats":
			cmdStats(cfg)
			return
		case "export":
			if len(args) < 2 {
				fatal("usage: recall export <file>")
			}
			cmdExport(cfg, args[1])
			return
		case "import":
			if len(args) < 2 {
				fatal("usage: recall import <file> [--replace]")
			}
			replace := len(args) > 2 && args[2] == "--replace"
			cmdImport(cfg, args[1], replace)
			return
		case "doctor":
			cmdDoctor(cfg)
			return
		case "help":
			showHelp()
			return
		default:
			fatal("unknown command: %s (run 'recall help')", args[0])
		}
	}

	runSession(cfg, splitDecks(*decksFlag), *plainFlag)
}

// openStore opens the database and brings the schema up to date.
func openStore(cfg *config.Config) (*storage.Store, error) {
	store, err := storage.Open(cfg.DatabasePath())
	if err != nil {
		return nil, fmt.Errorf("opening database %s: %w", cfg.DatabasePath(), err)
	}
	if err := store.Migrate(); err != nil {
		store.Close()
		return nil, fmt.Errorf("migrating database: %w", err)
	}
	return store, nil
}

func buildTable(cfg *config.Config) (*srs.Table, error) {
	if cfg.Table.Steps == srs.DefaultSteps && cfg.Table.HorizonHours == srs.DefaultHorizonHours {
		return srs.Default(), nil
	}
	return srs.New(cfg.Table.Steps, cfg.Table.HorizonHours)
}

func splitDecks(s string) []string {
	if s == "" {
		return nil
	}
	var decks []string
	for _, d := range strings.Split(s, ",") {
		if d = strings.TrimSpace(d); d != "" {
			decks = append(decks, d)
		}
	}
	return decks
}

func runSession(cfg *config.Config, decks []string, plain bool) {
	store, err := openStore(cfg)
	if err != nil {
		fatal("%s", err)
	}
	defer store.Close()

	ctx := context.Background()
	items, err := store.Items(ctx, decks...)
	if err != nil {
		fatal("loading cards: %s", err)
	}
	if len(items) == 0 {
		fmt.Println(tui.HelpStyle.Render("No cards yet. Import some with: recall add cards.csv"))
		return
	}

	table, err := buildTable(cfg)
	if err != nil {
		fatal("%s", err)
	}
	sched := srs.NewScheduler(table, items)

	now := time.Now()
	if len(sched.DueItems(now)) == 0 {
		next := sched.NextDue(now)
		fmt.Println(tui.HelpStyle.Render(fmt.Sprintf("Nothing due. Next review scheduled for %s (%s)",
			next.Local().Format("Mon Jan 2 15:04"),
			humanize.RelTime(next, now, "ago", "from now"))))
		return
	}

	spk := speech.New(cfg.Speech.Command, cfg.SpeechTimeout(), cfg.Speech.Enabled)

	sessionID, err := store.StartSession(ctx, now)
	if err != nil {
		fatal("starting session: %s", err)
	}

	var reviewed, recalled int
	if isTerminal() && !plain {
		m := tui.NewModel(sched, store, spk, tui.Options{
			SessionID: sessionID,
			Decks:     decks,
			Typed:     cfg.Review.Typed,
			Limit:     cfg.Review.SessionLimit,
		})
		p := tea.NewProgram(m, tea.WithAltScreen())
		final, err := p.Run()
		if err != nil {
			fatal("session error: %s", err)
		}
		if fm, ok := final.(tui.Model); ok {
			reviewed, recalled = fm.Reviewed(), fm.Recalled()
		}
	} else {
		r := &headless.Runner{
			In:        os.Stdin,
			Out:       os.Stdout,
			Scheduler: sched,
			Recorder:  store,
			Speaker:   spk,
			SessionID: sessionID,
			Typed:     cfg.Review.Typed,
			Limit:     cfg.Review.SessionLimit,
		}
		if err := r.Run(ctx); err != nil {
			fatal("session error: %s", err)
		}
		reviewed, recalled = r.Reviewed(), r.Recalled()
	}

	if err := store.FinishSession(ctx, sessionID, time.Now(), reviewed, recalled); err != nil {
		fatal("finishing session: %s", err)
	}
}

func cmdAdd(cfg *config.Config, args []string, deck string, html bool) {
	paths, err := importer.ExpandGlobs(args)
	if err != nil {
		fatal("%s", err)
	}

	store, err := openStore(cfg)
	if err != nil {
		fatal("%s", err)
	}
	defer store.Close()

	table, err := buildTable(cfg)
	if err != nil {
		fatal("%s", err)
	}

	imp := importer.New(cfg.DelimiterRune(), html)
	sched := srs.NewScheduler(table, nil)
	now := time.Now()
	total := 0

	for _, path := range paths {
		pairs, declared, err := imp.File(path)
		if err != nil {
			fatal("%s", err)
		}
		name := deckNameFor(path, deck, declared)
		added := sched.AddItems(now, name, pairs)
		if err := store.InsertItems(context.Background(), added); err != nil {
			fatal("saving cards from %s: %s", path, err)
		}
		total += len(added)
		fmt.Printf("  %s  %d cards into %s\n",
			tui.RecalledStyle.Render("✓"),
			len(added),
			tui.DeckStyle.Render(name))
	}

	fmt.Println(tui.HelpStyle.Render(fmt.Sprintf("  %d cards imported", total)))
}

// deckNameFor picks the deck for an imported file: an explicit --deck flag
// wins, then a deck declared inside the file, then the file's base name.
func deckNameFor(path, flagDeck, declared string) string {
	if flagDeck != "" {
		return flagDeck
	}
	if declared != "" {
		return declared
	}
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func cmdDecks(cfg *config.Config) {
	store, err := openStore(cfg)
	if err != nil {
		fatal("%s", err)
	}
	defer store.Close()

	items, err := store.Items(context.Background())
	if err != nil {
		fatal("loading cards: %s", err)
	}
	if len(items) == 0 {
		fmt.Println(tui.HelpStyle.Render("No cards yet. Import some with: recall add cards.csv"))
		return
	}

	table, err := buildTable(cfg)
	if err != nil {
		fatal("%s", err)
	}

	type deckCount struct {
		total    int
		due      int
		mastered int
	}
	counts := map[string]*deckCount{}
	var order []string
	now := time.Now()
	for _, item := range items {
		c, ok := counts[item.Deck]
		if !ok {
			c = &deckCount{}
			counts[item.Deck] = c
			order = append(order, item.Deck)
		}
		c.total++
		if item.Due(now) {
			c.due++
		}
		if item.Step == table.LastStep() {
			c.mastered++
		}
	}

	fmt.Println(tui.BannerStyle.Render("  Decks"))
	fmt.Println()
	for _, name := range order {
		c := counts[name]
		fmt.Printf("  %s  %s\n",
			tui.DeckStyle.Render(fmt.Sprintf("%-24s", name)),
			tui.HelpStyle.Render(fmt.Sprintf("%4d cards  %4d due  %4d mastered", c.total, c.due, c.mastered)))
	}
}

func cmdStats(cfg *config.Config) {
	store, err := openStore(cfg)
	if err != nil {
		fatal("%s", err)
	}
	defer store.Close()

	ctx := context.Background()
	items, err := store.Items(ctx)
	if err != nil {
		fatal("loading cards: %s", err)
	}
	if len(items) == 0 {
		fmt.Println(tui.HelpStyle.Render("No cards yet. Import some with: recall add cards.csv"))
		return
	}

	table, err := buildTable(cfg)
	if err != nil {
		fatal("%s", err)
	}
	sched := srs.NewScheduler(table, items)

	now := time.Now()
	due := len(sched.DueItems(now))
	mastered := 0
	recalled, forgot := 0, 0
	for _, item := range items {
		if item.Step == table.LastStep() {
			mastered++
		}
		recalled += item.Recalled
		forgot += item.Forgot
	}

	fmt.Println(tui.BannerStyle.Render("  Collection"))
	fmt.Println()
	fmt.Printf("  cards      %d\n", len(items))
	fmt.Printf("  due now    %d\n", due)
	fmt.Printf("  mastered   %d\n", mastered)
	if recalled+forgot > 0 {
		rate := float64(recalled) / float64(recalled+forgot) * 100
		fmt.Printf("  recall     %.0f%% (%d of %d reviews)\n", rate, recalled, recalled+forgot)
	}
	if next := sched.NextDue(now); !next.IsZero() {
		fmt.Printf("  next due   %s (%s)\n",
			next.Local().Format("Mon Jan 2 15:04"),
			humanize.RelTime(next, now, "ago", "from now"))
	}

	total, err := store.CountReviews(ctx)
	if err != nil {
		fatal("counting reviews: %s", err)
	}
	sessions, err := store.RecentSessions(ctx, 5)
	if err != nil {
		fatal("loading sessions: %s", err)
	}
	if len(sessions) == 0 {
		return
	}

	fmt.Println()
	fmt.Println(tui.BannerStyle.Render("  Recent sessions"))
	fmt.Println()
	for _, s := range sessions {
		fmt.Printf("  %s  %s\n",
			s.StartedAt.Local().Format("Jan 2 15:04"),
			tui.HelpStyle.Render(fmt.Sprintf("%d reviewed, %d recalled", s.Reviewed, s.Recalled)))
	}
	fmt.Println()
	fmt.Println(tui.HelpStyle.Render(fmt.Sprintf("  %d reviews all time", total)))
}

func cmdExport(cfg *config.Config, path string) {
	store, err := openStore(cfg)
	if err != nil {
		fatal("%s", err)
	}
	defer store.Close()

	items, err := store.Items(context.Background())
	if err != nil {
		fatal("loading cards: %s", err)
	}
	if err := backup.WriteFile(path, time.Now(), items); err != nil {
		fatal("%s", err)
	}
	fmt.Printf("  %s  %d cards exported to %s\n", tui.RecalledStyle.Render("✓"), len(items), path)
}

func cmdImport(cfg *config.Config, path string, replace bool) {
	f, err := os.Open(path)
	if err != nil {
		fatal("%s", err)
	}
	defer f.Close()

	items, err := backup.Import(f)
	if err != nil {
		fatal("%s", err)
	}

	store, err := openStore(cfg)
	if err != nil {
		fatal("%s", err)
	}
	defer store.Close()

	ctx := context.Background()
	if replace {
		err = store.ReplaceItems(ctx, items)
	} else {
		err = store.InsertItems(ctx, items)
	}
	if err != nil {
		fatal("saving cards: %s", err)
	}

	verb := "imported"
	if replace {
		verb = "restored"
	}
	fmt.Printf("  %s  %d cards %s from %s\n", tui.RecalledStyle.Render("✓"), len(items), verb, path)
}

func cmdIntervals(cfg *config.Config) {
	table, err := buildTable(cfg)
	if err != nil {
		fatal("%s", err)
	}

	fmt.Println(tui.BannerStyle.Render("  Interval table"))
	fmt.Println()
	now := time.Now()
	for step, hours := range table.Hours() {
		d := time.Duration(hours) * time.Hour
		fmt.Printf("  %s %s\n",
			tui.DeckStyle.Render(fmt.Sprintf("step %2d", step)),
			tui.HelpStyle.Render(fmt.Sprintf("%5d h  (%s)", hours,
				strings.TrimSpace(humanize.RelTime(now.Add(d), now, "", "")))))
	}
}

func cmdDoctor(cfg *config.Config) {
	fmt.Print(tui.BannerStyle.Render(tui.Banner))
	fmt.Println(tui.BannerStyle.Render("  Environment check"))
	fmt.Println()

	fmt.Printf("  %s %s ... ", tui.SpinnerStyle.Render("●"), tui.DeckStyle.Render("config"))
	if _, err := os.Stat(config.Path()); err == nil {
		fmt.Println(tui.RecalledStyle.Render("✓ " + config.Path()))
	} else {
		fmt.Println(tui.HelpStyle.Render("- Using defaults (create " + config.Path() + " to customize)"))
	}

	fmt.Printf("  %s %s ... ", tui.SpinnerStyle.Render("●"), tui.DeckStyle.Render("database"))
	store, err := openStore(cfg)
	if err != nil {
		fmt.Println(tui.ErrorStyle.Render("✗ " + err.Error()))
	} else {
		items, err := store.Items(context.Background())
		store.Close()
		if err != nil {
			fmt.Println(tui.ErrorStyle.Render("✗ " + err.Error()))
		} else {
			fmt.Println(tui.RecalledStyle.Render(fmt.Sprintf("✓ %s (%d cards)", cfg.DatabasePath(), len(items))))
		}
	}

	fmt.Printf("  %s %s ... ", tui.SpinnerStyle.Render("●"), tui.DeckStyle.Render("speech"))
	switch {
	case cfg.Speech.Command == "":
		fmt.Println(tui.HelpStyle.Render("- Not configured (set speech.command, optional)"))
	case !cfg.Speech.Enabled:
		fmt.Println(tui.HelpStyle.Render("- Disabled in config"))
	default:
		prog := strings.Fields(cfg.Speech.Command)[0]
		if _, err := exec.LookPath(prog); err == nil {
			fmt.Println(tui.RecalledStyle.Render("✓ " + cfg.Speech.Command))
		} else {
			fmt.Println(tui.ErrorStyle.Render(fmt.Sprintf("✗ %s not found in PATH", prog)))
		}
	}

	fmt.Printf("  %s %s ... ", tui.SpinnerStyle.Render("●"), tui.DeckStyle.Render("terminal"))
	if isTerminal() {
		fmt.Println(tui.RecalledStyle.Render("✓ Interactive (full TUI)"))
	} else {
		fmt.Println(tui.HelpStyle.Render("- Not a terminal (sessions run headless)"))
	}
}

// isTerminal checks if stdin is a terminal
func isTerminal() bool {
	fi, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (fi.Mode() & os.ModeCharDevice) != 0
}

func fatal(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(os.Stderr, tui.ErrorStyle.Render("error: "+msg))
	os.Exit(1)
}

func showHelp() {
	help := `
` + tui.BannerStyle.Render("Recall") + ` - spaced repetition for your terminal

` + tui.DeckStyle.Render("USAGE:") + `
  recall [flags]              Review everything that is due
  recall <command> [args]     Run a command

` + tui.DeckStyle.Render("COMMANDS:") + `
  add <file|glob>...          Import cards (csv, tsv, xlsx, yaml)
  decks                       List decks with due and mastered counts
  stats                       Collection and session statistics
  export <file>               Write all cards to a JSON archive
  import <file> [--replace]   Load cards from a JSON archive
  doctor                      Check config, database, speech, terminal
  help                        Show this help

` + tui.DeckStyle.Render("FLAGS:") + `
  --db-path <file>            Database file (default: ` + config.DefaultDatabasePath() + `)
  --decks <a,b>               Review only these decks
  --deck <name>               Deck for imported cards (add)
  --delimiter, -d <char>      Import field delimiter (default: ,)
  --html                      Convert HTML in imported fields to markdown
  --param-steps <n>           Interval table size (default: 20)
  --param-horizon <hours>     Last interval in hours (default: 2160)
  --show-intervals            Print the interval table and exit
  --plain                     Plain stdin/stdout review (no TUI)
  --typed                     Type answers before revealing them
  --no-speech                 Disable speech for this run
  --limit <n>                 Stop after this many reviews
  --version                   Show version
  --help, -h                  Show this help

` + tui.DeckStyle.Render("EXAMPLES:") + `
  recall add spanish.csv      Import a deck from a CSV file
  recall add --html deck.xlsx Import a spreadsheet, converting HTML
  recall --decks spanish      Review one deck in the TUI
  recall --plain --typed      Review headless, typing each answer
  recall doctor               Check the environment

` + tui.DeckStyle.Render("SESSION KEYS:") + `
  enter / space               Reveal the answer
  r / f                       Grade: recalled / forgot
  s                           Speak the visible side
  m                           Session menu
  q / esc                     End the session

` + tui.HelpStyle.Render("Documentation: https://github.com/jeanpaul/recall") + `
`
	fmt.Println(help)
}
