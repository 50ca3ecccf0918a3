package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"toolbox/cmd/toolbox/ui"
	"toolbox/internal/livetimer"
	"toolbox/internal/store"
)

var (
	timerLabel   string
	timerNoStart bool
	listLimit    int
	showRaw      bool
)

// timerCmd runs the interactive live timer
var timerCmd = &cobra.Command{
	Use:   "timer",
	Short: "Run a live pausable timer",
	Long: `Shows a live HH:MM:SS timer.

Keys:
  space  start, pause or resume
  s      stop
  r      reset and start again
  q      quit

On quit the ledger is written to <data dir>/ledgers and the session is
archived so it can be inspected later with "toolbox timer show".`,
	RunE: runTimer,
}

var timerListCmd = &cobra.Command{
	Use:   "list",
	Short: "List archived timer sessions",
	RunE:  runTimerList,
}

var timerShowCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Show an archived timer and its ledger",
	Args:  cobra.ExactArgs(1),
	RunE:  runTimerShow,
}

var timerRmCmd = &cobra.Command{
	Use:   "rm [id]",
	Short: "Delete an archived timer",
	Args:  cobra.ExactArgs(1),
	RunE:  runTimerRm,
}

func init() {
	timerCmd.Flags().StringVarP(&timerLabel, "label", "l", "", "Label stored with the session")
	timerCmd.Flags().BoolVar(&timerNoStart, "no-start", false, "Wait for space before starting")
	timerListCmd.Flags().IntVarP(&listLimit, "limit", "n", 20, "Maximum sessions to list (0 for all)")
	timerShowCmd.Flags().BoolVar(&showRaw, "raw", false, "Print markdown without rendering")

	timerCmd.AddCommand(timerListCmd)
	timerCmd.AddCommand(timerShowCmd)
	timerCmd.AddCommand(timerRmCmd)
	rootCmd.AddCommand(timerCmd)
}

func runTimer(cmd *cobra.Command, args []string) error {
	t := livetimer.New(livetimer.WithLabel(timerLabel))
	if !timerNoStart {
		if err := t.Start(); err != nil {
			return err
		}
	}
	logger.Info("Timer started", zap.String("id", t.ID().String()))

	styles := ui.NewStyles(ui.ThemeFor(cfg.UX.Theme))
	model := ui.NewTimerPageModel(t, styles, cfg.GetRefreshInterval())
	final, err := tea.NewProgram(model).Run()
	if err != nil {
		return fmt.Errorf("timer display failed: %w", err)
	}
	if page, ok := final.(ui.TimerPageModel); ok {
		t = page.Timer()
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return finishTimer(ctx, t)
}

// finishTimer prints the final reading, then writes and archives the ledger
// as configured.
func finishTimer(ctx context.Context, t *livetimer.Timer) error {
	if t.State() != livetimer.StateCreated {
		elapsed, err := t.ElapsedString()
		if err != nil {
			return err
		}
		fmt.Printf("Elapsed: %s (paused %s)\n", elapsed, livetimer.FormatHHMMSS(t.TotalPause()))
	}

	if cfg.Timer.WriteLedger {
		dir, err := cfg.ResolveLedgerDir()
		if err != nil {
			return err
		}
		path, err := t.History().Write(dir)
		if err != nil {
			return err
		}
		fmt.Printf("Ledger written to %s\n", path)
	}

	if cfg.Timer.Archive {
		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()
		if err := s.SaveTimer(ctx, store.SessionFromTimer(t)); err != nil {
			return err
		}
		fmt.Printf("Archived timer %s\n", t.ID())
	}
	return nil
}

func openStore() (*store.Store, error) {
	path, err := cfg.ResolveDatabase()
	if err != nil {
		return nil, err
	}
	logger.Debug("Opening archive", zap.String("path", path))
	return store.Open(path)
}

func runTimerList(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	sessions, err := s.ListTimers(ctx, listLimit)
	if err != nil {
		return err
	}
	if len(sessions) == 0 {
		fmt.Println("No archived timers.")
		return nil
	}

	fmt.Printf("%-8s  %-19s  %-8s  %-8s  %7s  %s\n", "ID", "CREATED", "STATE", "ELAPSED", "ENTRIES", "LABEL")
	for _, sum := range sessions {
		fmt.Printf("%-8s  %-19s  %-8s  %-8s  %7d  %s\n",
			shortID(sum.ID),
			sum.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			sum.State,
			livetimer.FormatHHMMSS(sum.Elapsed),
			sum.EntryCount,
			sum.Label)
	}
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func runTimerShow(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	id, err := s.ResolveID(ctx, args[0])
	if err != nil {
		return err
	}
	sess, err := s.LoadTimer(ctx, id)
	if err != nil {
		return err
	}

	md := sessionMarkdown(sess)
	if showRaw {
		fmt.Print(md)
		return nil
	}
	out, err := renderMarkdown(md)
	if err != nil {
		logger.Debug("Markdown rendering failed", zap.Error(err))
		fmt.Print(md)
		return nil
	}
	fmt.Print(out)
	return nil
}

func sessionMarkdown(sess store.Session) string {
	var sb strings.Builder

	title := sess.Label
	if title == "" {
		title = shortID(sess.ID)
	}
	sb.WriteString(fmt.Sprintf("# Timer %s\n\n", title))
	sb.WriteString(fmt.Sprintf("- **ID:** `%s`\n", sess.ID))
	sb.WriteString(fmt.Sprintf("- **State:** %s\n", sess.State))
	sb.WriteString(fmt.Sprintf("- **Created:** %s\n", sess.CreatedAt.Local().Format(time.RFC1123)))
	sb.WriteString(fmt.Sprintf("- **Elapsed:** %s\n", livetimer.FormatHHMMSS(sess.Elapsed)))
	sb.WriteString(fmt.Sprintf("- **Paused:** %s\n", livetimer.FormatHHMMSS(sess.TotalPause)))
	sb.WriteString(fmt.Sprintf("- **Resets:** %d\n\n", sess.Resets))

	sb.WriteString("## Ledger\n\n")
	sb.WriteString("| # | Time | Action | Since last | Since create |\n")
	sb.WriteString("|---|------|--------|------------|--------------|\n")
	for i, e := range sess.Entries {
		sb.WriteString(fmt.Sprintf("| %d | %s | %s | %s | %s |\n",
			i+1,
			e.Time.Local().Format("15:04:05.000"),
			e.Action,
			e.SinceLast.Round(time.Millisecond),
			e.SinceCreate.Round(time.Millisecond)))
	}
	return sb.String()
}

func renderMarkdown(md string) (string, error) {
	wrap := cfg.UX.WordWrap
	if wrap <= 0 {
		wrap = 80
	}
	style := glamour.WithAutoStyle()
	switch cfg.UX.Theme {
	case "light", "dark":
		style = glamour.WithStylePath(cfg.UX.Theme)
	}
	r, err := glamour.NewTermRenderer(style, glamour.WithWordWrap(wrap))
	if err != nil {
		return "", err
	}
	return r.Render(md)
}

func runTimerRm(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	id, err := s.ResolveID(ctx, args[0])
	if err != nil {
		return err
	}
	if err := s.DeleteTimer(ctx, id); err != nil {
		return err
	}
	logger.Info("Timer deleted", zap.String("id", id))
	fmt.Printf("Deleted timer %s\n", id)
	return nil
}
