package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"toolbox/internal/chrono"
	"toolbox/internal/livetimer"
	"toolbox/internal/procman"
)

var (
	procCaseSensitive bool
	procSignal        string

	sleepQuiet bool

	// Swapped in tests.
	procManager = procman.NewManager(nil)
)

// procCmd groups process helpers
var procCmd = &cobra.Command{
	Use:   "proc",
	Short: "Find and signal processes by name",
}

var procFindCmd = &cobra.Command{
	Use:   "find [name]",
	Short: "List processes whose name contains the given text",
	Args:  cobra.ExactArgs(1),
	RunE:  runProcFind,
}

var procKillCmd = &cobra.Command{
	Use:   "kill [name]",
	Short: "Signal every process whose name contains the given text",
	Args:  cobra.ExactArgs(1),
	RunE:  runProcKill,
}

// sleepCmd waits with a visible countdown
var sleepCmd = &cobra.Command{
	Use:   "sleep [duration]",
	Short: "Sleep with a countdown; Ctrl+C interrupts",
	Example: `  toolbox sleep 90s
  toolbox sleep 1h30m --quiet`,
	Args: cobra.ExactArgs(1),
	RunE: runSleep,
}

func init() {
	procCmd.PersistentFlags().BoolVar(&procCaseSensitive, "case-sensitive", false, "Match names case-sensitively")
	procKillCmd.Flags().StringVarP(&procSignal, "signal", "s", "INT", "Signal to send (INT, TERM, KILL, HUP)")
	procCmd.AddCommand(procFindCmd)
	procCmd.AddCommand(procKillCmd)

	sleepCmd.Flags().BoolVarP(&sleepQuiet, "quiet", "q", false, "No countdown output")

	rootCmd.AddCommand(procCmd)
	rootCmd.AddCommand(sleepCmd)
}

func runProcFind(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	procs, err := procManager.FindAllByName(ctx, args[0], procCaseSensitive)
	if err != nil {
		return err
	}
	if len(procs) == 0 {
		fmt.Printf("No processes matching %q.\n", args[0])
		return nil
	}

	fmt.Printf("%7s  %-24s  %-12s  %s\n", "PID", "NAME", "USER", "STARTED")
	for _, p := range procs {
		started := ""
		if !p.Created.IsZero() {
			started = p.Created.Format("2006-01-02 15:04:05")
		}
		fmt.Printf("%7d  %-24s  %-12s  %s\n", p.PID, p.Name, p.Username, started)
	}
	return nil
}

func parseSignal(name string) (syscall.Signal, error) {
	switch strings.TrimPrefix(strings.ToUpper(name), "SIG") {
	case "", "INT":
		return procman.DefaultSignal, nil
	case "TERM":
		return syscall.SIGTERM, nil
	case "KILL":
		return syscall.SIGKILL, nil
	case "HUP":
		return syscall.SIGHUP, nil
	}
	return 0, fmt.Errorf("unsupported signal %q", name)
}

func runProcKill(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	sig, err := parseSignal(procSignal)
	if err != nil {
		return err
	}
	targets, err := procManager.KillAllByName(ctx, args[0], procCaseSensitive, sig)
	for _, p := range targets {
		fmt.Printf("Sent %s to %d (%s)\n", sig, p.PID, p.Name)
	}
	if err != nil {
		logger.Warn("Signalling failed", zap.String("name", args[0]), zap.Error(err))
	}
	return err
}

func runSleep(cmd *cobra.Command, args []string) error {
	d, err := time.ParseDuration(args[0])
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", args[0], err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if sleepQuiet {
		err = chrono.Sleep(ctx, d, cfg.GetSleepPrecision())
	} else {
		for remaining := range chrono.Countdown(ctx, d, time.Second) {
			fmt.Printf("\r%s remaining ", livetimer.FormatHHMMSS(remaining.Round(time.Second)))
		}
		fmt.Println()
		err = ctx.Err()
	}

	if errors.Is(err, context.Canceled) {
		fmt.Println("Interrupted.")
		return nil
	}
	return err
}
