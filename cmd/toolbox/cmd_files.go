package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"toolbox/internal/conversions/bytesize"
	"toolbox/internal/filesystem"
	"toolbox/internal/humanize"
	"toolbox/internal/pathman"
	"toolbox/internal/version"
)

var (
	versionFile      string
	versionSatisfies string

	noCreate bool
	gather   pathman.GatherOptions

	filesWatch bool
)

// versionCmd reads and bumps a VERSION file
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Read, check and bump a VERSION file",
}

var versionShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the version in the VERSION file",
	Args:  cobra.NoArgs,
	RunE:  runVersionShow,
}

var versionBumpCmd = &cobra.Command{
	Use:   "bump [major|minor|patch|release|num]",
	Short: "Bump one part of the version and write it back",
	Long: `Bumps one part of the version in the VERSION file.

  major, minor, patch  final release with lower parts zeroed
  release              advance the channel (dev, alpha, beta, rc, final)
  num                  advance the release number within the channel`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"major", "minor", "patch", "release", "num"},
	RunE:      runVersionBump,
}

// pathCmd groups path helpers
var pathCmd = &cobra.Command{
	Use:   "path",
	Short: "Prepare paths and gather files",
}

var pathPrepareCmd = &cobra.Command{
	Use:   "prepare [path]",
	Short: "Expand and resolve a path, creating it if it is a directory",
	Args:  cobra.ExactArgs(1),
	RunE:  runPathPrepare,
}

var pathGatherCmd = &cobra.Command{
	Use:   "gather [dir]",
	Short: "List the files in a directory",
	Args:  cobra.ExactArgs(1),
	RunE:  runPathGather,
}

// filesCmd summarizes a directory
var filesCmd = &cobra.Command{
	Use:   "files [dir]",
	Short: "Summarize a directory's files by extension",
	Long: `Stats every file in a directory and prints totals per extension.

With --watch the summary is reprinted whenever the directory changes,
until interrupted.`,
	Args: cobra.ExactArgs(1),
	RunE: runFiles,
}

func init() {
	versionCmd.PersistentFlags().StringVarP(&versionFile, "file", "f", "VERSION", "Version file")
	versionShowCmd.Flags().StringVar(&versionSatisfies, "satisfies", "", "Check the version against a constraint, e.g. \">= 1.2, < 2\"")
	versionCmd.AddCommand(versionShowCmd)
	versionCmd.AddCommand(versionBumpCmd)

	pathPrepareCmd.Flags().BoolVar(&noCreate, "no-create", false, "Do not create missing directories")
	for _, c := range []*cobra.Command{pathGatherCmd, filesCmd} {
		c.Flags().BoolVarP(&gather.Recursive, "recursive", "r", false, "Descend into subdirectories")
		c.Flags().StringSliceVarP(&gather.Extensions, "ext", "e", nil, "Only files with these extensions")
		c.Flags().StringSliceVar(&gather.IgnoreDirs, "ignore-dir", nil, "Directory names to skip")
		c.Flags().BoolVarP(&gather.IgnoreCase, "ignore-case", "i", false, "Match extensions case-insensitively")
	}
	filesCmd.Flags().BoolVarP(&filesWatch, "watch", "w", false, "Reprint the summary when the directory changes")
	pathCmd.AddCommand(pathPrepareCmd)
	pathCmd.AddCommand(pathGatherCmd)

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(pathCmd)
	rootCmd.AddCommand(filesCmd)
}

func runVersionShow(cmd *cobra.Command, args []string) error {
	v, err := version.ReadFile(versionFile)
	if err != nil {
		return err
	}
	fmt.Printf("%s (%s)\n", v, v.FullString())

	if versionSatisfies == "" {
		return nil
	}
	ok, err := v.Satisfies(versionSatisfies)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%s does not satisfy %q", v, versionSatisfies)
	}
	fmt.Printf("%s satisfies %q\n", v, versionSatisfies)
	return nil
}

func runVersionBump(cmd *cobra.Command, args []string) error {
	v, err := version.ReadFile(versionFile)
	if err != nil {
		return err
	}
	next, err := v.Bump(version.Part(args[0]))
	if err != nil {
		return err
	}
	if err := version.WriteFile(versionFile, next); err != nil {
		return err
	}
	logger.Info("Version bumped", zap.String("from", v.String()), zap.String("to", next.String()))
	fmt.Printf("%s -> %s\n", v, next)
	return nil
}

func runPathPrepare(cmd *cobra.Command, args []string) error {
	p, err := pathman.Prepare(args[0], pathman.PrepareOptions{NoCreate: noCreate})
	if err != nil {
		return err
	}
	fmt.Println(p)
	return nil
}

func runPathGather(cmd *cobra.Command, args []string) error {
	dir, err := pathman.Provision(args[0], pathman.ProvisionOptions{})
	if err != nil {
		return err
	}
	files, err := pathman.GatherFiles(dir, gather)
	if err != nil {
		return err
	}
	for _, f := range files {
		fmt.Println(f)
	}
	logger.Debug("Gathered files", zap.String("dir", dir), zap.Int("count", len(files)))
	return nil
}

func runFiles(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c, err := filesystem.FromDir(args[0], gather, filesystem.WithWorkers(cfg.Files.Workers))
	if err != nil {
		return err
	}
	if err := c.Process(ctx); err != nil {
		return err
	}
	if err := printCollection(c); err != nil {
		return err
	}
	if !filesWatch {
		return nil
	}

	changed := make(chan struct{}, 1)
	w, err := c.Watch(ctx, c.Dir(),
		filesystem.WithDebounce(cfg.GetWatchDebounce()),
		filesystem.OnChange(func(paths []string) {
			logger.Debug("Directory changed", zap.Strings("paths", paths))
			select {
			case changed <- struct{}{}:
			default:
			}
		}))
	if err != nil {
		return fmt.Errorf("failed to watch %s: %w", c.Dir(), err)
	}
	defer w.Stop()

	fmt.Printf("\nWatching %s (Ctrl+C to stop)\n", c.Dir())
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-w.Done():
			return nil
		case <-changed:
			if err := c.Process(ctx); err != nil {
				if errors.Is(err, context.Canceled) {
					return nil
				}
				return err
			}
			fmt.Println()
			if err := printCollection(c); err != nil {
				return err
			}
		}
	}
}

func printCollection(c *filesystem.Collection) error {
	summary, err := c.Summary()
	if err != nil {
		return err
	}
	fmt.Println(summary)

	exts, err := c.Extensions()
	if err != nil {
		return err
	}
	order, err := c.SortedExtensions()
	if err != nil {
		return err
	}
	for _, ext := range order {
		stats := exts[ext]
		name := ext
		if name == "" {
			name = "(none)"
		}
		size := bytesize.FromBytes(float64(stats.TotalSize)).LowestUnit()
		fmt.Printf("  %-10s %s, %s\n", name,
			humanize.NewInt(int64(stats.TotalFiles), "file"),
			filesystem.SizeString(size))
	}
	return nil
}
