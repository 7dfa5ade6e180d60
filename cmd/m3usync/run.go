package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/vmunix/m3usync/internal/config"
	"github.com/vmunix/m3usync/internal/copier"
	"github.com/vmunix/m3usync/internal/history"
	"github.com/vmunix/m3usync/internal/logging"
	"github.com/vmunix/m3usync/internal/playlist"
	"github.com/vmunix/m3usync/internal/search"
)

var runFlags struct {
	playlist     string
	mediaFolder  string
	outputFolder string
	configPath   string
	logLevel     string
	logFile      string
	dryRun       bool
	report       string
	cleanOutput  bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Parse a playlist, find its files, and copy them to the output folder",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPipeline()
	},
}

func init() {
	runCmd.Flags().StringVar(&runFlags.playlist, "playlist", "", "Path to the M3U8 playlist file")
	runCmd.Flags().StringVar(&runFlags.mediaFolder, "media-folder", "", "Folder containing media files")
	runCmd.Flags().StringVar(&runFlags.outputFolder, "output-folder", "", "Folder matched files are copied into")
	runCmd.Flags().StringVar(&runFlags.configPath, "config", "", "Path to TOML config file")
	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "Log level: debug, info, warn, error (overrides config)")
	runCmd.Flags().StringVar(&runFlags.logFile, "log-file", "", "Also append logs to this file")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "Show what would be copied without copying")
	runCmd.Flags().StringVar(&runFlags.report, "report", "", "Write a plain-text report to this path (no report is written in dry-run mode)")
	runCmd.Flags().BoolVar(&runFlags.cleanOutput, "clean-output", false, "Remove output files not referenced by the playlist")
	_ = runCmd.MarkFlagRequired("playlist")
	_ = runCmd.MarkFlagRequired("media-folder")
	_ = runCmd.MarkFlagRequired("output-folder")

	rootCmd.AddCommand(runCmd)
}

// validateRunFlags checks the path arguments before anything runs.
// All violations are reported at once.
func validateRunFlags() []string {
	var errs []string

	if info, err := os.Stat(runFlags.playlist); os.IsNotExist(err) {
		errs = append(errs, fmt.Sprintf("playlist file does not exist: %s", runFlags.playlist))
	} else if err == nil && info.IsDir() {
		errs = append(errs, fmt.Sprintf("playlist path is not a file: %s", runFlags.playlist))
	}

	if info, err := os.Stat(runFlags.mediaFolder); os.IsNotExist(err) {
		errs = append(errs, fmt.Sprintf("media folder does not exist: %s", runFlags.mediaFolder))
	} else if err == nil && !info.IsDir() {
		errs = append(errs, fmt.Sprintf("media folder path is not a directory: %s", runFlags.mediaFolder))
	}

	if info, err := os.Stat(runFlags.outputFolder); err == nil && !info.IsDir() {
		errs = append(errs, fmt.Sprintf("output folder path exists but is not a directory: %s", runFlags.outputFolder))
	} else if os.IsNotExist(err) {
		parent := filepath.Dir(runFlags.outputFolder)
		if _, perr := os.Stat(parent); os.IsNotExist(perr) {
			errs = append(errs, fmt.Sprintf("output folder parent directory does not exist: %s", parent))
		}
	}

	if runFlags.configPath != "" {
		if info, err := os.Stat(runFlags.configPath); os.IsNotExist(err) {
			errs = append(errs, fmt.Sprintf("configuration file does not exist: %s", runFlags.configPath))
		} else if err == nil && info.IsDir() {
			errs = append(errs, fmt.Sprintf("configuration path is not a file: %s", runFlags.configPath))
		}
	}

	return errs
}

func runPipeline() error {
	if errs := validateRunFlags(); len(errs) > 0 {
		fmt.Fprintln(os.Stderr, "Validation errors:")
		for _, e := range errs {
			fmt.Fprintf(os.Stderr, "  - %s\n", e)
		}
		return exitf(exitFailure, "invalid arguments")
	}

	// Config
	cfg := config.Default()
	if runFlags.configPath != "" {
		loaded, err := config.Load(runFlags.configPath)
		if err != nil {
			return exitf(exitFailure, "%v", err)
		}
		cfg = loaded
	}
	if errs := cfg.Validate(); len(errs) > 0 {
		cfgErr := &config.ConfigError{Path: runFlags.configPath, Errors: errs}
		return exitf(exitFailure, "%v", cfgErr)
	}

	// Logger
	level := cfg.Default.LogLevel
	if runFlags.logLevel != "" {
		level = runFlags.logLevel
	}
	logger, closer, err := logging.New(level, runFlags.logFile)
	if err != nil {
		return exitf(exitFailure, "%v", err)
	}
	if closer != nil {
		defer func() { _ = closer.Close() }()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := cfg.Options()
	start := time.Now()

	logger.Info("starting run",
		"playlist", runFlags.playlist,
		"media_folder", runFlags.mediaFolder,
		"output_folder", runFlags.outputFolder,
		"dry_run", runFlags.dryRun,
		"clean_output", runFlags.cleanOutput,
	)

	// Stage 1: parse playlist
	parser := playlist.NewParser(opts, logger)
	targets, err := parser.ParseFile(runFlags.playlist)
	if err != nil {
		return exitf(exitFailure, "%v", err)
	}
	if len(targets) == 0 {
		return exitf(exitFailure, "no media files found in playlist")
	}

	// Stage 2: search media folder
	searcher := search.NewSearcher(opts, logger)
	results, err := searcher.Search(ctx, runFlags.mediaFolder, targets)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return exitf(exitInterrupted, "interrupted")
		}
		return exitf(exitFailure, "%v", err)
	}

	for _, target := range results.Targets() {
		if len(results.For(target)) > 0 {
			continue
		}
		if name, score, ok := searcher.Suggest(target); ok {
			logger.Warn("no match for target", "target", target,
				"closest", name, "similarity", fmt.Sprintf("%.2f", score))
		} else {
			logger.Warn("no match for target", "target", target)
		}
	}

	searchStats := results.Stats()
	if searchStats.TotalMatches == 0 {
		return exitf(exitFailure, "no matching files found in media folder")
	}

	unique := results.Unique()

	// Stage 3: copy (or preview)
	cop := copier.NewCopier(opts, logger)
	if runFlags.dryRun {
		return dryRunPreview(os.Stdout, cop, unique)
	}

	outcomes, err := cop.Copy(ctx, unique, runFlags.outputFolder)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return exitf(exitInterrupted, "interrupted")
		}
		return exitf(exitFailure, "%v", err)
	}
	copyStats := cop.Stats()

	// Stage 4: optional cleanup
	removed := 0
	if runFlags.cleanOutput {
		expected := make([]string, 0, len(outcomes))
		for _, out := range outcomes {
			expected = append(expected, filepath.Base(out.Dest))
		}
		removed = len(cop.Clean(runFlags.outputFolder, expected))
	}

	if runFlags.report != "" {
		if err := os.WriteFile(runFlags.report, []byte(cop.Report()), 0644); err != nil {
			return exitf(exitFailure, "write report: %v", err)
		}
		logger.Info("report written", "path", runFlags.report)
	}

	recordHistory(cfg, logger, &history.Run{
		StartedAt:  start,
		Playlist:   runFlags.playlist,
		MediaRoot:  runFlags.mediaFolder,
		OutputDir:  runFlags.outputFolder,
		Targets:    searchStats.Targets,
		Matched:    searchStats.TargetsMatched,
		Copied:     copyStats.Copied,
		Skipped:    copyStats.Skipped,
		Errors:     copyStats.Errors,
		Bytes:      copyStats.Bytes,
		DurationMS: time.Since(start).Milliseconds(),
	})

	printSummary(searchStats, copyStats, removed)

	if copyStats.Errors > 0 {
		return exitf(exitCopyErrors, "completed with %d copy errors", copyStats.Errors)
	}
	return nil
}

func dryRunPreview(w io.Writer, cop *copier.Copier, unique []search.Match) error {
	fmt.Fprintln(w, "Dry run - files that would be copied:")
	expected := make([]string, 0, len(unique))
	for _, m := range unique {
		fmt.Fprintf(w, "  %s\n", m.Path)
		expected = append(expected, filepath.Base(m.Path))
	}
	fmt.Fprintf(w, "Total: %d files\n", len(unique))

	if runFlags.cleanOutput {
		stale := cop.CleanPreview(runFlags.outputFolder, expected)
		if len(stale) == 0 {
			fmt.Fprintln(w, "No stale files would be removed from the output folder.")
		} else {
			fmt.Fprintln(w, "Files that would be removed from the output folder:")
			for _, path := range stale {
				fmt.Fprintf(w, "  %s\n", path)
			}
		}
	}
	if runFlags.report != "" {
		fmt.Fprintf(w, "Note: --report is ignored in dry-run mode; no report written to %s\n", runFlags.report)
	}
	return nil
}

// recordHistory is best-effort; a broken history database never fails the run.
func recordHistory(cfg *config.Config, logger *slog.Logger, run *history.Run) {
	if cfg.History.Path == "" {
		return
	}
	store, err := history.Open(cfg.History.Path)
	if err != nil {
		logger.Warn("history disabled for this run", "error", err)
		return
	}
	defer func() { _ = store.Close() }()
	if err := store.Record(run); err != nil {
		logger.Warn("failed to record run history", "error", err)
	}
}

func printSummary(searchStats search.Stats, copyStats copier.Stats, removed int) {
	rows := [][]string{
		{"Playlist targets", strconv.Itoa(searchStats.Targets)},
		{"Targets matched", strconv.Itoa(searchStats.TargetsMatched)},
		{"Unique files", strconv.Itoa(searchStats.UniqueFiles)},
		{"Copied", strconv.Itoa(copyStats.Copied)},
		{"Skipped", strconv.Itoa(copyStats.Skipped)},
		{"Errors", strconv.Itoa(copyStats.Errors)},
		{"Bytes copied", humanize.IBytes(uint64(copyStats.Bytes))},
	}
	if runFlags.cleanOutput {
		rows = append(rows, []string{"Stale files removed", strconv.Itoa(removed)})
	}
	fmt.Println(renderTable([]string{"Metric", "Value"}, rows, 1))
}
