package main

import (
	"fmt"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/vmunix/m3usync/internal/config"
	"github.com/vmunix/m3usync/internal/history"
)

var historyFlags struct {
	configPath string
	dbPath     string
	limit      int
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent runs recorded in the history database",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return showHistory()
	},
}

func init() {
	historyCmd.Flags().StringVar(&historyFlags.configPath, "config", "", "Path to TOML config file")
	historyCmd.Flags().StringVar(&historyFlags.dbPath, "db", "", "History database path (overrides config)")
	historyCmd.Flags().IntVar(&historyFlags.limit, "limit", 20, "Maximum number of runs to show")

	rootCmd.AddCommand(historyCmd)
}

func showHistory() error {
	dbPath := historyFlags.dbPath
	if dbPath == "" && historyFlags.configPath != "" {
		cfg, err := config.Load(historyFlags.configPath)
		if err != nil {
			return exitf(exitFailure, "%v", err)
		}
		dbPath = cfg.History.Path
	}
	if dbPath == "" {
		return exitf(exitFailure, "no history database configured; set [history] path or pass --db")
	}

	store, err := history.Open(dbPath)
	if err != nil {
		return exitf(exitFailure, "%v", err)
	}
	defer func() { _ = store.Close() }()

	runs, err := store.List(history.Filter{Limit: historyFlags.limit})
	if err != nil {
		return exitf(exitFailure, "%v", err)
	}
	if len(runs) == 0 {
		fmt.Println("No runs recorded.")
		return nil
	}

	rows := make([][]string, 0, len(runs))
	for _, r := range runs {
		rows = append(rows, []string{
			strconv.FormatInt(r.ID, 10),
			r.StartedAt.Format("2006-01-02 15:04:05"),
			r.Playlist,
			strconv.Itoa(r.Targets),
			strconv.Itoa(r.Matched),
			strconv.Itoa(r.Copied),
			strconv.Itoa(r.Skipped),
			strconv.Itoa(r.Errors),
			humanize.IBytes(uint64(r.Bytes)),
		})
	}
	fmt.Println(renderTable(
		[]string{"ID", "Started", "Playlist", "Targets", "Matched", "Copied", "Skipped", "Errors", "Bytes"},
		rows, 0, 3, 4, 5, 6, 7, 8,
	))
	return nil
}
