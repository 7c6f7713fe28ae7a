package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"github.com/bryanwahyu/tidyroom/internal/bootstrap"
	domain "github.com/bryanwahyu/tidyroom/internal/domain/analysis"
)

var (
	historyLimit int
	historyJSON  bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded analyses, oldest first",
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Show only the last N records (0 = all)")
	historyCmd.Flags().BoolVar(&historyJSON, "json", false, "Output records as JSON")
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx := context.Background()
	app, err := bootstrap.New(ctx, cfg, bootstrap.Options{})
	if err != nil {
		return err
	}
	defer app.Close()

	records, err := app.Service.History(ctx, historyLimit)
	if err != nil {
		return err
	}
	if historyJSON {
		return json.NewEncoder(os.Stdout).Encode(records)
	}
	printHistory(os.Stdout, records)
	return nil
}

// printHistory prints an aligned table; result widths are measured in terminal cells.
func printHistory(w io.Writer, records []domain.Record) {
	if len(records) == 0 {
		fmt.Fprintln(w, "No analyses recorded yet.")
		return
	}

	resultWidth := runewidth.StringWidth("RESULT")
	for _, r := range records {
		if n := runewidth.StringWidth(r.Result); n > resultWidth {
			resultWidth = n
		}
	}

	bold := color.New(color.Bold)
	_, _ = bold.Fprintf(w, "%-19s  %s  %s\n", "TIMESTAMP", runewidth.FillRight("RESULT", resultWidth), "CONFIDENCE")
	for _, r := range records {
		fmt.Fprintf(w, "%-19s  %s  %9.1f%%\n", r.Timestamp, runewidth.FillRight(r.Result, resultWidth), r.Confidence)
	}
}
