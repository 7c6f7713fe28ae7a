package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"github.com/bryanwahyu/tidyroom/internal/bootstrap"
	domain "github.com/bryanwahyu/tidyroom/internal/domain/analysis"
)

var statsJSON bool

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarize the history log",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

func init() {
	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "Output statistics as JSON")
}

func runStats(cmd *cobra.Command, args []string) error {
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

	st, err := app.Service.Stats(ctx)
	if err != nil {
		return err
	}
	if statsJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(st)
	}
	printStats(os.Stdout, st)
	return nil
}

func printStats(w io.Writer, st domain.Stats) {
	if st.Empty() {
		fmt.Fprintln(w, "No analyses recorded yet.")
		return
	}
	bold := color.New(color.Bold)

	_, _ = bold.Fprintf(w, "📊 분석 통계 (%d)\n\n", st.Total)

	_, _ = bold.Fprintln(w, "방 상태 분포")
	width := 0
	for _, c := range st.Categories {
		if n := runewidth.StringWidth(c.Category); n > width {
			width = n
		}
	}
	for _, c := range st.Categories {
		fmt.Fprintf(w, "  %s  %s %d\n", runewidth.FillRight(c.Category, width), scaled(c.Count, st.Total, 20), c.Count)
	}
	fmt.Fprintln(w)

	_, _ = bold.Fprintf(w, "신뢰도 트렌드 (최근 %d건)\n", len(st.Trend))
	for _, p := range st.Trend {
		fmt.Fprintf(w, "  %s  %5.1f%%\n", p.Timestamp, p.Confidence)
	}
	fmt.Fprintln(w)

	_, _ = bold.Fprintln(w, "시간대별 분석")
	maxCount := 0
	for _, h := range st.Hourly {
		if h.Count > maxCount {
			maxCount = h.Count
		}
	}
	for _, h := range st.Hourly {
		fmt.Fprintf(w, "  %02d시  %s %d\n", h.Hour, scaled(h.Count, maxCount, 20), h.Count)
	}
}

func scaled(n, total, width int) string {
	if total <= 0 {
		return ""
	}
	filled := n * width / total
	if filled == 0 && n > 0 {
		filled = 1
	}
	return strings.Repeat("█", filled)
}
