package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	appanalysis "github.com/bryanwahyu/tidyroom/internal/application/analysis"
	"github.com/bryanwahyu/tidyroom/internal/bootstrap"
	domain "github.com/bryanwahyu/tidyroom/internal/domain/analysis"
)

var (
	classifyJSON   bool
	classifyNoSave bool
)

var classifyCmd = &cobra.Command{
	Use:   "classify <image>",
	Short: "Classify a room photo and record the result",
	Example: `  tidyroom classify ./room.jpg
  tidyroom classify ./room.png --json --no-save`,
	Args: cobra.ExactArgs(1),
	RunE: runClassify,
}

func init() {
	classifyCmd.Flags().BoolVar(&classifyJSON, "json", false, "Output the outcome as JSON")
	classifyCmd.Flags().BoolVar(&classifyNoSave, "no-save", false, "Do not append the result to the history log")
}

func runClassify(cmd *cobra.Command, args []string) error {
	path := args[0]
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read image: %w", err)
	}

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

	stop := startSpinner(os.Stderr, " AI가 열심히 분석중입니다...")
	out, err := app.Service.Analyze(ctx, appanalysis.AnalyzeCommand{
		Image:       data,
		Filename:    filepath.Base(path),
		ContentType: http.DetectContentType(data),
		NoSave:      classifyNoSave,
	})
	stop()
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	if classifyJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}
	printOutcome(os.Stdout, out)
	return nil
}

// startSpinner shows a spinner on w when it is a terminal; the returned func stops it.
func startSpinner(w *os.File, suffix string) func() {
	if !isatty.IsTerminal(w.Fd()) && !isatty.IsCygwinTerminal(w.Fd()) {
		return func() {}
	}
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(w))
	s.Suffix = suffix
	s.Start()
	return s.Stop
}

func printOutcome(w io.Writer, out domain.Outcome) {
	v := out.Verdict
	if v.Clean {
		_, _ = color.New(color.FgGreen, color.Bold).Fprintf(w, "🌟 분석 결과: %s\n", v.Label)
	} else {
		_, _ = color.New(color.FgYellow, color.Bold).Fprintf(w, "⚠️ 분석 결과: %s\n", v.Label)
	}
	printConfidenceBar(w, out.Prediction.Confidence, v.Tier)

	dim := color.New(color.FgHiBlack)
	if out.Record.Timestamp != "" {
		_, _ = dim.Fprintf(w, "  %s  id=%s\n", out.Record.Timestamp, out.Record.ID)
	}
	if out.ArchiveURL != "" {
		_, _ = dim.Fprintf(w, "  archived: %s\n", out.ArchiveURL)
	}
}

func printConfidenceBar(w io.Writer, confidence float64, tier domain.Tier) {
	const barWidth = 24
	filled := int(confidence * barWidth / 100)
	if filled > barWidth {
		filled = barWidth
	}
	if filled < 0 {
		filled = 0
	}

	barColor := color.New(color.FgYellow)
	if tier == domain.TierSuccess {
		barColor = color.New(color.FgGreen)
	}
	bar := strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)

	fmt.Fprint(w, "  ")
	_, _ = barColor.Fprint(w, bar)
	fmt.Fprintf(w, " 신뢰도: %.1f%%\n", confidence)
}
