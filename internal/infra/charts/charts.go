// Package charts renders the three statistics views as PNG images.
package charts

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/golang/freetype/truetype"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/bryanwahyu/tidyroom/internal/domain/analysis"
)

// ErrNoData means there is nothing to plot yet.
var ErrNoData = errors.New("no data to chart")

// Chart kinds served under /charts/{kind}.png
const (
	KindDistribution = "distribution"
	KindTrend        = "trend"
	KindHourly       = "hourly"
)

var palette = []drawing.Color{
	chart.ColorBlue, chart.ColorOrange, chart.ColorGreen, chart.ColorRed, chart.ColorAlternateGray,
}

// Renderer draws charts at a fixed size. Font is optional; the built-in font
// has no Hangul glyphs, so Korean labels need a TTF such as Noto Sans KR.
type Renderer struct {
	Width  int
	Height int
	Font   *truetype.Font
}

func New() *Renderer {
	return &Renderer{Width: 640, Height: 400}
}

// LoadFont parses a TrueType file for chart labels.
func LoadFont(path string) (*truetype.Font, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read font: %w", err)
	}
	f, err := truetype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse font %s: %w", path, err)
	}
	return f, nil
}

// Render writes the chart of the given kind.
func (r *Renderer) Render(w io.Writer, kind string, st analysis.Stats) error {
	switch kind {
	case KindDistribution:
		return r.Distribution(w, st.Categories)
	case KindTrend:
		return r.Trend(w, st.Trend)
	case KindHourly:
		return r.Hourly(w, st.Hourly)
	}
	return fmt.Errorf("unknown chart %q", kind)
}

// Distribution is a pie of results by category.
func (r *Renderer) Distribution(w io.Writer, cats []analysis.CategoryCount) error {
	if len(cats) == 0 {
		return ErrNoData
	}
	values := make([]chart.Value, len(cats))
	for i, c := range cats {
		values[i] = chart.Value{
			Label: fmt.Sprintf("%s (%d)", c.Category, c.Count),
			Value: float64(c.Count),
			Style: chart.Style{FillColor: palette[i%len(palette)], FontSize: 11},
		}
	}
	pie := chart.PieChart{
		Title:  "방 상태 분포",
		Width:  r.Width,
		Height: r.Height,
		Font:   r.Font,
		Values: values,
	}
	return pie.Render(chart.PNG, w)
}

// Trend is a line of confidence over the latest analyses.
func (r *Renderer) Trend(w io.Writer, points []analysis.TrendPoint) error {
	if len(points) == 0 {
		return ErrNoData
	}
	xs := make([]float64, len(points))
	ys := make([]float64, len(points))
	ticks := make([]chart.Tick, len(points))
	for i, p := range points {
		xs[i] = float64(i)
		ys[i] = p.Confidence
		ticks[i] = chart.Tick{Value: float64(i), Label: clock(p.Timestamp)}
	}
	if len(points) == 1 {
		// go-chart needs two distinct x values; draw the lone point as a flat segment
		xs = []float64{0, 1}
		ys = []float64{ys[0], ys[0]}
		ticks = []chart.Tick{{Value: 0}, {Value: 0.5, Label: ticks[0].Label}, {Value: 1}}
	}
	xMax := xs[len(xs)-1]

	ch := chart.Chart{
		Title:      "신뢰도 트렌드",
		Width:      r.Width,
		Height:     r.Height,
		Font:       r.Font,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		XAxis:      chart.XAxis{Name: "시간", Range: &chart.ContinuousRange{Min: 0, Max: xMax}, Ticks: ticks},
		YAxis:      chart.YAxis{Name: "신뢰도 (%)", Range: &chart.ContinuousRange{Min: 0, Max: 100}, Ticks: percentTicks()},
		Series: []chart.Series{chart.ContinuousSeries{
			Name:    "confidence",
			XValues: xs,
			YValues: ys,
			Style:   chart.Style{StrokeColor: chart.ColorBlue, StrokeWidth: 2, DotWidth: 4, DotColor: chart.ColorBlue},
		}},
	}
	return ch.Render(chart.PNG, w)
}

// Hourly is a bar per hour of day that has at least one analysis.
func (r *Renderer) Hourly(w io.Writer, hours []analysis.HourCount) error {
	if len(hours) == 0 {
		return ErrNoData
	}
	bars := make([]chart.Value, len(hours))
	maxCount := 1
	for i, h := range hours {
		bars[i] = chart.Value{
			Label: fmt.Sprintf("%02d시", h.Hour),
			Value: float64(h.Count),
			Style: chart.Style{FillColor: chart.ColorGreen, StrokeColor: chart.ColorGreen},
		}
		if h.Count > maxCount {
			maxCount = h.Count
		}
	}
	bc := chart.BarChart{
		Title:    "시간대별 분석",
		Width:    r.Width,
		Height:   r.Height,
		Font:     r.Font,
		BarWidth: barWidth(r.Width, len(bars)),
		Background: chart.Style{
			Padding: chart.Box{Top: 40},
		},
		YAxis: chart.YAxis{Range: &chart.ContinuousRange{Min: 0, Max: float64(maxCount)}},
		Bars:  bars,
	}
	return bc.Render(chart.PNG, w)
}

func percentTicks() []chart.Tick {
	ticks := make([]chart.Tick, 0, 5)
	for v := 0; v <= 100; v += 25 {
		ticks = append(ticks, chart.Tick{Value: float64(v), Label: strconv.Itoa(v)})
	}
	return ticks
}

func barWidth(width, n int) int {
	bw := width / (2*n + 1)
	if bw > 60 {
		bw = 60
	}
	if bw < 8 {
		bw = 8
	}
	return bw
}

// clock returns the HH:MM:SS part of a stored timestamp when it has one.
func clock(ts string) string {
	if len(ts) >= 8 {
		return ts[len(ts)-8:]
	}
	return ts
}
