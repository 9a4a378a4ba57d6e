package render

import (
	"bytes"
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/okian/nobeldash/internal/domain/views"
)

// Fixed series colours; other genders take plotutil's default palette.
var (
	FemaleColor = color.RGBA{R: 0xD6, G: 0x5A, B: 0x31, A: 0xFF}
	MaleColor   = color.RGBA{R: 0x00, G: 0x00, B: 0x80, A: 0xFF}
)

const (
	pxPerInch  = 96
	labelEvery = 10

	// MaxChartYears bounds the number of bars in one chart.
	MaxChartYears = 10000
)

// ChartTitle heads the gender chart.
const ChartTitle = "Number of Laureates by Gender and Year"

// GenderColor returns the bar colour of gender; i indexes the fallback palette.
func GenderColor(gender string, i int) color.Color {
	switch strings.ToLower(gender) {
	case "female":
		return FemaleColor
	case "male":
		return MaleColor
	default:
		return plotutil.Color(i)
	}
}

// GenderChart draws one bar per year stacked by gender and encodes it as PNG.
func GenderChart(g views.GenderResult, widthPx, heightPx int) ([]byte, error) {
	if len(g.Counts) == 0 || g.Years.End < g.Years.Start {
		return nil, ErrEmptyChart
	}
	// A negative difference means the subtraction overflowed.
	diff := g.Years.End - g.Years.Start
	if diff < 0 || diff >= MaxChartYears {
		return nil, fmt.Errorf("%w: %d to %d", ErrChartSpan, g.Years.Start, g.Years.End)
	}
	n := diff + 1

	series := make(map[string]plotter.Values, len(g.Genders))
	for _, gender := range g.Genders {
		series[gender] = make(plotter.Values, n)
	}
	for _, c := range g.Counts {
		if v, ok := series[c.Gender]; ok && g.Years.Contains(c.Year) {
			v[c.Year-g.Years.Start] += float64(c.Count)
		}
	}

	p := plot.New()
	p.Title.Text = ChartTitle
	p.X.Label.Text = "Year"
	p.Y.Label.Text = "Number of Laureates"
	p.Legend.Top = true

	width := vg.Length(widthPx) * vg.Inch / pxPerInch
	height := vg.Length(heightPx) * vg.Inch / pxPerInch
	barWidth := width / vg.Length(n+2)

	var below *plotter.BarChart
	for i, gender := range g.Genders {
		bars, err := plotter.NewBarChart(series[gender], barWidth)
		if err != nil {
			return nil, fmt.Errorf("bar chart %q: %w", gender, err)
		}
		bars.Color = GenderColor(gender, i)
		bars.LineStyle.Width = 0
		if below != nil {
			bars.StackOn(below)
		}
		p.Add(bars)
		p.Legend.Add(gender, bars)
		below = bars
	}

	labels := make([]string, n)
	for i := range labels {
		if y := g.Years.Start + i; y%labelEvery == 0 {
			labels[i] = strconv.Itoa(y)
		}
	}
	p.NominalX(labels...)

	w, err := p.WriterTo(width, height, "png")
	if err != nil {
		return nil, fmt.Errorf("encode chart: %w", err)
	}
	var buf bytes.Buffer
	if _, err := w.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("encode chart: %w", err)
	}
	return buf.Bytes(), nil
}
