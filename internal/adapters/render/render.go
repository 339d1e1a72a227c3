// Package render draws chart specs as PNG images.
package render

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/okian/ringlens/internal/domain/chart"
	"github.com/okian/ringlens/internal/domain/table"
)

// ErrNotPlottable is returned for table specs and specs without any point.
var ErrNotPlottable = errors.New("chart has nothing to draw")

// Option configures the image.
type Option func(*options)

type options struct {
	width, height int
}

// WithSize sets the image size in pixels.
func WithSize(width, height int) Option {
	return func(o *options) {
		if width > 0 && height > 0 {
			o.width, o.height = width, height
		}
	}
}

// PNG writes spec to w as a PNG image. Only points with a parseable time on
// the x axis and a numeric y value are drawn.
func PNG(w io.Writer, spec chart.Spec, opts ...Option) error {
	o := options{width: 960, height: 480}
	for _, opt := range opts {
		opt(&o)
	}
	if spec.Type == chart.TypeTable {
		return fmt.Errorf("%w: %s is a table", ErrNotPlottable, spec.ID)
	}

	var (
		series      []gochart.Series
		lo, hi      = math.Inf(1), math.Inf(-1)
		first, last time.Time
	)
	for _, t := range spec.Traces {
		xs, ys := points(t)
		if len(xs) == 0 {
			continue
		}
		for _, y := range ys {
			lo, hi = math.Min(lo, y), math.Max(hi, y)
		}
		for _, x := range xs {
			if first.IsZero() || x.Before(first) {
				first = x
			}
			if x.After(last) {
				last = x
			}
		}
		series = append(series, gochart.TimeSeries{Name: t.Name, XValues: xs, YValues: ys, Style: style(t)})
	}
	if len(series) == 0 {
		return fmt.Errorf("%w: %s", ErrNotPlottable, spec.ID)
	}

	yAxis := gochart.YAxis{Name: spec.YTitle}
	switch {
	case len(spec.YRange) == 2:
		yAxis.Range = &gochart.ContinuousRange{Min: spec.YRange[0], Max: spec.YRange[1]}
	case lo == hi:
		yAxis.Range = &gochart.ContinuousRange{Min: lo - 1, Max: hi + 1}
	}

	// go-chart rejects a zero-width x range, e.g. a single point or several
	// workouts on one day.
	xAxis := gochart.XAxis{Name: spec.XTitle}
	if first.Equal(last) {
		xAxis.Range = &gochart.ContinuousRange{
			Min: gochart.TimeToFloat64(first.Add(-12 * time.Hour)),
			Max: gochart.TimeToFloat64(last.Add(12 * time.Hour)),
		}
	}

	ch := gochart.Chart{
		Title:      spec.Title,
		Width:      o.width,
		Height:     o.height,
		Background: gochart.Style{Padding: gochart.Box{Top: 40, Left: 16, Right: 12, Bottom: 16}},
		XAxis:      xAxis,
		YAxis:      yAxis,
		Series:     series,
	}
	if len(series) > 1 {
		ch.Elements = []gochart.Renderable{gochart.Legend(&ch)}
	}
	if err := ch.Render(gochart.PNG, w); err != nil {
		return fmt.Errorf("render %s: %w", spec.ID, err)
	}
	return nil
}

func points(t chart.Trace) ([]time.Time, []float64) {
	var (
		xs []time.Time
		ys []float64
	)
	for i := range t.X {
		if i >= len(t.Y) {
			break
		}
		x, ok := table.ParseTime(t.X[i])
		if !ok {
			continue
		}
		y, ok := table.Float(t.Y[i])
		if !ok {
			continue
		}
		xs = append(xs, x)
		ys = append(ys, y)
	}
	return xs, ys
}

func style(t chart.Trace) gochart.Style {
	col := gochart.ColorBlue
	if t.Color != "" {
		col = drawing.ColorFromHex(strings.TrimPrefix(t.Color, "#"))
	}
	switch {
	case t.Type == chart.Scatter || t.Mode == "markers":
		return gochart.Style{StrokeColor: drawing.ColorTransparent, DotWidth: 5, DotColor: col}
	case t.Type == chart.Bar || t.Fill != "":
		return gochart.Style{StrokeColor: col, StrokeWidth: 1.5, FillColor: col.WithAlpha(96)}
	case t.Mode == "lines":
		return gochart.Style{StrokeColor: col, StrokeWidth: 2}
	default:
		return gochart.Style{StrokeColor: col, StrokeWidth: 2, DotWidth: 3, DotColor: col}
	}
}
