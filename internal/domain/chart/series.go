package chart

import (
	"github.com/okian/ringlens/internal/domain/stats"
	"github.com/okian/ringlens/internal/domain/table"
)

// Series builds a trace from two columns of rows. Missing or non-numeric y
// cells become gaps. Every value is divided by per, e.g. 3600 for seconds to
// hours.
func Series(rows []table.Row, xCol, yCol string, per float64) Trace {
	t := Trace{X: make([]any, len(rows)), Y: make([]any, len(rows))}
	for i, r := range rows {
		t.X[i] = r[xCol]
		if f, ok := table.Float(r[yCol]); ok {
			t.Y[i] = f / per
		}
	}
	return t
}

// FromPoints builds a trace from bucketed averages.
func FromPoints(points []stats.Point, layout string) Trace {
	t := Trace{X: make([]any, len(points)), Y: make([]any, len(points))}
	for i, p := range points {
		t.X[i] = p.At.Format(layout)
		t.Y[i] = p.Value
	}
	return t
}

// As sets the trace's presentation.
func (t Trace) As(name, typ, color string) Trace {
	t.Name, t.Type, t.Color = name, typ, color
	if typ == Line && t.Mode == "" {
		t.Mode = "lines+markers"
	}
	return t
}

// Filled sets the area fill mode ("tozeroy", "tonexty").
func (t Trace) Filled(fill string) Trace {
	t.Fill = fill
	return t
}

// Lines draws without markers.
func (t Trace) Lines() Trace {
	t.Mode = "lines"
	return t
}
