// Package chart describes charts as plain data. A Spec is what the dashboard
// front-end plots; the PNG renderer consumes the same value.
package chart

// Trace types.
const (
	Line    = "line"
	Bar     = "bar"
	Scatter = "scatter"
)

// Spec types.
const (
	TypePlot  = "plot"
	TypeTable = "table"
)

// Spec is one chart or table.
type Spec struct {
	ID      string    `json:"id"`
	Title   string    `json:"title"`
	Type    string    `json:"type"`
	XTitle  string    `json:"x_title,omitempty"`
	YTitle  string    `json:"y_title,omitempty"`
	YRange  []float64 `json:"y_range,omitempty"`
	BarMode string    `json:"bar_mode,omitempty"`
	Traces  []Trace   `json:"traces,omitempty"`
	Columns []string  `json:"columns,omitempty"`
	Rows    [][]any   `json:"rows,omitempty"`
}

// Trace is one series. X holds date or timestamp strings; Y holds numbers or
// nil for gaps.
type Trace struct {
	Name       string `json:"name"`
	Type       string `json:"type"`
	Mode       string `json:"mode,omitempty"`
	Fill       string `json:"fill,omitempty"`
	Color      string `json:"color,omitempty"`
	ColorScale string `json:"color_scale,omitempty"`
	Stack      string `json:"stack,omitempty"`
	X          []any  `json:"x"`
	Y          []any  `json:"y"`
	Size       []any  `json:"size,omitempty"`
	Text       []any  `json:"text,omitempty"`
}

// Empty reports whether the trace has no plottable value.
func (t Trace) Empty() bool {
	for _, y := range t.Y {
		if y != nil {
			return false
		}
	}
	return true
}

// Plottable reports whether the spec has at least one non-empty trace or a
// table row.
func (s Spec) Plottable() bool {
	if s.Type == TypeTable {
		return len(s.Rows) > 0
	}
	for _, t := range s.Traces {
		if !t.Empty() {
			return true
		}
	}
	return false
}

// Plot starts a plot spec.
func Plot(id, title, xTitle, yTitle string) Spec {
	return Spec{ID: id, Title: title, Type: TypePlot, XTitle: xTitle, YTitle: yTitle}
}

// Table starts a table spec.
func Table(id, title string, columns ...string) Spec {
	return Spec{ID: id, Title: title, Type: TypeTable, Columns: columns}
}

// WithRange fixes the y axis.
func (s Spec) WithRange(lo, hi float64) Spec {
	s.YRange = []float64{lo, hi}
	return s
}

// Add appends traces that carry at least one value.
func (s Spec) Add(traces ...Trace) Spec {
	for _, t := range traces {
		if !t.Empty() {
			s.Traces = append(s.Traces, t)
		}
	}
	return s
}
