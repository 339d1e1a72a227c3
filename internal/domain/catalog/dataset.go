package catalog

import (
	"fmt"
	"sort"

	"github.com/okian/ringlens/internal/domain/chart"
	"github.com/okian/ringlens/internal/domain/stats"
	"github.com/okian/ringlens/internal/domain/table"
)

// Dataset maps an uploaded filename to its rows.
type Dataset map[string][]table.Row

// Files returns the filenames in sorted order.
func (d Dataset) Files() []string {
	out := make([]string, 0, len(d))
	for f := range d {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

// Find returns the filename and rows for a kind. When several uploaded
// files normalise to the same kind the first in sorted order wins.
func (d Dataset) Find(kind string) (string, []table.Row, bool) {
	for _, f := range d.Files() {
		if Normalize(f) == kind {
			return f, d[f], true
		}
	}
	return "", nil, false
}

// Derived returns the derived rows for a kind, or false if it was not uploaded.
func (d Dataset) Derived(kind string) ([]table.Row, bool) {
	k, ok := ByName(kind)
	if !ok {
		return nil, false
	}
	_, rows, ok := d.Find(kind)
	if !ok {
		return nil, false
	}
	return k.Derive(rows), true
}

// Recognized reports whether at least one file maps onto a known kind.
func (d Dataset) Recognized() bool {
	for f := range d {
		if _, ok := Lookup(f); ok {
			return true
		}
	}
	return false
}

// Aggregate is one overview metric with its statistics.
type Aggregate struct {
	Key       string `json:"key"`
	Label     string `json:"label"`
	File      string `json:"file"`
	Column    string `json:"column"`
	Unit      string `json:"unit,omitempty"`
	Precision int    `json:"precision"`
	Headline  bool   `json:"headline"`
	stats.Summary
}

// Section tells callers whether a dashboard section has data.
type Section struct {
	Kind    string `json:"kind"`
	Title   string `json:"title"`
	File    string `json:"file,omitempty"`
	Present bool   `json:"present"`
	Rows    int    `json:"rows"`
}

// Overview is the dashboard header.
type Overview struct {
	Metrics  []Aggregate `json:"metrics"`
	Sections []Section   `json:"sections"`
}

// Headlines returns the headline metrics only.
func (o Overview) Headlines() []Aggregate {
	var out []Aggregate
	for _, m := range o.Metrics {
		if m.Headline {
			out = append(out, m)
		}
	}
	return out
}

// Metric returns the aggregate with key.
func (o Overview) Metric(key string) (Aggregate, bool) {
	for _, m := range o.Metrics {
		if m.Key == key {
			return m, true
		}
	}
	return Aggregate{}, false
}

// Compute builds the overview. Metrics of absent files and metrics whose
// column holds no value are left out.
func Compute(d Dataset) Overview {
	var o Overview
	for _, k := range kinds {
		file, rows, ok := d.Find(k.Name)
		o.Sections = append(o.Sections, Section{Kind: k.Name, Title: k.Title, File: file, Present: ok, Rows: len(rows)})
		if !ok {
			continue
		}
		derived := k.Derive(rows)
		for _, m := range k.Metrics {
			s := stats.Summarize(derived, m.Column, k.TimeColumn)
			if s.Count == 0 {
				continue
			}
			o.Metrics = append(o.Metrics, Aggregate{
				Key:       m.Key,
				Label:     m.Label,
				File:      file,
				Column:    m.Column,
				Unit:      m.Unit,
				Precision: m.Precision,
				Headline:  m.Headline,
				Summary:   s,
			})
		}
	}
	sortHeadlinesFirst(o.Metrics)
	return o
}

// headlineOrder is the order of the four dashboard cards.
var headlineOrder = map[string]int{"sleep_score": 0, "activity_score": 1, "readiness_score": 2, "steps": 3}

func sortHeadlinesFirst(ms []Aggregate) {
	sort.SliceStable(ms, func(i, j int) bool {
		if ms[i].Headline != ms[j].Headline {
			return ms[i].Headline
		}
		if ms[i].Headline {
			return headlineOrder[ms[i].Key] < headlineOrder[ms[j].Key]
		}
		return false
	})
}

// Charts builds every chart for an uploaded file over its last days of data.
// days <= 0 uses all rows. Charts without data are omitted.
func Charts(filename string, rows []table.Row, days int) ([]chart.Spec, error) {
	k, ok := Lookup(filename)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownKind, filename)
	}
	window := k.Window(k.Derive(rows), days)
	out := make([]chart.Spec, 0, len(k.Charts))
	for _, b := range k.Charts {
		if spec := b.Build(window); spec.Plottable() {
			out = append(out, spec)
		}
	}
	return out, nil
}

// Chart builds one chart by id, returned even when it has no data.
func Chart(filename, id string, rows []table.Row, days int) (chart.Spec, error) {
	k, ok := Lookup(filename)
	if !ok {
		return chart.Spec{}, fmt.Errorf("%w: %s", ErrUnknownKind, filename)
	}
	for _, b := range k.Charts {
		if b.ID == id {
			return b.Build(k.Window(k.Derive(rows), days)), nil
		}
	}
	return chart.Spec{}, fmt.Errorf("%w: %s/%s", ErrUnknownChart, k.Name, id)
}

// Window keeps the last days of rows: by elapsed time for timestamped kinds,
// by row count otherwise. days <= 0 keeps everything.
func (k *Kind) Window(rows []table.Row, days int) []table.Row {
	if k.Timestamped {
		return stats.Since(rows, k.TimeColumn, days)
	}
	return stats.LastN(rows, k.TimeColumn, days)
}
