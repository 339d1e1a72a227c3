// Package stats computes the aggregates shown on the dashboard: means that
// ignore missing values, latest-versus-mean deltas and time bucketed averages.
package stats

import (
	"math"
	"sort"
	"time"

	"github.com/okian/ringlens/internal/domain/table"
)

// Mean averages the finite numeric values in vs. Nil, NaN, Inf and
// non-numeric values are skipped; the result is 0 when nothing is left.
func Mean(vs []any) float64 {
	vals := make([]float64, 0, len(vs))
	for _, v := range vs {
		if f, ok := table.Float(v); ok {
			vals = append(vals, f)
		}
	}
	return average(vals)
}

// average is the arithmetic mean of finite values. A sum that overflows is
// redone as a sum of quotients so the mean stays finite.
func average(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	n := float64(len(vals))
	sum := 0.0
	for _, v := range vals {
		sum += v
	}
	if !math.IsInf(sum, 0) {
		return sum / n
	}
	mean := 0.0
	for _, v := range vals {
		mean += v / n
	}
	return mean
}

// Values returns the finite numeric values of column in row order.
func Values(rows []table.Row, column string) []float64 {
	out := make([]float64, 0, len(rows))
	for _, r := range rows {
		if f, ok := table.Float(r[column]); ok {
			out = append(out, f)
		}
	}
	return out
}

// Summary describes one column.
type Summary struct {
	Rows     int      `json:"rows"`
	Count    int      `json:"count"`
	Mean     float64  `json:"mean"`
	Min      *float64 `json:"min"`
	Max      *float64 `json:"max"`
	Latest   *float64 `json:"latest"`
	LatestAt string   `json:"latest_at,omitempty"`
	Delta    *float64 `json:"delta"`
}

// Summarize aggregates column over rows. Latest is the value on the row with
// the greatest timeColumn; Delta is Latest minus Mean and is nil when the
// latest row has no value.
func Summarize(rows []table.Row, column, timeColumn string) Summary {
	s := Summary{Rows: len(rows)}
	vals := Values(rows, column)
	s.Count = len(vals)
	if s.Count == 0 {
		return s
	}

	lo, hi := vals[0], vals[0]
	for _, v := range vals {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	s.Mean = average(vals)
	s.Min, s.Max = &lo, &hi

	sorted := rows
	if timeColumn != "" {
		sorted = table.SortByTime(rows, timeColumn)
	}
	last := sorted[len(sorted)-1]
	if timeColumn != "" {
		if at, ok := last[timeColumn].(string); ok {
			s.LatestAt = at
		}
	}
	if f, ok := table.Float(last[column]); ok {
		s.Latest = &f
		if d := f - s.Mean; !math.IsInf(d, 0) {
			s.Delta = &d
		}
	}
	return s
}

// LastN keeps the n most recent rows by timeColumn, oldest first. n <= 0
// keeps everything.
func LastN(rows []table.Row, timeColumn string, n int) []table.Row {
	sorted := table.SortByTime(rows, timeColumn)
	if n <= 0 || n >= len(sorted) {
		return sorted
	}
	return sorted[len(sorted)-n:]
}

// Since keeps rows within the trailing window of days ending at the most
// recent timestamp. days <= 0 keeps everything.
func Since(rows []table.Row, timeColumn string, days int) []table.Row {
	if days <= 0 {
		return rows
	}
	var latest time.Time
	for _, r := range rows {
		if t, ok := table.ParseTime(r[timeColumn]); ok && t.After(latest) {
			latest = t
		}
	}
	if latest.IsZero() {
		return rows
	}
	cutoff := latest.AddDate(0, 0, -days)
	out := make([]table.Row, 0, len(rows))
	for _, r := range rows {
		if t, ok := table.ParseTime(r[timeColumn]); ok && !t.Before(cutoff) {
			out = append(out, r)
		}
	}
	return out
}

// Bucket maps a timestamp onto the start of its bucket.
type Bucket func(time.Time) time.Time

// Hourly floors to the hour in the timestamp's own zone.
func Hourly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, t.Hour(), 0, 0, 0, t.Location())
}

// Daily floors to midnight in the timestamp's own zone.
func Daily(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// Point is one bucketed average.
type Point struct {
	At    time.Time `json:"at"`
	Value float64   `json:"value"`
	Count int       `json:"count"`
}

// BucketMean averages valueColumn per bucket of timeColumn. Rows with an
// unparseable time or missing value are skipped. Points are ordered by time.
func BucketMean(rows []table.Row, timeColumn, valueColumn string, bucket Bucket) []Point {
	groups := make(map[int64][]float64)
	starts := make(map[int64]time.Time)
	for _, r := range rows {
		t, ok := table.ParseTime(r[timeColumn])
		if !ok {
			continue
		}
		v, ok := table.Float(r[valueColumn])
		if !ok {
			continue
		}
		b := bucket(t)
		key := b.UnixNano()
		if _, seen := starts[key]; !seen {
			starts[key] = b
		}
		groups[key] = append(groups[key], v)
	}

	out := make([]Point, 0, len(groups))
	for k, vals := range groups {
		out = append(out, Point{At: starts[k], Value: average(vals), Count: len(vals)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].At.Before(out[j].At) })
	return out
}
