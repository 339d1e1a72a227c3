// Package catalog is the declarative table of recognised tracker exports.
// Each Kind names its time column, the JSON columns to flatten or lift, the
// columns derived from others, the metrics it contributes to the overview and
// the charts drawn from it. Adding an export means adding one entry.
package catalog

import (
	"path"
	"strings"
	"unicode"

	"github.com/okian/ringlens/internal/domain/chart"
	"github.com/okian/ringlens/internal/domain/jsonfield"
	"github.com/okian/ringlens/internal/domain/table"
)

// Kind describes one export file.
type Kind struct {
	// Name is the normalised filename, e.g. "dailysleep".
	Name string
	// Title is the dashboard section heading.
	Title string
	// TimeColumn orders rows; "day" for daily files, "timestamp" for samples.
	TimeColumn string
	// Timestamped kinds are windowed by elapsed days rather than row count.
	Timestamped bool

	// Contributors lists keys flattened out of the "contributors" column,
	// defaulting to 0.
	Contributors []string
	Extracts     []Extract
	Derived      []Derivation
	Metrics      []Metric
	Charts       []Builder
}

// Extract lifts Key out of the JSON object in Column into As. Decode
// failures yield nil.
type Extract struct {
	Column string
	Key    string
	As     string
}

// Derivation computes column As from the other cells of a row.
type Derivation struct {
	As string
	Fn func(table.Row) any
}

// Metric is one overview aggregate.
type Metric struct {
	Key       string
	Label     string
	Column    string
	Unit      string
	Precision int
	Headline  bool
}

// Builder produces one chart from derived, windowed rows.
type Builder struct {
	ID    string
	Build func(rows []table.Row) chart.Spec
}

// CanonicalFile is the filename the tracker uses for this kind.
func (k *Kind) CanonicalFile() string { return k.Name + ".csv" }

// Derive returns copies of rows ordered by TimeColumn with contributor,
// extracted and derived columns added. The input is not modified.
func (k *Kind) Derive(rows []table.Row) []table.Row {
	out := make([]table.Row, len(rows))
	for i, r := range rows {
		d := r.Clone()
		if len(k.Contributors) > 0 {
			for key, v := range jsonfield.Flatten(r["contributors"], k.Contributors, 0.0) {
				d[key] = v
			}
		}
		for _, e := range k.Extracts {
			d[e.As] = jsonfield.Extract(r[e.Column], e.Key)
		}
		for _, dv := range k.Derived {
			d[dv.As] = table.Clean(dv.Fn(d))
		}
		out[i] = d
	}
	if k.TimeColumn != "" {
		out = table.SortByTime(out, k.TimeColumn)
	}
	return out
}

// Normalize maps an uploaded filename onto a kind name: directory and
// extension are dropped, letters lower-cased and every other non-alphanumeric
// character removed.
func Normalize(filename string) string {
	base := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	if ext := path.Ext(base); strings.EqualFold(ext, ".csv") {
		base = base[:len(base)-len(ext)]
	}
	var b strings.Builder
	for _, r := range strings.ToLower(base) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Lookup returns the kind for an uploaded filename.
func Lookup(filename string) (*Kind, bool) {
	k, ok := byName[Normalize(filename)]
	return k, ok
}

// ByName returns the kind with the given normalised name.
func ByName(name string) (*Kind, bool) {
	k, ok := byName[name]
	return k, ok
}

// Kinds returns every registered kind in dashboard order.
func Kinds() []*Kind {
	out := make([]*Kind, len(kinds))
	copy(out, kinds)
	return out
}

var byName = func() map[string]*Kind {
	m := make(map[string]*Kind, len(kinds))
	for _, k := range kinds {
		m[k.Name] = k
	}
	return m
}()
