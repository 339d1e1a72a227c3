// Package export writes a session as an Excel workbook.
package export

import (
	"fmt"
	"io"
	"path"
	"sort"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/okian/ringlens/internal/domain/catalog"
	"github.com/okian/ringlens/internal/domain/session"
	"github.com/okian/ringlens/internal/domain/table"
	"github.com/okian/ringlens/pkg/metrics"
)

// OverviewSheet is the first sheet of every workbook.
const OverviewSheet = "Overview"

const maxSheetName = 31

var overviewHeader = []any{"Metric", "File", "Column", "Mean", "Min", "Max", "Latest", "Latest At", "Delta", "Count", "Rows"}

// Workbook writes an overview sheet followed by one sheet per uploaded file
// in upload order. Recognised exports are written with their derived
// columns.
func Workbook(w io.Writer, s *session.Session) error {
	f := excelize.NewFile()
	defer f.Close()

	if _, err := f.NewSheet(OverviewSheet); err != nil {
		return fmt.Errorf("create overview sheet: %w", err)
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("drop default sheet: %w", err)
	}
	if err := writeOverview(f, s.Overview()); err != nil {
		return err
	}

	used := map[string]bool{strings.ToLower(OverviewSheet): true}
	for _, name := range s.Files() {
		t, _ := s.Table(name)
		rows, columns := t.Rows, t.Columns
		if k, ok := catalog.Lookup(name); ok {
			rows = k.Derive(rows)
			columns = extend(columns, rows)
		}

		sheet := sheetName(name, used)
		if _, err := f.NewSheet(sheet); err != nil {
			return fmt.Errorf("create sheet %s: %w", sheet, err)
		}
		if err := setRow(f, sheet, 1, toAny(columns)); err != nil {
			return err
		}
		for i, r := range rows {
			line := make([]any, len(columns))
			for j, c := range columns {
				line[j] = r[c]
			}
			if err := setRow(f, sheet, i+2, line); err != nil {
				return err
			}
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	metrics.RecordExport()
	return nil
}

func writeOverview(f *excelize.File, o catalog.Overview) error {
	if err := setRow(f, OverviewSheet, 1, overviewHeader); err != nil {
		return err
	}
	for i, m := range o.Metrics {
		line := []any{m.Label, m.File, m.Column, m.Mean, deref(m.Min), deref(m.Max), deref(m.Latest), m.LatestAt, deref(m.Delta), m.Count, m.Rows}
		if err := setRow(f, OverviewSheet, i+2, line); err != nil {
			return err
		}
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("write %s row %d: %w", sheet, row, err)
	}
	return nil
}

// extend appends derived columns, in sorted order, after the header.
func extend(columns []string, rows []table.Row) []string {
	seen := make(map[string]bool, len(columns))
	for _, c := range columns {
		seen[c] = true
	}
	var extra []string
	for _, r := range rows {
		for c := range r {
			if !seen[c] {
				seen[c] = true
				extra = append(extra, c)
			}
		}
	}
	sort.Strings(extra)
	return append(append([]string{}, columns...), extra...)
}

// sheetName derives a unique sheet name from file. Excel compares sheet names
// case-insensitively and limits them to 31 characters, so used is keyed by
// the lower-cased name and truncation counts runes.
func sheetName(file string, used map[string]bool) string {
	base := strings.TrimSuffix(path.Base(strings.ReplaceAll(file, `\`, "/")), path.Ext(file))
	base = strings.Map(func(r rune) rune {
		if strings.ContainsRune(`[]:*?/\`, r) {
			return '_'
		}
		return r
	}, base)
	base = strings.Trim(base, "'")
	if base == "" {
		base = "data"
	}
	base = truncate(base, maxSheetName)
	name := base
	for i := 2; used[strings.ToLower(name)]; i++ {
		suffix := fmt.Sprintf("_%d", i)
		name = truncate(base, maxSheetName-len(suffix)) + suffix
	}
	used[strings.ToLower(name)] = true
	return name
}

func truncate(s string, n int) string {
	if r := []rune(s); len(r) > n {
		return string(r[:n])
	}
	return s
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

func deref(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}
