package table

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// Delimiter used by the tracker's CSV exports.
const Delimiter = ';'

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// naTokens are the cell values treated as missing.
var naTokens = map[string]struct{}{
	"": {}, "#N/A": {}, "#N/A N/A": {}, "#NA": {}, "-1.#IND": {}, "-1.#QNAN": {},
	"-NaN": {}, "-nan": {}, "1.#IND": {}, "1.#QNAN": {}, "<NA>": {}, "N/A": {},
	"NA": {}, "NULL": {}, "NaN": {}, "None": {}, "n/a": {}, "nan": {}, "null": {},
}

// Load parses a semicolon-delimited export into a Table. Any failure is
// returned as a *FileError carrying name.
func Load(name string, r io.Reader) (*Table, error) {
	t, err := load(name, r)
	if err != nil {
		return nil, &FileError{File: name, Err: err}
	}
	return t, nil
}

func load(name string, r io.Reader) (*Table, error) {
	br := bufio.NewReader(r)
	if head, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(head, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}

	cr := csv.NewReader(br)
	cr.Comma = Delimiter
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrEmptyFile
	}
	if err != nil {
		return nil, err
	}
	columns := headerNames(header)

	var raw [][]string
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(rec) > len(columns) {
			line, _ := cr.FieldPos(0)
			return nil, fmt.Errorf("%w: expected %d fields in line %d, saw %d", ErrMalformedRow, len(columns), line, len(rec))
		}
		raw = append(raw, rec)
	}

	rows := make([]Row, len(raw))
	for i := range rows {
		rows[i] = make(Row, len(columns))
	}
	for c, col := range columns {
		cells := make([]string, len(raw))
		present := make([]bool, len(raw))
		for i, rec := range raw {
			if c < len(rec) {
				cells[i], present[i] = rec[c], true
			}
		}
		values := inferColumn(cells, present)
		for i := range rows {
			rows[i][col] = values[i]
		}
	}

	return &Table{Name: name, Columns: columns, Rows: rows}, nil
}

// headerNames fills blank names and disambiguates duplicates with .1, .2, ...
func headerNames(header []string) []string {
	out := make([]string, len(header))
	used := make(map[string]bool, len(header))
	counts := make(map[string]int)
	for i, h := range header {
		h = strings.TrimSpace(h)
		if h == "" {
			h = "Unnamed: " + strconv.Itoa(i)
		}
		name := h
		for used[name] {
			counts[h]++
			name = fmt.Sprintf("%s.%d", h, counts[h])
		}
		used[name] = true
		out[i] = name
	}
	return out
}

type columnKind int

const (
	kindNumber columnKind = iota
	kindBool
	kindString
)

// inferColumn decides one type for the whole column and converts every cell.
func inferColumn(cells []string, present []bool) []any {
	kind := kindNumber
	anyValue := false
	for i, s := range cells {
		if !present[i] || isNA(s) {
			continue
		}
		anyValue = true
		if kind == kindNumber {
			if _, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
				continue
			}
			kind = kindBool
		}
		if kind == kindBool {
			if _, ok := parseBool(s); ok {
				continue
			}
			kind = kindString
			break
		}
	}

	out := make([]any, len(cells))
	if !anyValue {
		return out
	}
	for i, s := range cells {
		if !present[i] || isNA(s) {
			continue
		}
		switch kind {
		case kindNumber:
			f, _ := strconv.ParseFloat(strings.TrimSpace(s), 64)
			if !math.IsNaN(f) && !math.IsInf(f, 0) {
				out[i] = f
			}
		case kindBool:
			out[i], _ = parseBool(s)
		default:
			out[i] = s
		}
	}
	return out
}

func isNA(s string) bool {
	_, ok := naTokens[strings.TrimSpace(s)]
	return ok
}

func parseBool(s string) (bool, bool) {
	switch strings.TrimSpace(s) {
	case "True", "true", "TRUE":
		return true, true
	case "False", "false", "FALSE":
		return false, true
	}
	return false, false
}
