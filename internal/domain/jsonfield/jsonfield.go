// Package jsonfield lifts values out of cells that hold a serialized JSON
// object, such as per-row contributor scores or SpO2 readings.
package jsonfield

import (
	"encoding/json"
	"strings"

	"github.com/okian/ringlens/internal/domain/table"
)

// Object decodes cell into a JSON object. It returns nil when the cell is not
// a string holding an object.
func Object(cell any) map[string]any {
	switch v := cell.(type) {
	case map[string]any:
		return v
	case string:
		s := strings.TrimSpace(v)
		if s == "" || s[0] != '{' {
			return nil
		}
		var obj map[string]any
		if err := json.Unmarshal([]byte(s), &obj); err != nil {
			return nil
		}
		return obj
	default:
		return nil
	}
}

// Extract returns obj[key] for the object in cell, or nil on any failure.
func Extract(cell any, key string) any {
	obj := Object(cell)
	if obj == nil {
		return nil
	}
	return table.Clean(obj[key])
}

// Flatten returns one value per key. Keys that are absent or null, and every
// key when the cell does not decode, take def.
func Flatten(cell any, keys []string, def any) map[string]any {
	obj := Object(cell)
	out := make(map[string]any, len(keys))
	for _, k := range keys {
		v := table.Clean(obj[k])
		if v == nil {
			v = def
		}
		out[k] = v
	}
	return out
}

// Items returns the numeric entries of an array stored under key, skipping
// nulls. Heart rate samples in session exports use this layout.
func Items(cell any, key string) []float64 {
	obj := Object(cell)
	if obj == nil {
		return nil
	}
	arr, ok := obj[key].([]any)
	if !ok {
		return nil
	}
	out := make([]float64, 0, len(arr))
	for _, it := range arr {
		if f, ok := it.(float64); ok {
			out = append(out, f)
		}
	}
	return out
}
