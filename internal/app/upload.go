package service

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Upload is one file handed to Ingest. Open may be called from any goroutine.
type Upload struct {
	Name string
	Open func() (io.ReadCloser, error)
}

// Mode selects how Ingest reacts to a file that fails to parse.
type Mode int

const (
	// Strict aborts on the first failing file in upload order.
	Strict Mode = iota
	// Lenient records the failure and continues with the other files.
	Lenient
)

// FromBytes wraps an in-memory file.
func FromBytes(name string, data []byte) Upload {
	return Upload{Name: name, Open: func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(data)), nil
	}}
}

// FromPath wraps a file on disk. The upload is named by its base name.
func FromPath(path string) Upload {
	return Upload{Name: filepath.Base(path), Open: func() (io.ReadCloser, error) {
		return os.Open(path)
	}}
}

// CollectPaths expands directories into the .csv files they contain, sorted
// by name. Plain file arguments are kept as given.
func CollectPaths(args []string) ([]Upload, error) {
	var out []Upload
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			out = append(out, FromPath(arg))
			continue
		}
		entries, err := os.ReadDir(arg)
		if err != nil {
			return nil, err
		}
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			if !e.IsDir() && isCSV(e.Name()) {
				names = append(names, e.Name())
			}
		}
		sort.Strings(names)
		for _, n := range names {
			out = append(out, FromPath(filepath.Join(arg, n)))
		}
	}
	return out, nil
}

func isCSV(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), ".csv")
}
