package data

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// WideTextOptions controls SaveAsWideText.
type WideTextOptions struct {
	// Delim overrides the delimiter picked from the file extension.
	Delim rune
	// Append adds rows to an existing file and skips the header.
	Append bool
}

// SaveAsWideText writes one row per entry. It returns the path actually
// written, which gains a ".tsv" suffix when name has no extension.
func (h *ExperimentHandler) SaveAsWideText(name string, opts WideTextOptions) (string, error) {
	delim := opts.Delim
	if delim == 0 {
		switch strings.ToLower(filepath.Ext(name)) {
		case ".csv":
			delim = ','
		case "":
			name += ".tsv"
			delim = '\t'
		default:
			delim = '\t'
		}
	}

	writeHeader := true
	flags := os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	if opts.Append {
		flags = os.O_CREATE | os.O_WRONLY | os.O_APPEND
		if st, err := os.Stat(name); err == nil && st.Size() > 0 {
			writeHeader = false
		}
	}

	f, err := os.OpenFile(name, flags, 0o644)
	if err != nil {
		return "", err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	w.Comma = delim

	cols := h.Columns()
	if writeHeader {
		if err := w.Write(cols); err != nil {
			return "", err
		}
	}
	row := make([]string, len(cols))
	for _, e := range h.entries {
		for i, c := range cols {
			v, ok := e.Get(c)
			if !ok {
				row[i] = ""
				continue
			}
			row[i] = FormatValue(v)
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("write %s: %w", name, err)
	}
	return name, nil
}

// FormatValue renders a cell. Durations are written in seconds.
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case time.Duration:
		return strconv.FormatFloat(x.Seconds(), 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	case fmt.Stringer:
		return x.String()
	}
	return fmt.Sprint(v)
}
