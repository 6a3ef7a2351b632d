// Package output writes command results as text or JSON.
package output

import (
	"encoding/json"
	"io"
	"os"
)

// Formatter writes either human-readable text or indented JSON.
type Formatter struct {
	writer io.Writer
	json   bool
}

// New creates a formatter writing to w.
func New(w io.Writer, jsonMode bool) *Formatter {
	if w == nil {
		w = os.Stdout
	}
	return &Formatter{writer: w, json: jsonMode}
}

// IsJSON reports whether the formatter is in JSON mode
func (f *Formatter) IsJSON() bool {
	return f.json
}

// Writer returns the underlying writer
func (f *Formatter) Writer() io.Writer {
	return f.writer
}

// JSON writes v as indented JSON followed by a newline
func (f *Formatter) JSON(v interface{}) error {
	enc := json.NewEncoder(f.writer)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
