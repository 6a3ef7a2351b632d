// Package persist saves, loads, exports and imports annotation projects.
package persist

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/mta-tools/mta/internal/timeline"
	"github.com/mta-tools/mta/internal/util"
)

// SchemaVersion tags exported documents.
const SchemaVersion = "1.0"

// Sentinel causes wrapped by ImportError.
var (
	ErrMissingLayers    = errors.New("document has no layers field")
	ErrMissingVideoInfo = errors.New("document has no videoInfo field")
	ErrInvalidTime      = errors.New("time value is not finite or exceeds 24h")
)

// ImportError reports a document that cannot be imported. State is never
// modified when one is returned.
type ImportError struct {
	Source string
	Err    error
}

func (e *ImportError) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("import failed: %v", e.Err)
	}
	return fmt.Sprintf("import %s failed: %v", e.Source, e.Err)
}

func (e *ImportError) Unwrap() error {
	return e.Err
}

// StudentInfo identifies the author of an analysis.
type StudentInfo struct {
	Name     string `json:"name" yaml:"name"`
	Surname  string `json:"surname" yaml:"surname"`
	FullName string `json:"fullName" yaml:"fullName"`
}

// VideoInfo describes the analysed media. Duration is the timeline length.
type VideoInfo struct {
	Title    string  `json:"title" yaml:"title"`
	URL      string  `json:"url" yaml:"url"`
	Duration float64 `json:"duration" yaml:"duration"`
}

// LayerDoc is one layer with its blocks in start order.
type LayerDoc struct {
	ID     string           `json:"id" yaml:"id"`
	Name   string           `json:"name" yaml:"name"`
	Blocks []timeline.Block `json:"blocks" yaml:"blocks"`
}

// Document is the exported and autosaved form of a project. Autosaves leave
// SchemaVersion empty.
type Document struct {
	StudentInfo   StudentInfo `json:"studentInfo" yaml:"studentInfo"`
	VideoInfo     VideoInfo   `json:"videoInfo" yaml:"videoInfo"`
	Layers        []LayerDoc  `json:"layers" yaml:"layers"`
	ExportDate    time.Time   `json:"exportDate" yaml:"exportDate"`
	SchemaVersion string      `json:"schemaVersion,omitempty" yaml:"schemaVersion,omitempty"`
}

// Student returns the document identity as a timeline.Student.
func (d Document) Student() timeline.Student {
	return timeline.Student{Name: d.StudentInfo.Name, Surname: d.StudentInfo.Surname}
}

// Video returns the document video metadata as a timeline.Video.
func (d Document) Video() timeline.Video {
	return timeline.Video{Title: d.VideoInfo.Title, URL: d.VideoInfo.URL, Duration: d.VideoInfo.Duration}
}

// BlocksByLayer indexes the document's blocks by layer id.
func (d Document) BlocksByLayer() map[string][]timeline.Block {
	out := make(map[string][]timeline.Block, len(d.Layers))
	for _, l := range d.Layers {
		out[l.ID] = append(out[l.ID], l.Blocks...)
	}
	return out
}

// FromSnapshot builds a document from a project snapshot.
func FromSnapshot(s timeline.Snapshot, at time.Time) Document {
	d := Document{
		StudentInfo: StudentInfo{
			Name:     s.Student.Name,
			Surname:  s.Student.Surname,
			FullName: s.Student.FullName(),
		},
		VideoInfo: VideoInfo{
			Title:    s.Video.Title,
			URL:      s.Video.URL,
			Duration: s.Video.Duration,
		},
		Layers:     make([]LayerDoc, len(s.Layers)),
		ExportDate: at.UTC(),
	}
	for i, l := range s.Layers {
		blocks := l.Blocks
		if blocks == nil {
			blocks = []timeline.Block{}
		}
		d.Layers[i] = LayerDoc{ID: l.Def.ID, Name: l.Def.Name, Blocks: blocks}
	}
	return d
}

// Format is a document encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatForPath picks the encoding from a file extension; JSON is the default.
func FormatForPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Encode serializes a document.
func Encode(d Document, f Format) ([]byte, error) {
	switch f {
	case FormatYAML:
		return yaml.Marshal(d)
	case FormatJSON, "":
		data, err := json.MarshalIndent(d, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	default:
		return nil, fmt.Errorf("unknown document format %q", f)
	}
}

// ExportFilename names an export after the student, e.g.
// "analysis-ana-garcia.json".
func ExportFilename(d Document, ext string) string {
	stem := util.SanitizeFilename(d.StudentInfo.FullName)
	if stem == "" {
		stem = "untitled"
	}
	return "analysis-" + stem + "." + strings.TrimPrefix(ext, ".")
}

// wireBlock accepts the current block shape plus the legacy keys "type"
// (category) and "customText" (annotation).
type wireBlock struct {
	ID         string  `json:"id" yaml:"id"`
	Category   string  `json:"category" yaml:"category"`
	Type       string  `json:"type" yaml:"type"`
	Label      string  `json:"label" yaml:"label"`
	StartTime  float64 `json:"startTime" yaml:"startTime"`
	Duration   float64 `json:"duration" yaml:"duration"`
	Annotation string  `json:"annotation" yaml:"annotation"`
	CustomText string  `json:"customText" yaml:"customText"`
}

type wireLayer struct {
	ID     string      `json:"id" yaml:"id"`
	Name   string      `json:"name" yaml:"name"`
	Blocks []wireBlock `json:"blocks" yaml:"blocks"`
}

// wireDocument uses pointers so that absent required fields are detectable.
type wireDocument struct {
	StudentInfo   StudentInfo  `json:"studentInfo" yaml:"studentInfo"`
	VideoInfo     *VideoInfo   `json:"videoInfo" yaml:"videoInfo"`
	Layers        *[]wireLayer `json:"layers" yaml:"layers"`
	ExportDate    time.Time    `json:"exportDate" yaml:"exportDate"`
	SchemaVersion string       `json:"schemaVersion" yaml:"schemaVersion"`
	Version       string       `json:"version" yaml:"version"`
}

// checkTimes rejects non-finite or oversized times. Negative values are
// left for the block store to clamp.
func (w wireDocument) checkTimes() error {
	if !timeline.ValidTime(w.VideoInfo.Duration) {
		return fmt.Errorf("%w: videoInfo.duration %v", ErrInvalidTime, w.VideoInfo.Duration)
	}
	for _, l := range *w.Layers {
		for i, b := range l.Blocks {
			if !timeline.ValidTime(b.StartTime) {
				return fmt.Errorf("%w: layer %q block %d startTime %v", ErrInvalidTime, l.ID, i, b.StartTime)
			}
			if !timeline.ValidTime(b.Duration) {
				return fmt.Errorf("%w: layer %q block %d duration %v", ErrInvalidTime, l.ID, i, b.Duration)
			}
		}
	}
	return nil
}

// Decode parses and validates a document. The layers and videoInfo fields
// are required and every time must be finite and at most timeline.MaxTime.
func Decode(data []byte, f Format) (Document, error) {
	var w wireDocument
	var err error
	switch f {
	case FormatYAML:
		err = yaml.Unmarshal(data, &w)
	case FormatJSON, "":
		err = json.Unmarshal(data, &w)
	default:
		err = fmt.Errorf("unknown document format %q", f)
	}
	if err != nil {
		return Document{}, &ImportError{Err: fmt.Errorf("parsing document: %w", err)}
	}
	if w.Layers == nil {
		return Document{}, &ImportError{Err: ErrMissingLayers}
	}
	if w.VideoInfo == nil {
		return Document{}, &ImportError{Err: ErrMissingVideoInfo}
	}
	if err := w.checkTimes(); err != nil {
		return Document{}, &ImportError{Err: err}
	}

	d := Document{
		StudentInfo:   w.StudentInfo,
		VideoInfo:     *w.VideoInfo,
		ExportDate:    w.ExportDate,
		SchemaVersion: w.SchemaVersion,
		Layers:        make([]LayerDoc, 0, len(*w.Layers)),
	}
	if d.SchemaVersion == "" {
		d.SchemaVersion = w.Version
	}
	for _, wl := range *w.Layers {
		l := LayerDoc{ID: wl.ID, Name: wl.Name, Blocks: make([]timeline.Block, 0, len(wl.Blocks))}
		for _, wb := range wl.Blocks {
			b := timeline.Block{
				ID:         wb.ID,
				Category:   wb.Category,
				Label:      wb.Label,
				StartTime:  wb.StartTime,
				Duration:   wb.Duration,
				Annotation: wb.Annotation,
			}
			if b.Category == "" {
				b.Category = wb.Type
			}
			if b.Annotation == "" {
				b.Annotation = wb.CustomText
			}
			l.Blocks = append(l.Blocks, b)
		}
		d.Layers = append(d.Layers, l)
	}
	return d, nil
}
