package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/iksnae/chatloop/internal"
)

// Exporter defines the interface for all transcript formats
type Exporter interface {
	Export(snap *internal.Snapshot, w io.Writer) error
	Extension() string
}

// NewExporter creates a new exporter based on format
func NewExporter(format string) (Exporter, error) {
	switch format {
	case "jsonl":
		return &JSONLExporter{}, nil
	case "md", "markdown":
		return &MarkdownExporter{}, nil
	case "yaml", "yml":
		return &YAMLExporter{}, nil
	case "json":
		return &JSONExporter{}, nil
	default:
		return nil, fmt.Errorf("unsupported format: %s (supported: jsonl, md, yaml, json)", format)
	}
}

// FormatFromPath infers an export format from the file extension
func FormatFromPath(path string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
}

// WriteFile exports snap to path. An empty format is inferred from the path.
func WriteFile(snap *internal.Snapshot, path, format string) error {
	if format == "" {
		format = FormatFromPath(path)
	}
	exporter, err := NewExporter(format)
	if err != nil {
		return &internal.ExportError{Format: format, Path: path, Err: err}
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return &internal.ExportError{Format: format, Path: path, Err: err}
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return &internal.ExportError{Format: format, Path: path, Err: err}
	}

	if err := exporter.Export(snap, f); err != nil {
		_ = f.Close()
		return &internal.ExportError{Format: format, Path: path, Err: err}
	}
	if err := f.Close(); err != nil {
		return &internal.ExportError{Format: format, Path: path, Err: err}
	}
	internal.LogInfo("Exported %d turns to %s", len(snap.Turns), path)
	return nil
}
