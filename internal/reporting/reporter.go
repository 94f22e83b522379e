// internal/reporting/reporter.go
package reporting

import (
	"fmt"
	"io"
	"os"
	"time"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Output formats understood by New.
const (
	FormatHTML  = "html"
	FormatJSON  = "json"
	FormatJUnit = "junit"
)

// Report is a frozen view of a run, ready to render.
type Report struct {
	RunID       string
	EngineLabel string
	GeneratedAt time.Time
	Results     []TestRecord
	Stats       Statistics
	SystemInfo  *orderedmap.OrderedMap[string, string]
	Performance *orderedmap.OrderedMap[string, any]
	Screenshots *orderedmap.OrderedMap[string, int]
}

// Reporter renders a report to an output.
type Reporter interface {
	// Write renders the report.
	Write(r *Report) error
	// Close finalizes the output and closes any underlying file.
	Close() error
}

// nopWriteCloser wraps an io.Writer and provides a no-op Close method.
type nopWriteCloser struct {
	io.Writer
}

func (nwc *nopWriteCloser) Close() error {
	return nil
}

// New creates a reporter for format writing to outputPath, or to stdout
// when the path is empty or "stdout".
func New(format, outputPath string) (Reporter, error) {
	switch format {
	case FormatHTML, FormatJSON, FormatJUnit:
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}

	var writer io.WriteCloser
	if outputPath == "" || outputPath == "stdout" {
		// Wrap Stdout so Close() is a no-op.
		writer = &nopWriteCloser{os.Stdout}
	} else {
		f, err := os.Create(outputPath)
		if err != nil {
			return nil, fmt.Errorf("failed to create output file %s: %w", outputPath, err)
		}
		writer = f
	}

	switch format {
	case FormatHTML:
		return &htmlReporter{w: writer}, nil
	case FormatJSON:
		return &jsonReporter{w: writer}, nil
	default:
		return &junitReporter{w: writer}, nil
	}
}
