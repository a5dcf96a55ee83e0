// Package csvsink writes aggregated results as comma-separated text and
// echoes a short preview to the operator.
package csvsink

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"sheetagg/domain/core"
	"sheetagg/domain/table"
	"sheetagg/internal"
)

// DefaultOutput is the file written when no output path is given
const DefaultOutput = "aggregated_output.csv"

// DefaultPreviewRows is how many leading buckets are echoed after writing
const DefaultPreviewRows = 5

// Sink writes a ResultTable to a CSV file
type Sink struct {
	path        string
	previewRows int
	preview     io.Writer
	logger      *internal.Logger
}

// New creates a sink writing to path. The preview goes to preview; pass nil
// to suppress it.
func New(path string, previewRows int, preview io.Writer, logger *internal.Logger) *Sink {
	if path == "" {
		path = DefaultOutput
	}
	if previewRows < 0 {
		previewRows = DefaultPreviewRows
	}
	if logger == nil {
		logger = internal.Discard()
	}
	return &Sink{path: path, previewRows: previewRows, preview: preview, logger: logger}
}

// Name identifies the sink in logs
func (s *Sink) Name() string { return "csv" }

// Write creates or truncates the output file and writes the header and one
// record per bucket. Null cells are written empty.
func (s *Sink) Write(ctx context.Context, runID core.RunID, result *table.ResultTable) error {
	f, err := os.Create(s.path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", s.path, err)
	}
	defer f.Close()

	if err := WriteCSV(f, result); err != nil {
		return fmt.Errorf("failed to write %s: %w", s.path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", s.path, err)
	}
	s.logger.Debug("[csvsink] run %s: %d rows written to %s", runID, result.Len(), s.path)

	if s.preview != nil {
		if err := Preview(s.preview, result, s.previewRows); err != nil {
			return err
		}
		fmt.Fprintf(s.preview, "Aggregated data saved to %s\n", s.path)
	}
	return nil
}

// WriteCSV encodes result to w
func WriteCSV(w io.Writer, result *table.ResultTable) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(result.Header()); err != nil {
		return err
	}
	for i := 0; i < result.Len(); i++ {
		if err := cw.Write(result.Record(i, core.DateTimeLayout)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Preview prints the first n buckets as an aligned table
func Preview(w io.Writer, result *table.ResultTable, n int) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(result.Header(), "\t"))
	for _, rec := range result.Head(n, core.DateTimeLayout) {
		for i, cell := range rec {
			if cell == "" {
				rec[i] = "NaN"
			}
		}
		fmt.Fprintln(tw, strings.Join(rec, "\t"))
	}
	return tw.Flush()
}
