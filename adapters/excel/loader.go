package excel

import (
	"fmt"
	"strings"
	"time"

	"sheetagg/adapters/datareadiness/coercer"
	"sheetagg/domain/colindex"
	"sheetagg/domain/core"
	"sheetagg/domain/table"
	"sheetagg/internal"
)

// mergeLimit is the number of merged sheets after which every remaining
// sheet is skipped. A skipped sheet does not count as merged, so the limit
// holds for the rest of the workbook.
const mergeLimit = 2

// SheetLoader reads every device sheet of a workbook, prefixes its columns
// with the device id and outer-joins the sheets on timestamp.
type SheetLoader struct {
	config ExcelConfig
	logger *internal.Logger
}

// NewSheetLoader creates a loader
func NewSheetLoader(config ExcelConfig, logger *internal.Logger) *SheetLoader {
	if config.TimestampColumn == "" {
		config.TimestampColumn = table.TimeColumn
	}
	if logger == nil {
		logger = internal.Discard()
	}
	return &SheetLoader{config: config, logger: logger}
}

// Load opens the workbook at path and merges its sheets, registering every
// produced column in index.
func (l *SheetLoader) Load(path string, index *colindex.Index) (*table.MergedTable, error) {
	wb, err := OpenWorkbook(path, l.logger)
	if err != nil {
		return nil, err
	}
	defer wb.Close()

	cfg := l.config.CoercionConfig
	switch w := wb.(type) {
	case *xlsxWorkbook:
		cfg.Use1904Dates = w.Date1904()
	case *csvWorkbook:
		// delimited exports carry epoch milliseconds, not serial days
		cfg.NumericDates = coercer.DateEpochMillis
	}
	return l.merge(wb, coercer.NewTypeCoercer(cfg), index)
}

// LoadWorkbook merges an already opened workbook using the configured
// coercion rules.
func (l *SheetLoader) LoadWorkbook(wb Workbook, index *colindex.Index) (*table.MergedTable, error) {
	return l.merge(wb, coercer.NewTypeCoercer(l.config.CoercionConfig), index)
}

func (l *SheetLoader) merge(wb Workbook, tc *coercer.TypeCoercer, index *colindex.Index) (*table.MergedTable, error) {
	startTime := time.Now()
	var merged *table.MergedTable
	processed := 0

	for _, label := range wb.SheetNames() {
		if processed == mergeLimit {
			l.logger.Info("Skipping sheet: %s", label)
			continue
		}

		raw, err := wb.ReadSheet(label)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", core.ErrWorkbookUnreadable, err)
		}
		if len(raw.Headers) == 0 {
			l.logger.Warn("Sheet %s has no header row, ignoring", label)
			continue
		}

		sheet, err := l.buildSheet(raw, DeviceName(label, l.config.SheetMarker), tc, index)
		if err != nil {
			return nil, err
		}
		l.logger.Debug("[SheetLoader] %s: %d rows, %d columns", label, sheet.Len(), len(sheet.Columns))
		merged = table.OuterJoin(merged, sheet)
		processed++
	}

	if merged == nil {
		return table.NewMergedTable(nil), nil
	}
	merged.InferKinds()
	l.logger.Debug("[SheetLoader] merged %d rows x %d columns in %.2fms",
		merged.Len(), len(merged.Columns), float64(time.Since(startTime).Nanoseconds())/1e6)
	return merged, nil
}

// buildSheet types the cells of one sheet and renames its columns to
// <device>_<header>.
func (l *SheetLoader) buildSheet(raw *RawSheet, device string, tc *coercer.TypeCoercer, index *colindex.Index) (*table.MergedTable, error) {
	timeCol := -1
	for i, h := range raw.Headers {
		if h == l.config.TimestampColumn {
			timeCol = i
			break
		}
	}
	if timeCol < 0 {
		return nil, core.NewMissingTimestampError(raw.Label, l.config.TimestampColumn)
	}

	var names []string
	var sources []int
	for i, h := range raw.Headers {
		if i == timeCol {
			continue
		}
		name := device + "_" + h
		names = append(names, name)
		sources = append(sources, i)
		if index != nil {
			index.Register(name)
		}
	}

	sheet := table.NewMergedTable(names)
	for _, row := range raw.Rows {
		var ts *time.Time
		if timeCol < len(row) {
			if t, ok := tc.CoerceTimestamp(row[timeCol]); ok {
				ts = &t
			}
		}
		cells := make([]table.Value, len(sources))
		for ci, src := range sources {
			if src < len(row) {
				cells[ci] = tc.CoerceValue(row[src])
			}
		}
		sheet.AppendRow(ts, cells)
	}
	sheet.CollapseDuplicates()
	sheet.SortByTime()
	return sheet, nil
}

// DeviceName derives the device id from a sheet label: the marker text is
// removed, then everything from the last underscore on, then surrounding
// whitespace. "Input A_1" becomes "A".
func DeviceName(label, marker string) string {
	name := label
	if marker != "" {
		name = strings.ReplaceAll(name, marker, "")
	}
	if i := strings.LastIndex(name, "_"); i >= 0 {
		name = name[:i]
	}
	return strings.TrimSpace(name)
}
