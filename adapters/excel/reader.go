package excel

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"sheetagg/domain/core"
	"sheetagg/internal"
)

// OpenWorkbook opens an .xlsx workbook, or a .csv file as a one-sheet
// workbook labelled by the file's base name.
func OpenWorkbook(path string, logger *internal.Logger) (Workbook, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", core.ErrWorkbookUnreadable, path, err)
	}
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		return openCSV(path, logger)
	}
	return openXLSX(path, logger)
}

// xlsxWorkbook reads sheets through excelize
type xlsxWorkbook struct {
	file   *excelize.File
	logger *internal.Logger
}

func openXLSX(path string, logger *internal.Logger) (*xlsxWorkbook, error) {
	startTime := time.Now()
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", core.ErrWorkbookUnreadable, path, err)
	}
	logger.Debug("[DataReader] Excel file opened in %.2fms", float64(time.Since(startTime).Nanoseconds())/1e6)
	return &xlsxWorkbook{file: f, logger: logger}, nil
}

// Date1904 reports whether serial dates count from 1904
func (w *xlsxWorkbook) Date1904() bool {
	props, err := w.file.GetWorkbookProps()
	if err != nil || props.Date1904 == nil {
		return false
	}
	return *props.Date1904
}

func (w *xlsxWorkbook) SheetNames() []string {
	return w.file.GetSheetList()
}

func (w *xlsxWorkbook) ReadSheet(label string) (*RawSheet, error) {
	readStart := time.Now()
	// raw values keep dates as serial numbers instead of display strings
	rows, err := w.file.GetRows(label, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", label, err)
	}
	w.logger.Debug("[DataReader] %s read in %.2fms (%d rows)", label, float64(time.Since(readStart).Nanoseconds())/1e6, len(rows))
	return processRows(label, rows), nil
}

func (w *xlsxWorkbook) Close() error {
	return w.file.Close()
}

// csvWorkbook exposes a delimited file as a single sheet
type csvWorkbook struct {
	label string
	rows  [][]string
}

func openCSV(path string, logger *internal.Logger) (*csvWorkbook, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", core.ErrWorkbookUnreadable, path, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", core.ErrWorkbookUnreadable, path, err)
	}
	logger.Debug("[DataReader] CSV file read (%d rows)", len(rows))

	label := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return &csvWorkbook{label: label, rows: rows}, nil
}

func (w *csvWorkbook) SheetNames() []string { return []string{w.label} }

func (w *csvWorkbook) ReadSheet(label string) (*RawSheet, error) {
	if label != w.label {
		return nil, fmt.Errorf("sheet %q does not exist", label)
	}
	return processRows(label, w.rows), nil
}

func (w *csvWorkbook) Close() error { return nil }

// processRows splits the header row from data rows. Blank headers get the
// "Unnamed: <n>" placeholder and fully blank rows are dropped.
func processRows(label string, rows [][]string) *RawSheet {
	sheet := &RawSheet{Label: label}
	if len(rows) == 0 {
		return sheet
	}

	sheet.Headers = make([]string, len(rows[0]))
	for i, header := range rows[0] {
		header = strings.TrimSpace(header)
		if header == "" {
			header = fmt.Sprintf("Unnamed: %d", i)
		}
		sheet.Headers[i] = header
	}

	for _, row := range rows[1:] {
		if isBlank(row) {
			continue
		}
		sheet.Rows = append(sheet.Rows, row)
	}
	return sheet
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
