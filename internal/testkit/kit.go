// Package testkit builds workbook fixtures for tests.
package testkit

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// SheetFixture is one sheet of a fixture workbook. Cells may hold
// time.Time, numbers, strings or nil for an empty cell.
type SheetFixture struct {
	Name    string
	Headers []string
	Rows    [][]interface{}
}

// Sheet starts a fixture with a header row
func Sheet(name string, headers ...string) SheetFixture {
	return SheetFixture{Name: name, Headers: headers}
}

// Row appends a data row
func (s SheetFixture) Row(cells ...interface{}) SheetFixture {
	s.Rows = append(s.Rows, cells)
	return s
}

// WriteWorkbook writes the sheets, in order, to an xlsx file under
// t.TempDir() and returns its path.
func WriteWorkbook(t testing.TB, sheets ...SheetFixture) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	for i, s := range sheets {
		if i == 0 {
			require.NoError(t, f.SetSheetName("Sheet1", s.Name))
		} else {
			_, err := f.NewSheet(s.Name)
			require.NoError(t, err)
		}

		if len(s.Headers) > 0 {
			header := make([]interface{}, len(s.Headers))
			for ci, h := range s.Headers {
				header[ci] = h
			}
			require.NoError(t, f.SetSheetRow(s.Name, "A1", &header))
		}

		for ri, row := range s.Rows {
			for ci, v := range row {
				if v == nil {
					continue
				}
				cell, err := excelize.CoordinatesToCellName(ci+1, ri+2)
				require.NoError(t, err)
				require.NoError(t, f.SetCellValue(s.Name, cell, v))
			}
		}
	}

	path := filepath.Join(t.TempDir(), "workbook.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

// WriteCSV writes lines to name under t.TempDir() and returns its path
func WriteCSV(t testing.TB, name string, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644))
	return path
}
