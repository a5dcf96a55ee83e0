package excel

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"sheetagg/domain/colindex"
	"sheetagg/domain/table"
	"sheetagg/internal"
)

const chartSheet = "Aggregated"

// ChartPath derives the chart workbook path from the CSV output path
func ChartPath(output string) string {
	return strings.TrimSuffix(output, filepath.Ext(output)) + "_chart.xlsx"
}

// ChartPlotter writes the result to a workbook with one line series per
// numeric column against the bucket start.
type ChartPlotter struct {
	path    string
	enabled bool
	logger  *internal.Logger
}

// NewChartPlotter creates a plotter; a disabled plotter does nothing
func NewChartPlotter(path string, enabled bool, logger *internal.Logger) *ChartPlotter {
	if logger == nil {
		logger = internal.Discard()
	}
	return &ChartPlotter{path: path, enabled: enabled, logger: logger}
}

// Plot renders the chart. Legends use the canonical column each output
// column was derived from.
func (p *ChartPlotter) Plot(result *table.ResultTable, index *colindex.Index) error {
	if !p.enabled {
		return nil
	}
	numeric := result.NumericColumns()
	if len(numeric) == 0 {
		p.logger.Warn("No numeric columns to plot")
		return nil
	}
	if result.Len() == 0 {
		p.logger.Warn("No buckets to plot")
		return nil
	}

	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", chartSheet); err != nil {
		return fmt.Errorf("failed to prepare chart sheet: %w", err)
	}
	if err := writeResultSheet(f, result); err != nil {
		return err
	}

	lastRow := result.Len() + 1
	categories := fmt.Sprintf("%s!$A$2:$A$%d", chartSheet, lastRow)
	series := make([]excelize.ChartSeries, 0, len(numeric))
	for i, col := range result.Columns {
		if !result.Numeric[i] {
			continue
		}
		letter, err := excelize.ColumnNumberToName(i + 2)
		if err != nil {
			return err
		}
		name := col
		if index != nil {
			name = index.Original(col)
		}
		series = append(series, excelize.ChartSeries{
			Name:       name,
			Categories: categories,
			Values:     fmt.Sprintf("%s!$%s$2:$%s$%d", chartSheet, letter, letter, lastRow),
		})
	}

	anchor, err := excelize.CoordinatesToCellName(len(result.Columns)+3, 2)
	if err != nil {
		return err
	}
	chart := &excelize.Chart{
		Type:      excelize.Line,
		Series:    series,
		Title:     []excelize.RichTextRun{{Text: "Time-Series Aggregated Data"}},
		Legend:    excelize.ChartLegend{Position: "right"},
		Dimension: excelize.ChartDimension{Width: 960, Height: 480},
		XAxis:     excelize.ChartAxis{Title: []excelize.RichTextRun{{Text: table.TimeColumn}}},
		YAxis:     excelize.ChartAxis{Title: []excelize.RichTextRun{{Text: "Values"}}},
	}
	if err := f.AddChart(chartSheet, anchor, chart); err != nil {
		return fmt.Errorf("failed to add chart: %w", err)
	}

	if err := f.SaveAs(p.path); err != nil {
		return fmt.Errorf("failed to save chart %s: %w", p.path, err)
	}
	p.logger.Info("Chart saved to %s (%d series)", p.path, len(series))
	return nil
}

// writeResultSheet lays the result out as a header row plus one row per
// bucket. Null cells stay empty so the chart shows gaps.
func writeResultSheet(f *excelize.File, result *table.ResultTable) error {
	header := make([]interface{}, 0, len(result.Columns)+1)
	for _, h := range result.Header() {
		header = append(header, h)
	}
	if err := f.SetSheetRow(chartSheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write chart header: %w", err)
	}

	for r, bucket := range result.Buckets {
		row := make([]interface{}, 0, len(result.Columns)+1)
		row = append(row, bucket)
		for _, v := range result.Rows[r] {
			switch v.Kind {
			case table.KindNumber:
				row = append(row, v.Num)
			case table.KindText:
				row = append(row, v.Str)
			default:
				row = append(row, nil)
			}
		}
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(chartSheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write chart row %d: %w", r+1, err)
		}
	}
	return nil
}
