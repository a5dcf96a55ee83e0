package excel

import (
	"sheetagg/adapters/datareadiness/coercer"
	"sheetagg/domain/table"
)

// ExcelConfig holds configuration for workbook ingestion
type ExcelConfig struct {
	TimestampColumn string                 `json:"timestamp_column"`
	SheetMarker     string                 `json:"sheet_marker"`
	CoercionConfig  coercer.CoercionConfig `json:"coercion_config"`
}

// DefaultExcelConfig returns the conventions of the device export workbooks:
// sheets labelled "Input <device>_<suffix>" with a "Date Time" column.
func DefaultExcelConfig() ExcelConfig {
	return ExcelConfig{
		TimestampColumn: table.TimeColumn,
		SheetMarker:     "Input ",
		CoercionConfig:  coercer.DefaultCoercionConfig(),
	}
}
