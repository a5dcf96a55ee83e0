package coercer

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"sheetagg/domain/table"
)

// TypeCoercer turns raw spreadsheet cell text into typed table values
type TypeCoercer struct {
	config CoercionConfig
}

// NumericDateMode says how a number found in the timestamp column is read
type NumericDateMode string

const (
	// DateExcelSerial reads numbers as Excel serial day counts
	DateExcelSerial NumericDateMode = "excel_serial"
	// DateEpochMillis reads numbers as milliseconds since the Unix epoch
	DateEpochMillis NumericDateMode = "epoch_millis"
)

// CoercionConfig defines the coercion rules
type CoercionConfig struct {
	TimestampLayouts []string        `json:"timestamp_layouts"`
	NumericDates     NumericDateMode `json:"numeric_dates"`
	Use1904Dates     bool            `json:"use_1904_dates"`
	LenientNumbers   bool            `json:"lenient_numbers"` // accept currency, percent and grouped digits
	TrimText         bool            `json:"trim_text"`
}

// DefaultTimestampLayouts are tried in order for text timestamps
var DefaultTimestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05.000",
	"2006-01-02 15:04",
	"2006-01-02",
	"01/02/2006 15:04:05",
	"01/02/2006 15:04",
	"01/02/2006",
	"2006/01/02 15:04:05",
	"2006/01/02",
	"02.01.2006 15:04:05",
	"02-Jan-2006",
}

// DefaultCoercionConfig returns sensible defaults for workbook cells
func DefaultCoercionConfig() CoercionConfig {
	return CoercionConfig{
		TimestampLayouts: DefaultTimestampLayouts,
		NumericDates:     DateExcelSerial,
		LenientNumbers:   false,
		TrimText:         true,
	}
}

// NewTypeCoercer creates a coercer with the given config
func NewTypeCoercer(config CoercionConfig) *TypeCoercer {
	if len(config.TimestampLayouts) == 0 {
		config.TimestampLayouts = DefaultTimestampLayouts
	}
	if config.NumericDates == "" {
		config.NumericDates = DateExcelSerial
	}
	return &TypeCoercer{config: config}
}

// CoerceValue converts one reading cell. Empty cells are null, cells that
// parse as a number are numbers, everything else is text.
func (c *TypeCoercer) CoerceValue(raw string) table.Value {
	s := raw
	if c.config.TrimText {
		s = strings.TrimSpace(s)
	}
	if s == "" {
		return table.Null
	}
	if n, ok := c.tryParseNumeric(s); ok {
		return table.Number(n)
	}
	return table.Text(s)
}

// CoerceTimestamp parses a timestamp cell. ok is false when the cell is
// empty or matches no known form; the caller keeps the row with a null time.
func (c *TypeCoercer) CoerceTimestamp(raw string) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, false
	}

	if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
		return c.numericTimestamp(f)
	}

	for _, layout := range c.config.TimestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

func (c *TypeCoercer) numericTimestamp(f float64) (time.Time, bool) {
	switch c.config.NumericDates {
	case DateEpochMillis:
		return time.UnixMilli(int64(math.Round(f))).UTC(), true
	default:
		t, err := excelize.ExcelDateToTime(f, c.config.Use1904Dates)
		if err != nil {
			return time.Time{}, false
		}
		// serial fractions carry float noise below a millisecond
		return t.UTC().Round(time.Millisecond), true
	}
}

// tryParseNumeric parses plain numbers; with LenientNumbers it also accepts
// parentheses for negatives, currency symbols, percent signs and grouped
// digits.
func (c *TypeCoercer) tryParseNumeric(strVal string) (float64, bool) {
	if val, err := strconv.ParseFloat(strVal, 64); err == nil {
		return val, !math.IsInf(val, 0) && !math.IsNaN(val)
	}
	if !c.config.LenientNumbers {
		return 0, false
	}

	cleanVal := strVal

	// Handle parentheses for negative numbers: (123) -> -123
	isNegative := false
	if strings.HasPrefix(cleanVal, "(") && strings.HasSuffix(cleanVal, ")") {
		cleanVal = strings.TrimSuffix(strings.TrimPrefix(cleanVal, "("), ")")
		isNegative = true
	}

	for _, symbol := range []string{"$", "€", "£", "¥", "%"} {
		cleanVal = strings.ReplaceAll(cleanVal, symbol, "")
	}
	cleanVal = strings.TrimSpace(cleanVal)

	hasComma := strings.Contains(cleanVal, ",")
	hasPeriod := strings.Contains(cleanVal, ".")
	switch {
	case hasComma && hasPeriod:
		// 1.234,56 (European) vs 1,234.56
		if strings.LastIndex(cleanVal, ",") > strings.LastIndex(cleanVal, ".") {
			cleanVal = strings.ReplaceAll(cleanVal, ".", "")
			cleanVal = strings.ReplaceAll(cleanVal, ",", ".")
		} else {
			cleanVal = strings.ReplaceAll(cleanVal, ",", "")
		}
	case hasComma:
		cleanVal = strings.ReplaceAll(cleanVal, ",", ".")
	}
	cleanVal = strings.ReplaceAll(cleanVal, " ", "")

	if isNegative {
		cleanVal = "-" + cleanVal
	}

	val, err := strconv.ParseFloat(cleanVal, 64)
	if err != nil || math.IsInf(val, 0) || math.IsNaN(val) {
		return 0, false
	}
	return val, true
}
