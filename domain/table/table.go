// Package table holds the in-memory tables that flow through the pipeline:
// the merged per-device readings and the bucketed result.
package table

import (
	"sort"
	"time"
)

// TimeColumn is the reserved timestamp column name
const TimeColumn = "Date Time"

// ColumnKind classifies a column by the values it holds
type ColumnKind uint8

const (
	ColumnNumeric ColumnKind = iota
	ColumnText
)

// Column describes one non-timestamp column of a MergedTable
type Column struct {
	Name string
	Kind ColumnKind
}

// Row is one timestamp with a cell per column; Time is nil when the
// source timestamp could not be parsed.
type Row struct {
	Time  *time.Time
	Cells []Value
}

// MergedTable is the outer join of all device sheets, one row per timestamp
type MergedTable struct {
	Columns []Column
	Rows    []Row
}

// NewMergedTable creates an empty table with the given column names
func NewMergedTable(names []string) *MergedTable {
	cols := make([]Column, len(names))
	for i, n := range names {
		cols[i] = Column{Name: n, Kind: ColumnNumeric}
	}
	return &MergedTable{Columns: cols}
}

// Len returns the row count
func (t *MergedTable) Len() int { return len(t.Rows) }

// ColumnIndex returns the position of a column, or -1
func (t *MergedTable) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// ColumnNames lists the non-timestamp columns in table order
func (t *MergedTable) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// AppendRow adds a row, padding or truncating cells to the column count
func (t *MergedTable) AppendRow(ts *time.Time, cells []Value) {
	row := Row{Time: ts, Cells: make([]Value, len(t.Columns))}
	copy(row.Cells, cells)
	t.Rows = append(t.Rows, row)
}

// InferKinds marks a column as text as soon as one text cell is present.
// Columns with only numbers and nulls, or only nulls, stay numeric.
func (t *MergedTable) InferKinds() {
	for ci := range t.Columns {
		t.Columns[ci].Kind = ColumnNumeric
		for _, r := range t.Rows {
			if r.Cells[ci].IsText() {
				t.Columns[ci].Kind = ColumnText
				break
			}
		}
	}
}

// SortByTime orders rows ascending by timestamp with the null-time row last
func (t *MergedTable) SortByTime() {
	sort.SliceStable(t.Rows, func(i, j int) bool {
		a, b := t.Rows[i].Time, t.Rows[j].Time
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return a.Before(*b)
		}
	})
}
