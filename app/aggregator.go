package app

import (
	"time"

	"sheetagg/adapters/stats/summary"
	"sheetagg/adapters/stats/temporal"
	"sheetagg/domain/aggregation"
	"sheetagg/domain/colindex"
	"sheetagg/domain/core"
	"sheetagg/domain/table"
	"sheetagg/internal"
)

// Aggregator resamples a merged table into time buckets and reduces every
// selected column per bucket.
type Aggregator struct {
	logger *internal.Logger
}

// NewAggregator creates an aggregator
func NewAggregator(logger *internal.Logger) *Aggregator {
	if logger == nil {
		logger = internal.Discard()
	}
	return &Aggregator{logger: logger}
}

// Aggregate builds the result table. With requested short names only the
// columns they resolve to are aggregated; otherwise every column is.
func (a *Aggregator) Aggregate(merged *table.MergedTable, index *colindex.Index, requested []string, spec aggregation.Spec) (*table.ResultTable, error) {
	selected, err := a.selectColumns(merged, index, requested)
	if err != nil {
		return nil, err
	}

	var numeric, text []int
	for _, ci := range selected {
		if merged.Columns[ci].Kind == table.ColumnNumeric {
			numeric = append(numeric, ci)
		} else {
			text = append(text, ci)
		}
	}

	stats := spec.Statistics()
	result := &table.ResultTable{}
	for _, ci := range numeric {
		for _, st := range stats {
			result.Columns = append(result.Columns, spec.ColumnName(merged.Columns[ci].Name, st))
			result.Numeric = append(result.Numeric, true)
		}
	}
	for _, ci := range text {
		result.Columns = append(result.Columns, spec.ColumnName(merged.Columns[ci].Name, aggregation.StatLast))
		result.Numeric = append(result.Numeric, false)
	}

	first, last, ok := timeRange(merged)
	if !ok {
		a.logger.Debug("[Aggregator] no timestamped rows, result is empty")
		return result, nil
	}
	grid := temporal.NewGrid(spec.Width, first, last)
	result.Buckets = grid.Starts
	result.Rows = make([][]table.Value, grid.Len())
	for b := range result.Rows {
		result.Rows[b] = make([]table.Value, len(result.Columns))
	}

	out := 0
	for _, ci := range numeric {
		buckets := bucketNumbers(merged, ci, grid)
		for _, st := range stats {
			reducer, _ := summary.For(st)
			for b, values := range buckets {
				if v, ok := reducer.Reduce(values); ok {
					result.Rows[b][out] = table.Number(v)
				}
			}
			out++
		}
	}
	for _, ci := range text {
		for b, v := range lastText(merged, ci, grid) {
			result.Rows[b][out] = v
		}
		out++
	}

	a.logger.Debug("[Aggregator] %d buckets of %s, %d output columns", grid.Len(), spec.Width, len(result.Columns))
	return result, nil
}

// selectColumns returns the merged-table positions to aggregate
func (a *Aggregator) selectColumns(merged *table.MergedTable, index *colindex.Index, requested []string) ([]int, error) {
	if len(requested) == 0 {
		all := make([]int, len(merged.Columns))
		for i := range all {
			all[i] = i
		}
		return all, nil
	}

	resolved, missing := index.ResolveAll(requested)
	for _, m := range missing {
		a.logger.Warn("Column not found in workbook: %s", m)
	}

	var selected []int
	for _, name := range resolved {
		if ci := merged.ColumnIndex(name); ci >= 0 {
			selected = append(selected, ci)
		}
	}
	if len(selected) == 0 {
		return nil, core.NewNoColumnsMatchedError(requested)
	}
	return selected, nil
}

// timeRange finds the earliest and latest non-null timestamps
func timeRange(merged *table.MergedTable) (first, last time.Time, ok bool) {
	for _, r := range merged.Rows {
		if r.Time == nil {
			continue
		}
		if !ok || r.Time.Before(first) {
			first = *r.Time
		}
		if !ok || r.Time.After(last) {
			last = *r.Time
		}
		ok = true
	}
	return first, last, ok
}

// bucketNumbers gathers the non-null numbers of column ci per bucket
func bucketNumbers(merged *table.MergedTable, ci int, grid *temporal.Grid) [][]float64 {
	buckets := make([][]float64, grid.Len())
	for _, r := range merged.Rows {
		if r.Time == nil || !r.Cells[ci].IsNumber() {
			continue
		}
		if b := grid.Index(*r.Time); b >= 0 {
			buckets[b] = append(buckets[b], r.Cells[ci].Num)
		}
	}
	return buckets
}

// lastText keeps, per bucket, the non-null cell with the latest timestamp
func lastText(merged *table.MergedTable, ci int, grid *temporal.Grid) []table.Value {
	values := make([]table.Value, grid.Len())
	seen := make([]time.Time, grid.Len())
	for _, r := range merged.Rows {
		if r.Time == nil || r.Cells[ci].IsNull() {
			continue
		}
		b := grid.Index(*r.Time)
		if b < 0 {
			continue
		}
		if values[b].IsNull() || !r.Time.Before(seen[b]) {
			values[b] = r.Cells[ci]
			seen[b] = *r.Time
		}
	}
	return values
}
