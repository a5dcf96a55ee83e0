package table

import (
	"time"
)

// ResultTable is the bucketed summary: one row per bucket start, the
// bucket start first, then the aggregated columns.
type ResultTable struct {
	Columns []string
	Numeric []bool
	Buckets []time.Time
	Rows    [][]Value
}

// Header returns the column names prefixed by the timestamp column
func (r *ResultTable) Header() []string {
	h := make([]string, 0, len(r.Columns)+1)
	h = append(h, TimeColumn)
	return append(h, r.Columns...)
}

// Len returns the bucket count
func (r *ResultTable) Len() int { return len(r.Buckets) }

// NumericColumns lists the output columns holding numbers
func (r *ResultTable) NumericColumns() []string {
	var cols []string
	for i, c := range r.Columns {
		if r.Numeric[i] {
			cols = append(cols, c)
		}
	}
	return cols
}

// Head returns at most n leading rows as strings, timestamp first
func (r *ResultTable) Head(n int, layout string) [][]string {
	if n > len(r.Rows) {
		n = len(r.Rows)
	}
	out := make([][]string, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, r.Record(i, layout))
	}
	return out
}

// Record renders row i as strings, timestamp first
func (r *ResultTable) Record(i int, layout string) []string {
	rec := make([]string, 0, len(r.Columns)+1)
	rec = append(rec, r.Buckets[i].Format(layout))
	for _, v := range r.Rows[i] {
		rec = append(rec, v.String())
	}
	return rec
}
