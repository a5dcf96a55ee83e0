package table

import "time"

// timeKey identifies a row for joining; all null timestamps share one key
type timeKey struct {
	null bool
	ns   int64
}

func keyOf(ts *time.Time) timeKey {
	if ts == nil {
		return timeKey{null: true}
	}
	return timeKey{ns: ts.UnixNano()}
}

// CollapseDuplicates folds rows that share a timestamp into the first such
// row; later non-null cells overwrite earlier ones.
func (t *MergedTable) CollapseDuplicates() {
	seen := make(map[timeKey]int, len(t.Rows))
	kept := t.Rows[:0]
	for _, r := range t.Rows {
		k := keyOf(r.Time)
		if at, ok := seen[k]; ok {
			for ci, v := range r.Cells {
				if !v.IsNull() {
					kept[at].Cells[ci] = v
				}
			}
			continue
		}
		seen[k] = len(kept)
		kept = append(kept, r)
	}
	t.Rows = kept
}

// OuterJoin merges two tables on timestamp. The result holds the union of
// both timestamp sets, left columns first, with nulls where a side had no
// row for a timestamp. Inputs must already be free of duplicate timestamps.
func OuterJoin(left, right *MergedTable) *MergedTable {
	if left == nil {
		return right
	}
	if right == nil {
		return left
	}

	out := &MergedTable{Columns: make([]Column, 0, len(left.Columns)+len(right.Columns))}
	out.Columns = append(out.Columns, left.Columns...)
	out.Columns = append(out.Columns, right.Columns...)
	width := len(out.Columns)
	offset := len(left.Columns)

	index := make(map[timeKey]int, len(left.Rows)+len(right.Rows))
	out.Rows = make([]Row, 0, len(left.Rows)+len(right.Rows))

	for _, r := range left.Rows {
		cells := make([]Value, width)
		copy(cells, r.Cells)
		index[keyOf(r.Time)] = len(out.Rows)
		out.Rows = append(out.Rows, Row{Time: r.Time, Cells: cells})
	}

	for _, r := range right.Rows {
		k := keyOf(r.Time)
		at, ok := index[k]
		if !ok {
			at = len(out.Rows)
			index[k] = at
			out.Rows = append(out.Rows, Row{Time: r.Time, Cells: make([]Value, width)})
		}
		copy(out.Rows[at].Cells[offset:], r.Cells)
	}

	out.SortByTime()
	return out
}
