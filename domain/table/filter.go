package table

import (
	"time"
)

// FilterRange keeps rows whose timestamp lies inside [from, to], both bounds
// inclusive and given in epoch milliseconds. A nil bound leaves that side
// open. Rows without a timestamp cannot satisfy a bound and are dropped
// whenever at least one bound is set. Returns the remaining row count.
func (t *MergedTable) FilterRange(from, to *int64) int {
	if from == nil && to == nil {
		return len(t.Rows)
	}

	var lower, upper time.Time
	if from != nil {
		lower = time.UnixMilli(*from).UTC()
	}
	if to != nil {
		upper = time.UnixMilli(*to).UTC()
	}

	kept := t.Rows[:0]
	for _, r := range t.Rows {
		if r.Time == nil {
			continue
		}
		if from != nil && r.Time.Before(lower) {
			continue
		}
		if to != nil && r.Time.After(upper) {
			continue
		}
		kept = append(kept, r)
	}
	t.Rows = kept
	return len(t.Rows)
}
