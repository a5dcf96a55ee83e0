// Package summary holds the per-bucket reductions applied to numeric columns.
package summary

import (
	"sort"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"

	"sheetagg/domain/aggregation"
)

// Reducer collapses the non-null values of one bucket into one number.
// ok is false when the bucket holds no values.
type Reducer interface {
	Name() aggregation.Statistic
	Reduce(values []float64) (result float64, ok bool)
}

type reducerFunc struct {
	name aggregation.Statistic
	fn   func([]float64) (float64, error)
}

func (r reducerFunc) Name() aggregation.Statistic { return r.name }

func (r reducerFunc) Reduce(values []float64) (float64, bool) {
	if len(values) == 0 {
		return 0, false
	}
	v, err := r.fn(values)
	if err != nil {
		return 0, false
	}
	return v, true
}

var reducers = map[aggregation.Statistic]Reducer{
	aggregation.StatMin: reducerFunc{aggregation.StatMin, func(v []float64) (float64, error) {
		return stats.Min(v)
	}},
	aggregation.StatMax: reducerFunc{aggregation.StatMax, func(v []float64) (float64, error) {
		return stats.Max(v)
	}},
	aggregation.StatMean: reducerFunc{aggregation.StatMean, func(v []float64) (float64, error) {
		return stat.Mean(v, nil), nil
	}},
	aggregation.StatMedian: reducerFunc{aggregation.StatMedian, func(v []float64) (float64, error) {
		return stats.Median(v)
	}},
	aggregation.StatMode: reducerFunc{aggregation.StatMode, func(v []float64) (float64, error) {
		return Mode(v), nil
	}},
}

// For returns the reducer for a statistic, or false when unsupported
func For(s aggregation.Statistic) (Reducer, bool) {
	r, ok := reducers[s]
	return r, ok
}

// Mode returns the most frequent value; ties go to the smallest value.
// Callers must pass at least one value.
func Mode(values []float64) float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	best, bestCount := sorted[0], 0
	for i := 0; i < len(sorted); {
		j := i
		for j < len(sorted) && sorted[j] == sorted[i] {
			j++
		}
		// strictly greater keeps the earlier (smaller) value on ties
		if j-i > bestCount {
			best, bestCount = sorted[i], j-i
		}
		i = j
	}
	return best
}
