package temporal

import (
	"time"

	"sheetagg/domain/aggregation"
)

// ============================================================================
// RESAMPLING GRID
// ============================================================================
// Buckets are left-closed and labelled by their start. Fixed widths are
// anchored at midnight of the first observation's day, weeks start on
// Monday and months on the 1st, so "1h" buckets sit on the top of the hour
// and "1D" buckets on midnight.
// ============================================================================

// Grid is the ordered list of bucket starts covering an observation range
type Grid struct {
	Width  aggregation.BucketWidth
	Starts []time.Time
}

// NewGrid builds every bucket from the one holding first to the one holding
// last, inclusive. Empty buckets in between are part of the grid.
func NewGrid(width aggregation.BucketWidth, first, last time.Time) *Grid {
	first, last = first.UTC(), last.UTC()
	g := &Grid{Width: width}

	start := truncateToBucket(first, width)
	for current := start; !current.After(last); current = next(current, width) {
		g.Starts = append(g.Starts, current)
	}
	return g
}

// Len returns the number of buckets
func (g *Grid) Len() int { return len(g.Starts) }

// Index returns the bucket holding t, or -1 when t is outside the grid
func (g *Grid) Index(t time.Time) int {
	if len(g.Starts) == 0 {
		return -1
	}
	t = t.UTC()
	origin := g.Starts[0]
	if t.Before(origin) {
		return -1
	}

	var idx int
	if g.Width.Fixed() {
		idx = int(t.Sub(origin) / g.Width.Duration())
	} else {
		idx = monthsBetween(origin, t) / g.Width.N
	}
	if idx >= len(g.Starts) {
		return -1
	}
	return idx
}

// truncateToBucket returns the start of the first bucket for t
func truncateToBucket(t time.Time, width aggregation.BucketWidth) time.Time {
	midnight := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	switch width.Unit {
	case aggregation.UnitWeek:
		weekday := int(t.Weekday())
		if weekday == 0 {
			weekday = 7 // Sunday = 7
		}
		return midnight.AddDate(0, 0, -(weekday - 1))
	case aggregation.UnitMonth:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	default:
		d := width.Duration()
		return midnight.Add(t.Sub(midnight) / d * d)
	}
}

func next(t time.Time, width aggregation.BucketWidth) time.Time {
	if width.Unit == aggregation.UnitMonth {
		return t.AddDate(0, width.N, 0)
	}
	return t.Add(width.Duration())
}

func monthsBetween(from, to time.Time) int {
	return (to.Year()-from.Year())*12 + int(to.Month()) - int(from.Month())
}
