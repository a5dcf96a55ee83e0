// Package aggregation describes how a merged table is summarised: the bucket
// width and the statistics computed per bucket.
package aggregation

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"sheetagg/domain/core"
)

// Statistic names a per-bucket reduction
type Statistic string

const (
	StatMin    Statistic = "min"
	StatMax    Statistic = "max"
	StatMean   Statistic = "mean"
	StatMedian Statistic = "median"
	StatMode   Statistic = "mode"

	// StatLast is applied to text columns; it cannot be requested.
	StatLast Statistic = "last"
)

// DefaultStatistics is used when no statistic is requested
var DefaultStatistics = []string{string(StatMean)}

// Numeric reports whether s is one of the requestable numeric statistics
func (s Statistic) Numeric() bool {
	switch s {
	case StatMin, StatMax, StatMean, StatMedian, StatMode:
		return true
	}
	return false
}

// Unit is the calendar or clock unit of a bucket width
type Unit string

const (
	UnitMillisecond Unit = "ms"
	UnitSecond      Unit = "s"
	UnitMinute      Unit = "min"
	UnitHour        Unit = "h"
	UnitDay         Unit = "D"
	UnitWeek        Unit = "W"
	UnitMonth       Unit = "MS"
)

// BucketWidth is a bucket size such as 30min, 1h or 1D
type BucketWidth struct {
	N    int
	Unit Unit
}

var widthPattern = regexp.MustCompile(`^\s*(\d*)\s*([A-Za-z]+)\s*$`)

// case-sensitive aliases checked before the lowercase table
var monthAliases = map[string]Unit{
	"M":  UnitMonth,
	"MS": UnitMonth,
	"ME": UnitMonth,
}

var unitAliases = map[string]Unit{
	"ms":      UnitMillisecond,
	"l":       UnitMillisecond,
	"s":       UnitSecond,
	"sec":     UnitSecond,
	"min":     UnitMinute,
	"t":       UnitMinute,
	"h":       UnitHour,
	"hr":      UnitHour,
	"d":       UnitDay,
	"day":     UnitDay,
	"w":       UnitWeek,
	"week":    UnitWeek,
	"mon":     UnitMonth,
	"month":   UnitMonth,
	"minute":  UnitMinute,
	"hour":    UnitHour,
	"second":  UnitSecond,
	"seconds": UnitSecond,
}

// ParseBucketWidth parses tokens like "1h", "30T", "15min", "1D", "W" or "MS".
// A missing count means 1.
func ParseBucketWidth(token string) (BucketWidth, error) {
	m := widthPattern.FindStringSubmatch(token)
	if m == nil {
		return BucketWidth{}, core.NewBucketWidthError(token, "expected <count><unit>")
	}

	n := 1
	if m[1] != "" {
		v, err := strconv.Atoi(m[1])
		if err != nil {
			return BucketWidth{}, core.NewBucketWidthError(token, err.Error())
		}
		n = v
	}
	if n <= 0 {
		return BucketWidth{}, core.NewBucketWidthError(token, "count must be positive")
	}

	unit, ok := monthAliases[m[2]]
	if !ok {
		unit, ok = unitAliases[strings.ToLower(m[2])]
	}
	if !ok {
		return BucketWidth{}, core.NewBucketWidthError(token, fmt.Sprintf("unknown unit %q", m[2]))
	}
	return BucketWidth{N: n, Unit: unit}, nil
}

// Fixed reports whether every bucket has the same duration
func (w BucketWidth) Fixed() bool {
	return w.Unit != UnitMonth
}

// Duration returns the bucket length for fixed units and 0 for months
func (w BucketWidth) Duration() time.Duration {
	var base time.Duration
	switch w.Unit {
	case UnitMillisecond:
		base = time.Millisecond
	case UnitSecond:
		base = time.Second
	case UnitMinute:
		base = time.Minute
	case UnitHour:
		base = time.Hour
	case UnitDay:
		base = 24 * time.Hour
	case UnitWeek:
		base = 7 * 24 * time.Hour
	default:
		return 0
	}
	return time.Duration(w.N) * base
}

// String renders the width in canonical form, e.g. "30min"
func (w BucketWidth) String() string {
	return strconv.Itoa(w.N) + string(w.Unit)
}

// Spec is a bucket width plus the requested statistic tokens
type Spec struct {
	Width BucketWidth
	Stats []string
}

// NewSpec parses the width and keeps the requested statistic tokens in order
// with duplicates removed. Unknown tokens are kept: they produce no column
// but still count when deciding whether output names carry a suffix.
func NewSpec(width string, stats []string) (Spec, error) {
	w, err := ParseBucketWidth(width)
	if err != nil {
		return Spec{}, err
	}
	if len(stats) == 0 {
		stats = DefaultStatistics
	}

	seen := make(map[string]bool, len(stats))
	var uniq []string
	for _, s := range stats {
		s = strings.TrimSpace(s)
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		uniq = append(uniq, s)
	}
	if len(uniq) == 0 {
		uniq = DefaultStatistics
	}
	return Spec{Width: w, Stats: uniq}, nil
}

// Statistics returns the supported statistics in request order
func (s Spec) Statistics() []Statistic {
	var out []Statistic
	for _, tok := range s.Stats {
		if st := Statistic(tok); st.Numeric() {
			out = append(out, st)
		}
	}
	return out
}

// Suffixed reports whether output names carry a "_<stat>" suffix
func (s Spec) Suffixed() bool {
	return len(s.Stats) > 1
}

// ColumnName names the output column for column under stat
func (s Spec) ColumnName(column string, stat Statistic) string {
	if !s.Suffixed() {
		return column
	}
	return column + "_" + string(stat)
}
