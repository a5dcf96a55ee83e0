package core

import (
	"time"
)

// Timestamp represents a point in time; all pipeline times are UTC
type Timestamp time.Time

// Now returns the current timestamp
func Now() Timestamp {
	return Timestamp(time.Now().UTC())
}

// FromEpochMillis converts epoch milliseconds to a UTC timestamp
func FromEpochMillis(ms int64) Timestamp {
	return Timestamp(time.UnixMilli(ms).UTC())
}

// Time returns the underlying time.Time
func (t Timestamp) Time() time.Time {
	return time.Time(t)
}

// String renders the timestamp the way result files print bucket labels
func (t Timestamp) String() string {
	return time.Time(t).Format(DateTimeLayout)
}

// DateTimeLayout is the layout used for "Date Time" values in output files
const DateTimeLayout = "2006-01-02 15:04:05"

// JSON marshaling for Timestamp
func (t Timestamp) MarshalJSON() ([]byte, error) {
	return time.Time(t).MarshalJSON()
}
