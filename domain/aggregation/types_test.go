package aggregation

import (
	"errors"
	"testing"
	"time"

	"sheetagg/domain/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBucketWidth(t *testing.T) {
	tests := []struct {
		token string
		want  BucketWidth
		dur   time.Duration
	}{
		{"1h", BucketWidth{1, UnitHour}, time.Hour},
		{"1H", BucketWidth{1, UnitHour}, time.Hour},
		{"30T", BucketWidth{30, UnitMinute}, 30 * time.Minute},
		{"15min", BucketWidth{15, UnitMinute}, 15 * time.Minute},
		{"1D", BucketWidth{1, UnitDay}, 24 * time.Hour},
		{"2d", BucketWidth{2, UnitDay}, 48 * time.Hour},
		{"W", BucketWidth{1, UnitWeek}, 7 * 24 * time.Hour},
		{"10s", BucketWidth{10, UnitSecond}, 10 * time.Second},
		{"500ms", BucketWidth{500, UnitMillisecond}, 500 * time.Millisecond},
		{"MS", BucketWidth{1, UnitMonth}, 0},
		{"3M", BucketWidth{3, UnitMonth}, 0},
	}

	for _, tc := range tests {
		got, err := ParseBucketWidth(tc.token)
		require.NoError(t, err, tc.token)
		assert.Equal(t, tc.want, got, tc.token)
		assert.Equal(t, tc.dur, got.Duration(), tc.token)
	}
}

func TestParseBucketWidth_Invalid(t *testing.T) {
	for _, token := range []string{"", "0h", "1 fortnight", "h1", "-1h"} {
		_, err := ParseBucketWidth(token)
		require.Error(t, err, token)
		assert.True(t, errors.Is(err, core.ErrInvalidBucketWidth), token)
	}
}

func TestNewSpec_DefaultsAndDedupe(t *testing.T) {
	spec, err := NewSpec("1h", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"mean"}, spec.Stats)
	assert.False(t, spec.Suffixed())

	spec, err = NewSpec("1h", []string{"max", "mean", "max"})
	require.NoError(t, err)
	assert.Equal(t, []string{"max", "mean"}, spec.Stats)
	assert.True(t, spec.Suffixed())
}

func TestSpec_UnknownTokensCountButProduceNothing(t *testing.T) {
	spec, err := NewSpec("1D", []string{"mean", "p95"})
	require.NoError(t, err)

	assert.Equal(t, []Statistic{StatMean}, spec.Statistics())
	assert.Equal(t, "A_temp_mean", spec.ColumnName("A_temp", StatMean))
}

func TestSpec_ColumnName(t *testing.T) {
	single, _ := NewSpec("1D", []string{"median"})
	assert.Equal(t, "A_temp", single.ColumnName("A_temp", StatMedian))

	multi, _ := NewSpec("1D", []string{"min", "mode"})
	assert.Equal(t, "A_temp_mode", multi.ColumnName("A_temp", StatMode))
	assert.Equal(t, "A_state_last", multi.ColumnName("A_state", StatLast))
}
