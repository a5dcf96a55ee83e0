package app

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sheetagg/domain/aggregation"
	"sheetagg/domain/colindex"
	"sheetagg/domain/core"
	"sheetagg/domain/table"
	"sheetagg/internal"
)

func ts(s string) *time.Time {
	t, err := time.Parse("2006-01-02 15:04", s)
	if err != nil {
		panic(err)
	}
	return &t
}

func num(f float64) table.Value { return table.Number(f) }

// fixture builds a merged table and an index registering its columns in order
func fixture(names ...string) (*table.MergedTable, *colindex.Index) {
	index := colindex.New()
	for _, n := range names {
		index.Register(n)
	}
	return table.NewMergedTable(names), index
}

func mustSpec(t *testing.T, width string, stats ...string) aggregation.Spec {
	t.Helper()
	spec, err := aggregation.NewSpec(width, stats)
	require.NoError(t, err)
	return spec
}

func TestAggregate_TwoDevicesDailyMeanMax(t *testing.T) {
	merged, index := fixture("A_temp", "A_pressure", "B_temp")
	merged.AppendRow(ts("2024-01-01 00:00"), []table.Value{num(1), num(10), table.Null})
	merged.AppendRow(ts("2024-01-01 06:00"), []table.Value{table.Null, table.Null, num(10)})
	merged.AppendRow(ts("2024-01-01 12:00"), []table.Value{num(3), num(30), table.Null})
	merged.AppendRow(ts("2024-01-02 06:00"), []table.Value{num(5), num(50), table.Null})
	merged.AppendRow(ts("2024-01-03 00:00"), []table.Value{table.Null, table.Null, num(20)})
	merged.InferKinds()

	result, err := NewAggregator(nil).Aggregate(merged, index, nil, mustSpec(t, "1D", "mean", "max"))
	require.NoError(t, err)

	assert.Equal(t, []string{
		"Date Time",
		"A_temp_mean", "A_temp_max",
		"A_pressure_mean", "A_pressure_max",
		"B_temp_mean", "B_temp_max",
	}, result.Header())
	assert.Equal(t, []time.Time{*ts("2024-01-01 00:00"), *ts("2024-01-02 00:00"), *ts("2024-01-03 00:00")}, result.Buckets)

	assert.Equal(t, []table.Value{num(2), num(3), num(20), num(30), num(10), num(10)}, result.Rows[0])
	assert.Equal(t, []table.Value{num(5), num(5), num(50), num(50), table.Null, table.Null}, result.Rows[1])
	assert.Equal(t, []table.Value{table.Null, table.Null, table.Null, table.Null, num(20), num(20)}, result.Rows[2])
}

func TestAggregate_SingleStatisticKeepsNames(t *testing.T) {
	merged, index := fixture("A_temp", "A_state")
	merged.AppendRow(ts("2024-01-01 00:00"), []table.Value{num(1), table.Text("on")})
	merged.AppendRow(ts("2024-01-01 00:30"), []table.Value{num(4), table.Text("off")})
	merged.InferKinds()

	result, err := NewAggregator(nil).Aggregate(merged, index, nil, mustSpec(t, "1h", "median"))
	require.NoError(t, err)

	assert.Equal(t, []string{"A_temp", "A_state"}, result.Columns)
	assert.Equal(t, []bool{true, false}, result.Numeric)
	require.Equal(t, 1, result.Len())
	assert.Equal(t, []table.Value{num(2.5), table.Text("off")}, result.Rows[0])
}

func TestAggregate_TextColumnsTakeLastAndSuffix(t *testing.T) {
	merged, index := fixture("A_state", "A_temp")
	merged.AppendRow(ts("2024-01-01 00:00"), []table.Value{table.Text("on"), num(1)})
	merged.AppendRow(ts("2024-01-01 00:20"), []table.Value{table.Text("idle"), num(2)})
	merged.AppendRow(ts("2024-01-01 00:40"), []table.Value{table.Null, num(3)})
	merged.InferKinds()

	result, err := NewAggregator(nil).Aggregate(merged, index, nil, mustSpec(t, "1h", "min", "max"))
	require.NoError(t, err)

	assert.Equal(t, []string{"A_temp_min", "A_temp_max", "A_state_last"}, result.Columns)
	assert.Equal(t, []table.Value{num(1), num(3), table.Text("idle")}, result.Rows[0])
}

func TestAggregate_UnknownStatisticProducesNoColumn(t *testing.T) {
	merged, index := fixture("A_temp")
	merged.AppendRow(ts("2024-01-01 00:00"), []table.Value{num(1)})
	merged.InferKinds()

	result, err := NewAggregator(nil).Aggregate(merged, index, nil, mustSpec(t, "1h", "mean", "p95"))
	require.NoError(t, err)
	assert.Equal(t, []string{"A_temp_mean"}, result.Columns)
}

func TestAggregate_ModeTieTakesSmallest(t *testing.T) {
	merged, index := fixture("A_temp")
	for i, v := range []float64{5, 3, 5, 3, 9} {
		at := ts("2024-01-01 00:00").Add(time.Duration(i) * time.Minute)
		merged.AppendRow(&at, []table.Value{num(v)})
	}
	merged.InferKinds()

	result, err := NewAggregator(nil).Aggregate(merged, index, nil, mustSpec(t, "1h", "mode"))
	require.NoError(t, err)
	assert.Equal(t, num(3), result.Rows[0][0])
}

func TestAggregate_GridAlignsAndKeepsEmptyBuckets(t *testing.T) {
	merged, index := fixture("A_temp")
	merged.AppendRow(ts("2024-01-01 00:10"), []table.Value{num(1)})
	merged.AppendRow(ts("2024-01-01 01:40"), []table.Value{num(7)})
	merged.AppendRow(nil, []table.Value{num(100)})
	merged.InferKinds()

	result, err := NewAggregator(nil).Aggregate(merged, index, nil, mustSpec(t, "30T", "max"))
	require.NoError(t, err)

	require.Equal(t, 4, result.Len())
	assert.Equal(t, *ts("2024-01-01 00:00"), result.Buckets[0])
	assert.Equal(t, *ts("2024-01-01 01:30"), result.Buckets[3])
	assert.Equal(t, num(1), result.Rows[0][0])
	assert.True(t, result.Rows[1][0].IsNull())
	assert.True(t, result.Rows[2][0].IsNull())
	assert.Equal(t, num(7), result.Rows[3][0], "null-time row must not contribute")
}

func TestAggregate_RequestedColumns(t *testing.T) {
	merged, index := fixture("A_temp", "A_pressure", "B_temp")
	merged.AppendRow(ts("2024-01-01 00:00"), []table.Value{num(1), num(2), num(3)})
	merged.InferKinds()

	var logs bytes.Buffer
	agg := NewAggregator(internal.NewLoggerTo(&logs, internal.LogLevelWarn))
	result, err := agg.Aggregate(merged, index, []string{"Pressure", "humidity", "TEMP"}, mustSpec(t, "1D"))
	require.NoError(t, err)

	assert.Equal(t, []string{"A_pressure", "A_temp"}, result.Columns)
	assert.Contains(t, logs.String(), "Column not found in workbook: humidity")
}

func TestAggregate_NoRequestedColumnMatches(t *testing.T) {
	merged, index := fixture("A_temp")
	merged.AppendRow(ts("2024-01-01 00:00"), []table.Value{num(1)})
	merged.InferKinds()

	_, err := NewAggregator(nil).Aggregate(merged, index, []string{"humidity"}, mustSpec(t, "1D"))
	require.Error(t, err)
	assert.True(t, core.IsNoColumnsMatched(err))
	assert.Contains(t, err.Error(), "humidity")
}

func TestAggregate_EmptyTableKeepsColumns(t *testing.T) {
	merged, index := fixture("A_temp")
	merged.InferKinds()

	result, err := NewAggregator(nil).Aggregate(merged, index, nil, mustSpec(t, "1D", "min", "max"))
	require.NoError(t, err)
	assert.Equal(t, []string{"A_temp_min", "A_temp_max"}, result.Columns)
	assert.Equal(t, 0, result.Len())
}
