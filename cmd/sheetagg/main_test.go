package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sheetagg/domain/colindex"
	"sheetagg/internal"
	"sheetagg/internal/config"
	"sheetagg/internal/errors"
	"sheetagg/internal/testkit"
)

func testConfig(output string) *config.Config {
	return &config.Config{
		Output:   config.OutputConfig{File: output, PreviewRows: 5},
		Matching: config.MatchingConfig{Mode: colindex.MatchSubstring},
		Influx:   config.InfluxConfig{Bucket: "sheetagg"},
		LogLevel: "ERROR",
	}
}

func writeFixture(t *testing.T) string {
	day := func(d, h int) time.Time { return time.Date(2024, 1, d, h, 0, 0, 0, time.UTC) }
	return testkit.WriteWorkbook(t,
		testkit.Sheet("Input A_1", "Date Time", "temp", "pressure").
			Row(day(1, 0), 1.0, 10.0).
			Row(day(2, 0), 3.0, 30.0),
		testkit.Sheet("Input B_1", "Date Time", "temp").
			Row(day(1, 6), 5.0),
	)
}

func TestRootCmd_FlagsRunPipeline(t *testing.T) {
	input := writeFixture(t)
	output := filepath.Join(t.TempDir(), "out.csv")

	var stdout bytes.Buffer
	cmd := newRootCmd(testConfig("aggregated_output.csv"), internal.Discard(), strings.NewReader(""), &stdout)
	cmd.SetArgs([]string{
		"--input", input,
		"--group-by", "1D",
		"--stats", "mean,max",
		"--columns", "pressure",
		"--output", output,
		"--plot",
	})
	require.NoError(t, cmd.Execute())

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Equal(t,
		"Date Time,A_pressure_mean,A_pressure_max\n"+
			"2024-01-01 00:00:00,10.0,10.0\n"+
			"2024-01-02 00:00:00,30.0,30.0\n",
		string(data))
	assert.Contains(t, stdout.String(), "Aggregated data saved to "+output)

	_, err = os.Stat(filepath.Join(filepath.Dir(output), "out_chart.xlsx"))
	assert.NoError(t, err)
}

func TestRootCmd_SpaceSeparatedLists(t *testing.T) {
	input := writeFixture(t)
	output := filepath.Join(t.TempDir(), "out.csv")

	cmd := newRootCmd(testConfig("aggregated_output.csv"), internal.Discard(), strings.NewReader(""), &bytes.Buffer{})
	cmd.SetArgs([]string{
		"--input", input,
		"--group-by", "1D",
		"--stats", "mean", "max",
		"--columns", "pressure", "humidity",
		"--output", output,
	})
	require.NoError(t, cmd.Execute())

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "Date Time,A_pressure_mean,A_pressure_max\n"), string(data))
}

func TestRootCmd_LenientNumbers(t *testing.T) {
	input := testkit.WriteWorkbook(t,
		testkit.Sheet("Input A_1", "Date Time", "cost").
			Row(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), "$10.00").
			Row(time.Date(2024, 1, 1, 6, 0, 0, 0, time.UTC), "$20.00"),
	)
	output := filepath.Join(t.TempDir(), "out.csv")

	cmd := newRootCmd(testConfig(output), internal.Discard(), strings.NewReader(""), &bytes.Buffer{})
	cmd.SetArgs([]string{"--input", input, "--group-by", "1D", "--stats", "max", "--lenient-numbers"})
	require.NoError(t, cmd.Execute())

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Equal(t, "Date Time,A_cost\n2024-01-01 00:00:00,20.0\n", string(data))
}

func TestRootCmd_ZeroBoundsAreUnbounded(t *testing.T) {
	input := testkit.WriteWorkbook(t,
		testkit.Sheet("Input A_1", "Date Time", "temp").
			Row(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), 1.0).
			Row("not a date", 2.0).
			Row(time.Date(2024, 1, 1, 6, 0, 0, 0, time.UTC), 3.0),
	)
	runWith := func(from string) string {
		var logs bytes.Buffer
		logger := internal.NewLoggerTo(&logs, internal.LogLevelInfo)
		output := filepath.Join(t.TempDir(), "out.csv")
		cmd := newRootCmd(testConfig(output), logger, strings.NewReader(""), &bytes.Buffer{})
		cmd.SetArgs([]string{"--input", input, "--group-by", "1D", "--timefrom", from})
		require.NoError(t, cmd.Execute())
		return logs.String()
	}

	assert.Contains(t, runWith("0"), "Rows after time filter: 3")
	assert.Contains(t, runWith("1"), "Rows after time filter: 2")
}

func TestRootCmd_RejectsStrayArgument(t *testing.T) {
	cmd := newRootCmd(testConfig("out.csv"), internal.Discard(), strings.NewReader(""), &bytes.Buffer{})
	cmd.SetArgs([]string{"book.xlsx", "--group-by", "1h"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
	assert.Contains(t, err.Error(), "book.xlsx")
}

func TestFoldListArgs(t *testing.T) {
	got := foldListArgs([]string{
		"--input", "book.xlsx",
		"--stats", "mean", "max",
		"--columns=temp", "pressure",
		"--timefrom", "-5",
		"--plot",
	}, "stats", "columns")
	assert.Equal(t, []string{
		"--input", "book.xlsx",
		"--stats=mean,max",
		"--columns=temp,pressure",
		"--timefrom", "-5",
		"--plot",
	}, got)

	assert.Equal(t, []string{"--stats", "--plot"}, foldListArgs([]string{"--stats", "--plot"}, "stats"))
}

func TestRootCmd_MissingGroupBy(t *testing.T) {
	cmd := newRootCmd(testConfig("out.csv"), internal.Discard(), strings.NewReader(""), &bytes.Buffer{})
	cmd.SetArgs([]string{"--input", "book.xlsx"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
}

func TestRootCmd_NoColumnsMatched(t *testing.T) {
	input := writeFixture(t)
	output := filepath.Join(t.TempDir(), "out.csv")

	cmd := newRootCmd(testConfig(output), internal.Discard(), strings.NewReader(""), &bytes.Buffer{})
	cmd.SetArgs([]string{"--input", input, "--group-by", "1h", "--columns", "humidity"})

	err := errors.Classify(cmd.Execute())
	require.Error(t, err)
	assert.Equal(t, errors.CodeNoColumnsMatched, errors.GetCode(err))
	_, statErr := os.Stat(output)
	assert.True(t, os.IsNotExist(statErr))
}

func TestRootCmd_InteractiveFallback(t *testing.T) {
	input := writeFixture(t)
	output := filepath.Join(t.TempDir(), "out.csv")

	answers := strings.Join([]string{input, "1D", "", "temp", "", "", "n"}, "\n") + "\n"
	var stdout bytes.Buffer
	cmd := newRootCmd(testConfig(output), internal.Discard(), strings.NewReader(answers), &stdout)
	cmd.SetArgs([]string{})
	require.NoError(t, cmd.Execute())

	assert.Contains(t, stdout.String(), "=== Time-Series Aggregator Interactive Menu ===")
	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "Date Time,A_temp\n"))
}

func TestPromptParams(t *testing.T) {
	answers := "book.xlsx\n30T\nmin max\ntemp  pressure\n1704067200000\n\ny\n"
	p, err := promptParams(strings.NewReader(answers), &bytes.Buffer{})
	require.NoError(t, err)

	assert.Equal(t, "book.xlsx", p.Input)
	assert.Equal(t, "30T", p.GroupBy)
	assert.Equal(t, []string{"min", "max"}, p.Stats)
	assert.Equal(t, []string{"temp", "pressure"}, p.Columns)
	require.NotNil(t, p.TimeFrom)
	assert.Equal(t, int64(1704067200000), *p.TimeFrom)
	assert.Nil(t, p.TimeTo)
	assert.True(t, p.Plot)
}

func TestPromptParams_Defaults(t *testing.T) {
	p, err := promptParams(strings.NewReader("book.xlsx\n1h\n"), &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, []string{"mean"}, p.Stats)
	assert.Nil(t, p.Columns)
	assert.False(t, p.Plot)
}

func TestPromptParams_ZeroEpochIsUnbounded(t *testing.T) {
	p, err := promptParams(strings.NewReader("book.xlsx\n1h\n\n\n0\n0\n"), &bytes.Buffer{})
	require.NoError(t, err)
	assert.Nil(t, p.TimeFrom)
	assert.Nil(t, p.TimeTo)
}

func TestPromptParams_BadEpoch(t *testing.T) {
	_, err := promptParams(strings.NewReader("book.xlsx\n1h\n\n\nyesterday\n"), &bytes.Buffer{})
	require.Error(t, err)
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"mean", "max", "min"}, splitList([]string{"mean max", "min"}))
	assert.Nil(t, splitList(nil))
}
