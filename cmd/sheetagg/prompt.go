package main

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"sheetagg/internal/errors"
)

// promptParams asks for every parameter in turn. Empty answers take the
// defaults: mean, all columns, no time bounds, no plot.
func promptParams(in io.Reader, out io.Writer) (*params, error) {
	scanner := bufio.NewScanner(in)
	ask := func(question string) string {
		fmt.Fprint(out, question)
		if !scanner.Scan() {
			return ""
		}
		return strings.TrimSpace(scanner.Text())
	}

	fmt.Fprintln(out, "=== Time-Series Aggregator Interactive Menu ===")
	p := &params{}
	p.Input = ask("Enter path to Excel file: ")
	p.GroupBy = ask("Enter grouping interval (e.g., 1h, 30T, 1D): ")

	p.Stats = strings.Fields(ask("Enter stats to compute (min, max, mean, median, mode) separated by space [default=mean]: "))
	if len(p.Stats) == 0 {
		p.Stats = []string{"mean"}
	}
	p.Columns = strings.Fields(ask("Enter columns to include (short names) separated by space [press Enter for all]: "))

	var err error
	if p.TimeFrom, err = parseEpoch(ask("Enter start time in epoch ms (optional): ")); err != nil {
		return nil, err
	}
	if p.TimeTo, err = parseEpoch(ask("Enter end time in epoch ms (optional): ")); err != nil {
		return nil, err
	}

	p.Plot = strings.ToLower(ask("Enable plotting? (y/n) [default=n]: ")) == "y"
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to read answers")
	}
	return p, nil
}

func parseEpoch(s string) (*int64, error) {
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil, errors.InvalidInput(fmt.Sprintf("%q is not an epoch millisecond value", s))
	}
	return epochBound(v), nil
}
