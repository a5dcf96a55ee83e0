package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"sheetagg/adapters/csvsink"
	"sheetagg/adapters/excel"
	"sheetagg/adapters/influx"
	"sheetagg/adapters/postgres"
	"sheetagg/app"
	"sheetagg/domain/colindex"
	"sheetagg/domain/core"
	"sheetagg/internal"
	"sheetagg/internal/config"
	"sheetagg/internal/errors"
	"sheetagg/ports"
)

// params are the inputs of one run, from flags or the interactive prompt
type params struct {
	Input     string
	GroupBy   string
	Stats     []string
	Columns   []string
	TimeFrom  *int64
	TimeTo    *int64
	Plot      bool
	Output    string
	MatchMode string
	RunID     string
}

func main() {
	// .env is optional
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error [%s]: %v\n", errors.GetCode(err), err)
		os.Exit(1)
	}
	logger := internal.NewLogger(internal.ParseLogLevel(cfg.LogLevel))

	if err := newRootCmd(cfg, logger, os.Stdin, os.Stdout).Execute(); err != nil {
		err = errors.Classify(err)
		fmt.Fprintf(os.Stderr, "Error [%s]: %v\n", errors.GetCode(err), err)
		os.Exit(1)
	}
}

func newRootCmd(cfg *config.Config, logger *internal.Logger, stdin io.Reader, stdout io.Writer) *cobra.Command {
	var p params
	var timeFrom, timeTo int64

	cmd := &cobra.Command{
		Use:   "sheetagg",
		Short: "Merge a multi-sheet device workbook and aggregate it into time buckets",
		Long: `Merge every device sheet of a workbook on "Date Time", then resample the
merged readings into buckets and compute statistics per bucket.

Without any flags the parameters are asked for interactively.

Example:
  sheetagg --input plant.xlsx --group-by 1h --stats mean max --columns temp pressure`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		// list flags take every following bare token, so parsing happens in RunE
		DisableFlagParsing: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cmd.Flags().Parse(foldListArgs(args, "stats", "columns")); err != nil {
				return errors.InvalidInput(err.Error())
			}
			if help, _ := cmd.Flags().GetBool("help"); help {
				return cmd.Help()
			}
			if extra := cmd.Flags().Args(); len(extra) > 0 {
				return errors.InvalidInput(fmt.Sprintf("unexpected argument %q", extra[0]))
			}

			if cmd.Flags().NFlag() == 0 {
				prompted, err := promptParams(stdin, stdout)
				if err != nil {
					return err
				}
				p = *prompted
				p.Output = cfg.Output.File
				p.MatchMode = string(cfg.Matching.Mode)
			} else {
				p.TimeFrom = epochBound(timeFrom)
				p.TimeTo = epochBound(timeTo)
				p.Stats = splitList(p.Stats)
				p.Columns = splitList(p.Columns)
			}
			if err := applyParams(cfg, &p); err != nil {
				return err
			}
			return run(cmd.Context(), cfg, p, logger, stdout)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&p.Input, "input", "", "Input workbook path (.xlsx or .csv)")
	flags.StringVar(&p.GroupBy, "group-by", "", "Bucket width, e.g. 1h, 30T, 1D")
	flags.StringSliceVar(&p.Stats, "stats", []string{"mean"}, "Statistics to compute: min, max, mean, median, mode")
	flags.StringSliceVar(&p.Columns, "columns", nil, "Short column names to include (default: all)")
	flags.Int64Var(&timeFrom, "timefrom", 0, "Start time in epoch ms, inclusive (0: unbounded)")
	flags.Int64Var(&timeTo, "timeto", 0, "End time in epoch ms, inclusive (0: unbounded)")
	flags.BoolVar(&p.Plot, "plot", false, "Write a chart workbook next to the output")
	flags.StringVar(&p.Output, "output", cfg.Output.File, "Output CSV path")
	flags.StringVar(&p.MatchMode, "match-mode", string(cfg.Matching.Mode), "Column matching: substring or exact-first")
	flags.BoolVar(&cfg.Ingest.LenientNumbers, "lenient-numbers", cfg.Ingest.LenientNumbers, "Read currency, percent and grouped digits as numbers")
	flags.StringVar(&p.RunID, "run-id", "", "Tag stored results with this run ID (default: generated)")
	flags.StringVar(&cfg.Postgres.DSN, "postgres-dsn", cfg.Postgres.DSN, "Also store results in Postgres")
	flags.StringVar(&cfg.Influx.URL, "influx-url", cfg.Influx.URL, "Also write results to InfluxDB")

	return cmd
}

// applyParams checks required inputs and folds flag overrides into cfg
func applyParams(cfg *config.Config, p *params) error {
	if strings.TrimSpace(p.Input) == "" {
		return errors.InvalidInput("input path is required")
	}
	if strings.TrimSpace(p.GroupBy) == "" {
		return errors.InvalidInput("group-by interval is required")
	}
	mode, ok := colindex.ParseMatchMode(p.MatchMode)
	if !ok {
		return errors.InvalidInput(fmt.Sprintf("unknown match mode %q", p.MatchMode))
	}
	cfg.Matching.Mode = mode
	cfg.Output.File = p.Output
	return config.Validate(cfg)
}

func run(ctx context.Context, cfg *config.Config, p params, logger *internal.Logger, stdout io.Writer) error {
	var runID core.RunID
	if p.RunID != "" {
		id, err := core.ParseRunID(p.RunID)
		if err != nil {
			return errors.InvalidInput(err.Error())
		}
		runID = id
	}

	sinks := []ports.ResultSinkPort{csvsink.New(cfg.Output.File, cfg.Output.PreviewRows, stdout, logger)}

	if cfg.Postgres.DSN != "" {
		db, err := postgres.Open(ctx, cfg.Postgres.DSN)
		if err != nil {
			return errors.DatabaseError("postgres sink unavailable", err)
		}
		defer db.Close()
		sinks = append(sinks, postgres.NewResultRepository(db, logger))
	}

	if cfg.Influx.Enabled() {
		sink, err := influx.Connect(ctx, influx.Config{
			URL:    cfg.Influx.URL,
			Token:  cfg.Influx.Token,
			Org:    cfg.Influx.Org,
			Bucket: cfg.Influx.Bucket,
		}, logger)
		if err != nil {
			return errors.ExternalServiceError("influxdb", err)
		}
		defer sink.Close()
		sinks = append(sinks, sink)
	}

	excelCfg := excel.DefaultExcelConfig()
	excelCfg.CoercionConfig.LenientNumbers = cfg.Ingest.LenientNumbers
	loader := excel.NewSheetLoader(excelCfg, logger)
	plotter := excel.NewChartPlotter(excel.ChartPath(cfg.Output.File), p.Plot, logger)
	svc := app.NewAggregationService(loader, app.NewAggregator(logger), logger).
		WithSinks(sinks...).
		WithPlotter(plotter)

	res, err := svc.Run(ctx, app.AggregationRequest{
		InputPath: p.Input,
		GroupBy:   p.GroupBy,
		Stats:     p.Stats,
		Columns:   p.Columns,
		TimeFrom:  p.TimeFrom,
		TimeTo:    p.TimeTo,
		MatchMode: cfg.Matching.Mode,
		RunID:     runID,
	})
	if err != nil {
		return err
	}
	logger.Debug("run %s fingerprint %s: %d buckets in %dms",
		res.RunID, res.Manifest.Fingerprint.Fingerprint, res.Manifest.Buckets, res.RuntimeMs)
	return nil
}

// epochBound treats 0 as no bound, so "--timefrom 0" keeps rows without a
// timestamp just like leaving the flag out.
func epochBound(ms int64) *int64 {
	if ms == 0 {
		return nil
	}
	return &ms
}

// foldListArgs rewrites "--stats mean max" into "--stats=mean,max" for the
// named flags: every bare token after a list flag belongs to it.
func foldListArgs(args []string, lists ...string) []string {
	out := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		name, value, hasValue := strings.Cut(strings.TrimLeft(args[i], "-"), "=")
		if !strings.HasPrefix(args[i], "--") || !slices.Contains(lists, name) {
			out = append(out, args[i])
			continue
		}

		var values []string
		if hasValue {
			values = append(values, value)
		}
		for i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
			i++
			values = append(values, args[i])
		}
		if len(values) == 0 {
			out = append(out, args[i])
			continue
		}
		out = append(out, "--"+name+"="+strings.Join(values, ","))
	}
	return out
}

// splitList accepts both "--stats mean,max" and "--stats 'mean max'"
func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		out = append(out, strings.Fields(v)...)
	}
	return out
}
