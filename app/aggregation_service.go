package app

import (
	"context"
	"fmt"
	"time"

	"sheetagg/domain/aggregation"
	"sheetagg/domain/colindex"
	"sheetagg/domain/core"
	"sheetagg/domain/run"
	"sheetagg/domain/table"
	"sheetagg/internal"
	"sheetagg/ports"
)

// AggregationService runs the pipeline: load, filter, aggregate, then hand
// the result to the sinks and the plotter.
type AggregationService struct {
	loader     ports.LoaderPort
	aggregator *Aggregator
	sinks      []ports.ResultSinkPort
	plotter    ports.PlotterPort
	logger     *internal.Logger
}

// AggregationRequest defines the inputs of one run
type AggregationRequest struct {
	InputPath string
	GroupBy   string
	Stats     []string
	Columns   []string
	TimeFrom  *int64
	TimeTo    *int64
	MatchMode colindex.MatchMode
	RunID     core.RunID // optional, will be generated if empty
}

// AggregationResult is the output of one run
type AggregationResult struct {
	RunID     core.RunID         `json:"run_id"`
	Result    *table.ResultTable `json:"-"`
	Index     *colindex.Index    `json:"-"`
	Manifest  *run.RunManifest   `json:"manifest"`
	RuntimeMs int64              `json:"runtime_ms"`
}

// NewAggregationService creates the pipeline service
func NewAggregationService(loader ports.LoaderPort, aggregator *Aggregator, logger *internal.Logger) *AggregationService {
	if logger == nil {
		logger = internal.Discard()
	}
	return &AggregationService{
		loader:     loader,
		aggregator: aggregator,
		logger:     logger,
	}
}

// WithSinks adds result sinks, called in order after aggregation
func (s *AggregationService) WithSinks(sinks ...ports.ResultSinkPort) *AggregationService {
	s.sinks = append(s.sinks, sinks...)
	return s
}

// WithPlotter sets the plotter called after the sinks
func (s *AggregationService) WithPlotter(p ports.PlotterPort) *AggregationService {
	s.plotter = p
	return s
}

// Run executes the pipeline once. Any failure ends the run; nothing is retried.
func (s *AggregationService) Run(ctx context.Context, req AggregationRequest) (*AggregationResult, error) {
	startTime := time.Now()

	runID := req.RunID
	if runID == "" {
		runID = core.NewRunID()
	}

	spec, err := aggregation.NewSpec(req.GroupBy, req.Stats)
	if err != nil {
		return nil, err
	}

	mode := req.MatchMode
	if mode == "" {
		mode = colindex.MatchSubstring
	}
	index := colindex.New().WithMode(mode)
	manifest := run.NewRunManifest(runID, run.NewRunFingerprint(
		req.InputPath, spec.Width.String(), spec.Stats, req.Columns, req.TimeFrom, req.TimeTo, string(mode)))

	merged, err := s.loader.Load(req.InputPath, index)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", req.InputPath, err)
	}
	manifest.RowsLoaded = merged.Len()
	s.logger.Debug("[AggregationService] run %s loaded %d rows, %d columns", runID, manifest.RowsLoaded, len(merged.Columns))

	manifest.RowsAfterFilter = merged.FilterRange(req.TimeFrom, req.TimeTo)
	s.logger.Info("Rows after time filter: %d", manifest.RowsAfterFilter)

	result, err := s.aggregator.Aggregate(merged, index, req.Columns, spec)
	if err != nil {
		return nil, err
	}
	manifest.Buckets = result.Len()
	manifest.OutputColumns = result.Header()

	for _, sink := range s.sinks {
		if err := sink.Write(ctx, runID, result); err != nil {
			return nil, fmt.Errorf("sink %s failed: %w", sink.Name(), err)
		}
	}
	if s.plotter != nil {
		if err := s.plotter.Plot(result, index); err != nil {
			return nil, fmt.Errorf("plotting failed: %w", err)
		}
	}

	if err := manifest.Validate(); err != nil {
		return nil, err
	}
	return &AggregationResult{
		RunID:     runID,
		Result:    result,
		Index:     index,
		Manifest:  manifest,
		RuntimeMs: time.Since(startTime).Milliseconds(),
	}, nil
}
