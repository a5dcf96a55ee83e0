package ports

import (
	"context"

	"sheetagg/domain/colindex"
	"sheetagg/domain/core"
	"sheetagg/domain/table"
)

// ResultSinkPort persists an aggregated result
type ResultSinkPort interface {
	// Name identifies the sink in logs
	Name() string
	Write(ctx context.Context, runID core.RunID, result *table.ResultTable) error
}

// PlotterPort renders the numeric columns of a result
type PlotterPort interface {
	// Plot draws one series per numeric column; legends are looked up in index
	Plot(result *table.ResultTable, index *colindex.Index) error
}
