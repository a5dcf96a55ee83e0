package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"sheetagg/domain/core"
	"sheetagg/domain/table"
	"sheetagg/internal"
)

const insertBatchSize = 500

const createBucketsTable = `
	CREATE TABLE IF NOT EXISTS aggregated_buckets (
		run_id      TEXT NOT NULL,
		bucket_at   TIMESTAMPTZ NOT NULL,
		column_pos  INTEGER NOT NULL,
		column_name TEXT NOT NULL,
		value_num   DOUBLE PRECISION,
		value_text  TEXT,
		PRIMARY KEY (run_id, bucket_at, column_pos)
	)`

// BucketRow is one cell of a result in long form. Two devices may share an
// output column name, so cells are keyed by column position.
type BucketRow struct {
	RunID      string          `db:"run_id"`
	BucketAt   time.Time       `db:"bucket_at"`
	ColumnPos  int             `db:"column_pos"`
	ColumnName string          `db:"column_name"`
	ValueNum   sql.NullFloat64 `db:"value_num"`
	ValueText  sql.NullString  `db:"value_text"`
}

// ResultRepository stores aggregated results in Postgres
type ResultRepository struct {
	db     *sqlx.DB
	logger *internal.Logger
}

// Open connects to Postgres using the lib/pq driver
func Open(ctx context.Context, dsn string) (*sqlx.DB, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	return db, nil
}

// NewResultRepository creates a result repository
func NewResultRepository(db *sqlx.DB, logger *internal.Logger) *ResultRepository {
	if logger == nil {
		logger = internal.Discard()
	}
	return &ResultRepository{db: db, logger: logger}
}

// Name identifies the sink in logs
func (r *ResultRepository) Name() string { return "postgres" }

// EnsureSchema creates the results table when missing
func (r *ResultRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createBucketsTable); err != nil {
		// two runs creating the table at once race on the catalog
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" { // unique_violation
			return nil
		}
		return fmt.Errorf("failed to create aggregated_buckets: %w", err)
	}
	return nil
}

// Write stores every cell of result under runID in one transaction
func (r *ResultRepository) Write(ctx context.Context, runID core.RunID, result *table.ResultTable) error {
	if err := r.EnsureSchema(ctx); err != nil {
		return err
	}

	rows := LongRows(runID, result)
	if len(rows) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `INSERT INTO aggregated_buckets (run_id, bucket_at, column_pos, column_name, value_num, value_text)
		VALUES (:run_id, :bucket_at, :column_pos, :column_name, :value_num, :value_text)`

	for start := 0; start < len(rows); start += insertBatchSize {
		end := start + insertBatchSize
		if end > len(rows) {
			end = len(rows)
		}
		if _, err := tx.NamedExecContext(ctx, query, rows[start:end]); err != nil {
			return fmt.Errorf("failed to insert buckets: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit buckets: %w", err)
	}
	r.logger.Info("Stored %d cells for run %s in postgres", len(rows), runID)
	return nil
}

// LongRows flattens a result into one row per bucket and column. Null
// cells are kept with both value columns NULL.
func LongRows(runID core.RunID, result *table.ResultTable) []BucketRow {
	rows := make([]BucketRow, 0, result.Len()*len(result.Columns))
	for b, bucket := range result.Buckets {
		for c, name := range result.Columns {
			row := BucketRow{RunID: runID.String(), BucketAt: bucket, ColumnPos: c, ColumnName: name}
			switch v := result.Rows[b][c]; v.Kind {
			case table.KindNumber:
				row.ValueNum = sql.NullFloat64{Float64: v.Num, Valid: true}
			case table.KindText:
				row.ValueText = sql.NullString{String: v.Str, Valid: true}
			}
			rows = append(rows, row)
		}
	}
	return rows
}
