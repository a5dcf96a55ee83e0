// Package influx writes aggregated results to InfluxDB as one point per bucket.
package influx

import (
	"context"
	"fmt"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"sheetagg/domain/core"
	"sheetagg/domain/table"
	"sheetagg/internal"
)

// Measurement is the measurement every bucket is written under
const Measurement = "aggregated"

// Config holds the InfluxDB connection settings
type Config struct {
	URL    string `json:"url"`
	Token  string `json:"-"`
	Org    string `json:"org"`
	Bucket string `json:"bucket"`
}

// Sink writes results through the blocking write API
type Sink struct {
	client influxdb2.Client
	org    string
	bucket string
	logger *internal.Logger
}

// Connect creates a client and checks the server health
func Connect(ctx context.Context, cfg Config, logger *internal.Logger) (*Sink, error) {
	if logger == nil {
		logger = internal.Discard()
	}
	client := influxdb2.NewClient(cfg.URL, cfg.Token)

	health, err := client.Health(ctx)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to InfluxDB: %w", err)
	}
	if health.Status != "pass" {
		client.Close()
		msg := ""
		if health.Message != nil {
			msg = *health.Message
		}
		return nil, fmt.Errorf("InfluxDB health check failed: %s", msg)
	}
	logger.Debug("[influx] connected to %s", cfg.URL)

	return &Sink{client: client, org: cfg.Org, bucket: cfg.Bucket, logger: logger}, nil
}

// Name identifies the sink in logs
func (s *Sink) Name() string { return "influx" }

// Write sends one point per bucket that has at least one numeric value
func (s *Sink) Write(ctx context.Context, runID core.RunID, result *table.ResultTable) error {
	points := Points(runID, result)
	if len(points) == 0 {
		s.logger.Warn("No numeric buckets to write to InfluxDB")
		return nil
	}

	writeAPI := s.client.WriteAPIBlocking(s.org, s.bucket)
	if err := writeAPI.WritePoint(ctx, points...); err != nil {
		return fmt.Errorf("failed to write %d points: %w", len(points), err)
	}
	s.logger.Info("Wrote %d points to InfluxDB bucket %s", len(points), s.bucket)
	return nil
}

// Close releases the client
func (s *Sink) Close() {
	s.client.Close()
}

// Points builds the points of a result. Text columns and null cells are
// left out; buckets without any numeric value produce no point.
func Points(runID core.RunID, result *table.ResultTable) []*write.Point {
	tags := map[string]string{"run_id": runID.String()}

	var points []*write.Point
	for b, bucket := range result.Buckets {
		fields := make(map[string]interface{})
		for c, name := range result.Columns {
			if v := result.Rows[b][c]; result.Numeric[c] && v.IsNumber() {
				fields[name] = v.Num
			}
		}
		if len(fields) == 0 {
			continue
		}
		points = append(points, influxdb2.NewPoint(Measurement, tags, fields, bucket))
	}
	return points
}
