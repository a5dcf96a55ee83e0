package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"sheetagg/domain/colindex"
	"sheetagg/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Output   OutputConfig
	Ingest   IngestConfig
	Matching MatchingConfig
	Postgres PostgresConfig
	Influx   InfluxConfig
	LogLevel string
}

// OutputConfig holds result file settings
type OutputConfig struct {
	File        string
	PreviewRows int
}

// IngestConfig holds workbook cell parsing settings
type IngestConfig struct {
	// LenientNumbers reads "$1,200.50", "(15)" and "12,5" as numbers
	LenientNumbers bool
}

// MatchingConfig holds column name resolution settings
type MatchingConfig struct {
	Mode colindex.MatchMode
}

// PostgresConfig enables the Postgres result sink when DSN is set
type PostgresConfig struct {
	DSN string
}

// InfluxConfig enables the InfluxDB result sink when URL is set
type InfluxConfig struct {
	URL    string
	Token  string
	Org    string
	Bucket string
}

// Enabled reports whether the InfluxDB sink is configured
func (c InfluxConfig) Enabled() bool { return c.URL != "" }

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Output:   *loadOutputConfig(),
		Ingest:   IngestConfig{LenientNumbers: getEnvBoolOrDefault("SHEETAGG_LENIENT_NUMBERS", false)},
		Postgres: PostgresConfig{DSN: getEnvOrDefault("SHEETAGG_POSTGRES_DSN", "")},
		Influx:   *loadInfluxConfig(),
		LogLevel: getEnvOrDefault("LOG_LEVEL", "INFO"),
	}

	matching, err := loadMatchingConfig()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load matching configuration")
	}
	config.Matching = *matching

	if err := Validate(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return config, nil
}

func loadOutputConfig() *OutputConfig {
	return &OutputConfig{
		File:        getEnvOrDefault("SHEETAGG_OUTPUT", "aggregated_output.csv"),
		PreviewRows: getEnvIntOrDefault("SHEETAGG_PREVIEW_ROWS", 5),
	}
}

func loadMatchingConfig() (*MatchingConfig, error) {
	raw := getEnvOrDefault("SHEETAGG_MATCH_MODE", string(colindex.MatchSubstring))
	mode, ok := colindex.ParseMatchMode(raw)
	if !ok {
		return nil, errors.ConfigInvalid(fmt.Sprintf("SHEETAGG_MATCH_MODE %q must be %s or %s",
			raw, colindex.MatchSubstring, colindex.MatchExactFirst))
	}
	return &MatchingConfig{Mode: mode}, nil
}

func loadInfluxConfig() *InfluxConfig {
	return &InfluxConfig{
		URL:    getEnvOrDefault("SHEETAGG_INFLUX_URL", ""),
		Token:  getEnvOrDefault("SHEETAGG_INFLUX_TOKEN", ""),
		Org:    getEnvOrDefault("SHEETAGG_INFLUX_ORG", ""),
		Bucket: getEnvOrDefault("SHEETAGG_INFLUX_BUCKET", "sheetagg"),
	}
}

// Validate checks cross-field rules; flags may change fields after Load,
// so the CLI calls it again before running.
func Validate(config *Config) error {
	if strings.TrimSpace(config.Output.File) == "" {
		return errors.ConfigInvalid("output file is required")
	}
	if config.Output.PreviewRows < 0 {
		return errors.ConfigInvalid("SHEETAGG_PREVIEW_ROWS must not be negative")
	}
	if config.Influx.Enabled() && config.Influx.Org == "" {
		return errors.ConfigInvalid("SHEETAGG_INFLUX_ORG is required when SHEETAGG_INFLUX_URL is set")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
