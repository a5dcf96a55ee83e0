package testkit

import (
	"fmt"
	"math"
	"math/rand"
	"time"
)

// ReadingGeneratorConfig configures synthetic device readings
type ReadingGeneratorConfig struct {
	Devices  []string      `json:"devices"`
	Start    time.Time     `json:"start"`
	Interval time.Duration `json:"interval"`
	Samples  int           `json:"samples"`
	Seed     int64         `json:"seed"`
}

// DefaultReadingConfig returns three devices sampled every ten minutes for a day
func DefaultReadingConfig() ReadingGeneratorConfig {
	return ReadingGeneratorConfig{
		Devices:  []string{"A", "B", "C"},
		Start:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Interval: 10 * time.Minute,
		Samples:  144,
		Seed:     42,
	}
}

// ReadingGenerator produces device sheets with temperature, pressure and
// status columns following a daily cycle plus noise.
type ReadingGenerator struct {
	config ReadingGeneratorConfig
	rng    *rand.Rand
}

// NewReadingGenerator creates a generator
func NewReadingGenerator(config ReadingGeneratorConfig) *ReadingGenerator {
	return &ReadingGenerator{
		config: config,
		rng:    rand.New(rand.NewSource(config.Seed)),
	}
}

// Sheets returns one fixture per device labelled "Input <device>_1"
func (g *ReadingGenerator) Sheets() []SheetFixture {
	sheets := make([]SheetFixture, 0, len(g.config.Devices))
	for d, device := range g.config.Devices {
		s := Sheet(fmt.Sprintf("Input %s_1", device), "Date Time", "Temp", "Pressure", "Status")
		offset := float64(d) * 2
		for i := 0; i < g.config.Samples; i++ {
			ts := g.config.Start.Add(time.Duration(i) * g.config.Interval)
			phase := 2 * math.Pi * float64(ts.Hour()*60+ts.Minute()) / (24 * 60)
			temp := math.Round((20+offset+5*math.Sin(phase)+g.rng.NormFloat64()*0.5)*10) / 10
			pressure := math.Round(1013 + g.rng.NormFloat64()*2)
			status := "ok"
			if temp > 24+offset {
				status = "warm"
			}
			s = s.Row(ts, temp, pressure, status)
		}
		sheets = append(sheets, s)
	}
	return sheets
}
