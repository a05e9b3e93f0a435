package telemetry

import (
	"fmt"
	"log/slog"

	"github.com/pthm-cable/blobs/genome"
)

// Metric selects how lineage records are ranked.
type Metric uint8

const (
	ByGeneration Metric = iota
	ByAge
)

func (m Metric) String() string {
	switch m {
	case ByGeneration:
		return "generation"
	case ByAge:
		return "age"
	}
	return fmt.Sprintf("metric(%d)", uint8(m))
}

// ParseMetric maps a config name to a Metric.
func ParseMetric(s string) (Metric, error) {
	switch s {
	case "", "generation":
		return ByGeneration, nil
	case "age":
		return ByAge, nil
	}
	return 0, fmt.Errorf("telemetry: unknown lineage metric %q", s)
}

// LineageRecord describes one blob at the moment it became the best seen.
type LineageRecord struct {
	Tick       int64
	BlobID     uint32
	Generation uint16
	Age        float32
	Energy     float32
	Genome     genome.Genome
}

// LineageCSV is a flat struct for CSV export of lineage records.
type LineageCSV struct {
	Tick       int64   `csv:"tick"`
	BlobID     uint32  `csv:"blob_id"`
	Generation uint16  `csv:"generation"`
	Age        float32 `csv:"age"`
	Energy     float32 `csv:"energy"`
	Genome     string  `csv:"genome"`
}

// ToCSV converts the record to a CSV row with the genome as a decimal integer.
func (r LineageRecord) ToCSV() LineageCSV {
	return LineageCSV{
		Tick:       r.Tick,
		BlobID:     r.BlobID,
		Generation: r.Generation,
		Age:        r.Age,
		Energy:     r.Energy,
		Genome:     r.Genome.String(),
	}
}

// Lineage tracks the single most advanced blob observed so far.
// The record is only reported; it never feeds back into the simulation.
type Lineage struct {
	metric Metric
	best   LineageRecord
	seen   bool
}

// NewLineage creates an empty tracker ranking by metric.
func NewLineage(metric Metric) *Lineage {
	return &Lineage{metric: metric}
}


// Best returns the current record, or false if nothing was observed yet.
func (l *Lineage) Best() (LineageRecord, bool) {
	return l.best, l.seen
}

// Consider offers a candidate. It returns true and logs the record when the
// candidate strictly beats the current best. The empty tracker starts from a
// zero record, so a generation-zero blob never qualifies by generation.
func (l *Lineage) Consider(r LineageRecord) bool {
	if !l.better(r) {
		return false
	}
	l.best = r
	l.seen = true

	slog.Info("new best lineage",
		"metric", l.metric.String(),
		"tick", r.Tick,
		"blob_id", r.BlobID,
		"generation", r.Generation,
		"age", r.Age,
		"genome", r.Genome.String(),
	)
	return true
}

func (l *Lineage) better(r LineageRecord) bool {
	if l.metric == ByAge {
		return r.Age > l.best.Age
	}
	return r.Generation > l.best.Generation
}
