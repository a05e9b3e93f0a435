package telemetry

import (
	"log/slog"
	"time"

	"gonum.org/v1/gonum/stat"
)

// Phase names for the simulation step, in tick order.
const (
	PhaseDrift        = "drift"
	PhaseProximity    = "proximity"
	PhaseBehavior     = "behavior"
	PhaseFeeding      = "feeding"
	PhaseChems        = "chems"
	PhaseCleanup      = "cleanup"
	PhaseSpawn        = "spawn"
	PhaseReproduction = "reproduction"
	PhaseLineage      = "lineage"
)

var phaseOrder = []string{
	PhaseDrift, PhaseProximity, PhaseBehavior, PhaseFeeding, PhaseChems,
	PhaseCleanup, PhaseSpawn, PhaseReproduction, PhaseLineage,
}

// PerfSample holds timing data for a single tick.
type PerfSample struct {
	TickDuration time.Duration
	Phases       map[string]time.Duration
}

// PerfCollector tracks performance metrics over a rolling window.
type PerfCollector struct {
	windowSize    int
	samples       []PerfSample
	writeIndex    int
	sampleCount   int
	currentPhases map[string]time.Duration
	tickStart     time.Time
	phaseStart    time.Time
	lastPhase     string
}

// NewPerfCollector creates a new performance collector.
// windowSize: number of ticks to aggregate over.
func NewPerfCollector(windowSize int) *PerfCollector {
	if windowSize < 1 {
		windowSize = 60
	}
	return &PerfCollector{
		windowSize:    windowSize,
		samples:       make([]PerfSample, windowSize),
		currentPhases: make(map[string]time.Duration),
	}
}

// StartTick begins timing a new simulation tick.
func (p *PerfCollector) StartTick() {
	p.tickStart = time.Now()
	p.currentPhases = make(map[string]time.Duration)
	p.lastPhase = ""
}

// StartPhase begins timing a specific phase, ending the previous one.
func (p *PerfCollector) StartPhase(phase string) {
	now := time.Now()
	if p.lastPhase != "" {
		p.currentPhases[p.lastPhase] += now.Sub(p.phaseStart)
	}
	p.phaseStart = now
	p.lastPhase = phase
}

// EndTick finishes timing the current tick and records the sample.
func (p *PerfCollector) EndTick() {
	now := time.Now()
	if p.lastPhase != "" {
		p.currentPhases[p.lastPhase] += now.Sub(p.phaseStart)
	}
	p.record(PerfSample{
		TickDuration: now.Sub(p.tickStart),
		Phases:       p.currentPhases,
	})
}

func (p *PerfCollector) record(s PerfSample) {
	p.samples[p.writeIndex] = s
	p.writeIndex = (p.writeIndex + 1) % p.windowSize
	if p.sampleCount < p.windowSize {
		p.sampleCount++
	}
}

// PerfStats holds aggregated performance statistics.
type PerfStats struct {
	Samples int

	AvgTickDuration    time.Duration
	StdDevTickDuration time.Duration
	MinTickDuration    time.Duration
	MaxTickDuration    time.Duration

	// Phase breakdown (average durations and share of tick time)
	PhaseAvg map[string]time.Duration
	PhasePct map[string]float64

	TicksPerSecond float64
}

// Stats computes aggregated statistics over the current window.
func (p *PerfCollector) Stats() PerfStats {
	if p.sampleCount == 0 {
		return PerfStats{
			PhaseAvg: make(map[string]time.Duration),
			PhasePct: make(map[string]float64),
		}
	}

	ticks := make([]float64, p.sampleCount)
	var minTick, maxTick time.Duration
	phaseSum := make(map[string]time.Duration)

	for i := 0; i < p.sampleCount; i++ {
		s := p.samples[i]
		ticks[i] = float64(s.TickDuration)
		if i == 0 || s.TickDuration < minTick {
			minTick = s.TickDuration
		}
		if s.TickDuration > maxTick {
			maxTick = s.TickDuration
		}
		for phase, dur := range s.Phases {
			phaseSum[phase] += dur
		}
	}

	mean, std := stat.MeanStdDev(ticks, nil)
	if p.sampleCount == 1 {
		std = 0 // MeanStdDev is NaN for a single sample
	}
	avgTick := time.Duration(mean)

	phaseAvg := make(map[string]time.Duration)
	phasePct := make(map[string]float64)
	for phase, sum := range phaseSum {
		phaseAvg[phase] = sum / time.Duration(p.sampleCount)
		if avgTick > 0 {
			phasePct[phase] = float64(phaseAvg[phase]) / float64(avgTick) * 100
		}
	}

	var ticksPerSec float64
	if avgTick > 0 {
		ticksPerSec = float64(time.Second) / float64(avgTick)
	}

	return PerfStats{
		Samples:            p.sampleCount,
		AvgTickDuration:    avgTick,
		StdDevTickDuration: time.Duration(std),
		MinTickDuration:    minTick,
		MaxTickDuration:    maxTick,
		PhaseAvg:           phaseAvg,
		PhasePct:           phasePct,
		TicksPerSecond:     ticksPerSec,
	}
}

// LogStats logs performance statistics.
func (s PerfStats) LogStats() {
	attrs := []any{
		"avg_tick_us", s.AvgTickDuration.Microseconds(),
		"std_tick_us", s.StdDevTickDuration.Microseconds(),
		"min_tick_us", s.MinTickDuration.Microseconds(),
		"max_tick_us", s.MaxTickDuration.Microseconds(),
		"ticks_per_sec", int(s.TicksPerSecond),
	}

	for _, phase := range phaseOrder {
		if pct, ok := s.PhasePct[phase]; ok && pct > 0.1 {
			attrs = append(attrs, phase+"_pct", float64(int(pct*10))/10)
		}
	}

	slog.Info("perf", attrs...)
}

// PerfStatsCSV is a flat struct for CSV export of performance stats.
type PerfStatsCSV struct {
	Tick            int64   `csv:"tick"`
	AvgTickUS       int64   `csv:"avg_tick_us"`
	StdTickUS       int64   `csv:"std_tick_us"`
	MinTickUS       int64   `csv:"min_tick_us"`
	MaxTickUS       int64   `csv:"max_tick_us"`
	TicksPerSec     float64 `csv:"ticks_per_sec"`
	DriftPct        float64 `csv:"drift_pct"`
	ProximityPct    float64 `csv:"proximity_pct"`
	BehaviorPct     float64 `csv:"behavior_pct"`
	FeedingPct      float64 `csv:"feeding_pct"`
	ChemsPct        float64 `csv:"chems_pct"`
	CleanupPct      float64 `csv:"cleanup_pct"`
	SpawnPct        float64 `csv:"spawn_pct"`
	ReproductionPct float64 `csv:"reproduction_pct"`
	LineagePct      float64 `csv:"lineage_pct"`
}

// ToCSV converts PerfStats to a flat CSV-friendly struct.
func (s PerfStats) ToCSV(tick int64) PerfStatsCSV {
	return PerfStatsCSV{
		Tick:            tick,
		AvgTickUS:       s.AvgTickDuration.Microseconds(),
		StdTickUS:       s.StdDevTickDuration.Microseconds(),
		MinTickUS:       s.MinTickDuration.Microseconds(),
		MaxTickUS:       s.MaxTickDuration.Microseconds(),
		TicksPerSec:     s.TicksPerSecond,
		DriftPct:        s.PhasePct[PhaseDrift],
		ProximityPct:    s.PhasePct[PhaseProximity],
		BehaviorPct:     s.PhasePct[PhaseBehavior],
		FeedingPct:      s.PhasePct[PhaseFeeding],
		ChemsPct:        s.PhasePct[PhaseChems],
		CleanupPct:      s.PhasePct[PhaseCleanup],
		SpawnPct:        s.PhasePct[PhaseSpawn],
		ReproductionPct: s.PhasePct[PhaseReproduction],
		LineagePct:      s.PhasePct[PhaseLineage],
	}
}
