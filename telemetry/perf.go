package telemetry

import (
	"log/slog"
	"time"
)

// Phase identifies one step of the simulation tick.
type Phase uint8

// Tick phases in execution order.
const (
	PhaseGrids Phase = iota
	PhaseMovement
	PhaseCombat
	PhaseFeeding
	PhaseHydration
	PhaseEnergy
	PhaseReproduction
	PhaseAging
	PhaseSomatic
	PhaseInfection
	PhaseExposure
	PhaseDisease
	PhaseEvents
	PhaseCleanup
	PhaseFood
	PhaseStats
	NumPhases
)

var phaseNames = [NumPhases]string{
	"grids", "movement", "combat", "feeding", "hydration", "energy",
	"reproduction", "aging", "somatic", "infection", "exposure", "disease",
	"events", "cleanup", "food", "stats",
}

func (p Phase) String() string {
	if p < NumPhases {
		return phaseNames[p]
	}
	return "unknown"
}

type phaseTimes [NumPhases]time.Duration

type perfSample struct {
	tick   time.Duration
	phases phaseTimes
}

// PerfCollector times tick phases over a rolling window of ticks.
// Nothing is allocated per tick.
type PerfCollector struct {
	samples []perfSample
	next    int
	filled  int

	current    perfSample
	tickStart  time.Time
	phaseStart time.Time
	running    Phase
	inPhase    bool
}

// NewPerfCollector keeps the last window ticks (60 if window < 1).
func NewPerfCollector(window int) *PerfCollector {
	if window < 1 {
		window = 60
	}
	return &PerfCollector{samples: make([]perfSample, window)}
}

// StartTick begins timing a tick.
func (p *PerfCollector) StartTick() {
	p.tickStart = time.Now()
	p.current = perfSample{}
	p.inPhase = false
}

// StartPhase closes the running phase and opens ph.
func (p *PerfCollector) StartPhase(ph Phase) {
	now := time.Now()
	p.closePhase(now)
	if ph >= NumPhases {
		return
	}
	p.phaseStart = now
	p.running = ph
	p.inPhase = true
}

func (p *PerfCollector) closePhase(now time.Time) {
	if p.inPhase {
		p.current.phases[p.running] += now.Sub(p.phaseStart)
		p.inPhase = false
	}
}

// EndTick closes the running phase and stores the tick in the window.
func (p *PerfCollector) EndTick() {
	now := time.Now()
	p.closePhase(now)
	p.current.tick = now.Sub(p.tickStart)

	p.samples[p.next] = p.current
	p.next = (p.next + 1) % len(p.samples)
	if p.filled < len(p.samples) {
		p.filled++
	}
}

// PerfStats aggregates the window.
type PerfStats struct {
	AvgTick, MinTick, MaxTick time.Duration
	TicksPerSecond            float64

	PhaseAvg   [NumPhases]time.Duration
	PhaseShare [NumPhases]float64 // percent of the average tick
}

// Stats aggregates the samples currently in the window.
func (p *PerfCollector) Stats() PerfStats {
	var s PerfStats
	if p.filled == 0 {
		return s
	}

	var total time.Duration
	var phaseSum phaseTimes
	for i, smp := range p.samples[:p.filled] {
		total += smp.tick
		if i == 0 || smp.tick < s.MinTick {
			s.MinTick = smp.tick
		}
		s.MaxTick = max(s.MaxTick, smp.tick)
		for ph, d := range smp.phases {
			phaseSum[ph] += d
		}
	}

	n := time.Duration(p.filled)
	s.AvgTick = total / n
	for ph := range phaseSum {
		s.PhaseAvg[ph] = phaseSum[ph] / n
		if s.AvgTick > 0 {
			s.PhaseShare[ph] = float64(s.PhaseAvg[ph]) / float64(s.AvgTick) * 100
		}
	}
	if s.AvgTick > 0 {
		s.TicksPerSecond = float64(time.Second) / float64(s.AvgTick)
	}
	return s
}

// Slowest returns the phase with the largest average time.
func (s PerfStats) Slowest() Phase {
	slowest := PhaseGrids
	for ph := Phase(1); ph < NumPhases; ph++ {
		if s.PhaseAvg[ph] > s.PhaseAvg[slowest] {
			slowest = ph
		}
	}
	return slowest
}

// LogValue implements slog.LogValuer. Phases under 0.1% are left out.
func (s PerfStats) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int64("avg_tick_us", s.AvgTick.Microseconds()),
		slog.Int64("max_tick_us", s.MaxTick.Microseconds()),
		slog.Int("ticks_per_sec", int(s.TicksPerSecond)),
		slog.String("slowest", s.Slowest().String()),
	}
	for ph := Phase(0); ph < NumPhases; ph++ {
		if share := s.PhaseShare[ph]; share > 0.1 {
			attrs = append(attrs, slog.Float64(ph.String()+"_pct", float64(int(share*10))/10))
		}
	}
	return slog.GroupValue(attrs...)
}

// LogStats writes the aggregate as one log line.
func (s PerfStats) LogStats() {
	slog.Info("perf", "stats", s)
}

// PerfStatsCSV is one perf.csv row.
type PerfStatsCSV struct {
	Tick            int32   `csv:"tick"`
	AvgTickUS       int64   `csv:"avg_tick_us"`
	MinTickUS       int64   `csv:"min_tick_us"`
	MaxTickUS       int64   `csv:"max_tick_us"`
	TicksPerSec     float64 `csv:"ticks_per_sec"`
	Slowest         string  `csv:"slowest"`
	GridsPct        float64 `csv:"grids_pct"`
	MovementPct     float64 `csv:"movement_pct"`
	CombatPct       float64 `csv:"combat_pct"`
	FeedingPct      float64 `csv:"feeding_pct"`
	HydrationPct    float64 `csv:"hydration_pct"`
	EnergyPct       float64 `csv:"energy_pct"`
	ReproductionPct float64 `csv:"reproduction_pct"`
	AgingPct        float64 `csv:"aging_pct"`
	SomaticPct      float64 `csv:"somatic_pct"`
	InfectionPct    float64 `csv:"infection_pct"`
	ExposurePct     float64 `csv:"exposure_pct"`
	DiseasePct      float64 `csv:"disease_pct"`
	EventsPct       float64 `csv:"events_pct"`
	CleanupPct      float64 `csv:"cleanup_pct"`
	FoodPct         float64 `csv:"food_pct"`
	StatsPct        float64 `csv:"stats_pct"`
}

// ToCSV flattens the aggregate into a row stamped with tick.
func (s PerfStats) ToCSV(tick int32) PerfStatsCSV {
	sh := s.PhaseShare
	return PerfStatsCSV{
		Tick:            tick,
		AvgTickUS:       s.AvgTick.Microseconds(),
		MinTickUS:       s.MinTick.Microseconds(),
		MaxTickUS:       s.MaxTick.Microseconds(),
		TicksPerSec:     s.TicksPerSecond,
		Slowest:         s.Slowest().String(),
		GridsPct:        sh[PhaseGrids],
		MovementPct:     sh[PhaseMovement],
		CombatPct:       sh[PhaseCombat],
		FeedingPct:      sh[PhaseFeeding],
		HydrationPct:    sh[PhaseHydration],
		EnergyPct:       sh[PhaseEnergy],
		ReproductionPct: sh[PhaseReproduction],
		AgingPct:        sh[PhaseAging],
		SomaticPct:      sh[PhaseSomatic],
		InfectionPct:    sh[PhaseInfection],
		ExposurePct:     sh[PhaseExposure],
		DiseasePct:      sh[PhaseDisease],
		EventsPct:       sh[PhaseEvents],
		CleanupPct:      sh[PhaseCleanup],
		FoodPct:         sh[PhaseFood],
		StatsPct:        sh[PhaseStats],
	}
}
