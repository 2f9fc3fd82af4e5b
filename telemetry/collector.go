// Package telemetry provides population statistics, CSV output and
// per-phase performance timing.
package telemetry

import (
	"github.com/pthm-cable/biome/config"
	"github.com/pthm-cable/biome/genetics"
	"github.com/pthm-cable/biome/world"
)

// StatsCollector records a Snapshot every interval sim-seconds into a
// bounded history. Snapshots are never taken more often than interval.
type StatsCollector struct {
	interval    float64
	historySize int

	simTime float64
	elapsed float64

	// Ring buffer of snapshots; head is the next write slot.
	history []Snapshot
	head    int
	count   int

	// Event counters since the last snapshot
	births int
	deaths int
	kills  int

	energies   []float64
	aggression []float64
}

// NewStatsCollector creates a collector from the telemetry config.
func NewStatsCollector(tc config.TelemetryConfig) *StatsCollector {
	size := tc.HistorySize
	if size < 1 {
		size = 1
	}
	return &StatsCollector{
		interval:    tc.StatsInterval,
		historySize: size,
		history:     make([]Snapshot, size),
	}
}

// RecordBirths counts newborns.
func (c *StatsCollector) RecordBirths(n int) { c.births += n }

// RecordKills counts combat kills.
func (c *StatsCollector) RecordKills(n int) { c.kills += n }

// RecordCleanup counts the agents removed by a world cleanup.
func (c *StatsCollector) RecordCleanup(r world.CleanupReport) {
	for _, n := range r.Deaths {
		c.deaths += n
	}
}

// Update advances sim time by dt and takes a snapshot once at least
// interval seconds have passed since the previous one.
func (c *StatsCollector) Update(w *world.World, dt float64, tick int32) (Snapshot, bool) {
	c.simTime += dt
	c.elapsed += dt
	if c.elapsed < c.interval {
		return Snapshot{}, false
	}
	c.elapsed = 0

	s := c.Capture(w, tick)
	s.Births, s.Deaths, s.Kills = c.births, c.deaths, c.kills
	c.births, c.deaths, c.kills = 0, 0, 0

	c.history[c.head] = s
	c.head = (c.head + 1) % c.historySize
	if c.count < c.historySize {
		c.count++
	}
	return s, true
}

// Capture computes aggregates over the living agents without recording
// them.
func (c *StatsCollector) Capture(w *world.World, tick int32) Snapshot {
	cfg := w.Config()
	s := Snapshot{
		Tick:          tick,
		SimTime:       c.simTime,
		Food:          w.FoodCount(),
		SpeciesCounts: make(map[int]int),
		SpeciesBySex:  make(map[int][2]int),
		TraitMeans:    make(map[string]float64, len(cfg.Derived.TraitNames)),
	}
	c.energies = c.energies[:0]
	c.aggression = c.aggression[:0]

	var hydration, age float64
	for _, e := range w.AgentList() {
		a := w.Agent(e)
		if !a.Vitals.Alive {
			continue
		}
		s.Population++
		sp := a.Her.Species
		s.SpeciesCounts[sp]++
		bySex := s.SpeciesBySex[sp]
		if a.Her.Sex == genetics.Female {
			s.Females++
			bySex[1]++
		} else {
			s.Males++
			bySex[0]++
		}
		s.SpeciesBySex[sp] = bySex

		if a.Drives.Attack > cfg.Combat.DriveThreshold {
			s.Attackers++
		}
		if a.Drives.Mate > cfg.Reproduction.DesireThreshold {
			s.Maters++
		}
		if a.Health.Infected {
			s.Infected++
		}
		if a.Her.Generation > s.MaxGeneration {
			s.MaxGeneration = a.Her.Generation
		}

		c.energies = append(c.energies, a.Vitals.Energy)
		c.aggression = append(c.aggression, a.Her.Phenotype.Get("aggression"))
		hydration += a.Vitals.Hydration
		age += a.Vitals.Age
		for _, t := range cfg.Derived.TraitNames {
			s.TraitMeans[t] += a.Her.Phenotype.Get(t)
		}
	}

	s.SpeciesCount = len(s.SpeciesCounts)
	if s.Population == 0 {
		return s
	}

	n := float64(s.Population)
	for t := range s.TraitMeans {
		s.TraitMeans[t] /= n
	}
	s.MeanEnergy, s.EnergyP10, s.EnergyP50, s.EnergyP90 = ComputeEnergyStats(c.energies)
	s.MeanHydration = hydration / n
	s.MeanAge = age / n
	s.GeneticDiversity = GeneticDiversity(c.aggression)
	s.MeanSpeed = s.TraitMeans["speed"]
	s.MeanSize = s.TraitMeans["size"]
	s.MeanAggression = s.TraitMeans["aggression"]
	return s
}

// Latest returns the most recent snapshot.
func (c *StatsCollector) Latest() (Snapshot, bool) {
	if c.count == 0 {
		return Snapshot{}, false
	}
	i := (c.head - 1 + c.historySize) % c.historySize
	return c.history[i], true
}

// History returns recorded snapshots, oldest first.
func (c *StatsCollector) History() []Snapshot {
	out := make([]Snapshot, 0, c.count)
	start := (c.head - c.count + c.historySize) % c.historySize
	for i := 0; i < c.count; i++ {
		out = append(out, c.history[(start+i)%c.historySize])
	}
	return out
}

// SimTime returns the accumulated simulated seconds.
func (c *StatsCollector) SimTime() float64 {
	return c.simTime
}
