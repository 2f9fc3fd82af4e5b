package systems

import (
	"math"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/biome/world"
)

// TransmissionProbability is (1 - d/maxDist) * (1 - resistance). It is 0 at
// or beyond maxDist and 1 at distance 0 with no resistance.
func TransmissionProbability(dist, maxDist, resistance float64) float64 {
	if maxDist <= 0 || dist >= maxDist {
		return 0
	}
	return math.Max(0, 1-dist/maxDist) * (1 - clamp(resistance, 0, 1))
}

// DiseaseSystem spreads infections between nearby agents.
type DiseaseSystem struct {
	// Reusable buffers to avoid allocations
	sources []ecs.Entity
	nearby  []world.Neighbor
}

// NewDiseaseSystem creates a new disease system.
func NewDiseaseSystem() *DiseaseSystem {
	return &DiseaseSystem{
		sources: make([]ecs.Entity, 0, 64),
		nearby:  make([]world.Neighbor, 0, 32),
	}
}

// Update lets every agent infected at the start of the pass try to infect
// each living, uninfected neighbor. Agents infected during the pass do not
// transmit until the next tick. It returns the number of new infections.
func (s *DiseaseSystem) Update(w *world.World) int {
	cfg := w.Config()
	dc := cfg.Disease
	rng := w.Rand()

	s.sources = s.sources[:0]
	for _, e := range w.AgentList() {
		a := w.Agent(e)
		if a.Vitals.Alive && a.Health.Infected {
			s.sources = append(s.sources, e)
		}
	}

	infections := 0
	for _, e := range s.sources {
		src := w.Agent(e)
		disease := src.Health.Disease
		s.nearby = w.QueryAgents(s.nearby[:0], src.Pos.X, src.Pos.Y, dc.TransmissionDistance, e)
		for _, n := range s.nearby {
			target := w.Agent(n.E)
			if target.Health.Infected {
				continue
			}
			p := TransmissionProbability(n.Dist(), dc.TransmissionDistance, target.Health.ResistanceTo(disease))
			if rng.Float64() < p {
				duration := dc.MinDuration + rng.Float64()*(dc.MaxDuration-dc.MinDuration)
				target.Health.Infect(disease, duration)
				infections++
			}
		}
	}
	return infections
}

// UpdateInfections counts infection timers down. Recovered agents gain
// resistance to the disease they had. It returns the number of recoveries.
func UpdateInfections(w *world.World, dt float64) int {
	gain := w.Config().Disease.RecoveryImmunityGain
	recovered := 0
	for _, e := range w.AgentList() {
		a := w.Agent(e)
		h := a.Health
		if !a.Vitals.Alive || !h.Infected {
			continue
		}
		h.Timer -= dt
		if h.Timer > 0 {
			continue
		}
		if h.Resistance == nil {
			h.Resistance = make(map[string]float64)
		}
		h.Resistance[h.Disease] = math.Min(1, h.Resistance[h.Disease]+gain)
		h.Infected = false
		h.Disease = ""
		h.Timer = 0
		recovered++
	}
	return recovered
}
