package systems

import (
	"github.com/pthm-cable/biome/genetics"
	"github.com/pthm-cable/biome/world"
)

// SomaticSystem applies low-rate mutations to living genomes.
type SomaticSystem struct {
	// OnGenomeChanged runs after an agent's phenotype was recomputed.
	// The controller uses it to rebuild the agent's behaviour.
	OnGenomeChanged func(a world.Agent)
}

// Update mutates each gene with probability SOMATIC_MUTATION_RATE*dt at
// half effect. It returns the number of agents that changed.
func (s *SomaticSystem) Update(w *world.World, dt float64) int {
	cfg := w.Config()
	mc := cfg.Mutation
	params := genetics.MutationParams{
		Rate:            mc.SomaticRate * dt,
		PointStdDev:     mc.PointStdDev,
		LargeStdDev:     mc.LargeStdDev,
		DominanceStdDev: mc.DominanceStdDev,
		Scale:           mc.SomaticScale,
	}
	if params.Rate <= 0 {
		return 0
	}

	changed := 0
	for _, e := range w.AgentList() {
		a := w.Agent(e)
		if !a.Vitals.Alive {
			continue
		}
		n := genetics.Mutate(a.Her.Genome, w.Rand(), params)
		if n == 0 {
			continue
		}
		a.Her.Phenotype = genetics.ComputePhenotype(a.Her.Genome, cfg.Traits)
		a.Life.Mutations += n
		a.Vitals.SomaticTimer = 0
		if s.OnGenomeChanged != nil {
			s.OnGenomeChanged(a)
		}
		changed++
	}
	return changed
}
