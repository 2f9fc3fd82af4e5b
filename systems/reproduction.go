package systems

import (
	"math"
	"math/rand"
	"sort"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/biome/components"
	"github.com/pthm-cable/biome/config"
	"github.com/pthm-cable/biome/genetics"
	"github.com/pthm-cable/biome/world"
)

// Birth links a newborn to its parents.
type Birth struct {
	Child      ecs.Entity
	ChildID    uint32
	ParentAID  uint32
	ParentBID  uint32
	Species    int
	NewSpecies bool
}

// ReproductionSystem pairs eligible agents and instantiates offspring.
type ReproductionSystem struct {
	Registry *genetics.SpeciesRegistry
	// SameSpecies classifies parents; defaults to the similarity threshold test.
	SameSpecies genetics.SpeciesPredicate
	// OffspringCount draws the litter size in [0, max]; defaults to uniform.
	OffspringCount func(rng *rand.Rand, max int) int

	nearby  []world.Neighbor
	mated   map[ecs.Entity]bool
	pending []pendingBirth
}

type pendingBirth struct {
	spec       world.AgentSpec
	parentA    uint32
	parentB    uint32
	newSpecies bool
}

// NewReproductionSystem creates a reproduction system whose first new
// species id is firstSpecies.
func NewReproductionSystem(cfg *config.Config, firstSpecies int) *ReproductionSystem {
	return &ReproductionSystem{
		Registry:    genetics.NewSpeciesRegistry(firstSpecies),
		SameSpecies: genetics.ThresholdPredicate(cfg.Species.SimilarityThreshold, cfg.Traits),
		OffspringCount: func(rng *rand.Rand, max int) int {
			if max <= 0 {
				return 0
			}
			return rng.Intn(max + 1)
		},
		mated: make(map[ecs.Entity]bool),
	}
}

// Eligible reports whether an agent may take part in a mating this tick.
func Eligible(cfg *config.Config, a world.Agent) bool {
	rc := cfg.Reproduction
	v := a.Vitals
	return v.Alive &&
		a.Drives.Mate > rc.DesireThreshold &&
		v.Age >= rc.MaturityAge &&
		v.ReproCooldown <= 0 &&
		v.Energy >= rc.MinEnergy &&
		v.Hydration >= rc.MinHydrationRatio*cfg.Agent.MaxHydration
}

// Update runs one mating pass. Each agent mates at most once per tick.
// Offspring are spawned after the pass and returned.
func (s *ReproductionSystem) Update(w *world.World, tick int32) []Birth {
	cfg := w.Config()
	rc := cfg.Reproduction
	rng := w.Rand()

	clear(s.mated)
	s.pending = s.pending[:0]

	for _, e := range w.AgentList() {
		if s.mated[e] {
			continue
		}
		a := w.Agent(e)
		if !Eligible(cfg, a) {
			continue
		}

		mate, ok := s.findMate(w, a)
		if !ok {
			continue
		}
		b := w.Agent(mate)
		s.mated[e] = true
		s.mated[mate] = true

		combined := (a.Drives.Mods.ReproductionModifier + b.Drives.Mods.ReproductionModifier) / 2
		if rng.Float64() >= combined {
			continue
		}

		count := s.OffspringCount(rng, rc.MaxSimultaneousOffspring)
		for i := 0; i < count; i++ {
			s.pending = append(s.pending, s.conceive(cfg, rng, a, b, i, tick))
		}

		cost := rc.Cost * float64(count)
		for _, p := range []world.Agent{a, b} {
			p.Vitals.Energy = math.Max(0, p.Vitals.Energy-cost)
			if p.Vitals.Energy <= 0 {
				p.Vitals.Kill(components.CauseStarvation)
			}
			p.Vitals.ReproCooldown = rc.Cooldown
			p.Life.Offspring += count
		}
		w.RecordMating(a.Pos.X, a.Pos.Y)
	}

	births := make([]Birth, 0, len(s.pending))
	for _, p := range s.pending {
		child := w.SpawnAgent(p.spec)
		births = append(births, Birth{
			Child:      child,
			ChildID:    w.Agent(child).Her.ID,
			ParentAID:  p.parentA,
			ParentBID:  p.parentB,
			Species:    p.spec.Species,
			NewSpecies: p.newSpecies,
		})
	}
	return births
}

// findMate returns the nearest compatible candidate. Candidates of another
// species pass with probability HYBRID_FERTILITY_RATE, rolled per candidate.
func (s *ReproductionSystem) findMate(w *world.World, a world.Agent) (ecs.Entity, bool) {
	cfg := w.Config()
	s.nearby = w.QueryAgents(s.nearby[:0], a.Pos.X, a.Pos.Y, cfg.Reproduction.MatingDistance, a.Entity)
	sort.SliceStable(s.nearby, func(i, j int) bool { return s.nearby[i].DistSq < s.nearby[j].DistSq })

	for _, n := range s.nearby {
		if s.mated[n.E] {
			continue
		}
		b := w.Agent(n.E)
		if b.Her.Sex == a.Her.Sex || !Eligible(cfg, b) {
			continue
		}
		if b.Her.Species != a.Her.Species && w.Rand().Float64() >= cfg.Reproduction.HybridFertilityRate {
			continue
		}
		return n.E, true
	}
	return ecs.Entity{}, false
}

// conceive builds the spec of the i-th offspring of a and b.
func (s *ReproductionSystem) conceive(cfg *config.Config, rng *rand.Rand, a, b world.Agent, i int, tick int32) pendingBirth {
	rc := cfg.Reproduction
	mc := cfg.Mutation

	genome := genetics.FromParents(a.Her.Genome, b.Her.Genome, rng, mc.CrossoverRate, rc.FemaleRatio)
	genetics.Mutate(genome, rng, genetics.MutationParams{
		Rate:            mc.Rate,
		PointStdDev:     mc.PointStdDev,
		LargeStdDev:     mc.LargeStdDev,
		DominanceStdDev: mc.DominanceStdDev,
		Scale:           1,
	})

	angle := rng.Float64() * 2 * math.Pi
	offset := rc.SpawnOffset * float64(i+1)

	score := (genetics.Similarity(genome, a.Her.Genome, cfg.Traits) +
		genetics.Similarity(genome, b.Her.Genome, cfg.Traits)) / 2
	species := a.Her.Species
	newSpecies := false
	if cfg.Species.DriftSpeciation && a.Her.Species == b.Her.Species &&
		s.SameSpecies(a.Her.Genome, b.Her.Genome) && score < cfg.Species.SimilarityThreshold {
		species = s.Registry.Next()
		newSpecies = true
	}

	resistance := make(map[string]float64, len(cfg.Disease.Names))
	for _, d := range cfg.Disease.Names {
		avg := (a.Health.ResistanceTo(d) + b.Health.ResistanceTo(d)) / 2
		noise := (rng.Float64()*2 - 1) * rc.ResistanceNoise
		resistance[d] = clamp(avg+noise, 0, 1)
	}

	return pendingBirth{
		spec: world.AgentSpec{
			X:          a.Pos.X + math.Cos(angle)*offset,
			Y:          a.Pos.Y + math.Sin(angle)*offset,
			Heading:    rng.Float64() * 2 * math.Pi,
			Genome:     genome,
			Species:    species,
			Generation: max(a.Her.Generation, b.Her.Generation) + 1,
			Energy:     rc.OffspringResourceRatio * cfg.Agent.MaxEnergy,
			Hydration:  rc.OffspringResourceRatio * cfg.Agent.MaxHydration,
			Similarity: score,
			Resistance: resistance,
			BirthTick:  tick,
		},
		parentA:    a.Her.ID,
		parentB:    b.Her.ID,
		newSpecies: newSpecies,
	}
}
