package game

import (
	"math"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/biome/genetics"
	"github.com/pthm-cable/biome/systems"
	"github.com/pthm-cable/biome/world"
)

// founderSpread is the per-allele jitter between founders of one species,
// as a fraction of the trait span.
const founderSpread = 0.03

// spawnAttempts bounds the search for a spawn point outside rock.
const spawnAttempts = 10

// spawnInitialPopulation creates INITIAL_AGENTS founders. Species 1..N each
// share a template genome; founders alternate sex.
func (g *Game) spawnInitialPopulation() {
	cfg := g.cfg
	n := cfg.World.InitialAgents
	species := cfg.World.FounderSpecies

	templates := make([]*genetics.Genome, species)
	for i := range templates {
		templates[i] = genetics.NewRandomGenome(g.rng, genetics.Male, cfg.Traits)
	}

	spawned := make([]ecs.Entity, 0, n)
	for i := 0; i < n; i++ {
		sp := i % species
		sex := genetics.Sex(i % 2)
		x, y := g.spawnPoint()
		resistance := make(map[string]float64, len(cfg.Disease.Names))
		for _, d := range cfg.Disease.Names {
			resistance[d] = g.rng.Float64() * cfg.Disease.InitialResistanceMax
		}

		spawned = append(spawned, g.world.SpawnAgent(world.AgentSpec{
			X:          x,
			Y:          y,
			Heading:    g.rng.Float64() * 2 * math.Pi,
			Genome:     templates[sp].Variant(g.rng, sex, founderSpread, cfg.Traits),
			Species:    sp + 1,
			Energy:     cfg.Agent.InitialEnergyRatio * cfg.Agent.MaxEnergy,
			Hydration:  cfg.Agent.InitialEnergyRatio * cfg.Agent.MaxHydration,
			Similarity: 1,
			Resistance: resistance,
			BirthTick:  g.tick,
		}))
	}
	// Brains attach after all spawns; spawning can move component storage.
	for _, e := range spawned {
		g.controller.Attach(g.world.Agent(e))
	}
}

// spawnPoint returns a random position, retrying a few times to avoid rock.
func (g *Game) spawnPoint() (float64, float64) {
	w, h := g.world.Size()
	var x, y float64
	for i := 0; i < spawnAttempts; i++ {
		x, y = g.rng.Float64()*w, g.rng.Float64()*h
		if !g.world.InRock(x, y) {
			break
		}
	}
	return x, y
}

// attachBrains gives every newborn a mutated copy of parent A's brain.
func (g *Game) attachBrains(births []systems.Birth) {
	for _, b := range births {
		g.controller.Inherit(g.world.Agent(b.Child), b.ParentAID)
	}
}

// cleanupDead offers dead agents to the hall of fame, removes them and
// eaten food, drops their brains and feeds the death counts to telemetry.
func (g *Game) cleanupDead() {
	for _, e := range g.world.AgentList() {
		if !g.world.IsAlive(e) {
			g.hallOfFame.Consider(g.world.Agent(e))
		}
	}
	report := g.world.Cleanup()
	g.controller.Remove(report.RemovedIDs)
	g.stats.RecordCleanup(report)
}
