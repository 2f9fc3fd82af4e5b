package systems

import (
	"math"

	"github.com/pthm-cable/biome/components"
	"github.com/pthm-cable/biome/config"
	"github.com/pthm-cable/biome/world"
)

// EnergyCost returns one tick's metabolic cost for an agent.
//
//	cost = (base_drain * size^exp + movement_cost * effort) * max(0.1, metabolism) * dt
//
// multiplied when the agent moves near its top speed or turns sharply,
// plus the disease drain while infected.
func EnergyCost(cfg *config.Config, a world.Agent, dt float64) float64 {
	ec := cfg.Energy
	size := a.Her.Phenotype.Get("size")

	sizeFactor := 1.0
	if ec.SizeScaling {
		sizeFactor = math.Pow(math.Max(0.1, size), ec.SizeExponent)
	}

	cost := (ec.BaseDrain*sizeFactor + ec.MovementCost*a.Drives.Effort) *
		math.Max(0.1, a.Drives.Mods.EffectiveMetabolism) * dt

	topSpeed := cfg.Agent.MaxSpeed * a.Her.Phenotype.Get("speed")
	if topSpeed > 0 && a.Vel.Speed() > ec.HighSpeedThreshold*topSpeed {
		cost *= ec.HighSpeedMultiplier
	}
	if math.Abs(a.Drives.TurnRate) > ec.SharpTurnThreshold {
		cost *= ec.SharpTurnMultiplier
	}
	if a.Health.Infected {
		cost += ec.DiseaseDrain * dt
	}
	return cost
}

// UpdateEnergy charges metabolism and marks starved agents dead.
func UpdateEnergy(w *world.World, dt float64) {
	cfg := w.Config()
	for _, e := range w.AgentList() {
		a := w.Agent(e)
		if !a.Vitals.Alive {
			continue
		}
		a.Vitals.Energy = clamp(a.Vitals.Energy-EnergyCost(cfg, a, dt), 0, cfg.Agent.MaxEnergy)
		if a.Vitals.Energy <= 0 {
			a.Vitals.Kill(components.CauseStarvation)
		}
	}
}
