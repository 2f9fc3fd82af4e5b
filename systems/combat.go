// Package systems implements the per-tick ecological systems. Each system
// runs to completion over the agent list before the next one starts.
package systems

import (
	"math"

	"github.com/pthm-cable/biome/components"
	"github.com/pthm-cable/biome/config"
	"github.com/pthm-cable/biome/world"
)

// AttackDamage returns the raw damage of one attack before the target's
// damage reduction. Target size is floored at 0.1.
func AttackDamage(cfg config.CombatConfig, attackerSize, targetSize, aggression, effort, effectiveAttack, dt float64) float64 {
	sizeRatio := attackerSize / math.Max(0.1, targetSize)
	return sizeRatio * aggression * cfg.AttackDamageBase *
		(0.5 + effort*cfg.EffortDamageScale) * effectiveAttack * dt
}

// CombatSystem resolves attacks against the nearest agent in reach.
type CombatSystem struct{}

// NewCombatSystem creates a combat system.
func NewCombatSystem() *CombatSystem {
	return &CombatSystem{}
}

// Update runs combat for every living agent whose attack drive exceeds both
// the threshold and its avoid drive. It returns the number of kills.
func (s *CombatSystem) Update(w *world.World, dt float64) int {
	cfg := w.Config()
	cc := cfg.Combat
	maxEnergy := cfg.Agent.MaxEnergy
	kills := 0

	for _, e := range w.AgentList() {
		a := w.Agent(e)
		if !a.Vitals.Alive {
			continue
		}
		d := a.Drives
		if d.Attack <= cc.DriveThreshold || d.Attack <= d.Avoid {
			continue
		}

		n, ok := w.NearestAgent(a.Pos.X, a.Pos.Y, cc.AttackDistance, e)
		if !ok {
			continue
		}
		target := w.Agent(n.E)

		damage := AttackDamage(cc,
			a.Her.Phenotype.Get("size"), target.Her.Phenotype.Get("size"),
			a.Her.Phenotype.Get("aggression"), d.Effort, d.Mods.EffectiveAttack, dt)
		damage *= 1 - clamp(target.Drives.Mods.DamageReduction, 0, 1)

		target.Vitals.Energy = clamp(target.Vitals.Energy-damage, 0, maxEnergy)
		a.Vitals.Energy = clamp(a.Vitals.Energy-cc.AttackEnergyCost*(0.5+d.Effort)*dt, 0, maxEnergy)

		if target.Vitals.Energy <= 0 {
			target.Vitals.Kill(components.CauseKilled)
			gain := cc.KillEnergyGain
			if target.Her.Species == a.Her.Species {
				gain += cc.CannibalismEnergyBonus
			}
			a.Vitals.Energy = math.Min(maxEnergy, a.Vitals.Energy+gain)
			a.Life.Kills++
			a.Life.Carnivory = math.Min(1, a.Life.Carnivory+0.1)
			kills++
		}
	}
	return kills
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
