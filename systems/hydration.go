package systems

import (
	"github.com/pthm-cable/biome/components"
	"github.com/pthm-cable/biome/world"
)

// UpdateHydration drains water and refills agents at a pond or river/lake
// edge. Only the first reachable source counts each tick.
func UpdateHydration(w *world.World, dt float64) {
	cfg := w.Config()
	hc := cfg.Hydration
	for _, e := range w.AgentList() {
		a := w.Agent(e)
		if !a.Vitals.Alive {
			continue
		}
		v := a.Vitals
		v.Hydration -= hc.DrainRate * dt
		if factor, ok := w.DrinkFactor(a.Pos.X, a.Pos.Y); ok {
			v.Hydration += hc.DrinkRate * factor * dt
		}
		v.Hydration = clamp(v.Hydration, 0, cfg.Agent.MaxHydration)
		if v.Hydration <= 0 {
			v.Kill(components.CauseDehydration)
		}
	}
}
