package systems

import (
	"math"

	"github.com/pthm-cable/biome/components"
	"github.com/pthm-cable/biome/world"
)

// EffectiveMaxAge is min(global max age, genetic max age). A genome with no
// longevity loci falls back to the global cap.
func EffectiveMaxAge(globalMax, genetic float64) float64 {
	if genetic <= 0 {
		return globalMax
	}
	return math.Min(globalMax, genetic)
}

// UpdateAging advances age and timers and retires agents past their lifespan.
func UpdateAging(w *world.World, dt float64) {
	cfg := w.Config()
	for _, e := range w.AgentList() {
		a := w.Agent(e)
		if !a.Vitals.Alive {
			continue
		}
		v := a.Vitals
		v.Age += dt
		v.ReproCooldown = math.Max(0, v.ReproCooldown-dt)
		v.SomaticTimer += dt
		if v.Age >= EffectiveMaxAge(cfg.Agent.MaxAge, a.Her.Phenotype.Get("max_age")) {
			v.Kill(components.CauseOldAge)
		}
	}
}
