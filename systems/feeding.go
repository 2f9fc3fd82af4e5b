package systems

import (
	"math"

	"github.com/pthm-cable/biome/world"
)

// UpdateFeeding lets every living agent eat at most one uneaten food item
// within eating distance. It returns the number of items eaten.
func UpdateFeeding(w *world.World) int {
	cfg := w.Config()
	eaten := 0
	for _, e := range w.AgentList() {
		a := w.Agent(e)
		if !a.Vitals.Alive {
			continue
		}
		n, ok := w.NearestFood(a.Pos.X, a.Pos.Y, cfg.Feeding.EatingDistance)
		if !ok {
			continue
		}
		_, food := w.Food(n.E)
		a.Vitals.Energy = math.Min(cfg.Agent.MaxEnergy, a.Vitals.Energy+food.Energy)
		food.Alive = false
		eaten++
	}
	return eaten
}
