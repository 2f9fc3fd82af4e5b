package systems

import (
	"github.com/pthm-cable/biome/components"
	"github.com/pthm-cable/biome/config"
	"github.com/pthm-cable/biome/world"
)

// HabitatClass groups agents by habitat preference.
type HabitatClass uint8

const (
	Aquatic HabitatClass = iota
	Amphibious
	Terrestrial
)

func (h HabitatClass) String() string {
	switch h {
	case Aquatic:
		return "aquatic"
	case Terrestrial:
		return "terrestrial"
	}
	return "amphibious"
}

// ClassifyHabitat maps a preference in [0,2] onto a class.
func ClassifyHabitat(cfg config.HabitatConfig, pref float64) HabitatClass {
	switch {
	case pref < cfg.AquaticThreshold:
		return Aquatic
	case pref > cfg.TerrestrialThreshold:
		return Terrestrial
	}
	return Amphibious
}

// UpdateWaterExposure tracks time spent in and out of water. Agents in their
// disfavoured medium lose hydration at a rate that grows with exposure time
// and die once exposure exceeds their tolerance.
func UpdateWaterExposure(w *world.World, dt float64) {
	cfg := w.Config()
	hc := cfg.Habitat
	for _, e := range w.AgentList() {
		a := w.Agent(e)
		if !a.Vitals.Alive {
			continue
		}
		v := a.Vitals
		v.InWater = w.InWater(a.Pos.X, a.Pos.Y)
		if v.InWater {
			v.WaterExposure += dt
			v.LandExposure = 0
		} else {
			v.LandExposure += dt
			v.WaterExposure = 0
		}

		var exposure, tolerance float64
		switch ClassifyHabitat(hc, a.Her.Phenotype.Get("habitat_preference")) {
		case Aquatic:
			if v.InWater {
				continue
			}
			exposure, tolerance = v.LandExposure, hc.AquaticLandTolerance
		case Terrestrial:
			if !v.InWater {
				continue
			}
			exposure, tolerance = v.WaterExposure, hc.TerrestrialWaterTolerance
		default:
			continue
		}

		v.Hydration = clamp(v.Hydration-hc.PenaltyRate*(1+exposure)*dt, 0, cfg.Agent.MaxHydration)
		switch {
		case exposure > tolerance:
			v.Kill(components.CauseExposure)
		case v.Hydration <= 0:
			v.Kill(components.CauseDehydration)
		}
	}
}
