package neural

import "math"

// Sensors holds what an agent perceives this tick. Directions are in the
// agent's local frame: Fwd along its heading, Side to its left.
type Sensors struct {
	EnergyNorm    float64 // energy / max energy [0,1]
	HydrationNorm float64 // hydration / max hydration [0,1]

	// Nearest food within vision, scaled by vision radius; zero when none.
	FoodFwd  float64
	FoodSide float64

	// Nearest other agent within vision; zero when none.
	AgentFwd  float64
	AgentSide float64
	// Other's size relative to own, squashed to [0,1): r/(1+r).
	RelativeSize float64

	InWater  bool
	Infected bool
}

// ToInputs writes the normalized network inputs.
//
//	[0] energy_norm [0,1]
//	[1] hydration_norm [0,1]
//	[2] food_fwd [-1,1]
//	[3] food_side [-1,1]
//	[4] agent_fwd [-1,1]
//	[5] agent_side [-1,1]
//	[6] relative_size [0,1]
//	[7] in_water {0,1}
//	[8] infected {0,1}
//	[9] bias (1.0)
func (s *Sensors) ToInputs(dst *[NumInputs]float64) {
	dst[0] = clampf(s.EnergyNorm, 0, 1)
	dst[1] = clampf(s.HydrationNorm, 0, 1)
	dst[2] = clampf(s.FoodFwd, -1, 1)
	dst[3] = clampf(s.FoodSide, -1, 1)
	dst[4] = clampf(s.AgentFwd, -1, 1)
	dst[5] = clampf(s.AgentSide, -1, 1)
	dst[6] = clampf(s.RelativeSize, 0, 1)
	dst[7] = boolf(s.InWater)
	dst[8] = boolf(s.Infected)
	dst[9] = 1.0
}

// toLocal rotates a world-frame offset into the heading frame and scales
// it by 1/radius.
func toLocal(dx, dy, heading, radius float64) (fwd, side float64) {
	if radius <= 0 {
		return 0, 0
	}
	c, s := math.Cos(heading), math.Sin(heading)
	fwd = (dx*c + dy*s) / radius
	side = (-dx*s + dy*c) / radius
	return fwd, side
}

// Outputs holds the decoded network outputs.
type Outputs struct {
	Turn   float64 // [-1,1], scaled by the max turn rate
	Effort float64 // [0,1]
	Attack float64 // [0,1]
	Avoid  float64 // [0,1]
	Mate   float64 // [0,1]
}

// DecodeOutputs maps activated network outputs to named drives.
func DecodeOutputs(raw [NumOutputs]float64) Outputs {
	return Outputs{
		Turn:   raw[OutTurn],
		Effort: raw[OutEffort],
		Attack: raw[OutAttack],
		Avoid:  raw[OutAvoid],
		Mate:   raw[OutMate],
	}
}

func clampf(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func boolf(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
