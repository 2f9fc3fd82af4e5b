package components

import (
	"math"

	"github.com/pthm-cable/biome/genetics"
)

// DeathCause records why an agent died.
type DeathCause uint8

const (
	CauseNone DeathCause = iota
	CauseStarvation
	CauseDehydration
	CauseOldAge
	CauseKilled
	CauseExposure
)

func (c DeathCause) String() string {
	switch c {
	case CauseStarvation:
		return "starvation"
	case CauseDehydration:
		return "dehydration"
	case CauseOldAge:
		return "old_age"
	case CauseKilled:
		return "killed"
	case CauseExposure:
		return "exposure"
	}
	return "none"
}

// Vitals tracks an agent's physiology and timers.
// Energy and hydration are absolute units in [0, max].
type Vitals struct {
	Energy        float64
	Hydration     float64
	Age           float64 // seconds alive
	Alive         bool
	Cause         DeathCause
	ReproCooldown float64 // seconds until the agent may mate again
	SomaticTimer  float64 // seconds since the last somatic mutation

	InWater       bool
	WaterExposure float64 // continuous seconds in water
	LandExposure  float64 // continuous seconds on land
}

// Kill marks the agent dead. The first cause sticks.
func (v *Vitals) Kill(cause DeathCause) {
	if !v.Alive {
		return
	}
	v.Alive = false
	v.Cause = cause
}

// Heredity bundles identity and genetic state.
// Phenotype is always recomputed from Genome after any genome change.
type Heredity struct {
	ID         uint32
	Genome     *genetics.Genome
	Phenotype  genetics.Phenotype
	Species    int
	Sex        genetics.Sex
	Generation int
	Similarity float64 // genetic similarity to parents at birth
}

// Lifetime accumulates per-agent counters.
type Lifetime struct {
	Offspring int
	Mutations int
	Kills     int
	Carnivory float64 // carnivorous tendency in [0,1]
	BirthTick int32
}

func hypot(x, y float64) float64 {
	return math.Sqrt(x*x + y*y)
}
