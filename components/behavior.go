package components

// Modifier keys accepted by Modifiers.Get.
const (
	ModEffectiveAttack      = "effective_attack"
	ModEffectiveMetabolism  = "effective_metabolism"
	ModDamageReduction      = "damage_reduction"
	ModReproductionModifier = "reproduction_modifier"
)

// Modifiers are per-tick multipliers published by the behaviour controller.
type Modifiers struct {
	EffectiveAttack      float64
	EffectiveMetabolism  float64
	DamageReduction      float64
	ReproductionModifier float64
}

// NeutralModifiers leaves every system unscaled.
func NeutralModifiers() Modifiers {
	return Modifiers{
		EffectiveAttack:      1,
		EffectiveMetabolism:  1,
		DamageReduction:      0,
		ReproductionModifier: 1,
	}
}

// Get returns a modifier by key. Unknown keys return 1.
func (m Modifiers) Get(key string) float64 {
	switch key {
	case ModEffectiveAttack:
		return m.EffectiveAttack
	case ModEffectiveMetabolism:
		return m.EffectiveMetabolism
	case ModDamageReduction:
		return m.DamageReduction
	case ModReproductionModifier:
		return m.ReproductionModifier
	}
	return 1
}

// Drives holds the controller's outputs for the current tick.
// Ecological systems only read these.
type Drives struct {
	Attack   float64
	Avoid    float64
	Mate     float64
	Effort   float64 // in [0,1]
	Heading  float64 // radians
	TurnRate float64 // radians per second this tick
	Mods     Modifiers
}
