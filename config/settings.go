package config

import (
	"fmt"
	"sort"
)

// ValueKind identifies which field of a Value is meaningful.
type ValueKind uint8

const (
	KindNumber ValueKind = iota
	KindBool
	KindList
	KindRanges
)

// Value is a setting resolved by key.
type Value struct {
	Kind   ValueKind
	Num    float64
	Bool   bool
	List   []string
	Ranges map[string]TraitRange
}

// Float returns the numeric value, 1/0 for booleans, and 0 otherwise.
func (v Value) Float() float64 {
	switch v.Kind {
	case KindNumber:
		return v.Num
	case KindBool:
		if v.Bool {
			return 1
		}
	}
	return 0
}

// setting binds one canonical key to a field of Config.
type setting struct {
	get func(*Config) Value
	set func(*Config, float64) // nil when the key is not numeric
}

func num(field func(*Config) *float64) setting {
	return setting{
		get: func(c *Config) Value { return Value{Kind: KindNumber, Num: *field(c)} },
		set: func(c *Config, v float64) { *field(c) = v },
	}
}

func integer(field func(*Config) *int) setting {
	return setting{
		get: func(c *Config) Value { return Value{Kind: KindNumber, Num: float64(*field(c))} },
		set: func(c *Config, v float64) { *field(c) = int(v + 0.5) },
	}
}

func flag(field func(*Config) *bool) setting {
	return setting{
		get: func(c *Config) Value { return Value{Kind: KindBool, Bool: *field(c)} },
		set: func(c *Config, v float64) { *field(c) = v != 0 },
	}
}

// settings maps canonical upper-case keys onto typed fields.
// Defaults for every key come from the embedded defaults.yaml.
var settings = map[string]setting{
	"WORLD_WIDTH":     num(func(c *Config) *float64 { return &c.World.Width }),
	"WORLD_HEIGHT":    num(func(c *Config) *float64 { return &c.World.Height }),
	"TICK_DT":         num(func(c *Config) *float64 { return &c.World.DT }),
	"AGENT_CELL_SIZE": num(func(c *Config) *float64 { return &c.World.AgentCellSize }),
	"FOOD_CELL_SIZE":  num(func(c *Config) *float64 { return &c.World.FoodCellSize }),
	"INITIAL_AGENTS":  integer(func(c *Config) *int { return &c.World.InitialAgents }),

	"MAX_ENERGY":    num(func(c *Config) *float64 { return &c.Agent.MaxEnergy }),
	"MAX_HYDRATION": num(func(c *Config) *float64 { return &c.Agent.MaxHydration }),
	"MAX_AGE":       num(func(c *Config) *float64 { return &c.Agent.MaxAge }),
	"MAX_SPEED":     num(func(c *Config) *float64 { return &c.Agent.MaxSpeed }),

	"ATTACK_DISTANCE":          num(func(c *Config) *float64 { return &c.Combat.AttackDistance }),
	"ATTACK_DAMAGE_BASE":       num(func(c *Config) *float64 { return &c.Combat.AttackDamageBase }),
	"EFFORT_DAMAGE_SCALE":      num(func(c *Config) *float64 { return &c.Combat.EffortDamageScale }),
	"ATTACK_ENERGY_COST":       num(func(c *Config) *float64 { return &c.Combat.AttackEnergyCost }),
	"KILL_ENERGY_GAIN":         num(func(c *Config) *float64 { return &c.Combat.KillEnergyGain }),
	"CANNIBALISM_ENERGY_BONUS": num(func(c *Config) *float64 { return &c.Combat.CannibalismEnergyBonus }),

	"EATING_DISTANCE": num(func(c *Config) *float64 { return &c.Feeding.EatingDistance }),

	"INITIAL_FOOD":    integer(func(c *Config) *int { return &c.Food.Initial }),
	"MAX_FOOD":        integer(func(c *Config) *int { return &c.Food.Max }),
	"FOOD_SPAWN_RATE": num(func(c *Config) *float64 { return &c.Food.SpawnRate }),
	"FOOD_ENERGY":     num(func(c *Config) *float64 { return &c.Food.Energy }),

	"HYDRATION_DRAIN_RATE": num(func(c *Config) *float64 { return &c.Hydration.DrainRate }),
	"DRINK_RATE":           num(func(c *Config) *float64 { return &c.Hydration.DrinkRate }),

	"BASE_ENERGY_DRAIN":     num(func(c *Config) *float64 { return &c.Energy.BaseDrain }),
	"MOVEMENT_ENERGY_COST":  num(func(c *Config) *float64 { return &c.Energy.MovementCost }),
	"SIZE_ENERGY_SCALING":   flag(func(c *Config) *bool { return &c.Energy.SizeScaling }),
	"SIZE_ENERGY_EXPONENT":  num(func(c *Config) *float64 { return &c.Energy.SizeExponent }),
	"HIGH_SPEED_MULTIPLIER": num(func(c *Config) *float64 { return &c.Energy.HighSpeedMultiplier }),
	"SHARP_TURN_MULTIPLIER": num(func(c *Config) *float64 { return &c.Energy.SharpTurnMultiplier }),
	"DISEASE_ENERGY_DRAIN":  num(func(c *Config) *float64 { return &c.Energy.DiseaseDrain }),

	"MATING_DISTANCE":            num(func(c *Config) *float64 { return &c.Reproduction.MatingDistance }),
	"REPRODUCTION_MIN_ENERGY":    num(func(c *Config) *float64 { return &c.Reproduction.MinEnergy }),
	"MATURITY_AGE":               num(func(c *Config) *float64 { return &c.Reproduction.MaturityAge }),
	"REPRODUCTION_COOLDOWN":      num(func(c *Config) *float64 { return &c.Reproduction.Cooldown }),
	"REPRODUCTION_COST":          num(func(c *Config) *float64 { return &c.Reproduction.Cost }),
	"MAX_SIMULTANEOUS_OFFSPRING": integer(func(c *Config) *int { return &c.Reproduction.MaxSimultaneousOffspring }),
	"HYBRID_FERTILITY_RATE":      num(func(c *Config) *float64 { return &c.Reproduction.HybridFertilityRate }),

	"MUTATION_RATE":         num(func(c *Config) *float64 { return &c.Mutation.Rate }),
	"CROSSOVER_RATE":        num(func(c *Config) *float64 { return &c.Mutation.CrossoverRate }),
	"POINT_MUTATION_STDDEV": num(func(c *Config) *float64 { return &c.Mutation.PointStdDev }),
	"LARGE_MUTATION_STDDEV": num(func(c *Config) *float64 { return &c.Mutation.LargeStdDev }),
	"SOMATIC_MUTATION_RATE": num(func(c *Config) *float64 { return &c.Mutation.SomaticRate }),

	"SPECIES_GENETIC_SIMILARITY_THRESHOLD": num(func(c *Config) *float64 { return &c.Species.SimilarityThreshold }),
	"SPECIES_DRIFT_SPECIATION":             flag(func(c *Config) *bool { return &c.Species.DriftSpeciation }),

	"DISEASE_TRANSMISSION_DISTANCE": num(func(c *Config) *float64 { return &c.Disease.TransmissionDistance }),

	"EPIDEMIC_INTERVAL":             num(func(c *Config) *float64 { return &c.Epidemic.Interval }),
	"EPIDEMIC_BASE_PROBABILITY":     num(func(c *Config) *float64 { return &c.Epidemic.BaseProbability }),
	"EPIDEMIC_MIN_POPULATION_RATIO": num(func(c *Config) *float64 { return &c.Epidemic.MinPopulationRatio }),
	"EPIDEMIC_AFFECTED_RATIO":       num(func(c *Config) *float64 { return &c.Epidemic.AffectedRatio }),
	"EPIDEMIC_SEVERITY":             num(func(c *Config) *float64 { return &c.Epidemic.Severity }),

	"TERRESTRIAL_WATER_TOLERANCE": num(func(c *Config) *float64 { return &c.Habitat.TerrestrialWaterTolerance }),
	"AQUATIC_LAND_TOLERANCE":      num(func(c *Config) *float64 { return &c.Habitat.AquaticLandTolerance }),

	"STATS_INTERVAL": num(func(c *Config) *float64 { return &c.Telemetry.StatsInterval }),

	"DISEASES": {
		get: func(c *Config) Value { return Value{Kind: KindList, List: append([]string(nil), c.Disease.Names...)} },
	},
	"TRAIT_RANGES": {
		get: func(c *Config) Value {
			ranges := make(map[string]TraitRange, len(c.Traits))
			for k, v := range c.Traits {
				ranges[k] = v
			}
			return Value{Kind: KindRanges, Ranges: ranges}
		},
	},
}

// Keys returns every canonical setting key in sorted order.
func Keys() []string {
	keys := make([]string, 0, len(settings))
	for k := range settings {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Lookup resolves a canonical key against cfg. A nil cfg resolves against
// the embedded defaults. The bool result is false for unknown keys.
func Lookup(cfg *Config, key string) (Value, bool) {
	s, ok := settings[key]
	if !ok {
		return Value{}, false
	}
	if cfg == nil {
		def, err := Defaults()
		if err != nil {
			return Value{}, false
		}
		cfg = def
	}
	return s.get(cfg), true
}

// Resolve returns the value for key, or fallback when the key is unknown.
func Resolve(cfg *Config, key string, fallback float64) float64 {
	if v, ok := Lookup(cfg, key); ok {
		return v.Float()
	}
	return fallback
}

// Assign sets a numeric or boolean setting by key.
func Assign(cfg *Config, key string, v float64) error {
	s, ok := settings[key]
	if !ok {
		return fmt.Errorf("unknown setting %q", key)
	}
	if s.set == nil {
		return fmt.Errorf("setting %q is not numeric", key)
	}
	s.set(cfg, v)
	return nil
}
