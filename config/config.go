// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	World        WorldConfig           `yaml:"world"`
	Agent        AgentConfig           `yaml:"agent"`
	Combat       CombatConfig          `yaml:"combat"`
	Feeding      FeedingConfig         `yaml:"feeding"`
	Food         FoodConfig            `yaml:"food"`
	Hydration    HydrationConfig       `yaml:"hydration"`
	Energy       EnergyConfig          `yaml:"energy"`
	Reproduction ReproductionConfig    `yaml:"reproduction"`
	Mutation     MutationConfig        `yaml:"mutation"`
	Species      SpeciesConfig         `yaml:"species"`
	Disease      DiseaseConfig         `yaml:"disease"`
	Epidemic     EpidemicConfig        `yaml:"epidemic"`
	Habitat      HabitatConfig         `yaml:"habitat"`
	Events       EventsConfig          `yaml:"events"`
	Traits       map[string]TraitRange `yaml:"traits"`
	Telemetry    TelemetryConfig       `yaml:"telemetry"`
	Controller   ControllerConfig      `yaml:"controller"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// WorldConfig holds world dimensions, tick length and static scenery.
type WorldConfig struct {
	Width          float64          `yaml:"width"`
	Height         float64          `yaml:"height"`
	DT             float64          `yaml:"dt"`              // seconds per tick
	AgentCellSize  float64          `yaml:"agent_cell_size"` // spatial grid cell size for agents
	FoodCellSize   float64          `yaml:"food_cell_size"`  // spatial grid cell size for food
	InitialAgents  int              `yaml:"initial_agents"`
	FounderSpecies int              `yaml:"founder_species"` // number of founder species ids
	Water          []WaterConfig    `yaml:"water"`           // explicit water sources
	GeneratedWater int              `yaml:"generated_water"` // sources to place randomly when Water is empty
	WaterRadiusMin float64          `yaml:"water_radius_min"`
	WaterRadiusMax float64          `yaml:"water_radius_max"`
	Obstacles      []ObstacleConfig `yaml:"obstacles"`
}

// WaterConfig describes a circular water source.
type WaterConfig struct {
	X      float64 `yaml:"x"`
	Y      float64 `yaml:"y"`
	Radius float64 `yaml:"radius"`
}

// ObstacleConfig describes a rock, river or lake.
// Either Points (polygon) or X/Y/W/H (axis-aligned rectangle) is used.
type ObstacleConfig struct {
	Kind   string       `yaml:"kind"` // rock, river, lake
	X      float64      `yaml:"x"`
	Y      float64      `yaml:"y"`
	W      float64      `yaml:"w"`
	H      float64      `yaml:"h"`
	Points [][2]float64 `yaml:"points,omitempty"`
}

// AgentConfig holds per-agent physiological limits.
type AgentConfig struct {
	MaxEnergy          float64 `yaml:"max_energy"`
	MaxHydration       float64 `yaml:"max_hydration"`
	MaxAge             float64 `yaml:"max_age"`              // global age cap in seconds
	InitialEnergyRatio float64 `yaml:"initial_energy_ratio"` // founders start at this fraction of max
	MaxSpeed           float64 `yaml:"max_speed"`            // world units per second at speed trait 1.0
	MaxTurnRate        float64 `yaml:"max_turn_rate"`        // radians per second
}

// CombatConfig holds attack parameters.
type CombatConfig struct {
	AttackDistance         float64 `yaml:"attack_distance"`
	AttackDamageBase       float64 `yaml:"attack_damage_base"`
	EffortDamageScale      float64 `yaml:"effort_damage_scale"`
	AttackEnergyCost       float64 `yaml:"attack_energy_cost"` // per second, scaled by effort
	KillEnergyGain         float64 `yaml:"kill_energy_gain"`
	CannibalismEnergyBonus float64 `yaml:"cannibalism_energy_bonus"`
	DriveThreshold         float64 `yaml:"drive_threshold"`
}

// FeedingConfig holds food consumption parameters.
type FeedingConfig struct {
	EatingDistance float64 `yaml:"eating_distance"`
}

// FoodConfig holds food spawning and clustering parameters.
type FoodConfig struct {
	Initial       int     `yaml:"initial"`
	Max           int     `yaml:"max"`
	SpawnRate     float64 `yaml:"spawn_rate"` // expected items per second
	Energy        float64 `yaml:"energy"`
	Clusters      int     `yaml:"clusters"`
	ClusterRadius float64 `yaml:"cluster_radius"`
	ClusterBias   float64 `yaml:"cluster_bias"` // probability a new item lands near a cluster
	DriftSpeed    float64 `yaml:"drift_speed"`  // cluster drift in units per second
	NoiseScale    float64 `yaml:"noise_scale"`  // noise time frequency for drift direction
}

// HydrationConfig holds water balance parameters.
type HydrationConfig struct {
	DrainRate         float64 `yaml:"drain_rate"`
	DrinkRate         float64 `yaml:"drink_rate"`
	RiverFactor       float64 `yaml:"river_factor"`        // drink multiplier at river edges
	EdgeDrinkDistance float64 `yaml:"edge_drink_distance"` // reach to a river/lake edge
}

// EnergyConfig holds metabolic cost parameters.
type EnergyConfig struct {
	BaseDrain           float64 `yaml:"base_drain"`
	MovementCost        float64 `yaml:"movement_cost"`
	SizeScaling         bool    `yaml:"size_scaling"`
	SizeExponent        float64 `yaml:"size_exponent"`
	HighSpeedThreshold  float64 `yaml:"high_speed_threshold"` // fraction of the agent's top speed
	HighSpeedMultiplier float64 `yaml:"high_speed_multiplier"`
	SharpTurnThreshold  float64 `yaml:"sharp_turn_threshold"` // radians per second
	SharpTurnMultiplier float64 `yaml:"sharp_turn_multiplier"`
	DiseaseDrain        float64 `yaml:"disease_drain"` // extra drain per second while infected
}

// ReproductionConfig holds mating parameters.
type ReproductionConfig struct {
	MatingDistance           float64 `yaml:"mating_distance"`
	DesireThreshold          float64 `yaml:"desire_threshold"`
	MinEnergy                float64 `yaml:"min_energy"`
	MinHydrationRatio        float64 `yaml:"min_hydration_ratio"`
	MaturityAge              float64 `yaml:"maturity_age"`
	Cooldown                 float64 `yaml:"cooldown"`
	Cost                     float64 `yaml:"cost"` // energy per offspring, paid by each parent
	MaxSimultaneousOffspring int     `yaml:"max_simultaneous_offspring"`
	HybridFertilityRate      float64 `yaml:"hybrid_fertility_rate"`
	SpawnOffset              float64 `yaml:"spawn_offset"`
	OffspringResourceRatio   float64 `yaml:"offspring_resource_ratio"`
	FemaleRatio              float64 `yaml:"female_ratio"`
	ResistanceNoise          float64 `yaml:"resistance_noise"`
	MatingEventDuration      float64 `yaml:"mating_event_duration"`
	SenescenceStart          float64 `yaml:"senescence_start"` // fraction of lifespan where fertility starts to fall
	SenescenceFloor          float64 `yaml:"senescence_floor"` // fertility modifier at end of life
}

// MutationConfig holds genetic mutation parameters.
type MutationConfig struct {
	Rate            float64 `yaml:"rate"`
	CrossoverRate   float64 `yaml:"crossover_rate"`
	PointStdDev     float64 `yaml:"point_stddev"`
	LargeStdDev     float64 `yaml:"large_stddev"`
	DominanceStdDev float64 `yaml:"dominance_stddev"`
	SomaticRate     float64 `yaml:"somatic_rate"`
	SomaticScale    float64 `yaml:"somatic_scale"`
}

// SpeciesConfig holds speciation parameters.
type SpeciesConfig struct {
	SimilarityThreshold float64 `yaml:"similarity_threshold"`
	// DriftSpeciation lets a same-species pair found a new species when
	// their child falls below the similarity threshold to both of them.
	DriftSpeciation bool `yaml:"drift_speciation"`
}

// DiseaseConfig holds contagion parameters.
type DiseaseConfig struct {
	TransmissionDistance float64  `yaml:"transmission_distance"`
	Names                []string `yaml:"names"`
	MinDuration          float64  `yaml:"min_duration"`
	MaxDuration          float64  `yaml:"max_duration"`
	RecoveryImmunityGain float64  `yaml:"recovery_immunity_gain"`
	InitialResistanceMax float64  `yaml:"initial_resistance_max"`
}

// EpidemicConfig holds parameters for randomly triggered outbreaks.
type EpidemicConfig struct {
	Interval           float64 `yaml:"interval"`
	BaseProbability    float64 `yaml:"base_probability"` // per check
	MinPopulationRatio float64 `yaml:"min_population_ratio"`
	AffectedRatio      float64 `yaml:"affected_ratio"`
	Severity           float64 `yaml:"severity"` // fraction of energy removed at zero resistance
	Duration           float64 `yaml:"duration"`
}

// HabitatConfig holds water-exposure tolerance parameters.
type HabitatConfig struct {
	AquaticThreshold          float64 `yaml:"aquatic_threshold"`
	TerrestrialThreshold      float64 `yaml:"terrestrial_threshold"`
	TerrestrialWaterTolerance float64 `yaml:"terrestrial_water_tolerance"`
	AquaticLandTolerance      float64 `yaml:"aquatic_land_tolerance"`
	PenaltyRate               float64 `yaml:"penalty_rate"`
}

// EventsConfig holds event-manager presentation parameters.
type EventsConfig struct {
	MessageDuration float64 `yaml:"message_duration"`
	LogSize         int     `yaml:"log_size"`
}

// TraitRange is the inclusive clamp range of a phenotype trait.
type TraitRange struct {
	Lo float64 `yaml:"lo"`
	Hi float64 `yaml:"hi"`
}

// Span returns Hi-Lo, floored to a tiny positive value.
func (r TraitRange) Span() float64 {
	if s := r.Hi - r.Lo; s > 1e-9 {
		return s
	}
	return 1e-9
}

// TelemetryConfig holds stats collection parameters.
type TelemetryConfig struct {
	StatsInterval float64 `yaml:"stats_interval"` // sim-seconds between snapshots
	HistorySize   int     `yaml:"history_size"`
	LogInterval   float64 `yaml:"log_interval"` // sim-seconds between stats log lines
}

// ControllerConfig holds parameters of the default behaviour network.
type ControllerConfig struct {
	Hidden        int     `yaml:"hidden"`
	MutationRate  float64 `yaml:"mutation_rate"`
	MutationSigma float64 `yaml:"mutation_sigma"`
	BigRate       float64 `yaml:"big_rate"`
	BigSigma      float64 `yaml:"big_sigma"`
}

// DerivedConfig holds values computed from the loaded configuration.
type DerivedConfig struct {
	TraitNames []string // sorted keys of Traits
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Defaults returns a fresh copy of the embedded default configuration.
func Defaults() (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}
	cfg.computeDerived()
	return cfg, nil
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used. An unreadable or
// malformed user file is logged and ignored; only broken embedded defaults
// produce an error.
func Load(path string) (*Config, error) {
	cfg, err := Defaults()
	if err != nil {
		return nil, err
	}
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		slog.Warn("config file unreadable, using defaults", "path", path, "error", err)
		return cfg, nil
	}
	// Unmarshal into same struct - only overwrites fields present in file
	if err := yaml.Unmarshal(data, cfg); err != nil {
		slog.Warn("config file malformed, using defaults", "path", path, "error", err)
		return Defaults()
	}

	cfg.fillMissingTraits()
	cfg.computeDerived()
	return cfg, nil
}

// fillMissingTraits restores default trait ranges a user file dropped.
func (c *Config) fillMissingTraits() {
	def, err := Defaults()
	if err != nil {
		return
	}
	if c.Traits == nil {
		c.Traits = make(map[string]TraitRange, len(def.Traits))
	}
	for name, r := range def.Traits {
		if _, ok := c.Traits[name]; !ok {
			c.Traits[name] = r
		}
	}
}

func (c *Config) computeDerived() {
	if c.World.AgentCellSize < 1 {
		c.World.AgentCellSize = 1
	}
	if c.World.FoodCellSize < 1 {
		c.World.FoodCellSize = 1
	}
	if c.World.DT <= 0 {
		c.World.DT = 1.0 / 60.0
	}
	if c.Telemetry.HistorySize < 1 {
		c.Telemetry.HistorySize = 1
	}
	if c.Events.LogSize < 1 {
		c.Events.LogSize = 1
	}
	if c.World.FounderSpecies < 1 {
		c.World.FounderSpecies = 1
	}

	c.Derived.TraitNames = c.Derived.TraitNames[:0]
	for name, r := range c.Traits {
		if r.Lo > r.Hi {
			r.Lo, r.Hi = r.Hi, r.Lo
			c.Traits[name] = r
		}
		c.Derived.TraitNames = append(c.Derived.TraitNames, name)
	}
	sort.Strings(c.Derived.TraitNames)
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	cp := *c
	cp.World.Water = append([]WaterConfig(nil), c.World.Water...)
	cp.World.Obstacles = make([]ObstacleConfig, len(c.World.Obstacles))
	for i, o := range c.World.Obstacles {
		o.Points = append([][2]float64(nil), o.Points...)
		cp.World.Obstacles[i] = o
	}
	cp.Disease.Names = append([]string(nil), c.Disease.Names...)
	cp.Traits = make(map[string]TraitRange, len(c.Traits))
	for k, v := range c.Traits {
		cp.Traits[k] = v
	}
	cp.Derived.TraitNames = append([]string(nil), c.Derived.TraitNames...)
	return &cp
}

// Trait returns the configured range for a trait, or [0,1] when unknown.
func (c *Config) Trait(name string) TraitRange {
	if r, ok := c.Traits[name]; ok {
		return r
	}
	return TraitRange{Lo: 0, Hi: 1}
}

// WriteYAML writes the current configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
