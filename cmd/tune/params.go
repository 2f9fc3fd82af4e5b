package main

import (
	"fmt"

	"github.com/pthm-cable/biome/config"
)

// ParamSpec defines a single tunable setting, addressed by its canonical key.
type ParamSpec struct {
	Key string
	Min float64
	Max float64
}

// ParamVector holds the set of all tunable parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the standard set of tunable parameters.
func NewParamVector() *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			// Food supply
			{Key: "FOOD_SPAWN_RATE", Min: 1, Max: 20},
			{Key: "FOOD_ENERGY", Min: 10, Max: 60},
			// Metabolism
			{Key: "BASE_ENERGY_DRAIN", Min: 0.1, Max: 2.0},
			{Key: "MOVEMENT_ENERGY_COST", Min: 0.2, Max: 3.0},
			{Key: "HYDRATION_DRAIN_RATE", Min: 0.2, Max: 2.0},
			{Key: "DRINK_RATE", Min: 5, Max: 40},
			// Predation
			{Key: "ATTACK_ENERGY_COST", Min: 0.5, Max: 6},
			{Key: "KILL_ENERGY_GAIN", Min: 10, Max: 80},
			// Reproduction
			{Key: "REPRODUCTION_COST", Min: 5, Max: 40},
			{Key: "REPRODUCTION_COOLDOWN", Min: 5, Max: 40},
			{Key: "MATURITY_AGE", Min: 5, Max: 60},
			// Disease
			{Key: "EPIDEMIC_SEVERITY", Min: 0, Max: 0.8},
		},
	}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// DefaultVector reads the starting point from cfg. Values outside a
// spec's bounds are clamped.
func (pv *ParamVector) DefaultVector(cfg *config.Config) []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = config.Resolve(cfg, spec.Key, (spec.Min+spec.Max)/2)
	}
	return pv.Clamp(v)
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp ensures all values are within bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		clamped[i] = min(max(v[i], spec.Min), spec.Max)
	}
	return clamped
}

// ApplyToConfig writes clamped values into cfg through the settings table.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) error {
	clamped := pv.Clamp(values)
	for i, spec := range pv.Specs {
		if err := config.Assign(cfg, spec.Key, clamped[i]); err != nil {
			return fmt.Errorf("applying %s: %w", spec.Key, err)
		}
	}
	return nil
}
