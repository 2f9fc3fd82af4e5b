package main

import (
	"math"
	"testing"

	"github.com/pthm-cable/biome/config"
	"github.com/pthm-cable/biome/telemetry"
)

// ---------- Params ----------

func TestParamVector_NormalizeRoundTrip(t *testing.T) {
	pv := NewParamVector()
	cfg, err := config.Load("")
	if err != nil {
		t.Fatal(err)
	}
	def := pv.DefaultVector(cfg)
	back := pv.Denormalize(pv.Normalize(def))
	for i := range def {
		if math.Abs(back[i]-def[i]) > 1e-9 {
			t.Errorf("%s: got %v, want %v", pv.Specs[i].Key, back[i], def[i])
		}
	}
}

func TestParamVector_KeysAreAssignable(t *testing.T) {
	pv := NewParamVector()
	cfg, err := config.Load("")
	if err != nil {
		t.Fatal(err)
	}
	for _, spec := range pv.Specs {
		if _, ok := config.Lookup(cfg, spec.Key); !ok {
			t.Errorf("unknown key %s", spec.Key)
		}
	}
	if err := pv.ApplyToConfig(cfg, pv.DefaultVector(cfg)); err != nil {
		t.Fatalf("ApplyToConfig: %v", err)
	}
}

func TestParamVector_ApplyClamps(t *testing.T) {
	pv := NewParamVector()
	cfg, _ := config.Load("")
	v := make([]float64, pv.Dim())
	for i := range v {
		v[i] = 1e6
	}
	if err := pv.ApplyToConfig(cfg, v); err != nil {
		t.Fatal(err)
	}
	got := config.Resolve(cfg, "FOOD_SPAWN_RATE", -1)
	if got != pv.Specs[0].Max {
		t.Errorf("FOOD_SPAWN_RATE = %v, want %v", got, pv.Specs[0].Max)
	}
}

// ---------- Fitness ----------

func TestFitness_SurvivalDominates(t *testing.T) {
	if Fitness(1000, 0) >= Fitness(999, 0.001) {
		t.Error("longer survival should win over a small diversity gain")
	}
	if Fitness(900, 1) >= Fitness(1000, 0) {
		t.Error("a full diversity bonus should outweigh a 10% shorter run")
	}
	if Fitness(1000, 1) >= Fitness(1000, 0) {
		t.Error("diversity bonus should lower fitness")
	}
	if got := Fitness(1000, 1); math.Abs(got+1200) > 1e-9 {
		t.Errorf("Fitness(1000, 1) = %v, want -1200", got)
	}
}

func TestDiversityBonus(t *testing.T) {
	snap := func(pop, species int, div float64) telemetry.Snapshot {
		return telemetry.Snapshot{Population: pop, SpeciesCount: species, GeneticDiversity: div}
	}
	warm := []telemetry.Snapshot{snap(50, 9, 1), snap(50, 9, 1), snap(50, 9, 1)}

	tests := []struct {
		name  string
		snaps []telemetry.Snapshot
		want  float64
	}{
		{"empty", nil, 0},
		{"warmup only", warm, 0},
		{"single species no variance", append(warm, snap(50, 1, 0)), 0},
		{"below viable population skipped", append(warm, snap(2, 8, 1)), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DiversityBonus(tt.snaps); got != tt.want {
				t.Errorf("DiversityBonus = %v, want %v", got, tt.want)
			}
		})
	}

	rich := DiversityBonus(append(warm, snap(50, 6, 0.5)))
	poor := DiversityBonus(append(warm, snap(50, 2, 0.01)))
	if !(rich > poor && poor > 0 && rich <= 1) {
		t.Errorf("rich=%v poor=%v: want 0 < poor < rich <= 1", rich, poor)
	}
}
