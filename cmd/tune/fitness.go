package main

import (
	"log/slog"
	"math"
	"sync"

	"github.com/pthm-cable/biome/config"
	"github.com/pthm-cable/biome/game"
	"github.com/pthm-cable/biome/telemetry"
)

// Functional extinction: a run ends once the population stays below
// minViablePop for extinctionGraceSec.
const (
	minViablePop       = 4
	extinctionGraceSec = 30.0
	warmupSec          = 5.0
)

// Diversity bonus weights. The bonus is in [0, 1] and adds at most
// diversityWeight to the survival multiplier.
const (
	diversityWeight        = 0.2
	diversityWeightSpecies = 0.6
	diversityWeightGenetic = 0.4
	diversityWarmupSnaps   = 3
	speciesSaturation      = 5.0
)

// FitnessEvaluator runs headless simulations and computes fitness.
type FitnessEvaluator struct {
	params     *ParamVector
	maxTicks   int32
	seeds      []int64
	baseConfig *config.Config

	mu          sync.Mutex
	lastBonus   float64
	bestFitness float64
	bestHall    *telemetry.HallOfFame
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, maxTicks int32, seeds []int64, baseCfg *config.Config) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:      params,
		maxTicks:    maxTicks,
		seeds:       seeds,
		baseConfig:  baseCfg,
		bestFitness: math.Inf(1),
	}
}

// BestHallOfFame returns the hall of fame of the best single run so far.
func (fe *FitnessEvaluator) BestHallOfFame() *telemetry.HallOfFame {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.bestHall
}

// LastBonus returns the mean diversity bonus of the most recent evaluation.
func (fe *FitnessEvaluator) LastBonus() float64 {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastBonus
}

// runResult holds the results from a single simulation run.
type runResult struct {
	survivalTicks int32
	snapshots     []telemetry.Snapshot
	hallOfFame    *telemetry.HallOfFame
}

// Evaluate computes fitness for a parameter vector (lower = better). Each
// seed runs in its own goroutine with a private config and game.
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	fitness := make([]float64, len(fe.seeds))
	bonus := make([]float64, len(fe.seeds))
	halls := make([]*telemetry.HallOfFame, len(fe.seeds))
	var wg sync.WaitGroup

	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			result := fe.runSimulation(x, s)
			bonus[idx] = DiversityBonus(result.snapshots)
			fitness[idx] = Fitness(result.survivalTicks, bonus[idx])
			halls[idx] = result.hallOfFame
		}(i, seed)
	}
	wg.Wait()

	var totalFitness, totalBonus float64
	for i := range fe.seeds {
		totalFitness += fitness[i]
		totalBonus += bonus[i]
	}
	n := float64(len(fe.seeds))

	fe.mu.Lock()
	fe.lastBonus = totalBonus / n
	for i := range fe.seeds {
		if fitness[i] < fe.bestFitness && halls[i] != nil {
			fe.bestFitness = fitness[i]
			fe.bestHall = halls[i]
		}
	}
	fe.mu.Unlock()

	return totalFitness / n
}

// runSimulation executes a single headless run until functional extinction
// or maxTicks, whichever comes first.
func (fe *FitnessEvaluator) runSimulation(x []float64, seed int64) *runResult {
	cfg := fe.baseConfig.Clone()
	if err := fe.params.ApplyToConfig(cfg, x); err != nil {
		slog.Error("invalid parameters", "error", err)
		return &runResult{}
	}

	result := &runResult{}
	g := game.NewGameWithOptions(game.Options{
		Config: cfg,
		Seed:   seed,
		StatsCallback: func(s telemetry.Snapshot) {
			result.snapshots = append(result.snapshots, s)
		},
	})
	defer g.Unload()
	result.hallOfFame = g.HallOfFame()

	dt := cfg.World.DT
	warmupTicks := int32(warmupSec / dt)
	var belowSec float64

	for g.Tick() < fe.maxTicks {
		g.Update()

		tick := g.Tick()
		if tick < warmupTicks {
			continue
		}

		pop := g.Population()
		if pop == 0 {
			result.survivalTicks = tick
			return result
		}
		if pop < minViablePop {
			belowSec += dt
		} else {
			belowSec = 0
		}
		if belowSec >= extinctionGraceSec {
			result.survivalTicks = tick
			return result
		}
	}

	result.survivalTicks = fe.maxTicks
	return result
}

// Fitness combines survival and diversity: -(ticks × (1 + 0.2 × bonus)).
func Fitness(survivalTicks int32, bonus float64) float64 {
	return -(float64(survivalTicks) * (1.0 + diversityWeight*bonus))
}

// DiversityBonus scores how many species coexist and how much genetic
// variation they carry, averaged over the snapshots after warmup.
func DiversityBonus(snaps []telemetry.Snapshot) float64 {
	if len(snaps) <= diversityWarmupSnaps {
		return 0
	}
	var sum float64
	var n int
	for _, s := range snaps[diversityWarmupSnaps:] {
		if s.Population < minViablePop {
			continue
		}
		species := 1 - math.Exp(-float64(s.SpeciesCount-1)/speciesSaturation)
		genetic := 1 - math.Exp(-s.GeneticDiversity*10)
		sum += diversityWeightSpecies*clamp01(species) + diversityWeightGenetic*clamp01(genetic)
		n++
	}
	if n == 0 {
		return 0
	}
	return clamp01(sum / float64(n))
}

// clamp01 clamps x to [0, 1].
func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
