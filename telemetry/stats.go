package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Snapshot holds population aggregates at one point in simulated time.
type Snapshot struct {
	Tick    int32   `csv:"tick"`
	SimTime float64 `csv:"sim_time"`

	Population   int `csv:"population"`
	Food         int `csv:"food"`
	Males        int `csv:"males"`
	Females      int `csv:"females"`
	SpeciesCount int `csv:"species"`

	// Activity at snapshot time
	Attackers int `csv:"attackers"`
	Maters    int `csv:"maters"`
	Infected  int `csv:"infected"`

	// Events since the previous snapshot
	Births int `csv:"births"`
	Deaths int `csv:"deaths"`
	Kills  int `csv:"kills"`

	MeanEnergy    float64 `csv:"energy_mean"`
	EnergyP10     float64 `csv:"energy_p10"`
	EnergyP50     float64 `csv:"energy_p50"`
	EnergyP90     float64 `csv:"energy_p90"`
	MeanHydration float64 `csv:"hydration_mean"`
	MeanAge       float64 `csv:"age_mean"`
	MaxGeneration int     `csv:"max_generation"`

	// Population variance of the aggression trait.
	GeneticDiversity float64 `csv:"genetic_diversity"`

	MeanSpeed      float64 `csv:"speed_mean"`
	MeanSize       float64 `csv:"size_mean"`
	MeanAggression float64 `csv:"aggression_mean"`

	SpeciesCounts map[int]int        `csv:"-"`
	SpeciesBySex  map[int][2]int     `csv:"-"` // [males, females]
	TraitMeans    map[string]float64 `csv:"-"`
}

// Percentile calculates the p-th percentile of a sorted slice.
// p should be in [0, 1]. Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	idx := p * float64(n-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}

	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// ComputeEnergyStats calculates mean and percentiles from energy values.
func ComputeEnergyStats(values []float64) (mean, p10, p50, p90 float64) {
	if len(values) == 0 {
		return 0, 0, 0, 0
	}
	mean = stat.Mean(values, nil)

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	return mean, Percentile(sorted, 0.10), Percentile(sorted, 0.50), Percentile(sorted, 0.90)
}

// GeneticDiversity is the population variance of the given trait values.
func GeneticDiversity(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	_, variance := stat.PopMeanVariance(values, nil)
	return variance
}

// LogValue implements slog.LogValuer for structured logging.
func (s Snapshot) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("tick", int(s.Tick)),
		slog.Float64("sim_time", s.SimTime),
		slog.Int("population", s.Population),
		slog.Int("food", s.Food),
		slog.Int("males", s.Males),
		slog.Int("females", s.Females),
		slog.Int("species", s.SpeciesCount),
		slog.Int("births", s.Births),
		slog.Int("deaths", s.Deaths),
		slog.Int("kills", s.Kills),
		slog.Int("infected", s.Infected),
		slog.Float64("energy_mean", s.MeanEnergy),
		slog.Float64("hydration_mean", s.MeanHydration),
		slog.Int("max_generation", s.MaxGeneration),
		slog.Float64("genetic_diversity", s.GeneticDiversity),
	)
}

// LogStats logs the snapshot using slog.
func (s Snapshot) LogStats() {
	slog.Info("stats",
		"tick", s.Tick,
		"sim_time", s.SimTime,
		"population", s.Population,
		"food", s.Food,
		"males", s.Males,
		"females", s.Females,
		"species", s.SpeciesCount,
		"attackers", s.Attackers,
		"maters", s.Maters,
		"infected", s.Infected,
		"births", s.Births,
		"deaths", s.Deaths,
		"kills", s.Kills,
		"energy_mean", s.MeanEnergy,
		"energy_p50", s.EnergyP50,
		"hydration_mean", s.MeanHydration,
		"age_mean", s.MeanAge,
		"max_generation", s.MaxGeneration,
		"genetic_diversity", s.GeneticDiversity,
	)
}
