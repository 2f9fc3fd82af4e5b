package genetics

import "math/rand"

// MutationKind is the category a mutation event falls into.
type MutationKind uint8

const (
	PointMutation MutationKind = iota
	DominanceMutation
	SwapMutation
	LargeMutation
)

func (k MutationKind) String() string {
	switch k {
	case PointMutation:
		return "point"
	case DominanceMutation:
		return "dominance"
	case SwapMutation:
		return "swap"
	case LargeMutation:
		return "large"
	}
	return "unknown"
}

// MutationParams controls one mutation pass over a genome.
type MutationParams struct {
	Rate            float64 // per-gene probability for this pass
	PointStdDev     float64
	LargeStdDev     float64
	DominanceStdDev float64
	Scale           float64 // multiplies the point and large std devs (0.5 for somatic)
}

// Category thresholds: 70% point, 15% dominance, 10% swap, 5% large.
const (
	pointCutoff     = 0.70
	dominanceCutoff = 0.85
	swapCutoff      = 0.95
)

// MutateGene applies one mutation event to gene and reports its kind.
func MutateGene(gene *Gene, rng *rand.Rand, p MutationParams) MutationKind {
	u := rng.Float64()
	switch {
	case u < pointCutoff:
		a := gene.allele(rng.Intn(2))
		a.Value += rng.NormFloat64() * p.PointStdDev * p.Scale
		return PointMutation
	case u < dominanceCutoff:
		a := gene.allele(rng.Intn(2))
		a.Dominance = clamp(a.Dominance+rng.NormFloat64()*p.DominanceStdDev, 0, 1)
		return DominanceMutation
	case u < swapCutoff:
		gene.Swap()
		return SwapMutation
	default:
		a := gene.allele(rng.Intn(2))
		a.Value += rng.NormFloat64() * p.LargeStdDev * p.Scale
		return LargeMutation
	}
}

// Mutate gives every gene an independent chance p.Rate to mutate and
// returns how many did.
func Mutate(g *Genome, rng *rand.Rand, p MutationParams) int {
	if p.Rate <= 0 {
		return 0
	}
	n := 0
	for _, locus := range g.Loci() {
		if rng.Float64() < p.Rate {
			MutateGene(g.Genes[locus], rng, p)
			n++
		}
	}
	return n
}
