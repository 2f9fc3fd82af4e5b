package genetics

import (
	"math/rand"
	"sort"
)

// FromParents builds an offspring genome taking one allele per locus from
// each parent. Each parent contributes from a "phase" (its A or B allele)
// that persists across adjacent loci and is re-rolled with probability
// crossoverRate at every locus after the first. Loci carried by only one
// parent are copied whole. The offspring is female with probability
// femaleRatio.
func FromParents(a, b *Genome, rng *rand.Rand, crossoverRate, femaleRatio float64) *Genome {
	child := &Genome{Genes: make(map[string]*Gene, len(a.Genes))}

	loci := unionLoci(a, b)
	phaseA, phaseB := rng.Intn(2), rng.Intn(2)
	for i, locus := range loci {
		if i > 0 {
			if rng.Float64() < crossoverRate {
				phaseA = rng.Intn(2)
			}
			if rng.Float64() < crossoverRate {
				phaseB = rng.Intn(2)
			}
		}

		ga, okA := a.Genes[locus]
		gb, okB := b.Genes[locus]
		switch {
		case okA && okB:
			child.Genes[locus] = &Gene{A: *ga.allele(phaseA), B: *gb.allele(phaseB)}
		case okA:
			gc := *ga
			child.Genes[locus] = &gc
		default:
			gc := *gb
			child.Genes[locus] = &gc
		}
	}

	child.Sex = Male
	if rng.Float64() < femaleRatio {
		child.Sex = Female
	}
	return child
}

func unionLoci(a, b *Genome) []string {
	seen := make(map[string]struct{}, len(a.Genes))
	loci := make([]string, 0, len(a.Genes))
	for _, g := range []*Genome{a, b} {
		for l := range g.Genes {
			if _, ok := seen[l]; !ok {
				seen[l] = struct{}{}
				loci = append(loci, l)
			}
		}
	}
	sort.Strings(loci)
	return loci
}
