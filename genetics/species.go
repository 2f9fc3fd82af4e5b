package genetics

import (
	"math"

	"github.com/pthm-cable/biome/config"
)

// Similarity returns 1 minus the mean normalized difference of expressed
// values over loci both genomes carry. Each locus difference is divided by
// its trait's span and capped at 1. Genomes with no shared loci score 0.
func Similarity(a, b *Genome, ranges map[string]config.TraitRange) float64 {
	sum, n := 0.0, 0
	for _, l := range a.Loci() {
		ga := a.Genes[l]
		gb, ok := b.Genes[l]
		if !ok {
			continue
		}
		trait, _ := TraitOf(l)
		d := math.Abs(ga.Expressed()-gb.Expressed()) / rangeOf(ranges, trait).Span()
		sum += math.Min(1, d)
		n++
	}
	if n == 0 {
		return 0
	}
	return 1 - sum/float64(n)
}

// SameSpecies reports whether two genomes are similar enough to share a
// species.
func SameSpecies(a, b *Genome, threshold float64, ranges map[string]config.TraitRange) bool {
	return Similarity(a, b, ranges) >= threshold
}

// SpeciesPredicate decides whether two genomes belong to the same species.
type SpeciesPredicate func(a, b *Genome) bool

// ThresholdPredicate classifies genomes as conspecific when their
// similarity reaches threshold.
func ThresholdPredicate(threshold float64, ranges map[string]config.TraitRange) SpeciesPredicate {
	return func(a, b *Genome) bool {
		return SameSpecies(a, b, threshold, ranges)
	}
}

// SpeciesRegistry hands out species ids.
type SpeciesRegistry struct {
	next int
}

// NewSpeciesRegistry returns a registry whose first new id is first.
func NewSpeciesRegistry(first int) *SpeciesRegistry {
	return &SpeciesRegistry{next: first}
}

// Next returns a fresh species id.
func (r *SpeciesRegistry) Next() int {
	id := r.next
	r.next++
	return id
}
