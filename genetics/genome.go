package genetics

import (
	"math/rand"
	"sort"

	"github.com/pthm-cable/biome/config"
)

// Sex of an agent.
type Sex uint8

const (
	Male Sex = iota
	Female
)

func (s Sex) String() string {
	if s == Female {
		return "female"
	}
	return "male"
}

// TraitGenes maps each phenotype trait to the loci that encode it.
var TraitGenes = map[string][]string{
	"speed":              {"speed_1", "speed_2"},
	"size":               {"size_1", "size_2"},
	"aggression":         {"aggression"},
	"energy_efficiency":  {"metabolism_1", "metabolism_2"},
	"max_age":            {"longevity_1", "longevity_2"},
	"vision":             {"vision"},
	"fertility":          {"fertility"},
	"habitat_preference": {"habitat"},
	"immunity":           {"immunity"},
}

// locusTrait is the inverse of TraitGenes.
var locusTrait = func() map[string]string {
	m := make(map[string]string)
	for trait, loci := range TraitGenes {
		for _, l := range loci {
			m[l] = trait
		}
	}
	return m
}()

// TraitOf returns the trait a locus contributes to.
func TraitOf(locus string) (string, bool) {
	t, ok := locusTrait[locus]
	return t, ok
}

// Traits returns all trait names in sorted order.
func Traits() []string {
	names := make([]string, 0, len(TraitGenes))
	for t := range TraitGenes {
		names = append(names, t)
	}
	sort.Strings(names)
	return names
}

// Genome is an agent's heritable material.
type Genome struct {
	Sex   Sex
	Genes map[string]*Gene
}

// Loci returns the genome's locus names in sorted order.
// All randomized operations walk loci in this order so a seeded RNG
// reproduces the same results.
func (g *Genome) Loci() []string {
	loci := make([]string, 0, len(g.Genes))
	for l := range g.Genes {
		loci = append(loci, l)
	}
	sort.Strings(loci)
	return loci
}

// Clone returns a deep copy.
func (g *Genome) Clone() *Genome {
	cp := &Genome{Sex: g.Sex, Genes: make(map[string]*Gene, len(g.Genes))}
	for l, gene := range g.Genes {
		gc := *gene
		cp.Genes[l] = &gc
	}
	return cp
}

// founderHeterozygosity is the spread between a founder's two alleles as a
// fraction of the trait span.
const founderHeterozygosity = 0.05

// NewRandomGenome draws each locus value uniformly inside its trait's range.
// The second allele sits close to the first and dominances are uniform.
func NewRandomGenome(rng *rand.Rand, sex Sex, ranges map[string]config.TraitRange) *Genome {
	g := &Genome{Sex: sex, Genes: make(map[string]*Gene)}
	for _, trait := range Traits() {
		r := rangeOf(ranges, trait)
		for _, locus := range TraitGenes[trait] {
			v := r.Lo + rng.Float64()*r.Span()
			w := clamp(v+rng.NormFloat64()*founderHeterozygosity*r.Span(), r.Lo, r.Hi)
			g.Genes[locus] = &Gene{
				A: Allele{Value: v, Dominance: rng.Float64()},
				B: Allele{Value: w, Dominance: rng.Float64()},
			}
		}
	}
	return g
}

// Variant returns a copy of g with the given sex whose allele values are
// jittered by N(0, spread*span) and clamped to their trait range.
// Founders of one species are variants of a shared template.
func (g *Genome) Variant(rng *rand.Rand, sex Sex, spread float64, ranges map[string]config.TraitRange) *Genome {
	v := g.Clone()
	v.Sex = sex
	for _, locus := range v.Loci() {
		trait, _ := TraitOf(locus)
		r := rangeOf(ranges, trait)
		gene := v.Genes[locus]
		gene.A.Value = clamp(gene.A.Value+rng.NormFloat64()*spread*r.Span(), r.Lo, r.Hi)
		gene.B.Value = clamp(gene.B.Value+rng.NormFloat64()*spread*r.Span(), r.Lo, r.Hi)
	}
	return v
}

func rangeOf(ranges map[string]config.TraitRange, trait string) config.TraitRange {
	if r, ok := ranges[trait]; ok {
		return r
	}
	return config.TraitRange{Lo: 0, Hi: 1}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
