package genetics

import "github.com/pthm-cable/biome/config"

// Phenotype maps trait names to expressed values.
type Phenotype map[string]float64

// Get returns the trait value or 0 when absent.
func (p Phenotype) Get(trait string) float64 {
	return p[trait]
}

var sexModifiers = map[Sex]map[string]float64{
	Male: {
		"speed":             1.05,
		"size":              1.10,
		"energy_efficiency": 0.95,
		"max_age":           0.95,
	},
	Female: {
		"speed":             0.95,
		"size":              0.95,
		"energy_efficiency": 1.05,
		"max_age":           1.05,
	},
}

// SexModifier returns the multiplier applied to a trait for the given sex.
func SexModifier(sex Sex, trait string) float64 {
	if m, ok := sexModifiers[sex][trait]; ok {
		return m
	}
	return 1.0
}

// ComputePhenotype derives trait values from a genome. Each trait is the
// mean expressed value of its loci, scaled by the sex modifier and clamped
// to its range. A trait none of whose loci are present is 0.
func ComputePhenotype(g *Genome, ranges map[string]config.TraitRange) Phenotype {
	p := make(Phenotype, len(TraitGenes))
	for trait, loci := range TraitGenes {
		sum, n := 0.0, 0
		for _, l := range loci {
			if gene, ok := g.Genes[l]; ok {
				sum += gene.Expressed()
				n++
			}
		}
		if n == 0 {
			p[trait] = 0
			continue
		}
		r := rangeOf(ranges, trait)
		p[trait] = clamp(sum/float64(n)*SexModifier(g.Sex, trait), r.Lo, r.Hi)
	}
	return p
}
