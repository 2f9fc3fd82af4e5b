// Package genetics implements diploid genomes: alleles, genes, mutation,
// crossover, phenotype expression and species similarity.
package genetics

// Allele is one copy of a locus.
type Allele struct {
	Value     float64
	Dominance float64 // in [0,1]
}

// Gene is a diploid locus. It always holds exactly two alleles.
type Gene struct {
	A, B Allele
}

// Expressed returns the dominance-weighted blend of both alleles.
// Weights are the dominances normalized to sum to 1; two recessive
// (zero-dominance) alleles blend evenly.
func (g Gene) Expressed() float64 {
	wa, wb := g.weights()
	return wa*g.A.Value + wb*g.B.Value
}

func (g Gene) weights() (float64, float64) {
	da, db := g.A.Dominance, g.B.Dominance
	if da < 0 {
		da = 0
	}
	if db < 0 {
		db = 0
	}
	sum := da + db
	if sum <= 0 {
		return 0.5, 0.5
	}
	return da / sum, db / sum
}

// Swap exchanges the two alleles.
func (g *Gene) Swap() {
	g.A, g.B = g.B, g.A
}

// allele returns a pointer to allele 0 (A) or 1 (B).
func (g *Gene) allele(i int) *Allele {
	if i == 0 {
		return &g.A
	}
	return &g.B
}
