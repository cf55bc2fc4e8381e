package genetics

import "birdtwin/pkg/domain"

// PredictLocusOffspring crosses the parents at a single locus with a 2x2
// Punnett square and returns the probability of each distinct offspring
// phenotype. Each of the four gamete pairings is equally likely, so the
// result is symmetric in sire and dam.
func PredictLocusOffspring(locus domain.Locus, sire, dam domain.AllelePair) map[string]float64 {
	dist := make(map[string]float64, 4)
	for _, a := range sire {
		for _, b := range dam {
			phenotype := ResolvePhenotype(locus, domain.AllelePair{a, b})
			dist[phenotype] += 0.25
		}
	}
	return dist
}

// CrossLoci runs the single-locus cross for every locus both parents carry.
// Loci present in only one parent are skipped.
func CrossLoci(sire, dam domain.GeneticProfile) map[domain.Locus]map[string]float64 {
	out := make(map[domain.Locus]map[string]float64)
	for _, locus := range domain.Loci {
		sp, ok := sire[locus]
		if !ok {
			continue
		}
		dp, ok := dam[locus]
		if !ok {
			continue
		}
		out[locus] = PredictLocusOffspring(locus, sp, dp)
	}
	return out
}
