// Package genetics implements Mendelian phenotype resolution, Punnett-square
// offspring prediction, and Monte-Carlo breeding simulation over the eight
// calibrated plumage loci.
package genetics

import "birdtwin/pkg/domain"

// ResolvePhenotype maps an allele pair at a locus to its expressed phenotype
// label. The E locus resolves by dominance rank, the blue dilution locus Bl
// is incompletely dominant (heterozygotes express Blue, homozygotes Splash),
// and mottling Mo is recessive. Unknown loci resolve to the first allele's
// raw symbol so malformed profiles degrade visibly rather than panicking.
func ResolvePhenotype(locus domain.Locus, pair domain.AllelePair) string {
	switch locus {
	case domain.LocusE:
		return resolveELocus(pair)
	case domain.LocusS:
		if pair.Contains(domain.AlleleSilver) {
			return "Silver"
		}
		return "Gold"
	case domain.LocusB:
		if pair.Contains(domain.AlleleBarred) {
			return "Barred"
		}
		return "Non-Barred"
	case domain.LocusCo:
		if pair.Contains(domain.AlleleColumbian) {
			return "Columbian"
		}
		return "Non-Columbian"
	case domain.LocusPg:
		if pair.Contains(domain.AllelePatterned) {
			return "Patterned"
		}
		return "Non-Patterned"
	case domain.LocusMl:
		if pair.Contains(domain.AlleleMelanotic) {
			return "Melanotic"
		}
		return "Non-Melanotic"
	case domain.LocusMo:
		// Recessive: mottling only shows with two copies.
		if pair[0] == domain.AlleleMottled && pair[1] == domain.AlleleMottled {
			return "Mottled"
		}
		return "Non-Mottled"
	case domain.LocusBl:
		return resolveBlueLocus(pair)
	default:
		return string(pair[0])
	}
}

// eDominanceOrder ranks the E-locus alleles from most to least dominant.
var eDominanceOrder = []struct {
	allele    domain.Allele
	phenotype string
}{
	{domain.AlleleExtended, "Extended Black"},
	{domain.AlleleBirchen, "Birchen"},
	{domain.AlleleDominantWheaten, "Dominant Wheaten"},
	{domain.AlleleWildType, "Wild Type"},
	{domain.AlleleBrown, "Brown"},
}

func resolveELocus(pair domain.AllelePair) string {
	for _, rank := range eDominanceOrder {
		if pair.Contains(rank.allele) {
			return rank.phenotype
		}
	}
	return string(pair[0])
}

func resolveBlueLocus(pair domain.AllelePair) string {
	// Incomplete dominance: Bl/Bl washes out to Splash, Bl/bl+ dilutes to
	// Blue, bl+/bl+ leaves ground color untouched.
	switch {
	case pair[0] == domain.AlleleBlue && pair[1] == domain.AlleleBlue:
		return "Splash"
	case pair.Contains(domain.AlleleBlue):
		return "Blue"
	default:
		return "Non-Blue"
	}
}
