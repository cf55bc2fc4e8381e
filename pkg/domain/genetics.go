package domain

// Locus identifies one of the eight independently assorting plumage loci
// tracked on a genetic profile.
type Locus string

// Tracked loci. Symbols follow the standard poultry genetics nomenclature.
const (
	LocusE  Locus = "E"  // extension (base colour)
	LocusS  Locus = "S"  // silver
	LocusB  Locus = "B"  // barring
	LocusCo Locus = "Co" // columbian restriction
	LocusPg Locus = "Pg" // pattern gene
	LocusMl Locus = "Ml" // melanotic
	LocusMo Locus = "Mo" // mottling (recessive)
	LocusBl Locus = "Bl" // blue (incomplete dominance)
)

// Loci lists all tracked loci in canonical order. Iteration over a profile
// always follows this order so derived output is deterministic.
var Loci = [8]Locus{LocusE, LocusS, LocusB, LocusCo, LocusPg, LocusMl, LocusMo, LocusBl}

// Allele is a single allele symbol at one locus.
type Allele string

// E-locus alleles.
const (
	AlleleExtended        Allele = "E"
	AlleleBirchen         Allele = "ER"
	AlleleDominantWheaten Allele = "eWh"
	AlleleWildType        Allele = "e+"
	AlleleBrown           Allele = "eb"
)

// Single-pair loci carry one dominant and one wild-type/recessive allele.
const (
	AlleleSilver       Allele = "S"
	AlleleGold         Allele = "s+"
	AlleleBarred       Allele = "B"
	AlleleNonBarred    Allele = "b+"
	AlleleColumbian    Allele = "Co"
	AlleleNonColumbian Allele = "co+"
	AllelePatterned    Allele = "Pg"
	AlleleNonPatterned Allele = "pg+"
	AlleleMelanotic    Allele = "Ml"
	AlleleNonMelanotic Allele = "ml+"
	AlleleMottled      Allele = "mo"
	AlleleNonMottled   Allele = "Mo+"
	AlleleBlue         Allele = "Bl"
	AlleleNonBlue      Allele = "bl+"
)

// AllelePair is the diploid genotype at one locus. The pair is conceptually
// unordered; dominance resolution treats both orders identically.
type AllelePair [2]Allele

// Contains reports whether either position carries the allele.
func (p AllelePair) Contains(a Allele) bool { return p[0] == a || p[1] == a }

// Homozygous reports whether both positions carry the allele.
func (p AllelePair) Homozygous(a Allele) bool { return p[0] == a && p[1] == a }

// GeneticProfile maps each tracked locus to its diploid allele pair.
type GeneticProfile map[Locus]AllelePair

// Clone returns an independent copy of the profile.
func (g GeneticProfile) Clone() GeneticProfile {
	if g == nil {
		return nil
	}
	cp := make(GeneticProfile, len(g))
	for locus, pair := range g {
		cp[locus] = pair
	}
	return cp
}
