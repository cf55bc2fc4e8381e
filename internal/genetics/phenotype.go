package genetics

import "birdtwin/pkg/domain"

// Prediction is the full expressed phenotype of a genetic profile: one label
// per locus plus the composite local Aseel type the combination maps to.
type Prediction struct {
	Loci       map[domain.Locus]string `json:"loci"`
	LocalType  string                  `json:"local_type"`
	Confidence float64                 `json:"confidence"`
}

// taxonomyRule matches a combination of locus phenotypes to a local Aseel
// variety name. Rules are evaluated in order; the first full match wins, so
// more specific combinations must precede their generic fallbacks.
type taxonomyRule struct {
	name     string
	requires map[domain.Locus]string
}

var taxonomy = []taxonomyRule{
	{"Safed Neela (Splash)", map[domain.Locus]string{domain.LocusE: "Extended Black", domain.LocusBl: "Splash"}},
	{"Neela (Blue)", map[domain.Locus]string{domain.LocusE: "Extended Black", domain.LocusBl: "Blue"}},
	{"Chitkabra (Mottled Black)", map[domain.Locus]string{domain.LocusE: "Extended Black", domain.LocusMo: "Mottled"}},
	{"Kala (Self Black)", map[domain.Locus]string{domain.LocusE: "Extended Black", domain.LocusBl: "Non-Blue", domain.LocusMo: "Non-Mottled"}},
	{"Chandi Birchen (Silver Birchen)", map[domain.Locus]string{domain.LocusE: "Birchen", domain.LocusS: "Silver"}},
	{"Sona Birchen (Gold Birchen)", map[domain.Locus]string{domain.LocusE: "Birchen"}},
	{"Safed Peela (Silver Wheaten)", map[domain.Locus]string{domain.LocusE: "Dominant Wheaten", domain.LocusS: "Silver"}},
	{"Peela (Wheaten)", map[domain.Locus]string{domain.LocusE: "Dominant Wheaten"}},
	{"Kagar (Barred Partridge)", map[domain.Locus]string{domain.LocusE: "Wild Type", domain.LocusB: "Barred"}},
	{"Chandi Kulang (Silver Columbian)", map[domain.Locus]string{domain.LocusE: "Wild Type", domain.LocusS: "Silver", domain.LocusCo: "Columbian"}},
	{"Lakha (Red Columbian)", map[domain.Locus]string{domain.LocusE: "Wild Type", domain.LocusCo: "Columbian"}},
	{"Chitta (Speckled Red)", map[domain.Locus]string{domain.LocusE: "Wild Type", domain.LocusMo: "Mottled"}},
	{"Gulkhairi (Dark Laced)", map[domain.Locus]string{domain.LocusE: "Wild Type", domain.LocusMl: "Melanotic", domain.LocusPg: "Patterned"}},
	{"Jangli (Black-Breasted Red)", map[domain.Locus]string{domain.LocusE: "Wild Type"}},
	{"Bhura Lehria (Laced Brown)", map[domain.Locus]string{domain.LocusE: "Brown", domain.LocusPg: "Patterned"}},
	{"Bhura (Brown)", map[domain.Locus]string{domain.LocusE: "Brown"}},
}

// mixedType is the fallback label for combinations no taxonomy rule covers.
const mixedType = "Mishrit (Mixed)"

// PredictPhenotype resolves every locus present in the profile and classifies
// the combination into a local variety. Loci absent from the profile are
// skipped; a profile missing the E locus always classifies as mixed.
func PredictPhenotype(profile domain.GeneticProfile, confidence float64) Prediction {
	loci := make(map[domain.Locus]string, len(profile))
	for _, locus := range domain.Loci {
		pair, ok := profile[locus]
		if !ok {
			continue
		}
		loci[locus] = ResolvePhenotype(locus, pair)
	}
	return Prediction{
		Loci:       loci,
		LocalType:  classify(loci),
		Confidence: confidence,
	}
}

func classify(loci map[domain.Locus]string) string {
	for _, rule := range taxonomy {
		if matches(loci, rule.requires) {
			return rule.name
		}
	}
	return mixedType
}

func matches(loci map[domain.Locus]string, requires map[domain.Locus]string) bool {
	for locus, want := range requires {
		if loci[locus] != want {
			return false
		}
	}
	return true
}
