package genetics

import (
	"math"
	"testing"

	"birdtwin/pkg/domain"
)

func TestPredictLocusOffspringHeteroCross(t *testing.T) {
	sire := domain.AllelePair{domain.AlleleExtended, domain.AlleleWildType}
	dam := domain.AllelePair{domain.AlleleWildType, domain.AlleleWildType}

	dist := PredictLocusOffspring(domain.LocusE, sire, dam)
	if len(dist) != 2 {
		t.Fatalf("expected 2 phenotypes, got %v", dist)
	}
	if math.Abs(dist["Extended Black"]-0.5) > 1e-9 {
		t.Fatalf("Extended Black: got %v want 0.5", dist["Extended Black"])
	}
	if math.Abs(dist["Wild Type"]-0.5) > 1e-9 {
		t.Fatalf("Wild Type: got %v want 0.5", dist["Wild Type"])
	}
}

func TestPredictLocusOffspringIncompleteDominance(t *testing.T) {
	blue := domain.AllelePair{domain.AlleleBlue, domain.AlleleNonBlue}

	// Blue x Blue: 1/4 Splash, 1/2 Blue, 1/4 Non-Blue.
	dist := PredictLocusOffspring(domain.LocusBl, blue, blue)
	want := map[string]float64{"Splash": 0.25, "Blue": 0.5, "Non-Blue": 0.25}
	for phenotype, p := range want {
		if math.Abs(dist[phenotype]-p) > 1e-9 {
			t.Errorf("%s: got %v want %v", phenotype, dist[phenotype], p)
		}
	}
}

func TestPredictLocusOffspringRecessiveCarriers(t *testing.T) {
	carrier := domain.AllelePair{domain.AlleleMottled, domain.AlleleNonMottled}

	// Carrier x carrier: only 1/4 express the recessive trait.
	dist := PredictLocusOffspring(domain.LocusMo, carrier, carrier)
	if math.Abs(dist["Mottled"]-0.25) > 1e-9 {
		t.Fatalf("Mottled: got %v want 0.25", dist["Mottled"])
	}
	if math.Abs(dist["Non-Mottled"]-0.75) > 1e-9 {
		t.Fatalf("Non-Mottled: got %v want 0.75", dist["Non-Mottled"])
	}
}

func TestPredictLocusOffspringSymmetric(t *testing.T) {
	a := domain.AllelePair{domain.AlleleExtended, domain.AlleleBrown}
	b := domain.AllelePair{domain.AlleleBirchen, domain.AlleleWildType}

	forward := PredictLocusOffspring(domain.LocusE, a, b)
	reverse := PredictLocusOffspring(domain.LocusE, b, a)
	if len(forward) != len(reverse) {
		t.Fatalf("asymmetric outcome counts: %v vs %v", forward, reverse)
	}
	for phenotype, p := range forward {
		if math.Abs(reverse[phenotype]-p) > 1e-9 {
			t.Fatalf("asymmetric probability for %s: %v vs %v", phenotype, p, reverse[phenotype])
		}
	}
}

func TestPredictLocusOffspringProbabilitiesSumToOne(t *testing.T) {
	a := domain.AllelePair{domain.AlleleExtended, domain.AlleleWildType}
	b := domain.AllelePair{domain.AlleleBirchen, domain.AlleleBrown}
	dist := PredictLocusOffspring(domain.LocusE, a, b)
	sum := 0.0
	for _, p := range dist {
		sum += p
	}
	if math.Abs(sum-1.0) > 1e-9 {
		t.Fatalf("probabilities sum to %v", sum)
	}
}

func TestCrossLociSkipsMissing(t *testing.T) {
	sire := domain.GeneticProfile{
		domain.LocusE: {domain.AlleleExtended, domain.AlleleWildType},
		domain.LocusS: {domain.AlleleSilver, domain.AlleleGold},
	}
	dam := domain.GeneticProfile{
		domain.LocusE: {domain.AlleleWildType, domain.AlleleWildType},
	}
	out := CrossLoci(sire, dam)
	if len(out) != 1 {
		t.Fatalf("expected only the shared locus, got %v", out)
	}
	if _, ok := out[domain.LocusE]; !ok {
		t.Fatal("missing E locus cross")
	}
}
