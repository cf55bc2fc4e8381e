package genetics

import (
	"math/rand/v2"

	"birdtwin/pkg/domain"
)

// Simulator draws random offspring genotypes from a parental cross.
type Simulator interface {
	// SampleOffspring produces one offspring profile by drawing a random
	// allele from each parent at every shared locus.
	SampleOffspring(sire, dam domain.GeneticProfile) domain.GeneticProfile
}

// MendelianSimulator samples offspring by independent assortment: one allele
// is drawn uniformly from each parent per locus. The random source is
// injected so simulations are reproducible under a fixed seed.
type MendelianSimulator struct {
	rng *rand.Rand
}

// NewMendelianSimulator builds a simulator over the given source. A nil rng
// falls back to a fresh PCG source seeded from the zero state, which keeps
// the zero value usable in tests.
func NewMendelianSimulator(rng *rand.Rand) *MendelianSimulator {
	if rng == nil {
		rng = rand.New(rand.NewPCG(0, 0))
	}
	return &MendelianSimulator{rng: rng}
}

// NewSeededSimulator builds a reproducible simulator from a single seed.
func NewSeededSimulator(seed uint64) *MendelianSimulator {
	return &MendelianSimulator{rng: rand.New(rand.NewPCG(seed, seed))}
}

// SampleOffspring implements Simulator.
func (s *MendelianSimulator) SampleOffspring(sire, dam domain.GeneticProfile) domain.GeneticProfile {
	child := make(domain.GeneticProfile)
	for _, locus := range domain.Loci {
		sp, ok := sire[locus]
		if !ok {
			continue
		}
		dp, ok := dam[locus]
		if !ok {
			continue
		}
		child[locus] = domain.AllelePair{
			sp[s.rng.IntN(2)],
			dp[s.rng.IntN(2)],
		}
	}
	return child
}
