package genetics

import (
	"errors"
	"sort"

	"birdtwin/pkg/domain"
)

// ErrInvalidSampleSize is returned when a Monte-Carlo run is requested with a
// non-positive number of samples.
var ErrInvalidSampleSize = errors.New("genetics: sample size must be positive")

// DistributionEntry is one composite phenotype bucket in a simulated
// offspring distribution. Representative is the full prediction of the first
// sampled offspring in the bucket, so callers get the per-locus breakdown
// behind the label.
type DistributionEntry struct {
	LocalType      string     `json:"local_type"`
	Count          int        `json:"count"`
	Probability    float64    `json:"probability"`
	Representative Prediction `json:"representative"`
}

// PredictOffspringDistribution simulates sampleSize offspring from the cross
// and tallies the composite local types they express. Entries are sorted by
// descending probability, ties broken alphabetically so equal-probability
// buckets have a stable order.
func PredictOffspringDistribution(sim Simulator, sire, dam domain.GeneticProfile, sampleSize int, confidence float64) ([]DistributionEntry, error) {
	if sampleSize <= 0 {
		return nil, ErrInvalidSampleSize
	}

	type bucket struct {
		count          int
		representative Prediction
	}
	tally := make(map[string]*bucket)
	for i := 0; i < sampleSize; i++ {
		child := sim.SampleOffspring(sire, dam)
		prediction := PredictPhenotype(child, confidence)
		b, ok := tally[prediction.LocalType]
		if !ok {
			b = &bucket{representative: prediction}
			tally[prediction.LocalType] = b
		}
		b.count++
	}

	entries := make([]DistributionEntry, 0, len(tally))
	for localType, b := range tally {
		entries = append(entries, DistributionEntry{
			LocalType:      localType,
			Count:          b.count,
			Probability:    float64(b.count) / float64(sampleSize),
			Representative: b.representative,
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Count != entries[j].Count {
			return entries[i].Count > entries[j].Count
		}
		return entries[i].LocalType < entries[j].LocalType
	})
	return entries, nil
}
