package valuation

import (
	"birdtwin/internal/lifecycle"
	"birdtwin/pkg/domain"
)

// marketMultiplier combines the calibrated market factors. All factors
// commute, so application order is irrelevant.
func (e *Engine) marketMultiplier(twin domain.DigitalTwin) float64 {
	m := e.cal.Market
	multiplier := 1.0

	if cert, ok := m.CertificationMultipliers[string(twin.CertificationLevel)]; ok {
		multiplier *= cert
	}
	if twin.BreedingStatus == domain.BreedingProven && twin.SuccessfulBreedings >= m.ProvenBreederMinCount {
		multiplier *= m.ProvenBreederBonus
	}
	if twin.ShowWins >= m.ShowRecordMinWins {
		multiplier *= m.ShowRecordBonus
	}
	if twin.CurrentHealthStatus == domain.HealthInjured || twin.CurrentHealthStatus == domain.HealthSick {
		multiplier *= m.ActiveInjuryPenalty
	}
	if stage, ok := lifecycle.StageFromName(twin.LifecycleStage); ok && stage.HasDeclineFactors() {
		multiplier *= m.SeniorDeclinePenalty
	}

	return multiplier
}

// estimateValue derives the monetary estimate from the final valuation
// score: a banded base value, a within-band scaling step, and the gender
// market factor. All three factors are calibration policy, not constants.
func (e *Engine) estimateValue(score int, isMale bool) float64 {
	m := e.cal.Market

	base := m.ValueBands[len(m.ValueBands)-1].BaseValue
	for _, band := range m.ValueBands {
		if score >= band.MinScore {
			base = band.BaseValue
			break
		}
	}

	value := base * (1 + float64(score%m.WithinBandModulus)*m.WithinBandStep)
	if !isMale {
		value *= m.FemaleValueFactor
	}
	return value
}
