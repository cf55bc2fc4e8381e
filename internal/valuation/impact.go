package valuation

import (
	"birdtwin/pkg/domain"
)

// ProcessEventImpact applies one newly-arrived event incrementally: it
// updates the counters the event type affects, recomputes only the touched
// component score, applies any per-score deltas carried on the event, and
// reapplies the shared composite weighting and market multiplier. Unaffected
// components keep their last stored value; skipping their recomputation is
// the point of this path. Unknown event types leave counters untouched and
// still pass through the composite step.
func (e *Engine) ProcessEventImpact(twin domain.DigitalTwin, event domain.BirdEvent) domain.DigitalTwin {
	updated := twin.Clone()

	switch event.Type {
	case domain.EventWeightRecorded:
		if event.NumericValue != nil {
			updated.WeightKg = *event.NumericValue
		}
		updated.MorphologyScore = e.MorphologyScore(updated)

	case domain.EventFightWin:
		updated.TotalFights++
		updated.FightWins++
		updated.PerformanceScore = e.PerformanceScore(updated)

	case domain.EventFightLoss, domain.EventFightDraw:
		updated.TotalFights++
		updated.PerformanceScore = e.PerformanceScore(updated)

	case domain.EventInjury:
		updated.InjuryCount++
		updated.CurrentHealthStatus = domain.HealthInjured
		updated.HealthScore = e.HealthScore(updated)

	case domain.EventRecovery:
		updated.CurrentHealthStatus = domain.HealthRecovering
		updated.HealthScore = e.HealthScore(updated)

	case domain.EventVaccination:
		updated.VaccinationCount++
		updated.HealthScore = e.HealthScore(updated)

	case domain.EventBreedingSuccess:
		updated.TotalBreedingAttempts++
		updated.SuccessfulBreedings++
		if event.NumericValue != nil {
			updated.TotalOffspring += int(*event.NumericValue)
		}
		if updated.SuccessfulBreedings >= e.cal.Market.ProvenBreederMinCount {
			updated.BreedingStatus = domain.BreedingProven
		} else if updated.BreedingStatus == domain.BreedingUntested {
			updated.BreedingStatus = domain.BreedingActive
		}
		updated.GeneticsScore = e.GeneticsScore(updated)

	case domain.EventBreedingFailure:
		updated.TotalBreedingAttempts++
		if updated.BreedingStatus == domain.BreedingUntested {
			updated.BreedingStatus = domain.BreedingActive
		}

	case domain.EventShowResult:
		updated.TotalShows++
		if event.NumericValue != nil {
			placement := int(*event.NumericValue)
			if placement == 1 {
				updated.ShowWins++
			}
			if placement > 0 && (updated.BestPlacement == nil || placement < *updated.BestPlacement) {
				updated.BestPlacement = domain.Int(placement)
			}
		}
		updated.PerformanceScore = e.PerformanceScore(updated)
	}

	applyDelta(&updated.MorphologyScore, event.MorphologyDelta)
	applyDelta(&updated.PerformanceScore, event.PerformanceDelta)
	applyDelta(&updated.HealthScore, event.HealthDelta)

	e.recompose(&updated)
	if event.MarketDelta != nil {
		updated.EstimatedValue += *event.MarketDelta
	}
	updated.UpdatedAt = e.nowFn()
	return updated
}

func applyDelta(score *float64, delta *float64) {
	if delta == nil {
		return
	}
	*score = clamp100(*score + *delta)
}
