// Package valuation scores a twin against the breed standard and the
// modelled market: four component scores, a weighted composite, market
// multipliers and a monetary estimate. Like the lifecycle engine it is pure
// snapshot-in/snapshot-out.
package valuation

import (
	"math"
	"time"

	"birdtwin/internal/config"
	"birdtwin/internal/lifecycle"
	"birdtwin/pkg/domain"
)

// Component score bases. Each component starts from its base and accumulates
// banded adjustments before clamping to [0,100].
const (
	morphologyBase  = 50.0
	geneticsBase    = 40.0
	performanceBase = 30.0
	healthBase      = 60.0
)

// Engine computes valuations. Stage-derived ideal-weight lookups are
// delegated to the lifecycle engine.
type Engine struct {
	cal   *config.Calibration
	lc    *lifecycle.Engine
	nowFn func() time.Time
}

// NewEngine constructs a valuation engine over the shared calibration.
func NewEngine(cal *config.Calibration, lc *lifecycle.Engine) *Engine {
	return &Engine{
		cal:   cal,
		lc:    lc,
		nowFn: func() time.Time { return time.Now().UTC() },
	}
}

// WithNow overrides the engine clock. Intended for tests.
func (e *Engine) WithNow(nowFn func() time.Time) *Engine {
	e.nowFn = nowFn
	return e
}

// ComputeFullValuation recomputes all four component scores, the weighted
// composite, the market multiplier and the monetary estimate, returning a new
// snapshot. The function is total: missing attributes fall into their
// documented neutral bands.
func (e *Engine) ComputeFullValuation(twin domain.DigitalTwin) domain.DigitalTwin {
	updated := twin.Clone()
	updated.MorphologyScore = e.MorphologyScore(twin)
	updated.GeneticsScore = e.GeneticsScore(twin)
	updated.PerformanceScore = e.PerformanceScore(twin)
	updated.HealthScore = e.HealthScore(twin)
	e.recompose(&updated)
	updated.UpdatedAt = e.nowFn()
	return updated
}

// recompose applies the shared composite weighting, market multiplier and
// monetary estimate from the component scores already stored on the twin.
// Both the full and the incremental valuation path end here, so the two can
// never drift apart.
func (e *Engine) recompose(twin *domain.DigitalTwin) {
	w := e.cal.Valuation
	composite := twin.MorphologyScore*w.WeightMorphology +
		twin.GeneticsScore*w.WeightGenetics +
		twin.PerformanceScore*w.WeightPerformance +
		twin.HealthScore*w.WeightHealth
	composite *= e.marketMultiplier(*twin)
	score := int(math.Round(clamp100(composite)))
	twin.ValuationScore = score
	twin.EstimatedValue = e.estimateValue(score, twin.IsMale())
}

// MorphologyScore scores body structure: weight ratio banding against the
// stage ideal, bone density, and the gender height band.
func (e *Engine) MorphologyScore(twin domain.DigitalTwin) float64 {
	score := morphologyBase

	var ideal float64
	if stage, ok := lifecycle.StageFromName(twin.LifecycleStage); ok {
		ideal = e.lc.IdealWeightKg(stage, twin.IsMale())
	}
	score += weightBandPoints(twin.WeightKg, ideal)

	score += twin.BoneDensityScore * 0.15

	band := e.lc.HeightBand(twin.IsMale())
	if twin.HeightCm >= band.MinCm && twin.HeightCm <= band.MaxCm {
		score += 10
	} else {
		score += 5
	}

	return clamp100(score)
}

// weightBandPoints maps the actual/ideal weight ratio onto banded points.
// Unknown weight or stage falls to the outermost band.
func weightBandPoints(weightKg, idealKg float64) float64 {
	if weightKg <= 0 || idealKg <= 0 {
		return 5
	}
	ratio := weightKg / idealKg
	switch {
	case ratio >= 0.9 && ratio <= 1.1:
		return 25
	case ratio >= 0.8 && ratio <= 1.2:
		return 20
	case ratio >= 0.7 && ratio <= 1.3:
		return 15
	case ratio >= 0.6 && ratio <= 1.4:
		return 10
	default:
		return 5
	}
}

// GeneticsScore scores lineage quality: generation depth, inbreeding
// coefficient (inverse banding, unknown is neutral), genetic purity and
// proven offspring count.
func (e *Engine) GeneticsScore(twin domain.DigitalTwin) float64 {
	score := geneticsBase

	switch {
	case twin.GenerationDepth >= 5:
		score += 20
	case twin.GenerationDepth >= 3:
		score += 15
	case twin.GenerationDepth >= 1:
		score += 10
	}

	score += inbreedingPoints(twin.InbreedingCoefficient)
	score += twin.GeneticPurityScore * 0.1

	switch {
	case twin.TotalOffspring >= 10:
		score += 10
	case twin.TotalOffspring >= 5:
		score += 7
	case twin.TotalOffspring >= 1:
		score += 5
	}

	return clamp100(score)
}

// inbreedingPoints rewards low coefficients. A missing coefficient scores the
// neutral 10 rather than either extreme.
func inbreedingPoints(coefficient *float64) float64 {
	if coefficient == nil {
		return 10
	}
	switch c := *coefficient; {
	case c < 0.03:
		return 20
	case c < 0.06:
		return 15
	case c < 0.12:
		return 10
	case c < 0.25:
		return 5
	default:
		return 0
	}
}

// PerformanceScore scores the competitive record: fight and show win rates
// plus the measured temperament indices.
func (e *Engine) PerformanceScore(twin domain.DigitalTwin) float64 {
	score := performanceBase

	if twin.TotalFights > 0 {
		score += float64(twin.FightWins) / float64(twin.TotalFights) * 30
	}
	if twin.TotalShows > 0 {
		score += float64(twin.ShowWins) / float64(twin.TotalShows) * 15
	}
	score += twin.AggressionIndex * 0.1
	score += twin.EnduranceScore * 0.1
	score += twin.IntelligenceScore * 0.05

	return clamp100(score)
}

// HealthScore scores current condition: the health status delta, vaccination
// and injury banding, and stamina.
func (e *Engine) HealthScore(twin domain.DigitalTwin) float64 {
	score := healthBase + healthStatusDelta(twin.CurrentHealthStatus)

	switch {
	case twin.VaccinationCount >= 5:
		score += 10
	case twin.VaccinationCount >= 3:
		score += 7
	case twin.VaccinationCount >= 1:
		score += 4
	}

	switch {
	case twin.InjuryCount >= 5:
		score -= 20
	case twin.InjuryCount >= 3:
		score -= 10
	case twin.InjuryCount >= 1:
		score -= 5
	}

	score += twin.StaminaScore * 0.1
	return clamp100(score)
}

// healthStatusDelta maps a health status onto its score delta. Unrecognised
// statuses from stale persisted data resolve to the neutral 0.
func healthStatusDelta(status domain.HealthStatus) float64 {
	switch status {
	case domain.HealthHealthy, domain.HealthOK:
		return 20
	case domain.HealthRecovering:
		return 10
	case domain.HealthInjured:
		return -10
	case domain.HealthSick:
		return -20
	default:
		return 0
	}
}

func clamp100(v float64) float64 {
	return math.Min(100, math.Max(0, v))
}
