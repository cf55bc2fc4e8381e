package core

import (
	"context"
	"fmt"

	"birdtwin/internal/lifecycle"
	"birdtwin/pkg/domain"
)

// NewDefaultRulesEngine wires the standard commit-time rules.
func NewDefaultRulesEngine() *domain.RulesEngine {
	engine := domain.NewRulesEngine()
	engine.Register(StageRegressionRule{})
	engine.Register(ScoreBoundsRule{})
	engine.Register(BreedingEligibilityRule{})
	return engine
}

// StageRegressionRule blocks any update that moves a twin to an earlier
// lifecycle stage. Stage progression is monotonic; corrections go through a
// fresh twin registration.
type StageRegressionRule struct{}

// Name identifies the rule.
func (StageRegressionRule) Name() string { return "stage_regression" }

// Evaluate implements domain.Rule.
func (StageRegressionRule) Evaluate(_ context.Context, _ domain.RuleView, changes []domain.Change) (domain.Result, error) {
	var result domain.Result
	for _, change := range changes {
		if change.Entity != domain.EntityTwin || change.Action != domain.ActionUpdate {
			continue
		}
		before, okBefore := change.Before.(domain.DigitalTwin)
		after, okAfter := change.After.(domain.DigitalTwin)
		if !okBefore || !okAfter {
			continue
		}
		prev, okPrev := lifecycle.StageFromName(before.LifecycleStage)
		next, okNext := lifecycle.StageFromName(after.LifecycleStage)
		if !okPrev || !okNext {
			continue
		}
		if next < prev {
			result.Violations = append(result.Violations, domain.Violation{
				Rule:     "stage_regression",
				Severity: domain.SeverityBlock,
				Message:  fmt.Sprintf("stage cannot regress from %s to %s", before.LifecycleStage, after.LifecycleStage),
				Entity:   domain.EntityTwin,
				EntityID: after.ID,
			})
		}
	}
	return result, nil
}

// ScoreBoundsRule blocks writes that carry component or composite scores
// outside [0,100]. The engines clamp internally, so a violation here means a
// caller bypassed them.
type ScoreBoundsRule struct{}

// Name identifies the rule.
func (ScoreBoundsRule) Name() string { return "score_bounds" }

// Evaluate implements domain.Rule.
func (ScoreBoundsRule) Evaluate(_ context.Context, _ domain.RuleView, changes []domain.Change) (domain.Result, error) {
	var result domain.Result
	for _, change := range changes {
		if change.Entity != domain.EntityTwin {
			continue
		}
		twin, ok := change.After.(domain.DigitalTwin)
		if !ok {
			continue
		}
		scores := map[string]float64{
			"morphology":  twin.MorphologyScore,
			"genetics":    twin.GeneticsScore,
			"performance": twin.PerformanceScore,
			"health":      twin.HealthScore,
			"maturity":    float64(twin.MaturityScore),
			"valuation":   float64(twin.ValuationScore),
		}
		for name, v := range scores {
			if v < 0 || v > 100 {
				result.Violations = append(result.Violations, domain.Violation{
					Rule:     "score_bounds",
					Severity: domain.SeverityBlock,
					Message:  fmt.Sprintf("%s score %.2f outside [0,100]", name, v),
					Entity:   domain.EntityTwin,
					EntityID: twin.ID,
				})
			}
		}
	}
	return result, nil
}

// BreedingEligibilityRule warns when a breeding event is recorded against a
// twin whose stage has not reached breeding eligibility. The event is still
// committed; the warning surfaces the data-quality issue.
type BreedingEligibilityRule struct{}

// Name identifies the rule.
func (BreedingEligibilityRule) Name() string { return "breeding_eligibility" }

// Evaluate implements domain.Rule.
func (BreedingEligibilityRule) Evaluate(_ context.Context, view domain.RuleView, changes []domain.Change) (domain.Result, error) {
	var result domain.Result
	for _, change := range changes {
		if change.Entity != domain.EntityEvent || change.Action != domain.ActionAppend {
			continue
		}
		event, ok := change.After.(domain.BirdEvent)
		if !ok {
			continue
		}
		if event.Type != domain.EventBreedingSuccess && event.Type != domain.EventBreedingFailure {
			continue
		}
		twin, ok := view.FindTwin(event.TwinID)
		if !ok {
			continue
		}
		if !lifecycle.IsBreedingEligible(twin) {
			result.Violations = append(result.Violations, domain.Violation{
				Rule:     "breeding_eligibility",
				Severity: domain.SeverityWarn,
				Message:  fmt.Sprintf("breeding event recorded at stage %s before eligibility", twin.LifecycleStage),
				Entity:   domain.EntityEvent,
				EntityID: event.ID,
			})
		}
	}
	return result, nil
}
