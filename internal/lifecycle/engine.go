package lifecycle

import (
	"math"
	"time"

	"birdtwin/internal/config"
	"birdtwin/pkg/domain"
)

// Engine derives lifecycle state from twin snapshots. It is pure: Update
// returns a new snapshot plus any detected transition events and never
// touches shared state. The clock is injectable for tests.
type Engine struct {
	cal   *config.Calibration
	nowFn func() time.Time
}

// NewEngine constructs a lifecycle engine over the supplied calibration.
func NewEngine(cal *config.Calibration) *Engine {
	return &Engine{
		cal:   cal,
		nowFn: func() time.Time { return time.Now().UTC() },
	}
}

// WithNow overrides the engine clock. Intended for tests.
func (e *Engine) WithNow(nowFn func() time.Time) *Engine {
	e.nowFn = nowFn
	return e
}

// IdealWeightKg returns the calibrated ideal weight for a stage and gender,
// or 0 when the stage has no entry.
func (e *Engine) IdealWeightKg(stage Stage, isMale bool) float64 {
	w, ok := e.cal.Lifecycle.IdealWeightsKg[stage.Name()]
	if !ok {
		return 0
	}
	if isMale {
		return w.MaleKg
	}
	return w.FemaleKg
}

// HeightBand returns the calibrated ideal height interval for a gender.
func (e *Engine) HeightBand(isMale bool) config.HeightBand {
	if isMale {
		return e.cal.Lifecycle.MaleHeightBand
	}
	return e.cal.Lifecycle.FemaleHeightBand
}

// Update recomputes age, stage, maturity and decline for the twin. A twin
// without a birth date is returned unchanged: unhatched-egg records routinely
// lack one, so this is a defined no-op rather than an error. One transition
// event is emitted per actual stage change, which makes back-to-back calls
// idempotent.
func (e *Engine) Update(twin domain.DigitalTwin) (domain.DigitalTwin, []domain.BirdEvent, error) {
	if twin.BirthDate == nil {
		return twin, nil, nil
	}
	now := e.nowFn()
	ageDays := int(now.Sub(*twin.BirthDate).Hours() / 24)
	if ageDays < 0 {
		return twin, nil, ErrNegativeAge{AgeDays: ageDays}
	}

	wasEgg := twin.LifecycleStage == StageEgg.Name()
	newStage, err := StageFromAge(ageDays, twin.IsMale(), wasEgg)
	if err != nil {
		return twin, nil, err
	}

	updated := twin.Clone()
	var events []domain.BirdEvent
	if newStage.Name() != twin.LifecycleStage {
		events = append(events, domain.BirdEvent{
			TwinID:      twin.ID,
			Type:        domain.EventStageTransition,
			EventDate:   now,
			AgeDaysAt:   ageDays,
			StageAt:     newStage.Name(),
			StringValue: domain.String(twin.LifecycleStage + "->" + newStage.Name()),
		})
	}

	if newStage.HasDeclineFactors() {
		updated.StaminaScore = e.declineStamina(updated.StaminaScore)
	}

	updated.AgeDays = ageDays
	updated.LifecycleStage = newStage.Name()
	updated.MaturityScore = e.MaturityScore(updated, newStage, ageDays)
	updated.UpdatedAt = now
	return updated, events, nil
}

// declineStamina applies one step of senior biological decline. Repeated
// daily invocations compound, which is the intended model.
func (e *Engine) declineStamina(stamina float64) float64 {
	decayed := math.Floor(stamina * e.cal.Lifecycle.SeniorStaminaDecay)
	return math.Max(e.cal.Lifecycle.SeniorStaminaFloor, decayed)
}

// MaturityScore scores biological maturity on [0,100]: up to 40 points for
// linear progress through the stage age window, up to 30 for weight ratio to
// the stage ideal, and up to 30 carried over from the morphology score.
func (e *Engine) MaturityScore(twin domain.DigitalTwin, stage Stage, ageDays int) int {
	score := 40 * stageProgress(stage, ageDays)

	if ideal := e.IdealWeightKg(stage, twin.IsMale()); ideal > 0 && twin.WeightKg > 0 {
		ratio := twin.WeightKg / ideal
		ratio = math.Min(1.5, math.Max(0.5, ratio))
		ws := (1 - math.Abs(1-ratio)) * 30
		score += math.Max(0, ws)
	}

	if twin.MorphologyScore > 0 {
		score += twin.MorphologyScore * 0.3
	}

	return int(math.Min(100, math.Max(0, score)))
}

// stageProgress is the clamped linear position of age within the stage
// window. Open-ended stages use a synthetic one-year window.
func stageProgress(stage Stage, ageDays int) float64 {
	min := stage.MinAgeDays()
	max, bounded := stage.MaxAgeDays()
	if !bounded {
		max = min + seniorSyntheticWindowLen
	}
	if max <= min {
		return 1
	}
	p := float64(ageDays-min) / float64(max-min)
	return math.Min(1, math.Max(0, p))
}

// TransitionInfo describes the upcoming stage transition for a twin.
type TransitionInfo struct {
	CurrentStage   string   `json:"current_stage"`
	NextStage      string   `json:"next_stage"`
	CurrentAgeDays int      `json:"current_age_days"`
	DaysRemaining  int      `json:"days_remaining"`
	Unlocks        []string `json:"unlocks"`
}

// NextTransitionInfo reports the next transition and the capabilities it
// unlocks. Returns false for twins without a birth date and for terminal
// twins. The unlock list is computed by diffing the capability gates between
// the current and next stage, not from a lookup table.
func (e *Engine) NextTransitionInfo(twin domain.DigitalTwin) (TransitionInfo, bool) {
	if twin.BirthDate == nil {
		return TransitionInfo{}, false
	}
	current, ok := StageFromName(twin.LifecycleStage)
	if !ok {
		return TransitionInfo{}, false
	}
	next, ok := current.Next()
	if !ok {
		return TransitionInfo{}, false
	}
	ageDays := int(e.nowFn().Sub(*twin.BirthDate).Hours() / 24)
	days, _ := DaysUntilNextTransition(current, ageDays)

	var unlocks []string
	if !current.CanMeasureMorphology() && next.CanMeasureMorphology() {
		unlocks = append(unlocks,
			"record body weight and height measurements",
			"structure index scoring")
	}
	if !current.CanMeasurePerformance() && next.CanMeasurePerformance() {
		unlocks = append(unlocks,
			"fight record tracking",
			"performance scoring")
	}
	if !current.IsBreedingEligible() && next.IsBreedingEligible() {
		unlocks = append(unlocks, "breeding pair assignment")
	}
	if !current.HasDeclineFactors() && next.HasDeclineFactors() {
		unlocks = append(unlocks, "senior condition monitoring")
	}
	if !current.IsShowEligible() && next.IsShowEligible() {
		unlocks = append(unlocks, "show ring eligibility")
	}

	return TransitionInfo{
		CurrentStage:   current.Name(),
		NextStage:      next.Name(),
		CurrentAgeDays: ageDays,
		DaysRemaining:  days,
		Unlocks:        unlocks,
	}, true
}

// healthAllowsCompetition gates breeding and show eligibility on health. An
// unhealthy bird is never eligible regardless of stage. Unknown statuses
// resolve to ineligible.
func healthAllowsCompetition(status domain.HealthStatus) bool {
	return status == domain.HealthHealthy || status == domain.HealthOK
}

// CanMeasureMorphology reports whether body measurements apply to the twin's
// current stage. Unknown persisted stages resolve to false.
func CanMeasureMorphology(twin domain.DigitalTwin) bool {
	s, ok := StageFromName(twin.LifecycleStage)
	return ok && s.CanMeasureMorphology()
}

// CanMeasurePerformance reports whether performance tracking applies to the
// twin's current stage.
func CanMeasurePerformance(twin domain.DigitalTwin) bool {
	s, ok := StageFromName(twin.LifecycleStage)
	return ok && s.CanMeasurePerformance()
}

// IsBreedingEligible combines the stage gate with the health gate.
func IsBreedingEligible(twin domain.DigitalTwin) bool {
	s, ok := StageFromName(twin.LifecycleStage)
	return ok && s.IsBreedingEligible() && healthAllowsCompetition(twin.CurrentHealthStatus)
}

// IsShowEligible combines the show-window gate with the health gate.
func IsShowEligible(twin domain.DigitalTwin) bool {
	s, ok := StageFromName(twin.LifecycleStage)
	return ok && s.IsShowEligible() && healthAllowsCompetition(twin.CurrentHealthStatus)
}
