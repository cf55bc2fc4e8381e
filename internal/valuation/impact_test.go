package valuation

import (
	"math"
	"testing"

	"birdtwin/pkg/domain"
)

func TestFightWinImpact(t *testing.T) {
	e := newTestEngine()
	twin := domain.DigitalTwin{
		Gender:      domain.GenderMale,
		TotalFights: 4,
		FightWins:   2,
	}
	got := e.ProcessEventImpact(twin, domain.BirdEvent{Type: domain.EventFightWin})
	if got.TotalFights != 5 || got.FightWins != 3 {
		t.Fatalf("counters: fights %d wins %d", got.TotalFights, got.FightWins)
	}
	// 30 + 3/5*30 = 48.
	if math.Abs(got.PerformanceScore-48) > 1e-9 {
		t.Fatalf("performance after win: got %v want 48", got.PerformanceScore)
	}

	lost := e.ProcessEventImpact(twin, domain.BirdEvent{Type: domain.EventFightLoss})
	if lost.TotalFights != 5 || lost.FightWins != 2 {
		t.Fatalf("loss counters: fights %d wins %d", lost.TotalFights, lost.FightWins)
	}
}

func TestIncrementalMatchesFullRecompute(t *testing.T) {
	e := newTestEngine()
	twin := domain.DigitalTwin{
		Gender:              domain.GenderMale,
		LifecycleStage:      "ADULT_FIGHTER",
		WeightKg:            3.3,
		HeightCm:            66,
		BoneDensityScore:    70,
		CurrentHealthStatus: domain.HealthHealthy,
		VaccinationCount:    3,
		StaminaScore:        85,
		TotalFights:         6,
		FightWins:           4,
	}
	// Start from a fully consistent snapshot.
	twin = e.ComputeFullValuation(twin)

	incremental := e.ProcessEventImpact(twin, domain.BirdEvent{Type: domain.EventFightWin})

	full := twin.Clone()
	full.TotalFights++
	full.FightWins++
	full = e.ComputeFullValuation(full)

	if incremental.ValuationScore != full.ValuationScore {
		t.Fatalf("incremental %d != full %d", incremental.ValuationScore, full.ValuationScore)
	}
	if math.Abs(incremental.EstimatedValue-full.EstimatedValue) > 1e-9 {
		t.Fatalf("incremental value %v != full %v", incremental.EstimatedValue, full.EstimatedValue)
	}
}

func TestInjuryAndRecoveryImpact(t *testing.T) {
	e := newTestEngine()
	twin := domain.DigitalTwin{
		Gender:              domain.GenderMale,
		CurrentHealthStatus: domain.HealthHealthy,
		StaminaScore:        100,
	}

	injured := e.ProcessEventImpact(twin, domain.BirdEvent{Type: domain.EventInjury})
	if injured.InjuryCount != 1 || injured.CurrentHealthStatus != domain.HealthInjured {
		t.Fatalf("injury state: count %d status %s", injured.InjuryCount, injured.CurrentHealthStatus)
	}
	// 60 - 10 - 5 + 10 = 55.
	if math.Abs(injured.HealthScore-55) > 1e-9 {
		t.Fatalf("health after injury: got %v want 55", injured.HealthScore)
	}

	recovered := e.ProcessEventImpact(injured, domain.BirdEvent{Type: domain.EventRecovery})
	if recovered.CurrentHealthStatus != domain.HealthRecovering {
		t.Fatalf("recovery status: %s", recovered.CurrentHealthStatus)
	}
	// 60 + 10 - 5 + 10 = 75.
	if math.Abs(recovered.HealthScore-75) > 1e-9 {
		t.Fatalf("health after recovery: got %v want 75", recovered.HealthScore)
	}
}

func TestBreedingSuccessPromotesStatus(t *testing.T) {
	e := newTestEngine()
	twin := domain.DigitalTwin{
		Gender:         domain.GenderMale,
		BreedingStatus: domain.BreedingUntested,
	}

	chicks := 4.0
	first := e.ProcessEventImpact(twin, domain.BirdEvent{
		Type:         domain.EventBreedingSuccess,
		NumericValue: &chicks,
	})
	if first.BreedingStatus != domain.BreedingActive {
		t.Fatalf("first success status: %s", first.BreedingStatus)
	}
	if first.TotalOffspring != 4 || first.SuccessfulBreedings != 1 {
		t.Fatalf("first success counters: offspring %d successes %d", first.TotalOffspring, first.SuccessfulBreedings)
	}

	second := e.ProcessEventImpact(first, domain.BirdEvent{Type: domain.EventBreedingSuccess, NumericValue: &chicks})
	third := e.ProcessEventImpact(second, domain.BirdEvent{Type: domain.EventBreedingSuccess, NumericValue: &chicks})
	if third.BreedingStatus != domain.BreedingProven {
		t.Fatalf("third success status: %s want PROVEN", third.BreedingStatus)
	}

	failed := e.ProcessEventImpact(twin, domain.BirdEvent{Type: domain.EventBreedingFailure})
	if failed.BreedingStatus != domain.BreedingActive || failed.TotalBreedingAttempts != 1 {
		t.Fatalf("failure state: status %s attempts %d", failed.BreedingStatus, failed.TotalBreedingAttempts)
	}
}

func TestShowResultImpact(t *testing.T) {
	e := newTestEngine()
	twin := domain.DigitalTwin{Gender: domain.GenderMale}

	third := 3.0
	placed := e.ProcessEventImpact(twin, domain.BirdEvent{Type: domain.EventShowResult, NumericValue: &third})
	if placed.TotalShows != 1 || placed.ShowWins != 0 {
		t.Fatalf("placement counters: shows %d wins %d", placed.TotalShows, placed.ShowWins)
	}
	if placed.BestPlacement == nil || *placed.BestPlacement != 3 {
		t.Fatalf("best placement: %v", placed.BestPlacement)
	}

	first := 1.0
	won := e.ProcessEventImpact(placed, domain.BirdEvent{Type: domain.EventShowResult, NumericValue: &first})
	if won.ShowWins != 1 {
		t.Fatalf("show win counter: %d", won.ShowWins)
	}
	if won.BestPlacement == nil || *won.BestPlacement != 1 {
		t.Fatalf("best placement after win: %v", won.BestPlacement)
	}

	// A worse later placement never overwrites the best.
	fifth := 5.0
	later := e.ProcessEventImpact(won, domain.BirdEvent{Type: domain.EventShowResult, NumericValue: &fifth})
	if *later.BestPlacement != 1 {
		t.Fatalf("best placement regressed: %v", *later.BestPlacement)
	}
}

func TestEventDeltasAndMarketDelta(t *testing.T) {
	e := newTestEngine()
	twin := domain.DigitalTwin{
		Gender:           domain.GenderMale,
		MorphologyScore:  50,
		GeneticsScore:    50,
		PerformanceScore: 50,
		HealthScore:      50,
	}

	delta := 10.0
	market := 500.0
	got := e.ProcessEventImpact(twin, domain.BirdEvent{
		Type:             domain.EventType("expert_review"),
		PerformanceDelta: &delta,
		MarketDelta:      &market,
	})
	if math.Abs(got.PerformanceScore-60) > 1e-9 {
		t.Fatalf("performance delta: got %v want 60", got.PerformanceScore)
	}
	// Composite 52 -> band 50 -> 10000 * (1 + 12*0.05) = 16000, then +500.
	if got.ValuationScore != 52 {
		t.Fatalf("composite with delta: got %d want 52", got.ValuationScore)
	}
	if math.Abs(got.EstimatedValue-16500) > 1e-9 {
		t.Fatalf("value with market delta: got %v want 16500", got.EstimatedValue)
	}

	// Deltas clamp at the component bounds.
	big := 300.0
	clamped := e.ProcessEventImpact(twin, domain.BirdEvent{
		Type:        domain.EventType("expert_review"),
		HealthDelta: &big,
	})
	if math.Abs(clamped.HealthScore-100) > 1e-9 {
		t.Fatalf("delta clamp: got %v want 100", clamped.HealthScore)
	}
}

func TestWeightRecordedImpact(t *testing.T) {
	e := newTestEngine()
	twin := domain.DigitalTwin{
		Gender:         domain.GenderMale,
		LifecycleStage: "ADULT_FIGHTER",
		WeightKg:       2.0,
		HeightCm:       68,
	}
	w := 3.5
	got := e.ProcessEventImpact(twin, domain.BirdEvent{Type: domain.EventWeightRecorded, NumericValue: &w})
	if got.WeightKg != 3.5 {
		t.Fatalf("weight not updated: %v", got.WeightKg)
	}
	// 50 + 25 + 0 + 10 = 85.
	if math.Abs(got.MorphologyScore-85) > 1e-9 {
		t.Fatalf("morphology after weigh-in: got %v want 85", got.MorphologyScore)
	}
}
