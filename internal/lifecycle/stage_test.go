package lifecycle

import "testing"

func TestStageFromAgeBoundaries(t *testing.T) {
	cases := []struct {
		name    string
		ageDays int
		isMale  bool
		isEgg   bool
		want    Stage
	}{
		{"egg at zero", 0, true, true, StageEgg},
		{"egg at boundary", 21, true, true, StageEgg},
		{"hatched chick", 22, true, false, StageChick},
		{"late hatch still chick", 30, true, false, StageChick},
		{"chick upper bound", 44, true, false, StageChick},
		{"grower lower bound", 45, true, false, StageGrower},
		{"grower upper bound", 179, true, false, StageGrower},
		{"pre adult lower bound", 180, true, false, StagePreAdult},
		{"pre adult upper bound", 269, true, false, StagePreAdult},
		{"adult fighter lower bound", 270, true, false, StageAdultFighter},
		{"male stays fighter", 729, true, false, StageAdultFighter},
		{"male breeder prime", 730, true, false, StageBreederPrime},
		{"female early breeder entry", 540, false, false, StageBreederPrime},
		{"female at 600 days", 600, false, false, StageBreederPrime},
		{"male at 600 days", 600, true, false, StageAdultFighter},
		{"female before early entry", 539, false, false, StageAdultFighter},
		{"breeder prime upper bound", 1459, true, false, StageBreederPrime},
		{"senior entry", 1460, true, false, StageSenior},
		{"female senior entry", 1460, false, false, StageSenior},
		{"deep senior", 3000, true, false, StageSenior},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := StageFromAge(tc.ageDays, tc.isMale, tc.isEgg)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("age %d: got %s want %s", tc.ageDays, got.Name(), tc.want.Name())
			}
		})
	}
}

func TestStageFromAgeNegative(t *testing.T) {
	if _, err := StageFromAge(-1, true, false); err == nil {
		t.Fatal("expected error for negative age")
	}
}

func TestStageFromAgeOverdueEgg(t *testing.T) {
	// An egg flag past the hatch window falls through to the age branches.
	got, err := StageFromAge(30, true, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != StageChick {
		t.Fatalf("overdue egg: got %s want CHICK", got.Name())
	}
}

func TestCapabilityGatesMonotonic(t *testing.T) {
	gates := []struct {
		name string
		fn   func(Stage) bool
	}{
		{"morphology", Stage.CanMeasureMorphology},
		{"performance", Stage.CanMeasurePerformance},
		{"breeding", Stage.IsBreedingEligible},
		{"decline", Stage.HasDeclineFactors},
	}
	for _, gate := range gates {
		unlocked := false
		for s := StageEgg; s <= StageSenior; s++ {
			v := gate.fn(s)
			if unlocked && !v {
				t.Fatalf("%s gate re-locked at %s", gate.name, s.Name())
			}
			if v {
				unlocked = true
			}
		}
	}
}

func TestShowEligibilityWindow(t *testing.T) {
	want := map[Stage]bool{
		StageEgg:          false,
		StageChick:        false,
		StageGrower:       false,
		StagePreAdult:     true,
		StageAdultFighter: true,
		StageBreederPrime: true,
		StageSenior:       false,
	}
	for s, expected := range want {
		if got := s.IsShowEligible(); got != expected {
			t.Errorf("%s: show eligible = %v, want %v", s.Name(), got, expected)
		}
	}
}

func TestStageWindowsContiguous(t *testing.T) {
	for s := StageEgg; s < StageSenior; s++ {
		next := s + 1
		max, bounded := s.MaxAgeDays()
		if !bounded {
			t.Fatalf("%s unexpectedly open-ended", s.Name())
		}
		if got := next.MinAgeDays(); got != max+1 && got != max {
			t.Errorf("window gap between %s (max %d) and %s (min %d)", s.Name(), max, next.Name(), got)
		}
		if next.MinAgeDays() < s.MinAgeDays() {
			t.Errorf("min ages not monotonic at %s", next.Name())
		}
	}
	if _, bounded := StageSenior.MaxAgeDays(); bounded {
		t.Fatal("SENIOR must be open-ended")
	}
}

func TestStageFromName(t *testing.T) {
	for s := StageEgg; s <= StageSenior; s++ {
		got, ok := StageFromName(s.Name())
		if !ok || got != s {
			t.Fatalf("round trip failed for %s", s.Name())
		}
	}
	if _, ok := StageFromName("HATCHLING"); ok {
		t.Fatal("unknown stage name must not resolve")
	}
}

func TestNextAndDaysUntilTransition(t *testing.T) {
	next, ok := StageAdultFighter.Next()
	if !ok || next != StageBreederPrime {
		t.Fatalf("next of ADULT_FIGHTER: got %s", next.Name())
	}
	if _, ok := StageSenior.Next(); ok {
		t.Fatal("SENIOR must be terminal")
	}

	days, ok := DaysUntilNextTransition(StageAdultFighter, 600)
	if !ok {
		t.Fatal("expected a next transition")
	}
	if days != 130 {
		t.Fatalf("days until breeder prime from 600: got %d want 130", days)
	}

	// Age already past the next window floors at zero.
	days, ok = DaysUntilNextTransition(StageChick, 100)
	if !ok || days != 0 {
		t.Fatalf("overdue transition: got %d,%v want 0,true", days, ok)
	}

	if _, ok := DaysUntilNextTransition(StageSenior, 2000); ok {
		t.Fatal("terminal stage must report no transition")
	}
}
