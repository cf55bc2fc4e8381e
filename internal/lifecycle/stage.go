// Package lifecycle models the seven-stage biological life of a bird twin:
// stage resolution from age, capability gates, transition detection, stage
// decline, and maturity scoring. All operations are pure functions over twin
// snapshots.
package lifecycle

import "fmt"

// Stage is the ordinal life stage of a bird. Ordinals increase strictly with
// age; capability gates unlock monotonically with the ordinal.
type Stage int

// Canonical stages in ordinal order.
const (
	StageEgg Stage = iota
	StageChick
	StageGrower
	StagePreAdult
	StageAdultFighter
	StageBreederPrime
	StageSenior
)

// window holds the static age window for one stage. maxAgeDays is negative for
// the open-ended terminal stage.
type window struct {
	name       string
	minAgeDays int
	maxAgeDays int
}

// openEnded marks a stage without an upper age bound.
const openEnded = -1

// Age thresholds used by StageFromAge. The breeder-prime minimum is the male
// entry age; females enter at femaleBreederMinAgeDays.
const (
	eggMaxAgeDays            = 21
	chickMaxAgeDays          = 45
	growerMaxAgeDays         = 180
	preAdultMaxAgeDays       = 270
	adultFighterMaxAgeDays   = 730
	breederPrimeMaxAgeDays   = 1460
	femaleBreederMinAgeDays  = 540
	seniorSyntheticWindowLen = 365
)

var stageTable = [...]window{
	StageEgg:          {name: "EGG", minAgeDays: 0, maxAgeDays: eggMaxAgeDays},
	StageChick:        {name: "CHICK", minAgeDays: eggMaxAgeDays, maxAgeDays: chickMaxAgeDays - 1},
	StageGrower:       {name: "GROWER", minAgeDays: chickMaxAgeDays, maxAgeDays: growerMaxAgeDays - 1},
	StagePreAdult:     {name: "PRE_ADULT", minAgeDays: growerMaxAgeDays, maxAgeDays: preAdultMaxAgeDays - 1},
	StageAdultFighter: {name: "ADULT_FIGHTER", minAgeDays: preAdultMaxAgeDays, maxAgeDays: adultFighterMaxAgeDays - 1},
	StageBreederPrime: {name: "BREEDER_PRIME", minAgeDays: adultFighterMaxAgeDays, maxAgeDays: breederPrimeMaxAgeDays - 1},
	StageSenior:       {name: "SENIOR", minAgeDays: breederPrimeMaxAgeDays, maxAgeDays: openEnded},
}

// stageByName resolves the persisted stage string back to its ordinal.
var stageByName = func() map[string]Stage {
	m := make(map[string]Stage, len(stageTable))
	for i := range stageTable {
		m[stageTable[i].name] = Stage(i)
	}
	return m
}()

// Name returns the persisted stage identifier.
func (s Stage) Name() string {
	if s < StageEgg || s > StageSenior {
		return "UNKNOWN"
	}
	return stageTable[s].name
}

// Ordinal returns the stage index, 0 through 6.
func (s Stage) Ordinal() int { return int(s) }

// MinAgeDays returns the inclusive lower age bound of the stage window.
func (s Stage) MinAgeDays() int { return stageTable[s].minAgeDays }

// MaxAgeDays returns the inclusive upper age bound and false for the
// open-ended terminal stage.
func (s Stage) MaxAgeDays() (int, bool) {
	max := stageTable[s].maxAgeDays
	return max, max != openEnded
}

// CanMeasureMorphology reports whether body measurements are meaningful at
// this stage. Unlocks at GROWER and never re-locks.
func (s Stage) CanMeasureMorphology() bool { return s >= StageGrower }

// CanMeasurePerformance reports whether fight and show records may be
// tracked. Unlocks at PRE_ADULT.
func (s Stage) CanMeasurePerformance() bool { return s >= StagePreAdult }

// IsBreedingEligible reports stage-level breeding eligibility. Unlocks at
// ADULT_FIGHTER; health gating is layered on top by the engine.
func (s Stage) IsBreedingEligible() bool { return s >= StageAdultFighter }

// HasDeclineFactors reports whether biological decline applies at this stage.
func (s Stage) HasDeclineFactors() bool { return s >= StageSenior }

// IsShowEligible reports show-ring eligibility. Unlike the other gates this
// is a closed ordinal interval: seniors are no longer shown.
func (s Stage) IsShowEligible() bool { return s >= StagePreAdult && s <= StageBreederPrime }

// Next returns the following stage, or false at the terminal stage.
func (s Stage) Next() (Stage, bool) {
	if s >= StageSenior {
		return StageSenior, false
	}
	return s + 1, true
}

// StageFromName resolves a persisted stage string. Unknown strings return
// false rather than failing; callers degrade gracefully on stale data.
func StageFromName(name string) (Stage, bool) {
	s, ok := stageByName[name]
	return s, ok
}

// ErrNegativeAge is returned when a caller supplies an age below zero, which
// indicates an upstream bug rather than a business state.
type ErrNegativeAge struct {
	AgeDays int
}

func (e ErrNegativeAge) Error() string {
	return fmt.Sprintf("age must not be negative, got %d days", e.AgeDays)
}

// StageFromAge resolves the stage for an age in days. The female early-entry
// branch must run before the generic adult checks: hens aged 540-729 days are
// already in breeder prime while males of the same age are still fighters.
func StageFromAge(ageDays int, isMale, isEgg bool) (Stage, error) {
	if ageDays < 0 {
		return StageEgg, ErrNegativeAge{AgeDays: ageDays}
	}
	switch {
	case isEgg && ageDays <= eggMaxAgeDays:
		return StageEgg, nil
	case ageDays < chickMaxAgeDays:
		return StageChick, nil
	case ageDays < growerMaxAgeDays:
		return StageGrower, nil
	case ageDays < preAdultMaxAgeDays:
		return StagePreAdult, nil
	case !isMale && ageDays >= femaleBreederMinAgeDays && ageDays < breederPrimeMaxAgeDays:
		return StageBreederPrime, nil
	case ageDays < adultFighterMaxAgeDays:
		return StageAdultFighter, nil
	case ageDays < breederPrimeMaxAgeDays:
		return StageBreederPrime, nil
	default:
		return StageSenior, nil
	}
}

// DaysUntilNextTransition returns the days remaining until the next stage
// window opens, floored at zero, and false at the terminal stage.
func DaysUntilNextTransition(current Stage, ageDays int) (int, bool) {
	next, ok := current.Next()
	if !ok {
		return 0, false
	}
	days := next.MinAgeDays() - ageDays
	if days < 0 {
		days = 0
	}
	return days, true
}
