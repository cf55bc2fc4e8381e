// Package structural computes the Aseel Structure Index (ASI): a weighted
// 0-100 conformation score over eight normalized body traits, with per-trait
// warnings when a trait falls outside its breed floor.
package structural

import (
	"fmt"
	"math"

	"birdtwin/internal/config"
)

// Profile carries the eight normalized structural traits, each in [0,1].
// Values outside the range are clamped before scoring.
type Profile struct {
	NeckLength     float64 `json:"neck_length"`
	LegThickness   float64 `json:"leg_thickness"`
	BoneDensity    float64 `json:"bone_density"`
	ChestWidth     float64 `json:"chest_width"`
	FeatherQuality float64 `json:"feather_quality"`
	Posture        float64 `json:"posture"`
	TailCarriage   float64 `json:"tail_carriage"`
	BodyWidth      float64 `json:"body_width"`
}

// value resolves a calibrated trait key to the profile measurement.
func (p Profile) value(key string) (float64, bool) {
	switch key {
	case "neck_length":
		return p.NeckLength, true
	case "leg_thickness":
		return p.LegThickness, true
	case "bone_density":
		return p.BoneDensity, true
	case "chest_width":
		return p.ChestWidth, true
	case "feather_quality":
		return p.FeatherQuality, true
	case "posture":
		return p.Posture, true
	case "tail_carriage":
		return p.TailCarriage, true
	case "body_width":
		return p.BodyWidth, true
	default:
		return 0, false
	}
}

// CalculateASI scores the profile against the calibrated trait table.
// Seven traits are "ideally high": their contribution saturates at 1.0 once
// the measurement reaches the breed target. Tail carriage is "ideally low":
// full marks at or below the target, then linear decay towards zero as the
// carriage approaches vertical. Warnings flag traits beyond their floor.
func CalculateASI(profile Profile, traits []config.Trait) (int, []string) {
	var score float64
	var warnings []string

	for _, trait := range traits {
		raw, ok := profile.value(trait.Key)
		if !ok {
			continue
		}
		v := math.Min(1, math.Max(0, raw))

		var shaped float64
		if trait.IdeallyLow {
			shaped = ideallyLow(v, trait.Target)
			if v > trait.WarnFloor {
				warnings = append(warnings, fmt.Sprintf(
					"%s %.2f above breed ceiling %.2f", trait.Key, v, trait.WarnFloor))
			}
		} else {
			shaped = math.Min(v/trait.Target, 1.0)
			if v < trait.WarnFloor {
				warnings = append(warnings, fmt.Sprintf(
					"%s %.2f below breed floor %.2f", trait.Key, v, trait.WarnFloor))
			}
		}
		score += shaped * trait.Weight
	}

	final := int(math.Round(math.Min(100, math.Max(0, score*100))))
	return final, warnings
}

// ideallyLow scores 1.0 up to the threshold, then decays linearly to 0 as the
// value approaches 1.0.
func ideallyLow(v, threshold float64) float64 {
	if v <= threshold {
		return 1.0
	}
	if threshold >= 1 {
		return 1.0
	}
	return math.Max(0, (1.0-v)/(1.0-threshold))
}
