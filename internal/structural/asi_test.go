package structural

import (
	"strings"
	"testing"

	"birdtwin/internal/config"
)

func idealProfile() Profile {
	return Profile{
		NeckLength:     0.80,
		LegThickness:   0.75,
		BoneDensity:    0.85,
		ChestWidth:     0.75,
		FeatherQuality: 0.70,
		Posture:        0.80,
		TailCarriage:   0.30,
		BodyWidth:      0.75,
	}
}

func TestCalculateASIIdealProfile(t *testing.T) {
	score, warnings := CalculateASI(idealProfile(), config.Default().Structural)
	if score != 100 {
		t.Fatalf("ideal profile: got %d want 100", score)
	}
	if len(warnings) != 0 {
		t.Fatalf("ideal profile warnings: %v", warnings)
	}
}

func TestCalculateASILowTraitWarns(t *testing.T) {
	p := idealProfile()
	p.BoneDensity = 0.30 // below the 0.45 floor

	score, warnings := CalculateASI(p, config.Default().Structural)
	if score >= 100 {
		t.Fatalf("weak bone must lower the score, got %d", score)
	}
	if len(warnings) != 1 {
		t.Fatalf("expected one warning, got %v", warnings)
	}
	if !strings.Contains(warnings[0], "bone_density") || !strings.Contains(warnings[0], "below") {
		t.Fatalf("warning text: %q", warnings[0])
	}
}

func TestCalculateASIHighTailCarriageWarns(t *testing.T) {
	p := idealProfile()
	p.TailCarriage = 0.90 // above the 0.70 ceiling

	score, warnings := CalculateASI(p, config.Default().Structural)
	if score >= 100 {
		t.Fatalf("squirrel tail must lower the score, got %d", score)
	}
	if len(warnings) != 1 || !strings.Contains(warnings[0], "tail_carriage") {
		t.Fatalf("warnings: %v", warnings)
	}
	if !strings.Contains(warnings[0], "above") {
		t.Fatalf("warning direction: %q", warnings[0])
	}
}

func TestCalculateASITailShape(t *testing.T) {
	traits := config.Default().Structural

	// At the target the tail contributes fully; approaching vertical it
	// decays towards zero.
	atTarget := idealProfile()
	atTarget.TailCarriage = 0.35
	high := idealProfile()
	high.TailCarriage = 0.95

	scoreAt, _ := CalculateASI(atTarget, traits)
	scoreHigh, _ := CalculateASI(high, traits)
	if scoreAt != 100 {
		t.Fatalf("tail at target: got %d want 100", scoreAt)
	}
	if scoreHigh >= scoreAt {
		t.Fatalf("near-vertical tail must score lower: %d vs %d", scoreHigh, scoreAt)
	}
}

func TestCalculateASIClampsInputs(t *testing.T) {
	p := idealProfile()
	p.NeckLength = 1.8   // clamped to 1.0
	p.ChestWidth = -0.4  // clamped to 0.0
	p.TailCarriage = 0.2 // fine

	score, warnings := CalculateASI(p, config.Default().Structural)
	if score < 0 || score > 100 {
		t.Fatalf("score out of range: %d", score)
	}
	// Chest width clamps to zero, which is below the floor.
	found := false
	for _, w := range warnings {
		if strings.Contains(w, "chest_width") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected chest_width warning, got %v", warnings)
	}
}

func TestCalculateASIZeroProfile(t *testing.T) {
	score, warnings := CalculateASI(Profile{}, config.Default().Structural)
	// Only the tail contributes: a flat tail is ideal, worth its 0.10 weight.
	if score != 10 {
		t.Fatalf("zero profile: got %d want 10", score)
	}
	// Seven ideally-high traits warn below their floors; the tail at zero is
	// ideal and silent.
	if len(warnings) != 7 {
		t.Fatalf("zero profile warnings: got %d, %v", len(warnings), warnings)
	}
}
