package config

import (
	"strings"
	"testing"
)

func TestDefaultValidates(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("default calibration invalid: %v", err)
	}
}

func TestValidateValuationWeights(t *testing.T) {
	cfg := Default()
	cfg.Valuation.WeightHealth = 0.2
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "valuation weights") {
		t.Fatalf("expected weight sum error, got %v", err)
	}
}

func TestValidateStructuralTraits(t *testing.T) {
	cfg := Default()
	cfg.Structural[0].Weight = 0.30
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected trait weight sum error")
	}

	cfg = Default()
	cfg.Structural[2].Key = cfg.Structural[1].Key
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "duplicate") {
		t.Fatalf("expected duplicate trait error, got %v", err)
	}

	cfg = Default()
	cfg.Structural[3].Target = 1.5
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected invalid target error")
	}
}

func TestValidateMarket(t *testing.T) {
	cfg := Default()
	cfg.Market.FemaleValueFactor = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected market factor error")
	}

	cfg = Default()
	cfg.Market.ValueBands[0], cfg.Market.ValueBands[1] = cfg.Market.ValueBands[1], cfg.Market.ValueBands[0]
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "descend") {
		t.Fatalf("expected band ordering error, got %v", err)
	}

	cfg = Default()
	cfg.Market.ValueBands = nil
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected empty bands error")
	}
}

func TestValidateGeneticsAndLifecycle(t *testing.T) {
	cfg := Default()
	cfg.Genetics.MaxSampleSize = 10
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected sample size error")
	}

	cfg = Default()
	cfg.Lifecycle.SeniorStaminaDecay = 1.0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected stamina decay error")
	}
}

func TestDefaultCalibrationShape(t *testing.T) {
	cfg := Default()
	if len(cfg.Structural) != 8 {
		t.Fatalf("structural traits: got %d want 8", len(cfg.Structural))
	}
	if _, ok := cfg.Lifecycle.IdealWeightsKg["ADULT_FIGHTER"]; !ok {
		t.Fatal("missing ideal weight for ADULT_FIGHTER")
	}
	if cfg.Market.CurrencyUnit == "" {
		t.Fatal("currency unit must be set")
	}
	senior := cfg.Lifecycle.IdealWeightsKg["SENIOR"]
	prime := cfg.Lifecycle.IdealWeightsKg["BREEDER_PRIME"]
	if senior.MaleKg >= prime.MaleKg {
		t.Fatal("senior ideal weight must fall below breeder prime")
	}
}
