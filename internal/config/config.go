// Package config holds the breed and market calibration tables consumed by
// the engines. Every numeric policy constant lives here as named
// configuration so a deployment can recalibrate for another breed or market
// without code changes. Defaults are defined in code and may be overridden by
// a yaml file or BIRDTWIN_* environment variables.
package config

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/spf13/viper"
)

// StageWeights holds the ideal weight in kilograms for one stage, by gender.
type StageWeights struct {
	MaleKg   float64 `mapstructure:"male_kg"`
	FemaleKg float64 `mapstructure:"female_kg"`
}

// HeightBand is the gender-specific ideal height interval in centimetres.
type HeightBand struct {
	MinCm float64 `mapstructure:"min_cm"`
	MaxCm float64 `mapstructure:"max_cm"`
}

// Lifecycle calibrates stage-derived lookups used by the lifecycle and
// valuation engines. Keys of IdealWeightsKg are stage names.
type Lifecycle struct {
	IdealWeightsKg   map[string]StageWeights `mapstructure:"ideal_weights_kg"`
	MaleHeightBand   HeightBand              `mapstructure:"male_height_band"`
	FemaleHeightBand HeightBand              `mapstructure:"female_height_band"`
	// SeniorStaminaDecay is the per-invocation decay multiplier applied to
	// stamina once decline factors are active; SeniorStaminaFloor is the
	// lowest value decay may reach.
	SeniorStaminaDecay float64 `mapstructure:"senior_stamina_decay"`
	SeniorStaminaFloor float64 `mapstructure:"senior_stamina_floor"`
}

// Valuation holds the composite weights. The four weights must sum to 1.0;
// Validate enforces this at load time.
type Valuation struct {
	WeightMorphology  float64 `mapstructure:"weight_morphology"`
	WeightGenetics    float64 `mapstructure:"weight_genetics"`
	WeightPerformance float64 `mapstructure:"weight_performance"`
	WeightHealth      float64 `mapstructure:"weight_health"`
}

// ValueBand maps a minimum composite score to a base monetary value.
type ValueBand struct {
	MinScore  int     `mapstructure:"min_score"`
	BaseValue float64 `mapstructure:"base_value"`
}

// Market calibrates the multiplicative market factors and the monetary
// estimate. The within-band scaling and the female value factor encode the
// modelled market, not a universal law; both are deliberately configurable.
type Market struct {
	CertificationMultipliers map[string]float64 `mapstructure:"certification_multipliers"`
	ProvenBreederBonus       float64            `mapstructure:"proven_breeder_bonus"`
	ProvenBreederMinCount    int                `mapstructure:"proven_breeder_min_count"`
	ShowRecordBonus          float64            `mapstructure:"show_record_bonus"`
	ShowRecordMinWins        int                `mapstructure:"show_record_min_wins"`
	ActiveInjuryPenalty      float64            `mapstructure:"active_injury_penalty"`
	SeniorDeclinePenalty     float64            `mapstructure:"senior_decline_penalty"`
	ValueBands               []ValueBand        `mapstructure:"value_bands"`
	WithinBandModulus        int                `mapstructure:"within_band_modulus"`
	WithinBandStep           float64            `mapstructure:"within_band_step"`
	FemaleValueFactor        float64            `mapstructure:"female_value_factor"`
	CurrencyUnit             string             `mapstructure:"currency_unit"`
}

// Trait calibrates one structural trait of the Aseel structure index.
// IdeallyLow traits score 1.0 at or below Target and decay linearly towards
// zero as the value approaches 1.0; the rest saturate at Target.
type Trait struct {
	Key        string  `mapstructure:"key"`
	Weight     float64 `mapstructure:"weight"`
	Target     float64 `mapstructure:"target"`
	WarnFloor  float64 `mapstructure:"warn_floor"`
	IdeallyLow bool    `mapstructure:"ideally_low"`
}

// Genetics calibrates the offspring simulation bounds.
type Genetics struct {
	DefaultSampleSize int     `mapstructure:"default_sample_size"`
	MaxSampleSize     int     `mapstructure:"max_sample_size"`
	Confidence        float64 `mapstructure:"confidence"`
}

// Storage selects the persistence backend.
type Storage struct {
	Driver      string `mapstructure:"driver"` // memory|sqlite|postgres
	SQLitePath  string `mapstructure:"sqlite_path"`
	PostgresDSN string `mapstructure:"postgres_dsn"`
}

// Blob selects the audit archive backend.
type Blob struct {
	Driver      string `mapstructure:"driver"` // memory|fs|s3
	FSRoot      string `mapstructure:"fs_root"`
	S3Bucket    string `mapstructure:"s3_bucket"`
	S3Region    string `mapstructure:"s3_region"`
	S3Endpoint  string `mapstructure:"s3_endpoint"`
	S3PathStyle bool   `mapstructure:"s3_path_style"`
}

// Calibration is the root configuration consumed by the engines and the
// orchestration layer. Treat loaded values as immutable.
type Calibration struct {
	Lifecycle  Lifecycle `mapstructure:"lifecycle"`
	Valuation  Valuation `mapstructure:"valuation"`
	Market     Market    `mapstructure:"market"`
	Structural []Trait   `mapstructure:"structural"`
	Genetics   Genetics  `mapstructure:"genetics"`
	Storage    Storage   `mapstructure:"storage"`
	Blob       Blob      `mapstructure:"blob"`
}

// Default returns the built-in Aseel calibration.
func Default() *Calibration {
	return &Calibration{
		Lifecycle: Lifecycle{
			IdealWeightsKg: map[string]StageWeights{
				"EGG":           {MaleKg: 0.055, FemaleKg: 0.055},
				"CHICK":         {MaleKg: 0.2, FemaleKg: 0.15},
				"GROWER":        {MaleKg: 1.5, FemaleKg: 1.1},
				"PRE_ADULT":     {MaleKg: 2.5, FemaleKg: 1.9},
				"ADULT_FIGHTER": {MaleKg: 3.5, FemaleKg: 2.5},
				"BREEDER_PRIME": {MaleKg: 4.0, FemaleKg: 3.0},
				// Seniors are expected to lose mass relative to breeder prime.
				"SENIOR": {MaleKg: 3.8, FemaleKg: 2.6},
			},
			MaleHeightBand:     HeightBand{MinCm: 60, MaxCm: 75},
			FemaleHeightBand:   HeightBand{MinCm: 50, MaxCm: 65},
			SeniorStaminaDecay: 0.95,
			SeniorStaminaFloor: 20,
		},
		Valuation: Valuation{
			WeightMorphology:  0.4,
			WeightGenetics:    0.3,
			WeightPerformance: 0.2,
			WeightHealth:      0.1,
		},
		Market: Market{
			CertificationMultipliers: map[string]float64{
				"CHAMPION":   1.5,
				"VERIFIED":   1.3,
				"REGISTERED": 1.1,
			},
			ProvenBreederBonus:    1.2,
			ProvenBreederMinCount: 3,
			ShowRecordBonus:       1.15,
			ShowRecordMinWins:     3,
			ActiveInjuryPenalty:   0.7,
			SeniorDeclinePenalty:  0.85,
			ValueBands: []ValueBand{
				{MinScore: 90, BaseValue: 100000},
				{MinScore: 70, BaseValue: 30000},
				{MinScore: 50, BaseValue: 10000},
				{MinScore: 30, BaseValue: 3000},
				{MinScore: 0, BaseValue: 1000},
			},
			WithinBandModulus: 20,
			WithinBandStep:    0.05,
			FemaleValueFactor: 0.6,
			CurrencyUnit:      "INR",
		},
		Structural: []Trait{
			{Key: "neck_length", Weight: 0.15, Target: 0.75, WarnFloor: 0.40},
			{Key: "leg_thickness", Weight: 0.15, Target: 0.70, WarnFloor: 0.40},
			{Key: "bone_density", Weight: 0.15, Target: 0.80, WarnFloor: 0.45},
			{Key: "chest_width", Weight: 0.15, Target: 0.70, WarnFloor: 0.40},
			{Key: "feather_quality", Weight: 0.10, Target: 0.65, WarnFloor: 0.35},
			{Key: "posture", Weight: 0.10, Target: 0.75, WarnFloor: 0.40},
			{Key: "tail_carriage", Weight: 0.10, Target: 0.35, WarnFloor: 0.70, IdeallyLow: true},
			{Key: "body_width", Weight: 0.10, Target: 0.70, WarnFloor: 0.40},
		},
		Genetics: Genetics{
			DefaultSampleSize: 1000,
			MaxSampleSize:     100000,
			Confidence:        0.85,
		},
		Storage: Storage{
			Driver:     "sqlite",
			SQLitePath: "birdtwin.db",
		},
		Blob: Blob{
			Driver: "fs",
			FSRoot: "birdtwin-archive",
		},
	}
}

const weightSumEpsilon = 1e-9

// Validate enforces the structural invariants of the calibration. It is the
// load-time analogue of a compile-time check for policy that must stay
// configurable: valuation weights and structural trait weights must each sum
// to exactly 1.0, multipliers must be positive, and value bands must descend.
func (c *Calibration) Validate() error {
	w := c.Valuation
	sum := w.WeightMorphology + w.WeightGenetics + w.WeightPerformance + w.WeightHealth
	if math.Abs(sum-1.0) > weightSumEpsilon {
		return fmt.Errorf("valuation weights sum to %v, want 1.0", sum)
	}
	var traitSum float64
	seen := map[string]bool{}
	for _, t := range c.Structural {
		if t.Key == "" {
			return fmt.Errorf("structural trait with empty key")
		}
		if seen[t.Key] {
			return fmt.Errorf("duplicate structural trait %q", t.Key)
		}
		seen[t.Key] = true
		if t.Weight <= 0 || t.Target <= 0 || t.Target > 1 {
			return fmt.Errorf("structural trait %q has invalid weight/target", t.Key)
		}
		traitSum += t.Weight
	}
	if math.Abs(traitSum-1.0) > weightSumEpsilon {
		return fmt.Errorf("structural trait weights sum to %v, want 1.0", traitSum)
	}
	for name, m := range map[string]float64{
		"proven_breeder_bonus":   c.Market.ProvenBreederBonus,
		"show_record_bonus":      c.Market.ShowRecordBonus,
		"active_injury_penalty":  c.Market.ActiveInjuryPenalty,
		"senior_decline_penalty": c.Market.SeniorDeclinePenalty,
		"female_value_factor":    c.Market.FemaleValueFactor,
	} {
		if m <= 0 {
			return fmt.Errorf("market factor %s must be positive, got %v", name, m)
		}
	}
	if len(c.Market.ValueBands) == 0 {
		return fmt.Errorf("market value bands must not be empty")
	}
	if !sort.SliceIsSorted(c.Market.ValueBands, func(i, j int) bool {
		return c.Market.ValueBands[i].MinScore > c.Market.ValueBands[j].MinScore
	}) {
		return fmt.Errorf("market value bands must descend by min score")
	}
	if c.Market.WithinBandModulus <= 0 {
		return fmt.Errorf("within-band modulus must be positive")
	}
	if c.Genetics.DefaultSampleSize <= 0 || c.Genetics.MaxSampleSize < c.Genetics.DefaultSampleSize {
		return fmt.Errorf("genetics sample sizes invalid: default=%d max=%d",
			c.Genetics.DefaultSampleSize, c.Genetics.MaxSampleSize)
	}
	if c.Lifecycle.SeniorStaminaDecay <= 0 || c.Lifecycle.SeniorStaminaDecay >= 1 {
		return fmt.Errorf("senior stamina decay must be in (0,1)")
	}
	return nil
}

// Load reads calibration overrides from an optional yaml file and BIRDTWIN_*
// environment variables on top of the built-in defaults, then validates the
// merged result.
func Load() (*Calibration, error) {
	v := viper.New()
	v.SetConfigName("birdtwin")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/birdtwin/")
	v.SetEnvPrefix("BIRDTWIN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		// No file found; defaults plus environment variables apply.
	}

	cfg := Default()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid calibration: %w", err)
	}
	return cfg, nil
}
