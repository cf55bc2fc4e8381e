// Package domain defines the core persistent entities, value types, and
// rule evaluation primitives used by birdtwin.
package domain

import "time"

// EntityType identifies the type of record stored in the core domain.
type EntityType string

// Supported entity type identifiers used in Change records and persistence buckets.
const (
	// EntityTwin identifies an individual digital twin record.
	EntityTwin EntityType = "digital_twin"
	// EntityEvent identifies an append-only bird event record.
	EntityEvent EntityType = "bird_event"
)

// Gender enumerates the biological sexes tracked on a twin.
type Gender string

// Canonical twin genders.
const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

// HealthStatus enumerates the coarse health states carried on a twin.
// Unrecognised values degrade to the neutral branch in every consumer.
type HealthStatus string

// Canonical health statuses.
const (
	HealthHealthy    HealthStatus = "HEALTHY"
	HealthOK         HealthStatus = "OK"
	HealthRecovering HealthStatus = "RECOVERING"
	HealthInjured    HealthStatus = "INJURED"
	HealthSick       HealthStatus = "SICK"
)

// BreedingStatus enumerates the breeding track record states of a twin.
type BreedingStatus string

// Canonical breeding statuses.
const (
	BreedingUntested BreedingStatus = "UNTESTED"
	BreedingActive   BreedingStatus = "ACTIVE"
	BreedingProven   BreedingStatus = "PROVEN"
	BreedingRetired  BreedingStatus = "RETIRED"
)

// CertificationLevel enumerates registry certification tiers used by the
// market multiplier.
type CertificationLevel string

// Canonical certification tiers.
const (
	CertificationNone       CertificationLevel = "NONE"
	CertificationRegistered CertificationLevel = "REGISTERED"
	CertificationVerified   CertificationLevel = "VERIFIED"
	CertificationChampion   CertificationLevel = "CHAMPION"
)

// Base contains common fields for all domain records.
type Base struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DigitalTwin is the mutable aggregate modelling one physical bird. Engines
// treat it as an immutable snapshot: every operation takes a copy and returns
// a new value with the recomputed fields replaced.
type DigitalTwin struct {
	Base
	BirdID     string `json:"bird_id"`
	OwnerID    string `json:"owner_id"`
	RegistryID string `json:"registry_id,omitempty"`

	// Biological facts.
	BirthDate      *time.Time `json:"birth_date"`
	Gender         Gender     `json:"gender"`
	AgeDays        int        `json:"age_days"`
	LifecycleStage string     `json:"lifecycle_stage"`

	// Measured attributes.
	WeightKg         float64 `json:"weight_kg"`
	HeightCm         float64 `json:"height_cm"`
	BoneDensityScore float64 `json:"bone_density_score"`

	// Genetic attributes.
	GenerationDepth       int             `json:"generation_depth"`
	InbreedingCoefficient *float64        `json:"inbreeding_coefficient"`
	GeneticPurityScore    float64         `json:"genetic_purity_score"`
	TotalOffspring        int             `json:"total_offspring"`
	Genetics              *GeneticProfile `json:"genetics,omitempty"`

	// Performance counters.
	TotalFights       int     `json:"total_fights"`
	FightWins         int     `json:"fight_wins"`
	TotalShows        int     `json:"total_shows"`
	ShowWins          int     `json:"show_wins"`
	BestPlacement     *int    `json:"best_placement"`
	AggressionIndex   float64 `json:"aggression_index"`
	EnduranceScore    float64 `json:"endurance_score"`
	IntelligenceScore float64 `json:"intelligence_score"`

	// Health counters.
	CurrentHealthStatus HealthStatus `json:"current_health_status"`
	VaccinationCount    int          `json:"vaccination_count"`
	InjuryCount         int          `json:"injury_count"`
	StaminaScore        float64      `json:"stamina_score"`

	// Breeding status.
	BreedingStatus        BreedingStatus `json:"breeding_status"`
	TotalBreedingAttempts int            `json:"total_breeding_attempts"`
	SuccessfulBreedings   int            `json:"successful_breedings"`

	// Commercial attributes.
	CertificationLevel CertificationLevel `json:"certification_level"`
	MorphologyScore    float64            `json:"morphology_score"`
	GeneticsScore      float64            `json:"genetics_score"`
	PerformanceScore   float64            `json:"performance_score"`
	HealthScore        float64            `json:"health_score"`
	MaturityScore      int                `json:"maturity_score"`
	ValuationScore     int                `json:"valuation_score"`
	EstimatedValue     float64            `json:"estimated_value"`

	// Twins are soft-deleted, never removed, so the event trail stays valid.
	DeletedAt *time.Time `json:"deleted_at"`
}

// IsMale reports whether the twin is male. Any value other than GenderFemale
// is treated as male to keep gender-branched lookups total.
func (t DigitalTwin) IsMale() bool { return t.Gender != GenderFemale }

// IsDeleted reports whether the twin has been soft-deleted.
func (t DigitalTwin) IsDeleted() bool { return t.DeletedAt != nil }

// Clone returns a deep copy of the twin so engine outputs never alias the
// stored snapshot.
func (t DigitalTwin) Clone() DigitalTwin {
	cp := t
	cp.BirthDate = clonePtr(t.BirthDate)
	cp.InbreedingCoefficient = clonePtr(t.InbreedingCoefficient)
	cp.BestPlacement = clonePtr(t.BestPlacement)
	cp.DeletedAt = clonePtr(t.DeletedAt)
	if t.Genetics != nil {
		g := t.Genetics.Clone()
		cp.Genetics = &g
	}
	return cp
}

func clonePtr[T any](v *T) *T {
	if v == nil {
		return nil
	}
	cp := *v
	return &cp
}
