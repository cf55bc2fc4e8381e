package domain

import "time"

// EventType enumerates the append-only facts recorded against a twin.
type EventType string

// Canonical event types. Unrecognised types are preserved verbatim and
// resolve to the neutral branch during impact processing.
const (
	EventStageTransition EventType = "stage_transition"
	EventWeightRecorded  EventType = "weight_recorded"
	EventFightWin        EventType = "fight_win"
	EventFightLoss       EventType = "fight_loss"
	EventFightDraw       EventType = "fight_draw"
	EventInjury          EventType = "injury"
	EventRecovery        EventType = "recovery"
	EventVaccination     EventType = "vaccination"
	EventBreedingSuccess EventType = "breeding_success"
	EventBreedingFailure EventType = "breeding_failure"
	EventShowResult      EventType = "show_result"
)

// BirdEvent is an immutable audit-trail fact. Events are appended once and
// never mutated or deleted.
type BirdEvent struct {
	ID           string    `json:"id"`
	TwinID       string    `json:"twin_id"`
	Type         EventType `json:"event_type"`
	EventDate    time.Time `json:"event_date"`
	AgeDaysAt    int       `json:"age_days_at_event"`
	StageAt      string    `json:"lifecycle_stage_at_event"`
	NumericValue *float64  `json:"numeric_value,omitempty"`
	StringValue  *string   `json:"string_value,omitempty"`

	// Optional per-component score deltas supplied by upstream recorders.
	MorphologyDelta  *float64 `json:"morphology_delta,omitempty"`
	PerformanceDelta *float64 `json:"performance_delta,omitempty"`
	HealthDelta      *float64 `json:"health_delta,omitempty"`
	MarketDelta      *float64 `json:"market_delta,omitempty"`
}

// Clone returns a deep copy of the event.
func (e BirdEvent) Clone() BirdEvent {
	cp := e
	cp.NumericValue = clonePtr(e.NumericValue)
	cp.StringValue = clonePtr(e.StringValue)
	cp.MorphologyDelta = clonePtr(e.MorphologyDelta)
	cp.PerformanceDelta = clonePtr(e.PerformanceDelta)
	cp.HealthDelta = clonePtr(e.HealthDelta)
	cp.MarketDelta = clonePtr(e.MarketDelta)
	return cp
}

// Float64 returns a pointer suitable for optional event payload fields.
func Float64(v float64) *float64 { return &v }

// String returns a pointer suitable for optional event payload fields.
func String(v string) *string { return &v }

// Int returns a pointer suitable for optional placement fields.
func Int(v int) *int { return &v }
