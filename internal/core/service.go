// Package core orchestrates twin registration, event absorption, lifecycle
// sweeps, valuation refreshes and breeding predictions on top of the
// persistence layer and the commit-time rules engine.
package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"birdtwin/internal/config"
	"birdtwin/internal/genetics"
	"birdtwin/internal/lifecycle"
	"birdtwin/internal/metrics"
	"birdtwin/internal/structural"
	"birdtwin/internal/valuation"
	"birdtwin/pkg/domain"
)

// Service is the orchestration facade over the twin engines.
type Service struct {
	store     domain.PersistentStore
	cal       *config.Calibration
	lifecycle *lifecycle.Engine
	valuation *valuation.Engine
	log       *logrus.Logger
	metrics   *metrics.Metrics
}

// Option customizes service construction.
type Option func(*Service)

// WithLogger injects a structured logger. Defaults to a discard logger.
func WithLogger(log *logrus.Logger) Option {
	return func(s *Service) { s.log = log }
}

// WithMetrics injects engine instrumentation. A nil metrics set is valid.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// NewService constructs a service backed by the supplied store and
// calibration.
func NewService(store domain.PersistentStore, cal *config.Calibration, opts ...Option) *Service {
	lc := lifecycle.NewEngine(cal)
	s := &Service{
		store:     store,
		cal:       cal,
		lifecycle: lc,
		valuation: valuation.NewEngine(cal, lc),
		log:       discardLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func discardLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(nopWriter{})
	return log
}

type nopWriter struct{}

func (nopWriter) Write(p []byte) (int, error) { return len(p), nil }

// Lifecycle exposes the lifecycle engine for forecast queries.
func (s *Service) Lifecycle() *lifecycle.Engine { return s.lifecycle }

// Valuation exposes the valuation engine.
func (s *Service) Valuation() *valuation.Engine { return s.valuation }

// RegisterTwinInput carries the caller-supplied fields for a new twin.
type RegisterTwinInput struct {
	BirdID     string
	OwnerID    string
	RegistryID string
	BirthDate  *time.Time
	Gender     domain.Gender
	WeightKg   float64
	HeightCm   float64
	Genetics   *domain.GeneticProfile
}

// RegisterTwin creates a digital twin, derives its lifecycle stage from age,
// and computes the initial valuation before commit.
func (s *Service) RegisterTwin(ctx context.Context, input RegisterTwinInput) (domain.DigitalTwin, error) {
	if input.BirdID == "" {
		return domain.DigitalTwin{}, fmt.Errorf("bird id required")
	}
	if input.OwnerID == "" {
		return domain.DigitalTwin{}, fmt.Errorf("owner id required")
	}

	twin := domain.DigitalTwin{
		BirdID:              input.BirdID,
		OwnerID:             input.OwnerID,
		RegistryID:          input.RegistryID,
		BirthDate:           input.BirthDate,
		Gender:              input.Gender,
		LifecycleStage:      lifecycle.StageEgg.Name(),
		WeightKg:            input.WeightKg,
		HeightCm:            input.HeightCm,
		Genetics:            input.Genetics,
		CurrentHealthStatus: domain.HealthHealthy,
		BreedingStatus:      domain.BreedingUntested,
		CertificationLevel:  domain.CertificationNone,
		StaminaScore:        100,
	}

	updated, events, err := s.lifecycle.Update(twin)
	if err != nil {
		return domain.DigitalTwin{}, err
	}
	updated = s.computeValuation(updated)

	var created domain.DigitalTwin
	_, err = s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		var txErr error
		created, txErr = tx.CreateTwin(updated)
		if txErr != nil {
			return txErr
		}
		// An older bird may skip stages at registration; its trail still
		// starts with the transition fact the engine derived.
		for _, ev := range events {
			ev.TwinID = created.ID
			appended, txErr := tx.AppendEvent(ev)
			if txErr != nil {
				return txErr
			}
			if from, to, ok := splitTransition(appended); ok {
				s.metrics.IncStageTransition(from, to)
			}
		}
		return nil
	})
	if err != nil {
		return domain.DigitalTwin{}, err
	}

	s.log.WithFields(logrus.Fields{
		"twin_id": created.ID,
		"bird_id": created.BirdID,
		"stage":   created.LifecycleStage,
	}).Info("twin registered")
	return created, nil
}

// RecordEvent appends an immutable event to a twin's trail and absorbs its
// impact incrementally: only the affected component recomputes, then the
// composite and monetary estimate recompose.
func (s *Service) RecordEvent(ctx context.Context, twinID string, event domain.BirdEvent) (domain.DigitalTwin, domain.BirdEvent, error) {
	var (
		updated  domain.DigitalTwin
		recorded domain.BirdEvent
	)
	result, err := s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		twin, ok := tx.FindTwin(twinID)
		if !ok {
			return domain.ErrNotFound{Entity: domain.EntityTwin, ID: twinID}
		}
		if twin.IsDeleted() {
			return fmt.Errorf("twin %q is deleted", twinID)
		}

		event.TwinID = twinID
		if event.AgeDaysAt == 0 {
			event.AgeDaysAt = twin.AgeDays
		}
		if event.StageAt == "" {
			event.StageAt = twin.LifecycleStage
		}
		var txErr error
		recorded, txErr = tx.AppendEvent(event)
		if txErr != nil {
			return txErr
		}

		impacted := s.valuation.ProcessEventImpact(twin, recorded)
		updated, txErr = tx.UpdateTwin(twinID, func(t *domain.DigitalTwin) error {
			*t = impacted
			return nil
		})
		return txErr
	})
	if err != nil {
		return domain.DigitalTwin{}, domain.BirdEvent{}, err
	}
	s.logViolations(result)

	s.metrics.IncEventProcessed(string(recorded.Type))
	s.log.WithFields(logrus.Fields{
		"twin_id":    twinID,
		"event_type": recorded.Type,
		"valuation":  updated.ValuationScore,
	}).Info("event recorded")
	return updated, recorded, nil
}

// UpdateTwinLifecycle re-derives the twin's stage from its current age,
// appends any transition event, and recomputes the full valuation.
func (s *Service) UpdateTwinLifecycle(ctx context.Context, twinID string) (domain.DigitalTwin, error) {
	var updated domain.DigitalTwin
	result, err := s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		twin, ok := tx.FindTwin(twinID)
		if !ok {
			return domain.ErrNotFound{Entity: domain.EntityTwin, ID: twinID}
		}
		if twin.IsDeleted() {
			return fmt.Errorf("twin %q is deleted", twinID)
		}
		next, _, err := s.advance(tx, twin)
		if err != nil {
			return err
		}
		updated = next
		return nil
	})
	if err != nil {
		return domain.DigitalTwin{}, err
	}
	s.logViolations(result)
	return updated, nil
}

// advance runs the lifecycle engine and full valuation for one twin inside
// an open transaction, appending any transition events.
func (s *Service) advance(tx domain.Transaction, twin domain.DigitalTwin) (domain.DigitalTwin, []domain.BirdEvent, error) {
	next, events, err := s.lifecycle.Update(twin)
	if err != nil {
		return domain.DigitalTwin{}, nil, err
	}
	for i, ev := range events {
		appended, txErr := tx.AppendEvent(ev)
		if txErr != nil {
			return domain.DigitalTwin{}, nil, txErr
		}
		events[i] = appended
		if from, to, ok := splitTransition(appended); ok {
			s.metrics.IncStageTransition(from, to)
			s.log.WithFields(logrus.Fields{
				"twin_id": twin.ID,
				"from":    from,
				"to":      to,
			}).Info("stage transition")
		}
	}
	next = s.computeValuation(next)
	updated, txErr := tx.UpdateTwin(twin.ID, func(t *domain.DigitalTwin) error {
		*t = next
		return nil
	})
	if txErr != nil {
		return domain.DigitalTwin{}, nil, txErr
	}
	return updated, events, nil
}

func splitTransition(event domain.BirdEvent) (string, string, bool) {
	if event.Type != domain.EventStageTransition || event.StringValue == nil {
		return "", "", false
	}
	parts := strings.SplitN(*event.StringValue, "->", 2)
	if len(parts) != 2 {
		return "", "", false
	}
	return parts[0], parts[1], true
}

// SweepOwner advances the lifecycle of every live twin owned by ownerID in a
// single transaction. Twins without a birth date are skipped by the engine.
func (s *Service) SweepOwner(ctx context.Context, ownerID string) (int, error) {
	swept := 0
	result, err := s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		swept = 0
		for _, twin := range tx.ListTwinsByOwner(ownerID) {
			if twin.IsDeleted() {
				continue
			}
			if _, _, err := s.advance(tx, twin); err != nil {
				return fmt.Errorf("sweep twin %s: %w", twin.ID, err)
			}
			swept++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	s.logViolations(result)
	s.log.WithFields(logrus.Fields{"owner_id": ownerID, "twins": swept}).Info("owner sweep complete")
	return swept, nil
}

// SweepAll advances the lifecycle of every live twin in the store. Used by
// the daemon's periodic sweep.
func (s *Service) SweepAll(ctx context.Context) (int, error) {
	swept := 0
	result, err := s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		swept = 0
		for _, twin := range tx.ListTwins() {
			if twin.IsDeleted() {
				continue
			}
			if _, _, err := s.advance(tx, twin); err != nil {
				return fmt.Errorf("sweep twin %s: %w", twin.ID, err)
			}
			swept++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	s.logViolations(result)
	return swept, nil
}

// RefreshValuation recomputes all four components and the composite from the
// twin's current state without touching its lifecycle stage.
func (s *Service) RefreshValuation(ctx context.Context, twinID string) (domain.DigitalTwin, error) {
	var updated domain.DigitalTwin
	result, err := s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		twin, ok := tx.FindTwin(twinID)
		if !ok {
			return domain.ErrNotFound{Entity: domain.EntityTwin, ID: twinID}
		}
		refreshed := s.computeValuation(twin)
		var txErr error
		updated, txErr = tx.UpdateTwin(twinID, func(t *domain.DigitalTwin) error {
			*t = refreshed
			return nil
		})
		return txErr
	})
	if err != nil {
		return domain.DigitalTwin{}, err
	}
	s.logViolations(result)
	return updated, nil
}

func (s *Service) computeValuation(twin domain.DigitalTwin) domain.DigitalTwin {
	start := time.Now()
	out := s.valuation.ComputeFullValuation(twin)
	s.metrics.ObserveValuationLatency(time.Since(start))
	return out
}

// TransitionForecast reports the twin's next stage boundary and the
// capabilities it unlocks. Returns false for terminal twins and twins with
// no birth date.
func (s *Service) TransitionForecast(twinID string) (lifecycle.TransitionInfo, bool, error) {
	twin, ok := s.store.GetTwin(twinID)
	if !ok {
		return lifecycle.TransitionInfo{}, false, domain.ErrNotFound{Entity: domain.EntityTwin, ID: twinID}
	}
	info, ok := s.lifecycle.NextTransitionInfo(twin)
	return info, ok, nil
}

// ScoreStructure computes the Aseel structure index for the profile and
// persists the resulting bone density reading on the twin when morphology
// measurement is unlocked.
func (s *Service) ScoreStructure(ctx context.Context, twinID string, profile structural.Profile) (int, []string, error) {
	twin, ok := s.store.GetTwin(twinID)
	if !ok {
		return 0, nil, domain.ErrNotFound{Entity: domain.EntityTwin, ID: twinID}
	}
	if !lifecycle.CanMeasureMorphology(twin) {
		return 0, nil, fmt.Errorf("twin %q at stage %s cannot be structure scored yet", twinID, twin.LifecycleStage)
	}
	score, warnings := structural.CalculateASI(profile, s.cal.Structural)

	_, err := s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		_, txErr := tx.UpdateTwin(twinID, func(t *domain.DigitalTwin) error {
			t.BoneDensityScore = profile.BoneDensity * 100
			return nil
		})
		return txErr
	})
	if err != nil {
		return 0, nil, err
	}
	return score, warnings, nil
}

// PredictTwinPhenotype resolves the twin's stored genetic profile into its
// expressed phenotype and local variety classification.
func (s *Service) PredictTwinPhenotype(twinID string) (genetics.Prediction, error) {
	twin, ok := s.store.GetTwin(twinID)
	if !ok {
		return genetics.Prediction{}, domain.ErrNotFound{Entity: domain.EntityTwin, ID: twinID}
	}
	if twin.Genetics == nil {
		return genetics.Prediction{}, fmt.Errorf("twin %q has no genetic profile", twinID)
	}
	return genetics.PredictPhenotype(*twin.Genetics, s.cal.Genetics.Confidence), nil
}

// BreedingPrediction combines the exact per-locus Punnett probabilities with
// a sampled composite-phenotype distribution.
type BreedingPrediction struct {
	SireID       string                              `json:"sire_id"`
	DamID        string                              `json:"dam_id"`
	PerLocus     map[domain.Locus]map[string]float64 `json:"per_locus"`
	Distribution []genetics.DistributionEntry        `json:"distribution"`
	SampleSize   int                                 `json:"sample_size"`
	Seed         uint64                              `json:"seed"`
}

// PredictBreeding crosses two twins. sampleSize 0 uses the calibrated
// default; sizes beyond the calibrated maximum are rejected. The seed makes
// runs reproducible.
func (s *Service) PredictBreeding(ctx context.Context, sireID, damID string, sampleSize int, seed uint64) (BreedingPrediction, error) {
	sire, ok := s.store.GetTwin(sireID)
	if !ok {
		return BreedingPrediction{}, domain.ErrNotFound{Entity: domain.EntityTwin, ID: sireID}
	}
	dam, ok := s.store.GetTwin(damID)
	if !ok {
		return BreedingPrediction{}, domain.ErrNotFound{Entity: domain.EntityTwin, ID: damID}
	}
	if sire.Genetics == nil || dam.Genetics == nil {
		return BreedingPrediction{}, errors.New("both parents need a genetic profile")
	}
	if !lifecycle.IsBreedingEligible(sire) || !lifecycle.IsBreedingEligible(dam) {
		s.log.WithFields(logrus.Fields{
			"sire_id": sireID,
			"dam_id":  damID,
		}).Warn("breeding prediction for not-yet-eligible pair")
	}
	if sampleSize == 0 {
		sampleSize = s.cal.Genetics.DefaultSampleSize
	}
	if sampleSize > s.cal.Genetics.MaxSampleSize {
		return BreedingPrediction{}, fmt.Errorf("sample size %d exceeds maximum %d", sampleSize, s.cal.Genetics.MaxSampleSize)
	}

	start := time.Now()
	sim := genetics.NewSeededSimulator(seed)
	distribution, err := genetics.PredictOffspringDistribution(sim, *sire.Genetics, *dam.Genetics, sampleSize, s.cal.Genetics.Confidence)
	if err != nil {
		return BreedingPrediction{}, err
	}
	s.metrics.ObserveBreedingLatency(time.Since(start))

	return BreedingPrediction{
		SireID:       sireID,
		DamID:        damID,
		PerLocus:     genetics.CrossLoci(*sire.Genetics, *dam.Genetics),
		Distribution: distribution,
		SampleSize:   sampleSize,
		Seed:         seed,
	}, nil
}

// SoftDeleteTwin marks the twin deleted while preserving its event trail.
func (s *Service) SoftDeleteTwin(ctx context.Context, twinID string) (domain.DigitalTwin, error) {
	var deleted domain.DigitalTwin
	_, err := s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		var txErr error
		deleted, txErr = tx.SoftDeleteTwin(twinID)
		return txErr
	})
	if err != nil {
		return domain.DigitalTwin{}, err
	}
	s.log.WithField("twin_id", twinID).Info("twin soft deleted")
	return deleted, nil
}

// GetTwin returns the committed twin.
func (s *Service) GetTwin(twinID string) (domain.DigitalTwin, error) {
	twin, ok := s.store.GetTwin(twinID)
	if !ok {
		return domain.DigitalTwin{}, domain.ErrNotFound{Entity: domain.EntityTwin, ID: twinID}
	}
	return twin, nil
}

// ListTwinsByOwner returns the committed twins for an owner.
func (s *Service) ListTwinsByOwner(ownerID string) []domain.DigitalTwin {
	return s.store.ListTwinsByOwner(ownerID)
}

// EventsForTwin returns the committed event trail in append order.
func (s *Service) EventsForTwin(twinID string) []domain.BirdEvent {
	return s.store.EventsForTwin(twinID)
}

func (s *Service) logViolations(result domain.Result) {
	for _, v := range result.Violations {
		s.metrics.IncRuleViolation(v.Rule, string(v.Severity))
		entry := s.log.WithFields(logrus.Fields{
			"rule":      v.Rule,
			"entity_id": v.EntityID,
		})
		if v.Severity == domain.SeverityWarn {
			entry.Warn(v.Message)
		} else {
			entry.Info(v.Message)
		}
	}
}
