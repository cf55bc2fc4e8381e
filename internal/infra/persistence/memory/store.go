// Package memory provides an in-memory implementation of the twin persistence
// store used for tests and ephemeral environments.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"birdtwin/pkg/domain"
)

// Compile-time contract assertion ensuring memory.Store adheres to the domain persistence interface.
var _ domain.PersistentStore = (*Store)(nil)

type (
	// DigitalTwin aliases domain.DigitalTwin for in-memory persistence operations.
	DigitalTwin = domain.DigitalTwin
	// BirdEvent aliases domain.BirdEvent.
	BirdEvent = domain.BirdEvent
	// Change aliases domain.Change captured in transactions.
	Change = domain.Change
	// Result aliases domain.Result summarizing rule evaluation.
	Result = domain.Result
	// RulesEngine aliases domain.RulesEngine used to evaluate rules.
	RulesEngine = domain.RulesEngine
	// Transaction aliases domain.Transaction representing a mutable unit of work.
	Transaction = domain.Transaction
	// TransactionView aliases domain.TransactionView providing read-only state.
	TransactionView = domain.TransactionView
)

type memoryState struct {
	twins  map[string]DigitalTwin
	events map[string][]BirdEvent // keyed by twin ID, append order preserved
}

func newMemoryState() memoryState {
	return memoryState{
		twins:  make(map[string]DigitalTwin),
		events: make(map[string][]BirdEvent),
	}
}

func (s memoryState) clone() memoryState {
	cp := newMemoryState()
	for id, twin := range s.twins {
		cp.twins[id] = twin.Clone()
	}
	for twinID, events := range s.events {
		out := make([]BirdEvent, len(events))
		for i, ev := range events {
			out[i] = ev.Clone()
		}
		cp.events[twinID] = out
	}
	return cp
}

// Snapshot captures a point-in-time clone of the store state.
type Snapshot struct {
	Twins  map[string]DigitalTwin `json:"twins"`
	Events map[string][]BirdEvent `json:"events"`
}

func snapshotFromMemoryState(state memoryState) Snapshot {
	s := Snapshot{
		Twins:  make(map[string]DigitalTwin, len(state.twins)),
		Events: make(map[string][]BirdEvent, len(state.events)),
	}
	for id, twin := range state.twins {
		s.Twins[id] = twin.Clone()
	}
	for twinID, events := range state.events {
		out := make([]BirdEvent, len(events))
		for i, ev := range events {
			out[i] = ev.Clone()
		}
		s.Events[twinID] = out
	}
	return s
}

func memoryStateFromSnapshot(s Snapshot) memoryState {
	state := newMemoryState()
	for id, twin := range s.Twins {
		state.twins[id] = twin.Clone()
	}
	for twinID, events := range s.Events {
		out := make([]BirdEvent, len(events))
		for i, ev := range events {
			out[i] = ev.Clone()
		}
		state.events[twinID] = out
	}
	return state
}

// migrateSnapshot normalizes snapshots loaded from external persistence:
// nil buckets become empty maps and events whose twin no longer exists are
// dropped.
func migrateSnapshot(snapshot Snapshot) Snapshot {
	if snapshot.Twins == nil {
		snapshot.Twins = map[string]DigitalTwin{}
	}
	if snapshot.Events == nil {
		snapshot.Events = map[string][]BirdEvent{}
	}
	for twinID := range snapshot.Events {
		if _, ok := snapshot.Twins[twinID]; !ok {
			delete(snapshot.Events, twinID)
		}
	}
	return snapshot
}

// Store provides an in-memory transactional store for digital twins and
// their event trails.
type Store struct {
	mu     sync.RWMutex
	state  memoryState
	engine *RulesEngine
	nowFn  func() time.Time
}

// NewStore constructs an in-memory store backed by the provided rules engine.
func NewStore(engine *RulesEngine) *Store {
	if engine == nil {
		engine = domain.NewRulesEngine()
	}
	return &Store{
		state:  newMemoryState(),
		engine: engine,
		nowFn:  func() time.Time { return time.Now().UTC() },
	}
}

func (s *Store) newID() string {
	return uuid.NewString()
}

// ExportState clones the current store state for external persistence.
func (s *Store) ExportState() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return snapshotFromMemoryState(s.state)
}

// ImportState replaces the store state with the provided snapshot.
func (s *Store) ImportState(snapshot Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = memoryStateFromSnapshot(migrateSnapshot(snapshot))
}

// RulesEngine exposes the currently configured engine.
func (s *Store) RulesEngine() *RulesEngine {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.engine
}

// SetNowFunc overrides the time provider. Intended for tests.
func (s *Store) SetNowFunc(nowFn func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nowFn = nowFn
}

type transaction struct {
	store   *Store
	state   memoryState
	changes []Change
	now     time.Time
}

type transactionView struct {
	state *memoryState
}

func newTransactionView(state *memoryState) TransactionView {
	return transactionView{state: state}
}

// FindTwin returns the twin with the given ID within the snapshot.
func (v transactionView) FindTwin(id string) (DigitalTwin, bool) {
	twin, ok := v.state.twins[id]
	if !ok {
		return DigitalTwin{}, false
	}
	return twin.Clone(), true
}

// FindTwinByBirdID returns the twin registered for the physical bird.
func (v transactionView) FindTwinByBirdID(birdID string) (DigitalTwin, bool) {
	for _, twin := range v.state.twins {
		if twin.BirdID == birdID {
			return twin.Clone(), true
		}
	}
	return DigitalTwin{}, false
}

// ListTwins returns all twins sorted by ID for deterministic iteration.
func (v transactionView) ListTwins() []DigitalTwin {
	out := make([]DigitalTwin, 0, len(v.state.twins))
	for _, twin := range v.state.twins {
		out = append(out, twin.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// ListTwinsByOwner returns all twins owned by the given owner, sorted by ID.
func (v transactionView) ListTwinsByOwner(ownerID string) []DigitalTwin {
	var out []DigitalTwin
	for _, twin := range v.state.twins {
		if twin.OwnerID == ownerID {
			out = append(out, twin.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// EventsForTwin returns the twin's event trail in append order.
func (v transactionView) EventsForTwin(twinID string) []BirdEvent {
	events := v.state.events[twinID]
	out := make([]BirdEvent, len(events))
	for i, ev := range events {
		out[i] = ev.Clone()
	}
	return out
}

func (tx *transaction) recordChange(change Change) {
	tx.changes = append(tx.changes, change)
}

func (tx *transaction) view() transactionView {
	return transactionView{state: &tx.state}
}

// FindTwin exposes twin lookup within the transaction scope.
func (tx *transaction) FindTwin(id string) (DigitalTwin, bool) {
	return tx.view().FindTwin(id)
}

// FindTwinByBirdID exposes bird lookup within the transaction scope.
func (tx *transaction) FindTwinByBirdID(birdID string) (DigitalTwin, bool) {
	return tx.view().FindTwinByBirdID(birdID)
}

// ListTwins lists all twins within the transaction scope.
func (tx *transaction) ListTwins() []DigitalTwin {
	return tx.view().ListTwins()
}

// ListTwinsByOwner lists owned twins within the transaction scope.
func (tx *transaction) ListTwinsByOwner(ownerID string) []DigitalTwin {
	return tx.view().ListTwinsByOwner(ownerID)
}

// EventsForTwin lists the event trail within the transaction scope.
func (tx *transaction) EventsForTwin(twinID string) []BirdEvent {
	return tx.view().EventsForTwin(twinID)
}

// CreateTwin stores a new digital twin.
func (tx *transaction) CreateTwin(twin DigitalTwin) (DigitalTwin, error) {
	if twin.ID == "" {
		twin.ID = tx.store.newID()
	}
	if _, exists := tx.state.twins[twin.ID]; exists {
		return DigitalTwin{}, fmt.Errorf("twin %q already exists", twin.ID)
	}
	if twin.BirdID != "" {
		if existing, ok := tx.FindTwinByBirdID(twin.BirdID); ok {
			return DigitalTwin{}, fmt.Errorf("bird %q already registered as twin %q", twin.BirdID, existing.ID)
		}
	}
	twin.CreatedAt = tx.now
	twin.UpdatedAt = tx.now
	tx.state.twins[twin.ID] = twin.Clone()
	tx.recordChange(Change{Entity: domain.EntityTwin, Action: domain.ActionCreate, After: twin.Clone()})
	return twin.Clone(), nil
}

// UpdateTwin mutates a twin using the provided mutator function.
func (tx *transaction) UpdateTwin(id string, mutator func(*DigitalTwin) error) (DigitalTwin, error) {
	current, ok := tx.state.twins[id]
	if !ok {
		return DigitalTwin{}, domain.ErrNotFound{Entity: domain.EntityTwin, ID: id}
	}
	before := current.Clone()
	if err := mutator(&current); err != nil {
		return DigitalTwin{}, err
	}
	current.ID = id
	current.UpdatedAt = tx.now
	tx.state.twins[id] = current.Clone()
	tx.recordChange(Change{Entity: domain.EntityTwin, Action: domain.ActionUpdate, Before: before, After: current.Clone()})
	return current.Clone(), nil
}

// SoftDeleteTwin marks a twin deleted while preserving its event trail.
func (tx *transaction) SoftDeleteTwin(id string) (DigitalTwin, error) {
	return tx.UpdateTwin(id, func(twin *DigitalTwin) error {
		if twin.DeletedAt != nil {
			return fmt.Errorf("twin %q already deleted", id)
		}
		deletedAt := tx.now
		twin.DeletedAt = &deletedAt
		return nil
	})
}

// AppendEvent records an immutable event against an existing twin.
func (tx *transaction) AppendEvent(event BirdEvent) (BirdEvent, error) {
	if _, ok := tx.state.twins[event.TwinID]; !ok {
		return BirdEvent{}, domain.ErrNotFound{Entity: domain.EntityTwin, ID: event.TwinID}
	}
	if event.ID == "" {
		event.ID = tx.store.newID()
	}
	if event.EventDate.IsZero() {
		event.EventDate = tx.now
	}
	tx.state.events[event.TwinID] = append(tx.state.events[event.TwinID], event.Clone())
	tx.recordChange(Change{Entity: domain.EntityEvent, Action: domain.ActionAppend, After: event.Clone()})
	return event.Clone(), nil
}

// RunInTransaction executes fn within a transactional copy of the store state.
// Registered rules evaluate against the candidate state before commit;
// blocking violations roll the transaction back.
func (s *Store) RunInTransaction(ctx context.Context, fn func(tx Transaction) error) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &transaction{
		store: s,
		state: s.state.clone(),
		now:   s.nowFn(),
	}

	if err := fn(tx); err != nil {
		return Result{}, err
	}

	var result Result
	if s.engine != nil {
		view := newTransactionView(&tx.state)
		res, err := s.engine.Evaluate(ctx, view, tx.changes)
		if err != nil {
			return Result{}, err
		}
		result = res
		if res.HasBlocking() {
			return res, domain.RuleViolationError{Result: res}
		}
	}

	s.state = tx.state
	return result, nil
}

// View executes fn against a read-only snapshot of the store state.
func (s *Store) View(_ context.Context, fn func(view TransactionView) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot := s.state.clone()
	return fn(newTransactionView(&snapshot))
}

// GetTwin returns the committed twin with the given ID.
func (s *Store) GetTwin(id string) (DigitalTwin, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	twin, ok := s.state.twins[id]
	if !ok {
		return DigitalTwin{}, false
	}
	return twin.Clone(), true
}

// GetTwinByBirdID returns the committed twin registered for the physical bird.
func (s *Store) GetTwinByBirdID(birdID string) (DigitalTwin, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, twin := range s.state.twins {
		if twin.BirdID == birdID {
			return twin.Clone(), true
		}
	}
	return DigitalTwin{}, false
}

// ListTwins returns all committed twins sorted by ID.
func (s *Store) ListTwins() []DigitalTwin {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return transactionView{state: &s.state}.ListTwins()
}

// ListTwinsByOwner returns all committed twins for an owner sorted by ID.
func (s *Store) ListTwinsByOwner(ownerID string) []DigitalTwin {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return transactionView{state: &s.state}.ListTwinsByOwner(ownerID)
}

// EventsForTwin returns the committed event trail in append order.
func (s *Store) EventsForTwin(twinID string) []BirdEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return transactionView{state: &s.state}.EventsForTwin(twinID)
}

// Close releases resources. The in-memory store holds none.
func (s *Store) Close() error { return nil }
