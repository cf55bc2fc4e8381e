package domain

import (
	"context"
	"fmt"
)

// TransactionView exposes a read-only snapshot of store state to rules and
// queries. All returned values are clones of the underlying state.
type TransactionView interface {
	FindTwin(id string) (DigitalTwin, bool)
	FindTwinByBirdID(birdID string) (DigitalTwin, bool)
	ListTwins() []DigitalTwin
	ListTwinsByOwner(ownerID string) []DigitalTwin
	EventsForTwin(twinID string) []BirdEvent
}

// Transaction represents a mutation set applied atomically to store state.
type Transaction interface {
	TransactionView
	CreateTwin(twin DigitalTwin) (DigitalTwin, error)
	UpdateTwin(id string, mutator func(*DigitalTwin) error) (DigitalTwin, error)
	SoftDeleteTwin(id string) (DigitalTwin, error)
	AppendEvent(event BirdEvent) (BirdEvent, error)
}

// PersistentStore is the storage contract shared by the memory, sqlite and
// postgres backends. Committed reads return clones; rule evaluation happens
// at commit time against the transactional snapshot.
type PersistentStore interface {
	RunInTransaction(ctx context.Context, fn func(tx Transaction) error) (Result, error)
	View(ctx context.Context, fn func(view TransactionView) error) error
	GetTwin(id string) (DigitalTwin, bool)
	GetTwinByBirdID(birdID string) (DigitalTwin, bool)
	ListTwins() []DigitalTwin
	ListTwinsByOwner(ownerID string) []DigitalTwin
	EventsForTwin(twinID string) []BirdEvent
	Close() error
}

// ErrNotFound is returned when a referenced record does not exist.
type ErrNotFound struct {
	Entity EntityType
	ID     string
}

func (e ErrNotFound) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}
