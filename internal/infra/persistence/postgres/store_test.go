package postgres

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"

	"birdtwin/internal/infra/persistence/memory"
	"birdtwin/pkg/domain"
)

// stubState is the shared backing for one stub database: the state table
// plus a log of executed statements.
type stubState struct {
	mu      sync.Mutex
	buckets map[string][]byte
	execs   []string
}

func newStubDB() (*sql.DB, *stubState) {
	state := &stubState{buckets: map[string][]byte{}}
	return sql.OpenDB(stubConnector{state: state}), state
}

type stubConnector struct{ state *stubState }

func (c stubConnector) Connect(context.Context) (driver.Conn, error) {
	return &stubConn{state: c.state}, nil
}

func (c stubConnector) Driver() driver.Driver { return stubDriver{} }

type stubDriver struct{}

func (stubDriver) Open(string) (driver.Conn, error) {
	return nil, fmt.Errorf("use the connector")
}

type stubConn struct{ state *stubState }

func (c *stubConn) Prepare(string) (driver.Stmt, error) {
	return nil, fmt.Errorf("prepared statements unsupported")
}

func (c *stubConn) Close() error { return nil }

func (c *stubConn) Begin() (driver.Tx, error) { return stubTx{}, nil }

func (c *stubConn) BeginTx(context.Context, driver.TxOptions) (driver.Tx, error) {
	return stubTx{}, nil
}

func (c *stubConn) Ping(context.Context) error { return nil }

func (c *stubConn) ExecContext(_ context.Context, query string, args []driver.NamedValue) (driver.Result, error) {
	c.state.mu.Lock()
	defer c.state.mu.Unlock()
	c.state.execs = append(c.state.execs, query)
	if strings.Contains(query, "INSERT INTO state") {
		bucket, ok := args[0].Value.(string)
		if !ok {
			return nil, fmt.Errorf("bucket arg: %T", args[0].Value)
		}
		payload, ok := args[1].Value.([]byte)
		if !ok {
			return nil, fmt.Errorf("payload arg: %T", args[1].Value)
		}
		cp := make([]byte, len(payload))
		copy(cp, payload)
		c.state.buckets[bucket] = cp
	}
	return driver.RowsAffected(1), nil
}

func (c *stubConn) QueryContext(_ context.Context, query string, _ []driver.NamedValue) (driver.Rows, error) {
	if !strings.Contains(query, "FROM state") {
		return nil, fmt.Errorf("unexpected query %q", query)
	}
	c.state.mu.Lock()
	defer c.state.mu.Unlock()
	rows := &stubRows{}
	for bucket, payload := range c.state.buckets {
		cp := make([]byte, len(payload))
		copy(cp, payload)
		rows.data = append(rows.data, [2]driver.Value{bucket, cp})
	}
	return rows, nil
}

type stubTx struct{}

func (stubTx) Commit() error   { return nil }
func (stubTx) Rollback() error { return nil }

type stubRows struct {
	data [][2]driver.Value
	pos  int
}

func (r *stubRows) Columns() []string { return []string{"bucket", "payload"} }
func (r *stubRows) Close() error      { return nil }

func (r *stubRows) Next(dest []driver.Value) error {
	if r.pos >= len(r.data) {
		return io.EOF
	}
	dest[0] = r.data[r.pos][0]
	dest[1] = r.data[r.pos][1]
	r.pos++
	return nil
}

func openStubStore(t *testing.T, db *sql.DB, engine *domain.RulesEngine) *Store {
	t.Helper()
	restore := OverrideSQLOpen(func(_, _ string) (*sql.DB, error) { return db, nil })
	defer restore()
	store, err := NewStore("", engine)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	return store
}

func TestNewStoreEnsuresStateTable(t *testing.T) {
	db, state := newStubDB()
	openStubStore(t, db, nil)

	sawDDL := false
	for _, stmt := range state.execs {
		if strings.Contains(strings.ToUpper(stmt), "CREATE TABLE") {
			sawDDL = true
			break
		}
	}
	if !sawDDL {
		t.Fatalf("expected state table DDL, got execs: %v", state.execs)
	}
}

func TestRunInTransactionSnapshotsState(t *testing.T) {
	db, state := newStubDB()
	store := openStubStore(t, db, nil)

	var created domain.DigitalTwin
	_, err := store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		var err error
		created, err = tx.CreateTwin(domain.DigitalTwin{BirdID: "ASL-001", OwnerID: "owner-1"})
		if err != nil {
			return err
		}
		_, err = tx.AppendEvent(domain.BirdEvent{TwinID: created.ID, Type: domain.EventVaccination})
		return err
	})
	if err != nil {
		t.Fatalf("RunInTransaction: %v", err)
	}

	state.mu.Lock()
	twinsPayload := state.buckets["twins"]
	eventsPayload := state.buckets["events"]
	state.mu.Unlock()
	if len(twinsPayload) == 0 || len(eventsPayload) == 0 {
		t.Fatal("expected both buckets snapshotted")
	}

	var twins map[string]domain.DigitalTwin
	if err := json.Unmarshal(twinsPayload, &twins); err != nil {
		t.Fatalf("decode twins: %v", err)
	}
	if _, ok := twins[created.ID]; !ok {
		t.Fatalf("twin missing from snapshot: %v", twins)
	}
}

func TestNewStoreHydratesFromSnapshot(t *testing.T) {
	db, state := newStubDB()

	seed := memory.Snapshot{
		Twins: map[string]domain.DigitalTwin{
			"t1": {Base: domain.Base{ID: "t1"}, BirdID: "ASL-001", OwnerID: "owner-1"},
		},
		Events: map[string][]domain.BirdEvent{
			"t1": {{ID: "e1", TwinID: "t1", Type: domain.EventFightWin}},
		},
	}
	twinsPayload, err := json.Marshal(seed.Twins)
	if err != nil {
		t.Fatalf("encode twins: %v", err)
	}
	eventsPayload, err := json.Marshal(seed.Events)
	if err != nil {
		t.Fatalf("encode events: %v", err)
	}
	state.mu.Lock()
	state.buckets["twins"] = twinsPayload
	state.buckets["events"] = eventsPayload
	state.mu.Unlock()

	store := openStubStore(t, db, nil)
	twin, ok := store.GetTwinByBirdID("ASL-001")
	if !ok || twin.ID != "t1" {
		t.Fatalf("twin not hydrated: %v %v", twin, ok)
	}
	if got := len(store.EventsForTwin("t1")); got != 1 {
		t.Fatalf("events not hydrated: %d", got)
	}
}
