package core

import (
	"fmt"

	"birdtwin/internal/config"
	"birdtwin/internal/infra/persistence/memory"
	"birdtwin/internal/infra/persistence/postgres"
	"birdtwin/internal/infra/persistence/sqlite"
	"birdtwin/pkg/domain"
)

// OpenPersistentStore selects a persistence backend from the storage
// configuration. Unknown drivers are an error, empty defaults to sqlite.
func OpenPersistentStore(cfg config.Storage, engine *domain.RulesEngine) (domain.PersistentStore, error) {
	driver := cfg.Driver
	if driver == "" {
		driver = "sqlite"
	}
	switch driver {
	case "memory":
		return memory.NewStore(engine), nil
	case "sqlite":
		return sqlite.NewStore(cfg.SQLitePath, engine)
	case "postgres":
		return postgres.NewStore(cfg.PostgresDSN, engine)
	default:
		return nil, fmt.Errorf("unknown storage driver %s", driver)
	}
}
