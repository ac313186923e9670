// internal/store/store.go
//
// Visit store contract and driver selection.
//
// Two backends ship: a JSON file for single-node deployments (the whole
// collection lives in one human-readable file) and MySQL for anything
// that needs real concurrency or more than one tracker process.  Both
// guarantee the append-only property: after N successful Appends the
// collection holds exactly N records in call order, none lost.
package store

import (
	"context"
	"fmt"

	"github.com/yanizio/beacon/internal/config"
	"github.com/yanizio/beacon/internal/database"
	"github.com/yanizio/beacon/internal/visit"
)

// Store persists and reads back the visit collection.  Implementations
// must be safe for concurrent use.
type Store interface {
	// Append durably adds one record to the end of the collection.
	Append(ctx context.Context, rec visit.Record) error
	// All returns the collection in append order.
	All(ctx context.Context) ([]visit.Record, error)
	// Close releases the backend's resources.
	Close() error
}

// Open builds the Store selected by cfg.Storage.Driver.
func Open(cfg *config.Config) (Store, error) {
	switch cfg.Storage.Driver {
	case "file":
		return NewFileStore(cfg.Storage.VisitsPath), nil
	case "mysql":
		db, err := database.Open(cfg.Storage.DSN)
		if err != nil {
			return nil, fmt.Errorf("open mysql visit store: %w", err)
		}
		return NewMySQLStore(db), nil
	default:
		// Unreachable when the config validated; keep the error anyway.
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}
