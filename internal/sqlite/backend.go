// Package sqlite implements the SQLite storage backend for Waybill:
// the deliveries table and the options table the settings store sits
// on.
// See docs/ARCHITECTURE.md § SQLite Backend.
package sqlite

import (
	"database/sql"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/waybill/pkg/types"
)

// dbFileName is the SQLite database file created inside DataDir.
const dbFileName = "waybill.db"

// Backend owns the SQLite connection and hands out table accessors.
type Backend struct {
	mu       sync.RWMutex
	attached bool
	config   types.Config
	db       *sql.DB
	checker  types.CapabilityChecker

	deliveries *Deliveries
	options    *Options
}

// NewBackend creates a new SQLite backend. Every delivery operation is
// gated by the given capability checker. The backend is not attached;
// call Attach with a Config to initialize.
func NewBackend(checker types.CapabilityChecker) *Backend {
	return &Backend{checker: checker}
}

// Attach initializes the backend: creates DataDir if needed, opens the
// database, and applies the schema. Returns ErrAlreadyAttached if
// called while attached.
func (b *Backend) Attach(config types.Config) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.attached {
		return types.ErrAlreadyAttached
	}
	if err := config.Validate(); err != nil {
		return err
	}

	dataDir := config.DataDir
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return &types.StorageError{Op: "create data dir", Err: err}
	}

	db, err := sql.Open("sqlite", filepath.Join(dataDir, dbFileName))
	if err != nil {
		return &types.StorageError{Op: "open database", Err: err}
	}

	for _, stmt := range schemaStatements {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return &types.StorageError{Op: "apply schema", Err: err}
		}
	}

	b.db = db
	b.config = config
	b.deliveries = &Deliveries{backend: b, checker: b.checker}
	b.options = &Options{backend: b}
	b.attached = true

	return nil
}

// Detach closes the database. Idempotent; after Detach, accessors
// return ErrDetached.
func (b *Backend) Detach() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return nil
	}
	if b.db != nil {
		if err := b.db.Close(); err != nil {
			return &types.StorageError{Op: "close database", Err: err}
		}
		b.db = nil
	}
	b.attached = false
	b.deliveries = nil
	b.options = nil
	return nil
}

// Config returns the configuration the backend was attached with.
func (b *Backend) Config() types.Config {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.config
}

// Deliveries returns the delivery record repository.
func (b *Backend) Deliveries() (types.DeliveryStore, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.attached {
		return nil, types.ErrDetached
	}
	return b.deliveries, nil
}

// Options returns the persisted option store.
func (b *Backend) Options() (types.OptionStore, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.attached {
		return nil, types.ErrDetached
	}
	return b.options, nil
}
