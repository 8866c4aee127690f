// Options table accessor: single named persisted values.
// See docs/ARCHITECTURE.md § SQLite Backend.
package sqlite

import (
	"database/sql"
	"errors"

	"github.com/mesh-intelligence/waybill/pkg/types"
)

// Compile-time interface check: Options must implement OptionStore.
var _ types.OptionStore = (*Options)(nil)

// Options implements the OptionStore interface over the options table.
type Options struct {
	backend *Backend
}

// Get returns the raw persisted value for the named option, or
// ErrNotFound when the option has never been written.
func (o *Options) Get(name string) (any, error) {
	var value []byte
	err := o.backend.db.QueryRow(
		"SELECT value FROM options WHERE name = ?", name,
	).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, types.ErrNotFound
		}
		return nil, &types.StorageError{Op: "get option", Err: err}
	}
	return value, nil
}

// Add stores a new option and fails if it already exists.
func (o *Options) Add(name string, value []byte) error {
	if _, err := o.backend.db.Exec(
		"INSERT INTO options (name, value) VALUES (?, ?)", name, value,
	); err != nil {
		return &types.StorageError{Op: "add option", Err: err}
	}
	return nil
}

// Update stores the option, creating it if missing. The upsert is a
// single statement, so concurrent writers cannot observe a partial
// value.
func (o *Options) Update(name string, value []byte) error {
	if _, err := o.backend.db.Exec(
		`INSERT INTO options (name, value) VALUES (?, ?)
         ON CONFLICT(name) DO UPDATE SET value = excluded.value`,
		name, value,
	); err != nil {
		return &types.StorageError{Op: "update option", Err: err}
	}
	return nil
}
