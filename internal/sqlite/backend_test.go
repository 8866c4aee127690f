package sqlite

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/waybill/pkg/types"
)

// setupBackend attaches a backend over a throwaway database and detaches
// it when the test finishes.
func setupBackend(t *testing.T) *Backend {
	t.Helper()
	b := NewBackend(types.AllowAll{})
	require.NoError(t, b.Attach(types.Config{
		Backend: types.BackendSQLite,
		DataDir: t.TempDir(),
	}))
	t.Cleanup(func() { _ = b.Detach() })
	return b
}

// denyAll refuses every capability.
type denyAll struct{}

func (denyAll) Can(string, string) bool { return false }

func TestAttachValidatesConfig(t *testing.T) {
	tests := []struct {
		name    string
		config  types.Config
		wantErr error
	}{
		{"empty backend", types.Config{DataDir: "x"}, types.ErrBackendEmpty},
		{"unknown backend", types.Config{Backend: "stone-tablets"}, types.ErrBackendUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBackend(types.AllowAll{})
			assert.ErrorIs(t, b.Attach(tt.config), tt.wantErr)
		})
	}
}

func TestAttachTwice(t *testing.T) {
	b := setupBackend(t)
	err := b.Attach(types.Config{Backend: types.BackendSQLite, DataDir: t.TempDir()})
	assert.ErrorIs(t, err, types.ErrAlreadyAttached)
}

func TestDetachIsIdempotent(t *testing.T) {
	b := setupBackend(t)
	require.NoError(t, b.Detach())
	require.NoError(t, b.Detach())
}

func TestAccessorsWhenDetached(t *testing.T) {
	b := NewBackend(types.AllowAll{})

	_, err := b.Deliveries()
	assert.ErrorIs(t, err, types.ErrDetached)
	_, err = b.Options()
	assert.ErrorIs(t, err, types.ErrDetached)
}

func TestConfigAccessor(t *testing.T) {
	dir := t.TempDir()
	b := NewBackend(types.AllowAll{})
	require.NoError(t, b.Attach(types.Config{Backend: types.BackendSQLite, DataDir: dir}))
	t.Cleanup(func() { _ = b.Detach() })

	assert.Equal(t, dir, b.Config().DataDir)
	assert.Equal(t, types.BackendSQLite, b.Config().Backend)
}

// Reattaching to the same data dir must see previously persisted rows.
func TestReattachKeepsData(t *testing.T) {
	dir := t.TempDir()
	config := types.Config{Backend: types.BackendSQLite, DataDir: dir}

	b := NewBackend(types.AllowAll{})
	require.NoError(t, b.Attach(config))
	repo, err := b.Deliveries()
	require.NoError(t, err)
	id, err := repo.Insert("tester", &types.Delivery{OrderID: 9, TrackingNumber: "KEEP123"})
	require.NoError(t, err)
	require.NoError(t, b.Detach())

	require.NoError(t, b.Attach(config))
	t.Cleanup(func() { _ = b.Detach() })
	repo, err = b.Deliveries()
	require.NoError(t, err)
	d, err := repo.Get("tester", id)
	require.NoError(t, err)
	assert.Equal(t, "KEEP123", d.TrackingNumber)
}
