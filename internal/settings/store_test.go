package settings

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/waybill/pkg/types"
)

// memOptions is an in-memory OptionStore for store tests.
type memOptions struct {
	values     map[string]any
	failUpdate error
	failAdd    error
	failGet    error
}

func newMemOptions() *memOptions {
	return &memOptions{values: make(map[string]any)}
}

func (m *memOptions) Get(name string) (any, error) {
	if m.failGet != nil {
		return nil, m.failGet
	}
	v, ok := m.values[name]
	if !ok {
		return nil, types.ErrNotFound
	}
	return v, nil
}

func (m *memOptions) Add(name string, value []byte) error {
	if m.failAdd != nil {
		return m.failAdd
	}
	if _, ok := m.values[name]; ok {
		return errors.New("option exists")
	}
	m.values[name] = value
	return nil
}

func (m *memOptions) Update(name string, value []byte) error {
	if m.failUpdate != nil {
		return m.failUpdate
	}
	m.values[name] = value
	return nil
}

func (m *memOptions) set(t *testing.T, value any) {
	t.Helper()
	m.values[types.OptionName] = value
}

func TestReadEmptyStoreReturnsDefaults(t *testing.T) {
	store := NewStore(newMemOptions())

	tree, err := store.Read()
	require.NoError(t, err)

	assert.Equal(t, true, tree["general"]["enable_tracking"])
	assert.Equal(t, float64(50), tree["general"]["delivery_radius"])
	assert.Equal(t, "km", tree["general"]["delivery_unit"])
	assert.Equal(t, "balto", tree["shipping"]["selected_shipping_provider"])
}

func TestReadBackfillsMissingKeys(t *testing.T) {
	opts := newMemOptions()
	opts.set(t, `{"general":{"enable_tracking":"no"}}`)
	store := NewStore(opts)

	tree, err := store.Read()
	require.NoError(t, err)

	// The persisted value is returned verbatim; Read reconciles shape,
	// not spelling.
	assert.Equal(t, "no", tree["general"]["enable_tracking"])
	assert.Equal(t, float64(50), tree["general"]["delivery_radius"])
	assert.Equal(t, "https://shop.example.com/", tree["general"]["website_url"])
}

func TestReadCorruptBlobFallsBackToDefaults(t *testing.T) {
	opts := newMemOptions()
	opts.set(t, []byte("corrupt ][ blob"))
	store := NewStore(opts)

	tree, err := store.Read()
	require.NoError(t, err)
	assert.Equal(t, Defaults(), tree)
}

func TestReadSurfacesStorageFailure(t *testing.T) {
	opts := newMemOptions()
	opts.failGet = errors.New("disk on fire")
	store := NewStore(opts)

	_, err := store.Read()
	var serr *types.StorageError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, "read option", serr.Op)
}

func TestReadDecodesGobBlob(t *testing.T) {
	tree := Defaults()
	tree["general"]["api_key"] = "gob-key"
	data, err := (gobCodec{}).Encode(tree)
	require.NoError(t, err)

	opts := newMemOptions()
	opts.set(t, data)
	store := NewStore(opts)

	got, err := store.Read()
	require.NoError(t, err)
	assert.Equal(t, "gob-key", got["general"]["api_key"])
}

func TestReadNativeTreeValue(t *testing.T) {
	opts := newMemOptions()
	opts.set(t, types.Tree{"general": {"api_key": "native"}})
	store := NewStore(opts)

	got, err := store.Read()
	require.NoError(t, err)
	assert.Equal(t, "native", got["general"]["api_key"])
	assert.Equal(t, float64(50), got["general"]["delivery_radius"])
}

func TestLookup(t *testing.T) {
	store := NewStore(newMemOptions())

	value, err := store.Lookup("general", "delivery_unit")
	require.NoError(t, err)
	assert.Equal(t, "km", value)

	_, err = store.Lookup("general", "no_such_key")
	assert.ErrorIs(t, err, types.ErrNotFound)

	_, err = store.Lookup("no_such_section", "x")
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestLookupStrictOnCorruptBlob(t *testing.T) {
	opts := newMemOptions()
	opts.set(t, []byte("corrupt ][ blob"))
	store := NewStore(opts)

	_, err := store.Lookup("general", "delivery_unit")
	var derr *types.DecodeError
	assert.ErrorAs(t, err, &derr)
}

func TestValueFallsBack(t *testing.T) {
	opts := newMemOptions()
	opts.set(t, []byte("corrupt ][ blob"))
	store := NewStore(opts)

	// Corrupt blob: Read recovers with defaults, so schema keys resolve.
	assert.Equal(t, "km", store.Value("general", "delivery_unit", "mi"))
	// Absent keys fall back.
	assert.Equal(t, "mi", store.Value("general", "no_such_key", "mi"))

	opts.failGet = errors.New("disk on fire")
	assert.Equal(t, "mi", store.Value("general", "delivery_unit", "mi"))
}

func TestWriteMergesOverCurrent(t *testing.T) {
	opts := newMemOptions()
	store := NewStore(opts)

	require.NoError(t, store.Write(types.Tree{
		"custom": {"theme": "dark"},
	}))
	require.NoError(t, store.Write(types.Tree{
		"general": {"delivery_radius": "75km"},
	}))

	tree, err := store.Read()
	require.NoError(t, err)

	assert.Equal(t, float64(75), tree["general"]["delivery_radius"])
	// Untouched defaults survive the partial write.
	assert.Equal(t, "https://shop.example.com/", tree["general"]["website_url"])
	// Keys outside the default schema survive later writes.
	assert.Equal(t, "dark", tree["custom"]["theme"])
}

func TestWriteSanitizesInput(t *testing.T) {
	store := NewStore(newMemOptions())

	require.NoError(t, store.Write(types.Tree{
		"general":  {"enable_tracking": "yes", "api_key": "  <b>key</b>  "},
		"shipping": {"selected_shipping_provider": "carrier-pigeon"},
	}))

	tree, err := store.Read()
	require.NoError(t, err)
	assert.Equal(t, true, tree["general"]["enable_tracking"])
	assert.Equal(t, "key", tree["general"]["api_key"])
	assert.Equal(t, "balto", tree["shipping"]["selected_shipping_provider"])
}

func TestWriteNestedMergePreservesSiblingKeys(t *testing.T) {
	store := NewStore(newMemOptions())

	require.NoError(t, store.Write(types.Tree{
		"shipping": {"balto": map[string]any{"enabled": false}},
	}))

	tree, err := store.Read()
	require.NoError(t, err)
	balto, ok := tree["shipping"]["balto"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, false, balto["enabled"])
	assert.Equal(t, "Balto", balto["name"])
}

func TestWriteSurfacesUpdateFailure(t *testing.T) {
	opts := newMemOptions()
	opts.failUpdate = errors.New("disk full")
	store := NewStore(opts)

	err := store.Write(types.Tree{"general": {"api_key": "k"}})
	var serr *types.StorageError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, "write option", serr.Op)
}

func TestProviderSelectionRepair(t *testing.T) {
	opts := newMemOptions()
	opts.set(t, `{"shipping":{"selected_shipping_provider":{"name":"Balto","enabled":true}}}`)
	store := NewStore(opts)

	tree, err := store.Read()
	require.NoError(t, err)
	assert.Equal(t, "balto", tree["shipping"]["selected_shipping_provider"])

	value, err := store.Lookup("shipping", "selected_shipping_provider")
	require.NoError(t, err)
	assert.Equal(t, "balto", value)
}

func TestProviders(t *testing.T) {
	store := NewStore(newMemOptions())

	providers := store.Providers()
	assert.Equal(t, map[string]string{
		"balto": "Balto",
		"fedex": "FedEx",
		"ups":   "UPS",
		"usps":  "USPS",
	}, providers)
}

func TestProvidersHonorsEnabledSpellings(t *testing.T) {
	opts := newMemOptions()
	opts.set(t, `{"shipping":{
		"selected_shipping_provider":"balto",
		"balto":{"name":"Balto","enabled":"1"},
		"fedex":{"name":"FedEx","enabled":"no"},
		"ups":{"name":"UPS","enabled":false},
		"usps":{"name":"USPS","enabled":"yes"}
	}}`)
	store := NewStore(opts)

	providers := store.Providers()
	assert.Equal(t, map[string]string{
		"balto": "Balto",
		"usps":  "USPS",
	}, providers)
}

func TestInstall(t *testing.T) {
	opts := newMemOptions()
	store := NewStore(opts)

	require.NoError(t, store.Install())

	tree, err := store.Read()
	require.NoError(t, err)
	assert.Equal(t, "balto", tree["shipping"]["selected_shipping_provider"])
	assert.Equal(t, true, tree["general"]["enable_tracking"])
}

func TestInstallRetriesWithAdd(t *testing.T) {
	opts := newMemOptions()
	opts.failUpdate = errors.New("update unsupported")
	store := NewStore(opts)

	require.NoError(t, store.Install())
	assert.Contains(t, opts.values, types.OptionName)
}

func TestInstallReportsDoubleFailure(t *testing.T) {
	opts := newMemOptions()
	opts.failUpdate = errors.New("update unsupported")
	opts.failAdd = errors.New("add unsupported")
	store := NewStore(opts)

	err := store.Install()
	var serr *types.StorageError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, "install settings", serr.Op)
	assert.ErrorContains(t, err, "update unsupported")
	assert.ErrorContains(t, err, "add unsupported")
}

// Values handed out by the store must be copies.
func TestReadReturnsIndependentCopies(t *testing.T) {
	store := NewStore(newMemOptions())

	first, err := store.Read()
	require.NoError(t, err)
	first["general"]["delivery_unit"] = "parsec"

	second, err := store.Read()
	require.NoError(t, err)
	assert.Equal(t, "km", second["general"]["delivery_unit"])
}
