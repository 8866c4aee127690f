// Package settings owns the canonical settings tree: it decodes
// whichever persisted encoding currently holds the tree, reconciles it
// against the default schema, and re-encodes with the canonical codec
// on write.
// See docs/ARCHITECTURE.md § Settings Store.
package settings

import (
	"errors"

	"github.com/mesh-intelligence/waybill/internal/sanitize"
	"github.com/mesh-intelligence/waybill/pkg/types"
)

// Compile-time interface check: Store must implement Settings.
var _ types.Settings = (*Store)(nil)

// Store reads and writes the settings tree through an OptionStore.
// Concurrent writers race read-merge-write with last-write-wins; the
// single option write is the only atomicity relied upon.
type Store struct {
	options types.OptionStore
	option  string
	read    []Codec
	write   Codec
}

// NewStore creates a settings store over the given option storage.
func NewStore(options types.OptionStore) *Store {
	return &Store{
		options: options,
		option:  types.OptionName,
		read:    readCodecs(),
		write:   writeCodec(),
	}
}

// decode fetches and decodes the persisted tree without applying
// defaults. Absent options report ErrNotFound; unparsable blobs report
// DecodeError; storage failures report StorageError.
func (s *Store) decode() (types.Tree, error) {
	raw, err := s.options.Get(s.option)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			return nil, types.ErrNotFound
		}
		return nil, &types.StorageError{Op: "read option", Err: err}
	}
	return decodeRaw(raw, s.read)
}

// Read returns the full settings tree with every default-schema key
// back-filled. A missing or unparsable persisted value falls back to
// the defaults; only storage failures surface.
func (s *Store) Read() (types.Tree, error) {
	tree, err := s.decode()
	if err != nil {
		var serr *types.StorageError
		if errors.As(err, &serr) {
			return nil, err
		}
		tree = types.Tree{}
	}
	mergeDefaults(tree, defaults)
	fixProviderSelection(tree)
	return tree, nil
}

// Lookup returns one decoded setting. It is the strict accessor: a
// persisted blob that no codec can parse surfaces the DecodeError so
// corruption is caught early instead of masked by defaults.
func (s *Store) Lookup(section, key string) (any, error) {
	tree, err := s.decode()
	if err != nil {
		if !errors.Is(err, types.ErrNotFound) {
			return nil, err
		}
		tree = types.Tree{}
	}
	mergeDefaults(tree, defaults)
	fixProviderSelection(tree)

	sec, ok := tree[section]
	if !ok {
		return nil, types.ErrNotFound
	}
	value, ok := sec[key]
	if !ok {
		return nil, types.ErrNotFound
	}
	return types.CloneValue(value), nil
}

// Value returns one setting, or fallback when the key is absent or the
// persisted value cannot be read. It is the non-throwing counterpart of
// Lookup.
func (s *Store) Value(section, key string, fallback any) any {
	tree, err := s.Read()
	if err != nil {
		return fallback
	}
	sec, ok := tree[section]
	if !ok {
		return fallback
	}
	value, ok := sec[key]
	if !ok {
		return fallback
	}
	return types.CloneValue(value)
}

// Write sanitizes a possibly partial tree field-by-field, merges it
// over the currently persisted tree so untouched sections and keys are
// preserved, and persists the result as a single option write.
func (s *Store) Write(partial types.Tree) error {
	sanitized := sanitize.Sanitize(partial, "").(types.Tree)

	current, err := s.Read()
	if err != nil {
		return err
	}
	overlayTree(current, sanitized)

	data, err := s.write.Encode(current)
	if err != nil {
		return &types.StorageError{Op: "encode settings", Err: err}
	}
	if err := s.options.Update(s.option, data); err != nil {
		return &types.StorageError{Op: "write option", Err: err}
	}
	return nil
}

// Providers returns key → display name for every shipping provider
// sub-tree whose enabled flag is truthy.
func (s *Store) Providers() map[string]string {
	providers := make(map[string]string)
	tree, err := s.Read()
	if err != nil {
		return providers
	}
	shipping, ok := tree["shipping"]
	if !ok {
		return providers
	}
	for key, value := range shipping {
		sub, ok := asMap(value)
		if !ok {
			continue
		}
		name, hasName := sub["name"]
		enabled, hasEnabled := sub["enabled"]
		if hasName && hasEnabled && sanitize.Bool(enabled) {
			providers[key] = sanitize.Text(name)
		}
	}
	return providers
}

// Install persists the sanitized default schema. The write is attempted
// with update semantics first and retried once with add semantics
// before giving up, so a fresh install works on storage that rejects
// updates to absent options.
func (s *Store) Install() error {
	tree := sanitize.Sanitize(Defaults(), "").(types.Tree)
	data, err := s.write.Encode(tree)
	if err != nil {
		return &types.StorageError{Op: "encode defaults", Err: err}
	}
	if err := s.options.Update(s.option, data); err != nil {
		if addErr := s.options.Add(s.option, data); addErr != nil {
			return &types.StorageError{Op: "install settings", Err: errors.Join(err, addErr)}
		}
	}
	return nil
}

// mergeDefaults back-fills every schema section and key absent from the
// tree. Keys present in the tree but absent from the schema are
// preserved unmodified.
func mergeDefaults(tree types.Tree, schema types.Tree) {
	for name, section := range schema {
		dst, ok := tree[name]
		if !ok {
			dst = make(types.Section, len(section))
			tree[name] = dst
		}
		for key, value := range section {
			if _, ok := dst[key]; !ok {
				dst[key] = types.CloneValue(value)
			}
		}
	}
}

// overlayTree merges the sanitized partial tree over the current tree.
// Nested maps merge key-wise so a partial provider sub-tree does not
// wipe its siblings; scalars replace.
func overlayTree(current types.Tree, partial types.Tree) {
	for name, section := range partial {
		dst, ok := current[name]
		if !ok {
			dst = make(types.Section, len(section))
			current[name] = dst
		}
		for key, value := range section {
			dst[key] = overlayValue(dst[key], value)
		}
	}
}

func overlayValue(existing, incoming any) any {
	existingMap, okExisting := asMap(existing)
	incomingMap, okIncoming := asMap(incoming)
	if !okExisting || !okIncoming {
		return types.CloneValue(incoming)
	}
	merged := make(map[string]any, len(existingMap))
	for k, v := range existingMap {
		merged[k] = types.CloneValue(v)
	}
	for k, v := range incomingMap {
		merged[k] = overlayValue(merged[k], v)
	}
	return merged
}

// fixProviderSelection repairs a known encoding hazard: a persisted
// tree where shipping.selected_shipping_provider resolved to a nested
// provider mapping instead of the scalar key. The scalar default wins
// and the nested value is ignored.
func fixProviderSelection(tree types.Tree) {
	shipping, ok := tree["shipping"]
	if !ok {
		return
	}
	if _, isMap := asMap(shipping["selected_shipping_provider"]); isMap {
		shipping["selected_shipping_provider"] = sanitize.DefaultProvider
	}
}

func asMap(value any) (map[string]any, bool) {
	switch v := value.(type) {
	case map[string]any:
		return v, true
	case types.Section:
		return map[string]any(v), true
	default:
		return nil, false
	}
}
