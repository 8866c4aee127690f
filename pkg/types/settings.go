package types

// OptionName is the name of the persisted settings option.
const OptionName = "waybill_settings"

// Settings is the façade over the settings store consumed by the host's
// admin surface and the webhook sender. Returned trees and values are
// deep copies; mutating them never affects the persisted state.
type Settings interface {
	// Read returns the full settings tree: the persisted value decoded,
	// with every default-schema key back-filled. Decode failures are
	// recovered by falling back to the defaults.
	Read() (Tree, error)

	// Write sanitizes a (possibly partial) tree, merges it over the
	// currently persisted tree, and persists the result in one write.
	Write(partial Tree) error

	// Lookup returns one decoded setting. Unlike Value it is strict: a
	// persisted blob that no codec can parse surfaces a DecodeError
	// instead of silently returning a default.
	Lookup(section, key string) (any, error)

	// Value returns one setting, or fallback when the key is absent or
	// the persisted blob cannot be decoded.
	Value(section, key string, fallback any) any

	// Providers returns key → display name for every shipping provider
	// whose enabled flag is truthy.
	Providers() map[string]string
}

// OptionStore is the persisted single-value storage the settings store
// sits on. Get may return raw bytes, a string, or an already-structured
// tree, depending on what the backing store holds.
type OptionStore interface {
	// Get returns the raw persisted option value, or ErrNotFound when
	// the option has never been written.
	Get(name string) (any, error)

	// Add stores a new option and fails if it already exists.
	Add(name string, value []byte) error

	// Update stores the option, creating it if missing.
	Update(name string, value []byte) error
}
