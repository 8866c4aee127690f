// Codecs for the physical persisted representations of the settings
// tree. Reads try each codec in a fixed priority order; writes always
// use the canonical JSON codec.
// See docs/ARCHITECTURE.md § Settings Store.
package settings

import (
	"bytes"
	"encoding/gob"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mesh-intelligence/waybill/pkg/types"
)

// Codec is one decode/encode pair for a persisted representation of the
// settings tree.
type Codec interface {
	Name() string
	Decode(data []byte) (types.Tree, error)
	Encode(tree types.Tree) ([]byte, error)
}

func init() {
	// Nested provider sub-trees and lists travel through gob as
	// interface values, which requires concrete-type registration.
	gob.Register(map[string]any{})
	gob.Register([]any{})
}

// jsonCodec is the canonical on-write encoding.
type jsonCodec struct{}

func (jsonCodec) Name() string { return "json" }

func (jsonCodec) Decode(data []byte) (types.Tree, error) {
	var raw map[string]map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("json decode: %w", err)
	}
	return fromNested(raw), nil
}

func (jsonCodec) Encode(tree types.Tree) ([]byte, error) {
	data, err := json.Marshal(tree)
	if err != nil {
		return nil, fmt.Errorf("json encode: %w", err)
	}
	return data, nil
}

// gobCodec reads and writes the Go serialized-blob representation, kept
// for read-compatibility with older persisted values.
type gobCodec struct{}

func (gobCodec) Name() string { return "gob" }

func (gobCodec) Decode(data []byte) (types.Tree, error) {
	var raw map[string]map[string]any
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&raw); err != nil {
		return nil, fmt.Errorf("gob decode: %w", err)
	}
	return fromNested(raw), nil
}

func (gobCodec) Encode(tree types.Tree) ([]byte, error) {
	raw := make(map[string]map[string]any, len(tree))
	for name, section := range tree {
		raw[name] = map[string]any(section)
	}
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(raw); err != nil {
		return nil, fmt.Errorf("gob encode: %w", err)
	}
	return buf.Bytes(), nil
}

// readCodecs returns the decode attempts in priority order: the
// serialized-blob format first, then JSON text.
func readCodecs() []Codec {
	return []Codec{gobCodec{}, jsonCodec{}}
}

// writeCodec returns the single canonical on-write codec.
func writeCodec() Codec {
	return jsonCodec{}
}

// decodeBlob tries each codec in order and reports a DecodeError
// carrying every codec's failure when none succeeds.
func decodeBlob(data []byte, codecs []Codec) (types.Tree, error) {
	var errs []error
	for _, c := range codecs {
		tree, err := c.Decode(data)
		if err == nil {
			return tree, nil
		}
		errs = append(errs, fmt.Errorf("%s: %w", c.Name(), err))
	}
	return nil, &types.DecodeError{Err: errors.Join(errs...)}
}

// decodeRaw turns whatever the option store returned into a tree.
// Native structured values are used as-is (deep-copied); strings and
// byte slices go through the blob codecs.
func decodeRaw(raw any, codecs []Codec) (types.Tree, error) {
	switch v := raw.(type) {
	case types.Tree:
		return v.Clone(), nil
	case map[string]map[string]any:
		return fromNested(v), nil
	case map[string]any:
		tree := make(types.Tree, len(v))
		for name, value := range v {
			switch section := value.(type) {
			case map[string]any:
				tree[name] = types.Section(section).Clone()
			case types.Section:
				tree[name] = section.Clone()
			}
		}
		return tree, nil
	case []byte:
		return decodeBlob(v, codecs)
	case string:
		return decodeBlob([]byte(v), codecs)
	default:
		return nil, &types.DecodeError{
			Err: fmt.Errorf("unsupported option value type %T", raw),
		}
	}
}

// fromNested converts a plain nested map into a Tree.
func fromNested(raw map[string]map[string]any) types.Tree {
	tree := make(types.Tree, len(raw))
	for name, section := range raw {
		tree[name] = types.Section(section)
	}
	return tree
}
