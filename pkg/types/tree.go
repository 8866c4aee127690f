package types

// Section is one named group of settings keys. A value may itself be a
// nested map, e.g. the per-provider sub-trees under the shipping section.
type Section map[string]any

// Tree is the two-level section → key → value settings structure.
type Tree map[string]Section

// Clone returns a deep copy of the tree. Stores hand out clones so that
// callers never hold a reference into the canonical tree.
func (t Tree) Clone() Tree {
	if t == nil {
		return nil
	}
	out := make(Tree, len(t))
	for name, section := range t {
		out[name] = section.Clone()
	}
	return out
}

// Clone returns a deep copy of the section, including nested maps and
// slices.
func (s Section) Clone() Section {
	if s == nil {
		return nil
	}
	out := make(Section, len(s))
	for k, v := range s {
		out[k] = CloneValue(v)
	}
	return out
}

// CloneValue deep-copies a settings value. Scalars are returned as-is;
// maps and slices are copied recursively.
func CloneValue(v any) any {
	switch val := v.(type) {
	case Tree:
		return val.Clone()
	case Section:
		return val.Clone()
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, inner := range val {
			out[k] = CloneValue(inner)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, inner := range val {
			out[i] = CloneValue(inner)
		}
		return out
	default:
		return v
	}
}
