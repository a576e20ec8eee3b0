package taskqueue

import "slices"

// ConfigInterner maps configuration string ids to dense numeric ids. The
// numeric id is the string's first-seen rank. Entries are never removed or
// renumbered, so an id stays valid for the lifetime of the interner even
// after every task using it has been evicted.
//
// ConfigInterner is not safe for concurrent use; see Guarded.
type ConfigInterner struct {
	ids   map[string]ConfigID
	names []string // index == ConfigID
}

// NewConfigInterner returns an empty interner.
func NewConfigInterner() *ConfigInterner {
	return &ConfigInterner{ids: make(map[string]ConfigID)}
}

// Resolve returns the id for name, assigning the next rank on first sight.
func (in *ConfigInterner) Resolve(name string) ConfigID {
	if id, ok := in.ids[name]; ok {
		return id
	}
	id := ConfigID(len(in.names))
	in.names = append(in.names, name)
	in.ids[name] = id
	return id
}

// ResolveBatch resolves every name and returns the ids sorted ascending.
// The result is not positional: callers needing name->id pairs should call
// Resolve per name. Duplicate names yield duplicate ids.
func (in *ConfigInterner) ResolveBatch(names []string) []ConfigID {
	out := make([]ConfigID, 0, len(names))
	for _, n := range names {
		out = append(out, in.Resolve(n))
	}
	slices.Sort(out)
	return out
}

// Lookup returns the id already assigned to name without creating one.
func (in *ConfigInterner) Lookup(name string) (ConfigID, bool) {
	id, ok := in.ids[name]
	return id, ok
}

// Name returns the string id behind a numeric id.
func (in *ConfigInterner) Name(id ConfigID) (string, bool) {
	if int(id) >= len(in.names) {
		return "", false
	}
	return in.names[id], true
}

// Len is the number of ids handed out so far.
func (in *ConfigInterner) Len() int { return len(in.names) }
