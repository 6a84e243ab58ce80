package core

import "strings"

// PredefinedType describes a built-in data type of the backend.
type PredefinedType struct {
	Name      string
	Family    string // character, numeric, datetime, binary, other
	Sizable   bool   // accepts a length/precision modifier
	MaxLength int64
}

// TypeTable is an immutable lookup table of predefined types, built once by
// an adapter and shared by reference.
type TypeTable struct {
	byName map[string]PredefinedType
	names  []string
}

// NewTypeTable builds a table from the given entries. Names are matched
// case-insensitively; later duplicates are ignored.
func NewTypeTable(entries ...PredefinedType) *TypeTable {
	t := &TypeTable{byName: make(map[string]PredefinedType, len(entries))}
	for _, e := range entries {
		key := strings.ToUpper(e.Name)
		if _, dup := t.byName[key]; dup {
			continue
		}
		t.byName[key] = e
		t.names = append(t.names, e.Name)
	}
	return t
}

// Lookup finds a predefined type. Modifiers such as "(10)" are ignored.
func (t *TypeTable) Lookup(name string) (PredefinedType, bool) {
	if t == nil {
		return PredefinedType{}, false
	}
	if i := strings.IndexByte(name, '('); i >= 0 {
		name = name[:i]
	}
	pt, ok := t.byName[strings.ToUpper(strings.TrimSpace(name))]
	return pt, ok
}

// Names returns the type names in declaration order. The slice is a copy.
func (t *TypeTable) Names() []string {
	if t == nil {
		return nil
	}
	out := make([]string, len(t.names))
	copy(out, t.names)
	return out
}

// Len returns the number of types in the table.
func (t *TypeTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.names)
}
