package domain

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// RawFilter is the untyped filter input exactly as received from a transport
// boundary (query string or persisted form state). Values may be strings,
// bools, numbers, nested maps for ranges and relations, or nil. Unknown keys
// are tolerated and ignored by the caster.
type RawFilter map[string]any

// Clone returns a shallow copy of the raw filter.
func (r RawFilter) Clone() RawFilter {
	if r == nil {
		return nil
	}
	clone := make(RawFilter, len(r))
	for k, v := range r {
		clone[k] = v
	}
	return clone
}

// FilterValue is one typed, validated filter value. Kind selects which of the
// value fields is populated; the zero FilterValue is never stored in a
// canonical filter (absence from the map is the unset marker).
type FilterValue struct {
	Kind      FieldKind
	Text      string
	Relation  uuid.UUID
	Relations []uuid.UUID
	NumberMin *float64
	NumberMax *float64
	DateMin   *time.Time
	DateMax   *time.Time
	Bool      bool
}

// CanonicalFilter maps field names to typed, validated values. Keys are
// always a subset of the producing schema's field names; fields absent from
// the map are unset. Values never alias caller-owned memory.
type CanonicalFilter struct {
	values map[string]FilterValue
}

// Get returns the value for a field and whether it is set.
func (f CanonicalFilter) Get(name string) (FilterValue, bool) {
	value, ok := f.values[name]
	return value, ok
}

// Len returns the number of set fields.
func (f CanonicalFilter) Len() int {
	return len(f.values)
}

// IsEmpty reports whether no field is set.
func (f CanonicalFilter) IsEmpty() bool {
	return len(f.values) == 0
}

// FieldNames returns the set field names in lexical order. Ordering for
// display purposes comes from the schema, not from here.
func (f CanonicalFilter) FieldNames() []string {
	names := make([]string, 0, len(f.values))
	for name := range f.values {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// With returns a copy of the filter with one field set.
func (f CanonicalFilter) With(name string, value FilterValue) CanonicalFilter {
	values := make(map[string]FilterValue, len(f.values)+1)
	for k, v := range f.values {
		values[k] = v
	}
	values[name] = value
	return CanonicalFilter{values: values}
}

// Without returns a copy of the filter with exactly one field unset and all
// others untouched. Used to clear a single active filter chip.
func (f CanonicalFilter) Without(name string) CanonicalFilter {
	if _, ok := f.values[name]; !ok {
		return f
	}
	values := make(map[string]FilterValue, len(f.values))
	for k, v := range f.values {
		if k != name {
			values[k] = v
		}
	}
	return CanonicalFilter{values: values}
}

// Equal reports whether two canonical filters set the same fields to the
// same values.
func (f CanonicalFilter) Equal(other CanonicalFilter) bool {
	if len(f.values) != len(other.values) {
		return false
	}
	for name, value := range f.values {
		otherValue, ok := other.values[name]
		if !ok || !filterValueEqual(value, otherValue) {
			return false
		}
	}
	return true
}

func filterValueEqual(a, b FilterValue) bool {
	if a.Kind != b.Kind || a.Text != b.Text || a.Relation != b.Relation || a.Bool != b.Bool {
		return false
	}
	if len(a.Relations) != len(b.Relations) {
		return false
	}
	for i := range a.Relations {
		if a.Relations[i] != b.Relations[i] {
			return false
		}
	}
	return floatPtrEqual(a.NumberMin, b.NumberMin) &&
		floatPtrEqual(a.NumberMax, b.NumberMax) &&
		timePtrEqual(a.DateMin, b.DateMin) &&
		timePtrEqual(a.DateMax, b.DateMax)
}

func floatPtrEqual(a, b *float64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func timePtrEqual(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}
