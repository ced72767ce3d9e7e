package domain

import (
	"fmt"
)

// FieldKind represents the type of a filterable field in an entity's filter schema
type FieldKind string

const (
	FieldKindText           FieldKind = "text"
	FieldKindRelationToOne  FieldKind = "relationToOne"
	FieldKindRelationToMany FieldKind = "relationToMany"
	FieldKindNumericRange   FieldKind = "numericRange"
	FieldKindDateRange      FieldKind = "dateRange"
	FieldKindBoolean        FieldKind = "boolean"
)

// FilterFieldSpec describes one filterable field of an entity type.
type FilterFieldSpec struct {
	Name     string    `json:"name"`
	Kind     FieldKind `json:"kind"`
	Required bool      `json:"required"`
	// RelatedType names the entity type a relation field points at. Only
	// meaningful for relationToOne and relationToMany kinds; the cascade
	// cleanup rules for bulk destroy are derived from it.
	RelatedType string `json:"relatedType,omitempty"`
}

// FilterSchema is the ordered, immutable set of filterable fields for one
// entity type. Construct via NewFilterSchema; accessors return defensive
// copies so a schema shared across requests can never be mutated.
type FilterSchema struct {
	fields []FilterFieldSpec
	byName map[string]int
}

// NewFilterSchema builds a schema from field specs in declaration order.
// Field names must be unique within the schema.
func NewFilterSchema(fields []FilterFieldSpec) (FilterSchema, error) {
	byName := make(map[string]int, len(fields))
	copied := make([]FilterFieldSpec, len(fields))
	for i, field := range fields {
		if field.Name == "" {
			return FilterSchema{}, fmt.Errorf("filter schema: field %d has empty name", i)
		}
		if _, exists := byName[field.Name]; exists {
			return FilterSchema{}, fmt.Errorf("filter schema: duplicate field %q", field.Name)
		}
		switch field.Kind {
		case FieldKindText, FieldKindRelationToOne, FieldKindRelationToMany,
			FieldKindNumericRange, FieldKindDateRange, FieldKindBoolean:
		default:
			return FilterSchema{}, fmt.Errorf("filter schema: field %q has unknown kind %q", field.Name, field.Kind)
		}
		byName[field.Name] = i
		copied[i] = field
	}
	return FilterSchema{fields: copied, byName: byName}, nil
}

// MustFilterSchema is NewFilterSchema panicking on error, for static
// registry construction at startup.
func MustFilterSchema(fields []FilterFieldSpec) FilterSchema {
	schema, err := NewFilterSchema(fields)
	if err != nil {
		panic(err)
	}
	return schema
}

// Fields returns the field specs in declaration order as a defensive copy.
func (s FilterSchema) Fields() []FilterFieldSpec {
	if len(s.fields) == 0 {
		return nil
	}
	clone := make([]FilterFieldSpec, len(s.fields))
	copy(clone, s.fields)
	return clone
}

// Field looks up a field spec by name.
func (s FilterSchema) Field(name string) (FilterFieldSpec, bool) {
	idx, ok := s.byName[name]
	if !ok {
		return FilterFieldSpec{}, false
	}
	return s.fields[idx], true
}

// Len returns the number of fields in the schema.
func (s FilterSchema) Len() int {
	return len(s.fields)
}

// Empty returns the schema's empty canonical filter: every field unset.
func (s FilterSchema) Empty() CanonicalFilter {
	return CanonicalFilter{}
}
