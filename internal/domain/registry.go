package domain

import (
	"fmt"
)

// EntityDescriptor binds one entity type to its filter schema. Cascade
// cleanup rules for destroy are not stored here; they are derived from the
// relation fields other schemas declare against this type.
type EntityDescriptor struct {
	Type   string
	Schema FilterSchema
}

// RelationCleanup names a child relation field to clear when an entity of the
// referenced type is destroyed. Kind tells the storage layer how the field is
// represented: relationToOne holds a scalar identifier, relationToMany an
// identifier array.
type RelationCleanup struct {
	ChildType string
	Field     string
	Kind      FieldKind
}

// Registry is the process-wide, read-only set of entity descriptors,
// initialized once at startup.
type Registry struct {
	descriptors map[string]EntityDescriptor
	order       []string
}

// NewRegistry builds a registry from descriptors in declaration order.
func NewRegistry(descriptors ...EntityDescriptor) (*Registry, error) {
	r := &Registry{descriptors: make(map[string]EntityDescriptor, len(descriptors))}
	for _, d := range descriptors {
		if d.Type == "" {
			return nil, fmt.Errorf("registry: descriptor with empty type")
		}
		if _, exists := r.descriptors[d.Type]; exists {
			return nil, fmt.Errorf("registry: duplicate entity type %q", d.Type)
		}
		r.descriptors[d.Type] = d
		r.order = append(r.order, d.Type)
	}
	return r, nil
}

// Descriptor looks up the descriptor for an entity type.
func (r *Registry) Descriptor(entityType string) (EntityDescriptor, bool) {
	d, ok := r.descriptors[entityType]
	return d, ok
}

// Types returns the registered entity types in declaration order.
func (r *Registry) Types() []string {
	clone := make([]string, len(r.order))
	copy(clone, r.order)
	return clone
}

// CleanupsFor derives the cascade cleanup rules for destroying entities of
// the given type: every relation field any schema declares against it.
func (r *Registry) CleanupsFor(entityType string) []RelationCleanup {
	var cleanups []RelationCleanup
	for _, childType := range r.order {
		for _, spec := range r.descriptors[childType].Schema.Fields() {
			if spec.RelatedType != entityType {
				continue
			}
			switch spec.Kind {
			case FieldKindRelationToOne, FieldKindRelationToMany:
				cleanups = append(cleanups, RelationCleanup{ChildType: childType, Field: spec.Name, Kind: spec.Kind})
			}
		}
	}
	return cleanups
}

// Store hierarchy entity types.
const (
	TypeShop       = "shop"
	TypeDepartment = "department"
	TypeSection    = "section"
	TypeShelf      = "shelf"
)

// DefaultRegistry describes the retail hierarchy: shops contain departments,
// departments contain sections, sections contain shelves. Child types carry
// relation filters up the chain so a list view can narrow by any ancestor.
func DefaultRegistry() *Registry {
	registry, err := NewRegistry(
		EntityDescriptor{
			Type: TypeShop,
			Schema: MustFilterSchema([]FilterFieldSpec{
				{Name: "name", Kind: FieldKindText, Required: true},
				{Name: "active", Kind: FieldKindBoolean},
				{Name: "createdAtRange", Kind: FieldKindDateRange},
			}),
		},
		EntityDescriptor{
			Type: TypeDepartment,
			Schema: MustFilterSchema([]FilterFieldSpec{
				{Name: "name", Kind: FieldKindText, Required: true},
				{Name: "shop", Kind: FieldKindRelationToOne, RelatedType: TypeShop},
			}),
		},
		EntityDescriptor{
			Type: TypeSection,
			Schema: MustFilterSchema([]FilterFieldSpec{
				{Name: "name", Kind: FieldKindText, Required: true},
				{Name: "shop", Kind: FieldKindRelationToOne, RelatedType: TypeShop},
				{Name: "department", Kind: FieldKindRelationToOne, RelatedType: TypeDepartment},
			}),
		},
		EntityDescriptor{
			Type: TypeShelf,
			Schema: MustFilterSchema([]FilterFieldSpec{
				{Name: "name", Kind: FieldKindText, Required: true},
				{Name: "shop", Kind: FieldKindRelationToOne, RelatedType: TypeShop},
				{Name: "department", Kind: FieldKindRelationToOne, RelatedType: TypeDepartment},
				{Name: "section", Kind: FieldKindRelationToOne, RelatedType: TypeSection},
				{Name: "capacityRange", Kind: FieldKindNumericRange},
			}),
		},
	)
	if err != nil {
		panic(err)
	}
	return registry
}
