package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Entity represents one administrative record (a shop, department, section or
// shelf). Relation fields live in Properties under the names declared by the
// entity type's filter schema, holding identifier strings. Deletion is a soft
// transition: DeletedAt set means the entity is invisible to every query.
type Entity struct {
	ID         uuid.UUID      `json:"id"`
	TenantID   uuid.UUID      `json:"tenant_id"`
	EntityType string         `json:"entity_type"`
	Properties map[string]any `json:"properties"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  *time.Time     `json:"deleted_at,omitempty"`
}

// NewEntity creates a new entity with immutable pattern
func NewEntity(tenantID uuid.UUID, entityType string, properties map[string]any) Entity {
	now := time.Now()
	return Entity{
		ID:         uuid.New(),
		TenantID:   tenantID,
		EntityType: entityType,
		Properties: copyProperties(properties),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// Name returns the entity's display name property, empty when absent.
func (e Entity) Name() string {
	name, _ := e.Properties["name"].(string)
	return name
}

// IsDeleted reports whether the entity has been soft-deleted.
func (e Entity) IsDeleted() bool {
	return e.DeletedAt != nil
}

// WithProperty returns a new entity with an added/updated property
func (e Entity) WithProperty(key string, value any) Entity {
	newProperties := copyProperties(e.Properties)
	newProperties[key] = value
	return e.withProperties(newProperties)
}

// WithoutProperty returns a new entity without the specified property
func (e Entity) WithoutProperty(key string) Entity {
	newProperties := copyProperties(e.Properties)
	delete(newProperties, key)
	return e.withProperties(newProperties)
}

// WithProperties returns a new entity with replaced properties
func (e Entity) WithProperties(properties map[string]any) Entity {
	return e.withProperties(copyProperties(properties))
}

func (e Entity) withProperties(properties map[string]any) Entity {
	return Entity{
		ID:         e.ID,
		TenantID:   e.TenantID,
		EntityType: e.EntityType,
		Properties: properties,
		CreatedAt:  e.CreatedAt,
		UpdatedAt:  time.Now(),
		DeletedAt:  e.DeletedAt,
	}
}

func (e *Entity) GetPropertiesAsJSONB() (json.RawMessage, error) {
	if e.Properties == nil {
		e.Properties = make(map[string]any)
	}
	return json.Marshal(e.Properties)
}

// FromJSONBProperties creates properties map from JSONB data
func FromJSONBProperties(propertiesJSON json.RawMessage) (map[string]any, error) {
	var properties map[string]any
	err := json.Unmarshal(propertiesJSON, &properties)
	return properties, err
}

// copyProperties creates a copy of the properties map to ensure immutability
func copyProperties(properties map[string]any) map[string]any {
	newProperties := make(map[string]any, len(properties))
	for k, v := range properties {
		newProperties[k] = v
	}
	return newProperties
}
