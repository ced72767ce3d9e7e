package domain

// SortDirection represents ordering direction for sortable fields.
type SortDirection string

const (
	SortDirectionAsc  SortDirection = "asc"
	SortDirectionDesc SortDirection = "desc"
)

// EntitySortField enumerates fields that can be sorted when listing entities.
type EntitySortField string

const (
	EntitySortFieldCreatedAt EntitySortField = "created_at"
	EntitySortFieldUpdatedAt EntitySortField = "updated_at"
	EntitySortFieldProperty  EntitySortField = "property"
)

// EntitySort captures ordering preferences for entity listings.
type EntitySort struct {
	Field       EntitySortField
	Direction   SortDirection
	PropertyKey string
}

// DefaultSort orders newest first, matching the list views' default.
func DefaultSort() EntitySort {
	return EntitySort{Field: EntitySortFieldCreatedAt, Direction: SortDirectionDesc}
}

// Pagination bounds a list query.
type Pagination struct {
	Limit  int
	Offset int
}

const (
	DefaultPageSize = 50
	MaxPageSize     = 200
)

// Normalize clamps the pagination to sane bounds.
func (p Pagination) Normalize() Pagination {
	if p.Limit <= 0 {
		p.Limit = DefaultPageSize
	}
	if p.Limit > MaxPageSize {
		p.Limit = MaxPageSize
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}
