package server

import (
	"net/url"
	"strconv"

	"github.com/storeline/storeadmin/internal/domain"
)

// rawFilterFromQuery decodes list-endpoint query parameters into raw filter
// input: one parameter per field name, ranges as name_min/name_max, relation
// fields carrying identifiers. Decoding stays untyped; the caster owns
// validation.
func rawFilterFromQuery(schema domain.FilterSchema, query url.Values) domain.RawFilter {
	raw := domain.RawFilter{}
	for _, spec := range schema.Fields() {
		switch spec.Kind {
		case domain.FieldKindNumericRange, domain.FieldKindDateRange:
			bounds := map[string]any{}
			if v := query.Get(spec.Name + "_min"); v != "" {
				bounds["min"] = v
			}
			if v := query.Get(spec.Name + "_max"); v != "" {
				bounds["max"] = v
			}
			if len(bounds) > 0 {
				raw[spec.Name] = bounds
			}
		case domain.FieldKindRelationToMany:
			values := query[spec.Name]
			if len(values) > 0 {
				items := make([]any, 0, len(values))
				for _, v := range values {
					items = append(items, v)
				}
				raw[spec.Name] = items
			}
		default:
			if v := query.Get(spec.Name); v != "" {
				raw[spec.Name] = v
			}
		}
	}
	return raw
}

// paginationFromQuery reads limit/offset, falling back to defaults.
func paginationFromQuery(query url.Values) domain.Pagination {
	pagination := domain.Pagination{}
	if v, err := strconv.Atoi(query.Get("limit")); err == nil {
		pagination.Limit = v
	}
	if v, err := strconv.Atoi(query.Get("offset")); err == nil {
		pagination.Offset = v
	}
	return pagination.Normalize()
}

// sortFromQuery reads sortBy/order. Column names map to their sort fields;
// anything else sorts on the property of that name.
func sortFromQuery(query url.Values) domain.EntitySort {
	sort := domain.DefaultSort()
	if order := query.Get("order"); order == string(domain.SortDirectionAsc) {
		sort.Direction = domain.SortDirectionAsc
	}
	switch sortBy := query.Get("sortBy"); sortBy {
	case "", string(domain.EntitySortFieldCreatedAt):
	case string(domain.EntitySortFieldUpdatedAt):
		sort.Field = domain.EntitySortFieldUpdatedAt
	default:
		sort.Field = domain.EntitySortFieldProperty
		sort.PropertyKey = sortBy
	}
	return sort
}
