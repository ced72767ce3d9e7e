package repository

import (
	"fmt"
	"strings"

	"github.com/storeline/storeadmin/internal/domain"
)

// sqlBuilder accumulates positional arguments for a dynamically assembled
// query.
type sqlBuilder struct {
	args []any
}

func newSQLBuilder() *sqlBuilder {
	return &sqlBuilder{args: make([]any, 0)}
}

func (b *sqlBuilder) addArg(value any) int {
	b.args = append(b.args, value)
	return len(b.args)
}

func (b *sqlBuilder) placeholder(idx int) string {
	return fmt.Sprintf("$%d", idx)
}

// createdAtField is the schema field name conventionally bound to the
// entity's created_at column rather than a JSONB property.
const createdAtField = "createdAtRange"

// appendFilterClauses translates one canonical filter value into SQL
// predicates over the entities table. To-one relations are stored as
// identifier strings and to-many relations as identifier arrays inside the
// properties document; ranges cast the property text to the comparable type.
func appendFilterClauses(schema domain.FilterSchema, filter domain.CanonicalFilter, builder *sqlBuilder, where *[]string) {
	for _, spec := range schema.Fields() {
		value, ok := filter.Get(spec.Name)
		if !ok {
			continue
		}

		nameIdx := builder.addArg(spec.Name)
		property := fmt.Sprintf("properties ->> %s::text", builder.placeholder(nameIdx))

		switch spec.Kind {
		case domain.FieldKindText:
			idx := builder.addArg("%" + escapeLike(value.Text) + "%")
			*where = append(*where, fmt.Sprintf("%s ILIKE %s", property, builder.placeholder(idx)))

		case domain.FieldKindRelationToOne:
			idx := builder.addArg(value.Relation.String())
			*where = append(*where, fmt.Sprintf("%s = %s", property, builder.placeholder(idx)))

		case domain.FieldKindRelationToMany:
			// Stored as a JSONB array of identifier strings; ?| matches
			// entities whose array overlaps the selected identifiers.
			ids := make([]string, 0, len(value.Relations))
			for _, id := range value.Relations {
				ids = append(ids, id.String())
			}
			document := fmt.Sprintf("properties -> %s::text", builder.placeholder(nameIdx))
			idx := builder.addArg(ids)
			*where = append(*where, fmt.Sprintf("%s ?| %s::text[]", document, builder.placeholder(idx)))

		case domain.FieldKindNumericRange:
			if value.NumberMin != nil {
				idx := builder.addArg(*value.NumberMin)
				*where = append(*where, fmt.Sprintf("(%s)::numeric >= %s", property, builder.placeholder(idx)))
			}
			if value.NumberMax != nil {
				idx := builder.addArg(*value.NumberMax)
				*where = append(*where, fmt.Sprintf("(%s)::numeric <= %s", property, builder.placeholder(idx)))
			}

		case domain.FieldKindDateRange:
			column := fmt.Sprintf("(%s)::timestamptz", property)
			if spec.Name == createdAtField {
				column = "created_at"
			}
			if value.DateMin != nil {
				idx := builder.addArg(*value.DateMin)
				*where = append(*where, fmt.Sprintf("%s >= %s", column, builder.placeholder(idx)))
			}
			if value.DateMax != nil {
				idx := builder.addArg(*value.DateMax)
				*where = append(*where, fmt.Sprintf("%s <= %s", column, builder.placeholder(idx)))
			}

		case domain.FieldKindBoolean:
			idx := builder.addArg(value.Bool)
			*where = append(*where, fmt.Sprintf("(%s)::boolean = %s", property, builder.placeholder(idx)))
		}
	}
}

// escapeLike neutralizes LIKE metacharacters in user-supplied text.
func escapeLike(text string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(text)
}

// orderByClause renders a whitelisted ORDER BY for entity listings.
func orderByClause(sort domain.EntitySort, builder *sqlBuilder) string {
	direction := "DESC"
	if sort.Direction == domain.SortDirectionAsc {
		direction = "ASC"
	}

	switch sort.Field {
	case domain.EntitySortFieldUpdatedAt:
		return "ORDER BY updated_at " + direction
	case domain.EntitySortFieldProperty:
		if sort.PropertyKey != "" {
			idx := builder.addArg(sort.PropertyKey)
			return fmt.Sprintf("ORDER BY properties ->> %s::text %s", builder.placeholder(idx), direction)
		}
	}
	return "ORDER BY created_at " + direction
}
