package domain

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Translator resolves a label key to a display string. Supplied by the i18n
// layer; the identity function is a valid translator.
type Translator func(key string) string

// PreviewRule controls how one field renders in the active-filter preview.
type PreviewRule struct {
	Label  string
	Render func(value FilterValue) string
}

// PreviewItem is one active filter chip: the field it belongs to, its display
// label, and the human-readable value.
type PreviewItem struct {
	Field string `json:"field"`
	Label string `json:"label"`
	Value string `json:"value"`
}

// Preview renders the set fields of a canonical filter in schema order,
// skipping unset fields. Fields without a rule fall back to a kind-default
// rendering with the field name as label.
func Preview(schema FilterSchema, filter CanonicalFilter, rules map[string]PreviewRule) []PreviewItem {
	items := make([]PreviewItem, 0, filter.Len())
	for _, spec := range schema.Fields() {
		value, ok := filter.Get(spec.Name)
		if !ok {
			continue
		}
		rule, hasRule := rules[spec.Name]
		label := spec.Name
		if hasRule && rule.Label != "" {
			label = rule.Label
		}
		render := rule.Render
		if render == nil {
			render = defaultRender
		}
		items = append(items, PreviewItem{Field: spec.Name, Label: label, Value: render(value)})
	}
	return items
}

// RemoveOne clears exactly one field from a canonical filter and leaves all
// others untouched.
func RemoveOne(filter CanonicalFilter, field string) CanonicalFilter {
	return filter.Without(field)
}

// RenderGeneric renders text and boolean values verbatim.
func RenderGeneric() func(FilterValue) string {
	return defaultRender
}

// RenderRelation renders relation values through a label lookup, falling back
// to the identifier string when no label is known.
func RenderRelation(lookup func(id uuid.UUID) string) func(FilterValue) string {
	return func(value FilterValue) string {
		if value.Kind == FieldKindRelationToMany {
			labels := make([]string, 0, len(value.Relations))
			for _, id := range value.Relations {
				labels = append(labels, relationLabel(lookup, id))
			}
			return strings.Join(labels, ", ")
		}
		return relationLabel(lookup, value.Relation)
	}
}

// RenderBoolean renders a boolean value with translated yes/no labels.
func RenderBoolean(translate Translator) func(FilterValue) string {
	return func(value FilterValue) string {
		if value.Bool {
			return translate("common.yes")
		}
		return translate("common.no")
	}
}

func relationLabel(lookup func(id uuid.UUID) string, id uuid.UUID) string {
	if lookup != nil {
		if label := lookup(id); label != "" {
			return label
		}
	}
	return id.String()
}

func defaultRender(value FilterValue) string {
	switch value.Kind {
	case FieldKindText:
		return value.Text
	case FieldKindBoolean:
		if value.Bool {
			return "yes"
		}
		return "no"
	case FieldKindRelationToOne:
		return value.Relation.String()
	case FieldKindRelationToMany:
		ids := make([]string, 0, len(value.Relations))
		for _, id := range value.Relations {
			ids = append(ids, id.String())
		}
		return strings.Join(ids, ", ")
	case FieldKindNumericRange:
		return renderRange(
			value.NumberMin != nil, value.NumberMax != nil,
			func() string { return trimFloat(*value.NumberMin) },
			func() string { return trimFloat(*value.NumberMax) },
		)
	case FieldKindDateRange:
		return renderRange(
			value.DateMin != nil, value.DateMax != nil,
			func() string { return value.DateMin.Format("2006-01-02") },
			func() string { return value.DateMax.Format("2006-01-02") },
		)
	}
	return ""
}

func renderRange(hasMin, hasMax bool, min, max func() string) string {
	switch {
	case hasMin && hasMax:
		return min() + " - " + max()
	case hasMin:
		return "> " + min()
	case hasMax:
		return "< " + max()
	}
	return ""
}

func trimFloat(v float64) string {
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.2f", v), "0"), ".")
}
