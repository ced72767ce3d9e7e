package domain

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Cast normalizes raw filter input against a schema, leniently. Fields that
// fail coercion are treated as unset rather than aborting the cast, so a
// malformed query string degrades to a broader listing instead of an error.
// Unknown keys in raw are dropped silently.
func Cast(schema FilterSchema, raw RawFilter) CanonicalFilter {
	canonical, _ := castFilter(schema, raw, false)
	return canonical
}

// CastStrict normalizes raw filter input with submission-time enforcement:
// per-field coercion failures (relation without an identifier, inverted
// range bounds) surface as a validation error instead of silently dropping.
// Required is a form concern, not a filter one; an empty filter submits
// fine. Form payloads go through CastForm instead.
func CastStrict(schema FilterSchema, raw RawFilter) (CanonicalFilter, error) {
	canonical, fieldErrs := castFilter(schema, raw, true)
	if len(fieldErrs) > 0 {
		return CanonicalFilter{}, NewValidationError(fieldErrs...)
	}
	return canonical, nil
}

// CastForm normalizes a form payload: strict coercion plus required-field
// enforcement, for create and update submissions.
func CastForm(schema FilterSchema, raw RawFilter) (CanonicalFilter, error) {
	canonical, fieldErrs := castFilter(schema, raw, true)
	failed := make(map[string]bool, len(fieldErrs))
	for _, fieldErr := range fieldErrs {
		failed[fieldErr.Field] = true
	}
	for _, spec := range schema.Fields() {
		if !spec.Required || failed[spec.Name] {
			continue
		}
		if _, ok := canonical.Get(spec.Name); !ok {
			fieldErrs = append(fieldErrs, FieldError{Field: spec.Name, Message: "is required"})
		}
	}
	if len(fieldErrs) > 0 {
		return CanonicalFilter{}, NewValidationError(fieldErrs...)
	}
	return canonical, nil
}

func castFilter(schema FilterSchema, raw RawFilter, strict bool) (CanonicalFilter, []FieldError) {
	canonical := schema.Empty()
	var fieldErrs []FieldError

	for _, spec := range schema.Fields() {
		value, set, fieldErr := castField(spec, raw[spec.Name])
		if fieldErr != nil {
			if strict {
				fieldErrs = append(fieldErrs, *fieldErr)
			}
			// Lenient mode drops the field; a bad bound never silently
			// swaps into a valid one.
			continue
		}
		if !set {
			continue
		}
		canonical = canonical.With(spec.Name, value)
	}

	return canonical, fieldErrs
}

// castField coerces one raw value according to its field kind. It returns the
// typed value, whether the field is set, and a field-level error when the
// input is present but unusable.
func castField(spec FilterFieldSpec, raw any) (FilterValue, bool, *FieldError) {
	if raw == nil {
		return FilterValue{}, false, nil
	}

	switch spec.Kind {
	case FieldKindText:
		text, ok := raw.(string)
		if !ok {
			return FilterValue{}, false, nil
		}
		text = strings.TrimSpace(text)
		if text == "" {
			return FilterValue{}, false, nil
		}
		return FilterValue{Kind: spec.Kind, Text: text}, true, nil

	case FieldKindRelationToOne:
		id, ok := coerceID(raw)
		if !ok {
			return FilterValue{}, false, &FieldError{Field: spec.Name, Message: "has no identifier"}
		}
		return FilterValue{Kind: spec.Kind, Relation: id}, true, nil

	case FieldKindRelationToMany:
		items, ok := raw.([]any)
		if !ok {
			// A single identifier is accepted as a one-element list, which
			// is what repeated query parameters collapse to.
			items = []any{raw}
		}
		if len(items) == 0 {
			return FilterValue{}, false, nil
		}
		ids := make([]uuid.UUID, 0, len(items))
		for _, item := range items {
			id, ok := coerceID(item)
			if !ok {
				return FilterValue{}, false, &FieldError{Field: spec.Name, Message: "has no identifier"}
			}
			ids = append(ids, id)
		}
		return FilterValue{Kind: spec.Kind, Relations: ids}, true, nil

	case FieldKindNumericRange:
		bounds, ok := raw.(map[string]any)
		if !ok {
			return FilterValue{}, false, nil
		}
		minVal, minSet := coerceNumber(bounds["min"])
		maxVal, maxSet := coerceNumber(bounds["max"])
		if !minSet && !maxSet {
			return FilterValue{}, false, nil
		}
		value := FilterValue{Kind: spec.Kind}
		if minSet {
			value.NumberMin = &minVal
		}
		if maxSet {
			value.NumberMax = &maxVal
		}
		if minSet && maxSet && minVal > maxVal {
			return FilterValue{}, false, &FieldError{Field: spec.Name, Message: "minimum exceeds maximum"}
		}
		return value, true, nil

	case FieldKindDateRange:
		bounds, ok := raw.(map[string]any)
		if !ok {
			return FilterValue{}, false, nil
		}
		minVal, minSet := coerceTime(bounds["min"])
		maxVal, maxSet := coerceTime(bounds["max"])
		if !minSet && !maxSet {
			return FilterValue{}, false, nil
		}
		value := FilterValue{Kind: spec.Kind}
		if minSet {
			value.DateMin = &minVal
		}
		if maxSet {
			value.DateMax = &maxVal
		}
		if minSet && maxSet && minVal.After(maxVal) {
			return FilterValue{}, false, &FieldError{Field: spec.Name, Message: "minimum exceeds maximum"}
		}
		return value, true, nil

	case FieldKindBoolean:
		switch v := raw.(type) {
		case bool:
			return FilterValue{Kind: spec.Kind, Bool: v}, true, nil
		case string:
			switch v {
			case "true":
				return FilterValue{Kind: spec.Kind, Bool: true}, true, nil
			case "false":
				return FilterValue{Kind: spec.Kind, Bool: false}, true, nil
			}
		}
		return FilterValue{}, false, nil
	}

	return FilterValue{}, false, nil
}

// coerceID extracts an identifier from a raw relation value: a UUID, a UUID
// string, or an object carrying one under "id".
func coerceID(raw any) (uuid.UUID, bool) {
	switch v := raw.(type) {
	case uuid.UUID:
		if v == uuid.Nil {
			return uuid.Nil, false
		}
		return v, true
	case string:
		id, err := uuid.Parse(strings.TrimSpace(v))
		if err != nil || id == uuid.Nil {
			return uuid.Nil, false
		}
		return id, true
	case map[string]any:
		nested, ok := v["id"]
		if !ok {
			return uuid.Nil, false
		}
		return coerceID(nested)
	}
	return uuid.Nil, false
}

func coerceNumber(raw any) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		parsed, err := v.Float64()
		if err != nil {
			return 0, false
		}
		return parsed, true
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return 0, false
		}
		parsed, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return 0, false
		}
		return parsed, true
	}
	return 0, false
}

func coerceTime(raw any) (time.Time, bool) {
	switch v := raw.(type) {
	case time.Time:
		return v, true
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return time.Time{}, false
		}
		if parsed, err := time.Parse(time.RFC3339, trimmed); err == nil {
			return parsed, true
		}
		if parsed, err := time.Parse("2006-01-02", trimmed); err == nil {
			return parsed, true
		}
	}
	return time.Time{}, false
}
