package domain

import (
	"errors"
	"testing"

	"github.com/google/uuid"
)

func sectionSchema(t *testing.T) FilterSchema {
	t.Helper()
	schema, err := NewFilterSchema([]FilterFieldSpec{
		{Name: "name", Kind: FieldKindText},
		{Name: "shop", Kind: FieldKindRelationToOne, RelatedType: TypeShop},
		{Name: "tags", Kind: FieldKindRelationToMany, RelatedType: TypeShop},
		{Name: "capacityRange", Kind: FieldKindNumericRange},
		{Name: "createdAtRange", Kind: FieldKindDateRange},
		{Name: "active", Kind: FieldKindBoolean},
	})
	if err != nil {
		t.Fatalf("unexpected schema error: %v", err)
	}
	return schema
}

func TestCast_TrimsText(t *testing.T) {
	schema := sectionSchema(t)

	canonical := Cast(schema, RawFilter{"name": "  Dairy  "})

	value, ok := canonical.Get("name")
	if !ok {
		t.Fatalf("expected name to be set")
	}
	if value.Text != "Dairy" {
		t.Fatalf("expected trimmed text %q, got %q", "Dairy", value.Text)
	}
}

func TestCast_EmptyTextUnset(t *testing.T) {
	schema := sectionSchema(t)

	canonical := Cast(schema, RawFilter{"name": "   "})

	if _, ok := canonical.Get("name"); ok {
		t.Fatalf("expected blank text to cast to unset")
	}
}

func TestCast_UnknownKeysIgnored(t *testing.T) {
	schema := sectionSchema(t)

	canonical := Cast(schema, RawFilter{"bogus": "x", "alsoBogus": map[string]any{"min": 1}})

	if !canonical.IsEmpty() {
		t.Fatalf("expected empty canonical filter from unknown-only input, got %d fields", canonical.Len())
	}
	if !canonical.Equal(schema.Empty()) {
		t.Fatalf("expected canonical filter equal to schema empty value")
	}
}

func TestCast_RelationAcceptsIDOrObject(t *testing.T) {
	schema := sectionSchema(t)
	id := uuid.New()

	for _, raw := range []any{id, id.String(), map[string]any{"id": id.String(), "label": "Main"}} {
		canonical := Cast(schema, RawFilter{"shop": raw})
		value, ok := canonical.Get("shop")
		if !ok {
			t.Fatalf("expected shop set for input %#v", raw)
		}
		if value.Relation != id {
			t.Fatalf("expected relation %s, got %s", id, value.Relation)
		}
	}
}

func TestCast_RelationWithoutIdentifierDropsLeniently(t *testing.T) {
	schema := sectionSchema(t)

	canonical := Cast(schema, RawFilter{"shop": map[string]any{"label": "Main"}})

	if _, ok := canonical.Get("shop"); ok {
		t.Fatalf("expected identifier-less relation to drop in lenient mode")
	}
}

func TestCastStrict_RelationWithoutIdentifierErrors(t *testing.T) {
	schema := sectionSchema(t)

	_, err := CastStrict(schema, RawFilter{"shop": map[string]any{"label": "Main"}})
	if err == nil {
		t.Fatalf("expected validation error")
	}
	var domainErr *Error
	if !errors.As(err, &domainErr) || domainErr.Code != CodeValidation {
		t.Fatalf("expected %s error, got %v", CodeValidation, err)
	}
	if len(domainErr.Fields) != 1 || domainErr.Fields[0].Field != "shop" {
		t.Fatalf("expected field error on shop, got %+v", domainErr.Fields)
	}
}

func TestCast_RelationToMany(t *testing.T) {
	schema := sectionSchema(t)
	first, second := uuid.New(), uuid.New()

	canonical := Cast(schema, RawFilter{"tags": []any{first.String(), map[string]any{"id": second}}})

	value, ok := canonical.Get("tags")
	if !ok {
		t.Fatalf("expected tags set")
	}
	if len(value.Relations) != 2 || value.Relations[0] != first || value.Relations[1] != second {
		t.Fatalf("unexpected relations: %v", value.Relations)
	}

	canonical = Cast(schema, RawFilter{"tags": []any{}})
	if _, ok := canonical.Get("tags"); ok {
		t.Fatalf("expected empty list to cast to unset")
	}
}

func TestCast_NumericRangePartialBounds(t *testing.T) {
	schema := sectionSchema(t)

	canonical := Cast(schema, RawFilter{"capacityRange": map[string]any{"min": "10"}})
	value, ok := canonical.Get("capacityRange")
	if !ok || value.NumberMin == nil || *value.NumberMin != 10 {
		t.Fatalf("expected min-only range, got %+v set=%v", value, ok)
	}
	if value.NumberMax != nil {
		t.Fatalf("expected max unset, got %v", *value.NumberMax)
	}
}

func TestCast_NumericRangeInvertedNeverSwaps(t *testing.T) {
	schema := sectionSchema(t)

	canonical := Cast(schema, RawFilter{"capacityRange": map[string]any{"min": 9.0, "max": 3.0}})
	if _, ok := canonical.Get("capacityRange"); ok {
		t.Fatalf("expected inverted range to drop, never swap bounds")
	}

	_, err := CastStrict(schema, RawFilter{"capacityRange": map[string]any{"min": 9.0, "max": 3.0}})
	if err == nil {
		t.Fatalf("expected strict cast to reject inverted range")
	}
}

func TestCast_DateRange(t *testing.T) {
	schema := sectionSchema(t)

	canonical := Cast(schema, RawFilter{"createdAtRange": map[string]any{"min": "2026-01-01", "max": "2026-02-01"}})
	value, ok := canonical.Get("createdAtRange")
	if !ok || value.DateMin == nil || value.DateMax == nil {
		t.Fatalf("expected both bounds set, got %+v", value)
	}
	if !value.DateMin.Before(*value.DateMax) {
		t.Fatalf("expected min before max")
	}

	canonical = Cast(schema, RawFilter{"createdAtRange": map[string]any{"min": "2026-02-01", "max": "2026-01-01"}})
	if _, ok := canonical.Get("createdAtRange"); ok {
		t.Fatalf("expected inverted date range to drop")
	}
}

func TestCast_Boolean(t *testing.T) {
	schema := sectionSchema(t)

	for raw, want := range map[any]bool{true: true, false: false, "true": true, "false": false} {
		canonical := Cast(schema, RawFilter{"active": raw})
		value, ok := canonical.Get("active")
		if !ok || value.Bool != want {
			t.Fatalf("input %#v: expected bool %v, got %+v set=%v", raw, want, value, ok)
		}
	}

	canonical := Cast(schema, RawFilter{"active": "yes"})
	if _, ok := canonical.Get("active"); ok {
		t.Fatalf("expected unrecognized boolean input to cast to unset")
	}
}

func TestCastForm_RequiredField(t *testing.T) {
	schema, err := NewFilterSchema([]FilterFieldSpec{
		{Name: "name", Kind: FieldKindText, Required: true},
		{Name: "active", Kind: FieldKindBoolean},
	})
	if err != nil {
		t.Fatalf("unexpected schema error: %v", err)
	}

	if _, err := CastForm(schema, RawFilter{}); err == nil {
		t.Fatalf("expected required-field error on a form payload")
	}
	if _, err := CastForm(schema, RawFilter{"name": "   "}); err == nil {
		t.Fatalf("expected blank text to count as missing on a form payload")
	}

	// Required binds form payloads only. Filter submission and lenient
	// preview casting both accept a filter that leaves the field unset.
	if _, err := CastStrict(schema, RawFilter{"active": true}); err != nil {
		t.Fatalf("expected filter submission without the required field to pass, got %v", err)
	}
	canonical := Cast(schema, RawFilter{})
	if !canonical.IsEmpty() {
		t.Fatalf("expected lenient cast to succeed with empty filter")
	}
}

func TestNewFilterSchema_RejectsDuplicates(t *testing.T) {
	_, err := NewFilterSchema([]FilterFieldSpec{
		{Name: "name", Kind: FieldKindText},
		{Name: "name", Kind: FieldKindBoolean},
	})
	if err == nil {
		t.Fatalf("expected duplicate field name to be rejected")
	}
}
