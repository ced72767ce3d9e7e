// Package i18n provides the label lookup consumed by filter previews. The
// dictionary ships English only; a real deployment swaps the translator at
// wiring time.
package i18n

var dictionary = map[string]string{
	"common.yes": "Yes",
	"common.no":  "No",

	"entities.shop.fields.name":           "Name",
	"entities.shop.fields.active":         "Active",
	"entities.shop.fields.createdAtRange": "Created at",

	"entities.department.fields.name": "Name",
	"entities.department.fields.shop": "Shop",

	"entities.section.fields.name":       "Name",
	"entities.section.fields.shop":       "Shop",
	"entities.section.fields.department": "Department",

	"entities.shelf.fields.name":          "Name",
	"entities.shelf.fields.shop":          "Shop",
	"entities.shelf.fields.department":    "Department",
	"entities.shelf.fields.section":       "Section",
	"entities.shelf.fields.capacityRange": "Capacity",
}

// Translate resolves a label key, falling back to the key itself so missing
// entries stay visible instead of blank.
func Translate(key string) string {
	if label, ok := dictionary[key]; ok {
		return label
	}
	return key
}
