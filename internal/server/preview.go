package server

import (
	"context"

	"github.com/google/uuid"

	"github.com/storeline/storeadmin/internal/domain"
	"github.com/storeline/storeadmin/internal/repository"
)

// previewRules builds the per-field render rules for one entity type:
// translated labels, relation values rendered through a name lookup, booleans
// through yes/no labels.
func previewRules(
	ctx context.Context,
	entityType string,
	schema domain.FilterSchema,
	tenantID uuid.UUID,
	repo repository.EntityRepository,
	translate domain.Translator,
) map[string]domain.PreviewRule {
	rules := make(map[string]domain.PreviewRule, schema.Len())
	for _, spec := range schema.Fields() {
		rule := domain.PreviewRule{
			Label: translate("entities." + entityType + ".fields." + spec.Name),
		}
		switch spec.Kind {
		case domain.FieldKindRelationToOne, domain.FieldKindRelationToMany:
			related := spec.RelatedType
			rule.Render = domain.RenderRelation(func(id uuid.UUID) string {
				entity, err := repo.GetByID(ctx, tenantID, id)
				if err != nil || entity.EntityType != related {
					return ""
				}
				return entity.Name()
			})
		case domain.FieldKindBoolean:
			rule.Render = domain.RenderBoolean(translate)
		}
		rules[spec.Name] = rule
	}
	return rules
}
