package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/storeline/storeadmin/internal/db"
	"github.com/storeline/storeadmin/internal/domain"
)

// entityRepository implements EntityRepository over Postgres, storing entity
// properties as JSONB and deletion as a deleted_at timestamp. The registry
// resolves entity types to their filter schemas for SQL translation.
type entityRepository struct {
	pool     *pgxpool.Pool
	registry *domain.Registry
}

// NewEntityRepository creates a new entity repository
func NewEntityRepository(pool *pgxpool.Pool, registry *domain.Registry) EntityRepository {
	return &entityRepository{pool: pool, registry: registry}
}

const entityColumns = "id, tenant_id, entity_type, properties, created_at, updated_at, deleted_at"

// Create inserts a new entity row.
func (r *entityRepository) Create(ctx context.Context, entity domain.Entity) (domain.Entity, error) {
	propertiesJSON, err := entity.GetPropertiesAsJSONB()
	if err != nil {
		return domain.Entity{}, fmt.Errorf("failed to marshal properties: %w", err)
	}

	row := r.pool.QueryRow(ctx, `
		INSERT INTO entities (id, tenant_id, entity_type, properties, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+entityColumns,
		entity.ID, entity.TenantID, entity.EntityType, propertiesJSON, entity.CreatedAt, entity.UpdatedAt,
	)
	created, err := scanEntity(row)
	if err != nil {
		return domain.Entity{}, fmt.Errorf("failed to create entity: %w", err)
	}
	return created, nil
}

// GetByID retrieves a live entity scoped to a tenant.
func (r *entityRepository) GetByID(ctx context.Context, tenantID, id uuid.UUID) (domain.Entity, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+entityColumns+`
		FROM entities
		WHERE id = $1 AND tenant_id = $2 AND deleted_at IS NULL`,
		id, tenantID,
	)
	entity, err := scanEntity(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Entity{}, domain.NewNotFoundError("entity not found")
		}
		return domain.Entity{}, fmt.Errorf("failed to get entity: %w", err)
	}
	return entity, nil
}

// Update replaces an entity's properties.
func (r *entityRepository) Update(ctx context.Context, entity domain.Entity) (domain.Entity, error) {
	propertiesJSON, err := entity.GetPropertiesAsJSONB()
	if err != nil {
		return domain.Entity{}, fmt.Errorf("failed to marshal properties: %w", err)
	}

	row := r.pool.QueryRow(ctx, `
		UPDATE entities
		SET properties = $1, updated_at = $2
		WHERE id = $3 AND tenant_id = $4 AND deleted_at IS NULL
		RETURNING `+entityColumns,
		propertiesJSON, time.Now(), entity.ID, entity.TenantID,
	)
	updated, err := scanEntity(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Entity{}, domain.NewNotFoundError("entity not found")
		}
		return domain.Entity{}, fmt.Errorf("failed to update entity: %w", err)
	}
	return updated, nil
}

// Query lists live entities of one type matching the canonical filter.
func (r *entityRepository) Query(
	ctx context.Context,
	tenantID uuid.UUID,
	entityType string,
	filter domain.CanonicalFilter,
	pagination domain.Pagination,
	sort domain.EntitySort,
) ([]domain.Entity, int, error) {
	descriptor, ok := r.registry.Descriptor(entityType)
	if !ok {
		return nil, 0, domain.NewNotFoundError(fmt.Sprintf("unknown entity type %q", entityType))
	}

	builder := newSQLBuilder()
	where := []string{
		fmt.Sprintf("tenant_id = %s", builder.placeholder(builder.addArg(tenantID))),
		fmt.Sprintf("entity_type = %s", builder.placeholder(builder.addArg(entityType))),
		"deleted_at IS NULL",
	}
	appendFilterClauses(descriptor.Schema, filter, builder, &where)

	orderBy := orderByClause(sort, builder)
	pagination = pagination.Normalize()
	limitIdx := builder.addArg(pagination.Limit)
	offsetIdx := builder.addArg(pagination.Offset)

	query := fmt.Sprintf(`
		SELECT %s, COUNT(*) OVER() AS total_count
		FROM entities
		WHERE %s
		%s
		LIMIT %s OFFSET %s`,
		entityColumns,
		strings.Join(where, " AND "),
		orderBy,
		builder.placeholder(limitIdx),
		builder.placeholder(offsetIdx),
	)

	rows, err := r.pool.Query(ctx, query, builder.args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query entities: %w", err)
	}
	defer rows.Close()

	var entities []domain.Entity
	totalCount := 0
	for rows.Next() {
		entity, total, err := scanEntityWithTotal(rows)
		if err != nil {
			return nil, 0, err
		}
		entities = append(entities, entity)
		totalCount = total
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to read entity rows: %w", err)
	}

	return entities, totalCount, nil
}

// ResolveByIDs returns the live entities among ids within the tenant.
func (r *entityRepository) ResolveByIDs(ctx context.Context, tenantID uuid.UUID, entityType string, ids []uuid.UUID) ([]domain.Entity, error) {
	if len(ids) == 0 {
		return []domain.Entity{}, nil
	}

	rows, err := r.pool.Query(ctx, `
		SELECT `+entityColumns+`
		FROM entities
		WHERE id = ANY($1) AND tenant_id = $2 AND entity_type = $3 AND deleted_at IS NULL`,
		ids, tenantID, entityType,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve entities: %w", err)
	}
	defer rows.Close()

	var entities []domain.Entity
	for rows.Next() {
		entity, err := scanEntity(rows)
		if err != nil {
			return nil, err
		}
		entities = append(entities, entity)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read entity rows: %w", err)
	}

	return entities, nil
}

// CommitDeletion clears child relation references and soft-deletes the
// entities in one transaction.
func (r *entityRepository) CommitDeletion(ctx context.Context, tenantID uuid.UUID, entityType string, ids []uuid.UUID, cleanups []domain.RelationCleanup) error {
	if len(ids) == 0 {
		return nil
	}

	idStrings := make([]string, 0, len(ids))
	for _, id := range ids {
		idStrings = append(idStrings, id.String())
	}

	return db.RunInTx(ctx, r.pool, func(tx pgx.Tx) error {
		for _, cleanup := range cleanups {
			// Detach children pointing at any deleted entity before the
			// parent disappears from queries. To-one fields hold a scalar
			// identifier and drop the whole key; to-many fields hold an
			// identifier array and only lose the deleted elements.
			var err error
			if cleanup.Kind == domain.FieldKindRelationToMany {
				_, err = tx.Exec(ctx, `
					UPDATE entities
					SET properties = jsonb_set(properties, ARRAY[$1], (properties -> $1) - $4::text[]), updated_at = now()
					WHERE tenant_id = $2 AND entity_type = $3
						AND deleted_at IS NULL
						AND properties -> $1 ?| $4::text[]`,
					cleanup.Field, tenantID, cleanup.ChildType, idStrings,
				)
			} else {
				_, err = tx.Exec(ctx, `
					UPDATE entities
					SET properties = properties - $1, updated_at = now()
					WHERE tenant_id = $2 AND entity_type = $3
						AND deleted_at IS NULL
						AND properties ->> $1 = ANY($4::text[])`,
					cleanup.Field, tenantID, cleanup.ChildType, idStrings,
				)
			}
			if err != nil {
				return fmt.Errorf("failed to detach %s.%s references: %w", cleanup.ChildType, cleanup.Field, err)
			}
		}

		tag, err := tx.Exec(ctx, `
			UPDATE entities
			SET deleted_at = now(), updated_at = now()
			WHERE id = ANY($1) AND tenant_id = $2 AND entity_type = $3 AND deleted_at IS NULL`,
			ids, tenantID, entityType,
		)
		if err != nil {
			return fmt.Errorf("failed to delete entities: %w", err)
		}
		if tag.RowsAffected() != int64(len(ids)) {
			// A concurrent batch won the race on part of this set; rolling
			// back keeps the commit all-or-nothing.
			return fmt.Errorf("expected %d deletions, applied %d", len(ids), tag.RowsAffected())
		}
		return nil
	})
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntity(row rowScanner) (domain.Entity, error) {
	var (
		entity         domain.Entity
		propertiesJSON json.RawMessage
	)
	err := row.Scan(
		&entity.ID, &entity.TenantID, &entity.EntityType,
		&propertiesJSON, &entity.CreatedAt, &entity.UpdatedAt, &entity.DeletedAt,
	)
	if err != nil {
		return domain.Entity{}, err
	}
	properties, err := domain.FromJSONBProperties(propertiesJSON)
	if err != nil {
		return domain.Entity{}, fmt.Errorf("failed to unmarshal properties: %w", err)
	}
	entity.Properties = properties
	return entity, nil
}

func scanEntityWithTotal(row rowScanner) (domain.Entity, int, error) {
	var (
		entity         domain.Entity
		propertiesJSON json.RawMessage
		totalCount     int
	)
	err := row.Scan(
		&entity.ID, &entity.TenantID, &entity.EntityType,
		&propertiesJSON, &entity.CreatedAt, &entity.UpdatedAt, &entity.DeletedAt,
		&totalCount,
	)
	if err != nil {
		return domain.Entity{}, 0, fmt.Errorf("failed to scan entity row: %w", err)
	}
	properties, err := domain.FromJSONBProperties(propertiesJSON)
	if err != nil {
		return domain.Entity{}, 0, fmt.Errorf("failed to unmarshal properties: %w", err)
	}
	entity.Properties = properties
	return entity, totalCount, nil
}
