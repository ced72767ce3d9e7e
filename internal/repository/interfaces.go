package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/storeline/storeadmin/internal/domain"
)

// TenantRepository defines the interface for tenant operations
type TenantRepository interface {
	Create(ctx context.Context, tenant domain.Tenant) (domain.Tenant, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.Tenant, error)
	GetByName(ctx context.Context, name string) (domain.Tenant, error)
	List(ctx context.Context) ([]domain.Tenant, error)
}

// EntityRepository is the storage interface consumed by the lifecycle
// service and list views. Soft-deleted entities are invisible to every
// method except CommitDeletion itself.
type EntityRepository interface {
	Create(ctx context.Context, entity domain.Entity) (domain.Entity, error)
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (domain.Entity, error)
	Update(ctx context.Context, entity domain.Entity) (domain.Entity, error)

	// Query lists entities of one type matching a canonical filter, with
	// pagination and sort. Returns the page and the unpaginated total.
	Query(ctx context.Context, tenantID uuid.UUID, entityType string, filter domain.CanonicalFilter, pagination domain.Pagination, sort domain.EntitySort) ([]domain.Entity, int, error)

	// ResolveByIDs returns the live entities among ids, scoped to the
	// tenant. Missing or already-deleted ids are simply absent from the
	// result, never an error.
	ResolveByIDs(ctx context.Context, tenantID uuid.UUID, entityType string, ids []uuid.UUID) ([]domain.Entity, error)

	// CommitDeletion applies cascade cleanups and soft-deletes the given
	// entities in one transaction: either every id transitions to deleted
	// or none does.
	CommitDeletion(ctx context.Context, tenantID uuid.UUID, entityType string, ids []uuid.UUID, cleanups []domain.RelationCleanup) error
}
