// Package service implements the permission-gated entity lifecycle:
// create, update and bulk destroy, each checked against the permission
// matrix before any storage effect.
package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/storeline/storeadmin/internal/auth"
	"github.com/storeline/storeadmin/internal/domain"
	"github.com/storeline/storeadmin/internal/repository"
)

// LifecycleService executes entity lifecycle operations against storage
// after consulting the permission checker.
type LifecycleService struct {
	checker  *auth.PermissionChecker
	repo     repository.EntityRepository
	registry *domain.Registry
	logger   *zap.Logger

	// strictDestroy fails a whole batch when any id is unresolvable
	// instead of proceeding over the resolvable subset.
	strictDestroy bool

	// batchLocks serializes destroy batches per entity type so two
	// overlapping id sets cannot both observe their targets as live.
	batchLocks sync.Map // map[string]*sync.Mutex
}

// Option configures the service.
type Option func(*LifecycleService)

// WithStrictDestroy switches bulk destroy from the lenient default to
// failing the whole batch on any unresolvable id.
func WithStrictDestroy(strict bool) Option {
	return func(s *LifecycleService) {
		s.strictDestroy = strict
	}
}

// WithLogger attaches a logger; a no-op logger is used otherwise.
func WithLogger(logger *zap.Logger) Option {
	return func(s *LifecycleService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewLifecycleService wires the service with its checker, storage and
// entity registry.
func NewLifecycleService(checker *auth.PermissionChecker, repo repository.EntityRepository, registry *domain.Registry, opts ...Option) *LifecycleService {
	s := &LifecycleService{
		checker:  checker,
		repo:     repo,
		registry: registry,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List returns one page of entities matching a canonical filter, gated by
// the entity type's read token.
func (s *LifecycleService) List(
	ctx context.Context,
	principal domain.Principal,
	tenantID uuid.UUID,
	entityType string,
	filter domain.CanonicalFilter,
	pagination domain.Pagination,
	sort domain.EntitySort,
) ([]domain.Entity, int, error) {
	if _, ok := s.registry.Descriptor(entityType); !ok {
		return nil, 0, domain.NewNotFoundError(fmt.Sprintf("unknown entity type %q", entityType))
	}
	if err := s.checker.ValidateHasForTenant(principal, domain.TokenFor(entityType, domain.VerbRead), tenantID); err != nil {
		return nil, 0, err
	}
	return s.repo.Query(ctx, tenantID, entityType, filter, pagination, sort)
}

// Create validates properties against the entity type's schema and inserts
// a new entity, gated by the create token.
func (s *LifecycleService) Create(
	ctx context.Context,
	principal domain.Principal,
	tenantID uuid.UUID,
	entityType string,
	raw domain.RawFilter,
) (domain.Entity, error) {
	descriptor, ok := s.registry.Descriptor(entityType)
	if !ok {
		return domain.Entity{}, domain.NewNotFoundError(fmt.Sprintf("unknown entity type %q", entityType))
	}
	if err := s.checker.ValidateHasForTenant(principal, domain.TokenFor(entityType, domain.VerbCreate), tenantID); err != nil {
		return domain.Entity{}, err
	}

	canonical, err := domain.CastForm(descriptor.Schema, raw)
	if err != nil {
		return domain.Entity{}, err
	}

	entity := domain.NewEntity(tenantID, entityType, canonicalToProperties(descriptor.Schema, canonical))
	created, err := s.repo.Create(ctx, entity)
	if err != nil {
		return domain.Entity{}, err
	}

	s.logger.Info("entity created",
		zap.String("entityType", entityType),
		zap.String("id", created.ID.String()),
		zap.String("principal", principal.String()),
	)
	return created, nil
}

// Update validates properties and replaces an existing entity's values,
// gated by the update token.
func (s *LifecycleService) Update(
	ctx context.Context,
	principal domain.Principal,
	tenantID uuid.UUID,
	entityType string,
	id uuid.UUID,
	raw domain.RawFilter,
) (domain.Entity, error) {
	descriptor, ok := s.registry.Descriptor(entityType)
	if !ok {
		return domain.Entity{}, domain.NewNotFoundError(fmt.Sprintf("unknown entity type %q", entityType))
	}
	if err := s.checker.ValidateHasForTenant(principal, domain.TokenFor(entityType, domain.VerbUpdate), tenantID); err != nil {
		return domain.Entity{}, err
	}

	canonical, err := domain.CastForm(descriptor.Schema, raw)
	if err != nil {
		return domain.Entity{}, err
	}

	existing, err := s.repo.GetByID(ctx, tenantID, id)
	if err != nil {
		return domain.Entity{}, err
	}
	if existing.EntityType != entityType {
		return domain.Entity{}, domain.NewNotFoundError("entity not found")
	}

	updated, err := s.repo.Update(ctx, existing.WithProperties(canonicalToProperties(descriptor.Schema, canonical)))
	if err != nil {
		return domain.Entity{}, err
	}

	s.logger.Info("entity updated",
		zap.String("entityType", entityType),
		zap.String("id", id.String()),
		zap.String("principal", principal.String()),
	)
	return updated, nil
}

// Destroy removes a single entity; a convenience over DestroyAll.
func (s *LifecycleService) Destroy(ctx context.Context, principal domain.Principal, tenantID uuid.UUID, entityType string, id uuid.UUID) error {
	return s.DestroyAll(ctx, principal, tenantID, entityType, []uuid.UUID{id})
}

// DestroyAll soft-deletes a set of entities atomically. The permission check
// runs strictly before any storage effect; ids are de-duplicated; an empty
// set succeeds trivially. Unresolvable ids are skipped under the lenient
// default or fail the batch in strict mode. Cascade cleanups and the
// deletions commit as one transaction.
func (s *LifecycleService) DestroyAll(ctx context.Context, principal domain.Principal, tenantID uuid.UUID, entityType string, ids []uuid.UUID) error {
	if _, ok := s.registry.Descriptor(entityType); !ok {
		return domain.NewNotFoundError(fmt.Sprintf("unknown entity type %q", entityType))
	}
	if err := s.checker.ValidateHasForTenant(principal, domain.TokenFor(entityType, domain.VerbDestroy), tenantID); err != nil {
		return err
	}

	ids = lo.Uniq(ids)
	if len(ids) == 0 {
		return nil
	}

	// Overlapping batches for a type serialize here; the loser observes the
	// winner's deletions as already gone and treats them idempotently.
	lock := s.lockFor(entityType)
	lock.Lock()
	defer lock.Unlock()

	resolved, err := s.repo.ResolveByIDs(ctx, tenantID, entityType, ids)
	if err != nil {
		return domain.NewInternalError("failed to resolve destroy targets", err)
	}

	if s.strictDestroy && len(resolved) != len(ids) {
		missing := len(ids) - len(resolved)
		return domain.NewNotFoundError(fmt.Sprintf("%d of %d entities not found", missing, len(ids)))
	}
	if len(resolved) == 0 {
		// Everything already deleted or never existed; idempotent success.
		return nil
	}

	resolvedIDs := lo.Map(resolved, func(e domain.Entity, _ int) uuid.UUID { return e.ID })
	cleanups := s.registry.CleanupsFor(entityType)

	if err := s.repo.CommitDeletion(ctx, tenantID, entityType, resolvedIDs, cleanups); err != nil {
		return domain.NewConflictError("bulk destroy rolled back", err)
	}

	s.logger.Info("entities destroyed",
		zap.String("entityType", entityType),
		zap.Int("requested", len(ids)),
		zap.Int("deleted", len(resolvedIDs)),
		zap.String("principal", principal.String()),
	)
	return nil
}

func (s *LifecycleService) lockFor(entityType string) *sync.Mutex {
	actual, _ := s.batchLocks.LoadOrStore(entityType, &sync.Mutex{})
	return actual.(*sync.Mutex)
}

// canonicalToProperties flattens a validated canonical value set into the
// entity's stored properties. To-one relations store an identifier string,
// to-many relations an identifier array; both are the representations the
// filter SQL and cascade detach match against.
func canonicalToProperties(schema domain.FilterSchema, canonical domain.CanonicalFilter) map[string]any {
	properties := make(map[string]any, canonical.Len())
	for _, spec := range schema.Fields() {
		value, ok := canonical.Get(spec.Name)
		if !ok {
			continue
		}
		switch spec.Kind {
		case domain.FieldKindText:
			properties[spec.Name] = value.Text
		case domain.FieldKindRelationToOne:
			properties[spec.Name] = value.Relation.String()
		case domain.FieldKindRelationToMany:
			ids := make([]string, 0, len(value.Relations))
			for _, id := range value.Relations {
				ids = append(ids, id.String())
			}
			properties[spec.Name] = ids
		case domain.FieldKindBoolean:
			properties[spec.Name] = value.Bool
		case domain.FieldKindNumericRange, domain.FieldKindDateRange:
			// Range kinds are filter-only; nothing to persist.
		}
	}
	return properties
}
