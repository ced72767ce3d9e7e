package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/storeline/storeadmin/internal/auth"
	"github.com/storeline/storeadmin/internal/domain"
	"github.com/storeline/storeadmin/internal/export"
	"github.com/storeline/storeadmin/internal/repository"
	"github.com/storeline/storeadmin/internal/service"
)

// Handler serves the entity REST surface: one operation per guarded action.
type Handler struct {
	service   *service.LifecycleService
	exporter  *export.Service
	registry  *domain.Registry
	repo      repository.EntityRepository
	tenants   repository.TenantRepository
	translate domain.Translator
	logger    *zap.Logger
}

// NewHandler wires the REST handler.
func NewHandler(
	svc *service.LifecycleService,
	exporter *export.Service,
	registry *domain.Registry,
	repo repository.EntityRepository,
	tenants repository.TenantRepository,
	translate domain.Translator,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		service:   svc,
		exporter:  exporter,
		registry:  registry,
		repo:      repo,
		tenants:   tenants,
		translate: translate,
		logger:    logger,
	}
}

// listPayload is the list response: the page, the unpaginated count, and the
// rendered active-filter preview for the client's filter chips.
type listPayload struct {
	Rows    []domain.Entity      `json:"rows"`
	Count   int                  `json:"count"`
	Filters []domain.PreviewItem `json:"filters"`
}

// List serves GET /api/tenants/{tenantID}/{entityType}. Filter parameters
// cast leniently: malformed values broaden the listing, they never fail it.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	principal, tenantID, descriptor, err := h.requestScope(r)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	query := r.URL.Query()
	raw := rawFilterFromQuery(descriptor.Schema, query)
	filter := domain.Cast(descriptor.Schema, raw)

	rows, count, err := h.service.List(r.Context(), principal, tenantID, descriptor.Type,
		filter, paginationFromQuery(query), sortFromQuery(query))
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	if rows == nil {
		rows = []domain.Entity{}
	}

	rules := previewRules(r.Context(), descriptor.Type, descriptor.Schema, tenantID, h.repo, h.translate)
	respondSuccess(w, listPayload{
		Rows:    rows,
		Count:   count,
		Filters: domain.Preview(descriptor.Schema, filter, rules),
	})
}

// Create serves POST /api/tenants/{tenantID}/{entityType}.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	principal, tenantID, descriptor, err := h.requestScope(r)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	raw, err := decodeRawBody(r)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	created, err := h.service.Create(r.Context(), principal, tenantID, descriptor.Type, raw)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondSuccess(w, created)
}

// Update serves PUT /api/tenants/{tenantID}/{entityType}/{id}.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	principal, tenantID, descriptor, err := h.requestScope(r)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, h.logger, domain.NewValidationError(domain.FieldError{Field: "id", Message: "invalid identifier"}))
		return
	}

	raw, err := decodeRawBody(r)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	updated, err := h.service.Update(r.Context(), principal, tenantID, descriptor.Type, id, raw)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondSuccess(w, updated)
}

// Destroy serves DELETE /api/tenants/{tenantID}/{entityType}?ids=a,b,c.
// Success yields a boolean-true payload.
func (h *Handler) Destroy(w http.ResponseWriter, r *http.Request) {
	principal, tenantID, descriptor, err := h.requestScope(r)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	ids, err := parseIDList(r.URL.Query()["ids"])
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	if err := h.service.DestroyAll(r.Context(), principal, tenantID, descriptor.Type, ids); err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondSuccess(w, true)
}

// Export serves GET /api/tenants/{tenantID}/{entityType}/export, writing the
// filtered listing as a spreadsheet.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	principal, tenantID, descriptor, err := h.requestScope(r)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	query := r.URL.Query()
	filter := domain.Cast(descriptor.Schema, rawFilterFromQuery(descriptor.Schema, query))

	file, err := h.exporter.ExportEntityType(r.Context(), principal, tenantID, descriptor.Type, filter, sortFromQuery(query))
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", descriptor.Type+".xlsx"))
	if err := file.Write(w); err != nil {
		h.logger.Error("failed to stream export", zap.Error(err))
	}
}

// ListTenants serves GET /api/tenants for workspace pickers.
func (h *Handler) ListTenants(w http.ResponseWriter, r *http.Request) {
	tenants, err := h.tenants.List(r.Context())
	if err != nil {
		respondError(w, h.logger, domain.NewInternalError("failed to list tenants", err))
		return
	}
	if tenants == nil {
		tenants = []domain.Tenant{}
	}
	respondSuccess(w, tenants)
}

// requestScope resolves the principal, target tenant and entity descriptor
// shared by every entity route.
func (h *Handler) requestScope(r *http.Request) (domain.Principal, uuid.UUID, domain.EntityDescriptor, error) {
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		// The principal middleware guards these routes; absence is a
		// wiring bug, surfaced as a denial.
		return domain.Principal{}, uuid.Nil, domain.EntityDescriptor{}, domain.NewForbiddenError()
	}

	tenantID, err := uuid.Parse(chi.URLParam(r, "tenantID"))
	if err != nil {
		return domain.Principal{}, uuid.Nil, domain.EntityDescriptor{}, domain.NewValidationError(
			domain.FieldError{Field: "tenantID", Message: "invalid identifier"})
	}

	entityType := chi.URLParam(r, "entityType")
	descriptor, ok := h.registry.Descriptor(entityType)
	if !ok {
		return domain.Principal{}, uuid.Nil, domain.EntityDescriptor{}, domain.NewNotFoundError(
			fmt.Sprintf("unknown entity type %q", entityType))
	}

	return principal, tenantID, descriptor, nil
}

func decodeRawBody(r *http.Request) (domain.RawFilter, error) {
	var raw domain.RawFilter
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		return nil, domain.NewValidationError(domain.FieldError{Field: "body", Message: "invalid JSON"})
	}
	return raw, nil
}

// parseIDList accepts repeated ids parameters or comma-separated lists.
func parseIDList(values []string) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	for _, value := range values {
		for _, part := range strings.Split(value, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			id, err := uuid.Parse(part)
			if err != nil {
				return nil, domain.NewValidationError(domain.FieldError{Field: "ids", Message: "invalid identifier " + part})
			}
			ids = append(ids, id)
		}
	}
	return ids, nil
}
