package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"vms/internal/dataspace/federation"
	"vms/internal/platform/middleware"
	"vms/internal/volunteering/models"
	dErrors "vms/pkg/domain-errors"
	"vms/pkg/platform/httputil"
	"vms/pkg/requestcontext"
)

// Service defines the dataspace operations exposed over HTTP.
type Service interface {
	Onboard(ctx context.Context, req federation.OnboardingRequest) (*federation.OnboardingResult, error)
	RejectMalformed(ctx context.Context, detail string) (*federation.OnboardingResult, error)
	Organizations(ctx context.Context) ([]*models.Organization, error)
	Catalog(ctx context.Context, orgID int64) (*federation.Catalog, error)
	CatalogEvent(ctx context.Context, orgID, eventID int64) (*federation.CatalogEvent, error)
}

// Handler serves onboarding and the connector catalog.
type Handler struct {
	service   Service
	logger    *slog.Logger
	validator middleware.SessionValidator
}

// New constructs a dataspace handler. Onboarding requires a session validated by validator.
func New(service Service, logger *slog.Logger, validator middleware.SessionValidator) *Handler {
	return &Handler{
		service:   service,
		logger:    logger,
		validator: validator,
	}
}

// Register mounts the dataspace endpoints. Catalog reads are public.
func (h *Handler) Register(r chi.Router) {
	r.Get("/api/orgs", h.HandleListOrganizations)
	r.Get("/api/catalog/{orgID}", h.HandleCatalog)
	r.Get("/api/catalog/{orgID}/events/{eventID}", h.HandleCatalogEvent)
	r.With(middleware.RequireAuth(h.validator, h.logger)).
		Post("/api/onboard-organization", h.HandleOnboard)
}

// HandleOnboard handles POST /api/onboard-organization. Rejected applications,
// including bodies that cannot be decoded, are answered with 400 and the
// rejection reason.
func (h *Handler) HandleOnboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	var req OnboardRequest
	err := httputil.DecodeJSON(w, r, &req)
	if err == nil {
		err = req.Validate()
	}
	if err != nil {
		h.logger.WarnContext(ctx, "malformed onboarding request",
			"request_id", requestID,
			"error", err,
		)
		h.rejectMalformed(w, r, malformedDetail(err))
		return
	}

	result, err := h.service.Onboard(ctx, req.ToDomain())
	if err != nil {
		h.logger.ErrorContext(ctx, "onboarding failed",
			"request_id", requestID,
			"organization", req.Name,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	if result.Rejected() {
		h.logger.InfoContext(ctx, "onboarding rejected",
			"request_id", requestID,
			"organization", req.Name,
			"reason", result.Reason,
		)
		httputil.WriteJSON(w, http.StatusBadRequest, result)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) rejectMalformed(w http.ResponseWriter, r *http.Request, detail string) {
	ctx := r.Context()
	result, err := h.service.RejectMalformed(ctx, detail)
	if err != nil {
		h.logger.ErrorContext(ctx, "onboarding failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusBadRequest, result)
}

// malformedDetail keeps validation messages and hides decoder internals.
func malformedDetail(err error) string {
	if de, ok := dErrors.As(err); ok {
		return de.Message
	}
	return "invalid json payload"
}

// HandleListOrganizations handles GET /api/orgs.
func (h *Handler) HandleListOrganizations(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	orgs, err := h.service.Organizations(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list organizations",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toOrganizationsResponse(orgs))
}

// HandleCatalog handles GET /api/catalog/{orgID}.
func (h *Handler) HandleCatalog(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	orgID, err := httputil.PathID(r, "orgID")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	catalog, err := h.service.Catalog(ctx, orgID)
	if err != nil {
		h.logger.WarnContext(ctx, "catalog lookup failed",
			"request_id", requestcontext.RequestID(ctx),
			"organization_id", orgID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, catalog)
}

// HandleCatalogEvent handles GET /api/catalog/{orgID}/events/{eventID}.
func (h *Handler) HandleCatalogEvent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	orgID, err := httputil.PathID(r, "orgID")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	eventID, err := httputil.PathID(r, "eventID")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	entry, err := h.service.CatalogEvent(ctx, orgID, eventID)
	if err != nil {
		h.logger.WarnContext(ctx, "catalog event lookup failed",
			"request_id", requestcontext.RequestID(ctx),
			"organization_id", orgID,
			"event_id", eventID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, entry)
}
