package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"vms/internal/credential"
	"vms/internal/platform/middleware"
	dErrors "vms/pkg/domain-errors"
	"vms/pkg/platform/httputil"
	"vms/pkg/requestcontext"
)

// Service defines the credential operations exposed over HTTP.
type Service interface {
	Issue(ctx context.Context, req credential.IssueRequest) (*credential.IssueResult, error)
	Context(ctx context.Context, volunteerID int64) (*credential.MilestoneContext, error)
}

// Handler serves certificate requests and milestone contexts.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the credential endpoints. Both require an authenticated
// volunteer acting on their own record.
func (h *Handler) Register(r chi.Router) {
	r.With(middleware.RequireSelf("vid", h.logger)).
		Get("/api/volunteers/{vid}/certificate/context", h.HandleContext)
	r.Post("/api/certificate/request", h.HandleIssue)
}

// HandleContext handles GET /api/volunteers/{vid}/certificate/context.
func (h *Handler) HandleContext(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	vid, err := httputil.PathID(r, "vid")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	result, err := h.service.Context(ctx, vid)
	if err != nil {
		h.logger.ErrorContext(ctx, "milestone context failed",
			"request_id", requestcontext.RequestID(ctx),
			"volunteer_id", vid,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, result)
}

// HandleIssue handles POST /api/certificate/request. Rejections answer 400,
// requests awaiting verification answer 202.
func (h *Handler) HandleIssue(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[IssueRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	domainReq := req.ToDomain()
	if actor := requestcontext.VolunteerID(ctx); actor != domainReq.VolunteerID {
		httputil.WriteError(w, dErrors.New(dErrors.CodeForbidden, "cannot request a certificate for another volunteer"))
		return
	}

	result, err := h.service.Issue(ctx, domainReq)
	if err != nil {
		h.logger.ErrorContext(ctx, "certificate issuance failed",
			"request_id", requestID,
			"volunteer_id", domainReq.VolunteerID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	switch result.Status {
	case credential.StatusRejected:
		httputil.WriteJSON(w, http.StatusBadRequest, result)
	case credential.StatusPendingVerification:
		httputil.WriteJSON(w, http.StatusAccepted, result)
	default:
		httputil.WriteJSON(w, http.StatusOK, result)
	}
}
