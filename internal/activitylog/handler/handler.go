package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"vms/internal/activitylog"
	dErrors "vms/pkg/domain-errors"
	"vms/pkg/platform/httputil"
	"vms/pkg/requestcontext"
)

// Service reads the activity log.
type Service interface {
	Recent(ctx context.Context, limit int) ([]*activitylog.Entry, error)
}

// Handler serves the recent activity feed.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/api/logs", h.HandleRecent)
}

// RecentResponse is the body of GET /api/logs.
type RecentResponse struct {
	Count   int                  `json:"count"`
	Entries []*activitylog.Entry `json:"entries"`
}

// HandleRecent handles GET /api/logs?limit=N. Entries are newest first.
func (h *Handler) HandleRecent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	limit := activitylog.DefaultRecentLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "limit must be a positive integer"))
			return
		}
		limit = n
	}

	entries, err := h.service.Recent(ctx, limit)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to read activity log",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	if entries == nil {
		entries = []*activitylog.Entry{}
	}
	httputil.WriteJSON(w, http.StatusOK, RecentResponse{Count: len(entries), Entries: entries})
}
