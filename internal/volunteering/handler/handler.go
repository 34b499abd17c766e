package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"vms/internal/dataspace/visibility"
	"vms/internal/platform/middleware"
	"vms/internal/volunteering/models"
	"vms/internal/volunteering/service"
	"vms/pkg/platform/httputil"
	"vms/pkg/requestcontext"
)

// Service defines the volunteering operations exposed over HTTP.
type Service interface {
	CreateEvent(ctx context.Context, actorID int64, cmd service.CreateEventCommand) (*models.Event, error)
	ShareEvent(ctx context.Context, actorID, eventID int64) (*models.Event, error)
	FinishEvent(ctx context.Context, actorID, eventID int64) (*models.Event, error)
	Register(ctx context.Context, volunteerID, eventID int64) (*service.RegistrationResult, error)
	Unregister(ctx context.Context, volunteerID, eventID int64) (*service.RegistrationResult, error)
	ToggleRole(ctx context.Context, volunteerID int64) (*models.Volunteer, error)
	ToggleDataspace(ctx context.Context, volunteerID int64) (*service.DataspaceToggle, error)
	Profile(ctx context.Context, volunteerID int64) (*service.Profile, error)
	Dashboard(ctx context.Context, volunteerID int64) (*visibility.Dashboard, error)
	Browse(ctx context.Context, volunteerID int64) ([]visibility.AnnotatedEvent, error)
	Skills(ctx context.Context) ([]*models.Skill, error)
}

// Handler serves the volunteer dashboard and event actions. Every route
// expects an authenticated volunteer in the request context.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the volunteering endpoints. Routes scoped to a volunteer
// only accept the authenticated volunteer's own id.
func (h *Handler) Register(r chi.Router) {
	r.Post("/api/events", h.HandleCreateEvent)
	r.Post("/api/events/{eid}/share", h.HandleShareEvent)
	r.Get("/api/skills", h.HandleListSkills)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireSelf("vid", h.logger))
		r.Get("/api/volunteers/{vid}/dashboard", h.HandleDashboard)
		r.Get("/api/volunteers/{vid}/events", h.HandleBrowse)
		r.Get("/api/volunteers/{vid}/profile", h.HandleProfile)
		r.Post("/api/volunteers/{vid}/events/{eid}/finish", h.HandleFinishEvent)
		r.Post("/api/volunteers/{vid}/events/{eid}/register", h.HandleRegister)
		r.Post("/api/volunteers/{vid}/events/{eid}/unregister", h.HandleUnregister)
		r.Post("/api/volunteers/{vid}/toggle-role", h.HandleToggleRole)
		r.Post("/api/volunteers/{vid}/toggle-dataspace", h.HandleToggleDataspace)
	})
}

// HandleCreateEvent handles POST /api/events.
func (h *Handler) HandleCreateEvent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	actor := requestcontext.VolunteerID(ctx)

	req, ok := httputil.DecodeAndPrepare[CreateEventRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	event, err := h.service.CreateEvent(ctx, actor, req.ToCommand())
	if err != nil {
		h.fail(ctx, w, "failed to create event", err, "volunteer_id", actor)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, event)
}

// HandleShareEvent handles POST /api/events/{eid}/share.
func (h *Handler) HandleShareEvent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor := requestcontext.VolunteerID(ctx)
	eventID, err := httputil.PathID(r, "eid")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	event, err := h.service.ShareEvent(ctx, actor, eventID)
	if err != nil {
		h.fail(ctx, w, "failed to share event", err, "volunteer_id", actor, "event_id", eventID)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, event)
}

// HandleFinishEvent handles POST /api/volunteers/{vid}/events/{eid}/finish.
func (h *Handler) HandleFinishEvent(w http.ResponseWriter, r *http.Request) {
	h.eventAction(w, r, "failed to finish event", func(ctx context.Context, vid, eid int64) (any, error) {
		return h.service.FinishEvent(ctx, vid, eid)
	})
}

// HandleRegister handles POST /api/volunteers/{vid}/events/{eid}/register.
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	h.eventAction(w, r, "registration failed", func(ctx context.Context, vid, eid int64) (any, error) {
		return h.service.Register(ctx, vid, eid)
	})
}

// HandleUnregister handles POST /api/volunteers/{vid}/events/{eid}/unregister.
func (h *Handler) HandleUnregister(w http.ResponseWriter, r *http.Request) {
	h.eventAction(w, r, "unregistration failed", func(ctx context.Context, vid, eid int64) (any, error) {
		return h.service.Unregister(ctx, vid, eid)
	})
}

// HandleToggleRole handles POST /api/volunteers/{vid}/toggle-role.
func (h *Handler) HandleToggleRole(w http.ResponseWriter, r *http.Request) {
	h.volunteerAction(w, r, "failed to toggle role", func(ctx context.Context, vid int64) (any, error) {
		return h.service.ToggleRole(ctx, vid)
	})
}

// HandleToggleDataspace handles POST /api/volunteers/{vid}/toggle-dataspace.
func (h *Handler) HandleToggleDataspace(w http.ResponseWriter, r *http.Request) {
	h.volunteerAction(w, r, "failed to toggle dataspace membership", func(ctx context.Context, vid int64) (any, error) {
		return h.service.ToggleDataspace(ctx, vid)
	})
}

// HandleProfile handles GET /api/volunteers/{vid}/profile.
func (h *Handler) HandleProfile(w http.ResponseWriter, r *http.Request) {
	h.volunteerAction(w, r, "failed to build profile", func(ctx context.Context, vid int64) (any, error) {
		return h.service.Profile(ctx, vid)
	})
}

// HandleDashboard handles GET /api/volunteers/{vid}/dashboard.
func (h *Handler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	h.volunteerAction(w, r, "failed to build dashboard", func(ctx context.Context, vid int64) (any, error) {
		return h.service.Dashboard(ctx, vid)
	})
}

// HandleBrowse handles GET /api/volunteers/{vid}/events.
func (h *Handler) HandleBrowse(w http.ResponseWriter, r *http.Request) {
	h.volunteerAction(w, r, "failed to list events", func(ctx context.Context, vid int64) (any, error) {
		events, err := h.service.Browse(ctx, vid)
		if err != nil {
			return nil, err
		}
		return &EventsResponse{Count: len(events), Events: events}, nil
	})
}

// HandleListSkills handles GET /api/skills.
func (h *Handler) HandleListSkills(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	skills, err := h.service.Skills(ctx)
	if err != nil {
		h.fail(ctx, w, "failed to list skills", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, &SkillsResponse{Count: len(skills), Skills: skills})
}

func (h *Handler) volunteerAction(w http.ResponseWriter, r *http.Request, failure string, fn func(ctx context.Context, vid int64) (any, error)) {
	ctx := r.Context()
	vid, err := httputil.PathID(r, "vid")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	result, err := fn(ctx, vid)
	if err != nil {
		h.fail(ctx, w, failure, err, "volunteer_id", vid)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) eventAction(w http.ResponseWriter, r *http.Request, failure string, fn func(ctx context.Context, vid, eid int64) (any, error)) {
	ctx := r.Context()
	vid, err := httputil.PathID(r, "vid")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	eid, err := httputil.PathID(r, "eid")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	result, err := fn(ctx, vid, eid)
	if err != nil {
		h.fail(ctx, w, failure, err, "volunteer_id", vid, "event_id", eid)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) fail(ctx context.Context, w http.ResponseWriter, msg string, err error, attrs ...any) {
	attrs = append([]any{"request_id", requestcontext.RequestID(ctx)}, attrs...)
	attrs = append(attrs, "error", err)
	h.logger.WarnContext(ctx, msg, attrs...)
	httputil.WriteError(w, err)
}
