// Package service implements the volunteer-facing operations: event
// management, registration, role and dataspace toggles, and the read models
// behind the dashboard.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"vms/internal/activitylog"
	"vms/internal/dataspace/documents"
	"vms/internal/dataspace/mapping"
	"vms/internal/dataspace/visibility"
	"vms/internal/volunteering/models"
	dErrors "vms/pkg/domain-errors"
	"vms/pkg/platform/sentinel"
	"vms/pkg/requestcontext"
)

// Store is the part of the volunteering store the service reads and writes.
type Store interface {
	FindVolunteerByID(ctx context.Context, id int64) (*models.Volunteer, error)
	UpdateVolunteer(ctx context.Context, v *models.Volunteer) error
	FindOrganizationByID(ctx context.Context, id int64) (*models.Organization, error)
	UpdateOrganization(ctx context.Context, org *models.Organization) error
	FindEventByID(ctx context.Context, id int64) (*models.Event, error)
	UpdateEvent(ctx context.Context, e *models.Event) error
	FindOrCreateSkill(ctx context.Context, name, escoURI string) (*models.Skill, error)
	ListSkills(ctx context.Context) ([]*models.Skill, error)
	ListCertificatesByVolunteer(ctx context.Context, volunteerID int64) ([]*models.Certificate, error)
	AddRegistration(ctx context.Context, volunteerID, eventID int64) error
	RemoveRegistration(ctx context.Context, volunteerID, eventID int64) error
	ListRegisteredEventIDs(ctx context.Context, volunteerID int64) ([]int64, error)
	ListEventsByIDs(ctx context.Context, ids []int64) ([]*models.Event, error)
}

// Federation runs the dataspace scenarios attached to volunteering actions.
type Federation interface {
	CreateEvent(ctx context.Context, actor *models.Volunteer, org *models.Organization, event *models.Event) error
	ShareEvent(ctx context.Context, org *models.Organization, event *models.Event) error
	Join(ctx context.Context, volunteer *models.Volunteer, event *models.Event) (bool, error)
	Cancel(ctx context.Context, volunteer *models.Volunteer, event *models.Event) (bool, error)
}

// Visibility resolves the events a volunteer can see.
type Visibility interface {
	Dashboard(ctx context.Context, volunteerID int64) (*visibility.Dashboard, error)
	Browse(ctx context.Context, volunteerID int64) ([]visibility.AnnotatedEvent, error)
}

// ImageSelector picks a stock image for a new event.
type ImageSelector interface {
	For(eventID int64) string
}

// Service implements the volunteering operations.
type Service struct {
	store      Store
	federation Federation
	visibility Visibility
	sink       activitylog.Appender
	images     ImageSelector
	logger     *slog.Logger
}

// Option configures the Service.
type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithImages assigns stock images to events created without one.
func WithImages(images ImageSelector) Option {
	return func(s *Service) {
		s.images = images
	}
}

func New(store Store, federation Federation, visibility Visibility, sink activitylog.Appender, opts ...Option) *Service {
	s := &Service{
		store:      store,
		federation: federation,
		visibility: visibility,
		sink:       sink,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateEventCommand carries the fields a manager submits.
type CreateEventCommand struct {
	Name            string
	Description     string
	Location        string
	DurationHours   int
	Skills          string
	Shared          bool
	PrioritizeLocal bool
}

// SkillLabels splits the comma separated skill list, dropping blanks and repeats.
func (c CreateEventCommand) SkillLabels() []string {
	seen := make(map[string]bool)
	out := make([]string, 0)
	for _, part := range strings.Split(c.Skills, ",") {
		label := strings.TrimSpace(part)
		if label == "" || seen[label] {
			continue
		}
		seen[label] = true
		out = append(out, label)
	}
	return out
}

// CreateEvent creates an event for the manager's organization and runs the
// publication scenario.
func (s *Service) CreateEvent(ctx context.Context, actorID int64, cmd CreateEventCommand) (*models.Event, error) {
	actor, org, err := s.manager(ctx, actorID)
	if err != nil {
		return nil, err
	}

	duration := cmd.DurationHours
	if duration == 0 {
		duration = 1
	}
	event := &models.Event{
		Name:            strings.TrimSpace(cmd.Name),
		Description:     cmd.Description,
		Location:        cmd.Location,
		DurationHours:   duration,
		OrganizationID:  org.ID,
		IsShared:        cmd.Shared,
		PrioritizeLocal: cmd.PrioritizeLocal,
	}
	if err := event.Validate(); err != nil {
		return nil, err
	}
	for _, label := range cmd.SkillLabels() {
		skill, err := s.store.FindOrCreateSkill(ctx, label, mapping.SkillReference(label))
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to resolve skill")
		}
		event.Skills = append(event.Skills, *skill)
	}

	if err := s.federation.CreateEvent(ctx, actor, org, event); err != nil {
		return nil, err
	}
	if s.images != nil && event.ImageURL == "" {
		if url := s.images.For(event.ID); url != "" {
			event.ImageURL = url
			if err := s.store.UpdateEvent(ctx, event); err != nil {
				s.logger.WarnContext(ctx, "failed to attach event image",
					"request_id", requestcontext.RequestID(ctx),
					"event_id", event.ID,
					"error", err,
				)
			}
		}
	}
	s.logger.InfoContext(ctx, "event created",
		"request_id", requestcontext.RequestID(ctx),
		"volunteer_id", actor.ID,
		"event_id", event.ID,
		"shared", event.IsShared,
	)
	return event, nil
}

// ShareEvent publishes an existing event of the manager's organization.
func (s *Service) ShareEvent(ctx context.Context, actorID, eventID int64) (*models.Event, error) {
	_, org, err := s.manager(ctx, actorID)
	if err != nil {
		return nil, err
	}
	event, err := s.event(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if err := s.federation.ShareEvent(ctx, org, event); err != nil {
		return nil, err
	}
	return event, nil
}

// FinishEvent marks an event of the manager's organization as finished.
func (s *Service) FinishEvent(ctx context.Context, actorID, eventID int64) (*models.Event, error) {
	actor, org, err := s.manager(ctx, actorID)
	if err != nil {
		return nil, err
	}
	event, err := s.event(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event.OrganizationID != org.ID {
		return nil, dErrors.New(dErrors.CodeNotFound, "event not found")
	}
	event.IsFinished = true
	if err := s.store.UpdateEvent(ctx, event); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to finish event")
	}
	if _, err := s.sink.Append(ctx, "EventFinished",
		activitylog.Message(fmt.Sprintf("Event '%s' marked as finished by %s", event.Name, actor.Name)),
		activitylog.LevelInfo,
	); err != nil {
		return nil, err
	}
	return event, nil
}

// RegistrationResult reports a registration change and whether it crossed
// organizations inside the dataspace.
type RegistrationResult struct {
	VolunteerID int64 `json:"volunteer_id"`
	EventID     int64 `json:"event_id"`
	Registered  bool  `json:"registered"`
	Federated   bool  `json:"federated"`
}

// Register signs the volunteer up for an event. Missing skills do not block it.
func (s *Service) Register(ctx context.Context, volunteerID, eventID int64) (*RegistrationResult, error) {
	volunteer, err := s.volunteer(ctx, volunteerID)
	if err != nil {
		return nil, err
	}
	event, err := s.event(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if err := s.store.AddRegistration(ctx, volunteer.ID, event.ID); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "already registered for this event")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to register")
	}
	federated, err := s.federation.Join(ctx, volunteer, event)
	if err != nil {
		return nil, err
	}
	return &RegistrationResult{VolunteerID: volunteer.ID, EventID: event.ID, Registered: true, Federated: federated}, nil
}

// Unregister withdraws the volunteer from an event.
func (s *Service) Unregister(ctx context.Context, volunteerID, eventID int64) (*RegistrationResult, error) {
	volunteer, err := s.volunteer(ctx, volunteerID)
	if err != nil {
		return nil, err
	}
	event, err := s.event(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if err := s.store.RemoveRegistration(ctx, volunteer.ID, event.ID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "not registered for this event")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to unregister")
	}
	federated, err := s.federation.Cancel(ctx, volunteer, event)
	if err != nil {
		return nil, err
	}
	return &RegistrationResult{VolunteerID: volunteer.ID, EventID: event.ID, Registered: false, Federated: federated}, nil
}

// ToggleRole flips the volunteer's manager flag.
func (s *Service) ToggleRole(ctx context.Context, volunteerID int64) (*models.Volunteer, error) {
	volunteer, err := s.volunteer(ctx, volunteerID)
	if err != nil {
		return nil, err
	}
	volunteer.IsManager = !volunteer.IsManager
	if err := s.store.UpdateVolunteer(ctx, volunteer); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update volunteer")
	}
	return volunteer, nil
}

// Dataspace toggle outcomes.
const (
	DataspaceLeft               = "left"
	DataspaceOnboardingRequired = "onboarding_required"
)

// DataspaceToggle is the outcome of toggling the organization's membership.
type DataspaceToggle struct {
	Status       string               `json:"status"`
	Organization *models.Organization `json:"organization"`
}

// ToggleDataspace makes a member organization leave the dataspace. Joining
// goes through onboarding, so for non-members it only reports that.
func (s *Service) ToggleDataspace(ctx context.Context, volunteerID int64) (*DataspaceToggle, error) {
	volunteer, err := s.volunteer(ctx, volunteerID)
	if err != nil {
		return nil, err
	}
	if !volunteer.HasOrganization() {
		return nil, dErrors.New(dErrors.CodeValidation, "volunteer has no organization")
	}
	org, err := s.organization(ctx, volunteer.OrganizationID)
	if err != nil {
		return nil, err
	}
	if !org.MemberOfDataspace {
		return &DataspaceToggle{Status: DataspaceOnboardingRequired, Organization: org}, nil
	}

	org.LeaveDataspace()
	if err := s.store.UpdateOrganization(ctx, org); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update organization")
	}
	if _, err := s.sink.Append(ctx, "DataSpaceLeft",
		activitylog.Message(fmt.Sprintf("%s left the Data Space", org.Name)),
		activitylog.LevelInfo,
	); err != nil {
		return nil, err
	}
	return &DataspaceToggle{Status: DataspaceLeft, Organization: org}, nil
}

// Profile is the volunteer's own record with its portable document and the
// certificates issued to it.
type Profile struct {
	Volunteer    *models.Volunteer           `json:"profile"`
	TotalHours   int                         `json:"total_hours"`
	Document     documents.VolunteerDocument `json:"jsonld"`
	Certificates []*models.Certificate       `json:"certificates"`
}

// Profile returns the volunteer document. Total hours count every registered event.
func (s *Service) Profile(ctx context.Context, volunteerID int64) (*Profile, error) {
	volunteer, err := s.volunteer(ctx, volunteerID)
	if err != nil {
		return nil, err
	}
	ids, err := s.store.ListRegisteredEventIDs(ctx, volunteer.ID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load registrations")
	}
	events, err := s.store.ListEventsByIDs(ctx, ids)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load registered events")
	}
	certs, err := s.store.ListCertificatesByVolunteer(ctx, volunteer.ID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load certificates")
	}
	doc := documents.Volunteer(volunteer, events)
	return &Profile{
		Volunteer:    volunteer,
		TotalHours:   doc.TotalHours.Value,
		Document:     doc,
		Certificates: certs,
	}, nil
}

// Skills lists the skill vocabulary, ordered by label.
func (s *Service) Skills(ctx context.Context) ([]*models.Skill, error) {
	skills, err := s.store.ListSkills(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list skills")
	}
	return skills, nil
}

// Dashboard returns the partitioned candidate events and milestone progress.
func (s *Service) Dashboard(ctx context.Context, volunteerID int64) (*visibility.Dashboard, error) {
	return s.visibility.Dashboard(ctx, volunteerID)
}

// Browse lists the open events the volunteer can see.
func (s *Service) Browse(ctx context.Context, volunteerID int64) ([]visibility.AnnotatedEvent, error) {
	return s.visibility.Browse(ctx, volunteerID)
}

func (s *Service) manager(ctx context.Context, actorID int64) (*models.Volunteer, *models.Organization, error) {
	actor, err := s.volunteer(ctx, actorID)
	if err != nil {
		return nil, nil, err
	}
	if !actor.IsManager {
		return nil, nil, dErrors.New(dErrors.CodeForbidden, "only managers can manage events")
	}
	if !actor.HasOrganization() {
		return nil, nil, dErrors.New(dErrors.CodeValidation, "manager has no organization")
	}
	org, err := s.organization(ctx, actor.OrganizationID)
	if err != nil {
		return nil, nil, err
	}
	return actor, org, nil
}

func (s *Service) volunteer(ctx context.Context, id int64) (*models.Volunteer, error) {
	v, err := s.store.FindVolunteerByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "volunteer not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load volunteer")
	}
	return v, nil
}

func (s *Service) organization(ctx context.Context, id int64) (*models.Organization, error) {
	org, err := s.store.FindOrganizationByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "organization not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load organization")
	}
	return org, nil
}

func (s *Service) event(ctx context.Context, id int64) (*models.Event, error) {
	e, err := s.store.FindEventByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "event not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load event")
	}
	return e, nil
}
