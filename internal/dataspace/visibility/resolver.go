// Package visibility resolves which events a volunteer can see: the home
// organization's own events plus, for dataspace members, the events other
// member organizations share. Every candidate is annotated with registration
// and skill-gap information.
package visibility

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strconv"

	"golang.org/x/sync/errgroup"

	"vms/internal/volunteering/models"
	dErrors "vms/pkg/domain-errors"
	"vms/pkg/platform/sentinel"
)

// SkillState is whether a volunteer holds a required skill.
type SkillState string

const (
	SkillHas     SkillState = "has"
	SkillMissing SkillState = "missing"
)

// Store is the read side of the volunteering store the resolver needs.
type Store interface {
	FindVolunteerByID(ctx context.Context, id int64) (*models.Volunteer, error)
	ListOrganizations(ctx context.Context) ([]*models.Organization, error)
	ListEventsByOrganization(ctx context.Context, orgID int64) ([]*models.Event, error)
	ListSharedEvents(ctx context.Context) ([]*models.Event, error)
	ListRegisteredEventIDs(ctx context.Context, volunteerID int64) ([]int64, error)
}

// AnnotatedEvent is a candidate event seen from one volunteer.
type AnnotatedEvent struct {
	*models.Event
	OrganizationName string                `json:"organization_name"`
	IsRegistered     bool                  `json:"is_registered"`
	SkillStatus      map[string]SkillState `json:"skill_status"`
	MissingSkills    []string              `json:"missing_skills"`
	CanRegister      bool                  `json:"can_register"`
	IsFederated      bool                  `json:"is_federated"`
}

// View is the resolved candidate set of a volunteer.
type View struct {
	Volunteer    *models.Volunteer
	Organization *models.Organization
	Events       []AnnotatedEvent
}

// Resolver computes visible events. It never writes.
type Resolver struct {
	store  Store
	logger *slog.Logger
}

// Option configures the Resolver.
type Option func(*Resolver)

func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) {
		r.logger = logger
	}
}

func New(store Store, opts ...Option) *Resolver {
	r := &Resolver{
		store:  store,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the annotated candidate events of a volunteer ordered by id.
func (r *Resolver) Resolve(ctx context.Context, volunteerID int64) (*View, error) {
	volunteer, err := r.store.FindVolunteerByID(ctx, volunteerID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "volunteer not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load volunteer")
	}

	var (
		orgs       []*models.Organization
		home       []*models.Event
		shared     []*models.Event
		registered []int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		orgs, err = r.store.ListOrganizations(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		registered, err = r.store.ListRegisteredEventIDs(gctx, volunteer.ID)
		return err
	})
	if volunteer.HasOrganization() {
		g.Go(func() error {
			var err error
			home, err = r.store.ListEventsByOrganization(gctx, volunteer.OrganizationID)
			return err
		})
		g.Go(func() error {
			var err error
			shared, err = r.store.ListSharedEvents(gctx)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load candidate events")
	}

	byID := make(map[int64]*models.Organization, len(orgs))
	for _, o := range orgs {
		byID[o.ID] = o
	}
	view := &View{Volunteer: volunteer, Organization: byID[volunteer.OrganizationID]}

	candidates := Candidates(view.Organization, home, shared, byID)
	isRegistered := make(map[int64]bool, len(registered))
	for _, id := range registered {
		isRegistered[id] = true
	}
	view.Events = make([]AnnotatedEvent, 0, len(candidates))
	for _, e := range candidates {
		annotated := Annotate(e, volunteer, isRegistered[e.ID])
		if owner := byID[e.OrganizationID]; owner != nil {
			annotated.OrganizationName = owner.Name
		}
		view.Events = append(view.Events, annotated)
	}
	return view, nil
}

// Candidates combines the home organization's events with the shared events
// of other dataspace members. Shared events are only added when home is itself
// a member. The result is ordered by event id.
func Candidates(home *models.Organization, homeEvents, sharedEvents []*models.Event, orgs map[int64]*models.Organization) []*models.Event {
	if home == nil {
		return []*models.Event{}
	}
	seen := make(map[int64]struct{}, len(homeEvents))
	out := make([]*models.Event, 0, len(homeEvents)+len(sharedEvents))
	for _, e := range homeEvents {
		seen[e.ID] = struct{}{}
		out = append(out, e)
	}
	if home.MemberOfDataspace {
		for _, e := range sharedEvents {
			if !e.IsShared || e.OrganizationID == home.ID {
				continue
			}
			owner := orgs[e.OrganizationID]
			if owner == nil || !owner.MemberOfDataspace {
				continue
			}
			if _, dup := seen[e.ID]; dup {
				continue
			}
			seen[e.ID] = struct{}{}
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Annotate computes registration, skill status and eligibility of one event
// for one volunteer. Eligibility is true exactly when no skill is missing.
func Annotate(event *models.Event, volunteer *models.Volunteer, registered bool) AnnotatedEvent {
	held := make(map[string]struct{}, len(volunteer.Skills))
	for _, sk := range volunteer.Skills {
		held[skillKey(sk)] = struct{}{}
	}

	a := AnnotatedEvent{
		Event:         event,
		IsRegistered:  registered,
		SkillStatus:   make(map[string]SkillState, len(event.Skills)),
		MissingSkills: make([]string, 0),
		IsFederated:   volunteer.HasOrganization() && event.OrganizationID != volunteer.OrganizationID,
	}
	for _, sk := range event.Skills {
		if _, ok := held[skillKey(sk)]; ok {
			a.SkillStatus[sk.Name] = SkillHas
			continue
		}
		a.SkillStatus[sk.Name] = SkillMissing
		a.MissingSkills = append(a.MissingSkills, sk.Name)
	}
	a.CanRegister = len(a.MissingSkills) == 0
	return a
}

// skillKey identifies a skill by id once persisted, by label before that.
func skillKey(sk models.Skill) string {
	if sk.ID != 0 {
		return "id:" + strconv.FormatInt(sk.ID, 10)
	}
	return "label:" + sk.Name
}
