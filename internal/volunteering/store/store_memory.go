package store

import (
	"context"
	"maps"
	"slices"
	"sort"
	"sync"

	"vms/internal/volunteering/models"
	"vms/pkg/platform/sentinel"
)

// InMemoryStore keeps the whole volunteering graph in process memory. It backs
// development runs and service tests.
type InMemoryStore struct {
	mu sync.RWMutex

	nextID        int64
	orgs          map[int64]*models.Organization
	skills        map[int64]*models.Skill
	volunteers    map[int64]*models.Volunteer
	events        map[int64]*models.Event
	registrations map[int64]map[int64]struct{}
	certificates  map[int64]*models.Certificate
}

// NewInMemory returns an empty store.
func NewInMemory() *InMemoryStore {
	return &InMemoryStore{
		orgs:          make(map[int64]*models.Organization),
		skills:        make(map[int64]*models.Skill),
		volunteers:    make(map[int64]*models.Volunteer),
		events:        make(map[int64]*models.Event),
		registrations: make(map[int64]map[int64]struct{}),
		certificates:  make(map[int64]*models.Certificate),
	}
}

func (s *InMemoryStore) newID() int64 {
	s.nextID++
	return s.nextID
}

// Organizations

func (s *InMemoryStore) CreateOrganization(_ context.Context, org *models.Organization) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.orgs {
		if existing.Name == org.Name {
			return sentinel.ErrConflict
		}
	}
	org.ID = s.newID()
	s.orgs[org.ID] = cloneOrganization(org)
	return nil
}

func (s *InMemoryStore) UpdateOrganization(_ context.Context, org *models.Organization) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.orgs[org.ID]; !ok {
		return sentinel.ErrNotFound
	}
	s.orgs[org.ID] = cloneOrganization(org)
	return nil
}

func (s *InMemoryStore) FindOrganizationByID(_ context.Context, id int64) (*models.Organization, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	org, ok := s.orgs[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return cloneOrganization(org), nil
}

func (s *InMemoryStore) FindOrganizationByName(_ context.Context, name string) (*models.Organization, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, org := range s.orgs {
		if org.Name == name {
			return cloneOrganization(org), nil
		}
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemoryStore) ListOrganizations(_ context.Context) ([]*models.Organization, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Organization, 0, len(s.orgs))
	for _, org := range s.orgs {
		out = append(out, cloneOrganization(org))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Skills

// FindOrCreateSkill matches the label exactly; labels differing only in case
// are distinct skills.
func (s *InMemoryStore) FindOrCreateSkill(_ context.Context, name, escoURI string) (*models.Skill, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sk := range s.skills {
		if sk.Name == name {
			if sk.EscoURI == "" && escoURI != "" {
				sk.EscoURI = escoURI
			}
			c := *sk
			return &c, nil
		}
	}
	sk := &models.Skill{ID: s.newID(), Name: name, EscoURI: escoURI}
	s.skills[sk.ID] = sk
	c := *sk
	return &c, nil
}

func (s *InMemoryStore) ListSkills(_ context.Context) ([]*models.Skill, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Skill, 0, len(s.skills))
	for _, sk := range s.skills {
		c := *sk
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Volunteers

func (s *InMemoryStore) CreateVolunteer(_ context.Context, v *models.Volunteer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.volunteers {
		if existing.Name == v.Name {
			return sentinel.ErrConflict
		}
	}
	v.ID = s.newID()
	s.volunteers[v.ID] = cloneVolunteer(v)
	return nil
}

func (s *InMemoryStore) UpdateVolunteer(_ context.Context, v *models.Volunteer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.volunteers[v.ID]; !ok {
		return sentinel.ErrNotFound
	}
	s.volunteers[v.ID] = cloneVolunteer(v)
	return nil
}

func (s *InMemoryStore) FindVolunteerByID(_ context.Context, id int64) (*models.Volunteer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.volunteers[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return cloneVolunteer(v), nil
}

func (s *InMemoryStore) FindVolunteerByName(_ context.Context, name string) (*models.Volunteer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, v := range s.volunteers {
		if v.Name == name {
			return cloneVolunteer(v), nil
		}
	}
	return nil, sentinel.ErrNotFound
}

// Events

func (s *InMemoryStore) CreateEvent(_ context.Context, e *models.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.orgs[e.OrganizationID]; !ok {
		return sentinel.ErrNotFound
	}
	e.ID = s.newID()
	s.events[e.ID] = cloneEvent(e)
	return nil
}

func (s *InMemoryStore) UpdateEvent(_ context.Context, e *models.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.events[e.ID]; !ok {
		return sentinel.ErrNotFound
	}
	s.events[e.ID] = cloneEvent(e)
	return nil
}

func (s *InMemoryStore) FindEventByID(_ context.Context, id int64) (*models.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.events[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return cloneEvent(e), nil
}

func (s *InMemoryStore) ListEventsByOrganization(_ context.Context, orgID int64) ([]*models.Event, error) {
	return s.listEvents(func(e *models.Event) bool { return e.OrganizationID == orgID }), nil
}

func (s *InMemoryStore) ListSharedEvents(_ context.Context) ([]*models.Event, error) {
	return s.listEvents(func(e *models.Event) bool { return e.IsShared }), nil
}

func (s *InMemoryStore) ListEventsByIDs(_ context.Context, ids []int64) ([]*models.Event, error) {
	return s.listEvents(func(e *models.Event) bool { return slices.Contains(ids, e.ID) }), nil
}

func (s *InMemoryStore) listEvents(keep func(*models.Event) bool) []*models.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Event, 0)
	for _, e := range s.events {
		if keep(e) {
			out = append(out, cloneEvent(e))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Registrations

func (s *InMemoryStore) AddRegistration(_ context.Context, volunteerID, eventID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	regs, ok := s.registrations[volunteerID]
	if !ok {
		regs = make(map[int64]struct{})
		s.registrations[volunteerID] = regs
	}
	if _, exists := regs[eventID]; exists {
		return sentinel.ErrConflict
	}
	regs[eventID] = struct{}{}
	return nil
}

func (s *InMemoryStore) RemoveRegistration(_ context.Context, volunteerID, eventID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	regs := s.registrations[volunteerID]
	if _, exists := regs[eventID]; !exists {
		return sentinel.ErrNotFound
	}
	delete(regs, eventID)
	return nil
}

func (s *InMemoryStore) ListRegisteredEventIDs(_ context.Context, volunteerID int64) ([]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]int64, 0, len(s.registrations[volunteerID]))
	for id := range s.registrations[volunteerID] {
		out = append(out, id)
	}
	slices.Sort(out)
	return out, nil
}

// Certificates

func (s *InMemoryStore) CreateCertificate(_ context.Context, c *models.Certificate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.ID = s.newID()
	cp := *c
	cp.Items = slices.Clone(c.Items)
	cp.Skills = slices.Clone(c.Skills)
	s.certificates[c.ID] = &cp
	return nil
}

func (s *InMemoryStore) ListCertificatesByVolunteer(_ context.Context, volunteerID int64) ([]*models.Certificate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Certificate, 0)
	for _, c := range s.certificates {
		if c.VolunteerID == volunteerID {
			cp := *c
			cp.Items = slices.Clone(c.Items)
			cp.Skills = slices.Clone(c.Skills)
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func cloneOrganization(o *models.Organization) *models.Organization {
	c := *o
	c.Metadata = maps.Clone(o.Metadata)
	return &c
}

func cloneVolunteer(v *models.Volunteer) *models.Volunteer {
	c := *v
	c.Skills = slices.Clone(v.Skills)
	return &c
}

func cloneEvent(e *models.Event) *models.Event {
	c := *e
	c.Skills = slices.Clone(e.Skills)
	return &c
}
