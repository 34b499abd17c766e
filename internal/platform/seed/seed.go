// Package seed loads demo organizations, volunteers and events from a YAML file.
package seed

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"vms/internal/dataspace/mapping"
	"vms/internal/volunteering/models"
	"vms/pkg/platform/sentinel"
)

// File is the YAML document layout.
type File struct {
	Organizations []Organization `yaml:"organizations"`
	Skills        []Skill        `yaml:"skills"`
	Volunteers    []Volunteer    `yaml:"volunteers"`
	Events        []Event        `yaml:"events"`
	Registrations []Registration `yaml:"registrations"`
}

type Organization struct {
	Name                  string `yaml:"name"`
	URL                   string `yaml:"url"`
	Description           string `yaml:"description"`
	ContactEmail          string `yaml:"contact_email"`
	ConnectorEndpoint     string `yaml:"connector_endpoint"`
	PrivacyPolicyURL      string `yaml:"privacy_policy_url"`
	MemberOfDataspace     bool   `yaml:"member_of_dataspace"`
	CertificateThumbprint string `yaml:"certificate_thumbprint"`
	GovernanceAuthority   bool   `yaml:"governance_authority"`
}

type Skill struct {
	Name    string `yaml:"name"`
	EscoURI string `yaml:"esco_uri"`
}

type Volunteer struct {
	Name         string   `yaml:"name"`
	Password     string   `yaml:"password"`
	Location     string   `yaml:"location"`
	Organization string   `yaml:"organization"`
	Manager      bool     `yaml:"manager"`
	Skills       []string `yaml:"skills"`
}

type Event struct {
	Name            string   `yaml:"name"`
	Description     string   `yaml:"description"`
	Location        string   `yaml:"location"`
	DurationHours   int      `yaml:"duration_hours"`
	Organization    string   `yaml:"organization"`
	Skills          []string `yaml:"skills"`
	Finished        bool     `yaml:"finished"`
	Shared          bool     `yaml:"shared"`
	PrioritizeLocal bool     `yaml:"prioritize_local"`
}

type Registration struct {
	Volunteer string `yaml:"volunteer"`
	Event     string `yaml:"event"`
}

// Store is the write side of the volunteering store the loader needs.
type Store interface {
	CreateOrganization(ctx context.Context, org *models.Organization) error
	FindOrganizationByName(ctx context.Context, name string) (*models.Organization, error)
	FindOrCreateSkill(ctx context.Context, name, escoURI string) (*models.Skill, error)
	CreateVolunteer(ctx context.Context, v *models.Volunteer) error
	FindVolunteerByName(ctx context.Context, name string) (*models.Volunteer, error)
	CreateEvent(ctx context.Context, e *models.Event) error
	AddRegistration(ctx context.Context, volunteerID, eventID int64) error
}

// PasswordHasher turns a plain seed password into the stored hash.
type PasswordHasher func(password string) (string, error)

// Summary counts what a load created.
type Summary struct {
	Organizations int
	Volunteers    int
	Events        int
	Registrations int
}

// Read parses a seed file from disk.
func Read(path string) (*File, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	return Parse(raw)
}

// Parse decodes a seed document. Unknown keys are rejected.
func Parse(raw []byte) (*File, error) {
	var f File
	dec := yaml.NewDecoder(strings.NewReader(string(raw)))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("decode seed file: %w", err)
	}
	return &f, nil
}

// Load writes f into store. Organizations and volunteers that already exist
// by name are reused, so loading the same file twice does not duplicate them.
func Load(ctx context.Context, store Store, hash PasswordHasher, f *File) (*Summary, error) {
	sum := &Summary{}
	orgs := make(map[string]*models.Organization, len(f.Organizations))
	for _, o := range f.Organizations {
		org, created, err := ensureOrganization(ctx, store, o)
		if err != nil {
			return nil, err
		}
		if created {
			sum.Organizations++
		}
		orgs[o.Name] = org
	}

	for _, sk := range f.Skills {
		if _, err := skill(ctx, store, sk.Name, sk.EscoURI); err != nil {
			return nil, err
		}
	}

	volunteers := make(map[string]*models.Volunteer, len(f.Volunteers))
	for _, v := range f.Volunteers {
		existing, err := store.FindVolunteerByName(ctx, v.Name)
		if err == nil {
			volunteers[v.Name] = existing
			continue
		}
		if !errors.Is(err, sentinel.ErrNotFound) {
			return nil, fmt.Errorf("find volunteer %s: %w", v.Name, err)
		}
		vol := &models.Volunteer{Name: v.Name, Location: v.Location, IsManager: v.Manager}
		if v.Organization != "" {
			org, ok := orgs[v.Organization]
			if !ok {
				return nil, fmt.Errorf("volunteer %s: unknown organization %q", v.Name, v.Organization)
			}
			vol.OrganizationID = org.ID
		}
		if v.Password != "" {
			h, err := hash(v.Password)
			if err != nil {
				return nil, fmt.Errorf("hash password of %s: %w", v.Name, err)
			}
			vol.PasswordHash = h
		}
		if vol.Skills, err = skills(ctx, store, v.Skills); err != nil {
			return nil, err
		}
		if err := store.CreateVolunteer(ctx, vol); err != nil {
			return nil, fmt.Errorf("create volunteer %s: %w", v.Name, err)
		}
		volunteers[v.Name] = vol
		sum.Volunteers++
	}

	events := make(map[string]*models.Event, len(f.Events))
	for _, e := range f.Events {
		org, ok := orgs[e.Organization]
		if !ok {
			return nil, fmt.Errorf("event %s: unknown organization %q", e.Name, e.Organization)
		}
		ev := &models.Event{
			Name:            e.Name,
			Description:     e.Description,
			Location:        e.Location,
			DurationHours:   e.DurationHours,
			OrganizationID:  org.ID,
			IsFinished:      e.Finished,
			IsShared:        e.Shared,
			PrioritizeLocal: e.PrioritizeLocal,
		}
		var err error
		if ev.Skills, err = skills(ctx, store, e.Skills); err != nil {
			return nil, err
		}
		if err := ev.Validate(); err != nil {
			return nil, fmt.Errorf("event %s: %w", e.Name, err)
		}
		if err := store.CreateEvent(ctx, ev); err != nil {
			return nil, fmt.Errorf("create event %s: %w", e.Name, err)
		}
		events[e.Name] = ev
		sum.Events++
	}

	for _, r := range f.Registrations {
		v, ok := volunteers[r.Volunteer]
		if !ok {
			return nil, fmt.Errorf("registration: unknown volunteer %q", r.Volunteer)
		}
		e, ok := events[r.Event]
		if !ok {
			return nil, fmt.Errorf("registration: unknown event %q", r.Event)
		}
		if err := store.AddRegistration(ctx, v.ID, e.ID); err != nil && !errors.Is(err, sentinel.ErrConflict) {
			return nil, fmt.Errorf("register %s for %s: %w", r.Volunteer, r.Event, err)
		}
		sum.Registrations++
	}
	return sum, nil
}

func ensureOrganization(ctx context.Context, store Store, o Organization) (*models.Organization, bool, error) {
	existing, err := store.FindOrganizationByName(ctx, o.Name)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, sentinel.ErrNotFound) {
		return nil, false, fmt.Errorf("find organization %s: %w", o.Name, err)
	}
	org := &models.Organization{
		Name:                  o.Name,
		URL:                   o.URL,
		Description:           o.Description,
		ContactEmail:          o.ContactEmail,
		ConnectorEndpoint:     o.ConnectorEndpoint,
		PrivacyPolicyURL:      o.PrivacyPolicyURL,
		MemberOfDataspace:     o.MemberOfDataspace,
		CertificateThumbprint: o.CertificateThumbprint,
		IsGovernanceAuthority: o.GovernanceAuthority,
	}
	if err := store.CreateOrganization(ctx, org); err != nil {
		return nil, false, fmt.Errorf("create organization %s: %w", o.Name, err)
	}
	return org, true, nil
}

func skills(ctx context.Context, store Store, names []string) ([]models.Skill, error) {
	out := make([]models.Skill, 0, len(names))
	for _, name := range names {
		sk, err := skill(ctx, store, name, "")
		if err != nil {
			return nil, err
		}
		out = append(out, *sk)
	}
	return out, nil
}

func skill(ctx context.Context, store Store, name, escoURI string) (*models.Skill, error) {
	if escoURI == "" {
		escoURI = mapping.SkillReference(name)
	}
	sk, err := store.FindOrCreateSkill(ctx, name, escoURI)
	if err != nil {
		return nil, fmt.Errorf("skill %s: %w", name, err)
	}
	return sk, nil
}
