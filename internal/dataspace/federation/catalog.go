package federation

import (
	"context"
	"errors"

	"vms/internal/dataspace/documents"
	"vms/internal/volunteering/models"
	dErrors "vms/pkg/domain-errors"
	"vms/pkg/platform/sentinel"
)

// Catalog is what an organization's connector exposes.
type Catalog struct {
	Organization documents.OrganizationDocument `json:"org"`
	Endpoints    *Endpoints                     `json:"endpoints"`
}

// CatalogEvent is the event document served at an event endpoint, extended
// with its skill labels and the publishing organization.
type CatalogEvent struct {
	documents.EventDocument
	SkillsNeeded []string                       `json:"skills_needed"`
	Organization documents.OrganizationDocument `json:"organization"`
}

// Organizations lists every known organization.
func (e *Engine) Organizations(ctx context.Context) ([]*models.Organization, error) {
	orgs, err := e.store.ListOrganizations(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list organizations")
	}
	return orgs, nil
}

// Catalog returns the organization document and the catalog URLs of all its events.
func (e *Engine) Catalog(ctx context.Context, orgID int64) (*Catalog, error) {
	org, err := e.findOrganization(ctx, orgID)
	if err != nil {
		return nil, err
	}
	endpoints, err := e.endpoints(ctx, org)
	if err != nil {
		return nil, err
	}
	return &Catalog{
		Organization: documents.Organization(org),
		Endpoints:    endpoints,
	}, nil
}

// CatalogEvent returns one event of an organization. An event owned by another
// organization is reported as not found.
func (e *Engine) CatalogEvent(ctx context.Context, orgID, eventID int64) (*CatalogEvent, error) {
	org, err := e.findOrganization(ctx, orgID)
	if err != nil {
		return nil, err
	}
	event, err := e.store.FindEventByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "event not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load event")
	}
	if event.OrganizationID != org.ID {
		return nil, dErrors.New(dErrors.CodeNotFound, "event not found")
	}
	skills := event.SkillNames()
	if skills == nil {
		skills = []string{}
	}
	return &CatalogEvent{
		EventDocument: documents.Event(org, event),
		SkillsNeeded:  skills,
		Organization:  documents.Organization(org),
	}, nil
}
