package federation

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"vms/internal/activitylog"
	"vms/internal/dataspace/documents"
	"vms/internal/dataspace/mapping"
	"vms/internal/volunteering/models"
	dErrors "vms/pkg/domain-errors"
	"vms/pkg/platform/sentinel"
)

// Onboarding statuses.
const (
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// MaxUnmappedSkills is the number of catalog skills without an ESCO reference
// an applicant may declare and still be approved.
const MaxUnmappedSkills = 2

// OnboardingRequest is an organization's application to join the dataspace.
type OnboardingRequest struct {
	Name                  string
	ContactEmail          string
	ConnectorEndpoint     string
	CertificateThumbprint string
	PrivacyPolicyURL      string
	URL                   string
	Description           string
	CatalogSample         []mapping.CatalogItem

	// Raw is the request as submitted; it is logged and kept as organization metadata.
	Raw map[string]any
}

// MissingFields lists the required fields that are empty.
func (r *OnboardingRequest) MissingFields() []string {
	var missing []string
	if strings.TrimSpace(r.Name) == "" {
		missing = append(missing, "name")
	}
	if strings.TrimSpace(r.ContactEmail) == "" {
		missing = append(missing, "contact_email")
	}
	if strings.TrimSpace(r.ConnectorEndpoint) == "" {
		missing = append(missing, "connector_endpoint")
	}
	return missing
}

// ContractTemplate is the usage contract every new member receives.
type ContractTemplate struct {
	ContractID  string              `json:"contract_id"`
	UsageScope  string              `json:"usageScope"`
	Actions     []string            `json:"actions"`
	Target      ContractTarget      `json:"target"`
	Constraints ContractConstraints `json:"constraints"`
	Obligations []string            `json:"obligations"`
}

type ContractTarget struct {
	AssetType string `json:"assetType"`
	Provider  string `json:"provider"`
}

type ContractConstraints struct {
	Purpose   []string `json:"purpose"`
	Retention string   `json:"retention"`
	Audience  string   `json:"audience"`
}

// PolicyContracts are the data usage terms agreed with the trust anchor.
type PolicyContracts struct {
	DataUsage struct {
		AllowedPurposes []string `json:"allowedPurposes"`
	} `json:"dataUsage"`
	RetentionPolicy struct {
		MaxDuration string `json:"maxDuration"`
		Renewable   bool   `json:"renewable"`
	} `json:"retentionPolicy"`
	SharingPolicy struct {
		CanExposeEvents bool     `json:"canExposeEvents"`
		Audience        string   `json:"audience"`
		Obligations     []string `json:"obligations"`
	} `json:"sharingPolicy"`
}

// EventEndpoint is one exposed catalog entry.
type EventEndpoint struct {
	Title    string `json:"title"`
	Endpoint string `json:"endpoint"`
}

// Endpoints are the catalog URLs an organization exposes.
type Endpoints struct {
	Catalog string          `json:"catalog"`
	Events  []EventEndpoint `json:"events"`
}

// OnboardingResult is returned for both approvals and rejections.
type OnboardingResult struct {
	Status                string                   `json:"status"`
	Reason                string                   `json:"reason,omitempty"`
	OrganizationID        int64                    `json:"organization_id,omitempty"`
	VolunteerSchema       []mapping.VolunteerField `json:"volunteer_schema,omitempty"`
	CatalogMapping        *mapping.CatalogMapping  `json:"catalog_mapping,omitempty"`
	Contract              *ContractTemplate        `json:"contract,omitempty"`
	PolicyContracts       *PolicyContracts         `json:"policy_contracts,omitempty"`
	Endpoints             *Endpoints               `json:"endpoints,omitempty"`
	CertificateThumbprint string                   `json:"certificate_thumbprint,omitempty"`
}

// Rejected reports whether the application was turned down.
func (r *OnboardingResult) Rejected() bool {
	return r.Status == StatusRejected
}

// ContractTemplateFor builds the deterministic contract template of an applicant.
func ContractTemplateFor(name string) ContractTemplate {
	return ContractTemplate{
		ContractID: "tmpl-" + documents.Digest(name)[:8],
		UsageScope: "volunteer-activity-sharing",
		Actions:    []string{"view", "aggregate"},
		Target:     ContractTarget{AssetType: "volunteer_events", Provider: name},
		Constraints: ContractConstraints{
			Purpose:   []string{"volunteer_record_verification"},
			Retention: "36 months",
			Audience:  "dataspace-members",
		},
		Obligations: []string{"must_log_access", "must_provide_privacy_policy"},
	}
}

func defaultPolicyContracts() *PolicyContracts {
	p := &PolicyContracts{}
	p.DataUsage.AllowedPurposes = []string{"volunteer_record_verification", "skill_matching"}
	p.RetentionPolicy.MaxDuration = "36 months"
	p.RetentionPolicy.Renewable = true
	p.SharingPolicy.CanExposeEvents = true
	p.SharingPolicy.Audience = "dataspace-members"
	p.SharingPolicy.Obligations = []string{"mustProvidePrivacyPolicy", "mustLogAccess"}
	return p
}

// Thumbprint derives the mock trust certificate thumbprint of an organization.
func Thumbprint(name string) string {
	return strings.ToUpper(documents.Digest(name))[:32]
}

// Onboard validates an application, maps its vocabulary, and either rejects it
// or admits the organization as a dataspace member. Rejections are results,
// not errors; errors mean a store or log failure.
func (e *Engine) Onboard(ctx context.Context, req OnboardingRequest) (result *OnboardingResult, err error) {
	ctx, done := e.startScenario(ctx, "onboarding", attribute.String("organization", req.Name))
	defer func() {
		outcome := ""
		if result != nil {
			outcome = result.Status
		}
		done(outcome, err)
	}()

	n := activitylog.NewNarrative(ctx, e.sink)
	raw := req.Raw
	if raw == nil {
		raw = map[string]any{"name": req.Name}
	}
	n.Info("OnboardingRequestReceived", raw)

	if missing := req.MissingFields(); len(missing) > 0 {
		result = &OnboardingResult{
			Status: StatusRejected,
			Reason: "Missing fields: " + strings.Join(missing, ", "),
		}
		n.Warn("OnboardingRejected", activitylog.Details{"status": result.Status, "reason": result.Reason})
		if n.Err() != nil {
			return nil, n.Err()
		}
		return result, nil
	}
	n.Info("MetadataValidation", activitylog.Message("All required fields present for "+req.Name))

	if req.PrivacyPolicyURL == "" {
		n.Warn("GovernanceCheck", activitylog.Message("Privacy policy missing"))
	} else {
		n.Info("GovernanceCheck", activitylog.Message("Privacy policy present: "+req.PrivacyPolicyURL))
	}

	schema := mapping.VolunteerSchema()
	n.Info("VolunteerSchemaMapping", activitylog.Details{"fields": schema})

	catalog := mapping.MapCatalog(req.CatalogSample)
	n.Doc("ESCO_SkillMapping", catalog)

	contract := ContractTemplateFor(req.Name)
	n.Doc("ContractTemplateGenerated", contract)
	if n.Err() != nil {
		return nil, n.Err()
	}

	if catalog.Unmapped > MaxUnmappedSkills {
		result = &OnboardingResult{
			Status:         StatusRejected,
			Reason:         fmt.Sprintf("Too many unmapped skills: %d (maximum %d)", catalog.Unmapped, MaxUnmappedSkills),
			CatalogMapping: &catalog,
		}
		n.Warn("OnboardingRejected", activitylog.Details{
			"status":   result.Status,
			"reason":   result.Reason,
			"unmapped": catalog.Unmapped,
		})
		if n.Err() != nil {
			return nil, n.Err()
		}
		return result, nil
	}

	thumbprint := req.CertificateThumbprint
	if thumbprint == "" {
		thumbprint = Thumbprint(req.Name)
		n.Info("CertificateIssued", activitylog.Details{"organization": req.Name, "thumbprint": thumbprint})
	}

	policies := defaultPolicyContracts()
	n.Doc("PolicyContractsNegotiated", policies)
	n.Info("EDC.ContractNegotiated", activitylog.Details{
		"between":     []string{req.Name, "TrustAnchor"},
		"contract_id": contract.ContractID,
		"note":        req.Name + " may now share events and limited volunteer info under agreed terms.",
	})
	if n.Err() != nil {
		return nil, n.Err()
	}

	org, err := e.admit(ctx, req, thumbprint, raw)
	if err != nil {
		return nil, err
	}
	n.Info("OnboardingApproved", activitylog.Details{
		"message":         org.Name + " accepted into Data Space",
		"organization_id": org.ID,
	})

	endpoints, err := e.endpoints(ctx, org)
	if err != nil {
		return nil, err
	}
	n.Doc("ExposedEndpoints", endpoints)
	if n.Err() != nil {
		return nil, n.Err()
	}

	e.logger.InfoContext(ctx, "organization onboarded",
		"organization_id", org.ID,
		"organization", org.Name,
	)
	return &OnboardingResult{
		Status:                StatusApproved,
		OrganizationID:        org.ID,
		VolunteerSchema:       schema,
		CatalogMapping:        &catalog,
		Contract:              &contract,
		PolicyContracts:       policies,
		Endpoints:             endpoints,
		CertificateThumbprint: thumbprint,
	}, nil
}

// RejectMalformed turns down an application whose body could not be read and
// records the rejection. detail describes what was wrong with the body.
func (e *Engine) RejectMalformed(ctx context.Context, detail string) (result *OnboardingResult, err error) {
	ctx, done := e.startScenario(ctx, "onboarding")
	defer func() {
		outcome := ""
		if result != nil {
			outcome = result.Status
		}
		done(outcome, err)
	}()

	result = &OnboardingResult{
		Status: StatusRejected,
		Reason: "Malformed request: " + detail,
	}
	if _, err := e.sink.Append(ctx, "OnboardingRejected", activitylog.Details{
		"status": result.Status,
		"reason": result.Reason,
	}, activitylog.LevelWarn); err != nil {
		return nil, err
	}
	return result, nil
}

// admit upserts the organization by exact name and marks it a member.
func (e *Engine) admit(ctx context.Context, req OnboardingRequest, thumbprint string, raw map[string]any) (*models.Organization, error) {
	org, err := e.store.FindOrganizationByName(ctx, req.Name)
	create := false
	if err != nil {
		if !errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load organization")
		}
		org = &models.Organization{Name: req.Name}
		create = true
	}

	org.ContactEmail = req.ContactEmail
	org.ConnectorEndpoint = req.ConnectorEndpoint
	org.CertificateThumbprint = thumbprint
	org.MemberOfDataspace = true
	org.Metadata = raw
	if req.PrivacyPolicyURL != "" {
		org.PrivacyPolicyURL = req.PrivacyPolicyURL
	}
	if req.URL != "" {
		org.URL = req.URL
	}
	if req.Description != "" {
		org.Description = req.Description
	}

	if create {
		err = e.store.CreateOrganization(ctx, org)
	} else {
		err = e.store.UpdateOrganization(ctx, org)
	}
	if err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "organization already exists")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save organization")
	}
	return org, nil
}

// endpoints lists the catalog URLs of an organization.
func (e *Engine) endpoints(ctx context.Context, org *models.Organization) (*Endpoints, error) {
	events, err := e.store.ListEventsByOrganization(ctx, org.ID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list organization events")
	}
	return CatalogEndpoints(org, events), nil
}

// CatalogEndpoints builds the exposed catalog URLs of an organization's events.
func CatalogEndpoints(org *models.Organization, events []*models.Event) *Endpoints {
	out := &Endpoints{
		Catalog: documents.CatalogURL(org.ConnectorEndpoint, org.ID),
		Events:  make([]EventEndpoint, 0, len(events)),
	}
	for _, ev := range events {
		out.Events = append(out.Events, EventEndpoint{
			Title:    ev.Name,
			Endpoint: documents.EventEndpoint(org.ConnectorEndpoint, org.ID, ev.ID),
		})
	}
	return out
}
