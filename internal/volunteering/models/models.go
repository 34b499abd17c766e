// Package models defines the volunteering domain entities shared by every
// dataspace component.
package models

import (
	"strings"
	"time"

	dErrors "vms/pkg/domain-errors"
)

// MilestoneHours is the volunteered-hours threshold that gates certificates.
const MilestoneHours = 100

// Organization is a volunteer organization and, once onboarded, a dataspace participant.
type Organization struct {
	ID                    int64  `json:"id"`
	Name                  string `json:"name"`
	URL                   string `json:"url,omitempty"`
	Description           string `json:"description,omitempty"`
	ContactEmail          string `json:"contact_email,omitempty"`
	ConnectorEndpoint     string `json:"connector_endpoint,omitempty"`
	PrivacyPolicyURL      string `json:"privacy_policy_url,omitempty"`
	MemberOfDataspace     bool   `json:"member_of_dataspace"`
	CertificateThumbprint string `json:"certificate_thumbprint,omitempty"`
	IsGovernanceAuthority bool   `json:"is_governance_authority"`

	// Metadata is the last onboarding request as submitted.
	Metadata map[string]any `json:"metadata,omitempty"`
}

// CanPublish reports whether the organization exposes a connector endpoint that
// catalog entries and shared events can point at.
func (o *Organization) CanPublish() bool {
	return strings.TrimSpace(o.ConnectorEndpoint) != ""
}

// LeaveDataspace clears membership and the trust credential together.
func (o *Organization) LeaveDataspace() {
	o.MemberOfDataspace = false
	o.CertificateThumbprint = ""
}

// Skill is a competency label with an optional ESCO reference.
type Skill struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	EscoURI string `json:"esco_uri,omitempty"`
}

// Volunteer is a person belonging to at most one organization.
type Volunteer struct {
	ID             int64   `json:"id"`
	Name           string  `json:"name"`
	PasswordHash   string  `json:"-"`
	Location       string  `json:"location,omitempty"`
	OrganizationID int64   `json:"organization_id,omitempty"`
	IsManager      bool    `json:"is_manager"`
	Skills         []Skill `json:"skills"`
}

// HasOrganization reports whether the volunteer belongs to an organization.
func (v *Volunteer) HasOrganization() bool {
	return v.OrganizationID != 0
}

// SkillNames returns the volunteer's skill labels in stored order.
func (v *Volunteer) SkillNames() []string {
	return skillNames(v.Skills)
}

// Event is a volunteering activity owned by exactly one organization.
type Event struct {
	ID              int64     `json:"id"`
	Name            string    `json:"name"`
	Description     string    `json:"description,omitempty"`
	Location        string    `json:"location,omitempty"`
	DurationHours   int       `json:"duration_hours"`
	OrganizationID  int64     `json:"organization_id"`
	Skills          []Skill   `json:"skills"`
	IsFinished      bool      `json:"is_finished"`
	IsShared        bool      `json:"is_shared"`
	PrioritizeLocal bool      `json:"prioritize_local"`
	ImageURL        string    `json:"image_url,omitempty"`
	CreatedAt       time.Time `json:"created_at"`

	// Federation metadata, set once the event is published to the dataspace.
	SharedSince *time.Time `json:"shared_since,omitempty"`
	Endpoint    string     `json:"endpoint,omitempty"`
	AssetID     string     `json:"asset_id,omitempty"`
	ContractID  string     `json:"contract_id,omitempty"`
}

// SkillNames returns the event's required skill labels in stored order.
func (e *Event) SkillNames() []string {
	return skillNames(e.Skills)
}

// Validate enforces the creation invariants of an event.
func (e *Event) Validate() error {
	if strings.TrimSpace(e.Name) == "" {
		return dErrors.New(dErrors.CodeValidation, "event name is required")
	}
	if e.DurationHours < 1 {
		return dErrors.New(dErrors.CodeValidation, "duration_hours must be a positive integer")
	}
	if e.OrganizationID == 0 {
		return dErrors.New(dErrors.CodeValidation, "event must belong to an organization")
	}
	return nil
}

// CertificateItem is one counted activity inside a certificate.
type CertificateItem struct {
	EventID   int64    `json:"event_id"`
	EventName string   `json:"event_name"`
	Hours     int      `json:"hours"`
	Provider  string   `json:"provider"`
	Skills    []string `json:"skills"`
}

// Certificate is an issued volunteering credential.
type Certificate struct {
	ID          int64             `json:"id"`
	VolunteerID int64             `json:"volunteer_id"`
	IssuerOrgID int64             `json:"issuer_org_id"`
	Items       []CertificateItem `json:"items"`
	TotalHours  int               `json:"total_hours"`
	ProofHash   string            `json:"proof_hash"`
	IssuedAt    time.Time         `json:"issued_at"`
	Skills      []Skill           `json:"skills"`
}

func skillNames(skills []Skill) []string {
	names := make([]string, 0, len(skills))
	for _, s := range skills {
		names = append(names, s.Name)
	}
	return names
}
