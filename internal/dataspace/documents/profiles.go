package documents

import (
	"time"

	"vms/internal/volunteering/models"
)

// Prefixes used across documents.
const (
	SchemaContext = "https://schema.org/"
	VMSContext    = "https://vms.example.org/context"
	ESCOContext   = "https://data.europa.eu/esco/skill"

	priorityLocalFirst = "local-first"
	priorityOpen       = "open"
)

// Context is a JSON-LD @context with the prefixes the documents use.
type Context struct {
	Schema string `json:"schema"`
	VMS    string `json:"vms"`
	ESCO   string `json:"esco"`
}

// Ref is a typed reference to another node.
type Ref struct {
	Type string `json:"@type,omitempty"`
	ID   string `json:"@id,omitempty"`
	Name string `json:"schema:name,omitempty"`
}

// DefinedTerm is a skill inside an event document: a canonical reference when
// the skill has an ESCO URI, an inline label otherwise.
type DefinedTerm struct {
	Type  string `json:"@type"`
	ID    string `json:"@id,omitempty"`
	Label string `json:"name,omitempty"`
}

// OrganizationDocument is the public profile of an organization.
type OrganizationDocument struct {
	Type        string `json:"@type"`
	ID          string `json:"@id"`
	Name        string `json:"schema:name"`
	URL         string `json:"schema:url,omitempty"`
	Description string `json:"schema:description,omitempty"`
	Email       string `json:"schema:email,omitempty"`
	Endpoint    string `json:"vms:connectorEndpoint,omitempty"`
}

// Organization builds the organization profile, omitting empty fields.
func Organization(org *models.Organization) OrganizationDocument {
	return OrganizationDocument{
		Type:        "schema:Organization",
		ID:          orgURI(org.ID),
		Name:        org.Name,
		URL:         org.URL,
		Description: org.Description,
		Email:       org.ContactEmail,
		Endpoint:    org.ConnectorEndpoint,
	}
}

// EventDocument is the shared profile of an event.
type EventDocument struct {
	Context        Context       `json:"@context"`
	Type           string        `json:"@type"`
	ID             string        `json:"@id"`
	Name           string        `json:"schema:name,omitempty"`
	Description    string        `json:"schema:description,omitempty"`
	Location       *Ref          `json:"schema:location,omitempty"`
	Duration       string        `json:"schema:duration"`
	Organizer      *Ref          `json:"schema:organizer,omitempty"`
	Skills         []DefinedTerm `json:"schema:skills,omitempty"`
	IsShared       bool          `json:"vms:isShared"`
	PriorityPolicy string        `json:"vms:priorityPolicy"`
}

// Event builds the event profile. org may be nil when the owner is unknown.
func Event(org *models.Organization, event *models.Event) EventDocument {
	doc := EventDocument{
		Context:        Context{Schema: SchemaContext, VMS: VMSContext, ESCO: ESCOContext},
		Type:           "schema:Event",
		ID:             eventURI(event.ID),
		Name:           event.Name,
		Description:    event.Description,
		Duration:       ISODuration(event.DurationHours),
		IsShared:       event.IsShared,
		PriorityPolicy: priorityOpen,
	}
	if event.PrioritizeLocal {
		doc.PriorityPolicy = priorityLocalFirst
	}
	if event.Location != "" {
		doc.Location = &Ref{Type: "schema:Place", Name: event.Location}
	}
	if org != nil {
		doc.Organizer = &Ref{Type: "schema:Organization", ID: orgURI(org.ID), Name: org.Name}
	}
	for _, sk := range event.Skills {
		term := DefinedTerm{Type: "schema:DefinedTerm"}
		if sk.EscoURI != "" {
			term.ID = sk.EscoURI
		} else {
			term.Label = sk.Name
		}
		doc.Skills = append(doc.Skills, term)
	}
	return doc
}

// VolunteerContext is the @context of volunteer and certificate documents.
type VolunteerContext struct {
	Schema string `json:"schema"`
	ESCO   string `json:"esco"`
	VMS    string `json:"vms"`
}

// QuantitativeValue is an amount with a unit.
type QuantitativeValue struct {
	Type  string `json:"@type"`
	Value int    `json:"schema:value"`
	Unit  string `json:"schema:unitText"`
}

// VolunteerDocument is the portable profile of a volunteer.
type VolunteerDocument struct {
	Context      VolunteerContext  `json:"@context"`
	Type         string            `json:"@type"`
	ID           string            `json:"@id"`
	Name         string            `json:"schema:name"`
	Location     string            `json:"schema:location,omitempty"`
	TotalHours   QuantitativeValue `json:"vms:totalHours"`
	Skills       []Ref             `json:"schema:skills"`
	Organization *Ref              `json:"vms:organization,omitempty"`
}

// Volunteer builds the volunteer profile with the hours of the given events.
func Volunteer(v *models.Volunteer, registered []*models.Event) VolunteerDocument {
	total := 0
	for _, e := range registered {
		total += e.DurationHours
	}
	doc := VolunteerDocument{
		Context: VolunteerContext{
			Schema: SchemaContext,
			ESCO:   "http://data.europa.eu/esco/",
			VMS:    "https://vms.example.org/context#",
		},
		Type:       "vms:Volunteer",
		ID:         volunteerURI(v.ID),
		Name:       v.Name,
		Location:   v.Location,
		TotalHours: QuantitativeValue{Type: "schema:QuantitativeValue", Value: total, Unit: "hours"},
		Skills:     skillRefs(v.Skills),
	}
	if v.HasOrganization() {
		doc.Organization = &Ref{ID: orgURI(v.OrganizationID)}
	}
	return doc
}

// HoursBreakdown splits certificate hours by provenance.
type HoursBreakdown struct {
	Total         int `json:"total"`
	FromHomeOrg   int `json:"fromHomeOrg"`
	FromOtherOrgs int `json:"fromOtherOrgs"`
}

// Recognition is a skill-specific acknowledgement inside a certificate.
type Recognition struct {
	Type   string `json:"@type"`
	Name   string `json:"schema:name"`
	Hours  int    `json:"vms:hours"`
	Reason string `json:"vms:reason"`
}

// CertificateDocument is the credential handed to the volunteer.
type CertificateDocument struct {
	Type         string                   `json:"@type"`
	ID           string                   `json:"@id"`
	Name         string                   `json:"schema:name"`
	IssuedTo     Ref                      `json:"vms:issuedTo"`
	DateIssued   string                   `json:"schema:dateIssued"`
	Items        []models.CertificateItem `json:"vms:items"`
	ProofHash    string                   `json:"vms:proofHash"`
	RecognizedBy *Ref                     `json:"schema:recognizedBy,omitempty"`
	Skills       []Ref                    `json:"vms:skills,omitempty"`
	Breakdown    *HoursBreakdown          `json:"vms:hoursBreakdown,omitempty"`
	Recognitions []Recognition            `json:"vms:recognitions,omitempty"`
}

// Certificate builds the credential document. Breakdown and recognitions are
// attached by the issuer.
func Certificate(cert *models.Certificate) CertificateDocument {
	doc := CertificateDocument{
		Type:       "schema:EducationalOccupationalCredential",
		ID:         certURI(cert.ID),
		Name:       "Volunteer Certificate " + itoa(cert.ID),
		IssuedTo:   Ref{ID: volunteerURI(cert.VolunteerID)},
		DateIssued: cert.IssuedAt.UTC().Format(time.DateOnly),
		Items:      cert.Items,
		ProofHash:  cert.ProofHash,
	}
	if cert.IssuerOrgID != 0 {
		doc.RecognizedBy = &Ref{ID: orgURI(cert.IssuerOrgID)}
	}
	if len(cert.Skills) > 0 {
		doc.Skills = skillRefs(cert.Skills)
	}
	return doc
}

func skillRefs(skills []models.Skill) []Ref {
	refs := make([]Ref, 0, len(skills))
	for _, sk := range skills {
		id := sk.EscoURI
		if id == "" {
			id = skillURI(sk.ID)
		}
		refs = append(refs, Ref{ID: id})
	}
	return refs
}
