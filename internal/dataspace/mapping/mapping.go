// Package mapping translates local vocabularies into the shared dataspace
// vocabulary: skill labels to ESCO URIs and per-organization event field names
// to schema.org terms.
//
// Every lookup degrades to an explicit marker instead of failing.
package mapping

import (
	"vms/internal/volunteering/models"
)

const (
	// Unmapped is returned for skill labels with no ESCO reference.
	Unmapped = "UNKNOWN"
	// NoMapping is returned for local fields with no shared term.
	NoMapping = "(no mapping)"
	// DefaultSchema names the field table used for unrecognized source systems.
	DefaultSchema = "_default"
)

const escoSkillBase = "http://data.europa.eu/esco/skill/"

var escoSkills = map[string]string{
	"First Aid":       escoSkillBase + "f7464f30-662b-4177-85a0-3df9693e9e58",
	"Team Leadership": escoSkillBase + "1f1d2ff8-c4c1-45cc-9812-6a7ee84a73cb",
	"Lead a Team":     escoSkillBase + "1f1d2ff8-c4c1-45cc-9812-6a7ee84a73cb",
}

// SkillURI returns the ESCO URI for an exact skill label, or Unmapped.
func SkillURI(label string) string {
	if uri, ok := escoSkills[label]; ok {
		return uri
	}
	return Unmapped
}

// SkillReference is SkillURI for storage: unmapped labels yield "".
func SkillReference(label string) string {
	if uri, ok := escoSkills[label]; ok {
		return uri
	}
	return ""
}

// Canonical event fields, in the order summaries are written.
const (
	FieldTitle         = "title"
	FieldDescription   = "description"
	FieldLocation      = "location"
	FieldDurationHours = "duration_hours"
	FieldSkills        = "skills_list"
	FieldOrganizer     = "org_membership"
	FieldIsShared      = "isShared"
	FieldPriority      = "prioritize_local"
)

var canonicalEventFields = []string{
	FieldTitle,
	FieldDescription,
	FieldLocation,
	FieldDurationHours,
	FieldSkills,
	FieldOrganizer,
}

var sharedEventTerms = map[string]string{
	FieldTitle:         "schema:name",
	FieldDescription:   "schema:description",
	FieldLocation:      "schema:location",
	FieldDurationHours: "schema:duration",
	FieldSkills:        "schema:skills",
	FieldOrganizer:     "schema:organizer",
	FieldIsShared:      "vms:isShared",
	FieldPriority:      "vms:priorityPolicy",
}

// SharedTerm returns the shared vocabulary term for a canonical field, or NoMapping.
func SharedTerm(canonical string) string {
	if term, ok := sharedEventTerms[canonical]; ok {
		return term
	}
	return NoMapping
}

// LocalSchema is one source system's naming convention, keyed by canonical field.
type LocalSchema struct {
	Name   string
	fields map[string]string
}

var localSchemas = map[string]LocalSchema{
	"PlatformA": {Name: "PlatformA", fields: map[string]string{
		FieldTitle:         "local_name",
		FieldDescription:   "local_desc",
		FieldLocation:      "local_location",
		FieldDurationHours: "local_duration",
		FieldSkills:        "local_traits",
		FieldOrganizer:     "local_org",
	}},
	"PlatformB": {Name: "PlatformB", fields: map[string]string{
		FieldTitle:         "Name",
		FieldDescription:   "Details",
		FieldLocation:      "Place",
		FieldDurationHours: "Hours",
		FieldSkills:        "Traits",
		FieldOrganizer:     "worksFor",
	}},
	DefaultSchema: {Name: DefaultSchema, fields: map[string]string{
		FieldTitle:         "name",
		FieldDescription:   "description",
		FieldLocation:      "location",
		FieldDurationHours: "duration",
		FieldSkills:        "skills",
		FieldOrganizer:     "organizer",
	}},
}

// LocalSchemaFor returns the field table of the named organization, falling
// back to the default table.
func LocalSchemaFor(orgName string) LocalSchema {
	if s, ok := localSchemas[orgName]; ok {
		return s
	}
	return localSchemas[DefaultSchema]
}

// LocalName returns the organization's name for a canonical field. Fields the
// table does not cover keep their canonical name.
func (s LocalSchema) LocalName(canonical string) string {
	if local, ok := s.fields[canonical]; ok {
		return local
	}
	return canonical
}

// Canonical resolves a local field name back to its canonical field, or NoMapping.
func (s LocalSchema) Canonical(local string) string {
	for canonical, l := range s.fields {
		if l == local {
			return canonical
		}
	}
	if _, ok := sharedEventTerms[local]; ok {
		return local
	}
	return NoMapping
}

// MappedField is one row of an event field-mapping summary.
type MappedField struct {
	Local    string `json:"local"`
	MappedTo string `json:"mapped_to"`
	Sample   any    `json:"sample"`
}

// MapEvent summarizes how the organization's local event fields land in the
// shared vocabulary, with the event's own values as samples.
func MapEvent(org *models.Organization, event *models.Event) []MappedField {
	schema := LocalSchemaFor(org.Name)
	samples := map[string]any{
		FieldTitle:         event.Name,
		FieldDescription:   event.Description,
		FieldLocation:      event.Location,
		FieldDurationHours: event.DurationHours,
		FieldSkills:        event.SkillNames(),
		FieldOrganizer:     org.Name,
	}
	out := make([]MappedField, 0, len(canonicalEventFields))
	for _, canonical := range canonicalEventFields {
		local := schema.LocalName(canonical)
		out = append(out, MappedField{
			Local:    local,
			MappedTo: SharedTerm(schema.Canonical(local)),
			Sample:   samples[canonical],
		})
	}
	return out
}
