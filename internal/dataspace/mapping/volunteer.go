package mapping

// VolunteerField is one row of the local-to-shared volunteer profile mapping.
type VolunteerField struct {
	LocalField  string   `json:"local_field"`
	MappedTo    []string `json:"mapped_to"`
	SampleValue any      `json:"sample_value"`
}

// VolunteerSchema returns the static volunteer profile mapping every onboarding
// participant agrees to.
func VolunteerSchema() []VolunteerField {
	return []VolunteerField{
		{LocalField: "name", MappedTo: []string{"schema:givenName", "schema:familyName"}, SampleValue: "Alvaro, Juan Gomez"},
		{LocalField: "email_address", MappedTo: []string{"schema:email"}, SampleValue: "alvaro@example.org"},
		{LocalField: "skills_list", MappedTo: []string{"schema:skills"}, SampleValue: "First Aid, Lead a Team"},
		{LocalField: "org_membership", MappedTo: []string{"schema:memberOf"}, SampleValue: "Mima"},
		{LocalField: "days_available", MappedTo: []string{"vms:availabilityPreference"}, SampleValue: "Weekends"},
		{LocalField: "hours_available", MappedTo: []string{"vms:availableHoursPerWeek"}, SampleValue: 11},
	}
}

// CatalogItem is one sample activity an organization declares when onboarding.
type CatalogItem struct {
	Title  string   `json:"title"`
	Hours  int      `json:"hours"`
	Skills []string `json:"skills"`
}

// SkillMapping pairs a declared label with its ESCO URI or Unmapped.
type SkillMapping struct {
	Label string `json:"label"`
	URI   string `json:"uri"`
}

// CatalogItemMapping is the skill mapping detail of one catalog item.
type CatalogItemMapping struct {
	Title  string         `json:"title"`
	Hours  int            `json:"hours"`
	Skills []SkillMapping `json:"skills"`
}

// CatalogMapping is the result of mapping an onboarding catalog sample.
type CatalogMapping struct {
	Items    []CatalogItemMapping `json:"items"`
	Unmapped int                  `json:"unmapped"`
}

// MapCatalog maps every declared skill of every item and counts the labels
// that have no ESCO reference. Repeated labels count each time they appear.
func MapCatalog(items []CatalogItem) CatalogMapping {
	out := CatalogMapping{Items: make([]CatalogItemMapping, 0, len(items))}
	for _, item := range items {
		mapped := CatalogItemMapping{
			Title:  item.Title,
			Hours:  item.Hours,
			Skills: make([]SkillMapping, 0, len(item.Skills)),
		}
		for _, label := range item.Skills {
			uri := SkillURI(label)
			if uri == Unmapped {
				out.Unmapped++
			}
			mapped.Skills = append(mapped.Skills, SkillMapping{Label: label, URI: uri})
		}
		out.Items = append(out.Items, mapped)
	}
	return out
}
