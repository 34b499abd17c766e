package mapping

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vms/internal/volunteering/models"
)

func TestSkillURI(t *testing.T) {
	assert.Equal(t, "http://data.europa.eu/esco/skill/f7464f30-662b-4177-85a0-3df9693e9e58", SkillURI("First Aid"))
	assert.Equal(t, SkillURI("Team Leadership"), SkillURI("Lead a Team"))
	assert.Equal(t, Unmapped, SkillURI("Juggling"))

	t.Run("lookups are case sensitive", func(t *testing.T) {
		assert.Equal(t, Unmapped, SkillURI("first aid"))
	})
}

func TestSkillReference(t *testing.T) {
	assert.Equal(t, SkillURI("First Aid"), SkillReference("First Aid"))
	assert.Empty(t, SkillReference("Juggling"))
}

func TestLocalSchemaFallsBackToDefault(t *testing.T) {
	assert.Equal(t, "PlatformB", LocalSchemaFor("PlatformB").Name)
	assert.Equal(t, DefaultSchema, LocalSchemaFor("Red Cross").Name)
	assert.Equal(t, "Hours", LocalSchemaFor("PlatformB").LocalName(FieldDurationHours))
	assert.Equal(t, "duration", LocalSchemaFor("").LocalName(FieldDurationHours))
	assert.Equal(t, FieldIsShared, LocalSchemaFor("PlatformA").LocalName(FieldIsShared))
}

func TestSharedTerm(t *testing.T) {
	assert.Equal(t, "vms:priorityPolicy", SharedTerm(FieldPriority))
	assert.Equal(t, NoMapping, SharedTerm("colour"))
	assert.Equal(t, NoMapping, LocalSchemaFor("PlatformA").Canonical("colour"))
}

func TestMapEvent(t *testing.T) {
	org := &models.Organization{ID: 2, Name: "PlatformA"}
	event := &models.Event{
		ID:            7,
		Name:          "Beach cleanup",
		Location:      "Valencia",
		DurationHours: 3,
		Skills:        []models.Skill{{Name: "First Aid"}},
	}

	rows := MapEvent(org, event)
	require.Len(t, rows, 6)
	assert.Equal(t, MappedField{Local: "local_name", MappedTo: "schema:name", Sample: "Beach cleanup"}, rows[0])
	assert.Equal(t, MappedField{Local: "local_duration", MappedTo: "schema:duration", Sample: 3}, rows[3])
	assert.Equal(t, []string{"First Aid"}, rows[4].Sample)
	assert.Equal(t, MappedField{Local: "local_org", MappedTo: "schema:organizer", Sample: "PlatformA"}, rows[5])
}

func TestMapCatalogCountsUnmappedSkills(t *testing.T) {
	result := MapCatalog([]CatalogItem{
		{Title: "Flood relief", Hours: 10, Skills: []string{"First Aid", "Sandbagging"}},
		{Title: "Soup kitchen", Hours: 4, Skills: []string{"Cooking", "Cooking"}},
	})

	require.Len(t, result.Items, 2)
	assert.Equal(t, 3, result.Unmapped)
	assert.Equal(t, SkillMapping{Label: "Sandbagging", URI: Unmapped}, result.Items[0].Skills[1])
	assert.Equal(t, 0, MapCatalog(nil).Unmapped)
}

func TestVolunteerSchemaIsStable(t *testing.T) {
	schema := VolunteerSchema()
	require.Len(t, schema, 6)
	assert.Equal(t, []string{"schema:givenName", "schema:familyName"}, schema[0].MappedTo)
	assert.Equal(t, "hours_available", schema[5].LocalField)
}
