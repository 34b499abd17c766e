//go:build integration

package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"vms/internal/platform/postgres"
	"vms/internal/volunteering/models"
	"vms/pkg/platform/sentinel"
	"vms/pkg/testutil/containers"
)

type PostgresStoreIntegrationSuite struct {
	suite.Suite
	pg    *containers.PostgresContainer
	store *PostgresStore
	ctx   context.Context
}

func TestPostgresStoreIntegrationSuite(t *testing.T) {
	suite.Run(t, new(PostgresStoreIntegrationSuite))
}

func (s *PostgresStoreIntegrationSuite) SetupSuite() {
	s.ctx = context.Background()
	s.pg = containers.Postgres(s.T())
	s.Require().NoError(postgres.Migrate(s.ctx, s.pg.DB))
	s.store = NewPostgres(s.pg.DB)
}

func (s *PostgresStoreIntegrationSuite) SetupTest() {
	s.pg.Truncate(s.T(), "certificate_skills", "certificates", "registrations",
		"event_skills", "events", "volunteer_skills", "volunteers", "skills", "organizations")
}

func (s *PostgresStoreIntegrationSuite) TestOrganizationRoundTrip() {
	org := &models.Organization{
		Name:              "Red Cross",
		ConnectorEndpoint: "https://redcross.example.org/connector",
		MemberOfDataspace: true,
		Metadata:          map[string]any{"url": "https://redcross.example.org"},
	}
	s.Require().NoError(s.store.CreateOrganization(s.ctx, org))
	s.NotZero(org.ID)

	err := s.store.CreateOrganization(s.ctx, &models.Organization{Name: "Red Cross"})
	s.ErrorIs(err, sentinel.ErrConflict)

	org.LeaveDataspace()
	s.Require().NoError(s.store.UpdateOrganization(s.ctx, org))

	got, err := s.store.FindOrganizationByName(s.ctx, "Red Cross")
	s.Require().NoError(err)
	s.False(got.MemberOfDataspace)
	s.Equal("https://redcross.example.org", got.Metadata["url"])

	_, err = s.store.FindOrganizationByID(s.ctx, org.ID+100)
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresStoreIntegrationSuite) TestEventsAndRegistrations() {
	org := &models.Organization{Name: "Mima", ConnectorEndpoint: "https://mima.example.org"}
	s.Require().NoError(s.store.CreateOrganization(s.ctx, org))

	firstAid, err := s.store.FindOrCreateSkill(s.ctx, "First Aid", "")
	s.Require().NoError(err)
	again, err := s.store.FindOrCreateSkill(s.ctx, "First Aid", "")
	s.Require().NoError(err)
	s.Equal(firstAid.ID, again.ID)
	lower, err := s.store.FindOrCreateSkill(s.ctx, "first aid", "")
	s.Require().NoError(err)
	s.NotEqual(firstAid.ID, lower.ID)

	vol := &models.Volunteer{Name: "Alvaro Juan Gomez", OrganizationID: org.ID, Skills: []models.Skill{*firstAid}}
	s.Require().NoError(s.store.CreateVolunteer(s.ctx, vol))

	event := &models.Event{
		Name:           "Beach cleanup",
		DurationHours:  4,
		OrganizationID: org.ID,
		Skills:         []models.Skill{*firstAid},
		CreatedAt:      time.Now().UTC().Truncate(time.Second),
	}
	s.Require().NoError(s.store.CreateEvent(s.ctx, event))

	event.IsShared = true
	since := time.Now().UTC().Truncate(time.Second)
	event.SharedSince = &since
	event.AssetID = "asset-1"
	s.Require().NoError(s.store.UpdateEvent(s.ctx, event))

	shared, err := s.store.ListSharedEvents(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(shared, 1)
	s.Equal("asset-1", shared[0].AssetID)
	s.Equal([]string{"First Aid"}, shared[0].SkillNames())

	s.Require().NoError(s.store.AddRegistration(s.ctx, vol.ID, event.ID))
	s.ErrorIs(s.store.AddRegistration(s.ctx, vol.ID, event.ID), sentinel.ErrConflict)

	ids, err := s.store.ListRegisteredEventIDs(s.ctx, vol.ID)
	s.Require().NoError(err)
	s.Equal([]int64{event.ID}, ids)

	s.Require().NoError(s.store.RemoveRegistration(s.ctx, vol.ID, event.ID))
	s.ErrorIs(s.store.RemoveRegistration(s.ctx, vol.ID, event.ID), sentinel.ErrNotFound)
}

func (s *PostgresStoreIntegrationSuite) TestCertificates() {
	org := &models.Organization{Name: "Mima"}
	s.Require().NoError(s.store.CreateOrganization(s.ctx, org))
	vol := &models.Volunteer{Name: "Maria Lopez", OrganizationID: org.ID}
	s.Require().NoError(s.store.CreateVolunteer(s.ctx, vol))
	skill, err := s.store.FindOrCreateSkill(s.ctx, "Teamwork", "")
	s.Require().NoError(err)

	cert := &models.Certificate{
		VolunteerID: vol.ID,
		IssuerOrgID: org.ID,
		Items:       []models.CertificateItem{{EventID: 1, EventName: "Beach cleanup", Hours: 100, Provider: "Mima"}},
		TotalHours:  100,
		ProofHash:   "abc",
		IssuedAt:    time.Now().UTC().Truncate(time.Second),
		Skills:      []models.Skill{*skill},
	}
	s.Require().NoError(s.store.CreateCertificate(s.ctx, cert))

	certs, err := s.store.ListCertificatesByVolunteer(s.ctx, vol.ID)
	s.Require().NoError(err)
	s.Require().Len(certs, 1)
	s.Equal(100, certs[0].TotalHours)
	s.Equal("Beach cleanup", certs[0].Items[0].EventName)
	s.Equal("Teamwork", certs[0].Skills[0].Name)
}
