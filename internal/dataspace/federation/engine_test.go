package federation

import (
	"context"
	"errors"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"vms/internal/activitylog"
	logstore "vms/internal/activitylog/store"
	"vms/internal/dataspace/documents"
	"vms/internal/dataspace/mapping"
	"vms/internal/volunteering/models"
	volstore "vms/internal/volunteering/store"
	dErrors "vms/pkg/domain-errors"
	"vms/pkg/platform/sentinel"
)

type EngineSuite struct {
	suite.Suite
	ctx     context.Context
	store   *volstore.InMemoryStore
	entries *logstore.InMemory
	sink    *activitylog.Service
	engine  *Engine
}

func TestEngineSuite(t *testing.T) {
	suite.Run(t, new(EngineSuite))
}

func (s *EngineSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = volstore.NewInMemory()
	s.entries = logstore.NewInMemory()
	s.sink = activitylog.New(s.entries)
	s.engine = New(s.store, s.sink)
}

func (s *EngineSuite) actions() []string {
	var out []string
	for _, e := range s.entries.All() {
		out = append(out, e.Action)
	}
	return out
}

func (s *EngineSuite) entry(action string) *activitylog.Entry {
	for _, e := range s.entries.All() {
		if e.Action == action {
			return e
		}
	}
	s.FailNow("no entry " + action)
	return nil
}

func (s *EngineSuite) org(name string, member bool) *models.Organization {
	o := &models.Organization{Name: name, MemberOfDataspace: member, ConnectorEndpoint: "https://edc." + name + ".example/"}
	s.Require().NoError(s.store.CreateOrganization(s.ctx, o))
	return o
}

func validRequest() OnboardingRequest {
	return OnboardingRequest{
		Name:              "Mima",
		ContactEmail:      "ops@mima.example",
		ConnectorEndpoint: "https://edc.mima.example/",
		PrivacyPolicyURL:  "https://mima.example/privacy",
		CatalogSample: []mapping.CatalogItem{
			{Title: "Flood relief", Hours: 20, Skills: []string{"First Aid", "Sandbagging"}},
		},
		Raw: map[string]any{"name": "Mima"},
	}
}

func (s *EngineSuite) TestOnboardingApproved() {
	result, err := s.engine.Onboard(s.ctx, validRequest())
	s.Require().NoError(err)

	s.Equal(StatusApproved, result.Status)
	s.Equal(Thumbprint("Mima"), result.CertificateThumbprint)
	s.Len(result.CertificateThumbprint, 32)
	s.Equal("tmpl-"+documents.Digest("Mima")[:8], result.Contract.ContractID)
	s.Equal(1, result.CatalogMapping.Unmapped)
	s.Equal("https://edc.mima.example/api/catalog/"+itoa(result.OrganizationID)+"/", result.Endpoints.Catalog)

	org, err := s.store.FindOrganizationByName(s.ctx, "Mima")
	s.Require().NoError(err)
	s.True(org.MemberOfDataspace)
	s.Equal(result.OrganizationID, org.ID)
	s.Equal("ops@mima.example", org.ContactEmail)
	s.Equal(map[string]any{"name": "Mima"}, org.Metadata)

	s.Equal([]string{
		"OnboardingRequestReceived",
		"MetadataValidation",
		"GovernanceCheck",
		"VolunteerSchemaMapping",
		"ESCO_SkillMapping",
		"ContractTemplateGenerated",
		"CertificateIssued",
		"PolicyContractsNegotiated",
		"EDC.ContractNegotiated",
		"OnboardingApproved",
		"ExposedEndpoints",
	}, s.actions())
	s.Equal(activitylog.LevelInfo, s.entry("GovernanceCheck").Level)
}

func (s *EngineSuite) TestOnboardingRejectsMissingFields() {
	req := validRequest()
	req.ContactEmail = ""
	req.ConnectorEndpoint = "  "

	result, err := s.engine.Onboard(s.ctx, req)
	s.Require().NoError(err)
	s.True(result.Rejected())
	s.Equal("Missing fields: contact_email, connector_endpoint", result.Reason)

	_, err = s.store.FindOrganizationByName(s.ctx, "Mima")
	s.ErrorIs(err, sentinel.ErrNotFound)
	s.Equal([]string{"OnboardingRequestReceived", "OnboardingRejected"}, s.actions())
	s.Equal(activitylog.LevelWarn, s.entry("OnboardingRejected").Level)
}

func (s *EngineSuite) TestOnboardingRejectsMalformedBody() {
	result, err := s.engine.RejectMalformed(s.ctx, "invalid json payload")
	s.Require().NoError(err)
	s.True(result.Rejected())
	s.Equal("Malformed request: invalid json payload", result.Reason)
	s.Zero(result.OrganizationID)

	s.Equal([]string{"OnboardingRejected"}, s.actions())
	rejected := s.entry("OnboardingRejected")
	s.Equal(activitylog.LevelWarn, rejected.Level)
	s.Equal(StatusRejected, rejected.Details["status"])
	s.Equal(result.Reason, rejected.Details["reason"])
}

func (s *EngineSuite) TestOnboardingUnmappedThreshold() {
	s.Run("two unmapped skills are tolerated", func() {
		req := validRequest()
		req.CatalogSample = []mapping.CatalogItem{{Title: "a", Skills: []string{"Juggling", "Sandbagging", "First Aid"}}}
		result, err := s.engine.Onboard(s.ctx, req)
		s.Require().NoError(err)
		s.Equal(StatusApproved, result.Status)
	})

	s.Run("three unmapped skills are rejected without persisting", func() {
		req := validRequest()
		req.Name = "Circus"
		req.CatalogSample = []mapping.CatalogItem{{Title: "a", Skills: []string{"Juggling", "Sandbagging", "Stilts"}}}
		result, err := s.engine.Onboard(s.ctx, req)
		s.Require().NoError(err)
		s.True(result.Rejected())
		s.Contains(result.Reason, "3")

		_, err = s.store.FindOrganizationByName(s.ctx, "Circus")
		s.ErrorIs(err, sentinel.ErrNotFound)
		all := s.actions()
		s.Equal("OnboardingRejected", all[len(all)-1])
	})
}

func (s *EngineSuite) TestOnboardingWarnsWithoutPrivacyPolicyAndKeepsThumbprint() {
	req := validRequest()
	req.PrivacyPolicyURL = ""
	req.CertificateThumbprint = "AB:CD"

	result, err := s.engine.Onboard(s.ctx, req)
	s.Require().NoError(err)
	s.Equal("AB:CD", result.CertificateThumbprint)
	s.Equal(activitylog.LevelWarn, s.entry("GovernanceCheck").Level)
	s.NotContains(s.actions(), "CertificateIssued")
}

func (s *EngineSuite) TestOnboardingUpdatesExistingOrganization() {
	existing := s.org("Mima", false)
	existing.URL = "https://mima.example"
	s.Require().NoError(s.store.UpdateOrganization(s.ctx, existing))

	result, err := s.engine.Onboard(s.ctx, validRequest())
	s.Require().NoError(err)
	s.Equal(existing.ID, result.OrganizationID)

	org, err := s.store.FindOrganizationByID(s.ctx, existing.ID)
	s.Require().NoError(err)
	s.True(org.MemberOfDataspace)
	s.Equal("https://mima.example", org.URL)
	s.Equal("https://edc.mima.example/", org.ConnectorEndpoint)
}

func (s *EngineSuite) TestCreatePrivateEvent() {
	org := s.org("Mima", true)
	actor := &models.Volunteer{Name: "Andrea"}
	event := &models.Event{Name: "Quiet afternoon", DurationHours: 2}

	s.Require().NoError(s.engine.CreateEvent(s.ctx, actor, org, event))
	s.NotZero(event.ID)
	s.Equal([]string{"EventCreated", "EventPrivate"}, s.actions())
	s.Equal("Event 'Quiet afternoon' created by Andrea", s.entry("EventCreated").Details["message"])

	stored, err := s.store.FindEventByID(s.ctx, event.ID)
	s.Require().NoError(err)
	s.Empty(stored.AssetID)
	s.Nil(stored.SharedSince)
}

func (s *EngineSuite) TestCreateSharedEvent() {
	org := s.org("Mima", true)
	actor := &models.Volunteer{Name: "Andrea"}
	event := &models.Event{Name: "Flood relief", DurationHours: 8, IsShared: true, PrioritizeLocal: true}

	s.Require().NoError(s.engine.CreateEvent(s.ctx, actor, org, event))
	s.Equal([]string{
		"EventCreated",
		"EDC.AssetRegistered",
		"Policy.UsageCreated",
		"EDC.ContractOfferPublished",
		"EventSchemaMapped",
		"EventShared.JSONLD",
		"DSGA.Notification",
		"DSGA.Acknowledged",
		"PolicyHint",
	}, s.actions())

	stored, err := s.store.FindEventByID(s.ctx, event.ID)
	s.Require().NoError(err)
	s.Equal(documents.AssetID(org.ID, event.ID), stored.AssetID)
	s.Equal(documents.OfferID(org.ID, event.ID), stored.ContractID)
	s.Equal(documents.EventEndpoint(org.ConnectorEndpoint, org.ID, event.ID), stored.Endpoint)
	s.NotNil(stored.SharedSince)

	asset := s.entry("EDC.AssetRegistered").Details
	s.Equal(stored.AssetID, asset["edc:assetId"])
	s.Equal("local-first", s.entry("EventShared.JSONLD").Details["vms:priorityPolicy"])
}

func (s *EngineSuite) TestShareEventIsRepeatable() {
	org := s.org("Mima", true)
	event := &models.Event{Name: "Beach cleanup", DurationHours: 3}
	s.Require().NoError(s.engine.CreateEvent(s.ctx, &models.Volunteer{Name: "Andrea"}, org, event))

	s.Require().NoError(s.engine.ShareEvent(s.ctx, org, event))
	first, err := s.store.FindEventByID(s.ctx, event.ID)
	s.Require().NoError(err)
	s.True(first.IsShared)

	s.Require().NoError(s.engine.ShareEvent(s.ctx, org, first))
	second, err := s.store.FindEventByID(s.ctx, event.ID)
	s.Require().NoError(err)
	s.Equal(first.AssetID, second.AssetID)
	s.Equal(first.ContractID, second.ContractID)
	s.Equal(first.SharedSince, second.SharedSince)
	s.NotContains(s.actions(), "PolicyHint")

	s.Run("other organizations cannot share it", func() {
		other := s.org("Red Cross", true)
		err := s.engine.ShareEvent(s.ctx, other, second)
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})
}

func (s *EngineSuite) TestSharingRequiresEndpoint() {
	org := &models.Organization{Name: "Offline", MemberOfDataspace: true}
	s.Require().NoError(s.store.CreateOrganization(s.ctx, org))

	err := s.engine.CreateEvent(s.ctx, &models.Volunteer{Name: "Andrea"}, org,
		&models.Event{Name: "Flood relief", DurationHours: 8, IsShared: true})
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	s.Empty(s.actions())

	events, err := s.store.ListEventsByOrganization(s.ctx, org.ID)
	s.Require().NoError(err)
	s.Empty(events)
}

func (s *EngineSuite) TestCreateEventValidates() {
	org := s.org("Mima", true)
	err := s.engine.CreateEvent(s.ctx, &models.Volunteer{Name: "Andrea"}, org, &models.Event{Name: "", DurationHours: 1})
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	s.Empty(s.actions())
}

func (s *EngineSuite) TestBroadcastWhenEnabled() {
	org := s.org("Mima", true)
	s.org("Red Cross", true)
	s.org("Food for All", false)
	engine := New(s.store, s.sink, WithBroadcaster(NewMemberBroadcaster(s.store, s.sink)))

	event := &models.Event{Name: "Flood relief", DurationHours: 8, IsShared: true}
	s.Require().NoError(engine.CreateEvent(s.ctx, &models.Volunteer{Name: "Andrea"}, org, event))

	all := s.actions()
	s.Equal("FederatedBroadcast", all[len(all)-1])
	details := s.entry("FederatedBroadcast").Details
	s.Equal(1, details["to_count"])
	s.Equal([]string{"Red Cross"}, details["to"])
}

func (s *EngineSuite) crossOrgFixture() (*models.Volunteer, *models.Event, *models.Organization, *models.Organization) {
	home := s.org("Mima", true)
	host := s.org("Red Cross", true)
	v := &models.Volunteer{Name: "Alvaro Juan Gomez", OrganizationID: home.ID}
	s.Require().NoError(s.store.CreateVolunteer(s.ctx, v))
	event := &models.Event{Name: "Flood relief", Location: "Linz", DurationHours: 8, OrganizationID: host.ID, IsShared: true}
	s.Require().NoError(s.store.CreateEvent(s.ctx, event))
	return v, event, home, host
}

func (s *EngineSuite) TestJoinAcrossMembers() {
	v, event, home, host := s.crossOrgFixture()

	ran, err := s.engine.Join(s.ctx, v, event)
	s.Require().NoError(err)
	s.True(ran)
	s.Equal([]string{
		"EDC.CatalogRequest",
		"EDC.CatalogResponse",
		"EDC.ContractNegotiated",
		"Participation.Requested",
		"Participation.Recorded",
		"Participation.Recorded",
	}, s.actions())

	s.Equal(NoContract, s.entry("EDC.CatalogResponse").Details["contract_offer"])
	requested := s.entry("Participation.Requested").Details
	s.Equal(activitylog.Details{"VolunteerID": itoa(v.ID), "Name": "Alvaro J."}, requested["volunteer_subset"])

	all := s.entries.All()
	s.Equal(home.Name, all[4].Details["system"])
	s.Equal(host.Name, all[5].Details["system"])
	s.Equal("confirmed", all[5].Details["record"].(map[string]any)["status"])
}

func (s *EngineSuite) TestJoinUsesPublishedContract() {
	v, event, _, _ := s.crossOrgFixture()
	event.ContractID = "abc123abc123"

	_, err := s.engine.Join(s.ctx, v, event)
	s.Require().NoError(err)
	s.Equal("abc123abc123", s.entry("EDC.ContractNegotiated").Details["contract_id"])
}

func (s *EngineSuite) TestNoNarrativeOutsideFederation() {
	s.Run("same organization", func() {
		home := s.org("Mima", true)
		v := &models.Volunteer{Name: "Andrea", OrganizationID: home.ID}
		ran, err := s.engine.Join(s.ctx, v, &models.Event{ID: 1, OrganizationID: home.ID})
		s.Require().NoError(err)
		s.False(ran)
	})

	s.Run("host is not a member", func() {
		home, err := s.store.FindOrganizationByName(s.ctx, "Mima")
		s.Require().NoError(err)
		host := s.org("Food for All", false)
		v := &models.Volunteer{Name: "Andrea", OrganizationID: home.ID}
		ran, err := s.engine.Cancel(s.ctx, v, &models.Event{ID: 1, OrganizationID: host.ID})
		s.Require().NoError(err)
		s.False(ran)
	})

	s.Run("volunteer without organization", func() {
		ran, err := s.engine.Join(s.ctx, &models.Volunteer{Name: "Solo"}, &models.Event{ID: 1, OrganizationID: 1})
		s.Require().NoError(err)
		s.False(ran)
	})

	s.Empty(s.actions())
}

func (s *EngineSuite) TestCancelAcrossMembers() {
	v, event, home, host := s.crossOrgFixture()

	ran, err := s.engine.Cancel(s.ctx, v, event)
	s.Require().NoError(err)
	s.True(ran)
	s.Equal([]string{
		"Participation.Cancelled",
		"Participation.RecordUpdated",
		"Participation.RecordUpdated",
	}, s.actions())

	all := s.entries.All()
	s.Equal(home.Name, all[1].Details["system"])
	s.Equal(host.Name, all[2].Details["system"])
	s.Equal("Alvaro J.", all[0].Details["volunteer_subset"].(activitylog.Details)["Name"])
}

type failingSink struct {
	allowed int
	calls   []string
}

func (f *failingSink) Append(_ context.Context, action string, _ activitylog.Details, _ activitylog.Level) (*activitylog.Entry, error) {
	if len(f.calls) >= f.allowed {
		return nil, dErrors.Wrap(errors.New("disk full"), dErrors.CodeInternal, "failed to append log entry")
	}
	f.calls = append(f.calls, action)
	return &activitylog.Entry{Action: action}, nil
}

func TestSinkFailureAbortsRemainingSteps(t *testing.T) {
	ctx := context.Background()
	store := volstore.NewInMemory()
	home := &models.Organization{Name: "Mima", MemberOfDataspace: true}
	host := &models.Organization{Name: "Red Cross", MemberOfDataspace: true}
	require.NoError(t, store.CreateOrganization(ctx, home))
	require.NoError(t, store.CreateOrganization(ctx, host))

	sink := &failingSink{allowed: 2}
	engine := New(store, sink)

	ran, err := engine.Join(ctx,
		&models.Volunteer{ID: 1, Name: "Alvaro", OrganizationID: home.ID},
		&models.Event{ID: 2, Name: "Flood relief", OrganizationID: host.ID})
	require.Error(t, err)
	assert.False(t, ran)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInternal))
	assert.Equal(t, []string{"EDC.CatalogRequest", "EDC.CatalogResponse"}, sink.calls)
}

func TestReducedName(t *testing.T) {
	cases := map[string]string{
		"Alvaro Juan Gomez": "Alvaro J.",
		"Madonna":           "Madonna",
		"Ana Ñuñez":         "Ana Ñ.",
		"Trailing ":         "Trailing ",
	}
	for in, want := range cases {
		assert.Equal(t, want, ReducedName(in), in)
	}
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}

func (s *EngineSuite) TestCatalog() {
	org := s.org("Mima", true)
	other := s.org("Red Cross", true)
	event := &models.Event{Name: "Flood relief", DurationHours: 8, OrganizationID: org.ID,
		Skills: []models.Skill{{Name: "First Aid"}}}
	s.Require().NoError(s.store.CreateEvent(s.ctx, event))

	catalog, err := s.engine.Catalog(s.ctx, org.ID)
	s.Require().NoError(err)
	s.Equal("Mima", catalog.Organization.Name)
	s.Require().Len(catalog.Endpoints.Events, 1)
	s.Equal(documents.EventEndpoint(org.ConnectorEndpoint, org.ID, event.ID), catalog.Endpoints.Events[0].Endpoint)

	entry, err := s.engine.CatalogEvent(s.ctx, org.ID, event.ID)
	s.Require().NoError(err)
	s.Equal([]string{"First Aid"}, entry.SkillsNeeded)
	s.Equal("Mima", entry.Organization.Name)

	_, err = s.engine.CatalogEvent(s.ctx, other.ID, event.ID)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))

	_, err = s.engine.Catalog(s.ctx, 999)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}
