package credential

import (
	"context"
	"crypto/sha1" //nolint:gosec
	"encoding/hex"
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
)

type IssuerSuite struct {
	suite.Suite
	ctx       context.Context
	store     *volstore.InMemoryStore
	entries   *logstore.InMemory
	service   *Service
	home      *models.Organization
	redCross  *models.Organization
	authority *models.Organization
	volunteer *models.Volunteer
}

func TestIssuerSuite(t *testing.T) {
	suite.Run(t, new(IssuerSuite))
}

func (s *IssuerSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = volstore.NewInMemory()
	s.entries = logstore.NewInMemory()
	s.service = New(s.store, activitylog.New(s.entries))

	s.home = s.org("Mima", false)
	s.redCross = s.org("Red Cross", false)
	s.authority = s.org("DSGA", true)
	s.volunteer = &models.Volunteer{Name: "Alvaro Juan Gomez", OrganizationID: s.home.ID}
	s.Require().NoError(s.store.CreateVolunteer(s.ctx, s.volunteer))
}

func (s *IssuerSuite) org(name string, authority bool) *models.Organization {
	o := &models.Organization{Name: name, MemberOfDataspace: true, IsGovernanceAuthority: authority}
	s.Require().NoError(s.store.CreateOrganization(s.ctx, o))
	return o
}

func (s *IssuerSuite) actions() []string {
	var out []string
	for _, e := range s.entries.All() {
		out = append(out, e.Action)
	}
	return out
}

func (s *IssuerSuite) finishedEvent(org *models.Organization, hours int, finished bool, skills ...string) *models.Event {
	e := &models.Event{
		Name:           "Event " + strconv.Itoa(hours),
		DurationHours:  hours,
		OrganizationID: org.ID,
		IsFinished:     finished,
	}
	for _, label := range skills {
		sk, err := s.store.FindOrCreateSkill(s.ctx, label, mapping.SkillURI(label))
		s.Require().NoError(err)
		e.Skills = append(e.Skills, *sk)
	}
	s.Require().NoError(s.store.CreateEvent(s.ctx, e))
	s.Require().NoError(s.store.AddRegistration(s.ctx, s.volunteer.ID, e.ID))
	return e
}

func (s *IssuerSuite) TestBelowMilestoneIsRejected() {
	result, err := s.service.Issue(s.ctx, IssueRequest{
		VolunteerID: s.volunteer.ID,
		Items: []Item{
			{EventID: 1, Hours: 50, Provider: "Mima"},
			{EventID: 2, Hours: 40, Provider: "Red Cross"},
		},
	})
	s.Require().NoError(err)
	s.False(result.Issued())
	s.Equal(StatusRejected, result.Status)
	s.Equal("Need 100h; provided 90h", result.Reason)

	certs, err := s.store.ListCertificatesByVolunteer(s.ctx, s.volunteer.ID)
	s.Require().NoError(err)
	s.Empty(certs)
	s.Equal([]string{"Credential.Rejected"}, s.actions())
	s.Equal(activitylog.LevelWarn, s.entries.All()[0].Level)
}

func (s *IssuerSuite) TestIssueRunsNarrative() {
	result, err := s.service.Issue(s.ctx, IssueRequest{
		VolunteerID: s.volunteer.ID,
		Items: []Item{
			{EventID: 1, Title: "Flood relief", Hours: 40, Provider: "Mima", Skills: []string{"First Aid"}},
			{EventID: 2, Title: "Blood drive", Hours: 30, Provider: "Red Cross", Skills: []string{"first aid"}},
			{EventID: 3, Title: "Soup kitchen", Hours: 40, Provider: "Food for All"},
		},
	})
	s.Require().NoError(err)
	s.Require().True(result.Issued())
	s.Equal(ContractID(s.volunteer.ID, 110), result.ContractID)
	s.Equal(documents.ShortID("credential-"+strconv.FormatInt(s.volunteer.ID, 10)+"-110"), result.ContractID)

	s.Equal([]string{
		"EDC.CredentialRequest",
		"EDC.ContractNegotiated",
		"EDC.AttestationRequested",
		"EDC.AttestationReceived",
		"EDC.AttestationRequested",
		"EDC.AttestationReceived",
		"Credential.Issued",
		"EDC.CredentialDelivered",
	}, s.actions())
	all := s.entries.All()
	s.Contains(all[2].Details["message"], "Food for All")
	s.Contains(all[4].Details["message"], "Red Cross")

	cert := result.Certificate
	s.Require().NotNil(cert.RecognizedBy)
	s.Equal(documents.Organization(s.authority).ID, cert.RecognizedBy.ID)
	s.Equal(&documents.HoursBreakdown{Total: 110, FromHomeOrg: 40, FromOtherOrgs: 70}, cert.Breakdown)
	s.Empty(cert.Recognitions)
	s.Empty(cert.Skills)

	certs, err := s.store.ListCertificatesByVolunteer(s.ctx, s.volunteer.ID)
	s.Require().NoError(err)
	s.Require().Len(certs, 1)
	s.Equal(110, certs[0].TotalHours)
	s.Equal(s.authority.ID, certs[0].IssuerOrgID)
}

func (s *IssuerSuite) TestRecognitionAttachesSkill() {
	result, err := s.service.Issue(s.ctx, IssueRequest{
		VolunteerID: s.volunteer.ID,
		Items: []Item{
			{EventID: 1, Hours: 60, Provider: "Mima", Skills: []string{"FIRST AID"}},
			{EventID: 2, Hours: 40, Provider: "Mima", Skills: []string{" First Aid "}},
		},
	})
	s.Require().NoError(err)
	s.Require().True(result.Issued())
	s.Require().Len(result.Certificate.Recognitions, 1)
	s.Equal(100, result.Certificate.Recognitions[0].Hours)
	s.Require().Len(result.Certificate.Skills, 1)
	s.Equal(mapping.SkillURI(RecognizedSkill), result.Certificate.Skills[0].ID)
	s.NotContains(s.actions(), "EDC.AttestationRequested")
}

func (s *IssuerSuite) TestSameItemsSameProof() {
	req := IssueRequest{
		VolunteerID: s.volunteer.ID,
		Items:       []Item{{EventID: 7, Title: "Marathon", Hours: 120, Provider: "Red Cross"}},
	}
	first, err := s.service.Issue(s.ctx, req)
	s.Require().NoError(err)
	second, err := s.service.Issue(s.ctx, req)
	s.Require().NoError(err)

	s.Equal(first.Certificate.ProofHash, second.Certificate.ProofHash)
	s.NotEqual(first.Certificate.ID, second.Certificate.ID)
}

func (s *IssuerSuite) TestIssuerFallsBackToHome() {
	store := volstore.NewInMemory()
	home := &models.Organization{Name: "Mima"}
	s.Require().NoError(store.CreateOrganization(s.ctx, home))
	v := &models.Volunteer{Name: "Andrea", OrganizationID: home.ID}
	s.Require().NoError(store.CreateVolunteer(s.ctx, v))

	svc := New(store, activitylog.New(logstore.NewInMemory()))
	result, err := svc.Issue(s.ctx, IssueRequest{VolunteerID: v.ID, Items: []Item{{EventID: 1, Hours: 100, Provider: "Mima"}}})
	s.Require().NoError(err)
	s.Equal(documents.Organization(home).ID, result.Certificate.RecognizedBy.ID)
}

func (s *IssuerSuite) TestUnknownVolunteer() {
	_, err := s.service.Issue(s.ctx, IssueRequest{VolunteerID: 999})
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))

	_, err = s.service.Issue(s.ctx, IssueRequest{})
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))

	_, err = s.service.Context(s.ctx, 999)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *IssuerSuite) TestStrictItems() {
	strict := New(s.store, activitylog.New(s.entries), WithStrictItems(true))
	done := s.finishedEvent(s.redCross, 100, true)
	pending := s.finishedEvent(s.redCross, 20, false)

	s.Run("unverified items hold the certificate", func() {
		result, err := strict.Issue(s.ctx, IssueRequest{
			VolunteerID: s.volunteer.ID,
			Items: []Item{
				{EventID: done.ID, Hours: 100, Provider: "Red Cross"},
				{EventID: pending.ID, Hours: 20, Provider: "Red Cross"},
				{EventID: 4242, Hours: 10, Provider: "Red Cross"},
			},
		})
		s.Require().NoError(err)
		s.Equal(StatusPendingVerification, result.Status)
		s.Require().Len(result.Verification, 3)
		s.True(result.Verification[0].Verified)
		s.False(result.Verification[1].Verified)
		s.False(result.Verification[2].Verified)
		s.Empty(s.actions())
	})

	s.Run("inflated hours are not verified", func() {
		result, err := strict.Issue(s.ctx, IssueRequest{
			VolunteerID: s.volunteer.ID,
			Items:       []Item{{EventID: done.ID, Hours: 150, Provider: "Red Cross"}},
		})
		s.Require().NoError(err)
		s.Equal(StatusPendingVerification, result.Status)
		s.Contains(result.Verification[0].Reason, "150h")
	})

	s.Run("verified items are issued", func() {
		result, err := strict.Issue(s.ctx, IssueRequest{
			VolunteerID: s.volunteer.ID,
			Items:       []Item{{EventID: done.ID, Hours: 100, Provider: "Red Cross"}},
		})
		s.Require().NoError(err)
		s.True(result.Issued())
	})
}

func (s *IssuerSuite) TestContextSelectsGreedySubset() {
	for _, h := range []int{10, 40, 15, 30, 20} {
		s.finishedEvent(s.redCross, h, true)
	}
	s.finishedEvent(s.home, 50, false)

	ctx, err := s.service.Context(s.ctx, s.volunteer.ID)
	s.Require().NoError(err)
	s.Equal(115, ctx.TotalHours)
	s.True(ctx.Eligible)
	s.Equal(105, ctx.ContribSum)
	s.Equal(HoursByPlatform{Home: 0, Remote: 115}, ctx.HoursByPlatform)

	contributing := map[int]bool{}
	for _, a := range ctx.Activities {
		s.Equal("Red Cross", a.Provider)
		contributing[a.Hours] = a.Contributes
	}
	s.Equal(map[int]bool{40: true, 30: true, 20: true, 15: true, 10: false}, contributing)
}

func (s *IssuerSuite) TestContextBelowMilestone() {
	s.finishedEvent(s.home, 30, true, "First Aid")

	ctx, err := s.service.Context(s.ctx, s.volunteer.ID)
	s.Require().NoError(err)
	s.False(ctx.Eligible)
	s.Zero(ctx.ContribSum)
	s.Require().Len(ctx.Activities, 1)
	s.False(ctx.Activities[0].Contributes)
	s.Equal([]string{"First Aid"}, ctx.Activities[0].Skills)
	s.Equal(30, ctx.HoursByPlatform.Home)
}

func TestMinimalSubset(t *testing.T) {
	activities := []Activity{
		{ID: "a", Hours: 40}, {ID: "b", Hours: 30}, {ID: "c", Hours: 20}, {ID: "d", Hours: 15}, {ID: "e", Hours: 10},
	}
	picked, total := MinimalSubset(100, activities)
	assert.Equal(t, map[string]bool{"a": true, "b": true, "c": true, "d": true}, picked)
	assert.Equal(t, 105, total)

	picked, total = MinimalSubset(100, []Activity{{ID: "x", Hours: 20}})
	assert.Equal(t, map[string]bool{"x": true}, picked)
	assert.Equal(t, 20, total)
}

func TestProofHashIsStable(t *testing.T) {
	items := []models.CertificateItem{{EventID: 3, EventName: "Flood relief", Hours: 8, Provider: "Mima", Skills: []string{"First Aid"}}}
	got, err := ProofHash(items)
	require.NoError(t, err)

	sum := sha1.Sum([]byte(`[{"event_id":3,"event_name":"Flood relief","hours":8,"provider":"Mima","skills":["First Aid"]}]`)) //nolint:gosec
	assert.Equal(t, hex.EncodeToString(sum[:]), got)
}

func TestCount(t *testing.T) {
	items := []models.CertificateItem{
		{Hours: 10, Provider: "Mima", Skills: []string{"first aid"}},
		{Hours: 5, Provider: "Red Cross"},
	}
	assert.Equal(t, Tally{Total: 15, Home: 10, Other: 5, Recognized: 10}, Count("Mima", items))
	assert.Equal(t, Tally{Total: 15, Home: 0, Other: 15, Recognized: 10}, Count("", items))
	assert.Equal(t, []string{"Red Cross"}, Providers("Mima", items))
}
