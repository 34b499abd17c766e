package credential

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"vms/internal/activitylog"
	"vms/internal/credential/metrics"
	"vms/internal/dataspace/documents"
	"vms/internal/dataspace/mapping"
	"vms/internal/volunteering/models"
	dErrors "vms/pkg/domain-errors"
	"vms/pkg/platform/sentinel"
	"vms/pkg/requestcontext"
)

// Store is the part of the volunteering store the issuer reads and writes.
type Store interface {
	FindVolunteerByID(ctx context.Context, id int64) (*models.Volunteer, error)
	FindOrganizationByID(ctx context.Context, id int64) (*models.Organization, error)
	ListOrganizations(ctx context.Context) ([]*models.Organization, error)
	ListRegisteredEventIDs(ctx context.Context, volunteerID int64) ([]int64, error)
	ListEventsByIDs(ctx context.Context, ids []int64) ([]*models.Event, error)
	FindOrCreateSkill(ctx context.Context, name, escoURI string) (*models.Skill, error)
	CreateCertificate(ctx context.Context, c *models.Certificate) error
}

// Service issues certificates and computes milestone contexts.
type Service struct {
	store   Store
	sink    activitylog.Appender
	logger  *slog.Logger
	metrics *metrics.Metrics
	strict  bool
}

// Option configures the Service.
type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithStrictItems makes Issue check every claimed item against the
// volunteer's registered, finished events before issuing.
func WithStrictItems(strict bool) Option {
	return func(s *Service) {
		s.strict = strict
	}
}

func New(store Store, sink activitylog.Appender, opts ...Option) *Service {
	s := &Service{
		store:  store,
		sink:   sink,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Issue evaluates the claimed items against the milestone and, when reached,
// runs the issuance narrative and stores a certificate. Rejections and
// pending verifications are results, not errors.
func (s *Service) Issue(ctx context.Context, req IssueRequest) (*IssueResult, error) {
	if req.VolunteerID <= 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "volunteer_id is required")
	}
	volunteer, err := s.findVolunteer(ctx, req.VolunteerID)
	if err != nil {
		return nil, err
	}
	home, err := s.homeOrganization(ctx, volunteer)
	if err != nil {
		return nil, err
	}
	homeName := ""
	if home != nil {
		homeName = home.Name
	}

	if s.strict {
		checks, err := s.verify(ctx, volunteer.ID, req.Items)
		if err != nil {
			return nil, err
		}
		if unverified := countUnverified(checks); unverified > 0 {
			s.metrics.IncrementOutcome(StatusPendingVerification)
			s.logger.InfoContext(ctx, "certificate request awaits verification",
				"request_id", requestcontext.RequestID(ctx),
				"volunteer_id", volunteer.ID,
				"unverified", unverified,
			)
			return &IssueResult{
				Status:       StatusPendingVerification,
				Reason:       fmt.Sprintf("%d of %d activities could not be verified", unverified, len(checks)),
				Verification: checks,
			}, nil
		}
	}

	items := certificateItems(req.Items)
	tally := Count(homeName, items)
	if tally.Total < models.MilestoneHours {
		result := &IssueResult{
			Status: StatusRejected,
			Reason: fmt.Sprintf("Need %dh; provided %dh", models.MilestoneHours, tally.Total),
		}
		n := activitylog.NewNarrative(ctx, s.sink)
		n.Warn("Credential.Rejected", activitylog.Details{
			"volunteer": volunteer.Name,
			"reason":    result.Reason,
		})
		if n.Err() != nil {
			return nil, n.Err()
		}
		s.metrics.IncrementOutcome(StatusRejected)
		return result, nil
	}

	return s.issue(ctx, volunteer, home, items, tally)
}

func (s *Service) issue(ctx context.Context, volunteer *models.Volunteer, home *models.Organization, items []models.CertificateItem, tally Tally) (*IssueResult, error) {
	homeName := UnknownProvider
	if home != nil {
		homeName = home.Name
	}
	contractID := ContractID(volunteer.ID, tally.Total)

	n := activitylog.NewNarrative(ctx, s.sink)
	n.Info("EDC.CredentialRequest", activitylog.Message(fmt.Sprintf(
		"%s (via %s) requests volunteer certificate based on %d activities", volunteer.Name, homeName, len(items))))
	n.Info("EDC.ContractNegotiated", activitylog.Details{
		"between":           []string{homeName, "CredentialIssuer"},
		"contract_id":       contractID,
		"purpose":           "credential_issuance",
		"data_minimization": "Only activity IDs, hours and provider attestations shared",
		"retention":         "P36M or until revoked",
	})
	for _, p := range Providers(homeOrgName(home), items) {
		n.Info("EDC.AttestationRequested", activitylog.Message(
			fmt.Sprintf("Requesting hours attestation from %s for %s", p, volunteer.Name)))
		n.Info("EDC.AttestationReceived", activitylog.Message(
			fmt.Sprintf("%s confirms contributed hours for %s under contract %s", p, volunteer.Name, contractID)))
	}
	if n.Err() != nil {
		return nil, n.Err()
	}

	issuer, err := s.issuer(ctx, home)
	if err != nil {
		return nil, err
	}
	proof, err := ProofHash(items)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to hash certificate items")
	}

	cert := &models.Certificate{
		VolunteerID: volunteer.ID,
		Items:       items,
		TotalHours:  tally.Total,
		ProofHash:   proof,
		IssuedAt:    requestcontext.Now(ctx),
	}
	if issuer != nil {
		cert.IssuerOrgID = issuer.ID
	}
	if tally.Recognized >= models.MilestoneHours {
		skill, err := s.store.FindOrCreateSkill(ctx, RecognizedSkill, mapping.SkillReference(RecognizedSkill))
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to resolve recognized skill")
		}
		cert.Skills = []models.Skill{*skill}
	}
	if err := s.store.CreateCertificate(ctx, cert); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to store certificate")
	}

	doc := documents.Certificate(cert)
	doc.Breakdown = &documents.HoursBreakdown{
		Total:         tally.Total,
		FromHomeOrg:   tally.Home,
		FromOtherOrgs: tally.Other,
	}
	if tally.Recognized >= models.MilestoneHours {
		doc.Recognitions = []documents.Recognition{{
			Type:   "schema:CategoryCode",
			Name:   RecognizedSkill,
			Hours:  tally.Recognized,
			Reason: fmt.Sprintf("≥%dh using %s across volunteer events", models.MilestoneHours, RecognizedSkill),
		}}
	}

	issuerName := UnknownProvider
	if issuer != nil {
		issuerName = issuer.Name
	}
	n.Info("Credential.Issued", activitylog.Details{
		"message":        fmt.Sprintf("Issued Volunteer Certificate %d to %s by %s", cert.ID, volunteer.Name, issuerName),
		"certificate_id": cert.ID,
		"proof_hash":     proof,
	})
	n.Info("EDC.CredentialDelivered", activitylog.Message(
		fmt.Sprintf("Certificate %d delivered to %s (holder)", cert.ID, homeName)))
	if n.Err() != nil {
		return nil, n.Err()
	}

	s.metrics.IncrementOutcome(StatusIssued)
	s.metrics.ObserveHours(tally.Total)
	s.logger.InfoContext(ctx, "certificate issued",
		"request_id", requestcontext.RequestID(ctx),
		"volunteer_id", volunteer.ID,
		"certificate_id", cert.ID,
		"total_hours", tally.Total,
	)
	return &IssueResult{
		Status:      StatusIssued,
		ContractID:  contractID,
		Certificate: &doc,
	}, nil
}

// Context computes the milestone context over the volunteer's registered,
// finished events and marks the greedy subset that reaches the milestone.
func (s *Service) Context(ctx context.Context, volunteerID int64) (*MilestoneContext, error) {
	volunteer, err := s.findVolunteer(ctx, volunteerID)
	if err != nil {
		return nil, err
	}
	home, err := s.homeOrganization(ctx, volunteer)
	if err != nil {
		return nil, err
	}
	events, err := s.finishedEvents(ctx, volunteer.ID)
	if err != nil {
		return nil, err
	}
	providers, err := s.providerNames(ctx)
	if err != nil {
		return nil, err
	}

	out := &MilestoneContext{Activities: make([]Activity, 0, len(events))}
	for _, e := range events {
		provider, ok := providers[e.OrganizationID]
		if !ok {
			provider = UnknownProvider
		}
		out.TotalHours += e.DurationHours
		if home != nil && e.OrganizationID == home.ID {
			out.HoursByPlatform.Home += e.DurationHours
		} else {
			out.HoursByPlatform.Remote += e.DurationHours
		}
		skills := e.SkillNames()
		out.Activities = append(out.Activities, Activity{
			ID:       strconv.FormatInt(e.ID, 10),
			Title:    e.Name,
			Hours:    e.DurationHours,
			Provider: provider,
			Skills:   skills,
		})
	}

	out.Eligible = out.TotalHours >= models.MilestoneHours
	if out.Eligible {
		picked, sum := MinimalSubset(models.MilestoneHours, out.Activities)
		out.ContribSum = sum
		for i := range out.Activities {
			out.Activities[i].Contributes = picked[out.Activities[i].ID]
		}
	}
	return out, nil
}

func (s *Service) verify(ctx context.Context, volunteerID int64, items []Item) ([]ItemVerification, error) {
	events, err := s.finishedEvents(ctx, volunteerID)
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]*models.Event, len(events))
	for _, e := range events {
		byID[e.ID] = e
	}

	checks := make([]ItemVerification, 0, len(items))
	for _, it := range items {
		check := ItemVerification{EventID: it.EventID, Verified: true}
		event, ok := byID[it.EventID]
		switch {
		case !ok:
			check.Verified = false
			check.Reason = "not a finished event the volunteer registered for"
		case it.Hours != event.DurationHours:
			check.Verified = false
			check.Reason = fmt.Sprintf("claimed %dh; event lasted %dh", it.Hours, event.DurationHours)
		}
		checks = append(checks, check)
	}
	return checks, nil
}

func countUnverified(checks []ItemVerification) int {
	n := 0
	for _, c := range checks {
		if !c.Verified {
			n++
		}
	}
	return n
}

func certificateItems(items []Item) []models.CertificateItem {
	out := make([]models.CertificateItem, 0, len(items))
	for _, it := range items {
		provider := strings.TrimSpace(it.Provider)
		if provider == "" {
			provider = UnknownProvider
		}
		skills := it.Skills
		if skills == nil {
			skills = []string{}
		}
		out = append(out, models.CertificateItem{
			EventID:   it.EventID,
			EventName: it.Title,
			Hours:     it.Hours,
			Provider:  provider,
			Skills:    skills,
		})
	}
	return out
}

func homeOrgName(home *models.Organization) string {
	if home == nil {
		return ""
	}
	return home.Name
}

// issuer is the first governance authority, else the home organization.
func (s *Service) issuer(ctx context.Context, home *models.Organization) (*models.Organization, error) {
	orgs, err := s.store.ListOrganizations(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list organizations")
	}
	for _, o := range orgs {
		if o.IsGovernanceAuthority {
			return o, nil
		}
	}
	return home, nil
}

func (s *Service) finishedEvents(ctx context.Context, volunteerID int64) ([]*models.Event, error) {
	ids, err := s.store.ListRegisteredEventIDs(ctx, volunteerID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list registrations")
	}
	if len(ids) == 0 {
		return nil, nil
	}
	events, err := s.store.ListEventsByIDs(ctx, ids)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load registered events")
	}
	finished := events[:0]
	for _, e := range events {
		if e.IsFinished {
			finished = append(finished, e)
		}
	}
	return finished, nil
}

func (s *Service) providerNames(ctx context.Context) (map[int64]string, error) {
	orgs, err := s.store.ListOrganizations(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list organizations")
	}
	names := make(map[int64]string, len(orgs))
	for _, o := range orgs {
		names[o.ID] = o.Name
	}
	return names, nil
}

func (s *Service) findVolunteer(ctx context.Context, id int64) (*models.Volunteer, error) {
	v, err := s.store.FindVolunteerByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "volunteer not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load volunteer")
	}
	return v, nil
}

func (s *Service) homeOrganization(ctx context.Context, v *models.Volunteer) (*models.Organization, error) {
	if !v.HasOrganization() {
		return nil, nil
	}
	org, err := s.store.FindOrganizationByID(ctx, v.OrganizationID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, nil
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load organization")
	}
	return org, nil
}
