package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"vms/internal/dataspace/documents"
	"vms/internal/dataspace/federation"
	"vms/internal/dataspace/handler/mocks"
	"vms/internal/platform/middleware"
	"vms/internal/volunteering/models"
	dErrors "vms/pkg/domain-errors"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service

type staticValidator struct{}

func (staticValidator) ValidateToken(token string) (*middleware.SessionClaims, error) {
	if token != "valid" {
		return nil, errors.New("bad token")
	}
	return &middleware.SessionClaims{VolunteerID: 7, SessionID: "sess-1"}, nil
}

type DataspaceHandlerSuite struct {
	suite.Suite
	service *mocks.MockService
	router  http.Handler
}

func TestDataspaceHandlerSuite(t *testing.T) {
	suite.Run(t, new(DataspaceHandlerSuite))
}

func (s *DataspaceHandlerSuite) SetupTest() {
	ctrl := gomock.NewController(s.T())
	s.service = mocks.NewMockService(ctrl)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	New(s.service, logger, staticValidator{}).Register(r)
	s.router = r
}

func (s *DataspaceHandlerSuite) do(method, path string, body any, token string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		s.Require().NoError(err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *DataspaceHandlerSuite) TestOnboardApproved() {
	body := map[string]any{
		"name":               " Mima ",
		"contact_email":      "ops@mima.example",
		"connector_endpoint": "https://edc.mima.example/",
		"catalog_sample": []map[string]any{
			{"title": "Flood relief", "hours": 20, "skills": []string{"First Aid"}},
		},
		"extra": "kept",
	}
	s.service.EXPECT().Onboard(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, req federation.OnboardingRequest) (*federation.OnboardingResult, error) {
			s.Equal("Mima", req.Name)
			s.Equal("kept", req.Raw["extra"])
			s.Require().Len(req.CatalogSample, 1)
			s.Equal([]string{"First Aid"}, req.CatalogSample[0].Skills)
			return &federation.OnboardingResult{Status: federation.StatusApproved, OrganizationID: 3}, nil
		})

	rec := s.do(http.MethodPost, "/api/onboard-organization", body, "valid")
	s.Equal(http.StatusOK, rec.Code)

	var resp map[string]any
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	s.Equal("approved", resp["status"])
	s.Equal(float64(3), resp["organization_id"])
}

func (s *DataspaceHandlerSuite) TestOnboardRejectedIsBadRequest() {
	s.service.EXPECT().Onboard(gomock.Any(), gomock.Any()).Return(&federation.OnboardingResult{
		Status: federation.StatusRejected,
		Reason: "Missing fields: contact_email",
	}, nil)

	rec := s.do(http.MethodPost, "/api/onboard-organization", map[string]any{"name": "Mima"}, "valid")
	s.Equal(http.StatusBadRequest, rec.Code)

	var resp map[string]any
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	s.Equal("rejected", resp["status"])
	s.Equal("Missing fields: contact_email", resp["reason"])
}

func (s *DataspaceHandlerSuite) TestOnboardRequiresSession() {
	rec := s.do(http.MethodPost, "/api/onboard-organization", map[string]any{"name": "Mima"}, "")
	s.Equal(http.StatusUnauthorized, rec.Code)

	rec = s.do(http.MethodPost, "/api/onboard-organization", map[string]any{"name": "Mima"}, "forged")
	s.Equal(http.StatusUnauthorized, rec.Code)
}

func (s *DataspaceHandlerSuite) TestOnboardRejectsMalformedBody() {
	rejected := func(_ context.Context, detail string) (*federation.OnboardingResult, error) {
		return &federation.OnboardingResult{Status: federation.StatusRejected, Reason: "Malformed request: " + detail}, nil
	}

	s.Run("undecodable body", func() {
		s.service.EXPECT().RejectMalformed(gomock.Any(), "invalid json payload").DoAndReturn(rejected)

		rec := s.do(http.MethodPost, "/api/onboard-organization", []string{"not", "an", "object"}, "valid")
		s.Equal(http.StatusBadRequest, rec.Code)

		var resp map[string]any
		s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
		s.Equal("rejected", resp["status"])
		s.Equal("Malformed request: invalid json payload", resp["reason"])
	})

	s.Run("invalid catalog sample", func() {
		s.service.EXPECT().RejectMalformed(gomock.Any(), "catalog_sample hours must not be negative").DoAndReturn(rejected)

		rec := s.do(http.MethodPost, "/api/onboard-organization", map[string]any{
			"name":           "Mima",
			"catalog_sample": []map[string]any{{"title": "x", "hours": -1}},
		}, "valid")
		s.Equal(http.StatusBadRequest, rec.Code)

		var resp map[string]any
		s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
		s.Equal("rejected", resp["status"])
	})

	s.Run("sink failure", func() {
		s.service.EXPECT().RejectMalformed(gomock.Any(), gomock.Any()).
			Return(nil, dErrors.Wrap(errors.New("log down"), dErrors.CodeInternal, "failed to append log entry"))

		rec := s.do(http.MethodPost, "/api/onboard-organization", []string{"x"}, "valid")
		s.Equal(http.StatusInternalServerError, rec.Code)
	})
}

func (s *DataspaceHandlerSuite) TestOnboardStoreFailure() {
	s.service.EXPECT().Onboard(gomock.Any(), gomock.Any()).
		Return(nil, dErrors.Wrap(errors.New("db down"), dErrors.CodeInternal, "failed to save organization"))

	rec := s.do(http.MethodPost, "/api/onboard-organization", map[string]any{"name": "Mima"}, "valid")
	s.Equal(http.StatusInternalServerError, rec.Code)
}

func (s *DataspaceHandlerSuite) TestListOrganizations() {
	s.service.EXPECT().Organizations(gomock.Any()).Return([]*models.Organization{
		{ID: 1, Name: "Mima", MemberOfDataspace: true},
		{ID: 2, Name: "Food for All"},
	}, nil)

	rec := s.do(http.MethodGet, "/api/orgs", nil, "")
	s.Equal(http.StatusOK, rec.Code)

	var resp OrganizationsResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	s.Require().Len(resp.Organizations, 2)
	s.True(resp.Organizations[0].MemberOfDataspace)
	s.Equal("Food for All", resp.Organizations[1].Name)
}

func (s *DataspaceHandlerSuite) TestCatalog() {
	org := &models.Organization{ID: 4, Name: "Mima", ConnectorEndpoint: "https://edc.mima.example"}
	s.service.EXPECT().Catalog(gomock.Any(), int64(4)).Return(&federation.Catalog{
		Organization: documents.Organization(org),
		Endpoints:    federation.CatalogEndpoints(org, []*models.Event{{ID: 9, Name: "Flood relief"}}),
	}, nil)

	rec := s.do(http.MethodGet, "/api/catalog/4", nil, "")
	s.Equal(http.StatusOK, rec.Code)

	var resp map[string]any
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	endpoints := resp["endpoints"].(map[string]any)
	s.Equal("https://edc.mima.example/api/catalog/4/", endpoints["catalog"])
	s.Equal("Mima", resp["org"].(map[string]any)["schema:name"])
}

func (s *DataspaceHandlerSuite) TestCatalogEvent() {
	org := &models.Organization{ID: 4, Name: "Mima"}
	event := &models.Event{ID: 9, Name: "Flood relief", DurationHours: 4, OrganizationID: 4}
	s.service.EXPECT().CatalogEvent(gomock.Any(), int64(4), int64(9)).Return(&federation.CatalogEvent{
		EventDocument: documents.Event(org, event),
		SkillsNeeded:  []string{"First Aid"},
		Organization:  documents.Organization(org),
	}, nil)

	rec := s.do(http.MethodGet, "/api/catalog/4/events/9", nil, "")
	s.Equal(http.StatusOK, rec.Code)

	var resp map[string]any
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	s.Equal("Flood relief", resp["schema:name"])
	s.Equal("PT4H", resp["schema:duration"])
	s.Equal([]any{"First Aid"}, resp["skills_needed"])
}

func (s *DataspaceHandlerSuite) TestCatalogErrors() {
	s.Run("non numeric id", func() {
		rec := s.do(http.MethodGet, "/api/catalog/mima", nil, "")
		s.Equal(http.StatusBadRequest, rec.Code)
	})
	s.Run("unknown organization", func() {
		s.service.EXPECT().Catalog(gomock.Any(), int64(99)).
			Return(nil, dErrors.New(dErrors.CodeNotFound, "organization not found"))
		rec := s.do(http.MethodGet, "/api/catalog/99", nil, "")
		s.Equal(http.StatusNotFound, rec.Code)
	})
}

func TestOnboardRequestKeepsRawBody(t *testing.T) {
	var req OnboardRequest
	require.NoError(t, json.Unmarshal([]byte(`{"name":"Mima","privacy_policy_url":" https://mima.example/p ","custom":1}`), &req))
	require.NoError(t, req.Validate())

	domain := req.ToDomain()
	assert.Equal(t, "https://mima.example/p", domain.PrivacyPolicyURL)
	assert.Equal(t, float64(1), domain.Raw["custom"])
	assert.Empty(t, domain.CatalogSample)
}
