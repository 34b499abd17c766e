package handler

import (
	"encoding/json"
	"strings"

	"vms/internal/dataspace/federation"
	"vms/internal/dataspace/mapping"
	dErrors "vms/pkg/domain-errors"
)

// OnboardRequest is an organization's onboarding application. Missing required
// fields are not a decoding error: the onboarding scenario rejects them itself.
type OnboardRequest struct {
	Name                  string              `json:"name"`
	ContactEmail          string              `json:"contact_email"`
	ConnectorEndpoint     string              `json:"connector_endpoint"`
	CertificateThumbprint string              `json:"certificate_thumbprint"`
	PrivacyPolicyURL      string              `json:"privacy_policy_url"`
	URL                   string              `json:"url"`
	Description           string              `json:"description"`
	CatalogSample         []CatalogSampleItem `json:"catalog_sample"`

	raw map[string]any
}

// CatalogSampleItem is one event of the applicant's catalog sample.
type CatalogSampleItem struct {
	Title  string   `json:"title"`
	Hours  int      `json:"hours"`
	Skills []string `json:"skills"`
}

// UnmarshalJSON keeps the submitted object alongside the typed fields.
func (r *OnboardRequest) UnmarshalJSON(data []byte) error {
	type plain OnboardRequest
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*r = OnboardRequest(p)
	r.raw = raw
	return nil
}

// Validate trims the text fields and rejects malformed catalog samples.
func (r *OnboardRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	r.ContactEmail = strings.TrimSpace(r.ContactEmail)
	r.ConnectorEndpoint = strings.TrimSpace(r.ConnectorEndpoint)
	r.CertificateThumbprint = strings.TrimSpace(r.CertificateThumbprint)
	r.PrivacyPolicyURL = strings.TrimSpace(r.PrivacyPolicyURL)
	r.URL = strings.TrimSpace(r.URL)
	r.Description = strings.TrimSpace(r.Description)
	for _, item := range r.CatalogSample {
		if item.Hours < 0 {
			return dErrors.New(dErrors.CodeValidation, "catalog_sample hours must not be negative")
		}
	}
	return nil
}

// ToDomain converts the request for the onboarding scenario.
func (r *OnboardRequest) ToDomain() federation.OnboardingRequest {
	sample := make([]mapping.CatalogItem, 0, len(r.CatalogSample))
	for _, item := range r.CatalogSample {
		sample = append(sample, mapping.CatalogItem{Title: item.Title, Hours: item.Hours, Skills: item.Skills})
	}
	return federation.OnboardingRequest{
		Name:                  r.Name,
		ContactEmail:          r.ContactEmail,
		ConnectorEndpoint:     r.ConnectorEndpoint,
		CertificateThumbprint: r.CertificateThumbprint,
		PrivacyPolicyURL:      r.PrivacyPolicyURL,
		URL:                   r.URL,
		Description:           r.Description,
		CatalogSample:         sample,
		Raw:                   r.raw,
	}
}
