package handler

import "vms/internal/volunteering/models"

// OrganizationResponse is one entry of the organization list.
type OrganizationResponse struct {
	ID                    int64  `json:"id"`
	Name                  string `json:"name"`
	MemberOfDataspace     bool   `json:"member_of_dataspace"`
	IsGovernanceAuthority bool   `json:"is_governance_authority"`
	ConnectorEndpoint     string `json:"connector_endpoint,omitempty"`
}

// OrganizationsResponse lists organizations.
type OrganizationsResponse struct {
	Organizations []OrganizationResponse `json:"organizations"`
}

func toOrganizationsResponse(orgs []*models.Organization) OrganizationsResponse {
	out := OrganizationsResponse{Organizations: make([]OrganizationResponse, 0, len(orgs))}
	for _, o := range orgs {
		out.Organizations = append(out.Organizations, OrganizationResponse{
			ID:                    o.ID,
			Name:                  o.Name,
			MemberOfDataspace:     o.MemberOfDataspace,
			IsGovernanceAuthority: o.IsGovernanceAuthority,
			ConnectorEndpoint:     o.ConnectorEndpoint,
		})
	}
	return out
}
