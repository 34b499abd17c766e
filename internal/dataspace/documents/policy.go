package documents

import (
	"vms/internal/volunteering/models"
)

// ODRLContext is the @context of usage policies.
const ODRLContext = "http://www.w3.org/ns/odrl.jsonld"

// Constraint is an ODRL constraint expression.
type Constraint struct {
	LeftOperand  string `json:"leftOperand"`
	Operator     string `json:"operator"`
	RightOperand string `json:"rightOperand"`
}

// Action is a permitted ODRL action.
type Action struct {
	Type string `json:"type"`
}

// Permission grants actions on a target under constraints.
type Permission struct {
	Target     string       `json:"target"`
	Action     []Action     `json:"action"`
	Constraint []Constraint `json:"constraint"`
}

// Duty is an obligation the consumer takes on.
type Duty struct {
	Action     string     `json:"action"`
	Constraint Constraint `json:"constraint"`
}

// UsagePolicy is the ODRL policy set attached to a shared event.
type UsagePolicy struct {
	Context    string       `json:"@context"`
	Type       string       `json:"@type"`
	ID         string       `json:"@id"`
	Permission []Permission `json:"permission"`
	Duty       []Duty       `json:"duty"`
}

// Policy builds the usage policy of an event. The audience constraint is added
// only for local-first events.
func Policy(org *models.Organization, event *models.Event) UsagePolicy {
	constraints := []Constraint{
		{LeftOperand: "purpose", Operator: "eq", RightOperand: "volunteer_matching"},
		{LeftOperand: "retention", Operator: "lte", RightOperand: "P6M"},
	}
	if event.PrioritizeLocal {
		constraints = append(constraints, Constraint{
			LeftOperand: "audience", Operator: "eq", RightOperand: "org:" + itoa(org.ID),
		})
	}
	return UsagePolicy{
		Context: ODRLContext,
		Type:    "Set",
		ID:      "urn:policy:" + PolicyID(org.ID, event.ID),
		Permission: []Permission{{
			Target:     "urn:edc:asset:" + AssetID(org.ID, event.ID),
			Action:     []Action{{Type: "use"}, {Type: "read"}, {Type: "access"}},
			Constraint: constraints,
		}},
		Duty: []Duty{{
			Action:     "deleteAfter",
			Constraint: Constraint{LeftOperand: "state", Operator: "eq", RightOperand: "event_finished"},
		}},
	}
}

// DataAddress tells a consumer connector where to fetch the asset.
type DataAddress struct {
	Type        string `json:"@type"`
	Kind        string `json:"edc:type"`
	BaseURL     string `json:"edc:baseUrl"`
	ProxyMethod bool   `json:"edc:proxyMethod"`
	ProxyPath   bool   `json:"edc:proxyPath"`
}

// AssetProperties describe the asset content.
type AssetProperties struct {
	ContentType    string `json:"edc:contentType"`
	EventID        string `json:"vms:eventId"`
	OrganizationID string `json:"vms:organizationId"`
}

// Asset is the connector catalog entry of a shared event.
type Asset struct {
	Type        string          `json:"@type"`
	AssetID     string          `json:"edc:assetId"`
	DataAddress DataAddress     `json:"edc:dataAddress"`
	Properties  AssetProperties `json:"edc:properties"`
}

// ContractOffer offers an asset under a usage policy.
type ContractOffer struct {
	Type    string      `json:"@type"`
	OfferID string      `json:"edc:offerId"`
	AssetID string      `json:"edc:assetId"`
	Policy  UsagePolicy `json:"edc:policy"`
}

// Publication is everything registered on the connector for one shared event.
type Publication struct {
	Endpoint   string
	AssetID    string
	ContractID string
	Asset      Asset
	Policy     UsagePolicy
	Offer      ContractOffer
}

// Publish derives the asset, policy and contract offer of an event. It relies
// on the persisted event id, so repeated calls return identical documents.
func Publish(org *models.Organization, event *models.Event) Publication {
	endpoint := EventEndpoint(org.ConnectorEndpoint, org.ID, event.ID)
	assetID := AssetID(org.ID, event.ID)
	offerID := OfferID(org.ID, event.ID)
	policy := Policy(org, event)

	return Publication{
		Endpoint:   endpoint,
		AssetID:    assetID,
		ContractID: offerID,
		Asset: Asset{
			Type:    "edc:AssetEntryDto",
			AssetID: assetID,
			DataAddress: DataAddress{
				Type:        "edc:DataAddress",
				Kind:        "HttpData",
				BaseURL:     endpoint,
				ProxyMethod: true,
				ProxyPath:   true,
			},
			Properties: AssetProperties{
				ContentType:    "application/ld+json",
				EventID:        itoa(event.ID),
				OrganizationID: itoa(org.ID),
			},
		},
		Policy: policy,
		Offer: ContractOffer{
			Type:    "edc:ContractOfferDescription",
			OfferID: offerID,
			AssetID: assetID,
			Policy:  policy,
		},
	}
}
