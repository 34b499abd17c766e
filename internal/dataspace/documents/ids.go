// Package documents builds the JSON-LD style documents exchanged in the
// dataspace: organization, event, volunteer and certificate profiles, and the
// asset, usage policy and contract offer registered for a shared event.
//
// Builders are pure. Identifiers derived from an (organization, event) pair are
// stable, so republishing an event yields the same asset, offer and policy ids.
package documents

import (
	"crypto/sha1" //nolint:gosec // identifiers only, not a security boundary
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
)

// BaseURI prefixes every document identifier.
const BaseURI = "https://vms.example.org"

const shortIDLength = 12

// ShortID returns the first 12 hex characters of the SHA-1 digest of s.
func ShortID(s string) string {
	return Digest(s)[:shortIDLength]
}

// Digest returns the full SHA-1 hex digest of s.
func Digest(s string) string {
	sum := sha1.Sum([]byte(s)) //nolint:gosec
	return hex.EncodeToString(sum[:])
}

// AssetID is the catalog asset id of an event.
func AssetID(orgID, eventID int64) string {
	return ShortID(fmt.Sprintf("asset-%d-%d", orgID, eventID))
}

// OfferID is the contract offer id of an event.
func OfferID(orgID, eventID int64) string {
	return ShortID(fmt.Sprintf("offer-%d-%d", orgID, eventID))
}

// PolicyID is the usage policy id of an event.
func PolicyID(orgID, eventID int64) string {
	return ShortID(fmt.Sprintf("policy-%d-%d", orgID, eventID))
}

// ISODuration renders whole hours as an ISO-8601 duration, at least one hour.
func ISODuration(hours int) string {
	if hours < 1 {
		hours = 1
	}
	return fmt.Sprintf("PT%dH", hours)
}

// CatalogURL is the catalog endpoint an organization exposes through its connector.
func CatalogURL(connector string, orgID int64) string {
	return fmt.Sprintf("%s/api/catalog/%d/", strings.TrimRight(connector, "/"), orgID)
}

// EventEndpoint is the catalog endpoint of a single event.
func EventEndpoint(connector string, orgID, eventID int64) string {
	return fmt.Sprintf("%s/api/catalog/%d/events/%d/", strings.TrimRight(connector, "/"), orgID, eventID)
}

func orgURI(id int64) string       { return fmt.Sprintf("%s/orgs/%d", BaseURI, id) }
func eventURI(id int64) string     { return fmt.Sprintf("%s/events/%d", BaseURI, id) }
func volunteerURI(id int64) string { return fmt.Sprintf("%s/volunteers/%d", BaseURI, id) }
func certURI(id int64) string      { return fmt.Sprintf("%s/certs/%d", BaseURI, id) }
func skillURI(id int64) string     { return fmt.Sprintf("%s/skills/%d", BaseURI, id) }

func itoa(id int64) string { return strconv.FormatInt(id, 10) }
