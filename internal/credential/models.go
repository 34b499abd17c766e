// Package credential issues milestone certificates for accumulated volunteer
// hours and computes the milestone context shown before a request.
package credential

import (
	"crypto/sha1" //nolint:gosec // content fingerprint, not a security boundary
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"vms/internal/dataspace/documents"
	"vms/internal/volunteering/models"
)

// Issuance statuses.
const (
	StatusIssued              = "issued"
	StatusRejected            = "rejected"
	StatusPendingVerification = "pending_verification"
)

// RecognizedSkill earns a recognition once its own hours reach the milestone.
const RecognizedSkill = "First Aid"

// UnknownProvider names the provider of an activity without an organization.
const UnknownProvider = "Unknown"

// Item is one activity claimed in a certificate request.
type Item struct {
	EventID  int64
	Title    string
	Hours    int
	Provider string
	Skills   []string
}

// IssueRequest asks for a certificate over the given activities.
type IssueRequest struct {
	VolunteerID int64
	Items       []Item
}

// ItemVerification reports whether a claimed activity matches the volunteer's record.
type ItemVerification struct {
	EventID  int64  `json:"id"`
	Verified bool   `json:"verified"`
	Reason   string `json:"reason,omitempty"`
}

// IssueResult is returned for issued, rejected and unverified requests alike.
type IssueResult struct {
	Status       string                         `json:"status"`
	Reason       string                         `json:"reason,omitempty"`
	ContractID   string                         `json:"contract_id,omitempty"`
	Certificate  *documents.CertificateDocument `json:"certificate,omitempty"`
	Verification []ItemVerification            `json:"items,omitempty"`
}

// Issued reports whether a certificate was created.
func (r *IssueResult) Issued() bool {
	return r.Status == StatusIssued
}

// Tally splits hours by provenance.
type Tally struct {
	Total      int
	Home       int
	Other      int
	Recognized int
}

// Count tallies items against the volunteer's home organization name. Items
// from any other provider, or when there is no home organization, count as other.
func Count(homeOrg string, items []models.CertificateItem) Tally {
	var t Tally
	for _, it := range items {
		t.Total += it.Hours
		if homeOrg != "" && it.Provider == homeOrg {
			t.Home += it.Hours
		} else {
			t.Other += it.Hours
		}
		if hasSkill(it.Skills, RecognizedSkill) {
			t.Recognized += it.Hours
		}
	}
	return t
}

func hasSkill(skills []string, label string) bool {
	for _, s := range skills {
		if strings.EqualFold(strings.TrimSpace(s), label) {
			return true
		}
	}
	return false
}

// ProofHash fingerprints the item list. The item fields serialize in key
// order, so equal lists always hash equally.
func ProofHash(items []models.CertificateItem) (string, error) {
	if items == nil {
		items = []models.CertificateItem{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return "", err
	}
	sum := sha1.Sum(raw) //nolint:gosec
	return hex.EncodeToString(sum[:]), nil
}

// ContractID is the credential issuance contract of a volunteer at a total.
func ContractID(volunteerID int64, total int) string {
	return documents.ShortID(fmt.Sprintf("credential-%d-%d", volunteerID, total))
}

// Providers lists the distinct providers other than home, sorted.
func Providers(homeOrg string, items []models.CertificateItem) []string {
	seen := make(map[string]struct{})
	for _, it := range items {
		if it.Provider == "" || (homeOrg != "" && it.Provider == homeOrg) {
			continue
		}
		seen[it.Provider] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for p := range seen {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Activity is one finished event in the milestone context.
type Activity struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Hours       int      `json:"hours"`
	Provider    string   `json:"provider"`
	Skills      []string `json:"skills"`
	Contributes bool     `json:"contributes"`
}

// HoursByPlatform splits hours between the home organization and the rest.
type HoursByPlatform struct {
	Home   int `json:"home"`
	Remote int `json:"remote"`
}

// MilestoneContext summarizes a volunteer's finished activities against the milestone.
type MilestoneContext struct {
	TotalHours      int             `json:"total_hours"`
	HoursByPlatform HoursByPlatform `json:"hours_by_platform"`
	Eligible        bool            `json:"eligible"`
	ContribSum      int             `json:"contrib_sum"`
	Activities      []Activity      `json:"activities"`
}

// MinimalSubset picks activities by descending hours until their sum reaches
// target. It is greedy and not minimal in count for every distribution. Ties
// keep their input order.
func MinimalSubset(target int, activities []Activity) (map[string]bool, int) {
	ordered := make([]Activity, len(activities))
	copy(ordered, activities)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Hours > ordered[j].Hours })

	picked := make(map[string]bool)
	total := 0
	for _, a := range ordered {
		if total >= target {
			break
		}
		picked[a.ID] = true
		total += a.Hours
	}
	return picked, total
}
