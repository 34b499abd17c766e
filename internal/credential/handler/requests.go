package handler

import (
	"encoding/json"
	"strconv"

	"vms/internal/credential"
	dErrors "vms/pkg/domain-errors"
)

// IssueRequest is the body of a certificate request. Ids are accepted as
// numbers or numeric strings, matching the milestone context output.
type IssueRequest struct {
	VolunteerID json.Number `json:"volunteer_id"`
	Items       []IssueItem `json:"items"`

	volunteerID int64
}

// IssueItem is one claimed activity.
type IssueItem struct {
	ID       json.Number `json:"id"`
	Title    string      `json:"title"`
	Hours    int         `json:"hours"`
	Provider string      `json:"provider"`
	Skills   []string    `json:"skills"`
}

func (r *IssueRequest) Validate() error {
	id, err := strconv.ParseInt(r.VolunteerID.String(), 10, 64)
	if err != nil || id <= 0 {
		return dErrors.New(dErrors.CodeValidation, "volunteer_id is required")
	}
	r.volunteerID = id
	for _, it := range r.Items {
		if _, err := strconv.ParseInt(it.ID.String(), 10, 64); err != nil {
			return dErrors.New(dErrors.CodeValidation, "every item needs a numeric id")
		}
		if it.Hours < 0 {
			return dErrors.New(dErrors.CodeValidation, "item hours must not be negative")
		}
	}
	return nil
}

// ToDomain converts the validated request.
func (r *IssueRequest) ToDomain() credential.IssueRequest {
	items := make([]credential.Item, 0, len(r.Items))
	for _, it := range r.Items {
		id, _ := strconv.ParseInt(it.ID.String(), 10, 64)
		items = append(items, credential.Item{
			EventID:  id,
			Title:    it.Title,
			Hours:    it.Hours,
			Provider: it.Provider,
			Skills:   it.Skills,
		})
	}
	return credential.IssueRequest{VolunteerID: r.volunteerID, Items: items}
}
