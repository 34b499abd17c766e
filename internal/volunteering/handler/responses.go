package handler

import (
	"vms/internal/dataspace/visibility"
	"vms/internal/volunteering/models"
)

// EventsResponse lists the open events a volunteer can browse.
type EventsResponse struct {
	Count  int                         `json:"count"`
	Events []visibility.AnnotatedEvent `json:"events"`
}

// SkillsResponse is the skill vocabulary offered when creating events.
type SkillsResponse struct {
	Count  int             `json:"count"`
	Skills []*models.Skill `json:"skills"`
}
