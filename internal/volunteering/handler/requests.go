package handler

import (
	"strings"

	"vms/internal/volunteering/service"
	dErrors "vms/pkg/domain-errors"
)

// CreateEventRequest is the body of POST /api/events. Skills is a comma
// separated list of labels.
type CreateEventRequest struct {
	Name            string `json:"name"`
	Description     string `json:"description"`
	Location        string `json:"location"`
	DurationHours   int    `json:"duration_hours"`
	Skills          string `json:"skills"`
	Shared          bool   `json:"shared"`
	PrioritizeLocal bool   `json:"prioritize_local"`
}

func (r *CreateEventRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	r.Location = strings.TrimSpace(r.Location)
	if r.Name == "" {
		return dErrors.New(dErrors.CodeValidation, "name is required")
	}
	if r.DurationHours < 0 {
		return dErrors.New(dErrors.CodeValidation, "duration_hours must be a positive integer")
	}
	return nil
}

func (r *CreateEventRequest) ToCommand() service.CreateEventCommand {
	return service.CreateEventCommand{
		Name:            r.Name,
		Description:     r.Description,
		Location:        r.Location,
		DurationHours:   r.DurationHours,
		Skills:          r.Skills,
		Shared:          r.Shared,
		PrioritizeLocal: r.PrioritizeLocal,
	}
}
