package visibility

import (
	"context"

	"vms/internal/volunteering/models"
)

// Dashboard is the volunteer's home page: candidate events split by status
// plus progress towards the milestone.
type Dashboard struct {
	Volunteer        *models.Volunteer    `json:"volunteer"`
	Organization     *models.Organization `json:"organization,omitempty"`
	Registered       []AnnotatedEvent     `json:"events_registered"`
	Unregistered     []AnnotatedEvent     `json:"events_unregistered"`
	Completed        []AnnotatedEvent     `json:"events_completed"`
	RegisteredCount  int                  `json:"registered_events_count"`
	CompletedCount   int                  `json:"completed_events_count"`
	HoursVolunteered int                  `json:"hours_volunteered"`
	ProgressPercent  int                  `json:"progress_percent"`
	RemainingPercent int                  `json:"remaining_percent"`
	MilestoneTarget  int                  `json:"milestone_target"`
	MilestoneReached bool                 `json:"milestone_reached"`
}

// Partition splits annotated events into registered-and-active,
// unregistered-and-active, and registered-and-finished.
func Partition(events []AnnotatedEvent) (registered, unregistered, completed []AnnotatedEvent) {
	registered = make([]AnnotatedEvent, 0)
	unregistered = make([]AnnotatedEvent, 0)
	completed = make([]AnnotatedEvent, 0)
	for _, e := range events {
		switch {
		case e.IsRegistered && e.IsFinished:
			completed = append(completed, e)
		case e.IsRegistered:
			registered = append(registered, e)
		case !e.IsFinished:
			unregistered = append(unregistered, e)
		}
	}
	return registered, unregistered, completed
}

// Progress returns the milestone percentage reached, capped at 100.
func Progress(hours int) int {
	if hours <= 0 {
		return 0
	}
	return min(hours*100/models.MilestoneHours, 100)
}

// Dashboard resolves the volunteer's events and summarizes them.
func (r *Resolver) Dashboard(ctx context.Context, volunteerID int64) (*Dashboard, error) {
	view, err := r.Resolve(ctx, volunteerID)
	if err != nil {
		return nil, err
	}
	registered, unregistered, completed := Partition(view.Events)

	hours := 0
	for _, e := range completed {
		hours += e.DurationHours
	}
	progress := Progress(hours)
	return &Dashboard{
		Volunteer:        view.Volunteer,
		Organization:     view.Organization,
		Registered:       registered,
		Unregistered:     unregistered,
		Completed:        completed,
		RegisteredCount:  len(registered),
		CompletedCount:   len(completed),
		HoursVolunteered: hours,
		ProgressPercent:  progress,
		RemainingPercent: 100 - progress,
		MilestoneTarget:  models.MilestoneHours,
		MilestoneReached: hours >= models.MilestoneHours,
	}, nil
}

// Browse lists the candidate events that are not finished yet.
func (r *Resolver) Browse(ctx context.Context, volunteerID int64) ([]AnnotatedEvent, error) {
	view, err := r.Resolve(ctx, volunteerID)
	if err != nil {
		return nil, err
	}
	out := make([]AnnotatedEvent, 0, len(view.Events))
	for _, e := range view.Events {
		if !e.IsFinished {
			out = append(out, e)
		}
	}
	return out, nil
}
