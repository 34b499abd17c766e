package federation

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"vms/internal/activitylog"
	"vms/internal/volunteering/models"
)

// NoContract stands in for the contract id of an event never published with one.
const NoContract = "no-contract"

// ReducedName keeps the first name and the initial of the rest: "Alvaro Juan
// Gomez" becomes "Alvaro J.". Single-word names are returned unchanged.
func ReducedName(name string) string {
	first, rest, ok := strings.Cut(name, " ")
	if !ok || rest == "" {
		return name
	}
	r := []rune(rest)
	return fmt.Sprintf("%s %s.", first, string(r[0]))
}

// crossMembers returns the volunteer's home organization and the event's
// organization when both are dataspace members and differ. ok is false when no
// federation narrative applies.
func (e *Engine) crossMembers(ctx context.Context, volunteer *models.Volunteer, event *models.Event) (home, host *models.Organization, ok bool, err error) {
	if !volunteer.HasOrganization() || volunteer.OrganizationID == event.OrganizationID {
		return nil, nil, false, nil
	}
	home, err = e.findOrganization(ctx, volunteer.OrganizationID)
	if err != nil {
		return nil, nil, false, err
	}
	host, err = e.findOrganization(ctx, event.OrganizationID)
	if err != nil {
		return nil, nil, false, err
	}
	if !home.MemberOfDataspace || !host.MemberOfDataspace {
		return nil, nil, false, nil
	}
	return home, host, true, nil
}

func volunteerSubset(volunteer *models.Volunteer) activitylog.Details {
	return activitylog.Details{
		"VolunteerID": strconv.FormatInt(volunteer.ID, 10),
		"Name":        ReducedName(volunteer.Name),
	}
}

// Join logs the cross-organization participation narrative for a registration
// that already happened. It reports whether the narrative ran.
func (e *Engine) Join(ctx context.Context, volunteer *models.Volunteer, event *models.Event) (ran bool, err error) {
	home, host, ok, err := e.crossMembers(ctx, volunteer, event)
	if err != nil || !ok {
		return false, err
	}

	ctx, done := e.startScenario(ctx, "join",
		attribute.Int64("volunteer_id", volunteer.ID),
		attribute.Int64("event_id", event.ID),
	)
	defer func() { done("federated", err) }()

	contractID := event.ContractID
	if contractID == "" {
		contractID = NoContract
	}
	display := ReducedName(volunteer.Name)
	duration := fmt.Sprintf("%dh", event.DurationHours)

	n := activitylog.NewNarrative(ctx, e.sink)
	n.Info("EDC.CatalogRequest", activitylog.Details{
		"from":    home.Name,
		"to":      host.Name,
		"request": "list available events",
	})
	n.Info("EDC.CatalogResponse", activitylog.Details{
		"from": host.Name,
		"to":   home.Name,
		"event": map[string]any{
			"EventID":  event.ID,
			"Name":     event.Name,
			"Location": event.Location,
			"Time":     duration,
		},
		"contract_offer": contractID,
	})
	n.Info("EDC.ContractNegotiated", activitylog.Details{
		"between":           []string{home.Name, host.Name},
		"contract_id":       contractID,
		"purpose":           "volunteer_matching",
		"data_minimization": "only VolunteerID + Name shared to host",
		"retention":         "until event_finished or max 6 months",
		"note":              fmt.Sprintf("Agreement reached via EDC connector. %s cannot request full profile.", host.Name),
	})
	n.Info("Participation.Requested", activitylog.Details{
		"from":             home.Name,
		"to":               host.Name,
		"contract_used":    contractID,
		"volunteer_subset": volunteerSubset(volunteer),
		"note":             fmt.Sprintf("Full profile (contact, history) stays at %s", home.Name),
	})
	n.Info("Participation.Recorded", activitylog.Details{
		"system": home.Name,
		"record": map[string]any{
			"VolunteerID":   volunteer.ID,
			"VolunteerName": display,
			"EventID":       event.ID,
			"EventName":     event.Name,
			"EventLocation": event.Location,
			"EventDuration": duration,
			"status":        "joined",
		},
	})
	n.Info("Participation.Recorded", activitylog.Details{
		"system": host.Name,
		"record": map[string]any{
			"EventID":         event.ID,
			"ParticipantID":   volunteer.ID,
			"ParticipantName": display,
			"status":          "confirmed",
		},
	})
	if n.Err() != nil {
		return false, n.Err()
	}
	return true, nil
}

// Cancel logs the cross-organization cancellation narrative for an
// unregistration that already happened. It reports whether the narrative ran.
func (e *Engine) Cancel(ctx context.Context, volunteer *models.Volunteer, event *models.Event) (ran bool, err error) {
	home, host, ok, err := e.crossMembers(ctx, volunteer, event)
	if err != nil || !ok {
		return false, err
	}

	ctx, done := e.startScenario(ctx, "cancel",
		attribute.Int64("volunteer_id", volunteer.ID),
		attribute.Int64("event_id", event.ID),
	)
	defer func() { done("federated", err) }()

	n := activitylog.NewNarrative(ctx, e.sink)
	n.Info("Participation.Cancelled", activitylog.Details{
		"from":             home.Name,
		"to":               host.Name,
		"volunteer_subset": volunteerSubset(volunteer),
		"note":             fmt.Sprintf("Only minimal subset used; full profile remains at %s", home.Name),
	})
	n.Info("Participation.RecordUpdated", activitylog.Details{
		"system": home.Name,
		"record": map[string]any{
			"VolunteerID": volunteer.ID,
			"EventID":     event.ID,
			"EventName":   event.Name,
			"status":      "cancelled",
		},
	})
	n.Info("Participation.RecordUpdated", activitylog.Details{
		"system": host.Name,
		"record": map[string]any{
			"EventID":       event.ID,
			"ParticipantID": volunteer.ID,
			"status":        "cancelled",
		},
	})
	if n.Err() != nil {
		return false, n.Err()
	}
	return true, nil
}
