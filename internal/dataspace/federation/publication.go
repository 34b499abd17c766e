package federation

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"

	"vms/internal/activitylog"
	"vms/internal/dataspace/documents"
	"vms/internal/dataspace/mapping"
	"vms/internal/volunteering/models"
	dErrors "vms/pkg/domain-errors"
	"vms/pkg/platform/sentinel"
	"vms/pkg/requestcontext"
)

// CreateEvent persists a new event for org and runs the publication narrative:
// shared events are registered as connector assets and announced, private
// events are only logged. The event's skills must already be resolved.
func (e *Engine) CreateEvent(ctx context.Context, actor *models.Volunteer, org *models.Organization, event *models.Event) (err error) {
	event.OrganizationID = org.ID
	if err := event.Validate(); err != nil {
		return err
	}
	if event.IsShared && !org.CanPublish() {
		return dErrors.New(dErrors.CodeValidation, "organization has no connector endpoint and cannot share events")
	}

	ctx, done := e.startScenario(ctx, "publication",
		attribute.Int64("organization_id", org.ID),
		attribute.Bool("shared", event.IsShared),
	)
	defer func() { done(publicationOutcome(event), err) }()

	if event.CreatedAt.IsZero() {
		event.CreatedAt = requestcontext.Now(ctx)
	}
	if err := e.store.CreateEvent(ctx, event); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "organization not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to create event")
	}

	n := activitylog.NewNarrative(ctx, e.sink)
	n.Info("EventCreated", activitylog.Details{
		"message":  fmt.Sprintf("Event '%s' created by %s", event.Name, actor.Name),
		"event_id": event.ID,
	})
	if n.Err() != nil {
		return n.Err()
	}

	if !event.IsShared {
		n.Info("EventPrivate", activitylog.Details{
			"message":  fmt.Sprintf("Event '%s' remains local-only (not published to dataspace).", event.Name),
			"event_id": event.ID,
		})
		return n.Err()
	}
	return e.share(ctx, org, event)
}

// ShareEvent publishes an existing event of org. Sharing an already shared
// event repeats the narrative with identical identifiers.
func (e *Engine) ShareEvent(ctx context.Context, org *models.Organization, event *models.Event) (err error) {
	if event.OrganizationID != org.ID {
		return dErrors.New(dErrors.CodeForbidden, "event belongs to another organization")
	}
	if !org.CanPublish() {
		return dErrors.New(dErrors.CodeValidation, "organization has no connector endpoint and cannot share events")
	}

	ctx, done := e.startScenario(ctx, "publication",
		attribute.Int64("organization_id", org.ID),
		attribute.Int64("event_id", event.ID),
	)
	defer func() { done("shared", err) }()

	event.IsShared = true
	return e.share(ctx, org, event)
}

func publicationOutcome(event *models.Event) string {
	if event.IsShared {
		return "shared"
	}
	return "private"
}

func (e *Engine) share(ctx context.Context, org *models.Organization, event *models.Event) error {
	pub := documents.Publish(org, event)
	event.Endpoint = pub.Endpoint
	event.AssetID = pub.AssetID
	event.ContractID = pub.ContractID
	if event.SharedSince == nil {
		now := requestcontext.Now(ctx)
		event.SharedSince = &now
	}
	if err := e.store.UpdateEvent(ctx, event); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to record event publication")
	}

	n := activitylog.NewNarrative(ctx, e.sink)
	n.Doc("EDC.AssetRegistered", pub.Asset)
	n.Doc("Policy.UsageCreated", pub.Policy)
	n.Doc("EDC.ContractOfferPublished", pub.Offer)

	n.Info("EventSchemaMapped", activitylog.Details{
		"organization": org.Name,
		"schema":       mapping.LocalSchemaFor(org.Name).Name,
		"fields":       mapping.MapEvent(org, event),
	})
	n.Doc("EventShared.JSONLD", documents.Event(org, event))

	n.Info("DSGA.Notification", activitylog.Details{
		"subject":      "New event asset published",
		"organization": org.Name,
		"event":        event.Name,
		"endpoint":     pub.Endpoint,
	})
	n.Info("DSGA.Acknowledged", activitylog.Message(fmt.Sprintf("DSGA validated metadata for '%s' and recorded endpoint.", event.Name)))
	if n.Err() != nil {
		return n.Err()
	}

	if e.broadcaster != nil {
		if err := e.broadcaster.Broadcast(ctx, org, event, pub.Endpoint); err != nil {
			return err
		}
	}

	if event.PrioritizeLocal {
		n.Info("PolicyHint", activitylog.Message("Local-first constraint applied: volunteers from this org prioritized."))
	}
	if n.Err() != nil {
		return n.Err()
	}

	e.logger.InfoContext(ctx, "event published to dataspace",
		"request_id", requestcontext.RequestID(ctx),
		"organization_id", org.ID,
		"event_id", event.ID,
		"asset_id", pub.AssetID,
	)
	return nil
}

// MemberBroadcaster logs a broadcast of a shared event to every other member.
type MemberBroadcaster struct {
	store Store
	sink  Sink
}

func NewMemberBroadcaster(store Store, sink Sink) *MemberBroadcaster {
	return &MemberBroadcaster{store: store, sink: sink}
}

func (b *MemberBroadcaster) Broadcast(ctx context.Context, from *models.Organization, event *models.Event, endpoint string) error {
	orgs, err := b.store.ListOrganizations(ctx)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to list dataspace members")
	}
	recipients := make([]string, 0, len(orgs))
	for _, o := range orgs {
		if o.MemberOfDataspace && o.ID != from.ID {
			recipients = append(recipients, o.Name)
		}
	}
	_, err = b.sink.Append(ctx, "FederatedBroadcast", activitylog.Details{
		"message":  "New shared event available",
		"from":     from.Name,
		"event":    event.Name,
		"to_count": len(recipients),
		"to":       recipients,
		"endpoint": endpoint,
	}, activitylog.LevelInfo)
	return err
}
