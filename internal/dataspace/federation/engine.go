// Package federation runs the dataspace scenarios: organization onboarding,
// event publication, and cross-organization join and cancel. Each scenario
// appends an ordered narrative to the activity log. A failing step aborts the
// rest of the scenario; earlier steps are not rolled back.
package federation

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"vms/internal/activitylog"
	"vms/internal/dataspace/metrics"
	"vms/internal/volunteering/models"
	dErrors "vms/pkg/domain-errors"
	"vms/pkg/platform/sentinel"
)

var tracer = otel.Tracer("vms/internal/dataspace/federation")

// Store is the part of the volunteering store the scenarios read and write.
type Store interface {
	FindOrganizationByID(ctx context.Context, id int64) (*models.Organization, error)
	FindOrganizationByName(ctx context.Context, name string) (*models.Organization, error)
	CreateOrganization(ctx context.Context, org *models.Organization) error
	UpdateOrganization(ctx context.Context, org *models.Organization) error
	ListOrganizations(ctx context.Context) ([]*models.Organization, error)
	ListEventsByOrganization(ctx context.Context, orgID int64) ([]*models.Event, error)
	FindEventByID(ctx context.Context, id int64) (*models.Event, error)
	CreateEvent(ctx context.Context, event *models.Event) error
	UpdateEvent(ctx context.Context, event *models.Event) error
}

// Sink is the activity log the narrative is written to.
type Sink = activitylog.Appender

// Broadcaster announces a newly shared event to the other members. It is an
// optional step of the publication scenario.
type Broadcaster interface {
	Broadcast(ctx context.Context, from *models.Organization, event *models.Event, endpoint string) error
}

// Engine runs the scenarios.
type Engine struct {
	store       Store
	sink        Sink
	broadcaster Broadcaster
	logger      *slog.Logger
	metrics     *metrics.Metrics
}

// Option configures the Engine.
type Option func(*Engine)

func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) {
		e.metrics = m
	}
}

// WithBroadcaster enables the member broadcast after the trust anchor acknowledges a publication.
func WithBroadcaster(b Broadcaster) Option {
	return func(e *Engine) {
		e.broadcaster = b
	}
}

func New(store Store, sink Sink, opts ...Option) *Engine {
	e := &Engine{
		store:  store,
		sink:   sink,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) startScenario(ctx context.Context, scenario string, attrs ...attribute.KeyValue) (context.Context, func(outcome string, err error)) {
	start := time.Now()
	ctx, span := tracer.Start(ctx, "federation."+scenario, trace.WithAttributes(attrs...))
	return ctx, func(outcome string, err error) {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			outcome = "error"
		}
		span.SetAttributes(attribute.String("outcome", outcome))
		span.End()
		e.metrics.IncrementOutcome(scenario, outcome)
		e.metrics.ObserveLatency(scenario, time.Since(start))
	}
}

func (e *Engine) findOrganization(ctx context.Context, id int64) (*models.Organization, error) {
	org, err := e.store.FindOrganizationByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "organization not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load organization")
	}
	return org, nil
}
