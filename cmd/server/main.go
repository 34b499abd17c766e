package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"vms/internal/activitylog"
	loghandler "vms/internal/activitylog/handler"
	logmetrics "vms/internal/activitylog/metrics"
	"vms/internal/activitylog/publisher"
	logstore "vms/internal/activitylog/store"
	authhandler "vms/internal/auth/handler"
	authservice "vms/internal/auth/service"
	"vms/internal/credential"
	credhandler "vms/internal/credential/handler"
	credmetrics "vms/internal/credential/metrics"
	"vms/internal/dataspace/federation"
	dshandler "vms/internal/dataspace/handler"
	dsmetrics "vms/internal/dataspace/metrics"
	"vms/internal/dataspace/visibility"
	"vms/internal/images"
	jwttoken "vms/internal/jwt_token"
	"vms/internal/platform/config"
	"vms/internal/platform/httpserver"
	"vms/internal/platform/logger"
	"vms/internal/platform/metrics"
	"vms/internal/platform/seed"
	httptransport "vms/internal/transport/http"
	volhandler "vms/internal/volunteering/handler"
	volservice "vms/internal/volunteering/service"
	volstore "vms/internal/volunteering/store"
	"vms/pkg/platform/circuit"
)

// main wires the stores, services and handlers and runs the HTTP server until
// SIGINT or SIGTERM.
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
}

// domainStore is what every volunteering consumer needs from the backing store.
type domainStore interface {
	federation.Store
	visibility.Store
	credential.Store
	volservice.Store
	seed.Store
	authservice.VolunteerStore
}

func run(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	infra, err := openInfra(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer infra.Close()

	var (
		store   domainStore = volstore.NewInMemory()
		entries activitylog.Store
	)
	if infra.db != nil {
		store = volstore.NewPostgres(infra.db)
		entries = logstore.NewPostgres(infra.db)
	} else {
		entries = logstore.NewInMemory()
	}

	sinkOpts := []activitylog.Option{
		activitylog.WithLogger(log),
		activitylog.WithMetrics(logmetrics.New()),
	}
	if infra.redis != nil {
		sinkOpts = append(sinkOpts, activitylog.WithRecentCache(
			logstore.NewRedisRecentCache(infra.redis.Client,
				logstore.WithCapacity(cfg.Redis.RecentCapacity),
				logstore.WithKey(infra.redis.Key("activity", "recent")),
			),
		))
	}
	if infra.kafka != nil {
		breaker := circuit.New("kafka",
			circuit.WithFailureThreshold(cfg.Kafka.BreakerThreshold),
			circuit.WithCooldown(cfg.Kafka.BreakerCooldown),
		)
		sinkOpts = append(sinkOpts, activitylog.WithPublisher(
			publisher.NewStreamPublisher(infra.kafka, cfg.Kafka.Topic, publisher.WithBreaker(breaker)),
		))
	}
	sink := activitylog.New(entries, sinkOpts...)

	if cfg.Dataspace.SeedFile != "" {
		if err := loadSeed(ctx, cfg.Dataspace.SeedFile, store, log); err != nil {
			return err
		}
	}

	engineOpts := []federation.Option{
		federation.WithLogger(log),
		federation.WithMetrics(dsmetrics.New()),
	}
	if cfg.Dataspace.BroadcastEnabled {
		engineOpts = append(engineOpts, federation.WithBroadcaster(federation.NewMemberBroadcaster(store, sink)))
	}
	engine := federation.New(store, sink, engineOpts...)
	resolver := visibility.New(store, visibility.WithLogger(log))

	selector, err := images.NewSelector(cfg.Dataspace.ImageDir, cfg.Dataspace.ImageURLPrefix)
	if err != nil {
		return err
	}
	volunteering := volservice.New(store, engine, resolver, sink,
		volservice.WithLogger(log),
		volservice.WithImages(selector),
	)

	issuer := credential.New(store, sink,
		credential.WithLogger(log),
		credential.WithMetrics(credmetrics.New()),
		credential.WithStrictItems(cfg.Dataspace.StrictCertificateItems),
	)

	tokens := jwttoken.NewJWTService(cfg.Auth.SigningKey, cfg.Auth.Issuer)
	validator := jwttoken.NewSessionValidator(tokens)
	auth := authservice.New(store, tokens, cfg.Auth.SessionTTL, authservice.WithLogger(log))

	router := httptransport.NewRouter(httptransport.Config{
		Logger:         log,
		Metrics:        metrics.New(),
		Validator:      validator,
		RequestTimeout: cfg.Server.RequestTimeout,
		Public: []httptransport.Registrar{
			authhandler.New(auth, log),
			dshandler.New(engine, log, validator),
			loghandler.New(sink, log),
		},
		Authenticated: []httptransport.Registrar{
			volhandler.New(volunteering, log),
			credhandler.New(issuer, log),
		},
		HealthChecks: infra.healthChecks(),
	})

	srv := httpserver.New(cfg.Server, router)
	log.Info("starting vms", "environment", cfg.Server.Environment)
	return httpserver.Run(ctx, srv, cfg.Server.ShutdownTimeout, log)
}

func loadSeed(ctx context.Context, path string, store seed.Store, log *slog.Logger) error {
	f, err := seed.Read(path)
	if err != nil {
		return err
	}
	sum, err := seed.Load(ctx, store, authservice.HashPassword, f)
	if err != nil {
		return fmt.Errorf("load seed: %w", err)
	}
	log.Info("seed loaded",
		"path", path,
		"organizations", sum.Organizations,
		"volunteers", sum.Volunteers,
		"events", sum.Events,
		"registrations", sum.Registrations,
	)
	return nil
}
