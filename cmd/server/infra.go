package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"vms/internal/platform/config"
	"vms/internal/platform/kafka"
	"vms/internal/platform/postgres"
	"vms/internal/platform/redis"
	httptransport "vms/internal/transport/http"
)

// infra holds the optional backing services. A nil field means the backend
// is not configured and in-memory replacements are used.
type infra struct {
	db    *sql.DB
	redis *redis.Client
	kafka *kafka.Producer
	log   *slog.Logger
}

func openInfra(ctx context.Context, cfg config.Config, log *slog.Logger) (*infra, error) {
	in := &infra{log: log}

	db, err := postgres.Open(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}
	if db != nil {
		in.db = db
		if err := postgres.Migrate(ctx, db); err != nil {
			in.Close()
			return nil, err
		}
		log.Info("postgres connected")
	}

	rc, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		in.Close()
		return nil, err
	}
	if rc != nil {
		in.redis = rc
		log.Info("redis connected")
	}

	producer, err := kafka.NewProducer(ctx, cfg.Kafka)
	if err != nil {
		in.Close()
		return nil, err
	}
	if producer != nil {
		in.kafka = producer
		if err := producer.EnsureTopic(ctx, cfg.Kafka.Topic, cfg.Kafka.Partitions, cfg.Kafka.ReplicationFactor); err != nil {
			in.Close()
			return nil, fmt.Errorf("provision activity topic: %w", err)
		}
		log.Info("kafka connected", "topic", cfg.Kafka.Topic)
	}
	return in, nil
}

func (in *infra) healthChecks() map[string]httptransport.HealthCheck {
	checks := make(map[string]httptransport.HealthCheck)
	if in.db != nil {
		checks["postgres"] = in.db.PingContext
	}
	if in.redis != nil {
		checks["redis"] = in.redis.Health
	}
	if in.kafka != nil {
		checks["kafka"] = in.kafka.Health
	}
	return checks
}

// Close releases every opened backend.
func (in *infra) Close() {
	if in.kafka != nil {
		in.kafka.Close()
	}
	if in.redis != nil {
		if err := in.redis.Close(); err != nil {
			in.log.Warn("failed to close redis", "error", err)
		}
	}
	if in.db != nil {
		if err := in.db.Close(); err != nil {
			in.log.Warn("failed to close postgres", "error", err)
		}
	}
}
