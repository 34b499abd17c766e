//go:build integration

// Package containers starts throwaway backends for integration tests. Each
// container is started once per test binary and shared by every suite;
// Ryuk removes them when the process exits.
package containers

import (
	"context"
	"sync"
	"time"
)

const startTimeout = 2 * time.Minute

type manager struct {
	pgOnce sync.Once
	pg     *PostgresContainer
	pgErr  error

	redisOnce sync.Once
	rc        *RedisContainer
	redisErr  error

	rpOnce sync.Once
	rp     *RedpandaContainer
	rpErr  error
}

var shared = &manager{}

func (m *manager) postgres() (*PostgresContainer, error) {
	m.pgOnce.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), startTimeout)
		defer cancel()
		m.pg, m.pgErr = startPostgres(ctx)
	})
	return m.pg, m.pgErr
}

func (m *manager) redis() (*RedisContainer, error) {
	m.redisOnce.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), startTimeout)
		defer cancel()
		m.rc, m.redisErr = startRedis(ctx)
	})
	return m.rc, m.redisErr
}

func (m *manager) redpanda() (*RedpandaContainer, error) {
	m.rpOnce.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), startTimeout)
		defer cancel()
		m.rp, m.rpErr = startRedpanda(ctx)
	})
	return m.rp, m.rpErr
}
