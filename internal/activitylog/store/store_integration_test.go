//go:build integration

package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"vms/internal/activitylog"
	"vms/internal/platform/postgres"
	"vms/pkg/testutil/containers"
)

func entryAt(id, action string, ts time.Time) *activitylog.Entry {
	return &activitylog.Entry{
		ID:        id,
		Timestamp: ts,
		Level:     activitylog.LevelInfo,
		Action:    action,
		Details:   activitylog.Message(action),
	}
}

func TestPostgresStoreAgainstDatabase(t *testing.T) {
	ctx := context.Background()
	pg := containers.Postgres(t)
	require.NoError(t, postgres.Migrate(ctx, pg.DB))
	pg.Truncate(t, "activity_log")

	st := NewPostgres(pg.DB)
	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, st.Append(ctx, entryAt("a", "EventCreated", base)))
	require.NoError(t, st.Append(ctx, entryAt("b", "EventShared", base.Add(time.Second))))
	require.NoError(t, st.Append(ctx, entryAt("c", "VolunteerJoined", base.Add(2*time.Second))))

	recent, err := st.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	require.Equal(t, "VolunteerJoined", recent[0].Action)
	require.Equal(t, "EventShared", recent[1].Action)
	require.Equal(t, "EventShared", recent[1].Details["message"])
}

func TestRedisRecentCacheAgainstServer(t *testing.T) {
	ctx := context.Background()
	rc := containers.Redis(t)

	cache := NewRedisRecentCache(rc.Client, WithCapacity(2), WithKey("vms:test:recent"))
	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, cache.Push(ctx, entryAt("a", "EventCreated", base)))
	require.NoError(t, cache.Push(ctx, entryAt("b", "EventShared", base.Add(time.Second))))
	require.NoError(t, cache.Push(ctx, entryAt("c", "VolunteerJoined", base.Add(2*time.Second))))

	recent, err := cache.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	require.Equal(t, "c", recent[0].ID)
	require.Equal(t, "b", recent[1].ID)
}
