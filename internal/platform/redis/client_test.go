package redis

import (
	"context"
	"testing"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vms/internal/platform/config"
)

func TestNewWithoutURLIsDisabled(t *testing.T) {
	c, err := New(context.Background(), config.RedisConfig{})
	require.NoError(t, err)
	assert.Nil(t, c)
}

func TestNewRejectsMalformedURL(t *testing.T) {
	_, err := New(context.Background(), config.RedisConfig{URL: "://nope"})
	require.Error(t, err)
}

func TestKey(t *testing.T) {
	raw := goredis.NewClient(&goredis.Options{Addr: "localhost:0"})
	defer raw.Close()

	assert.Equal(t, "vms:activity:recent", Wrap(raw, "vms:").Key("activity", "recent"))
	assert.Equal(t, "activity:recent", Wrap(raw, "").Key("activity", "recent"))
}
