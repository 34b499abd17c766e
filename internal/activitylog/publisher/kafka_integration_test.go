//go:build integration

package publisher

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	"vms/internal/activitylog"
	"vms/internal/platform/config"
	"vms/internal/platform/kafka"
	"vms/pkg/testutil/containers"
)

func TestStreamPublisherAgainstBroker(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	rp := containers.Redpanda(t)
	const topic = "vms.activity.test"

	producer, err := kafka.NewProducer(ctx, config.KafkaConfig{Brokers: []string{rp.Broker}, ClientID: "vms-test"})
	require.NoError(t, err)
	defer producer.Close()
	require.NoError(t, producer.EnsureTopic(ctx, topic, 1, 1))
	require.NoError(t, producer.EnsureTopic(ctx, topic, 1, 1), "existing topic is not an error")

	entry := &activitylog.Entry{
		ID:        "01HX",
		Timestamp: time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
		Level:     activitylog.LevelInfo,
		Action:    "EventShared",
		Details:   activitylog.Message("Beach cleanup published to the Data Space"),
	}
	require.NoError(t, NewStreamPublisher(producer, topic).Publish(ctx, entry))

	consumer, err := kgo.NewClient(
		kgo.SeedBrokers(rp.Broker),
		kgo.ConsumeTopics(topic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	require.NoError(t, err)
	defer consumer.Close()

	fetches := consumer.PollFetches(ctx)
	require.Empty(t, fetches.Errors())
	records := fetches.Records()
	require.NotEmpty(t, records)

	rec := records[0]
	require.Equal(t, "EventShared", string(rec.Key))
	var got activitylog.Entry
	require.NoError(t, json.Unmarshal(rec.Value, &got))
	require.Equal(t, entry.ID, got.ID)
	require.Equal(t, "Beach cleanup published to the Data Space", got.Details["message"])
}
