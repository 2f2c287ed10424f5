package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	"cachedfetch/internal/models"
)

func testBrokers(t *testing.T) []string {
	t.Helper()
	brokers := strings.Split(os.Getenv("TEST_KAFKA_BROKERS"), ",")
	if brokers[0] == "" {
		brokers = []string{"localhost:9092"}
	}

	client, err := kgo.NewClient(kgo.SeedBrokers(brokers...))
	require.NoError(t, err)
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx); err != nil {
		t.Skipf("kafka unavailable: %v", err)
	}
	return brokers
}

func TestProducerConsumerRoundTrip(t *testing.T) {
	brokers := testBrokers(t)
	topic := fmt.Sprintf("cachedfetch-test-%d", time.Now().UnixNano())

	producer, err := NewProducer(brokers, topic, kgo.AllowAutoTopicCreation())
	require.NoError(t, err)
	defer producer.Close()

	consumer, err := NewConsumer(brokers, topic, "test-"+t.Name(), kgo.AllowAutoTopicCreation())
	require.NoError(t, err)
	defer consumer.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var (
		mu       sync.Mutex
		received []models.FetchEvent
	)
	consumer.Start(ctx, func(_, value []byte) {
		var ev models.FetchEvent
		if json.Unmarshal(value, &ev) == nil {
			mu.Lock()
			received = append(received, ev)
			mu.Unlock()
		}
	})

	producer.PublishObjectAsync([]byte("/users/1"), models.FetchEvent{
		Key:       "/users/1",
		Payload:   json.RawMessage(`{"id":1}`),
		FetchedAt: time.Now().UTC(),
	})

	err = retry.Do(
		func() error {
			mu.Lock()
			defer mu.Unlock()
			if len(received) == 0 {
				return fmt.Errorf("no events yet")
			}
			return nil
		},
		retry.Attempts(150),
		retry.Delay(100*time.Millisecond),
		retry.DelayType(retry.FixedDelay),
	)
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, "/users/1", received[0].Key)
	assert.JSONEq(t, `{"id":1}`, string(received[0].Payload))
}
