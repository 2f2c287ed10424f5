package kafka

import (
	"context"
	"fmt"

	"github.com/apex/log"
	"github.com/twmb/franz-go/pkg/kgo"
)

type Consumer struct {
	client *kgo.Client
	topic  string
}

func NewConsumer(brokers []string, topic, group string, extra ...kgo.Opt) (*Consumer, error) {
	opts := append([]kgo.Opt{
		kgo.SeedBrokers(brokers...),
		kgo.ConsumeTopics(topic),
		kgo.ConsumerGroup(group),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	}, extra...)
	client, err := kgo.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("create kafka consumer: %w", err)
	}

	log.WithFields(log.Fields{"topic": topic, "group": group}).Info("kafka consumer initialized")
	return &Consumer{client: client, topic: topic}, nil
}

// Start polls in the background and hands every record to handler until ctx
// is cancelled or the consumer is stopped.
func (c *Consumer) Start(ctx context.Context, handler func(key, value []byte)) {
	go func() {
		for {
			fetches := c.client.PollFetches(ctx)
			if fetches.IsClientClosed() || ctx.Err() != nil {
				return
			}
			fetches.EachError(func(topic string, partition int32, err error) {
				log.WithFields(log.Fields{"topic": topic, "partition": partition}).
					WithError(err).Error("kafka fetch")
			})
			fetches.EachRecord(func(r *kgo.Record) {
				handler(r.Key, r.Value)
			})
		}
	}()
}

func (c *Consumer) Stop() {
	c.client.Close()
}
