package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/apex/log"
	"github.com/twmb/franz-go/pkg/kgo"
)

const publishTimeout = 10 * time.Second

type ProducerInterface interface {
	PublishObjectAsync(key []byte, obj any)
}

type Producer struct {
	topic  string
	client *kgo.Client
}

var _ ProducerInterface = (*Producer)(nil)

func NewProducer(brokers []string, topic string, extra ...kgo.Opt) (*Producer, error) {
	opts := append([]kgo.Opt{kgo.SeedBrokers(brokers...)}, extra...)
	client, err := kgo.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("create kafka producer: %w", err)
	}

	log.WithField("topic", topic).Info("kafka producer initialized")
	return &Producer{topic: topic, client: client}, nil
}

func (p *Producer) Close() {
	p.client.Close()
}

func (p *Producer) Publish(ctx context.Context, key, value []byte) error {
	msg := &kgo.Record{
		Topic: p.topic,
		Key:   key,
		Value: value,
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	if err := p.client.ProduceSync(ctx, msg).FirstErr(); err != nil {
		return fmt.Errorf("publish to %s: %w", p.topic, err)
	}

	log.WithField("topic", p.topic).WithField("key", string(key)).Debug("published")
	return nil
}

// PublishObjectAsync marshals obj to JSON and publishes it in the background.
// Failures are only logged.
func (p *Producer) PublishObjectAsync(key []byte, obj any) {
	go func() {
		value, err := json.Marshal(obj)
		if err != nil {
			log.WithError(err).Error("marshal kafka payload")
			return
		}

		if err := p.Publish(context.Background(), key, value); err != nil {
			log.WithError(err).Error("kafka async publish")
		}
	}()
}
