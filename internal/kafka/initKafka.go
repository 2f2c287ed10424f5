package kafka

import "fmt"

type KafkaBundle struct {
	FetchProducer *Producer
	WarmConsumer  *Consumer
}

func InitKafka(brokers []string, fetchTopic, warmTopic, group string) (*KafkaBundle, error) {
	producer, err := NewProducer(brokers, fetchTopic)
	if err != nil {
		return nil, err
	}

	consumer, err := NewConsumer(brokers, warmTopic, group)
	if err != nil {
		producer.Close()
		return nil, fmt.Errorf("warm consumer: %w", err)
	}

	return &KafkaBundle{
		FetchProducer: producer,
		WarmConsumer:  consumer,
	}, nil
}

func (b *KafkaBundle) Close() {
	if b == nil {
		return
	}
	b.WarmConsumer.Stop()
	b.FetchProducer.Close()
}
