// Package kafka relays domain events to a Kafka topic with franz-go.
package kafka

import (
	"context"
	"fmt"

	"github.com/Zhima-Mochi/minimarket/internal/application/relay"
	"github.com/twmb/franz-go/pkg/kgo"
)

type Publisher struct {
	client *kgo.Client
	topic  string
}

var _ relay.Sink = (*Publisher)(nil)

// NewPublisher creates a client for brokers and pings the cluster once.
func NewPublisher(ctx context.Context, brokers []string, topic, clientID string) (*Publisher, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.ClientID(clientID),
		kgo.RequiredAcks(kgo.AllISRAcks()),
		kgo.AllowAutoTopicCreation(),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka: client: %w", err)
	}
	if err := client.Ping(ctx); err != nil {
		client.Close()
		return nil, fmt.Errorf("kafka: ping: %w", err)
	}
	return &Publisher{client: client, topic: topic}, nil
}

func (p *Publisher) Name() string { return "kafka" }

// Send produces one record keyed by the aggregate id, so per-aggregate order is kept within a partition.
func (p *Publisher) Send(ctx context.Context, msg relay.Message) error {
	rec := record(p.topic, msg)
	if err := p.client.ProduceSync(ctx, rec).FirstErr(); err != nil {
		return fmt.Errorf("kafka: produce %s: %w", msg.Name, err)
	}
	return nil
}

func (p *Publisher) Close() {
	p.client.Close()
}

func record(topic string, msg relay.Message) *kgo.Record {
	return &kgo.Record{
		Topic: topic,
		Key:   []byte(msg.Key),
		Value: msg.Body,
		Headers: []kgo.RecordHeader{
			{Key: "event", Value: []byte(msg.Name)},
			{Key: "content-type", Value: []byte("application/json")},
		},
	}
}
