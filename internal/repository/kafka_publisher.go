package repository

import (
	"context"

	"FinPanel/internal/domain/models"
	"FinPanel/internal/domain/repository"
	pkgkafka "FinPanel/pkg/kafka"
)

// EventProducer is the subset of *pkgkafka.Producer the publisher needs.
type EventProducer interface {
	Publish(ctx context.Context, topic string, key []byte, value interface{}) error
	Close() error
}

var _ EventProducer = (*pkgkafka.Producer)(nil)

// KafkaPublisher implements Publisher for Kafka. Events are keyed by panel
// name so one partition sees every build of a panel in order.
type KafkaPublisher struct {
	producer EventProducer
	topic    string
}

func NewKafkaPublisher(producer EventProducer, topic string) repository.Publisher {
	return &KafkaPublisher{producer: producer, topic: topic}
}

func (p *KafkaPublisher) PublishPanelBuilt(ctx context.Context, ev models.PanelBuilt) error {
	return p.producer.Publish(ctx, p.topic, []byte(ev.Panel), ev)
}

func (p *KafkaPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}
