package mykafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

const publishTimeout = 5 * time.Second

// Publisher emits domain events. Handlers treat publish failures as
// log-and-continue, never as request failures.
type Publisher interface {
	PublishEvent(ctx context.Context, topic, key string, event interface{}) error
	Close() error
}

type Producer struct {
	writer *kafka.Writer
}

var _ Publisher = (*Producer)(nil)

func NewProducer(address []string) (*Producer, error) {
	if len(address) == 0 {
		return nil, errors.New("kafka: no broker addresses")
	}
	w := &kafka.Writer{
		Addr:                   kafka.TCP(address...),
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
		BatchTimeout:           10 * time.Millisecond,
	}
	return &Producer{writer: w}, nil
}

func (p *Producer) PublishEvent(ctx context.Context, topic, key string, event interface{}) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("kafka: json.Marshal failed: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	if err := p.writer.WriteMessages(ctx, kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: data,
	}); err != nil {
		return fmt.Errorf("kafka: write failed: %w", err)
	}
	return nil
}

func (p *Producer) Close() error {
	return p.writer.Close()
}

// Noop stands in when no broker is configured (and in tests).
type Noop struct{}

var _ Publisher = Noop{}

func (Noop) PublishEvent(ctx context.Context, topic, key string, event interface{}) error {
	return nil
}

func (Noop) Close() error { return nil }
