package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/Alias1177/Recommender/models"
)

// messageWriter is satisfied by *kafka.Writer
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Kafka publishes recommendations as JSON, keyed by ticker
type Kafka struct {
	writer messageWriter
	topic  string
}

// NewKafka creates a publisher for topic on brokers
func NewKafka(brokers []string, topic string) (*Kafka, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("brokers are required")
	}
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		Compression:  kafka.Gzip,
		MaxAttempts:  3,
		WriteTimeout: 10 * time.Second,
	}
	return &Kafka{writer: writer, topic: topic}, nil
}

// Notify publishes rec
func (k *Kafka) Notify(ctx context.Context, rec models.FinalRecommendation) error {
	value, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal value: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(rec.Ticker),
		Value: value,
		Time:  rec.AsOf,
		Headers: []kafka.Header{
			{Key: "variant", Value: []byte(rec.Variant)},
			{Key: "direction", Value: []byte(rec.Direction)},
		},
	}
	if err := k.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publishing %s to %s: %w", rec.Ticker, k.topic, err)
	}
	return nil
}

// Close flushes and closes the writer
func (k *Kafka) Close() error {
	return k.writer.Close()
}
