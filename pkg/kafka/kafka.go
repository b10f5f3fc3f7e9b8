package kafka

import (
	"context"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

// Writer publishes messages to a single Kafka topic.
type Writer struct {
	w *kafka.Writer
}

// Config holds Kafka connection details.
type Config struct {
	Brokers []string
	Topic   string
}

// NewWriter creates a synchronous writer that waits for all in-sync replicas.
// Messages with the same key land on the same partition.
func NewWriter(cfg Config) *Writer {
	return &Writer{
		w: &kafka.Writer{
			Addr:         kafka.TCP(cfg.Brokers...),
			Topic:        cfg.Topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
			BatchTimeout: 10 * time.Millisecond,
		},
	}
}

// EventTypeHeader names the message header carrying the event type.
const EventTypeHeader = "event_type"

func newMessage(key, eventType string, value []byte) kafka.Message {
	return kafka.Message{
		Key:   []byte(key),
		Value: value,
		Time:  time.Now(),
		Headers: []kafka.Header{
			{Key: EventTypeHeader, Value: []byte(eventType)},
		},
	}
}

// Publish writes one message. eventType is carried in the EventTypeHeader header.
func (w *Writer) Publish(ctx context.Context, key, eventType string, value []byte) error {
	if err := w.w.WriteMessages(ctx, newMessage(key, eventType, value)); err != nil {
		return fmt.Errorf("failed to write kafka message: %w", err)
	}
	return nil
}

// Close flushes pending writes and closes the writer.
func (w *Writer) Close() error {
	return w.w.Close()
}
