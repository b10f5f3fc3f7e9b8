package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"foodtue/internal/models"
)

// Event types, also used as routing keys.
const (
	OrderCreated       = "order.created"
	OrderStatusChanged = "order.status_changed"
)

// OrderEvent is the payload published for order lifecycle changes.
type OrderEvent struct {
	Type       string             `json:"type"`
	OrderID    string             `json:"order_id"`
	UserID     string             `json:"user_id"`
	HotelIDs   []string           `json:"hotel_ids"`
	Status     models.OrderStatus `json:"status"`
	PrevStatus models.OrderStatus `json:"prev_status,omitempty"`
	TotalPrice float64            `json:"total_price"`
	OccurredAt time.Time          `json:"occurred_at"`
}

// NewOrderEvent builds an event of eventType from order.
func NewOrderEvent(eventType string, order *models.Order, prev models.OrderStatus) OrderEvent {
	return OrderEvent{
		Type:       eventType,
		OrderID:    order.ID,
		UserID:     order.UserID,
		HotelIDs:   order.HotelIDs(),
		Status:     order.Status,
		PrevStatus: prev,
		TotalPrice: order.TotalPrice,
		OccurredAt: time.Now().UTC(),
	}
}

// Publisher sends order events to a broker.
type Publisher interface {
	Publish(ctx context.Context, event OrderEvent) error
	Close() error
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, OrderEvent) error { return nil }
func (NopPublisher) Close() error                              { return nil }

// RabbitSink is the part of rabbitmq.Client a RabbitPublisher needs.
type RabbitSink interface {
	Publish(ctx context.Context, routingKey string, body []byte) error
	Close() error
}

// KafkaSink is the part of kafka.Writer a KafkaPublisher needs.
type KafkaSink interface {
	Publish(ctx context.Context, key, eventType string, value []byte) error
	Close() error
}

// RabbitPublisher publishes events on a topic exchange keyed by event type.
type RabbitPublisher struct {
	client RabbitSink
}

func NewRabbitPublisher(client RabbitSink) *RabbitPublisher {
	return &RabbitPublisher{client: client}
}

func (p *RabbitPublisher) Publish(ctx context.Context, event OrderEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	return p.client.Publish(ctx, event.Type, body)
}

func (p *RabbitPublisher) Close() error {
	return p.client.Close()
}

// KafkaPublisher publishes events keyed by order id, so events of one order
// stay ordered.
type KafkaPublisher struct {
	writer KafkaSink
}

func NewKafkaPublisher(writer KafkaSink) *KafkaPublisher {
	return &KafkaPublisher{writer: writer}
}

func (p *KafkaPublisher) Publish(ctx context.Context, event OrderEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	return p.writer.Publish(ctx, event.OrderID, event.Type, body)
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// LogDelivery decodes a consumed event body and logs it.
func LogDelivery(body []byte) error {
	var event OrderEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return fmt.Errorf("failed to decode order event: %w", err)
	}
	log.Info().
		Str("type", event.Type).
		Str("order_id", event.OrderID).
		Str("status", event.Status.String()).
		Strs("hotel_ids", event.HotelIDs).
		Msg("order event received")
	return nil
}
