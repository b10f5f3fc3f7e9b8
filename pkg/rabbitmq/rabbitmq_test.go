package rabbitmq

import (
	"context"
	"testing"

	amqp "github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
)

func TestNewPublishing(t *testing.T) {
	p := newPublishing([]byte(`{"order_id":"o1"}`))

	assert.Equal(t, "application/json", p.ContentType)
	assert.Equal(t, amqp.Persistent, p.DeliveryMode)
	assert.JSONEq(t, `{"order_id":"o1"}`, string(p.Body))
	assert.False(t, p.Timestamp.IsZero())
}

func TestClientWithoutChannel(t *testing.T) {
	c := &Client{exchange: "foodtue.events"}

	assert.Error(t, c.Publish(context.Background(), "order.created", []byte("{}")))
	assert.Error(t, c.Consume("foodtue.order-log", "order.*", func(amqp.Delivery) error { return nil }))
	assert.NoError(t, c.Close())
}
