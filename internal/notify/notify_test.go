package notify

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront-backend/internal/config"
)

func TestNop(t *testing.T) {
	var p Publisher = Nop{}
	assert.NoError(t, p.Publish(context.Background(), Event{Type: TypeInquirySubmitted}))
	assert.NoError(t, p.Close())
}

func TestEvent_JSONShape(t *testing.T) {
	at := time.Date(2026, 2, 3, 4, 5, 6, 0, time.UTC)
	out, err := json.Marshal(Event{Type: TypeInquirySubmitted, ID: "abc", Email: "a@x.io", CreatedAt: at})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"inquiry.submitted","id":"abc","email":"a@x.io","createdAt":"2026-02-03T04:05:06Z"}`, string(out))
}

func TestNewRabbitMQ_RequiresURLAndQueue(t *testing.T) {
	_, err := NewRabbitMQ(config.RabbitMQConfig{Queue: "q"})
	assert.EqualError(t, err, "rabbitmq url is required")

	_, err = NewRabbitMQ(config.RabbitMQConfig{URL: "amqp://localhost", Queue: " "})
	assert.EqualError(t, err, "rabbitmq queue is required")
}
