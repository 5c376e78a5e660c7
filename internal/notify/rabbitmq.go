package notify

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"storefront-backend/internal/config"
)

const publishTimeout = 5 * time.Second

// RabbitMQ publishes events to a single durable queue through the default exchange.
type RabbitMQ struct {
	mu      sync.Mutex
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   string
}

// NewRabbitMQ dials the broker and declares the queue.
func NewRabbitMQ(cfg config.RabbitMQConfig) (*RabbitMQ, error) {
	if strings.TrimSpace(cfg.URL) == "" {
		return nil, errors.New("rabbitmq url is required")
	}
	if strings.TrimSpace(cfg.Queue) == "" {
		return nil, errors.New("rabbitmq queue is required")
	}

	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	if _, err := ch.QueueDeclare(cfg.Queue, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}

	return &RabbitMQ{conn: conn, channel: ch, queue: cfg.Queue}, nil
}

// Publish sends ev as a persistent JSON message. amqp channels are not safe for concurrent
// publishing, so calls are serialized.
func (r *RabbitMQ) Publish(ctx context.Context, ev Event) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	r.mu.Lock()
	defer r.mu.Unlock()
	return r.channel.PublishWithContext(ctx, "", r.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    uuid.NewString(),
		Type:         ev.Type,
		Timestamp:    ev.CreatedAt,
		Body:         body,
	})
}

func (r *RabbitMQ) Close() error {
	if r.channel != nil {
		_ = r.channel.Close()
	}
	if r.conn != nil {
		return r.conn.Close()
	}
	return nil
}
