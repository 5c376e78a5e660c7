// Package notify publishes domain events for other services to consume.
package notify

import (
	"context"
	"time"
)

const TypeInquirySubmitted = "inquiry.submitted"

// Event is the JSON body of a published message.
type Event struct {
	Type      string    `json:"type"`
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

// Publisher delivers events to a broker.
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
	Close() error
}

// Nop drops every event. It is used when no broker is configured.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
func (Nop) Close() error                         { return nil }
