// Package events publishes booking domain events to a message broker.
// Publishing is fire-and-record: callers log failures and carry on, since the
// booking has already been committed by the time an event is emitted.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event types. They double as AMQP routing keys and the Kafka "event-type" header.
const (
	TypeBookingCreated   = "booking.created"
	TypeBookingCancelled = "booking.cancelled"
)

// Event is the payload published for every booking state change.
type Event struct {
	Type            string    `json:"type"`
	BookingPublicID uuid.UUID `json:"booking_id"`
	ListingPublicID uuid.UUID `json:"listing_id"`
	TenantPublicID  uuid.UUID `json:"tenant_id"`
	StartDate       string    `json:"start_date,omitempty"`
	EndDate         string    `json:"end_date,omitempty"`
	TotalPrice      int       `json:"total_price,omitempty"`
	OccurredAt      time.Time `json:"occurred_at"`
}

// Publisher sends events to a broker.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

func (e Event) encode() ([]byte, error) {
	return json.Marshal(e)
}

// Noop discards every event. Used when EVENTS_BACKEND is "none".
type Noop struct{}

func (Noop) Publish(context.Context, Event) error { return nil }
func (Noop) Close() error                         { return nil }

var _ Publisher = Noop{}
