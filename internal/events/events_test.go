package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleEvent() Event {
	return Event{
		Type:            TypeBookingCreated,
		BookingPublicID: uuid.New(),
		ListingPublicID: uuid.New(),
		TenantPublicID:  uuid.New(),
		StartDate:       "2030-01-10",
		EndDate:         "2030-01-12",
		TotalPrice:      200,
		OccurredAt:      time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestKafkaPublisher_Publish(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	e := sampleEvent()

	producer.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		key, _ := msg.Key.Encode()
		if string(key) != e.ListingPublicID.String() {
			return errors.New("message must be keyed by listing id")
		}
		value, _ := msg.Value.Encode()
		var got Event
		if err := json.Unmarshal(value, &got); err != nil {
			return err
		}
		if got.BookingPublicID != e.BookingPublicID {
			return errors.New("booking id mismatch")
		}
		return nil
	})

	p := NewKafkaPublisherWithProducer(producer, "bookings")
	require.NoError(t, p.Publish(context.Background(), e))
	require.NoError(t, p.Close())
}

func TestKafkaPublisher_Publish_Error(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	p := NewKafkaPublisherWithProducer(producer, "bookings")
	err := p.Publish(context.Background(), sampleEvent())

	assert.ErrorIs(t, err, sarama.ErrOutOfBrokers)
	require.NoError(t, p.Close())
}

// mockChannel records publishes.
type mockChannel struct {
	exchange, key string
	msg           amqp.Publishing
	err           error
}

func (m *mockChannel) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp.Publishing) error {
	m.exchange, m.key, m.msg = exchange, key, msg
	return m.err
}

func (m *mockChannel) Close() error { return nil }

func TestAMQPPublisher_Publish_RoutesByType(t *testing.T) {
	ch := &mockChannel{}
	p := &AMQPPublisher{ch: ch, exchange: "homestay"}
	e := sampleEvent()
	e.Type = TypeBookingCancelled

	require.NoError(t, p.Publish(context.Background(), e))

	assert.Equal(t, "homestay", ch.exchange)
	assert.Equal(t, TypeBookingCancelled, ch.key)
	assert.Equal(t, "application/json", ch.msg.ContentType)
	assert.Equal(t, amqp.Persistent, ch.msg.DeliveryMode)

	var got Event
	require.NoError(t, json.Unmarshal(ch.msg.Body, &got))
	assert.Equal(t, e.ListingPublicID, got.ListingPublicID)
}

func TestAMQPPublisher_Publish_Error(t *testing.T) {
	p := &AMQPPublisher{ch: &mockChannel{err: amqp.ErrClosed}, exchange: "homestay"}

	err := p.Publish(context.Background(), sampleEvent())

	assert.ErrorIs(t, err, amqp.ErrClosed)
}

func TestNoop(t *testing.T) {
	var p Publisher = Noop{}
	assert.NoError(t, p.Publish(context.Background(), sampleEvent()))
	assert.NoError(t, p.Close())
}
