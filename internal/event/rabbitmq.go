package event

import (
	"context"
	"encoding/json"
	"fmt"

	"bookingpt/internal/metrics"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	ExchangeName = "booking-events"
	ExchangeKind = "topic"
)

// RabbitMQEmitter publishes booking events to a topic exchange, routed by
// the new status (e.g. booking.confirmed).
type RabbitMQEmitter struct {
	conn    *amqp.Connection
	channel *amqp.Channel
}

func NewRabbitMQEmitter(url string) (*RabbitMQEmitter, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("rabbitmq dial: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("rabbitmq channel: %w", err)
	}

	if err := ch.ExchangeDeclare(ExchangeName, ExchangeKind, true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("rabbitmq exchange declare: %w", err)
	}

	return &RabbitMQEmitter{conn: conn, channel: ch}, nil
}

func (e *RabbitMQEmitter) EmitBookingEvent(ctx context.Context, ev BookingEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	err = e.channel.PublishWithContext(
		ctx,
		ExchangeName,
		RoutingKey(ev),
		false,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			MessageId:   ev.ID,
			Timestamp:   ev.OccurredAt,
			Body:        body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish event: %w", err)
	}

	metrics.RecordEventPublished(ev.NewStatus)
	return nil
}

// RoutingKey maps an event to its topic routing key.
func RoutingKey(ev BookingEvent) string {
	return "booking." + ev.NewStatus
}

func (e *RabbitMQEmitter) Close() {
	if e.channel != nil {
		e.channel.Close()
	}
	if e.conn != nil {
		e.conn.Close()
	}
}
