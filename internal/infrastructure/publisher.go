package infrastructure

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/rabbitmq/amqp091-go"
)

const producerName = "atendimento"

// Envelope is the message body published for every pipeline event
type Envelope struct {
	Meta EnvelopeMeta `json:"meta"`
	Data any          `json:"data"`
}

type EnvelopeMeta struct {
	ID            string    `json:"id"`
	CorrelationID string    `json:"correlation_id,omitempty"`
	Producer      string    `json:"producer"`
	Time          time.Time `json:"time"`
	Type          string    `json:"type"`
}

// NewEnvelope stamps data with a fresh id; the request id, when present,
// becomes the correlation id
func NewEnvelope(ctx context.Context, eventType string, data any) Envelope {
	return Envelope{
		Meta: EnvelopeMeta{
			ID:            uuid.NewString(),
			CorrelationID: RequestID(ctx),
			Producer:      producerName,
			Time:          time.Now().UTC(),
			Type:          eventType,
		},
		Data: data,
	}
}

// AMQPPublisher publishes pipeline events to a topic exchange; the event type
// is the routing key
type AMQPPublisher struct {
	conn     *amqp091.Connection
	exchange string
	log      *slog.Logger
}

func NewAMQPPublisher(url, exchange string, logger *slog.Logger) (*AMQPPublisher, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("amqp dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("amqp channel: %w", err)
	}
	defer ch.Close()
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		conn.Close()
		return nil, fmt.Errorf("amqp exchange %q: %w", exchange, err)
	}

	return &AMQPPublisher{
		conn:     conn,
		exchange: exchange,
		log:      logger.With("component", "publisher"),
	}, nil
}

func (p *AMQPPublisher) Publish(ctx context.Context, eventType string, data any) error {
	env := NewEnvelope(ctx, eventType, data)
	body, err := json.Marshal(env)
	if err != nil {
		return err
	}

	ch, err := p.conn.Channel()
	if err != nil {
		return err
	}
	defer ch.Close()

	err = ch.PublishWithContext(ctx, p.exchange, eventType, false, false, amqp091.Publishing{
		ContentType:   "application/json",
		DeliveryMode:  amqp091.Persistent,
		MessageId:     env.Meta.ID,
		CorrelationId: env.Meta.CorrelationID,
		Timestamp:     env.Meta.Time,
		Body:          body,
	})
	if err == nil {
		p.log.Debug("published", slog.String("key", eventType), slog.String("exchange", p.exchange))
	}
	return err
}

func (p *AMQPPublisher) Close() error {
	return p.conn.Close()
}

// LogPublisher writes events to the log when no broker is configured
type LogPublisher struct {
	log *slog.Logger
}

func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	return &LogPublisher{log: logger.With("component", "publisher")}
}

func (p *LogPublisher) Publish(ctx context.Context, eventType string, data any) error {
	env := NewEnvelope(ctx, eventType, data)
	p.log.Debug("event", slog.String("type", eventType), slog.String("id", env.Meta.ID), slog.Any("data", data))
	return nil
}

func (p *LogPublisher) Close() error { return nil }
