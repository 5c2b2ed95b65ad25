// Package events publishes recorded chat exchanges to a RabbitMQ topic
// exchange so downstream consumers (reporting, CRM sync) can react to them.
// Publishing is best effort: failures are logged, never surfaced to the
// conversation.
package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/rabbitmq/amqp091-go"

	"fieldbot/internal/metrics"
)

const (
	RoutingKeyExchangeRecorded = "chat.exchange.recorded"
	eventTypeExchangeRecorded  = "chat.exchange.recorded.v1"

	publishTimeout = 5 * time.Second
)

// Meta describes an event's identity and origin.
type Meta struct {
	ID       string    `json:"id"`
	Producer string    `json:"producer,omitempty"`
	Time     time.Time `json:"time"`
	Type     string    `json:"type"`
}

// Envelope is the wire format for every event.
type Envelope struct {
	Meta Meta `json:"meta"`
	Data any  `json:"data"`
}

// ExchangeRecorded is the payload for a recorded chat exchange.
type ExchangeRecorded struct {
	AgentID  int64  `json:"agent_id"`
	Message  string `json:"message"`
	Response string `json:"response"`
}

// Publisher emits events on a durable topic exchange. It implements
// domain.ExchangeRecorder.
type Publisher struct {
	conn     *amqp091.Connection
	exchange string
	producer string
	logger   *slog.Logger

	published *metrics.Counter
	failed    *metrics.Counter
}

func NewPublisher(url, exchange, producer string, logger *slog.Logger) (*Publisher, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}
	defer ch.Close()
	if err := ch.ExchangeDeclare(
		exchange, "topic", true, false, false, false, nil,
	); err != nil {
		conn.Close()
		return nil, err
	}

	return &Publisher{
		conn:     conn,
		exchange: exchange,
		producer: producer,
		logger:   logger,

		published: metrics.Collector.Counter("fieldbot_events_published_total", "Events published to the broker", ""),
		failed:    metrics.Collector.Counter("fieldbot_events_failed_total", "Event publishes that failed", ""),
	}, nil
}

// Append publishes an exchange-recorded event. The publish runs in its own
// goroutine with a short deadline so a slow broker never delays a reply;
// the broker write is detached from the caller's context on purpose.
func (p *Publisher) Append(ctx context.Context, agentID int64, message, response string) error {
	env := Envelope{
		Meta: Meta{
			ID:       uuid.NewString(),
			Producer: p.producer,
			Time:     time.Now().UTC(),
			Type:     eventTypeExchangeRecorded,
		},
		Data: ExchangeRecorded{
			AgentID:  agentID,
			Message:  message,
			Response: response,
		},
	}

	go func() {
		pubCtx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()
		if err := p.publish(pubCtx, RoutingKeyExchangeRecorded, env); err != nil {
			p.failed.Inc()
			p.logger.Error("event publish failed",
				"type", env.Meta.Type,
				"agent_id", agentID,
				"error", err,
			)
			return
		}
		p.published.Inc()
	}()
	return nil
}

func (p *Publisher) publish(ctx context.Context, key string, env Envelope) error {
	ch, err := p.conn.Channel()
	if err != nil {
		return err
	}
	defer ch.Close()

	body, err := json.Marshal(env)
	if err != nil {
		return err
	}

	return ch.PublishWithContext(
		ctx, p.exchange, key, false, false,
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			MessageId:    env.Meta.ID,
			Timestamp:    env.Meta.Time,
			Body:         body,
		},
	)
}

func (p *Publisher) Close() error {
	return p.conn.Close()
}
