// Package events publishes reservation lifecycle events to RabbitMQ so
// downstream consumers (dealership dashboards, notifications) can react.
// Publishing is best-effort: a broker outage never fails the write path.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/FleetDesk/FleetDesk/internal/common/config"
	"github.com/FleetDesk/FleetDesk/internal/common/logger"
	"github.com/FleetDesk/FleetDesk/internal/common/middleware"
	amqp "github.com/rabbitmq/amqp091-go"
)

// Routing keys for reservation lifecycle events.
const (
	RoutingReservationCreated   = "reservation.created"
	RoutingReservationCancelled = "reservation.cancelled"
)

// Publisher sends JSON events to a topic exchange. The zero value and a nil
// *Publisher are valid no-op publishers.
type Publisher struct {
	ch       *amqp.Channel
	conn     *amqp.Connection
	exchange string
	breaker  *middleware.CircuitBreaker
	log      logger.Logger
}

// NewPublisher dials RabbitMQ and declares the topic exchange. Returns nil
// (a no-op publisher) when the broker is disabled in config.
func NewPublisher(cfg config.BrokerConfig, log logger.Logger) (*Publisher, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	if err := ch.ExchangeDeclare(cfg.Exchange, "topic", true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("declare exchange %s: %w", cfg.Exchange, err)
	}

	return &Publisher{
		ch:       ch,
		conn:     conn,
		exchange: cfg.Exchange,
		breaker:  middleware.NewCircuitBreaker("rabbitmq-publish", 5, 30*time.Second),
		log:      log,
	}, nil
}

// Publish marshals payload and publishes it under routingKey. Failures are
// logged and absorbed; the breaker keeps a dead broker from adding latency
// to every request.
func (p *Publisher) Publish(ctx context.Context, routingKey string, payload interface{}) {
	if p == nil || p.ch == nil {
		return
	}

	body, err := json.Marshal(payload)
	if err != nil {
		if p.log != nil {
			p.log.Errorf("marshal event %s: %v", routingKey, err)
		}
		return
	}

	err = p.breaker.Call(ctx, func() error {
		pubCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		return p.ch.PublishWithContext(pubCtx, p.exchange, routingKey, false, false, amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		})
	})
	if err != nil && p.log != nil {
		p.log.Warnf("publish event %s failed: %v", routingKey, err)
	}
}

// Close releases the channel and connection.
func (p *Publisher) Close() error {
	if p == nil {
		return nil
	}
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
