// Package service holds integrations that run beside the request path,
// such as publishing domain events to RabbitMQ.
package service

import (
    "context"
    "fmt"
    "time"

    "github.com/goccy/go-json"
    amqp "github.com/rabbitmq/amqp091-go"

    "github.com/iliyamo/sakila-rental/internal/logging"
    "github.com/iliyamo/sakila-rental/internal/metrics"
    "github.com/iliyamo/sakila-rental/internal/queue"
)

const defaultDialTimeout = 2 * time.Second

// RentalPublisher publishes RentalEvents to the rental.events queue.  Each
// publish opens its own connection, so the publisher holds no broker state
// and is safe for concurrent use.
type RentalPublisher struct {
    url         string
    dialTimeout time.Duration
}

// NewRentalPublisher returns a publisher for the broker at url.
func NewRentalPublisher(url string) *RentalPublisher {
    return &RentalPublisher{url: url, dialTimeout: defaultDialTimeout}
}

// PublishRental sends ev as a persistent JSON message.  Any error is
// logged, counted and returned; callers are expected to carry on.
func (p *RentalPublisher) PublishRental(ctx context.Context, ev queue.RentalEvent) (err error) {
    defer func() { metrics.RecordRentalEvent(ev.Type, err) }()

    conn, err := amqp.DialConfig(p.url, amqp.Config{Dial: amqp.DefaultDial(p.dialTimeout)})
    if err != nil {
        logging.Ctx(ctx).Warn().Err(err).Msg("rabbitmq: dial failed")
        return fmt.Errorf("dial broker: %w", err)
    }
    defer func() { _ = conn.Close() }()

    ch, err := conn.Channel()
    if err != nil {
        logging.Ctx(ctx).Warn().Err(err).Msg("rabbitmq: channel open failed")
        return fmt.Errorf("open channel: %w", err)
    }
    defer func() { _ = ch.Close() }()

    // Idempotent; durable so messages survive broker restarts.
    if _, err = ch.QueueDeclare(
        queue.RentalQueueName, // name
        true,                  // durable
        false,                 // autoDelete
        false,                 // exclusive
        false,                 // noWait
        nil,                   // args
    ); err != nil {
        logging.Ctx(ctx).Warn().Err(err).Msg("rabbitmq: queue declare failed")
        return fmt.Errorf("declare queue: %w", err)
    }

    body, err := json.Marshal(ev)
    if err != nil {
        return fmt.Errorf("marshal event: %w", err)
    }

    pub := amqp.Publishing{
        ContentType:  "application/json",
        DeliveryMode: amqp.Persistent,
        Type:         ev.Type,
        Timestamp:    time.Now().UTC(),
        Body:         body,
    }
    if err = ch.PublishWithContext(ctx, "", queue.RentalQueueName, false, false, pub); err != nil {
        logging.Ctx(ctx).Warn().Err(err).Msg("rabbitmq: publish failed")
        return fmt.Errorf("publish: %w", err)
    }
    logging.Ctx(ctx).Debug().Str("type", ev.Type).Int64("rental_id", ev.RentalID).Msg("rabbitmq: event published")
    return nil
}
