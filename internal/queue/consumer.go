package queue

import (
    "context"
    "errors"
    "fmt"
    "os"
    "path/filepath"
    "time"

    "github.com/goccy/go-json"
    amqp "github.com/rabbitmq/amqp091-go"

    "github.com/iliyamo/sakila-rental/internal/logging"
)

// RentalLogFile is the file name written inside the consumer's log dir.
const RentalLogFile = "rental.log"

// StartRentalConsumer connects to RabbitMQ, declares the rental.events queue
// (durable) and consumes it until ctx is cancelled or the broker closes the
// delivery channel.  There is no reconnect loop: when the connection ends the
// consumer logs and returns.  Each event is appended to dir/rental.log.
// Messages that cannot be decoded or written are rejected without requeue.
func StartRentalConsumer(ctx context.Context, url, dir string) error {
    conn, err := amqp.Dial(url)
    if err != nil {
        return fmt.Errorf("rental-consumer: dial broker: %w", err)
    }
    defer func() { _ = conn.Close() }()

    ch, err := conn.Channel()
    if err != nil {
        return fmt.Errorf("rental-consumer: channel open: %w", err)
    }
    defer func() { _ = ch.Close() }()

    if err := ch.Qos(50, 0, false); err != nil {
        logging.Warn().Err(err).Msg("rental-consumer: set QoS failed")
    }

    if _, err := ch.QueueDeclare(RentalQueueName, true, false, false, false, nil); err != nil {
        return fmt.Errorf("rental-consumer: queue declare: %w", err)
    }

    msgs, err := ch.Consume(RentalQueueName, "", false, false, false, false, nil)
    if err != nil {
        return fmt.Errorf("rental-consumer: queue consume: %w", err)
    }
    logging.Info().Str("queue", RentalQueueName).Str("dir", dir).Msg("rental-consumer: started")

    for {
        select {
        case <-ctx.Done():
            logging.Info().Msg("rental-consumer: stopping")
            return nil
        case d, ok := <-msgs:
            if !ok {
                logging.Warn().Msg("rental-consumer: deliveries channel closed")
                return errors.New("rental-consumer: deliveries channel closed")
            }
            if err := handleMessage(dir, d.Body); err != nil {
                logging.Error().Err(err).Msg("rental-consumer: handle message failed")
                _ = d.Nack(false, false)
                continue
            }
            _ = d.Ack(false)
        }
    }
}

func handleMessage(dir string, body []byte) error {
    var ev RentalEvent
    if err := json.Unmarshal(body, &ev); err != nil {
        return fmt.Errorf("unmarshal: %w", err)
    }
    if ev.Type == "" || ev.RentalID == 0 {
        return fmt.Errorf("malformed event: type=%q rental_id=%d", ev.Type, ev.RentalID)
    }
    if err := os.MkdirAll(dir, 0o755); err != nil {
        return fmt.Errorf("mkdir %s: %w", dir, err)
    }
    f, err := os.OpenFile(filepath.Join(dir, RentalLogFile), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
    if err != nil {
        return fmt.Errorf("open log file: %w", err)
    }
    defer f.Close()

    if _, err := f.WriteString(formatLine(ev)); err != nil {
        return fmt.Errorf("write log: %w", err)
    }
    return nil
}

func formatLine(ev RentalEvent) string {
    returned := "-"
    if ev.ReturnDate != nil {
        returned = ev.ReturnDate.UTC().Format(time.RFC3339)
    }
    return fmt.Sprintf("[%s] %s | rental_id=%d | inventory_id=%d | customer_id=%d | staff_id=%d | rented=%s | returned=%s\n",
        ev.OccurredAt.UTC().Format(time.RFC3339), ev.Type, ev.RentalID, ev.InventoryID, ev.CustomerID, ev.StaffID,
        ev.RentalDate.UTC().Format(time.RFC3339), returned)
}
