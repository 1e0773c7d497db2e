// Package queue defines message payloads exchanged over the message broker.
package queue

import (
    "time"

    "github.com/iliyamo/sakila-rental/internal/model"
)

// RentalQueueName is the durable queue rental events are published to.
const RentalQueueName = "rental.events"

// Event types carried in RentalEvent.Type.
const (
    EventRentalCreated  = "rental.created"
    EventRentalReturned = "rental.returned"
)

// RentalEvent is published after a rental is created or returned.  It
// carries enough of the rental row for downstream consumers to log or
// aggregate without querying the database.
type RentalEvent struct {
    Type        string     `json:"type"`
    RentalID    int64      `json:"rental_id"`
    InventoryID int64      `json:"inventory_id"`
    CustomerID  int64      `json:"customer_id"`
    StaffID     int64      `json:"staff_id"`
    RentalDate  time.Time  `json:"rental_date"`
    ReturnDate  *time.Time `json:"return_date,omitempty"`
    OccurredAt  time.Time  `json:"occurred_at"`
}

// NewRentalEvent builds the event for rental r.
func NewRentalEvent(eventType string, r model.Rental, at time.Time) RentalEvent {
    return RentalEvent{
        Type:        eventType,
        RentalID:    r.ID,
        InventoryID: r.InventoryID,
        CustomerID:  r.CustomerID,
        StaffID:     r.StaffID,
        RentalDate:  r.RentalDate,
        ReturnDate:  r.ReturnDate,
        OccurredAt:  at.UTC(),
    }
}
