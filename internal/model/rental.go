package model

import "time"

// Rental records one checkout of an inventory item by a customer.  A
// rental is open (the copy is out) while ReturnDate is nil.  Rows are
// created by a rent operation and mutated exactly once, by a return.
//
// Fields:
//  ID          – primary key identifier.
//  RentalDate  – when the copy was handed out (UTC).
//  InventoryID – copy being rented.
//  CustomerID  – renting customer.
//  ReturnDate  – when the copy came back; nil while outstanding.
//  StaffID     – staff member recorded on the rental.
type Rental struct {
    ID          int64      // rental.rental_id
    RentalDate  time.Time  // rental.rental_date
    InventoryID int64      // rental.inventory_id
    CustomerID  int64      // rental.customer_id
    ReturnDate  *time.Time // rental.return_date (nullable)
    StaffID     int64      // rental.staff_id
}

// Open reports whether the rental is still outstanding.
func (r Rental) Open() bool { return r.ReturnDate == nil }

// CustomerRental is one row of a customer's rental history.
type CustomerRental struct {
    RentalID    int64      `json:"rental_id"`
    Title       string     `json:"title"`
    InventoryID int64      `json:"inventory_id"`
    RentalDate  time.Time  `json:"rental_date"`
    ReturnDate  *time.Time `json:"return_date"`
}
