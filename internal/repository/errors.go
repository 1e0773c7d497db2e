// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow handlers to distinguish
// between "the row is missing", "the row is in the wrong state" and a
// genuine database failure without inspecting driver errors themselves.
package repository

import (
	"errors"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/iliyamo/sakila-rental/internal/metrics"
)

var (
	ErrCustomerNotFound  = errors.New("customer not found")
	ErrFilmNotFound      = errors.New("film not found")
	ErrInventoryNotFound = errors.New("inventory item not found")
	ErrRentalNotFound    = errors.New("rental not found")
)

// ErrAlreadyReturned is returned when a return is attempted on a rental
// whose return_date is already set. Nothing is written in that case.
var ErrAlreadyReturned = errors.New("rental already returned")

// ErrNotAvailable is returned when every copy in question has an open
// rental, so nothing can be rented.
var ErrNotAvailable = errors.New("no copy available")

// ErrConflict is returned when a delete or update cannot be
// performed because of conflicting state, such as deleting a customer
// that rentals or payments still reference. Handlers should translate
// this into an HTTP 409 response.
var ErrConflict = errors.New("conflict")

// MySQL server error numbers this package reacts to.
const (
	errRowIsReferenced uint16 = 1451 // ER_ROW_IS_REFERENCED_2
	errNoReferencedRow uint16 = 1452 // ER_NO_REFERENCED_ROW_2
)

// mysqlErrNumber extracts the server error number, or 0 for other errors.
func mysqlErrNumber(err error) uint16 {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number
	}
	return 0
}

// observe feeds the query histogram.  Sentinel outcomes are not failures.
func observe(op string, start time.Time, err error) {
	if isSentinel(err) {
		err = nil
	}
	metrics.RecordDBQuery(op, time.Since(start), err)
}

func isSentinel(err error) bool {
	for _, s := range []error{
		ErrCustomerNotFound, ErrFilmNotFound, ErrInventoryNotFound, ErrRentalNotFound,
		ErrAlreadyReturned, ErrNotAvailable, ErrConflict,
	} {
		if errors.Is(err, s) {
			return true
		}
	}
	return false
}
