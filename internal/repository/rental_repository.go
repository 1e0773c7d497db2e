package repository

import (
    "context"
    "database/sql"
    "errors"
    "fmt"
    "time"

    "github.com/iliyamo/sakila-rental/internal/logging"
    "github.com/iliyamo/sakila-rental/internal/model"
)

// RentalRepo creates and closes rentals.  Availability is derived from open
// rentals, and every check-then-write sequence runs either inside one
// transaction that holds a row lock on the inventory being rented, or as a
// single conditional UPDATE.  Timestamps are written in UTC with second
// precision to match the DATETIME columns.
type RentalRepo struct {
    db      *sql.DB
    staffID int64
    now     func() time.Time
}

// NewRentalRepo returns a RentalRepo that records staffID on new rentals.
func NewRentalRepo(db *sql.DB, staffID int64) *RentalRepo {
    return &RentalRepo{db: db, staffID: staffID, now: time.Now}
}

func (r *RentalRepo) timestamp() time.Time {
    return r.now().UTC().Truncate(time.Second)
}

// RentInventory rents one specific copy to a customer.  It returns
// ErrInventoryNotFound or ErrCustomerNotFound when either row is missing
// and ErrNotAvailable when the copy already has an open rental.  No row
// is written in any of those cases.
func (r *RentalRepo) RentInventory(ctx context.Context, inventoryID, customerID int64) (rent *model.Rental, err error) {
    defer func(start time.Time) { observe("rent_inventory", start, err) }(time.Now())
    tx, err := r.db.BeginTx(ctx, nil)
    if err != nil {
        return nil, err
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()
    // The lock must be taken before any plain read so that the open-rental
    // count below sees rentals committed by whoever held the lock before us.
    if err = lockInventoryTx(ctx, tx, inventoryID); err != nil {
        return nil, err
    }
    if err = customerExistsTx(ctx, tx, customerID); err != nil {
        return nil, err
    }
    open, err := openRentalCountTx(ctx, tx, inventoryID)
    if err != nil {
        return nil, err
    }
    if open > 0 {
        return nil, ErrNotAvailable
    }
    rent, err = r.insertTx(ctx, tx, inventoryID, customerID)
    if err != nil {
        return nil, err
    }
    if err = tx.Commit(); err != nil {
        return nil, err
    }
    committed = true
    return rent, nil
}

// RentFilm rents the free copy of a film with the lowest inventory id.  All
// copies of the film are locked for the duration of the transaction, so two
// concurrent callers can never pick the same copy.  It returns
// ErrFilmNotFound, ErrCustomerNotFound or ErrNotAvailable.
func (r *RentalRepo) RentFilm(ctx context.Context, filmID, customerID int64) (rent *model.Rental, err error) {
    defer func(start time.Time) { observe("rent_film", start, err) }(time.Now())
    tx, err := r.db.BeginTx(ctx, nil)
    if err != nil {
        return nil, err
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()
    copies, err := lockFilmInventoryTx(ctx, tx, filmID)
    if err != nil {
        return nil, err
    }
    if copies == 0 {
        var one int
        err = tx.QueryRowContext(ctx, `SELECT 1 FROM film WHERE film_id = ?`, filmID).Scan(&one)
        if errors.Is(err, sql.ErrNoRows) {
            return nil, ErrFilmNotFound
        }
        if err != nil {
            return nil, err
        }
        return nil, ErrNotAvailable
    }
    if err = customerExistsTx(ctx, tx, customerID); err != nil {
        return nil, err
    }
    const pick = `SELECT i.inventory_id
                  FROM inventory i
                  LEFT JOIN rental r ON r.inventory_id = i.inventory_id AND r.return_date IS NULL
                  WHERE i.film_id = ? AND r.rental_id IS NULL
                  ORDER BY i.inventory_id
                  LIMIT 1`
    var inventoryID int64
    err = tx.QueryRowContext(ctx, pick, filmID).Scan(&inventoryID)
    if errors.Is(err, sql.ErrNoRows) {
        return nil, ErrNotAvailable
    }
    if err != nil {
        return nil, err
    }
    rent, err = r.insertTx(ctx, tx, inventoryID, customerID)
    if err != nil {
        return nil, err
    }
    if err = tx.Commit(); err != nil {
        return nil, err
    }
    committed = true
    return rent, nil
}

// Return closes an open rental with a single conditional UPDATE, so two
// concurrent returns cannot both succeed.  It returns ErrRentalNotFound
// for an unknown id and ErrAlreadyReturned, without writing, when
// return_date is already set.  Once the UPDATE has landed the return is
// reported as done even if reloading the row fails; the result then only
// carries the id and the return date that was written.
func (r *RentalRepo) Return(ctx context.Context, rentalID int64) (rent *model.Rental, err error) {
    defer func(start time.Time) { observe("return_rental", start, err) }(time.Now())
    const q = `UPDATE rental SET return_date = ? WHERE rental_id = ? AND return_date IS NULL`
    returnedAt := r.timestamp()
    res, err := r.db.ExecContext(ctx, q, returnedAt, rentalID)
    if err != nil {
        return nil, err
    }
    n, err := res.RowsAffected()
    if err != nil {
        return nil, err
    }
    if n == 0 {
        // Nothing changed: tell "missing" apart from "already returned".
        var returned sql.NullTime
        err = r.db.QueryRowContext(ctx, `SELECT return_date FROM rental WHERE rental_id = ?`, rentalID).Scan(&returned)
        if errors.Is(err, sql.ErrNoRows) {
            return nil, ErrRentalNotFound
        }
        if err != nil {
            return nil, err
        }
        return nil, ErrAlreadyReturned
    }
    rent, reloadErr := r.GetByID(ctx, rentalID)
    if reloadErr != nil {
        logging.Ctx(ctx).Warn().Err(reloadErr).Int64("rental_id", rentalID).Msg("reload returned rental failed")
        return &model.Rental{ID: rentalID, ReturnDate: &returnedAt}, nil
    }
    return rent, nil
}

// GetByID loads a rental.  It returns ErrRentalNotFound if absent.
func (r *RentalRepo) GetByID(ctx context.Context, rentalID int64) (*model.Rental, error) {
    const q = `SELECT rental_id, rental_date, inventory_id, customer_id, return_date, staff_id
               FROM rental WHERE rental_id = ?`
    var (
        rent     model.Rental
        returned sql.NullTime
    )
    err := r.db.QueryRowContext(ctx, q, rentalID).Scan(
        &rent.ID, &rent.RentalDate, &rent.InventoryID, &rent.CustomerID, &returned, &rent.StaffID,
    )
    if err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return nil, ErrRentalNotFound
        }
        return nil, err
    }
    if returned.Valid {
        t := returned.Time
        rent.ReturnDate = &t
    }
    return &rent, nil
}

// ListByCustomer returns a customer's rentals with open ones first, then
// the most recently returned.  An unknown customer yields an empty slice.
func (r *RentalRepo) ListByCustomer(ctx context.Context, customerID int64) ([]model.CustomerRental, error) {
    const q = `SELECT r.rental_id, f.title, r.inventory_id, r.rental_date, r.return_date
               FROM rental r
               JOIN inventory i ON i.inventory_id = r.inventory_id
               JOIN film f      ON f.film_id = i.film_id
               WHERE r.customer_id = ?
               ORDER BY r.return_date IS NULL DESC, r.return_date DESC, r.rental_id DESC`
    rows, err := r.db.QueryContext(ctx, q, customerID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    out := make([]model.CustomerRental, 0)
    for rows.Next() {
        var (
            cr       model.CustomerRental
            returned sql.NullTime
        )
        if err := rows.Scan(&cr.RentalID, &cr.Title, &cr.InventoryID, &cr.RentalDate, &returned); err != nil {
            return nil, err
        }
        if returned.Valid {
            t := returned.Time
            cr.ReturnDate = &t
        }
        out = append(out, cr)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return out, nil
}

// insertTx writes the rental row.  The caller must already hold the lock on
// inventoryID and must commit or roll back tx.
func (r *RentalRepo) insertTx(ctx context.Context, tx *sql.Tx, inventoryID, customerID int64) (*model.Rental, error) {
    rent := &model.Rental{
        RentalDate:  r.timestamp(),
        InventoryID: inventoryID,
        CustomerID:  customerID,
        StaffID:     r.staffID,
    }
    const q = `INSERT INTO rental (rental_date, inventory_id, customer_id, staff_id) VALUES (?, ?, ?, ?)`
    res, err := tx.ExecContext(ctx, q, rent.RentalDate, rent.InventoryID, rent.CustomerID, rent.StaffID)
    if err != nil {
        if mysqlErrNumber(err) == errNoReferencedRow {
            // The customer vanished between the existence check and the insert.
            return nil, fmt.Errorf("insert rental: %w", ErrCustomerNotFound)
        }
        return nil, err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return nil, err
    }
    rent.ID = id
    return rent, nil
}

func lockInventoryTx(ctx context.Context, tx *sql.Tx, inventoryID int64) error {
    var id int64
    err := tx.QueryRowContext(ctx, `SELECT inventory_id FROM inventory WHERE inventory_id = ? FOR UPDATE`, inventoryID).Scan(&id)
    if errors.Is(err, sql.ErrNoRows) {
        return ErrInventoryNotFound
    }
    return err
}

// lockFilmInventoryTx locks every copy of a film and returns how many exist.
func lockFilmInventoryTx(ctx context.Context, tx *sql.Tx, filmID int64) (int, error) {
    rows, err := tx.QueryContext(ctx, `SELECT inventory_id FROM inventory WHERE film_id = ? ORDER BY inventory_id FOR UPDATE`, filmID)
    if err != nil {
        return 0, err
    }
    defer rows.Close()
    n := 0
    for rows.Next() {
        var id int64
        if err := rows.Scan(&id); err != nil {
            return 0, err
        }
        n++
    }
    if err := rows.Err(); err != nil {
        return 0, err
    }
    return n, nil
}

func customerExistsTx(ctx context.Context, tx *sql.Tx, customerID int64) error {
    var id int64
    err := tx.QueryRowContext(ctx, `SELECT customer_id FROM customer WHERE customer_id = ?`, customerID).Scan(&id)
    if errors.Is(err, sql.ErrNoRows) {
        return ErrCustomerNotFound
    }
    return err
}

func openRentalCountTx(ctx context.Context, tx *sql.Tx, inventoryID int64) (int, error) {
    var n int
    err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM rental WHERE inventory_id = ? AND return_date IS NULL`, inventoryID).Scan(&n)
    return n, err
}
