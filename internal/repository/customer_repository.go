package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/iliyamo/sakila-rental/internal/model"
)

// CustomerRepo reads and writes the customer table.  New customers are
// attached to a fixed store and address until those are chosen by clients.
type CustomerRepo struct {
	db        *sql.DB
	storeID   int64
	addressID int64
	now       func() time.Time
}

// NewCustomerRepo constructs a CustomerRepo.  storeID and addressID are the
// placeholders written on inserted customers.
func NewCustomerRepo(db *sql.DB, storeID, addressID int64) *CustomerRepo {
	return &CustomerRepo{db: db, storeID: storeID, addressID: addressID, now: time.Now}
}

// Exists reports whether a customer with the id is present.
func (r *CustomerRepo) Exists(ctx context.Context, id int64) (ok bool, err error) {
	defer func(start time.Time) { observe("customer_exists", start, err) }(time.Now())
	err = r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM customer WHERE customer_id = ?)`, id).Scan(&ok)
	return ok, err
}

// List returns every customer with its address, city and country flattened,
// ordered by customer id.
func (r *CustomerRepo) List(ctx context.Context) (_ []model.CustomerListing, err error) {
	defer func(start time.Time) { observe("list_customers", start, err) }(time.Now())
	const q = `SELECT c.customer_id, c.first_name, c.last_name, c.email,
                      a.address, ci.city, co.country, a.phone,
                      c.store_id, c.create_date, c.last_update
               FROM customer c
               JOIN address a  ON a.address_id = c.address_id
               JOIN city ci    ON ci.city_id = a.city_id
               JOIN country co ON co.country_id = ci.country_id
               ORDER BY c.customer_id`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.CustomerListing, 0)
	for rows.Next() {
		var (
			c     model.CustomerListing
			email sql.NullString
		)
		if err := rows.Scan(
			&c.ID, &c.FirstName, &c.LastName, &email,
			&c.Address, &c.City, &c.Country, &c.Phone,
			&c.StoreID, &c.RegistrationDate, &c.LastUpdate,
		); err != nil {
			return nil, err
		}
		c.Email = stringPtr(email)
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Create inserts a customer and returns its generated id.
func (r *CustomerRepo) Create(ctx context.Context, in model.CustomerInput) (_ int64, err error) {
	defer func(start time.Time) { observe("insert_customer", start, err) }(time.Now())
	const q = `INSERT INTO customer (store_id, first_name, last_name, email, address_id, create_date)
               VALUES (?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q,
		r.storeID, in.FirstName, in.LastName, nullableEmail(in.Email), r.addressID,
		r.now().UTC().Truncate(time.Second),
	)
	if err != nil {
		return 0, fmt.Errorf("insert customer: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return id, nil
}

// Update overwrites a customer's names and email.  An unknown id is not an
// error: the statement simply affects no rows.
func (r *CustomerRepo) Update(ctx context.Context, id int64, in model.CustomerInput) (err error) {
	defer func(start time.Time) { observe("update_customer", start, err) }(time.Now())
	const q = `UPDATE customer SET first_name = ?, last_name = ?, email = ? WHERE customer_id = ?`
	_, err = r.db.ExecContext(ctx, q, in.FirstName, in.LastName, nullableEmail(in.Email), id)
	return err
}

// Delete removes a customer.  An unknown id is not an error.  When rentals
// or payments still reference the customer the schema's foreign keys reject
// the delete and ErrConflict is returned; nothing is removed.
func (r *CustomerRepo) Delete(ctx context.Context, id int64) (err error) {
	defer func(start time.Time) { observe("delete_customer", start, err) }(time.Now())
	_, err = r.db.ExecContext(ctx, `DELETE FROM customer WHERE customer_id = ?`, id)
	if err != nil {
		if mysqlErrNumber(err) == errRowIsReferenced {
			return fmt.Errorf("delete customer %d: %w", id, ErrConflict)
		}
		return err
	}
	return nil
}

// nullableEmail stores a blank email as NULL.
func nullableEmail(email string) any {
	if strings.TrimSpace(email) == "" {
		return nil
	}
	return email
}
