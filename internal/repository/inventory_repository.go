package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/sakila-rental/internal/model"
)

// InventoryRepo derives copy availability from the rental table.  A copy
// is free when it has no rental with a NULL return_date; no counter is
// stored anywhere.
type InventoryRepo struct {
	db *sql.DB
}

// NewInventoryRepo returns a new InventoryRepo bound to the given database.
func NewInventoryRepo(db *sql.DB) *InventoryRepo { return &InventoryRepo{db: db} }

// HasFreeCopy reports whether at least one copy of the film is on the
// shelf.  An unknown film simply yields false.
func (r *InventoryRepo) HasFreeCopy(ctx context.Context, filmID int64) (_ bool, err error) {
	defer func(start time.Time) { observe("has_free_copy", start, err) }(time.Now())
	const q = `SELECT EXISTS (
                   SELECT 1
                   FROM inventory i
                   LEFT JOIN rental r ON r.inventory_id = i.inventory_id AND r.return_date IS NULL
                   WHERE i.film_id = ? AND r.rental_id IS NULL
               )`
	var ok bool
	if err = r.db.QueryRowContext(ctx, q, filmID).Scan(&ok); err != nil {
		return false, err
	}
	return ok, nil
}

// FreeCopies lists the copies of a film with no open rental, ordered by
// inventory id.
func (r *InventoryRepo) FreeCopies(ctx context.Context, filmID int64) (_ []model.FreeCopy, err error) {
	defer func(start time.Time) { observe("free_copies", start, err) }(time.Now())
	const q = `SELECT i.inventory_id, f.film_id, f.title
               FROM inventory i
               JOIN film f ON f.film_id = i.film_id
               LEFT JOIN rental r ON r.inventory_id = i.inventory_id AND r.return_date IS NULL
               WHERE r.rental_id IS NULL AND f.film_id = ?
               ORDER BY i.inventory_id`
	rows, err := r.db.QueryContext(ctx, q, filmID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.FreeCopy, 0)
	for rows.Next() {
		var c model.FreeCopy
		if err := rows.Scan(&c.InventoryID, &c.FilmID, &c.FilmTitle); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
