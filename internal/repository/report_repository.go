package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/sakila-rental/internal/model"
)

// ReportRepo runs the read-only aggregation queries.  Rankings break ties
// on the ascending primary key so results are deterministic.
type ReportRepo struct {
	db *sql.DB
}

// NewReportRepo constructs a ReportRepo with the given DB handle.
func NewReportRepo(db *sql.DB) *ReportRepo { return &ReportRepo{db: db} }

// TopRentedFilms ranks films by their total number of rentals.  Films that
// were never rented are not listed.
func (r *ReportRepo) TopRentedFilms(ctx context.Context, limit int) (out []model.TopRentedFilm, err error) {
	defer func(start time.Time) { observe("top_rented_films", start, err) }(time.Now())
	const q = `SELECT f.film_id, f.title, f.description, f.release_year, f.rating, f.special_features,
                      COUNT(r.rental_id) AS rental_count
               FROM film f
               JOIN inventory i ON i.film_id = f.film_id
               JOIN rental r    ON r.inventory_id = i.inventory_id
               GROUP BY f.film_id, f.title, f.description, f.release_year, f.rating, f.special_features
               ORDER BY rental_count DESC, f.film_id ASC
               LIMIT ?`
	rows, err := r.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out = make([]model.TopRentedFilm, 0, limit)
	for rows.Next() {
		var (
			t        model.TopRentedFilm
			desc     sql.NullString
			year     sql.NullInt64
			rating   sql.NullString
			features sql.NullString
		)
		if err = rows.Scan(&t.ID, &t.Title, &desc, &year, &rating, &features, &t.RentalCount); err != nil {
			return nil, err
		}
		t.Description = stringPtr(desc)
		t.ReleaseYear = int64Ptr(year)
		t.Rating = stringPtr(rating)
		t.SpecialFeatures = stringPtr(features)
		out = append(out, t)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// TopActors ranks actors by the number of distinct films they appear in.
func (r *ReportRepo) TopActors(ctx context.Context, limit int) (out []model.TopActor, err error) {
	defer func(start time.Time) { observe("top_actors", start, err) }(time.Now())
	const q = `SELECT a.actor_id, a.first_name, a.last_name,
                      CONCAT(a.first_name, ' ', a.last_name) AS full_name,
                      COUNT(DISTINCT fa.film_id) AS film_count
               FROM actor a
               JOIN film_actor fa ON fa.actor_id = a.actor_id
               GROUP BY a.actor_id, a.first_name, a.last_name
               ORDER BY film_count DESC, a.actor_id ASC
               LIMIT ?`
	rows, err := r.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out = make([]model.TopActor, 0, limit)
	for rows.Next() {
		var a model.TopActor
		if err = rows.Scan(&a.ID, &a.FirstName, &a.LastName, &a.FullName, &a.FilmCount); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// TopFilmsForActor ranks one actor's films by rental count.  An unknown
// actor, or one whose films were never rented, yields an empty slice.
func (r *ReportRepo) TopFilmsForActor(ctx context.Context, actorID int64, limit int) (out []model.ActorFilm, err error) {
	defer func(start time.Time) { observe("top_films_for_actor", start, err) }(time.Now())
	const q = `SELECT f.film_id, f.title, COUNT(r.rental_id) AS rental_count
               FROM film f
               JOIN film_actor fa ON fa.film_id = f.film_id
               JOIN actor a       ON a.actor_id = fa.actor_id
               JOIN inventory i   ON i.film_id = f.film_id
               JOIN rental r      ON r.inventory_id = i.inventory_id
               WHERE a.actor_id = ?
               GROUP BY f.film_id, f.title
               ORDER BY rental_count DESC, f.film_id ASC
               LIMIT ?`
	rows, err := r.db.QueryContext(ctx, q, actorID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out = make([]model.ActorFilm, 0, limit)
	for rows.Next() {
		var f model.ActorFilm
		if err = rows.Scan(&f.FilmID, &f.Title, &f.RentalCount); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// FilmCopies counts inventory rows per film, including films with none.
func (r *ReportRepo) FilmCopies(ctx context.Context) (out []model.FilmCopies, err error) {
	defer func(start time.Time) { observe("film_copies", start, err) }(time.Now())
	const q = `SELECT f.film_id, f.title, COUNT(i.inventory_id) AS number_of_copies
               FROM film f
               LEFT JOIN inventory i ON i.film_id = f.film_id
               GROUP BY f.film_id, f.title
               ORDER BY f.film_id`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out = make([]model.FilmCopies, 0)
	for rows.Next() {
		var c model.FilmCopies
		if err = rows.Scan(&c.FilmID, &c.FilmTitle, &c.NumberOfCopies); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// stockSelect counts DISTINCT ids on both sides of the double left join so a
// film's copies are not multiplied by its open rentals.
const stockSelect = `SELECT f.film_id, f.title,
                            COUNT(DISTINCT i.inventory_id) AS number_of_copies,
                            COUNT(DISTINCT r.rental_id)    AS number_of_rentals_out
                     FROM film f
                     LEFT JOIN inventory i ON i.film_id = f.film_id
                     LEFT JOIN rental r    ON r.inventory_id = i.inventory_id AND r.return_date IS NULL`

// FilmStock returns copies, open rentals and remaining copies for every film.
func (r *ReportRepo) FilmStock(ctx context.Context) (out []model.FilmStock, err error) {
	defer func(start time.Time) { observe("film_stock", start, err) }(time.Now())
	const q = stockSelect + `
               GROUP BY f.film_id, f.title
               ORDER BY f.film_id`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out = make([]model.FilmStock, 0)
	for rows.Next() {
		var s model.FilmStock
		if err = rows.Scan(&s.FilmID, &s.FilmTitle, &s.NumberOfCopies, &s.RentalsOut); err != nil {
			return nil, err
		}
		s.RemainingCopies = s.NumberOfCopies - s.RentalsOut
		out = append(out, s)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// FilmStockByID is FilmStock for a single film.  It returns ErrFilmNotFound
// when the film does not exist.
func (r *ReportRepo) FilmStockByID(ctx context.Context, filmID int64) (s *model.FilmStock, err error) {
	defer func(start time.Time) { observe("film_stock_by_id", start, err) }(time.Now())
	const q = stockSelect + `
               WHERE f.film_id = ?
               GROUP BY f.film_id, f.title`
	var out model.FilmStock
	err = r.db.QueryRowContext(ctx, q, filmID).Scan(&out.FilmID, &out.FilmTitle, &out.NumberOfCopies, &out.RentalsOut)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrFilmNotFound
		}
		return nil, err
	}
	out.RemainingCopies = out.NumberOfCopies - out.RentalsOut
	return &out, nil
}
