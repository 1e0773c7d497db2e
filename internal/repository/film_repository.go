package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/iliyamo/sakila-rental/internal/model"
)

// FilmRepo answers lookups and searches over the film catalogue.  It never
// writes.
type FilmRepo struct {
	db *sql.DB
}

// NewFilmRepo constructs a FilmRepo with the given DB handle.
func NewFilmRepo(db *sql.DB) *FilmRepo {
	return &FilmRepo{db: db}
}

const filmColumns = `f.film_id, f.title, f.description, f.release_year, f.language_id,
       f.original_language_id, f.rental_duration, f.rental_rate, f.length,
       f.replacement_cost, f.rating, f.special_features, f.last_update`

// ListAll returns every film ordered by id.
func (r *FilmRepo) ListAll(ctx context.Context) ([]model.Film, error) {
	const q = `SELECT ` + filmColumns + ` FROM film f ORDER BY f.film_id`
	return r.queryFilms(ctx, "list_films", q)
}

// GetByTitle returns the film whose title equals title exactly.  When
// several films share a title the lowest id wins.  It returns
// ErrFilmNotFound if there is no match.
func (r *FilmRepo) GetByTitle(ctx context.Context, title string) (_ *model.FilmDetail, err error) {
	defer func(start time.Time) { observe("film_by_title", start, err) }(time.Now())
	const q = `SELECT f.film_id, f.title, f.description, f.release_year, f.rating, f.special_features
               FROM film f
               WHERE f.title = ?
               ORDER BY f.film_id
               LIMIT 1`
	var (
		d        model.FilmDetail
		desc     sql.NullString
		year     sql.NullInt64
		rating   sql.NullString
		features sql.NullString
	)
	err = r.db.QueryRowContext(ctx, q, title).Scan(&d.ID, &d.Title, &desc, &year, &rating, &features)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrFilmNotFound
		}
		return nil, err
	}
	d.Description = stringPtr(desc)
	d.ReleaseYear = int64Ptr(year)
	d.Rating = stringPtr(rating)
	d.SpecialFeatures = stringPtr(features)
	return &d, nil
}

// SearchByTitle returns films whose title contains term, ignoring case.
// An empty term matches every film.
func (r *FilmRepo) SearchByTitle(ctx context.Context, term string) ([]model.Film, error) {
	const q = `SELECT ` + filmColumns + `
               FROM film f
               WHERE LOWER(f.title) LIKE ?
               ORDER BY f.film_id`
	return r.queryFilms(ctx, "search_films_title", q, likePattern(term))
}

// SearchByGenre returns films in any category whose name contains term.
func (r *FilmRepo) SearchByGenre(ctx context.Context, term string) ([]model.Film, error) {
	const q = `SELECT DISTINCT ` + filmColumns + `
               FROM film f
               JOIN film_category fc ON fc.film_id = f.film_id
               JOIN category c       ON c.category_id = fc.category_id
               WHERE LOWER(c.name) LIKE ?
               ORDER BY f.film_id`
	return r.queryFilms(ctx, "search_films_genre", q, likePattern(term))
}

// SearchByActor returns films featuring an actor whose "first last" name
// contains term.  A film with several matching actors is listed once.
func (r *FilmRepo) SearchByActor(ctx context.Context, term string) ([]model.Film, error) {
	const q = `SELECT DISTINCT ` + filmColumns + `
               FROM film f
               JOIN film_actor fa ON fa.film_id = f.film_id
               JOIN actor a       ON a.actor_id = fa.actor_id
               WHERE LOWER(CONCAT(a.first_name, ' ', a.last_name)) LIKE ?
               ORDER BY f.film_id`
	return r.queryFilms(ctx, "search_films_actor", q, likePattern(term))
}

func (r *FilmRepo) queryFilms(ctx context.Context, op, q string, args ...any) (_ []model.Film, err error) {
	defer func(start time.Time) { observe(op, start, err) }(time.Now())
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Film, 0)
	for rows.Next() {
		f, err := scanFilm(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func scanFilm(rows *sql.Rows) (model.Film, error) {
	var (
		f            model.Film
		desc         sql.NullString
		year         sql.NullInt64
		origLanguage sql.NullInt64
		length       sql.NullInt64
		rating       sql.NullString
		features     sql.NullString
	)
	err := rows.Scan(
		&f.ID, &f.Title, &desc, &year, &f.LanguageID,
		&origLanguage, &f.RentalDuration, &f.RentalRate, &length,
		&f.ReplacementCost, &rating, &features, &f.LastUpdate,
	)
	if err != nil {
		return model.Film{}, err
	}
	f.Description = stringPtr(desc)
	f.ReleaseYear = int64Ptr(year)
	f.OriginalLanguageID = int64Ptr(origLanguage)
	f.Length = int64Ptr(length)
	f.Rating = stringPtr(rating)
	f.SpecialFeatures = stringPtr(features)
	return f, nil
}

// likePattern wraps term for a case-insensitive substring LIKE match.
func likePattern(term string) string {
	return "%" + strings.ToLower(term) + "%"
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func int64Ptr(ni sql.NullInt64) *int64 {
	if !ni.Valid {
		return nil
	}
	n := ni.Int64
	return &n
}
