package model

import "time"

// Film mirrors a row of the Sakila `film` table.  Nullable columns are
// pointers so they serialise as JSON null.
//
// Fields:
//  ID                 – primary key identifier.
//  Title              – film title, never null.
//  ReleaseYear        – YEAR column, nullable.
//  LanguageID         – spoken language; OriginalLanguageID is nullable.
//  RentalDuration     – rental period in days.
//  RentalRate         – price of one rental.
//  Rating             – MPAA rating enum (G, PG, PG-13, R, NC-17).
//  SpecialFeatures    – comma separated SET value.
type Film struct {
    ID                 int64     `json:"film_id"`              // film.film_id
    Title              string    `json:"title"`                // film.title
    Description        *string   `json:"description"`          // film.description (nullable)
    ReleaseYear        *int64    `json:"release_year"`         // film.release_year (nullable)
    LanguageID         int64     `json:"language_id"`          // film.language_id
    OriginalLanguageID *int64    `json:"original_language_id"` // film.original_language_id (nullable)
    RentalDuration     int64     `json:"rental_duration"`      // film.rental_duration
    RentalRate         float64   `json:"rental_rate"`          // film.rental_rate
    Length             *int64    `json:"length"`               // film.length (nullable)
    ReplacementCost    float64   `json:"replacement_cost"`     // film.replacement_cost
    Rating             *string   `json:"rating"`               // film.rating (nullable)
    SpecialFeatures    *string   `json:"special_features"`     // film.special_features (nullable)
    LastUpdate         time.Time `json:"last_update"`          // film.last_update
}

// FilmDetail is the short description returned by /movie_details.  Keys use
// camelCase because existing clients of that route expect it.
type FilmDetail struct {
    ID              int64   `json:"filmId"`
    Title           string  `json:"title"`
    Description     *string `json:"description"`
    ReleaseYear     *int64  `json:"releaseYear"`
    Rating          *string `json:"rating"`
    SpecialFeatures *string `json:"specialFeatures"`
}
