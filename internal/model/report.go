package model

// The types below are the fixed result shapes of the reporting queries.

// TopRentedFilm is one row of the most-rented films ranking.  Keys are
// camelCase because existing clients of /top_rented_movies expect it.
type TopRentedFilm struct {
    ID              int64   `json:"filmId"`
    Title           string  `json:"title"`
    Description     *string `json:"description"`
    ReleaseYear     *int64  `json:"releaseYear"`
    Rating          *string `json:"rating"`
    SpecialFeatures *string `json:"specialFeatures"`
    RentalCount     int64   `json:"rentalCount"`
}

// TopActor ranks actors by the number of distinct films they appear in.
type TopActor struct {
    ID        int64  `json:"actor_id"`
    FirstName string `json:"first_name"`
    LastName  string `json:"last_name"`
    FullName  string `json:"full_name"`
    FilmCount int64  `json:"film_count"`
}

// ActorFilm is one of an actor's most rented films.
type ActorFilm struct {
    FilmID      int64  `json:"film_id"`
    Title       string `json:"title"`
    RentalCount int64  `json:"rental_count"`
}

// FilmCopies counts the inventory rows of a film; zero when it has none.
type FilmCopies struct {
    FilmID         int64  `json:"film_id"`
    FilmTitle      string `json:"film_title"`
    NumberOfCopies int64  `json:"number_of_copies"`
}

// FilmStock combines copies, open rentals and the derived remainder.
// RemainingCopies is NumberOfCopies - RentalsOut and is not clamped: a
// negative value means the rental table disagrees with the inventory.
type FilmStock struct {
    FilmID          int64  `json:"film_id"`
    FilmTitle       string `json:"film_title"`
    NumberOfCopies  int64  `json:"number_of_copies"`
    RentalsOut      int64  `json:"number_of_rentals_out"`
    RemainingCopies int64  `json:"remaining_copies"`
}
