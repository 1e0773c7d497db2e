package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/sakila-rental/internal/handler"
)

// RegisterFilms registers the catalogue, availability and reporting routes.
// Every one of them is read-only.
func RegisterFilms(e *echo.Echo, h *handler.FilmHandler) {
	e.GET("/all_films", h.AllFilms)
	e.GET("/movie_details/:title", h.MovieDetails)
	e.GET("/films_by_genre", h.FilmsByGenre)
	e.GET("/films_by_actor", h.FilmsByActor)
	e.GET("/films_by_title", h.FilmsByTitle)
	e.GET("/check_movie_availability/:film_id", h.CheckMovieAvailability)
	e.GET("/remaining_inventory/:film_id", h.RemainingInventory)

	e.GET("/top_rented_movies", h.TopRentedMovies)
	e.GET("/top_actors", h.TopActors)
	e.GET("/top_movies_for_actor/:actor_id", h.TopMoviesForActor)
	e.GET("/movie_copies_info", h.MovieCopiesInfo)
	e.GET("/movie_info", h.MovieInfo)
}

// RegisterRentals registers the routes that open and close rentals.
func RegisterRentals(e *echo.Echo, h *handler.RentalHandler) {
	e.POST("/rent_movie/:inventory_id/:customer_id", h.RentMovie)
	e.POST("/rent_film/:film_id/:customer_id", h.RentFilm)
	e.PUT("/update_return_date/:rental_id", h.UpdateReturnDate)
}

// RegisterCustomers registers customer lookups, mutations and history.
func RegisterCustomers(e *echo.Echo, h *handler.CustomerHandler) {
	e.GET("/check_customer/:id", h.CheckCustomer)
	e.GET("/customers", h.ListCustomers)
	e.POST("/insert_customer", h.InsertCustomer)
	e.PUT("/update_customer/:id", h.UpdateCustomer)
	e.DELETE("/delete_customer/:id", h.DeleteCustomer)
	e.GET("/customer_rentals/:id", h.CustomerRentals)
}
