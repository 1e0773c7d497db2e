package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/sakila-rental/internal/logging"
	"github.com/iliyamo/sakila-rental/internal/model"
	"github.com/iliyamo/sakila-rental/internal/repository"
)

// FilmHandler serves the catalogue, availability and reporting routes.
type FilmHandler struct {
	Films     FilmStore
	Inventory InventoryStore
	Reports   ReportStore
}

// NewFilmHandler constructs a FilmHandler and panics if any dependency is nil.
func NewFilmHandler(films FilmStore, inventory InventoryStore, reports ReportStore) *FilmHandler {
	if films == nil || inventory == nil || reports == nil {
		panic("nil store passed to NewFilmHandler")
	}
	return &FilmHandler{Films: films, Inventory: inventory, Reports: reports}
}

// AllFilms handles GET /all_films.
func (h *FilmHandler) AllFilms(c echo.Context) error {
	films, err := h.Films.ListAll(c.Request().Context())
	if err != nil {
		return dbError(c, "all_films", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"films": films})
}

// MovieDetails handles GET /movie_details/:title.  The title must match
// exactly; an unknown title answers 404.
func (h *FilmHandler) MovieDetails(c echo.Context) error {
	detail, err := h.Films.GetByTitle(c.Request().Context(), c.Param("title"))
	if errors.Is(err, repository.ErrFilmNotFound) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Movie not found"})
	}
	if err != nil {
		return dbError(c, "movie_details", err)
	}
	return c.JSON(http.StatusOK, detail)
}

// FilmsByGenre handles GET /films_by_genre?genre_name=.
func (h *FilmHandler) FilmsByGenre(c echo.Context) error {
	films, err := h.Films.SearchByGenre(c.Request().Context(), c.QueryParam("genre_name"))
	if err != nil {
		return dbError(c, "films_by_genre", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"films": films})
}

// FilmsByActor handles GET /films_by_actor?actor_name=.
func (h *FilmHandler) FilmsByActor(c echo.Context) error {
	films, err := h.Films.SearchByActor(c.Request().Context(), c.QueryParam("actor_name"))
	if err != nil {
		return dbError(c, "films_by_actor", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"films": films})
}

// FilmsByTitle handles GET /films_by_title?title=.
func (h *FilmHandler) FilmsByTitle(c echo.Context) error {
	films, err := h.Films.SearchByTitle(c.Request().Context(), c.QueryParam("title"))
	if err != nil {
		return dbError(c, "films_by_title", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"films": films})
}

// CheckMovieAvailability handles GET /check_movie_availability/:film_id.
// It reports whether at least one copy has no open rental.
func (h *FilmHandler) CheckMovieAvailability(c echo.Context) error {
	filmID, ok := pathID(c, "film_id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	free, err := h.Inventory.HasFreeCopy(c.Request().Context(), filmID)
	if err != nil {
		return dbError(c, "check_movie_availability", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"movie_available": free})
}

// RemainingInventory handles GET /remaining_inventory/:film_id and lists
// the copies currently on the shelf.
func (h *FilmHandler) RemainingInventory(c echo.Context) error {
	filmID, ok := pathID(c, "film_id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	copies, err := h.Inventory.FreeCopies(c.Request().Context(), filmID)
	if err != nil {
		return dbError(c, "remaining_inventory", err)
	}
	return c.JSON(http.StatusOK, copies)
}

// TopRentedMovies handles GET /top_rented_movies.
func (h *FilmHandler) TopRentedMovies(c echo.Context) error {
	top, err := h.Reports.TopRentedFilms(c.Request().Context(), rankingLimit)
	if err != nil {
		return dbError(c, "top_rented_movies", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"top_movies": top})
}

// TopActors handles GET /top_actors.
func (h *FilmHandler) TopActors(c echo.Context) error {
	top, err := h.Reports.TopActors(c.Request().Context(), rankingLimit)
	if err != nil {
		return dbError(c, "top_actors", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"top_actors": top})
}

// TopMoviesForActor handles GET /top_movies_for_actor/:actor_id.
func (h *FilmHandler) TopMoviesForActor(c echo.Context) error {
	actorID, ok := pathID(c, "actor_id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	top, err := h.Reports.TopFilmsForActor(c.Request().Context(), actorID, rankingLimit)
	if err != nil {
		return dbError(c, "top_movies_for_actor", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"top_movies": top})
}

// MovieCopiesInfo handles GET /movie_copies_info.
func (h *FilmHandler) MovieCopiesInfo(c echo.Context) error {
	copies, err := h.Reports.FilmCopies(c.Request().Context())
	if err != nil {
		return dbError(c, "movie_copies_info", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"movie_copies_info": copies})
}

// MovieInfo handles GET /movie_info.  Without movie_id it returns the stock
// of every film as an array; with it, a single object or 404.
func (h *FilmHandler) MovieInfo(c echo.Context) error {
	ctx := c.Request().Context()
	raw := c.QueryParam("movie_id")
	if raw == "" {
		stock, err := h.Reports.FilmStock(ctx)
		if err != nil {
			return dbError(c, "movie_info", err)
		}
		for _, s := range stock {
			warnIfInconsistent(c, s)
		}
		return c.JSON(http.StatusOK, stock)
	}
	filmID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return badRequest(c, "invalid movie_id")
	}
	s, err := h.Reports.FilmStockByID(ctx, filmID)
	if errors.Is(err, repository.ErrFilmNotFound) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Movie not found"})
	}
	if err != nil {
		return dbError(c, "movie_info", err)
	}
	warnIfInconsistent(c, *s)
	return c.JSON(http.StatusOK, s)
}

// warnIfInconsistent flags films with more open rentals than copies.
func warnIfInconsistent(c echo.Context, s model.FilmStock) {
	if s.RemainingCopies >= 0 {
		return
	}
	logging.Ctx(c.Request().Context()).Warn().
		Int64("film_id", s.FilmID).
		Int64("number_of_copies", s.NumberOfCopies).
		Int64("number_of_rentals_out", s.RentalsOut).
		Msg("negative remaining copies")
}
