// Package handler exposes the HTTP handlers of the rental API.  Handlers
// parse path and query parameters, call a store and shape the JSON
// response.  Stores are small interfaces satisfied by the repository
// package so handlers can be exercised against fakes.
package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/sakila-rental/internal/logging"
	"github.com/iliyamo/sakila-rental/internal/model"
	"github.com/iliyamo/sakila-rental/internal/queue"
)

// FilmStore serves catalogue lookups and searches.
type FilmStore interface {
	ListAll(ctx context.Context) ([]model.Film, error)
	GetByTitle(ctx context.Context, title string) (*model.FilmDetail, error)
	SearchByTitle(ctx context.Context, term string) ([]model.Film, error)
	SearchByGenre(ctx context.Context, term string) ([]model.Film, error)
	SearchByActor(ctx context.Context, term string) ([]model.Film, error)
}

// InventoryStore answers availability questions.
type InventoryStore interface {
	HasFreeCopy(ctx context.Context, filmID int64) (bool, error)
	FreeCopies(ctx context.Context, filmID int64) ([]model.FreeCopy, error)
}

// ReportStore runs the aggregation queries.
type ReportStore interface {
	TopRentedFilms(ctx context.Context, limit int) ([]model.TopRentedFilm, error)
	TopActors(ctx context.Context, limit int) ([]model.TopActor, error)
	TopFilmsForActor(ctx context.Context, actorID int64, limit int) ([]model.ActorFilm, error)
	FilmCopies(ctx context.Context) ([]model.FilmCopies, error)
	FilmStock(ctx context.Context) ([]model.FilmStock, error)
	FilmStockByID(ctx context.Context, filmID int64) (*model.FilmStock, error)
}

// RentalStore creates, closes and lists rentals.
type RentalStore interface {
	RentInventory(ctx context.Context, inventoryID, customerID int64) (*model.Rental, error)
	RentFilm(ctx context.Context, filmID, customerID int64) (*model.Rental, error)
	Return(ctx context.Context, rentalID int64) (*model.Rental, error)
	ListByCustomer(ctx context.Context, customerID int64) ([]model.CustomerRental, error)
}

// CustomerStore reads and mutates customers.
type CustomerStore interface {
	Exists(ctx context.Context, id int64) (bool, error)
	List(ctx context.Context) ([]model.CustomerListing, error)
	Create(ctx context.Context, in model.CustomerInput) (int64, error)
	Update(ctx context.Context, id int64, in model.CustomerInput) error
	Delete(ctx context.Context, id int64) error
}

// EventPublisher delivers rental events to the broker.
type EventPublisher interface {
	PublishRental(ctx context.Context, ev queue.RentalEvent) error
}

// rankingLimit is the size of every "top" listing.
const rankingLimit = 5

// pathID parses an integer path parameter.  Ids that match no row are
// left for the store to report.
func pathID(c echo.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
}

// dbError logs err against op and answers 500 without leaking driver text.
func dbError(c echo.Context, op string, err error) error {
	logging.Ctx(c.Request().Context()).Error().Err(err).Str("op", op).Msg("database error")
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
}
