package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/sakila-rental/internal/model"
	"github.com/iliyamo/sakila-rental/internal/queue"
	"github.com/iliyamo/sakila-rental/internal/repository"
)

// RentalHandler serves the rent and return routes.  Events is optional;
// when set, every successful rent or return is published to it.
type RentalHandler struct {
	Rentals RentalStore
	Events  EventPublisher
	now     func() time.Time
}

// NewRentalHandler constructs a RentalHandler.  events may be nil.
func NewRentalHandler(rentals RentalStore, events EventPublisher) *RentalHandler {
	if rentals == nil {
		panic("nil store passed to NewRentalHandler")
	}
	return &RentalHandler{Rentals: rentals, Events: events, now: time.Now}
}

// RentMovie handles POST /rent_movie/:inventory_id/:customer_id and rents
// that specific copy.
func (h *RentalHandler) RentMovie(c echo.Context) error {
	inventoryID, ok := pathID(c, "inventory_id")
	if !ok {
		return badRequest(c, "invalid inventory_id")
	}
	customerID, ok := pathID(c, "customer_id")
	if !ok {
		return badRequest(c, "invalid customer_id")
	}
	rent, err := h.Rentals.RentInventory(c.Request().Context(), inventoryID, customerID)
	if err != nil {
		return h.rentError(c, "rent_movie", err)
	}
	return h.rented(c, rent)
}

// RentFilm handles POST /rent_film/:film_id/:customer_id and rents the free
// copy of the film with the lowest inventory id.
func (h *RentalHandler) RentFilm(c echo.Context) error {
	filmID, ok := pathID(c, "film_id")
	if !ok {
		return badRequest(c, "invalid film_id")
	}
	customerID, ok := pathID(c, "customer_id")
	if !ok {
		return badRequest(c, "invalid customer_id")
	}
	rent, err := h.Rentals.RentFilm(c.Request().Context(), filmID, customerID)
	if err != nil {
		return h.rentError(c, "rent_film", err)
	}
	return h.rented(c, rent)
}

// UpdateReturnDate handles PUT /update_return_date/:rental_id.  A rental
// can be returned once; a second attempt answers 400.
func (h *RentalHandler) UpdateReturnDate(c echo.Context) error {
	rentalID, ok := pathID(c, "rental_id")
	if !ok {
		return badRequest(c, "invalid rental_id")
	}
	rent, err := h.Rentals.Return(c.Request().Context(), rentalID)
	switch {
	case errors.Is(err, repository.ErrRentalNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Rental not found"})
	case errors.Is(err, repository.ErrAlreadyReturned):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Rental already returned"})
	case err != nil:
		return dbError(c, "update_return_date", err)
	}
	h.publish(c.Request().Context(), queue.EventRentalReturned, rent)
	return c.JSON(http.StatusOK, echo.Map{"message": "Return date updated successfully"})
}

func (h *RentalHandler) rented(c echo.Context, rent *model.Rental) error {
	h.publish(c.Request().Context(), queue.EventRentalCreated, rent)
	return c.JSON(http.StatusOK, echo.Map{
		"message":   fmt.Sprintf("Movie rented successfully to ID#%d", rent.CustomerID),
		"rental_id": rent.ID,
	})
}

func (h *RentalHandler) rentError(c echo.Context, op string, err error) error {
	switch {
	case errors.Is(err, repository.ErrCustomerNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Customer not found"})
	case errors.Is(err, repository.ErrInventoryNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Inventory item not found"})
	case errors.Is(err, repository.ErrFilmNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Movie not found"})
	case errors.Is(err, repository.ErrNotAvailable):
		return c.JSON(http.StatusConflict, echo.Map{"error": "Movie is not available for rent"})
	}
	return dbError(c, op, err)
}

// publish is fire-and-forget from the client's point of view: the publisher
// logs and counts its own failures and the response is unaffected.
func (h *RentalHandler) publish(ctx context.Context, eventType string, rent *model.Rental) {
	if h.Events == nil || rent == nil {
		return
	}
	_ = h.Events.PublishRental(ctx, queue.NewRentalEvent(eventType, *rent, h.now()))
}
