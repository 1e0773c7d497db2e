package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/sakila-rental/internal/model"
	"github.com/iliyamo/sakila-rental/internal/repository"
)

// CustomerHandler serves customer lookups, mutations and rental history.
type CustomerHandler struct {
	Customers CustomerStore
	Rentals   RentalStore
}

// NewCustomerHandler constructs a CustomerHandler and panics if any
// dependency is nil.
func NewCustomerHandler(customers CustomerStore, rentals RentalStore) *CustomerHandler {
	if customers == nil || rentals == nil {
		panic("nil store passed to NewCustomerHandler")
	}
	return &CustomerHandler{Customers: customers, Rentals: rentals}
}

// CheckCustomer handles GET /check_customer/:id.
func (h *CustomerHandler) CheckCustomer(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	exists, err := h.Customers.Exists(c.Request().Context(), id)
	if err != nil {
		return dbError(c, "check_customer", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"customer_exists": exists})
}

// ListCustomers handles GET /customers.
func (h *CustomerHandler) ListCustomers(c echo.Context) error {
	list, err := h.Customers.List(c.Request().Context())
	if err != nil {
		return dbError(c, "customers", err)
	}
	return c.JSON(http.StatusOK, list)
}

// InsertCustomer handles POST /insert_customer with a JSON body of
// first_name, last_name and email.
func (h *CustomerHandler) InsertCustomer(c echo.Context) error {
	var in model.CustomerInput
	if err := c.Bind(&in); err != nil {
		return badRequest(c, "invalid body")
	}
	id, err := h.Customers.Create(c.Request().Context(), in)
	if err != nil {
		return dbError(c, "insert_customer", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Customer inserted successfully", "customer_id": id})
}

// UpdateCustomer handles PUT /update_customer/:id.  An unknown id still
// answers 200; nothing is changed.
func (h *CustomerHandler) UpdateCustomer(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	var in model.CustomerInput
	if err := c.Bind(&in); err != nil {
		return badRequest(c, "invalid body")
	}
	if err := h.Customers.Update(c.Request().Context(), id, in); err != nil {
		return dbError(c, "update_customer", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Customer updated successfully"})
}

// DeleteCustomer handles DELETE /delete_customer/:id.  A customer that
// rentals or payments still reference answers 409 and is kept.
func (h *CustomerHandler) DeleteCustomer(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	err := h.Customers.Delete(c.Request().Context(), id)
	if errors.Is(err, repository.ErrConflict) {
		return c.JSON(http.StatusConflict, echo.Map{"error": "Customer has rentals or payments"})
	}
	if err != nil {
		return dbError(c, "delete_customer", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Customer deleted successfully"})
}

// CustomerRentals handles GET /customer_rentals/:id.
func (h *CustomerHandler) CustomerRentals(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	rentals, err := h.Rentals.ListByCustomer(c.Request().Context(), id)
	if err != nil {
		return dbError(c, "customer_rentals", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"rentals": rentals})
}
