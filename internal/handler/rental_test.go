package handler

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/sakila-rental/internal/model"
	"github.com/iliyamo/sakila-rental/internal/queue"
	"github.com/iliyamo/sakila-rental/internal/repository"
)

var handlerNow = time.Date(2024, 3, 9, 14, 30, 15, 0, time.UTC)

func newRentalHandler() (*RentalHandler, *fakeRentals, *fakePublisher) {
	rentals, pub := &fakeRentals{}, &fakePublisher{}
	h := NewRentalHandler(rentals, pub)
	h.now = func() time.Time { return handlerNow }
	return h, rentals, pub
}

func TestRentMovie(t *testing.T) {
	h, rentals, pub := newRentalHandler()
	rentals.rent = &model.Rental{ID: 16050, RentalDate: handlerNow, InventoryID: 10, CustomerID: 3, StaffID: 1}

	rec := serve(t, http.MethodPost, "/rent_movie/:inventory_id/:customer_id", "/rent_movie/10/3", nil, h.RentMovie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"Movie rented successfully to ID#3","rental_id":16050}`, rec.Body.String())
	assert.Equal(t, []int64{10, 3}, rentals.lastIDs)

	require.Len(t, pub.events, 1)
	ev := pub.events[0]
	assert.Equal(t, queue.EventRentalCreated, ev.Type)
	assert.EqualValues(t, 16050, ev.RentalID)
	assert.Nil(t, ev.ReturnDate)
	assert.Equal(t, handlerNow, ev.OccurredAt)
}

func TestRentFilm(t *testing.T) {
	h, rentals, _ := newRentalHandler()
	rentals.rent = &model.Rental{ID: 77, InventoryID: 2, CustomerID: 5}

	rec := serve(t, http.MethodPost, "/rent_film/:film_id/:customer_id", "/rent_film/1/5", nil, h.RentFilm)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"rent_film"}, rentals.calls)
	assert.Equal(t, []int64{1, 5}, rentals.lastIDs)
	assert.Contains(t, rec.Body.String(), `"rental_id":77`)
}

func TestRentErrors(t *testing.T) {
	tests := []struct {
		err    error
		status int
		body   string
	}{
		{repository.ErrCustomerNotFound, http.StatusNotFound, `{"error":"Customer not found"}`},
		{repository.ErrInventoryNotFound, http.StatusNotFound, `{"error":"Inventory item not found"}`},
		{repository.ErrFilmNotFound, http.StatusNotFound, `{"error":"Movie not found"}`},
		{repository.ErrNotAvailable, http.StatusConflict, `{"error":"Movie is not available for rent"}`},
		{fmt.Errorf("insert rental: %w", repository.ErrCustomerNotFound), http.StatusNotFound, `{"error":"Customer not found"}`},
		{errors.New("deadlock found"), http.StatusInternalServerError, `{"error":"database error"}`},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			h, rentals, pub := newRentalHandler()
			rentals.err = tt.err

			rec := serve(t, http.MethodPost, "/rent_movie/:inventory_id/:customer_id", "/rent_movie/10/3", nil, h.RentMovie)
			assert.Equal(t, tt.status, rec.Code)
			assert.JSONEq(t, tt.body, rec.Body.String())
			assert.Empty(t, pub.events)
		})
	}
}

func TestRentMovieBadPath(t *testing.T) {
	h, rentals, _ := newRentalHandler()

	rec := serve(t, http.MethodPost, "/rent_movie/:inventory_id/:customer_id", "/rent_movie/ten/3", nil, h.RentMovie)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"invalid inventory_id"}`, rec.Body.String())

	rec = serve(t, http.MethodPost, "/rent_movie/:inventory_id/:customer_id", "/rent_movie/10/x", nil, h.RentMovie)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"invalid customer_id"}`, rec.Body.String())
	assert.Empty(t, rentals.calls)
}

func TestRentSucceedsWhenPublishFails(t *testing.T) {
	h, rentals, pub := newRentalHandler()
	rentals.rent = &model.Rental{ID: 1, InventoryID: 10, CustomerID: 3}
	pub.err = errors.New("dial tcp: connection refused")

	rec := serve(t, http.MethodPost, "/rent_movie/:inventory_id/:customer_id", "/rent_movie/10/3", nil, h.RentMovie)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, pub.events, 1)
}

func TestRentWithoutPublisher(t *testing.T) {
	rentals := &fakeRentals{rent: &model.Rental{ID: 1, InventoryID: 10, CustomerID: 3}}
	h := NewRentalHandler(rentals, nil)

	rec := serve(t, http.MethodPost, "/rent_movie/:inventory_id/:customer_id", "/rent_movie/10/3", nil, h.RentMovie)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestUpdateReturnDate(t *testing.T) {
	returned := handlerNow
	tests := []struct {
		name   string
		rent   *model.Rental
		err    error
		status int
		body   string
		events int
	}{
		{"returned", &model.Rental{ID: 9, InventoryID: 10, CustomerID: 3, ReturnDate: &returned}, nil, http.StatusOK, `{"message":"Return date updated successfully"}`, 1},
		{"unknown rental", nil, repository.ErrRentalNotFound, http.StatusNotFound, `{"error":"Rental not found"}`, 0},
		{"already returned", nil, repository.ErrAlreadyReturned, http.StatusBadRequest, `{"error":"Rental already returned"}`, 0},
		{"database down", nil, errors.New("bad connection"), http.StatusInternalServerError, `{"error":"database error"}`, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, rentals, pub := newRentalHandler()
			rentals.rent, rentals.err = tt.rent, tt.err

			rec := serve(t, http.MethodPut, "/update_return_date/:rental_id", "/update_return_date/9", nil, h.UpdateReturnDate)
			assert.Equal(t, tt.status, rec.Code)
			assert.JSONEq(t, tt.body, rec.Body.String())
			require.Len(t, pub.events, tt.events)
			if tt.events > 0 {
				assert.Equal(t, queue.EventRentalReturned, pub.events[0].Type)
				require.NotNil(t, pub.events[0].ReturnDate)
			}
		})
	}
}
