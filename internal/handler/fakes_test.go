package handler

import (
	"context"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/sakila-rental/internal/model"
	"github.com/iliyamo/sakila-rental/internal/queue"
	"github.com/iliyamo/sakila-rental/internal/repository"
)

// serve registers h on route and performs one request against it.
func serve(t *testing.T, method, route, target string, body io.Reader, h echo.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	e.Add(method, route, h)
	req := httptest.NewRequest(method, target, body)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func jsonBody(s string) io.Reader { return strings.NewReader(s) }

type fakeFilms struct {
	films    []model.Film
	detail   *model.FilmDetail
	err      error
	lastTerm string
}

func (f *fakeFilms) ListAll(context.Context) ([]model.Film, error) { return f.films, f.err }

func (f *fakeFilms) GetByTitle(_ context.Context, title string) (*model.FilmDetail, error) {
	f.lastTerm = title
	if f.err != nil {
		return nil, f.err
	}
	if f.detail == nil {
		return nil, repository.ErrFilmNotFound
	}
	return f.detail, nil
}

func (f *fakeFilms) search(term string) ([]model.Film, error) {
	f.lastTerm = term
	return f.films, f.err
}

func (f *fakeFilms) SearchByTitle(_ context.Context, term string) ([]model.Film, error) {
	return f.search(term)
}

func (f *fakeFilms) SearchByGenre(_ context.Context, term string) ([]model.Film, error) {
	return f.search(term)
}

func (f *fakeFilms) SearchByActor(_ context.Context, term string) ([]model.Film, error) {
	return f.search(term)
}

type fakeInventory struct {
	free   bool
	copies []model.FreeCopy
	err    error
	lastID int64
}

func (f *fakeInventory) HasFreeCopy(_ context.Context, filmID int64) (bool, error) {
	f.lastID = filmID
	return f.free, f.err
}

func (f *fakeInventory) FreeCopies(_ context.Context, filmID int64) ([]model.FreeCopy, error) {
	f.lastID = filmID
	return f.copies, f.err
}

type fakeReports struct {
	topFilms  []model.TopRentedFilm
	topActors []model.TopActor
	actor     []model.ActorFilm
	copies    []model.FilmCopies
	stock     []model.FilmStock
	one       *model.FilmStock
	err       error
	lastLimit int
	lastID    int64
}

func (f *fakeReports) TopRentedFilms(_ context.Context, limit int) ([]model.TopRentedFilm, error) {
	f.lastLimit = limit
	return f.topFilms, f.err
}

func (f *fakeReports) TopActors(_ context.Context, limit int) ([]model.TopActor, error) {
	f.lastLimit = limit
	return f.topActors, f.err
}

func (f *fakeReports) TopFilmsForActor(_ context.Context, actorID int64, limit int) ([]model.ActorFilm, error) {
	f.lastID, f.lastLimit = actorID, limit
	return f.actor, f.err
}

func (f *fakeReports) FilmCopies(context.Context) ([]model.FilmCopies, error) { return f.copies, f.err }

func (f *fakeReports) FilmStock(context.Context) ([]model.FilmStock, error) { return f.stock, f.err }

func (f *fakeReports) FilmStockByID(_ context.Context, filmID int64) (*model.FilmStock, error) {
	f.lastID = filmID
	if f.err != nil {
		return nil, f.err
	}
	if f.one == nil {
		return nil, repository.ErrFilmNotFound
	}
	return f.one, nil
}

type fakeRentals struct {
	rent    *model.Rental
	list    []model.CustomerRental
	err     error
	calls   []string
	lastIDs []int64
}

func (f *fakeRentals) RentInventory(_ context.Context, inventoryID, customerID int64) (*model.Rental, error) {
	f.calls = append(f.calls, "rent_inventory")
	f.lastIDs = []int64{inventoryID, customerID}
	return f.rent, f.err
}

func (f *fakeRentals) RentFilm(_ context.Context, filmID, customerID int64) (*model.Rental, error) {
	f.calls = append(f.calls, "rent_film")
	f.lastIDs = []int64{filmID, customerID}
	return f.rent, f.err
}

func (f *fakeRentals) Return(_ context.Context, rentalID int64) (*model.Rental, error) {
	f.calls = append(f.calls, "return")
	f.lastIDs = []int64{rentalID}
	return f.rent, f.err
}

func (f *fakeRentals) ListByCustomer(_ context.Context, customerID int64) ([]model.CustomerRental, error) {
	f.lastIDs = []int64{customerID}
	return f.list, f.err
}

type fakeCustomers struct {
	exists    bool
	list      []model.CustomerListing
	newID     int64
	err       error
	lastID    int64
	lastInput model.CustomerInput
}

func (f *fakeCustomers) Exists(_ context.Context, id int64) (bool, error) {
	f.lastID = id
	return f.exists, f.err
}

func (f *fakeCustomers) List(context.Context) ([]model.CustomerListing, error) { return f.list, f.err }

func (f *fakeCustomers) Create(_ context.Context, in model.CustomerInput) (int64, error) {
	f.lastInput = in
	return f.newID, f.err
}

func (f *fakeCustomers) Update(_ context.Context, id int64, in model.CustomerInput) error {
	f.lastID, f.lastInput = id, in
	return f.err
}

func (f *fakeCustomers) Delete(_ context.Context, id int64) error {
	f.lastID = id
	return f.err
}

type fakePublisher struct {
	events []queue.RentalEvent
	err    error
}

func (f *fakePublisher) PublishRental(_ context.Context, ev queue.RentalEvent) error {
	f.events = append(f.events, ev)
	return f.err
}

