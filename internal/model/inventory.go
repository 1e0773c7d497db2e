package model

// FreeCopy is one physical copy of a film with no open rental, as listed by
// /remaining_inventory.  Availability is never stored: a copy is free when no
// rental for it has a NULL return_date.
type FreeCopy struct {
    InventoryID int64  `json:"inventory_id"` // inventory.inventory_id
    FilmID      int64  `json:"film_id"`      // inventory.film_id
    FilmTitle   string `json:"film_title"`   // film.title
}
