package model

import "time"

// CustomerInput carries the writable fields accepted by insert and update.
type CustomerInput struct {
    FirstName string `json:"first_name"`
    LastName  string `json:"last_name"`
    Email     string `json:"email"`
}

// CustomerListing is the flattened customer -> address -> city -> country
// projection returned by GET /customers.
type CustomerListing struct {
    ID               int64     `json:"customer_id"`
    FirstName        string    `json:"first_name"`
    LastName         string    `json:"last_name"`
    Email            *string   `json:"email"`
    Address          string    `json:"address"`
    City             string    `json:"city"`
    Country          string    `json:"country"`
    Phone            string    `json:"phone"`
    StoreID          int64     `json:"store_id"`
    RegistrationDate time.Time `json:"registration_date"`
    LastUpdate       time.Time `json:"last_update"`
}
