//go:build integration

package repository

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/iliyamo/sakila-rental/internal/database"
)

// Run with: go test -tags integration -run Integration ./internal/repository/...

// rentalSchema is the slice of the Sakila schema the rental queries touch.
var rentalSchema = []string{
	`CREATE TABLE film (
		film_id SMALLINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		title VARCHAR(128) NOT NULL
	) ENGINE=InnoDB`,
	`CREATE TABLE customer (
		customer_id SMALLINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		first_name VARCHAR(45) NOT NULL,
		last_name VARCHAR(45) NOT NULL
	) ENGINE=InnoDB`,
	`CREATE TABLE inventory (
		inventory_id MEDIUMINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		film_id SMALLINT UNSIGNED NOT NULL,
		CONSTRAINT fk_inventory_film FOREIGN KEY (film_id) REFERENCES film (film_id)
	) ENGINE=InnoDB`,
	`CREATE TABLE rental (
		rental_id INT NOT NULL AUTO_INCREMENT PRIMARY KEY,
		rental_date DATETIME NOT NULL,
		inventory_id MEDIUMINT UNSIGNED NOT NULL,
		customer_id SMALLINT UNSIGNED NOT NULL,
		return_date DATETIME NULL,
		staff_id TINYINT UNSIGNED NOT NULL,
		CONSTRAINT fk_rental_inventory FOREIGN KEY (inventory_id) REFERENCES inventory (inventory_id),
		CONSTRAINT fk_rental_customer FOREIGN KEY (customer_id) REFERENCES customer (customer_id)
	) ENGINE=InnoDB`,
	`INSERT INTO film (film_id, title) VALUES (1, 'ACADEMY DINOSAUR')`,
	`INSERT INTO customer (customer_id, first_name, last_name) VALUES (1, 'MARY', 'SMITH'), (2, 'PATRICIA', 'JOHNSON')`,
	`INSERT INTO inventory (inventory_id, film_id) VALUES (1, 1)`,
}

func startMySQL(t *testing.T) *sql.DB {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "mysql:8.0",
			ExposedPorts: []string{"3306/tcp"},
			Env: map[string]string{
				"MYSQL_ROOT_PASSWORD": "secret",
				"MYSQL_DATABASE":      "sakila",
			},
			// The entrypoint runs a temporary server first; the second
			// "ready for connections" line is the real one.
			WaitingFor: wait.ForAll(
				wait.ForLog("ready for connections").WithOccurrence(2),
				wait.ForListeningPort("3306/tcp"),
			).WithStartupTimeout(2 * time.Minute),
		},
		Started: true,
	})
	if err != nil {
		t.Skipf("Skipping test: mysql container unavailable: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("Warning: failed to terminate container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "3306/tcp")
	require.NoError(t, err)

	db, err := database.Open("root", "secret", host, port.Port(), "sakila")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	for _, stmt := range rentalSchema {
		_, err := db.ExecContext(ctx, stmt)
		require.NoError(t, err)
	}
	return db
}

func TestRentLastCopyConcurrently_Integration(t *testing.T) {
	db := startMySQL(t)
	repo := NewRentalRepo(db, 1)

	const callers = 2
	var (
		wg    sync.WaitGroup
		start = make(chan struct{})
		errs  = make([]error, callers)
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			_, errs[i] = repo.RentInventory(context.Background(), 1, int64(i+1))
		}(i)
	}
	close(start)
	wg.Wait()

	var ok, unavailable int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, ErrNotAvailable):
			unavailable++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, unavailable)

	var open int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM rental WHERE inventory_id = 1 AND return_date IS NULL`).Scan(&open))
	assert.Equal(t, 1, open)
}

func TestReturnTwiceConcurrently_Integration(t *testing.T) {
	db := startMySQL(t)
	repo := NewRentalRepo(db, 1)

	rent, err := repo.RentInventory(context.Background(), 1, 1)
	require.NoError(t, err)

	var (
		wg   sync.WaitGroup
		errs = make([]error, 2)
	)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = repo.Return(context.Background(), rent.ID)
		}(i)
	}
	wg.Wait()

	var ok, again int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, ErrAlreadyReturned):
			again++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, again)
}
