package repository

import (
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

// fixedNow is the clock injected into repositories under test.
var fixedNow = time.Date(2024, 3, 9, 14, 30, 15, 123456789, time.UTC)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return db, mock
}

// sqlFragment turns a literal SQL snippet into a sqlmock regexp.
func sqlFragment(s string) string {
	return regexp.QuoteMeta(s)
}

var filmRowColumns = []string{
	"film_id", "title", "description", "release_year", "language_id",
	"original_language_id", "rental_duration", "rental_rate", "length",
	"replacement_cost", "rating", "special_features", "last_update",
}

func filmRows() *sqlmock.Rows {
	updated := time.Date(2006, 2, 15, 5, 3, 42, 0, time.UTC)
	return sqlmock.NewRows(filmRowColumns).
		AddRow(1, "ACADEMY DINOSAUR", "A Epic Drama", 2006, 1, nil, 6, 0.99, 86, 20.99, "PG", "Deleted Scenes,Behind the Scenes", updated).
		AddRow(2, "ACE GOLDFINGER", nil, nil, 1, 2, 3, 4.99, nil, 12.99, nil, nil, updated)
}
