package database

import (
	"testing"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDSN(t *testing.T) {
	dsn := DSN("root", "s3cret", "db.local", "3307", "sakila")

	cfg, err := mysql.ParseDSN(dsn)
	require.NoError(t, err)

	assert.Equal(t, "root", cfg.User)
	assert.Equal(t, "s3cret", cfg.Passwd)
	assert.Equal(t, "tcp", cfg.Net)
	assert.Equal(t, "db.local:3307", cfg.Addr)
	assert.Equal(t, "sakila", cfg.DBName)
	assert.True(t, cfg.ParseTime)
	assert.Equal(t, time.UTC, cfg.Loc)
}

func TestDSNWithoutPassword(t *testing.T) {
	dsn := DSN("reader", "", "localhost", "3306", "sakila")

	cfg, err := mysql.ParseDSN(dsn)
	require.NoError(t, err)
	assert.Equal(t, "reader", cfg.User)
	assert.Empty(t, cfg.Passwd)
}
