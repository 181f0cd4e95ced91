//go:build integration

package repository

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Integration tests for database operations
// Run with: go test -v -tags=integration ./internal/repository/...

func testConfig() Config {
	cfg := Config{
		Host:     "localhost",
		Port:     "5432",
		Database: "courtside_test",
		User:     "courtside_user",
		Password: "courtside_password",
		SSLMode:  "disable",
	}
	if host := os.Getenv("TEST_DATABASE_HOST"); host != "" {
		cfg.Host = host
	}
	return cfg
}

func setupTestDB(t *testing.T) (*Database, context.Context) {
	ctx := context.Background()
	cfg := testConfig()

	require.NoError(t, Migrate(cfg), "Failed to migrate test database")

	db, err := NewDatabase(ctx, cfg)
	require.NoError(t, err, "Failed to connect to test database")

	_, err = db.Pool.Exec(ctx, `
		TRUNCATE competitor_advice, upcoming_matches, player_statistics,
		         statistics, players, competitors, seasons
		RESTART IDENTITY CASCADE
	`)
	require.NoError(t, err, "Failed to truncate test tables")

	return db, ctx
}

func teardownTestDB(t *testing.T, db *Database) {
	db.Close()
}

func TestDatabaseConnection(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	// Test health check
	err := db.Health(ctx)
	assert.NoError(t, err, "Database health check should pass")

	// Test stats
	stats := db.PoolStats()
	assert.NotNil(t, stats, "Should return connection pool stats")
	assert.GreaterOrEqual(t, stats["max_conns"].(int32), int32(1), "Should have at least 1 max connection")
}

func TestDatabasePing(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err := db.Pool.Ping(ctx)
	assert.NoError(t, err, "Should successfully ping database")
}

func TestMigrate_Idempotent(t *testing.T) {
	cfg := testConfig()
	require.NoError(t, Migrate(cfg))
	assert.NoError(t, Migrate(cfg), "Second run should report no change")
}
