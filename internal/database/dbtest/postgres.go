// Package dbtest starts disposable Postgres containers for integration tests.
package dbtest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm/logger"

	"github.com/Tomlord1122/dashboard-backend/internal/database"
	"github.com/Tomlord1122/dashboard-backend/internal/logging"
)

// NewPostgres starts a Postgres container, applies the migrations and
// returns a connected Service. The test is skipped under -short or when no
// container runtime is reachable.
func NewPostgres(t *testing.T) database.Service {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping Postgres container test in -short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	container, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("dashboard"),
		postgres.WithUsername("dashboard"),
		postgres.WithPassword("dashboard"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = container.Terminate(context.Background())
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable", "TimeZone=UTC")
	require.NoError(t, err)

	svc, err := database.New(dsn, "dashboard", logging.Discard(), logger.Silent)
	require.NoError(t, err)
	t.Cleanup(func() { _ = svc.Close() })

	require.NoError(t, svc.Migrate(ctx))
	return svc
}

// Truncate empties every table and resets the id sequences.
func Truncate(t *testing.T, svc database.Service) {
	t.Helper()
	err := svc.GetDB().Exec("TRUNCATE users, calendar_events, todo_items, todo_lists RESTART IDENTITY CASCADE").Error
	require.NoError(t, err)
}
