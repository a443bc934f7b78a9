package database_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tomlord1122/dashboard-backend/internal/database"
	"github.com/Tomlord1122/dashboard-backend/internal/database/dbtest"
)

func TestPostgresService(t *testing.T) {
	svc := dbtest.NewPostgres(t)

	t.Run("health reports up", func(t *testing.T) {
		stats := svc.Health()
		assert.Equal(t, "up", stats["status"])
		assert.Contains(t, stats, "open_connections")
	})

	t.Run("migrations are idempotent", func(t *testing.T) {
		require.NoError(t, svc.Migrate(context.Background()))
	})

	t.Run("position uniqueness is enforced at commit", func(t *testing.T) {
		db := svc.GetDB()
		require.NoError(t, db.Exec("INSERT INTO todo_lists (name) VALUES ('a')").Error)
		require.NoError(t, db.Exec("INSERT INTO todo_items (list_id, name, position) VALUES (1, 'x', 0)").Error)

		err := db.Exec("INSERT INTO todo_items (list_id, name, position) VALUES (1, 'y', 0)").Error
		assert.Error(t, err)

		// Row-by-row collisions inside one statement are allowed until commit.
		require.NoError(t, db.Exec("INSERT INTO todo_items (list_id, name, position) VALUES (1, 'y', 1)").Error)
		require.NoError(t, db.Exec("UPDATE todo_items SET position = position + 1 WHERE list_id = 1").Error)

		var positions []int
		require.NoError(t, db.Raw("SELECT position FROM todo_items WHERE list_id = 1 ORDER BY position").Scan(&positions).Error)
		assert.Equal(t, []int{1, 2}, positions)
	})

	t.Run("deleting a list cascades to its items", func(t *testing.T) {
		dbtest.Truncate(t, svc)
		db := svc.GetDB()
		require.NoError(t, db.Exec("INSERT INTO todo_lists (name) VALUES ('a'), ('b')").Error)
		require.NoError(t, db.Exec("INSERT INTO todo_items (list_id, name, position) VALUES (1, 'x', 0), (2, 'y', 0)").Error)
		require.NoError(t, db.Exec("DELETE FROM todo_lists WHERE id = 1").Error)

		var remaining []uint
		require.NoError(t, db.Raw("SELECT list_id FROM todo_items").Scan(&remaining).Error)
		assert.Equal(t, []uint{2}, remaining)
	})
}

func TestMemoryService(t *testing.T) {
	svc := database.NewMemory()
	assert.Equal(t, "up", svc.Health()["status"])
	assert.Nil(t, svc.GetDB())
	assert.NoError(t, svc.Migrate(context.Background()))
	assert.NoError(t, svc.Close())
}
