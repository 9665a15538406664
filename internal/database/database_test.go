package database

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"shareit/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *DB {
	logger := zerolog.Nop()
	db, err := NewDB(":memory:", &logger)
	require.NoError(t, err)
	return db
}

// seed creates an owner, a booker and one available item owned by the owner.
func seed(t *testing.T, db *DB) (owner, booker *models.User, item *models.Item) {
	t.Helper()
	ctx := context.Background()
	owner = &models.User{Name: "Owner", Email: "owner@example.com"}
	booker = &models.User{Name: "Booker", Email: "booker@example.com"}
	require.NoError(t, db.CreateUser(ctx, owner))
	require.NoError(t, db.CreateUser(ctx, booker))
	item = &models.Item{Name: "Drill", Description: "Cordless drill", Available: true, OwnerID: owner.ID}
	require.NoError(t, db.CreateItem(ctx, item))
	return owner, booker, item
}

func TestNewDB_File(t *testing.T) {
	logger := zerolog.Nop()
	path := filepath.Join(t.TempDir(), "nested", "shareit.db")
	db, err := NewDBWithOptions(path, Options{BusyTimeoutMS: 1000}, &logger)
	require.NoError(t, err)
	defer db.Close()

	assert.Equal(t, path, db.Path())
	assert.NoError(t, db.HealthCheck(context.Background()))
}

func TestTimeEncodingOrdersLexically(t *testing.T) {
	base := time.Date(2030, 5, 1, 10, 0, 0, 0, time.FixedZone("X", 3*3600))
	earlier := formatTime(base)
	later := formatTime(base.Add(time.Nanosecond))
	assert.Less(t, earlier, later)
	assert.Len(t, earlier, len(formatTime(base.Add(999*time.Millisecond))))

	parsed, err := parseTime(earlier)
	require.NoError(t, err)
	assert.True(t, parsed.Equal(base))

	_, err = parseTime("yesterday")
	assert.Error(t, err)
}

func TestInClause(t *testing.T) {
	in, args := inClause([]int64{4, 5, 6})
	assert.Equal(t, "?, ?, ?", in)
	assert.Equal(t, []any{int64(4), int64(5), int64(6)}, args)
}
