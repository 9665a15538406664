package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"shareit/internal/database"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fixturesYAML = `
users:
  - name: Ann
    email: ann@example.com
  - name: Bob
    email: bob@example.com
items:
  - owner_email: ann@example.com
    name: Drill
    description: Cordless drill
    available: true
  - owner_email: bob@example.com
    name: Ladder
    description: Three metre ladder
    available: false
`

func writeFixtures(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fixtures.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestSeedIsIdempotent(t *testing.T) {
	logger := zerolog.Nop()
	db, err := database.NewDB(":memory:", &logger)
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	f, err := loadFixtures(writeFixtures(t, fixturesYAML))
	require.NoError(t, err)

	st, err := seed(ctx, db, f)
	require.NoError(t, err)
	assert.Equal(t, stats{usersCreated: 2, itemsCreated: 2}, st)

	f.Items[0].Description = "Hammer drill"
	st, err = seed(ctx, db, f)
	require.NoError(t, err)
	assert.Equal(t, stats{itemsUpdated: 2}, st)

	ann, err := db.GetUserByEmail(ctx, "ann@example.com")
	require.NoError(t, err)
	items, err := db.GetItemsByOwner(ctx, ann.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Hammer drill", items[0].Description)
	assert.True(t, items[0].Available)
}

func TestSeedUnknownOwner(t *testing.T) {
	logger := zerolog.Nop()
	db, err := database.NewDB(":memory:", &logger)
	require.NoError(t, err)
	defer db.Close()

	f := &Fixtures{Items: []ItemFixture{{OwnerEmail: "ghost@example.com", Name: "Tent"}}}
	_, err = seed(context.Background(), db, f)
	assert.ErrorIs(t, err, database.ErrNotFound)
}

func TestLoadFixturesErrors(t *testing.T) {
	_, err := loadFixtures(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = loadFixtures(writeFixtures(t, "users: [\n"))
	assert.ErrorContains(t, err, "parse fixtures")

	_, err = loadFixtures(writeFixtures(t, "users: []\n"))
	assert.ErrorContains(t, err, "no users or items")
}
