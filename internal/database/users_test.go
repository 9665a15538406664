package database

import (
	"context"
	"testing"

	"shareit/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserCRUD(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()

	user := &models.User{Name: "Ann", Email: "ann@example.com"}
	require.NoError(t, db.CreateUser(ctx, user))
	assert.NotZero(t, user.ID)

	found, err := db.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user, found)

	user.Name = "Anna"
	require.NoError(t, db.UpdateUser(ctx, user))
	found, _ = db.GetUserByID(ctx, user.ID)
	assert.Equal(t, "Anna", found.Name)

	other := &models.User{Name: "Bob", Email: "bob@example.com"}
	require.NoError(t, db.CreateUser(ctx, other))

	users, err := db.GetAllUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 2)

	t.Run("DuplicateEmail", func(t *testing.T) {
		err := db.CreateUser(ctx, &models.User{Name: "Copy", Email: "ann@example.com"})
		assert.ErrorIs(t, err, ErrDuplicateEmail)

		other.Email = "ann@example.com"
		err = db.UpdateUser(ctx, other)
		assert.ErrorIs(t, err, ErrDuplicateEmail)
		other.Email = "bob@example.com"
	})

	t.Run("EmailTaken", func(t *testing.T) {
		taken, err := db.EmailTaken(ctx, "ann@example.com", other.ID)
		require.NoError(t, err)
		assert.True(t, taken)

		taken, err = db.EmailTaken(ctx, "ann@example.com", user.ID)
		require.NoError(t, err)
		assert.False(t, taken)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, db.DeleteUser(ctx, other.ID))
		_, err := db.GetUserByID(ctx, other.ID)
		assert.ErrorIs(t, err, ErrNotFound)
		assert.ErrorIs(t, db.DeleteUser(ctx, other.ID), ErrNotFound)
	})

	t.Run("GetByEmail", func(t *testing.T) {
		found, err := db.GetUserByEmail(ctx, user.Email)
		require.NoError(t, err)
		assert.Equal(t, user.ID, found.ID)

		_, err = db.GetUserByEmail(ctx, "nobody@example.com")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("UpdateMissing", func(t *testing.T) {
		err := db.UpdateUser(ctx, &models.User{ID: 999, Name: "x", Email: "x@example.com"})
		assert.ErrorIs(t, err, ErrNotFound)
	})
}
