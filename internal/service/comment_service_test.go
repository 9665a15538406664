package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"shareit/internal/database"
	"shareit/internal/domain"
	"shareit/internal/models"
	"shareit/internal/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type commentFixture struct {
	comments *mockCommentRepo
	bookings *mockBookingRepo
	items    *mockItemRepo
	users    *mockUserRepo
	svc      *CommentService
}

func newCommentFixture() *commentFixture {
	f := &commentFixture{
		comments: new(mockCommentRepo),
		bookings: new(mockBookingRepo),
		items:    new(mockItemRepo),
		users:    new(mockUserRepo),
	}
	f.svc = NewCommentService(f.comments, f.bookings, f.items, f.users, validation.New(), testLogger()).
		WithClock(func() time.Time { return fixedNow })
	return f
}

func TestCommentService_CanComment(t *testing.T) {
	ctx := context.Background()

	f := newCommentFixture()
	f.bookings.On("HasFinishedApprovedBooking", ctx, int64(2), int64(3), fixedNow).Return(true, nil).Once()
	assert.NoError(t, f.svc.CanComment(ctx, 2, 3))

	f.bookings.On("HasFinishedApprovedBooking", ctx, int64(2), int64(3), fixedNow).Return(false, nil).Once()
	err := f.svc.CanComment(ctx, 2, 3)
	assert.True(t, domain.IsValidation(err))

	boom := errors.New("db down")
	f.bookings.On("HasFinishedApprovedBooking", ctx, int64(2), int64(3), fixedNow).Return(false, boom).Once()
	assert.ErrorIs(t, f.svc.CanComment(ctx, 2, 3), boom)
}

func TestCommentService_Add(t *testing.T) {
	ctx := context.Background()
	user := &models.User{ID: 2, Name: "Bob"}
	item := &models.Item{ID: 3, OwnerID: 1}

	t.Run("Success", func(t *testing.T) {
		f := newCommentFixture()
		f.users.On("GetUserByID", ctx, int64(2)).Return(user, nil)
		f.items.On("GetItemByID", ctx, int64(3)).Return(item, nil)
		f.bookings.On("HasFinishedApprovedBooking", ctx, int64(2), int64(3), fixedNow).Return(true, nil)
		f.comments.On("CreateComment", ctx, mock.MatchedBy(func(c *models.Comment) bool {
			return c.Text == "Works fine" && c.AuthorName == "Bob" && c.Created.Equal(fixedNow)
		})).Run(func(args mock.Arguments) {
			args.Get(1).(*models.Comment).ID = 8
		}).Return(nil)

		view, err := f.svc.Add(ctx, 2, 3, CommentRequest{Text: " Works fine "})
		require.NoError(t, err)
		assert.Equal(t, int64(8), view.ID)
		assert.Equal(t, "Bob", view.AuthorName)
	})

	t.Run("NotEligible", func(t *testing.T) {
		f := newCommentFixture()
		f.users.On("GetUserByID", ctx, int64(2)).Return(user, nil)
		f.items.On("GetItemByID", ctx, int64(3)).Return(item, nil)
		f.bookings.On("HasFinishedApprovedBooking", ctx, int64(2), int64(3), fixedNow).Return(false, nil)

		_, err := f.svc.Add(ctx, 2, 3, CommentRequest{Text: "hi"})
		assert.True(t, domain.IsValidation(err))
		f.comments.AssertNotCalled(t, "CreateComment", mock.Anything, mock.Anything)
	})

	t.Run("BlankText", func(t *testing.T) {
		f := newCommentFixture()
		f.users.On("GetUserByID", ctx, int64(2)).Return(user, nil)
		f.items.On("GetItemByID", ctx, int64(3)).Return(item, nil)
		f.bookings.On("HasFinishedApprovedBooking", ctx, int64(2), int64(3), fixedNow).Return(true, nil)

		_, err := f.svc.Add(ctx, 2, 3, CommentRequest{Text: "  "})
		assert.True(t, domain.IsValidation(err))
	})

	t.Run("UnknownItem", func(t *testing.T) {
		f := newCommentFixture()
		f.users.On("GetUserByID", ctx, int64(2)).Return(user, nil)
		f.items.On("GetItemByID", ctx, int64(3)).Return(nil, database.ErrNotFound)

		_, err := f.svc.Add(ctx, 2, 3, CommentRequest{Text: "hi"})
		assert.True(t, domain.IsNotFound(err))
	})
}
