package domain

import (
	"context"
	"time"

	"shareit/internal/models"
)

// BookingQuery describes one page of a state-filtered booking listing.
// Limit <= 0 means no paging.
type BookingQuery struct {
	SubjectID int64
	Role      models.BookingRole
	State     models.BookingState
	Now       time.Time
	Limit     int
	Offset    int
}

type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User) error
	UpdateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	GetAllUsers(ctx context.Context) ([]*models.User, error)
	DeleteUser(ctx context.Context, id int64) error
	EmailTaken(ctx context.Context, email string, exceptID int64) (bool, error)
}

type ItemRepository interface {
	CreateItem(ctx context.Context, item *models.Item) error
	UpdateItem(ctx context.Context, item *models.Item) error
	GetItemByID(ctx context.Context, id int64) (*models.Item, error)
	GetItemsByOwner(ctx context.Context, ownerID int64) ([]*models.Item, error)
	SearchAvailableItems(ctx context.Context, text string) ([]*models.Item, error)
}

type BookingRepository interface {
	CreateBooking(ctx context.Context, booking *models.Booking) error
	GetBooking(ctx context.Context, id int64) (*models.Booking, error)
	// UpdateBookingStatusFrom changes the status only if it still equals from.
	UpdateBookingStatusFrom(ctx context.Context, id int64, from, to models.BookingStatus) error
	ListBookings(ctx context.Context, q BookingQuery) ([]*models.Booking, error)

	LastApprovedBooking(ctx context.Context, itemID int64, now time.Time) (*models.Booking, error)
	NextApprovedBooking(ctx context.Context, itemID int64, now time.Time) (*models.Booking, error)
	// Batch variants return candidates ordered end desc and start asc respectively.
	LastApprovedBookings(ctx context.Context, itemIDs []int64, now time.Time) ([]*models.Booking, error)
	NextApprovedBookings(ctx context.Context, itemIDs []int64, now time.Time) ([]*models.Booking, error)

	HasFinishedApprovedBooking(ctx context.Context, bookerID, itemID int64, now time.Time) (bool, error)
}

type CommentRepository interface {
	CreateComment(ctx context.Context, comment *models.Comment) error
	GetCommentsByItem(ctx context.Context, itemID int64) ([]*models.Comment, error)
	GetCommentsByItems(ctx context.Context, itemIDs []int64) ([]*models.Comment, error)
}

// RateLimiter counts requests per key inside a fixed window.
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// Clock returns the current instant. Services sample it once per operation.
type Clock func() time.Time
