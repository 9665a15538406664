package service

import (
	"context"
	"strings"
	"time"

	"shareit/internal/domain"
	"shareit/internal/models"
	"shareit/internal/validation"

	"github.com/rs/zerolog"
)

type CommentRequest struct {
	Text string `json:"text" validate:"notblank,max=2000"`
}

type CommentService struct {
	comments domain.CommentRepository
	bookings domain.BookingRepository
	items    domain.ItemRepository
	users    domain.UserRepository
	validate *validation.Validator
	clock    domain.Clock
	logger   *zerolog.Logger
}

func NewCommentService(
	comments domain.CommentRepository,
	bookings domain.BookingRepository,
	items domain.ItemRepository,
	users domain.UserRepository,
	validate *validation.Validator,
	logger *zerolog.Logger,
) *CommentService {
	return &CommentService{
		comments: comments,
		bookings: bookings,
		items:    items,
		users:    users,
		validate: validate,
		clock:    time.Now,
		logger:   logger,
	}
}

func (s *CommentService) WithClock(clock domain.Clock) *CommentService {
	s.clock = clock
	return s
}

// CanComment passes only if the user has an approved booking of the item
// that has already ended.
func (s *CommentService) CanComment(ctx context.Context, userID, itemID int64) error {
	return s.canCommentAt(ctx, userID, itemID, s.clock())
}

func (s *CommentService) canCommentAt(ctx context.Context, userID, itemID int64, now time.Time) error {
	ok, err := s.bookings.HasFinishedApprovedBooking(ctx, userID, itemID, now)
	if err != nil {
		return err
	}
	if !ok {
		return domain.Validation("User %d has no finished approved booking of item %d", userID, itemID)
	}
	return nil
}

func (s *CommentService) Add(ctx context.Context, userID, itemID int64, req CommentRequest) (*models.CommentView, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, notFoundOr(err, "User with id %d not found", userID)
	}
	if _, err := s.items.GetItemByID(ctx, itemID); err != nil {
		return nil, notFoundOr(err, "Item with id %d not found", itemID)
	}

	now := s.clock()
	if err := s.canCommentAt(ctx, userID, itemID, now); err != nil {
		s.logger.Warn().
			Int64("user_id", userID).
			Int64("item_id", itemID).
			Str("reason", domain.MessageOf(err)).
			Msg("comment rejected")
		return nil, err
	}
	if err := s.validate.Struct(req); err != nil {
		return nil, err
	}

	comment := &models.Comment{
		Text:       strings.TrimSpace(req.Text),
		ItemID:     itemID,
		AuthorID:   userID,
		AuthorName: user.Name,
		Created:    now,
	}
	if err := s.comments.CreateComment(ctx, comment); err != nil {
		s.logger.Error().Err(err).Int64("item_id", itemID).Msg("failed to create comment")
		return nil, err
	}

	return comment.View(), nil
}
