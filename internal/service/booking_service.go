package service

import (
	"context"
	"errors"
	"time"

	"shareit/internal/database"
	"shareit/internal/domain"
	"shareit/internal/metrics"
	"shareit/internal/models"

	"github.com/rs/zerolog"
)

type BookingService struct {
	bookings  domain.BookingRepository
	items     domain.ItemRepository
	users     domain.UserRepository
	validator BookingValidator
	clock     domain.Clock
	logger    *zerolog.Logger
}

func NewBookingService(
	bookings domain.BookingRepository,
	items domain.ItemRepository,
	users domain.UserRepository,
	logger *zerolog.Logger,
) *BookingService {
	return &BookingService{
		bookings: bookings,
		items:    items,
		users:    users,
		clock:    time.Now,
		logger:   logger,
	}
}

// WithClock replaces the time source. Intended for tests.
func (s *BookingService) WithClock(clock domain.Clock) *BookingService {
	s.clock = clock
	return s
}

// Create validates the request and stores a WAITING booking.
func (s *BookingService) Create(ctx context.Context, bookerID int64, req BookingRequest) (*models.BookingView, error) {
	if _, err := s.users.GetUserByID(ctx, bookerID); err != nil {
		return nil, notFoundOr(err, "User with id %d not found", bookerID)
	}

	item, err := s.items.GetItemByID(ctx, req.ItemID)
	if err != nil {
		return nil, notFoundOr(err, "Item with id %d not found", req.ItemID)
	}

	if err := s.validator.Validate(req, item, bookerID, s.clock()); err != nil {
		s.logger.Warn().
			Int64("user_id", bookerID).
			Int64("item_id", item.ID).
			Str("reason", domain.MessageOf(err)).
			Msg("booking request rejected")
		return nil, err
	}

	booking := &models.Booking{
		Start:       req.Start,
		End:         req.End,
		ItemID:      item.ID,
		BookerID:    bookerID,
		Status:      models.StatusWaiting,
		ItemName:    item.Name,
		ItemOwnerID: item.OwnerID,
	}
	if err := s.bookings.CreateBooking(ctx, booking); err != nil {
		s.logger.Error().Err(err).Int64("item_id", item.ID).Msg("failed to create booking")
		return nil, err
	}

	metrics.IncBookingTransition(string(models.StatusWaiting))
	s.logger.Info().
		Int64("booking_id", booking.ID).
		Int64("item_id", item.ID).
		Int64("user_id", bookerID).
		Msg("booking created")

	return models.NewBookingView(booking), nil
}

// SetApproval lets the item owner approve or reject a WAITING booking.
func (s *BookingService) SetApproval(ctx context.Context, ownerID, bookingID int64, approved bool) (*models.BookingView, error) {
	booking, err := s.bookings.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, notFoundOr(err, "Booking with id %d not found", bookingID)
	}

	if booking.ItemOwnerID != ownerID {
		s.logger.Warn().
			Int64("booking_id", bookingID).
			Int64("user_id", ownerID).
			Str("reason", "not_owner").
			Msg("booking decision denied")
		return nil, domain.Forbidden("Only the owner of item %d can approve or reject booking %d", booking.ItemID, bookingID)
	}

	if booking.Status != models.StatusWaiting {
		return nil, domain.Validation("Booking %d has already been %s", bookingID, booking.Status)
	}

	to := models.StatusRejected
	if approved {
		to = models.StatusApproved
	}

	err = s.bookings.UpdateBookingStatusFrom(ctx, bookingID, models.StatusWaiting, to)
	if errors.Is(err, database.ErrConcurrentModification) {
		return nil, domain.Validation("Booking %d is no longer waiting for a decision", bookingID)
	}
	if err != nil {
		s.logger.Error().Err(err).Int64("booking_id", bookingID).Msg("failed to update booking status")
		return nil, err
	}

	booking.Status = to
	metrics.IncBookingTransition(string(to))
	s.logger.Info().
		Int64("booking_id", bookingID).
		Int64("user_id", ownerID).
		Str("status", string(to)).
		Msg("booking decided")

	return models.NewBookingView(booking), nil
}

// Get returns a booking visible to its booker or the item owner.
// Anyone else gets the same answer as for a missing booking.
func (s *BookingService) Get(ctx context.Context, userID, bookingID int64) (*models.BookingView, error) {
	booking, err := s.bookings.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, notFoundOr(err, "Booking with id %d not found", bookingID)
	}
	if booking.BookerID != userID && booking.ItemOwnerID != userID {
		return nil, domain.NotFound("Booking with id %d not found", bookingID)
	}
	return models.NewBookingView(booking), nil
}

// List returns one page of the subject's bookings in the given state,
// newest start first. from is rounded down to a multiple of size.
func (s *BookingService) List(
	ctx context.Context,
	subjectID int64,
	role models.BookingRole,
	state models.BookingState,
	from, size int,
) ([]*models.BookingView, error) {
	if err := s.ensureUser(ctx, subjectID); err != nil {
		return nil, err
	}
	if from < 0 || size <= 0 {
		return nil, domain.Validation("Invalid paging parameters: from=%d, size=%d", from, size)
	}

	bookings, err := s.list(ctx, subjectID, role, state, size, (from/size)*size)
	if err != nil {
		return nil, err
	}
	return models.NewBookingViews(bookings), nil
}

// Export returns every booking on the owner's items in the given state, unpaged.
func (s *BookingService) Export(ctx context.Context, ownerID int64, state models.BookingState) ([]*models.Booking, error) {
	if err := s.ensureUser(ctx, ownerID); err != nil {
		return nil, err
	}
	return s.list(ctx, ownerID, models.RoleOwner, state, 0, 0)
}

func (s *BookingService) ensureUser(ctx context.Context, userID int64) error {
	if _, err := s.users.GetUserByID(ctx, userID); err != nil {
		return notFoundOr(err, "User with id %d not found", userID)
	}
	return nil
}

func (s *BookingService) list(
	ctx context.Context,
	subjectID int64,
	role models.BookingRole,
	state models.BookingState,
	limit, offset int,
) ([]*models.Booking, error) {
	bookings, err := s.bookings.ListBookings(ctx, domain.BookingQuery{
		SubjectID: subjectID,
		Role:      role,
		State:     state,
		Now:       s.clock(),
		Limit:     limit,
		Offset:    offset,
	})
	if err != nil {
		s.logger.Error().Err(err).Int64("user_id", subjectID).Str("state", string(state)).Msg("failed to list bookings")
		return nil, err
	}

	metrics.IncBookingQuery(string(role), string(state))
	return bookings, nil
}
