package service

import (
	"time"

	"shareit/internal/domain"
	"shareit/internal/models"
)

// BookingRequest is a booker's ask for an item over [Start, End).
type BookingRequest struct {
	ItemID int64     `json:"itemId" validate:"gt=0"`
	Start  time.Time `json:"start"`
	End    time.Time `json:"end"`
}

// BookingValidator decides whether a booking request may be created.
// Checks run in a fixed order and the first failure is returned.
type BookingValidator struct{}

func (BookingValidator) Validate(req BookingRequest, item *models.Item, requesterID int64, now time.Time) error {
	if req.Start.IsZero() || req.End.IsZero() {
		return domain.Validation("Booking start and end must be provided")
	}
	if !req.Start.Before(req.End) {
		return domain.Validation("Booking start must be before end")
	}
	if req.Start.Before(now) || req.End.Before(now) {
		return domain.Validation("Booking dates cannot be in the past")
	}
	if !item.Available {
		return domain.Validation("Item %d is not available for booking", item.ID)
	}
	if item.OwnerID == requesterID {
		return domain.Validation("Owner cannot book their own item")
	}
	return nil
}
