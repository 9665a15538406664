package service

import (
	"errors"

	"shareit/internal/database"
	"shareit/internal/domain"
	"shareit/internal/models"
)

// notFoundOr maps a storage miss to a domain NotFound and passes other errors through.
func notFoundOr(err error, format string, args ...any) error {
	if errors.Is(err, database.ErrNotFound) {
		return domain.NotFound(format, args...)
	}
	return err
}

// ParseState converts a client supplied state into a filter or a validation error.
func ParseState(raw string) (models.BookingState, error) {
	state, err := models.ParseBookingState(raw)
	if err != nil {
		return "", domain.Validation("%s", err.Error())
	}
	return state, nil
}
