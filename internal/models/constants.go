package models

import (
	"fmt"
	"strings"
)

// BookingStatus is the persisted lifecycle status of a booking.
type BookingStatus string

const (
	StatusWaiting  BookingStatus = "WAITING"
	StatusApproved BookingStatus = "APPROVED"
	StatusRejected BookingStatus = "REJECTED"
)

// BookingState is a read-side filter over bookings. It is never persisted.
type BookingState string

const (
	StateAll      BookingState = "ALL"
	StateCurrent  BookingState = "CURRENT"
	StatePast     BookingState = "PAST"
	StateFuture   BookingState = "FUTURE"
	StateWaiting  BookingState = "WAITING"
	StateRejected BookingState = "REJECTED"
)

// BookingStates lists every declared filter state.
var BookingStates = []BookingState{
	StateAll,
	StateCurrent,
	StatePast,
	StateFuture,
	StateWaiting,
	StateRejected,
}

// BookingRole selects whose bookings a query returns.
type BookingRole string

const (
	RoleBooker BookingRole = "BOOKER"
	RoleOwner  BookingRole = "OWNER"
)

const (
	// DefaultPageSize is used when a list request carries no size.
	DefaultPageSize = 10

	// SharerUserHeader carries the acting user id on every request.
	SharerUserHeader = "X-Sharer-User-Id"
)

// UnknownStateError is returned by ParseBookingState for unrecognised values.
type UnknownStateError struct {
	Value string
}

func (e *UnknownStateError) Error() string {
	return fmt.Sprintf("Unknown state: %s", e.Value)
}

// ParseBookingState accepts state names case-insensitively. An empty value means ALL.
func ParseBookingState(raw string) (BookingState, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return StateAll, nil
	}
	upper := BookingState(strings.ToUpper(trimmed))
	for _, s := range BookingStates {
		if s == upper {
			return s, nil
		}
	}
	return "", &UnknownStateError{Value: raw}
}
