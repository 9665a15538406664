package service

import (
	"testing"
	"time"

	"shareit/internal/domain"
	"shareit/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBookingValidator(t *testing.T) {
	now := time.Date(2030, 1, 1, 12, 0, 0, 0, time.UTC)
	item := &models.Item{ID: 1, OwnerID: 10, Available: true}
	v := BookingValidator{}
	req := func(start, end time.Time) BookingRequest {
		return BookingRequest{ItemID: 1, Start: start, End: end}
	}

	tests := []struct {
		name      string
		req       BookingRequest
		item      *models.Item
		requester int64
		msg       string
	}{
		{"MissingStart", req(time.Time{}, now.Add(time.Hour)), item, 20, "Booking start and end must be provided"},
		{"MissingEnd", req(now.Add(time.Hour), time.Time{}), item, 20, "Booking start and end must be provided"},
		{"StartEqualsEnd", req(now.Add(time.Hour), now.Add(time.Hour)), item, 20, "Booking start must be before end"},
		{"StartAfterEnd", req(now.Add(2*time.Hour), now.Add(time.Hour)), item, 20, "Booking start must be before end"},
		{"StartInPast", req(now.Add(-time.Second), now.Add(time.Hour)), item, 20, "Booking dates cannot be in the past"},
		{"Unavailable", req(now.Add(time.Hour), now.Add(2*time.Hour)), &models.Item{ID: 1, OwnerID: 10}, 20, "Item 1 is not available for booking"},
		{"Owner", req(now.Add(time.Hour), now.Add(2*time.Hour)), item, 10, "Owner cannot book their own item"},
		// ordering: an inverted range on an unavailable item reports the range first
		{"RangeBeforeAvailability", req(now.Add(2*time.Hour), now.Add(time.Hour)), &models.Item{ID: 1, OwnerID: 10}, 10, "Booking start must be before end"},
		{"PastBeforeOwner", req(now.Add(-time.Hour), now.Add(time.Hour)), item, 10, "Booking dates cannot be in the past"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.req, tt.item, tt.requester, now)
			require.Error(t, err)
			assert.True(t, domain.IsValidation(err))
			assert.Equal(t, tt.msg, domain.MessageOf(err))
		})
	}

	t.Run("StartAtNowIsAllowed", func(t *testing.T) {
		assert.NoError(t, v.Validate(req(now, now.Add(time.Hour)), item, 20, now))
	})
}
