package models

import "time"

// Booking is a request by a user to hold an item for the half-open interval [Start, End).
type Booking struct {
	ID        int64         `json:"id"`
	Start     time.Time     `json:"start"`
	End       time.Time     `json:"end"`
	ItemID    int64         `json:"item_id"`
	BookerID  int64         `json:"booker_id"`
	Status    BookingStatus `json:"status"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`

	// Filled from the items table on read.
	ItemName    string `json:"item_name"`
	ItemOwnerID int64  `json:"-"`
}

// BookingView is the booking projection returned to callers.
type BookingView struct {
	ID     int64         `json:"id"`
	Start  time.Time     `json:"start"`
	End    time.Time     `json:"end"`
	Status BookingStatus `json:"status"`
	Booker BookerRef     `json:"booker"`
	Item   ItemRef       `json:"item"`
}

type BookerRef struct {
	ID int64 `json:"id"`
}

type ItemRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// BookingShort is embedded in item views as last/next booking.
type BookingShort struct {
	ID       int64 `json:"id"`
	BookerID int64 `json:"bookerId"`
}

func NewBookingView(b *Booking) *BookingView {
	return &BookingView{
		ID:     b.ID,
		Start:  b.Start,
		End:    b.End,
		Status: b.Status,
		Booker: BookerRef{ID: b.BookerID},
		Item:   ItemRef{ID: b.ItemID, Name: b.ItemName},
	}
}

func NewBookingViews(bookings []*Booking) []*BookingView {
	out := make([]*BookingView, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, NewBookingView(b))
	}
	return out
}

func (b *Booking) Short() *BookingShort {
	if b == nil {
		return nil
	}
	return &BookingShort{ID: b.ID, BookerID: b.BookerID}
}
