package models

type Item struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Available   bool   `json:"available"`
	OwnerID     int64  `json:"owner_id"`
	RequestID   *int64 `json:"request_id,omitempty"`
}

// ItemView is an item enriched with availability and comments.
// LastBooking and NextBooking are only filled for the item owner.
type ItemView struct {
	ID          int64          `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Available   bool           `json:"available"`
	RequestID   *int64         `json:"requestId,omitempty"`
	LastBooking *BookingShort  `json:"lastBooking"`
	NextBooking *BookingShort  `json:"nextBooking"`
	Comments    []*CommentView `json:"comments"`
}

// ItemAvailability holds the nearest approved bookings around "now" for one item.
type ItemAvailability struct {
	Last *Booking
	Next *Booking
}

func NewItemView(item *Item, avail ItemAvailability, comments []*CommentView) *ItemView {
	if comments == nil {
		comments = []*CommentView{}
	}
	return &ItemView{
		ID:          item.ID,
		Name:        item.Name,
		Description: item.Description,
		Available:   item.Available,
		RequestID:   item.RequestID,
		LastBooking: avail.Last.Short(),
		NextBooking: avail.Next.Short(),
		Comments:    comments,
	}
}
