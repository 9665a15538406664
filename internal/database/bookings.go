package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"shareit/internal/domain"
	"shareit/internal/models"
)

const bookingSelect = `SELECT b.id, b.start_at, b.end_at, b.item_id, b.booker_id, b.status,
                              b.created_at, b.updated_at, i.name, i.owner_id
                       FROM bookings b
                       JOIN items i ON i.id = b.item_id`

func scanBooking(row rowScanner) (*models.Booking, error) {
	b := &models.Booking{}
	var start, end, created, updated string
	var status string
	err := row.Scan(&b.ID, &start, &end, &b.ItemID, &b.BookerID, &status,
		&created, &updated, &b.ItemName, &b.ItemOwnerID)
	if err != nil {
		return nil, err
	}
	b.Status = models.BookingStatus(status)

	if b.Start, err = parseTime(start); err != nil {
		return nil, err
	}
	if b.End, err = parseTime(end); err != nil {
		return nil, err
	}
	if b.CreatedAt, err = parseTime(created); err != nil {
		return nil, err
	}
	if b.UpdatedAt, err = parseTime(updated); err != nil {
		return nil, err
	}
	return b, nil
}

func (db *DB) CreateBooking(ctx context.Context, booking *models.Booking) error {
	now := time.Now().UTC()
	result, err := db.ExecContext(ctx,
		`INSERT INTO bookings (start_at, end_at, item_id, booker_id, status, created_at, updated_at)
         VALUES (?, ?, ?, ?, ?, ?, ?)`,
		formatTime(booking.Start),
		formatTime(booking.End),
		booking.ItemID,
		booking.BookerID,
		string(booking.Status),
		formatTime(now),
		formatTime(now),
	)
	if err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	booking.ID = id
	booking.CreatedAt = now
	booking.UpdatedAt = now
	return nil
}

func (db *DB) GetBooking(ctx context.Context, id int64) (*models.Booking, error) {
	b, err := scanBooking(db.QueryRowContext(ctx, bookingSelect+` WHERE b.id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return b, nil
}

// UpdateBookingStatusFrom moves a booking from one status to another.
// It returns ErrConcurrentModification when the booking is no longer in from,
// so of two racing decisions exactly one succeeds.
func (db *DB) UpdateBookingStatusFrom(ctx context.Context, id int64, from, to models.BookingStatus) error {
	result, err := db.ExecContext(ctx,
		`UPDATE bookings SET status = ?, updated_at = ? WHERE id = ? AND status = ?`,
		string(to), formatTime(time.Now()), id, string(from),
	)
	if err != nil {
		return fmt.Errorf("failed to update booking status: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrConcurrentModification
	}
	return nil
}

// ListBookings returns one page of bookings for a booker or an item owner,
// newest start first.
func (db *DB) ListBookings(ctx context.Context, q domain.BookingQuery) ([]*models.Booking, error) {
	var where string
	switch q.Role {
	case models.RoleBooker:
		where = ` WHERE b.booker_id = ?`
	case models.RoleOwner:
		where = ` WHERE i.owner_id = ?`
	default:
		return nil, fmt.Errorf("unsupported booking role %q", q.Role)
	}
	args := []any{q.SubjectID}

	filter, filterArgs, err := bookingStateFilter(q.State, q.Now)
	if err != nil {
		return nil, err
	}
	args = append(args, filterArgs...)

	query := bookingSelect + where + filter + ` ORDER BY b.start_at DESC, b.id DESC`
	if q.Limit > 0 {
		query += ` LIMIT ? OFFSET ?`
		args = append(args, q.Limit, q.Offset)
	}

	return db.queryBookings(ctx, query, args...)
}

// bookingStateFilter is the single mapping from a read-side state to its predicate.
func bookingStateFilter(state models.BookingState, now time.Time) (string, []any, error) {
	ts := formatTime(now)
	switch state {
	case models.StateAll:
		return "", nil, nil
	case models.StateCurrent:
		return ` AND b.start_at <= ? AND b.end_at > ?`, []any{ts, ts}, nil
	case models.StatePast:
		return ` AND b.end_at < ?`, []any{ts}, nil
	case models.StateFuture:
		return ` AND b.start_at > ?`, []any{ts}, nil
	case models.StateWaiting:
		return ` AND b.status = ?`, []any{string(models.StatusWaiting)}, nil
	case models.StateRejected:
		return ` AND b.status = ?`, []any{string(models.StatusRejected)}, nil
	}
	return "", nil, fmt.Errorf("unsupported booking state %q", state)
}

func (db *DB) LastApprovedBooking(ctx context.Context, itemID int64, now time.Time) (*models.Booking, error) {
	return db.firstBooking(ctx,
		bookingSelect+` WHERE b.item_id = ? AND b.status = ? AND b.end_at < ? ORDER BY b.end_at DESC, b.id DESC LIMIT 1`,
		itemID, string(models.StatusApproved), formatTime(now),
	)
}

func (db *DB) NextApprovedBooking(ctx context.Context, itemID int64, now time.Time) (*models.Booking, error) {
	return db.firstBooking(ctx,
		bookingSelect+` WHERE b.item_id = ? AND b.status = ? AND b.start_at > ? ORDER BY b.start_at ASC, b.id ASC LIMIT 1`,
		itemID, string(models.StatusApproved), formatTime(now),
	)
}

// LastApprovedBookings returns finished approved bookings of all items, latest end first.
func (db *DB) LastApprovedBookings(ctx context.Context, itemIDs []int64, now time.Time) ([]*models.Booking, error) {
	if len(itemIDs) == 0 {
		return []*models.Booking{}, nil
	}
	in, args := inClause(itemIDs)
	args = append(args, string(models.StatusApproved), formatTime(now))
	return db.queryBookings(ctx,
		bookingSelect+` WHERE b.item_id IN (`+in+`) AND b.status = ? AND b.end_at < ? ORDER BY b.end_at DESC, b.id DESC`,
		args...,
	)
}

// NextApprovedBookings returns upcoming approved bookings of all items, earliest start first.
func (db *DB) NextApprovedBookings(ctx context.Context, itemIDs []int64, now time.Time) ([]*models.Booking, error) {
	if len(itemIDs) == 0 {
		return []*models.Booking{}, nil
	}
	in, args := inClause(itemIDs)
	args = append(args, string(models.StatusApproved), formatTime(now))
	return db.queryBookings(ctx,
		bookingSelect+` WHERE b.item_id IN (`+in+`) AND b.status = ? AND b.start_at > ? ORDER BY b.start_at ASC, b.id ASC`,
		args...,
	)
}

func (db *DB) HasFinishedApprovedBooking(ctx context.Context, bookerID, itemID int64, now time.Time) (bool, error) {
	var exists bool
	err := db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM bookings WHERE booker_id = ? AND item_id = ? AND status = ? AND end_at < ?)`,
		bookerID, itemID, string(models.StatusApproved), formatTime(now),
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check finished bookings: %w", err)
	}
	return exists, nil
}

func (db *DB) firstBooking(ctx context.Context, query string, args ...any) (*models.Booking, error) {
	b, err := scanBooking(db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return b, nil
}

func (db *DB) queryBookings(ctx context.Context, query string, args ...any) ([]*models.Booking, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query bookings: %w", err)
	}
	defer rows.Close()

	bookings := []*models.Booking{}
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}
