package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"shareit/internal/models"
)

const itemColumns = `id, name, description, available, owner_id, request_id`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (*models.Item, error) {
	item := &models.Item{}
	var requestID sql.NullInt64
	if err := row.Scan(&item.ID, &item.Name, &item.Description, &item.Available, &item.OwnerID, &requestID); err != nil {
		return nil, err
	}
	if requestID.Valid {
		id := requestID.Int64
		item.RequestID = &id
	}
	return item, nil
}

func (db *DB) CreateItem(ctx context.Context, item *models.Item) error {
	result, err := db.ExecContext(ctx,
		`INSERT INTO items (name, description, available, owner_id, request_id) VALUES (?, ?, ?, ?, ?)`,
		item.Name, item.Description, item.Available, item.OwnerID, item.RequestID,
	)
	if err != nil {
		return fmt.Errorf("failed to create item: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	item.ID = id
	return nil
}

func (db *DB) UpdateItem(ctx context.Context, item *models.Item) error {
	result, err := db.ExecContext(ctx,
		`UPDATE items SET name = ?, description = ?, available = ?, request_id = ? WHERE id = ?`,
		item.Name, item.Description, item.Available, item.RequestID, item.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update item: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

func (db *DB) GetItemByID(ctx context.Context, id int64) (*models.Item, error) {
	item, err := scanItem(db.QueryRowContext(ctx, `SELECT `+itemColumns+` FROM items WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get item: %w", err)
	}
	return item, nil
}

func (db *DB) GetItemsByOwner(ctx context.Context, ownerID int64) ([]*models.Item, error) {
	return db.queryItems(ctx, `SELECT `+itemColumns+` FROM items WHERE owner_id = ? ORDER BY id`, ownerID)
}

// SearchAvailableItems matches text against name or description, ignoring case.
func (db *DB) SearchAvailableItems(ctx context.Context, text string) ([]*models.Item, error) {
	pattern := "%" + escapeLike(strings.ToLower(text)) + "%"
	return db.queryItems(ctx,
		`SELECT `+itemColumns+` FROM items
         WHERE available = 1
           AND (unicode_lower(name) LIKE ? ESCAPE '\' OR unicode_lower(description) LIKE ? ESCAPE '\')
         ORDER BY id`,
		pattern, pattern,
	)
}

func (db *DB) queryItems(ctx context.Context, query string, args ...any) ([]*models.Item, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query items: %w", err)
	}
	defer rows.Close()

	items := []*models.Item{}
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
