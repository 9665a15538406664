package database

import (
	"context"
	"fmt"
	"time"

	"shareit/internal/models"
)

const commentSelect = `SELECT c.id, c.text, c.item_id, c.author_id, COALESCE(u.name, ''), c.created
                       FROM comments c
                       LEFT JOIN users u ON u.id = c.author_id`

func (db *DB) CreateComment(ctx context.Context, comment *models.Comment) error {
	if comment.Created.IsZero() {
		comment.Created = time.Now()
	}
	result, err := db.ExecContext(ctx,
		`INSERT INTO comments (text, item_id, author_id, created) VALUES (?, ?, ?, ?)`,
		comment.Text, comment.ItemID, comment.AuthorID, formatTime(comment.Created),
	)
	if err != nil {
		return fmt.Errorf("failed to create comment: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	comment.ID = id
	return nil
}

// GetCommentsByItem returns the item's comments, newest first.
func (db *DB) GetCommentsByItem(ctx context.Context, itemID int64) ([]*models.Comment, error) {
	return db.queryComments(ctx, commentSelect+` WHERE c.item_id = ? ORDER BY c.created DESC, c.id DESC`, itemID)
}

func (db *DB) GetCommentsByItems(ctx context.Context, itemIDs []int64) ([]*models.Comment, error) {
	if len(itemIDs) == 0 {
		return []*models.Comment{}, nil
	}
	in, args := inClause(itemIDs)
	return db.queryComments(ctx, commentSelect+` WHERE c.item_id IN (`+in+`) ORDER BY c.created DESC, c.id DESC`, args...)
}

func (db *DB) queryComments(ctx context.Context, query string, args ...any) ([]*models.Comment, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query comments: %w", err)
	}
	defer rows.Close()

	comments := []*models.Comment{}
	for rows.Next() {
		c := &models.Comment{}
		var created string
		if err := rows.Scan(&c.ID, &c.Text, &c.ItemID, &c.AuthorID, &c.AuthorName, &created); err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		if c.Created, err = parseTime(created); err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}
