// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"blogpanel/internal/models"
)

// CommentStore manages post comments.
type CommentStore struct {
	db DBTX
}

// NewCommentStore returns a new CommentStore.
func NewCommentStore(db DBTX) *CommentStore {
	return &CommentStore{db: db}
}

const commentColumns = `id, post_id, user_id, text, status, created_at, updated_at`

func scanComment(scanner interface{ Scan(...any) error }) (*models.Comment, error) {
	var c models.Comment
	err := scanner.Scan(&c.ID, &c.PostID, &c.UserID, &c.Text, &c.Status, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *CommentStore) query(ctx context.Context, q string, args ...any) ([]models.Comment, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	var items []models.Comment
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		items = append(items, *c)
	}
	return items, rows.Err()
}

// List returns all comments, newest first.
func (s *CommentStore) List(ctx context.Context) ([]models.Comment, error) {
	return s.query(ctx, `SELECT `+commentColumns+` FROM comments ORDER BY created_at DESC, id DESC`)
}

// ListForPost returns a post's comments, oldest first. When activeOnly is
// set, comments awaiting moderation are left out.
func (s *CommentStore) ListForPost(ctx context.Context, postID int64, activeOnly bool) ([]models.Comment, error) {
	if activeOnly {
		return s.query(ctx, `SELECT `+commentColumns+` FROM comments
			WHERE post_id = $1 AND status = $2 ORDER BY created_at, id`, postID, models.CommentStatusActive)
	}
	return s.query(ctx, `SELECT `+commentColumns+` FROM comments
		WHERE post_id = $1 ORDER BY created_at, id`, postID)
}

// FindByID retrieves a comment by ID. Returns nil if not found.
func (s *CommentStore) FindByID(ctx context.Context, id int64) (*models.Comment, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+commentColumns+` FROM comments WHERE id = $1`, id)
	c, err := scanComment(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find comment by id: %w", err)
	}
	return c, nil
}

// Create inserts a comment awaiting moderation.
func (s *CommentStore) Create(ctx context.Context, postID int64, userID *int64, text string) (*models.Comment, error) {
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO comments (post_id, user_id, text, status)
		VALUES ($1, $2, $3, $4)
		RETURNING `+commentColumns,
		postID, userID, text, models.CommentStatusInactive,
	)
	c, err := scanComment(row)
	if err != nil {
		return nil, fmt.Errorf("create comment: %w", mapErr(err))
	}
	return c, nil
}

// SetStatus updates the moderation state.
func (s *CommentStore) SetStatus(ctx context.Context, id int64, status models.CommentStatus) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE comments SET status = $1, updated_at = NOW() WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("set comment status: %w", err)
	}
	return nil
}

// Delete removes a comment by ID. It returns false if no row matched.
func (s *CommentStore) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete comment: %w", err)
	}
	return affected(res)
}
