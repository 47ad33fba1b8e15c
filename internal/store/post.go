// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"blogpanel/internal/models"
)

// PostStore manages blog posts in the database.
type PostStore struct {
	db DBTX
}

// NewPostStore returns a new PostStore.
func NewPostStore(db DBTX) *PostStore {
	return &PostStore{db: db}
}

const postColumns = `id, title, slug, content, date, category_id, user_id, image, status, featured, views, created_at, updated_at`

// PostFilter narrows a post listing. Zero values mean "no filter".
type PostFilter struct {
	Status     models.PostStatus
	CategoryID int64
	TagID      int64
	Limit      int
	Offset     int
}

// scanPost scans a row into a Post struct.
func scanPost(scanner interface{ Scan(...any) error }) (*models.Post, error) {
	var p models.Post
	err := scanner.Scan(
		&p.ID, &p.Title, &p.Slug, &p.Content, &p.Date, &p.CategoryID, &p.AuthorID,
		&p.Image, &p.Status, &p.Featured, &p.Views, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Create inserts a post and returns the stored row.
func (s *PostStore) Create(ctx context.Context, p *models.Post) (*models.Post, error) {
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO posts (title, slug, content, date, category_id, user_id, image, status, featured)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING `+postColumns,
		p.Title, p.Slug, p.Content, p.Date, p.CategoryID, p.AuthorID, p.Image, p.Status, p.Featured,
	)
	result, err := scanPost(row)
	if err != nil {
		return nil, fmt.Errorf("create post: %w", mapErr(err))
	}
	return result, nil
}

// FindByID retrieves a post by ID. Returns nil if not found.
func (s *PostStore) FindByID(ctx context.Context, id int64) (*models.Post, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+postColumns+` FROM posts WHERE id = $1`, id)
	p, err := scanPost(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find post by id: %w", err)
	}
	return p, nil
}

// FindBySlug retrieves a post by slug. Returns nil if not found.
func (s *PostStore) FindBySlug(ctx context.Context, slug string) (*models.Post, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+postColumns+` FROM posts WHERE slug = $1`, slug)
	p, err := scanPost(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find post by slug: %w", err)
	}
	return p, nil
}

// SlugTaken reports whether slug belongs to a post other than excludeID.
func (s *PostStore) SlugTaken(ctx context.Context, slug string, excludeID int64) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM posts WHERE slug = $1 AND id <> $2)`, slug, excludeID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check post slug: %w", err)
	}
	return exists, nil
}

// UpdateContent writes title, slug and content in one statement.
func (s *PostStore) UpdateContent(ctx context.Context, id int64, title, slug, content string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE posts SET title = $1, slug = $2, content = $3, updated_at = NOW()
		WHERE id = $4
	`, title, slug, content, id)
	if err != nil {
		return fmt.Errorf("update post content: %w", mapErr(err))
	}
	return nil
}

// SetDate stores the post date.
func (s *PostStore) SetDate(ctx context.Context, id int64, date time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE posts SET date = $1, updated_at = NOW() WHERE id = $2`, date, id)
	if err != nil {
		return fmt.Errorf("set post date: %w", err)
	}
	return nil
}

// SetCategory points the post at a category.
func (s *PostStore) SetCategory(ctx context.Context, id, categoryID int64) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE posts SET category_id = $1, updated_at = NOW() WHERE id = $2`, categoryID, id)
	if err != nil {
		return fmt.Errorf("set post category: %w", mapErr(err))
	}
	return nil
}

// SetImage stores the image filename, or clears it when image is nil.
func (s *PostStore) SetImage(ctx context.Context, id int64, image *string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE posts SET image = $1, updated_at = NOW() WHERE id = $2`, image, id)
	if err != nil {
		return fmt.Errorf("set post image: %w", err)
	}
	return nil
}

// SetStatus updates the publishing state.
func (s *PostStore) SetStatus(ctx context.Context, id int64, status models.PostStatus) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE posts SET status = $1, updated_at = NOW() WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("set post status: %w", err)
	}
	return nil
}

// SetFeatured updates the featured flag.
func (s *PostStore) SetFeatured(ctx context.Context, id int64, featured models.Feature) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE posts SET featured = $1, updated_at = NOW() WHERE id = $2`, featured, id)
	if err != nil {
		return fmt.Errorf("set post featured: %w", err)
	}
	return nil
}

// IncrementViews bumps the view counter by one.
func (s *PostStore) IncrementViews(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, `UPDATE posts SET views = views + 1 WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("increment post views: %w", err)
	}
	return nil
}

// Delete removes a post by ID. It returns false if no row matched.
func (s *PostStore) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete post: %w", err)
	}
	return affected(res)
}

// List returns posts matching f, newest first.
func (s *PostStore) List(ctx context.Context, f PostFilter) ([]models.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts p WHERE 1=1`
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.Status != "" {
		query += ` AND p.status = ` + arg(f.Status)
	}
	if f.CategoryID != 0 {
		query += ` AND p.category_id = ` + arg(f.CategoryID)
	}
	if f.TagID != 0 {
		query += ` AND EXISTS (SELECT 1 FROM post_tags pt WHERE pt.post_id = p.id AND pt.tag_id = ` + arg(f.TagID) + `)`
	}
	query += ` ORDER BY p.created_at DESC, p.id DESC`
	if f.Limit > 0 {
		query += ` LIMIT ` + arg(f.Limit)
	}
	if f.Offset > 0 {
		query += ` OFFSET ` + arg(f.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	var items []models.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		items = append(items, *p)
	}
	return items, rows.Err()
}

// Count returns the number of posts with the given status, or all posts
// when status is empty.
func (s *PostStore) Count(ctx context.Context, status models.PostStatus) (int, error) {
	var n int
	var err error
	if status == "" {
		err = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM posts`).Scan(&n)
	} else {
		err = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM posts WHERE status = $1`, status).Scan(&n)
	}
	if err != nil {
		return 0, fmt.Errorf("count posts: %w", err)
	}
	return n, nil
}

// Random returns up to n published posts in random order.
func (s *PostStore) Random(ctx context.Context, n int) ([]models.Post, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+postColumns+` FROM posts
		WHERE status = $1
		ORDER BY RANDOM()
		LIMIT $2
	`, models.PostStatusPublic, n)
	if err != nil {
		return nil, fmt.Errorf("random posts: %w", err)
	}
	defer rows.Close()

	var items []models.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		items = append(items, *p)
	}
	return items, rows.Err()
}
