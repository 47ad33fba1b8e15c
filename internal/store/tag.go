package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"blogpanel/internal/models"
)

// TagStore manages tags in the database.
type TagStore struct {
	db DBTX
}

// NewTagStore returns a new TagStore.
func NewTagStore(db DBTX) *TagStore {
	return &TagStore{db: db}
}

const tagColumns = `id, title, slug, created_at, updated_at`

func scanTag(scanner interface{ Scan(...any) error }) (*models.Tag, error) {
	var t models.Tag
	if err := scanner.Scan(&t.ID, &t.Title, &t.Slug, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	return &t, nil
}

// List returns all tags ordered by title.
func (s *TagStore) List(ctx context.Context) ([]models.Tag, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+tagColumns+` FROM tags ORDER BY title`)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	defer rows.Close()

	var items []models.Tag
	for rows.Next() {
		t, err := scanTag(rows)
		if err != nil {
			return nil, fmt.Errorf("scan tag: %w", err)
		}
		items = append(items, *t)
	}
	return items, rows.Err()
}

// FindByID retrieves a tag by ID. Returns nil if not found.
func (s *TagStore) FindByID(ctx context.Context, id int64) (*models.Tag, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+tagColumns+` FROM tags WHERE id = $1`, id)
	t, err := scanTag(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find tag by id: %w", err)
	}
	return t, nil
}

// FindBySlug retrieves a tag by slug. Returns nil if not found.
func (s *TagStore) FindBySlug(ctx context.Context, slug string) (*models.Tag, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+tagColumns+` FROM tags WHERE slug = $1`, slug)
	t, err := scanTag(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find tag by slug: %w", err)
	}
	return t, nil
}

// SlugTaken reports whether slug belongs to a tag other than excludeID.
func (s *TagStore) SlugTaken(ctx context.Context, slug string, excludeID int64) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM tags WHERE slug = $1 AND id <> $2)`, slug, excludeID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check tag slug: %w", err)
	}
	return exists, nil
}

// Create inserts a new tag and returns it.
func (s *TagStore) Create(ctx context.Context, title, slug string) (*models.Tag, error) {
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO tags (title, slug) VALUES ($1, $2)
		RETURNING `+tagColumns,
		title, slug,
	)
	result, err := scanTag(row)
	if err != nil {
		return nil, fmt.Errorf("create tag: %w", mapErr(err))
	}
	return result, nil
}

// Update changes a tag's title and slug.
func (s *TagStore) Update(ctx context.Context, id int64, title, slug string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE tags SET title = $1, slug = $2, updated_at = NOW()
		WHERE id = $3
	`, title, slug, id)
	if err != nil {
		return fmt.Errorf("update tag: %w", mapErr(err))
	}
	return nil
}

// Delete removes a tag by ID. It returns false if no row matched.
func (s *TagStore) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tags WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete tag: %w", err)
	}
	return affected(res)
}
