package store

import (
	"context"
	"fmt"
	"slices"

	"blogpanel/internal/models"
)

// PostTagStore manages the post_tags join table.
type PostTagStore struct {
	db DBTX
}

// NewPostTagStore returns a new PostTagStore.
func NewPostTagStore(db DBTX) *PostTagStore {
	return &PostTagStore{db: db}
}

// dedupe returns the distinct ids in ascending order.
func dedupe(ids []int64) []int64 {
	out := slices.Clone(ids)
	slices.Sort(out)
	return slices.Compact(out)
}

// Sync makes the post's tag set equal to tagIDs. Rows already present keep
// their timestamps; rows outside the set are removed.
func (s *PostTagStore) Sync(ctx context.Context, postID int64, tagIDs []int64) error {
	ids := dedupe(tagIDs)
	if len(ids) == 0 {
		return s.DetachAll(ctx, postID)
	}

	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM post_tags WHERE post_id = $1 AND NOT (tag_id = ANY($2))`, postID, ids,
	); err != nil {
		return fmt.Errorf("sync post tags delete: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO post_tags (post_id, tag_id)
		SELECT $1, t FROM UNNEST($2::bigint[]) AS t
		ON CONFLICT (post_id, tag_id) DO NOTHING
	`, postID, ids); err != nil {
		return fmt.Errorf("sync post tags insert: %w", mapErr(err))
	}
	return nil
}

// DetachAll removes every tag from a post.
func (s *PostTagStore) DetachAll(ctx context.Context, postID int64) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM post_tags WHERE post_id = $1`, postID); err != nil {
		return fmt.Errorf("detach post tags: %w", err)
	}
	return nil
}

// DetachTag removes a tag from every post.
func (s *PostTagStore) DetachTag(ctx context.Context, tagID int64) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM post_tags WHERE tag_id = $1`, tagID); err != nil {
		return fmt.Errorf("detach tag from posts: %w", err)
	}
	return nil
}

// TagIDs returns the ids of the tags attached to a post, ascending.
func (s *PostTagStore) TagIDs(ctx context.Context, postID int64) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT tag_id FROM post_tags WHERE post_id = $1 ORDER BY tag_id`, postID)
	if err != nil {
		return nil, fmt.Errorf("list post tag ids: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan tag id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ListForPost returns the tags attached to a post ordered by title.
func (s *PostTagStore) ListForPost(ctx context.Context, postID int64) ([]models.Tag, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT t.id, t.title, t.slug, t.created_at, t.updated_at
		FROM tags t
		JOIN post_tags pt ON pt.tag_id = t.id
		WHERE pt.post_id = $1
		ORDER BY t.title
	`, postID)
	if err != nil {
		return nil, fmt.Errorf("list post tags: %w", err)
	}
	defer rows.Close()

	var tags []models.Tag
	for rows.Next() {
		t, err := scanTag(rows)
		if err != nil {
			return nil, fmt.Errorf("scan tag: %w", err)
		}
		tags = append(tags, *t)
	}
	return tags, rows.Err()
}
