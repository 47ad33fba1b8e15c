package blog

import (
	"context"
	"fmt"
	"strings"

	"blogpanel/internal/models"
)

// Comments moderates reader comments.
type Comments struct {
	tx TxRunner
}

// Create adds a comment to a public post. It starts inactive until a
// moderator toggles it. userID 0 means an anonymous comment.
func (s *Comments) Create(ctx context.Context, postID, userID int64, text string) (*models.Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, invalid("text", "Comment text is required.")
	}

	var created *models.Comment
	err := inTx(ctx, s.tx, func(r Repositories) error {
		p, err := r.Posts.FindByID(ctx, postID)
		if err != nil {
			return err
		}
		if p == nil || !p.IsPublic() {
			return fmt.Errorf("post %d: %w", postID, ErrNotFound)
		}
		var author *int64
		if userID != 0 {
			author = &userID
		}
		created, err = r.Comments.Create(ctx, postID, author, text)
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Toggle flips a comment between inactive and active. A stored status
// outside those two fails with ErrInvalidState.
func (s *Comments) Toggle(ctx context.Context, id int64) (*models.Comment, error) {
	var toggled *models.Comment
	err := inTx(ctx, s.tx, func(r Repositories) error {
		c, err := r.Comments.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if c == nil {
			return fmt.Errorf("comment %d: %w", id, ErrNotFound)
		}
		next, err := c.Toggled()
		if err != nil {
			return err
		}
		if err := r.Comments.SetStatus(ctx, id, next); err != nil {
			return err
		}
		c.Status = next
		toggled = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return toggled, nil
}

// Delete removes a comment.
func (s *Comments) Delete(ctx context.Context, id int64) error {
	return inTx(ctx, s.tx, func(r Repositories) error {
		ok, err := r.Comments.Delete(ctx, id)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("comment %d: %w", id, ErrNotFound)
		}
		return nil
	})
}

// List returns all comments for moderation.
func (s *Comments) List(ctx context.Context) ([]models.Comment, error) {
	items, err := s.tx.Repos().Comments.List(ctx)
	return items, classify(err)
}

// ListForPost returns a post's comments; activeOnly hides unmoderated ones.
func (s *Comments) ListForPost(ctx context.Context, postID int64, activeOnly bool) ([]models.Comment, error) {
	items, err := s.tx.Repos().Comments.ListForPost(ctx, postID, activeOnly)
	return items, classify(err)
}
