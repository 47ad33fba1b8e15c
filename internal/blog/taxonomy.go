package blog

import (
	"context"
	"fmt"

	"blogpanel/internal/models"
	"blogpanel/internal/slug"
)

// Categories manages post categories. Deleting a category leaves its
// posts uncategorised.
type Categories struct {
	tx TxRunner
}

// Create adds a category with a slug derived from its title.
func (s *Categories) Create(ctx context.Context, title string) (*models.Category, error) {
	title, err := checkTitle(title)
	if err != nil {
		return nil, err
	}

	var created *models.Category
	err = inTxRetry(ctx, s.tx, func(r Repositories) error {
		sl, err := slug.Unique(ctx, title, "category", func(ctx context.Context, c string) (bool, error) {
			return r.Categories.SlugTaken(ctx, c, 0)
		})
		if err != nil {
			return err
		}
		created, err = r.Categories.Create(ctx, title, sl)
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Update renames a category, re-deriving the slug if the title changed.
func (s *Categories) Update(ctx context.Context, id int64, title string) (*models.Category, error) {
	title, err := checkTitle(title)
	if err != nil {
		return nil, err
	}

	var updated *models.Category
	err = inTxRetry(ctx, s.tx, func(r Repositories) error {
		c, err := r.Categories.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if c == nil {
			return fmt.Errorf("category %d: %w", id, ErrNotFound)
		}
		if title == c.Title {
			updated = c
			return nil
		}

		sl, err := slug.Unique(ctx, title, "category", func(ctx context.Context, cand string) (bool, error) {
			return r.Categories.SlugTaken(ctx, cand, id)
		})
		if err != nil {
			return err
		}
		if err := r.Categories.Update(ctx, id, title, sl); err != nil {
			return err
		}
		updated, err = r.Categories.FindByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes a category. Posts referencing it lose their category.
func (s *Categories) Delete(ctx context.Context, id int64) error {
	return inTx(ctx, s.tx, func(r Repositories) error {
		ok, err := r.Categories.Delete(ctx, id)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("category %d: %w", id, ErrNotFound)
		}
		return nil
	})
}

// Get returns a category by id.
func (s *Categories) Get(ctx context.Context, id int64) (*models.Category, error) {
	c, err := s.tx.Repos().Categories.FindByID(ctx, id)
	if err != nil {
		return nil, classify(err)
	}
	if c == nil {
		return nil, fmt.Errorf("category %d: %w", id, ErrNotFound)
	}
	return c, nil
}

// FindBySlug returns a category by slug.
func (s *Categories) FindBySlug(ctx context.Context, sl string) (*models.Category, error) {
	c, err := s.tx.Repos().Categories.FindBySlug(ctx, sl)
	if err != nil {
		return nil, classify(err)
	}
	if c == nil {
		return nil, fmt.Errorf("category %q: %w", sl, ErrNotFound)
	}
	return c, nil
}

// List returns all categories with their post counts.
func (s *Categories) List(ctx context.Context) ([]models.Category, error) {
	items, err := s.tx.Repos().Categories.List(ctx)
	return items, classify(err)
}

// Tags manages post tags. Deleting a tag detaches it from every post.
type Tags struct {
	tx TxRunner
}

// Create adds a tag with a slug derived from its title.
func (s *Tags) Create(ctx context.Context, title string) (*models.Tag, error) {
	title, err := checkTitle(title)
	if err != nil {
		return nil, err
	}

	var created *models.Tag
	err = inTxRetry(ctx, s.tx, func(r Repositories) error {
		sl, err := slug.Unique(ctx, title, "tag", func(ctx context.Context, c string) (bool, error) {
			return r.Tags.SlugTaken(ctx, c, 0)
		})
		if err != nil {
			return err
		}
		created, err = r.Tags.Create(ctx, title, sl)
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Update renames a tag, re-deriving the slug if the title changed.
func (s *Tags) Update(ctx context.Context, id int64, title string) (*models.Tag, error) {
	title, err := checkTitle(title)
	if err != nil {
		return nil, err
	}

	var updated *models.Tag
	err = inTxRetry(ctx, s.tx, func(r Repositories) error {
		t, err := r.Tags.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if t == nil {
			return fmt.Errorf("tag %d: %w", id, ErrNotFound)
		}
		if title == t.Title {
			updated = t
			return nil
		}

		sl, err := slug.Unique(ctx, title, "tag", func(ctx context.Context, c string) (bool, error) {
			return r.Tags.SlugTaken(ctx, c, id)
		})
		if err != nil {
			return err
		}
		if err := r.Tags.Update(ctx, id, title, sl); err != nil {
			return err
		}
		updated, err = r.Tags.FindByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete detaches the tag from all posts and removes it.
func (s *Tags) Delete(ctx context.Context, id int64) error {
	return inTx(ctx, s.tx, func(r Repositories) error {
		if err := r.PostTags.DetachTag(ctx, id); err != nil {
			return err
		}
		ok, err := r.Tags.Delete(ctx, id)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("tag %d: %w", id, ErrNotFound)
		}
		return nil
	})
}

// Get returns a tag by id.
func (s *Tags) Get(ctx context.Context, id int64) (*models.Tag, error) {
	t, err := s.tx.Repos().Tags.FindByID(ctx, id)
	if err != nil {
		return nil, classify(err)
	}
	if t == nil {
		return nil, fmt.Errorf("tag %d: %w", id, ErrNotFound)
	}
	return t, nil
}

// FindBySlug returns a tag by slug.
func (s *Tags) FindBySlug(ctx context.Context, sl string) (*models.Tag, error) {
	t, err := s.tx.Repos().Tags.FindBySlug(ctx, sl)
	if err != nil {
		return nil, classify(err)
	}
	if t == nil {
		return nil, fmt.Errorf("tag %q: %w", sl, ErrNotFound)
	}
	return t, nil
}

// List returns all tags ordered by title.
func (s *Tags) List(ctx context.Context) ([]models.Tag, error) {
	items, err := s.tx.Repos().Tags.List(ctx)
	return items, classify(err)
}
