// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package blog

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"blogpanel/internal/media"
	"blogpanel/internal/models"
	"blogpanel/internal/slug"
	"blogpanel/internal/store"
)

// Listing page sizes.
const (
	DefaultPerPage = 10
	MaxPerPage     = 50
)

// PostInput carries the editable fields of a post. Zero values mean
// "absent": a zero CategoryID, an empty TagIDs, an empty Date and a nil
// Image leave the stored value untouched. Public and Featured are always
// applied. Date is entered as dd/mm/yy (models.PostDateLayout).
type PostInput struct {
	Title      string
	Content    string
	Date       string
	CategoryID int64
	TagIDs     []int64
	Image      *media.Upload
	Public     bool
	Featured   bool
}

// Page is one page of a listing.
type Page[T any] struct {
	Items   []T `json:"items"`
	Page    int `json:"page"`
	PerPage int `json:"per_page"`
	Total   int `json:"total"`
}

// Posts is the post aggregate service.
type Posts struct {
	tx    TxRunner
	files *media.Store
}

func findPost(ctx context.Context, r Repositories, id int64) (*models.Post, error) {
	p, err := r.Posts.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("post %d: %w", id, ErrNotFound)
	}
	if !p.Status.Valid() || !p.Featured.Valid() {
		return nil, fmt.Errorf("%w: post %d has status %q, featured %q", ErrInvalidState, id, p.Status, p.Featured)
	}
	return p, nil
}

// loadRelations fills Category and Tags on each post. Categories are
// looked up once per distinct id.
func loadRelations(ctx context.Context, r Repositories, posts []models.Post) error {
	cats := make(map[int64]*models.Category)
	for i := range posts {
		p := &posts[i]
		if p.CategoryID != nil {
			c, ok := cats[*p.CategoryID]
			if !ok {
				var err error
				if c, err = r.Categories.FindByID(ctx, *p.CategoryID); err != nil {
					return err
				}
				cats[*p.CategoryID] = c
			}
			p.Category = c
		}
		tags, err := r.PostTags.ListForPost(ctx, p.ID)
		if err != nil {
			return err
		}
		p.Tags = tags
	}
	return nil
}

func reload(ctx context.Context, r Repositories, id int64) (*models.Post, error) {
	p, err := findPost(ctx, r, id)
	if err != nil {
		return nil, err
	}
	one := []models.Post{*p}
	if err := loadRelations(ctx, r, one); err != nil {
		return nil, err
	}
	return &one[0], nil
}

func checkTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", invalid("title", "Title is required.")
	}
	return title, nil
}

// parseDate reads an optional post date. Empty yields nil.
func parseDate(v string) (*time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil, nil
	}
	d, err := time.Parse(models.PostDateLayout, v)
	if err != nil {
		return nil, invalid("date", "Date must be in dd/mm/yy format.")
	}
	return &d, nil
}

// Create inserts a post authored by authorID (0 for no author) and applies
// its category, tags, image and flags in one transaction.
func (s *Posts) Create(ctx context.Context, authorID int64, in PostInput) (*models.Post, error) {
	title, err := checkTitle(in.Title)
	if err != nil {
		return nil, err
	}
	date, err := parseDate(in.Date)
	if err != nil {
		return nil, err
	}

	image, err := saveUpload(ctx, s.files, "image", in.Image)
	if err != nil {
		return nil, err
	}

	var created *models.Post
	err = inTxRetry(ctx, s.tx, func(r Repositories) error {
		sl, err := slug.Unique(ctx, title, "post", func(ctx context.Context, c string) (bool, error) {
			return r.Posts.SlugTaken(ctx, c, 0)
		})
		if err != nil {
			return err
		}

		p := &models.Post{
			Title:    title,
			Slug:     sl,
			Content:  in.Content,
			Date:     date,
			Status:   models.StatusFromFlag(in.Public),
			Featured: models.FeatureFromFlag(in.Featured),
		}
		if authorID != 0 {
			p.AuthorID = &authorID
		}
		if in.CategoryID != 0 {
			p.CategoryID = &in.CategoryID
		}
		if image != "" {
			p.Image = &image
		}

		row, err := r.Posts.Create(ctx, p)
		if err != nil {
			if in.CategoryID != 0 {
				return foreignKey(err, "category_id", unknownCategory)
			}
			return err
		}
		if len(in.TagIDs) > 0 {
			if err := r.PostTags.Sync(ctx, row.ID, in.TagIDs); err != nil {
				return foreignKey(err, "tags", unknownTag)
			}
		}
		created, err = reload(ctx, r, row.ID)
		return err
	})
	if err != nil {
		discard(ctx, s.files, image)
		return nil, err
	}

	slog.Info("post created", "post_id", created.ID, "slug", created.Slug)
	return created, nil
}

// Update re-applies the editable fields. The slug is re-derived only when
// the title changed. A new image replaces the old one, whose file is
// removed inside the same transaction.
func (s *Posts) Update(ctx context.Context, id int64, in PostInput) (*models.Post, error) {
	title, err := checkTitle(in.Title)
	if err != nil {
		return nil, err
	}
	date, err := parseDate(in.Date)
	if err != nil {
		return nil, err
	}

	image, err := saveUpload(ctx, s.files, "image", in.Image)
	if err != nil {
		return nil, err
	}

	var updated *models.Post
	err = inTxRetry(ctx, s.tx, func(r Repositories) error {
		p, err := findPost(ctx, r, id)
		if err != nil {
			return err
		}

		sl := p.Slug
		if title != p.Title {
			sl, err = slug.Unique(ctx, title, "post", func(ctx context.Context, c string) (bool, error) {
				return r.Posts.SlugTaken(ctx, c, id)
			})
			if err != nil {
				return err
			}
		}

		if err := r.Posts.UpdateContent(ctx, id, title, sl, in.Content); err != nil {
			return err
		}
		if date != nil {
			if err := r.Posts.SetDate(ctx, id, *date); err != nil {
				return err
			}
		}
		if in.CategoryID != 0 {
			if err := r.Posts.SetCategory(ctx, id, in.CategoryID); err != nil {
				return foreignKey(err, "category_id", unknownCategory)
			}
		}
		if len(in.TagIDs) > 0 {
			if err := r.PostTags.Sync(ctx, id, in.TagIDs); err != nil {
				return foreignKey(err, "tags", unknownTag)
			}
		}
		if err := r.Posts.SetStatus(ctx, id, models.StatusFromFlag(in.Public)); err != nil {
			return err
		}
		if err := r.Posts.SetFeatured(ctx, id, models.FeatureFromFlag(in.Featured)); err != nil {
			return err
		}
		if image != "" {
			if err := r.Posts.SetImage(ctx, id, &image); err != nil {
				return err
			}
			if err := removeFile(ctx, s.files, p.ImageName()); err != nil {
				return err
			}
		}

		updated, err = reload(ctx, r, id)
		return err
	})
	if err != nil {
		discard(ctx, s.files, image)
		return nil, err
	}
	return updated, nil
}

// SetImage replaces the post image. A nil upload is a no-op.
func (s *Posts) SetImage(ctx context.Context, id int64, u *media.Upload) error {
	if u == nil {
		return nil
	}

	image, err := saveUpload(ctx, s.files, "image", u)
	if err != nil {
		return err
	}

	err = inTx(ctx, s.tx, func(r Repositories) error {
		p, err := findPost(ctx, r, id)
		if err != nil {
			return err
		}
		if err := r.Posts.SetImage(ctx, id, &image); err != nil {
			return err
		}
		return removeFile(ctx, s.files, p.ImageName())
	})
	if err != nil {
		discard(ctx, s.files, image)
		return err
	}
	return nil
}

// SetCategory points the post at categoryID. Zero is a no-op; it never
// clears an existing category. Unknown ids fail validation on category_id.
func (s *Posts) SetCategory(ctx context.Context, id, categoryID int64) error {
	if categoryID == 0 {
		return nil
	}
	return inTx(ctx, s.tx, func(r Repositories) error {
		if _, err := findPost(ctx, r, id); err != nil {
			return err
		}
		return foreignKey(r.Posts.SetCategory(ctx, id, categoryID), "category_id", unknownCategory)
	})
}

// SetTags replaces the post's tag set. An empty set is a no-op.
func (s *Posts) SetTags(ctx context.Context, id int64, tagIDs []int64) error {
	if len(tagIDs) == 0 {
		return nil
	}
	return inTx(ctx, s.tx, func(r Repositories) error {
		if _, err := findPost(ctx, r, id); err != nil {
			return err
		}
		return foreignKey(r.PostTags.Sync(ctx, id, tagIDs), "tags", unknownTag)
	})
}

// ToggleStatus sets the post to public when on, draft otherwise.
func (s *Posts) ToggleStatus(ctx context.Context, id int64, on bool) error {
	return inTx(ctx, s.tx, func(r Repositories) error {
		if _, err := findPost(ctx, r, id); err != nil {
			return err
		}
		return r.Posts.SetStatus(ctx, id, models.StatusFromFlag(on))
	})
}

// ToggleFeatured sets the post to featured when on, standard otherwise.
func (s *Posts) ToggleFeatured(ctx context.Context, id int64, on bool) error {
	return inTx(ctx, s.tx, func(r Repositories) error {
		if _, err := findPost(ctx, r, id); err != nil {
			return err
		}
		return r.Posts.SetFeatured(ctx, id, models.FeatureFromFlag(on))
	})
}

// Remove detaches the tags, deletes the row and removes the image file.
// The file is removed last, before commit, so a storage failure rolls
// the deletion back and the row never points at a missing file.
func (s *Posts) Remove(ctx context.Context, id int64) error {
	err := inTx(ctx, s.tx, func(r Repositories) error {
		p, err := r.Posts.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if p == nil {
			return fmt.Errorf("post %d: %w", id, ErrNotFound)
		}
		if err := r.PostTags.DetachAll(ctx, id); err != nil {
			return err
		}
		if _, err := r.Posts.Delete(ctx, id); err != nil {
			return err
		}
		return removeFile(ctx, s.files, p.ImageName())
	})
	if err != nil {
		return err
	}
	slog.Info("post removed", "post_id", id)
	return nil
}

// Get returns a post with its category and tags.
func (s *Posts) Get(ctx context.Context, id int64) (*models.Post, error) {
	p, err := reload(ctx, s.tx.Repos(), id)
	return p, classify(err)
}

// List returns every post, newest first.
func (s *Posts) List(ctx context.Context) ([]models.Post, error) {
	return s.list(ctx, store.PostFilter{})
}

func (s *Posts) list(ctx context.Context, f store.PostFilter) ([]models.Post, error) {
	r := s.tx.Repos()
	posts, err := r.Posts.List(ctx, f)
	if err != nil {
		return nil, classify(err)
	}
	if err := loadRelations(ctx, r, posts); err != nil {
		return nil, classify(err)
	}
	return posts, nil
}

// Count returns the number of posts with status, or of all posts when
// status is empty.
func (s *Posts) Count(ctx context.Context, status models.PostStatus) (int, error) {
	n, err := s.tx.Repos().Posts.Count(ctx, status)
	return n, classify(err)
}

// ListPublished returns one page of public posts. Pages start at 1.
func (s *Posts) ListPublished(ctx context.Context, page, perPage int) (*Page[models.Post], error) {
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	perPage = min(perPage, MaxPerPage)
	page = min(max(page, 1), math.MaxInt/perPage)

	total, err := s.tx.Repos().Posts.Count(ctx, models.PostStatusPublic)
	if err != nil {
		return nil, classify(err)
	}
	items, err := s.list(ctx, store.PostFilter{
		Status: models.PostStatusPublic,
		Limit:  perPage,
		Offset: (page - 1) * perPage,
	})
	if err != nil {
		return nil, err
	}
	return &Page[models.Post]{Items: items, Page: page, PerPage: perPage, Total: total}, nil
}

// FindPublishedBySlug returns a public post and counts the view. Drafts
// are reported as not found.
func (s *Posts) FindPublishedBySlug(ctx context.Context, sl string) (*models.Post, error) {
	r := s.tx.Repos()
	p, err := r.Posts.FindBySlug(ctx, sl)
	if err != nil {
		return nil, classify(err)
	}
	if p == nil || !p.IsPublic() {
		return nil, fmt.Errorf("post %q: %w", sl, ErrNotFound)
	}
	if err := r.Posts.IncrementViews(ctx, p.ID); err != nil {
		return nil, classify(err)
	}
	p.Views++

	one := []models.Post{*p}
	if err := loadRelations(ctx, r, one); err != nil {
		return nil, classify(err)
	}
	return &one[0], nil
}

// ListByTag returns the public posts carrying the tag with the given slug.
func (s *Posts) ListByTag(ctx context.Context, tagSlug string) ([]models.Post, error) {
	t, err := s.tx.Repos().Tags.FindBySlug(ctx, tagSlug)
	if err != nil {
		return nil, classify(err)
	}
	if t == nil {
		return nil, fmt.Errorf("tag %q: %w", tagSlug, ErrNotFound)
	}
	return s.list(ctx, store.PostFilter{Status: models.PostStatusPublic, TagID: t.ID})
}

// ListByCategory returns the public posts in the category with the given slug.
func (s *Posts) ListByCategory(ctx context.Context, categorySlug string) ([]models.Post, error) {
	c, err := s.tx.Repos().Categories.FindBySlug(ctx, categorySlug)
	if err != nil {
		return nil, classify(err)
	}
	if c == nil {
		return nil, fmt.Errorf("category %q: %w", categorySlug, ErrNotFound)
	}
	return s.list(ctx, store.PostFilter{Status: models.PostStatusPublic, CategoryID: c.ID})
}

// Random returns up to n public posts in random order.
func (s *Posts) Random(ctx context.Context, n int) ([]models.Post, error) {
	if n < 1 {
		return nil, nil
	}
	r := s.tx.Repos()
	posts, err := r.Posts.Random(ctx, n)
	if err != nil {
		return nil, classify(err)
	}
	if err := loadRelations(ctx, r, posts); err != nil {
		return nil, classify(err)
	}
	return posts, nil
}

// ImageURL resolves the post image, falling back to the placeholder.
func (s *Posts) ImageURL(p *models.Post) string {
	return s.files.Resolve(p.ImageName(), models.NoImagePath)
}
