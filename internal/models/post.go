// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"strings"
	"time"
)

// PostStatus is the publishing state of a post.
type PostStatus string

const (
	PostStatusDraft  PostStatus = "draft"
	PostStatusPublic PostStatus = "public"
)

// Valid reports whether s is one of the two known statuses.
func (s PostStatus) Valid() bool {
	return s == PostStatusDraft || s == PostStatusPublic
}

// StatusFromFlag maps a toggle to a status: off is draft, on is public.
func StatusFromFlag(on bool) PostStatus {
	if on {
		return PostStatusPublic
	}
	return PostStatusDraft
}

// Feature marks whether a post is promoted on the front page.
type Feature string

const (
	FeatureStandard Feature = "standard"
	FeatureFeatured Feature = "featured"
)

// Valid reports whether f is one of the two known feature values.
func (f Feature) Valid() bool {
	return f == FeatureStandard || f == FeatureFeatured
}

// FeatureFromFlag maps a toggle to a feature value: off is standard, on is featured.
func FeatureFromFlag(on bool) Feature {
	if on {
		return FeatureFeatured
	}
	return FeatureStandard
}

// Placeholder paths used when a post or user has no uploaded file.
const (
	NoImagePath  = "/img/no-image.png"
	NoAvatarPath = "/img/no-user-image.png"
)

// PostDateLayout is how post dates are entered and displayed (dd/mm/yy).
const PostDateLayout = "02/01/06"

// Labels shown when a post has no category or no tags.
const (
	NoCategoryLabel = "No category"
	NoTagsLabel     = "No tags"
)

// Post is a blog article. CategoryID and AuthorID are weak references:
// they may point at rows that no longer exist and become NULL when the
// referenced category or user is deleted.
type Post struct {
	ID         int64      `json:"id"`
	Title      string     `json:"title"`
	Slug       string     `json:"slug"`
	Content    string     `json:"content"`
	Date       *time.Time `json:"-"`
	CategoryID *int64     `json:"category_id,omitempty"`
	AuthorID   *int64     `json:"author_id,omitempty"`
	Image      *string    `json:"image,omitempty"`
	Status     PostStatus `json:"status"`
	Featured   Feature    `json:"featured"`
	Views      int64      `json:"views"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`

	// Virtual fields populated by the service layer.
	Category *Category `json:"category,omitempty"`
	Tags     []Tag     `json:"tags,omitempty"`
}

// IsPublic returns true if the post is visible on the public site.
func (p *Post) IsPublic() bool {
	return p.Status == PostStatusPublic
}

// IsFeatured returns true if the post is promoted.
func (p *Post) IsFeatured() bool {
	return p.Featured == FeatureFeatured
}

// HasImage returns true if an uploaded image is attached.
func (p *Post) HasImage() bool {
	return p.Image != nil && *p.Image != ""
}

// ImageName returns the stored filename, or "" when there is none.
func (p *Post) ImageName() string {
	if !p.HasImage() {
		return ""
	}
	return *p.Image
}

// DateLabel formats the post date with PostDateLayout, or "" when unset.
func (p *Post) DateLabel() string {
	if p.Date == nil {
		return ""
	}
	return p.Date.Format(PostDateLayout)
}

// CategoryTitle returns the loaded category's title or a fixed label.
func (p *Post) CategoryTitle() string {
	if p.Category == nil {
		return NoCategoryLabel
	}
	return p.Category.Title
}

// TagsTitles joins the loaded tag titles for display.
func (p *Post) TagsTitles() string {
	if len(p.Tags) == 0 {
		return NoTagsLabel
	}
	titles := make([]string, len(p.Tags))
	for i, t := range p.Tags {
		titles[i] = t.Title
	}
	return strings.Join(titles, ", ")
}
