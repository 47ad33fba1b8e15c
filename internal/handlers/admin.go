// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers contains the HTTP handlers of the blog panel. Admin
// handlers manage content behind a session; Public handlers serve the
// read-only site API. All responses are JSON.
package handlers

import (
	"net/http"
	"strings"

	"blogpanel/internal/blog"
	"blogpanel/internal/models"
)

// Admin groups the admin panel handlers.
type Admin struct {
	svc *blog.Service
}

// NewAdmin creates the admin handler group.
func NewAdmin(svc *blog.Service) *Admin {
	return &Admin{svc: svc}
}

// postView is a post as the API returns it, with resolved display fields.
type postView struct {
	*models.Post
	ImageURL      string `json:"image_url"`
	CategoryTitle string `json:"category_title"`
	TagsTitles    string `json:"tags_titles"`
	Date          string `json:"date,omitempty"`
}

func newPostView(posts *blog.Posts, p *models.Post) postView {
	return postView{
		Post:          p,
		ImageURL:      posts.ImageURL(p),
		CategoryTitle: p.CategoryTitle(),
		TagsTitles:    p.TagsTitles(),
		Date:          p.DateLabel(),
	}
}

func newPostViews(posts *blog.Posts, items []models.Post) []postView {
	views := make([]postView, len(items))
	for i := range items {
		views[i] = newPostView(posts, &items[i])
	}
	return views
}

// userView is a user with the resolved avatar URL.
type userView struct {
	*models.User
	AvatarURL string `json:"avatar_url"`
}

func newUserView(users *blog.Users, u *models.User) userView {
	return userView{User: u, AvatarURL: users.AvatarURL(u)}
}

// Dashboard returns content counts for the panel's landing page.
func (a *Admin) Dashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	total, err := a.svc.Posts.Count(ctx, "")
	if err != nil {
		writeError(w, r, err)
		return
	}
	public, err := a.svc.Posts.Count(ctx, models.PostStatusPublic)
	if err != nil {
		writeError(w, r, err)
		return
	}
	categories, err := a.svc.Categories.List(ctx)
	if err != nil {
		writeError(w, r, err)
		return
	}
	tags, err := a.svc.Tags.List(ctx)
	if err != nil {
		writeError(w, r, err)
		return
	}
	comments, err := a.svc.Comments.List(ctx)
	if err != nil {
		writeError(w, r, err)
		return
	}
	pending := 0
	for _, c := range comments {
		if c.Status == models.CommentStatusInactive {
			pending++
		}
	}

	writeJSON(w, http.StatusOK, map[string]int{
		"posts":            total,
		"public_posts":     public,
		"categories":       len(categories),
		"tags":             len(tags),
		"comments":         len(comments),
		"pending_comments": pending,
	})
}

// --- Categories ---

// CategoriesList returns all categories with post counts.
func (a *Admin) CategoriesList(w http.ResponseWriter, r *http.Request) {
	items, err := a.svc.Categories.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(items))
}

// CategoryGet returns one category.
func (a *Admin) CategoryGet(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r)
	if !ok {
		writeMessage(w, http.StatusBadRequest, "Invalid ID")
		return
	}
	c, err := a.svc.Categories.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// CategoryCreate adds a category from the "title" field.
func (a *Admin) CategoryCreate(w http.ResponseWriter, r *http.Request) {
	title, ok := titleField(w, r)
	if !ok {
		return
	}
	c, err := a.svc.Categories.Create(r.Context(), title)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

// CategoryUpdate renames a category.
func (a *Admin) CategoryUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r)
	if !ok {
		writeMessage(w, http.StatusBadRequest, "Invalid ID")
		return
	}
	title, ok := titleField(w, r)
	if !ok {
		return
	}
	c, err := a.svc.Categories.Update(r.Context(), id, title)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// CategoryDelete removes a category; its posts become uncategorised.
func (a *Admin) CategoryDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r)
	if !ok {
		writeMessage(w, http.StatusBadRequest, "Invalid ID")
		return
	}
	if err := a.svc.Categories.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Tags ---

// TagsList returns all tags.
func (a *Admin) TagsList(w http.ResponseWriter, r *http.Request) {
	items, err := a.svc.Tags.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(items))
}

// TagGet returns one tag.
func (a *Admin) TagGet(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r)
	if !ok {
		writeMessage(w, http.StatusBadRequest, "Invalid ID")
		return
	}
	t, err := a.svc.Tags.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// TagCreate adds a tag from the "title" field.
func (a *Admin) TagCreate(w http.ResponseWriter, r *http.Request) {
	title, ok := titleField(w, r)
	if !ok {
		return
	}
	t, err := a.svc.Tags.Create(r.Context(), title)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

// TagUpdate renames a tag.
func (a *Admin) TagUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r)
	if !ok {
		writeMessage(w, http.StatusBadRequest, "Invalid ID")
		return
	}
	title, ok := titleField(w, r)
	if !ok {
		return
	}
	t, err := a.svc.Tags.Update(r.Context(), id, title)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// TagDelete removes a tag and detaches it from every post.
func (a *Admin) TagDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r)
	if !ok {
		writeMessage(w, http.StatusBadRequest, "Invalid ID")
		return
	}
	if err := a.svc.Tags.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// titleField parses the form and validates its "title" field, writing
// the error response itself when it fails.
func titleField(w http.ResponseWriter, r *http.Request) (string, bool) {
	if err := parseForm(w, r); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid form data.")
		return "", false
	}
	title := r.FormValue("title")
	if msg := validateTitle(title); msg != "" {
		writeInvalid(w, "title", msg)
		return "", false
	}
	return strings.TrimSpace(title), true
}
