// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"blogpanel/internal/blog"
	"blogpanel/internal/middleware"
	"blogpanel/internal/models"
)

// maxRandom caps the n parameter of the random posts endpoint.
const maxRandom = 20

// Public groups the handlers of the read-only site API. Only public posts
// are visible; drafts answer 404.
type Public struct {
	svc *blog.Service
}

// NewPublic creates the public handler group.
func NewPublic(svc *blog.Service) *Public {
	return &Public{svc: svc}
}

// postPage is one page of public posts.
type postPage struct {
	Items   []postView `json:"items"`
	Page    int        `json:"page"`
	PerPage int        `json:"per_page"`
	Total   int        `json:"total"`
}

// postDetail is a public post with its approved comments.
type postDetail struct {
	postView
	Comments []models.Comment `json:"comments"`
}

// Posts returns a page of public posts, newest first.
func (p *Public) Posts(w http.ResponseWriter, r *http.Request) {
	page, err := p.svc.Posts.ListPublished(r.Context(),
		queryInt(r, "page", 1), queryInt(r, "per_page", blog.DefaultPerPage))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, postPage{
		Items:   newPostViews(p.svc.Posts, page.Items),
		Page:    page.Page,
		PerPage: page.PerPage,
		Total:   page.Total,
	})
}

// Random returns up to n random public posts.
func (p *Public) Random(w http.ResponseWriter, r *http.Request) {
	n := min(queryInt(r, "n", 3), maxRandom)
	posts, err := p.svc.Posts.Random(r.Context(), n)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newPostViews(p.svc.Posts, posts))
}

// Post returns the public post with the given slug and counts the view.
func (p *Public) Post(w http.ResponseWriter, r *http.Request) {
	post, err := p.svc.Posts.FindPublishedBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	comments, err := p.svc.Comments.ListForPost(r.Context(), post.ID, true)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, postDetail{
		postView: newPostView(p.svc.Posts, post),
		Comments: nonNil(comments),
	})
}

// PostsByTag returns the public posts carrying a tag.
func (p *Public) PostsByTag(w http.ResponseWriter, r *http.Request) {
	posts, err := p.svc.Posts.ListByTag(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newPostViews(p.svc.Posts, posts))
}

// PostsByCategory returns the public posts in a category.
func (p *Public) PostsByCategory(w http.ResponseWriter, r *http.Request) {
	posts, err := p.svc.Posts.ListByCategory(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newPostViews(p.svc.Posts, posts))
}

// Categories returns all categories.
func (p *Public) Categories(w http.ResponseWriter, r *http.Request) {
	items, err := p.svc.Categories.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(items))
}

// Tags returns all tags.
func (p *Public) Tags(w http.ResponseWriter, r *http.Request) {
	items, err := p.svc.Tags.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(items))
}

// Comment adds a comment to the public post named by "post_id". It stays hidden until a
// moderator approves it. Signed-in readers are recorded as the author.
func (p *Public) Comment(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(w, r); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid form data.")
		return
	}
	id, ok := formID(r.FormValue("post_id"))
	if !ok || id == 0 {
		writeInvalid(w, "post_id", "Post is required.")
		return
	}
	text := r.FormValue("text")
	if msg := validateComment(text); msg != "" {
		writeInvalid(w, "text", msg)
		return
	}

	var userID int64
	if sess := middleware.SessionFromCtx(r.Context()); sess != nil {
		userID = sess.UserID
	}
	c, err := p.svc.Comments.Create(r.Context(), id, userID, text)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

// Subscribe signs an email address up for the newsletter.
func (p *Public) Subscribe(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(w, r); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid form data.")
		return
	}
	sub, err := p.svc.Subscriptions.Add(r.Context(), r.FormValue("email"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, sub)
}
