package handlers

import (
	"errors"
	"net/http"

	"blogpanel/internal/blog"
	"blogpanel/internal/middleware"
)

// postInput parses and validates a post form. On failure it writes the
// response and returns ok=false. The returned close func releases the
// uploaded image, if any.
func postInput(w http.ResponseWriter, r *http.Request) (in blog.PostInput, done func(), ok bool) {
	done = func() {}
	if err := parseForm(w, r); err != nil {
		writeFormError(w, err)
		return in, done, false
	}

	in.Title = r.FormValue("title")
	in.Content = r.FormValue("content")
	in.Date = r.FormValue("date")
	if msg := validatePost(in.Title, in.Content); msg != "" {
		writeInvalid(w, "title", msg)
		return in, done, false
	}

	var valid bool
	if in.CategoryID, valid = formID(r.FormValue("category_id")); !valid {
		writeInvalid(w, "category_id", "Category is invalid.")
		return in, done, false
	}
	if in.TagIDs, valid = formIDs(r.Form["tags"]); !valid {
		writeInvalid(w, "tags", "Tags are invalid.")
		return in, done, false
	}

	var err error
	if in.Public, err = formFlag(r, "status"); err != nil {
		writeError(w, r, err)
		return in, done, false
	}
	if in.Featured, err = formFlag(r, "is_featured"); err != nil {
		writeError(w, r, err)
		return in, done, false
	}

	if in.Image, done, err = formUpload(r, "image"); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid image upload.")
		return in, done, false
	}
	return in, done, true
}

// writeFormError answers a body that could not be parsed.
func writeFormError(w http.ResponseWriter, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeMessage(w, http.StatusRequestEntityTooLarge, "Request is too large.")
		return
	}
	writeMessage(w, http.StatusBadRequest, "Invalid form data.")
}

// PostsList returns every post, newest first.
func (a *Admin) PostsList(w http.ResponseWriter, r *http.Request) {
	posts, err := a.svc.Posts.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newPostViews(a.svc.Posts, posts))
}

// PostGet returns one post with its category and tags.
func (a *Admin) PostGet(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r)
	if !ok {
		writeMessage(w, http.StatusBadRequest, "Invalid ID")
		return
	}
	a.writePost(w, r, http.StatusOK, id)
}

// PostCreate creates a post authored by the signed-in user.
func (a *Admin) PostCreate(w http.ResponseWriter, r *http.Request) {
	in, done, ok := postInput(w, r)
	defer done()
	if !ok {
		return
	}

	var authorID int64
	if sess := middleware.SessionFromCtx(r.Context()); sess != nil {
		authorID = sess.UserID
	}

	p, err := a.svc.Posts.Create(r.Context(), authorID, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, newPostView(a.svc.Posts, p))
}

// PostUpdate re-applies the post form. Absent category, tags and image
// leave the stored values untouched.
func (a *Admin) PostUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r)
	if !ok {
		writeMessage(w, http.StatusBadRequest, "Invalid ID")
		return
	}
	in, done, ok := postInput(w, r)
	defer done()
	if !ok {
		return
	}

	p, err := a.svc.Posts.Update(r.Context(), id, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newPostView(a.svc.Posts, p))
}

// PostDelete removes a post, its tag associations and its image.
func (a *Admin) PostDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r)
	if !ok {
		writeMessage(w, http.StatusBadRequest, "Invalid ID")
		return
	}
	if err := a.svc.Posts.Remove(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// PostImage replaces the post image from the "image" upload.
func (a *Admin) PostImage(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r)
	if !ok {
		writeMessage(w, http.StatusBadRequest, "Invalid ID")
		return
	}
	if err := parseForm(w, r); err != nil {
		writeFormError(w, err)
		return
	}
	upload, done, err := formUpload(r, "image")
	defer done()
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid image upload.")
		return
	}

	if err := a.svc.Posts.SetImage(r.Context(), id, upload); err != nil {
		writeError(w, r, err)
		return
	}
	a.writePost(w, r, http.StatusOK, id)
}

// PostCategory points the post at "category_id". An empty value is a no-op.
func (a *Admin) PostCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r)
	if !ok {
		writeMessage(w, http.StatusBadRequest, "Invalid ID")
		return
	}
	if err := parseForm(w, r); err != nil {
		writeFormError(w, err)
		return
	}
	categoryID, ok := formID(r.FormValue("category_id"))
	if !ok {
		writeInvalid(w, "category_id", "Category is invalid.")
		return
	}

	if err := a.svc.Posts.SetCategory(r.Context(), id, categoryID); err != nil {
		writeError(w, r, err)
		return
	}
	a.writePost(w, r, http.StatusOK, id)
}

// PostTags replaces the tag set from "tags". An empty set is a no-op.
func (a *Admin) PostTags(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r)
	if !ok {
		writeMessage(w, http.StatusBadRequest, "Invalid ID")
		return
	}
	if err := parseForm(w, r); err != nil {
		writeFormError(w, err)
		return
	}
	tagIDs, ok := formIDs(r.Form["tags"])
	if !ok {
		writeInvalid(w, "tags", "Tags are invalid.")
		return
	}

	if err := a.svc.Posts.SetTags(r.Context(), id, tagIDs); err != nil {
		writeError(w, r, err)
		return
	}
	a.writePost(w, r, http.StatusOK, id)
}

// PostStatus publishes the post when "status" is truthy and makes it a
// draft otherwise.
func (a *Admin) PostStatus(w http.ResponseWriter, r *http.Request) {
	a.togglePost(w, r, "status", a.svc.Posts.ToggleStatus)
}

// PostFeatured features the post when "is_featured" is truthy.
func (a *Admin) PostFeatured(w http.ResponseWriter, r *http.Request) {
	a.togglePost(w, r, "is_featured", a.svc.Posts.ToggleFeatured)
}

func (a *Admin) togglePost(w http.ResponseWriter, r *http.Request, field string, toggle toggleFunc) {
	id, on, ok := toggleInput(w, r, field)
	if !ok {
		return
	}
	if err := toggle(r.Context(), id, on); err != nil {
		writeError(w, r, err)
		return
	}
	a.writePost(w, r, http.StatusOK, id)
}

func (a *Admin) writePost(w http.ResponseWriter, r *http.Request, status int, id int64) {
	p, err := a.svc.Posts.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, status, newPostView(a.svc.Posts, p))
}

// CommentsForPost lists every comment on a post, moderated or not.
func (a *Admin) CommentsForPost(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r)
	if !ok {
		writeMessage(w, http.StatusBadRequest, "Invalid ID")
		return
	}
	items, err := a.svc.Comments.ListForPost(r.Context(), id, false)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(items))
}

// nonNil makes empty lists encode as [] instead of null.
func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
