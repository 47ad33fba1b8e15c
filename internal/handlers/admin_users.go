// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"

	"blogpanel/internal/blog"
	"blogpanel/internal/middleware"
)

// userInput parses and validates a user form. The returned func releases
// the uploaded avatar, if any.
func userInput(w http.ResponseWriter, r *http.Request, requirePassword bool) (in blog.UserInput, done func(), ok bool) {
	done = func() {}
	if err := parseForm(w, r); err != nil {
		writeFormError(w, err)
		return in, done, false
	}

	in.Name = r.FormValue("name")
	in.Email = r.FormValue("email")
	in.Password = r.FormValue("password")
	if field, msg := validateUser(in.Name, in.Email, in.Password, requirePassword); msg != "" {
		writeInvalid(w, field, msg)
		return in, done, false
	}

	var err error
	if in.IsAdmin, err = formFlag(r, "is_admin"); err != nil {
		writeError(w, r, err)
		return in, done, false
	}
	if in.Avatar, done, err = formUpload(r, "avatar"); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid avatar upload.")
		return in, done, false
	}
	return in, done, true
}

// isSelf reports whether id is the signed-in user.
func isSelf(r *http.Request, id int64) bool {
	sess := middleware.SessionFromCtx(r.Context())
	return sess != nil && sess.UserID == id
}

// UsersList returns all users.
func (a *Admin) UsersList(w http.ResponseWriter, r *http.Request) {
	users, err := a.svc.Users.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	views := make([]userView, len(users))
	for i := range users {
		views[i] = newUserView(a.svc.Users, &users[i])
	}
	writeJSON(w, http.StatusOK, views)
}

// UserGet returns one user.
func (a *Admin) UserGet(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r)
	if !ok {
		writeMessage(w, http.StatusBadRequest, "Invalid ID")
		return
	}
	a.writeUser(w, r, http.StatusOK, id)
}

// UserCreate adds a user; the password is required.
func (a *Admin) UserCreate(w http.ResponseWriter, r *http.Request) {
	in, done, ok := userInput(w, r, true)
	defer done()
	if !ok {
		return
	}
	u, err := a.svc.Users.Create(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, newUserView(a.svc.Users, u))
}

// UserUpdate edits a user. An empty password or absent avatar keeps the
// current one. The admin flag is changed through UserAdmin only.
func (a *Admin) UserUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r)
	if !ok {
		writeMessage(w, http.StatusBadRequest, "Invalid ID")
		return
	}
	in, done, ok := userInput(w, r, false)
	defer done()
	if !ok {
		return
	}
	u, err := a.svc.Users.Update(r.Context(), id, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newUserView(a.svc.Users, u))
}

// UserAvatar replaces the avatar from the "avatar" upload.
func (a *Admin) UserAvatar(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r)
	if !ok {
		writeMessage(w, http.StatusBadRequest, "Invalid ID")
		return
	}
	if err := parseForm(w, r); err != nil {
		writeFormError(w, err)
		return
	}
	upload, done, err := formUpload(r, "avatar")
	defer done()
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid avatar upload.")
		return
	}
	if err := a.svc.Users.SetAvatar(r.Context(), id, upload); err != nil {
		writeError(w, r, err)
		return
	}
	a.writeUser(w, r, http.StatusOK, id)
}

// UserAdmin grants or revokes the admin role from "is_admin".
func (a *Admin) UserAdmin(w http.ResponseWriter, r *http.Request) {
	a.toggleUser(w, r, "is_admin", a.svc.Users.ToggleAdmin, false)
}

// UserBan bans or unbans the user from "banned".
func (a *Admin) UserBan(w http.ResponseWriter, r *http.Request) {
	a.toggleUser(w, r, "banned", a.svc.Users.ToggleBan, true)
}

// toggleUser applies a user toggle. Admins may not lock themselves out:
// revoking their own role or banning themselves is refused.
func (a *Admin) toggleUser(w http.ResponseWriter, r *http.Request, field string, toggle toggleFunc, lockoutWhenOn bool) {
	id, on, ok := toggleInput(w, r, field)
	if !ok {
		return
	}
	if isSelf(r, id) && on == lockoutWhenOn {
		writeMessage(w, http.StatusConflict, "You cannot lock yourself out.")
		return
	}
	if err := toggle(r.Context(), id, on); err != nil {
		writeError(w, r, err)
		return
	}
	a.writeUser(w, r, http.StatusOK, id)
}

// UserDelete removes a user and their avatar. Their posts and comments
// stay, without an author.
func (a *Admin) UserDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r)
	if !ok {
		writeMessage(w, http.StatusBadRequest, "Invalid ID")
		return
	}
	if isSelf(r, id) {
		writeMessage(w, http.StatusConflict, "You cannot delete your own account.")
		return
	}
	if err := a.svc.Users.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *Admin) writeUser(w http.ResponseWriter, r *http.Request, status int, id int64) {
	u, err := a.svc.Users.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, status, newUserView(a.svc.Users, u))
}
