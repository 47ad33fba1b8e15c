package handlers

import "net/http"

// CommentsList returns every comment for moderation, newest first.
func (a *Admin) CommentsList(w http.ResponseWriter, r *http.Request) {
	items, err := a.svc.Comments.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(items))
}

// CommentToggle approves an inactive comment or hides an active one.
func (a *Admin) CommentToggle(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r)
	if !ok {
		writeMessage(w, http.StatusBadRequest, "Invalid ID")
		return
	}
	c, err := a.svc.Comments.Toggle(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// CommentDelete removes a comment.
func (a *Admin) CommentDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r)
	if !ok {
		writeMessage(w, http.StatusBadRequest, "Invalid ID")
		return
	}
	if err := a.svc.Comments.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SubscriptionsList returns all newsletter subscriptions.
func (a *Admin) SubscriptionsList(w http.ResponseWriter, r *http.Request) {
	items, err := a.svc.Subscriptions.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(items))
}

// SubscriptionDelete removes a subscription.
func (a *Admin) SubscriptionDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r)
	if !ok {
		writeMessage(w, http.StatusBadRequest, "Invalid ID")
		return
	}
	if err := a.svc.Subscriptions.Remove(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
