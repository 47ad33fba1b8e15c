package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"slices"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"blogpanel/internal/blog"
	"blogpanel/internal/middleware"
	"blogpanel/internal/session"
)

// withURLParam attaches a chi route parameter to r.
func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// formRequest builds a urlencoded POST request.
func formRequest(target string, form url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

// decodeError reads an errorBody response.
func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var body errorBody
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return body
}

func TestErrorStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{blog.ErrValidation, http.StatusUnprocessableEntity},
		{&blog.ValidationError{Field: "title", Message: "x"}, http.StatusUnprocessableEntity},
		{fmt.Errorf("post 7: %w", blog.ErrNotFound), http.StatusNotFound},
		{fmt.Errorf("%w: s3 down", blog.ErrStorage), http.StatusBadGateway},
		{blog.ErrInvalidState, http.StatusBadRequest},
		{blog.ErrConflict, http.StatusConflict},
		{blog.ErrUnauthorized, http.StatusUnauthorized},
		{blog.ErrForbidden, http.StatusForbidden},
		{context.DeadlineExceeded, http.StatusServiceUnavailable},
		{fmt.Errorf("%w: conn reset", blog.ErrPersistence), http.StatusInternalServerError},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			if got := errorStatus(tt.err); got != tt.want {
				t.Errorf("errorStatus(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestWriteErrorValidationNamesField(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/admin/posts", nil)

	writeError(rec, req, &blog.ValidationError{Field: "image", Message: "File is too large."})

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status: got %d, want 422", rec.Code)
	}
	body := decodeError(t, rec)
	if body.Field != "image" || body.Error != "File is too large." {
		t.Errorf("body: got %+v", body)
	}
}

func TestWriteErrorHidesServerCause(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin/posts", nil)

	writeError(rec, req, fmt.Errorf("%w: password authentication failed", blog.ErrPersistence))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status: got %d, want 500", rec.Code)
	}
	if body := decodeError(t, rec); strings.Contains(body.Error, "password") {
		t.Errorf("cause leaked to client: %q", body.Error)
	}
}

func TestFormIDs(t *testing.T) {
	tests := []struct {
		name   string
		values []string
		want   []int64
		ok     bool
	}{
		{"absent", nil, nil, true},
		{"repeated", []string{"1", "2"}, []int64{1, 2}, true},
		{"comma list", []string{"3, 4,5"}, []int64{3, 4, 5}, true},
		{"blank parts skipped", []string{"1,,2", ""}, []int64{1, 2}, true},
		{"not a number", []string{"1,x"}, nil, false},
		{"zero", []string{"0"}, nil, false},
		{"negative", []string{"-2"}, nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := formIDs(tt.values)
			if ok != tt.ok {
				t.Fatalf("ok: got %v, want %v", ok, tt.ok)
			}
			if !slices.Equal(got, tt.want) {
				t.Errorf("ids: got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFormID(t *testing.T) {
	if id, ok := formID(""); !ok || id != 0 {
		t.Errorf("empty: got (%d, %v), want (0, true)", id, ok)
	}
	if id, ok := formID(" 42 "); !ok || id != 42 {
		t.Errorf("42: got (%d, %v)", id, ok)
	}
	if _, ok := formID("abc"); ok {
		t.Error("abc should be rejected")
	}
}

func TestQueryInt(t *testing.T) {
	tests := []struct {
		query string
		want  int
	}{
		{"", 10},
		{"page=3", 3},
		{"page=0", 10},
		{"page=-1", 10},
		{"page=two", 10},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/api/posts?"+tt.query, nil)
		if got := queryInt(req, "page", 10); got != tt.want {
			t.Errorf("queryInt(%q) = %d, want %d", tt.query, got, tt.want)
		}
	}
}

func TestParseFormURLEncoded(t *testing.T) {
	req := formRequest("/admin/categories", url.Values{"title": {"News"}})
	rec := httptest.NewRecorder()

	if err := parseForm(rec, req); err != nil {
		t.Fatalf("parseForm: %v", err)
	}
	if got := req.FormValue("title"); got != "News" {
		t.Errorf("title: got %q", got)
	}

	upload, done, err := formUpload(req, "image")
	defer done()
	if err != nil || upload != nil {
		t.Errorf("formUpload without multipart: got (%v, %v), want (nil, nil)", upload, err)
	}
}

func TestToggleInputRejectsUnknownFlag(t *testing.T) {
	req := formRequest("/admin/posts/1/status", url.Values{"status": {"maybe"}})
	req = withURLParam(req, "id", "1")
	rec := httptest.NewRecorder()

	if _, _, ok := toggleInput(rec, req, "status"); ok {
		t.Fatal("toggleInput accepted an unknown flag value")
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want 400", rec.Code)
	}
}

func TestToggleInputRejectsBadID(t *testing.T) {
	req := formRequest("/admin/posts/x/status", url.Values{"status": {"1"}})
	req = withURLParam(req, "id", "x")
	rec := httptest.NewRecorder()

	if _, _, ok := toggleInput(rec, req, "status"); ok {
		t.Fatal("toggleInput accepted a bad id")
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want 400", rec.Code)
	}
}

// Requests rejected before reaching the service need no database.
func offlineAdmin() *Admin {
	return NewAdmin(blog.New(nil, nil))
}

func TestPostCreateRequiresTitle(t *testing.T) {
	rec := httptest.NewRecorder()
	offlineAdmin().PostCreate(rec, formRequest("/admin/posts", url.Values{"title": {"   "}}))

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status: got %d, want 422", rec.Code)
	}
	if body := decodeError(t, rec); body.Field != "title" {
		t.Errorf("field: got %q, want title", body.Field)
	}
}

func TestPostCreateRejectsBadTags(t *testing.T) {
	rec := httptest.NewRecorder()
	offlineAdmin().PostCreate(rec, formRequest("/admin/posts", url.Values{
		"title": {"Tagged"},
		"tags":  {"1,two"},
	}))

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status: got %d, want 422", rec.Code)
	}
	if body := decodeError(t, rec); body.Field != "tags" {
		t.Errorf("field: got %q, want tags", body.Field)
	}
}

func TestPostCreateRejectsBadDate(t *testing.T) {
	for _, date := range []string{"2024-03-05", "31/02/24", "5/3/24"} {
		rec := httptest.NewRecorder()
		offlineAdmin().PostCreate(rec, formRequest("/admin/posts", url.Values{
			"title": {"Dated"},
			"date":  {date},
		}))

		if rec.Code != http.StatusUnprocessableEntity {
			t.Fatalf("%s: status: got %d, want 422", date, rec.Code)
		}
		if body := decodeError(t, rec); body.Field != "date" {
			t.Errorf("%s: field: got %q, want date", date, body.Field)
		}
	}
}

func TestAdminCannotLockThemselvesOut(t *testing.T) {
	self := &session.Data{UserID: 7, Email: "admin@blogpanel.local", IsAdmin: true}

	tests := []struct {
		name    string
		handler func(*Admin) http.HandlerFunc
		form    url.Values
	}{
		{"ban self", func(a *Admin) http.HandlerFunc { return a.UserBan }, url.Values{"banned": {"1"}}},
		{"revoke own admin", func(a *Admin) http.HandlerFunc { return a.UserAdmin }, url.Values{"is_admin": {"0"}}},
		{"delete self", func(a *Admin) http.HandlerFunc { return a.UserDelete }, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := formRequest("/admin/users/7", tt.form)
			req = withURLParam(req, "id", "7")
			req = req.WithContext(middleware.WithSession(req.Context(), self))
			rec := httptest.NewRecorder()

			tt.handler(offlineAdmin())(rec, req)

			if rec.Code != http.StatusConflict {
				t.Errorf("status: got %d, want 409", rec.Code)
			}
		})
	}
}

func TestUserCreateValidation(t *testing.T) {
	tests := []struct {
		name  string
		form  url.Values
		field string
	}{
		{"missing name", url.Values{"email": {"a@b.c"}, "password": {"secret1"}}, "name"},
		{"bad email", url.Values{"name": {"A"}, "email": {"nope"}, "password": {"secret1"}}, "email"},
		{"missing password", url.Values{"name": {"A"}, "email": {"a@b.c"}}, "password"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			offlineAdmin().UserCreate(rec, formRequest("/admin/users", tt.form))

			if rec.Code != http.StatusUnprocessableEntity {
				t.Fatalf("status: got %d, want 422", rec.Code)
			}
			if body := decodeError(t, rec); body.Field != tt.field {
				t.Errorf("field: got %q, want %q", body.Field, tt.field)
			}
		})
	}
}

func TestMeWithoutSession(t *testing.T) {
	rec := httptest.NewRecorder()
	NewAuth(nil, nil).Me(rec, httptest.NewRequest(http.MethodGet, "/admin/me", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status: got %d, want 401", rec.Code)
	}
}

func TestPublicCommentValidation(t *testing.T) {
	p := NewPublic(blog.New(nil, nil))

	rec := httptest.NewRecorder()
	p.Comment(rec, formRequest("/api/comments", url.Values{"post_id": {"1"}, "text": {"  "}}))

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status: got %d, want 422", rec.Code)
	}
	if body := decodeError(t, rec); body.Field != "text" {
		t.Errorf("field: got %q, want text", body.Field)
	}

	rec = httptest.NewRecorder()
	p.Comment(rec, formRequest("/api/comments", url.Values{"text": {"Hello"}}))
	if body := decodeError(t, rec); body.Field != "post_id" {
		t.Errorf("missing post: field %q, want post_id", body.Field)
	}
}
