package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"blogpanel/internal/blog"
	"blogpanel/internal/media"
	"blogpanel/internal/models"
)

// maxFormMemory is how much of a multipart body is held in memory before
// spilling file parts to disk.
const maxFormMemory = 1 << 20

// writeJSON writes data as a JSON response with the given status.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Warn("encode response failed", "error", err)
	}
}

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// writeMessage writes a plain error message.
func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}

// writeInvalid reports a field that failed request validation.
func writeInvalid(w http.ResponseWriter, field, msg string) {
	writeJSON(w, http.StatusUnprocessableEntity, errorBody{Error: msg, Field: field})
}

// errorStatus maps the service error taxonomy onto HTTP status codes.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, blog.ErrValidation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, blog.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, blog.ErrStorage):
		return http.StatusBadGateway
	case errors.Is(err, blog.ErrInvalidState):
		return http.StatusBadRequest
	case errors.Is(err, blog.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, blog.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, blog.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// writeError answers with the status for err. Server-side failures are
// logged with their cause and reported to the client generically.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := errorStatus(err)

	var ve *blog.ValidationError
	switch {
	case errors.As(err, &ve):
		writeInvalid(w, ve.Field, ve.Message)
	case status >= http.StatusInternalServerError:
		slog.Error("request failed", "error", err, "method", r.Method, "path", r.URL.Path)
		writeMessage(w, status, http.StatusText(status))
	case status == http.StatusUnauthorized:
		writeMessage(w, status, "Invalid email or password.")
	case status == http.StatusForbidden:
		writeMessage(w, status, "Forbidden")
	case status == http.StatusNotFound:
		writeMessage(w, status, "Not Found")
	default:
		writeMessage(w, status, err.Error())
	}
}

// parseForm parses urlencoded and multipart bodies alike. The body is
// capped just above the largest accepted upload.
func parseForm(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, media.MaxUploadSize+maxFormMemory)
	err := r.ParseMultipartForm(maxFormMemory)
	if errors.Is(err, http.ErrNotMultipart) {
		return r.ParseForm()
	}
	return err
}

// formUpload returns the uploaded file in field, or nil when none was
// sent. The caller must call the returned close function.
func formUpload(r *http.Request, field string) (*media.Upload, func(), error) {
	noop := func() {}
	if r.MultipartForm == nil {
		return nil, noop, nil
	}
	file, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, noop, nil
	}
	if err != nil {
		return nil, noop, err
	}
	return &media.Upload{Filename: header.Filename, Body: file}, func() { closeFile(file) }, nil
}

func closeFile(f multipart.File) {
	if err := f.Close(); err != nil {
		slog.Warn("close upload failed", "error", err)
	}
}

// urlID parses the {id} route parameter.
func urlID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil && id > 0
}

// formID parses an optional positive id. Empty means absent (0).
func formID(v string) (int64, bool) {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0, true
	}
	id, err := strconv.ParseInt(v, 10, 64)
	return id, err == nil && id > 0
}

// formIDs collects ids from repeated values and comma-separated lists.
func formIDs(values []string) ([]int64, bool) {
	var ids []int64
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if strings.TrimSpace(part) == "" {
				continue
			}
			id, ok := formID(part)
			if !ok {
				return nil, false
			}
			ids = append(ids, id)
		}
	}
	return ids, true
}

// formFlag parses a two-value toggle field.
func formFlag(r *http.Request, field string) (bool, error) {
	return models.ParseFlag(r.FormValue(field))
}

// queryInt reads a positive integer query parameter, or returns def.
func queryInt(r *http.Request, key string, def int) int {
	n, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil || n < 1 {
		return def
	}
	return n
}

// toggleFunc is a service toggle such as Posts.ToggleStatus.
type toggleFunc func(ctx context.Context, id int64, on bool) error

// toggleInput parses the {id} parameter and the flag in field. On
// failure it writes the response and returns ok=false.
func toggleInput(w http.ResponseWriter, r *http.Request, field string) (id int64, on, ok bool) {
	id, ok = urlID(r)
	if !ok {
		writeMessage(w, http.StatusBadRequest, "Invalid ID")
		return 0, false, false
	}
	if err := parseForm(w, r); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid form data.")
		return 0, false, false
	}
	on, err := formFlag(r, field)
	if err != nil {
		writeError(w, r, err)
		return 0, false, false
	}
	return id, on, true
}
