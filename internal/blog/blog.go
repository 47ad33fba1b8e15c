// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package blog implements the panel's aggregates: posts with their image,
// category and tag set, plus categories, tags, users, comments and
// subscriptions. Every mutating call runs in one transaction; uploaded
// files are written before the transaction and removed again if it fails.
package blog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"blogpanel/internal/media"
	"blogpanel/internal/models"
	"blogpanel/internal/slug"
	"blogpanel/internal/store"
)

// Error taxonomy. Callers match with errors.Is.
var (
	ErrValidation   = errors.New("validation failed")
	ErrNotFound     = errors.New("not found")
	ErrStorage      = errors.New("file storage failed")
	ErrInvalidState = models.ErrInvalidState
	ErrPersistence  = errors.New("persistence failed")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("invalid credentials")
	ErrForbidden    = errors.New("forbidden")
)

// ValidationError names the offending field. It matches ErrValidation.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

func invalid(field, msg string) error {
	return &ValidationError{Field: field, Message: msg}
}

// maxTxAttempts bounds retries of a transaction that lost a slug race.
const maxTxAttempts = 3

// Service bundles every aggregate service over one set of repositories.
type Service struct {
	Posts         *Posts
	Categories    *Categories
	Tags          *Tags
	Users         *Users
	Comments      *Comments
	Subscriptions *Subscriptions
}

// New wires the services to a transaction runner and a media store.
func New(tx TxRunner, files *media.Store) *Service {
	return &Service{
		Posts:         &Posts{tx: tx, files: files},
		Categories:    &Categories{tx: tx},
		Tags:          &Tags{tx: tx},
		Users:         &Users{tx: tx, files: files},
		Comments:      &Comments{tx: tx},
		Subscriptions: &Subscriptions{tx: tx},
	}
}

// inTx runs fn in one transaction and translates the error.
func inTx(ctx context.Context, tx TxRunner, fn func(Repositories) error) error {
	return classify(tx.InTx(ctx, fn))
}

// inTxRetry is inTx for work that derives a unique slug. A concurrent
// writer can claim the slug between the check and the insert; the unique
// index rejects that write and the whole transaction is replayed.
func inTxRetry(ctx context.Context, tx TxRunner, fn func(Repositories) error) error {
	var err error
	for attempt := 1; attempt <= maxTxAttempts; attempt++ {
		err = tx.InTx(ctx, fn)
		if !errors.Is(err, store.ErrDuplicate) {
			break
		}
		slog.Warn("slug race, retrying transaction", "attempt", attempt, "error", err)
	}
	return classify(err)
}

// classify maps lower-level errors onto the taxonomy. Errors already in
// the taxonomy and context errors pass through unchanged.
func classify(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrValidation), errors.Is(err, ErrNotFound),
		errors.Is(err, ErrStorage), errors.Is(err, ErrInvalidState),
		errors.Is(err, ErrPersistence), errors.Is(err, ErrConflict),
		errors.Is(err, ErrUnauthorized), errors.Is(err, ErrForbidden):
		return err
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	case errors.Is(err, store.ErrDuplicate), errors.Is(err, slug.ErrExhausted):
		return fmt.Errorf("%w: %w", ErrConflict, err)
	default:
		return fmt.Errorf("%w: %w", ErrPersistence, err)
	}
}

// Messages for references to rows that do not exist.
const (
	unknownCategory = "Category does not exist."
	unknownTag      = "One or more tags do not exist."
)

// foreignKey reports a rejected reference as a validation failure on
// field. Other errors pass through.
func foreignKey(err error, field, msg string) error {
	if errors.Is(err, store.ErrForeignKey) {
		return invalid(field, msg)
	}
	return err
}

// saveUpload writes u to the media store. A nil upload yields "".
func saveUpload(ctx context.Context, files *media.Store, field string, u *media.Upload) (string, error) {
	if u == nil {
		return "", nil
	}
	name, err := files.Save(ctx, u)
	switch {
	case err == nil:
		return name, nil
	case errors.Is(err, media.ErrNotImage):
		return "", invalid(field, "File must be a PNG, JPEG, GIF or WebP image.")
	case errors.Is(err, media.ErrTooLarge):
		return "", invalid(field, "File is too large.")
	default:
		return "", fmt.Errorf("%w: %w", ErrStorage, err)
	}
}

// removeFile deletes a stored file as part of a transaction body.
func removeFile(ctx context.Context, files *media.Store, name string) error {
	if err := files.Remove(ctx, name); err != nil {
		return fmt.Errorf("%w: %w", ErrStorage, err)
	}
	return nil
}

// discard removes a file written for an operation that did not commit.
func discard(ctx context.Context, files *media.Store, name string) {
	if name == "" {
		return
	}
	// The request context may already be cancelled; the file must still go.
	if err := files.Remove(context.WithoutCancel(ctx), name); err != nil {
		slog.Error("remove orphaned upload", "file", name, "error", err)
	}
}
