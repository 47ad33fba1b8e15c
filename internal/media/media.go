// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package media stores uploaded files under random names and resolves them
// to public URLs. Files live under a fixed "uploads" prefix on whichever
// Backend the application is configured with.
package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
)

// Prefix is the key prefix under which every upload is written.
const Prefix = "uploads"

// MaxUploadSize caps the bytes read from a single upload.
const MaxUploadSize = 10 << 20

var (
	// ErrNotImage is returned when an upload does not decode as a supported image.
	ErrNotImage = errors.New("file is not a supported image")
	// ErrTooLarge is returned when an upload exceeds MaxUploadSize.
	ErrTooLarge = errors.New("file exceeds maximum upload size")
)

// Backend is the blob storage the Store writes to. Delete must treat a
// missing key as success.
type Backend interface {
	Put(ctx context.Context, key, contentType string, body io.Reader, size int64) error
	Delete(ctx context.Context, key string) error
	URL(key string) string
}

// Upload is a file received from a client. Filename is the name the client
// declared and is only consulted for its extension.
type Upload struct {
	Filename string
	Body     io.Reader
}

// Store saves and removes uploads on a Backend.
type Store struct {
	backend Backend
}

// New creates a Store writing to b.
func New(b Backend) *Store {
	return &Store{backend: b}
}

func key(filename string) string {
	return Prefix + "/" + filename
}

// Save validates the upload as an image and writes it under a fresh random
// name. It returns the stored filename, which is what rows reference.
func (s *Store) Save(ctx context.Context, u *Upload) (string, error) {
	if u == nil || u.Body == nil {
		return "", fmt.Errorf("save upload: %w", ErrNotImage)
	}

	data, err := io.ReadAll(io.LimitReader(u.Body, MaxUploadSize+1))
	if err != nil {
		return "", fmt.Errorf("read upload: %w", err)
	}
	if len(data) > MaxUploadSize {
		return "", ErrTooLarge
	}

	format, err := DetectImage(data)
	if err != nil {
		return "", err
	}

	filename := uuid.New().String() + format.extensionFor(u.Filename)
	if err := s.backend.Put(ctx, key(filename), format.ContentType, bytes.NewReader(data), int64(len(data))); err != nil {
		return "", fmt.Errorf("store upload %s: %w", filename, err)
	}
	return filename, nil
}

// Remove deletes a stored file. An empty name or a missing file is not an error.
func (s *Store) Remove(ctx context.Context, filename string) error {
	if filename == "" {
		return nil
	}
	if err := s.backend.Delete(ctx, key(path.Base(filename))); err != nil {
		return fmt.Errorf("remove upload %s: %w", filename, err)
	}
	return nil
}

// Resolve returns the public URL for filename, or placeholder when the
// filename is empty.
func (s *Store) Resolve(filename, placeholder string) string {
	if strings.TrimSpace(filename) == "" {
		return placeholder
	}
	return s.backend.URL(key(filename))
}
