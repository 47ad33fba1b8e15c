// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"fmt"
	"time"
)

// CommentStatus is the moderation state of a comment.
type CommentStatus string

const (
	CommentStatusInactive CommentStatus = "inactive"
	CommentStatusActive   CommentStatus = "active"
)

// Comment is a reader's reply to a post. New comments wait for moderation.
type Comment struct {
	ID        int64         `json:"id"`
	PostID    int64         `json:"post_id"`
	UserID    *int64        `json:"user_id,omitempty"`
	Text      string        `json:"text"`
	Status    CommentStatus `json:"status"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// Toggled returns the opposite moderation state. A stored value outside
// the two known states is an error, never silently fixed.
func (c *Comment) Toggled() (CommentStatus, error) {
	switch c.Status {
	case CommentStatusInactive:
		return CommentStatusActive, nil
	case CommentStatusActive:
		return CommentStatusInactive, nil
	default:
		return "", fmt.Errorf("%w: comment %d has status %q", ErrInvalidState, c.ID, c.Status)
	}
}

// Subscription is a newsletter sign-up confirmed through its token.
type Subscription struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Token     string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
