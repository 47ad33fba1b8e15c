// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import "time"

// User is a panel account. Posts and comments keep a nullable reference
// to their author, so deleting a user does not remove their content.
type User struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Never serialize the hash
	Avatar       *string   `json:"avatar,omitempty"`
	IsAdmin      bool      `json:"is_admin"`
	Banned       bool      `json:"banned"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// AvatarName returns the stored avatar filename, or "" when there is none.
func (u *User) AvatarName() string {
	if u.Avatar == nil {
		return ""
	}
	return *u.Avatar
}

// CanLogin returns true if the account is allowed to start a session.
func (u *User) CanLogin() bool {
	return !u.Banned
}
