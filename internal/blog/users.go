// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package blog

import (
	"context"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"

	"blogpanel/internal/media"
	"blogpanel/internal/models"
	"blogpanel/internal/store"
)

// UserInput carries the editable fields of a user. An empty Password and
// a nil Avatar leave the stored values untouched on update.
type UserInput struct {
	Name     string
	Email    string
	Password string
	IsAdmin  bool
	Avatar   *media.Upload
}

// Users manages panel accounts.
type Users struct {
	tx    TxRunner
	files *media.Store
}

func findUser(ctx context.Context, r Repositories, id int64) (*models.User, error) {
	u, err := r.Users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, fmt.Errorf("user %d: %w", id, ErrNotFound)
	}
	return u, nil
}

// checkProfile trims the name and reduces the email to its lower-cased
// bare address. Display-name forms such as "Bob <bob@example.com>" are
// rejected.
func checkProfile(in UserInput) (name, email string, err error) {
	name = strings.TrimSpace(in.Name)
	if name == "" {
		return "", "", invalid("name", "Name is required.")
	}
	email, err = normalizeEmail(in.Email)
	if err != nil {
		return "", "", err
	}
	return name, email, nil
}

func normalizeEmail(v string) (string, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return "", invalid("email", "Email is required.")
	}
	addr, err := mail.ParseAddress(v)
	if err != nil || addr.Name != "" || addr.Address != v {
		return "", invalid("email", "Email is not a valid address.")
	}
	return strings.ToLower(addr.Address), nil
}

// Create adds a user with a bcrypt-hashed password and optional avatar.
func (s *Users) Create(ctx context.Context, in UserInput) (*models.User, error) {
	name, email, err := checkProfile(in)
	if err != nil {
		return nil, err
	}
	if in.Password == "" {
		return nil, invalid("password", "Password is required.")
	}
	hash, err := store.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	avatar, err := saveUpload(ctx, s.files, "avatar", in.Avatar)
	if err != nil {
		return nil, err
	}

	var created *models.User
	err = inTx(ctx, s.tx, func(r Repositories) error {
		u, err := r.Users.Create(ctx, name, email, hash, in.IsAdmin)
		if err != nil {
			return err
		}
		if avatar != "" {
			if err := r.Users.SetAvatar(ctx, u.ID, &avatar); err != nil {
				return err
			}
			u.Avatar = &avatar
		}
		created = u
		return nil
	})
	if err != nil {
		discard(ctx, s.files, avatar)
		return nil, err
	}

	slog.Info("user created", "user_id", created.ID, "email", created.Email)
	return created, nil
}

// Update changes name and email, and the password and avatar when given.
func (s *Users) Update(ctx context.Context, id int64, in UserInput) (*models.User, error) {
	name, email, err := checkProfile(in)
	if err != nil {
		return nil, err
	}

	var hash string
	if in.Password != "" {
		if hash, err = store.HashPassword(in.Password); err != nil {
			return nil, err
		}
	}

	avatar, err := saveUpload(ctx, s.files, "avatar", in.Avatar)
	if err != nil {
		return nil, err
	}

	var updated *models.User
	err = inTx(ctx, s.tx, func(r Repositories) error {
		u, err := findUser(ctx, r, id)
		if err != nil {
			return err
		}
		if err := r.Users.UpdateProfile(ctx, id, name, email); err != nil {
			return err
		}
		if hash != "" {
			if err := r.Users.SetPasswordHash(ctx, id, hash); err != nil {
				return err
			}
		}
		if avatar != "" {
			if err := r.Users.SetAvatar(ctx, id, &avatar); err != nil {
				return err
			}
			if err := removeFile(ctx, s.files, u.AvatarName()); err != nil {
				return err
			}
		}
		updated, err = findUser(ctx, r, id)
		return err
	})
	if err != nil {
		discard(ctx, s.files, avatar)
		return nil, err
	}
	return updated, nil
}

// SetAvatar replaces the avatar. A nil upload is a no-op.
func (s *Users) SetAvatar(ctx context.Context, id int64, u *media.Upload) error {
	if u == nil {
		return nil
	}

	avatar, err := saveUpload(ctx, s.files, "avatar", u)
	if err != nil {
		return err
	}

	err = inTx(ctx, s.tx, func(r Repositories) error {
		user, err := findUser(ctx, r, id)
		if err != nil {
			return err
		}
		if err := r.Users.SetAvatar(ctx, id, &avatar); err != nil {
			return err
		}
		return removeFile(ctx, s.files, user.AvatarName())
	})
	if err != nil {
		discard(ctx, s.files, avatar)
		return err
	}
	return nil
}

// ToggleAdmin grants the admin role when on and revokes it otherwise.
func (s *Users) ToggleAdmin(ctx context.Context, id int64, on bool) error {
	return inTx(ctx, s.tx, func(r Repositories) error {
		if _, err := findUser(ctx, r, id); err != nil {
			return err
		}
		return r.Users.SetAdmin(ctx, id, on)
	})
}

// ToggleBan bans the user when on and lifts the ban otherwise.
func (s *Users) ToggleBan(ctx context.Context, id int64, on bool) error {
	return inTx(ctx, s.tx, func(r Repositories) error {
		if _, err := findUser(ctx, r, id); err != nil {
			return err
		}
		return r.Users.SetBanned(ctx, id, on)
	})
}

// Delete removes the user and their avatar file. Their posts and comments
// remain without an author.
func (s *Users) Delete(ctx context.Context, id int64) error {
	err := inTx(ctx, s.tx, func(r Repositories) error {
		u, err := findUser(ctx, r, id)
		if err != nil {
			return err
		}
		if _, err := r.Users.Delete(ctx, id); err != nil {
			return err
		}
		return removeFile(ctx, s.files, u.AvatarName())
	})
	if err != nil {
		return err
	}
	slog.Info("user deleted", "user_id", id)
	return nil
}

// Authenticate checks an email/password pair. Banned users are refused
// even with the right password.
func (s *Users) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	u, err := s.tx.Repos().Users.FindByEmail(ctx, email)
	if err != nil {
		return nil, classify(err)
	}
	if u == nil || !store.CheckPassword(u, password) {
		return nil, ErrUnauthorized
	}
	if !u.CanLogin() {
		return nil, fmt.Errorf("user %d is banned: %w", u.ID, ErrForbidden)
	}
	return u, nil
}

// Get returns a user by id.
func (s *Users) Get(ctx context.Context, id int64) (*models.User, error) {
	u, err := findUser(ctx, s.tx.Repos(), id)
	return u, classify(err)
}

// List returns all users.
func (s *Users) List(ctx context.Context) ([]models.User, error) {
	items, err := s.tx.Repos().Users.List(ctx)
	return items, classify(err)
}

// AvatarURL resolves the avatar, falling back to the placeholder.
func (s *Users) AvatarURL(u *models.User) string {
	return s.files.Resolve(u.AvatarName(), models.NoAvatarPath)
}
