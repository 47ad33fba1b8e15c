package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"blogpanel/internal/models"
)

// UserStore handles all user-related database operations.
type UserStore struct {
	db DBTX
}

// NewUserStore creates a new UserStore with the given database connection.
func NewUserStore(db DBTX) *UserStore {
	return &UserStore{db: db}
}

const userColumns = `id, name, email, password_hash, avatar, is_admin, banned, created_at, updated_at`

func scanUser(scanner interface{ Scan(...any) error }) (*models.User, error) {
	var u models.User
	err := scanner.Scan(
		&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Avatar,
		&u.IsAdmin, &u.Banned, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// HashPassword returns the bcrypt hash of password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword verifies a plaintext password against the user's stored hash.
func CheckPassword(user *models.User, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) == nil
}

// FindByEmail retrieves a user by their email address. Returns nil if not found.
func (s *UserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	return u, nil
}

// FindByID retrieves a user by ID. Returns nil if not found.
func (s *UserStore) FindByID(ctx context.Context, id int64) (*models.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find user by id: %w", err)
	}
	return u, nil
}

// List returns all users ordered by creation date.
func (s *UserStore) List(ctx context.Context) ([]models.User, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

// Create inserts a new user. passwordHash must already be hashed.
func (s *UserStore) Create(ctx context.Context, name, email, passwordHash string, isAdmin bool) (*models.User, error) {
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO users (name, email, password_hash, is_admin)
		VALUES ($1, $2, $3, $4)
		RETURNING `+userColumns,
		name, email, passwordHash, isAdmin,
	)
	u, err := scanUser(row)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", mapErr(err))
	}
	return u, nil
}

// UpdateProfile changes name and email.
func (s *UserStore) UpdateProfile(ctx context.Context, id int64, name, email string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE users SET name = $1, email = $2, updated_at = NOW() WHERE id = $3
	`, name, email, id)
	if err != nil {
		return fmt.Errorf("update user: %w", mapErr(err))
	}
	return nil
}

// SetPasswordHash replaces the stored password hash.
func (s *UserStore) SetPasswordHash(ctx context.Context, id int64, hash string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE users SET password_hash = $1, updated_at = NOW() WHERE id = $2`, hash, id)
	if err != nil {
		return fmt.Errorf("set user password: %w", err)
	}
	return nil
}

// SetAvatar stores the avatar filename, or clears it when avatar is nil.
func (s *UserStore) SetAvatar(ctx context.Context, id int64, avatar *string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE users SET avatar = $1, updated_at = NOW() WHERE id = $2`, avatar, id)
	if err != nil {
		return fmt.Errorf("set user avatar: %w", err)
	}
	return nil
}

// SetAdmin grants or revokes the admin role.
func (s *UserStore) SetAdmin(ctx context.Context, id int64, admin bool) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE users SET is_admin = $1, updated_at = NOW() WHERE id = $2`, admin, id)
	if err != nil {
		return fmt.Errorf("set user admin: %w", err)
	}
	return nil
}

// SetBanned bans or unbans a user.
func (s *UserStore) SetBanned(ctx context.Context, id int64, banned bool) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE users SET banned = $1, updated_at = NOW() WHERE id = $2`, banned, id)
	if err != nil {
		return fmt.Errorf("set user banned: %w", err)
	}
	return nil
}

// Delete removes a user by ID. Their posts and comments keep existing with
// no author. It returns false if no row matched.
func (s *UserStore) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete user: %w", err)
	}
	return affected(res)
}
