package database

import (
	"database/sql"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"
)

// SeedAdmin holds the credentials of the account created on first start.
type SeedAdmin struct {
	Name     string
	Email    string
	Password string
}

var (
	seedCategories = [][2]string{{"News", "news"}, {"Tutorials", "tutorials"}, {"Opinion", "opinion"}}
	seedTags       = [][2]string{{"Go", "go"}, {"PostgreSQL", "postgresql"}, {"Web", "web"}}
)

// Seed populates the database with initial development data: one admin
// account plus a handful of categories and tags. It does nothing when
// users already exist.
func Seed(db *sql.DB, admin SeedAdmin) error {
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		return fmt.Errorf("seed check users: %w", err)
	}

	if count > 0 {
		slog.Info("database already seeded, skipping")
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(admin.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("seed bcrypt: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("seed begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO users (name, email, password_hash, is_admin)
		VALUES ($1, $2, $3, TRUE)
	`, admin.Name, admin.Email, string(hash))
	if err != nil {
		return fmt.Errorf("seed insert admin: %w", err)
	}

	for _, c := range seedCategories {
		if _, err := tx.Exec(
			`INSERT INTO categories (title, slug) VALUES ($1, $2) ON CONFLICT (slug) DO NOTHING`,
			c[0], c[1],
		); err != nil {
			return fmt.Errorf("seed insert category %s: %w", c[1], err)
		}
	}

	for _, tg := range seedTags {
		if _, err := tx.Exec(
			`INSERT INTO tags (title, slug) VALUES ($1, $2) ON CONFLICT (slug) DO NOTHING`,
			tg[0], tg[1],
		); err != nil {
			return fmt.Errorf("seed insert tag %s: %w", tg[1], err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed commit: %w", err)
	}

	slog.Info("database seeded with default admin user", "email", admin.Email)
	return nil
}
