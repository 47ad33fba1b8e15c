package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"blogpanel/internal/models"
)

// SubscriptionStore manages newsletter subscriptions.
type SubscriptionStore struct {
	db DBTX
}

// NewSubscriptionStore returns a new SubscriptionStore.
func NewSubscriptionStore(db DBTX) *SubscriptionStore {
	return &SubscriptionStore{db: db}
}

const subscriptionColumns = `id, email, token, created_at, updated_at`

func scanSubscription(scanner interface{ Scan(...any) error }) (*models.Subscription, error) {
	var s models.Subscription
	if err := scanner.Scan(&s.ID, &s.Email, &s.Token, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, err
	}
	return &s, nil
}

// Create inserts a subscription. A repeated email yields ErrDuplicate.
func (s *SubscriptionStore) Create(ctx context.Context, email, token string) (*models.Subscription, error) {
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO subscriptions (email, token) VALUES ($1, $2)
		RETURNING `+subscriptionColumns,
		email, token,
	)
	sub, err := scanSubscription(row)
	if err != nil {
		return nil, fmt.Errorf("create subscription: %w", mapErr(err))
	}
	return sub, nil
}

// FindByEmail retrieves a subscription by email. Returns nil if not found.
func (s *SubscriptionStore) FindByEmail(ctx context.Context, email string) (*models.Subscription, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+subscriptionColumns+` FROM subscriptions WHERE email = $1`, email)
	sub, err := scanSubscription(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find subscription: %w", err)
	}
	return sub, nil
}

// List returns all subscriptions, newest first.
func (s *SubscriptionStore) List(ctx context.Context) ([]models.Subscription, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+subscriptionColumns+` FROM subscriptions ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}
	defer rows.Close()

	var items []models.Subscription
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, fmt.Errorf("scan subscription: %w", err)
		}
		items = append(items, *sub)
	}
	return items, rows.Err()
}

// Delete removes a subscription by ID. It returns false if no row matched.
func (s *SubscriptionStore) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM subscriptions WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete subscription: %w", err)
	}
	return affected(res)
}
