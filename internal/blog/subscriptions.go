package blog

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"net/mail"
	"strings"

	"blogpanel/internal/models"
)

// TokenLength is the size of a subscription confirmation token.
const TokenLength = 100

const tokenAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// randomToken returns n characters drawn uniformly from tokenAlphabet.
func randomToken(n int) (string, error) {
	var b strings.Builder
	b.Grow(n)
	limit := big.NewInt(int64(len(tokenAlphabet)))
	for range n {
		i, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", fmt.Errorf("generate token: %w", err)
		}
		b.WriteByte(tokenAlphabet[i.Int64()])
	}
	return b.String(), nil
}

// Subscriptions manages newsletter sign-ups.
type Subscriptions struct {
	tx TxRunner
}

// Add subscribes email with a fresh random token. A repeated email is a
// conflict.
func (s *Subscriptions) Add(ctx context.Context, email string) (*models.Subscription, error) {
	addr, err := mail.ParseAddress(strings.TrimSpace(email))
	if err != nil {
		return nil, invalid("email", "A valid email address is required.")
	}
	email = strings.ToLower(addr.Address)

	token, err := randomToken(TokenLength)
	if err != nil {
		return nil, err
	}

	var created *models.Subscription
	err = inTx(ctx, s.tx, func(r Repositories) error {
		existing, err := r.Subscriptions.FindByEmail(ctx, email)
		if err != nil {
			return err
		}
		if existing != nil {
			return fmt.Errorf("%w: %s is already subscribed", ErrConflict, email)
		}
		created, err = r.Subscriptions.Create(ctx, email, token)
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Remove deletes a subscription.
func (s *Subscriptions) Remove(ctx context.Context, id int64) error {
	return inTx(ctx, s.tx, func(r Repositories) error {
		ok, err := r.Subscriptions.Delete(ctx, id)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("subscription %d: %w", id, ErrNotFound)
		}
		return nil
	})
}

// List returns all subscriptions.
func (s *Subscriptions) List(ctx context.Context) ([]models.Subscription, error) {
	items, err := s.tx.Repos().Subscriptions.List(ctx)
	return items, classify(err)
}
