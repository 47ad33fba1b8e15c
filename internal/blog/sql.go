package blog

import (
	"context"
	"database/sql"

	"blogpanel/internal/store"
)

// SQLRunner is the TxRunner backed by PostgreSQL.
type SQLRunner struct {
	db *sql.DB
}

// NewSQLRunner returns a runner over the given pool.
func NewSQLRunner(db *sql.DB) *SQLRunner {
	return &SQLRunner{db: db}
}

func reposFor(db store.DBTX) Repositories {
	return Repositories{
		Posts:         store.NewPostStore(db),
		PostTags:      store.NewPostTagStore(db),
		Categories:    store.NewCategoryStore(db),
		Tags:          store.NewTagStore(db),
		Users:         store.NewUserStore(db),
		Comments:      store.NewCommentStore(db),
		Subscriptions: store.NewSubscriptionStore(db),
	}
}

// Repos returns repositories that run each statement on the pool.
func (r *SQLRunner) Repos() Repositories {
	return reposFor(r.db)
}

// InTx runs fn with repositories bound to a single transaction.
func (r *SQLRunner) InTx(ctx context.Context, fn func(Repositories) error) error {
	return store.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		return fn(reposFor(tx))
	})
}
