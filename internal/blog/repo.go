package blog

import (
	"context"
	"time"

	"blogpanel/internal/models"
	"blogpanel/internal/store"
)

// PostRepo persists posts.
type PostRepo interface {
	Create(ctx context.Context, p *models.Post) (*models.Post, error)
	FindByID(ctx context.Context, id int64) (*models.Post, error)
	FindBySlug(ctx context.Context, slug string) (*models.Post, error)
	SlugTaken(ctx context.Context, slug string, excludeID int64) (bool, error)
	UpdateContent(ctx context.Context, id int64, title, slug, content string) error
	SetDate(ctx context.Context, id int64, date time.Time) error
	SetCategory(ctx context.Context, id, categoryID int64) error
	SetImage(ctx context.Context, id int64, image *string) error
	SetStatus(ctx context.Context, id int64, status models.PostStatus) error
	SetFeatured(ctx context.Context, id int64, featured models.Feature) error
	IncrementViews(ctx context.Context, id int64) error
	Delete(ctx context.Context, id int64) (bool, error)
	List(ctx context.Context, f store.PostFilter) ([]models.Post, error)
	Count(ctx context.Context, status models.PostStatus) (int, error)
	Random(ctx context.Context, n int) ([]models.Post, error)
}

// PostTagRepo persists the post/tag association set.
type PostTagRepo interface {
	Sync(ctx context.Context, postID int64, tagIDs []int64) error
	DetachAll(ctx context.Context, postID int64) error
	DetachTag(ctx context.Context, tagID int64) error
	TagIDs(ctx context.Context, postID int64) ([]int64, error)
	ListForPost(ctx context.Context, postID int64) ([]models.Tag, error)
}

// CategoryRepo persists categories.
type CategoryRepo interface {
	List(ctx context.Context) ([]models.Category, error)
	FindByID(ctx context.Context, id int64) (*models.Category, error)
	FindBySlug(ctx context.Context, slug string) (*models.Category, error)
	SlugTaken(ctx context.Context, slug string, excludeID int64) (bool, error)
	Create(ctx context.Context, title, slug string) (*models.Category, error)
	Update(ctx context.Context, id int64, title, slug string) error
	Delete(ctx context.Context, id int64) (bool, error)
}

// TagRepo persists tags.
type TagRepo interface {
	List(ctx context.Context) ([]models.Tag, error)
	FindByID(ctx context.Context, id int64) (*models.Tag, error)
	FindBySlug(ctx context.Context, slug string) (*models.Tag, error)
	SlugTaken(ctx context.Context, slug string, excludeID int64) (bool, error)
	Create(ctx context.Context, title, slug string) (*models.Tag, error)
	Update(ctx context.Context, id int64, title, slug string) error
	Delete(ctx context.Context, id int64) (bool, error)
}

// UserRepo persists users.
type UserRepo interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id int64) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
	Create(ctx context.Context, name, email, passwordHash string, isAdmin bool) (*models.User, error)
	UpdateProfile(ctx context.Context, id int64, name, email string) error
	SetPasswordHash(ctx context.Context, id int64, hash string) error
	SetAvatar(ctx context.Context, id int64, avatar *string) error
	SetAdmin(ctx context.Context, id int64, admin bool) error
	SetBanned(ctx context.Context, id int64, banned bool) error
	Delete(ctx context.Context, id int64) (bool, error)
}

// CommentRepo persists comments.
type CommentRepo interface {
	List(ctx context.Context) ([]models.Comment, error)
	ListForPost(ctx context.Context, postID int64, activeOnly bool) ([]models.Comment, error)
	FindByID(ctx context.Context, id int64) (*models.Comment, error)
	Create(ctx context.Context, postID int64, userID *int64, text string) (*models.Comment, error)
	SetStatus(ctx context.Context, id int64, status models.CommentStatus) error
	Delete(ctx context.Context, id int64) (bool, error)
}

// SubscriptionRepo persists newsletter subscriptions.
type SubscriptionRepo interface {
	Create(ctx context.Context, email, token string) (*models.Subscription, error)
	FindByEmail(ctx context.Context, email string) (*models.Subscription, error)
	List(ctx context.Context) ([]models.Subscription, error)
	Delete(ctx context.Context, id int64) (bool, error)
}

// Repositories is one consistent view of the data: either the pool or a
// single open transaction.
type Repositories struct {
	Posts         PostRepo
	PostTags      PostTagRepo
	Categories    CategoryRepo
	Tags          TagRepo
	Users         UserRepo
	Comments      CommentRepo
	Subscriptions SubscriptionRepo
}

// TxRunner hands out repositories. InTx commits when fn returns nil and
// rolls back otherwise.
type TxRunner interface {
	Repos() Repositories
	InTx(ctx context.Context, fn func(Repositories) error) error
}
