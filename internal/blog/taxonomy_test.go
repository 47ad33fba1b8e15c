package blog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategoryCRUD(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)

	c, err := svc.Categories.Create(ctx, " Home & Garden ")
	require.NoError(t, err)
	assert.Equal(t, "Home & Garden", c.Title)
	assert.Equal(t, "home-garden", c.Slug)

	dup, err := svc.Categories.Create(ctx, "Home Garden")
	require.NoError(t, err)
	assert.Equal(t, "home-garden-2", dup.Slug)

	same, err := svc.Categories.Update(ctx, c.ID, "Home & Garden")
	require.NoError(t, err)
	assert.Equal(t, "home-garden", same.Slug, "unchanged title keeps the slug")

	renamed, err := svc.Categories.Update(ctx, c.ID, "Garden")
	require.NoError(t, err)
	assert.Equal(t, "garden", renamed.Slug)

	got, err := svc.Categories.FindBySlug(ctx, "garden")
	require.NoError(t, err)
	assert.Equal(t, c.ID, got.ID)

	list, err := svc.Categories.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	require.NoError(t, svc.Categories.Delete(ctx, c.ID))
	_, err = svc.Categories.Get(ctx, c.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, svc.Categories.Delete(ctx, c.ID), ErrNotFound)
	_, err = svc.Categories.Update(ctx, c.ID, "Again")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCategoryValidation(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Categories.Create(context.Background(), "  ")
	assert.ErrorIs(t, err, ErrValidation)
	_, err = svc.Categories.Update(context.Background(), 1, "")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestCategoryDeleteUncategorisesPosts(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)
	c, err := svc.Categories.Create(ctx, "News")
	require.NoError(t, err)
	p, err := svc.Posts.Create(ctx, 0, PostInput{Title: "Post", CategoryID: c.ID})
	require.NoError(t, err)

	list, err := svc.Categories.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 1, list[0].PostCount)

	require.NoError(t, svc.Categories.Delete(ctx, c.ID))
	got, err := svc.Posts.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Nil(t, got.CategoryID)
	assert.Equal(t, "No category", got.CategoryTitle())
}

func TestTagCRUD(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)

	tag, err := svc.Tags.Create(ctx, "PostgreSQL")
	require.NoError(t, err)
	assert.Equal(t, "postgresql", tag.Slug)

	renamed, err := svc.Tags.Update(ctx, tag.ID, "Postgres")
	require.NoError(t, err)
	assert.Equal(t, "postgres", renamed.Slug)

	got, err := svc.Tags.Get(ctx, tag.ID)
	require.NoError(t, err)
	assert.Equal(t, "Postgres", got.Title)

	_, err = svc.Tags.FindBySlug(ctx, "postgresql")
	assert.ErrorIs(t, err, ErrNotFound, "old slug no longer resolves")

	require.NoError(t, svc.Tags.Delete(ctx, tag.ID))
	assert.ErrorIs(t, svc.Tags.Delete(ctx, tag.ID), ErrNotFound)
}

func TestTagDeleteDetachesPosts(t *testing.T) {
	ctx := context.Background()
	svc, db, _ := newTestService(t)
	ids := seedTags(t, svc, "Go", "SQL")
	p, err := svc.Posts.Create(ctx, 0, PostInput{Title: "Post", TagIDs: ids})
	require.NoError(t, err)

	require.NoError(t, svc.Tags.Delete(ctx, ids[0]))
	assert.Equal(t, []int64{ids[1]}, db.tagIDs(p.ID))

	got, err := svc.Posts.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "SQL", got.TagsTitles())
}
