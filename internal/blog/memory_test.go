package blog

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"io"
	"maps"
	"math/rand/v2"
	"slices"
	"strings"
	"time"

	"blogpanel/internal/media"
	"blogpanel/internal/models"
	"blogpanel/internal/store"
)

// memData is the full state of the fake database.
type memData struct {
	nextID        int64
	posts         map[int64]models.Post
	postTags      map[[2]int64]time.Time
	categories    map[int64]models.Category
	tags          map[int64]models.Tag
	users         map[int64]models.User
	comments      map[int64]models.Comment
	subscriptions map[int64]models.Subscription
}

func (d *memData) clone() memData {
	return memData{
		nextID:        d.nextID,
		posts:         maps.Clone(d.posts),
		postTags:      maps.Clone(d.postTags),
		categories:    maps.Clone(d.categories),
		tags:          maps.Clone(d.tags),
		users:         maps.Clone(d.users),
		comments:      maps.Clone(d.comments),
		subscriptions: maps.Clone(d.subscriptions),
	}
}

// memDB is a TxRunner over in-memory maps. InTx snapshots the state and
// restores it when fn fails, which is enough to observe rollbacks.
type memDB struct {
	data      memData
	fail      map[string]error
	commits   int
	rollbacks int
	clock     time.Time
}

func newMemDB() *memDB {
	return &memDB{
		data: memData{
			posts:         map[int64]models.Post{},
			postTags:      map[[2]int64]time.Time{},
			categories:    map[int64]models.Category{},
			tags:          map[int64]models.Tag{},
			users:         map[int64]models.User{},
			comments:      map[int64]models.Comment{},
			subscriptions: map[int64]models.Subscription{},
		},
		fail:  map[string]error{},
		clock: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (m *memDB) now() time.Time {
	m.clock = m.clock.Add(time.Second)
	return m.clock
}

func (m *memDB) id() int64 {
	m.data.nextID++
	return m.data.nextID
}

// check returns the injected failure for op, if any.
func (m *memDB) check(op string) error {
	return m.fail[op]
}

func (m *memDB) Repos() Repositories {
	return Repositories{
		Posts:         memPosts{m},
		PostTags:      memPostTags{m},
		Categories:    memCategories{m},
		Tags:          memTags{m},
		Users:         memUsers{m},
		Comments:      memComments{m},
		Subscriptions: memSubscriptions{m},
	}
}

func (m *memDB) InTx(ctx context.Context, fn func(Repositories) error) error {
	snapshot := m.data.clone()
	if err := fn(m.Repos()); err != nil {
		m.data = snapshot
		m.rollbacks++
		return err
	}
	m.commits++
	return nil
}

func (m *memDB) tagIDs(postID int64) []int64 {
	var ids []int64
	for k := range m.data.postTags {
		if k[0] == postID {
			ids = append(ids, k[1])
		}
	}
	slices.Sort(ids)
	return ids
}

func duplicate(what string) error {
	return fmt.Errorf("%w: %s", store.ErrDuplicate, what)
}

// --- posts ---

type memPosts struct{ m *memDB }

func (r memPosts) Create(_ context.Context, p *models.Post) (*models.Post, error) {
	if err := r.m.check("Posts.Create"); err != nil {
		return nil, err
	}
	for _, other := range r.m.data.posts {
		if other.Slug == p.Slug {
			return nil, duplicate("posts.slug")
		}
	}
	if p.CategoryID != nil {
		if _, ok := r.m.data.categories[*p.CategoryID]; !ok {
			return nil, store.ErrForeignKey
		}
	}
	row := *p
	row.ID = r.m.id()
	row.CreatedAt = r.m.now()
	row.UpdatedAt = row.CreatedAt
	r.m.data.posts[row.ID] = row
	return &row, nil
}

func (r memPosts) FindByID(_ context.Context, id int64) (*models.Post, error) {
	p, ok := r.m.data.posts[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r memPosts) FindBySlug(_ context.Context, slug string) (*models.Post, error) {
	for _, p := range r.m.data.posts {
		if p.Slug == slug {
			return &p, nil
		}
	}
	return nil, nil
}

func (r memPosts) SlugTaken(_ context.Context, slug string, excludeID int64) (bool, error) {
	if err := r.m.check("Posts.SlugTaken"); err != nil {
		return false, err
	}
	for _, p := range r.m.data.posts {
		if p.Slug == slug && p.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (r memPosts) update(id int64, fn func(*models.Post)) {
	p, ok := r.m.data.posts[id]
	if !ok {
		return
	}
	fn(&p)
	p.UpdatedAt = r.m.now()
	r.m.data.posts[id] = p
}

func (r memPosts) UpdateContent(_ context.Context, id int64, title, slug, content string) error {
	if err := r.m.check("Posts.UpdateContent"); err != nil {
		return err
	}
	for _, p := range r.m.data.posts {
		if p.Slug == slug && p.ID != id {
			return duplicate("posts.slug")
		}
	}
	r.update(id, func(p *models.Post) { p.Title, p.Slug, p.Content = title, slug, content })
	return nil
}

func (r memPosts) SetDate(_ context.Context, id int64, date time.Time) error {
	r.update(id, func(p *models.Post) { p.Date = &date })
	return nil
}

func (r memPosts) SetCategory(_ context.Context, id, categoryID int64) error {
	if _, ok := r.m.data.categories[categoryID]; !ok {
		return fmt.Errorf("set post category: %w", store.ErrForeignKey)
	}
	r.update(id, func(p *models.Post) { p.CategoryID = &categoryID })
	return nil
}

func (r memPosts) SetImage(_ context.Context, id int64, image *string) error {
	if err := r.m.check("Posts.SetImage"); err != nil {
		return err
	}
	r.update(id, func(p *models.Post) { p.Image = image })
	return nil
}

func (r memPosts) SetStatus(_ context.Context, id int64, status models.PostStatus) error {
	if err := r.m.check("Posts.SetStatus"); err != nil {
		return err
	}
	r.update(id, func(p *models.Post) { p.Status = status })
	return nil
}

func (r memPosts) SetFeatured(_ context.Context, id int64, featured models.Feature) error {
	r.update(id, func(p *models.Post) { p.Featured = featured })
	return nil
}

func (r memPosts) IncrementViews(_ context.Context, id int64) error {
	p := r.m.data.posts[id]
	p.Views++
	r.m.data.posts[id] = p
	return nil
}

func (r memPosts) Delete(_ context.Context, id int64) (bool, error) {
	if err := r.m.check("Posts.Delete"); err != nil {
		return false, err
	}
	if _, ok := r.m.data.posts[id]; !ok {
		return false, nil
	}
	delete(r.m.data.posts, id)
	for k := range r.m.data.comments {
		if r.m.data.comments[k].PostID == id {
			delete(r.m.data.comments, k)
		}
	}
	return true, nil
}

func (r memPosts) List(_ context.Context, f store.PostFilter) ([]models.Post, error) {
	var out []models.Post
	for _, p := range r.m.data.posts {
		if f.Status != "" && p.Status != f.Status {
			continue
		}
		if f.CategoryID != 0 && (p.CategoryID == nil || *p.CategoryID != f.CategoryID) {
			continue
		}
		if f.TagID != 0 {
			if _, ok := r.m.data.postTags[[2]int64{p.ID, f.TagID}]; !ok {
				continue
			}
		}
		out = append(out, p)
	}
	slices.SortFunc(out, func(a, b models.Post) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return int(b.ID - a.ID)
	})
	if f.Offset > 0 {
		out = out[min(f.Offset, len(out)):]
	}
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (r memPosts) Count(_ context.Context, status models.PostStatus) (int, error) {
	n := 0
	for _, p := range r.m.data.posts {
		if status == "" || p.Status == status {
			n++
		}
	}
	return n, nil
}

func (r memPosts) Random(ctx context.Context, n int) ([]models.Post, error) {
	out, _ := r.List(ctx, store.PostFilter{Status: models.PostStatusPublic})
	rand.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	if len(out) > n {
		out = out[:n]
	}
	return out, nil
}

// --- post tags ---

type memPostTags struct{ m *memDB }

func (r memPostTags) Sync(_ context.Context, postID int64, tagIDs []int64) error {
	if err := r.m.check("PostTags.Sync"); err != nil {
		return err
	}
	want := map[int64]bool{}
	for _, id := range tagIDs {
		if _, ok := r.m.data.tags[id]; !ok {
			return fmt.Errorf("sync post tags insert: %w", store.ErrForeignKey)
		}
		want[id] = true
	}
	for k := range r.m.data.postTags {
		if k[0] == postID && !want[k[1]] {
			delete(r.m.data.postTags, k)
		}
	}
	for id := range want {
		k := [2]int64{postID, id}
		if _, ok := r.m.data.postTags[k]; !ok {
			r.m.data.postTags[k] = r.m.now()
		}
	}
	return nil
}

func (r memPostTags) DetachAll(_ context.Context, postID int64) error {
	if err := r.m.check("PostTags.DetachAll"); err != nil {
		return err
	}
	for k := range r.m.data.postTags {
		if k[0] == postID {
			delete(r.m.data.postTags, k)
		}
	}
	return nil
}

func (r memPostTags) DetachTag(_ context.Context, tagID int64) error {
	for k := range r.m.data.postTags {
		if k[1] == tagID {
			delete(r.m.data.postTags, k)
		}
	}
	return nil
}

func (r memPostTags) TagIDs(_ context.Context, postID int64) ([]int64, error) {
	return r.m.tagIDs(postID), nil
}

func (r memPostTags) ListForPost(_ context.Context, postID int64) ([]models.Tag, error) {
	var out []models.Tag
	for _, id := range r.m.tagIDs(postID) {
		out = append(out, r.m.data.tags[id])
	}
	slices.SortFunc(out, func(a, b models.Tag) int { return strings.Compare(a.Title, b.Title) })
	return out, nil
}

// --- categories ---

type memCategories struct{ m *memDB }

func (r memCategories) List(_ context.Context) ([]models.Category, error) {
	var out []models.Category
	for _, c := range r.m.data.categories {
		for _, p := range r.m.data.posts {
			if p.CategoryID != nil && *p.CategoryID == c.ID {
				c.PostCount++
			}
		}
		out = append(out, c)
	}
	slices.SortFunc(out, func(a, b models.Category) int { return strings.Compare(a.Title, b.Title) })
	return out, nil
}

func (r memCategories) FindByID(_ context.Context, id int64) (*models.Category, error) {
	c, ok := r.m.data.categories[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (r memCategories) FindBySlug(_ context.Context, slug string) (*models.Category, error) {
	for _, c := range r.m.data.categories {
		if c.Slug == slug {
			return &c, nil
		}
	}
	return nil, nil
}

func (r memCategories) SlugTaken(_ context.Context, slug string, excludeID int64) (bool, error) {
	for _, c := range r.m.data.categories {
		if c.Slug == slug && c.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (r memCategories) Create(ctx context.Context, title, slug string) (*models.Category, error) {
	if taken, _ := r.SlugTaken(ctx, slug, 0); taken {
		return nil, duplicate("categories.slug")
	}
	c := models.Category{ID: r.m.id(), Title: title, Slug: slug, CreatedAt: r.m.now()}
	c.UpdatedAt = c.CreatedAt
	r.m.data.categories[c.ID] = c
	return &c, nil
}

func (r memCategories) Update(ctx context.Context, id int64, title, slug string) error {
	if taken, _ := r.SlugTaken(ctx, slug, id); taken {
		return duplicate("categories.slug")
	}
	c := r.m.data.categories[id]
	c.Title, c.Slug, c.UpdatedAt = title, slug, r.m.now()
	r.m.data.categories[id] = c
	return nil
}

// Delete mirrors ON DELETE SET NULL on posts.category_id.
func (r memCategories) Delete(_ context.Context, id int64) (bool, error) {
	if _, ok := r.m.data.categories[id]; !ok {
		return false, nil
	}
	delete(r.m.data.categories, id)
	for pid, p := range r.m.data.posts {
		if p.CategoryID != nil && *p.CategoryID == id {
			p.CategoryID = nil
			r.m.data.posts[pid] = p
		}
	}
	return true, nil
}

// --- tags ---

type memTags struct{ m *memDB }

func (r memTags) List(_ context.Context) ([]models.Tag, error) {
	out := slices.Collect(maps.Values(r.m.data.tags))
	slices.SortFunc(out, func(a, b models.Tag) int { return strings.Compare(a.Title, b.Title) })
	return out, nil
}

func (r memTags) FindByID(_ context.Context, id int64) (*models.Tag, error) {
	t, ok := r.m.data.tags[id]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

func (r memTags) FindBySlug(_ context.Context, slug string) (*models.Tag, error) {
	for _, t := range r.m.data.tags {
		if t.Slug == slug {
			return &t, nil
		}
	}
	return nil, nil
}

func (r memTags) SlugTaken(_ context.Context, slug string, excludeID int64) (bool, error) {
	for _, t := range r.m.data.tags {
		if t.Slug == slug && t.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (r memTags) Create(ctx context.Context, title, slug string) (*models.Tag, error) {
	if taken, _ := r.SlugTaken(ctx, slug, 0); taken {
		return nil, duplicate("tags.slug")
	}
	t := models.Tag{ID: r.m.id(), Title: title, Slug: slug, CreatedAt: r.m.now()}
	t.UpdatedAt = t.CreatedAt
	r.m.data.tags[t.ID] = t
	return &t, nil
}

func (r memTags) Update(ctx context.Context, id int64, title, slug string) error {
	if taken, _ := r.SlugTaken(ctx, slug, id); taken {
		return duplicate("tags.slug")
	}
	t := r.m.data.tags[id]
	t.Title, t.Slug, t.UpdatedAt = title, slug, r.m.now()
	r.m.data.tags[id] = t
	return nil
}

func (r memTags) Delete(_ context.Context, id int64) (bool, error) {
	if _, ok := r.m.data.tags[id]; !ok {
		return false, nil
	}
	delete(r.m.data.tags, id)
	return true, nil
}

// --- users ---

type memUsers struct{ m *memDB }

func (r memUsers) FindByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range r.m.data.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, nil
}

func (r memUsers) FindByID(_ context.Context, id int64) (*models.User, error) {
	u, ok := r.m.data.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (r memUsers) List(_ context.Context) ([]models.User, error) {
	out := slices.Collect(maps.Values(r.m.data.users))
	slices.SortFunc(out, func(a, b models.User) int { return int(a.ID - b.ID) })
	return out, nil
}

func (r memUsers) Create(_ context.Context, name, email, hash string, isAdmin bool) (*models.User, error) {
	for _, u := range r.m.data.users {
		if u.Email == email {
			return nil, duplicate("users.email")
		}
	}
	u := models.User{ID: r.m.id(), Name: name, Email: email, PasswordHash: hash, IsAdmin: isAdmin, CreatedAt: r.m.now()}
	u.UpdatedAt = u.CreatedAt
	r.m.data.users[u.ID] = u
	return &u, nil
}

func (r memUsers) update(id int64, fn func(*models.User)) {
	u, ok := r.m.data.users[id]
	if !ok {
		return
	}
	fn(&u)
	u.UpdatedAt = r.m.now()
	r.m.data.users[id] = u
}

func (r memUsers) UpdateProfile(_ context.Context, id int64, name, email string) error {
	for _, u := range r.m.data.users {
		if u.Email == email && u.ID != id {
			return duplicate("users.email")
		}
	}
	r.update(id, func(u *models.User) { u.Name, u.Email = name, email })
	return nil
}

func (r memUsers) SetPasswordHash(_ context.Context, id int64, hash string) error {
	r.update(id, func(u *models.User) { u.PasswordHash = hash })
	return nil
}

func (r memUsers) SetAvatar(_ context.Context, id int64, avatar *string) error {
	if err := r.m.check("Users.SetAvatar"); err != nil {
		return err
	}
	r.update(id, func(u *models.User) { u.Avatar = avatar })
	return nil
}

func (r memUsers) SetAdmin(_ context.Context, id int64, admin bool) error {
	r.update(id, func(u *models.User) { u.IsAdmin = admin })
	return nil
}

func (r memUsers) SetBanned(_ context.Context, id int64, banned bool) error {
	r.update(id, func(u *models.User) { u.Banned = banned })
	return nil
}

// Delete mirrors ON DELETE SET NULL on posts.user_id and comments.user_id.
func (r memUsers) Delete(_ context.Context, id int64) (bool, error) {
	if _, ok := r.m.data.users[id]; !ok {
		return false, nil
	}
	delete(r.m.data.users, id)
	for pid, p := range r.m.data.posts {
		if p.AuthorID != nil && *p.AuthorID == id {
			p.AuthorID = nil
			r.m.data.posts[pid] = p
		}
	}
	for cid, c := range r.m.data.comments {
		if c.UserID != nil && *c.UserID == id {
			c.UserID = nil
			r.m.data.comments[cid] = c
		}
	}
	return true, nil
}

// --- comments ---

type memComments struct{ m *memDB }

func (r memComments) List(_ context.Context) ([]models.Comment, error) {
	out := slices.Collect(maps.Values(r.m.data.comments))
	slices.SortFunc(out, func(a, b models.Comment) int { return int(b.ID - a.ID) })
	return out, nil
}

func (r memComments) ListForPost(_ context.Context, postID int64, activeOnly bool) ([]models.Comment, error) {
	var out []models.Comment
	for _, c := range r.m.data.comments {
		if c.PostID != postID || (activeOnly && c.Status != models.CommentStatusActive) {
			continue
		}
		out = append(out, c)
	}
	slices.SortFunc(out, func(a, b models.Comment) int { return int(a.ID - b.ID) })
	return out, nil
}

func (r memComments) FindByID(_ context.Context, id int64) (*models.Comment, error) {
	c, ok := r.m.data.comments[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (r memComments) Create(_ context.Context, postID int64, userID *int64, text string) (*models.Comment, error) {
	c := models.Comment{
		ID: r.m.id(), PostID: postID, UserID: userID, Text: text,
		Status: models.CommentStatusInactive, CreatedAt: r.m.now(),
	}
	c.UpdatedAt = c.CreatedAt
	r.m.data.comments[c.ID] = c
	return &c, nil
}

func (r memComments) SetStatus(_ context.Context, id int64, status models.CommentStatus) error {
	c := r.m.data.comments[id]
	c.Status = status
	r.m.data.comments[id] = c
	return nil
}

func (r memComments) Delete(_ context.Context, id int64) (bool, error) {
	if _, ok := r.m.data.comments[id]; !ok {
		return false, nil
	}
	delete(r.m.data.comments, id)
	return true, nil
}

// --- subscriptions ---

type memSubscriptions struct{ m *memDB }

func (r memSubscriptions) Create(_ context.Context, email, token string) (*models.Subscription, error) {
	for _, s := range r.m.data.subscriptions {
		if s.Email == email {
			return nil, duplicate("subscriptions.email")
		}
	}
	s := models.Subscription{ID: r.m.id(), Email: email, Token: token, CreatedAt: r.m.now()}
	s.UpdatedAt = s.CreatedAt
	r.m.data.subscriptions[s.ID] = s
	return &s, nil
}

func (r memSubscriptions) FindByEmail(_ context.Context, email string) (*models.Subscription, error) {
	for _, s := range r.m.data.subscriptions {
		if s.Email == email {
			return &s, nil
		}
	}
	return nil, nil
}

func (r memSubscriptions) List(_ context.Context) ([]models.Subscription, error) {
	out := slices.Collect(maps.Values(r.m.data.subscriptions))
	slices.SortFunc(out, func(a, b models.Subscription) int { return int(b.ID - a.ID) })
	return out, nil
}

func (r memSubscriptions) Delete(_ context.Context, id int64) (bool, error) {
	if _, ok := r.m.data.subscriptions[id]; !ok {
		return false, nil
	}
	delete(r.m.data.subscriptions, id)
	return true, nil
}

// --- media ---

// memBackend keeps uploaded files in a map and can be told to fail.
type memBackend struct {
	files      map[string][]byte
	failPut    error
	failDelete error
}

func newMemBackend() *memBackend {
	return &memBackend{files: map[string][]byte{}}
}

func (b *memBackend) Put(_ context.Context, key, _ string, body io.Reader, _ int64) error {
	if b.failPut != nil {
		return b.failPut
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	b.files[key] = data
	return nil
}

func (b *memBackend) Delete(_ context.Context, key string) error {
	if b.failDelete != nil {
		return b.failDelete
	}
	delete(b.files, key)
	return nil
}

func (b *memBackend) URL(key string) string {
	return "/" + key
}

func (b *memBackend) has(filename string) bool {
	_, ok := b.files[media.Prefix+"/"+filename]
	return ok
}

func (b *memBackend) count() int {
	return len(b.files)
}

// pngUpload returns a tiny valid PNG as an upload.
func pngUpload(name string) *media.Upload {
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 1, 1))); err != nil {
		panic(err)
	}
	return &media.Upload{Filename: name, Body: &buf}
}

func bytesReader(s string) *bytes.Reader {
	return bytes.NewReader([]byte(s))
}
