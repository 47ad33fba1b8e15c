// Package router sets up all HTTP routes and middleware chains for the
// blog panel. It organizes routes into the public API and the admin panel,
// each with its own middleware stack.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"blogpanel/internal/handlers"
	"blogpanel/internal/middleware"
)

// Deps carries what the router wires together.
type Deps struct {
	Sessions middleware.SessionGetter
	Limiter  middleware.Allower
	Admin    *handlers.Admin
	Auth     *handlers.Auth
	Public   *handlers.Public

	// UploadDir is served under /uploads when files are kept on disk.
	// Empty when uploads live in object storage.
	UploadDir string

	// SecureCookies marks the CSRF cookie Secure.
	SecureCookies bool
}

// New creates and returns the configured Chi router with all middleware
// and route groups wired up.
func New(d Deps) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)
	r.Use(middleware.LoadSession(d.Sessions))

	r.Get("/health", healthHandler)

	if d.UploadDir != "" {
		r.Handle("/uploads/*", http.FileServer(http.Dir(d.UploadDir)))
	}

	// Public read API.
	r.Route("/api", func(r chi.Router) {
		r.Get("/posts", d.Public.Posts)
		r.Get("/posts/random", d.Public.Random)
		r.Get("/posts/{slug}", d.Public.Post)
		r.Get("/tags", d.Public.Tags)
		r.Get("/tags/{slug}/posts", d.Public.PostsByTag)
		r.Get("/categories", d.Public.Categories)
		r.Get("/categories/{slug}/posts", d.Public.PostsByCategory)

		r.With(middleware.RateLimit(d.Limiter, "comment")).Post("/comments", d.Public.Comment)
		r.With(middleware.RateLimit(d.Limiter, "subscribe")).Post("/subscribe", d.Public.Subscribe)
	})

	// Admin panel. Every state change needs the CSRF header.
	r.Route("/admin", func(r chi.Router) {
		r.Use(middleware.CSRF(d.SecureCookies))

		r.With(middleware.RateLimit(d.Limiter, "login")).Post("/login", d.Auth.Login)
		r.Post("/logout", d.Auth.Logout)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)

			r.Get("/me", d.Auth.Me)
			r.Get("/", d.Admin.Dashboard)

			r.Route("/posts", func(r chi.Router) {
				r.Get("/", d.Admin.PostsList)
				r.Post("/", d.Admin.PostCreate)
				r.Get("/{id}", d.Admin.PostGet)
				r.Put("/{id}", d.Admin.PostUpdate)
				r.Delete("/{id}", d.Admin.PostDelete)
				r.Post("/{id}/image", d.Admin.PostImage)
				r.Post("/{id}/category", d.Admin.PostCategory)
				r.Post("/{id}/tags", d.Admin.PostTags)
				r.Post("/{id}/status", d.Admin.PostStatus)
				r.Post("/{id}/featured", d.Admin.PostFeatured)
				r.Get("/{id}/comments", d.Admin.CommentsForPost)
			})

			r.Route("/categories", func(r chi.Router) {
				r.Get("/", d.Admin.CategoriesList)
				r.Post("/", d.Admin.CategoryCreate)
				r.Get("/{id}", d.Admin.CategoryGet)
				r.Put("/{id}", d.Admin.CategoryUpdate)
				r.Delete("/{id}", d.Admin.CategoryDelete)
			})

			r.Route("/tags", func(r chi.Router) {
				r.Get("/", d.Admin.TagsList)
				r.Post("/", d.Admin.TagCreate)
				r.Get("/{id}", d.Admin.TagGet)
				r.Put("/{id}", d.Admin.TagUpdate)
				r.Delete("/{id}", d.Admin.TagDelete)
			})

			r.Route("/comments", func(r chi.Router) {
				r.Get("/", d.Admin.CommentsList)
				r.Post("/{id}/toggle", d.Admin.CommentToggle)
				r.Delete("/{id}", d.Admin.CommentDelete)
			})

			r.Route("/subscriptions", func(r chi.Router) {
				r.Get("/", d.Admin.SubscriptionsList)
				r.Delete("/{id}", d.Admin.SubscriptionDelete)
			})

			// User management, admin only.
			r.Route("/users", func(r chi.Router) {
				r.Use(middleware.RequireAdmin)
				r.Get("/", d.Admin.UsersList)
				r.Post("/", d.Admin.UserCreate)
				r.Get("/{id}", d.Admin.UserGet)
				r.Put("/{id}", d.Admin.UserUpdate)
				r.Delete("/{id}", d.Admin.UserDelete)
				r.Post("/{id}/avatar", d.Admin.UserAvatar)
				r.Post("/{id}/admin", d.Admin.UserAdmin)
				r.Post("/{id}/ban", d.Admin.UserBan)
			})
		})
	})

	return r
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
