// Package router sets up all HTTP routes and middleware chains for the
// shop admin API. Routes are grouped by authentication level: the public
// storefront endpoints, the auth endpoints, and the protected admin API
// behind session, CSRF and 2FA checks.
package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"shopadmin/internal/handlers"
	"shopadmin/internal/middleware"
	"shopadmin/internal/models"
	"shopadmin/internal/session"
)

// Deps carries everything the router wires together.
type Deps struct {
	Sessions *session.Store

	Auth       *handlers.Auth
	Categories *handlers.Category
	Products   *handlers.Product
	Profile    *handlers.Profile
	Contacts   *handlers.Contact
	Media      *handlers.Media
	Users      *handlers.Users

	// SecureCookies marks the CSRF cookie Secure; enabled behind TLS.
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

	// Health check, no auth, no CSRF.
	r.Get("/health", healthHandler)

	// Brute-force protection for the unauthenticated write endpoints.
	loginLimiter := middleware.NewRateLimiter(10, time.Minute)
	contactLimiter := middleware.NewRateLimiter(5, time.Minute)

	csrf := middleware.NewCSRF(d.SecureCookies)

	r.Route("/api", func(r chi.Router) {
		r.Use(csrf)

		// Storefront contact form, the only unauthenticated write.
		r.With(contactLimiter.Middleware).Post("/contact", d.Contacts.Submit)

		r.Route("/auth", func(r chi.Router) {
			r.With(loginLimiter.Middleware).Post("/login", d.Auth.Login)
			r.Post("/logout", d.Auth.Logout)

			// 2FA endpoints require a session but NOT completed 2FA:
			// this is where a fresh login completes it.
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAuth)
				r.Get("/me", d.Auth.Me)
				r.Post("/2fa/setup", d.Auth.TwoFASetup)
				r.Post("/2fa/verify", d.Auth.TwoFAVerify)
			})
		})

		// Authenticated, 2FA-verified admin API.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Use(middleware.Require2FA)

			r.Route("/categories", func(r chi.Router) {
				view := middleware.RequirePermission(func(p models.Permission) bool { return p.CanViewCategory })
				create := middleware.RequirePermission(func(p models.Permission) bool { return p.CanCreateCategory })
				edit := middleware.RequirePermission(func(p models.Permission) bool { return p.CanEditCategory })
				del := middleware.RequirePermission(func(p models.Permission) bool { return p.CanDeleteCategory })

				r.With(view).Get("/", d.Categories.List)
				r.With(view).Get("/tree", d.Categories.Tree)
				r.With(view).Get("/rows", d.Categories.Rows)
				r.With(view).Get("/roots", d.Categories.Roots)
				r.With(view).Get("/search", d.Categories.Search)
				r.With(view).Get("/parent-options", d.Categories.ParentOptions)
				r.With(view).Get("/{id}", d.Categories.Get)
				r.With(view).Get("/{id}/children", d.Categories.Children)
				r.With(view).Get("/{id}/breadcrumb", d.Categories.Breadcrumb)
				r.With(view).Get("/{id}/delete-impact", d.Categories.DeleteImpact)

				r.With(create).Post("/", d.Categories.Create)
				r.With(edit).Put("/{id}", d.Categories.Update)
				r.With(edit).Post("/reorder", d.Categories.Reorder)
				r.With(del).Delete("/{id}", d.Categories.Delete)
			})

			r.Route("/products", func(r chi.Router) {
				view := middleware.RequirePermission(func(p models.Permission) bool { return p.CanViewProduct })
				create := middleware.RequirePermission(func(p models.Permission) bool { return p.CanCreateProduct })
				edit := middleware.RequirePermission(func(p models.Permission) bool { return p.CanEditProduct })
				del := middleware.RequirePermission(func(p models.Permission) bool { return p.CanDeleteProduct })

				r.With(view).Get("/", d.Products.List)
				r.With(view).Get("/{id}", d.Products.Get)

				r.With(create).Post("/", d.Products.Create)
				r.With(edit).Put("/{id}", d.Products.Update)
				r.With(edit).Post("/{id}/images", d.Products.AddImage)
				r.With(edit).Delete("/{id}/images/{imageID}", d.Products.RemoveImage)
				r.With(del).Delete("/{id}", d.Products.Delete)
			})

			r.Route("/profile", func(r chi.Router) {
				edit := middleware.RequirePermission(func(p models.Permission) bool { return p.CanEditSettings })
				r.Get("/", d.Profile.Get)
				r.With(edit).Put("/", d.Profile.Update)
			})

			r.Route("/contacts", func(r chi.Router) {
				view := middleware.RequirePermission(func(p models.Permission) bool { return p.CanViewContacts })
				manage := middleware.RequirePermission(func(p models.Permission) bool { return p.CanManageContacts })

				r.With(view).Get("/", d.Contacts.List)
				r.With(view).Get("/{id}", d.Contacts.Get)
				r.With(manage).Put("/{id}/status", d.Contacts.SetStatus)
				r.With(manage).Delete("/{id}", d.Contacts.Delete)
			})

			r.Route("/media", func(r chi.Router) {
				edit := middleware.RequirePermission(func(p models.Permission) bool { return p.CanEditProduct })

				r.Get("/", d.Media.List)
				r.Get("/{id}", d.Media.Get)
				r.Get("/{id}/file", d.Media.Serve)
				r.With(edit).Post("/", d.Media.Upload)
				r.With(edit).Delete("/{id}", d.Media.Delete)
			})

			// Account management, admin only.
			r.Route("/users", func(r chi.Router) {
				r.Use(middleware.RequireAdmin)
				r.Get("/", d.Users.List)
				r.Post("/", d.Users.Create)
				r.Put("/{id}/role", d.Users.UpdateRole)
				r.Post("/{id}/reset-2fa", d.Users.ResetTOTP)
				r.Delete("/{id}", d.Users.Delete)
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
