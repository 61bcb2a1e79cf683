// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/olegiv/landingpress/internal/cache"
	"github.com/olegiv/landingpress/internal/config"
	"github.com/olegiv/landingpress/internal/imaging"
	"github.com/olegiv/landingpress/internal/middleware"
	"github.com/olegiv/landingpress/internal/store"
	"github.com/olegiv/landingpress/internal/stripe"
)

// Deps carries everything the route tree needs.
type Deps struct {
	Cfg          *config.Config
	DB           *sql.DB
	ContentFile  *store.ContentFile
	Secrets      *store.SecretsFile
	Orders       *store.OrderStore
	Clients      *stripe.Cache
	ContentCache *cache.ContentCache
	Processor    *imaging.Processor
}

// NewRouter builds the complete route tree with its middleware stack.
func NewRouter(d Deps) http.Handler {
	protection := middleware.NewLoginProtection(middleware.DefaultLoginProtectionConfig())
	publicLimiter := middleware.NewGlobalRateLimiter(10.0, 20)

	contentHandler := NewContentHandler(d.ContentFile, d.ContentCache)
	uploadHandler := NewUploadHandler(d.Processor, d.Cfg.UploadMaxBytes)
	secretsHandler := NewSecretsHandler(d.Secrets)
	checkoutHandler := NewCheckoutHandler(d.ContentFile, d.Secrets, d.Orders, d.Clients, d.Cfg)
	loginHandler := NewLoginHandler(d.Cfg.AdminEmail, d.Cfg.AdminPassword, protection)
	healthHandler := NewHealthHandler(d.DB, d.Cfg.UploadsDir)

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(middleware.Compress(5))
	r.Use(chimw.GetHead)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(middleware.SecurityHeaders(middleware.DefaultSecurityHeadersConfig(d.Cfg.IsDevelopment())))
	r.Use(middleware.CORS(d.Cfg.CORSOrigins))

	r.Get("/health", healthHandler.Health)

	// Public surface
	r.Group(func(r chi.Router) {
		r.Use(publicLimiter.Middleware())
		r.Get("/api/content", contentHandler.Get)
		r.Post("/api/login", loginHandler.Login)
		r.Post("/create-checkout-session", checkoutHandler.CreateSession)
		r.Get("/session-status", checkoutHandler.SessionStatus)
		r.Post("/checkout-session/{id}/phone", checkoutHandler.SavePhone)
	})

	// Admin surface
	r.Group(func(r chi.Router) {
		r.Use(middleware.BasicAuth(d.Cfg.AdminEmail, d.Cfg.AdminPassword, protection))
		r.Put("/api/content", contentHandler.Put)
		r.Get("/api/content/form", contentHandler.Form)
		r.Post("/api/upload-image", uploadHandler.Upload)
		r.Get("/api/stripe-secrets", secretsHandler.Get)
		r.Put("/api/stripe-secrets", secretsHandler.Put)
	})

	// Uploaded images, long-lived client caching
	uploads := http.StripPrefix("/uploads/", http.FileServer(http.Dir(d.Cfg.UploadsDir)))
	r.With(middleware.StaticCache(86400)).Handle("/uploads/*", uploads)

	return r
}
