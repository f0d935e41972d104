// RigMatch - PC Build Matching and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rigmatch

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/rigmatch/internal/config"
	"github.com/tomtom215/rigmatch/internal/metrics"
	"github.com/tomtom215/rigmatch/internal/middleware"
)

// Router wires handlers into the HTTP route tree.
type Router struct {
	handler     *Handler
	cfg         config.APIConfig
	feedbackLim *middleware.RateLimiter
}

// NewRouter creates a router around the given handler set.
func NewRouter(handler *Handler, cfg config.APIConfig) *Router {
	var feedbackLim *middleware.RateLimiter
	if !cfg.RateLimitDisabled {
		// Feedback writes get a tighter token bucket than read routes.
		feedbackLim = middleware.NewRateLimiter(10, time.Minute)
	}
	return &Router{handler: handler, cfg: cfg, feedbackLim: feedbackLim}
}

// Close releases router-owned resources.
func (rt *Router) Close() {
	if rt.feedbackLim != nil {
		rt.feedbackLim.Close()
	}
}

// Setup builds the complete route tree.
func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware, applied to all routes in order.
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: rt.cfg.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "X-Request-ID"},
		MaxAge:         86400,
	}))

	// Health endpoints: permissive limits for monitoring tools.
	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(rt.rateLimit(1000, time.Minute))
		r.Get("/", rt.handler.Health)
		r.Get("/live", rt.handler.HealthLive)
		r.Get("/ready", rt.handler.HealthReady)
	})

	// Recommendation and catalog read endpoints.
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(rt.rateLimit(rt.cfg.RateLimitReqs, rt.cfg.RateLimitWindow))
		r.Use(middleware.PrometheusMetrics)

		r.Post("/recommendations", rt.handler.Recommend)
		r.Get("/configurations", rt.handler.ListConfigurations)
		r.Get("/configurations/{id}", rt.handler.GetConfiguration)
		r.Get("/components", rt.handler.ListComponents)

		// Feedback is a write path with its own burst-shaped limiter.
		r.Group(func(r chi.Router) {
			if rt.feedbackLim != nil {
				r.Use(rt.feedbackLim.Middleware)
			}
			r.Post("/feedback", rt.handler.SubmitFeedback)
		})
	})

	// Observability.
	r.Handle("/metrics", promhttp.Handler())

	return r
}

// rateLimit returns a fixed-window per-IP limiter, or a no-op when rate
// limiting is disabled.
func (rt *Router) rateLimit(requests int, window time.Duration) func(http.Handler) http.Handler {
	if rt.cfg.RateLimitDisabled {
		return func(next http.Handler) http.Handler { return next }
	}
	return httprate.Limit(
		requests,
		window,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			metrics.APIRateLimitHits.WithLabelValues(r.URL.Path).Inc()
			NewResponseWriter(w, r).Error(http.StatusTooManyRequests, ErrCodeTooManyRequests,
				"rate limit exceeded")
		}),
	)
}
