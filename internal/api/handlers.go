// RigMatch - PC Build Matching and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rigmatch

package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/tomtom215/rigmatch/internal/catalog"
	"github.com/tomtom215/rigmatch/internal/config"
	"github.com/tomtom215/rigmatch/internal/engine"
	"github.com/tomtom215/rigmatch/internal/events"
	"github.com/tomtom215/rigmatch/internal/logging"
)

// Handler holds dependencies for all HTTP handlers.
type Handler struct {
	engine  *engine.Engine
	catalog catalog.Store
	breaker *catalog.BreakerStore
	bus     *events.Bus
	cfg     config.APIConfig
	started time.Time
}

// NewHandler creates the handler set. breaker and bus may be nil in tests;
// the health and feedback endpoints degrade accordingly.
func NewHandler(eng *engine.Engine, cat catalog.Store, breaker *catalog.BreakerStore, bus *events.Bus, cfg config.APIConfig) *Handler {
	return &Handler{
		engine:  eng,
		catalog: cat,
		breaker: breaker,
		bus:     bus,
		cfg:     cfg,
		started: time.Now(),
	}
}

// Recommend handles POST /api/v1/recommendations.
func (h *Handler) Recommend(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req RecommendRequest
	if err := decodeJSON(r, &req); err != nil {
		rw.BadRequest(err.Error())
		return
	}

	result, err := h.engine.Recommend(r.Context(), req.RequirementProfile)
	if err != nil {
		switch {
		case errors.Is(err, engine.ErrInvalidProfile):
			rw.ValidationError("invalid requirement profile", err.Error())
		case errors.Is(err, engine.ErrNoCandidates):
			rw.Error(http.StatusNotFound, ErrCodeNoCandidates,
				"no configurations matched the requirements, even after relaxing constraints")
		case errors.Is(err, engine.ErrCatalogUnavailable):
			rw.ServiceUnavailable("configuration catalog is temporarily unavailable")
		default:
			logging.Ctx(r.Context()).Error().Err(err).Msg("Recommendation failed")
			rw.InternalError("failed to generate recommendations")
		}
		return
	}

	if result.CacheHit {
		w.Header().Set("X-Cache", "HIT")
	}
	rw.Success(result)
}

// SubmitFeedback handles POST /api/v1/feedback. The event is processed
// asynchronously, so acceptance only guarantees the submission was queued.
func (h *Handler) SubmitFeedback(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req FeedbackRequest
	if err := decodeJSON(r, &req); err != nil {
		rw.BadRequest(err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		rw.ValidationError("invalid feedback", err.Error())
		return
	}

	if _, err := h.catalog.GetConfiguration(r.Context(), req.ConfigurationID); err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			rw.NotFound("configuration not found: " + req.ConfigurationID)
			return
		}
		rw.ServiceUnavailable("configuration catalog is temporarily unavailable")
		return
	}

	event := events.FeedbackEvent{
		FeedbackID:      uuid.New().String(),
		ConfigurationID: req.ConfigurationID,
		SessionID:       req.SessionID,
		Rating:          req.Rating,
		Helpful:         req.Helpful,
		Comment:         req.Comment,
		SubmittedAt:     time.Now().UTC(),
	}

	if h.bus == nil {
		rw.ServiceUnavailable("feedback processing is not available")
		return
	}
	if err := h.bus.PublishFeedback(r.Context(), event); err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Feedback publish failed")
		rw.InternalError("failed to queue feedback")
		return
	}

	rw.Accepted(map[string]string{"feedback_id": event.FeedbackID})
}

// ListConfigurations handles GET /api/v1/configurations.
func (h *Handler) ListConfigurations(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	p := parsePageParams(r, h.cfg.DefaultPageSize, h.cfg.MaxPageSize)

	configs, total, err := h.catalog.ListConfigurations(r.Context(), p.Page, p.PageSize)
	if err != nil {
		h.catalogError(r, rw, err)
		return
	}

	rw.SuccessWithPagination(configs, &PaginationMeta{
		Total:    total,
		Count:    len(configs),
		Page:     p.Page,
		PageSize: p.PageSize,
		HasMore:  p.Page*p.PageSize < total,
	})
}

// GetConfiguration handles GET /api/v1/configurations/{id}.
func (h *Handler) GetConfiguration(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	id := chi.URLParam(r, "id")
	if id == "" {
		rw.BadRequest("configuration id is required")
		return
	}

	cfg, err := h.catalog.GetConfiguration(r.Context(), id)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			rw.NotFound("configuration not found: " + id)
			return
		}
		h.catalogError(r, rw, err)
		return
	}

	rw.Success(cfg)
}

// ListComponents handles GET /api/v1/components with an optional type filter.
func (h *Handler) ListComponents(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	p := parsePageParams(r, h.cfg.DefaultPageSize, h.cfg.MaxPageSize)
	componentType := r.URL.Query().Get("type")

	components, total, err := h.catalog.ListComponents(r.Context(), componentType, p.Page, p.PageSize)
	if err != nil {
		h.catalogError(r, rw, err)
		return
	}

	rw.SuccessWithPagination(components, &PaginationMeta{
		Total:    total,
		Count:    len(components),
		Page:     p.Page,
		PageSize: p.PageSize,
		HasMore:  p.Page*p.PageSize < total,
	})
}

// healthStatus is the GET /api/v1/health payload.
type healthStatus struct {
	Status        string `json:"status"`
	Catalog       string `json:"catalog"`
	BreakerState  string `json:"breaker_state,omitempty"`
	UptimeSeconds int64  `json:"uptime_seconds"`
}

// Health handles GET /api/v1/health with catalog connectivity detail.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	status := healthStatus{
		Status:        "ok",
		Catalog:       "ok",
		UptimeSeconds: int64(time.Since(h.started).Seconds()),
	}
	if h.breaker != nil {
		status.BreakerState = h.breaker.State().String()
	}

	if err := h.catalog.Ping(r.Context()); err != nil {
		status.Status = "degraded"
		status.Catalog = "unreachable"
		logging.Ctx(r.Context()).Warn().Err(err).Msg("Health check: catalog unreachable")
		rw.writeJSON(http.StatusServiceUnavailable, APIResponse{Success: false, Data: status})
		return
	}

	rw.Success(status)
}

// HealthLive handles GET /api/v1/health/live. Process liveness only.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	NewResponseWriter(w, r).Success(map[string]string{"status": "alive"})
}

// HealthReady handles GET /api/v1/health/ready. Ready means the catalog
// answers queries.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	if err := h.catalog.Ping(r.Context()); err != nil {
		rw.ServiceUnavailable("catalog not ready")
		return
	}
	rw.Success(map[string]string{"status": "ready"})
}

// catalogError maps catalog failures onto API error responses.
func (h *Handler) catalogError(r *http.Request, rw *ResponseWriter, err error) {
	if errors.Is(err, catalog.ErrUnavailable) {
		rw.ServiceUnavailable("configuration catalog is temporarily unavailable")
		return
	}
	logging.Ctx(r.Context()).Error().Err(err).Msg("Catalog query failed")
	rw.InternalError("catalog query failed")
}
