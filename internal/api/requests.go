// RigMatch - PC Build Matching and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rigmatch

package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/goccy/go-json"

	"github.com/tomtom215/rigmatch/internal/engine"
)

// maxRequestBody bounds request payload sizes. Requirement profiles and
// feedback submissions are small; anything near this limit is abuse.
const maxRequestBody = 64 * 1024

// RecommendRequest is the POST /recommendations payload.
type RecommendRequest struct {
	engine.RequirementProfile
}

// FeedbackRequest is the POST /feedback payload. Rating is optional; zero
// means not rated.
type FeedbackRequest struct {
	ConfigurationID string `json:"configuration_id"`
	Rating          int    `json:"rating,omitempty"`
	Helpful         bool   `json:"helpful"`
	Comment         string `json:"comment,omitempty"`
	SessionID       string `json:"session_id,omitempty"`
}

// Validate checks the feedback payload for well-formedness. Semantic checks
// against the catalog happen in the handler.
func (f *FeedbackRequest) Validate() error {
	if f.ConfigurationID == "" {
		return fmt.Errorf("configuration_id is required")
	}
	if f.Rating != 0 && (f.Rating < 1 || f.Rating > 5) {
		return fmt.Errorf("rating must be between 1 and 5, got %d", f.Rating)
	}
	if len(f.Comment) > 2000 {
		return fmt.Errorf("comment must not exceed 2000 characters")
	}
	return nil
}

// decodeJSON decodes a request body into dst, rejecting unknown fields and
// oversized payloads.
func decodeJSON(r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(nil, r.Body, maxRequestBody)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}

// pageParams holds normalized pagination query parameters.
type pageParams struct {
	Page     int
	PageSize int
}

// parsePageParams reads page and page_size query parameters, applying the
// configured defaults and caps. Out-of-range values clamp rather than error.
func parsePageParams(r *http.Request, defaultSize, maxSize int) pageParams {
	p := pageParams{Page: 1, PageSize: defaultSize}

	if raw := r.URL.Query().Get("page"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			p.Page = v
		}
	}
	if raw := r.URL.Query().Get("page_size"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			p.PageSize = v
		}
	}
	if p.PageSize > maxSize {
		p.PageSize = maxSize
	}
	return p
}
