// RigMatch - PC Build Matching and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rigmatch

package engine

import "errors"

var (
	// ErrNoCandidates means every retrieval stage, including the
	// no-constraints fallback, came back empty.
	ErrNoCandidates = errors.New("engine: no candidate configurations found")

	// ErrInvalidProfile means the requirement profile failed validation.
	ErrInvalidProfile = errors.New("engine: invalid requirement profile")

	// ErrCatalogUnavailable means the catalog could not serve the request
	// even after the simplified retry.
	ErrCatalogUnavailable = errors.New("engine: catalog unavailable")

	// ErrScoringFailed means no candidate survived scoring.
	ErrScoringFailed = errors.New("engine: scoring produced no results")
)
