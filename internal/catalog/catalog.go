// RigMatch - PC Build Matching and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rigmatch

// Package catalog provides read access to the configuration and component
// catalog stored in DuckDB. The recommendation engine talks to the Store
// interface; the circuit breaker wrapper in breaker.go guards the live
// database behind it.
package catalog

import (
	"context"
	"errors"

	"github.com/tomtom215/rigmatch/internal/models"
)

// ErrUnavailable indicates the catalog backend cannot serve queries right now,
// either because the database failed or the circuit breaker is open.
var ErrUnavailable = errors.New("catalog: unavailable")

// ErrNotFound indicates a configuration or component does not exist.
var ErrNotFound = errors.New("catalog: not found")

// CandidateFilter selects candidate configurations for scoring.
// Zero thresholds mean unfiltered; the price bounds always apply when
// PriceMax is positive.
type CandidateFilter struct {
	PriceMin float64
	PriceMax float64

	// Purpose selects which suitability column the threshold and the
	// relevance ordering use. Empty purpose disables the suitability filter.
	Purpose        string
	MinSuitability float64

	MinOverallPerformance float64

	Limit int
}

// PriceOnly reports whether the filter carries no purpose or performance
// constraints, i.e. only the price window applies.
func (f CandidateFilter) PriceOnly() bool {
	return f.Purpose == "" && f.MinSuitability <= 0 && f.MinOverallPerformance <= 0
}

// Store is the catalog read contract.
type Store interface {
	// QueryCandidates returns configurations matching the filter, ordered by
	// relevance (suitability-weighted) descending, then price ascending.
	QueryCandidates(ctx context.Context, filter CandidateFilter) ([]models.CandidateConfiguration, error)

	// GetConfiguration returns one configuration by ID, or ErrNotFound.
	GetConfiguration(ctx context.Context, id string) (*models.CandidateConfiguration, error)

	// ListConfigurations returns a page of configurations with the total count.
	ListConfigurations(ctx context.Context, page, pageSize int) ([]models.CandidateConfiguration, int, error)

	// ComponentsByIDs resolves component records for a batch of IDs.
	// Missing IDs are simply absent from the result map.
	ComponentsByIDs(ctx context.Context, ids []string) (map[string]models.ComponentRecord, error)

	// ListComponents returns a page of components, optionally filtered by
	// component type, with the total count.
	ListComponents(ctx context.Context, componentType string, page, pageSize int) ([]models.ComponentRecord, int, error)

	// Ping verifies the backend is reachable.
	Ping(ctx context.Context) error

	Close() error
}
