// RigMatch - PC Build Matching and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rigmatch

package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/rigmatch/internal/logging"
	"github.com/tomtom215/rigmatch/internal/metrics"
	"github.com/tomtom215/rigmatch/internal/models"
)

// BreakerStore wraps a Store with a circuit breaker. When the catalog keeps
// failing the breaker opens and queries fail fast with ErrUnavailable instead
// of piling up on a sick database.
type BreakerStore struct {
	inner Store
	cb    *gobreaker.CircuitBreaker[interface{}]
	name  string
}

// NewBreakerStore wraps the given store with circuit breaker protection.
// Configuration:
// - Max 3 concurrent requests in half-open state
// - 1 minute measurement window
// - 2 minute timeout before attempting recovery
// - Opens after 60% failure rate with minimum 10 requests
func NewBreakerStore(inner Store) *BreakerStore {
	cbName := "catalog-duckdb"

	metrics.CircuitBreakerState.WithLabelValues(cbName).Set(0) // 0 = closed

	cb := gobreaker.NewCircuitBreaker[interface{}](gobreaker.Settings{
		Name:        cbName,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     2 * time.Minute,

		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 10 {
				return false
			}

			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			shouldTrip := failureRatio >= 0.6

			if shouldTrip {
				logging.Warn().Uint32("failures", counts.TotalFailures).Float64("failure_rate", failureRatio*100).Msg("[CIRCUIT BREAKER] Opening catalog circuit")
			}

			return shouldTrip
		},

		OnStateChange: func(name string, from, to gobreaker.State) {
			fromStr := stateToString(from)
			toStr := stateToString(to)

			logging.Info().Str("from", fromStr).Str("to", toStr).Msg("[CIRCUIT BREAKER] Catalog state transition")

			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, fromStr, toStr).Inc()
		},
	})

	return &BreakerStore{inner: inner, cb: cb, name: cbName}
}

// execute runs a catalog call through the circuit breaker and records metrics.
func (b *BreakerStore) execute(fn func() (interface{}, error)) (interface{}, error) {
	result, err := b.cb.Execute(fn)
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.CircuitBreakerRequests.WithLabelValues(b.name, "rejected").Inc()
			return nil, fmt.Errorf("%w: %s", ErrUnavailable, err)
		}
		metrics.CircuitBreakerRequests.WithLabelValues(b.name, "failure").Inc()
		return nil, err
	}

	metrics.CircuitBreakerRequests.WithLabelValues(b.name, "success").Inc()
	return result, nil
}

// QueryCandidates runs a filtered candidate query through the breaker.
func (b *BreakerStore) QueryCandidates(ctx context.Context, filter CandidateFilter) ([]models.CandidateConfiguration, error) {
	result, err := b.execute(func() (interface{}, error) {
		return b.inner.QueryCandidates(ctx, filter)
	})
	if err != nil {
		return nil, err
	}
	return result.([]models.CandidateConfiguration), nil
}

// GetConfiguration looks up one configuration through the breaker.
// Not-found responses do not count as breaker failures.
func (b *BreakerStore) GetConfiguration(ctx context.Context, id string) (*models.CandidateConfiguration, error) {
	result, err := b.execute(func() (interface{}, error) {
		cfg, err := b.inner.GetConfiguration(ctx, id)
		if errors.Is(err, ErrNotFound) {
			return (*models.CandidateConfiguration)(nil), nil
		}
		return cfg, err
	})
	if err != nil {
		return nil, err
	}
	cfg := result.(*models.CandidateConfiguration)
	if cfg == nil {
		return nil, ErrNotFound
	}
	return cfg, nil
}

type configPage struct {
	configs []models.CandidateConfiguration
	total   int
}

// ListConfigurations pages configurations through the breaker.
func (b *BreakerStore) ListConfigurations(ctx context.Context, page, pageSize int) ([]models.CandidateConfiguration, int, error) {
	result, err := b.execute(func() (interface{}, error) {
		configs, total, err := b.inner.ListConfigurations(ctx, page, pageSize)
		if err != nil {
			return nil, err
		}
		return configPage{configs: configs, total: total}, nil
	})
	if err != nil {
		return nil, 0, err
	}
	p := result.(configPage)
	return p.configs, p.total, nil
}

// ComponentsByIDs resolves components through the breaker.
func (b *BreakerStore) ComponentsByIDs(ctx context.Context, ids []string) (map[string]models.ComponentRecord, error) {
	result, err := b.execute(func() (interface{}, error) {
		return b.inner.ComponentsByIDs(ctx, ids)
	})
	if err != nil {
		return nil, err
	}
	return result.(map[string]models.ComponentRecord), nil
}

type componentPage struct {
	components []models.ComponentRecord
	total      int
}

// ListComponents pages components through the breaker.
func (b *BreakerStore) ListComponents(ctx context.Context, componentType string, page, pageSize int) ([]models.ComponentRecord, int, error) {
	result, err := b.execute(func() (interface{}, error) {
		components, total, err := b.inner.ListComponents(ctx, componentType, page, pageSize)
		if err != nil {
			return nil, err
		}
		return componentPage{components: components, total: total}, nil
	})
	if err != nil {
		return nil, 0, err
	}
	p := result.(componentPage)
	return p.components, p.total, nil
}

// Ping checks the backend health without going through the breaker, so health
// probes still see the real backend state while the circuit is open.
func (b *BreakerStore) Ping(ctx context.Context) error {
	return b.inner.Ping(ctx)
}

// State returns the current breaker state for health reporting.
func (b *BreakerStore) State() gobreaker.State {
	return b.cb.State()
}

// Close closes the wrapped store.
func (b *BreakerStore) Close() error {
	return b.inner.Close()
}

func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}
