// RigMatch - PC Build Matching and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rigmatch

package engine

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/rigmatch/internal/cache"
	"github.com/tomtom215/rigmatch/internal/catalog"
	"github.com/tomtom215/rigmatch/internal/config"
	"github.com/tomtom215/rigmatch/internal/logging"
	"github.com/tomtom215/rigmatch/internal/metrics"
	"github.com/tomtom215/rigmatch/internal/models"
)

// Cache key namespaces. Feedback-driven invalidation clears the
// recommendation namespace; component summaries survive until their TTL.
const (
	recommendationKeyPrefix = "rec"
	componentKeyPrefix      = "comp"
)

// Engine generates ranked PC build recommendations for a requirement profile.
// It is safe for concurrent use.
type Engine struct {
	catalog catalog.Store
	cache   cache.Store
	params  Parameters

	standard ScoringStrategy
	broad    ScoringStrategy

	defaultLimit    int
	maxLimit        int
	parallelScoring bool
	scoringTimeout  time.Duration
	resultTTL       time.Duration
	componentTTL    time.Duration
}

// New creates an engine with the given catalog and cache backends.
func New(cat catalog.Store, store cache.Store, engineCfg config.EngineConfig, cacheCfg config.CacheConfig) *Engine {
	params := DefaultParameters()
	if engineCfg.BudgetExpansion > 0 {
		params.BudgetExpansion = engineCfg.BudgetExpansion
	}

	return &Engine{
		catalog:         cat,
		cache:           store,
		params:          params,
		standard:        NewStandardScoring(params),
		broad:           NewBroadCompatibilityScoring(params),
		defaultLimit:    engineCfg.DefaultLimit,
		maxLimit:        engineCfg.MaxLimit,
		parallelScoring: engineCfg.ParallelScoring,
		scoringTimeout:  engineCfg.ScoringTimeout,
		resultTTL:       cacheCfg.ResultTTL,
		componentTTL:    cacheCfg.ComponentTTL,
	}
}

// CacheKey derives the deterministic cache key for a profile. Equivalent
// profiles (same constraints, any session, any list order) share a key.
func (e *Engine) CacheKey(profile RequirementProfile) string {
	normalized := profile.Normalized()
	if normalized.MaxRecommendations <= 0 {
		normalized.MaxRecommendations = e.defaultLimit
	}
	// Clamp like validate does, so every over-max request shares one entry.
	if normalized.MaxRecommendations > e.maxLimit {
		normalized.MaxRecommendations = e.maxLimit
	}
	return cache.GenerateKey(recommendationKeyPrefix, normalized)
}

// validate checks the profile and returns the effective result limit.
func (e *Engine) validate(profile RequirementProfile) (int, error) {
	if !profile.Purpose.Valid() {
		return 0, fmt.Errorf("%w: unknown purpose %q", ErrInvalidProfile, profile.Purpose)
	}
	if !profile.PerformanceLevel.Valid() {
		return 0, fmt.Errorf("%w: unknown performance level %q", ErrInvalidProfile, profile.PerformanceLevel)
	}
	if !profile.Budget.Valid() {
		return 0, fmt.Errorf("%w: budget min %.2f max %.2f", ErrInvalidProfile, profile.Budget.Min, profile.Budget.Max)
	}

	limit := profile.MaxRecommendations
	if limit <= 0 {
		limit = e.defaultLimit
	}
	if limit > e.maxLimit {
		limit = e.maxLimit
	}
	return limit, nil
}

// Recommend produces up to the requested number of ranked recommendations.
func (e *Engine) Recommend(ctx context.Context, profile RequirementProfile) (*Result, error) {
	start := time.Now()
	mode := "standard"
	if profile.SafeMode {
		mode = "safe"
	}

	limit, err := e.validate(profile)
	if err != nil {
		metrics.RecommendationFailures.WithLabelValues("invalid_profile").Inc()
		return nil, err
	}

	log := logging.Ctx(ctx)
	key := e.CacheKey(profile)

	if cached := e.cachedResult(ctx, key); cached != nil {
		log.Debug().Str("cache_key", key).Msg("Recommendation served from cache")
		metrics.RecordRecommendation(mode, true, time.Since(start))
		return cached, nil
	}
	metrics.RecordCacheMiss("recommendation")

	r := &retriever{catalog: e.catalog, params: e.params}
	retrieved, err := r.retrieve(ctx, profile, limit)
	if err != nil {
		switch {
		case errors.Is(err, ErrCatalogUnavailable):
			metrics.RecommendationFailures.WithLabelValues("catalog_unavailable").Inc()
		case errors.Is(err, ErrNoCandidates):
			metrics.RecommendationFailures.WithLabelValues("no_candidates").Inc()
		}
		return nil, err
	}

	components := e.fetchComponents(ctx, retrieved.candidates)

	scored := e.score(ctx, profile, retrieved, components)
	metrics.CandidatesScored.Observe(float64(len(retrieved.candidates)))
	if len(scored) == 0 {
		metrics.RecommendationFailures.WithLabelValues("scoring_failed").Inc()
		return nil, ErrScoringFailed
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].confidence > scored[j].confidence
	})
	if len(scored) > limit {
		scored = scored[:limit]
	}

	result := &Result{
		Recommendations: make([]Recommendation, 0, len(scored)),
		GeneratedAt:     time.Now().UTC(),
		SafeMode:        profile.SafeMode,
		FallbackType:    retrieved.stage.Tag(),
	}
	for _, sc := range scored {
		result.Recommendations = append(result.Recommendations, Recommendation{
			ConfigurationID: sc.candidate.ID,
			Name:            sc.candidate.Name,
			TotalPrice:      sc.candidate.TotalPrice,
			ConfidenceScore: sc.confidence,
			MatchReasons:    sc.reasons,
			TradeOffs:       sc.tradeOffs,
			Components:      e.componentSummaries(ctx, sc.candidate.ComponentIDs, components),
			FallbackType:    sc.stage.Tag(),
		})
	}

	e.storeResult(ctx, key, result)

	log.Info().
		Int("count", len(result.Recommendations)).
		Str("fallback", retrieved.stage.String()).
		Str("mode", mode).
		Dur("elapsed", time.Since(start)).
		Msg("Recommendations generated")
	metrics.RecordRecommendation(mode, false, time.Since(start))

	return result, nil
}

// cachedResult loads and decodes a cached result, or nil on miss or error.
// Cache failures degrade to recomputation, never to request failure.
func (e *Engine) cachedResult(ctx context.Context, key string) *Result {
	data, err := e.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, cache.ErrNotFound) {
			logging.Ctx(ctx).Warn().Err(err).Msg("Recommendation cache read failed")
			metrics.RecordCacheError("recommendation", "get")
		}
		return nil
	}

	var result Result
	if err := json.Unmarshal(data, &result); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("Discarding undecodable cached recommendation")
		metrics.RecordCacheError("recommendation", "decode")
		return nil
	}

	metrics.RecordCacheHit("recommendation")
	result.CacheHit = true
	return &result
}

// storeResult caches a computed result. Failures are logged and swallowed.
func (e *Engine) storeResult(ctx context.Context, key string, result *Result) {
	data, err := json.Marshal(result)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("Failed to encode recommendation for caching")
		return
	}
	if err := e.cache.Set(ctx, key, data, e.resultTTL); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("Recommendation cache write failed")
		metrics.RecordCacheError("recommendation", "set")
	}
}

// fetchComponents batch-loads the component records every candidate in the
// set references. A failed lookup degrades brand scoring and summaries to
// empty rather than failing the request.
func (e *Engine) fetchComponents(ctx context.Context, candidates []models.CandidateConfiguration) map[string]models.ComponentRecord {
	seen := make(map[string]struct{})
	var ids []string
	for _, c := range candidates {
		for _, id := range c.ComponentIDs {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}

	records, err := e.catalog.ComponentsByIDs(ctx, ids)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Int("ids", len(ids)).Msg("Component batch lookup failed, continuing without component data")
		return map[string]models.ComponentRecord{}
	}
	return records
}

// score runs every candidate through the active strategy, in parallel when
// configured. Skipped candidates are counted but never fail the batch.
func (e *Engine) score(
	ctx context.Context,
	profile RequirementProfile,
	retrieved retrievalResult,
	components map[string]models.ComponentRecord,
) []*scoredCandidate {
	strategy := e.standard
	if profile.SafeMode {
		strategy = e.broad
	}

	if e.scoringTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.scoringTimeout)
		defer cancel()
	}

	if !e.parallelScoring || len(retrieved.candidates) < 2 {
		return e.scoreSequential(ctx, strategy, profile, retrieved, components)
	}

	results := make([]*scoredCandidate, len(retrieved.candidates))
	var wg sync.WaitGroup

	for i, c := range retrieved.candidates {
		wg.Add(1)
		go func(i int, c models.CandidateConfiguration) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					logging.Ctx(ctx).Error().Interface("panic", r).Str("configuration_id", c.ID).Msg("Scoring panic recovered, skipping candidate")
					metrics.ScoringSkips.Inc()
				}
			}()

			sc, err := scoreCandidate(strategy, c, retrieved.stage, profile, components, e.params)
			if err != nil {
				e.recordSkip(ctx, c.ID, err)
				return
			}
			results[i] = sc
		}(i, c)
	}
	wg.Wait()

	scored := make([]*scoredCandidate, 0, len(results))
	for _, sc := range results {
		if sc != nil {
			scored = append(scored, sc)
		}
	}
	return scored
}

func (e *Engine) scoreSequential(
	ctx context.Context,
	strategy ScoringStrategy,
	profile RequirementProfile,
	retrieved retrievalResult,
	components map[string]models.ComponentRecord,
) []*scoredCandidate {
	scored := make([]*scoredCandidate, 0, len(retrieved.candidates))
	for _, c := range retrieved.candidates {
		sc, err := scoreCandidate(strategy, c, retrieved.stage, profile, components, e.params)
		if err != nil {
			e.recordSkip(ctx, c.ID, err)
			continue
		}
		scored = append(scored, sc)
	}
	return scored
}

func (e *Engine) recordSkip(ctx context.Context, id string, err error) {
	// Budget exclusions are expected filter behavior, only data problems are
	// worth a log line.
	if !errors.Is(err, errOutsideBudget) {
		logging.Ctx(ctx).Warn().Err(err).Str("configuration_id", id).Msg("Candidate skipped during scoring")
	}
	metrics.ScoringSkips.Inc()
}

// componentSummaries resolves display summaries for a configuration, backed
// by the component cache.
func (e *Engine) componentSummaries(ctx context.Context, componentIDs []string, records map[string]models.ComponentRecord) []models.ComponentSummary {
	if len(componentIDs) == 0 {
		return nil
	}

	sorted := append([]string(nil), componentIDs...)
	sort.Strings(sorted)
	key := cache.GenerateKey(componentKeyPrefix, sorted)

	if data, err := e.cache.Get(ctx, key); err == nil {
		var summaries []models.ComponentSummary
		if err := json.Unmarshal(data, &summaries); err == nil {
			metrics.RecordCacheHit("component")
			return summaries
		}
	}
	metrics.RecordCacheMiss("component")

	summaries := make([]models.ComponentSummary, 0, len(componentIDs))
	for _, id := range componentIDs {
		record, ok := records[id]
		if !ok {
			continue
		}
		summaries = append(summaries, record.Summary())
	}

	if data, err := json.Marshal(summaries); err == nil {
		if err := e.cache.Set(ctx, key, data, e.componentTTL); err != nil {
			metrics.RecordCacheError("component", "set")
		}
	}

	return summaries
}

// InvalidateResults clears every cached recommendation. Called when feedback
// or catalog changes make cached rankings stale.
func (e *Engine) InvalidateResults(ctx context.Context) (int, error) {
	count, err := e.cache.ClearPattern(ctx, recommendationKeyPrefix+":")
	if err != nil {
		return 0, fmt.Errorf("failed to invalidate recommendation cache: %w", err)
	}
	metrics.CacheInvalidations.Inc()
	logging.Ctx(ctx).Info().Int("cleared", count).Msg("Recommendation cache invalidated")
	return count, nil
}
