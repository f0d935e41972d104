// RigMatch - PC Build Matching and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rigmatch

package engine

import (
	"context"
	"fmt"
	"math"

	"github.com/tomtom215/rigmatch/internal/catalog"
	"github.com/tomtom215/rigmatch/internal/logging"
	"github.com/tomtom215/rigmatch/internal/metrics"
	"github.com/tomtom215/rigmatch/internal/models"
)

// retrievalResult carries the candidates and the stage that produced them.
// All candidates in one result share the same stage.
type retrievalResult struct {
	candidates []models.CandidateConfiguration
	stage      FallbackStage
}

// retriever turns a requirement profile into a candidate set, relaxing
// constraints step by step when strict retrieval comes up empty:
//
//	strict -> preferred_brands -> relaxed_performance -> expanded_budget -> no_constraints
//
// A strict query that underfills, even to zero, is first broadened (lower
// thresholds, bigger limit) and merged, which does not count as a fallback;
// the fallback machine starts only when the merged set is still empty.
type retriever struct {
	catalog catalog.Store
	params  Parameters
}

// retrieve returns scored-ready candidates for the profile. limit is the
// number of recommendations the caller ultimately wants; retrieval over-fetches
// so ranking has headroom.
func (r *retriever) retrieve(ctx context.Context, profile RequirementProfile, limit int) (retrievalResult, error) {
	minSuitability := r.params.purposeThreshold(profile.Purpose, profile.SafeMode)
	minPerformance := r.params.performanceThreshold(profile.PerformanceLevel, profile.SafeMode)

	log := logging.Ctx(ctx)
	log.Debug().
		Str("purpose", string(profile.Purpose)).
		Float64("min_suitability", minSuitability).
		Float64("min_performance", minPerformance).
		Bool("safe_mode", profile.SafeMode).
		Msg("Retrieving candidates")

	candidates, err := r.catalog.QueryCandidates(ctx, catalog.CandidateFilter{
		PriceMin:              profile.Budget.Min,
		PriceMax:              profile.Budget.Max,
		Purpose:               string(profile.Purpose),
		MinSuitability:        minSuitability,
		MinOverallPerformance: minPerformance,
		Limit:                 limit + r.params.RetrievalHeadroom,
	})
	if err != nil {
		// One simplified retry: price window only. If even that fails the
		// catalog is genuinely down.
		log.Warn().Err(err).Msg("Strict candidate query failed, retrying with price-only filter")
		candidates, err = r.catalog.QueryCandidates(ctx, catalog.CandidateFilter{
			PriceMin: profile.Budget.Min,
			PriceMax: profile.Budget.Max,
			Limit:    limit + r.params.FallbackExtra,
		})
		if err != nil {
			return retrievalResult{}, fmt.Errorf("%w: %s", ErrCatalogUnavailable, err)
		}
	} else if len(candidates) < limit {
		candidates = r.broaden(ctx, profile, limit, minSuitability, minPerformance, candidates)
	}

	if len(candidates) > 0 {
		metrics.RecordFallbackStage(StageStrict.String())
		return retrievalResult{candidates: candidates, stage: StageStrict}, nil
	}

	log.Warn().Msg("No candidates under strict filters, starting progressive fallback")
	return r.progressiveFallback(ctx, profile, limit)
}

// broaden reruns the query with lowered thresholds and merges the results
// after the strict ones, deduplicated by ID.
func (r *retriever) broaden(
	ctx context.Context,
	profile RequirementProfile,
	limit int,
	minSuitability, minPerformance float64,
	strict []models.CandidateConfiguration,
) []models.CandidateConfiguration {
	broadened, err := r.catalog.QueryCandidates(ctx, catalog.CandidateFilter{
		PriceMin:              profile.Budget.Min,
		PriceMax:              profile.Budget.Max,
		Purpose:               string(profile.Purpose),
		MinSuitability:        math.Max(r.params.BroadenFloor, minSuitability-r.params.BroadenDelta),
		MinOverallPerformance: math.Max(r.params.BroadenFloor, minPerformance-r.params.BroadenDelta),
		Limit:                 limit + r.params.BroadenExtra,
	})
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("Broadened query failed, keeping strict results")
		return strict
	}

	seen := make(map[string]struct{}, len(strict)+len(broadened))
	merged := make([]models.CandidateConfiguration, 0, len(strict)+len(broadened))
	for _, c := range append(strict, broadened...) {
		if _, ok := seen[c.ID]; ok {
			continue
		}
		seen[c.ID] = struct{}{}
		merged = append(merged, c)
	}

	maxCount := limit + r.params.RetrievalHeadroom
	if len(merged) > maxCount {
		merged = merged[:maxCount]
	}
	return merged
}

// progressiveFallback walks the relaxation stages in order and returns the
// first non-empty result. Individual stage failures are logged and skipped;
// exhausting every stage yields ErrNoCandidates.
func (r *retriever) progressiveFallback(ctx context.Context, profile RequirementProfile, limit int) (retrievalResult, error) {
	log := logging.Ctx(ctx)

	// Fallback thresholds always start from the standard tables; safe-mode
	// retrieval was already permissive before reaching this point.
	minSuitability := r.params.purposeThreshold(profile.Purpose, false)
	minPerformance := r.params.performanceThreshold(profile.PerformanceLevel, false)

	type stageQuery struct {
		stage  FallbackStage
		filter catalog.CandidateFilter
		active bool
	}

	expansion := math.Floor(profile.Budget.Range() * r.params.BudgetExpansion)

	stages := []stageQuery{
		{
			// Brand preferences never constrain retrieval, so this stage
			// reruns the strict filter; its value is the explicit tag telling
			// the requester their brand preference was set aside.
			stage: StagePreferredBrands,
			filter: catalog.CandidateFilter{
				PriceMin:              profile.Budget.Min,
				PriceMax:              profile.Budget.Max,
				Purpose:               string(profile.Purpose),
				MinSuitability:        minSuitability,
				MinOverallPerformance: minPerformance,
				Limit:                 limit + r.params.FallbackExtra,
			},
			active: len(profile.PreferredBrands) > 0,
		},
		{
			stage: StageRelaxedPerformance,
			filter: catalog.CandidateFilter{
				PriceMin:              profile.Budget.Min,
				PriceMax:              profile.Budget.Max,
				Purpose:               string(profile.Purpose),
				MinSuitability:        math.Max(r.params.RelaxationFloor, minSuitability-r.params.RelaxationDelta),
				MinOverallPerformance: math.Max(r.params.RelaxationFloor, minPerformance-r.params.RelaxationDelta),
				Limit:                 limit + r.params.FallbackExtra,
			},
			active: true,
		},
		{
			stage: StageExpandedBudget,
			filter: catalog.CandidateFilter{
				PriceMin:              math.Max(0, profile.Budget.Min-expansion),
				PriceMax:              profile.Budget.Max + expansion,
				Purpose:               string(profile.Purpose),
				MinSuitability:        minSuitability,
				MinOverallPerformance: minPerformance,
				Limit:                 limit + r.params.FallbackExtra,
			},
			active: true,
		},
		{
			stage: StageNoConstraints,
			filter: catalog.CandidateFilter{
				PriceMin: profile.Budget.Min,
				PriceMax: profile.Budget.Max,
				Limit:    limit + r.params.FallbackExtra,
			},
			active: true,
		},
	}

	for _, s := range stages {
		if !s.active {
			continue
		}

		candidates, err := r.catalog.QueryCandidates(ctx, s.filter)
		if err != nil {
			log.Warn().Err(err).Str("stage", s.stage.String()).Msg("Fallback query failed, trying next stage")
			continue
		}
		if len(candidates) == 0 {
			continue
		}

		log.Info().Str("stage", s.stage.String()).Int("count", len(candidates)).Msg("Fallback stage produced candidates")
		metrics.RecordFallbackStage(s.stage.String())
		return retrievalResult{candidates: candidates, stage: s.stage}, nil
	}

	return retrievalResult{}, ErrNoCandidates
}
