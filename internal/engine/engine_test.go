// RigMatch - PC Build Matching and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rigmatch

package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tomtom215/rigmatch/internal/cache"
	"github.com/tomtom215/rigmatch/internal/catalog"
	"github.com/tomtom215/rigmatch/internal/config"
	"github.com/tomtom215/rigmatch/internal/models"
)

func newTestEngine(cat catalog.Store) (*Engine, *cache.MemoryStore) {
	store := cache.NewMemoryStore()
	e := New(cat, store, config.EngineConfig{
		DefaultLimit:    5,
		MaxLimit:        20,
		ParallelScoring: true,
		ScoringTimeout:  5 * time.Second,
		BudgetExpansion: 0.15,
	}, config.CacheConfig{
		ResultTTL:    time.Minute,
		ComponentTTL: time.Minute,
	})
	return e, store
}

func gradedCandidates() []models.CandidateConfiguration {
	mk := func(id string, price, gaming, overall float64) models.CandidateConfiguration {
		return models.CandidateConfiguration{
			ID:                id,
			Name:              id,
			TotalPrice:        price,
			SuitabilityScores: map[string]float64{"gaming": gaming},
			Performance:       models.PerformanceProfile{Overall: overall, CPU: overall, GPU: overall, RAM: overall, Storage: overall},
			ComponentIDs:      []string{"cpu-1", "gpu-1"},
		}
	}
	return []models.CandidateConfiguration{
		mk("mediocre", 900, 55, 50),
		mk("excellent", 1000, 95, 90),
		mk("good", 1100, 75, 70),
		mk("weak", 850, 40, 35),
	}
}

func TestRecommendRanksByConfidence(t *testing.T) {
	cat := &fakeCatalog{
		respond: func(f catalog.CandidateFilter) ([]models.CandidateConfiguration, error) {
			return gradedCandidates(), nil
		},
		components: testComponents(),
	}
	e, _ := newTestEngine(cat)

	profile := gamingProfile(800, 1200)
	profile.MaxRecommendations = 3

	result, err := e.Recommend(context.Background(), profile)
	if err != nil {
		t.Fatalf("Recommend failed: %v", err)
	}

	if len(result.Recommendations) != 3 {
		t.Fatalf("got %d recommendations, want 3", len(result.Recommendations))
	}
	if result.Recommendations[0].ConfigurationID != "excellent" {
		t.Errorf("top pick = %s, want excellent", result.Recommendations[0].ConfigurationID)
	}
	for i := 1; i < len(result.Recommendations); i++ {
		if result.Recommendations[i].ConfidenceScore > result.Recommendations[i-1].ConfidenceScore {
			t.Errorf("recommendations not sorted by confidence at index %d", i)
		}
	}
	if result.FallbackType != "" {
		t.Errorf("strict retrieval should carry no fallback type, got %q", result.FallbackType)
	}
	if result.CacheHit {
		t.Error("first call should not be a cache hit")
	}
}

func TestRecommendAttachesComponentSummaries(t *testing.T) {
	cat := &fakeCatalog{
		respond: func(f catalog.CandidateFilter) ([]models.CandidateConfiguration, error) {
			return gradedCandidates(), nil
		},
		components: testComponents(),
	}
	e, _ := newTestEngine(cat)

	result, err := e.Recommend(context.Background(), gamingProfile(800, 1200))
	if err != nil {
		t.Fatalf("Recommend failed: %v", err)
	}

	top := result.Recommendations[0]
	if len(top.Components) != 2 {
		t.Fatalf("got %d component summaries, want 2", len(top.Components))
	}
	if top.Components[0].Name == "" || top.Components[0].Brand == "" {
		t.Errorf("component summary incomplete: %+v", top.Components[0])
	}
}

func TestRecommendCacheRoundTrip(t *testing.T) {
	cat := &fakeCatalog{
		respond: func(f catalog.CandidateFilter) ([]models.CandidateConfiguration, error) {
			return gradedCandidates(), nil
		},
		components: testComponents(),
	}
	e, _ := newTestEngine(cat)
	ctx := context.Background()
	profile := gamingProfile(800, 1200)

	first, err := e.Recommend(ctx, profile)
	if err != nil {
		t.Fatalf("first Recommend failed: %v", err)
	}
	queriesAfterFirst := len(cat.queries)

	second, err := e.Recommend(ctx, profile)
	if err != nil {
		t.Fatalf("second Recommend failed: %v", err)
	}

	if !second.CacheHit {
		t.Error("second identical request should hit the cache")
	}
	if len(cat.queries) != queriesAfterFirst {
		t.Error("cache hit should not query the catalog")
	}
	if len(second.Recommendations) != len(first.Recommendations) {
		t.Errorf("cached result has %d recommendations, original %d", len(second.Recommendations), len(first.Recommendations))
	}
	if second.Recommendations[0].ConfidenceScore != first.Recommendations[0].ConfidenceScore {
		t.Error("cached confidence differs from computed")
	}
}

func TestRecommendCacheKeyIgnoresSessionAndOrder(t *testing.T) {
	cat := &fakeCatalog{respond: func(f catalog.CandidateFilter) ([]models.CandidateConfiguration, error) {
		return gradedCandidates(), nil
	}}
	e, _ := newTestEngine(cat)

	a := gamingProfile(800, 1200)
	a.PreferredBrands = []string{"NVIDIA", "amd"}
	a.SessionID = "session-1"

	b := gamingProfile(800, 1200)
	b.PreferredBrands = []string{"AMD", "nvidia"}
	b.SessionID = "session-2"

	if e.CacheKey(a) != e.CacheKey(b) {
		t.Error("equivalent profiles should share a cache key")
	}

	c := gamingProfile(800, 1300)
	if e.CacheKey(a) == e.CacheKey(c) {
		t.Error("different budgets should produce different cache keys")
	}

	d := gamingProfile(800, 1200)
	d.SafeMode = true
	if e.CacheKey(a) == e.CacheKey(d) {
		t.Error("safe mode should produce a different cache key")
	}
}

func TestRecommendCacheKeyClampsLimit(t *testing.T) {
	cat := &fakeCatalog{respond: func(f catalog.CandidateFilter) ([]models.CandidateConfiguration, error) {
		return gradedCandidates(), nil
	}}
	e, _ := newTestEngine(cat)

	// Limits beyond the maximum all compute the same clamped result, so they
	// must share one cache entry.
	a := gamingProfile(800, 1200)
	a.MaxRecommendations = 100
	b := gamingProfile(800, 1200)
	b.MaxRecommendations = 500
	if e.CacheKey(a) != e.CacheKey(b) {
		t.Error("over-max limits should share a cache key")
	}

	c := gamingProfile(800, 1200)
	c.MaxRecommendations = 20 // maxLimit itself
	if e.CacheKey(a) != e.CacheKey(c) {
		t.Error("over-max limit should share the max-limit cache key")
	}

	d := gamingProfile(800, 1200)
	d.MaxRecommendations = 3
	if e.CacheKey(a) == e.CacheKey(d) {
		t.Error("distinct in-range limits should keep distinct cache keys")
	}
}

func TestRecommendInvalidProfile(t *testing.T) {
	cat := &fakeCatalog{respond: func(f catalog.CandidateFilter) ([]models.CandidateConfiguration, error) {
		return nil, nil
	}}
	e, _ := newTestEngine(cat)
	ctx := context.Background()

	cases := []RequirementProfile{
		{Purpose: "mining", Budget: Budget{Min: 800, Max: 1200}, PerformanceLevel: LevelHigh},
		{Purpose: PurposeGaming, Budget: Budget{Min: 800, Max: 1200}, PerformanceLevel: "extreme"},
		{Purpose: PurposeGaming, Budget: Budget{Min: 1200, Max: 800}, PerformanceLevel: LevelHigh},
		{Purpose: PurposeGaming, Budget: Budget{Min: 0, Max: 0}, PerformanceLevel: LevelHigh},
	}

	for _, profile := range cases {
		if _, err := e.Recommend(ctx, profile); !errors.Is(err, ErrInvalidProfile) {
			t.Errorf("profile %+v: err = %v, want ErrInvalidProfile", profile, err)
		}
	}
	if len(cat.queries) != 0 {
		t.Error("invalid profiles should never reach the catalog")
	}
}

func TestRecommendExpandedBudgetKeepsOutOfWindowResults(t *testing.T) {
	outOfBudget := models.CandidateConfiguration{
		ID:                "stretch",
		Name:              "Stretch Build",
		TotalPrice:        1320, // outside 800-1200, inside the expanded window
		SuitabilityScores: map[string]float64{"gaming": 80},
		Performance:       models.PerformanceProfile{Overall: 80, CPU: 80, GPU: 80, RAM: 80, Storage: 80},
	}

	cat := &fakeCatalog{}
	cat.respond = func(f catalog.CandidateFilter) ([]models.CandidateConfiguration, error) {
		// Only the expanded-budget window finds anything.
		if f.PriceMax > 1200 {
			return []models.CandidateConfiguration{outOfBudget}, nil
		}
		return nil, nil
	}
	e, _ := newTestEngine(cat)

	result, err := e.Recommend(context.Background(), gamingProfile(800, 1200))
	if err != nil {
		t.Fatalf("Recommend failed: %v", err)
	}

	if result.FallbackType != "expanded_budget" {
		t.Errorf("fallback type = %q, want expanded_budget", result.FallbackType)
	}
	if len(result.Recommendations) != 1 {
		t.Fatalf("got %d recommendations, want the out-of-window candidate", len(result.Recommendations))
	}

	rec := result.Recommendations[0]
	if rec.FallbackType != "expanded_budget" {
		t.Errorf("recommendation fallback type = %q, want expanded_budget", rec.FallbackType)
	}

	found := false
	for _, reason := range rec.MatchReasons {
		if reason.Factor == FactorFallbackNote {
			found = true
		}
	}
	if !found {
		t.Error("expanded-budget result should carry a fallback note")
	}
}

func TestRecommendNoCandidates(t *testing.T) {
	cat := &fakeCatalog{respond: func(f catalog.CandidateFilter) ([]models.CandidateConfiguration, error) {
		return nil, nil
	}}
	e, _ := newTestEngine(cat)

	_, err := e.Recommend(context.Background(), gamingProfile(800, 1200))
	if !errors.Is(err, ErrNoCandidates) {
		t.Errorf("err = %v, want ErrNoCandidates", err)
	}
}

func TestRecommendCatalogDown(t *testing.T) {
	cat := &fakeCatalog{respond: func(f catalog.CandidateFilter) ([]models.CandidateConfiguration, error) {
		return nil, errors.New("connection refused")
	}}
	e, _ := newTestEngine(cat)

	_, err := e.Recommend(context.Background(), gamingProfile(800, 1200))
	if !errors.Is(err, ErrCatalogUnavailable) {
		t.Errorf("err = %v, want ErrCatalogUnavailable", err)
	}
}

func TestRecommendSafeMode(t *testing.T) {
	cat := &fakeCatalog{
		respond: func(f catalog.CandidateFilter) ([]models.CandidateConfiguration, error) {
			return gradedCandidates(), nil
		},
		components: testComponents(),
	}
	e, _ := newTestEngine(cat)

	profile := gamingProfile(800, 1200)
	profile.SafeMode = true

	result, err := e.Recommend(context.Background(), profile)
	if err != nil {
		t.Fatalf("Recommend failed: %v", err)
	}
	if !result.SafeMode {
		t.Error("result should be flagged safe mode")
	}

	// Floored aspect scores keep every safe-mode confidence comfortably high:
	// worst case is 60*0.4 + 60*0.3 + 65*0.2 = 55.
	for _, rec := range result.Recommendations {
		if rec.ConfidenceScore < 55 {
			t.Errorf("safe mode confidence %.1f below floor for %s", rec.ConfidenceScore, rec.ConfigurationID)
		}
	}
}

func TestRecommendLimitClamping(t *testing.T) {
	cat := &fakeCatalog{respond: func(f catalog.CandidateFilter) ([]models.CandidateConfiguration, error) {
		return gradedCandidates(), nil
	}}
	e, _ := newTestEngine(cat)
	ctx := context.Background()

	// Zero limit uses the default.
	profile := gamingProfile(800, 1200)
	result, err := e.Recommend(ctx, profile)
	if err != nil {
		t.Fatalf("Recommend failed: %v", err)
	}
	if len(result.Recommendations) > 5 {
		t.Errorf("default limit should cap at 5, got %d", len(result.Recommendations))
	}

	// Excessive limits clamp to the maximum.
	profile = gamingProfile(800, 1250)
	profile.MaxRecommendations = 500
	idx := len(cat.queries)
	if _, err := e.Recommend(ctx, profile); err != nil {
		t.Fatalf("Recommend failed: %v", err)
	}
	if cat.queries[idx].Limit != 40 { // maxLimit 20 + headroom 20
		t.Errorf("clamped query limit = %d, want 40", cat.queries[idx].Limit)
	}
}

func TestInvalidateResults(t *testing.T) {
	cat := &fakeCatalog{respond: func(f catalog.CandidateFilter) ([]models.CandidateConfiguration, error) {
		return gradedCandidates(), nil
	}}
	e, _ := newTestEngine(cat)
	ctx := context.Background()
	profile := gamingProfile(800, 1200)

	if _, err := e.Recommend(ctx, profile); err != nil {
		t.Fatalf("Recommend failed: %v", err)
	}

	cleared, err := e.InvalidateResults(ctx)
	if err != nil {
		t.Fatalf("InvalidateResults failed: %v", err)
	}
	if cleared != 1 {
		t.Errorf("cleared %d entries, want 1", cleared)
	}

	queriesBefore := len(cat.queries)
	result, err := e.Recommend(ctx, profile)
	if err != nil {
		t.Fatalf("Recommend after invalidation failed: %v", err)
	}
	if result.CacheHit {
		t.Error("invalidated entry should not serve a cache hit")
	}
	if len(cat.queries) == queriesBefore {
		t.Error("recomputation should query the catalog again")
	}
}
