// RigMatch - PC Build Matching and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rigmatch

// Package engine implements the recommendation pipeline: candidate retrieval
// with progressive constraint relaxation, weighted confidence scoring with
// standard and broad-compatibility strategies, trade-off analysis, and
// explanation generation.
package engine

import (
	"sort"
	"strings"
	"time"

	"github.com/tomtom215/rigmatch/internal/models"
)

// Purpose is the primary use the requester intends for the machine.
type Purpose string

// Supported purposes.
const (
	PurposeGaming      Purpose = "gaming"
	PurposeOffice      Purpose = "office"
	PurposeCreative    Purpose = "creative"
	PurposeProgramming Purpose = "programming"
	PurposeGeneral     Purpose = "general"
)

// Valid reports whether the purpose is one of the supported values.
func (p Purpose) Valid() bool {
	switch p {
	case PurposeGaming, PurposeOffice, PurposeCreative, PurposeProgramming, PurposeGeneral:
		return true
	}
	return false
}

// PerformanceLevel expresses how much raw performance the requester needs.
type PerformanceLevel string

// Supported performance levels, ordered weakest to strongest.
const (
	LevelBasic        PerformanceLevel = "basic"
	LevelStandard     PerformanceLevel = "standard"
	LevelHigh         PerformanceLevel = "high"
	LevelProfessional PerformanceLevel = "professional"
)

// Valid reports whether the level is one of the supported values.
func (l PerformanceLevel) Valid() bool {
	switch l {
	case LevelBasic, LevelStandard, LevelHigh, LevelProfessional:
		return true
	}
	return false
}

// Budget is the requester's price window in whole currency units.
type Budget struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Range returns the width of the budget window.
func (b Budget) Range() float64 { return b.Max - b.Min }

// Center returns the midpoint of the budget window.
func (b Budget) Center() float64 { return (b.Min + b.Max) / 2 }

// Valid reports whether the window is well-formed: a positive max above min.
func (b Budget) Valid() bool { return b.Max > 0 && b.Min >= 0 && b.Min < b.Max }

// RequirementProfile captures what the requester wants from a build.
// SessionID is request tracking only and never participates in cache keys.
type RequirementProfile struct {
	Purpose            Purpose          `json:"purpose"`
	Budget             Budget           `json:"budget"`
	PerformanceLevel   PerformanceLevel `json:"performance_level"`
	PreferredBrands    []string         `json:"preferred_brands,omitempty"`
	MustHaveFeatures   []string         `json:"must_have_features,omitempty"`
	MaxRecommendations int              `json:"max_recommendations,omitempty"`
	SafeMode           bool             `json:"safe_mode,omitempty"`
	SessionID          string           `json:"session_id,omitempty"`
}

// Normalized returns a copy with brand and feature lists lower-cased, trimmed,
// and sorted so equivalent profiles produce identical cache keys.
func (p RequirementProfile) Normalized() RequirementProfile {
	out := p
	out.PreferredBrands = normalizeList(p.PreferredBrands)
	out.MustHaveFeatures = normalizeList(p.MustHaveFeatures)
	out.SessionID = ""
	return out
}

func normalizeList(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.ToLower(strings.TrimSpace(s))
		if s != "" {
			out = append(out, s)
		}
	}
	sort.Strings(out)
	return out
}

// Weights distributes scoring emphasis across the four aspects. The engine
// renormalizes weights to sum to 1.0 before use.
type Weights struct {
	Purpose     float64 `json:"purpose"`
	Budget      float64 `json:"budget"`
	Performance float64 `json:"performance"`
	Brand       float64 `json:"brand"`
}

// Sum returns the total of all weights.
func (w Weights) Sum() float64 {
	return w.Purpose + w.Budget + w.Performance + w.Brand
}

// Normalized scales the weights so they sum to 1.0. Zero-sum weights are
// returned unchanged.
func (w Weights) Normalized() Weights {
	total := w.Sum()
	if total <= 0 {
		return w
	}
	return Weights{
		Purpose:     w.Purpose / total,
		Budget:      w.Budget / total,
		Performance: w.Performance / total,
		Brand:       w.Brand / total,
	}
}

// FallbackStage identifies which retrieval stage produced a candidate set.
type FallbackStage int

// Retrieval stages, in relaxation order.
const (
	StageStrict FallbackStage = iota
	StagePreferredBrands
	StageRelaxedPerformance
	StageExpandedBudget
	StageNoConstraints
)

// String returns the stage label used in metrics and logs.
func (s FallbackStage) String() string {
	switch s {
	case StageStrict:
		return "strict"
	case StagePreferredBrands:
		return "preferred_brands"
	case StageRelaxedPerformance:
		return "relaxed_performance"
	case StageExpandedBudget:
		return "expanded_budget"
	case StageNoConstraints:
		return "no_constraints"
	default:
		return "unknown"
	}
}

// Tag returns the stage label carried on results, empty for the strict stage.
func (s FallbackStage) Tag() string {
	if s == StageStrict {
		return ""
	}
	return s.String()
}

// Fallback reports whether the stage is a relaxation of the strict query.
func (s FallbackStage) Fallback() bool { return s != StageStrict }

// MatchReason explains one scored factor of a recommendation.
type MatchReason struct {
	Factor      string  `json:"factor"`
	Weight      float64 `json:"weight"`
	Explanation string  `json:"explanation"`
}

// Match reason factors.
const (
	FactorPurpose      = "purpose_alignment"
	FactorBudget       = "budget_fit"
	FactorPerformance  = "performance_match"
	FactorBrand        = "brand_preference"
	FactorFallbackNote = "fallback_note"
)

// Trade-off impact levels.
const (
	ImpactNegative = "negative"
	ImpactNeutral  = "neutral"
)

// TradeOff flags a compromise the requester should know about. Trade-offs are
// advisory only and never change the confidence score.
type TradeOff struct {
	Type        string `json:"type"`
	Impact      string `json:"impact"`
	Description string `json:"description"`
}

// scoredCandidate pairs a catalog candidate with its scoring outcome while it
// moves through the pipeline.
type scoredCandidate struct {
	candidate  models.CandidateConfiguration
	confidence float64
	reasons    []MatchReason
	tradeOffs  []TradeOff
	stage      FallbackStage
}

// Recommendation is one ranked result.
type Recommendation struct {
	ConfigurationID string                    `json:"configuration_id"`
	Name            string                    `json:"name"`
	TotalPrice      float64                   `json:"total_price"`
	ConfidenceScore float64                   `json:"confidence_score"`
	MatchReasons    []MatchReason             `json:"match_reasons"`
	TradeOffs       []TradeOff                `json:"trade_offs"`
	Components      []models.ComponentSummary `json:"components,omitempty"`
	FallbackType    string                    `json:"fallback_type,omitempty"`
}

// Result is a complete recommendation response.
type Result struct {
	Recommendations []Recommendation `json:"recommendations"`
	GeneratedAt     time.Time        `json:"generated_at"`
	SafeMode        bool             `json:"safe_mode"`
	FallbackType    string           `json:"fallback_type,omitempty"`

	// CacheHit is set on responses served from cache and is not persisted.
	CacheHit bool `json:"-"`
}
