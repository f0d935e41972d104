// RigMatch - PC Build Matching and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rigmatch

package engine

import (
	"math"

	"github.com/tomtom215/rigmatch/internal/models"
)

// ScoringStrategy computes the per-aspect scores for one candidate. The
// standard strategy discriminates sharply; the broad-compatibility strategy
// used in safe mode floors every aspect so results stay usable when the
// profile barely matches the catalog.
type ScoringStrategy interface {
	Name() string
	Weights(profile RequirementProfile) Weights
	PurposeScore(c models.CandidateConfiguration, profile RequirementProfile) float64
	BudgetScore(c models.CandidateConfiguration, profile RequirementProfile) float64
	PerformanceScore(c models.CandidateConfiguration, profile RequirementProfile) float64
	// BrandContribution returns the weighted score contribution for the raw
	// brand bonus along with the effective weight it applied, so reported
	// match reasons stay consistent with the score.
	BrandContribution(bonus float64, w Weights) (contribution, weight float64)
}

// purposeMultipliers amplify or dampen suitability per purpose in standard
// scoring. Gaming and creative builds are graded harder on fit.
var purposeMultipliers = map[Purpose]float64{
	PurposeGaming:      1.2,
	PurposeCreative:    1.15,
	PurposeProgramming: 1.0,
	PurposeOffice:      0.9,
	PurposeGeneral:     1.0,
}

// purposeComponentWeights distribute the performance score across component
// ratings per purpose.
var purposeComponentWeights = map[Purpose]map[string]float64{
	PurposeGaming:      {"gpu": 0.5, "cpu": 0.3, "ram": 0.15, "storage": 0.05},
	PurposeCreative:    {"gpu": 0.4, "cpu": 0.35, "ram": 0.2, "storage": 0.05},
	PurposeProgramming: {"cpu": 0.4, "ram": 0.3, "gpu": 0.2, "storage": 0.1},
	PurposeOffice:      {"cpu": 0.3, "ram": 0.3, "gpu": 0.2, "storage": 0.2},
	PurposeGeneral:     {"cpu": 0.3, "gpu": 0.3, "ram": 0.2, "storage": 0.2},
}

// defaultRating substitutes for missing suitability or component ratings.
const defaultRating = 50.0

// suitabilityFor reads a candidate's suitability for a purpose, defaulting
// when the purpose is unrated.
func suitabilityFor(c models.CandidateConfiguration, purpose Purpose) float64 {
	if s, ok := c.SuitabilityScores[string(purpose)]; ok {
		return s
	}
	return defaultRating
}

// componentRating reads a per-component performance rating, defaulting when
// the component is unrated.
func componentRating(p models.PerformanceProfile, component string) float64 {
	var v float64
	switch component {
	case "cpu":
		v = p.CPU
	case "gpu":
		v = p.GPU
	case "ram":
		v = p.RAM
	case "storage":
		v = p.Storage
	}
	if v <= 0 {
		return defaultRating
	}
	return v
}

// StandardScoring is the default strategy: profile-adaptive weights, sharp
// discrimination between strong and weak matches.
type StandardScoring struct {
	params Parameters
}

// NewStandardScoring creates the standard strategy with the given parameters.
func NewStandardScoring(params Parameters) *StandardScoring {
	return &StandardScoring{params: params}
}

// Name identifies the strategy in logs.
func (s *StandardScoring) Name() string { return "standard" }

// Weights derives profile-adaptive weights.
func (s *StandardScoring) Weights(profile RequirementProfile) Weights {
	return deriveWeights(profile)
}

// PurposeScore rates purpose fit: suitability amplified by the purpose
// multiplier, capped at 100.
func (s *StandardScoring) PurposeScore(c models.CandidateConfiguration, profile RequirementProfile) float64 {
	multiplier, ok := purposeMultipliers[profile.Purpose]
	if !ok {
		multiplier = 1.0
	}
	return math.Min(100, suitabilityFor(c, profile.Purpose)*multiplier)
}

// BudgetScore rates how well the price sits inside the budget window.
// Tight windows grade distance from the center harder than wide ones, and
// prices hugging either edge of the window earn a small positioning bonus.
func (s *StandardScoring) BudgetScore(c models.CandidateConfiguration, profile RequirementProfile) float64 {
	price := c.TotalPrice
	budget := profile.Budget

	if price <= 0 {
		return 0
	}
	if budget.Min >= budget.Max {
		return 0
	}

	budgetRange := budget.Range()
	halfRange := budgetRange / 2
	distance := math.Abs(price - budget.Center())

	// Tightness scales the penalty: narrow budgets punish off-center prices.
	tightness := 1000 / budgetRange
	if tightness < 0.5 {
		tightness = 0.5
	} else if tightness > 2.0 {
		tightness = 2.0
	}

	fit := math.Max(0, 100*(1-distance/halfRange)*tightness)

	edge := budgetRange * 0.1
	if math.Abs(price-budget.Min) < edge {
		fit += 15
	} else if math.Abs(price-budget.Max) < edge {
		fit += 10
	}

	return math.Min(100, fit)
}

// PerformanceScore compares the purpose-weighted component score against the
// level the profile requires, banding the result.
func (s *StandardScoring) PerformanceScore(c models.CandidateConfiguration, profile RequirementProfile) float64 {
	componentWeights, ok := purposeComponentWeights[profile.Purpose]
	if !ok {
		componentWeights = purposeComponentWeights[PurposeGeneral]
	}

	weighted := 0.0
	for component, weight := range componentWeights {
		weighted += componentRating(c.Performance, component) * weight
	}

	required := s.params.requiredPerformance(profile.PerformanceLevel, false)

	switch {
	case weighted >= required:
		return 100
	case weighted >= required*0.8:
		return 75
	case weighted >= required*0.6:
		return 50
	default:
		return 25
	}
}

// BrandContribution converts the raw brand bonus into a weighted score
// contribution, capped by the profile's brand weight.
func (s *StandardScoring) BrandContribution(bonus float64, w Weights) (float64, float64) {
	if bonus <= 0 {
		return 0, 0
	}
	brandWeight := math.Min(bonus*0.1, w.Brand)
	return bonus * brandWeight, brandWeight
}

// BroadCompatibilityScoring is the safe-mode strategy: fixed weights and
// floored aspect scores, trading discrimination for guaranteed usability.
type BroadCompatibilityScoring struct {
	params Parameters
}

// NewBroadCompatibilityScoring creates the safe-mode strategy.
func NewBroadCompatibilityScoring(params Parameters) *BroadCompatibilityScoring {
	return &BroadCompatibilityScoring{params: params}
}

// Name identifies the strategy in logs.
func (s *BroadCompatibilityScoring) Name() string { return "broad_compatibility" }

// Weights returns the fixed safe-mode distribution regardless of profile.
func (s *BroadCompatibilityScoring) Weights(profile RequirementProfile) Weights {
	return safeWeights
}

// PurposeScore floors suitability at 60 so weak matches stay presentable.
func (s *BroadCompatibilityScoring) PurposeScore(c models.CandidateConfiguration, profile RequirementProfile) float64 {
	return math.Max(60, math.Min(100, suitabilityFor(c, profile.Purpose)))
}

// BudgetScore grades budget fit leniently: out-of-window prices still score,
// and in-window prices never drop below 70.
func (s *BroadCompatibilityScoring) BudgetScore(c models.CandidateConfiguration, profile RequirementProfile) float64 {
	price := c.TotalPrice
	budget := profile.Budget

	if price < budget.Min {
		return 70
	}
	if price > budget.Max {
		return 60
	}

	budgetRange := budget.Range()
	if budgetRange == 0 {
		return 85
	}

	distance := math.Abs(price - budget.Center())
	return math.Max(70, 100*(1-distance/(budgetRange/2)))
}

// PerformanceScore compares overall performance against the gentler safe
// level requirements.
func (s *BroadCompatibilityScoring) PerformanceScore(c models.CandidateConfiguration, profile RequirementProfile) float64 {
	overall := c.Performance.Overall
	required := s.params.requiredPerformance(profile.PerformanceLevel, true)

	switch {
	case overall >= required:
		return math.Max(85, math.Min(100, overall))
	case overall >= required*0.7:
		return 75
	case overall >= required*0.5:
		return 70
	default:
		return 65
	}
}

// BrandContribution weights the brand bonus with the fixed safe brand weight.
func (s *BroadCompatibilityScoring) BrandContribution(bonus float64, w Weights) (float64, float64) {
	if bonus <= 0 {
		return 0, 0
	}
	return bonus * w.Brand, w.Brand
}
