// RigMatch - PC Build Matching and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rigmatch

package engine

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/tomtom215/rigmatch/internal/models"
)

// Skip reasons. Candidates that hit one are dropped without failing the
// request; the rest of the batch still ranks.
var (
	errInvalidCandidate = errors.New("candidate missing price, suitability, or performance data")
	errOutsideBudget    = errors.New("candidate price outside budget window")
)

// brandPreferenceBonus returns the percentage (0-100) of a candidate's
// resolved components whose brand matches a preferred brand. Comparison is
// case-insensitive. Components missing from the records map are ignored.
func brandPreferenceBonus(componentIDs []string, records map[string]models.ComponentRecord, preferred []string) float64 {
	if len(preferred) == 0 || len(componentIDs) == 0 {
		return 0
	}

	wanted := make(map[string]struct{}, len(preferred))
	for _, b := range preferred {
		wanted[strings.ToUpper(b)] = struct{}{}
	}

	total := 0
	matching := 0
	for _, id := range componentIDs {
		record, ok := records[id]
		if !ok {
			continue
		}
		total++
		if _, ok := wanted[strings.ToUpper(record.Brand)]; ok {
			matching++
		}
	}

	if total == 0 {
		return 0
	}
	return float64(matching) / float64(total) * 100
}

// scoreCandidate scores one candidate against the profile. Fallback-stage
// candidates bypass the budget window check because the relaxation that
// surfaced them intentionally broke it; the fallback note on the result
// explains the exception to the requester.
func scoreCandidate(
	strategy ScoringStrategy,
	c models.CandidateConfiguration,
	stage FallbackStage,
	profile RequirementProfile,
	components map[string]models.ComponentRecord,
	params Parameters,
) (*scoredCandidate, error) {
	if c.TotalPrice <= 0 {
		return nil, fmt.Errorf("%w: price %.2f", errInvalidCandidate, c.TotalPrice)
	}
	if c.SuitabilityScores == nil {
		return nil, fmt.Errorf("%w: no suitability scores", errInvalidCandidate)
	}
	if c.Performance == (models.PerformanceProfile{}) {
		return nil, fmt.Errorf("%w: no performance profile", errInvalidCandidate)
	}

	if !stage.Fallback() && (c.TotalPrice < profile.Budget.Min || c.TotalPrice > profile.Budget.Max) {
		return nil, errOutsideBudget
	}

	weights := strategy.Weights(profile)

	confidence := 0.0
	var reasons []MatchReason

	purposeScore := strategy.PurposeScore(c, profile)
	budgetScore := strategy.BudgetScore(c, profile)
	performanceScore := strategy.PerformanceScore(c, profile)

	if profile.SafeMode {
		confidence += purposeScore * weights.Purpose
		reasons = append(reasons, MatchReason{
			Factor:      FactorPurpose,
			Weight:      weights.Purpose,
			Explanation: fmt.Sprintf("Suitable for %s use (safe mode)", profile.Purpose),
		})

		confidence += budgetScore * weights.Budget
		reasons = append(reasons, MatchReason{
			Factor:      FactorBudget,
			Weight:      weights.Budget,
			Explanation: fmt.Sprintf("Price $%s is within budget considerations (safe mode)", formatMoney(c.TotalPrice)),
		})

		confidence += performanceScore * weights.Performance
		reasons = append(reasons, MatchReason{
			Factor:      FactorPerformance,
			Weight:      weights.Performance,
			Explanation: fmt.Sprintf("Meets %s performance needs (safe mode)", profile.PerformanceLevel),
		})

		if bonus := brandPreferenceBonus(c.ComponentIDs, components, profile.PreferredBrands); bonus > 0 {
			contribution, brandWeight := strategy.BrandContribution(bonus, weights)
			confidence += contribution
			reasons = append(reasons, MatchReason{
				Factor:      FactorBrand,
				Weight:      brandWeight,
				Explanation: "Includes some preferred brands (safe mode)",
			})
		}
	} else {
		if purposeScore > 0 {
			confidence += purposeScore * weights.Purpose
			reasons = append(reasons, MatchReason{
				Factor:      FactorPurpose,
				Weight:      weights.Purpose,
				Explanation: explainPurpose(profile.Purpose, purposeScore, c),
			})
		}

		confidence += budgetScore * weights.Budget
		reasons = append(reasons, MatchReason{
			Factor:      FactorBudget,
			Weight:      weights.Budget,
			Explanation: explainBudget(c.TotalPrice, profile.Budget),
		})

		confidence += performanceScore * weights.Performance
		reasons = append(reasons, MatchReason{
			Factor:      FactorPerformance,
			Weight:      weights.Performance,
			Explanation: explainPerformance(profile.PerformanceLevel, profile.Purpose, performanceScore, c),
		})

		if bonus := brandPreferenceBonus(c.ComponentIDs, components, profile.PreferredBrands); bonus > 0 {
			contribution, brandWeight := strategy.BrandContribution(bonus, weights)
			confidence += contribution
			reasons = append(reasons, MatchReason{
				Factor:      FactorBrand,
				Weight:      brandWeight,
				Explanation: explainBrand(profile.PreferredBrands),
			})
		}
	}

	tradeOffs := identifyTradeOffs(c, profile, params)

	confidence = math.Max(0, math.Min(100, confidence))
	confidence = math.Round(confidence*10) / 10

	if note, ok := fallbackNotes[stage]; ok && stage.Fallback() {
		reasons = append(reasons, MatchReason{
			Factor:      FactorFallbackNote,
			Weight:      0.0,
			Explanation: note,
		})
	}

	return &scoredCandidate{
		candidate:  c,
		confidence: confidence,
		reasons:    reasons,
		tradeOffs:  tradeOffs,
		stage:      stage,
	}, nil
}
