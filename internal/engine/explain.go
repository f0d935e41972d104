// RigMatch - PC Build Matching and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rigmatch

package engine

import (
	"fmt"
	"math"
	"strconv"

	"github.com/tomtom215/rigmatch/internal/models"
)

// purposeDescriptions summarize what each purpose demands, used in match
// reason text.
var purposeDescriptions = map[Purpose]string{
	PurposeGaming:      "high-performance GPU and CPU for gaming",
	PurposeCreative:    "powerful GPU and CPU for creative work",
	PurposeProgramming: "reliable CPU and RAM for development",
	PurposeOffice:      "balanced performance for productivity tasks",
	PurposeGeneral:     "versatile configuration for everyday use",
}

// levelDescriptions summarize what each performance level is meant to handle.
var levelDescriptions = map[PerformanceLevel]string{
	LevelBasic:        "basic computing tasks",
	LevelStandard:     "standard productivity and light gaming",
	LevelHigh:         "demanding applications and gaming",
	LevelProfessional: "professional workloads and high-end gaming",
}

// performanceTypeByPurpose names the performance profile each purpose leans on.
var performanceTypeByPurpose = map[Purpose]string{
	PurposeGaming:      "GPU-focused performance",
	PurposeCreative:    "GPU and CPU balanced performance",
	PurposeProgramming: "CPU and RAM focused performance",
	PurposeOffice:      "balanced general performance",
	PurposeGeneral:     "versatile overall performance",
}

// fallbackNotes explain, per relaxation stage, why a result appears despite
// not meeting the original constraints.
var fallbackNotes = map[FallbackStage]string{
	StagePreferredBrands:    "Configuration shown because preferred brands requirement was relaxed to find suitable options",
	StageRelaxedPerformance: "Configuration shown with relaxed performance requirements to provide options",
	StageExpandedBudget:     "Configuration shown with expanded budget range to find suitable options",
	StageNoConstraints:      "Configuration shown with all optional constraints removed - consider as general recommendation",
}

// formatMoney renders a price without trailing zeros, e.g. 899 or 1299.5.
func formatMoney(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// explainPurpose builds the purpose alignment explanation, banded by score.
func explainPurpose(purpose Purpose, score float64, c models.CandidateConfiguration) string {
	base := suitabilityFor(c, purpose)
	description, ok := purposeDescriptions[purpose]
	if !ok {
		description = "general computing"
	}

	switch {
	case score >= 80:
		return fmt.Sprintf("Excellent match for %s with %.0f%% suitability score, providing %s", purpose, base, description)
	case score >= 60:
		return fmt.Sprintf("Good match for %s with %.0f%% suitability score, suitable for %s", purpose, base, description)
	case score >= 40:
		return fmt.Sprintf("Fair match for %s with %.0f%% suitability score, adequate for %s", purpose, base, description)
	default:
		return fmt.Sprintf("Basic compatibility for %s with %.0f%% suitability score, may need upgrades for optimal %s", purpose, base, description)
	}
}

// explainBudget builds the budget fit explanation from where the price sits
// in the window.
func explainBudget(price float64, budget Budget) string {
	if price < budget.Min {
		return fmt.Sprintf("Price $%s is below minimum budget of $%s", formatMoney(price), formatMoney(budget.Min))
	}
	if price > budget.Max {
		return fmt.Sprintf("Price $%s exceeds maximum budget of $%s", formatMoney(price), formatMoney(budget.Max))
	}

	distance := math.Abs(price - budget.Center())
	budgetRange := budget.Range()
	window := fmt.Sprintf("($%s-$%s)", formatMoney(budget.Min), formatMoney(budget.Max))

	switch {
	case distance <= budgetRange*0.1:
		return fmt.Sprintf("Price $%s is optimally positioned within budget range %s", formatMoney(price), window)
	case distance <= budgetRange*0.25:
		return fmt.Sprintf("Price $%s fits well within budget range %s", formatMoney(price), window)
	default:
		position := "lower"
		if price > budget.Center() {
			position = "higher"
		}
		return fmt.Sprintf("Price $%s is at the %s end of budget range %s", formatMoney(price), position, window)
	}
}

// explainPerformance builds the performance match explanation, banded by the
// performance score.
func explainPerformance(level PerformanceLevel, purpose Purpose, score float64, c models.CandidateConfiguration) string {
	description, ok := levelDescriptions[level]
	if !ok {
		description = levelDescriptions[LevelStandard]
	}
	performanceType, ok := performanceTypeByPurpose[purpose]
	if !ok {
		performanceType = "overall performance"
	}
	overall := c.Performance.Overall

	switch {
	case score >= 90:
		return fmt.Sprintf("Exceeds %s performance requirements (%.0f overall score) for %s, providing excellent %s", level, overall, description, performanceType)
	case score >= 75:
		return fmt.Sprintf("Meets %s performance requirements (%.0f overall score) for %s, with good %s", level, overall, description, performanceType)
	case score >= 50:
		return fmt.Sprintf("Partially meets %s performance requirements (%.0f overall score) for %s, adequate %s", level, overall, description, performanceType)
	default:
		return fmt.Sprintf("Below %s performance requirements (%.0f overall score) for %s, limited %s", level, overall, description, performanceType)
	}
}

// explainBrand lists the preferred brands a standard-mode result matched.
func explainBrand(brands []string) string {
	out := "Includes preferred brands: "
	for i, b := range brands {
		if i > 0 {
			out += ", "
		}
		out += b
	}
	return out
}
