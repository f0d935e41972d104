// RigMatch - PC Build Matching and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rigmatch

package engine

import (
	"fmt"
	"math"

	"github.com/tomtom215/rigmatch/internal/models"
)

// tradeOffPurposeMultipliers scale the overall performance threshold per
// purpose: gaming is graded at full requirement, office most leniently.
var tradeOffPurposeMultipliers = map[Purpose]float64{
	PurposeGaming:      1.0,
	PurposeCreative:    0.95,
	PurposeProgramming: 0.9,
	PurposeOffice:      0.85,
	PurposeGeneral:     0.9,
}

// Per-component threshold fractions of the required level, by purpose.
var (
	cpuThresholdFractions = map[Purpose]float64{
		PurposeGaming: 0.8, PurposeCreative: 0.85, PurposeProgramming: 0.9,
		PurposeOffice: 0.7, PurposeGeneral: 0.75,
	}
	gpuThresholdFractions = map[Purpose]float64{
		PurposeGaming: 0.9, PurposeCreative: 0.9, PurposeProgramming: 0.6,
		PurposeOffice: 0.5, PurposeGeneral: 0.7,
	}
	ramThresholdFractions = map[Purpose]float64{
		PurposeGaming: 0.7, PurposeCreative: 0.8, PurposeProgramming: 0.8,
		PurposeOffice: 0.6, PurposeGeneral: 0.7,
	}
)

// Purpose-specific phrasing for component bottleneck descriptions.
var (
	cpuNeeds = map[Purpose]string{
		PurposeGaming:      "gaming and multitasking",
		PurposeCreative:    "rendering and design work",
		PurposeProgramming: "compilation and development tasks",
		PurposeOffice:      "productivity applications",
		PurposeGeneral:     "everyday computing",
	}
	gpuNeeds = map[Purpose]string{
		PurposeGaming:      "gaming at target resolutions/frame rates",
		PurposeCreative:    "GPU-accelerated design and editing",
		PurposeProgramming: "GPU computing tasks",
		PurposeOffice:      "basic graphics tasks",
		PurposeGeneral:     "casual gaming and media",
	}
	ramNeeds = map[Purpose]string{
		PurposeGaming:      "game loading and multitasking",
		PurposeCreative:    "large file handling and rendering",
		PurposeProgramming: "development environment and compilation",
		PurposeOffice:      "multiple application usage",
		PurposeGeneral:     "web browsing and media consumption",
	}
)

func fractionOr(m map[Purpose]float64, purpose Purpose, fallback float64) float64 {
	if v, ok := m[purpose]; ok {
		return v
	}
	return fallback
}

func needOr(m map[Purpose]string, purpose Purpose, fallback string) string {
	if v, ok := m[purpose]; ok {
		return v
	}
	return fallback
}

// identifyTradeOffs flags budget and performance compromises for a candidate.
// Trade-offs are advisory: they annotate the result and never feed back into
// the confidence score.
func identifyTradeOffs(c models.CandidateConfiguration, profile RequirementProfile, params Parameters) []TradeOff {
	var tradeOffs []TradeOff

	price := c.TotalPrice
	budget := profile.Budget
	budgetRange := budget.Range()
	center := budget.Center()

	// Narrow budgets tolerate less overshoot before flagging.
	thresholdFactor := 500 / math.Max(budgetRange, 1)
	if thresholdFactor < 0.1 {
		thresholdFactor = 0.1
	} else if thresholdFactor > 0.3 {
		thresholdFactor = 0.3
	}

	if center > 0 && price > center*(1+thresholdFactor) {
		excess := (price - center) / center * 100
		tradeOffs = append(tradeOffs, TradeOff{
			Type:        "budget",
			Impact:      ImpactNegative,
			Description: fmt.Sprintf("Price exceeds budget center by %.0f%% - may strain budget allocation for peripherals or future upgrades", excess),
		})
	} else if price < budget.Min*1.1 {
		tradeOffs = append(tradeOffs, TradeOff{
			Type:        "performance",
			Impact:      ImpactNeutral,
			Description: "Budget-optimized choice provides core functionality but may require component upgrades for demanding tasks",
		})
	}

	required := params.requiredPerformance(profile.PerformanceLevel, false)
	overall := c.Performance.Overall

	performanceThreshold := required * fractionOr(tradeOffPurposeMultipliers, profile.Purpose, 0.9)
	if overall < performanceThreshold {
		deficit := performanceThreshold - overall
		tradeOffs = append(tradeOffs, TradeOff{
			Type:   "performance",
			Impact: ImpactNegative,
			Description: fmt.Sprintf("Overall performance (%.0f%%) falls %.0f points below %s threshold for %s use - may experience slowdowns in demanding applications",
				overall, deficit, profile.PerformanceLevel, profile.Purpose),
		})
	}

	cpu := componentRating(c.Performance, "cpu")
	if cpu < required*fractionOr(cpuThresholdFractions, profile.Purpose, 0.75) {
		tradeOffs = append(tradeOffs, TradeOff{
			Type:   "cpu",
			Impact: ImpactNegative,
			Description: fmt.Sprintf("CPU performance (%.0f%%) may bottleneck %s - consider upgrade for smoother experience",
				cpu, needOr(cpuNeeds, profile.Purpose, "general tasks")),
		})
	}

	gpu := componentRating(c.Performance, "gpu")
	if gpu < required*fractionOr(gpuThresholdFractions, profile.Purpose, 0.7) {
		tradeOffs = append(tradeOffs, TradeOff{
			Type:   "gpu",
			Impact: ImpactNegative,
			Description: fmt.Sprintf("GPU performance (%.0f%%) may limit %s - upgrade recommended for optimal visual performance",
				gpu, needOr(gpuNeeds, profile.Purpose, "graphics tasks")),
		})
	}

	ram := componentRating(c.Performance, "ram")
	if ram < required*fractionOr(ramThresholdFractions, profile.Purpose, 0.7) {
		tradeOffs = append(tradeOffs, TradeOff{
			Type:   "memory",
			Impact: ImpactNegative,
			Description: fmt.Sprintf("Memory performance (%.0f%%) may constrain %s - additional RAM recommended for better performance",
				ram, needOr(ramNeeds, profile.Purpose, "multitasking")),
		})
	}

	return tradeOffs
}
