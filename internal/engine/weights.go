// RigMatch - PC Build Matching and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rigmatch

package engine

// baseWeights is the starting emphasis before any profile-driven adjustment.
var baseWeights = Weights{Purpose: 0.4, Budget: 0.3, Performance: 0.2, Brand: 0.1}

// safeWeights is the fixed distribution used in safe mode; safe scoring never
// adapts weights to the profile.
var safeWeights = Weights{Purpose: 0.4, Budget: 0.3, Performance: 0.2, Brand: 0.1}

// performanceWeightOverrides adjusts only the performance weight by requested
// level. Applied after the budget-range adjustment.
var performanceWeightOverrides = map[PerformanceLevel]float64{
	LevelBasic:        0.15,
	LevelStandard:     0.20,
	LevelHigh:         0.25,
	LevelProfessional: 0.30,
}

// purposeWeightOverrides replaces the whole distribution per purpose. Applied
// last, before normalization.
var purposeWeightOverrides = map[Purpose]Weights{
	PurposeGaming:      {Purpose: 0.45, Performance: 0.30, Budget: 0.20, Brand: 0.05},
	PurposeCreative:    {Purpose: 0.40, Performance: 0.30, Budget: 0.20, Brand: 0.10},
	PurposeProgramming: {Purpose: 0.35, Performance: 0.30, Budget: 0.25, Brand: 0.10},
	PurposeOffice:      {Purpose: 0.30, Performance: 0.20, Budget: 0.40, Brand: 0.10},
	PurposeGeneral:     {Purpose: 0.35, Performance: 0.25, Budget: 0.30, Brand: 0.10},
}

// deriveWeights computes the scoring weights for a profile. The adjustment
// sequence is budget range, then performance level, then purpose override,
// each refining or replacing the previous step, normalized at the end.
// A profile without a valid budget falls back to the base weights.
func deriveWeights(profile RequirementProfile) Weights {
	if !profile.Budget.Valid() {
		return baseWeights
	}

	w := baseWeights

	// Tight budgets shift emphasis toward price fit; wide budgets toward
	// purpose and performance.
	budgetRange := profile.Budget.Range()
	switch {
	case budgetRange < 500:
		w = Weights{Purpose: 0.3, Budget: 0.4, Performance: 0.2, Brand: 0.1}
	case budgetRange > 2000:
		w = Weights{Purpose: 0.4, Budget: 0.2, Performance: 0.3, Brand: 0.1}
	}

	if override, ok := performanceWeightOverrides[profile.PerformanceLevel]; ok {
		w.Performance = override
	}

	if override, ok := purposeWeightOverrides[profile.Purpose]; ok {
		w = override
	}

	return w.Normalized()
}
