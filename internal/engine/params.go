// RigMatch - PC Build Matching and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rigmatch

package engine

import "fmt"

// Parameters collects the tunable constants of the recommendation pipeline.
// Deployments can override them; DefaultParameters returns the production
// values the scoring model was calibrated with.
type Parameters struct {
	// Retrieval suitability thresholds by purpose, standard mode.
	PurposeThresholds map[Purpose]float64
	// Retrieval performance thresholds by level, standard mode.
	PerformanceThresholds map[PerformanceLevel]float64
	// Safe-mode retrieval thresholds, deliberately permissive.
	SafePurposeByPurpose      map[Purpose]float64
	SafePerformanceThresholds map[PerformanceLevel]float64

	// Defaults when a purpose or level is missing from the maps above.
	DefaultPurposeThreshold         float64
	DefaultPerformanceThreshold     float64
	DefaultSafePurposeThreshold     float64
	DefaultSafePerformanceThreshold float64

	// Broadening kicks in when the strict query underfills the candidate
	// target: thresholds drop by BroadenDelta (floored at BroadenFloor) and
	// the limit grows by BroadenExtra.
	BroadenDelta float64
	BroadenFloor float64
	BroadenExtra int

	// RetrievalHeadroom extends the query limit beyond the requested result
	// count so scoring has enough candidates to rank.
	RetrievalHeadroom int
	// FallbackExtra extends the limit for fallback-stage queries.
	FallbackExtra int

	// RelaxationDelta lowers both thresholds during the relaxed-performance
	// fallback, floored at RelaxationFloor.
	RelaxationDelta float64
	RelaxationFloor float64

	// BudgetExpansion widens the price window during the expanded-budget
	// fallback, as a fraction of the original range.
	BudgetExpansion float64

	// Required overall performance per requested level.
	RequiredPerformance map[PerformanceLevel]float64
	// Safe-mode required levels, gentler than the standard map.
	SafeRequiredPerformance map[PerformanceLevel]float64
}

// DefaultParameters returns the calibrated production parameter set.
func DefaultParameters() Parameters {
	return Parameters{
		PurposeThresholds: map[Purpose]float64{
			PurposeGaming:      60,
			PurposeCreative:    55,
			PurposeProgramming: 50,
			PurposeOffice:      45,
			PurposeGeneral:     40,
		},
		PerformanceThresholds: map[PerformanceLevel]float64{
			LevelBasic:        30,
			LevelStandard:     45,
			LevelHigh:         60,
			LevelProfessional: 75,
		},
		SafePurposeByPurpose: map[Purpose]float64{
			PurposeGaming:      30,
			PurposeCreative:    25,
			PurposeProgramming: 20,
			PurposeOffice:      15,
			PurposeGeneral:     10,
		},
		SafePerformanceThresholds: map[PerformanceLevel]float64{
			LevelBasic:        15,
			LevelStandard:     20,
			LevelHigh:         25,
			LevelProfessional: 30,
		},

		DefaultPurposeThreshold:         40,
		DefaultPerformanceThreshold:     40,
		DefaultSafePurposeThreshold:     10,
		DefaultSafePerformanceThreshold: 15,

		BroadenDelta: 20,
		BroadenFloor: 20,
		BroadenExtra: 15,

		RetrievalHeadroom: 20,
		FallbackExtra:     10,

		RelaxationDelta: 20,
		RelaxationFloor: 20,

		BudgetExpansion: 0.15,

		RequiredPerformance: map[PerformanceLevel]float64{
			LevelBasic:        30,
			LevelStandard:     50,
			LevelHigh:         70,
			LevelProfessional: 85,
		},
		SafeRequiredPerformance: map[PerformanceLevel]float64{
			LevelBasic:        40,
			LevelStandard:     50,
			LevelHigh:         60,
			LevelProfessional: 70,
		},
	}
}

// Validate checks the parameter set for values that would break retrieval.
func (p Parameters) Validate() error {
	if p.BudgetExpansion < 0 || p.BudgetExpansion > 1 {
		return fmt.Errorf("budget expansion %.2f outside [0, 1]", p.BudgetExpansion)
	}
	if p.RetrievalHeadroom < 0 {
		return fmt.Errorf("retrieval headroom %d must be non-negative", p.RetrievalHeadroom)
	}
	if p.BroadenFloor < 0 || p.RelaxationFloor < 0 {
		return fmt.Errorf("threshold floors must be non-negative")
	}
	if len(p.RequiredPerformance) == 0 {
		return fmt.Errorf("required performance map is empty")
	}
	return nil
}

// purposeThreshold returns the retrieval suitability threshold for a purpose.
func (p Parameters) purposeThreshold(purpose Purpose, safe bool) float64 {
	if safe {
		if t, ok := p.SafePurposeByPurpose[purpose]; ok {
			return t
		}
		return p.DefaultSafePurposeThreshold
	}
	if t, ok := p.PurposeThresholds[purpose]; ok {
		return t
	}
	return p.DefaultPurposeThreshold
}

// performanceThreshold returns the retrieval performance threshold for a level.
func (p Parameters) performanceThreshold(level PerformanceLevel, safe bool) float64 {
	if safe {
		if t, ok := p.SafePerformanceThresholds[level]; ok {
			return t
		}
		return p.DefaultSafePerformanceThreshold
	}
	if t, ok := p.PerformanceThresholds[level]; ok {
		return t
	}
	return p.DefaultPerformanceThreshold
}

// requiredPerformance returns the overall performance a level demands.
func (p Parameters) requiredPerformance(level PerformanceLevel, safe bool) float64 {
	if safe {
		if r, ok := p.SafeRequiredPerformance[level]; ok {
			return r
		}
		return 50
	}
	if r, ok := p.RequiredPerformance[level]; ok {
		return r
	}
	return 50
}
