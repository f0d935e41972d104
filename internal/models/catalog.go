// RigMatch - PC Build Matching and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rigmatch

// Package models defines the catalog domain records shared between the
// catalog store, the recommendation engine, and the API layer.
package models

import "time"

// Component types in a configuration.
const (
	ComponentTypeCPU         = "cpu"
	ComponentTypeGPU         = "gpu"
	ComponentTypeMotherboard = "motherboard"
	ComponentTypeRAM         = "ram"
	ComponentTypeStorage     = "storage"
	ComponentTypeCase        = "case"
	ComponentTypePSU         = "psu"
	ComponentTypeCooler      = "cooler"
)

// PerformanceProfile holds the overall and per-component performance ratings
// (0-100) of a configuration.
type PerformanceProfile struct {
	Overall float64 `json:"overall"`
	CPU     float64 `json:"cpu"`
	GPU     float64 `json:"gpu"`
	RAM     float64 `json:"ram"`
	Storage float64 `json:"storage"`
}

// CandidateConfiguration is a pre-built PC configuration from the catalog.
// The engine treats it as read-only; the catalog owns its lifecycle.
type CandidateConfiguration struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	TotalPrice  float64 `json:"total_price"`

	// SuitabilityScores maps a purpose key (gaming, office, creative,
	// programming, general) to a 0-100 fitness rating.
	SuitabilityScores map[string]float64 `json:"suitability_scores"`

	Performance PerformanceProfile `json:"performance_profile"`

	// ComponentIDs references the components table, in build order.
	ComponentIDs []string `json:"component_ids"`

	Source    string    `json:"source,omitempty"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

// ComponentRecord is a single hardware component from the catalog.
type ComponentRecord struct {
	ID    string  `json:"id"`
	Type  string  `json:"type"`
	Name  string  `json:"name"`
	Brand string  `json:"brand"`
	Model string  `json:"model,omitempty"`
	Price float64 `json:"price"`
}

// ComponentSummary is the trimmed component view attached to recommendation
// results for display.
type ComponentSummary struct {
	ID    string  `json:"id"`
	Type  string  `json:"type"`
	Name  string  `json:"name"`
	Brand string  `json:"brand"`
	Price float64 `json:"price"`
}

// Summary converts a full component record to its display summary.
func (c ComponentRecord) Summary() ComponentSummary {
	return ComponentSummary{
		ID:    c.ID,
		Type:  c.Type,
		Name:  c.Name,
		Brand: c.Brand,
		Price: c.Price,
	}
}
