// RigMatch - PC Build Matching and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rigmatch

package catalog

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"

	"github.com/tomtom215/rigmatch/internal/logging"
	"github.com/tomtom215/rigmatch/internal/models"
)

// seedConfig pairs a configuration with its suitability and performance
// ratings for insertion.
type seedConfig struct {
	id, name, description string
	price                 float64
	suit                  map[string]float64
	perf                  models.PerformanceProfile
	componentIDs          []string
}

// SeedMockData inserts a development catalog of components and configurations.
// Existing rows with the same IDs are left untouched, so seeding is idempotent.
func (s *DuckDBStore) SeedMockData(ctx context.Context) error {
	components := []models.ComponentRecord{
		{ID: "cpu-r5-7600", Type: models.ComponentTypeCPU, Name: "Ryzen 5 7600", Brand: "AMD", Model: "100-100001015BOX", Price: 229},
		{ID: "cpu-r7-7800x3d", Type: models.ComponentTypeCPU, Name: "Ryzen 7 7800X3D", Brand: "AMD", Model: "100-100000910WOF", Price: 449},
		{ID: "cpu-i5-14400", Type: models.ComponentTypeCPU, Name: "Core i5-14400", Brand: "Intel", Model: "BX8071514400", Price: 221},
		{ID: "cpu-i9-14900k", Type: models.ComponentTypeCPU, Name: "Core i9-14900K", Brand: "Intel", Model: "BX8071514900K", Price: 589},
		{ID: "gpu-rtx4060", Type: models.ComponentTypeGPU, Name: "GeForce RTX 4060", Brand: "NVIDIA", Model: "RTX 4060", Price: 299},
		{ID: "gpu-rtx4070s", Type: models.ComponentTypeGPU, Name: "GeForce RTX 4070 Super", Brand: "NVIDIA", Model: "RTX 4070 Super", Price: 599},
		{ID: "gpu-rtx4090", Type: models.ComponentTypeGPU, Name: "GeForce RTX 4090", Brand: "NVIDIA", Model: "RTX 4090", Price: 1599},
		{ID: "gpu-rx7800xt", Type: models.ComponentTypeGPU, Name: "Radeon RX 7800 XT", Brand: "AMD", Model: "RX 7800 XT", Price: 499},
		{ID: "ram-32-ddr5", Type: models.ComponentTypeRAM, Name: "Vengeance 32GB DDR5-6000", Brand: "Corsair", Model: "CMK32GX5M2B6000C36", Price: 109},
		{ID: "ram-64-ddr5", Type: models.ComponentTypeRAM, Name: "Trident Z5 64GB DDR5-6400", Brand: "G.Skill", Model: "F5-6400J3239G32GX2-TZ5RK", Price: 229},
		{ID: "ram-16-ddr4", Type: models.ComponentTypeRAM, Name: "Ripjaws V 16GB DDR4-3600", Brand: "G.Skill", Model: "F4-3600C16D-16GVKC", Price: 45},
		{ID: "ssd-1tb-nvme", Type: models.ComponentTypeStorage, Name: "980 Pro 1TB NVMe", Brand: "Samsung", Model: "MZ-V8P1T0B", Price: 89},
		{ID: "ssd-2tb-nvme", Type: models.ComponentTypeStorage, Name: "990 Pro 2TB NVMe", Brand: "Samsung", Model: "MZ-V9P2T0B", Price: 169},
		{ID: "ssd-512-sata", Type: models.ComponentTypeStorage, Name: "MX500 500GB SATA", Brand: "Crucial", Model: "CT500MX500SSD1", Price: 49},
		{ID: "mb-b650", Type: models.ComponentTypeMotherboard, Name: "B650 Tomahawk", Brand: "MSI", Model: "MAG B650 TOMAHAWK WIFI", Price: 219},
		{ID: "mb-b760", Type: models.ComponentTypeMotherboard, Name: "B760 Gaming X", Brand: "Gigabyte", Model: "B760 GAMING X AX", Price: 169},
		{ID: "psu-750-gold", Type: models.ComponentTypePSU, Name: "RM750e 750W Gold", Brand: "Corsair", Model: "CP-9020262-NA", Price: 99},
		{ID: "psu-1000-plat", Type: models.ComponentTypePSU, Name: "HX1000i 1000W Platinum", Brand: "Corsair", Model: "CP-9020214-NA", Price: 249},
	}

	configs := []seedConfig{
		{
			id: "cfg-starter-office", name: "Starter Office Box",
			description: "Entry desktop for documents, browsing, and video calls",
			price:       549,
			suit:        map[string]float64{"gaming": 25, "office": 85, "creative": 30, "programming": 55, "general": 70},
			perf:        models.PerformanceProfile{Overall: 38, CPU: 45, GPU: 20, RAM: 40, Storage: 45},
			componentIDs: []string{
				"cpu-i5-14400", "mb-b760", "ram-16-ddr4", "ssd-512-sata", "psu-750-gold",
			},
		},
		{
			id: "cfg-budget-gamer", name: "Budget Gamer",
			description: "1080p gaming on a tight budget",
			price:       899,
			suit:        map[string]float64{"gaming": 68, "office": 60, "creative": 45, "programming": 55, "general": 65},
			perf:        models.PerformanceProfile{Overall: 55, CPU: 55, GPU: 58, RAM: 50, Storage: 60},
			componentIDs: []string{
				"cpu-r5-7600", "gpu-rtx4060", "mb-b650", "ram-32-ddr5", "ssd-1tb-nvme", "psu-750-gold",
			},
		},
		{
			id: "cfg-mid-allround", name: "Mid-Range All-Rounder",
			description: "Balanced build for gaming, work, and light content creation",
			price:       1299,
			suit:        map[string]float64{"gaming": 75, "office": 70, "creative": 65, "programming": 70, "general": 78},
			perf:        models.PerformanceProfile{Overall: 66, CPU: 62, GPU: 68, RAM: 60, Storage: 70},
			componentIDs: []string{
				"cpu-r5-7600", "gpu-rx7800xt", "mb-b650", "ram-32-ddr5", "ssd-1tb-nvme", "psu-750-gold",
			},
		},
		{
			id: "cfg-1440p-gamer", name: "1440p Gaming Rig",
			description: "High-refresh 1440p gaming with headroom",
			price:       1699,
			suit:        map[string]float64{"gaming": 86, "office": 60, "creative": 68, "programming": 62, "general": 72},
			perf:        models.PerformanceProfile{Overall: 76, CPU: 78, GPU: 80, RAM: 65, Storage: 70},
			componentIDs: []string{
				"cpu-r7-7800x3d", "gpu-rtx4070s", "mb-b650", "ram-32-ddr5", "ssd-2tb-nvme", "psu-750-gold",
			},
		},
		{
			id: "cfg-dev-station", name: "Developer Workstation",
			description: "Compile-heavy development with room for containers and VMs",
			price:       1499,
			suit:        map[string]float64{"gaming": 55, "office": 75, "creative": 60, "programming": 88, "general": 74},
			perf:        models.PerformanceProfile{Overall: 70, CPU: 82, GPU: 45, RAM: 80, Storage: 75},
			componentIDs: []string{
				"cpu-i9-14900k", "mb-b760", "ram-64-ddr5", "ssd-2tb-nvme", "psu-750-gold",
			},
		},
		{
			id: "cfg-creator-pro", name: "Creator Pro",
			description: "4K video editing and 3D rendering workstation",
			price:       2899,
			suit:        map[string]float64{"gaming": 80, "office": 65, "creative": 92, "programming": 78, "general": 75},
			perf:        models.PerformanceProfile{Overall: 88, CPU: 85, GPU: 90, RAM: 85, Storage: 85},
			componentIDs: []string{
				"cpu-i9-14900k", "gpu-rtx4090", "mb-b760", "ram-64-ddr5", "ssd-2tb-nvme", "psu-1000-plat",
			},
		},
		{
			id: "cfg-flagship-gamer", name: "Flagship Gaming Monster",
			description: "No-compromise 4K gaming build",
			price:       3299,
			suit:        map[string]float64{"gaming": 97, "office": 60, "creative": 85, "programming": 70, "general": 78},
			perf:        models.PerformanceProfile{Overall: 95, CPU: 88, GPU: 98, RAM: 80, Storage: 85},
			componentIDs: []string{
				"cpu-r7-7800x3d", "gpu-rtx4090", "mb-b650", "ram-64-ddr5", "ssd-2tb-nvme", "psu-1000-plat",
			},
		},
		{
			id: "cfg-quiet-home", name: "Quiet Home PC",
			description: "Silent everyday machine for media and browsing",
			price:       749,
			suit:        map[string]float64{"gaming": 40, "office": 72, "creative": 40, "programming": 58, "general": 82},
			perf:        models.PerformanceProfile{Overall: 48, CPU: 52, GPU: 35, RAM: 50, Storage: 60},
			componentIDs: []string{
				"cpu-r5-7600", "mb-b650", "ram-32-ddr5", "ssd-1tb-nvme", "psu-750-gold",
			},
		},
	}

	inserted := 0
	for _, c := range components {
		_, err := s.conn.ExecContext(ctx,
			`INSERT INTO components (id, type, name, brand, model, price)
			 VALUES (?, ?, ?, ?, ?, ?)
			 ON CONFLICT (id) DO NOTHING`,
			c.ID, c.Type, c.Name, c.Brand, c.Model, c.Price)
		if err != nil {
			return fmt.Errorf("failed to seed component %s: %w", c.ID, err)
		}
		inserted++
	}

	for _, c := range configs {
		ids, err := json.Marshal(c.componentIDs)
		if err != nil {
			return fmt.Errorf("failed to encode component IDs for %s: %w", c.id, err)
		}

		_, err = s.conn.ExecContext(ctx,
			`INSERT INTO configurations (id, name, description, total_price,
				suit_gaming, suit_office, suit_creative, suit_programming, suit_general,
				perf_overall, perf_cpu, perf_gpu, perf_ram, perf_storage,
				component_ids, source)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 'seed')
			 ON CONFLICT (id) DO NOTHING`,
			c.id, c.name, c.description, c.price,
			c.suit["gaming"], c.suit["office"], c.suit["creative"], c.suit["programming"], c.suit["general"],
			c.perf.Overall, c.perf.CPU, c.perf.GPU, c.perf.RAM, c.perf.Storage,
			string(ids))
		if err != nil {
			return fmt.Errorf("failed to seed configuration %s: %w", c.id, err)
		}
		inserted++
	}

	logging.Info().Int("rows", inserted).Msg("Mock catalog data seeded")
	return nil
}
