// RigMatch - PC Build Matching and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rigmatch

package cache

import (
	"fmt"

	"github.com/tomtom215/rigmatch/internal/config"
)

// New creates a cache Store from configuration. Supported stores are "badger"
// (durable, production) and "memory" (development and tests).
func New(cfg config.CacheConfig) (Store, error) {
	switch cfg.Store {
	case "badger":
		return NewBadgerStore(cfg.Path)
	case "memory":
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown cache store %q", cfg.Store)
	}
}
