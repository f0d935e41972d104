// RigMatch - PC Build Matching and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rigmatch

// Package cache provides the recommendation result cache. Two backends
// implement the same Store contract: a durable Badger store for production
// and an in-memory store for development and tests.
package cache

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
)

// ErrNotFound is returned by Get when a key is absent or expired.
var ErrNotFound = errors.New("cache: key not found")

// Store is the result cache contract. Values are opaque byte slices; callers
// own serialization. Entries expire after their TTL. ClearPattern removes all
// keys sharing a prefix and returns the number removed.
//
// The store is not linearizable: a duplicate concurrent compute-and-set for
// the same key is tolerated, last write wins.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	ClearPattern(ctx context.Context, prefix string) (int, error)
	Close() error
}

// GenerateKey creates a deterministic cache key from a namespace prefix and
// parameters. Parameters are serialized to JSON and hashed for a compact key.
func GenerateKey(prefix string, params interface{}) string {
	data, err := json.Marshal(params)
	if err != nil {
		// Fallback to simple string key
		return fmt.Sprintf("%s:%v", prefix, params)
	}

	hash := sha256.Sum256(data)
	return fmt.Sprintf("%s:%x", prefix, hash[:16])
}
