// RigMatch - PC Build Matching and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rigmatch

package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/tomtom215/rigmatch/internal/logging"
)

// BadgerStore implements Store using BadgerDB for durable storage.
// Cached results survive restarts; TTL expiry is handled by Badger itself.
type BadgerStore struct {
	db *badger.DB
}

// NewBadgerStore opens a Badger-backed cache store at the given directory.
func NewBadgerStore(path string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil // Badger's own logger is too chatty; we log through zerolog

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger cache at %s: %w", path, err)
	}

	logging.Debug().Str("component", "cache").Str("path", path).Msg("badger cache opened")
	return &BadgerStore{db: db}, nil
}

// NewBadgerStoreWithDB wraps an already-open Badger database.
// The caller retains ownership of the database lifecycle.
func NewBadgerStoreWithDB(db *badger.DB) *BadgerStore {
	return &BadgerStore{db: db}
}

// Get retrieves a value by key. Returns ErrNotFound for absent or expired keys.
func (s *BadgerStore) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("get %s: %w", key, err)
		}

		value, err = item.ValueCopy(nil)
		return err
	})

	if err != nil {
		return nil, err
	}

	return value, nil
}

// Set stores a value with the given TTL.
func (s *BadgerStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return s.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry([]byte(key), value)
		if ttl > 0 {
			entry = entry.WithTTL(ttl)
		}
		if err := txn.SetEntry(entry); err != nil {
			return fmt.Errorf("set %s: %w", key, err)
		}
		return nil
	})
}

// ClearPattern deletes all keys sharing the given prefix.
// Returns the number of keys removed.
func (s *BadgerStore) ClearPattern(ctx context.Context, prefix string) (int, error) {
	// Collect matching keys first; deleting inside the iterator's
	// transaction conflicts with the iteration snapshot.
	var keys [][]byte

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		p := []byte(prefix)
		for it.Seek(p); it.ValidForPrefix(p); it.Next() {
			keys = append(keys, it.Item().KeyCopy(nil))
		}
		return nil
	})

	if err != nil {
		return 0, fmt.Errorf("scan prefix %s: %w", prefix, err)
	}

	count := 0
	for _, key := range keys {
		err := s.db.Update(func(txn *badger.Txn) error {
			if err := txn.Delete(key); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
				return err
			}
			return nil
		})
		if err != nil {
			logging.Warn().Err(err).Str("key", string(key)).Msg("failed to delete cache key")
			continue
		}
		count++
	}

	return count, nil
}

// Close closes the underlying Badger database.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}
