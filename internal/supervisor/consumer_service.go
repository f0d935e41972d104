// RigMatch - PC Build Matching and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rigmatch

package supervisor

import (
	"context"
	"fmt"

	"github.com/tomtom215/rigmatch/internal/events"
)

// FeedbackConsumerService runs the feedback event consumer under the
// supervisor. Each Serve call builds a fresh consumer so suture restarts
// get a clean subscription.
type FeedbackConsumerService struct {
	bus         *events.Bus
	invalidator events.Invalidator
}

// NewFeedbackConsumerService creates the supervised consumer service.
func NewFeedbackConsumerService(bus *events.Bus, invalidator events.Invalidator) *FeedbackConsumerService {
	return &FeedbackConsumerService{bus: bus, invalidator: invalidator}
}

// Serve implements suture.Service.
func (s *FeedbackConsumerService) Serve(ctx context.Context) error {
	consumer := events.NewConsumer(s.bus, s.invalidator)
	if err := consumer.Start(ctx); err != nil {
		return fmt.Errorf("start feedback consumer: %w", err)
	}

	<-ctx.Done()
	consumer.Wait()
	return ctx.Err()
}

// String implements fmt.Stringer for supervisor logs.
func (s *FeedbackConsumerService) String() string { return "feedback-consumer" }
