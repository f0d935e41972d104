// RigMatch - PC Build Matching and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rigmatch

package events

import (
	"context"
	"fmt"
	"sync"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/goccy/go-json"

	"github.com/tomtom215/rigmatch/internal/logging"
	"github.com/tomtom215/rigmatch/internal/metrics"
)

// Invalidator clears cached recommendation results after feedback arrives.
type Invalidator interface {
	InvalidateResults(ctx context.Context) (int, error)
}

// Consumer drains the feedback topic and invalidates stale recommendation
// caches. Feedback changes nothing about a configuration's stored ratings
// yet, but cached results carry session-shaped limits and the product
// decision is to recompute after any feedback lands.
type Consumer struct {
	bus         *Bus
	invalidator Invalidator

	mu      sync.Mutex
	started bool
	done    chan struct{}
}

// NewConsumer wires a consumer to the bus and invalidation target.
func NewConsumer(bus *Bus, invalidator Invalidator) *Consumer {
	return &Consumer{bus: bus, invalidator: invalidator}
}

// Start subscribes and processes feedback events until ctx is cancelled
// or the bus closes. It is safe to call once; subsequent calls error.
func (c *Consumer) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.started {
		c.mu.Unlock()
		return fmt.Errorf("feedback consumer already started")
	}
	c.started = true
	c.done = make(chan struct{})
	c.mu.Unlock()

	messages, err := c.bus.Subscribe(ctx)
	if err != nil {
		return err
	}

	go c.run(ctx, messages)
	return nil
}

func (c *Consumer) run(ctx context.Context, messages <-chan *message.Message) {
	defer close(c.done)

	for msg := range messages {
		c.handle(ctx, msg)
	}
}

func (c *Consumer) handle(ctx context.Context, msg *message.Message) {
	logger := logging.WithComponent("events")

	var event FeedbackEvent
	if err := json.Unmarshal(msg.Payload, &event); err != nil {
		logger.Error().Err(err).Str("message_id", msg.UUID).Msg("Discarding malformed feedback event")
		metrics.FeedbackEventsProcessed.WithLabelValues("error").Inc()
		// Acked, not nacked: a malformed payload never becomes parseable.
		msg.Ack()
		return
	}

	cleared, err := c.invalidator.InvalidateResults(ctx)
	if err != nil {
		logger.Error().Err(err).
			Str("configuration_id", event.ConfigurationID).
			Msg("Cache invalidation after feedback failed")
		metrics.FeedbackEventsProcessed.WithLabelValues("error").Inc()
		msg.Nack()
		return
	}

	logger.Debug().
		Str("configuration_id", event.ConfigurationID).
		Int("rating", event.Rating).
		Int("cleared", cleared).
		Msg("Feedback event processed")
	metrics.FeedbackEventsProcessed.WithLabelValues("ok").Inc()
	msg.Ack()
}

// Wait blocks until the consumer's message stream has drained. Callers
// should cancel the subscription context or close the bus first.
func (c *Consumer) Wait() {
	c.mu.Lock()
	done := c.done
	c.mu.Unlock()
	if done != nil {
		<-done
	}
}
