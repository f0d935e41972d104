// RigMatch - PC Build Matching and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rigmatch

// Package events carries feedback submissions from the API to the cache
// invalidation consumer over an in-process Watermill pub/sub channel.
package events

import (
	"context"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/goccy/go-json"

	"github.com/tomtom215/rigmatch/internal/config"
	"github.com/tomtom215/rigmatch/internal/metrics"
)

// FeedbackEvent records a requester's verdict on a recommendation.
type FeedbackEvent struct {
	FeedbackID      string    `json:"feedback_id"`
	ConfigurationID string    `json:"configuration_id"`
	SessionID       string    `json:"session_id,omitempty"`
	Rating          int       `json:"rating"`
	Helpful         bool      `json:"helpful"`
	Comment         string    `json:"comment,omitempty"`
	SubmittedAt     time.Time `json:"submitted_at"`
}

// Bus is the in-process feedback event bus. Publishing is fire-and-forget
// from the API's perspective; the consumer picks events up asynchronously.
type Bus struct {
	pubsub *gochannel.GoChannel
	topic  string
}

// NewBus creates the event bus with the configured topic and buffer.
func NewBus(cfg config.EventsConfig, logger watermill.LoggerAdapter) *Bus {
	if logger == nil {
		logger = watermill.NopLogger{}
	}

	pubsub := gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer:            int64(cfg.BufferSize),
		Persistent:                     false,
		BlockPublishUntilSubscriberAck: false,
	}, logger)

	return &Bus{pubsub: pubsub, topic: cfg.FeedbackTopic}
}

// PublishFeedback publishes a feedback event to the bus.
func (b *Bus) PublishFeedback(ctx context.Context, event FeedbackEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode feedback event: %w", err)
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.SetContext(ctx)

	if err := b.pubsub.Publish(b.topic, msg); err != nil {
		return fmt.Errorf("publish feedback event: %w", err)
	}

	metrics.FeedbackEventsPublished.Inc()
	return nil
}

// Subscribe returns the feedback message stream for a consumer.
func (b *Bus) Subscribe(ctx context.Context) (<-chan *message.Message, error) {
	ch, err := b.pubsub.Subscribe(ctx, b.topic)
	if err != nil {
		return nil, fmt.Errorf("subscribe to %s: %w", b.topic, err)
	}
	return ch, nil
}

// Close shuts the bus down. In-flight messages are dropped.
func (b *Bus) Close() error {
	return b.pubsub.Close()
}
