// Package cache provides Redis-backed stores for the governance core.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// processedEventKeyPrefix namespaces billing event dedupe keys.
const processedEventKeyPrefix = "billing_event:"

// ProcessedEventStore is a Redis-backed dedupe store for billing webhook
// events. Event ids are claimed with SETNX so concurrent deliveries of the
// same event race to a single winner, and expire after the TTL since the
// provider stops retrying long before that.
type ProcessedEventStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewProcessedEventStore(client *redis.Client, ttl time.Duration) *ProcessedEventStore {
	return &ProcessedEventStore{client: client, ttl: ttl}
}

func (s *ProcessedEventStore) buildKey(eventID string) string {
	return processedEventKeyPrefix + eventID
}

// MarkProcessed claims the event id. Returns false when another delivery
// already claimed it.
func (s *ProcessedEventStore) MarkProcessed(ctx context.Context, eventID string) (bool, error) {
	ok, err := s.client.SetNX(ctx, s.buildKey(eventID), "1", s.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to claim event id: %w", err)
	}
	return ok, nil
}

// Release forgets a claimed event id so the provider's retry of a failed
// apply is processed again.
func (s *ProcessedEventStore) Release(ctx context.Context, eventID string) error {
	if err := s.client.Del(ctx, s.buildKey(eventID)).Err(); err != nil {
		return fmt.Errorf("failed to release event id: %w", err)
	}
	return nil
}
