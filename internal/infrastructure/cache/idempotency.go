// Package cache holds the shared-state helpers of the API: idempotency
// stores for replaying repeated requests and locks for singleton jobs.
package cache

import (
	"context"
	"errors"
	"time"
)

// ErrRequestInProgress is returned when a key is reserved but has no response yet
var ErrRequestInProgress = errors.New("request with this idempotency key is in progress")

// StoredResponse is the response replayed for a repeated request
type StoredResponse struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type"`
	Body        []byte `json:"body"`
}

// IdempotencyStore remembers the outcome of requests by key.
// A key is first reserved, then completed with the response, or released
// when the request failed and may be retried.
type IdempotencyStore interface {
	// Reserve claims the key for ttl. It returns false when the key is
	// already reserved or completed.
	Reserve(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// Complete stores the response for a reserved key
	Complete(ctx context.Context, key string, resp StoredResponse, ttl time.Duration) error

	// Lookup returns the stored response. It returns ErrRequestInProgress
	// when the key is reserved without a response and nil, nil when unknown.
	Lookup(ctx context.Context, key string) (*StoredResponse, error)

	// Release forgets the key
	Release(ctx context.Context, key string) error

	Close() error
}
