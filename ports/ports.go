// Package ports defines interfaces (contracts) between layers.
// These interfaces enable dependency injection and testability.
// Implementations live in adapters/.
package ports

import (
	"context"
	"time"

	"github.com/artpar/wiregate/domain/calllog"
)

// -----------------------------------------------------------------------------
// Dispatch Ports
// -----------------------------------------------------------------------------

// Cable is the client-side transport capability. It carries one call
// (feature, method, validated input) to a router somewhere and returns the
// raw, unvalidated result. It must fail on transport or authentication
// failure. Implementations live in adapters/httpcable and adapters/loopback.
type Cable func(ctx context.Context, feature, method string, input any) (any, error)

// Handler executes one method of a feature implementation with
// schema-validated input.
type Handler func(ctx context.Context, input any) (any, error)

// Implementation binds method names to handlers for one feature.
type Implementation map[string]Handler

// Factory constructs a fresh Implementation for one dispatch. It runs on
// every call, never cached, so handlers may close over per-call state
// carried by ctx. Expensive construction must be memoized by the caller.
type Factory func(ctx context.Context) Implementation

// -----------------------------------------------------------------------------
// Infrastructure Ports
// -----------------------------------------------------------------------------

// Clock abstracts time for testability.
type Clock interface {
	Now() time.Time
}

// IDGenerator generates unique identifiers.
type IDGenerator interface {
	New() string
}

// Hasher hashes and verifies API keys at rest.
type Hasher interface {
	// Hash generates a hash from plaintext.
	Hash(plaintext string) ([]byte, error)

	// Compare checks if plaintext matches hash.
	Compare(hash []byte, plaintext string) bool
}

// CallLog persists dispatch audit entries.
type CallLog interface {
	// Record stores one dispatch entry.
	Record(ctx context.Context, e calllog.Entry) error

	// Recent returns the most recent entries, newest first.
	Recent(ctx context.Context, limit int) ([]calllog.Entry, error)

	// Summary aggregates entries for one feature over a period.
	Summary(ctx context.Context, feature string, start, end time.Time) (calllog.Summary, error)
}
