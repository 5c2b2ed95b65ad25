package domain

import (
	"context"
	"errors"
)

// ErrStoreUnavailable marks a lookup infrastructure failure. The engine converts
// it into an apology reply; it never propagates past HandleMessage.
var ErrStoreUnavailable = errors.New("store unavailable")

// DataStore is the external store the query executor reads from.
// Both calls are pure lookups; the core never mutates payout or order data.
type DataStore interface {
	// SumPayout returns the summed payout amounts for the agent whose paying
	// date falls within the range, inclusive on both ends. Zero when no rows match.
	SumPayout(ctx context.Context, agentID int64, r DateRange) (float64, error)

	// FindOrdersByCustomer matches the fragment case-insensitively against
	// customer names, newest order first, capped at 10 records.
	FindOrdersByCustomer(ctx context.Context, fragment string) ([]OrderRecord, error)
}

// ExchangeRecorder appends one processed exchange. Best-effort: callers log
// failures and move on, the reply already computed is never affected.
type ExchangeRecorder interface {
	Append(ctx context.Context, agentID int64, message, response string) error
}

// ExchangeLog is a recorder that can also be read back for history listings.
type ExchangeLog interface {
	ExchangeRecorder
	Recent(ctx context.Context, agentID int64, limit int) ([]Exchange, error)
}

// AgentDirectory resolves agents for authentication.
type AgentDirectory interface {
	AgentByEmail(ctx context.Context, email string) (*Agent, error)
}
