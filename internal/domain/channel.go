package domain

import "context"

// Responder answers a single agent message and returns the reply text.
// Implementations must preserve submission order for one agent's requests.
type Responder interface {
	Ask(ctx context.Context, agentID int64, text string) (string, error)
}

// Channel is the interface for agent-facing I/O (Telegram, CLI).
type Channel interface {
	Name() string
	Start(ctx context.Context, responder Responder) error
	Stop() error
}
