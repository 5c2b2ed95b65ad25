package engine

import (
	"context"
	"errors"

	"fieldbot/internal/domain"
)

// MultiRecorder fans one exchange out to several recorders (the durable log
// plus optional event publishers). Every recorder runs even when an earlier
// one fails; errors are joined for the caller to log.
type MultiRecorder []domain.ExchangeRecorder

func (m MultiRecorder) Append(ctx context.Context, agentID int64, message, response string) error {
	var errs []error
	for _, r := range m {
		if err := r.Append(ctx, agentID, message, response); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
