package usecase

import (
	"context"

	"github.com/riskibarqy/live-cricket/internal/platform/logging"
)

// logFailure records err under a "Component | Operation" location tag and
// hands the same error back for the caller to return.
func logFailure(ctx context.Context, logger *logging.Logger, location string, err error, args ...any) error {
	if err == nil {
		return nil
	}
	fields := append([]any{"location", location, "error", err}, args...)
	logger.ErrorContext(ctx, "operation failed", fields...)
	return err
}
