// pkg/retry/retry.go - retrying startup actions with exponential backoff.
//
// Only used for infrastructure the binaries depend on at startup (database
// connections). The install pipeline never retries.

package retry

import (
	"context"
	"fmt"
	"time"

	"github.com/windowsadmins/appstore/pkg/logging"
)

// RetryConfig defines the configuration for retry attempts
type RetryConfig struct {
	MaxRetries      int
	InitialInterval time.Duration
	Multiplier      float64
}

// Retry retries a given function with exponential backoff until it succeeds,
// the attempts run out or ctx is done.
func Retry(ctx context.Context, config RetryConfig, action func() error) error {
	interval := config.InitialInterval
	var lastErr error

	for attempt := 1; attempt <= config.MaxRetries; attempt++ {
		err := action()
		if err == nil {
			return nil
		}
		lastErr = err

		if attempt == config.MaxRetries {
			logging.Warn("Attempt failed, no more retries",
				"attempt", attempt, "max_attempts", config.MaxRetries, "error", err)
			break
		}
		logging.Warn("Attempt failed, retrying",
			"attempt", attempt, "max_attempts", config.MaxRetries,
			"retry_delay", interval.String(), "error", err)

		select {
		case <-ctx.Done():
			return fmt.Errorf("retry aborted after %d attempts: %w", attempt, ctx.Err())
		case <-time.After(interval):
		}
		interval = time.Duration(float64(interval) * config.Multiplier)
	}

	return fmt.Errorf("action failed after %d attempts: %w", config.MaxRetries, lastErr)
}
