package weatherapi

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// WaitReady probes GET /history until the backend answers, backing off
// exponentially for up to maxWait. This is a readiness check run before any
// user action; the panel operations themselves never retry.
//
// An error status still counts as an answer and ends the wait with that error.
func (c *Client) WaitReady(ctx context.Context, maxWait time.Duration) error {
	attempts := 0
	operation := func() error {
		attempts++
		_, err := c.ListHistory(ctx)
		if err == nil {
			return nil
		}
		if errors.Is(err, ErrTransport) {
			c.logger.Info("backend not ready", "url", c.baseURL, "attempt", attempts, "error", err)
			return err
		}
		return backoff.Permanent(err)
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 250 * time.Millisecond
	bo.MaxInterval = 5 * time.Second
	bo.MaxElapsedTime = maxWait
	if err := backoff.Retry(operation, backoff.WithContext(bo, ctx)); err != nil {
		return fmt.Errorf("wait for backend after %d attempts: %w", attempts, err)
	}
	c.logger.Info("backend ready", "url", c.baseURL, "attempts", attempts)
	return nil
}
