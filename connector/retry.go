package connector

import (
	"context"
	"fmt"
	"time"
)

// retryConnect calls connectFn until it succeeds, making at most
// 1+opts.MaxRetries attempts with exponential backoff in between.
func retryConnect(ctx context.Context, opts RetryConfig, connectFn func(context.Context) (Connection, error)) (Connection, error) {
	var err error
	var conn Connection
	delay := opts.BaseDelay
	if delay <= 0 {
		delay = time.Second // default
	}

	for i := 0; i <= opts.MaxRetries; i++ {
		conn, err = connectFn(ctx)
		if err == nil {
			return conn, nil
		}
		if i == opts.MaxRetries {
			break
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
			delay *= 2
			if delay > opts.MaxDelay && opts.MaxDelay > 0 {
				delay = opts.MaxDelay
			}
		}
	}
	return nil, fmt.Errorf("failed to connect after %d retries: %w", opts.MaxRetries, err)
}
