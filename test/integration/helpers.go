//go:build integration

package integration

import (
	"fmt"
	"time"
)

// pollInterval is well below the management plugin's default stats
// collection interval of 5s.
const pollInterval = 500 * time.Millisecond

// WaitForBroker calls ready until it succeeds or timeout passes. The AMQP
// listener accepts connections before the management API serves queue
// stats, and published messages show up in those stats only after the next
// collection, so both startup and assertions on message counts poll.
func WaitForBroker(ready func() error, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	var lastErr error
	for time.Now().Before(deadline) {
		if lastErr = ready(); lastErr == nil {
			return nil
		}
		time.Sleep(pollInterval)
	}
	return fmt.Errorf("rabbitmq not ready after %s: %w", timeout, lastErr)
}
