package bot

import (
	"context"
	"time"
)

// Notifier periodically emits a "still working" signal while a long
// operation runs.
type Notifier struct {
	Interval time.Duration
	Signal   func()
}

// Start launches the signal loop and returns a stop function that
// cancels the loop and waits for it to exit. Callers defer stop (and
// may also call it early); once stop returns, no further signal can
// fire, so the final result is never followed by a stray "typing".
// stop is idempotent.
func (n *Notifier) Start(ctx context.Context) (stop func()) {
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	go func() {
		defer close(done)
		ticker := time.NewTicker(n.Interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				n.Signal()
			}
		}
	}()

	return func() {
		cancel()
		<-done
	}
}
