package rename

import (
	"sync"
	"time"
)

// DefaultProgressDelay is how long an accepted rename may run before the
// progress indicator appears.
const DefaultProgressDelay = 250 * time.Millisecond

// ProgressMessage is shown while a rename is being applied.
const ProgressMessage = "Renaming..."

// showWhile runs fn and shows progress if fn is still running after delay.
// The indicator is always stopped before showWhile returns.
func showWhile[T any](p Progress, delay time.Duration, message string, fn func() T) T {
	if p == nil {
		return fn()
	}

	var (
		mu       sync.Mutex
		finished bool
		stop     func()
	)
	timer := time.AfterFunc(delay, func() {
		mu.Lock()
		defer mu.Unlock()
		if !finished {
			stop = p.Start(message)
		}
	})

	result := fn()

	timer.Stop()
	mu.Lock()
	finished = true
	if stop != nil {
		stop()
	}
	mu.Unlock()

	return result
}
