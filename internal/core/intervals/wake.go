package intervals

import (
	"errors"
	"sync"
	"time"
)

// ErrContinuationUnsupported indicates the host cannot keep the process scheduled.
var ErrContinuationUnsupported = errors.New("background continuation unsupported")

// WakeSource delivers periodic wake-ups until the returned cancel func is called.
// A wake that was already in flight may still arrive after cancel.
type WakeSource interface {
	Every(interval time.Duration, wake func(time.Time)) (cancel func())
}

// Continuation grants a bounded promise to keep counting down while not foregrounded.
type Continuation interface {
	Acquire(reason string) (Lease, error)
}

// Lease is a granted continuation. Release must be safe to call once.
type Lease interface {
	Release() error
}

// TickerSource drives wake-ups from a time.Ticker.
type TickerSource struct{}

// Every starts a ticker goroutine. Wakes carry the delivery time rather than the
// scheduled tick time, so a stale buffered tick still measures real elapsed time.
func (TickerSource) Every(interval time.Duration, wake func(time.Time)) func() {
	ticker := time.NewTicker(interval)
	stopCh := make(chan struct{})
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-stopCh:
				return
			case <-ticker.C:
				wake(time.Now())
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() { close(stopCh) })
	}
}
