package platform

import (
	"sync"

	"intervaltimer/internal/core/intervals"
)

// NewContinuation returns the OS provider that keeps the machine awake while
// a countdown runs. Acquire fails with intervals.ErrContinuationUnsupported
// where no mechanism exists.
func NewContinuation(appName string) intervals.Continuation {
	return newContinuation(appName)
}

// lease releases its hold exactly once.
type lease struct {
	once    sync.Once
	release func() error
	err     error
}

func newLease(release func() error) *lease {
	return &lease{release: release}
}

func (held *lease) Release() error {
	held.once.Do(func() {
		held.err = held.release()
	})
	return held.err
}

type unsupportedContinuation struct{}

func (unsupportedContinuation) Acquire(string) (intervals.Lease, error) {
	return nil, intervals.ErrContinuationUnsupported
}
