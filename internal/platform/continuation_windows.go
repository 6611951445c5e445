//go:build windows

package platform

import (
	"fmt"
	"runtime"
	"syscall"

	"intervaltimer/internal/core/intervals"
)

const (
	esSystemRequired = 0x00000001
	esContinuous     = 0x80000000
)

// executionStateContinuation holds SetThreadExecutionState on a dedicated,
// locked OS thread because the flag belongs to the calling thread.
type executionStateContinuation struct {
	proc *syscall.LazyProc
}

func newContinuation(string) intervals.Continuation {
	kernel32 := syscall.NewLazyDLL("kernel32.dll")
	return &executionStateContinuation{proc: kernel32.NewProc("SetThreadExecutionState")}
}

func (continuation *executionStateContinuation) Acquire(string) (intervals.Lease, error) {
	if err := continuation.proc.Find(); err != nil {
		return nil, fmt.Errorf("%w: %v", intervals.ErrContinuationUnsupported, err)
	}

	acquired := make(chan error, 1)
	done := make(chan struct{})
	released := make(chan struct{})
	go func() {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()
		defer close(released)

		result, _, err := continuation.proc.Call(uintptr(esContinuous | esSystemRequired))
		if result == 0 {
			acquired <- fmt.Errorf("set thread execution state: %w", err)
			return
		}
		acquired <- nil
		<-done
		continuation.proc.Call(uintptr(esContinuous))
	}()

	if err := <-acquired; err != nil {
		return nil, err
	}
	return newLease(func() error {
		close(done)
		<-released
		return nil
	}), nil
}
