//go:build darwin

package platform

import (
	"fmt"
	"os"
	"os/exec"
	"strconv"

	"intervaltimer/internal/core/intervals"
)

// caffeinateContinuation runs caffeinate tied to this process, so the
// assertion also ends if the app dies without releasing it.
type caffeinateContinuation struct {
	path string
}

func newContinuation(string) intervals.Continuation {
	path, err := exec.LookPath("caffeinate")
	if err != nil {
		return unsupportedContinuation{}
	}
	return &caffeinateContinuation{path: path}
}

func (continuation *caffeinateContinuation) Acquire(string) (intervals.Lease, error) {
	command := exec.Command(continuation.path, "-i", "-w", strconv.Itoa(os.Getpid()))
	if err := command.Start(); err != nil {
		return nil, fmt.Errorf("start caffeinate: %w", err)
	}

	return newLease(func() error {
		if err := command.Process.Kill(); err != nil {
			return fmt.Errorf("stop caffeinate: %w", err)
		}
		_ = command.Wait()
		return nil
	}), nil
}
