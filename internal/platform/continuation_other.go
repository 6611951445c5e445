//go:build !linux && !darwin && !windows

package platform

import "intervaltimer/internal/core/intervals"

func newContinuation(string) intervals.Continuation {
	return unsupportedContinuation{}
}
