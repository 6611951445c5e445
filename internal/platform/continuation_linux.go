//go:build linux

package platform

import (
	"fmt"
	"syscall"

	"github.com/godbus/dbus/v5"

	"intervaltimer/internal/core/intervals"
)

const (
	logindService = "org.freedesktop.login1"
	logindPath    = dbus.ObjectPath("/org/freedesktop/login1")
	inhibitMethod = "org.freedesktop.login1.Manager.Inhibit"
)

// logindContinuation takes a systemd-logind inhibitor lock. The lock lives as
// long as the returned file descriptor stays open.
type logindContinuation struct {
	appName string
	connect func() (*dbus.Conn, error)
}

func newContinuation(appName string) intervals.Continuation {
	return &logindContinuation{appName: appName, connect: dbus.SystemBus}
}

func (continuation *logindContinuation) Acquire(reason string) (intervals.Lease, error) {
	conn, err := continuation.connect()
	if err != nil {
		return nil, fmt.Errorf("%w: connect system bus: %v", intervals.ErrContinuationUnsupported, err)
	}

	var fd dbus.UnixFD
	err = conn.Object(logindService, logindPath).
		Call(inhibitMethod, 0, "sleep:idle", continuation.appName, reason, "block").
		Store(&fd)
	if err != nil {
		return nil, fmt.Errorf("logind inhibit: %w", err)
	}

	return newLease(func() error {
		if err := syscall.Close(int(fd)); err != nil {
			return fmt.Errorf("release logind inhibitor: %w", err)
		}
		return nil
	}), nil
}
