package storage

import (
	"errors"
	"math/rand"
	"strings"
	"time"
)

type retryConfig struct {
	maxRetries int
	baseDelay  time.Duration
	maxDelay   time.Duration
}

var defaultRetryConfig = retryConfig{
	maxRetries: 3,
	baseDelay:  25 * time.Millisecond,
	maxDelay:   250 * time.Millisecond,
}

// retryOnContention reruns fn while SQLite reports a busy or locked database.
func retryOnContention(fn func() error) error {
	return retryOp(defaultRetryConfig, fn)
}

func isBusy(err error) bool {
	if err == nil || errors.Is(err, ErrNotFound) || errors.Is(err, ErrDuplicateID) {
		return false
	}
	msg := err.Error()
	for _, pattern := range []string{"SQLITE_BUSY", "SQLITE_LOCKED", "database is locked", "database table is locked"} {
		if strings.Contains(msg, pattern) {
			return true
		}
	}
	return false
}

func retryOp(cfg retryConfig, fn func() error) error {
	var err error
	for attempt := 0; attempt <= cfg.maxRetries; attempt++ {
		if err = fn(); !isBusy(err) {
			return err
		}
		if attempt < cfg.maxRetries {
			time.Sleep(backoff(cfg, attempt))
		}
	}
	return err
}

func backoff(cfg retryConfig, attempt int) time.Duration {
	delay := cfg.baseDelay << uint(attempt)
	if delay > cfg.maxDelay {
		delay = cfg.maxDelay
	}
	return delay + time.Duration(rand.Int63n(int64(cfg.baseDelay)))
}
