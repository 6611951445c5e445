// Package animation plays short frame sequences, such as icon pulses, on a
// background goroutine.
package animation

import (
	"context"
	"sync"
	"time"

	"fyne.io/fyne/v2"
)

// Frame shows Resource for Hold.
type Frame struct {
	Resource fyne.Resource
	Hold     time.Duration
}

// Sequence is played in order; Rest is shown once it finishes or is stopped.
type Sequence struct {
	Frames []Frame
	Rest   fyne.Resource
	Repeat int
}

// Pulse alternates highlight and rest count times, holding each for hold.
func Pulse(rest, highlight fyne.Resource, count int, hold time.Duration) Sequence {
	if count < 1 {
		count = 1
	}
	return Sequence{
		Frames: []Frame{{Resource: highlight, Hold: hold}, {Resource: rest, Hold: hold}},
		Rest:   rest,
		Repeat: count,
	}
}

// Engine drives a single sequence at a time through update.
type Engine struct {
	mu     sync.Mutex
	update func(fyne.Resource)
	cancel context.CancelFunc
	done   chan struct{}
}

// New creates an animation engine that reports frames to update.
func New(update func(fyne.Resource)) *Engine {
	return &Engine{update: update}
}

// Play replaces any running sequence. The returned channel closes when the
// sequence ends or is replaced.
func (engine *Engine) Play(ctx context.Context, sequence Sequence) <-chan struct{} {
	engine.mu.Lock()
	if engine.cancel != nil {
		engine.cancel()
	}
	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	engine.cancel = cancel
	engine.done = done
	engine.mu.Unlock()

	go func() {
		defer close(done)
		defer cancel()
		engine.run(runCtx, sequence)
	}()
	return done
}

// Stop ends the running sequence and shows its rest frame.
func (engine *Engine) Stop() {
	engine.mu.Lock()
	cancel := engine.cancel
	done := engine.done
	engine.cancel = nil
	engine.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
}

func (engine *Engine) run(ctx context.Context, sequence Sequence) {
	defer func() {
		if sequence.Rest != nil {
			engine.update(sequence.Rest)
		}
	}()

	repeat := sequence.Repeat
	if repeat < 1 {
		repeat = 1
	}
	for round := 0; round < repeat; round++ {
		for _, frame := range sequence.Frames {
			if frame.Resource != nil {
				engine.update(frame.Resource)
			}
			if !sleepWithContext(ctx, frame.Hold) {
				return
			}
		}
	}
}

func sleepWithContext(ctx context.Context, duration time.Duration) bool {
	if duration <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(duration)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
