// Package intervals runs a phase list back-to-back as a pausable countdown.
package intervals

import (
	"fmt"
	"sync"
	"time"

	"intervaltimer/internal/core/model"
)

const continuationReason = "interval timer running"

// Config contains runtime options for the Engine.
type Config struct {
	TickInterval time.Duration
	Wake         WakeSource
	Now          func() time.Time
	Callbacks    Callbacks
}

// Engine is a state machine that sequences timed phases.
type Engine struct {
	mu           sync.Mutex
	options      Config
	callbacks    Callbacks
	continuation Continuation
	lease        Lease
	// wantLease asks the next flush to acquire a lease for the running countdown.
	wantLease bool
	// staleLeases wait for release outside the lock.
	staleLeases []Lease

	phases    []model.Phase
	state     State
	index     int
	remaining time.Duration
	lastTick  time.Time

	// run identifies the current engine run; events from older runs are dropped.
	run uint64
	// wakeGen identifies the active countdown; wakes from older ones are ignored.
	wakeGen    uint64
	cancelWake func()

	subscribers []chan Event
	pending     []Event
	delivering  bool
	closed      bool
}

// New creates an idle Engine with the provided options.
func New(options Config) *Engine {
	if options.TickInterval <= 0 {
		options.TickInterval = time.Second
	}
	if options.Wake == nil {
		options.Wake = TickerSource{}
	}
	if options.Now == nil {
		options.Now = time.Now
	}
	return &Engine{
		options:   options,
		callbacks: options.Callbacks,
		state:     StateIdle,
	}
}

// SetContinuation injects the host's background continuation provider.
func (engine *Engine) SetContinuation(continuation Continuation) {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	engine.continuation = continuation
}

// SetCallbacks replaces the event callbacks.
func (engine *Engine) SetCallbacks(callbacks Callbacks) {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	engine.callbacks = callbacks
}

// Subscribe registers a new observer channel. Sends never block; a full
// channel misses the event.
func (engine *Engine) Subscribe(buffer int) <-chan Event {
	if buffer <= 0 {
		buffer = 1
	}
	ch := make(chan Event, buffer)
	engine.mu.Lock()
	defer engine.mu.Unlock()
	if engine.closed {
		close(ch)
		return ch
	}
	engine.subscribers = append(engine.subscribers, ch)
	return ch
}

// Load stops any active run and replaces the phase list with a copy of phases.
func (engine *Engine) Load(phases []model.Phase) {
	engine.mu.Lock()
	if engine.closed {
		engine.mu.Unlock()
		return
	}
	engine.stopLocked(engine.options.Now())
	engine.phases = append([]model.Phase(nil), phases...)
	engine.mu.Unlock()
	engine.flush()
}

// Phases returns a copy of the loaded phase list.
func (engine *Engine) Phases() []model.Phase {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	return append([]model.Phase(nil), engine.phases...)
}

// Status returns the current run state.
func (engine *Engine) Status() Status {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	status := Status{
		State:      engine.state,
		PhaseIndex: engine.index,
		PhaseCount: len(engine.phases),
		Remaining:  engine.remaining,
	}
	if engine.index < len(engine.phases) {
		status.Phase = engine.phases[engine.index]
	}
	return status
}

// Start begins a run from the first phase, or resumes a paused run.
// It is a no-op with an empty phase list, while running, or once complete.
func (engine *Engine) Start() {
	engine.mu.Lock()
	if engine.closed {
		engine.mu.Unlock()
		return
	}
	now := engine.options.Now()
	switch engine.state {
	case StateIdle:
		if len(engine.phases) > 0 {
			engine.beginRunLocked(now)
		}
	case StatePaused:
		engine.resumeLocked(now)
	}
	engine.mu.Unlock()
	engine.flush()
}

// Pause freezes the countdown.
func (engine *Engine) Pause() {
	engine.mu.Lock()
	if engine.closed || engine.state != StateRunning {
		engine.mu.Unlock()
		return
	}
	now := engine.options.Now()
	engine.consumeLocked(now)
	if engine.state == StateRunning {
		engine.stopWakeLocked()
		engine.releaseLeaseLocked()
		engine.state = StatePaused
		engine.queueStateLocked(now)
	}
	engine.mu.Unlock()
	engine.flush()
}

// Resume continues a paused countdown from the frozen remaining time.
func (engine *Engine) Resume() {
	engine.mu.Lock()
	if engine.closed || engine.state != StatePaused {
		engine.mu.Unlock()
		return
	}
	engine.resumeLocked(engine.options.Now())
	engine.mu.Unlock()
	engine.flush()
}

// SkipForward moves to the start of the next phase. No-op on the last phase.
func (engine *Engine) SkipForward() {
	engine.skip(1)
}

// SkipBackward moves to the start of the previous phase. No-op on the first phase.
func (engine *Engine) SkipBackward() {
	engine.skip(-1)
}

// Restart begins a new run from the first phase regardless of state.
func (engine *Engine) Restart() {
	engine.mu.Lock()
	if engine.closed || len(engine.phases) == 0 {
		engine.mu.Unlock()
		return
	}
	engine.stopWakeLocked()
	engine.beginRunLocked(engine.options.Now())
	engine.mu.Unlock()
	engine.flush()
}

// Stop cancels the run and returns to idle. Events of the stopped run that
// have not been delivered yet are dropped.
func (engine *Engine) Stop() {
	engine.mu.Lock()
	if engine.closed {
		engine.mu.Unlock()
		return
	}
	engine.stopLocked(engine.options.Now())
	engine.mu.Unlock()
	engine.flush()
}

// Close stops the engine and closes observer channels. The engine is unusable afterwards.
func (engine *Engine) Close() {
	engine.mu.Lock()
	if engine.closed {
		engine.mu.Unlock()
		return
	}
	engine.stopLocked(engine.options.Now())
	engine.run++
	engine.closed = true
	subscribers := engine.subscribers
	engine.subscribers = nil
	engine.pending = nil
	stale := engine.staleLeases
	engine.staleLeases = nil
	engine.mu.Unlock()

	for _, lease := range stale {
		_ = lease.Release()
	}
	for _, ch := range subscribers {
		close(ch)
	}
}

func (engine *Engine) skip(step int) {
	engine.mu.Lock()
	if engine.closed || (engine.state != StateRunning && engine.state != StatePaused) {
		engine.mu.Unlock()
		return
	}
	target := engine.index + step
	if target < 0 || target >= len(engine.phases) {
		engine.mu.Unlock()
		return
	}

	now := engine.options.Now()
	wasRunning := engine.state == StateRunning
	engine.stopWakeLocked()
	engine.index = target
	engine.remaining = phaseDuration(engine.phases[target])
	engine.queuePhaseLocked(now)
	if wasRunning {
		if engine.remaining <= 0 {
			engine.advanceLocked(now)
		}
		if engine.state == StateRunning {
			engine.startCountdownLocked(now)
		}
	}
	engine.mu.Unlock()
	engine.flush()
}

func (engine *Engine) beginRunLocked(now time.Time) {
	engine.run++
	engine.index = 0
	engine.remaining = phaseDuration(engine.phases[0])
	engine.state = StateRunning
	engine.queueStateLocked(now)
	engine.queuePhaseLocked(now)
	if engine.remaining <= 0 {
		engine.advanceLocked(now)
	}
	if engine.state == StateRunning {
		engine.startCountdownLocked(now)
	}
}

func (engine *Engine) resumeLocked(now time.Time) {
	engine.state = StateRunning
	engine.queueStateLocked(now)
	if engine.remaining <= 0 {
		engine.advanceLocked(now)
	}
	if engine.state == StateRunning {
		engine.startCountdownLocked(now)
	}
}

func (engine *Engine) stopLocked(now time.Time) {
	engine.run++
	engine.stopWakeLocked()
	engine.releaseLeaseLocked()
	engine.index = 0
	engine.remaining = 0
	if engine.state != StateIdle {
		engine.state = StateIdle
		engine.queueStateLocked(now)
	}
}

func (engine *Engine) startCountdownLocked(now time.Time) {
	engine.stopWakeLocked()
	engine.wantLease = true
	engine.lastTick = now
	generation := engine.wakeGen
	engine.cancelWake = engine.options.Wake.Every(engine.options.TickInterval, func(wakeTime time.Time) {
		engine.tick(generation, wakeTime)
	})
}

func (engine *Engine) stopWakeLocked() {
	if engine.cancelWake != nil {
		engine.cancelWake()
		engine.cancelWake = nil
	}
	engine.wakeGen++
}

func (engine *Engine) tick(generation uint64, wakeTime time.Time) {
	engine.mu.Lock()
	if engine.closed || generation != engine.wakeGen || engine.state != StateRunning {
		engine.mu.Unlock()
		return
	}
	engine.consumeLocked(wakeTime)
	engine.mu.Unlock()
	engine.flush()
}

// consumeLocked applies the wall-clock time elapsed since the last tick.
// Time left over after a phase reaches zero flows into the following phases.
func (engine *Engine) consumeLocked(now time.Time) {
	delta := now.Sub(engine.lastTick)
	if delta <= 0 {
		return
	}
	engine.lastTick = now

	for engine.state == StateRunning {
		engine.remaining -= delta
		if engine.remaining > 0 {
			engine.queueTickLocked(now)
			return
		}
		delta = -engine.remaining
		engine.remaining = 0
		engine.queueTickLocked(now)
		engine.advanceLocked(now)
		if delta == 0 {
			return
		}
	}
}

// advanceLocked enters the next phase with a positive duration, emitting a
// phase change for every phase passed, or completes the run.
func (engine *Engine) advanceLocked(now time.Time) {
	for {
		engine.index++
		if engine.index >= len(engine.phases) {
			engine.completeLocked(now)
			return
		}
		engine.remaining = phaseDuration(engine.phases[engine.index])
		engine.queuePhaseLocked(now)
		if engine.remaining > 0 {
			return
		}
	}
}

func (engine *Engine) completeLocked(now time.Time) {
	engine.stopWakeLocked()
	engine.releaseLeaseLocked()
	engine.index = len(engine.phases)
	engine.remaining = 0
	engine.state = StateComplete
	engine.queueLocked(Event{Type: EventCompleted, At: now})
	engine.queueStateLocked(now)
}

// releaseLeaseLocked hands the held lease to the next flush for release.
func (engine *Engine) releaseLeaseLocked() {
	engine.wantLease = false
	if engine.lease == nil {
		return
	}
	engine.staleLeases = append(engine.staleLeases, engine.lease)
	engine.lease = nil
}

// settleLease acquires and releases continuation leases without holding the
// engine lock; a provider may block on IPC. A lease acquired for a countdown
// that ended in the meantime is released at once.
func (engine *Engine) settleLease() {
	engine.mu.Lock()
	stale := engine.staleLeases
	engine.staleLeases = nil
	var continuation Continuation
	if engine.wantLease && !engine.closed && engine.lease == nil && engine.continuation != nil {
		continuation = engine.continuation
	}
	engine.wantLease = false
	engine.mu.Unlock()

	var failures []string
	for _, lease := range stale {
		if err := lease.Release(); err != nil {
			failures = append(failures, fmt.Sprintf("release continuation: %v", err))
		}
	}

	if continuation != nil {
		lease, err := continuation.Acquire(continuationReason)
		if err != nil {
			failures = append(failures, fmt.Sprintf("acquire continuation: %v", err))
		} else {
			engine.mu.Lock()
			keep := !engine.closed && engine.state == StateRunning && engine.lease == nil
			if keep {
				engine.lease = lease
			}
			engine.mu.Unlock()
			if !keep {
				if err := lease.Release(); err != nil {
					failures = append(failures, fmt.Sprintf("release continuation: %v", err))
				}
			}
		}
	}

	if len(failures) == 0 {
		return
	}
	engine.mu.Lock()
	now := engine.options.Now()
	for _, message := range failures {
		engine.queueLocked(Event{Type: EventContinuationError, Message: message, At: now})
	}
	engine.mu.Unlock()
}

func (engine *Engine) queueTickLocked(now time.Time) {
	engine.queueLocked(Event{Type: EventTick, At: now})
}

func (engine *Engine) queuePhaseLocked(now time.Time) {
	engine.queueLocked(Event{Type: EventPhaseChanged, At: now})
}

func (engine *Engine) queueStateLocked(now time.Time) {
	engine.queueLocked(Event{Type: EventStateChange, At: now})
}

// queueLocked stamps event with the current run state and defers delivery to flush.
func (engine *Engine) queueLocked(event Event) {
	event.State = engine.state
	event.PhaseIndex = engine.index
	event.PhaseCount = len(engine.phases)
	event.Remaining = engine.remaining
	if engine.index < len(engine.phases) {
		event.Phase = engine.phases[engine.index]
	}
	event.run = engine.run
	engine.pending = append(engine.pending, event)
}

// flush delivers queued events in order. Only one goroutine delivers at a
// time; a nested call from a callback leaves its events to the outer loop.
func (engine *Engine) flush() {
	engine.settleLease()
	engine.mu.Lock()
	if engine.delivering {
		engine.mu.Unlock()
		return
	}
	engine.delivering = true
	for len(engine.pending) > 0 {
		event := engine.pending[0]
		engine.pending = engine.pending[1:]
		if event.run != engine.run {
			continue
		}
		for _, ch := range engine.subscribers {
			select {
			case ch <- event:
			default:
			}
		}
		callbacks := engine.callbacks
		engine.mu.Unlock()
		callbacks.dispatch(event)
		engine.mu.Lock()
	}
	engine.delivering = false
	engine.mu.Unlock()
}

func phaseDuration(phase model.Phase) time.Duration {
	if phase.DurationSeconds <= 0 {
		return 0
	}
	return time.Duration(phase.DurationSeconds) * time.Second
}
